package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/ironsheep/image-overlay-mcp/internal/colormap"
	"github.com/ironsheep/image-overlay-mcp/internal/config"
	"github.com/ironsheep/image-overlay-mcp/internal/imaging"
	"github.com/ironsheep/image-overlay-mcp/internal/logging"
	"github.com/ironsheep/image-overlay-mcp/internal/maskcache"
	"github.com/ironsheep/image-overlay-mcp/internal/overlay"
	"github.com/ironsheep/image-overlay-mcp/internal/render"
	"github.com/ironsheep/image-overlay-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app holds what every subcommand shares once flags are parsed.
type app struct {
	configPath string
	verbose    bool

	cfg       *config.Config
	logger    *log.Logger
	masks     maskcache.Cache
	colormaps *colormap.Generator
	renderer  *render.Renderer
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "image-overlay",
		Short:        "Render annotation overlays on images",
		Long:         "image-overlay draws detection, segmentation and metric annotations over images, from the command line or as an MCP server over stdio.",
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("image-overlay %s\n  Build time: %s\n  Git commit: %s\n", Version, BuildTime, GitCommit))
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML config file (default: built-in settings and IMAGE_OVERLAY_* env)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newServeCmd(a))
	root.AddCommand(newRenderCmd(a))
	root.AddCommand(newColormapsCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.New(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := logging.Level(cfg.Log.Level)
	if a.verbose {
		level = log.DebugLevel
	}
	// stdout carries the MCP stream and rendered output; logs go to stderr.
	a.logger = logging.New(os.Stderr, level)
	cmd.SetContext(logging.WithLogger(cmd.Context(), a.logger))

	a.masks = cfg.MaskCache()
	if r, ok := a.masks.(*maskcache.Redis); ok {
		if err := r.Ping(cmd.Context()); err != nil {
			a.logger.Warn("redis mask cache unavailable, using memory", "addr", cfg.Cache.Redis.Addr, "err", err)
			_ = r.Close()
			a.masks = maskcache.NewMemory(cfg.Cache.MaxEntries)
		}
	}

	a.colormaps = colormap.NewGenerator(colormap.NewMemoryCache())
	engine := overlay.NewEngine(cfg.OverlayOptions(),
		overlay.WithLogger(a.logger),
		overlay.WithMaskCache(a.masks),
		overlay.WithColormaps(a.colormaps))
	a.renderer = render.New(imaging.NewImageCache(), engine)

	a.logger.Debug("configured",
		"version", Version,
		"cache", cfg.Cache.Backend,
		"colormap", cfg.Colormap.Default,
		"workers", cfg.Render.DecodeWorkers)
	return nil
}

func (a *app) close() error {
	if a.masks == nil {
		return nil
	}
	return a.masks.Close()
}

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the MCP server on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			server.Version = Version
			srv := server.New(
				server.WithLogger(a.logger),
				server.WithRenderer(a.renderer),
				server.WithColormaps(a.colormaps),
			)
			a.logger.Info("serving MCP on stdio", "version", Version)
			err := srv.Run(cmd.Context())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
}
