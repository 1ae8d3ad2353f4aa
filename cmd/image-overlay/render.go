package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-overlay-mcp/internal/annotation"
	"github.com/ironsheep/image-overlay-mcp/internal/imaging"
	"github.com/ironsheep/image-overlay-mcp/internal/render"
	"github.com/ironsheep/image-overlay-mcp/internal/tags"
)

type renderOpts struct {
	annotations string
	output      string
	width       int
	height      int
	hide        []string
	threshold   float64
	dim         float64
	grayscale   bool
}

func newRenderCmd(a *app) *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render <image>",
		Short: "Render an annotation document over an image and write a PNG",
		Long: `Render draws the annotation document over the image and writes the result as PNG.

Masks are drawn first, then regions, boxes, lines and markers. Tags passed to
--hide use the "layer: label" form. Malformed annotations are skipped and
reported; they do not fail the render.`,
		Example: `  image-overlay render photo.jpg -a detections.json -o out.png
  image-overlay render photo.jpg -a - -o out.png --width 800 --hide "detector: person"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, a, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.annotations, "annotations", "a", "", "annotation document (JSON file, or - for stdin)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output PNG path (- for stdout)")
	cmd.Flags().IntVar(&opts.width, "width", 0, "maximum output width (0 = natural)")
	cmd.Flags().IntVar(&opts.height, "height", 0, "maximum output height (0 = natural)")
	cmd.Flags().StringArrayVar(&opts.hide, "hide", nil, `hide a "layer: label" tag (repeatable)`)
	cmd.Flags().Float64Var(&opts.threshold, "threshold", 0, "draw only annotations scoring above this value")
	cmd.Flags().Float64Var(&opts.dim, "dim", 0, "darken the background by this fraction")
	cmd.Flags().BoolVar(&opts.grayscale, "grayscale", false, "desaturate the background")
	_ = cmd.MarkFlagRequired("annotations")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runRender(cmd *cobra.Command, a *app, imagePath string, opts renderOpts) error {
	doc, err := readDocument(cmd.InOrStdin(), opts.annotations)
	if err != nil {
		return err
	}

	res, err := a.renderer.Render(cmd.Context(), render.Request{
		ImagePath: imagePath,
		Document:  doc,
		Width:     opts.width,
		Height:    opts.height,
		Visibility: tags.Visibility{
			Hidden:         tags.NewHiddenSet(opts.hide...),
			ScoreThreshold: opts.threshold,
		},
		Background: imaging.BackgroundOptions{Dim: opts.dim, Grayscale: opts.grayscale},
	})
	if err != nil {
		return err
	}

	for _, is := range res.Issues {
		a.logger.Warn("skipped annotation", "id", is.ID, "layer", is.Layer, "err", is.Err)
	}

	data, err := imaging.EncodePNG(res.Image())
	if err != nil {
		return err
	}
	if opts.output == "-" {
		_, err = cmd.OutOrStdout().Write(data)
	} else {
		err = os.WriteFile(opts.output, data, 0o644)
	}
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	a.logger.Info("rendered",
		"id", res.RenderID,
		"state", res.State,
		"size", fmt.Sprintf("%dx%d", res.Width, res.Height),
		"masks", res.Drawn.Masks,
		"vectors", res.Drawn.Regions+res.Drawn.Boxes+res.Drawn.Lines+res.Drawn.Markers,
		"hidden", res.Drawn.Hidden,
		"skipped", len(res.Skipped),
		"elapsed", res.Elapsed)
	return nil
}

func readDocument(stdin io.Reader, path string) (*annotation.Document, error) {
	if path == "-" {
		return annotation.ParseReader(stdin)
	}
	f, err := os.Open(strings.TrimSpace(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open annotations: %w", err)
	}
	defer f.Close()
	return annotation.ParseReader(f)
}
