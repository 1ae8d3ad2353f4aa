package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ironsheep/image-overlay-mcp/internal/colormap"
	"github.com/ironsheep/image-overlay-mcp/internal/palette"
)

func newColormapsCmd(a *app) *cobra.Command {
	var shades int

	cmd := &cobra.Command{
		Use:   "colormaps [name]",
		Short: "List colormaps, or print the colors of one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				fmt.Fprintln(out, strings.Join(colormap.Names(), "\n"))
				return nil
			}

			n := shades
			if n == 0 {
				n = a.cfg.Colormap.Levels
			}
			m, err := a.colormaps.Generate(args[0], n, nil)
			if err != nil {
				return err
			}
			for i, c := range m.Colors {
				fmt.Fprintf(out, "%3d %s\n", i, palette.Hex(c))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&shades, "shades", "n", 0, "number of colors (default: colormap.levels from config)")
	return cmd
}
