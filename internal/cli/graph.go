package cli

import (
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mcbuilder/pkg/errors"
	"github.com/matzehuels/mcbuilder/pkg/render/nodelink"
)

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		output   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Draw the pack's dependency graph",
		Long: `Draw the required-dependency graph of the pack.

The format follows the output extension: .dot, .svg or .png. Without -o
the DOT source is written to stdout. Dependencies missing from the
manifest are drawn dashed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := c.openWorkspace(ctx, false)
			if err != nil {
				return err
			}
			defer ws.Close()

			m, err := ws.load(ctx, false)
			if err != nil {
				return err
			}

			g := nodelink.FromManifest(m)
			for _, key := range g.Missing() {
				c.Logger.Warn("required dependency missing from manifest", "project", key)
			}
			dot := nodelink.ToDOT(g, nodelink.Options{Detailed: detailed})

			if output == "" {
				fmt.Print(dot)
				return nil
			}

			spin := newSpinner(ctx, "Rendering "+filepath.Base(output))
			spin.Start()

			var data []byte
			switch ext := strings.ToLower(filepath.Ext(output)); ext {
			case ".dot", ".gv":
				data = []byte(dot)
			case ".svg":
				data, err = nodelink.RenderSVG(ctx, dot)
			case ".png":
				data, err = nodelink.RenderPNG(ctx, dot)
			default:
				err = errors.New(errors.ErrCodeInvalidInput, "unsupported graph format %q (want .dot, .svg or .png)", ext)
			}
			if err == nil {
				err = os.WriteFile(output, data, 0o644)
			}
			if err != nil {
				spin.StopWithError("Rendering failed")
				return errors.Wrap(cmp.Or(errors.GetCode(err), errors.ErrCodeInternal), err, "write graph %s", output)
			}
			spin.StopWithSuccess("Wrote dependency graph")
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (.dot, .svg or .png)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include file names and scopes in labels")

	return cmd
}
