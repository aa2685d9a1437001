package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mcbuilder/pkg/packager"
)

// buildCommand creates the build command.
func (c *CLI) buildCommand() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Package the pack as a zip archive",
		Long: `Package the pack as a zip archive.

Formats:
  curseforge  CurseForge modpack export (manifest.json plus overrides/)
  client      mods/ with common and client mods, plus overrides
  server      mods/ with common and server mods, plus overrides

The client and server formats read jars from the mods folder, so run
install first. The archive is written to build/<name>-<version>[-format].zip
unless -o is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := packager.ParseFormat(format)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			ws, err := c.openWorkspace(ctx, true)
			if err != nil {
				return err
			}
			defer ws.Close()

			m, err := ws.load(ctx, false)
			if err != nil {
				return err
			}

			if output == "" {
				name, err := packager.DefaultName(m, f)
				if err != nil {
					return err
				}
				output = filepath.Join(ws.dir, "build", name)
			}

			sum, err := packager.BuildFile(ctx, output, m, packager.Options{
				Format:       f,
				ModsDir:      ws.modsDir(),
				OverridesDir: filepath.Join(ws.dir, packager.OverridesDir),
				Logger:       c.Logger,
			})
			if err != nil {
				return err
			}

			printSuccess("Built %s", sum)
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", string(packager.FormatCurseForge), "archive format: curseforge, client or server")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")

	return cmd
}
