package cli

import (
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mcbuilder/pkg/errors"
	"github.com/matzehuels/mcbuilder/pkg/pack"
)

// initCommand creates the init command.
func (c *CLI) initCommand() *cobra.Command {
	var (
		vals initValues
		yes  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a new pack manifest",
		Long: `Create manifest.json in the pack directory.

On a terminal an interactive form asks for the pack details, prefilled
from the flags. With --yes, or when stdin is not a terminal, the flags are
used as given; --target is then required.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := filepath.Abs(c.dir)
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", c.dir)
			}
			if _, err := os.Stat(pack.Path(dir)); err == nil {
				return errors.New(errors.ErrCodeInvalidInput, "%s already exists", pack.Path(dir))
			}
			if vals.Name == "" {
				vals.Name = filepath.Base(dir)
			}

			if !yes && isatty.IsTerminal(os.Stdin.Fd()) {
				var ok bool
				vals, ok, err = runInitForm(vals)
				if err != nil {
					return err
				}
				if !ok {
					printInfo("Cancelled")
					return nil
				}
			}
			if _, err := vals.validate(); err != nil {
				return err
			}

			ws, err := c.openWorkspace(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer ws.Close()

			if _, err := os.Stat(ws.manifestPath()); err == nil {
				return errors.New(errors.ErrCodeInvalidInput, "%s already exists", ws.manifestPath())
			}
			if err := ws.save(vals.manifest()); err != nil {
				return err
			}
			if err := os.MkdirAll(ws.modsDir(), 0o755); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "create %s", ws.modsDir())
			}

			printSuccess("Created %s for Minecraft %s", vals.Name, vals.TargetVersion)
			printFile(ws.manifestPath())
			printNextStep("Add a mod", appName+" add <project-id>")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&vals.Name, "name", "", "pack name (default: directory name)")
	flags.StringVar(&vals.TargetVersion, "target", "", "Minecraft version, e.g. 1.12.2")
	flags.StringVar(&vals.Version, "pack-version", pack.DefaultVersion, "pack version")
	flags.StringVar(&vals.LoaderVersion, "loader", "", "mod loader version, e.g. forge-14.23.5.2859")
	flags.StringVar(&vals.Description, "description", "", "pack description")
	flags.StringVar(&vals.Author, "author", "", "pack author")
	flags.BoolVarP(&yes, "yes", "y", false, "skip the interactive form")

	return cmd
}
