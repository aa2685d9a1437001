package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/mcbuilder/pkg/install"
)

// installCommand creates the install command.
func (c *CLI) installCommand() *cobra.Command {
	var update bool

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Download every declared mod",
		Long: `Download every mod the manifest declares that is not yet present and
remove files the manifest does not declare.

With --update, mods whose pinned file is no longer the newest for the
pack's Minecraft version are replaced, and the manifest is updated.
Catalog data is re-read rather than served from the cache.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ws, err := c.openWorkspace(ctx, true)
			if err != nil {
				return err
			}
			defer ws.Close()

			m, err := ws.load(ctx, update)
			if err != nil {
				return err
			}

			prog := newProgress(c.Logger)
			rep, installErr := ws.installer().Install(ctx, m, install.Options{
				Update:     update,
				OnProgress: downloadProgress(c.Logger),
			})
			if rep == nil {
				return installErr
			}
			if len(rep.Updated) > 0 {
				if err := ws.save(m); err != nil {
					return err
				}
			}
			if err := ws.reconcile(ctx, m); err != nil {
				return err
			}
			prog.done("Install finished")

			for _, u := range rep.Updated {
				printSuccess("Updated %s %s %s", u.Old.Entry().Name, StyleDim.Render(iconArrow), u.New.Entry().Name)
			}
			printStats(len(rep.Downloaded), rep.Present)
			return installErr
		},
	}

	cmd.Flags().BoolVarP(&update, "update", "U", false, "replace outdated mods with their newest files")

	return cmd
}
