package cli

import (
	"github.com/spf13/cobra"
)

// removeCommand creates the remove command.
func (c *CLI) removeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <ref>...",
		Aliases: []string{"rm"},
		Short:   "Remove mods from the pack",
		Long: `Remove mods from the manifest and delete their files.

Dependencies pulled in by a removed mod stay in the pack; remove them
explicitly when they are no longer needed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			refs, err := parseRefs(args)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			ws, err := c.openWorkspace(ctx, true)
			if err != nil {
				return err
			}
			defer ws.Close()

			// Entries are not fetched: a mod whose project has left the
			// catalog must still be removable.
			m, err := ws.decode()
			if err != nil {
				return err
			}

			inst := ws.installer()
			for _, ref := range refs {
				f, ok := m.Remove(ref.Key())
				if !ok {
					printWarning("%s is not in the manifest", ref.Key())
					continue
				}
				if err := inst.Remove(f); err != nil {
					return err
				}
				printSuccess("Removed %s", f.Entry().Name)
			}

			if err := ws.save(m); err != nil {
				return err
			}
			return ws.reconcile(ctx, m)
		},
	}
}
