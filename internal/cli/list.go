package cli

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mcbuilder/pkg/pack"
)

// listCommand creates the list command.
func (c *CLI) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the mods in the manifest",
		Args:    cobra.NoArgs,
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

			if m.Len() == 0 {
				printInfo("%s has no mods yet", m.Name)
				printNextStep("Add one with", appName+" add <project-id>")
				return nil
			}

			files := m.Files()
			slices.SortFunc(files, func(a, b pack.File) int {
				return cmp.Or(cmp.Compare(a.Scope(), b.Scope()), cmp.Compare(a.Entry().Name, b.Entry().Name))
			})

			rows := make([][]string, 0, len(files))
			updates := 0
			for _, f := range files {
				rows = append(rows, listRow(f))
				if ok, _ := f.CanUpdate(); ok {
					updates++
				}
			}

			fmt.Println(StyleTitle.Render(m.Name) + " " + StyleDim.Render(m.Version+" for Minecraft "+m.TargetVersion))
			fmt.Println(renderTable([]string{"Mod", "File", "Project", "File ID", "Scope", "Update"}, rows))
			printDetail("%s", plural(len(files), "mod"))
			if updates > 0 {
				printNextStep(plural(updates, "update")+" available", appName+" install --update")
			}
			return nil
		},
	}
}

func listRow(f pack.File) []string {
	e := f.Entry()
	name := e.Name
	if p, err := f.Project(); err == nil {
		name = p.Name
	}
	update := ""
	if ok, _ := f.CanUpdate(); ok {
		update = iconSuccess
	}
	return []string{
		name,
		e.Name,
		strconv.Itoa(e.ProjectID),
		strconv.Itoa(e.FileID),
		renderScope(f.Scope()),
		update,
	}
}
