package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mcbuilder/pkg/errors"
	"github.com/matzehuels/mcbuilder/pkg/pack"
)

// infoCommand creates the info command.
func (c *CLI) infoCommand() *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "info <ref>",
		Short: "Show catalog details of a mod",
		Long: `Show catalog details of a mod and the file that would be installed.

Optional dependencies are listed too. They are never added automatically;
add the ones you want with "mcbuilder add".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := pack.ParseReference(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			ws, err := c.openWorkspace(ctx, false)
			if err != nil {
				return err
			}
			defer ws.Close()

			// The manifest is optional here; it supplies the target version
			// and marks dependencies the pack already has.
			m, err := ws.decode()
			if err != nil && !stderrors.Is(err, fs.ErrNotExist) {
				return err
			}
			if target == "" && m != nil {
				target = m.TargetVersion
			}
			if target == "" {
				return errors.New(errors.ErrCodeInvalidInput, "no manifest in %s; pass --target", ws.dir)
			}

			spin := newSpinner(ctx, "Fetching "+ref.String())
			spin.Start()
			f, err := ws.sources(false)(target).New(ref)
			if err == nil {
				err = f.Fetch(ctx)
			}
			spin.Stop()
			if err != nil {
				return err
			}
			return c.printInfo(ctx, ws, f, m)
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "Minecraft version (default: the manifest's)")

	return cmd
}

func (c *CLI) printInfo(ctx context.Context, ws *workspace, f pack.File, m *pack.Manifest) error {
	p, err := f.Project()
	if err != nil {
		return err
	}
	info, err := f.Info()
	if err != nil {
		return err
	}

	fmt.Println(StyleTitle.Render(p.Name))
	if p.Summary != "" {
		printDetail("%s", p.Summary)
	}
	printNewline()
	printKeyValue("Project", strconv.Itoa(p.ID))
	if len(p.Authors) > 0 {
		printKeyValue("Authors", strings.Join(p.Authors, ", "))
	}
	if p.WebsiteURL != "" {
		printKeyValue("Website", StyleLink.Render(p.WebsiteURL))
	}
	printKeyValue("File", fmt.Sprintf("%s (%d)", info.FileName, info.ID))
	if !info.PublishedAt.IsZero() {
		printKeyValue("Published", info.PublishedAt.Format("2006-01-02"))
	}
	printKeyValue("Versions", strings.Join(info.GameVersions, ", "))

	if m != nil {
		if cur, ok := m.Get(f.Key()); ok {
			printKeyValue("In pack", fmt.Sprintf("file %d, %s", cur.Entry().FileID, cur.Scope()))
		}
	}

	c.printDependencies(ctx, ws, "Required", info.RequiredDependencyIDs(), m)
	c.printDependencies(ctx, ws, "Optional", info.OptionalDependencyIDs(), m)
	return nil
}

// printDependencies lists dependency projects by name. Names that cannot
// be fetched are shown by id.
func (c *CLI) printDependencies(ctx context.Context, ws *workspace, label string, ids []int, m *pack.Manifest) {
	if len(ids) == 0 {
		return
	}
	printNewline()
	fmt.Println(StyleTitle.Render(label + " dependencies"))
	for _, id := range ids {
		name := strconv.Itoa(id)
		if p, err := ws.catalog.GetProject(ctx, id, false); err == nil {
			name = fmt.Sprintf("%s (%d)", p.Name, id)
		} else {
			c.Logger.Debug("dependency lookup failed", "project", id, "err", err)
		}
		if m != nil {
			if _, ok := m.Get(pack.Key(pack.SourceCurseForge, id)); ok {
				printSuccess("%s %s", name, StyleDim.Render("in pack"))
				continue
			}
		}
		printInfo("%s", name)
	}
}
