package cli

import (
	"cmp"
	"sync"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mcbuilder/pkg/deps"
	"github.com/matzehuels/mcbuilder/pkg/errors"
	"github.com/matzehuels/mcbuilder/pkg/install"
	"github.com/matzehuels/mcbuilder/pkg/pack"
)

// addCommand creates the add command.
func (c *CLI) addCommand() *cobra.Command {
	var (
		fileID         int
		client, server bool
	)

	cmd := &cobra.Command{
		Use:   "add <ref>...",
		Short: "Add mods and their required dependencies",
		Long: `Add mods to the pack together with every required dependency.

A reference is a CurseForge project id, optionally followed by a file id:

  238222               newest file for the pack's Minecraft version
  238222@3137448       a specific file (also 238222:3137448)
  curseforge://install?addonId=238222&fileId=3137448

Dependencies already in the manifest keep their pinned files. The manifest
is saved as each file resolves, then the new files are downloaded.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, err := scopeFromFlags(client, server)
			if err != nil {
				return err
			}
			refs, err := parseRefs(args)
			if err != nil {
				return err
			}
			if fileID != 0 {
				if len(refs) != 1 {
					return errors.New(errors.ErrCodeInvalidInput, "--file needs exactly one project")
				}
				refs[0].FileID = fileID
			}
			return c.runAdd(cmd, refs, scope)
		},
	}

	cmd.Flags().IntVarP(&fileID, "file", "f", 0, "file id to pin (single project only)")
	cmd.Flags().BoolVar(&client, "client", false, "add as client-only dependencies")
	cmd.Flags().BoolVar(&server, "server", false, "add as server-only dependencies")
	cmd.MarkFlagsMutuallyExclusive("client", "server")

	return cmd
}

func (c *CLI) runAdd(cmd *cobra.Command, refs []pack.Reference, scope pack.Scope) error {
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

	prog := newProgress(c.Logger)
	var saveMu sync.Mutex
	resolver := deps.NewResolver(ws.sources(false)(m.TargetVersion), deps.Options{
		Concurrency: ws.cfg.Resolve.Concurrency,
		Logger:      c.Logger,
		Pinned:      m.Pinned,
		OnResolved: func(f pack.File) {
			m.Add(f)
			saveMu.Lock()
			defer saveMu.Unlock()
			if err := ws.save(m); err != nil {
				c.Logger.Warn("save manifest", "err", err)
			}
			c.Logger.Debug("resolved", "file", f)
		},
	})
	res := resolver.ResolveAll(ctx, refs, scope)
	prog.done("Resolved " + plural(len(res.Files), "file"))

	saveMu.Lock()
	err = ws.save(m)
	saveMu.Unlock()
	if err != nil {
		return err
	}

	rep, installErr := ws.installer().Install(ctx, m, install.Options{OnProgress: downloadProgress(c.Logger)})
	if err := ws.reconcile(ctx, m); err != nil {
		c.Logger.Warn("reconcile", "err", err)
	}

	for _, f := range res.Files {
		printSuccess("%s %s", f.Entry().Name, StyleDim.Render(f.Ref().String()))
	}
	if rep != nil && len(rep.Downloaded) > 0 {
		printDetail("downloaded %s", plural(len(rep.Downloaded), "file"))
	}
	for key, ferr := range res.Failed {
		printWarning("%s: %s", key, errors.UserMessage(ferr))
	}

	// A failed dependency is reported above; a failed root fails the command.
	for _, ref := range refs {
		if ferr, ok := res.Failed[ref.Key()]; ok {
			return errors.Wrap(cmp.Or(errors.GetCode(ferr), errors.ErrCodeInternal), ferr, "add %s", ref)
		}
	}
	return installErr
}

// scopeFromFlags maps --client/--server to a scope.
func scopeFromFlags(client, server bool) (pack.Scope, error) {
	switch {
	case client && server:
		return pack.Common, errors.New(errors.ErrCodeInvalidInput, "--client and --server are mutually exclusive")
	case client:
		return pack.Client, nil
	case server:
		return pack.Server, nil
	}
	return pack.Common, nil
}

func parseRefs(args []string) ([]pack.Reference, error) {
	refs := make([]pack.Reference, 0, len(args))
	for _, arg := range args {
		ref, err := pack.ParseReference(arg)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
