// Package cli implements the mcbuilder command-line interface.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mcbuilder/pkg/buildinfo"
	"github.com/matzehuels/mcbuilder/pkg/catalog"
	"github.com/matzehuels/mcbuilder/pkg/download"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "mcbuilder"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Persistent flags.
	dir     string
	noCache bool
	verbose bool

	// Overrides for tests. When nil, the CurseForge client and HTTP
	// downloader built from the pack configuration are used.
	catalog    catalog.Catalog
	downloader download.Downloader
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		dir:    ".",
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "mcbuilder manages Minecraft modpacks from a manifest",
		Long: `mcbuilder keeps a modpack's mods folder in sync with a declarative manifest.

Mods are added by CurseForge project id together with every required
dependency, pinned to the newest file for the pack's Minecraft version,
and downloaded into the pack. Files the manifest does not declare are
removed after every change.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if c.verbose {
				c.SetLogLevel(LogDebug)
				c.registerLogHooks()
			}
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVarP(&c.dir, "dir", "C", ".", "pack directory")
	flags.BoolVar(&c.noCache, "no-cache", false, "bypass the catalog response cache")

	// Register all subcommands
	root.AddCommand(c.initCommand())
	root.AddCommand(c.addCommand())
	root.AddCommand(c.removeCommand())
	root.AddCommand(c.installCommand())
	root.AddCommand(c.buildCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.infoCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}
