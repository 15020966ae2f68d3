// Package cli implements the storyweaver command-line interface.
//
// Commands convert between project files and wikitext markup, lay out and
// preview stories, play them in the terminal, manage the project store and
// serve the HTTP editing API. Every command accepts --verbose (-v) for debug
// logging and --config to point at a configuration file.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/storyweaver/pkg/buildinfo"
	"github.com/matzehuels/storyweaver/pkg/config"
	"github.com/matzehuels/storyweaver/pkg/layout"
	"github.com/matzehuels/storyweaver/pkg/store"
)

// appName is the application name used for display.
const appName = "storyweaver"

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

	configPath string
	cfg        *config.Config
}

// New creates a CLI logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Storyweaver authors branching text adventures",
		Long: `Storyweaver builds text adventures as graphs of scenes and choices and
converts them to and from the {{Text adventure}} wikitext dialect.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}
	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+config.DefaultPath()+")")

	root.AddCommand(c.newCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.playCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Shared Wiring
// =============================================================================

// loadConfig loads the configuration once per process.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded config", "path", c.configPath, "engine", cfg.Layout.Engine, "store", cfg.Store.Backend)
	c.cfg = cfg
	return cfg, nil
}

// layouter builds the configured layout engine, or engine when set.
func (c *CLI) layouter(engine string) (layout.Layouter, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	if engine == "" {
		engine = cfg.Layout.Engine
	}
	l, err := layout.New(engine, cfg.Layout.Options())
	if err != nil {
		return nil, err
	}
	if gv, ok := l.(*layout.Graphviz); ok {
		gv.Logger = c.Logger
	}
	return l, nil
}

// openStore opens the configured project store.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	return store.Open(ctx, cfg.Store, c.Logger)
}
