// Package cli implements the survfit command-line interface.
//
// Commands:
//   - render: run figure recipes and write SVG, PNG, PDF or JSON
//   - table: print a recipe's risk tables in the terminal
//   - serve: preview a directory of recipes over HTTP
//   - cache: inspect and clear the artifact cache
//   - completion: shell completion scripts
//
// Runtime settings come from SURVFIT_* environment variables (see package
// config); --verbose switches logging to debug level.
package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/survfit/pkg/buildinfo"
	"github.com/matzehuels/survfit/pkg/config"
	"github.com/matzehuels/survfit/pkg/pipeline"
)

// appName is used in help text and the server header.
const appName = "survfit"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// loadConfig reads runtime settings; tests replace it.
	loadConfig func() (*config.Config, error)
}

// New creates a CLI logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger:     newLogger(w, level),
		loadConfig: config.Load,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "survfit styles survival curves and aligns risk tables",
		Long:         `survfit renders Kaplan-Meier and cumulative-incidence figures from TOML recipes: a styled curve panel with risk-count tables aligned beneath it.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}
	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.tableCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner over the configured cache.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, *config.Config, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	if noCache {
		cfg.NoCache = true
	}
	store, err := cfg.OpenCache(ctx)
	if err != nil {
		return nil, nil, err
	}
	c.Logger.Debug("opened cache", "backend", cfg.Backend())
	runner := pipeline.NewRunner(store, nil, c.Logger)
	runner.ArtifactTTL = cfg.CacheTTL
	return runner, cfg, nil
}

// parseFormats splits a comma-separated format list. Empty means the
// recipe's own formats.
func parseFormats(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}
