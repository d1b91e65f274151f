// Package cli implements the transformlab command-line interface.
//
// Every command loads the configured snapshot backend into a fresh engine,
// applies its operation, and saves the result back, so consecutive
// invocations edit the same collection. serve keeps one engine alive behind
// the HTTP server and autosaves after each commit.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// passed through context.Context.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/katalvlaran/transformlab/config"
	"github.com/katalvlaran/transformlab/engine"
	"github.com/katalvlaran/transformlab/persist"
	"github.com/katalvlaran/transformlab/snapshot"
)

// =============================================================================
// Constants
// =============================================================================

const appName = "transformlab"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// SetVersion sets the version information displayed by --version.
func SetVersion(v, c, d string) {
	version, commit, date = v, c, d
}

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	driver     string
	path       string
	getenv     func(string) string
}

// New creates a CLI logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root command with every subcommand registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Compose 3D affine transforms into one matrix",
		Long:         `transformlab keeps an ordered list of parametric 3D transforms (scale, rotate, translate, shear, custom), each blended by its own factor, and composes them into a single 4x4 matrix with its determinant.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}
	root.SetVersionTemplate(fmt.Sprintf("%s {{.Version}}\ncommit: %s\nbuilt: %s\n", appName, commit, date))

	pf := root.PersistentFlags()
	pf.StringVarP(&c.configPath, "config", "c", "", "TOML config file")
	pf.StringVar(&c.driver, "driver", "", "persistence driver (memory|file|sqlite|postgres|redis|mongo|s3)")
	pf.StringVar(&c.path, "path", "", "snapshot path for the file and sqlite drivers")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.kindsCommand())
	root.AddCommand(c.addCommand())
	root.AddCommand(c.updateCommand())
	root.AddCommand(c.removeCommand())
	root.AddCommand(c.moveCommand())
	root.AddCommand(c.renameCommand())
	root.AddCommand(c.reorderCommand())
	root.AddCommand(c.globalCommand())
	root.AddCommand(c.resetCommand())
	root.AddCommand(c.applyCommand())
	root.AddCommand(c.composeCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.importCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads the config file, environment and flags, in that order.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if err = cfg.ApplyEnv(c.getenv); err != nil {
		return config.Config{}, err
	}
	if c.driver != "" {
		d, err := persist.ParseDriver(c.driver)
		if err != nil {
			return config.Config{}, err
		}
		cfg.Persistence.Driver = d
	}
	if c.path != "" {
		switch cfg.Persistence.Driver {
		case persist.SQLite:
			cfg.Persistence.SQLite.Path = c.path
		default:
			if cfg.Persistence.Driver == "" || cfg.Persistence.Driver == persist.Memory {
				cfg.Persistence.Driver = persist.File
			}
			cfg.Persistence.File.Path = c.path
		}
	}
	if err = cfg.Validate(); err != nil {
		return config.Config{}, err
	}

	return cfg, nil
}

// =============================================================================
// Session
// =============================================================================

// session is one engine loaded from the configured backend.
type session struct {
	cfg     config.Config
	engine  *engine.Engine
	backend snapshot.Backend
	logger  *log.Logger
}

// openSession loads the backend's snapshot into a new engine.
func (c *CLI) openSession(ctx context.Context, extra ...engine.Option) (*session, error) {
	logger := loggerFromContext(ctx)
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	opts, err := cfg.EngineOptions()
	if err != nil {
		return nil, err
	}
	opts = append(opts, engine.WithLogger(logger))
	opts = append(opts, extra...)

	b, err := persist.Open(ctx, cfg.Persistence.Config)
	if err != nil {
		return nil, err
	}
	e := engine.New(opts...)
	loaded, err := persist.Load(ctx, b, e.Store())
	if err != nil {
		e.Close()
		_ = b.Close()
		return nil, err
	}
	logger.Debug("session opened", "driver", cfg.Persistence.Driver, "loaded", loaded, "version", e.Snapshot().Version)

	return &session{cfg: cfg, engine: e, backend: b, logger: logger}, nil
}

// save writes the engine state back to the backend.
func (s *session) save(ctx context.Context, w io.Writer) error {
	if s.cfg.Persistence.Driver == persist.Memory {
		printWarning(w, "memory driver: changes are not persisted (use --path or --driver)")
		return nil
	}
	if err := s.backend.Save(ctx, s.engine.Export()); err != nil {
		return err
	}
	s.logger.Debug("saved", "driver", s.cfg.Persistence.Driver, "version", s.engine.Snapshot().Version)

	return nil
}

func (s *session) close() {
	s.engine.Close()
	if err := s.backend.Close(); err != nil {
		s.logger.Warn("close backend", "err", err)
	}
}

// mutate opens a session, runs fn, saves, and prints the resulting state.
func (c *CLI) mutate(cmd *cobra.Command, fn func(e *engine.Engine) (string, error)) error {
	ctx := cmd.Context()
	s, err := c.openSession(ctx)
	if err != nil {
		return err
	}
	defer s.close()

	msg, err := fn(s.engine)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if err = s.save(ctx, out); err != nil {
		return err
	}
	printSuccess(out, "%s", msg)
	printState(out, s.engine, false, rowLayout)

	return nil
}
