package cli

import (
	"github.com/spf13/cobra"

	"github.com/katalvlaran/transformlab/engine"
	"github.com/katalvlaran/transformlab/metrics"
	"github.com/katalvlaran/transformlab/persist"
	"github.com/katalvlaran/transformlab/server"
)

func (c *CLI) serveCommand() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the engine over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			var (
				extra []engine.Option
				srvOp []server.Option
			)
			if cfg.Server.Metrics {
				m := metrics.New(metrics.WithRuntimeCollectors())
				extra = append(extra, engine.WithObserver(m))
				srvOp = append(srvOp, server.WithMetrics(m.Handler()))
			}
			s, err := c.openSession(ctx, extra...)
			if err != nil {
				return err
			}
			defer s.close()

			if cfg.Persistence.Autosave && cfg.Persistence.Driver != persist.Memory {
				a := persist.Autosave(s.backend, s.logger, persist.WithSaveTimeout(cfg.Persistence.SaveTimeout.Duration))
				unsub := s.engine.Subscribe(a.Listen)
				defer func() {
					unsub()
					if err := a.Close(); err != nil {
						s.logger.Error("final autosave", "err", err)
					}
				}()
			}

			s.logger.Info("serving",
				"addr", cfg.Server.Addr,
				"driver", cfg.Persistence.Driver,
				"transforms", len(s.engine.Snapshot().Transforms),
				"metrics", cfg.Server.Metrics,
			)

			return server.New(s.engine, srvOp...).ListenAndServe(ctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout.Duration)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")

	return cmd
}
