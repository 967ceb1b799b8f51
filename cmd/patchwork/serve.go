package main

import (
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/vango-dev/patchwork/internal/config"
	"github.com/vango-dev/patchwork/internal/demo"
	"github.com/vango-dev/patchwork/pkg/server"
	"github.com/vango-dev/patchwork/pkg/telemetry"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		addr       string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the demo application over WebSocket",
		Long: `Start a server that runs the demo application in one runtime per
WebSocket session and streams host mutations to the client.

Configuration is read from --config, or from patchwork.yaml in the
current directory or any parent. Without a file, defaults are used.

Examples:
  patchwork serve
  patchwork serve --config patchwork.yaml
  patchwork serve --addr 0.0.0.0:9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := newLogger(cmd.ErrOrStderr(), cfg.Level())
			srv := server.New(demo.App, serverConfig(cfg, logger))
			success(cmd.OutOrStdout(), "serving on ws://%s%s", cfg.Server.Addr, cfg.Server.Path)
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to patchwork.yaml")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (overrides config)")

	return cmd
}

// loadConfig reads path, or the nearest config file, or falls back to
// defaults when none exists.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	dir, err := config.FindProjectRoot(".")
	if err != nil {
		return config.New(), nil
	}
	return config.Load(dir)
}

// serverConfig translates file configuration into server options, wiring
// metrics and tracing when enabled.
func serverConfig(cfg *config.Config, logger *slog.Logger) server.Config {
	sc := server.Config{
		Addr:         cfg.Server.Addr,
		Path:         cfg.Server.Path,
		Route:        cfg.Server.Route,
		RootID:       cfg.RootID,
		WriteTimeout: cfg.Server.WriteTimeout,
		ReadLimit:    cfg.Server.ReadLimit,
		BinaryOps:    cfg.Server.BinaryOps,
		Logger:       logger,
	}
	if len(cfg.Server.AllowedOrigins) > 0 {
		origins := cfg.Server.AllowedOrigins
		sc.CheckOrigin = func(r *http.Request) bool {
			return slices.Contains(origins, r.Header.Get("Origin"))
		}
	}

	if cfg.Metrics.Enabled || cfg.Tracing.Enabled {
		reg := prometheus.NewRegistry()
		opts := []telemetry.Option{
			telemetry.WithNamespace(cfg.Metrics.Namespace),
			telemetry.WithRegistry(reg),
			telemetry.WithTracing(cfg.Tracing.Enabled),
			telemetry.WithTracerName(cfg.Tracing.TracerName),
		}
		var m *telemetry.Metrics
		if cfg.Metrics.Enabled {
			m = telemetry.NewMetrics(opts...)
			sc.Metrics = m
			sc.Gatherer = reg
		}
		sc.Observer = telemetry.NewObserver(m, opts...)
	}
	return sc
}
