package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mmynk/tabshare/internal/auth"
	"github.com/mmynk/tabshare/internal/config"
	"github.com/mmynk/tabshare/internal/metrics"
	"github.com/mmynk/tabshare/internal/server"
	"github.com/mmynk/tabshare/internal/storage/sqlite"
	"github.com/mmynk/tabshare/pkg/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		envPath    string
		port       int
		dbPath     string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:           "tabshare-server",
		Short:         "Serve the tabshare receipt API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath, envPath)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("port") {
				cfg.Port = port
			}
			if flags.Changed("db") {
				cfg.DBPath = dbPath
			}
			if flags.Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if err := cfg.Validate(); err != nil {
				fmt.Fprintln(os.Stderr, err)
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file")
	cmd.Flags().StringVar(&envPath, "env-file", ".env", "path to a .env file (ignored if missing)")
	cmd.Flags().IntVar(&port, "port", 8080, "listen port")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	return cmd
}

func run(ctx context.Context, cfg config.Config) error {
	logger, err := logging.Setup(cfg.LogLevel)
	if err != nil {
		return err
	}
	if cfg.UsesDevSecret() {
		logger.Warn("Using the development JWT secret; set JWT_SECRET in production")
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		return err
	}
	defer store.Close()
	logger.Info("Storage initialized", "database", cfg.DBPath)

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	handler := server.New(server.Options{
		Store:      store,
		JWT:        auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL),
		Metrics:    m,
		Logger:     logger,
		CORSOrigin: cfg.CORSOrigin,
	})

	if err := server.Run(ctx, cfg.Addr(), handler, logger); err != nil {
		slog.Error("Server failed", "error", err)
		return err
	}
	return nil
}
