package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Olprog59/go-familyhub/internal/app"
	"github.com/Olprog59/go-familyhub/internal/config"
	"github.com/Olprog59/go-familyhub/internal/logging"
	"github.com/Olprog59/go-familyhub/internal/repository/db"
	"github.com/Olprog59/go-familyhub/internal/transport/web"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

// main is the application entry point / Point d'entrée de l'application
func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		slog.Error("command failed", "err", err)
		os.Exit(1)
	}
}

// newRootCmd builds the CLI, serve is the default / Construit la CLI, serve par défaut
func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "familyhub",
		Short:         "Private family space: posts, calendar, goals and help requests",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context(), configFile)
		},
	}
	root.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to the config file (default ./config.yaml)")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return serve(cmd.Context(), configFile)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations and exit",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return migrate(configFile)
			},
		},
		&cobra.Command{
			Use:   "backup",
			Short: "Write a SQLite backup and prune old ones",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return backup(cmd.Context(), configFile)
			},
		},
	)
	return root
}

// loadConfig reads the config and installs the logger / Lit la config et installe le logger
// loki is nil unless Loki shipping is enabled.
func loadConfig(file string) (cfg *config.Config, loki *logging.LokiHandler, err error) {
	cfg, err = config.Load(file)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, setupLogger(cfg), nil
}

// flushLogs pushes the buffered Loki lines / Envoie les lignes Loki en attente
func flushLogs(loki *logging.LokiHandler) {
	if loki == nil {
		return
	}
	if err := loki.Close(); err != nil {
		fmt.Fprintln(os.Stderr, "flush logs:", err)
	}
}

// serve initializes and starts the HTTP server / Initialise et démarre le serveur HTTP
func serve(ctx context.Context, configFile string) error {
	cfg, loki, err := loadConfig(configFile)
	if err != nil {
		return err
	}
	defer flushLogs(loki)

	logStartupInfo(cfg)

	// Initialize container with all dependencies
	container, err := app.NewContainer(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := container.Close(); err != nil {
			slog.Error("failed to release resources", "err", err)
		}
	}()
	if loki != nil {
		if err := container.Metrics.WatchDroppedLogs("loki", loki.Dropped); err != nil {
			slog.Warn("loki drop metric unavailable", "err", err)
		}
	}

	handler := web.NewMux(web.NewHandler(container), cfg, container)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// migrate applies pending migrations / Applique les migrations en attente
func migrate(configFile string) error {
	cfg, loki, err := loadConfig(configFile)
	if err != nil {
		return err
	}
	defer flushLogs(loki)

	database, dbType, err := app.OpenDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.Migrate(database.DB, dbType, cfg.Database.MigrationsPath); err != nil {
		return err
	}
	slog.Info("migrations applied", "database", dbType)
	return nil
}

// backup writes one backup then applies the retention / Écrit une sauvegarde puis applique la rétention
func backup(ctx context.Context, configFile string) error {
	cfg, loki, err := loadConfig(configFile)
	if err != nil {
		return err
	}
	defer flushLogs(loki)

	database, dbType, err := app.OpenDatabase(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	now := time.Now()
	path, err := app.BackupDatabase(ctx, database, dbType, cfg, now)
	if err != nil {
		return err
	}

	removed, err := app.CleanOldBackups(cfg.Backup.Path, cfg.Backup.RetentionDays, now)
	if err != nil {
		return err
	}
	slog.Info("backup done", "path", path, "removed", removed)
	return nil
}

// logStartupInfo displays startup information / Affiche les informations de démarrage
func logStartupInfo(conf *config.Config) {
	slog.Info("🚀 Starting familyhub",
		"environment", conf.Environment,
		"port", conf.Server.Port,
		"database", conf.Database.Type,
	)

	if conf.RateLimiter.Enabled {
		slog.Info("🛡️  Rate limiter enabled",
			"global_rps", conf.RateLimiter.RPS,
			"global_burst", conf.RateLimiter.Burst,
		)
	} else {
		slog.Warn("⚠️  Rate limiter is DISABLED")
	}

	slog.Info("⏱️  Token durations",
		"access_token", conf.Auth.AccessTokenDuration,
		"refresh_token", conf.Auth.RefreshTokenDuration,
	)
	slog.Info("🔌 Integrations",
		"redis", conf.Cache.Enabled,
		"nats", conf.Messaging.Enabled,
		"notifications", conf.Notifications.Enabled,
		"scheduler", conf.Scheduler.Enabled,
		"backups", conf.Backup.Enabled,
	)
}

// setupLogger configures structured logger / Configure le logger structuré
func setupLogger(conf *config.Config) *logging.LokiHandler {
	var level slog.Level
	switch strings.ToLower(conf.Logging.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var consoleHandler slog.Handler
	if strings.ToLower(conf.Logging.Format) == "json" {
		consoleHandler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     level,
			AddSource: conf.IsProduction(),
		})
	} else {
		consoleHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}

	if !conf.Logging.LokiEnabled {
		slog.SetDefault(slog.New(consoleHandler))
		slog.Debug("📊 Logging configured", "level", level.String(), "format", conf.Logging.Format, "loki_enabled", false)
		return nil
	}

	lokiHandler := logging.NewLokiHandler(logging.LokiOptions{
		URL:       conf.Logging.LokiURL,
		Labels:    conf.Logging.LokiLabels,
		BatchSize: conf.Logging.LokiBatchSize,
		Level:     level,
	})
	slog.SetDefault(slog.New(&multiHandler{
		consoleHandler: consoleHandler,
		lokiHandler:    lokiHandler,
	}))

	slog.Debug("📊 Logging configured",
		"level", level.String(),
		"format", conf.Logging.Format,
		"loki_enabled", true,
		"loki_url", conf.Logging.LokiURL,
	)
	return lokiHandler
}

// multiHandler writes to both console and Loki.
type multiHandler struct {
	consoleHandler slog.Handler
	lokiHandler    slog.Handler
}

func (h *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.consoleHandler.Enabled(ctx, level) || h.lokiHandler.Enabled(ctx, level)
}

func (h *multiHandler) Handle(ctx context.Context, record slog.Record) error {
	if h.consoleHandler.Enabled(ctx, record.Level) {
		if err := h.consoleHandler.Handle(ctx, record); err != nil {
			return err
		}
	}
	// Loki push failures are counted by the handler, never surfaced
	if h.lokiHandler.Enabled(ctx, record.Level) {
		_ = h.lokiHandler.Handle(ctx, record)
	}
	return nil
}

func (h *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &multiHandler{
		consoleHandler: h.consoleHandler.WithAttrs(attrs),
		lokiHandler:    h.lokiHandler.WithAttrs(attrs),
	}
}

func (h *multiHandler) WithGroup(name string) slog.Handler {
	return &multiHandler{
		consoleHandler: h.consoleHandler.WithGroup(name),
		lokiHandler:    h.lokiHandler.WithGroup(name),
	}
}
