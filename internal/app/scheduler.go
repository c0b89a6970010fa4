package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

const jobTimeout = 5 * time.Minute

// Background task names / Noms des tâches de fond
const (
	TaskTokenPurge        = "token_purge"
	TaskDatabaseBackup    = "database_backup"
	TaskHelpRequestExpiry = "help_request_expiry"
)

// cronLogger routes cron output to slog / Redirige les logs de cron vers slog
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append(keysAndValues, "err", err)...)
}

// startScheduler registers maintenance jobs and starts cron / Enregistre les tâches et démarre cron
func (c *Container) startScheduler() error {
	logger := cronLogger{}
	c.scheduler = cron.New(cron.WithLogger(logger), cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)))

	if c.Config.Scheduler.Enabled {
		if err := c.addJob(c.Config.Scheduler.TokenPurgeSchedule, TaskTokenPurge, c.purgeTokens); err != nil {
			return err
		}
		if err := c.addJob(c.Config.Scheduler.HelpRequestExpirySchedule, TaskHelpRequestExpiry, c.expireHelpRequests); err != nil {
			return err
		}
	}

	if c.Config.Backup.Enabled {
		spec := fmt.Sprintf("@every %s", c.Config.Backup.Interval)
		if err := c.addJob(spec, TaskDatabaseBackup, func(ctx context.Context) error {
			_, err := c.Backup(ctx)
			return err
		}); err != nil {
			return err
		}
		slog.Info("automatic database backup enabled",
			"interval", c.Config.Backup.Interval,
			"retention_days", c.Config.Backup.RetentionDays,
		)
	}

	c.scheduler.Start()
	return nil
}

// addJob wraps a task with timeout, logging and metrics / Enveloppe une tâche avec timeout, logs et métriques
func (c *Container) addJob(spec, name string, run func(ctx context.Context) error) error {
	_, err := c.scheduler.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		c.Metrics.SetBackgroundTaskStatus(name, true)
		defer c.Metrics.SetBackgroundTaskStatus(name, false)

		start := time.Now()
		err := run(ctx)
		c.Metrics.RecordBackgroundRun(name, err)
		if err != nil {
			slog.Error("background task failed", "task", name, "err", err)
			return
		}
		slog.Debug("background task done", "task", name, "duration", time.Since(start))
	})
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	return nil
}

func (c *Container) purgeTokens(ctx context.Context) error {
	n, err := c.RefreshTokenStore.PurgeExpired(ctx, time.Now())
	if err != nil {
		return err
	}
	if n > 0 {
		slog.Info("expired refresh tokens purged", "count", n)
	}
	return nil
}

func (c *Container) expireHelpRequests(ctx context.Context) error {
	n, err := c.HelpSvc.ExpireOverdue(ctx, time.Now())
	if err != nil {
		return err
	}
	if n > 0 {
		slog.Info("help requests expired", "count", n)
	}
	return nil
}
