package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Olprog59/go-familyhub/internal/config"
	"github.com/Olprog59/go-familyhub/internal/repository/db"
	"github.com/jmoiron/sqlx"
)

const backupTimeLayout = "20060102-150405"

// ErrBackupUnsupported is returned for non-file databases / Retourné pour les bases non fichier
var ErrBackupUnsupported = errors.New("backup is only supported for file-based SQLite databases")

// BackupDatabase writes a consistent SQLite copy with VACUUM INTO / Écrit une copie SQLite cohérente
func BackupDatabase(ctx context.Context, database *sqlx.DB, dbType db.DatabaseType, cfg *config.Config, now time.Time) (string, error) {
	if dbType != db.SQLite {
		return "", ErrBackupUnsupported
	}

	dbName := sqliteFile(cfg.Database.DSN)
	if dbName == "" || dbName == ":memory:" {
		return "", ErrBackupUnsupported
	}

	if err := os.MkdirAll(cfg.Backup.Path, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	backupName := fmt.Sprintf("%s.backup-%s.db", filepath.Base(dbName), now.Format(backupTimeLayout))
	backupPath := filepath.Join(cfg.Backup.Path, backupName)

	// VACUUM INTO does not accept bind parameters / VACUUM INTO n'accepte pas de paramètres
	query := fmt.Sprintf("VACUUM INTO '%s'", strings.ReplaceAll(backupPath, "'", "''"))
	if _, err := database.ExecContext(ctx, query); err != nil {
		return "", fmt.Errorf("backup execution failed: %w", err)
	}

	slog.Info("database backup created", "path", backupPath)
	return backupPath, nil
}

// sqliteFile extracts the file path from a SQLite DSN / Extrait le chemin du fichier d'un DSN SQLite
func sqliteFile(dsn string) string {
	dsn = strings.TrimPrefix(dsn, "file:")
	if idx := strings.Index(dsn, "?"); idx >= 0 {
		dsn = dsn[:idx]
	}
	return dsn
}

// CleanOldBackups removes backups older than the retention / Supprime les backups plus vieux que la rétention
func CleanOldBackups(dir string, retentionDays int, now time.Time) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	cutoff := now.AddDate(0, 0, -retentionDays)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("failed to read backup directory: %w", err)
	}

	deleted := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.Contains(entry.Name(), ".backup-") || !strings.HasSuffix(entry.Name(), ".db") {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			slog.Warn("failed to stat backup", "file", entry.Name(), "err", err)
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			slog.Warn("failed to delete old backup", "file", entry.Name(), "err", err)
			continue
		}
		deleted++
		slog.Info("deleted old backup", "file", entry.Name(), "age_days", int(now.Sub(info.ModTime()).Hours()/24))
	}

	return deleted, nil
}

// Backup runs one backup followed by retention cleanup / Lance un backup puis le nettoyage
func (c *Container) Backup(ctx context.Context) (string, error) {
	path, err := BackupDatabase(ctx, c.DB, c.DBType, c.Config, time.Now())
	if err != nil {
		return "", err
	}
	if n, err := CleanOldBackups(c.Config.Backup.Path, c.Config.Backup.RetentionDays, time.Now()); err != nil {
		slog.Warn("backup cleanup failed", "err", err)
	} else if n > 0 {
		slog.Info("cleaned up old backups", "count", n)
	}
	return path, nil
}
