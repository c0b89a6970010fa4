package db

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	defaultMaxOpenConns = 25
	defaultMaxIdleConns = 5
)

// Options describes the connection pool to open / Décrit le pool de connexions à ouvrir
type Options struct {
	Type         DatabaseType
	DSN          string
	MaxOpenConns int
	MaxIdleConns int
}

// sqlitePragmas are database-wide; per-connection ones live in the DSN, see SQLiteDSN.
var sqlitePragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA wal_autocheckpoint=1000",
}

// Open opens, sizes and pings the pool / Ouvre, dimensionne et teste le pool
//
// MySQL DSNs should carry parseTime=true&loc=UTC and Postgres ones timezone=UTC,
// since session settings must apply to every pooled connection.
func Open(ctx context.Context, opts Options) (*sqlx.DB, error) {
	if opts.Type == "" {
		opts.Type = SQLite
	}

	dsn := opts.DSN
	if opts.Type == SQLite && !strings.Contains(dsn, "_pragma=foreign_keys") {
		dsn = SQLiteDSN(dsn)
	}

	conn, err := sqlx.Open(opts.Type.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", opts.Type, err)
	}
	conn.SetMaxOpenConns(orDefault(opts.MaxOpenConns, defaultMaxOpenConns))
	conn.SetMaxIdleConns(orDefault(opts.MaxIdleConns, defaultMaxIdleConns))

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping %s: %w", opts.Type, err)
	}

	if opts.Type == SQLite {
		for _, pragma := range sqlitePragmas {
			if _, err := conn.ExecContext(ctx, pragma); err != nil {
				slog.Warn("sqlite pragma failed", "pragma", pragma, "err", err)
			}
		}
	}

	slog.Info("database connected", "type", opts.Type)
	return conn, nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// SQLiteDSN appends the per-connection options the repositories rely on / Ajoute les options par connexion
func SQLiteDSN(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
}
