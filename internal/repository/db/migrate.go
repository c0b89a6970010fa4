package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Olprog59/go-familyhub/migrations"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/source/file" // file:// source for on-disk overrides
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Migrate applies pending migrations / Applique les migrations en attente
// An empty path uses the SQL files embedded in the binary / Un chemin vide utilise les fichiers embarqués
func Migrate(database *sql.DB, dbType DatabaseType, path string) error {
	driverName, driver, err := migrationDriver(database, dbType)
	if err != nil {
		return err
	}

	var m *migrate.Migrate
	if path != "" {
		m, err = migrate.NewWithDatabaseInstance("file://"+path, driverName, driver)
	} else {
		src, srcErr := iofs.New(migrations.FS, dbType.String())
		if srcErr != nil {
			return fmt.Errorf("could not open embedded migrations: %w", srcErr)
		}
		m, err = migrate.NewWithInstance("iofs", src, driverName, driver)
	}
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	slog.Info("applying database migrations", "type", dbType, "source", sourceName(path))
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	version, dirty, _ := m.Version()
	slog.Info("database migrations applied", "version", version, "dirty", dirty)
	return nil
}

func sourceName(path string) string {
	if path == "" {
		return "embedded"
	}
	return path
}
