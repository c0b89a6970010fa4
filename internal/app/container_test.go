package app_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Olprog59/go-familyhub/internal/app"
	"github.com/Olprog59/go-familyhub/internal/config"
	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/repository/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	return &config.Config{
		Server: config.ServerConfig{Port: "0", FrontendURL: "http://family.test"},
		Database: config.DatabaseConfig{
			Type: "sqlite",
			DSN:  db.SQLiteDSN(filepath.Join(dir, "family.db")),
		},
		Backup: config.BackupConfig{
			Path:          filepath.Join(dir, "backups"),
			Interval:      time.Hour,
			RetentionDays: 7,
		},
		Auth: config.AuthConfig{
			JWTSecret:            "container-test-secret-0123456789abcdef",
			AccessTokenDuration:  time.Minute,
			RefreshTokenDuration: time.Hour,
		},
		Security: config.SecurityConfig{
			BcryptCost:        4,
			MaxFailedAttempts: 5,
			LockoutDuration:   time.Minute,
		},
		Media: config.MediaConfig{Path: filepath.Join(dir, "media"), MaxUploadBytes: 1 << 20},
		Scheduler: config.SchedulerConfig{
			TokenPurgeSchedule:        "@daily",
			HelpRequestExpirySchedule: "@hourly",
			HelpRequestGrace:          24 * time.Hour,
		},
	}
}

func TestNewContainer(t *testing.T) {
	container, err := app.NewContainer(testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { container.Close() })

	assert.NotNil(t, container.DB)
	assert.Equal(t, db.SQLite, container.DBType)
	assert.NotNil(t, container.UserRepo)
	assert.NotNil(t, container.RefreshTokenStore)
	assert.NotNil(t, container.UserSvc)
	assert.NotNil(t, container.AuthSvc)
	assert.NotNil(t, container.PostSvc)
	assert.NotNil(t, container.CommentSvc)
	assert.NotNil(t, container.ReactionSvc)
	assert.NotNil(t, container.EventSvc)
	assert.NotNil(t, container.GoalSvc)
	assert.NotNil(t, container.HelpSvc)
	assert.NotNil(t, container.SharePostSvc)
	assert.NotNil(t, container.Hub)
	assert.NotNil(t, container.Media)
	assert.NotNil(t, container.Metrics)

	require.NoError(t, container.Ping(context.Background()))

	// The embedded migrations created the schema / Les migrations embarquées ont créé le schéma
	user, err := container.UserSvc.Register(context.Background(), "first@example.com", "Str0ng!Pass", "")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Role, "first member becomes admin")
}

func TestNewContainer_TwoInstances(t *testing.T) {
	// Each container owns its registry / Chaque conteneur a son propre registre
	first, err := app.NewContainer(testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { first.Close() })

	second, err := app.NewContainer(testConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { second.Close() })

	assert.NotSame(t, first.Registry, second.Registry)
}

func TestNewContainer_InvalidSchedule(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scheduler.Enabled = true
	cfg.Scheduler.TokenPurgeSchedule = "every tuesday"

	_, err := app.NewContainer(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "token_purge")
}

func TestNewContainer_SchedulerEnabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Scheduler.Enabled = true
	cfg.Backup.Enabled = true

	container, err := app.NewContainer(cfg)
	require.NoError(t, err)
	assert.NoError(t, container.Close())
}
