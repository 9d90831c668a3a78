package persistence

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMigrationsAreEmbedded(t *testing.T) {
	names, err := fs.Glob(migrationFS, "migrations/*.sql")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"migrations/00001_identity.sql",
		"migrations/00002_applications.sql",
		"migrations/00003_application_history.sql",
	}, names)

	body, err := fs.ReadFile(migrationFS, "migrations/00001_identity.sql")
	require.NoError(t, err)
	assert.Contains(t, string(body), "-- +goose Up")
	assert.Contains(t, string(body), "users_email_lower_key")
}

func TestRunMigrationsWithoutPool(t *testing.T) {
	assert.NoError(t, RunMigrations(context.Background(), nil, zap.NewNop()))
}

func TestMigrateUsesEmbeddedDir(t *testing.T) {
	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	var gotDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}

	require.NoError(t, migrate(context.Background(), nil, zap.NewNop()))
	assert.Equal(t, "migrations", gotDir)
}

func TestMigrateWrapsFailure(t *testing.T) {
	orig := gooseUpContext
	defer func() { gooseUpContext = orig }()

	boom := errors.New("boom")
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return boom
	}

	err := migrate(context.Background(), nil, zap.NewNop())
	assert.ErrorIs(t, err, boom)
}
