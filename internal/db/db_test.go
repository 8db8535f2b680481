package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyMigrations_UsesEmbeddedDir(t *testing.T) {
	orig := gooseUp
	t.Cleanup(func() { gooseUp = orig })

	var gotDir string
	gooseUp = func(ctx context.Context, db *sql.DB, dir string) error {
		gotDir = dir
		return nil
	}
	require.NoError(t, ApplyMigrations(context.Background(), nil))
	require.Equal(t, "migrations", gotDir)

	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)
}

func TestApplyMigrations_PropagatesError(t *testing.T) {
	orig := gooseUp
	t.Cleanup(func() { gooseUp = orig })

	gooseUp = func(ctx context.Context, db *sql.DB, dir string) error {
		return errors.New("boom")
	}
	err := ApplyMigrations(context.Background(), nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "boom")
}
