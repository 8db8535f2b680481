package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/xxxsen/magicauth/internal/config"
	"github.com/xxxsen/magicauth/internal/db"
)

// OpenTestDB connects to the postgres named by TEST_DB_DSN and migrates it.
// Tests are skipped when the variable is unset.
func OpenTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set, skipping postgres test")
	}
	conn, err := db.Open(config.DatabaseConfig{Type: "postgres", DSN: dsn})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(context.Background(), conn); err != nil {
		_ = conn.Close()
		t.Fatalf("migrations: %v", err)
	}
	t.Cleanup(func() {
		_, _ = conn.Exec("TRUNCATE sessions, verification_tokens, users CASCADE")
		_ = conn.Close()
	})
	return conn
}
