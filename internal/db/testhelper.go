package db

import (
	"path/filepath"
	"testing"
)

// OpenTestSQLite opens a migrated SQLite connection in t.TempDir() and
// registers cleanup.
func OpenTestSQLite(t *testing.T) *Conn {
	t.Helper()

	conn, err := OpenSQLiteConn(filepath.Join(t.TempDir(), "test.sqlite"), 4)
	if err != nil {
		t.Fatalf("open test sqlite: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	if err := RunMigrations(conn); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return conn
}
