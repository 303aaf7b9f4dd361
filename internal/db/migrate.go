package db

import (
	"fmt"

	"github.com/pressly/goose/v3"
)

// RunMigrations executes all pending goose migrations on the write pool.
// The migration files are written in the SQL subset both dialects accept.
func RunMigrations(conn *Conn) error {
	goose.SetBaseFS(EmbedMigrations)

	if err := goose.SetDialect(conn.Dialect.Name); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}
	if err := goose.Up(conn.Write, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// MigrationVersion returns the version of the newest applied migration.
func MigrationVersion(conn *Conn) (int64, error) {
	goose.SetBaseFS(EmbedMigrations)
	if err := goose.SetDialect(conn.Dialect.Name); err != nil {
		return 0, fmt.Errorf("goose set dialect: %w", err)
	}
	v, err := goose.GetDBVersion(conn.Write)
	if err != nil {
		return 0, fmt.Errorf("goose version: %w", err)
	}
	return v, nil
}
