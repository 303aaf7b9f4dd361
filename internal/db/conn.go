package db

import (
	"database/sql"
	"errors"
	"strconv"
)

// Dialect captures the SQL differences between the supported backends.
type Dialect struct {
	// Name is the goose dialect name.
	Name     string
	numbered bool
}

var (
	// SQLite uses ? placeholders.
	SQLite = Dialect{Name: "sqlite3"}
	// Postgres uses $n placeholders.
	Postgres = Dialect{Name: "postgres", numbered: true}
)

// Placeholder returns the bind marker for the n-th (1-based) argument.
func (d Dialect) Placeholder(n int) string {
	if d.numbered {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// Conn is a pair of pools on one database: Write for mutations, Read for
// queries. Backends without a write bottleneck use the same pool for both.
type Conn struct {
	Write   *sql.DB
	Read    *sql.DB
	Dialect Dialect
}

// Close closes both pools.
func (c *Conn) Close() error {
	var errs []error
	if c.Read != nil && c.Read != c.Write {
		errs = append(errs, c.Read.Close())
	}
	if c.Write != nil {
		errs = append(errs, c.Write.Close())
	}
	return errors.Join(errs...)
}

// NoLimit is the LIMIT operand that leaves a query unbounded so an OFFSET can
// follow it.
func (d Dialect) NoLimit() string {
	if d.numbered {
		return "ALL"
	}
	return "-1"
}
