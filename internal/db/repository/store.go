package repository

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"time"

	"ss12000-mock/internal/db"
	"ss12000-mock/internal/domain"
	"ss12000-mock/internal/filter"
)

// Store implements domain.Store for one table on a SQL connection. Queries
// run on the read pool, mutations on the write pool.
type Store[T any] struct {
	conn  *db.Conn
	table *domain.Table[T]
	now   func() time.Time

	selectCols string
}

// Option configures a Store.
type Option func(*storeOptions)

type storeOptions struct {
	now func() time.Time
}

// WithClock overrides the clock used for created/modified timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *storeOptions) { o.now = now }
}

// NewStore creates a store for table on conn.
func NewStore[T any](conn *db.Conn, table *domain.Table[T], opts ...Option) *Store[T] {
	o := storeOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[T]{
		conn:       conn,
		table:      table,
		now:        o.now,
		selectCols: columnList(table.ColumnNames()),
	}
}

func (s *Store[T]) selectFrom() *builder {
	b := newBuilder(s.conn.Dialect)
	b.write("SELECT ", s.selectCols, " FROM ", quote(s.table.Name))
	return b
}

// Find returns the window of matching records in the requested order.
func (s *Store[T]) Find(ctx context.Context, q filter.Query) ([]T, error) {
	b := s.selectFrom()
	if err := b.where(q.Where); err != nil {
		return nil, err
	}
	b.orderBy(q.Order)
	b.window(q.Limit, max(q.Offset, 0))
	return s.query(ctx, s.conn.Read, b.String(), b.args...)
}

// Count returns the number of matching records.
func (s *Store[T]) Count(ctx context.Context, where filter.Predicate) (int64, error) {
	b := newBuilder(s.conn.Dialect)
	b.write("SELECT COUNT(*) FROM ", quote(s.table.Name))
	if err := b.where(where); err != nil {
		return 0, err
	}
	var n int64
	if err := s.conn.Read.QueryRowContext(ctx, b.String(), b.args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", s.table.Name, err)
	}
	return n, nil
}

// GetByID returns the record with the given id.
func (s *Store[T]) GetByID(ctx context.Context, id string) (*T, error) {
	rec, err := s.getByID(ctx, s.conn.Read, id)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store[T]) getByID(ctx context.Context, q queryer, id string) (*T, error) {
	b := s.selectFrom()
	if err := b.where(filter.Eq{Field: "id", Value: id}); err != nil {
		return nil, err
	}
	var rec T
	if err := q.QueryRowContext(ctx, b.String(), b.args...).Scan(s.targets(&rec)...); err != nil {
		if err = mapDBError(err); isNotFound(err) {
			return nil, domain.ErrNotFound("%s %q not found", s.table.Name, id)
		}
		return nil, fmt.Errorf("get %s: %w", s.table.Name, err)
	}
	return &rec, nil
}

// GetManyByIDs returns the records whose ids are listed, in the order the ids
// were given. Unknown ids are skipped.
func (s *Store[T]) GetManyByIDs(ctx context.Context, ids []string) ([]T, error) {
	if len(ids) == 0 {
		return []T{}, nil
	}
	b := s.selectFrom()
	if err := b.where(filter.InStrings("id", ids)); err != nil {
		return nil, err
	}
	found, err := s.query(ctx, s.conn.Read, b.String(), b.args...)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]int, len(found))
	for i := range found {
		byID[s.table.ID(&found[i])] = i
	}
	out := make([]T, 0, len(found))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		i, ok := byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, found[i])
	}
	return out, nil
}

// Insert stores rec, assigning id and timestamps when missing.
func (s *Store[T]) Insert(ctx context.Context, rec *T) (*T, error) {
	cp := *rec
	s.table.Stamp(&cp, s.now())

	names := s.table.ColumnNames()
	args := make([]any, len(s.table.Columns))
	for i, c := range s.table.Columns {
		args[i] = c.Get(&cp)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quote(s.table.Name), columnList(names), placeholders(s.conn.Dialect, 1, len(names)))
	if _, err := s.conn.Write.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("insert %s: %w", s.table.Name, mapDBError(err))
	}
	return &cp, nil
}

// Update applies patch to the record and refreshes its modified time.
func (s *Store[T]) Update(ctx context.Context, id string, patch domain.Patch) (*T, error) {
	tx, err := s.conn.Write.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update %s: %w", s.table.Name, err)
	}
	defer tx.Rollback() //nolint:errcheck

	rec, err := s.getByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := s.table.Apply(rec, patch); err != nil {
		return nil, err
	}
	s.table.Meta(rec).Modified = s.now().UTC()

	names := make([]string, 0, len(patch)+1)
	for name := range patch {
		names = append(names, name)
	}
	slices.Sort(names)
	names = append(names, "modified")

	b := newBuilder(s.conn.Dialect)
	b.write("UPDATE ", quote(s.table.Name), " SET ")
	for i, name := range names {
		if i > 0 {
			b.write(", ")
		}
		col, _ := s.table.Column(name)
		b.write(quote(name), " = ")
		b.bind(col.Get(rec))
	}
	b.write(" WHERE ", quote("id"), " = ")
	b.bind(id)

	if _, err := tx.ExecContext(ctx, b.String(), b.args...); err != nil {
		return nil, fmt.Errorf("update %s: %w", s.table.Name, mapDBError(err))
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update %s: %w", s.table.Name, err)
	}
	return rec, nil
}

// Delete removes the record and reports whether it existed.
func (s *Store[T]) Delete(ctx context.Context, id string) (bool, error) {
	query := fmt.Sprintf("DELETE FROM %s WHERE %s = %s",
		quote(s.table.Name), quote("id"), s.conn.Dialect.Placeholder(1))
	res, err := s.conn.Write.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", s.table.Name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", s.table.Name, err)
	}
	return n > 0, nil
}

func (s *Store[T]) query(ctx context.Context, q queryer, query string, args ...any) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.table.Name, err)
	}
	defer rows.Close() //nolint:errcheck

	out := []T{}
	for rows.Next() {
		var rec T
		if err := rows.Scan(s.targets(&rec)...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.table.Name, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %s: %w", s.table.Name, err)
	}
	return out, nil
}

func (s *Store[T]) targets(rec *T) []any {
	dest := make([]any, len(s.table.Columns))
	for i, c := range s.table.Columns {
		dest[i] = c.Ref(rec)
	}
	return dest
}

func isNotFound(err error) bool {
	_, ok := err.(*domain.NotFoundError)
	return ok
}

var _ domain.Store[domain.Person] = (*Store[domain.Person])(nil)
