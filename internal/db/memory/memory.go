// Package memory is an in-process record store. All tables of a DB share one
// RWMutex: reads run concurrently, writes are serialized, and records are
// deep-copied on the way in and out so callers never alias stored state.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"ss12000-mock/internal/domain"
	"ss12000-mock/internal/filter"
)

// DB groups the tables of one in-memory dataset.
type DB struct {
	mu     sync.RWMutex
	tables map[string]source
	now    func() time.Time
}

type source interface {
	getters() []filter.Getter
}

// Option configures a DB.
type Option func(*DB)

// WithClock overrides the clock used for created/modified timestamps.
func WithClock(now func() time.Time) Option {
	return func(db *DB) { db.now = now }
}

// NewDB creates an empty dataset.
func NewDB(opts ...Option) *DB {
	db := &DB{tables: map[string]source{}, now: time.Now}
	for _, o := range opts {
		o(db)
	}
	return db
}

// Rows implements filter.RowSource. Callers must hold db.mu.
func (db *DB) Rows(table string) []filter.Getter {
	src, ok := db.tables[table]
	if !ok {
		return nil
	}
	return src.getters()
}

// Store holds the rows of one table in insertion order.
type Store[T any] struct {
	db    *DB
	table *domain.Table[T]
	rows  []*T
	byID  map[string]int
}

// Register adds a table to db and returns its store.
func Register[T any](db *DB, table *domain.Table[T]) *Store[T] {
	db.mu.Lock()
	defer db.mu.Unlock()
	s := &Store[T]{db: db, table: table, byID: map[string]int{}}
	db.tables[table.Name] = s
	return s
}

func (s *Store[T]) getters() []filter.Getter {
	out := make([]filter.Getter, len(s.rows))
	for i, r := range s.rows {
		out[i] = s.table.Getter(r)
	}
	return out
}

// Find returns the window of matching records in the requested order.
func (s *Store[T]) Find(ctx context.Context, q filter.Query) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()

	matched := s.match(q.Where)
	sort.SliceStable(matched, func(i, j int) bool {
		return filter.Less(q.Order, s.table.Getter(matched[i]), s.table.Getter(matched[j]))
	})

	start := min(max(q.Offset, 0), len(matched))
	end := len(matched)
	if q.Limit > 0 {
		end = min(start+q.Limit, end)
	}
	out := make([]T, 0, end-start)
	for _, r := range matched[start:end] {
		out = append(out, *s.table.Clone(r))
	}
	return out, nil
}

// Count returns the number of matching records.
func (s *Store[T]) Count(ctx context.Context, where filter.Predicate) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return int64(len(s.match(where))), nil
}

func (s *Store[T]) match(where filter.Predicate) []*T {
	var out []*T
	for _, r := range s.rows {
		if filter.Match(where, s.table.Getter(r), s.db) {
			out = append(out, r)
		}
	}
	return out
}

// GetByID returns a copy of the record with the given id.
func (s *Store[T]) GetByID(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	i, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound("%s %q not found", s.table.Name, id)
	}
	return s.table.Clone(s.rows[i]), nil
}

// GetManyByIDs returns copies of the records whose ids are listed. Unknown
// ids are skipped.
func (s *Store[T]) GetManyByIDs(ctx context.Context, ids []string) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	seen := make(map[string]bool, len(ids))
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		i, ok := s.byID[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, *s.table.Clone(s.rows[i]))
	}
	return out, nil
}

// Insert stores a copy of rec, assigning id and timestamps when missing.
func (s *Store[T]) Insert(ctx context.Context, rec *T) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	cp := s.table.Clone(rec)
	s.table.Stamp(cp, s.db.now())
	id := s.table.ID(cp)
	if _, exists := s.byID[id]; exists {
		return nil, domain.ErrConflict("%s %q already exists", s.table.Name, id)
	}
	if err := s.checkUnique(cp, ""); err != nil {
		return nil, err
	}
	s.byID[id] = len(s.rows)
	s.rows = append(s.rows, cp)
	return s.table.Clone(cp), nil
}

// Update applies patch to the record and refreshes its modified time.
func (s *Store[T]) Update(ctx context.Context, id string, patch domain.Patch) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	i, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrNotFound("%s %q not found", s.table.Name, id)
	}
	cp := s.table.Clone(s.rows[i])
	if err := s.table.Apply(cp, patch); err != nil {
		return nil, err
	}
	if err := s.checkUnique(cp, id); err != nil {
		return nil, err
	}
	s.table.Meta(cp).Modified = s.db.now().UTC()
	s.rows[i] = cp
	return s.table.Clone(cp), nil
}

// Delete removes the record and reports whether it existed.
func (s *Store[T]) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	i, ok := s.byID[id]
	if !ok {
		return false, nil
	}
	s.rows = append(s.rows[:i], s.rows[i+1:]...)
	delete(s.byID, id)
	for j := i; j < len(s.rows); j++ {
		s.byID[s.table.ID(s.rows[j])] = j
	}
	return true, nil
}

func (s *Store[T]) checkUnique(rec *T, selfID string) error {
	for _, name := range s.table.Unique {
		col, _ := s.table.Column(name)
		v := col.Get(rec)
		if v == nil {
			continue
		}
		for _, r := range s.rows {
			if s.table.ID(r) == selfID {
				continue
			}
			if filter.Compare(col.Get(r), v) == 0 {
				return domain.ErrConflict("%s with %s %v already exists", s.table.Name, name, v)
			}
		}
	}
	return nil
}

var _ domain.Store[domain.Person] = (*Store[domain.Person])(nil)
