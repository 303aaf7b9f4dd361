package domain

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"ss12000-mock/internal/filter"
)

// Meta carries the identity and store-maintained timestamps of every record.
type Meta struct {
	ID       string    `json:"id" yaml:"id"`
	Created  time.Time `json:"created" yaml:"created"`
	Modified time.Time `json:"modified" yaml:"modified"`
}

// Patch maps column names to their new column values.
type Patch map[string]any

// Store is the record store contract for one entity type. GetByID and Update
// return a NotFoundError for unknown ids; Delete reports whether the record
// existed.
type Store[T any] interface {
	Find(ctx context.Context, q filter.Query) ([]T, error)
	Count(ctx context.Context, where filter.Predicate) (int64, error)
	GetByID(ctx context.Context, id string) (*T, error)
	GetManyByIDs(ctx context.Context, ids []string) ([]T, error)
	Insert(ctx context.Context, rec *T) (*T, error)
	Update(ctx context.Context, id string, patch Patch) (*T, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// Column describes one persisted field. Get returns the comparable column
// value (nil for NULL); Ref returns a pointer usable as a scan destination.
type Column[T any] struct {
	Name string
	Get  func(*T) any
	Ref  func(*T) any
	// Detach replaces shared field storage (pointers, slices) with a private
	// copy. Nil for value fields.
	Detach func(*T)
}

// Table is the static column table of an entity type. It replaces field
// lookups by name with precomputed accessors.
type Table[T any] struct {
	Name    string
	Meta    func(*T) *Meta
	Columns []Column[T]
	Unique  []string

	index map[string]int
}

// NewTable builds a table whose first columns are id, created and modified.
// It panics on duplicate column names so mistakes surface at startup.
func NewTable[T any](name string, meta func(*T) *Meta, cols ...Column[T]) *Table[T] {
	all := append([]Column[T]{
		{Name: "id", Get: func(r *T) any { return meta(r).ID }, Ref: func(r *T) any { return &meta(r).ID }},
		{Name: "created", Get: func(r *T) any { return meta(r).Created.UTC() }, Ref: func(r *T) any { return &meta(r).Created }},
		{Name: "modified", Get: func(r *T) any { return meta(r).Modified.UTC() }, Ref: func(r *T) any { return &meta(r).Modified }},
	}, cols...)
	t := &Table[T]{Name: name, Meta: meta, Columns: all, index: make(map[string]int, len(all))}
	for i, c := range all {
		if _, dup := t.index[c.Name]; dup {
			panic(fmt.Sprintf("table %s: duplicate column %s", name, c.Name))
		}
		t.index[c.Name] = i
	}
	return t
}

// WithUnique marks columns whose non-NULL values must be unique.
func (t *Table[T]) WithUnique(cols ...string) *Table[T] {
	for _, c := range cols {
		if !t.Has(c) {
			panic(fmt.Sprintf("table %s: unknown unique column %s", t.Name, c))
		}
	}
	t.Unique = append(t.Unique, cols...)
	return t
}

// Has reports whether the table has the named column.
func (t *Table[T]) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the named column.
func (t *Table[T]) Column(name string) (Column[T], bool) {
	i, ok := t.index[name]
	if !ok {
		return Column[T]{}, false
	}
	return t.Columns[i], true
}

// ColumnNames returns the column names in declaration order.
func (t *Table[T]) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Getter exposes a record to predicate evaluation.
func (t *Table[T]) Getter(rec *T) filter.Getter {
	return func(field string) any {
		i, ok := t.index[field]
		if !ok {
			return nil
		}
		return t.Columns[i].Get(rec)
	}
}

// Clone returns a copy of rec that shares no pointer or slice storage with it.
func (t *Table[T]) Clone(rec *T) *T {
	cp := *rec
	for _, c := range t.Columns {
		if c.Detach != nil {
			c.Detach(&cp)
		}
	}
	return &cp
}

// ID returns the identifier of rec.
func (t *Table[T]) ID(rec *T) string {
	return t.Meta(rec).ID
}

// Apply writes patch values into rec through the column scan targets.
func (t *Table[T]) Apply(rec *T, patch Patch) error {
	for name, v := range patch {
		col, ok := t.Column(name)
		if !ok || name == "id" || name == "created" {
			return ErrValidation("column %s cannot be updated on %s", name, t.Name)
		}
		if err := assign(col.Ref(rec), v); err != nil {
			return fmt.Errorf("%s.%s: %w", t.Name, name, err)
		}
	}
	return nil
}

// Patch returns the values of every updatable column of rec, for replacing a
// stored record wholesale.
func (t *Table[T]) Patch(rec *T) Patch {
	p := make(Patch, len(t.Columns))
	for _, c := range t.Columns {
		switch c.Name {
		case "id", "created", "modified":
			continue
		}
		p[c.Name] = c.Get(rec)
	}
	return p
}

// Stamp fills in the identifier and timestamps of a new record.
func (t *Table[T]) Stamp(rec *T, now time.Time) {
	m := t.Meta(rec)
	if m.ID == "" {
		m.ID = NewID()
	}
	if m.Created.IsZero() {
		m.Created = now
	}
	if m.Modified.IsZero() {
		m.Modified = m.Created
	}
	m.Created = m.Created.UTC()
	m.Modified = m.Modified.UTC()
}

type scanner interface {
	Scan(src any) error
}

func assign(dst any, v any) error {
	switch d := dst.(type) {
	case *string:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", v)
		}
		*d = s
	case **string:
		if v == nil {
			*d = nil
			return nil
		}
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", v)
		}
		*d = &s
	case *time.Time:
		ts, ok := v.(time.Time)
		if !ok {
			return fmt.Errorf("expected time, got %T", v)
		}
		*d = ts
	case **time.Time:
		if v == nil {
			*d = nil
			return nil
		}
		ts, ok := v.(time.Time)
		if !ok {
			return fmt.Errorf("expected time, got %T", v)
		}
		*d = &ts
	case *float64:
		f, ok := v.(float64)
		if !ok {
			return fmt.Errorf("expected number, got %T", v)
		}
		*d = f
	case **Date:
		if v == nil {
			*d = nil
			return nil
		}
		var day Date
		if err := day.Scan(v); err != nil {
			return err
		}
		*d = &day
	case scanner:
		return d.Scan(v)
	default:
		rv := reflect.ValueOf(dst)
		s, ok := v.(string)
		if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.String || !ok {
			return fmt.Errorf("unsupported column target %T", dst)
		}
		rv.Elem().SetString(s)
	}
	return nil
}
