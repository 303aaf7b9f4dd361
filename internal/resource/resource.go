// Package resource holds the static description of every API resource: its
// column table, filters, sort keys, expandable relations and reference-name
// fields, bound to the store that serves it.
package resource

import (
	"context"
	"slices"
	"sort"
	"strings"

	"ss12000-mock/internal/domain"
	"ss12000-mock/internal/filter"
	"ss12000-mock/internal/query"
)

// Item is one fetched record together with read access to its columns.
type Item struct {
	Record any
	Get    filter.Getter
}

// ID returns the record identifier.
func (it Item) ID() string {
	id, _ := it.Get("id").(string)
	return id
}

// Source is the type-erased store of one resource.
type Source interface {
	Find(ctx context.Context, q filter.Query) ([]Item, error)
	Count(ctx context.Context, where filter.Predicate) (int64, error)
	GetByID(ctx context.Context, id string) (Item, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type source[T any] struct {
	store domain.Store[T]
	table *domain.Table[T]
}

// Bind adapts a typed store to Source.
func Bind[T any](store domain.Store[T], table *domain.Table[T]) Source {
	return source[T]{store: store, table: table}
}

func (s source[T]) item(rec *T) Item {
	return Item{Record: rec, Get: s.table.Getter(rec)}
}

func (s source[T]) Find(ctx context.Context, q filter.Query) ([]Item, error) {
	recs, err := s.store.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	items := make([]Item, len(recs))
	for i := range recs {
		items[i] = s.item(&recs[i])
	}
	return items, nil
}

func (s source[T]) Count(ctx context.Context, where filter.Predicate) (int64, error) {
	return s.store.Count(ctx, where)
}

func (s source[T]) GetByID(ctx context.Context, id string) (Item, error) {
	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		return Item{}, err
	}
	return s.item(rec), nil
}

func (s source[T]) Delete(ctx context.Context, id string) (bool, error) {
	return s.store.Delete(ctx, id)
}

// Relation is an expandable link to records of another resource: target
// rows whose Foreign column equals this record's Local column.
type Relation struct {
	Name    string
	Target  string
	Local   string
	Foreign string
	Many    bool
}

// Reference is a foreign-key column whose referenced record's name is added
// as the Name sibling when reference names are requested.
type Reference struct {
	Field  string
	Name   string
	Target string
}

// Spec is the static description of one resource.
type Spec[T any] struct {
	Name        string
	Path        string
	Table       *domain.Table[T]
	Filters     query.Filters
	DefaultSort string
	Relations   []Relation
	References  []Reference
	// NameColumn is the column other resources show in reference names.
	NameColumn string
	// LookupColumns are matched by lookup ids. Defaults to id.
	LookupColumns []string
	// UUIDs marks resources whose ids are always store-generated UUIDs.
	UUIDs bool
}

// Definition is a resource bound to its store.
type Definition struct {
	Name          string
	Path          string
	Table         string
	Filters       query.Filters
	Sorter        *query.Sorter
	Relations     map[string]Relation
	References    []Reference
	NameColumn    string
	LookupColumns []string
	UUIDs         bool
	Source        Source

	params []string
}

// Define binds spec to store. Every resource also accepts the meta filters.
func Define[T any](spec Spec[T], store domain.Store[T]) *Definition {
	filters := append(slices.Clone(spec.Filters), query.Meta()...)
	lookup := spec.LookupColumns
	if len(lookup) == 0 {
		lookup = []string{"id"}
	}
	rels := make(map[string]Relation, len(spec.Relations))
	for _, r := range spec.Relations {
		rels[r.Name] = r
	}
	for _, ref := range spec.References {
		if !spec.Table.Has(ref.Field) {
			panic("resource " + spec.Name + ": reference on unknown column " + ref.Field)
		}
	}
	return &Definition{
		Name:          spec.Name,
		Path:          spec.Path,
		Table:         spec.Table.Name,
		Filters:       filters,
		Sorter:        query.NewSorter(spec.Name, spec.Table.Has, spec.DefaultSort),
		Relations:     rels,
		References:    spec.References,
		NameColumn:    spec.NameColumn,
		LookupColumns: lookup,
		UUIDs:         spec.UUIDs,
		Source:        Bind(store, spec.Table),
		params:        filters.ParamNames(),
	}
}

// Params lists the filter parameters the resource accepts.
func (d *Definition) Params() []string {
	return d.params
}

// RelationNames lists the expandable relation names, sorted.
func (d *Definition) RelationNames() []string {
	names := make([]string, 0, len(d.Relations))
	for n := range d.Relations {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// CheckExpand rejects relation names the resource does not define.
func (d *Definition) CheckExpand(names []string) error {
	for _, n := range names {
		if _, ok := d.Relations[n]; ok {
			continue
		}
		if len(d.Relations) == 0 {
			return domain.ErrValidation("expand %q: %s has no expandable relations", n, d.Name)
		}
		return domain.ErrValidation("expand %q is not valid for %s: expected one of %s",
			n, d.Name, strings.Join(d.RelationNames(), ", "))
	}
	return nil
}

// CheckID rejects ids that cannot exist for the resource.
func (d *Definition) CheckID(id string) error {
	if d.UUIDs {
		return domain.RequireUUID(id)
	}
	return nil
}

// LookupPredicate matches records whose lookup columns hold any of ids.
func (d *Definition) LookupPredicate(ids []string) filter.Predicate {
	if len(d.LookupColumns) == 1 {
		return filter.InStrings(d.LookupColumns[0], ids)
	}
	or := make(filter.Or, len(d.LookupColumns))
	for i, col := range d.LookupColumns {
		or[i] = filter.InStrings(col, ids)
	}
	return or
}
