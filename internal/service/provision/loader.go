package provision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"ss12000-mock/internal/domain"
	"ss12000-mock/internal/filter"
	"ss12000-mock/internal/resource"
)

// Validator checks records against their validate tags.
type Validator interface {
	Validate(i interface{}) error
}

// Report summarizes one load.
type Report struct {
	Inserted int
	Updated  int
	Deleted  int
}

// Loader applies fixtures to the stores of a registry.
type Loader struct {
	reg      *resource.Registry
	validate Validator
	now      func() time.Time
	logger   *slog.Logger
}

// NewLoader creates a Loader.
func NewLoader(reg *resource.Registry, validate Validator, logger *slog.Logger) *Loader {
	return &Loader{reg: reg, validate: validate, now: time.Now, logger: logger.With("component", "provision")}
}

// LoadFile decodes and applies the fixture at path.
func (l *Loader) LoadFile(ctx context.Context, path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open fixture: %w", err)
	}
	defer f.Close() //nolint:errcheck

	fx, err := Decode(f)
	if err != nil {
		return nil, err
	}
	return l.Apply(ctx, fx)
}

// trees are the self-referential parent columns that must stay acyclic.
var trees = map[string]string{
	"organisations": "parent_id",
	"programmes":    "parent_programme_id",
}

// Apply checks the whole fixture, then writes it. Nothing is written when a
// record is invalid, references an unknown record or closes a parent cycle.
func (l *Loader) Apply(ctx context.Context, fx *Fixture) (*Report, error) {
	batches := fx.batches(l.reg.Stores)

	ids, err := l.check(batches)
	if err != nil {
		return nil, err
	}
	if err := l.checkReferences(ctx, batches, ids); err != nil {
		return nil, err
	}
	if err := l.checkTrees(ctx, batches); err != nil {
		return nil, err
	}
	for _, d := range fx.Deleted {
		if err := l.validate.Validate(&d); err != nil {
			return nil, err
		}
	}

	rep := &Report{}
	for _, b := range batches {
		for i := range b.len() {
			inserted, err := b.upsert(ctx, i)
			if err != nil {
				return rep, err
			}
			if inserted {
				rep.Inserted++
			} else {
				rep.Updated++
			}
		}
	}
	for _, d := range fx.Deleted {
		ok, err := l.Delete(ctx, d.ResourceType, d.ID)
		if err != nil {
			return rep, err
		}
		if ok {
			rep.Deleted++
		}
	}
	l.logger.InfoContext(ctx, "fixture applied", "inserted", rep.Inserted, "updated", rep.Updated, "deleted", rep.Deleted)
	return rep, nil
}

// check validates every record and collects the fixture ids per resource.
func (l *Loader) check(batches []batch) (map[string]map[string]bool, error) {
	ids := make(map[string]map[string]bool, len(batches))
	for _, b := range batches {
		seen := make(map[string]bool, b.len())
		for i := range b.len() {
			if err := l.validate.Validate(b.record(i)); err != nil {
				return nil, domain.ErrValidation("%s[%d]: %v", b.path(), i, err)
			}
			id := b.id(i)
			if id == "" {
				continue
			}
			if seen[id] {
				return nil, domain.ErrValidation("%s: duplicate id %q", b.path(), id)
			}
			seen[id] = true
		}
		ids[b.path()] = seen
	}
	return ids, nil
}

// checkReferences requires every reference to name a record of the fixture
// or of the store.
func (l *Loader) checkReferences(ctx context.Context, batches []batch, ids map[string]map[string]bool) error {
	stored := map[string]bool{}
	exists := func(target, id string) (bool, error) {
		if ids[target][id] {
			return true, nil
		}
		key := target + "/" + id
		if ok, cached := stored[key]; cached {
			return ok, nil
		}
		def, err := l.reg.Get(target)
		if err != nil {
			return false, err
		}
		_, err = def.Source.GetByID(ctx, id)
		var nf *domain.NotFoundError
		switch {
		case err == nil:
			stored[key] = true
		case errors.As(err, &nf):
			stored[key] = false
		default:
			return false, err
		}
		return stored[key], nil
	}

	for _, b := range batches {
		def, err := l.reg.Get(b.path())
		if err != nil {
			return err
		}
		for i := range b.len() {
			get := b.getter(i)
			for _, ref := range def.References {
				id, _ := get(ref.Field).(string)
				if id == "" {
					continue
				}
				ok, err := exists(ref.Target, id)
				if err != nil {
					return err
				}
				if !ok {
					return domain.ErrValidation("%s[%d]: %s references unknown %s %q", b.path(), i, ref.Field, ref.Target, id)
				}
			}
		}
	}
	return nil
}

// checkTrees rejects parent assignments that would close a cycle, applying
// the fixture's assignments on top of the stored tree in order.
func (l *Loader) checkTrees(ctx context.Context, batches []batch) error {
	for _, b := range batches {
		column, ok := trees[b.path()]
		if !ok || b.len() == 0 {
			continue
		}
		def, err := l.reg.Get(b.path())
		if err != nil {
			return err
		}
		items, err := def.Source.Find(ctx, filter.Query{})
		if err != nil {
			return err
		}
		parents := make(map[string]string, len(items))
		for _, it := range items {
			parent, _ := it.Get(column).(string)
			parents[it.ID()] = parent
		}
		tree := domain.NewTree(parents)
		for i := range b.len() {
			id := b.id(i)
			parent, _ := b.getter(i)(column).(string)
			if id == "" {
				continue
			}
			if err := tree.SetParent(id, parent); err != nil {
				return err
			}
		}
	}
	return nil
}

// Delete removes a record, leaving a tombstone and a log line. It reports
// whether the record existed; deleting a missing record writes nothing.
func (l *Loader) Delete(ctx context.Context, resourceType, id string) (bool, error) {
	def, err := l.reg.Get(resourceType)
	if err != nil {
		return false, domain.ErrValidation("unknown resource type %q", resourceType)
	}
	ok, err := def.Source.Delete(ctx, id)
	if err != nil || !ok {
		return false, err
	}
	now := l.now().UTC()
	if _, err := l.reg.Stores.DeletedEntities.Insert(ctx, &domain.DeletedEntity{
		ResourceType: def.Path,
		EntityID:     id,
		DeletedAt:    now,
	}); err != nil {
		return true, fmt.Errorf("record tombstone: %w", err)
	}
	if _, err := l.reg.Stores.Logs.Insert(ctx, &domain.Log{
		LogMessage: fmt.Sprintf("deleted %s %s", def.Path, id),
		Timestamp:  now,
	}); err != nil {
		return true, fmt.Errorf("record deletion log: %w", err)
	}
	l.logger.InfoContext(ctx, "record deleted", "resource", def.Path, "id", id)
	return true, nil
}
