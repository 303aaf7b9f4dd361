package expand

import (
	"context"
	"errors"
	"time"

	"github.com/graph-gophers/dataloader"

	"ss12000-mock/internal/filter"
	"ss12000-mock/internal/resource"
)

// nameResolver batches reference-name lookups: one loader per target
// resource, so every referenced id of a response is fetched in a single
// store round trip per target.
type nameResolver struct {
	reg     *resource.Registry
	wait    time.Duration
	loaders map[string]*dataloader.Loader
}

func newNameResolver(reg *resource.Registry, wait time.Duration) *nameResolver {
	return &nameResolver{reg: reg, wait: wait, loaders: map[string]*dataloader.Loader{}}
}

// pendingName is a queued lookup whose result lands in view.Names[key].
type pendingName struct {
	view  *View
	key   string
	thunk dataloader.Thunk
}

// queue starts the lookups for every reference of views. NULL references
// resolve to a null name without a lookup.
func (r *nameResolver) queue(ctx context.Context, views []*View) []pendingName {
	var out []pendingName
	for _, v := range views {
		for _, ref := range v.def.References {
			id, ok := v.item.Get(ref.Field).(string)
			if !ok {
				v.setName(ref.Name, nil)
				continue
			}
			thunk := r.loader(ref.Target).Load(ctx, dataloader.StringKey(id))
			out = append(out, pendingName{view: v, key: ref.Name, thunk: thunk})
		}
	}
	return out
}

// resolve waits for the queued lookups and records their names. A dangling
// reference yields a null name.
func (r *nameResolver) resolve(pending []pendingName) error {
	var errs []error
	for _, p := range pending {
		data, err := p.thunk()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		name, _ := data.(*string)
		p.view.setName(p.key, name)
	}
	return errors.Join(errs...)
}

func (r *nameResolver) loader(target string) *dataloader.Loader {
	if l, ok := r.loaders[target]; ok {
		return l
	}
	l := dataloader.NewBatchedLoader(r.batchFn(target), dataloader.WithWait(r.wait))
	r.loaders[target] = l
	return l
}

func (r *nameResolver) batchFn(target string) dataloader.BatchFunc {
	return func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		results := make([]*dataloader.Result, len(keys))
		fail := func(err error) []*dataloader.Result {
			for i := range results {
				results[i] = &dataloader.Result{Error: err}
			}
			return results
		}

		def, err := r.reg.Get(target)
		if err != nil {
			return fail(err)
		}
		ids := make([]string, len(keys))
		for i, k := range keys {
			ids[i] = k.String()
		}
		items, err := def.Source.Find(ctx, filter.Query{Where: filter.InStrings("id", ids)})
		if err != nil {
			return fail(err)
		}

		names := make(map[string]*string, len(items))
		for _, it := range items {
			if s, ok := it.Get(def.NameColumn).(string); ok {
				names[it.ID()] = &s
			}
		}
		for i, k := range keys {
			results[i] = &dataloader.Result{Data: names[k.String()]}
		}
		return results
	}
}
