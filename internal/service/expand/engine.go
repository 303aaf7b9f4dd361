package expand

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"ss12000-mock/internal/filter"
	"ss12000-mock/internal/resource"
)

// Options selects the expansions of a request.
type Options struct {
	Relations      []string
	ReferenceNames bool
}

// Engine expands views using the stores of a registry.
type Engine struct {
	reg         *resource.Registry
	logger      *slog.Logger
	batchWait   time.Duration
	parallelism int
}

// NewEngine creates an engine over reg.
func NewEngine(reg *resource.Registry, logger *slog.Logger) *Engine {
	return &Engine{
		reg:         reg,
		logger:      logger.With("component", "expand"),
		batchWait:   time.Millisecond,
		parallelism: 4,
	}
}

// Expand applies opts to views, which must all be records of def. Every
// relation is fetched with one batched store query; reference names are
// resolved through per-call batching loaders. Running Expand again on the
// same views replaces the expansions rather than adding to them.
func (e *Engine) Expand(ctx context.Context, def *resource.Definition, views []*View, opts Options) error {
	if err := def.CheckExpand(opts.Relations); err != nil {
		return err
	}
	if len(views) == 0 {
		return nil
	}

	attached := make([][]any, len(opts.Relations))
	nested := make([][]*View, len(opts.Relations))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.parallelism)
	for i, name := range opts.Relations {
		g.Go(func() error {
			vals, related, err := e.fetchRelation(gctx, def.Relations[name], views)
			if err != nil {
				return fmt.Errorf("expand %s.%s: %w", def.Name, name, err)
			}
			attached[i], nested[i] = vals, related
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for i, name := range opts.Relations {
		for j, v := range views {
			v.setRelation(name, attached[i][j])
		}
	}

	if !opts.ReferenceNames {
		return nil
	}
	names := newNameResolver(e.reg, e.batchWait)
	pending := names.queue(ctx, views)
	for _, related := range nested {
		pending = append(pending, names.queue(ctx, related)...)
	}
	return names.resolve(pending)
}

// fetchRelation loads the targets of rel for every view. It returns, per
// view, the value to attach plus every related view for name resolution.
func (e *Engine) fetchRelation(ctx context.Context, rel resource.Relation, views []*View) ([]any, []*View, error) {
	target, err := e.reg.Get(rel.Target)
	if err != nil {
		return nil, nil, err
	}

	var keys []string
	seen := map[string]bool{}
	for _, v := range views {
		if k, ok := v.item.Get(rel.Local).(string); ok && !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}

	byKey := map[string][]*View{}
	var related []*View
	if len(keys) > 0 {
		order, err := target.Sorter.Resolve("")
		if err != nil {
			return nil, nil, err
		}
		items, err := target.Source.Find(ctx, filter.Query{Where: filter.InStrings(rel.Foreign, keys), Order: order})
		if err != nil {
			return nil, nil, err
		}
		for _, it := range items {
			k, _ := it.Get(rel.Foreign).(string)
			rv := NewView(target, it)
			byKey[k] = append(byKey[k], rv)
			related = append(related, rv)
		}
	}

	out := make([]any, len(views))
	for i, v := range views {
		k, _ := v.item.Get(rel.Local).(string)
		matches := byKey[k]
		if rel.Many {
			list := make([]*View, len(matches))
			copy(list, matches)
			out[i] = list
			continue
		}
		var one *View
		if len(matches) > 0 {
			one = matches[0]
		}
		out[i] = one
	}
	e.logger.DebugContext(ctx, "relation expanded", "relation", rel.Name, "target", rel.Target, "keys", len(keys), "rows", len(related))
	return out, related, nil
}
