// Package endpoint implements the read operations shared by every resource:
// list, get by id, lookup and per-resource counts.
package endpoint

import (
	"context"
	"log/slog"
	"net/url"

	"ss12000-mock/internal/filter"
	"ss12000-mock/internal/query"
	"ss12000-mock/internal/resource"
	"ss12000-mock/internal/service/expand"
)

// ListRequest carries the decoded parameters of a list call. Params holds the
// raw query string; unrecognized parameters are ignored.
type ListRequest struct {
	Params    url.Values
	SortKey   string
	PageToken string
	Limit     int
	Offset    int
	Expand    expand.Options
}

// Page is one window of a list result.
type Page struct {
	Data       []*expand.View
	TotalCount int64
	Limit      int
	Offset     int
	PageToken  string
}

// Service serves the resources of a registry.
type Service struct {
	reg    *resource.Registry
	engine *expand.Engine
	logger *slog.Logger
}

// NewService creates a Service.
func NewService(reg *resource.Registry, engine *expand.Engine, logger *slog.Logger) *Service {
	return &Service{reg: reg, engine: engine, logger: logger.With("component", "endpoint")}
}

// List validates the request, then returns the requested window of matching
// records. Every validation error surfaces before the store is queried.
func (s *Service) List(ctx context.Context, path string, req ListRequest) (*Page, error) {
	def, err := s.reg.Get(path)
	if err != nil {
		return nil, err
	}
	params := query.Normalize(req.Params, def.Params())
	w, err := query.Gate(def.Path, params, req.SortKey, req.PageToken, req.Limit, req.Offset)
	if err != nil {
		return nil, err
	}
	where, err := def.Filters.Build(w.Params)
	if err != nil {
		return nil, err
	}
	order, err := def.Sorter.Resolve(w.SortKey)
	if err != nil {
		return nil, err
	}
	if err := def.CheckExpand(req.Expand.Relations); err != nil {
		return nil, err
	}

	total, err := def.Source.Count(ctx, where)
	if err != nil {
		return nil, err
	}
	items, err := def.Source.Find(ctx, filter.Query{Where: where, Order: order, Offset: w.Offset, Limit: w.Limit})
	if err != nil {
		return nil, err
	}
	views := expand.NewViews(def, items)
	if err := s.engine.Expand(ctx, def, views, req.Expand); err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "list", "resource", def.Path, "total", total, "returned", len(views), "offset", w.Offset)
	return &Page{
		Data:       views,
		TotalCount: total,
		Limit:      w.Limit,
		Offset:     w.Offset,
		PageToken:  w.NextToken(def.Path, total),
	}, nil
}

// Get returns one record.
func (s *Service) Get(ctx context.Context, path, id string, opts expand.Options) (*expand.View, error) {
	def, err := s.reg.Get(path)
	if err != nil {
		return nil, err
	}
	if err := def.CheckID(id); err != nil {
		return nil, err
	}
	if err := def.CheckExpand(opts.Relations); err != nil {
		return nil, err
	}
	item, err := def.Source.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	views := []*expand.View{expand.NewView(def, item)}
	if err := s.engine.Expand(ctx, def, views, opts); err != nil {
		return nil, err
	}
	return views[0], nil
}

// Lookup returns the records matching any of ids, in the resource's default
// order. Persons also match on civic number. No ids means no records.
func (s *Service) Lookup(ctx context.Context, path string, ids []string, opts expand.Options) ([]*expand.View, error) {
	def, err := s.reg.Get(path)
	if err != nil {
		return nil, err
	}
	if err := def.CheckExpand(opts.Relations); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []*expand.View{}, nil
	}
	order, err := def.Sorter.Resolve("")
	if err != nil {
		return nil, err
	}
	items, err := def.Source.Find(ctx, filter.Query{Where: def.LookupPredicate(ids), Order: order})
	if err != nil {
		return nil, err
	}
	views := expand.NewViews(def, items)
	if err := s.engine.Expand(ctx, def, views, opts); err != nil {
		return nil, err
	}
	return views, nil
}

// Statistics counts the records of every resource. The meta filters in
// params apply to each count; other parameters are ignored.
func (s *Service) Statistics(ctx context.Context, params url.Values) (map[string]int64, error) {
	meta := query.Meta()
	where, err := meta.Build(query.Normalize(params, meta.ParamNames()))
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(s.reg.Paths()))
	for _, path := range s.reg.Paths() {
		def, err := s.reg.Get(path)
		if err != nil {
			return nil, err
		}
		n, err := def.Source.Count(ctx, where)
		if err != nil {
			return nil, err
		}
		counts[path] = n
	}
	return counts, nil
}
