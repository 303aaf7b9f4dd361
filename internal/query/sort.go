package query

import (
	"sort"
	"strings"

	"ss12000-mock/internal/domain"
	"ss12000-mock/internal/filter"
)

// sortKeys maps every recognized sort key to its column and direction.
var sortKeys = func() map[string]filter.Order {
	fields := map[string]string{
		"Modified":    "modified",
		"Created":     "created",
		"DisplayName": "display_name",
		"GivenName":   "given_name",
		"FamilyName":  "family_name",
		"CivicNo":     "civic_no",
		"Name":        "name",
		"StartDate":   "start_date",
		"EndDate":     "end_date",
	}
	keys := make(map[string]filter.Order, 2*len(fields))
	for prefix, column := range fields {
		keys[prefix+"Asc"] = filter.Order{Field: column, Direction: filter.Asc}
		keys[prefix+"Desc"] = filter.Order{Field: column, Direction: filter.Desc}
	}
	return keys
}()

// Sorter resolves sort keys for one resource. The keys valid for the
// resource are computed once from its column table.
type Sorter struct {
	resource string
	allowed  map[string]filter.Order
	fallback []filter.Order
}

// NewSorter builds the sort table of a resource. has reports whether the
// resource has a column; defaultKey, when non-empty, must be one of the
// resource's valid keys.
func NewSorter(resource string, has func(column string) bool, defaultKey string) *Sorter {
	s := &Sorter{resource: resource, allowed: map[string]filter.Order{}}
	for key, o := range sortKeys {
		if has(o.Field) {
			s.allowed[key] = o
		}
	}
	if defaultKey != "" {
		o, ok := s.allowed[defaultKey]
		if !ok {
			panic("query: default sort key " + defaultKey + " is not valid for " + resource)
		}
		s.fallback = []filter.Order{o}
	} else {
		s.fallback = []filter.Order{{Field: "created", Direction: filter.Asc}}
	}
	return s
}

// Resolve maps key to an ordering. An empty key yields the resource default.
// The returned ordering always ends with id so ties break stably.
func (s *Sorter) Resolve(key string) ([]filter.Order, error) {
	if key == "" {
		return withTieBreak(s.fallback), nil
	}
	o, ok := s.allowed[key]
	if !ok {
		if _, known := sortKeys[key]; known {
			return nil, domain.ErrValidation("sortkey %s is not valid for %s", key, s.resource)
		}
		return nil, domain.ErrValidation("invalid sortkey %q: expected one of %s", key, strings.Join(s.Keys(), ", "))
	}
	return withTieBreak([]filter.Order{o}), nil
}

// Keys lists the keys valid for the resource, sorted.
func (s *Sorter) Keys() []string {
	keys := make([]string, 0, len(s.allowed))
	for k := range s.allowed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func withTieBreak(orders []filter.Order) []filter.Order {
	out := append([]filter.Order(nil), orders...)
	return append(out, filter.Order{Field: "id", Direction: filter.Asc})
}
