package query

import (
	"strings"
	"time"

	"ss12000-mock/internal/domain"
	"ss12000-mock/internal/filter"
)

// Filter is one list filter: the parameters it consumes and how it turns
// their values into a predicate. Build runs only when at least one of
// Params was supplied.
type Filter struct {
	Params []string
	Build  func(v Values) (filter.Predicate, error)
}

// Filters is the filter set of one resource.
type Filters []Filter

// ParamNames lists every parameter the filters consume.
func (fs Filters) ParamNames() []string {
	var names []string
	for _, f := range fs {
		names = append(names, f.Params...)
	}
	return names
}

// Build conjoins the predicates of every filter whose parameters are present.
// Validation errors surface before any store access.
func (fs Filters) Build(v Values) (filter.Predicate, error) {
	var preds []filter.Predicate
	for _, f := range fs {
		present := false
		for _, p := range f.Params {
			if v.Has(p) {
				present = true
				break
			}
		}
		if !present {
			continue
		}
		p, err := f.Build(v)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	return filter.All(preds...), nil
}

// OneOf matches records whose column equals any supplied value.
func OneOf(param, column string) Filter {
	return Filter{Params: []string{param}, Build: func(v Values) (filter.Predicate, error) {
		return filter.InStrings(column, v.List(param)), nil
	}}
}

// Exact matches records whose column equals the single supplied value.
func Exact(param, column string) Filter {
	return Filter{Params: []string{param}, Build: func(v Values) (filter.Predicate, error) {
		val, err := single(v, param)
		if err != nil {
			return nil, err
		}
		return filter.Eq{Field: column, Value: val}, nil
	}}
}

// EnumOneOf is OneOf with every value checked against accepted.
func EnumOneOf[E ~string](param, column string, accepted []E) Filter {
	return Filter{Params: []string{param}, Build: func(v Values) (filter.Predicate, error) {
		vals, err := enumValues(param, v.List(param), accepted)
		if err != nil {
			return nil, err
		}
		return filter.InStrings(column, vals), nil
	}}
}

// SetContains matches delimited columns holding any of the supplied values.
func SetContains(param, column string) Filter {
	return Filter{Params: []string{param}, Build: func(v Values) (filter.Predicate, error) {
		return filter.SetContainsAny{Field: column, Values: v.List(param)}, nil
	}}
}

// EnumSetContains is SetContains with every value checked against accepted.
func EnumSetContains[E ~string](param, column string, accepted []E) Filter {
	return Filter{Params: []string{param}, Build: func(v Values) (filter.Predicate, error) {
		vals, err := enumValues(param, v.List(param), accepted)
		if err != nil {
			return nil, err
		}
		return filter.SetContainsAny{Field: column, Values: vals}, nil
	}}
}

// DateBound compares a date column against the supplied date. With openEnded
// set, a NULL column satisfies the bound.
func DateBound(param, column string, op filter.Op, openEnded bool) Filter {
	return Filter{Params: []string{param}, Build: func(v Values) (filter.Predicate, error) {
		d, err := parseDateParam(v, param)
		if err != nil {
			return nil, err
		}
		return filter.Cmp{Field: column, Op: op, Value: d.Time, OrNull: openEnded}, nil
	}}
}

// TimeBound compares a timestamp column against the supplied instant.
func TimeBound(param, column string, op filter.Op) Filter {
	return Filter{Params: []string{param}, Build: func(v Values) (filter.Predicate, error) {
		ts, err := parseTimeParam(v, param)
		if err != nil {
			return nil, err
		}
		return filter.Cmp{Field: column, Op: op, Value: ts}, nil
	}}
}

// Validity returns the four start/end date filters. endDate.onOrAfter always
// lets a NULL end date through; openBefore does the same for
// endDate.onOrBefore.
func Validity(openBefore bool) Filters {
	return Filters{
		DateBound("startDate.onOrBefore", "start_date", filter.Le, false),
		DateBound("startDate.onOrAfter", "start_date", filter.Ge, false),
		DateBound("endDate.onOrBefore", "end_date", filter.Le, openBefore),
		DateBound("endDate.onOrAfter", "end_date", filter.Ge, true),
	}
}

// Meta returns the created/modified filters every resource accepts. Bounds
// are strict.
func Meta() Filters {
	return Filters{
		TimeBound("meta.created.before", "created", filter.Lt),
		TimeBound("meta.created.after", "created", filter.Gt),
		TimeBound("meta.modified.before", "modified", filter.Lt),
		TimeBound("meta.modified.after", "modified", filter.Gt),
	}
}

// NameContains requires every supplied token to appear, case-insensitively,
// in at least one of columns.
func NameContains(param string, columns ...string) Filter {
	return Filter{Params: []string{param}, Build: func(v Values) (filter.Predicate, error) {
		var preds []filter.Predicate
		for _, tok := range v[param] {
			if tok = strings.TrimSpace(tok); tok != "" {
				preds = append(preds, filter.ContainsFold{Fields: columns, Token: tok})
			}
		}
		return filter.All(preds...), nil
	}}
}

func single(v Values, param string) (string, error) {
	vals := v[param]
	for _, other := range vals[1:] {
		if other != vals[0] {
			return "", domain.ErrValidation("parameter %s accepts a single value", param)
		}
	}
	return strings.TrimSpace(vals[0]), nil
}

func enumValues[E ~string](param string, raw []string, accepted []E) ([]string, error) {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		e, err := domain.ParseEnum(param, r, accepted)
		if err != nil {
			return nil, err
		}
		out = append(out, string(e))
	}
	return out, nil
}

func parseDateParam(v Values, param string) (domain.Date, error) {
	raw, err := single(v, param)
	if err != nil {
		return domain.Date{}, err
	}
	d, err := domain.ParseDate(raw)
	if err != nil {
		return domain.Date{}, domain.ErrValidation("%s: %v", param, err)
	}
	return d, nil
}

func parseTimeParam(v Values, param string) (time.Time, error) {
	raw, err := single(v, param)
	if err != nil {
		return time.Time{}, err
	}
	if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return ts.UTC(), nil
	}
	if d, err := domain.ParseDate(raw); err == nil {
		return d.Time, nil
	}
	return time.Time{}, domain.ErrValidation("%s: invalid timestamp %q: expected RFC 3339", param, raw)
}
