// Package filter defines the predicate tree evaluated by every record store
// backend. The memory store walks it with Match; the SQL store compiles it to
// a WHERE clause. Field names always come from static column tables, never
// from caller input.
package filter

import "strings"

// SetDelimiter joins the tokens of a multi-valued column at the store boundary.
const SetDelimiter = ","

// Predicate is a node in a filter tree. A nil Predicate matches everything.
type Predicate interface {
	isPredicate()
}

// And matches when every child matches. An empty And matches everything.
type And []Predicate

// Or matches when at least one child matches. An empty Or matches nothing.
type Or []Predicate

// Eq matches records whose field equals Value.
type Eq struct {
	Field string
	Value any
}

// In matches records whose field equals any of Values.
type In struct {
	Field  string
	Values []any
}

// Op is a range comparison operator.
type Op int

const (
	Lt Op = iota
	Le
	Gt
	Ge
)

// String returns the SQL spelling of the operator.
func (o Op) String() string {
	switch o {
	case Lt:
		return "<"
	case Le:
		return "<="
	case Gt:
		return ">"
	default:
		return ">="
	}
}

// Cmp is a range comparison. With OrNull set, a NULL field also matches;
// open-ended validity intervals rely on this.
type Cmp struct {
	Field  string
	Op     Op
	Value  any
	OrNull bool
}

// IsNull matches records whose field is NULL.
type IsNull struct {
	Field string
}

// SetContainsAny matches when any decoded token of a delimited column equals
// any of Values.
type SetContainsAny struct {
	Field  string
	Values []string
}

// ContainsFold matches when Token is a case-insensitive substring of at least
// one of Fields.
type ContainsFold struct {
	Fields []string
	Token  string
}

// Related matches when Field equals Column of at least one row of Table that
// satisfies Where.
type Related struct {
	Field  string
	Table  string
	Column string
	Where  Predicate
}

func (And) isPredicate()            {}
func (Or) isPredicate()             {}
func (Eq) isPredicate()             {}
func (In) isPredicate()             {}
func (Cmp) isPredicate()            {}
func (IsNull) isPredicate()         {}
func (SetContainsAny) isPredicate() {}
func (ContainsFold) isPredicate()   {}
func (Related) isPredicate()        {}

// All conjoins the non-nil predicates. It returns nil when none remain so the
// caller can tell an unconstrained query apart.
func All(preds ...Predicate) Predicate {
	out := make(And, 0, len(preds))
	for _, p := range preds {
		if p == nil {
			continue
		}
		if nested, ok := p.(And); ok {
			out = append(out, nested...)
			continue
		}
		out = append(out, p)
	}
	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	default:
		return out
	}
}

// InStrings builds an In predicate over string values.
func InStrings(field string, values []string) In {
	vals := make([]any, len(values))
	for i, v := range values {
		vals[i] = v
	}
	return In{Field: field, Values: vals}
}

// SplitSet decodes a delimited column value into its tokens. Surrounding
// whitespace is trimmed and empty tokens are dropped.
func SplitSet(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, SetDelimiter)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Direction is a sort direction.
type Direction int

const (
	Asc Direction = iota
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

// Order is one (field, direction) sort term.
type Order struct {
	Field     string
	Direction Direction
}

// Query is the full request a store evaluates: filter, ordering and window.
// A Limit of zero means no limit.
type Query struct {
	Where  Predicate
	Order  []Order
	Offset int
	Limit  int
}
