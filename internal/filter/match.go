package filter

import (
	"fmt"
	"strings"
	"time"
)

// Getter reads a column value from a record. NULL columns read as nil.
type Getter func(field string) any

// RowSource exposes the rows of other tables to Related predicates.
type RowSource interface {
	Rows(table string) []Getter
}

// Match evaluates p against a single record.
func Match(p Predicate, get Getter, src RowSource) bool {
	switch n := p.(type) {
	case nil:
		return true
	case And:
		for _, c := range n {
			if !Match(c, get, src) {
				return false
			}
		}
		return true
	case Or:
		for _, c := range n {
			if Match(c, get, src) {
				return true
			}
		}
		return false
	case Eq:
		v := get(n.Field)
		return v != nil && Compare(v, n.Value) == 0
	case In:
		v := get(n.Field)
		if v == nil {
			return false
		}
		for _, want := range n.Values {
			if Compare(v, want) == 0 {
				return true
			}
		}
		return false
	case Cmp:
		v := get(n.Field)
		if v == nil {
			return n.OrNull
		}
		c := Compare(v, n.Value)
		switch n.Op {
		case Lt:
			return c < 0
		case Le:
			return c <= 0
		case Gt:
			return c > 0
		default:
			return c >= 0
		}
	case IsNull:
		return get(n.Field) == nil
	case SetContainsAny:
		raw, _ := get(n.Field).(string)
		for _, tok := range SplitSet(raw) {
			for _, want := range n.Values {
				if tok == want {
					return true
				}
			}
		}
		return false
	case ContainsFold:
		needle := strings.ToLower(n.Token)
		for _, f := range n.Fields {
			if s, ok := get(f).(string); ok && strings.Contains(strings.ToLower(s), needle) {
				return true
			}
		}
		return false
	case Related:
		v := get(n.Field)
		if v == nil || src == nil {
			return false
		}
		for _, row := range src.Rows(n.Table) {
			if Compare(row(n.Column), v) == 0 && Match(n.Where, row, src) {
				return true
			}
		}
		return false
	default:
		panic(fmt.Sprintf("filter: unsupported predicate %T", p))
	}
}

// Compare orders two column values. NULL sorts before every non-NULL value.
// Values of different kinds fall back to comparing their string forms.
func Compare(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y)
		}
	case time.Time:
		if y, ok := b.(time.Time); ok {
			return x.Compare(y)
		}
	case float64:
		if y, ok := b.(float64); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			default:
				return 0
			}
		}
	case int64:
		if y, ok := b.(int64); ok {
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// Less reports whether record a sorts before record b under orders.
func Less(orders []Order, a, b Getter) bool {
	for _, o := range orders {
		c := Compare(a(o.Field), b(o.Field))
		if o.Direction == Desc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
	}
	return false
}
