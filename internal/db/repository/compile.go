package repository

import (
	"fmt"
	"strings"

	"ss12000-mock/internal/db"
	"ss12000-mock/internal/filter"
)

// builder accumulates SQL text and its bind arguments.
type builder struct {
	dialect db.Dialect
	sb      strings.Builder
	args    []any
}

func newBuilder(d db.Dialect) *builder {
	return &builder{dialect: d}
}

func (b *builder) write(parts ...string) {
	for _, p := range parts {
		b.sb.WriteString(p)
	}
}

func (b *builder) bind(v any) {
	b.args = append(b.args, v)
	b.sb.WriteString(b.dialect.Placeholder(len(b.args)))
}

func (b *builder) String() string { return b.sb.String() }

// where appends " WHERE <p>" unless p is nil.
func (b *builder) where(p filter.Predicate) error {
	if p == nil {
		return nil
	}
	b.write(" WHERE ")
	return b.predicate(p)
}

func (b *builder) predicate(p filter.Predicate) error {
	switch n := p.(type) {
	case nil:
		b.write("1 = 1")
	case filter.And:
		return b.join(" AND ", "1 = 1", n)
	case filter.Or:
		return b.join(" OR ", "1 = 0", n)
	case filter.Eq:
		b.write(quote(n.Field), " = ")
		b.bind(n.Value)
	case filter.In:
		if len(n.Values) == 0 {
			b.write("1 = 0")
			return nil
		}
		b.write(quote(n.Field), " IN (")
		for i, v := range n.Values {
			if i > 0 {
				b.write(", ")
			}
			b.bind(v)
		}
		b.write(")")
	case filter.Cmp:
		if n.OrNull {
			b.write("(", quote(n.Field), " IS NULL OR ")
		}
		b.write(quote(n.Field), " ", n.Op.String(), " ")
		b.bind(n.Value)
		if n.OrNull {
			b.write(")")
		}
	case filter.IsNull:
		b.write(quote(n.Field), " IS NULL")
	case filter.SetContainsAny:
		if len(n.Values) == 0 {
			b.write("1 = 0")
			return nil
		}
		b.write("(")
		for i, v := range n.Values {
			if i > 0 {
				b.write(" OR ")
			}
			b.write("(',' || COALESCE(", quote(n.Field), ", '') || ',') LIKE ")
			b.bind("%" + filter.SetDelimiter + escapeLike(v) + filter.SetDelimiter + "%")
			b.write(` ESCAPE '\'`)
		}
		b.write(")")
	case filter.ContainsFold:
		if len(n.Fields) == 0 {
			b.write("1 = 0")
			return nil
		}
		needle := "%" + escapeLike(strings.ToLower(n.Token)) + "%"
		b.write("(")
		for i, f := range n.Fields {
			if i > 0 {
				b.write(" OR ")
			}
			b.write("LOWER(COALESCE(", quote(f), ", '')) LIKE ")
			b.bind(needle)
			b.write(` ESCAPE '\'`)
		}
		b.write(")")
	case filter.Related:
		b.write(quote(n.Field), " IN (SELECT ", quote(n.Column), " FROM ", quote(n.Table))
		if err := b.where(n.Where); err != nil {
			return err
		}
		b.write(")")
	default:
		return fmt.Errorf("compile predicate: unsupported node %T", p)
	}
	return nil
}

func (b *builder) join(sep, empty string, children []filter.Predicate) error {
	if len(children) == 0 {
		b.write(empty)
		return nil
	}
	b.write("(")
	for i, c := range children {
		if i > 0 {
			b.write(sep)
		}
		if err := b.predicate(c); err != nil {
			return err
		}
	}
	b.write(")")
	return nil
}

// orderBy appends the ORDER BY clause. NULLs sort first ascending and last
// descending, matching filter.Compare.
func (b *builder) orderBy(orders []filter.Order) {
	if len(orders) == 0 {
		return
	}
	b.write(" ORDER BY ")
	for i, o := range orders {
		if i > 0 {
			b.write(", ")
		}
		b.write(quote(o.Field), " ", o.Direction.String())
		if o.Direction == filter.Desc {
			b.write(" NULLS LAST")
		} else {
			b.write(" NULLS FIRST")
		}
	}
}

func (b *builder) window(limit, offset int) {
	switch {
	case limit > 0:
		b.write(" LIMIT ")
		b.bind(limit)
	case offset > 0:
		b.write(" LIMIT ", b.dialect.NoLimit())
	}
	if offset > 0 {
		b.write(" OFFSET ")
		b.bind(offset)
	}
}

func columnList(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quote(n)
	}
	return strings.Join(quoted, ", ")
}

func placeholders(d db.Dialect, from, n int) string {
	ph := make([]string, n)
	for i := range ph {
		ph[i] = d.Placeholder(from + i)
	}
	return strings.Join(ph, ", ")
}
