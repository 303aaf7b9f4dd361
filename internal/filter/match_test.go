package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type row map[string]any

func (r row) get(field string) any { return r[field] }

type tables map[string][]row

func (t tables) Rows(table string) []Getter {
	out := make([]Getter, 0, len(t[table]))
	for _, r := range t[table] {
		out = append(out, r.get)
	}
	return out
}

func date(s string) time.Time {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestMatch_SetContainsAnyDecodesTokens(t *testing.T) {
	school := row{"school_types": "Grundskola,Gymnasium"}

	tests := []struct {
		name   string
		values []string
		want   bool
	}{
		{"second token", []string{"Gymnasium"}, true},
		{"first token", []string{"Grundskola"}, true},
		{"prefix of token", []string{"Gymnas"}, false},
		{"any of many", []string{"Förskola", "Gymnasium"}, true},
		{"none", []string{"Förskola"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := SetContainsAny{Field: "school_types", Values: tt.values}
			assert.Equal(t, tt.want, Match(p, school.get, nil))
		})
	}
}

func TestMatch_SetContainsAnyDoesNotMatchLongerToken(t *testing.T) {
	r := row{"programmes": "NVX, TE"}
	assert.False(t, Match(SetContainsAny{Field: "programmes", Values: []string{"NV"}}, r.get, nil))
	assert.True(t, Match(SetContainsAny{Field: "programmes", Values: []string{"TE"}}, r.get, nil))
}

func TestMatch_CmpOrNull(t *testing.T) {
	open := row{"end_date": nil}
	closed := row{"end_date": date("2024-06-30")}

	onOrAfter := Cmp{Field: "end_date", Op: Ge, Value: date("2030-01-01"), OrNull: true}
	assert.True(t, Match(onOrAfter, open.get, nil))
	assert.False(t, Match(onOrAfter, closed.get, nil))

	strict := Cmp{Field: "end_date", Op: Le, Value: date("2099-01-01")}
	assert.False(t, Match(strict, open.get, nil))
	assert.True(t, Match(strict, closed.get, nil))
}

func TestMatch_ContainsFold(t *testing.T) {
	p := row{"display_name": "Anna Andersson", "given_name": "Anna", "family_name": nil}
	fields := []string{"display_name", "given_name", "family_name"}

	assert.True(t, Match(ContainsFold{Fields: fields, Token: "ANDERS"}, p.get, nil))
	assert.False(t, Match(ContainsFold{Fields: fields, Token: "berg"}, p.get, nil))

	both := All(ContainsFold{Fields: fields, Token: "ann"}, ContainsFold{Fields: fields, Token: "berg"})
	assert.False(t, Match(both, p.get, nil))
}

func TestMatch_Related(t *testing.T) {
	src := tables{
		"duties": {
			{"person_id": "p1", "organisation_id": "o1"},
			{"person_id": "p2", "organisation_id": "o2"},
		},
	}
	p := Related{Field: "id", Table: "duties", Column: "person_id", Where: Eq{Field: "organisation_id", Value: "o1"}}

	assert.True(t, Match(p, row{"id": "p1"}.get, src))
	assert.False(t, Match(p, row{"id": "p2"}.get, src))
	assert.False(t, Match(p, row{"id": "p3"}.get, src))
}

func TestMatch_EmptyCombinators(t *testing.T) {
	r := row{"name": "x"}
	assert.True(t, Match(nil, r.get, nil))
	assert.True(t, Match(And{}, r.get, nil))
	assert.False(t, Match(Or{}, r.get, nil))
	assert.False(t, Match(InStrings("name", nil), r.get, nil))
}

func TestAll_FlattensAndDropsNil(t *testing.T) {
	assert.Nil(t, All(nil, nil))

	single := Eq{Field: "a", Value: "1"}
	assert.Equal(t, single, All(nil, single))

	got := All(And{Eq{Field: "a", Value: "1"}}, Eq{Field: "b", Value: "2"})
	assert.Len(t, got, 2)
}

func TestCompare_NullsFirst(t *testing.T) {
	assert.Equal(t, 0, Compare(nil, nil))
	assert.Equal(t, -1, Compare(nil, "a"))
	assert.Equal(t, 1, Compare("a", nil))
	assert.Equal(t, -1, Compare(date("2020-01-01"), date("2021-01-01")))
	assert.Equal(t, 1, Compare(92.5, 80.0))
}

func TestLess_TieBreak(t *testing.T) {
	orders := []Order{{Field: "name", Direction: Desc}, {Field: "id", Direction: Asc}}
	a := row{"name": "b", "id": "2"}
	b := row{"name": "b", "id": "1"}
	c := row{"name": "a", "id": "0"}

	assert.True(t, Less(orders, b.get, a.get))
	assert.True(t, Less(orders, a.get, c.get))
	assert.False(t, Less(orders, c.get, a.get))
}

func TestSplitSet(t *testing.T) {
	assert.Nil(t, SplitSet(""))
	assert.Equal(t, []string{"a", "b"}, SplitSet(" a ,,b"))
}
