package query

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ss12000-mock/internal/domain"
	"ss12000-mock/internal/filter"
)

func TestNormalize_Aliases(t *testing.T) {
	raw := url.Values{
		"metaCreatedBefore": {"2024-01-01T00:00:00Z"},
		"parent":            {"org-1", ""},
		"unknown":           {"x"},
	}
	v := Normalize(raw, []string{"meta.created.before", "parent", "type"})

	assert.Equal(t, Values{
		"meta.created.before": {"2024-01-01T00:00:00Z"},
		"parent":              {"org-1"},
	}, v)
}

func TestAlias(t *testing.T) {
	assert.Equal(t, "metaModifiedAfter", Alias("meta.modified.after"))
	assert.Equal(t, "relationshipEntityType", Alias("relationship.entity.type"))
	assert.Equal(t, "parent", Alias("parent"))
}

func TestValues_ListSplitsCommas(t *testing.T) {
	v := Values{"schoolTypes": {"Grundskola, Gymnasium", "Förskola"}}
	assert.Equal(t, []string{"Grundskola", "Gymnasium", "Förskola"}, v.List("schoolTypes"))
}

func TestFilters_BuildConjoinsPresentFilters(t *testing.T) {
	fs := append(Filters{
		OneOf("parent", "parent_id"),
		EnumOneOf("type", "type", domain.OrganisationTypes),
	}, Meta()...)

	p, err := fs.Build(Values{})
	require.NoError(t, err)
	assert.Nil(t, p)

	p, err = fs.Build(Values{"parent": {"org-1"}, "meta.created.after": {"2020-01-01T00:00:00+02:00"}})
	require.NoError(t, err)
	and, ok := p.(filter.And)
	require.True(t, ok)
	require.Len(t, and, 2)
	assert.Equal(t, filter.InStrings("parent_id", []string{"org-1"}), and[0])
	assert.Equal(t, filter.Cmp{
		Field: "created",
		Op:    filter.Gt,
		Value: time.Date(2019, 12, 31, 22, 0, 0, 0, time.UTC),
	}, and[1])
}

func TestFilters_RejectsUnknownEnumValue(t *testing.T) {
	fs := Filters{EnumOneOf("dutyRole", "duty_role", domain.DutyRoles)}
	_, err := fs.Build(Values{"dutyRole": {"Teacher,Janitor"}})
	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestFilters_RejectsMalformedDates(t *testing.T) {
	fs := Validity(false)
	_, err := fs.Build(Values{"startDate.onOrAfter": {"yesterday"}})
	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)

	_, err = Meta().Build(Values{"meta.modified.before": {"soon"}})
	assert.ErrorAs(t, err, &validationErr)
}

func TestExact_RejectsConflictingValues(t *testing.T) {
	fs := Filters{Exact("civicNo", "civic_no")}
	_, err := fs.Build(Values{"civicNo": {"a", "b"}})
	assert.Error(t, err)

	p, err := fs.Build(Values{"civicNo": {"a", "a"}})
	require.NoError(t, err)
	assert.Equal(t, filter.Eq{Field: "civic_no", Value: "a"}, p)
}

func TestValidity_EndDateNullHandling(t *testing.T) {
	closed := Validity(false)
	p, err := closed.Build(Values{"endDate.onOrBefore": {"2099-01-01"}, "endDate.onOrAfter": {"2000-01-01"}})
	require.NoError(t, err)
	and := p.(filter.And)
	assert.False(t, and[0].(filter.Cmp).OrNull)
	assert.True(t, and[1].(filter.Cmp).OrNull)

	open := Validity(true)
	p, err = open.Build(Values{"endDate.onOrBefore": {"2099-01-01"}})
	require.NoError(t, err)
	assert.True(t, p.(filter.Cmp).OrNull)
}

func TestNameContains_TokensAreAnded(t *testing.T) {
	fs := Filters{NameContains("nameContains", "display_name", "given_name")}
	p, err := fs.Build(Values{"nameContains": {"an", "ers"}})
	require.NoError(t, err)

	and, ok := p.(filter.And)
	require.True(t, ok)
	assert.Len(t, and, 2)
}
