package resource

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ss12000-mock/internal/db/memory"
	"ss12000-mock/internal/domain"
	"ss12000-mock/internal/filter"
	"ss12000-mock/internal/query"
)

func newRegistry(t *testing.T) *Registry {
	t.Helper()
	return NewRegistry(OpenStores(MemoryBackend(memory.NewDB())))
}

func TestRegistry_AllResourcesDefined(t *testing.T) {
	reg := newRegistry(t)
	paths := reg.Paths()
	assert.Len(t, paths, 25)
	assert.Contains(t, paths, "persons")
	assert.Contains(t, paths, "subscriptions")

	_, err := reg.Get("unknown")
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestDefinition_CheckExpand(t *testing.T) {
	reg := newRegistry(t)
	persons, err := reg.Get("persons")
	require.NoError(t, err)

	assert.NoError(t, persons.CheckExpand([]string{"duties", "placements"}))

	var validationErr *domain.ValidationError
	err = persons.CheckExpand([]string{"child"})
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, err.Error(), "groupMemberships")

	rooms, err := reg.Get("rooms")
	require.NoError(t, err)
	assert.ErrorAs(t, rooms.CheckExpand([]string{"anything"}), &validationErr)
	assert.NoError(t, rooms.CheckExpand(nil))
}

func TestDefinition_MetaFiltersAlwaysAccepted(t *testing.T) {
	reg := newRegistry(t)
	for _, path := range reg.Paths() {
		d, err := reg.Get(path)
		require.NoError(t, err)
		assert.Contains(t, d.Params(), "meta.created.before", path)
		assert.Contains(t, d.Params(), "meta.modified.after", path)
	}
}

func TestDefinition_PersonLookupMatchesCivicNumber(t *testing.T) {
	reg := newRegistry(t)
	ctx := context.Background()
	civic := "19800101-1234"
	p, err := reg.Stores.Persons.Insert(ctx, &domain.Person{DisplayName: "P", CivicNo: &civic, SecurityMarking: domain.SecurityMarkingNone})
	require.NoError(t, err)

	persons, err := reg.Get("persons")
	require.NoError(t, err)
	items, err := persons.Source.Find(ctx, filter.Query{Where: persons.LookupPredicate([]string{civic})})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, p.ID, items[0].ID())
}

func TestRelationshipFilter(t *testing.T) {
	reg := newRegistry(t)
	s := reg.Stores
	ctx := context.Background()

	person := func(id string) {
		_, err := s.Persons.Insert(ctx, &domain.Person{Meta: domain.Meta{ID: id}, DisplayName: id, SecurityMarking: domain.SecurityMarkingNone})
		require.NoError(t, err)
	}
	for _, id := range []string{"teacher", "student", "guardian", "member", "loner"} {
		person(id)
	}
	ended := domain.NewDate(2020, 6, 30)
	_, err := s.Duties.Insert(ctx, &domain.Duty{PersonID: "teacher", OrganisationID: "org-1", DutyRole: domain.DutyRoleTeacher, Validity: domain.Validity{EndDate: &ended}})
	require.NoError(t, err)
	_, err = s.Enrolments.Insert(ctx, &domain.Enrolment{PersonID: "student", EnroledAtID: "org-2"})
	require.NoError(t, err)
	_, err = s.ResponsibleFor.Insert(ctx, &domain.ResponsibleFor{ResponsibleID: "guardian", ChildID: "student"})
	require.NoError(t, err)
	_, err = s.Groups.Insert(ctx, &domain.Group{Meta: domain.Meta{ID: "g1"}, DisplayName: "7A", GroupType: domain.GroupTypeClass, OrganisationID: "org-1"})
	require.NoError(t, err)
	_, err = s.GroupMemberships.Insert(ctx, &domain.GroupMembership{PersonID: "member", GroupID: "g1"})
	require.NoError(t, err)

	persons, err := reg.Get("persons")
	require.NoError(t, err)

	find := func(raw url.Values) []string {
		t.Helper()
		where, err := persons.Filters.Build(query.Normalize(raw, persons.Params()))
		require.NoError(t, err)
		items, err := persons.Source.Find(ctx, filter.Query{Where: where, Order: []filter.Order{{Field: "id"}}})
		require.NoError(t, err)
		ids := make([]string, len(items))
		for i, it := range items {
			ids[i] = it.ID()
		}
		return ids
	}

	tests := []struct {
		name string
		raw  url.Values
		want []string
	}{
		{"duty", url.Values{"relationship.entity.type": {"duty"}}, []string{"teacher"}},
		{"enrolment", url.Values{"relationship.entity.type": {"enrolment"}}, []string{"student"}},
		{"guardian of enrolled child", url.Values{"relationship.entity.type": {"responsibleFor.enrolment"}}, []string{"guardian"}},
		{"guardian without placement", url.Values{"relationship.entity.type": {"responsibleFor.placement"}}, []string{}},
		{"membership scoped through group", url.Values{"relationship.entity.type": {"groupMembership"}, "relationship.organisation": {"org-1"}}, []string{"member"}},
		{"any relation at organisation", url.Values{"relationship.organisation": {"org-1"}}, []string{"member", "teacher"}},
		{"guardian scoped by child's school", url.Values{"relationship.entity.type": {"responsibleFor.enrolment"}, "relationship.organisation": {"org-2"}}, []string{"guardian"}},
		{"relation end date open", url.Values{"relationshipEndDateOnOrAfter": {"2021-01-01"}, "relationship.entity.type": {"duty,enrolment"}}, []string{"student"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ElementsMatch(t, tt.want, find(tt.raw))
		})
	}

	_, err = persons.Filters.Build(query.Values{"relationship.entity.type": {"friend"}})
	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}
