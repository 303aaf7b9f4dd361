package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ss12000-mock/internal/db"
	"ss12000-mock/internal/domain"
	"ss12000-mock/internal/filter"
)

func strPtr(s string) *string { return &s }

func datePtr(y int, m time.Month, d int) *domain.Date {
	day := domain.NewDate(y, m, d)
	return &day
}

func fixedClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func setupSQLite(t *testing.T) *db.Conn {
	t.Helper()
	return db.OpenTestSQLite(t)
}

func TestSQLStore_InsertAndGet(t *testing.T) {
	conn := setupSQLite(t)
	orgs := NewStore(conn, domain.OrganisationTable, WithClock(fixedClock()))
	ctx := context.Background()

	in := &domain.Organisation{
		Name:        "Skola A",
		ParentID:    strPtr("org-1"),
		Type:        domain.OrganisationTypeSkolenhet,
		SchoolTypes: domain.NewSet(domain.SchoolTypeGrundskola, domain.SchoolTypeForskoleklass),
		Validity:    domain.Validity{StartDate: datePtr(2020, 8, 1)},
	}
	created, err := orgs.Insert(ctx, in)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	got, err := orgs.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Skola A", got.Name)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, "org-1", *got.ParentID)
	assert.Equal(t, domain.OrganisationTypeSkolenhet, got.Type)
	assert.Equal(t, created.SchoolTypes, got.SchoolTypes)
	require.NotNil(t, got.StartDate)
	assert.Equal(t, "2020-08-01", got.StartDate.String())
	assert.Nil(t, got.EndDate)
	assert.True(t, created.Created.Equal(got.Created))

	_, err = orgs.GetByID(ctx, "missing")
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestSQLStore_UniqueConflict(t *testing.T) {
	conn := setupSQLite(t)
	persons := NewStore(conn, domain.PersonTable)
	ctx := context.Background()

	_, err := persons.Insert(ctx, &domain.Person{Meta: domain.Meta{ID: "p1"}, DisplayName: "A", CivicNo: strPtr("19800101-1234"), SecurityMarking: domain.SecurityMarkingNone})
	require.NoError(t, err)

	var conflictErr *domain.ConflictError
	_, err = persons.Insert(ctx, &domain.Person{DisplayName: "B", CivicNo: strPtr("19800101-1234"), SecurityMarking: domain.SecurityMarkingNone})
	assert.ErrorAs(t, err, &conflictErr)

	_, err = persons.Insert(ctx, &domain.Person{Meta: domain.Meta{ID: "p1"}, DisplayName: "C", SecurityMarking: domain.SecurityMarkingNone})
	assert.ErrorAs(t, err, &conflictErr)
}

func TestSQLStore_FindFiltersOrdersAndWindows(t *testing.T) {
	conn := setupSQLite(t)
	duties := NewStore(conn, domain.DutyTable, WithClock(fixedClock()))
	ctx := context.Background()

	seed := []domain.Duty{
		{Meta: domain.Meta{ID: "d1"}, PersonID: "p1", OrganisationID: "org-1", DutyRole: domain.DutyRoleTeacher, Validity: domain.Validity{EndDate: datePtr(2023, 6, 30)}},
		{Meta: domain.Meta{ID: "d2"}, PersonID: "p2", OrganisationID: "org-1", DutyRole: domain.DutyRoleTeacher},
		{Meta: domain.Meta{ID: "d3"}, PersonID: "p3", OrganisationID: "org-2", DutyRole: domain.DutyRolePrincipal, Validity: domain.Validity{EndDate: datePtr(2025, 6, 30)}},
	}
	for i := range seed {
		_, err := duties.Insert(ctx, &seed[i])
		require.NoError(t, err)
	}

	bound := filter.Cmp{Field: "end_date", Op: filter.Ge, Value: domain.NewDate(2024, 1, 1).Time, OrNull: true}
	got, err := duties.Find(ctx, filter.Query{Where: bound, Order: []filter.Order{{Field: "id"}}})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "d2", got[0].ID, "NULL end date is open-ended")
	assert.Equal(t, "d3", got[1].ID)

	byEnd, err := duties.Find(ctx, filter.Query{Order: []filter.Order{{Field: "end_date"}, {Field: "id"}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"d2", "d1", "d3"}, ids(byEnd), "NULLs sort first ascending")

	byEndDesc, err := duties.Find(ctx, filter.Query{Order: []filter.Order{{Field: "end_date", Direction: filter.Desc}, {Field: "id"}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"d3", "d1", "d2"}, ids(byEndDesc), "NULLs sort last descending")

	page, err := duties.Find(ctx, filter.Query{Order: []filter.Order{{Field: "id"}}, Offset: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"d2"}, ids(page))

	tail, err := duties.Find(ctx, filter.Query{Order: []filter.Order{{Field: "id"}}, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"d3"}, ids(tail))

	n, err := duties.Count(ctx, filter.Eq{Field: "organisation_id", Value: "org-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestSQLStore_SetAndNamePredicates(t *testing.T) {
	conn := setupSQLite(t)
	orgs := NewStore(conn, domain.OrganisationTable)
	persons := NewStore(conn, domain.PersonTable)
	ctx := context.Background()

	_, err := orgs.Insert(ctx, &domain.Organisation{Meta: domain.Meta{ID: "o1"}, Name: "A", Type: domain.OrganisationTypeSkolenhet, SchoolTypes: domain.NewSet(domain.SchoolTypeGrundsarskola)})
	require.NoError(t, err)
	_, err = orgs.Insert(ctx, &domain.Organisation{Meta: domain.Meta{ID: "o2"}, Name: "B", Type: domain.OrganisationTypeSkolenhet, SchoolTypes: domain.NewSet(domain.SchoolTypeForskola, domain.SchoolTypeGrundskola)})
	require.NoError(t, err)
	_, err = orgs.Insert(ctx, &domain.Organisation{Meta: domain.Meta{ID: "o3"}, Name: "C", Type: domain.OrganisationTypeKommun})
	require.NoError(t, err)

	got, err := orgs.Find(ctx, filter.Query{Where: filter.SetContainsAny{Field: "school_types", Values: []string{"Grundskola"}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"o2"}, orgIDs(got), "token equality, not substring")

	_, err = persons.Insert(ctx, &domain.Person{Meta: domain.Meta{ID: "p1"}, DisplayName: "Anna Svensson", GivenName: strPtr("Anna"), SecurityMarking: domain.SecurityMarkingNone})
	require.NoError(t, err)
	_, err = persons.Insert(ctx, &domain.Person{Meta: domain.Meta{ID: "p2"}, DisplayName: "Bo 100%", SecurityMarking: domain.SecurityMarkingNone})
	require.NoError(t, err)

	fold := filter.All(
		filter.ContainsFold{Fields: []string{"display_name", "given_name"}, Token: "ANNA"},
		filter.ContainsFold{Fields: []string{"display_name", "family_name"}, Token: "sven"},
	)
	found, err := persons.Find(ctx, filter.Query{Where: fold})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "p1", found[0].ID)

	literal, err := persons.Find(ctx, filter.Query{Where: filter.ContainsFold{Fields: []string{"display_name"}, Token: "0%"}})
	require.NoError(t, err)
	require.Len(t, literal, 1)
	assert.Equal(t, "p2", literal[0].ID, "LIKE wildcards in tokens are literal")
}

func TestSQLStore_RelatedSubselect(t *testing.T) {
	conn := setupSQLite(t)
	persons := NewStore(conn, domain.PersonTable)
	groups := NewStore(conn, domain.GroupTable)
	members := NewStore(conn, domain.GroupMembershipTable)
	ctx := context.Background()

	for _, id := range []string{"p1", "p2"} {
		_, err := persons.Insert(ctx, &domain.Person{Meta: domain.Meta{ID: id}, DisplayName: id, SecurityMarking: domain.SecurityMarkingNone})
		require.NoError(t, err)
	}
	_, err := groups.Insert(ctx, &domain.Group{Meta: domain.Meta{ID: "g1"}, DisplayName: "7A", GroupType: domain.GroupTypeClass, OrganisationID: "org-1"})
	require.NoError(t, err)
	_, err = members.Insert(ctx, &domain.GroupMembership{PersonID: "p2", GroupID: "g1"})
	require.NoError(t, err)

	where := filter.Related{
		Field: "id", Table: "group_memberships", Column: "person_id",
		Where: filter.Related{Field: "group_id", Table: "groups", Column: "id", Where: filter.Eq{Field: "organisation_id", Value: "org-1"}},
	}
	got, err := persons.Find(ctx, filter.Query{Where: where})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p2", got[0].ID)
}

func TestSQLStore_GetManyByIDsKeepsRequestOrder(t *testing.T) {
	conn := setupSQLite(t)
	rooms := NewStore(conn, domain.RoomTable)
	ctx := context.Background()
	for _, id := range []string{"r1", "r2", "r3"} {
		_, err := rooms.Insert(ctx, &domain.Room{Meta: domain.Meta{ID: id}, Name: id})
		require.NoError(t, err)
	}

	got, err := rooms.GetManyByIDs(ctx, []string{"r3", "missing", "r1", "r3"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "r3", got[0].ID)
	assert.Equal(t, "r1", got[1].ID)

	empty, err := rooms.GetManyByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSQLStore_UpdateAndDelete(t *testing.T) {
	conn := setupSQLite(t)
	subs := NewStore(conn, domain.SubscriptionTable, WithClock(fixedClock()))
	ctx := context.Background()

	created, err := subs.Insert(ctx, &domain.Subscription{ResourceType: "Person", ResourceID: "p1", UserID: "u1"})
	require.NoError(t, err)

	expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	updated, err := subs.Update(ctx, created.ID, domain.Patch{"user_id": "u2", "expires": expires})
	require.NoError(t, err)
	assert.Equal(t, "u2", updated.UserID)
	assert.True(t, updated.Modified.After(created.Modified))

	got, err := subs.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "u2", got.UserID)
	require.NotNil(t, got.Expires)
	assert.True(t, expires.Equal(*got.Expires))

	_, err = subs.Update(ctx, "missing", domain.Patch{"user_id": "x"})
	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)

	_, err = subs.Update(ctx, created.ID, domain.Patch{"created": expires})
	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)

	existed, err := subs.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = subs.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, existed)
}

func ids(ds []domain.Duty) []string {
	out := make([]string, len(ds))
	for i := range ds {
		out[i] = ds[i].ID
	}
	return out
}

func orgIDs(os []domain.Organisation) []string {
	out := make([]string, len(os))
	for i := range os {
		out[i] = os[i].ID
	}
	return out
}
