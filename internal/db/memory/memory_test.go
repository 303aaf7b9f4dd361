package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ss12000-mock/internal/domain"
	"ss12000-mock/internal/filter"
)

func strPtr(s string) *string { return &s }

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

func setupPersonStore(t *testing.T) (*DB, *Store[domain.Person]) {
	t.Helper()
	db := NewDB(WithClock(fixedClock()))
	return db, Register(db, domain.PersonTable)
}

func TestStore_InsertAssignsIdentity(t *testing.T) {
	_, persons := setupPersonStore(t)
	ctx := context.Background()

	in := &domain.Person{DisplayName: "Anna", SecurityMarking: domain.SecurityMarkingNone}
	got, err := persons.Insert(ctx, in)
	require.NoError(t, err)

	assert.NotEmpty(t, got.ID)
	assert.Empty(t, in.ID, "caller's record is not modified")
	assert.False(t, got.Created.IsZero())
	assert.Equal(t, got.Created, got.Modified)

	fetched, err := persons.GetByID(ctx, got.ID)
	require.NoError(t, err)
	assert.Equal(t, got, fetched)
}

func TestStore_InsertRejectsDuplicates(t *testing.T) {
	_, persons := setupPersonStore(t)
	ctx := context.Background()

	_, err := persons.Insert(ctx, &domain.Person{Meta: domain.Meta{ID: "p1"}, DisplayName: "A", CivicNo: strPtr("19800101-1234")})
	require.NoError(t, err)

	var conflictErr *domain.ConflictError
	_, err = persons.Insert(ctx, &domain.Person{Meta: domain.Meta{ID: "p1"}, DisplayName: "B"})
	assert.ErrorAs(t, err, &conflictErr)

	_, err = persons.Insert(ctx, &domain.Person{DisplayName: "C", CivicNo: strPtr("19800101-1234")})
	assert.ErrorAs(t, err, &conflictErr)

	_, err = persons.Insert(ctx, &domain.Person{DisplayName: "D"})
	assert.NoError(t, err, "NULL civic numbers do not collide")
	_, err = persons.Insert(ctx, &domain.Person{DisplayName: "E"})
	assert.NoError(t, err)
}

func TestStore_FindOrdersAndWindows(t *testing.T) {
	_, persons := setupPersonStore(t)
	ctx := context.Background()
	for _, name := range []string{"Cecilia", "Anna", "Bertil", "David", "Anna"} {
		_, err := persons.Insert(ctx, &domain.Person{DisplayName: name})
		require.NoError(t, err)
	}
	order := []filter.Order{{Field: "display_name"}, {Field: "id"}}

	all, err := persons.Find(ctx, filter.Query{Order: order})
	require.NoError(t, err)
	require.Len(t, all, 5)

	first, err := persons.Find(ctx, filter.Query{Order: order, Offset: 0, Limit: 2})
	require.NoError(t, err)
	second, err := persons.Find(ctx, filter.Query{Order: order, Offset: 2, Limit: 2})
	require.NoError(t, err)
	third, err := persons.Find(ctx, filter.Query{Order: order, Offset: 4, Limit: 2})
	require.NoError(t, err)

	paged := append(append(first, second...), third...)
	assert.Equal(t, all, paged)
	assert.Equal(t, "Anna", all[0].DisplayName)
	assert.Equal(t, "David", all[4].DisplayName)

	beyond, err := persons.Find(ctx, filter.Query{Order: order, Offset: 50, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, beyond)
}

func TestStore_RelatedAcrossTables(t *testing.T) {
	db, persons := setupPersonStore(t)
	duties := Register(db, domain.DutyTable)
	ctx := context.Background()

	teacher, err := persons.Insert(ctx, &domain.Person{DisplayName: "Teacher"})
	require.NoError(t, err)
	_, err = persons.Insert(ctx, &domain.Person{DisplayName: "Student"})
	require.NoError(t, err)
	_, err = duties.Insert(ctx, &domain.Duty{PersonID: teacher.ID, OrganisationID: "org-1", DutyRole: domain.DutyRoleTeacher})
	require.NoError(t, err)

	where := filter.Related{Field: "id", Table: "duties", Column: "person_id", Where: filter.Eq{Field: "organisation_id", Value: "org-1"}}
	got, err := persons.Find(ctx, filter.Query{Where: where})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, teacher.ID, got[0].ID)

	n, err := persons.Count(ctx, where)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestStore_UpdateAndDelete(t *testing.T) {
	db := NewDB(WithClock(fixedClock()))
	subs := Register(db, domain.SubscriptionTable)
	ctx := context.Background()

	sub, err := subs.Insert(ctx, &domain.Subscription{ResourceType: "persons", ResourceID: "p1", UserID: "u1"})
	require.NoError(t, err)

	updated, err := subs.Update(ctx, sub.ID, domain.Patch{"user_id": "u2"})
	require.NoError(t, err)
	assert.Equal(t, "u2", updated.UserID)
	assert.Equal(t, sub.Created, updated.Created)
	assert.True(t, updated.Modified.After(sub.Modified))

	var notFound *domain.NotFoundError
	_, err = subs.Update(ctx, "missing", domain.Patch{"user_id": "u3"})
	assert.ErrorAs(t, err, &notFound)

	existed, err := subs.Delete(ctx, sub.ID)
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = subs.Delete(ctx, sub.ID)
	require.NoError(t, err)
	assert.False(t, existed)

	_, err = subs.GetByID(ctx, sub.ID)
	assert.ErrorAs(t, err, &notFound)
}

func TestStore_DeleteKeepsIndexConsistent(t *testing.T) {
	db := NewDB()
	rooms := Register(db, domain.RoomTable)
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		_, err := rooms.Insert(ctx, &domain.Room{Meta: domain.Meta{ID: fmt.Sprintf("r%d", i)}, Name: fmt.Sprintf("Room %d", i)})
		require.NoError(t, err)
	}

	_, err := rooms.Delete(ctx, "r1")
	require.NoError(t, err)

	for _, id := range []string{"r0", "r2", "r3"} {
		r, err := rooms.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, id, r.ID)
	}

	many, err := rooms.GetManyByIDs(ctx, []string{"r3", "r1", "r3", "r0"})
	require.NoError(t, err)
	assert.Len(t, many, 2)
}

func TestStore_ConcurrentWriters(t *testing.T) {
	db := NewDB()
	logs := Register(db, domain.LogTable)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := logs.Insert(ctx, &domain.Log{LogMessage: fmt.Sprintf("line %d", i), Timestamp: time.Now()})
			assert.NoError(t, err)
			_, err = logs.Find(ctx, filter.Query{})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	n, err := logs.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(50), n)
}

func TestStore_CancelledContext(t *testing.T) {
	_, persons := setupPersonStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := persons.Find(ctx, filter.Query{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStore_ReturnedRecordsDoNotAliasStoredState(t *testing.T) {
	db := NewDB(WithClock(fixedClock()))
	orgs := Register(db, domain.OrganisationTable)
	ctx := context.Background()

	start := domain.NewDate(2020, time.August, 1)
	in := &domain.Organisation{
		Meta:        domain.Meta{ID: "org-1"},
		Name:        "Centralskolan",
		ParentID:    strPtr("kommun"),
		Type:        domain.OrganisationTypeSkolenhet,
		SchoolTypes: domain.Set[domain.SchoolType]{domain.SchoolTypeGrundskola, domain.SchoolTypeGymnasium},
		Validity:    domain.Validity{StartDate: &start},
	}
	inserted, err := orgs.Insert(ctx, in)
	require.NoError(t, err)

	// Writes through the caller's record and every returned copy.
	*in.ParentID = "changed-input"
	in.SchoolTypes[0] = domain.SchoolTypeVuxen
	*inserted.ParentID = "changed-insert-result"

	got, err := orgs.GetByID(ctx, "org-1")
	require.NoError(t, err)
	*got.ParentID = "changed-get"
	got.SchoolTypes[1] = domain.SchoolTypeVuxen
	*got.StartDate = domain.NewDate(1999, time.January, 1)

	found, err := orgs.Find(ctx, filter.Query{})
	require.NoError(t, err)
	require.Len(t, found, 1)
	*found[0].ParentID = "changed-find"

	many, err := orgs.GetManyByIDs(ctx, []string{"org-1"})
	require.NoError(t, err)
	require.Len(t, many, 1)
	many[0].SchoolTypes[0] = domain.SchoolTypeVuxen

	updated, err := orgs.Update(ctx, "org-1", domain.Patch{"name": "Centralskolan Norra"})
	require.NoError(t, err)
	*updated.ParentID = "changed-update-result"

	stored, err := orgs.GetByID(ctx, "org-1")
	require.NoError(t, err)
	assert.Equal(t, "kommun", *stored.ParentID)
	assert.Equal(t, domain.Set[domain.SchoolType]{domain.SchoolTypeGrundskola, domain.SchoolTypeGymnasium}, stored.SchoolTypes)
	assert.Equal(t, start, *stored.StartDate)
	assert.Equal(t, "Centralskolan Norra", stored.Name)
}
