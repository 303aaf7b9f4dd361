package expand

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ss12000-mock/internal/db/memory"
	"ss12000-mock/internal/domain"
	"ss12000-mock/internal/filter"
	"ss12000-mock/internal/resource"
)

func strPtr(s string) *string { return &s }

type fixture struct {
	reg    *resource.Registry
	engine *Engine
}

func setup(t *testing.T) fixture {
	t.Helper()
	reg := resource.NewRegistry(resource.OpenStores(resource.MemoryBackend(memory.NewDB())))
	s := reg.Stores
	ctx := context.Background()

	_, err := s.Organisations.Insert(ctx, &domain.Organisation{Meta: domain.Meta{ID: "org-1"}, Name: "Centralskolan", Type: domain.OrganisationTypeSkolenhet})
	require.NoError(t, err)
	_, err = s.Persons.Insert(ctx, &domain.Person{Meta: domain.Meta{ID: "child"}, DisplayName: "Kim Barn", SecurityMarking: domain.SecurityMarkingNone})
	require.NoError(t, err)
	_, err = s.Persons.Insert(ctx, &domain.Person{Meta: domain.Meta{ID: "parent"}, DisplayName: "Alex Förälder", SecurityMarking: domain.SecurityMarkingNone})
	require.NoError(t, err)
	_, err = s.Placements.Insert(ctx, &domain.Placement{Meta: domain.Meta{ID: "pl-1"}, OrganisationID: "org-1", ChildID: "child", OwnerID: strPtr("parent")})
	require.NoError(t, err)
	_, err = s.Placements.Insert(ctx, &domain.Placement{Meta: domain.Meta{ID: "pl-2"}, OrganisationID: "org-missing", ChildID: "child"})
	require.NoError(t, err)

	return fixture{reg: reg, engine: NewEngine(reg, slog.New(slog.NewTextHandler(io.Discard, nil)))}
}

func (f fixture) views(t *testing.T, path string, ids ...string) (*resource.Definition, []*View) {
	t.Helper()
	def, err := f.reg.Get(path)
	require.NoError(t, err)
	items, err := def.Source.Find(context.Background(), filter.Query{Where: filter.InStrings("id", ids), Order: []filter.Order{{Field: "id"}}})
	require.NoError(t, err)
	return def, NewViews(def, items)
}

func decode(t *testing.T, v any) map[string]any {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func TestExpand_RelationIsIdempotent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	def, views := f.views(t, "persons", "child")
	opts := Options{Relations: []string{"placements"}}

	require.NoError(t, f.engine.Expand(ctx, def, views, opts))
	first, err := json.Marshal(views[0])
	require.NoError(t, err)

	require.NoError(t, f.engine.Expand(ctx, def, views, opts))
	second, err := json.Marshal(views[0])
	require.NoError(t, err)

	assert.JSONEq(t, string(first), string(second))
	got := decode(t, views[0])
	placements, ok := got["placements"].([]any)
	require.True(t, ok)
	assert.Len(t, placements, 2)
	assert.Equal(t, "Kim Barn", got["display_name"])
}

func TestExpand_DoesNotTouchStoredRecord(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	def, views := f.views(t, "placements", "pl-1")

	require.NoError(t, f.engine.Expand(ctx, def, views, Options{Relations: []string{"child"}, ReferenceNames: true}))

	stored, err := f.reg.Stores.Placements.GetByID(ctx, "pl-1")
	require.NoError(t, err)
	plain := decode(t, stored)
	assert.NotContains(t, plain, "child")
	assert.NotContains(t, plain, "placed_at_name")
}

func TestExpand_ReferenceNames(t *testing.T) {
	f := setup(t)
	def, views := f.views(t, "placements", "pl-1", "pl-2")

	require.NoError(t, f.engine.Expand(context.Background(), def, views, Options{ReferenceNames: true}))

	first := decode(t, views[0])
	assert.Equal(t, "Centralskolan", first["placed_at_name"])
	assert.Equal(t, "Kim Barn", first["child_name"])
	assert.Equal(t, "Alex Förälder", first["owner_name"])
	assert.Contains(t, first, "group_name")
	assert.Nil(t, first["group_name"], "NULL reference has a null name")

	second := decode(t, views[1])
	assert.Contains(t, second, "placed_at_name")
	assert.Nil(t, second["placed_at_name"], "dangling reference has a null name")
}

func TestExpand_NamesOnExpandedRecords(t *testing.T) {
	f := setup(t)
	def, views := f.views(t, "persons", "parent")

	require.NoError(t, f.engine.Expand(context.Background(), def, views, Options{Relations: []string{"ownedPlacements"}, ReferenceNames: true}))

	got := decode(t, views[0])
	owned, ok := got["ownedPlacements"].([]any)
	require.True(t, ok)
	require.Len(t, owned, 1)
	placement := owned[0].(map[string]any)
	assert.Equal(t, "pl-1", placement["id"])
	assert.Equal(t, "Centralskolan", placement["placed_at_name"])
}

func TestExpand_SingleRelation(t *testing.T) {
	f := setup(t)
	def, views := f.views(t, "placements", "pl-1", "pl-2")

	require.NoError(t, f.engine.Expand(context.Background(), def, views, Options{Relations: []string{"child", "owners"}}))

	first := decode(t, views[0])
	child := first["child"].(map[string]any)
	assert.Equal(t, "child", child["id"])
	assert.Len(t, first["owners"], 1)

	second := decode(t, views[1])
	assert.Equal(t, []any{}, second["owners"])
}

func TestExpand_RejectsUnknownRelation(t *testing.T) {
	f := setup(t)
	def, views := f.views(t, "persons", "child")

	err := f.engine.Expand(context.Background(), def, views, Options{Relations: []string{"friends"}})
	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestExpand_OrganisationPlacements(t *testing.T) {
	f := setup(t)
	def, views := f.views(t, "organisations", "org-1")

	require.NoError(t, f.engine.Expand(context.Background(), def, views, Options{Relations: []string{"placements"}, ReferenceNames: true}))

	got := decode(t, views[0])
	placements, ok := got["placements"].([]any)
	require.True(t, ok)
	require.Len(t, placements, 1, "pl-2 is placed at another organisation")
	placement := placements[0].(map[string]any)
	assert.Equal(t, "pl-1", placement["id"])
	assert.Equal(t, "Kim Barn", placement["child_name"])
}

func TestExpand_PersonStudyRecords(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	s := f.reg.Stores
	_, err := s.Activities.Insert(ctx, &domain.Activity{Meta: domain.Meta{ID: "act-1"}, Name: "Matematik 1a"})
	require.NoError(t, err)
	_, err = s.Attendance.Insert(ctx, &domain.Attendance{Meta: domain.Meta{ID: "att-1"}, PersonID: "child", ActivityID: strPtr("act-1")})
	require.NoError(t, err)
	_, err = s.Grades.Insert(ctx, &domain.Grade{Meta: domain.Meta{ID: "gr-1"}, PersonID: "child", GradeValue: "A"})
	require.NoError(t, err)
	_, err = s.AggregatedAttendance.Insert(ctx, &domain.AggregatedAttendance{Meta: domain.Meta{ID: "agg-1"}, PersonID: "child", AttendancePercentage: 92.5})
	require.NoError(t, err)

	def, views := f.views(t, "persons", "child", "parent")
	opts := Options{Relations: []string{"attendance", "grades", "aggregatedAttendance"}, ReferenceNames: true}
	require.NoError(t, f.engine.Expand(ctx, def, views, opts))

	child := decode(t, views[0])
	attendance := child["attendance"].([]any)
	require.Len(t, attendance, 1)
	assert.Equal(t, "Matematik 1a", attendance[0].(map[string]any)["activity_name"])
	grades := child["grades"].([]any)
	require.Len(t, grades, 1)
	assert.Equal(t, "A", grades[0].(map[string]any)["grade_value"])
	aggregated := child["aggregatedAttendance"].([]any)
	require.Len(t, aggregated, 1)
	assert.InDelta(t, 92.5, aggregated[0].(map[string]any)["attendance_percentage"], 0.001)

	parent := decode(t, views[1])
	assert.Equal(t, []any{}, parent["grades"], "no rows expands to an empty list")
}
