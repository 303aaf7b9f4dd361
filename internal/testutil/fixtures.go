package testutil

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"ss12000-mock/internal/db"
	"ss12000-mock/internal/db/memory"
	"ss12000-mock/internal/domain"
	"ss12000-mock/internal/resource"
)

// Identifiers of the canonical dataset.
const (
	OrgRoot      = "org-1"
	OrgSchool    = "org-2"
	OrgPreschool = "org-3"

	TeacherID  = "person-teacher"
	StudentID  = "person-student"
	GuardianID = "person-guardian"

	TeacherCivicNo = "19800101-1234"

	DutyID      = "duty-1"
	GroupID     = "group-7a"
	PlacementID = "placement-1"
	StudyPlanID = "studyplan-1"
	ActivityID  = "activity-math"
	ProgrammeID = "programme-na"
)

// Epoch is the clock start of the canonical dataset; each insert advances
// the clock by one second.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Clock returns a deterministic clock starting at Epoch.
func Clock() func() time.Time {
	t := Epoch
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewRegistry returns an empty registry on an in-memory backend.
func NewRegistry(t testing.TB) *resource.Registry {
	t.Helper()
	return resource.NewRegistry(resource.OpenStores(resource.MemoryBackend(memory.NewDB(memory.WithClock(Clock())))))
}

// SeededRegistry returns a registry holding the canonical dataset.
func SeededRegistry(t testing.TB) *resource.Registry {
	t.Helper()
	reg := NewRegistry(t)
	Seed(t, reg.Stores)
	return reg
}

// SeededSQLiteRegistry returns a registry holding the canonical dataset in a
// migrated SQLite database under t.TempDir().
func SeededSQLiteRegistry(t *testing.T) *resource.Registry {
	t.Helper()
	reg := resource.NewRegistry(resource.OpenStores(resource.SQLBackend(db.OpenTestSQLite(t), Clock())))
	Seed(t, reg.Stores)
	return reg
}

func ptr[T any](v T) *T { return &v }

func date(s string) *domain.Date {
	d, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return &d
}

// Seed inserts the canonical dataset: a principal organiser with a school
// and a preschool, a teacher with an open-ended duty, a student with a
// guardian, a class group, a study plan and an activity.
func Seed(t testing.TB, s *resource.Stores) {
	t.Helper()
	ctx := context.Background()
	must := func(_ any, err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	must(s.Organisations.Insert(ctx, &domain.Organisation{
		Meta: domain.Meta{ID: OrgRoot}, Name: "Exempelkommun", Type: domain.OrganisationTypeHuvudman,
	}))
	must(s.Organisations.Insert(ctx, &domain.Organisation{
		Meta: domain.Meta{ID: OrgSchool}, Name: "Centralskolan", ParentID: ptr(OrgRoot),
		SchoolUnitCode: ptr("12345678"), Type: domain.OrganisationTypeSkolenhet,
		SchoolTypes: domain.NewSet(domain.SchoolTypeGrundskola, domain.SchoolTypeGymnasium),
	}))
	must(s.Organisations.Insert(ctx, &domain.Organisation{
		Meta: domain.Meta{ID: OrgPreschool}, Name: "Ängens förskola", ParentID: ptr(OrgRoot),
		Type: domain.OrganisationTypeSkolenhet, SchoolTypes: domain.NewSet(domain.SchoolTypeForskola),
		Validity: domain.Validity{StartDate: date("2015-08-01"), EndDate: date("2023-06-30")},
	}))

	must(s.Persons.Insert(ctx, &domain.Person{
		Meta: domain.Meta{ID: TeacherID}, DisplayName: "Anna Andersson", GivenName: ptr("Anna"), FamilyName: ptr("Andersson"),
		CivicNo: ptr(TeacherCivicNo), Email: ptr("anna@example.se"), SecurityMarking: domain.SecurityMarkingNone,
	}))
	must(s.Persons.Insert(ctx, &domain.Person{
		Meta: domain.Meta{ID: StudentID}, DisplayName: "Bertil Berg", GivenName: ptr("Bertil"), FamilyName: ptr("Berg"),
		CivicNo: ptr("20100101-0000"), SecurityMarking: domain.SecurityMarkingNone,
	}))
	must(s.Persons.Insert(ctx, &domain.Person{
		Meta: domain.Meta{ID: GuardianID}, DisplayName: "Cecilia Berg", GivenName: ptr("Cecilia"), FamilyName: ptr("Berg"),
		SecurityMarking: domain.SecurityMarkingConfidential,
	}))

	must(s.Duties.Insert(ctx, &domain.Duty{
		Meta: domain.Meta{ID: DutyID}, PersonID: TeacherID, OrganisationID: OrgSchool, DutyRole: domain.DutyRoleTeacher,
		Validity: domain.Validity{StartDate: date("2023-01-01")},
	}))
	must(s.Groups.Insert(ctx, &domain.Group{
		Meta: domain.Meta{ID: GroupID}, DisplayName: "7A", GroupType: domain.GroupTypeClass,
		SchoolTypes: domain.NewSet(domain.SchoolTypeGrundskola), OrganisationID: OrgSchool,
	}))
	must(s.GroupMemberships.Insert(ctx, &domain.GroupMembership{PersonID: StudentID, GroupID: GroupID}))
	must(s.AssignmentRoles.Insert(ctx, &domain.AssignmentRole{PersonID: TeacherID, GroupID: GroupID, AssignmentRoleType: "Mentor"}))
	must(s.Enrolments.Insert(ctx, &domain.Enrolment{PersonID: StudentID, EnroledAtID: OrgSchool, Validity: domain.Validity{StartDate: date("2023-08-15")}}))
	must(s.ResponsibleFor.Insert(ctx, &domain.ResponsibleFor{ResponsibleID: GuardianID, ChildID: StudentID}))
	must(s.Placements.Insert(ctx, &domain.Placement{
		Meta: domain.Meta{ID: PlacementID}, OrganisationID: OrgPreschool, ChildID: StudentID, OwnerID: ptr(GuardianID),
		Validity: domain.Validity{StartDate: date("2015-08-01"), EndDate: date("2016-06-30")},
	}))

	must(s.Programmes.Insert(ctx, &domain.Programme{
		Meta: domain.Meta{ID: ProgrammeID}, Name: "Naturvetenskapsprogrammet", Code: "NA",
		SchoolTypes: domain.NewSet(domain.SchoolTypeGymnasium),
	}))
	must(s.StudyPlans.Insert(ctx, &domain.StudyPlan{
		Meta: domain.Meta{ID: StudyPlanID}, Name: "Studieplan Bertil", StudentID: StudentID,
		Validity: domain.Validity{StartDate: date("2023-08-15")},
	}))
	must(s.Activities.Insert(ctx, &domain.Activity{Meta: domain.Meta{ID: ActivityID}, Name: "Matematik 7A", OrganisationID: ptr(OrgSchool)}))
	must(s.CalendarEvents.Insert(ctx, &domain.CalendarEvent{
		Name: "Lektion", ActivityID: ActivityID,
		StartTime: ptr(time.Date(2024, 2, 5, 8, 0, 0, 0, time.UTC)), EndTime: ptr(time.Date(2024, 2, 5, 9, 0, 0, 0, time.UTC)),
	}))
	must(s.Grades.Insert(ctx, &domain.Grade{PersonID: StudentID, GradeValue: "A"}))
	must(s.AggregatedAttendance.Insert(ctx, &domain.AggregatedAttendance{PersonID: StudentID, AttendancePercentage: 96.5}))
	must(s.Rooms.Insert(ctx, &domain.Room{Name: "Sal 101"}))
}
