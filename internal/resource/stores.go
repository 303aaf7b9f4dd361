package resource

import (
	"time"

	"ss12000-mock/internal/db"
	"ss12000-mock/internal/db/memory"
	"ss12000-mock/internal/db/repository"
	"ss12000-mock/internal/domain"
)

// Backend selects where the stores keep their records: an in-memory dataset
// or a SQL connection.
type Backend struct {
	mem  *memory.DB
	conn *db.Conn
	now  func() time.Time
}

// MemoryBackend keeps records in mdb.
func MemoryBackend(mdb *memory.DB) Backend {
	return Backend{mem: mdb}
}

// SQLBackend keeps records in the database behind conn.
func SQLBackend(conn *db.Conn, now func() time.Time) Backend {
	if now == nil {
		now = time.Now
	}
	return Backend{conn: conn, now: now}
}

func open[T any](b Backend, table *domain.Table[T]) domain.Store[T] {
	if b.conn != nil {
		return repository.NewStore(b.conn, table, repository.WithClock(b.now))
	}
	return memory.Register(b.mem, table)
}

// Stores holds the typed store of every entity.
type Stores struct {
	Organisations        domain.Store[domain.Organisation]
	Persons              domain.Store[domain.Person]
	Placements           domain.Store[domain.Placement]
	Duties               domain.Store[domain.Duty]
	Groups               domain.Store[domain.Group]
	GroupMemberships     domain.Store[domain.GroupMembership]
	AssignmentRoles      domain.Store[domain.AssignmentRole]
	ResponsibleFor       domain.Store[domain.ResponsibleFor]
	Enrolments           domain.Store[domain.Enrolment]
	Programmes           domain.Store[domain.Programme]
	StudyPlans           domain.Store[domain.StudyPlan]
	Syllabuses           domain.Store[domain.Syllabus]
	SchoolUnitOfferings  domain.Store[domain.SchoolUnitOffering]
	Activities           domain.Store[domain.Activity]
	CalendarEvents       domain.Store[domain.CalendarEvent]
	Attendance           domain.Store[domain.Attendance]
	AttendanceEvents     domain.Store[domain.AttendanceEvent]
	AttendanceSchedules  domain.Store[domain.AttendanceSchedule]
	Grades               domain.Store[domain.Grade]
	AggregatedAttendance domain.Store[domain.AggregatedAttendance]
	Resources            domain.Store[domain.Resource]
	Rooms                domain.Store[domain.Room]
	Subscriptions        domain.Store[domain.Subscription]
	DeletedEntities      domain.Store[domain.DeletedEntity]
	Logs                 domain.Store[domain.Log]
}

// OpenStores opens one store per entity table on b.
func OpenStores(b Backend) *Stores {
	return &Stores{
		Organisations:        open(b, domain.OrganisationTable),
		Persons:              open(b, domain.PersonTable),
		Placements:           open(b, domain.PlacementTable),
		Duties:               open(b, domain.DutyTable),
		Groups:               open(b, domain.GroupTable),
		GroupMemberships:     open(b, domain.GroupMembershipTable),
		AssignmentRoles:      open(b, domain.AssignmentRoleTable),
		ResponsibleFor:       open(b, domain.ResponsibleForTable),
		Enrolments:           open(b, domain.EnrolmentTable),
		Programmes:           open(b, domain.ProgrammeTable),
		StudyPlans:           open(b, domain.StudyPlanTable),
		Syllabuses:           open(b, domain.SyllabusTable),
		SchoolUnitOfferings:  open(b, domain.SchoolUnitOfferingTable),
		Activities:           open(b, domain.ActivityTable),
		CalendarEvents:       open(b, domain.CalendarEventTable),
		Attendance:           open(b, domain.AttendanceTable),
		AttendanceEvents:     open(b, domain.AttendanceEventTable),
		AttendanceSchedules:  open(b, domain.AttendanceScheduleTable),
		Grades:               open(b, domain.GradeTable),
		AggregatedAttendance: open(b, domain.AggregatedAttendanceTable),
		Resources:            open(b, domain.ResourceTable),
		Rooms:                open(b, domain.RoomTable),
		Subscriptions:        open(b, domain.SubscriptionTable),
		DeletedEntities:      open(b, domain.DeletedEntityTable),
		Logs:                 open(b, domain.LogTable),
	}
}
