// Package provision loads school data out of band: a YAML fixture is
// validated as a whole, then upserted record by record, and its deletions
// leave tombstones behind.
package provision

import (
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"ss12000-mock/internal/domain"
	"ss12000-mock/internal/filter"
	"ss12000-mock/internal/resource"
)

// Fixture is a provisioning document: one list per resource plus the
// records to remove.
type Fixture struct {
	Organisations        []domain.Organisation         `yaml:"organisations"`
	Persons              []domain.Person               `yaml:"persons"`
	Programmes           []domain.Programme            `yaml:"programmes"`
	Groups               []domain.Group                `yaml:"groups"`
	Placements           []domain.Placement            `yaml:"placements"`
	Duties               []domain.Duty                 `yaml:"duties"`
	GroupMemberships     []domain.GroupMembership      `yaml:"groupMemberships"`
	AssignmentRoles      []domain.AssignmentRole       `yaml:"assignmentRoles"`
	ResponsibleFor       []domain.ResponsibleFor       `yaml:"responsibleFor"`
	Enrolments           []domain.Enrolment            `yaml:"enrolments"`
	StudyPlans           []domain.StudyPlan            `yaml:"studyPlans"`
	Syllabuses           []domain.Syllabus             `yaml:"syllabuses"`
	SchoolUnitOfferings  []domain.SchoolUnitOffering   `yaml:"schoolUnitOfferings"`
	Activities           []domain.Activity             `yaml:"activities"`
	CalendarEvents       []domain.CalendarEvent        `yaml:"calendarEvents"`
	AttendanceEvents     []domain.AttendanceEvent      `yaml:"attendanceEvents"`
	Attendance           []domain.Attendance           `yaml:"attendance"`
	AttendanceSchedules  []domain.AttendanceSchedule   `yaml:"attendanceSchedules"`
	Grades               []domain.Grade                `yaml:"grades"`
	AggregatedAttendance []domain.AggregatedAttendance `yaml:"aggregatedAttendance"`
	Resources            []domain.Resource             `yaml:"resources"`
	Rooms                []domain.Room                 `yaml:"rooms"`

	Deleted []Deletion `yaml:"deleted"`
}

// Deletion names a record to remove.
type Deletion struct {
	ResourceType string `yaml:"resource_type" validate:"required,resource_type"`
	ID           string `yaml:"id" validate:"required"`
}

// Decode reads a fixture. Unknown keys are rejected so typos do not drop
// data silently. An empty document is an empty fixture.
func Decode(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var f Fixture
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, domain.ErrValidation("decode fixture: %v", err)
	}
	return &f, nil
}

// batch is the type-erased list of one resource's fixture records.
type batch interface {
	path() string
	len() int
	id(i int) string
	getter(i int) filter.Getter
	record(i int) any
	upsert(ctx context.Context, i int) (inserted bool, err error)
}

type records[T any] struct {
	resource string
	table    *domain.Table[T]
	store    domain.Store[T]
	recs     []T
}

func (r *records[T]) path() string               { return r.resource }
func (r *records[T]) len() int                   { return len(r.recs) }
func (r *records[T]) id(i int) string            { return r.table.ID(&r.recs[i]) }
func (r *records[T]) getter(i int) filter.Getter { return r.table.Getter(&r.recs[i]) }
func (r *records[T]) record(i int) any           { return &r.recs[i] }

// upsert replaces a stored record with the same id or inserts a new one.
func (r *records[T]) upsert(ctx context.Context, i int) (bool, error) {
	rec := &r.recs[i]
	if id := r.table.ID(rec); id != "" {
		_, err := r.store.GetByID(ctx, id)
		var nf *domain.NotFoundError
		switch {
		case err == nil:
			if _, err := r.store.Update(ctx, id, r.table.Patch(rec)); err != nil {
				return false, fmt.Errorf("update %s %s: %w", r.resource, id, err)
			}
			return false, nil
		case !errors.As(err, &nf):
			return false, err
		}
	}
	stored, err := r.store.Insert(ctx, rec)
	if err != nil {
		return false, fmt.Errorf("insert %s: %w", r.resource, err)
	}
	*rec = *stored
	return true, nil
}

func bind[T any](path string, table *domain.Table[T], store domain.Store[T], recs []T) batch {
	return &records[T]{resource: path, table: table, store: store, recs: recs}
}

// batches lists the fixture's records in load order: referenced resources
// come before the ones referring to them.
func (f *Fixture) batches(s *resource.Stores) []batch {
	return []batch{
		bind("organisations", domain.OrganisationTable, s.Organisations, f.Organisations),
		bind("persons", domain.PersonTable, s.Persons, f.Persons),
		bind("programmes", domain.ProgrammeTable, s.Programmes, f.Programmes),
		bind("groups", domain.GroupTable, s.Groups, f.Groups),
		bind("placements", domain.PlacementTable, s.Placements, f.Placements),
		bind("duties", domain.DutyTable, s.Duties, f.Duties),
		bind("groupMemberships", domain.GroupMembershipTable, s.GroupMemberships, f.GroupMemberships),
		bind("assignmentRoles", domain.AssignmentRoleTable, s.AssignmentRoles, f.AssignmentRoles),
		bind("responsibleFor", domain.ResponsibleForTable, s.ResponsibleFor, f.ResponsibleFor),
		bind("enrolments", domain.EnrolmentTable, s.Enrolments, f.Enrolments),
		bind("studyPlans", domain.StudyPlanTable, s.StudyPlans, f.StudyPlans),
		bind("syllabuses", domain.SyllabusTable, s.Syllabuses, f.Syllabuses),
		bind("schoolUnitOfferings", domain.SchoolUnitOfferingTable, s.SchoolUnitOfferings, f.SchoolUnitOfferings),
		bind("activities", domain.ActivityTable, s.Activities, f.Activities),
		bind("calendarEvents", domain.CalendarEventTable, s.CalendarEvents, f.CalendarEvents),
		bind("attendanceEvents", domain.AttendanceEventTable, s.AttendanceEvents, f.AttendanceEvents),
		bind("attendance", domain.AttendanceTable, s.Attendance, f.Attendance),
		bind("attendanceSchedules", domain.AttendanceScheduleTable, s.AttendanceSchedules, f.AttendanceSchedules),
		bind("grades", domain.GradeTable, s.Grades, f.Grades),
		bind("aggregatedAttendance", domain.AggregatedAttendanceTable, s.AggregatedAttendance, f.AggregatedAttendance),
		bind("resources", domain.ResourceTable, s.Resources, f.Resources),
		bind("rooms", domain.RoomTable, s.Rooms, f.Rooms),
	}
}
