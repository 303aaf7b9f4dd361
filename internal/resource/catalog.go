package resource

import (
	"fmt"
	"slices"
	"sort"

	"ss12000-mock/internal/domain"
	"ss12000-mock/internal/filter"
	"ss12000-mock/internal/query"
)

var (
	organisationSpec = Spec[domain.Organisation]{
		Name:  "Organisation",
		Path:  "organisations",
		Table: domain.OrganisationTable,
		Filters: append(query.Filters{
			query.OneOf("parent", "parent_id"),
			query.OneOf("schoolUnitCode", "school_unit_code"),
			query.OneOf("organisationCode", "organisation_code"),
			query.Exact("municipalityCode", "municipality_code"),
			query.EnumOneOf("type", "type", domain.OrganisationTypes),
			query.EnumSetContains("schoolTypes", "school_types", domain.SchoolTypes),
		}, query.Validity(false)...),
		Relations: []Relation{
			{Name: "placements", Target: "placements", Local: "id", Foreign: "organisation_id", Many: true},
		},
		References: []Reference{{Field: "parent_id", Name: "parent_name", Target: "organisations"}},
		NameColumn: "name",
	}

	personSpec = Spec[domain.Person]{
		Name:  "Person",
		Path:  "persons",
		Table: domain.PersonTable,
		Filters: query.Filters{
			query.NameContains("nameContains", "display_name", "given_name", "family_name"),
			query.Exact("civicNo", "civic_no"),
			query.Exact("eduPersonPrincipalName", "edu_person_principal_name"),
			query.Exact("identifier.value", "external_identifier_value"),
			query.Exact("identifier.context", "external_identifier_context"),
			relationshipFilter(),
		},
		DefaultSort: "DisplayNameAsc",
		Relations: []Relation{
			{Name: "duties", Target: "duties", Local: "id", Foreign: "person_id", Many: true},
			{Name: "responsibleFor", Target: "responsibleFor", Local: "id", Foreign: "responsible_id", Many: true},
			{Name: "placements", Target: "placements", Local: "id", Foreign: "child_id", Many: true},
			{Name: "ownedPlacements", Target: "placements", Local: "id", Foreign: "owner_id", Many: true},
			{Name: "groupMemberships", Target: "groupMemberships", Local: "id", Foreign: "person_id", Many: true},
			{Name: "attendance", Target: "attendance", Local: "id", Foreign: "person_id", Many: true},
			{Name: "grades", Target: "grades", Local: "id", Foreign: "person_id", Many: true},
			{Name: "aggregatedAttendance", Target: "aggregatedAttendance", Local: "id", Foreign: "person_id", Many: true},
		},
		NameColumn:    "display_name",
		LookupColumns: []string{"id", "civic_no"},
	}

	placementSpec = Spec[domain.Placement]{
		Name:  "Placement",
		Path:  "placements",
		Table: domain.PlacementTable,
		Filters: append(query.Filters{
			query.OneOf("organisation", "organisation_id"),
			query.OneOf("group", "group_id"),
			query.OneOf("child", "child_id"),
			query.OneOf("owner", "owner_id"),
		}, query.Validity(false)...),
		Relations: []Relation{
			{Name: "child", Target: "persons", Local: "child_id", Foreign: "id"},
			{Name: "owners", Target: "persons", Local: "owner_id", Foreign: "id", Many: true},
		},
		References: []Reference{
			{Field: "organisation_id", Name: "placed_at_name", Target: "organisations"},
			{Field: "group_id", Name: "group_name", Target: "groups"},
			{Field: "child_id", Name: "child_name", Target: "persons"},
			{Field: "owner_id", Name: "owner_name", Target: "persons"},
		},
	}

	dutySpec = Spec[domain.Duty]{
		Name:  "Duty",
		Path:  "duties",
		Table: domain.DutyTable,
		Filters: append(query.Filters{
			query.OneOf("organisation", "organisation_id"),
			query.OneOf("person", "person_id"),
			query.EnumOneOf("dutyRole", "duty_role", domain.DutyRoles),
		}, query.Validity(false)...),
		Relations: []Relation{{Name: "person", Target: "persons", Local: "person_id", Foreign: "id"}},
		References: []Reference{
			{Field: "person_id", Name: "person_name", Target: "persons"},
			{Field: "organisation_id", Name: "duty_at_name", Target: "organisations"},
		},
	}

	groupSpec = Spec[domain.Group]{
		Name:  "Group",
		Path:  "groups",
		Table: domain.GroupTable,
		Filters: append(query.Filters{
			query.EnumOneOf("groupType", "group_type", domain.GroupTypes),
			query.EnumSetContains("schoolTypes", "school_types", domain.SchoolTypes),
			query.OneOf("organisation", "organisation_id"),
		}, query.Validity(false)...),
		Relations: []Relation{
			{Name: "assignmentRoles", Target: "assignmentRoles", Local: "id", Foreign: "group_id", Many: true},
			{Name: "groupMemberships", Target: "groupMemberships", Local: "id", Foreign: "group_id", Many: true},
		},
		References: []Reference{{Field: "organisation_id", Name: "organisation_name", Target: "organisations"}},
		NameColumn: "display_name",
	}

	groupMembershipSpec = Spec[domain.GroupMembership]{
		Name:  "GroupMembership",
		Path:  "groupMemberships",
		Table: domain.GroupMembershipTable,
		Filters: append(query.Filters{
			query.OneOf("group", "group_id"),
			query.OneOf("person", "person_id"),
		}, query.Validity(false)...),
		References: []Reference{
			{Field: "group_id", Name: "group_name", Target: "groups"},
			{Field: "person_id", Name: "person_name", Target: "persons"},
		},
	}

	assignmentRoleSpec = Spec[domain.AssignmentRole]{
		Name:  "AssignmentRole",
		Path:  "assignmentRoles",
		Table: domain.AssignmentRoleTable,
		Filters: append(query.Filters{
			query.OneOf("group", "group_id"),
			query.OneOf("person", "person_id"),
			query.OneOf("assignmentRoleType", "assignment_role_type"),
		}, query.Validity(false)...),
		Relations: []Relation{{Name: "person", Target: "persons", Local: "person_id", Foreign: "id"}},
		References: []Reference{
			{Field: "group_id", Name: "group_name", Target: "groups"},
			{Field: "person_id", Name: "person_name", Target: "persons"},
		},
	}

	responsibleForSpec = Spec[domain.ResponsibleFor]{
		Name:  "ResponsibleFor",
		Path:  "responsibleFor",
		Table: domain.ResponsibleForTable,
		Filters: append(query.Filters{
			query.OneOf("responsible", "responsible_id"),
			query.OneOf("child", "child_id"),
		}, query.Validity(false)...),
		References: []Reference{
			{Field: "responsible_id", Name: "responsible_name", Target: "persons"},
			{Field: "child_id", Name: "child_name", Target: "persons"},
		},
	}

	enrolmentSpec = Spec[domain.Enrolment]{
		Name:  "Enrolment",
		Path:  "enrolments",
		Table: domain.EnrolmentTable,
		Filters: append(query.Filters{
			query.OneOf("person", "person_id"),
			query.OneOf("organisation", "enroled_at_id"),
		}, query.Validity(false)...),
		References: []Reference{
			{Field: "person_id", Name: "person_name", Target: "persons"},
			{Field: "enroled_at_id", Name: "enroled_at_name", Target: "organisations"},
		},
	}

	programmeSpec = Spec[domain.Programme]{
		Name:  "Programme",
		Path:  "programmes",
		Table: domain.ProgrammeTable,
		Filters: query.Filters{
			query.EnumSetContains("schoolTypes", "school_types", domain.SchoolTypes),
			query.OneOf("code", "code"),
			query.OneOf("parentProgramme", "parent_programme_id"),
		},
		References: []Reference{{Field: "parent_programme_id", Name: "parent_programme_name", Target: "programmes"}},
		NameColumn: "name",
	}

	studyPlanSpec = Spec[domain.StudyPlan]{
		Name:  "StudyPlan",
		Path:  "studyPlans",
		Table: domain.StudyPlanTable,
		Filters: append(query.Filters{
			query.OneOf("student", "student_id"),
		}, query.Validity(true)...),
		References: []Reference{{Field: "student_id", Name: "student_name", Target: "persons"}},
	}

	syllabusSpec = Spec[domain.Syllabus]{
		Name:  "Syllabus",
		Path:  "syllabuses",
		Table: domain.SyllabusTable,
		Filters: append(query.Filters{
			query.OneOf("subjectCode", "subject_code"),
			query.OneOf("courseCode", "course_code"),
			query.SetContains("schoolUnitOfferings", "school_unit_offerings"),
			query.SetContains("programmes", "programmes"),
		}, query.Validity(false)...),
	}

	schoolUnitOfferingSpec = Spec[domain.SchoolUnitOffering]{
		Name:  "SchoolUnitOffering",
		Path:  "schoolUnitOfferings",
		Table: domain.SchoolUnitOfferingTable,
		Filters: append(query.Filters{
			query.OneOf("organisation", "offered_at_id"),
		}, query.Validity(false)...),
		Relations:  []Relation{{Name: "offeredAt", Target: "organisations", Local: "offered_at_id", Foreign: "id"}},
		References: []Reference{{Field: "offered_at_id", Name: "offered_at_name", Target: "organisations"}},
	}

	activitySpec = Spec[domain.Activity]{
		Name:  "Activity",
		Path:  "activities",
		Table: domain.ActivityTable,
		Filters: append(query.Filters{
			query.OneOf("organisation", "organisation_id"),
		}, query.Validity(false)...),
		Relations: []Relation{
			{Name: "calendarEvents", Target: "calendarEvents", Local: "id", Foreign: "activity_id", Many: true},
			{Name: "attendances", Target: "attendance", Local: "id", Foreign: "activity_id", Many: true},
		},
		References: []Reference{{Field: "organisation_id", Name: "organisation_name", Target: "organisations"}},
		NameColumn: "name",
	}

	calendarEventSpec = Spec[domain.CalendarEvent]{
		Name:  "CalendarEvent",
		Path:  "calendarEvents",
		Table: domain.CalendarEventTable,
		Filters: query.Filters{
			query.OneOf("activity", "activity_id"),
			query.TimeBound("startTime.onOrAfter", "start_time", filter.Ge),
			query.TimeBound("startTime.onOrBefore", "start_time", filter.Le),
		},
		Relations:  []Relation{{Name: "activity", Target: "activities", Local: "activity_id", Foreign: "id"}},
		References: []Reference{{Field: "activity_id", Name: "activity_name", Target: "activities"}},
	}

	attendanceSpec = Spec[domain.Attendance]{
		Name:  "Attendance",
		Path:  "attendance",
		Table: domain.AttendanceTable,
		Filters: query.Filters{
			query.OneOf("person", "person_id"),
			query.OneOf("activity", "activity_id"),
			query.OneOf("attendanceEvent", "attendance_event_id"),
		},
		Relations: []Relation{
			{Name: "person", Target: "persons", Local: "person_id", Foreign: "id"},
			{Name: "activity", Target: "activities", Local: "activity_id", Foreign: "id"},
			{Name: "attendanceEvent", Target: "attendanceEvents", Local: "attendance_event_id", Foreign: "id"},
		},
		References: []Reference{
			{Field: "person_id", Name: "person_name", Target: "persons"},
			{Field: "activity_id", Name: "activity_name", Target: "activities"},
			{Field: "attendance_event_id", Name: "attendance_event_name", Target: "attendanceEvents"},
		},
	}

	attendanceEventSpec = Spec[domain.AttendanceEvent]{
		Name:       "AttendanceEvent",
		Path:       "attendanceEvents",
		Table:      domain.AttendanceEventTable,
		NameColumn: "name",
	}

	attendanceScheduleSpec = Spec[domain.AttendanceSchedule]{
		Name:  "AttendanceSchedule",
		Path:  "attendanceSchedules",
		Table: domain.AttendanceScheduleTable,
	}

	gradeSpec = Spec[domain.Grade]{
		Name:       "Grade",
		Path:       "grades",
		Table:      domain.GradeTable,
		Filters:    query.Filters{query.OneOf("person", "person_id")},
		Relations:  []Relation{{Name: "person", Target: "persons", Local: "person_id", Foreign: "id"}},
		References: []Reference{{Field: "person_id", Name: "person_name", Target: "persons"}},
	}

	aggregatedAttendanceSpec = Spec[domain.AggregatedAttendance]{
		Name:       "AggregatedAttendance",
		Path:       "aggregatedAttendance",
		Table:      domain.AggregatedAttendanceTable,
		Filters:    query.Filters{query.OneOf("person", "person_id")},
		Relations:  []Relation{{Name: "person", Target: "persons", Local: "person_id", Foreign: "id"}},
		References: []Reference{{Field: "person_id", Name: "person_name", Target: "persons"}},
	}

	resourceSpec = Spec[domain.Resource]{Name: "Resource", Path: "resources", Table: domain.ResourceTable}
	roomSpec     = Spec[domain.Room]{Name: "Room", Path: "rooms", Table: domain.RoomTable}

	subscriptionSpec = Spec[domain.Subscription]{Name: "Subscription", Path: "subscriptions", Table: domain.SubscriptionTable, UUIDs: true}

	deletedEntitySpec = Spec[domain.DeletedEntity]{
		Name:    "DeletedEntity",
		Path:    "deletedEntities",
		Table:   domain.DeletedEntityTable,
		Filters: query.Filters{query.OneOf("resourceType", "resource_type")},
	}

	logSpec = Spec[domain.Log]{Name: "Log", Path: "log", Table: domain.LogTable}
)

// Registry indexes the resource definitions by path.
type Registry struct {
	Stores *Stores
	byPath map[string]*Definition
	paths  []string
}

// NewRegistry binds every resource to its store in s. It panics if a
// relation or reference names an unknown resource.
func NewRegistry(s *Stores) *Registry {
	r := &Registry{Stores: s, byPath: map[string]*Definition{}}
	r.add(Define(organisationSpec, s.Organisations))
	r.add(Define(personSpec, s.Persons))
	r.add(Define(placementSpec, s.Placements))
	r.add(Define(dutySpec, s.Duties))
	r.add(Define(groupSpec, s.Groups))
	r.add(Define(groupMembershipSpec, s.GroupMemberships))
	r.add(Define(assignmentRoleSpec, s.AssignmentRoles))
	r.add(Define(responsibleForSpec, s.ResponsibleFor))
	r.add(Define(enrolmentSpec, s.Enrolments))
	r.add(Define(programmeSpec, s.Programmes))
	r.add(Define(studyPlanSpec, s.StudyPlans))
	r.add(Define(syllabusSpec, s.Syllabuses))
	r.add(Define(schoolUnitOfferingSpec, s.SchoolUnitOfferings))
	r.add(Define(activitySpec, s.Activities))
	r.add(Define(calendarEventSpec, s.CalendarEvents))
	r.add(Define(attendanceSpec, s.Attendance))
	r.add(Define(attendanceEventSpec, s.AttendanceEvents))
	r.add(Define(attendanceScheduleSpec, s.AttendanceSchedules))
	r.add(Define(gradeSpec, s.Grades))
	r.add(Define(aggregatedAttendanceSpec, s.AggregatedAttendance))
	r.add(Define(resourceSpec, s.Resources))
	r.add(Define(roomSpec, s.Rooms))
	r.add(Define(subscriptionSpec, s.Subscriptions))
	r.add(Define(deletedEntitySpec, s.DeletedEntities))
	r.add(Define(logSpec, s.Logs))
	sort.Strings(r.paths)

	if err := r.check(); err != nil {
		panic(err)
	}
	return r
}

func (r *Registry) add(d *Definition) {
	if _, dup := r.byPath[d.Path]; dup {
		panic("resource: duplicate path " + d.Path)
	}
	r.byPath[d.Path] = d
	r.paths = append(r.paths, d.Path)
}

func (r *Registry) check() error {
	for _, d := range r.byPath {
		for _, rel := range d.Relations {
			if _, ok := r.byPath[rel.Target]; !ok {
				return fmt.Errorf("resource %s: relation %s targets unknown resource %s", d.Name, rel.Name, rel.Target)
			}
		}
		for _, ref := range d.References {
			target, ok := r.byPath[ref.Target]
			if !ok {
				return fmt.Errorf("resource %s: reference %s targets unknown resource %s", d.Name, ref.Name, ref.Target)
			}
			if target.NameColumn == "" {
				return fmt.Errorf("resource %s: reference target %s has no name column", d.Name, ref.Target)
			}
		}
	}
	return nil
}

// Get returns the resource served at path.
func (r *Registry) Get(path string) (*Definition, error) {
	d, ok := r.byPath[path]
	if !ok {
		return nil, domain.ErrNotFound("unknown resource %q", path)
	}
	return d, nil
}

// Paths lists every resource path, sorted.
func (r *Registry) Paths() []string {
	return slices.Clone(r.paths)
}

// Has reports whether path names a resource.
func (r *Registry) Has(path string) bool {
	_, ok := r.byPath[path]
	return ok
}
