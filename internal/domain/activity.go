package domain

import "time"

// Activity is planned teaching or other scheduled work.
type Activity struct {
	Meta           `yaml:",inline"`
	Name           string  `json:"name" yaml:"name" validate:"required"`
	OrganisationID *string `json:"organisation_id,omitempty" yaml:"organisation_id"`
	Validity       `yaml:",inline"`
}

// ActivityTable is the column table for activities.
var ActivityTable = NewTable("activities",
	func(a *Activity) *Meta { return &a.Meta },
	append([]Column[Activity]{
		StringCol("name", func(a *Activity) *string { return &a.Name }),
		OptStringCol("organisation_id", func(a *Activity) **string { return &a.OrganisationID }),
	}, ValidityCols(func(a *Activity) *Validity { return &a.Validity })...)...,
)

// CalendarEvent is one scheduled occurrence of an activity.
type CalendarEvent struct {
	Meta       `yaml:",inline"`
	Name       string     `json:"name" yaml:"name" validate:"required"`
	ActivityID string     `json:"activity_id" yaml:"activity_id" validate:"required"`
	StartTime  *time.Time `json:"start_time,omitempty" yaml:"start_time"`
	EndTime    *time.Time `json:"end_time,omitempty" yaml:"end_time"`
}

// CalendarEventTable is the column table for calendar events.
var CalendarEventTable = NewTable("calendar_events",
	func(c *CalendarEvent) *Meta { return &c.Meta },
	StringCol("name", func(c *CalendarEvent) *string { return &c.Name }),
	StringCol("activity_id", func(c *CalendarEvent) *string { return &c.ActivityID }),
	OptTimeCol("start_time", func(c *CalendarEvent) **time.Time { return &c.StartTime }),
	OptTimeCol("end_time", func(c *CalendarEvent) **time.Time { return &c.EndTime }),
)

// Attendance records a person's attendance at an activity.
type Attendance struct {
	Meta              `yaml:",inline"`
	PersonID          string  `json:"person_id" yaml:"person_id" validate:"required"`
	ActivityID        *string `json:"activity_id,omitempty" yaml:"activity_id"`
	AttendanceEventID *string `json:"attendance_event_id,omitempty" yaml:"attendance_event_id"`
}

// AttendanceTable is the column table for attendance records.
var AttendanceTable = NewTable("attendance",
	func(a *Attendance) *Meta { return &a.Meta },
	StringCol("person_id", func(a *Attendance) *string { return &a.PersonID }),
	OptStringCol("activity_id", func(a *Attendance) **string { return &a.ActivityID }),
	OptStringCol("attendance_event_id", func(a *Attendance) **string { return &a.AttendanceEventID }),
)

// AttendanceEvent is a check-in or check-out style event.
type AttendanceEvent struct {
	Meta `yaml:",inline"`
	Name string `json:"name" yaml:"name" validate:"required"`
}

// AttendanceEventTable is the column table for attendance events.
var AttendanceEventTable = NewTable("attendance_events",
	func(a *AttendanceEvent) *Meta { return &a.Meta },
	StringCol("name", func(a *AttendanceEvent) *string { return &a.Name }),
)

// AttendanceSchedule is an expected-attendance schedule.
type AttendanceSchedule struct {
	Meta `yaml:",inline"`
	Name string `json:"name" yaml:"name" validate:"required"`
}

// AttendanceScheduleTable is the column table for attendance schedules.
var AttendanceScheduleTable = NewTable("attendance_schedules",
	func(a *AttendanceSchedule) *Meta { return &a.Meta },
	StringCol("name", func(a *AttendanceSchedule) *string { return &a.Name }),
)

// Grade is a grade awarded to a person.
type Grade struct {
	Meta       `yaml:",inline"`
	PersonID   string `json:"person_id" yaml:"person_id" validate:"required"`
	GradeValue string `json:"grade_value" yaml:"grade_value" validate:"required"`
}

// GradeTable is the column table for grades.
var GradeTable = NewTable("grades",
	func(g *Grade) *Meta { return &g.Meta },
	StringCol("person_id", func(g *Grade) *string { return &g.PersonID }),
	StringCol("grade_value", func(g *Grade) *string { return &g.GradeValue }),
)

// AggregatedAttendance is a person's attendance rate in percent.
type AggregatedAttendance struct {
	Meta                 `yaml:",inline"`
	PersonID             string  `json:"person_id" yaml:"person_id" validate:"required"`
	AttendancePercentage float64 `json:"attendance_percentage" yaml:"attendance_percentage" validate:"gte=0,lte=100"`
}

// AggregatedAttendanceTable is the column table for aggregated attendance.
var AggregatedAttendanceTable = NewTable("aggregated_attendance",
	func(a *AggregatedAttendance) *Meta { return &a.Meta },
	StringCol("person_id", func(a *AggregatedAttendance) *string { return &a.PersonID }),
	FloatCol("attendance_percentage", func(a *AggregatedAttendance) *float64 { return &a.AttendancePercentage }),
)

// Resource is a bookable resource such as equipment.
type Resource struct {
	Meta `yaml:",inline"`
	Name string `json:"name" yaml:"name" validate:"required"`
}

// ResourceTable is the column table for resources.
var ResourceTable = NewTable("resources",
	func(r *Resource) *Meta { return &r.Meta },
	StringCol("name", func(r *Resource) *string { return &r.Name }),
)

// Room is a bookable room.
type Room struct {
	Meta `yaml:",inline"`
	Name string `json:"name" yaml:"name" validate:"required"`
}

// RoomTable is the column table for rooms.
var RoomTable = NewTable("rooms",
	func(r *Room) *Meta { return &r.Meta },
	StringCol("name", func(r *Room) *string { return &r.Name }),
)
