package domain

// Placement places a child at an organisation, optionally in a group, with
// an owner who is responsible for the placement.
type Placement struct {
	Meta           `yaml:",inline"`
	OrganisationID string  `json:"organisation_id" yaml:"organisation_id" validate:"required"`
	GroupID        *string `json:"group_id,omitempty" yaml:"group_id"`
	ChildID        string  `json:"child_id" yaml:"child_id" validate:"required"`
	OwnerID        *string `json:"owner_id,omitempty" yaml:"owner_id"`
	Validity       `yaml:",inline"`
}

// PlacementTable is the column table for placements.
var PlacementTable = NewTable("placements",
	func(p *Placement) *Meta { return &p.Meta },
	append([]Column[Placement]{
		StringCol("organisation_id", func(p *Placement) *string { return &p.OrganisationID }),
		OptStringCol("group_id", func(p *Placement) **string { return &p.GroupID }),
		StringCol("child_id", func(p *Placement) *string { return &p.ChildID }),
		OptStringCol("owner_id", func(p *Placement) **string { return &p.OwnerID }),
	}, ValidityCols(func(p *Placement) *Validity { return &p.Validity })...)...,
)

// Duty states that a person holds a role at an organisation.
type Duty struct {
	Meta           `yaml:",inline"`
	PersonID       string   `json:"person_id" yaml:"person_id" validate:"required"`
	OrganisationID string   `json:"organisation_id" yaml:"organisation_id" validate:"required"`
	DutyRole       DutyRole `json:"duty_role" yaml:"duty_role" validate:"required,enum"`
	Validity       `yaml:",inline"`
}

// DutyTable is the column table for duties.
var DutyTable = NewTable("duties",
	func(d *Duty) *Meta { return &d.Meta },
	append([]Column[Duty]{
		StringCol("person_id", func(d *Duty) *string { return &d.PersonID }),
		StringCol("organisation_id", func(d *Duty) *string { return &d.OrganisationID }),
		EnumCol("duty_role", func(d *Duty) *DutyRole { return &d.DutyRole }),
	}, ValidityCols(func(d *Duty) *Validity { return &d.Validity })...)...,
)

// Group is a class, teaching group or similar collection of people scoped to
// an organisation.
type Group struct {
	Meta           `yaml:",inline"`
	DisplayName    string          `json:"display_name" yaml:"display_name" validate:"required"`
	GroupType      GroupType       `json:"group_type" yaml:"group_type" validate:"required,enum"`
	SchoolTypes    Set[SchoolType] `json:"school_types,omitempty" yaml:"school_types" validate:"dive,enum"`
	OrganisationID string          `json:"organisation_id" yaml:"organisation_id" validate:"required"`
	Validity       `yaml:",inline"`
}

// GroupTable is the column table for groups.
var GroupTable = NewTable("groups",
	func(g *Group) *Meta { return &g.Meta },
	append([]Column[Group]{
		StringCol("display_name", func(g *Group) *string { return &g.DisplayName }),
		EnumCol("group_type", func(g *Group) *GroupType { return &g.GroupType }),
		SetCol("school_types", func(g *Group) *Set[SchoolType] { return &g.SchoolTypes }),
		StringCol("organisation_id", func(g *Group) *string { return &g.OrganisationID }),
	}, ValidityCols(func(g *Group) *Validity { return &g.Validity })...)...,
)

// GroupMembership makes a person a member of a group.
type GroupMembership struct {
	Meta     `yaml:",inline"`
	PersonID string `json:"person_id" yaml:"person_id" validate:"required"`
	GroupID  string `json:"group_id" yaml:"group_id" validate:"required"`
	Validity `yaml:",inline"`
}

// GroupMembershipTable is the column table for group memberships.
var GroupMembershipTable = NewTable("group_memberships",
	func(m *GroupMembership) *Meta { return &m.Meta },
	append([]Column[GroupMembership]{
		StringCol("person_id", func(m *GroupMembership) *string { return &m.PersonID }),
		StringCol("group_id", func(m *GroupMembership) *string { return &m.GroupID }),
	}, ValidityCols(func(m *GroupMembership) *Validity { return &m.Validity })...)...,
)

// AssignmentRole gives a person a role towards a group, such as mentor.
type AssignmentRole struct {
	Meta               `yaml:",inline"`
	GroupID            string `json:"group_id" yaml:"group_id" validate:"required"`
	PersonID           string `json:"person_id" yaml:"person_id" validate:"required"`
	AssignmentRoleType string `json:"assignment_role_type" yaml:"assignment_role_type" validate:"required"`
	Validity           `yaml:",inline"`
}

// AssignmentRoleTable is the column table for assignment roles.
var AssignmentRoleTable = NewTable("assignment_roles",
	func(a *AssignmentRole) *Meta { return &a.Meta },
	append([]Column[AssignmentRole]{
		StringCol("group_id", func(a *AssignmentRole) *string { return &a.GroupID }),
		StringCol("person_id", func(a *AssignmentRole) *string { return &a.PersonID }),
		StringCol("assignment_role_type", func(a *AssignmentRole) *string { return &a.AssignmentRoleType }),
	}, ValidityCols(func(a *AssignmentRole) *Validity { return &a.Validity })...)...,
)

// ResponsibleFor links a responsible adult to a child, typically guardianship.
type ResponsibleFor struct {
	Meta          `yaml:",inline"`
	ResponsibleID string `json:"responsible_id" yaml:"responsible_id" validate:"required"`
	ChildID       string `json:"child_id" yaml:"child_id" validate:"required"`
	Validity      `yaml:",inline"`
}

// ResponsibleForTable is the column table for responsibilities.
var ResponsibleForTable = NewTable("responsible_for",
	func(r *ResponsibleFor) *Meta { return &r.Meta },
	append([]Column[ResponsibleFor]{
		StringCol("responsible_id", func(r *ResponsibleFor) *string { return &r.ResponsibleID }),
		StringCol("child_id", func(r *ResponsibleFor) *string { return &r.ChildID }),
	}, ValidityCols(func(r *ResponsibleFor) *Validity { return &r.Validity })...)...,
)

// Enrolment enrols a student at an organisation.
type Enrolment struct {
	Meta        `yaml:",inline"`
	PersonID    string `json:"person_id" yaml:"person_id" validate:"required"`
	EnroledAtID string `json:"enroled_at_id" yaml:"enroled_at_id" validate:"required"`
	Validity    `yaml:",inline"`
}

// EnrolmentTable is the column table for enrolments.
var EnrolmentTable = NewTable("enrolments",
	func(e *Enrolment) *Meta { return &e.Meta },
	append([]Column[Enrolment]{
		StringCol("person_id", func(e *Enrolment) *string { return &e.PersonID }),
		StringCol("enroled_at_id", func(e *Enrolment) *string { return &e.EnroledAtID }),
	}, ValidityCols(func(e *Enrolment) *Validity { return &e.Validity })...)...,
)
