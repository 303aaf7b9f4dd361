package domain

import (
	"slices"
	"strings"
)

// OrganisationType classifies an organisation node.
type OrganisationType string

const (
	OrganisationTypeHuvudman  OrganisationType = "Huvudman"
	OrganisationTypeKommun    OrganisationType = "Kommun"
	OrganisationTypeSkola     OrganisationType = "Skola"
	OrganisationTypeSkolenhet OrganisationType = "Skolenhet"
	OrganisationTypeAvdelning OrganisationType = "Avdelning"
)

// OrganisationTypes lists the accepted organisation types.
var OrganisationTypes = []OrganisationType{
	OrganisationTypeHuvudman, OrganisationTypeKommun, OrganisationTypeSkola,
	OrganisationTypeSkolenhet, OrganisationTypeAvdelning,
}

// SchoolType is a school form tag.
type SchoolType string

const (
	SchoolTypeForskola      SchoolType = "Förskola"
	SchoolTypeForskoleklass SchoolType = "Förskoleklass"
	SchoolTypeGrundskola    SchoolType = "Grundskola"
	SchoolTypeGrundsarskola SchoolType = "Grundsärskola"
	SchoolTypeGymnasium     SchoolType = "Gymnasium"
	SchoolTypeVuxen         SchoolType = "Vuxenutbildning"
)

// SchoolTypes lists the accepted school types.
var SchoolTypes = []SchoolType{
	SchoolTypeForskola, SchoolTypeForskoleklass, SchoolTypeGrundskola,
	SchoolTypeGrundsarskola, SchoolTypeGymnasium, SchoolTypeVuxen,
}

// DutyRole is the role a person holds at an organisation.
type DutyRole string

const (
	DutyRoleTeacher   DutyRole = "Teacher"
	DutyRolePrincipal DutyRole = "Principal"
	DutyRoleStudent   DutyRole = "Student"
	DutyRoleStaff     DutyRole = "Staff"
)

// DutyRoles lists the accepted duty roles.
var DutyRoles = []DutyRole{DutyRoleTeacher, DutyRolePrincipal, DutyRoleStudent, DutyRoleStaff}

// GroupType classifies a group.
type GroupType string

const (
	GroupTypeClass    GroupType = "ClassGroup"
	GroupTypeTeaching GroupType = "TeachingGroup"
	GroupTypeMentor   GroupType = "MentorGroup"
)

// GroupTypes lists the accepted group types.
var GroupTypes = []GroupType{GroupTypeClass, GroupTypeTeaching, GroupTypeMentor}

// SecurityMarking is the protected-identity classification of a person.
type SecurityMarking string

const (
	SecurityMarkingNone          SecurityMarking = "Ingen"
	SecurityMarkingConfidential  SecurityMarking = "Sekretessmarkering"
	SecurityMarkingProtectedAddr SecurityMarking = "Skyddad folkbokföring"
)

// SecurityMarkings lists the accepted security markings.
var SecurityMarkings = []SecurityMarking{
	SecurityMarkingNone, SecurityMarkingConfidential, SecurityMarkingProtectedAddr,
}

// RelationshipType names a relation a person can take part in.
type RelationshipType string

const (
	RelationshipEnrolment               RelationshipType = "enrolment"
	RelationshipDuty                    RelationshipType = "duty"
	RelationshipPlacementChild          RelationshipType = "placement.child"
	RelationshipPlacementOwner          RelationshipType = "placement.owner"
	RelationshipGroupMembership         RelationshipType = "groupMembership"
	RelationshipResponsibleForEnrolment RelationshipType = "responsibleFor.enrolment"
	RelationshipResponsibleForPlacement RelationshipType = "responsibleFor.placement"
)

// RelationshipTypes lists the accepted relationship types.
var RelationshipTypes = []RelationshipType{
	RelationshipEnrolment, RelationshipDuty, RelationshipPlacementChild,
	RelationshipPlacementOwner, RelationshipGroupMembership,
	RelationshipResponsibleForEnrolment, RelationshipResponsibleForPlacement,
}

// ParseEnum validates raw against the accepted values of an enum. The error
// names the parameter and lists what is accepted.
func ParseEnum[T ~string](param, raw string, accepted []T) (T, error) {
	v := T(raw)
	if slices.Contains(accepted, v) {
		return v, nil
	}
	names := make([]string, len(accepted))
	for i, a := range accepted {
		names[i] = string(a)
	}
	return "", ErrValidation("invalid value %q for %s: expected one of %s", raw, param, strings.Join(names, ", "))
}

// Valid reports whether t is a known organisation type.
func (t OrganisationType) Valid() bool { return slices.Contains(OrganisationTypes, t) }

// Valid reports whether t is a known school type.
func (t SchoolType) Valid() bool { return slices.Contains(SchoolTypes, t) }

// Valid reports whether r is a known duty role.
func (r DutyRole) Valid() bool { return slices.Contains(DutyRoles, r) }

// Valid reports whether t is a known group type.
func (t GroupType) Valid() bool { return slices.Contains(GroupTypes, t) }

// Valid reports whether m is a known security marking.
func (m SecurityMarking) Valid() bool { return slices.Contains(SecurityMarkings, m) }
