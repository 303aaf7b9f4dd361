package resource

import (
	"ss12000-mock/internal/domain"
	"ss12000-mock/internal/filter"
	"ss12000-mock/internal/query"
)

const (
	relationshipType         = "relationship.entity.type"
	relationshipOrganisation = "relationship.organisation"
)

// relationshipDates constrain the relation row a person is joined through.
var relationshipDates = query.Filters{
	query.DateBound("relationship.startDate.onOrBefore", "start_date", filter.Le, false),
	query.DateBound("relationship.startDate.onOrAfter", "start_date", filter.Ge, false),
	query.DateBound("relationship.endDate.onOrBefore", "end_date", filter.Le, false),
	query.DateBound("relationship.endDate.onOrAfter", "end_date", filter.Ge, true),
}

// relationKind joins persons to one relation table.
type relationKind struct {
	table  string
	person string
	// scope restricts relation rows to the given organisations.
	scope    func(orgs []string) filter.Predicate
	guardian bool
}

func inColumn(column string) func([]string) filter.Predicate {
	return func(orgs []string) filter.Predicate { return filter.InStrings(column, orgs) }
}

var (
	enrolmentKind      = relationKind{table: "enrolments", person: "person_id", scope: inColumn("enroled_at_id")}
	placementChildKind = relationKind{table: "placements", person: "child_id", scope: inColumn("organisation_id")}
)

var relationKinds = map[domain.RelationshipType]relationKind{
	domain.RelationshipEnrolment:      enrolmentKind,
	domain.RelationshipDuty:           {table: "duties", person: "person_id", scope: inColumn("organisation_id")},
	domain.RelationshipPlacementChild: placementChildKind,
	domain.RelationshipPlacementOwner: {table: "placements", person: "owner_id", scope: inColumn("organisation_id")},
	domain.RelationshipGroupMembership: {table: "group_memberships", person: "person_id", scope: func(orgs []string) filter.Predicate {
		return filter.Related{Field: "group_id", Table: "groups", Column: "id", Where: filter.InStrings("organisation_id", orgs)}
	}},
	domain.RelationshipResponsibleForEnrolment: guardianOf(enrolmentKind),
	domain.RelationshipResponsibleForPlacement: guardianOf(placementChildKind),
}

// guardianOf joins responsible persons through their children's relation of
// the given kind. The child relation must exist; an organisation scope
// applies to it.
func guardianOf(child relationKind) relationKind {
	return relationKind{
		table:    "responsible_for",
		person:   "responsible_id",
		guardian: true,
		scope: func(orgs []string) filter.Predicate {
			var where filter.Predicate
			if len(orgs) > 0 {
				where = child.scope(orgs)
			}
			return filter.Related{Field: "child_id", Table: child.table, Column: child.person, Where: where}
		},
	}
}

// where returns the predicate on the relation row, or nil when unconstrained.
func (k relationKind) where(orgs []string, dates filter.Predicate) filter.Predicate {
	var scope filter.Predicate
	if len(orgs) > 0 || k.guardian {
		scope = k.scope(orgs)
	}
	return filter.All(scope, dates)
}

// relationshipFilter matches persons through their relations. With no entity
// type the constraint may be satisfied by any relation kind.
func relationshipFilter() query.Filter {
	params := append([]string{relationshipType, relationshipOrganisation}, relationshipDates.ParamNames()...)
	return query.Filter{Params: params, Build: func(v query.Values) (filter.Predicate, error) {
		types := domain.RelationshipTypes
		if v.Has(relationshipType) {
			types = nil
			for _, raw := range v.List(relationshipType) {
				rt, err := domain.ParseEnum(relationshipType, raw, domain.RelationshipTypes)
				if err != nil {
					return nil, err
				}
				types = append(types, rt)
			}
		}
		dates, err := relationshipDates.Build(v)
		if err != nil {
			return nil, err
		}
		orgs := v.List(relationshipOrganisation)

		anyOf := make(filter.Or, 0, len(types))
		for _, rt := range types {
			k := relationKinds[rt]
			anyOf = append(anyOf, filter.Related{Field: "id", Table: k.table, Column: k.person, Where: k.where(orgs, dates)})
		}
		if len(anyOf) == 1 {
			return anyOf[0], nil
		}
		return anyOf, nil
	}}
}
