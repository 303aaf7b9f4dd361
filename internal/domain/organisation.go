package domain

// Organisation is a node in the organisation tree: a principal organiser,
// municipality, school or department.
type Organisation struct {
	Meta             `yaml:",inline"`
	Name             string           `json:"name" yaml:"name" validate:"required"`
	ParentID         *string          `json:"parent_id,omitempty" yaml:"parent_id"`
	SchoolUnitCode   *string          `json:"school_unit_code,omitempty" yaml:"school_unit_code"`
	OrganisationCode *string          `json:"organisation_code,omitempty" yaml:"organisation_code"`
	MunicipalityCode *string          `json:"municipality_code,omitempty" yaml:"municipality_code"`
	Type             OrganisationType `json:"type" yaml:"type" validate:"required,enum"`
	SchoolTypes      Set[SchoolType]  `json:"school_types,omitempty" yaml:"school_types" validate:"dive,enum"`
	Validity         `yaml:",inline"`
}

// OrganisationTable is the column table for organisations.
var OrganisationTable = NewTable("organisations",
	func(o *Organisation) *Meta { return &o.Meta },
	append([]Column[Organisation]{
		StringCol("name", func(o *Organisation) *string { return &o.Name }),
		OptStringCol("parent_id", func(o *Organisation) **string { return &o.ParentID }),
		OptStringCol("school_unit_code", func(o *Organisation) **string { return &o.SchoolUnitCode }),
		OptStringCol("organisation_code", func(o *Organisation) **string { return &o.OrganisationCode }),
		OptStringCol("municipality_code", func(o *Organisation) **string { return &o.MunicipalityCode }),
		EnumCol("type", func(o *Organisation) *OrganisationType { return &o.Type }),
		SetCol("school_types", func(o *Organisation) *Set[SchoolType] { return &o.SchoolTypes }),
	}, ValidityCols(func(o *Organisation) *Validity { return &o.Validity })...)...,
)
