package domain

// Person is anyone the school data covers: students, guardians and staff.
type Person struct {
	Meta                      `yaml:",inline"`
	DisplayName               string          `json:"display_name" yaml:"display_name" validate:"required"`
	GivenName                 *string         `json:"given_name,omitempty" yaml:"given_name"`
	FamilyName                *string         `json:"family_name,omitempty" yaml:"family_name"`
	Email                     *string         `json:"email,omitempty" yaml:"email"`
	CivicNo                   *string         `json:"civic_no,omitempty" yaml:"civic_no"`
	EduPersonPrincipalName    *string         `json:"edu_person_principal_name,omitempty" yaml:"edu_person_principal_name"`
	ExternalIdentifierValue   *string         `json:"external_identifier_value,omitempty" yaml:"external_identifier_value"`
	ExternalIdentifierContext *string         `json:"external_identifier_context,omitempty" yaml:"external_identifier_context"`
	SecurityMarking           SecurityMarking `json:"security_marking" yaml:"security_marking" validate:"required,enum"`
}

// PersonTable is the column table for persons.
var PersonTable = NewTable("persons",
	func(p *Person) *Meta { return &p.Meta },
	StringCol("display_name", func(p *Person) *string { return &p.DisplayName }),
	OptStringCol("given_name", func(p *Person) **string { return &p.GivenName }),
	OptStringCol("family_name", func(p *Person) **string { return &p.FamilyName }),
	OptStringCol("email", func(p *Person) **string { return &p.Email }),
	OptStringCol("civic_no", func(p *Person) **string { return &p.CivicNo }),
	OptStringCol("edu_person_principal_name", func(p *Person) **string { return &p.EduPersonPrincipalName }),
	OptStringCol("external_identifier_value", func(p *Person) **string { return &p.ExternalIdentifierValue }),
	OptStringCol("external_identifier_context", func(p *Person) **string { return &p.ExternalIdentifierContext }),
	EnumCol("security_marking", func(p *Person) *SecurityMarking { return &p.SecurityMarking }),
).WithUnique("civic_no")
