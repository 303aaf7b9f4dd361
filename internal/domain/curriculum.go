package domain

// Programme is a curriculum programme, optionally nested under a parent.
type Programme struct {
	Meta              `yaml:",inline"`
	Name              string          `json:"name" yaml:"name" validate:"required"`
	Code              string          `json:"code" yaml:"code" validate:"required"`
	ParentProgrammeID *string         `json:"parent_programme_id,omitempty" yaml:"parent_programme_id"`
	SchoolTypes       Set[SchoolType] `json:"school_types,omitempty" yaml:"school_types" validate:"dive,enum"`
}

// ProgrammeTable is the column table for programmes.
var ProgrammeTable = NewTable("programmes",
	func(p *Programme) *Meta { return &p.Meta },
	StringCol("name", func(p *Programme) *string { return &p.Name }),
	StringCol("code", func(p *Programme) *string { return &p.Code }),
	OptStringCol("parent_programme_id", func(p *Programme) **string { return &p.ParentProgrammeID }),
	SetCol("school_types", func(p *Programme) *Set[SchoolType] { return &p.SchoolTypes }),
)

// StudyPlan is a student's planned course of study.
type StudyPlan struct {
	Meta      `yaml:",inline"`
	Name      string `json:"name" yaml:"name" validate:"required"`
	StudentID string `json:"student_id" yaml:"student_id" validate:"required"`
	Validity  `yaml:",inline"`
}

// StudyPlanTable is the column table for study plans.
var StudyPlanTable = NewTable("study_plans",
	func(s *StudyPlan) *Meta { return &s.Meta },
	append([]Column[StudyPlan]{
		StringCol("name", func(s *StudyPlan) *string { return &s.Name }),
		StringCol("student_id", func(s *StudyPlan) *string { return &s.StudentID }),
	}, ValidityCols(func(s *StudyPlan) *Validity { return &s.Validity })...)...,
)

// Syllabus describes a subject or course and where it is offered.
type Syllabus struct {
	Meta                `yaml:",inline"`
	Name                string      `json:"name" yaml:"name" validate:"required"`
	SubjectCode         *string     `json:"subject_code,omitempty" yaml:"subject_code"`
	CourseCode          *string     `json:"course_code,omitempty" yaml:"course_code"`
	Programmes          Set[string] `json:"programmes,omitempty" yaml:"programmes"`
	SchoolUnitOfferings Set[string] `json:"school_unit_offerings,omitempty" yaml:"school_unit_offerings"`
	Validity            `yaml:",inline"`
}

// SyllabusTable is the column table for syllabuses.
var SyllabusTable = NewTable("syllabuses",
	func(s *Syllabus) *Meta { return &s.Meta },
	append([]Column[Syllabus]{
		StringCol("name", func(s *Syllabus) *string { return &s.Name }),
		OptStringCol("subject_code", func(s *Syllabus) **string { return &s.SubjectCode }),
		OptStringCol("course_code", func(s *Syllabus) **string { return &s.CourseCode }),
		SetCol("programmes", func(s *Syllabus) *Set[string] { return &s.Programmes }),
		SetCol("school_unit_offerings", func(s *Syllabus) *Set[string] { return &s.SchoolUnitOfferings }),
	}, ValidityCols(func(s *Syllabus) *Validity { return &s.Validity })...)...,
)

// SchoolUnitOffering is what a school unit offers during a period.
type SchoolUnitOffering struct {
	Meta        `yaml:",inline"`
	Name        string `json:"name" yaml:"name" validate:"required"`
	OfferedAtID string `json:"offered_at_id" yaml:"offered_at_id" validate:"required"`
	Validity    `yaml:",inline"`
}

// SchoolUnitOfferingTable is the column table for school unit offerings.
var SchoolUnitOfferingTable = NewTable("school_unit_offerings",
	func(s *SchoolUnitOffering) *Meta { return &s.Meta },
	append([]Column[SchoolUnitOffering]{
		StringCol("name", func(s *SchoolUnitOffering) *string { return &s.Name }),
		StringCol("offered_at_id", func(s *SchoolUnitOffering) *string { return &s.OfferedAtID }),
	}, ValidityCols(func(s *SchoolUnitOffering) *Validity { return &s.Validity })...)...,
)
