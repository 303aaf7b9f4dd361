package domain

import (
	"slices"
	"time"
)

// StringCol declares a required text column.
func StringCol[T any](name string, f func(*T) *string) Column[T] {
	return Column[T]{
		Name: name,
		Get:  func(r *T) any { return *f(r) },
		Ref:  func(r *T) any { return f(r) },
	}
}

// OptStringCol declares a nullable text column.
func OptStringCol[T any](name string, f func(*T) **string) Column[T] {
	return Column[T]{
		Name:   name,
		Get:    func(r *T) any { return StringColumn(*f(r)) },
		Ref:    func(r *T) any { return f(r) },
		Detach: func(r *T) { detachPtr(f(r)) },
	}
}

// EnumCol declares a required text column holding an enum value.
func EnumCol[T any, E ~string](name string, f func(*T) *E) Column[T] {
	return Column[T]{
		Name: name,
		Get:  func(r *T) any { return string(*f(r)) },
		Ref:  func(r *T) any { return f(r) },
	}
}

// SetCol declares a delimited multi-valued column.
func SetCol[T any, E ~string](name string, f func(*T) *Set[E]) Column[T] {
	return Column[T]{
		Name:   name,
		Get:    func(r *T) any { return f(r).Column() },
		Ref:    func(r *T) any { return f(r) },
		Detach: func(r *T) { *f(r) = slices.Clone(*f(r)) },
	}
}

// DateCol declares a nullable calendar date column.
func DateCol[T any](name string, f func(*T) **Date) Column[T] {
	return Column[T]{
		Name:   name,
		Get:    func(r *T) any { return DateColumn(*f(r)) },
		Ref:    func(r *T) any { return f(r) },
		Detach: func(r *T) { detachPtr(f(r)) },
	}
}

// TimeCol declares a required timestamp column.
func TimeCol[T any](name string, f func(*T) *time.Time) Column[T] {
	return Column[T]{
		Name: name,
		Get:  func(r *T) any { return f(r).UTC() },
		Ref:  func(r *T) any { return f(r) },
	}
}

// OptTimeCol declares a nullable timestamp column.
func OptTimeCol[T any](name string, f func(*T) **time.Time) Column[T] {
	return Column[T]{
		Name:   name,
		Get:    func(r *T) any { return TimeColumn(*f(r)) },
		Ref:    func(r *T) any { return f(r) },
		Detach: func(r *T) { detachPtr(f(r)) },
	}
}

// FloatCol declares a required numeric column.
func FloatCol[T any](name string, f func(*T) *float64) Column[T] {
	return Column[T]{
		Name: name,
		Get:  func(r *T) any { return *f(r) },
		Ref:  func(r *T) any { return f(r) },
	}
}

func detachPtr[V any](p **V) {
	if *p != nil {
		v := **p
		*p = &v
	}
}

// Validity is the optional start/end interval shared by most relations.
type Validity struct {
	StartDate *Date `json:"start_date,omitempty" yaml:"start_date"`
	EndDate   *Date `json:"end_date,omitempty" yaml:"end_date"`
}

// ValidityCols declares the start_date and end_date columns.
func ValidityCols[T any](f func(*T) *Validity) []Column[T] {
	return []Column[T]{
		DateCol("start_date", func(r *T) **Date { return &f(r).StartDate }),
		DateCol("end_date", func(r *T) **Date { return &f(r).EndDate }),
	}
}
