// Package validator checks request bodies and fixture records against their
// validate struct tags.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"ss12000-mock/internal/domain"
)

// Validator wraps go-playground/validator with the custom tags used by the
// domain records.
type Validator struct {
	validate *validator.Validate
}

// New creates a Validator. knownResource backs the resource_type tag.
func New(knownResource func(string) bool) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})

	// Custom validators
	_ = v.RegisterValidation("resource_type", func(fl validator.FieldLevel) bool {
		return knownResource(fl.Field().String())
	})
	_ = v.RegisterValidation("enum", validateEnum)

	return &Validator{validate: v}
}

// Validate checks i and reports the first failing field as a
// ValidationError.
func (v *Validator) Validate(i interface{}) error {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return domain.ErrValidation("%s", describe(fieldErrs[0]))
	}
	return fmt.Errorf("validate: %w", err)
}

type enumValue interface {
	Valid() bool
}

func validateEnum(fl validator.FieldLevel) bool {
	f := fl.Field()
	if f.Kind() == reflect.String && f.String() == "" {
		return true
	}
	e, ok := f.Interface().(enumValue)
	return ok && e.Valid()
}

func describe(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "resource_type":
		return fmt.Sprintf("%s: unknown resource type %q", field, fe.Value())
	case "enum":
		return fmt.Sprintf("%s: unknown value %q", field, fe.Value())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "gte", "lte":
		return fmt.Sprintf("%s is out of range", field)
	default:
		return fmt.Sprintf("%s failed the %s check", field, fe.Tag())
	}
}
