package domain

import (
	"database/sql/driver"
	"fmt"
	"slices"
	"strings"

	"ss12000-mock/internal/filter"
)

// Set is an ordered, duplicate-free set of string-like values. It is
// persisted as a single delimiter-joined column and exposed as a JSON array.
type Set[T ~string] []T

// NewSet builds a set from values, dropping blanks and duplicates while
// keeping first-seen order.
func NewSet[T ~string](values ...T) Set[T] {
	out := make(Set[T], 0, len(values))
	for _, v := range values {
		v = T(strings.TrimSpace(string(v)))
		if v == "" || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// DecodeSet parses the stored delimited form.
func DecodeSet[T ~string](raw string) Set[T] {
	tokens := filter.SplitSet(raw)
	vals := make([]T, len(tokens))
	for i, tok := range tokens {
		vals[i] = T(tok)
	}
	return NewSet(vals...)
}

// Encode returns the stored delimited form.
func (s Set[T]) Encode() string {
	parts := make([]string, len(s))
	for i, v := range s {
		parts[i] = string(v)
	}
	return strings.Join(parts, filter.SetDelimiter)
}

// Contains reports whether v is a member of the set.
func (s Set[T]) Contains(v T) bool {
	return slices.Contains(s, v)
}

// Column returns the encoded value, or nil for an empty set.
func (s Set[T]) Column() any {
	if len(s) == 0 {
		return nil
	}
	return s.Encode()
}

// Value implements driver.Valuer.
func (s Set[T]) Value() (driver.Value, error) {
	return s.Column(), nil
}

// Scan implements sql.Scanner.
func (s *Set[T]) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = nil
	case string:
		*s = DecodeSet[T](v)
	case []byte:
		*s = DecodeSet[T](string(v))
	default:
		return fmt.Errorf("scan set: unsupported type %T", src)
	}
	return nil
}
