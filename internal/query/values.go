// Package query turns decoded list parameters into store queries. It holds
// the predicate builder, the sort resolver and the pagination gate shared by
// every resource endpoint.
package query

import (
	"net/url"
	"strings"
	"unicode"
)

// Values holds list parameters keyed by their canonical dotted names.
type Values map[string][]string

// Has reports whether name was supplied with at least one value.
func (v Values) Has(name string) bool {
	return len(v[name]) > 0
}

// First returns the first value of name.
func (v Values) First(name string) string {
	if vals := v[name]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// List returns every value of name, splitting comma-separated entries.
func (v Values) List(name string) []string {
	var out []string
	for _, raw := range v[name] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// URLValues converts back to url.Values for page tokens.
func (v Values) URLValues() url.Values {
	out := make(url.Values, len(v))
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}

// Alias returns the undotted camelCase spelling of a dotted parameter name:
// "meta.created.before" becomes "metaCreatedBefore".
func Alias(name string) string {
	parts := strings.Split(name, ".")
	var b strings.Builder
	for i, p := range parts {
		if i > 0 && p != "" {
			r := []rune(p)
			r[0] = unicode.ToUpper(r[0])
			p = string(r)
		}
		b.WriteString(p)
	}
	return b.String()
}

// Normalize picks the recognized parameters out of raw, mapping aliases to
// their canonical names. Unrecognized parameters are dropped.
func Normalize(raw url.Values, known []string) Values {
	out := Values{}
	for _, name := range known {
		vals := nonEmpty(raw[name])
		if alias := Alias(name); alias != name {
			vals = append(vals, nonEmpty(raw[alias])...)
		}
		if len(vals) > 0 {
			out[name] = vals
		}
	}
	return out
}

func nonEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
