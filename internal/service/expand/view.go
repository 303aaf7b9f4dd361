// Package expand shapes fetched records for the response: it attaches
// related records one level deep and adds the names of referenced records.
package expand

import (
	"encoding/json"
	"fmt"

	"ss12000-mock/internal/resource"
)

// View is the response form of one record. The stored record is never
// modified; expansions live in Names and Relations and are merged with the
// record's fields when the view is encoded.
type View struct {
	Record    any
	Names     map[string]*string
	Relations map[string]any

	def  *resource.Definition
	item resource.Item
}

// NewView wraps item, a record of def, without expansions.
func NewView(def *resource.Definition, item resource.Item) *View {
	return &View{Record: item.Record, def: def, item: item}
}

// NewViews wraps every item.
func NewViews(def *resource.Definition, items []resource.Item) []*View {
	views := make([]*View, len(items))
	for i, it := range items {
		views[i] = NewView(def, it)
	}
	return views
}

// ID returns the record identifier.
func (v *View) ID() string { return v.item.ID() }

func (v *View) setName(key string, name *string) {
	if v.Names == nil {
		v.Names = map[string]*string{}
	}
	v.Names[key] = name
}

func (v *View) setRelation(key string, val any) {
	if v.Relations == nil {
		v.Relations = map[string]any{}
	}
	v.Relations[key] = val
}

// MarshalJSON encodes the record's fields followed by the expansions.
func (v *View) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(v.Record)
	if err != nil {
		return nil, err
	}
	if len(v.Names) == 0 && len(v.Relations) == 0 {
		return raw, nil
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("expand %T: %w", v.Record, err)
	}
	for k, name := range v.Names {
		b, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		fields[k] = b
	}
	for k, rel := range v.Relations {
		b, err := json.Marshal(rel)
		if err != nil {
			return nil, err
		}
		fields[k] = b
	}
	return json.Marshal(fields)
}
