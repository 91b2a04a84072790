package openapi

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Fragment is a JSON-Schema-shaped mapping describing one type position. Keys
// keep insertion order, so properties are emitted in declaration order when
// the fragment is marshaled to JSON or YAML.
//
// Values are JSON-compatible scalars, []string, []any, []*Fragment or
// *Fragment.
type Fragment struct {
	*orderedmap.OrderedMap[string, any]
}

// NewFragment returns an empty fragment.
func NewFragment() *Fragment {
	return &Fragment{OrderedMap: orderedmap.New[string, any]()}
}

// Keys returns the keys in insertion order.
func (f *Fragment) Keys() []string {
	keys := make([]string, 0, f.Len())
	for p := f.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	return keys
}

// Fragment returns the nested fragment stored under key.
func (f *Fragment) Fragment(key string) (*Fragment, bool) {
	v, ok := f.Get(key)
	if !ok {
		return nil, false
	}
	nested, ok := v.(*Fragment)
	return nested, ok
}

// Overlay copies every entry of o onto f. Existing keys keep their position
// and take o's value.
func (f *Fragment) Overlay(o *Fragment) *Fragment {
	if o == nil {
		return f
	}
	for p := o.Oldest(); p != nil; p = p.Next() {
		f.Set(p.Key, p.Value)
	}
	return f
}

// Clone returns a deep copy of f. Nested fragments are copied; other values
// are shared.
func (f *Fragment) Clone() *Fragment {
	out := NewFragment()
	for p := f.Oldest(); p != nil; p = p.Next() {
		out.Set(p.Key, cloneValue(p.Value))
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case *Fragment:
		return t.Clone()
	case []*Fragment:
		out := make([]*Fragment, len(t))
		for i := range t {
			out[i] = t[i].Clone()
		}
		return out
	case []string:
		return append([]string{}, t...)
	}
	return v
}

// Map converts f into plain Go maps and slices, dropping key order. It is
// meant for comparisons; marshal the fragment itself to keep the order.
func (f *Fragment) Map() map[string]any {
	if f == nil {
		return nil
	}
	out := make(map[string]any, f.Len())
	for p := f.Oldest(); p != nil; p = p.Next() {
		out[p.Key] = plain(p.Value)
	}
	return out
}

func plain(v any) any {
	switch t := v.(type) {
	case *Fragment:
		return t.Map()
	case []*Fragment:
		out := make([]any, len(t))
		for i := range t {
			out[i] = t[i].Map()
		}
		return out
	}
	return v
}

// Components maps component names to their rendered fragments, in the order
// they were first rendered.
type Components struct {
	*orderedmap.OrderedMap[string, *Fragment]
}

// NewComponents returns an empty components map.
func NewComponents() *Components {
	return &Components{OrderedMap: orderedmap.New[string, *Fragment]()}
}

// Names returns the component names in insertion order.
func (c *Components) Names() []string {
	names := make([]string, 0, c.Len())
	for p := c.Oldest(); p != nil; p = p.Next() {
		names = append(names, p.Key)
	}
	return names
}

// Add stores frag under name unless the name is already taken. It reports
// whether frag was stored.
func (c *Components) Add(name string, frag *Fragment) bool {
	if _, ok := c.Get(name); ok {
		return false
	}
	c.Set(name, frag)
	return true
}

// Map converts the components into plain maps, see Fragment.Map.
func (c *Components) Map() map[string]any {
	out := make(map[string]any, c.Len())
	for p := c.Oldest(); p != nil; p = p.Next() {
		out[p.Key] = p.Value.Map()
	}
	return out
}
