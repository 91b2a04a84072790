// Package jsonschema converts rendered OpenAPI fragments into typed
// invopop/jsonschema schemas, for callers that post-process schemas or emit
// standalone JSON Schema documents.
//
// Keywords without a typed field (choices aside, which becomes enum) are kept
// in Schema.Extras, so nullable survives the conversion as an extra keyword.
package jsonschema

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/vltr/middle-schema/openapi"
)

// DefsPrefix is the $ref prefix of schemas stored in $defs.
const DefsPrefix = "#/$defs/"

// ErrInvalidKeyword reports a keyword whose value does not fit its typed
// field, e.g. a negative minLength.
var ErrInvalidKeyword = errors.New("jsonschema: invalid keyword value")

// FromFragment converts f, leaving $ref pointers untouched.
func FromFragment(f *openapi.Fragment) (*jsonschema.Schema, error) {
	c := converter{ref: func(s string) string { return s }}
	return c.schema(f, "#")
}

// FromResult converts a render result into one self-contained schema:
// components become $defs and component references point into them.
func FromResult(r *openapi.Result) (*jsonschema.Schema, error) {
	c := converter{ref: func(s string) string {
		if name, ok := strings.CutPrefix(s, openapi.RefPrefix); ok {
			return DefsPrefix + name
		}
		return s
	}}
	root, err := c.schema(r.Specification, "#")
	if err != nil {
		return nil, err
	}
	root.Version = jsonschema.Version
	if r.Components == nil || r.Components.Len() == 0 {
		return root, nil
	}
	root.Definitions = jsonschema.Definitions{}
	for p := r.Components.Oldest(); p != nil; p = p.Next() {
		s, err := c.schema(p.Value, DefsPrefix+p.Key)
		if err != nil {
			return nil, err
		}
		root.Definitions[p.Key] = s
	}
	return root, nil
}

type converter struct {
	ref func(string) string
}

func (c converter) schema(f *openapi.Fragment, path string) (*jsonschema.Schema, error) {
	s := &jsonschema.Schema{}
	if f == nil {
		return s, nil
	}
	for p := f.Oldest(); p != nil; p = p.Next() {
		if err := c.keyword(s, p.Key, p.Value, path+"/"+p.Key); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (c converter) keyword(s *jsonschema.Schema, key string, v any, path string) error {
	var err error
	switch key {
	case "$ref":
		s.Ref = c.ref(fmt.Sprint(v))
	case "type":
		s.Type = fmt.Sprint(v)
	case "format":
		s.Format = fmt.Sprint(v)
	case "description":
		s.Description = fmt.Sprint(v)
	case "title":
		s.Title = fmt.Sprint(v)
	case "pattern":
		s.Pattern = fmt.Sprint(v)
	case "default":
		s.Default = v
	case "const":
		s.Const = v
	case "choices", "enum":
		s.Enum, err = list(v, path)
	case "examples":
		s.Examples, err = list(v, path)
	case "required":
		s.Required, err = stringList(v, path)
	case "uniqueItems":
		b, ok := v.(bool)
		if !ok {
			return invalid(path, v)
		}
		s.UniqueItems = b
	case "multipleOf":
		s.MultipleOf, err = number(v, path)
	case "maximum":
		s.Maximum, err = number(v, path)
	case "minimum":
		s.Minimum, err = number(v, path)
	case "exclusiveMaximum":
		s.ExclusiveMaximum, err = number(v, path)
	case "exclusiveMinimum":
		s.ExclusiveMinimum, err = number(v, path)
	case "maxLength":
		s.MaxLength, err = count(v, path)
	case "minLength":
		s.MinLength, err = count(v, path)
	case "maxItems":
		s.MaxItems, err = count(v, path)
	case "minItems":
		s.MinItems, err = count(v, path)
	case "maxProperties":
		s.MaxProperties, err = count(v, path)
	case "minProperties":
		s.MinProperties, err = count(v, path)
	case "items":
		s.Items, err = c.sub(v, path)
	case "additionalProperties":
		s.AdditionalProperties, err = c.sub(v, path)
	case "properties":
		s.Properties, err = c.properties(v, path)
	case "anyOf":
		s.AnyOf, err = c.subs(v, path)
	case "oneOf":
		s.OneOf, err = c.subs(v, path)
	case "allOf":
		s.AllOf, err = c.subs(v, path)
	default:
		if s.Extras == nil {
			s.Extras = map[string]any{}
		}
		s.Extras[key] = v
	}
	return err
}

func (c converter) sub(v any, path string) (*jsonschema.Schema, error) {
	switch t := v.(type) {
	case *openapi.Fragment:
		return c.schema(t, path)
	case bool:
		if t {
			return jsonschema.TrueSchema, nil
		}
		return jsonschema.FalseSchema, nil
	}
	return nil, invalid(path, v)
}

func (c converter) subs(v any, path string) ([]*jsonschema.Schema, error) {
	var frags []any
	switch t := v.(type) {
	case []*openapi.Fragment:
		for _, f := range t {
			frags = append(frags, f)
		}
	case []any:
		frags = t
	default:
		return nil, invalid(path, v)
	}
	out := make([]*jsonschema.Schema, 0, len(frags))
	for i, f := range frags {
		s, err := c.sub(f, fmt.Sprintf("%s/%d", path, i))
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (c converter) properties(v any, path string) (*orderedmap.OrderedMap[string, *jsonschema.Schema], error) {
	f, ok := v.(*openapi.Fragment)
	if !ok {
		return nil, invalid(path, v)
	}
	out := orderedmap.New[string, *jsonschema.Schema]()
	for p := f.Oldest(); p != nil; p = p.Next() {
		s, err := c.sub(p.Value, path+"/"+p.Key)
		if err != nil {
			return nil, err
		}
		out.Set(p.Key, s)
	}
	return out, nil
}

func list(v any, path string) ([]any, error) {
	switch t := v.(type) {
	case []any:
		return append([]any{}, t...), nil
	case []string:
		out := make([]any, len(t))
		for i := range t {
			out[i] = t[i]
		}
		return out, nil
	}
	return nil, invalid(path, v)
}

func stringList(v any, path string) ([]string, error) {
	switch t := v.(type) {
	case []string:
		return append([]string{}, t...), nil
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil, invalid(path, v)
			}
			out = append(out, s)
		}
		return out, nil
	}
	return nil, invalid(path, v)
}

func number(v any, path string) (json.Number, error) {
	switch t := v.(type) {
	case int:
		return json.Number(strconv.Itoa(t)), nil
	case int64:
		return json.Number(strconv.FormatInt(t, 10)), nil
	case uint64:
		return json.Number(strconv.FormatUint(t, 10)), nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return "", invalid(path, v)
		}
		return json.Number(strconv.FormatFloat(t, 'g', -1, 64)), nil
	case json.Number:
		return t, nil
	case string:
		if _, err := strconv.ParseFloat(t, 64); err != nil {
			return "", invalid(path, v)
		}
		return json.Number(t), nil
	}
	return "", invalid(path, v)
}

func count(v any, path string) (*uint64, error) {
	var n uint64
	switch t := v.(type) {
	case int:
		if t < 0 {
			return nil, invalid(path, v)
		}
		n = uint64(t)
	case int64:
		if t < 0 {
			return nil, invalid(path, v)
		}
		n = uint64(t)
	case uint64:
		n = t
	case float64:
		if t < 0 || t != math.Trunc(t) {
			return nil, invalid(path, v)
		}
		n = uint64(t)
	default:
		return nil, invalid(path, v)
	}
	return &n, nil
}

func invalid(path string, v any) error {
	return fmt.Errorf("%w: %s: %v (%T)", ErrInvalidKeyword, path, v, v)
}
