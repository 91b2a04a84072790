package jsonschema_test

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	invopop "github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ms "github.com/vltr/middle-schema"
	"github.com/vltr/middle-schema/jsonschema"
	"github.com/vltr/middle-schema/openapi"
)

func frag(kv ...any) *openapi.Fragment {
	f := openapi.NewFragment()
	for i := 0; i+1 < len(kv); i += 2 {
		f.Set(kv[i].(string), kv[i+1])
	}
	return f
}

func TestFromFragment_Keywords(t *testing.T) {
	f := frag(
		"type", "string",
		"minLength", 1,
		"maxLength", int64(5),
		"pattern", "^[a-z]+$",
		"choices", []any{"a", "b"},
		"nullable", true,
		"description", "Code",
	)
	s, err := jsonschema.FromFragment(f)
	require.NoError(t, err)
	assert.Equal(t, "string", s.Type)
	require.NotNil(t, s.MinLength)
	assert.Equal(t, uint64(1), *s.MinLength)
	assert.Equal(t, uint64(5), *s.MaxLength)
	assert.Equal(t, "^[a-z]+$", s.Pattern)
	assert.Equal(t, []any{"a", "b"}, s.Enum)
	assert.Equal(t, map[string]any{"nullable": true}, s.Extras)
	assert.Equal(t, "Code", s.Description)
}

func TestFromFragment_Numbers(t *testing.T) {
	s, err := jsonschema.FromFragment(frag(
		"type", "number",
		"minimum", 0,
		"maximum", 10.5,
		"multipleOf", json.Number("0.5"),
		"exclusiveMinimum", "-1",
		"minItems", float64(2),
		"uniqueItems", true,
	))
	require.NoError(t, err)
	assert.Equal(t, json.Number("0"), s.Minimum)
	assert.Equal(t, json.Number("10.5"), s.Maximum)
	assert.Equal(t, json.Number("0.5"), s.MultipleOf)
	assert.Equal(t, json.Number("-1"), s.ExclusiveMinimum)
	assert.Equal(t, uint64(2), *s.MinItems)
	assert.True(t, s.UniqueItems)
}

func TestFromFragment_Nested(t *testing.T) {
	props := frag(
		"zeta", frag("type", "string"),
		"alpha", frag("type", "array", "items", frag("$ref", openapi.Ref("City"))),
		"extra", frag("type", "object", "additionalProperties", true),
	)
	f := frag(
		"type", "object",
		"properties", props,
		"required", []string{"zeta"},
		"anyOf", []*openapi.Fragment{frag("type", "string"), frag("type", "integer")},
	)
	s, err := jsonschema.FromFragment(f)
	require.NoError(t, err)

	var keys []string
	for p := s.Properties.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	assert.Equal(t, []string{"zeta", "alpha", "extra"}, keys)

	alpha, _ := s.Properties.Get("alpha")
	assert.Equal(t, openapi.Ref("City"), alpha.Items.Ref)
	extra, _ := s.Properties.Get("extra")
	assert.Same(t, invopop.TrueSchema, extra.AdditionalProperties)
	assert.Equal(t, []string{"zeta"}, s.Required)
	require.Len(t, s.AnyOf, 2)
	assert.Equal(t, "integer", s.AnyOf[1].Type)
}

func TestFromFragment_Invalid(t *testing.T) {
	cases := map[string]*openapi.Fragment{
		"negative count":   frag("minLength", -1),
		"fractional count": frag("maxItems", 1.5),
		"count as string":  frag("minItems", "2"),
		"bad number":       frag("minimum", "abc"),
		"infinite number":  frag("maximum", math.Inf(1)),
		"items not schema": frag("items", "x"),
		"required ints":    frag("required", []any{1}),
		"unique not bool":  frag("uniqueItems", "yes"),
		"anyOf not list":   frag("anyOf", frag()),
		"nested failure":   frag("properties", frag("a", frag("minLength", -2))),
	}
	for name, f := range cases {
		_, err := jsonschema.FromFragment(f)
		assert.True(t, errors.Is(err, jsonschema.ErrInvalidKeyword), "%s: %v", name, err)
	}

	_, err := jsonschema.FromFragment(frag("properties", frag("a", frag("minLength", -2))))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "#/properties/a/minLength")
}

func TestFromResult_Defs(t *testing.T) {
	color := ms.NewEnum("Color", "red", "green")
	city := ms.NewModel("City").
		Describe("A city").
		Field("name", ms.String(), ms.WithRule("min_length", 1)).
		Field("color", ms.EnumOf(color)).
		Field("twin", ms.Optional(ms.ModelOf(ms.NewModel("Twin").Field("x", ms.Int()))))

	res, err := openapi.Parse(city)
	require.NoError(t, err)
	s, err := jsonschema.FromResult(res)
	require.NoError(t, err)

	assert.Equal(t, invopop.Version, s.Version)
	assert.Equal(t, jsonschema.DefsPrefix+"City", s.Ref)
	require.Len(t, s.Definitions, 3)

	c := s.Definitions["City"]
	assert.Equal(t, "A city", c.Description)
	col, _ := c.Properties.Get("color")
	assert.Equal(t, jsonschema.DefsPrefix+"Color", col.Ref)
	twin, _ := c.Properties.Get("twin")
	assert.Equal(t, jsonschema.DefsPrefix+"Twin", twin.Ref)
	assert.Equal(t, true, twin.Extras["nullable"])
	assert.Equal(t, []any{"red", "green"}, s.Definitions["Color"].Enum)

	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"$defs"`)
	assert.NotContains(t, string(b), openapi.RefPrefix)
}

func TestFromResult_Inline(t *testing.T) {
	res, err := openapi.Parse(ms.List(ms.Int()))
	require.NoError(t, err)
	s, err := jsonschema.FromResult(res)
	require.NoError(t, err)
	assert.Nil(t, s.Definitions)
	assert.Equal(t, "array", s.Type)
	assert.Equal(t, "integer", s.Items.Type)
}
