package openapi_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	ms "github.com/vltr/middle-schema"
	"github.com/vltr/middle-schema/openapi"
)

func TestDocument_JSON(t *testing.T) {
	_, outer := personModels()
	doc := openapi.NewDocument("people", "1.0.0")
	require.NoError(t, doc.Add("TestModel", parse(t, outer)))

	b, err := doc.JSON("")
	require.NoError(t, err)
	s := string(b)
	assert.True(t, strings.HasPrefix(s, `{"openapi":"3.0.3","info":{"title":"people","version":"1.0.0"},"paths":{},"components":{"schemas":{"InnerModel":`), s)
	assert.JSONEq(t, `{
		"openapi": "3.0.3",
		"info": {"title": "people", "version": "1.0.0"},
		"paths": {},
		"components": {"schemas": {
			"InnerModel": `+innerModelJSON+`,
			"TestModel": {
				"properties": {
					"person": {"$ref": "#/components/schemas/InnerModel", "description": "The person to access this resource"},
					"active": {"type": "boolean", "description": "If the resource is active"}
				},
				"type": "object",
				"required": ["person", "active"]
			}
		}}
	}`, s)

	indented, err := doc.JSON("  ")
	require.NoError(t, err)
	assert.Contains(t, string(indented), "\n  \"info\": {")
	assert.JSONEq(t, s, string(indented))
}

func TestDocument_InlineNeedsName(t *testing.T) {
	m := ms.NewModel("Point").Field("x", ms.Int())
	res := parse(t, m, openapi.WithModelAsComponent(false))

	doc := openapi.NewDocument("t", "v")
	assert.Error(t, doc.Add("", res))
	require.NoError(t, doc.Add("Point", res))
	assert.Equal(t, []string{"Point"}, doc.Schemas().Names())
	assert.NoError(t, doc.Add("ignored", nil))
}

func TestDocument_WriteOnce(t *testing.T) {
	first := ms.NewModel("Shared").Describe("first").Field("a", ms.Int())
	second := ms.NewModel("Shared").Describe("second").Field("b", ms.Int())

	doc := openapi.NewDocument("t", "v")
	require.NoError(t, doc.Add("Shared", parse(t, first)))
	require.NoError(t, doc.Add("Shared", parse(t, second)))

	got, ok := doc.Schemas().Get("Shared")
	require.True(t, ok)
	desc, _ := got.Get("description")
	assert.Equal(t, "first", desc)
}

func TestDocument_IsolatedFromResult(t *testing.T) {
	res := parse(t, ms.NewModel("M").Field("a", ms.Int()))
	doc := openapi.NewDocument("t", "v")
	require.NoError(t, doc.Add("M", res))

	comp, _ := res.Components.Get("M")
	comp.Set("description", "changed later")
	stored, _ := doc.Schemas().Get("M")
	_, has := stored.Get("description")
	assert.False(t, has)
}

func TestDocument_YAML(t *testing.T) {
	level := ms.NewEnum("Level", 1, 2)
	m := ms.NewModel("Task").
		Field("title", ms.String(), ms.WithRule("min_length", 1)).
		Field("level", ms.EnumOf(level))
	doc := openapi.NewDocument("tasks", "2.0.0")
	require.NoError(t, doc.Add("Task", parse(t, m)))

	b, err := doc.YAML()
	require.NoError(t, err)
	out := string(b)

	order := []string{"openapi: 3.0.3", "info:", "title: tasks", "paths: {}", "components:", "Level:", "choices:", "Task:", "title:", "minLength: 1", "level:"}
	last := -1
	for _, want := range order {
		i := strings.Index(out[last+1:], want)
		require.GreaterOrEqual(t, i, 0, "%q missing after offset %d in:\n%s", want, last, out)
		last += 1 + i
	}

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(b, &decoded))
	schemas := decoded["components"].(map[string]any)["schemas"].(map[string]any)
	assert.Equal(t, map[string]any{"type": "integer", "format": "int64", "choices": []any{1, 2}}, schemas["Level"])
}
