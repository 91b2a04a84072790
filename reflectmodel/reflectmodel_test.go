package reflectmodel_test

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ms "github.com/vltr/middle-schema"
	"github.com/vltr/middle-schema/openapi"
	"github.com/vltr/middle-schema/reflectmodel"
)

type Color string

func (Color) EnumValues() []any { return []any{"red", "green", "blue"} }

type Priority int

func (*Priority) EnumValues() []any { return []any{1, 2, 3} }

type City struct {
	Name       string `json:"name" middleschema:"description=City name,min_length=1"`
	Population int    `json:"population,omitempty" middleschema:"default=0,minimum=0"`
}

func (City) SchemaDescription() string { return "A city" }

type Audit struct {
	CreatedAt time.Time `json:"created_at"`
}

type Person struct {
	Audit
	Name     string              `json:"name"`
	Nick     *string             `json:"nick"`
	Born     time.Time           `json:"born" middleschema:"date"`
	Home     City                `json:"home" middleschema:"description=Where they live"`
	Visited  []City              `json:"visited" middleschema:"default=[]"`
	Tags     map[string]struct{} `json:"tags"`
	Scores   map[string]float64  `json:"scores"`
	Eyes     Color               `json:"eyes"`
	Level    Priority            `json:"level" middleschema:"default=2"`
	Balance  json.Number         `json:"balance"`
	Avatar   []byte              `json:"avatar"`
	Code     string              `middleschema:"name=code,pattern=^[a-z]{1\\,3}$"`
	Secret   string              `json:"-"`
	internal string
}

func (Person) SchemaDoc() string { return "Someone." }

func TestModel_Person(t *testing.T) {
	m, err := reflectmodel.Model[Person]()
	require.NoError(t, err)
	assert.Equal(t, "Person", m.ModelName())
	assert.Equal(t, "Someone.", m.Doc())
	assert.Empty(t, m.Description())

	var names []string
	types := map[string]string{}
	for _, f := range m.Fields() {
		names = append(names, f.Name())
		types[f.Name()] = f.Type().String()
	}
	assert.Equal(t, []string{
		"created_at", "name", "nick", "born", "home", "visited", "tags", "scores",
		"eyes", "level", "balance", "avatar", "code",
	}, names)
	assert.Equal(t, map[string]string{
		"created_at": "datetime",
		"name":       "str",
		"nick":       "Union[str, None]",
		"born":       "date",
		"home":       "City",
		"visited":    "List[City]",
		"tags":       "Set[str]",
		"scores":     "Dict[str, float]",
		"eyes":       "Color",
		"level":      "Priority",
		"balance":    "Decimal",
		"avatar":     "bytes",
		"code":       "str",
	}, types)
}

func field(t *testing.T, m ms.Model, name string) ms.Field {
	t.Helper()
	for _, f := range m.Fields() {
		if f.Name() == name {
			return f
		}
	}
	t.Fatalf("no field %q", name)
	return nil
}

func TestModel_TagOptions(t *testing.T) {
	m, err := reflectmodel.Model[Person]()
	require.NoError(t, err)

	code := field(t, m, "code")
	rb := code.Validators()[0].(ms.RuleBearer)
	assert.Equal(t, []ms.Rule{{Name: "pattern", Value: "^[a-z]{1,3}$"}}, rb.Rules())

	level := field(t, m, "level")
	v, ok := level.Default().Value()
	require.True(t, ok)
	assert.Equal(t, Priority(2), v)

	visited := field(t, m, "visited")
	v, ok = visited.Default().Value()
	require.True(t, ok)
	assert.IsType(t, []City{}, v)
	assert.Empty(t, v)

	home := field(t, m, "home")
	assert.Equal(t, "Where they live", home.Metadata()[ms.MetadataDescription])

	city := home.Type().Model()
	assert.Equal(t, "A city", city.Description())
	pop := field(t, city, "population")
	v, _ = pop.Default().Value()
	assert.Equal(t, 0, v)
	assert.Equal(t, []ms.Rule{{Name: "minimum", Value: 0}}, pop.Validators()[0].(ms.RuleBearer).Rules())
}

func TestModel_SharedDefinitions(t *testing.T) {
	m, err := reflectmodel.Model[Person]()
	require.NoError(t, err)
	home := field(t, m, "home").Type().Model()
	visited := field(t, m, "visited").Type().Elem().Model()
	assert.Same(t, home, visited)
}

func TestModel_Renders(t *testing.T) {
	m, err := reflectmodel.Model[City]()
	require.NoError(t, err)
	res, err := openapi.Parse(m, openapi.WithModelAsComponent(false))
	require.NoError(t, err)
	b, err := res.Specification.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "object",
		"properties": {
			"name": {"type": "string", "minLength": 1, "description": "City name"},
			"population": {"type": "integer", "format": "int64", "minimum": 0}
		},
		"required": ["name"],
		"description": "A city"
	}`, string(b))
}

type Tree struct {
	Value    int     `json:"value"`
	Children []*Tree `json:"children"`
}

func TestModel_Recursive(t *testing.T) {
	m, err := reflectmodel.Model[Tree]()
	require.NoError(t, err)
	res, err := openapi.Parse(m)
	require.NoError(t, err)
	assert.Equal(t, []string{"Tree"}, res.Components.Names())
	tree, _ := res.Components.Get("Tree")
	b, err := tree.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "object",
		"properties": {
			"value": {"type": "integer", "format": "int64"},
			"children": {"type": "array", "items": {"$ref": "#/components/schemas/Tree", "nullable": true}}
		},
		"required": ["value", "children"]
	}`, string(b))
}

type SelfEmbed struct {
	*SelfEmbed
	X int `json:"x"`
}

type Base struct {
	*Derived
	ID int `json:"id"`
}

type Derived struct {
	Base
	Name string `json:"name"`
}

func TestModel_EmbeddingCycles(t *testing.T) {
	m, err := reflectmodel.Model[SelfEmbed]()
	require.NoError(t, err)
	require.Len(t, m.Fields(), 1)
	assert.Equal(t, "x", m.Fields()[0].Name())

	m, err = reflectmodel.Model[Derived]()
	require.NoError(t, err)
	var names []string
	for _, f := range m.Fields() {
		names = append(names, f.Name())
	}
	assert.Equal(t, []string{"id", "name"}, names)
}

type Item struct {
	SKU string `json:"sku"`
}

type packageItem = Item

func TestModel_ShadowedNamesGetDistinctComponents(t *testing.T) {
	type Item struct {
		Base  packageItem `json:"base"`
		Count int         `json:"count"`
	}
	m, err := reflectmodel.Model[Item]()
	require.NoError(t, err)
	assert.Equal(t, "Item", m.ModelName())
	inner := field(t, m, "base").Type().Model()
	assert.Equal(t, "Item_2", inner.ModelName())

	res, err := openapi.Parse(m)
	require.NoError(t, err)
	assert.Equal(t, []string{"Item_2", "Item"}, res.Components.Names())
	outer, _ := res.Components.Get("Item")
	b, err := outer.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type": "object",
		"properties": {
			"base": {"$ref": "#/components/schemas/Item_2"},
			"count": {"type": "integer", "format": "int64"}
		},
		"required": ["base", "count"]
	}`, string(b))
	shadowed, _ := res.Components.Get("Item_2")
	b, err = shadowed.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(b), `"sku"`)

	// the package-level type alone keeps the plain name
	m, err = reflectmodel.Model[packageItem]()
	require.NoError(t, err)
	assert.Equal(t, "Item", m.ModelName())
}

type Unsupported struct {
	Pair  [2]int         `json:"pair"`
	Extra map[string]any `json:"extra"`
	Keyed map[int]string `json:"keyed"`
}

func TestModel_UnsupportedSurfaceAsKinds(t *testing.T) {
	m, err := reflectmodel.Model[Unsupported]()
	require.NoError(t, err)
	for name, kind := range map[string]error{
		"pair":  ms.ErrUnsupportedType,
		"extra": ms.ErrDiscouragedBareContainer,
		"keyed": ms.ErrInvalidKeyType,
	} {
		_, err := openapi.Parse(field(t, m, name))
		assert.True(t, errors.Is(err, kind), "%s: %v", name, err)
	}
}

type BadDefault struct {
	N int `middleschema:"default=abc"`
}

type EmptyName struct {
	N int `middleschema:"name=,minimum=0"`
}

func TestModel_Errors(t *testing.T) {
	_, err := reflectmodel.Model[int]()
	assert.ErrorIs(t, err, reflectmodel.ErrNotStruct)

	_, err = reflectmodel.ModelOf(reflect.TypeOf(time.Time{}))
	assert.ErrorIs(t, err, reflectmodel.ErrNotStruct)

	_, err = reflectmodel.Model[BadDefault]()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BadDefault.N")

	_, err = reflectmodel.Model[EmptyName]()
	assert.ErrorIs(t, err, reflectmodel.ErrInvalidTag)
	assert.ErrorContains(t, err, "EmptyName.N")

	m, err := reflectmodel.ModelOf(reflect.TypeOf(&City{}))
	require.NoError(t, err)
	assert.Equal(t, "City", m.ModelName())
}

func TestTypeOf(t *testing.T) {
	cases := map[reflect.Type]string{
		reflect.TypeOf(""):                   "str",
		reflect.TypeOf(uint16(0)):            "int",
		reflect.TypeOf(float32(0)):           "float",
		reflect.TypeOf(false):                "bool",
		reflect.TypeOf([]any{}):              "List",
		reflect.TypeOf(map[string]any{}):     "Dict",
		reflect.TypeOf([]*int{}):             "List[Union[int, None]]",
		reflect.TypeOf(make(chan int)):       "chan int",
		reflect.TypeOf(Color("")):            "Color",
		reflect.TypeOf(map[Color]struct{}{}): "Set[Color]",
	}
	for rt, want := range cases {
		got, err := reflectmodel.TypeOf(rt)
		require.NoError(t, err)
		assert.Equal(t, want, got.String(), rt.String())
	}
}
