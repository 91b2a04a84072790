// Package reflectmodel derives middleschema models from Go struct types.
//
// Mapping:
//
//	string, bool, ints, floats   str, bool, int, float
//	[]byte                       bytes
//	time.Time                    datetime (date with the `date` tag flag)
//	json.Number                  Decimal
//	*T                           Optional[T]
//	[]T                          List[T]
//	map[T]struct{}               Set[T]
//	map[K]V                      Dict[K, V]
//	[N]T                         Tuple (rejected by the skeleton builder)
//	[]any, map[string]any        bare List / Dict (rejected)
//	struct                       model named after the Go type
//	named type with EnumValues   enum named after the Go type
//
// Field properties come from the middleschema struct tag, see ResolveStructKey
// and the tag grammar on parseTag. Types the builder cannot render are still
// mapped, so errors surface from the pipeline with their usual kinds.
package reflectmodel

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	gojson "github.com/goccy/go-json"
	ms "github.com/vltr/middle-schema"
	"github.com/vltr/middle-schema/internal/typeutil"
)

// Enumerator is implemented by named types that form an enumeration. The
// values are read from the zero value.
type Enumerator interface {
	EnumValues() []any
}

// Describer supplies the explicit description of a model.
type Describer interface {
	SchemaDescription() string
}

// Documenter supplies the documented description, used when no explicit one
// exists.
type Documenter interface {
	SchemaDoc() string
}

var (
	// ErrNotStruct is returned when a model is requested for a non-struct type.
	ErrNotStruct = errors.New("reflectmodel: not a struct type")
	// ErrInvalidTag is returned for a middleschema tag that cannot be applied.
	ErrInvalidTag = errors.New("reflectmodel: invalid tag")
)

var (
	timeType       = reflect.TypeOf(time.Time{})
	jsonNumberType = reflect.TypeOf(json.Number(""))
	enumeratorType = reflect.TypeOf((*Enumerator)(nil)).Elem()
	describerType  = reflect.TypeOf((*Describer)(nil)).Elem()
	documenterType = reflect.TypeOf((*Documenter)(nil)).Elem()
)

// Model returns the model of struct type T.
func Model[T any]() (ms.Model, error) {
	return ModelOf(reflect.TypeOf((*T)(nil)).Elem())
}

// ModelOf returns the model of a struct type (or pointer to one).
func ModelOf(t reflect.Type) (ms.Model, error) {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct || t == timeType {
		return nil, fmt.Errorf("%w: %v", ErrNotStruct, t)
	}
	typ, err := TypeOf(t)
	if err != nil {
		return nil, err
	}
	if typ.Kind() != ms.KindModel {
		return nil, fmt.Errorf("%w: %v maps to %s", ErrNotStruct, t, typ)
	}
	return typ.Model(), nil
}

// TypeOf maps any Go type to a middleschema type.
func TypeOf(t reflect.Type) (ms.Type, error) {
	r := &reflector{
		models:     map[reflect.Type]*ms.ModelDef{},
		enums:      map[reflect.Type]*ms.EnumDef{},
		names:      map[string]reflect.Type{},
		flattening: map[reflect.Type]bool{},
	}
	return r.typeOf(t, false)
}

// reflector keeps the definitions built during one call so recursive struct
// types resolve to the same model.
type reflector struct {
	models map[reflect.Type]*ms.ModelDef
	enums  map[reflect.Type]*ms.EnumDef
	// component names handed out, shared by models and enums
	names map[string]reflect.Type
	// structs whose fields are being flattened into the current model
	flattening map[reflect.Type]bool
}

// claim reserves a component name for t. A name already held by another Go
// type, such as a function-local type shadowing a package-level one, gets a
// numeric suffix: Item, Item_2, Item_3.
func (r *reflector) claim(base string, t reflect.Type) string {
	name := base
	for i := 2; ; i++ {
		if owner, ok := r.names[name]; !ok || owner == t {
			r.names[name] = t
			return name
		}
		name = fmt.Sprintf("%s_%d", base, i)
	}
}

func (r *reflector) typeOf(t reflect.Type, date bool) (ms.Type, error) {
	if t == nil {
		return ms.Opaque("nil"), nil
	}
	if e, ok := r.enum(t); ok {
		return ms.EnumOf(e), nil
	}
	switch t {
	case timeType:
		if date {
			return ms.Date(), nil
		}
		return ms.DateTime(), nil
	case jsonNumberType:
		return ms.Decimal(), nil
	}
	switch t.Kind() {
	case reflect.Pointer:
		inner, err := r.typeOf(t.Elem(), date)
		if err != nil {
			return ms.Type{}, err
		}
		return ms.Optional(inner), nil
	case reflect.Slice:
		if t.Elem().Kind() == reflect.Uint8 {
			return ms.Bytes(), nil
		}
		if t.Elem().Kind() == reflect.Interface {
			return ms.BareList(), nil
		}
		elem, err := r.typeOf(t.Elem(), date)
		if err != nil {
			return ms.Type{}, err
		}
		return ms.List(elem), nil
	case reflect.Array:
		elem, err := r.typeOf(t.Elem(), date)
		if err != nil {
			return ms.Type{}, err
		}
		elems := make([]ms.Type, t.Len())
		for i := range elems {
			elems[i] = elem
		}
		return ms.Tuple(elems...), nil
	case reflect.Map:
		key, err := r.typeOf(t.Key(), false)
		if err != nil {
			return ms.Type{}, err
		}
		if t.Elem().Kind() == reflect.Struct && t.Elem().NumField() == 0 {
			return ms.Set(key), nil
		}
		if t.Elem().Kind() == reflect.Interface {
			return ms.BareDict(), nil
		}
		val, err := r.typeOf(t.Elem(), date)
		if err != nil {
			return ms.Type{}, err
		}
		return ms.Dict(key, val), nil
	case reflect.Struct:
		return r.model(t)
	}
	if k, ok := typeutil.KindOfType(t); ok {
		return ms.Primitive(k), nil
	}
	return ms.Opaque(t.String()), nil
}

func (r *reflector) enum(t reflect.Type) (*ms.EnumDef, bool) {
	if t.Kind() == reflect.Interface || t.Kind() == reflect.Pointer {
		return nil, false
	}
	if e, ok := r.enums[t]; ok {
		return e, true
	}
	en, ok := implementer[Enumerator](t, enumeratorType)
	if !ok {
		return nil, false
	}
	e := ms.NewEnum(r.claim(t.Name(), t), en.EnumValues()...)
	r.enums[t] = e
	return e, true
}

func (r *reflector) model(t reflect.Type) (ms.Type, error) {
	if m, ok := r.models[t]; ok {
		return ms.ModelOf(m), nil
	}
	name := t.Name()
	if name == "" {
		name = t.String()
	}
	m := ms.NewModel(r.claim(name, t))
	// registered before the fields so self references resolve
	r.models[t] = m
	if d, ok := implementer[Describer](t, describerType); ok {
		m.Describe(d.SchemaDescription())
	}
	if d, ok := implementer[Documenter](t, documenterType); ok {
		m.Document(d.SchemaDoc())
	}
	if err := r.fields(t, m); err != nil {
		return ms.Type{}, err
	}
	return ms.ModelOf(m), nil
}

func (r *reflector) fields(t reflect.Type, m *ms.ModelDef) error {
	r.flattening[t] = true
	defer delete(r.flattening, t)
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		key := ResolveStructKey(sf)
		if key == "-" {
			continue
		}
		if sf.Anonymous && key == sf.Name {
			// embedded structs are flattened like encoding/json does
			et := sf.Type
			if et.Kind() == reflect.Pointer {
				et = et.Elem()
			}
			if et.Kind() == reflect.Struct && et != timeType {
				if r.flattening[et] {
					// already contributing its fields higher up
					continue
				}
				if err := r.fields(et, m); err != nil {
					return err
				}
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}
		o := parseTag(sf.Tag.Get(TagName))
		if o.hasName && o.name == "" {
			return fmt.Errorf("%w: %s.%s: empty name", ErrInvalidTag, m.ModelName(), sf.Name)
		}
		typ, err := r.typeOf(sf.Type, o.date)
		if err != nil {
			return err
		}
		opts := []ms.FieldOption{}
		if o.description != "" {
			opts = append(opts, ms.WithDescription(o.description))
		}
		if o.hasDefault {
			v, err := decodeDefault(o.def, sf.Type)
			if err != nil {
				return fmt.Errorf("reflectmodel: %s.%s: default %q: %w", m.ModelName(), sf.Name, o.def, err)
			}
			opts = append(opts, ms.WithDefault(v))
		}
		for _, rule := range o.rules {
			opts = append(opts, ms.WithRule(rule.Name, rule.Value))
		}
		m.Field(key, typ, opts...)
	}
	return nil
}

func implementer[I any](t reflect.Type, iface reflect.Type) (I, bool) {
	var zero I
	switch {
	case t.Implements(iface):
		v, ok := reflect.Zero(t).Interface().(I)
		return v, ok
	case reflect.PointerTo(t).Implements(iface):
		v, ok := reflect.New(t).Interface().(I)
		return v, ok
	}
	return zero, false
}

// decodeDefault decodes a default literal as JSON into t. String-like fields
// also accept the raw text, so default=abc works without quotes.
func decodeDefault(raw string, t reflect.Type) (any, error) {
	if raw == "null" {
		return nil, nil
	}
	ptr := reflect.New(t)
	err := gojson.Unmarshal([]byte(raw), ptr.Interface())
	if err == nil {
		v := ptr.Elem()
		for v.Kind() == reflect.Pointer {
			if v.IsNil() {
				return nil, nil
			}
			v = v.Elem()
		}
		return v.Interface(), nil
	}
	base := t
	for base.Kind() == reflect.Pointer {
		base = base.Elem()
	}
	if base.Kind() == reflect.String {
		return reflect.ValueOf(raw).Convert(base).Interface(), nil
	}
	return nil, err
}
