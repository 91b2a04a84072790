package skeleton

import (
	"fmt"
	"reflect"

	ms "github.com/vltr/middle-schema"
	"github.com/vltr/middle-schema/internal/typeutil"
)

// Translate builds the skeleton of v, which is a ms.Field, a ms.Model or a
// bare ms.Type. Fields keep their name, description, default and validator
// metadata; models and bare types start an anonymous tree.
//
// Errors wrap ms.ErrUnsupportedType, ms.ErrInvalidKeyType or
// ms.ErrDiscouragedBareContainer and abort the whole translation.
func Translate(v any) (*Skeleton, error) {
	b := &builder{inProgress: map[any]*progress{}}
	switch t := v.(type) {
	case ms.Field:
		return b.translate(t.Type(), &site{field: t}, t.Name())
	case ms.Model:
		return b.translate(ms.ModelOf(t), nil, "")
	case ms.Type:
		return b.translate(t, nil, "")
	default:
		return nil, &ms.TypeError{
			Type: ms.Opaque(fmt.Sprintf("%T", v)),
			Kind: ms.ErrUnsupportedType,
			Hint: "expected a model, a field or a type",
		}
	}
}

// TranslateField is Translate for a field declared inside model: error paths
// are prefixed with the model name.
func TranslateField(f ms.Field, model ms.Model) (*Skeleton, error) {
	b := &builder{inProgress: map[any]*progress{}}
	path := f.Name()
	if model != nil {
		path = model.ModelName() + "." + path
	}
	return b.translate(f.Type(), &site{field: f}, path)
}

// site is the declared field a node is built for. A nil site builds an
// anonymous node.
type site struct {
	field ms.Field
}

type progress struct {
	recursive bool
}

type builder struct {
	// models currently being expanded, keyed by identity
	inProgress map[any]*progress
}

// identity is the map key of m. Models of a non-comparable dynamic type fall
// back to their name.
func identity(m ms.Model) any {
	if reflect.TypeOf(m).Comparable() {
		return m
	}
	return m.ModelName()
}

func (b *builder) translate(t ms.Type, s *site, path string) (*Skeleton, error) {
	k := t.Kind()
	if k.IsPrimitive() {
		return b.node(t, s), nil
	}
	switch k {
	case ms.KindModel:
		return b.model(t, s, path)
	case ms.KindEnum:
		return b.enum(t, s, path)
	case ms.KindList, ms.KindSet:
		if t.IsBare() {
			return nil, bareError(t, path)
		}
		node := b.node(t, s)
		child, err := b.translate(t.Elem(), nil, path+"[]")
		if err != nil {
			return nil, err
		}
		node.Children = []*Skeleton{child}
		return node, nil
	case ms.KindDict:
		if t.IsBare() {
			return nil, bareError(t, path)
		}
		if t.Key().Kind() != ms.KindString {
			return nil, &ms.TypeError{
				Path: path,
				Type: t,
				Kind: ms.ErrInvalidKeyType,
				Hint: "JSON object keys are strings; declare Dict[str, " + t.Elem().String() + "]",
			}
		}
		node := b.node(t, s)
		child, err := b.translate(t.Elem(), nil, path+"{}")
		if err != nil {
			return nil, err
		}
		node.Children = []*Skeleton{child}
		return node, nil
	case ms.KindUnion:
		return b.union(t, s, path)
	default:
		return nil, &ms.TypeError{Path: path, Type: t, Kind: ms.ErrUnsupportedType}
	}
}

// node builds the shared part of every skeleton. Without a site only the type
// is recorded.
func (b *builder) node(t ms.Type, s *site) *Skeleton {
	if s == nil {
		return &Skeleton{Type: t}
	}
	f := s.field
	node := &Skeleton{
		Type:        t,
		Name:        f.Name(),
		Description: fieldDescription(f),
		Default:     f.Default(),
		Validators:  validatorData(f.Validators()),
	}
	// a field with a default may be omitted
	node.Nullable = node.HasDefaultValue()
	return node
}

func (b *builder) model(t ms.Type, s *site, path string) (*Skeleton, error) {
	m := t.Model()
	if m == nil {
		return nil, &ms.TypeError{Path: path, Type: t, Kind: ms.ErrUnsupportedType, Hint: "model reference is nil"}
	}
	name := m.ModelName()
	node := b.node(t, s)
	node.Validators = ValidatorData{}
	if s == nil {
		node.Name = name
	}
	node.SiteDescription = node.Description
	node.Description = modelDescription(m)
	if path == "" {
		path = name
	}

	key := identity(m)
	if p, ok := b.inProgress[key]; ok {
		p.recursive = true
		node.Ref = true
		return node, nil
	}
	p := &progress{}
	b.inProgress[key] = p
	defer delete(b.inProgress, key)

	fields := m.Fields()
	node.Children = make([]*Skeleton, 0, len(fields))
	for _, f := range fields {
		child, err := b.translate(f.Type(), &site{field: f}, path+"."+f.Name())
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	node.Recursive = p.recursive
	return node, nil
}

func (b *builder) enum(t ms.Type, s *site, path string) (*Skeleton, error) {
	e := t.Enum()
	if e == nil {
		return nil, &ms.TypeError{Path: path, Type: t, Kind: ms.ErrUnsupportedType, Hint: "enum reference is nil"}
	}
	values := e.Values()
	if len(values) == 0 {
		return nil, &ms.TypeError{Path: path, Type: t, Kind: ms.ErrUnsupportedType, Hint: "enum has no members"}
	}
	kind, ok := typeutil.KindOf(values[0])
	if !ok {
		return nil, &ms.TypeError{
			Path: path,
			Type: t,
			Kind: ms.ErrUnsupportedType,
			Hint: fmt.Sprintf("enum member %v (%T) has no primitive wire type", values[0], values[0]),
		}
	}
	node := b.node(t, s)
	node.Choices = values
	node.Children = []*Skeleton{{Type: ms.Primitive(kind)}}
	return node, nil
}

func (b *builder) union(t ms.Type, s *site, path string) (*Skeleton, error) {
	members := t.Members()
	nonNull := make([]ms.Type, 0, len(members))
	for _, m := range members {
		if m.Kind() != ms.KindNull {
			nonNull = append(nonNull, m)
		}
	}
	hasNull := len(nonNull) < len(members)
	if len(nonNull) == 0 {
		return nil, &ms.TypeError{Path: path, Type: t, Kind: ms.ErrUnsupportedType, Hint: "union has no non-null member"}
	}

	node := b.node(t, s)
	if hasNull && len(nonNull) == 1 {
		// Optional[T]: the inner node is built for the same field so it keeps
		// the name, description and rules.
		child, err := b.translate(nonNull[0], s, path)
		if err != nil {
			return nil, err
		}
		node.Nullable = true
		node.Children = []*Skeleton{child}
		return node, nil
	}

	node.AnyOf = true
	if hasNull {
		node.Nullable = true
	}
	node.Children = make([]*Skeleton, 0, len(nonNull))
	for i, m := range nonNull {
		child, err := b.translate(m, nil, fmt.Sprintf("%s|%d", path, i))
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}

func bareError(t ms.Type, path string) error {
	var want string
	switch t.Kind() {
	case ms.KindList:
		want = "List[T]"
	case ms.KindSet:
		want = "Set[T]"
	default:
		want = "Dict[str, T]"
	}
	return &ms.TypeError{
		Path: path,
		Type: t,
		Kind: ms.ErrDiscouragedBareContainer,
		Hint: "use the parameterized form " + want,
	}
}

func modelDescription(m ms.Model) string {
	if d := m.Description(); d != "" {
		return d
	}
	return m.Doc()
}

func fieldDescription(f ms.Field) string {
	d, _ := f.Metadata()[ms.MetadataDescription].(string)
	return d
}

// validatorData collects rules and type checks from vs, descending into
// composites.
func validatorData(vs []ms.Validator) ValidatorData {
	var d ValidatorData
	var walk func(v ms.Validator)
	walk = func(v ms.Validator) {
		if rb, ok := v.(ms.RuleBearer); ok {
			for _, r := range rb.Rules() {
				d.Rules = d.Rules.With(r.Name, r.Value)
			}
		}
		if tc, ok := v.(ms.TypeChecker); ok {
			d.OfType = append(d.OfType, tc.CheckedTypes()...)
		}
		if c, ok := v.(ms.Composite); ok {
			for _, inner := range c.Validators() {
				walk(inner)
			}
		}
	}
	for _, v := range vs {
		walk(v)
	}
	return d
}
