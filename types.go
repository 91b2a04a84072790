package middleschema

import "strings"

// Kind identifies the semantic category of a Type.
type Kind int

const (
	KindInvalid Kind = iota
	// Primitive leaves.
	KindString
	KindBytes
	KindInteger
	KindFloat
	KindDecimal
	KindBool
	KindDate
	KindDateTime
	// Named types.
	KindModel
	KindEnum
	// Containers and unions.
	KindList
	KindSet
	KindDict
	KindUnion
	KindNull // null marker; only meaningful as a union member
	// Categories with no JSON Schema mapping.
	KindTuple
	KindOpaque
)

var kindNames = [...]string{
	KindInvalid:  "invalid",
	KindString:   "str",
	KindBytes:    "bytes",
	KindInteger:  "int",
	KindFloat:    "float",
	KindDecimal:  "Decimal",
	KindBool:     "bool",
	KindDate:     "date",
	KindDateTime: "datetime",
	KindModel:    "model",
	KindEnum:     "enum",
	KindList:     "List",
	KindSet:      "Set",
	KindDict:     "Dict",
	KindUnion:    "Union",
	KindNull:     "None",
	KindTuple:    "Tuple",
	KindOpaque:   "opaque",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "invalid"
	}
	return kindNames[k]
}

// IsPrimitive reports whether k is a primitive leaf category.
func (k Kind) IsPrimitive() bool { return k >= KindString && k <= KindDateTime }

// Type is a resolved type expression. The zero value is invalid.
//
// Types are values: they are cheap to copy and never mutated after
// construction. Model and Enum types hold a reference to their definition.
type Type struct {
	kind  Kind
	args  []Type // element (List/Set), key+value (Dict), members (Union/Tuple); nil means bare
	model Model
	enum  Enum
	name  string // Opaque only
}

func String() Type   { return Type{kind: KindString} }
func Bytes() Type    { return Type{kind: KindBytes} }
func Int() Type      { return Type{kind: KindInteger} }
func Float() Type    { return Type{kind: KindFloat} }
func Decimal() Type  { return Type{kind: KindDecimal} }
func Bool() Type     { return Type{kind: KindBool} }
func Date() Type     { return Type{kind: KindDate} }
func DateTime() Type { return Type{kind: KindDateTime} }
func Null() Type     { return Type{kind: KindNull} }

// Primitive returns the primitive type of kind k. Non-primitive kinds yield
// an invalid Type.
func Primitive(k Kind) Type {
	if !k.IsPrimitive() {
		return Type{}
	}
	return Type{kind: k}
}

// ModelOf returns the type referring to model m.
func ModelOf(m Model) Type { return Type{kind: KindModel, model: m} }

// EnumOf returns the type referring to enum e.
func EnumOf(e Enum) Type { return Type{kind: KindEnum, enum: e} }

// List returns List[elem].
func List(elem Type) Type { return Type{kind: KindList, args: []Type{elem}} }

// Set returns Set[elem].
func Set(elem Type) Type { return Type{kind: KindSet, args: []Type{elem}} }

// Dict returns Dict[key, value].
func Dict(key, value Type) Type { return Type{kind: KindDict, args: []Type{key, value}} }

// BareList, BareSet and BareDict are the unparameterized containers. They are
// representable so that model frameworks can report them, but the skeleton
// builder rejects them with ErrDiscouragedBareContainer.
func BareList() Type { return Type{kind: KindList} }
func BareSet() Type  { return Type{kind: KindSet} }
func BareDict() Type { return Type{kind: KindDict} }

// Tuple returns Tuple[elems...]. Tuples have no schema mapping.
func Tuple(elems ...Type) Type {
	return Type{kind: KindTuple, args: append([]Type{}, elems...)}
}

// Opaque names a type the model framework could not classify.
func Opaque(name string) Type { return Type{kind: KindOpaque, name: name} }

// Union returns Union[members...]. Nested unions are flattened and duplicate
// members removed, keeping the first occurrence. A union that collapses to a
// single member is that member.
func Union(members ...Type) Type {
	flat := make([]Type, 0, len(members))
	var add func(t Type)
	add = func(t Type) {
		if t.kind == KindUnion {
			for _, m := range t.args {
				add(m)
			}
			return
		}
		for _, seen := range flat {
			if seen.Equal(t) {
				return
			}
		}
		flat = append(flat, t)
	}
	for _, m := range members {
		add(m)
	}
	if len(flat) == 1 {
		return flat[0]
	}
	return Type{kind: KindUnion, args: flat}
}

// Optional returns Union[t, None].
func Optional(t Type) Type { return Union(t, Null()) }

func (t Type) Kind() Kind { return t.kind }

// IsBare reports whether t is a List, Set or Dict without type arguments.
func (t Type) IsBare() bool {
	switch t.kind {
	case KindList, KindSet, KindDict:
		return t.args == nil
	}
	return false
}

// Elem returns the element type of a List or Set and the value type of a Dict.
func (t Type) Elem() Type {
	switch {
	case t.kind == KindDict && len(t.args) == 2:
		return t.args[1]
	case (t.kind == KindList || t.kind == KindSet) && len(t.args) == 1:
		return t.args[0]
	}
	return Type{}
}

// Key returns the key type of a Dict.
func (t Type) Key() Type {
	if t.kind == KindDict && len(t.args) == 2 {
		return t.args[0]
	}
	return Type{}
}

// Members returns the members of a Union or Tuple in declaration order.
func (t Type) Members() []Type {
	if t.kind != KindUnion && t.kind != KindTuple {
		return nil
	}
	return append([]Type(nil), t.args...)
}

// Model returns the referenced model of a KindModel type.
func (t Type) Model() Model { return t.model }

// Enum returns the referenced enum of a KindEnum type.
func (t Type) Enum() Enum { return t.enum }

// HasNull reports whether t is a union containing the null marker.
func (t Type) HasNull() bool {
	if t.kind != KindUnion {
		return false
	}
	for _, m := range t.args {
		if m.kind == KindNull {
			return true
		}
	}
	return false
}

// Equal reports structural equality. Named types compare by name.
func (t Type) Equal(o Type) bool {
	if t.kind != o.kind || len(t.args) != len(o.args) || (t.args == nil) != (o.args == nil) {
		return false
	}
	switch t.kind {
	case KindModel:
		return modelName(t.model) == modelName(o.model)
	case KindEnum:
		return enumName(t.enum) == enumName(o.enum)
	case KindOpaque:
		return t.name == o.name
	}
	for i := range t.args {
		if !t.args[i].Equal(o.args[i]) {
			return false
		}
	}
	return true
}

// String renders t in typing notation, e.g. Dict[str, List[int]].
func (t Type) String() string {
	switch t.kind {
	case KindModel:
		return modelName(t.model)
	case KindEnum:
		return enumName(t.enum)
	case KindOpaque:
		return t.name
	}
	if t.kind.IsPrimitive() || t.kind == KindNull || t.kind == KindInvalid || t.args == nil {
		return t.kind.String()
	}
	b := &strings.Builder{}
	b.WriteString(t.kind.String())
	b.WriteByte('[')
	for i, a := range t.args {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(a.String())
	}
	b.WriteByte(']')
	return b.String()
}

func modelName(m Model) string {
	if m == nil {
		return "<nil model>"
	}
	return m.ModelName()
}

func enumName(e Enum) string {
	if e == nil {
		return "<nil enum>"
	}
	return e.EnumName()
}
