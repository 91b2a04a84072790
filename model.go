package middleschema

// Model is the introspection surface of a model type.
type Model interface {
	// ModelName identifies the model; it is also the component name.
	ModelName() string
	// Description is the explicit model-level description, if any.
	Description() string
	// Doc is the documented description used when Description is empty.
	Doc() string
	// Fields lists the declared fields in declaration order.
	Fields() []Field
}

// Field is the introspection surface of a declared model field.
type Field interface {
	Name() string
	Type() Type
	Default() Default
	// Metadata is free-form; the "description" key is read by the pipeline.
	Metadata() map[string]any
	Validators() []Validator
}

// Enum is the introspection surface of an enumeration type.
type Enum interface {
	EnumName() string
	// Values returns the literal member values in declaration order.
	Values() []any
}

// MetadataDescription is the Field metadata key holding the field description.
const MetadataDescription = "description"

// ModelDef is a Model declared in code.
type ModelDef struct {
	name        string
	description string
	doc         string
	fields      []Field
}

var _ Model = (*ModelDef)(nil)

// NewModel starts a model definition named name.
func NewModel(name string) *ModelDef { return &ModelDef{name: name} }

// Describe sets the explicit description.
func (m *ModelDef) Describe(s string) *ModelDef {
	m.description = s
	return m
}

// Document sets the documented description.
func (m *ModelDef) Document(s string) *ModelDef {
	m.doc = s
	return m
}

// Field declares a field and returns m for chaining.
func (m *ModelDef) Field(name string, t Type, opts ...FieldOption) *ModelDef {
	return m.AddField(NewField(name, t, opts...))
}

// AddField appends an already constructed field.
func (m *ModelDef) AddField(f Field) *ModelDef {
	m.fields = append(m.fields, f)
	return m
}

func (m *ModelDef) ModelName() string   { return m.name }
func (m *ModelDef) Description() string { return m.description }
func (m *ModelDef) Doc() string         { return m.doc }
func (m *ModelDef) Fields() []Field     { return append([]Field(nil), m.fields...) }

// FieldDef is a Field declared in code.
type FieldDef struct {
	name       string
	typ        Type
	def        Default
	metadata   map[string]any
	rules      Rules
	validators []Validator
}

var _ Field = (*FieldDef)(nil)

// FieldOption customizes a FieldDef.
type FieldOption func(*FieldDef)

// NewField declares a field named name of type t.
func NewField(name string, t Type, opts ...FieldOption) *FieldDef {
	f := &FieldDef{name: name, typ: t, metadata: map[string]any{}}
	for _, o := range opts {
		o(f)
	}
	return f
}

// WithDescription stores the field description in the metadata.
func WithDescription(s string) FieldOption {
	return func(f *FieldDef) { f.metadata[MetadataDescription] = s }
}

// WithMetadata sets a free-form metadata entry.
func WithMetadata(key string, v any) FieldOption {
	return func(f *FieldDef) { f.metadata[key] = v }
}

// WithDefault declares a default value. WithDefault(nil) declares a null
// default, which differs from declaring none.
func WithDefault(v any) FieldOption {
	return func(f *FieldDef) { f.def = DefaultValue(v) }
}

// WithRule appends a validation rule such as ("min_length", 5).
func WithRule(name string, v any) FieldOption {
	return func(f *FieldDef) { f.rules = f.rules.With(name, v) }
}

// WithValidators attaches validator objects.
func WithValidators(vs ...Validator) FieldOption {
	return func(f *FieldDef) { f.validators = append(f.validators, vs...) }
}

func (f *FieldDef) Name() string     { return f.name }
func (f *FieldDef) Type() Type       { return f.typ }
func (f *FieldDef) Default() Default { return f.def }

func (f *FieldDef) Metadata() map[string]any {
	out := make(map[string]any, len(f.metadata))
	for k, v := range f.metadata {
		out[k] = v
	}
	return out
}

// Validators returns the declared rules (as a single Rules validator) followed
// by the attached validators.
func (f *FieldDef) Validators() []Validator {
	out := make([]Validator, 0, len(f.validators)+1)
	if len(f.rules) > 0 {
		out = append(out, append(Rules(nil), f.rules...))
	}
	return append(out, f.validators...)
}

// EnumDef is an Enum declared in code.
type EnumDef struct {
	name   string
	values []any
}

var _ Enum = (*EnumDef)(nil)

// NewEnum declares an enum with the given literal values.
func NewEnum(name string, values ...any) *EnumDef {
	return &EnumDef{name: name, values: append([]any(nil), values...)}
}

func (e *EnumDef) EnumName() string { return e.name }
func (e *EnumDef) Values() []any    { return append([]any(nil), e.values...) }
