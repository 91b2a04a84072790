// Package modeldef loads model and enum declarations from YAML (or JSON)
// documents.
//
// A document has up to two sections, each a mapping kept in declaration
// order:
//
//	enums:
//	  Color: [red, green, blue]
//	  Level:
//	    values: [1, 2, 3]
//	models:
//	  City:
//	    description: A city.
//	    fields:
//	      name: str
//	      population:
//	        type: int
//	        description: Number of inhabitants.
//	        default: 0
//	        rules:
//	          minimum: 0
//	      mayor: Optional[Person]
//
// Field types are type expressions, see ParseType. Models may reference
// models declared later or in another document added to the same Loader,
// including themselves.
package modeldef

import (
	"errors"
	"fmt"
	"os"

	ms "github.com/vltr/middle-schema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidDocument reports a document that does not have the expected
	// shape.
	ErrInvalidDocument = errors.New("modeldef: invalid document")
	// ErrDuplicateName reports a model or enum name declared twice, or one
	// that shadows a built-in type name.
	ErrDuplicateName = errors.New("modeldef: duplicate name")
)

// declaration is one entry of an enums or models section.
type declaration struct {
	source string
	key    *yaml.Node
	body   *yaml.Node
}

func (d declaration) name() string { return d.key.Value }

// Loader accumulates documents and resolves them together.
type Loader struct {
	enums  []declaration
	models []declaration
	seen   map[string]string
}

// NewLoader returns an empty Loader.
func NewLoader() *Loader {
	return &Loader{seen: map[string]string{}}
}

// Add parses one document. source names it in error messages.
func (l *Loader) Add(data []byte, source string) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("modeldef: %s: %w", source, err)
	}
	if len(doc.Content) == 0 {
		return nil
	}
	root := doc.Content[0]
	if isNull(root) {
		return nil
	}
	if root.Kind != yaml.MappingNode {
		return nodeError(source, root, ErrInvalidDocument, "top level must be a mapping")
	}
	if err := uniqueKeys(source, root); err != nil {
		return err
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := root.Content[i], root.Content[i+1]
		var into *[]declaration
		switch k.Value {
		case "enums":
			into = &l.enums
		case "models":
			into = &l.models
		default:
			return nodeError(source, k, ErrInvalidDocument, fmt.Sprintf("unknown section %q", k.Value))
		}
		if isNull(v) {
			continue
		}
		if v.Kind != yaml.MappingNode {
			return nodeError(source, v, ErrInvalidDocument, k.Value+" must be a mapping")
		}
		for j := 0; j+1 < len(v.Content); j += 2 {
			d := declaration{source: source, key: v.Content[j], body: v.Content[j+1]}
			if err := l.claim(d); err != nil {
				return err
			}
			*into = append(*into, d)
		}
	}
	return nil
}

// AddFile reads and adds the document at path.
func (l *Loader) AddFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("modeldef: %w", err)
	}
	return l.Add(data, path)
}

func (l *Loader) claim(d declaration) error {
	name := d.name()
	if name == "" {
		return nodeError(d.source, d.key, ErrInvalidDocument, "empty name")
	}
	if builtin(name) {
		return nodeError(d.source, d.key, ErrDuplicateName, fmt.Sprintf("%q is a built-in type", name))
	}
	if prev, ok := l.seen[name]; ok {
		return nodeError(d.source, d.key, ErrDuplicateName, fmt.Sprintf("%q already declared at %s", name, prev))
	}
	l.seen[name] = position(d.source, d.key)
	return nil
}

// Resolve builds the models and enums of every added document. Each call
// builds fresh definitions.
func (l *Loader) Resolve() (*Definitions, error) {
	defs := &Definitions{
		models: orderedmap.New[string, *ms.ModelDef](),
		enums:  orderedmap.New[string, *ms.EnumDef](),
	}
	for _, d := range l.enums {
		e, err := enumDef(d)
		if err != nil {
			return nil, err
		}
		defs.enums.Set(d.name(), e)
	}
	// every model exists before any field type is parsed
	for _, d := range l.models {
		defs.models.Set(d.name(), ms.NewModel(d.name()))
	}
	for _, d := range l.models {
		m, _ := defs.models.Get(d.name())
		if err := defs.fill(m, d); err != nil {
			return nil, err
		}
	}
	return defs, nil
}

// Load parses and resolves a single document.
func Load(data []byte) (*Definitions, error) {
	l := NewLoader()
	if err := l.Add(data, "<input>"); err != nil {
		return nil, err
	}
	return l.Resolve()
}

// LoadFiles parses and resolves the documents at paths together.
func LoadFiles(paths ...string) (*Definitions, error) {
	l := NewLoader()
	for _, p := range paths {
		if err := l.AddFile(p); err != nil {
			return nil, err
		}
	}
	return l.Resolve()
}

// Definitions holds resolved models and enums in declaration order.
type Definitions struct {
	models *orderedmap.OrderedMap[string, *ms.ModelDef]
	enums  *orderedmap.OrderedMap[string, *ms.EnumDef]
}

// Models returns the models in declaration order.
func (d *Definitions) Models() []*ms.ModelDef {
	out := make([]*ms.ModelDef, 0, d.models.Len())
	for p := d.models.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Value)
	}
	return out
}

// Enums returns the enums in declaration order.
func (d *Definitions) Enums() []*ms.EnumDef {
	out := make([]*ms.EnumDef, 0, d.enums.Len())
	for p := d.enums.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Value)
	}
	return out
}

// Model returns the model declared as name.
func (d *Definitions) Model(name string) (*ms.ModelDef, bool) { return d.models.Get(name) }

// Enum returns the enum declared as name.
func (d *Definitions) Enum(name string) (*ms.EnumDef, bool) { return d.enums.Get(name) }

// Lookup returns the type of a declared model or enum.
func (d *Definitions) Lookup(name string) (ms.Type, bool) {
	if m, ok := d.models.Get(name); ok {
		return ms.ModelOf(m), true
	}
	if e, ok := d.enums.Get(name); ok {
		return ms.EnumOf(e), true
	}
	return ms.Type{}, false
}

func enumDef(d declaration) (*ms.EnumDef, error) {
	values := d.body
	if values.Kind == yaml.MappingNode {
		values = nil
		for i := 0; i+1 < len(d.body.Content); i += 2 {
			k, v := d.body.Content[i], d.body.Content[i+1]
			if k.Value != "values" {
				return nil, nodeError(d.source, k, ErrInvalidDocument, fmt.Sprintf("enum %s: unknown key %q", d.name(), k.Value))
			}
			values = v
		}
		if values == nil {
			return nil, nodeError(d.source, d.key, ErrInvalidDocument, fmt.Sprintf("enum %s: missing values", d.name()))
		}
	}
	if values.Kind != yaml.SequenceNode {
		return nil, nodeError(d.source, values, ErrInvalidDocument, fmt.Sprintf("enum %s: values must be a sequence", d.name()))
	}
	var literals []any
	if err := values.Decode(&literals); err != nil {
		return nil, nodeError(d.source, values, ErrInvalidDocument, err.Error())
	}
	return ms.NewEnum(d.name(), literals...), nil
}

func (defs *Definitions) fill(m *ms.ModelDef, d declaration) error {
	if isNull(d.body) {
		return nil
	}
	if d.body.Kind != yaml.MappingNode {
		return nodeError(d.source, d.body, ErrInvalidDocument, fmt.Sprintf("model %s must be a mapping", d.name()))
	}
	if err := uniqueKeys(d.source, d.body); err != nil {
		return err
	}
	for i := 0; i+1 < len(d.body.Content); i += 2 {
		k, v := d.body.Content[i], d.body.Content[i+1]
		switch k.Value {
		case "description", "doc":
			text, err := scalarText(d.source, v, k.Value)
			if err != nil {
				return fmt.Errorf("model %s: %w", d.name(), err)
			}
			if k.Value == "doc" {
				m.Document(text)
			} else {
				m.Describe(text)
			}
		case "fields":
			if isNull(v) {
				continue
			}
			if v.Kind != yaml.MappingNode {
				return nodeError(d.source, v, ErrInvalidDocument, fmt.Sprintf("model %s: fields must be a mapping", d.name()))
			}
			if err := uniqueKeys(d.source, v); err != nil {
				return fmt.Errorf("model %s: %w", d.name(), err)
			}
			for j := 0; j+1 < len(v.Content); j += 2 {
				f, err := defs.field(d.source, m.ModelName(), v.Content[j], v.Content[j+1])
				if err != nil {
					return err
				}
				m.AddField(f)
			}
		default:
			return nodeError(d.source, k, ErrInvalidDocument, fmt.Sprintf("model %s: unknown key %q", d.name(), k.Value))
		}
	}
	return nil
}

// uniqueKeys rejects a mapping that repeats a key; decoding into a yaml.Node
// keeps every entry.
func uniqueKeys(source string, n *yaml.Node) error {
	first := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := n.Content[i]
		if prev, ok := first[k.Value]; ok {
			return nodeError(source, k, ErrDuplicateName, fmt.Sprintf("key %q repeats %s", k.Value, position(source, prev)))
		}
		first[k.Value] = k
	}
	return nil
}

// scalarText reads a string-valued key; null reads as empty.
func scalarText(source string, n *yaml.Node, key string) (string, error) {
	if isNull(n) {
		return "", nil
	}
	if n.Kind != yaml.ScalarNode {
		return "", nodeError(source, n, ErrInvalidDocument, key+" must be a string")
	}
	return n.Value, nil
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

func position(source string, n *yaml.Node) string {
	return fmt.Sprintf("%s:%d:%d", source, n.Line, n.Column)
}

func nodeError(source string, n *yaml.Node, kind error, msg string) error {
	return fmt.Errorf("%w: %s: %s", kind, position(source, n), msg)
}

func builtin(name string) bool {
	if _, ok := primitiveNames[name]; ok {
		return true
	}
	_, ok := generics[name]
	return ok
}
