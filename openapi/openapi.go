// Package openapi renders skeleton trees into OpenAPI-compatible JSON Schema
// fragments.
//
// Parse runs the whole pipeline for a model, a field or a bare type:
//
//	res, err := openapi.Parse(game, openapi.WithEnumAsComponent(false))
//	// res.Specification: {"$ref": "#/components/schemas/Game"}
//	// res.Components:    Game, and every nested model it uses
//
// Rendering adds no failure modes of its own: every error comes from the
// skeleton builder and wraps one of the middleschema error kinds.
package openapi

import (
	"log/slog"

	ms "github.com/vltr/middle-schema"
	"github.com/vltr/middle-schema/internal/typeutil"
	"github.com/vltr/middle-schema/skeleton"
)

// RefPrefix is prepended to component names in $ref pointers.
const RefPrefix = "#/components/schemas/"

// Result pairs the top-level fragment with the components it references.
type Result struct {
	Specification *Fragment
	Components    *Components
}

// Parse translates v (a model, a field or a type) and renders it.
func Parse(v any, opts ...Option) (*Result, error) {
	return NewRenderer(opts...).Parse(v)
}

// Renderer renders skeletons with a fixed Config. It holds no per-call state
// and is safe for concurrent use.
type Renderer struct {
	cfg Config
}

// NewRenderer builds a Renderer from DefaultConfig and opts.
func NewRenderer(opts ...Option) *Renderer {
	return &Renderer{cfg: newConfig(opts)}
}

// Config returns the renderer configuration.
func (r *Renderer) Config() Config { return r.cfg }

// Parse translates v and renders the skeleton.
func (r *Renderer) Parse(v any) (*Result, error) {
	sk, err := skeleton.Translate(v)
	if err != nil {
		return nil, err
	}
	return r.Render(sk)
}

// Render renders an already built skeleton into a fresh components map.
func (r *Renderer) Render(sk *skeleton.Skeleton) (*Result, error) {
	p := &pass{cfg: r.cfg, components: NewComponents()}
	spec, err := p.render(sk)
	if err != nil {
		return nil, err
	}
	return &Result{Specification: spec, Components: p.components}, nil
}

// Ref returns the $ref pointer for a component name.
func Ref(name string) string { return RefPrefix + name }

// pass is one render call; components is threaded through the descent and
// written at most once per name.
type pass struct {
	cfg        Config
	components *Components
}

type primitiveSchema struct {
	typ    string
	format string
}

var primitives = map[ms.Kind]primitiveSchema{
	ms.KindString:   {typ: "string"},
	ms.KindBytes:    {typ: "string", format: "byte"},
	ms.KindInteger:  {typ: "integer", format: "int64"},
	ms.KindFloat:    {typ: "number", format: "double"},
	ms.KindDecimal:  {typ: "number", format: "double"},
	ms.KindBool:     {typ: "boolean"},
	ms.KindDate:     {typ: "string", format: "date"},
	ms.KindDateTime: {typ: "string", format: "date-time"},
}

func (p *pass) render(sk *skeleton.Skeleton) (*Fragment, error) {
	k := sk.Type.Kind()
	if k.IsPrimitive() {
		return primitive(k).Overlay(keywords(sk)), nil
	}
	switch k {
	case ms.KindModel:
		return p.model(sk)
	case ms.KindEnum:
		return p.enum(sk)
	case ms.KindList, ms.KindSet:
		items, err := p.child(sk)
		if err != nil {
			return nil, err
		}
		out := NewFragment()
		out.Set("type", "array")
		out.Set("items", items)
		return out.Overlay(keywords(sk)), nil
	case ms.KindDict:
		values, err := p.child(sk)
		if err != nil {
			return nil, err
		}
		out := NewFragment()
		out.Set("type", "object")
		out.Set("additionalProperties", values)
		return out.Overlay(keywords(sk)), nil
	case ms.KindUnion:
		return p.union(sk)
	}
	// the builder rejects every other category first
	return nil, &ms.TypeError{Path: sk.Name, Type: sk.Type, Kind: ms.ErrUnsupportedType}
}

func (p *pass) child(sk *skeleton.Skeleton) (*Fragment, error) {
	if len(sk.Children) != 1 {
		return nil, &ms.TypeError{Path: sk.Name, Type: sk.Type, Kind: ms.ErrUnsupportedType, Hint: "malformed skeleton"}
	}
	return p.render(sk.Children[0])
}

func primitive(k ms.Kind) *Fragment {
	ps := primitives[k]
	out := NewFragment()
	out.Set("type", ps.typ)
	if ps.format != "" {
		out.Set("format", ps.format)
	}
	return out
}

func (p *pass) model(sk *skeleton.Skeleton) (*Fragment, error) {
	name := sk.ModelName()
	if sk.Ref {
		return reference(name, sk.SiteDescription), nil
	}
	props := NewFragment()
	required := make([]string, 0, len(sk.Children))
	for _, c := range sk.Children {
		f, err := p.render(c)
		if err != nil {
			return nil, err
		}
		props.Set(c.Name, f)
		if c.Required() {
			required = append(required, c.Name)
		}
	}
	out := NewFragment()
	out.Set("type", "object")
	out.Set("properties", props)
	out.Set("required", required)
	if sk.Description != "" {
		out.Set("description", sk.Description)
	}
	if p.cfg.ModelAsComponent || sk.Recursive {
		p.store(name, out)
		return reference(name, sk.SiteDescription), nil
	}
	if sk.SiteDescription != "" {
		out.Set("description", sk.SiteDescription)
	}
	return out, nil
}

func (p *pass) enum(sk *skeleton.Skeleton) (*Fragment, error) {
	if len(sk.Children) != 1 {
		return nil, &ms.TypeError{Path: sk.Name, Type: sk.Type, Kind: ms.ErrUnsupportedType, Hint: "malformed skeleton"}
	}
	wire := sk.Children[0].Type.Kind()
	out := primitive(wire).Overlay(keywords(sk))
	out.Set("choices", append([]any{}, sk.Choices...))
	if !p.cfg.EnumAsComponent {
		return out, nil
	}
	// only the description moves to the reference; rules stay with the schema
	out.Delete("description")
	name := sk.ModelName()
	p.store(name, out)
	return reference(name, sk.Description), nil
}

func (p *pass) union(sk *skeleton.Skeleton) (*Fragment, error) {
	var out *Fragment
	if sk.AnyOf {
		members := make([]*Fragment, 0, len(sk.Children))
		for _, c := range sk.Children {
			f, err := p.render(c)
			if err != nil {
				return nil, err
			}
			members = append(members, f)
		}
		out = NewFragment()
		out.Set("anyOf", members)
	} else {
		// the optional member is built for the same field and already
		// carries its keywords
		f, err := p.child(sk)
		if err != nil {
			return nil, err
		}
		out = f
	}
	if sk.Nullable {
		out.Set("nullable", true)
	}
	if sk.AnyOf {
		out.Overlay(keywords(sk))
	}
	return out, nil
}

func (p *pass) store(name string, frag *Fragment) {
	if p.components.Add(name, frag) {
		p.cfg.Logger.Debug("component extracted", slog.String("name", name), slog.Int("components", p.components.Len()))
	}
}

func reference(name, description string) *Fragment {
	out := NewFragment()
	out.Set("$ref", Ref(name))
	if description != "" {
		out.Set("description", description)
	}
	return out
}

// keywords returns the field-level keywords of a named, non-model node:
// camelCased validator rules followed by the description.
func keywords(sk *skeleton.Skeleton) *Fragment {
	out := NewFragment()
	if sk.IsAnonymous() || sk.IsModel() {
		return out
	}
	for _, r := range sk.Validators.Rules {
		out.Set(typeutil.CamelCase(r.Name), r.Value)
	}
	if sk.Description != "" {
		out.Set("description", sk.Description)
	}
	return out
}
