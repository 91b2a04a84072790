package modeldef

import (
	"fmt"
	"strings"
	"unicode"

	ms "github.com/vltr/middle-schema"
)

// Resolver looks up a named model or enum while parsing type expressions.
type Resolver func(name string) (ms.Type, bool)

var primitiveNames = map[string]ms.Type{
	"str":      ms.String(),
	"string":   ms.String(),
	"bytes":    ms.Bytes(),
	"int":      ms.Int(),
	"integer":  ms.Int(),
	"float":    ms.Float(),
	"number":   ms.Float(),
	"Decimal":  ms.Decimal(),
	"decimal":  ms.Decimal(),
	"bool":     ms.Bool(),
	"boolean":  ms.Bool(),
	"date":     ms.Date(),
	"datetime": ms.DateTime(),
	"None":     ms.Null(),
	"null":     ms.Null(),
}

// generic constructors and their accepted argument counts (-1: one or more,
// -2: zero or more)
var generics = map[string]struct {
	arity int
	build func(args []ms.Type) ms.Type
	bare  func() ms.Type
}{
	"List":      {1, func(a []ms.Type) ms.Type { return ms.List(a[0]) }, ms.BareList},
	"list":      {1, func(a []ms.Type) ms.Type { return ms.List(a[0]) }, ms.BareList},
	"Sequence":  {1, func(a []ms.Type) ms.Type { return ms.List(a[0]) }, ms.BareList},
	"Set":       {1, func(a []ms.Type) ms.Type { return ms.Set(a[0]) }, ms.BareSet},
	"set":       {1, func(a []ms.Type) ms.Type { return ms.Set(a[0]) }, ms.BareSet},
	"FrozenSet": {1, func(a []ms.Type) ms.Type { return ms.Set(a[0]) }, ms.BareSet},
	"Dict":      {2, func(a []ms.Type) ms.Type { return ms.Dict(a[0], a[1]) }, ms.BareDict},
	"dict":      {2, func(a []ms.Type) ms.Type { return ms.Dict(a[0], a[1]) }, ms.BareDict},
	"Mapping":   {2, func(a []ms.Type) ms.Type { return ms.Dict(a[0], a[1]) }, ms.BareDict},
	"Optional":  {1, func(a []ms.Type) ms.Type { return ms.Optional(a[0]) }, nil},
	"Union":     {-1, func(a []ms.Type) ms.Type { return ms.Union(a...) }, nil},
	"Tuple":     {-2, func(a []ms.Type) ms.Type { return ms.Tuple(a...) }, func() ms.Type { return ms.Tuple() }},
	"tuple":     {-2, func(a []ms.Type) ms.Type { return ms.Tuple(a...) }, func() ms.Type { return ms.Tuple() }},
}

// ParseType parses a type expression in typing notation, such as
// "Dict[str, List[int]]" or "Optional[City]". A "typing." prefix is
// accepted. Names that are neither built in nor known to resolve are errors.
func ParseType(expr string, resolve Resolver) (ms.Type, error) {
	p := &typeParser{src: expr, resolve: resolve}
	p.skipSpace()
	t, err := p.expr()
	if err != nil {
		return ms.Type{}, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return ms.Type{}, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return t, nil
}

type typeParser struct {
	src     string
	pos     int
	resolve Resolver
}

func (p *typeParser) errorf(format string, a ...any) error {
	return fmt.Errorf("modeldef: type %q at offset %d: %s", p.src, p.pos, fmt.Sprintf(format, a...))
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *typeParser) ident() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := rune(p.src[p.pos])
		if c != '_' && c != '.' && !unicode.IsLetter(c) && !unicode.IsDigit(c) {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos]
}

func (p *typeParser) expr() (ms.Type, error) {
	name := strings.TrimPrefix(p.ident(), "typing.")
	if name == "" {
		return ms.Type{}, p.errorf("expected a type name")
	}
	p.skipSpace()
	hasArgs := p.pos < len(p.src) && p.src[p.pos] == '['

	g, generic := generics[name]
	if !generic {
		if hasArgs {
			return ms.Type{}, p.errorf("%s takes no type arguments", name)
		}
		if t, ok := primitiveNames[name]; ok {
			return t, nil
		}
		if p.resolve != nil {
			if t, ok := p.resolve(name); ok {
				return t, nil
			}
		}
		return ms.Type{}, p.errorf("unknown type %q", name)
	}
	if !hasArgs {
		if g.bare == nil {
			return ms.Type{}, p.errorf("%s needs type arguments", name)
		}
		return g.bare(), nil
	}

	p.pos++ // [
	var args []ms.Type
	for {
		p.skipSpace()
		if p.pos < len(p.src) && p.src[p.pos] == ']' && len(args) == 0 {
			break
		}
		t, err := p.expr()
		if err != nil {
			return ms.Type{}, err
		}
		args = append(args, t)
		p.skipSpace()
		if p.pos < len(p.src) && p.src[p.pos] == ',' {
			p.pos++
			continue
		}
		break
	}
	if p.pos >= len(p.src) || p.src[p.pos] != ']' {
		return ms.Type{}, p.errorf("expected ]")
	}
	p.pos++

	switch {
	case g.arity == -1 && len(args) == 0,
		g.arity >= 0 && len(args) != g.arity:
		return ms.Type{}, p.errorf("%s takes %s, got %d", name, arityText(g.arity), len(args))
	}
	return g.build(args), nil
}

func arityText(n int) string {
	switch n {
	case -1:
		return "at least one type argument"
	case 1:
		return "one type argument"
	}
	return fmt.Sprintf("%d type arguments", n)
}
