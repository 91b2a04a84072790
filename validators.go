package middleschema

// Validator is any object attached to a field. The pipeline reads rule
// metadata from validators implementing RuleBearer, runtime type checks from
// TypeChecker and descends into Composite; anything else is ignored.
type Validator any

// Rule is one validation rule, e.g. {Name: "min_length", Value: 5}. Names are
// snake_case; renderers convert them to schema keywords.
type Rule struct {
	Name  string
	Value any
}

// RuleBearer exposes structured rule metadata.
type RuleBearer interface {
	Rules() []Rule
}

// TypeChecker exposes the runtime type(s) a validator requires.
type TypeChecker interface {
	CheckedTypes() []Type
}

// Composite groups validators.
type Composite interface {
	Validators() []Validator
}

// Rules is an ordered rule set.
type Rules []Rule

func (r Rules) Rules() []Rule { return append([]Rule(nil), r...) }

// With returns r with the rule name set to v. An existing rule keeps its
// position.
func (r Rules) With(name string, v any) Rules {
	out := append(Rules(nil), r...)
	for i := range out {
		if out[i].Name == name {
			out[i].Value = v
			return out
		}
	}
	return append(out, Rule{Name: name, Value: v})
}

// Get returns the value of rule name.
func (r Rules) Get(name string) (any, bool) {
	for _, rule := range r {
		if rule.Name == name {
			return rule.Value, true
		}
	}
	return nil, false
}

// InstanceOf is a runtime type-check validator.
type InstanceOf []Type

func (i InstanceOf) CheckedTypes() []Type { return append([]Type(nil), i...) }

type and []Validator

func (a and) Validators() []Validator { return append([]Validator(nil), a...) }

// And combines validators; rule and type metadata are collected from every
// member.
func And(vs ...Validator) Validator { return and(append([]Validator(nil), vs...)) }
