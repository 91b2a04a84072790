// Package skeleton builds the intermediate, type-agnostic tree the renderer
// consumes.
//
// A Skeleton mirrors one position of the type tree: a model root, a declared
// field, or an anonymous type argument (list element, dict value, enum wire
// type, any-of member). Skeletons are built per Translate call and are not
// mutated afterwards.
package skeleton

import (
	ms "github.com/vltr/middle-schema"
)

// Skeleton is one node of the type tree.
type Skeleton struct {
	Type ms.Type
	// Name is the field name for declared fields, the model name for model
	// roots and empty for anonymous positions.
	Name string
	// Description is the field description for declared fields and the
	// model's own description for model nodes.
	Description string
	// SiteDescription is the field description at a model reference site. It
	// is kept apart from Description so a shared component keeps the model's
	// own text.
	SiteDescription string
	Nullable        bool
	Default         ms.Default
	Validators      ValidatorData
	// Choices holds the ordered enum literals (enum nodes only).
	Choices []any
	// AnyOf marks unions rendered as anyOf rather than as an optional wrapper.
	AnyOf    bool
	Children []*Skeleton
	// Recursive marks a model node re-entered by one of its descendants.
	Recursive bool
	// Ref marks a back-reference to a model still being built higher up the
	// tree. Ref nodes have no children.
	Ref bool
}

// HasDefaultValue reports whether the field declared a default.
func (s *Skeleton) HasDefaultValue() bool { return s.Default.IsSet() }

// IsModel reports whether s represents a model.
func (s *Skeleton) IsModel() bool { return s.Type.Kind() == ms.KindModel }

// IsAnonymous reports whether s is a nameless type argument.
func (s *Skeleton) IsAnonymous() bool { return s.Name == "" }

// Required reports whether a model lists this child as required: it is
// neither nullable nor default-bearing.
func (s *Skeleton) Required() bool { return !s.Nullable && !s.HasDefaultValue() }

// ModelName returns the component name of a model or enum node.
func (s *Skeleton) ModelName() string {
	switch s.Type.Kind() {
	case ms.KindModel:
		return s.Type.Model().ModelName()
	case ms.KindEnum:
		return s.Type.Enum().EnumName()
	}
	return ""
}

// ValidatorData is the validator metadata surfaced from a field.
type ValidatorData struct {
	// Rules in declaration order; a later rule with the same name replaces the
	// value of the earlier one in place.
	Rules ms.Rules
	// OfType collects the runtime type checks.
	OfType []ms.Type
}

func (v ValidatorData) HasRules() bool     { return len(v.Rules) > 0 }
func (v ValidatorData) HasTypeCheck() bool { return len(v.OfType) > 0 }

// Walk visits s and its descendants depth-first in child order. Returning
// false from fn skips the node's children.
func (s *Skeleton) Walk(fn func(*Skeleton) bool) {
	if s == nil || !fn(s) {
		return
	}
	for _, c := range s.Children {
		c.Walk(fn)
	}
}
