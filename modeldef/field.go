package modeldef

import (
	"fmt"

	ms "github.com/vltr/middle-schema"
	"gopkg.in/yaml.v3"
)

// field builds one field from either a type expression or a mapping with
// the keys type, description, default, rules, instance_of and metadata.
func (defs *Definitions) field(source, model string, key, body *yaml.Node) (*ms.FieldDef, error) {
	path := model + "." + key.Value
	fail := func(err error) error {
		return fmt.Errorf("%s: %w", path, err)
	}
	if body.Kind == yaml.ScalarNode && !isNull(body) {
		t, err := ParseType(body.Value, defs.Lookup)
		if err != nil {
			return nil, fail(nodeError(source, body, ErrInvalidDocument, err.Error()))
		}
		return ms.NewField(key.Value, t), nil
	}
	if body.Kind != yaml.MappingNode {
		return nil, fail(nodeError(source, body, ErrInvalidDocument, "field must be a type or a mapping"))
	}
	if err := uniqueKeys(source, body); err != nil {
		return nil, fail(err)
	}

	var (
		typeNode *yaml.Node
		opts     []ms.FieldOption
		desc     *string
	)
	for i := 0; i+1 < len(body.Content); i += 2 {
		k, v := body.Content[i], body.Content[i+1]
		switch k.Value {
		case "type":
			typeNode = v
		case "description":
			s, err := scalarText(source, v, "description")
			if err != nil {
				return nil, fail(err)
			}
			desc = &s
		case "default":
			var def any
			if err := v.Decode(&def); err != nil {
				return nil, fail(nodeError(source, v, ErrInvalidDocument, err.Error()))
			}
			opts = append(opts, ms.WithDefault(def))
		case "rules":
			rules, err := orderedRules(source, v)
			if err != nil {
				return nil, fail(err)
			}
			for _, r := range rules {
				opts = append(opts, ms.WithRule(r.Name, r.Value))
			}
		case "instance_of":
			checked, err := defs.instanceOf(source, v)
			if err != nil {
				return nil, fail(err)
			}
			opts = append(opts, ms.WithValidators(checked))
		case "metadata":
			if v.Kind != yaml.MappingNode {
				return nil, fail(nodeError(source, v, ErrInvalidDocument, "metadata must be a mapping"))
			}
			for j := 0; j+1 < len(v.Content); j += 2 {
				var value any
				if err := v.Content[j+1].Decode(&value); err != nil {
					return nil, fail(nodeError(source, v.Content[j+1], ErrInvalidDocument, err.Error()))
				}
				opts = append(opts, ms.WithMetadata(v.Content[j].Value, value))
			}
		default:
			return nil, fail(nodeError(source, k, ErrInvalidDocument, fmt.Sprintf("unknown field key %q", k.Value)))
		}
	}
	if typeNode == nil || typeNode.Kind != yaml.ScalarNode {
		return nil, fail(nodeError(source, body, ErrInvalidDocument, "missing type"))
	}
	t, err := ParseType(typeNode.Value, defs.Lookup)
	if err != nil {
		return nil, fail(nodeError(source, typeNode, ErrInvalidDocument, err.Error()))
	}
	// the description key wins over a metadata description
	if desc != nil {
		opts = append(opts, ms.WithDescription(*desc))
	}
	return ms.NewField(key.Value, t, opts...), nil
}

// orderedRules reads a rules mapping keeping the declared order.
func orderedRules(source string, n *yaml.Node) (ms.Rules, error) {
	if n.Kind != yaml.MappingNode {
		return nil, nodeError(source, n, ErrInvalidDocument, "rules must be a mapping")
	}
	if err := uniqueKeys(source, n); err != nil {
		return nil, err
	}
	var rules ms.Rules
	for i := 0; i+1 < len(n.Content); i += 2 {
		var v any
		if err := n.Content[i+1].Decode(&v); err != nil {
			return nil, nodeError(source, n.Content[i+1], ErrInvalidDocument, err.Error())
		}
		rules = rules.With(n.Content[i].Value, v)
	}
	return rules, nil
}

func (defs *Definitions) instanceOf(source string, n *yaml.Node) (ms.InstanceOf, error) {
	exprs := []*yaml.Node{n}
	if n.Kind == yaml.SequenceNode {
		exprs = n.Content
	}
	out := make(ms.InstanceOf, 0, len(exprs))
	for _, e := range exprs {
		if e.Kind != yaml.ScalarNode {
			return nil, nodeError(source, e, ErrInvalidDocument, "instance_of takes type expressions")
		}
		t, err := ParseType(e.Value, defs.Lookup)
		if err != nil {
			return nil, nodeError(source, e, ErrInvalidDocument, err.Error())
		}
		out = append(out, t)
	}
	return out, nil
}
