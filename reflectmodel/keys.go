package reflectmodel

import (
	"reflect"
	"strconv"
	"strings"

	ms "github.com/vltr/middle-schema"
)

// TagName is the struct tag read by this package.
const TagName = "middleschema"

// ResolveStructKey resolves the property name of a struct field.
// Priority: middleschema:"name=..." > json tag name > field name; "-" drops
// the field.
func ResolveStructKey(sf reflect.StructField) string {
	if gt := sf.Tag.Get(TagName); gt != "" {
		for _, p := range splitTag(gt) {
			p = strings.TrimSpace(p)
			if strings.HasPrefix(p, "name=") {
				return strings.TrimPrefix(p, "name=")
			}
		}
	}
	if jt := sf.Tag.Get("json"); jt != "" {
		if jt == "-" {
			return "-"
		}
		if i := strings.IndexByte(jt, ','); i >= 0 {
			jt = jt[:i]
		}
		if jt != "" {
			return jt
		}
	}
	return sf.Name
}

// tagOptions is the parsed middleschema tag.
type tagOptions struct {
	name        string
	hasName     bool
	description string
	def         string
	hasDefault  bool
	date        bool
	rules       ms.Rules
}

// parseTag reads a tag such as
//
//	middleschema:"description=The name,min_length=5,pattern=^[a-z]{1\,3}$"
//
// Commas inside values are escaped as \,. Keys other than name, description,
// default and date become validation rules; a key without a value is the rule
// set to true.
func parseTag(tag string) tagOptions {
	var o tagOptions
	for _, part := range splitTag(tag) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, hasValue := strings.Cut(part, "=")
		switch key {
		case "name":
			o.name, o.hasName = value, true
		case "description":
			o.description = value
		case "default":
			o.def, o.hasDefault = value, true
		case "date":
			o.date = true
		default:
			if !hasValue {
				o.rules = o.rules.With(key, true)
				continue
			}
			o.rules = o.rules.With(key, ruleValue(value))
		}
	}
	return o
}

// splitTag splits on commas not preceded by a backslash.
func splitTag(tag string) []string {
	var parts []string
	b := &strings.Builder{}
	for i := 0; i < len(tag); i++ {
		c := tag[i]
		if c == '\\' && i+1 < len(tag) && tag[i+1] == ',' {
			b.WriteByte(',')
			i++
			continue
		}
		if c == ',' {
			parts = append(parts, b.String())
			b.Reset()
			continue
		}
		b.WriteByte(c)
	}
	return append(parts, b.String())
}

// ruleValue types a rule literal: integers, then floats, then true/false, else
// the raw string.
func ruleValue(s string) any {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}
