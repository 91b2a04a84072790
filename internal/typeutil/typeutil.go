// Package typeutil holds the small classification helpers shared by the
// skeleton builder and the renderer.
package typeutil

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"
	"unicode"

	ms "github.com/vltr/middle-schema"
)

// CamelCase converts a snake_case rule name into a schema keyword:
// min_length -> minLength, multiple_of -> multipleOf. The first segment is
// lower-cased; every following segment is title-cased word by word, so
// max_items2x becomes maxItems2X.
func CamelCase(s string) string {
	parts := strings.Split(s, "_")
	b := &strings.Builder{}
	b.Grow(len(s))
	b.WriteString(strings.ToLower(parts[0]))
	for _, p := range parts[1:] {
		b.WriteString(title(p))
	}
	return b.String()
}

// title upper-cases the first letter of every run of cased letters and
// lower-cases the rest, so a letter after a digit starts a new word:
// items2x -> Items2X.
func title(s string) string {
	b := &strings.Builder{}
	b.Grow(len(s))
	prevCased := false
	for _, r := range s {
		switch {
		case unicode.IsUpper(r) || unicode.IsTitle(r):
			if prevCased {
				r = unicode.ToLower(r)
			}
			prevCased = true
		case unicode.IsLower(r):
			if !prevCased {
				r = unicode.ToTitle(r)
			}
			prevCased = true
		default:
			prevCased = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

var (
	timeType       = reflect.TypeOf(time.Time{})
	jsonNumberType = reflect.TypeOf(json.Number(""))
	bytesType      = reflect.TypeOf([]byte(nil))
)

// KindOf classifies a literal value into the primitive kind it is written as
// on the wire. Named types are classified by their underlying kind, so enum
// members declared as `type Color string` classify as strings.
func KindOf(v any) (ms.Kind, bool) {
	if v == nil {
		return ms.KindInvalid, false
	}
	return KindOfType(reflect.TypeOf(v))
}

// KindOfType is KindOf for a reflect.Type.
func KindOfType(t reflect.Type) (ms.Kind, bool) {
	switch {
	case t == timeType || t.ConvertibleTo(timeType) && t.Kind() == reflect.Struct:
		return ms.KindDateTime, true
	case t == jsonNumberType:
		return ms.KindDecimal, true
	case t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8 && t.ConvertibleTo(bytesType):
		return ms.KindBytes, true
	}
	switch t.Kind() {
	case reflect.String:
		return ms.KindString, true
	case reflect.Bool:
		return ms.KindBool, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return ms.KindInteger, true
	case reflect.Float32, reflect.Float64:
		return ms.KindFloat, true
	}
	return ms.KindInvalid, false
}
