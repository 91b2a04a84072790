package middleschema

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every failure of the pipeline wraps exactly one of them; test
// with errors.Is.
var (
	// ErrUnsupportedType: the type has no semantic-category mapping (tuples,
	// opaque types, empty enums, a bare None).
	ErrUnsupportedType = errors.New("middleschema: unsupported type")
	// ErrInvalidKeyType: a Dict key type is not str.
	ErrInvalidKeyType = errors.New("middleschema: invalid dict key type")
	// ErrDiscouragedBareContainer: List, Set or Dict used without type arguments.
	ErrDiscouragedBareContainer = errors.New("middleschema: unparameterized container")
)

// TypeError reports a type that cannot be translated.
type TypeError struct {
	Path string // dotted field path, e.g. Game.players (empty for bare types)
	Type Type
	Kind error // one of the Err* kinds above
	Hint string
}

func (e *TypeError) Error() string {
	b := &strings.Builder{}
	kind := e.Kind
	if kind == nil {
		kind = ErrUnsupportedType
	}
	fmt.Fprintf(b, "%v %s", kind, e.Type)
	if e.Path != "" {
		fmt.Fprintf(b, " at %s", e.Path)
	}
	if e.Hint != "" {
		b.WriteString(": ")
		b.WriteString(e.Hint)
	}
	return b.String()
}

func (e *TypeError) Unwrap() error {
	if e.Kind == nil {
		return ErrUnsupportedType
	}
	return e.Kind
}

// AsTypeError extracts a *TypeError from err using errors.As.
func AsTypeError(err error) (*TypeError, bool) {
	var te *TypeError
	if errors.As(err, &te) {
		return te, true
	}
	return nil, false
}
