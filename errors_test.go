package middleschema_test

import (
	"errors"
	"fmt"
	"testing"

	ms "github.com/vltr/middle-schema"
)

func TestTypeError_Message(t *testing.T) {
	err := &ms.TypeError{
		Path: "Game.scores",
		Type: ms.Dict(ms.Int(), ms.String()),
		Kind: ms.ErrInvalidKeyType,
		Hint: "declare Dict[str, str]",
	}
	want := "middleschema: invalid dict key type Dict[int, str] at Game.scores: declare Dict[str, str]"
	if got := err.Error(); got != want {
		t.Fatalf("unexpected message:\n got: %s\nwant: %s", got, want)
	}
}

func TestTypeError_IsKind(t *testing.T) {
	base := &ms.TypeError{Type: ms.BareList(), Kind: ms.ErrDiscouragedBareContainer}
	wrapped := fmt.Errorf("loading: %w", base)
	if !errors.Is(wrapped, ms.ErrDiscouragedBareContainer) {
		t.Fatalf("expected errors.Is to match the kind")
	}
	if errors.Is(wrapped, ms.ErrUnsupportedType) {
		t.Fatalf("unexpected kind match")
	}
	te, ok := ms.AsTypeError(wrapped)
	if !ok || te != base {
		t.Fatalf("AsTypeError did not return the original error")
	}
}

func TestTypeError_DefaultsToUnsupported(t *testing.T) {
	err := &ms.TypeError{Type: ms.Tuple()}
	if !errors.Is(err, ms.ErrUnsupportedType) {
		t.Fatalf("a TypeError without kind should be unsupported type")
	}
	if _, ok := ms.AsTypeError(errors.New("other")); ok {
		t.Fatalf("plain errors are not TypeErrors")
	}
}
