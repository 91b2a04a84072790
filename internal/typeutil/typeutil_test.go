package typeutil

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	ms "github.com/vltr/middle-schema"
)

func TestCamelCase(t *testing.T) {
	cases := map[string]string{
		"min_length":  "minLength",
		"multiple_of": "multipleOf",
		"pattern":     "pattern",
		"max_items":   "maxItems",
		"Max_ITEMS":   "maxItems",
		"unique__x":   "uniqueX",
		"max_items2x": "maxItems2X",
		"min_2nd_val": "min2NdVal",
		"":            "",
	}
	for in, want := range cases {
		assert.Equal(t, want, CamelCase(in), in)
	}
}

type color string

type stamp time.Time

func TestKindOf(t *testing.T) {
	cases := []struct {
		v    any
		want ms.Kind
	}{
		{"x", ms.KindString},
		{color("red"), ms.KindString},
		{1, ms.KindInteger},
		{uint8(1), ms.KindInteger},
		{1.5, ms.KindFloat},
		{true, ms.KindBool},
		{[]byte("x"), ms.KindBytes},
		{time.Now(), ms.KindDateTime},
		{stamp{}, ms.KindDateTime},
		{json.Number("1.5"), ms.KindDecimal},
	}
	for _, tc := range cases {
		got, ok := KindOf(tc.v)
		assert.True(t, ok, "%T", tc.v)
		assert.Equal(t, tc.want, got, "%T", tc.v)
	}

	for _, v := range []any{nil, []int{1}, map[string]any{}, struct{}{}} {
		_, ok := KindOf(v)
		assert.False(t, ok, "%T", v)
	}
}
