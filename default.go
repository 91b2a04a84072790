package middleschema

// Default is the declared default of a field: absent, present and null, or
// present with a value.
type Default struct {
	set   bool
	value any
}

// NoDefault is the absent default; it equals the zero Default.
func NoDefault() Default { return Default{} }

// DefaultValue declares v as default. A nil v declares a null default.
func DefaultValue(v any) Default { return Default{set: true, value: v} }

// IsSet reports whether a default was declared.
func (d Default) IsSet() bool { return d.set }

// IsNull reports whether the declared default is null.
func (d Default) IsNull() bool { return d.set && d.value == nil }

// Value returns the declared value and whether one was declared.
func (d Default) Value() (any, bool) { return d.value, d.set }
