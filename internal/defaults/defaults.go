// Package defaults resolves tri-valued (true / false / unset) settings
// against platform defaults.
package defaults

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// Or returns *v, or def when v is unset.
func Or(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// Invert returns !*v, or def when v is unset.
func Invert(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return !*v
}

// ReturnIf maps an explicit true to ifTrue, an explicit false to ifFalse and
// an unset value to def.
func ReturnIf[T any](v *bool, ifTrue, ifFalse, def T) T {
	switch {
	case v == nil:
		return def
	case *v:
		return ifTrue
	default:
		return ifFalse
	}
}

// IsTrue reports whether v is set and true.
func IsTrue(v *bool) bool { return v != nil && *v }

// IsFalse reports whether v is set and false.
func IsFalse(v *bool) bool { return v != nil && !*v }

// String returns *v, or def when v is nil or empty.
func String(v *string, def string) string {
	if v == nil || *v == "" {
		return def
	}
	return *v
}

// Value returns *v, or def when v is nil.
func Value[T any](v *T, def T) T {
	if v == nil {
		return def
	}
	return *v
}
