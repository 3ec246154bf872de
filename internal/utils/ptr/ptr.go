// Package ptr holds helpers for optional numeric cells.
package ptr

// To creates a pointer to the given value.
func To[T any](v T) *T {
	return &v
}

// Float64 creates a pointer to the given float64 value.
func Float64(f float64) *float64 {
	return &f
}

// Deref returns the pointed-to value, or def when p is nil.
func Deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

// Equal reports whether two optional values are both nil or both set to
// equal values.
func Equal[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
