package utils

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// ValueOr dereferences p, returning fallback when p is nil.
func ValueOr[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}
