package utils

// Ptr returns a pointer to v. Useful for building partial-update requests
// with optional fields.
func Ptr[T any](v T) *T {
	return &v
}

// Value dereferences v, returning the zero value when v is nil.
func Value[T any](v *T) T {
	if v == nil {
		return *new(T)
	}
	return *v
}
