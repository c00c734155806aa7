package util

// Ptr returns a pointer to v, for optional result fields.
func Ptr[T any](v T) *T {
	return &v
}
