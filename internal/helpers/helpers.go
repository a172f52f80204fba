// Package helpers holds small utilities shared across packages.
package helpers

// Ptr returns a pointer to v, or nil when v is a nil interface.
func Ptr[T any](v T) *T {
	if any(v) == nil {
		return nil
	}
	return &v
}

// Truncate shortens s to at most n bytes, marking the cut with "...".
func Truncate(s string, n int) string {
	switch {
	case len(s) <= n:
		return s
	case n <= 3:
		return s[:max(n, 0)]
	default:
		return s[:n-3] + "..."
	}
}
