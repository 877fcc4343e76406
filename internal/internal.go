// Package internal is code only for consumption from within the scr project.
package internal

// Diff returns the elements in `a` that aren't in `b`.
func Diff[T comparable](a, b []T) []T {
	mb := make(map[T]struct{}, len(b))
	for _, x := range b {
		mb[x] = struct{}{}
	}
	var diff []T
	for _, x := range a {
		if _, found := mb[x]; !found {
			diff = append(diff, x)
		}
	}
	return diff
}

// Version of scr, set at build time with -ldflags.
var Version = "unknown"
