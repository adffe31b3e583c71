// Package simdscan finds the first element of a slice that differs from a
// given value, using SIMD lanes where the platform supports them and a
// scalar tail loop for whatever does not divide evenly into a lane width.
// It backs the chunk palette's run-length detection: a palette row is
// usually long runs of the same index, and finding the end of a run is the
// operation worth vectorizing.
package simdscan

import "github.com/ajroetker/go-highway/hwy"

// IndexOfAnyExcept returns the index of the first element of slice that is
// not equal to v, and true. If every element equals v, it returns (0,
// false).
func IndexOfAnyExcept[T hwy.Integers](slice []T, v T) (int, bool) {
	lanes := hwy.MaxLanes[T]()
	needle := hwy.Set[T](v)

	i := 0
	for ; i+lanes <= len(slice); i += lanes {
		chunk := hwy.Load(slice[i : i+lanes])
		mask := hwy.NotEqual(chunk, needle)
		if pos := hwy.FindFirstTrue(mask); pos >= 0 {
			return i + pos, true
		}
	}
	for ; i < len(slice); i++ {
		if slice[i] != v {
			return i, true
		}
	}
	return 0, false
}

// RunLength returns the length of the run of v starting at slice[0]. It is
// a convenience wrapper over IndexOfAnyExcept for callers that already know
// slice[0] == v and want to know where the run ends.
func RunLength[T hwy.Integers](slice []T, v T) int {
	if i, ok := IndexOfAnyExcept(slice, v); ok {
		return i
	}
	return len(slice)
}
