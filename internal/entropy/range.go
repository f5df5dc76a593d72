package entropy

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidRange is returned for a range whose low bound is not below its
// high bound, or whose size does not fit in an int.
var ErrInvalidRange = errors.New("invalid range")

// Range is an inclusive integer range [Low, High].
type Range struct {
	Low  int
	High int
}

// Size returns the number of integers in r.
func (r Range) Size() (int, error) {
	if r.Low >= r.High {
		return 0, fmt.Errorf("%w: low %d must be less than high %d", ErrInvalidRange, r.Low, r.High)
	}
	d := r.High - r.Low
	if d < 0 || d == math.MaxInt {
		return 0, fmt.Errorf("%w: [%d, %d] is too wide", ErrInvalidRange, r.Low, r.High)
	}
	return d + 1, nil
}

// Contains reports whether v lies in r.
func (r Range) Contains(v int) bool {
	return v >= r.Low && v <= r.High
}

// Normalize maps raw into [low, high] as (raw mod N) + low, N = high-low+1.
// The range must be valid; see the package doc for the bias this carries.
func Normalize(raw, low, high int) int {
	return normalize(raw, low, high-low+1)
}

func normalize(raw, low, n int) int {
	m := raw % n
	if m < 0 {
		m += n
	}
	return low + m
}
