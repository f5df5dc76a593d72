// Package compute holds the deterministic arithmetic exposed as agent tools.
package compute

import (
	"errors"
	"fmt"
	"math"
)

// ErrIntegerOverflow is returned when a result does not fit in an int64.
var ErrIntegerOverflow = errors.New("integer overflow")

// Multiply returns a*b, or ErrIntegerOverflow when the product wraps.
func Multiply(a, b int64) (int64, error) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	p := a * b
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) || p/b != a {
		return 0, fmt.Errorf("%w: %d * %d", ErrIntegerOverflow, a, b)
	}
	return p, nil
}
