package compute_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petasbytes/entropy-agent/internal/compute"
)

func TestMultiply(t *testing.T) {
	cases := []struct {
		a, b, want int64
	}{
		{512, 8, 4096},
		{0, 99, 0},
		{-7, 6, -42},
		{-7, -6, 42},
		{math.MaxInt64, 1, math.MaxInt64},
		{math.MinInt64, 1, math.MinInt64},
		{math.MaxInt64, -1, -math.MaxInt64},
		{1 << 31, 1 << 31, 1 << 62},
	}
	for _, tc := range cases {
		got, err := compute.Multiply(tc.a, tc.b)
		require.NoError(t, err, "%d * %d", tc.a, tc.b)
		assert.Equal(t, tc.want, got, "%d * %d", tc.a, tc.b)
	}
}

func TestMultiply_Commutative(t *testing.T) {
	vals := []int64{0, 1, -1, 2, 8, 512, -4096, 1 << 20, math.MaxInt32, math.MinInt32}
	for _, a := range vals {
		for _, b := range vals {
			ab, errAB := compute.Multiply(a, b)
			ba, errBA := compute.Multiply(b, a)
			require.NoError(t, errAB)
			require.NoError(t, errBA)
			assert.Equal(t, ab, ba, "%d, %d", a, b)
		}
	}
}

func TestMultiply_Overflow(t *testing.T) {
	cases := [][2]int64{
		{math.MaxInt64, 2},
		{2, math.MaxInt64},
		{math.MinInt64, -1},
		{-1, math.MinInt64},
		{1 << 32, 1 << 32},
		{math.MinInt64, 2},
	}
	for _, tc := range cases {
		_, err := compute.Multiply(tc[0], tc[1])
		assert.ErrorIs(t, err, compute.ErrIntegerOverflow, "%d * %d", tc[0], tc[1])
	}
}
