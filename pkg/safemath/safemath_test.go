package safemath_test

import (
	"math"
	"testing"

	"github.com/crowdescrow/escrowd/pkg/safemath"
	"github.com/stretchr/testify/require"
)

func TestSaturating(t *testing.T) {
	t.Run("add", func(t *testing.T) {
		fixtures := []struct {
			a, b, expected uint64
		}{
			{0, 0, 0},
			{1, 2, 3},
			{math.MaxUint64 - 1, 1, math.MaxUint64},
			{math.MaxUint64, 1, math.MaxUint64},
			{math.MaxUint64, math.MaxUint64, math.MaxUint64},
		}
		for _, f := range fixtures {
			require.Equal(t, f.expected, safemath.SaturatingAdd(f.a, f.b))
		}
	})

	t.Run("sub", func(t *testing.T) {
		fixtures := []struct {
			a, b, expected uint64
		}{
			{3, 2, 1},
			{2, 2, 0},
			{2, 3, 0},
			{0, math.MaxUint64, 0},
		}
		for _, f := range fixtures {
			require.Equal(t, f.expected, safemath.SaturatingSub(f.a, f.b))
		}
	})

	t.Run("mul", func(t *testing.T) {
		fixtures := []struct {
			a, b, expected uint64
		}{
			{0, math.MaxUint64, 0},
			{3, 4, 12},
			{1 << 32, 1 << 31, 1 << 63},
			{1 << 32, 1 << 32, math.MaxUint64},
			{math.MaxUint64, 2, math.MaxUint64},
		}
		for _, f := range fixtures {
			require.Equal(t, f.expected, safemath.SaturatingMul(f.a, f.b))
		}
	})
}

func TestChecked(t *testing.T) {
	_, ok := safemath.Add64(math.MaxUint64, 1)
	require.False(t, ok)
	_, ok = safemath.Sub64(0, 1)
	require.False(t, ok)
	_, ok = safemath.Mul64(math.MaxUint64, 2)
	require.False(t, ok)

	v, ok := safemath.Mul64(1000, 1000)
	require.True(t, ok)
	require.Equal(t, uint64(1000000), v)
}

func TestMulDiv(t *testing.T) {
	require.Equal(t, uint64(1500), safemath.MulDiv(1000, 3000, 2000))
	require.Equal(t, uint64(0), safemath.MulDiv(1000, 3000, 0))

	// Intermediate product exceeds 64 bits but the quotient fits.
	big := uint64(1) << 62
	require.Equal(t, big, safemath.MulDiv(big, big, big))

	require.Equal(t, uint64(math.MaxUint64), safemath.MulDiv(math.MaxUint64, 4, 2))
}

func TestApplyMultiplier(t *testing.T) {
	fixtures := []struct {
		name                       string
		base, multiplier, expected uint64
	}{
		{"zero multiplier", 1000, 0, 1000},
		{"full multiplier", 1000, 10000, 2000},
		{"half multiplier", 1000, 5000, 1500},
		{"rounds down", 3, 5000, 4},
		{"saturates", math.MaxUint64, 10000, math.MaxUint64},
		{"saturating product", math.MaxUint64 / 2, 30000, math.MaxUint64/2 + math.MaxUint64/10000},
	}
	for _, f := range fixtures {
		t.Run(f.name, func(t *testing.T) {
			require.Equal(t, f.expected, safemath.ApplyMultiplier(f.base, f.multiplier, 10000))
		})
	}
}
