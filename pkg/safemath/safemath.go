// Package safemath provides overflow-aware arithmetic for stake amounts.
//
// The checked variants report whether the result is exact, the saturating
// variants clamp to the representable bounds and never fail.
package safemath

import (
	"math"
	"math/bits"
)

func Add64(a, b uint64) (uint64, bool) {
	v, carry := bits.Add64(a, b, 0)
	return v, carry == 0
}

func Sub64(a, b uint64) (uint64, bool) {
	v, borrow := bits.Sub64(a, b, 0)
	return v, borrow == 0
}

func Mul64(a, b uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	return lo, hi == 0
}

// SaturatingAdd returns a+b, or math.MaxUint64 on overflow.
func SaturatingAdd(a, b uint64) uint64 {
	if v, ok := Add64(a, b); ok {
		return v
	}
	return math.MaxUint64
}

// SaturatingSub returns a-b, or 0 on underflow.
func SaturatingSub(a, b uint64) uint64 {
	if v, ok := Sub64(a, b); ok {
		return v
	}
	return 0
}

// SaturatingMul returns a*b, or math.MaxUint64 on overflow.
func SaturatingMul(a, b uint64) uint64 {
	if v, ok := Mul64(a, b); ok {
		return v
	}
	return math.MaxUint64
}

// MulDiv returns a*b/d computed over a 128 bit intermediate. The result
// saturates when it does not fit in 64 bits. A zero divisor yields 0.
func MulDiv(a, b, d uint64) uint64 {
	if d == 0 {
		return 0
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= d {
		return math.MaxUint64
	}
	quo, _ := bits.Div64(hi, lo, d)
	return quo
}

// ApplyMultiplier returns base increased by multiplier/precision of itself.
func ApplyMultiplier(base, multiplier, precision uint64) uint64 {
	if precision == 0 {
		return base
	}
	return SaturatingAdd(base, SaturatingMul(base, multiplier)/precision)
}

func Max(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

func Min(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
