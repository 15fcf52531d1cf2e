// x/mathx/intdiv.go
package mathx

import "golang.org/x/exp/constraints"

// CeilDiv returns ceil(a/b). b == 0 yields 0.
func CeilDiv[T constraints.Unsigned](a, b T) T {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}

// RoundDiv returns floor((a + b/2)/b), classic rounding for positives.
func RoundDiv[T constraints.Unsigned](a, b T) T {
	if b == 0 {
		return 0
	}
	return (a + b/2) / b
}

// SplitFixed splits a fixed-point value with fracBits fractional bits
// into its integer and fractional parts.
func SplitFixed[T constraints.Unsigned](v T, fracBits uint) (whole, frac T) {
	return v >> fracBits, v & (T(1)<<fracBits - 1)
}

// RoundUpEven rounds v up to the next even value.
func RoundUpEven[T constraints.Unsigned](v T) T {
	return v + v&1
}
