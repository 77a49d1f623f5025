package convert

import "math"

// CS32ToCF32 divides by 2^31. The float64 quotient is exact, so the single
// rounding to float32 is correctly rounded.
func CS32ToCF32(src, dst any, pairs int, scale float64) {
	s := src.([]int32)[:2*pairs]
	d := dst.([]float32)[:2*pairs]
	if scale == 1.0 {
		for i, v := range s {
			d[i] = float32(float64(v) / FullScaleCS32)
		}
		return
	}
	for i, v := range s {
		d[i] = float32(float64(v) / FullScaleCS32 * scale)
	}
}

// CS32ToCS16 keeps the top 16 bits. Scale does not apply to integer targets.
func CS32ToCS16(src, dst any, pairs int, _ float64) {
	s := src.([]int32)[:2*pairs]
	d := dst.([]int16)[:2*pairs]
	for i, v := range s {
		d[i] = int16(v >> 16)
	}
}

// CS32ToCS32 copies.
func CS32ToCS32(src, dst any, pairs int, _ float64) {
	copy(dst.([]int32)[:2*pairs], src.([]int32)[:2*pairs])
}

// CF32ToCS32 multiplies by 2^31, rounds to nearest and saturates at the
// int32 limits.
func CF32ToCS32(src, dst any, pairs int, scale float64) {
	s := src.([]float32)[:2*pairs]
	d := dst.([]int32)[:2*pairs]
	for i, v := range s {
		d[i] = saturate32(math.Round(float64(v) * scale * FullScaleCS32))
	}
}

// CS16ToCS32 shifts into the top 16 bits.
func CS16ToCS32(src, dst any, pairs int, _ float64) {
	s := src.([]int16)[:2*pairs]
	d := dst.([]int32)[:2*pairs]
	for i, v := range s {
		d[i] = int32(v) << 16
	}
}

func saturate32(v float64) int32 {
	switch {
	case v >= math.MaxInt32:
		return math.MaxInt32
	case v <= math.MinInt32:
		return math.MinInt32
	case math.IsNaN(v):
		return 0
	}
	return int32(v)
}
