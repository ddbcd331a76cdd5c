package cbor

import "github.com/x448/float16"

// float16BitsToFloat64 promotes an IEEE 754 binary16 bit pattern to
// float64. Subnormals, signed zeros, infinities and NaN payloads all
// follow the standard half-to-single expansion; widening the result to
// float64 is exact.
func float16BitsToFloat64(h uint16) float64 {
	return float64(float16.Frombits(h).Float32())
}
