package cbor

import "math/big"

// maxDecimalFractionExponent bounds the number of zeros or padding
// digits a decimal-fraction rendering may synthesise. Exponents beyond
// it would make the textual form unboundedly large from a tiny input.
const maxDecimalFractionExponent = 1 << 20

// appendDecimalFraction renders mantissa x 10^exponent as plain decimal
// text and appends it to dst. The mantissa's sign is preserved, no
// trailing zeros are elided, and exponent form is never used:
//
//	exp=2,  mant=3    -> "300"
//	exp=-2, mant=27315 -> "273.15"
//	exp=-4, mant=-12  -> "-0.0012"
func appendDecimalFraction(dst []byte, exp int64, mant *big.Int) ([]byte, error) {
	if exp > maxDecimalFractionExponent || exp < -maxDecimalFractionExponent {
		return dst, MalformedError{Reason: "decimal fraction exponent out of range"}
	}

	if mant.Sign() < 0 {
		dst = append(dst, '-')
	}
	digits := new(big.Int).Abs(mant).Text(10)

	if exp >= 0 {
		dst = append(dst, digits...)
		for i := int64(0); i < exp; i++ {
			dst = append(dst, '0')
		}
		return dst, nil
	}

	frac := int(-exp)
	if frac >= len(digits) {
		// all digits are fractional; left-pad with zeros
		dst = append(dst, '0', '.')
		for i := 0; i < frac-len(digits); i++ {
			dst = append(dst, '0')
		}
		dst = append(dst, digits...)
		return dst, nil
	}
	split := len(digits) - frac
	dst = append(dst, digits[:split]...)
	dst = append(dst, '.')
	dst = append(dst, digits[split:]...)
	return dst, nil
}
