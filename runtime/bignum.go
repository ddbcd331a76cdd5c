package cbor

import "math/big"

var bigOne = big.NewInt(1)

// Bignum is an arbitrary-precision integer reassembled from a CBOR
// sign + big-endian magnitude pair (tags 2 and 3).
type Bignum struct {
	v big.Int
}

// NewBignum constructs a Bignum from a sign and a big-endian magnitude.
// An empty magnitude is zero. For sign < 0 the value is -1-magnitude,
// matching the tag 3 encoding rule.
func NewBignum(sign int, mag []byte) *Bignum {
	n := new(Bignum)
	n.v.SetBytes(mag)
	if sign < 0 {
		n.v.Add(&n.v, bigOne)
		n.v.Neg(&n.v)
	}
	return n
}

// AppendDecimal appends the exact decimal representation to dst.
func (n *Bignum) AppendDecimal(dst []byte) []byte {
	return n.v.Append(dst, 10)
}

// String returns the exact decimal representation.
func (n *Bignum) String() string { return n.v.String() }

// Int returns the underlying big.Int. The value is owned by the Bignum;
// callers must not mutate it.
func (n *Bignum) Int() *big.Int { return &n.v }
