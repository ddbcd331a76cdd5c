package cbor

import (
	"math"
)

// Item-header codec. Each item starts with an initial byte whose high
// three bits select the major type and whose low five bits either hold
// a small literal, select 1/2/4/8 following big-endian argument bytes,
// or mark an indefinite length. The functions here consume the header
// (initial byte plus argument) from a ByteSource.

// readInitial consumes the initial byte.
func readInitial(s ByteSource) (byte, error) {
	c, n := s.Get()
	if n == 0 {
		return 0, ErrUnexpectedEOF
	}
	return c, nil
}

// readArgument consumes a width-byte big-endian unsigned argument.
func readArgument(s ByteSource, width int) (uint64, error) {
	var tmp [8]byte
	if s.Read(tmp[:width]) != width {
		return 0, ErrUnexpectedEOF
	}
	var u uint64
	for _, c := range tmp[:width] {
		u = u<<8 | uint64(c)
	}
	return u, nil
}

// getUint64Value consumes an item header and returns its argument
// value. The indefinite-length marker is not a value and fails with
// InvalidInitialByteError, as do the reserved info values 28-30.
func getUint64Value(s ByteSource) (uint64, error) {
	c, err := readInitial(s)
	if err != nil {
		return 0, err
	}
	info := getAddInfo(c)
	switch {
	case info <= addInfoDirect:
		return uint64(info), nil
	case info == addInfoUint8:
		return readArgument(s, 1)
	case info == addInfoUint16:
		return readArgument(s, 2)
	case info == addInfoUint32:
		return readArgument(s, 4)
	case info == addInfoUint64:
		return readArgument(s, 8)
	default:
		return 0, InvalidInitialByteError{Byte: c}
	}
}

// getLength consumes an item header and returns its definite length.
// The indefinite-length marker fails with ErrLengthRequired; callers
// that accept indefinite lengths check the peeked info byte first.
func getLength(s ByteSource) (uint64, error) {
	if !s.Eof() && getAddInfo(s.Peek()) == addInfoIndefinite {
		s.Increment()
		return 0, ErrLengthRequired
	}
	return getUint64Value(s)
}

// getInt64Value consumes a negative-integer item header and returns
// -1-u. Values below math.MinInt64 fail with IntOverflow; the reader
// does not promote them to bignums.
func getInt64Value(s ByteSource) (int64, error) {
	u, err := getUint64Value(s)
	if err != nil {
		return 0, err
	}
	if u > math.MaxInt64 {
		return 0, IntOverflow{Value: -1, FailedBitsize: 64}
	}
	return -1 - int64(u), nil
}

// getDouble consumes a half/single/double float item and promotes it to
// float64, reporting the source encoding width.
func getDouble(s ByteSource) (float64, FloatEncoding, error) {
	c, err := readInitial(s)
	if err != nil {
		return 0, Float64Encoding, err
	}
	switch getAddInfo(c) {
	case simpleFloat16:
		u, err := readArgument(s, 2)
		if err != nil {
			return 0, Float16Encoding, err
		}
		return float16BitsToFloat64(uint16(u)), Float16Encoding, nil
	case simpleFloat32:
		u, err := readArgument(s, 4)
		if err != nil {
			return 0, Float32Encoding, err
		}
		return float64(math.Float32frombits(uint32(u))), Float32Encoding, nil
	case simpleFloat64:
		u, err := readArgument(s, 8)
		if err != nil {
			return 0, Float64Encoding, err
		}
		return math.Float64frombits(u), Float64Encoding, nil
	default:
		return 0, Float64Encoding, InvalidInitialByteError{Byte: c}
	}
}
