// Package cbor implements a streaming CBOR decoder (RFC 7049).
//
// The decoder is a pull-then-push reader: it pulls bytes from a
// ByteSource and pushes typed value events into a ContentHandler.
// Nothing is materialised beyond the current scalar payload, so
// arbitrarily large documents can be walked in bounded memory.
//
// The package has three layers:
//   - ByteSource abstracts the input stream (in-memory buffer or
//     buffered io.Reader).
//   - StreamReader drives recursive descent over the item tree,
//     consulting semantic tags to pick the right handler event.
//   - ContentHandler is the event sink; CollectHandler, JSONHandler and
//     DiagHandler are ready-made implementations.
//
// A typical decode:
//
//	var events cbor.CollectHandler
//	r := cbor.NewStreamReaderBytes(data, &events)
//	if err := r.Read(); err != nil {
//		// events before the failure point are already delivered
//	}
package cbor

// CBOR major types (3 bits)
const (
	majorTypeUint   = 0 // unsigned integer
	majorTypeNegInt = 1 // negative integer
	majorTypeBytes  = 2 // byte string
	majorTypeText   = 3 // text string (UTF-8)
	majorTypeArray  = 4 // array
	majorTypeMap    = 5 // map
	majorTypeTag    = 6 // semantic tag
	majorTypeSimple = 7 // float, simple values, break
)

// Additional info values (5 bits)
const (
	// 0-23: literal value
	addInfoDirect     = 23 // max direct value
	addInfoUint8      = 24 // 1-byte uint8 follows
	addInfoUint16     = 25 // 2-byte uint16 follows
	addInfoUint32     = 26 // 4-byte uint32 follows
	addInfoUint64     = 27 // 8-byte uint64 follows
	addInfoIndefinite = 31 // indefinite length (for bytes, text, array, map)
)

// Simple values in major type 7
const (
	simpleFalse     = 20
	simpleTrue      = 21
	simpleNull      = 22
	simpleUndefined = 23
	simpleFloat16   = 25
	simpleFloat32   = 26
	simpleFloat64   = 27
	simpleBreak     = 31
)

// breakByte terminates indefinite-length containers and strings.
const breakByte = 0xff

// Semantic tags the stream reader recognises. Other tags are consumed
// but produce no annotation on the emitted event.
const (
	tagDateTimeString = 0  // RFC3339 date/time string
	tagEpochDateTime  = 1  // Unix timestamp (int or float)
	tagPosBignum      = 2  // positive bignum
	tagNegBignum      = 3  // negative bignum
	tagDecimalFrac    = 4  // decimal fraction
	tagBigfloat       = 5  // bigfloat
	tagBase64URL      = 21 // expected base64url encoding
	tagBase64         = 22 // expected base64 encoding
	tagBase16         = 23 // expected base16 encoding
)

// DefaultMaxNestingDepth bounds container recursion unless overridden
// with (*StreamReader).SetMaxNestingDepth.
const DefaultMaxNestingDepth = 1024

// makeByte creates a CBOR initial byte from major type and additional info
func makeByte(majorType, addInfo uint8) byte {
	return byte((majorType << 5) | addInfo)
}

// getMajorType extracts the major type from a CBOR initial byte
func getMajorType(b byte) uint8 {
	return (b >> 5) & 0x07
}

// getAddInfo extracts the additional info from a CBOR initial byte
func getAddInfo(b byte) uint8 {
	return b & 0x1f
}

// ValidateUTF8OnDecode controls whether text-string payloads are
// validated as UTF-8. Enabled by default for spec compliance; can be
// disabled in hot paths where the producer is trusted.
var ValidateUTF8OnDecode = true
