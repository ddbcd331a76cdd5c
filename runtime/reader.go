package cbor

import (
	"math"
	"math/big"
	"strconv"
)

// StreamReader decodes one CBOR item tree at a time from a ByteSource,
// pushing typed events into a ContentHandler. It performs reentrant
// recursive descent bounded by a nesting-depth limit.
//
// The reader owns its source exclusively. After a decode error the
// source position is undefined; call Reset with a fresh source before
// reading again.
type StreamReader struct {
	src          ByteSource
	handler      ContentHandler
	nesting      int
	maxNesting   int
	maxContainer uint64

	// scratch holds the current string/bytes payload; numbuf holds the
	// current bignum or decimal-fraction rendering. Both are reused
	// across events and cleared before each use.
	scratch []byte
	numbuf  []byte
}

// NewStreamReader constructs a StreamReader over the provided source.
func NewStreamReader(src ByteSource, h ContentHandler) *StreamReader {
	return &StreamReader{src: src, handler: h, maxNesting: DefaultMaxNestingDepth}
}

// NewStreamReaderBytes constructs a StreamReader over an in-memory buffer.
func NewStreamReaderBytes(b []byte, h ContentHandler) *StreamReader {
	return NewStreamReader(NewBytesSource(b), h)
}

// SetMaxNestingDepth configures the container nesting limit. Values
// below one restore DefaultMaxNestingDepth.
func (r *StreamReader) SetMaxNestingDepth(n int) {
	if n < 1 {
		n = DefaultMaxNestingDepth
	}
	r.maxNesting = n
}

// SetMaxContainerLen configures an upper bound on declared lengths
// (arrays, maps, byte strings, text strings). A value of zero disables
// the limit. When exceeded, ErrContainerTooLarge is returned.
func (r *StreamReader) SetMaxContainerLen(max uint64) { r.maxContainer = max }

// Reset re-arms the reader over a fresh source, discarding any
// mid-stream state from a previous error.
func (r *StreamReader) Reset(src ByteSource) {
	r.src = src
	r.nesting = 0
}

// LineNumber implements Context. CBOR is a binary format; the line is
// always 1.
func (r *StreamReader) LineNumber() int { return 1 }

// ColumnNumber implements Context, reporting the source byte offset.
func (r *StreamReader) ColumnNumber() int64 { return r.src.Position() }

// Read decodes exactly one top-level item, driving handler events. On
// return the source is positioned just after that item, including any
// child items for containers. When the item completes, the handler is
// flushed.
func (r *StreamReader) Read() error {
	if err := r.readItem(); err != nil {
		return err
	}
	if r.nesting == 0 {
		return r.handler.Flush()
	}
	return nil
}

// readItem decodes one item: tag capture, then dispatch on the major
// type of the following item.
func (r *StreamReader) readItem() error {
	// Consume consecutive semantic-tag headers. Only the outermost
	// recognised tag is honoured; an item carries at most one
	// annotation at emission time.
	hasTag := false
	var tag uint64
	for {
		if r.src.Eof() {
			return ErrUnexpectedEOF
		}
		if getMajorType(r.src.Peek()) != majorTypeTag {
			break
		}
		v, err := getUint64Value(r.src)
		if err != nil {
			return err
		}
		if !hasTag {
			switch v {
			case tagDateTimeString, tagEpochDateTime, tagPosBignum, tagNegBignum,
				tagDecimalFrac, tagBigfloat, tagBase64URL, tagBase64, tagBase16:
				hasTag = true
				tag = v
			}
		}
	}

	switch getMajorType(r.src.Peek()) {
	case majorTypeUint:
		v, err := getUint64Value(r.src)
		if err != nil {
			return err
		}
		t := TagNone
		if hasTag && tag == tagEpochDateTime {
			t = TagEpochTime
		}
		return r.handler.Uint64Value(v, t, r)

	case majorTypeNegInt:
		v, err := getInt64Value(r.src)
		if err != nil {
			return err
		}
		t := TagNone
		if hasTag && tag == tagEpochDateTime {
			t = TagEpochTime
		}
		return r.handler.Int64Value(v, t, r)

	case majorTypeBytes:
		data, err := r.readStringPayload(majorTypeBytes)
		if err != nil {
			return err
		}
		if hasTag {
			switch tag {
			case tagPosBignum:
				return r.emitBignum(1, data)
			case tagNegBignum:
				return r.emitBignum(-1, data)
			case tagBase64URL:
				return r.handler.ByteStringValue(data, FormatBase64URL, TagNone, r)
			case tagBase64:
				return r.handler.ByteStringValue(data, FormatBase64, TagNone, r)
			case tagBase16:
				return r.handler.ByteStringValue(data, FormatBase16, TagNone, r)
			}
		}
		return r.handler.ByteStringValue(data, FormatNone, TagNone, r)

	case majorTypeText:
		data, err := r.readStringPayload(majorTypeText)
		if err != nil {
			return err
		}
		if ValidateUTF8OnDecode && !isUTF8Valid(data) {
			return ErrInvalidUTF8
		}
		t := TagNone
		if hasTag && tag == tagDateTimeString {
			t = TagDateTime
		}
		return r.handler.StringValue(string(data), t, r)

	case majorTypeArray:
		if hasTag && tag == tagDecimalFrac {
			return r.readDecimalFraction()
		}
		t := TagNone
		if hasTag && tag == tagBigfloat {
			t = TagBigfloat
		}
		return r.readArray(t)

	case majorTypeMap:
		return r.readMap()

	case majorTypeSimple:
		switch getAddInfo(r.src.Peek()) {
		case simpleFalse:
			r.src.Increment()
			return r.handler.BoolValue(false, TagNone, r)
		case simpleTrue:
			r.src.Increment()
			return r.handler.BoolValue(true, TagNone, r)
		case simpleNull:
			r.src.Increment()
			return r.handler.NullValue(TagNone, r)
		case simpleUndefined:
			r.src.Increment()
			return r.handler.NullValue(TagUndefined, r)
		case simpleFloat16, simpleFloat32, simpleFloat64:
			v, enc, err := getDouble(r.src)
			if err != nil {
				return err
			}
			t := TagNone
			if hasTag && tag == tagEpochDateTime {
				t = TagEpochTime
			}
			return r.handler.DoubleValue(v, enc, t, r)
		case simpleBreak:
			// Break is consumed by the indefinite-container loops; seen
			// here it is in place of an item.
			return ErrUnexpectedBreak
		default:
			return InvalidInitialByteError{Byte: r.src.Peek()}
		}
	}

	// Major type 6 is unreachable: the tag loop above consumed every
	// consecutive tag header.
	return InvalidInitialByteError{Byte: r.src.Peek()}
}

// push increments the nesting counter, enforcing the depth limit.
func (r *StreamReader) push() error {
	if r.nesting >= r.maxNesting {
		return ErrMaxDepthExceeded
	}
	r.nesting++
	return nil
}

// getContainerLen decodes a definite container length and bounds it.
func (r *StreamReader) getContainerLen() (int, error) {
	u, err := getLength(r.src)
	if err != nil {
		return 0, err
	}
	if r.maxContainer > 0 && u > r.maxContainer {
		return 0, ErrContainerTooLarge
	}
	if u > uint64(math.MaxInt) {
		return 0, UintOverflow{Value: u, FailedBitsize: 64}
	}
	return int(u), nil
}

func (r *StreamReader) readArray(tag SemanticTag) error {
	if getAddInfo(r.src.Peek()) == addInfoIndefinite {
		if err := r.push(); err != nil {
			return err
		}
		if err := r.handler.BeginArray(-1, tag, r); err != nil {
			return err
		}
		r.src.Increment()
		count := 0
		for {
			if r.src.Eof() {
				return ErrUnexpectedEOF
			}
			if r.src.Peek() == breakByte {
				break
			}
			if err := r.readItem(); err != nil {
				return err
			}
			count++
		}
		r.src.Increment()
		if tag == TagBigfloat && count != 2 {
			return MalformedError{Reason: "bigfloat array must have exactly 2 elements"}
		}
		if err := r.handler.EndArray(r); err != nil {
			return err
		}
		r.nesting--
		return nil
	}

	n, err := r.getContainerLen()
	if err != nil {
		return err
	}
	if tag == TagBigfloat && n != 2 {
		return MalformedError{Reason: "bigfloat array must have exactly 2 elements"}
	}
	if err := r.push(); err != nil {
		return err
	}
	if err := r.handler.BeginArray(n, tag, r); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := r.readItem(); err != nil {
			return err
		}
	}
	if err := r.handler.EndArray(r); err != nil {
		return err
	}
	r.nesting--
	return nil
}

func (r *StreamReader) readMap() error {
	if getAddInfo(r.src.Peek()) == addInfoIndefinite {
		if err := r.push(); err != nil {
			return err
		}
		if err := r.handler.BeginObject(-1, TagNone, r); err != nil {
			return err
		}
		r.src.Increment()
		for {
			if r.src.Eof() {
				return ErrUnexpectedEOF
			}
			if r.src.Peek() == breakByte {
				break
			}
			if err := r.parseName(); err != nil {
				return err
			}
			if err := r.readItem(); err != nil {
				return err
			}
		}
		r.src.Increment()
		if err := r.handler.EndObject(r); err != nil {
			return err
		}
		r.nesting--
		return nil
	}

	n, err := r.getContainerLen()
	if err != nil {
		return err
	}
	if err := r.push(); err != nil {
		return err
	}
	if err := r.handler.BeginObject(n, TagNone, r); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := r.parseName(); err != nil {
			return err
		}
		if err := r.readItem(); err != nil {
			return err
		}
	}
	if err := r.handler.EndObject(r); err != nil {
		return err
	}
	r.nesting--
	return nil
}

// parseName decodes a map key and emits exactly one Name event. Text
// keys are surfaced as-is; integer keys are coerced to their decimal
// text so object emission never desynchronises. Other key types fail
// with MalformedError.
func (r *StreamReader) parseName() error {
	if r.src.Eof() {
		return ErrUnexpectedEOF
	}
	switch getMajorType(r.src.Peek()) {
	case majorTypeText:
		data, err := r.readStringPayload(majorTypeText)
		if err != nil {
			return err
		}
		if ValidateUTF8OnDecode && !isUTF8Valid(data) {
			return ErrInvalidUTF8
		}
		return r.handler.Name(string(data), r)
	case majorTypeUint:
		v, err := getUint64Value(r.src)
		if err != nil {
			return err
		}
		r.numbuf = strconv.AppendUint(r.numbuf[:0], v, 10)
		return r.handler.Name(string(r.numbuf), r)
	case majorTypeNegInt:
		v, err := getInt64Value(r.src)
		if err != nil {
			return err
		}
		r.numbuf = strconv.AppendInt(r.numbuf[:0], v, 10)
		return r.handler.Name(string(r.numbuf), r)
	default:
		return MalformedError{Reason: "map key must be a text string or integer"}
	}
}

// readStringPayload decodes a byte- or text-string payload of the given
// major type into the reader's scratch buffer. Indefinite-length
// strings are concatenated eagerly so the handler always sees one
// contiguous value; each chunk must be a definite-length string of the
// same major type.
func (r *StreamReader) readStringPayload(major uint8) ([]byte, error) {
	if r.src.Eof() {
		return nil, ErrUnexpectedEOF
	}
	if getAddInfo(r.src.Peek()) == addInfoIndefinite {
		r.src.Increment()
		out := r.scratch[:0]
		for {
			if r.src.Eof() {
				return nil, ErrUnexpectedEOF
			}
			if r.src.Peek() == breakByte {
				r.src.Increment()
				r.scratch = out
				return out, nil
			}
			if getMajorType(r.src.Peek()) != major {
				return nil, MalformedError{Reason: "indefinite-length string chunk has mismatched major type"}
			}
			n, err := r.getPayloadLen()
			if err != nil {
				return nil, err
			}
			out, err = r.appendPayload(out, n)
			if err != nil {
				return nil, err
			}
		}
	}
	n, err := r.getPayloadLen()
	if err != nil {
		return nil, err
	}
	out, err := r.appendPayload(r.scratch[:0], n)
	if err != nil {
		return nil, err
	}
	r.scratch = out
	return out, nil
}

// getPayloadLen decodes a definite string length and bounds it.
func (r *StreamReader) getPayloadLen() (int, error) {
	u, err := getLength(r.src)
	if err != nil {
		return 0, err
	}
	if r.maxContainer > 0 && u > r.maxContainer {
		return 0, ErrContainerTooLarge
	}
	if u > uint64(math.MaxInt) {
		return 0, UintOverflow{Value: u, FailedBitsize: 64}
	}
	return int(u), nil
}

// appendPayload consumes n bytes from the source onto dst.
func (r *StreamReader) appendPayload(dst []byte, n int) ([]byte, error) {
	if n == 0 {
		return dst, nil
	}
	base := len(dst)
	dst = Require(dst, n)[:base+n]
	if r.src.Read(dst[base:]) != n {
		return nil, ErrUnexpectedEOF
	}
	return dst, nil
}

// emitBignum renders sign/magnitude as exact decimal text and emits a
// single bignum event. The rendering buffer is reader-owned and reused.
func (r *StreamReader) emitBignum(sign int, mag []byte) error {
	n := NewBignum(sign, mag)
	r.numbuf = n.AppendDecimal(r.numbuf[:0])
	return r.handler.BignumValue(string(r.numbuf), r)
}

// readDecimalFraction consumes a tag 4 two-element array and emits a
// single string event carrying the rendered decimal text. No
// begin/end array events are produced and the nesting counter is not
// touched.
func (r *StreamReader) readDecimalFraction() error {
	var exp int64
	var mant *big.Int
	if getAddInfo(r.src.Peek()) == addInfoIndefinite {
		r.src.Increment()
		var err error
		if exp, err = r.readExponent(); err != nil {
			return err
		}
		if mant, err = r.readIntegerAsBig(); err != nil {
			return err
		}
		if r.src.Eof() {
			return ErrUnexpectedEOF
		}
		if r.src.Peek() != breakByte {
			return MalformedError{Reason: "decimal fraction array must have exactly 2 elements"}
		}
		r.src.Increment()
	} else {
		n, err := r.getContainerLen()
		if err != nil {
			return err
		}
		if n != 2 {
			return MalformedError{Reason: "decimal fraction array must have exactly 2 elements"}
		}
		if exp, err = r.readExponent(); err != nil {
			return err
		}
		if mant, err = r.readIntegerAsBig(); err != nil {
			return err
		}
	}
	var err error
	r.numbuf, err = appendDecimalFraction(r.numbuf[:0], exp, mant)
	if err != nil {
		return err
	}
	return r.handler.StringValue(string(r.numbuf), TagDecimalFraction, r)
}

// readExponent decodes the decimal-fraction exponent, an integer item.
func (r *StreamReader) readExponent() (int64, error) {
	if r.src.Eof() {
		return 0, ErrUnexpectedEOF
	}
	switch getMajorType(r.src.Peek()) {
	case majorTypeUint:
		u, err := getUint64Value(r.src)
		if err != nil {
			return 0, err
		}
		if u > math.MaxInt64 {
			return 0, IntOverflow{Value: int64(u), FailedBitsize: 64}
		}
		return int64(u), nil
	case majorTypeNegInt:
		return getInt64Value(r.src)
	default:
		return 0, MalformedError{Reason: "decimal fraction exponent must be an integer"}
	}
}

// readIntegerAsBig decodes an integer (major type 0/1) or a bignum
// (tags 2/3 over a byte string) into a big.Int.
func (r *StreamReader) readIntegerAsBig() (*big.Int, error) {
	if r.src.Eof() {
		return nil, ErrUnexpectedEOF
	}
	switch getMajorType(r.src.Peek()) {
	case majorTypeUint:
		u, err := getUint64Value(r.src)
		if err != nil {
			return nil, err
		}
		return new(big.Int).SetUint64(u), nil
	case majorTypeNegInt:
		// Decode the raw argument so magnitudes above MaxInt64 survive.
		u, err := getUint64Value(r.src)
		if err != nil {
			return nil, err
		}
		z := new(big.Int).SetUint64(u)
		z.Add(z, bigOne)
		return z.Neg(z), nil
	case majorTypeTag:
		tag, err := getUint64Value(r.src)
		if err != nil {
			return nil, err
		}
		if tag != tagPosBignum && tag != tagNegBignum {
			return nil, MalformedError{Reason: "decimal fraction mantissa must be an integer or bignum"}
		}
		if r.src.Eof() {
			return nil, ErrUnexpectedEOF
		}
		if getMajorType(r.src.Peek()) != majorTypeBytes {
			return nil, MalformedError{Reason: "bignum payload must be a byte string"}
		}
		mag, err := r.readStringPayload(majorTypeBytes)
		if err != nil {
			return nil, err
		}
		sign := 1
		if tag == tagNegBignum {
			sign = -1
		}
		z := new(big.Int)
		z.Set(NewBignum(sign, mag).Int())
		return z, nil
	default:
		return nil, MalformedError{Reason: "decimal fraction mantissa must be an integer or bignum"}
	}
}
