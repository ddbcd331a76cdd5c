package cbor

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"math"
	"strconv"
)

// JSONHandler is a ContentHandler that renders the event stream as JSON
// text into a ByteBuffer. The mapping mirrors the package's CBOR->JSON
// conventions:
//
//   - integers, floats, bools and null map naturally; undefined also
//     renders as null
//   - byte strings become strings encoded per their rendering hint
//     (base16 -> hex, base64url -> unpadded base64url, otherwise
//     standard base64)
//   - bignums and decimal fractions render as bare JSON numbers,
//     preserving full precision
//   - NaN and infinities, which JSON cannot represent, render as null
//
// Multiple top-level items (a CBOR sequence) are separated by newlines.
type JSONHandler struct {
	buf   *ByteBuffer
	stack []jsonFrame
	top   int
}

type jsonFrame struct {
	object bool
	n      int
}

// NewJSONHandler constructs a JSONHandler appending to bb.
func NewJSONHandler(bb *ByteBuffer) *JSONHandler {
	return &JSONHandler{buf: bb}
}

// Bytes returns the JSON text produced so far.
func (h *JSONHandler) Bytes() []byte { return h.buf.Bytes() }

// beginValue writes the separator due before a value in the current
// context. Object values need none: Name already wrote the colon.
func (h *JSONHandler) beginValue() {
	if len(h.stack) == 0 {
		if h.top > 0 {
			h.buf.WriteByte('\n')
		}
		h.top++
		return
	}
	f := &h.stack[len(h.stack)-1]
	if !f.object {
		if f.n > 0 {
			h.buf.WriteByte(',')
		}
		f.n++
	}
}

func (h *JSONHandler) BeginArray(length int, tag SemanticTag, ctx Context) error {
	h.beginValue()
	h.buf.WriteByte('[')
	h.stack = append(h.stack, jsonFrame{})
	return nil
}

func (h *JSONHandler) EndArray(ctx Context) error {
	h.stack = h.stack[:len(h.stack)-1]
	h.buf.WriteByte(']')
	return nil
}

func (h *JSONHandler) BeginObject(length int, tag SemanticTag, ctx Context) error {
	h.beginValue()
	h.buf.WriteByte('{')
	h.stack = append(h.stack, jsonFrame{object: true})
	return nil
}

func (h *JSONHandler) EndObject(ctx Context) error {
	h.stack = h.stack[:len(h.stack)-1]
	h.buf.WriteByte('}')
	return nil
}

func (h *JSONHandler) Name(name string, ctx Context) error {
	f := &h.stack[len(h.stack)-1]
	if f.n > 0 {
		h.buf.WriteByte(',')
	}
	f.n++
	h.writeQuoted(name)
	h.buf.WriteByte(':')
	return nil
}

func (h *JSONHandler) StringValue(s string, tag SemanticTag, ctx Context) error {
	h.beginValue()
	if tag == TagDecimalFraction {
		// already exact decimal text, a valid JSON number
		h.buf.WriteString(s)
		return nil
	}
	h.writeQuoted(s)
	return nil
}

func (h *JSONHandler) ByteStringValue(b []byte, format ByteStringFormat, tag SemanticTag, ctx Context) error {
	h.beginValue()
	h.buf.WriteByte('"')
	switch format {
	case FormatBase16:
		d := h.buf.Extend(hex.EncodedLen(len(b)))
		hex.Encode(d, b)
	case FormatBase64URL:
		enc := base64.RawURLEncoding
		d := h.buf.Extend(enc.EncodedLen(len(b)))
		enc.Encode(d, b)
	default:
		enc := base64.StdEncoding
		d := h.buf.Extend(enc.EncodedLen(len(b)))
		enc.Encode(d, b)
	}
	h.buf.WriteByte('"')
	return nil
}

func (h *JSONHandler) BignumValue(dec string, ctx Context) error {
	h.beginValue()
	h.buf.WriteString(dec)
	return nil
}

func (h *JSONHandler) Uint64Value(v uint64, tag SemanticTag, ctx Context) error {
	h.beginValue()
	h.buf.WriteString(strconv.FormatUint(v, 10))
	return nil
}

func (h *JSONHandler) Int64Value(v int64, tag SemanticTag, ctx Context) error {
	h.beginValue()
	h.buf.WriteString(strconv.FormatInt(v, 10))
	return nil
}

func (h *JSONHandler) DoubleValue(v float64, enc FloatEncoding, tag SemanticTag, ctx Context) error {
	h.beginValue()
	if math.IsNaN(v) || math.IsInf(v, 0) {
		h.buf.WriteString("null")
		return nil
	}
	h.buf.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	return nil
}

func (h *JSONHandler) BoolValue(v bool, tag SemanticTag, ctx Context) error {
	h.beginValue()
	if v {
		h.buf.WriteString("true")
	} else {
		h.buf.WriteString("false")
	}
	return nil
}

func (h *JSONHandler) NullValue(tag SemanticTag, ctx Context) error {
	h.beginValue()
	h.buf.WriteString("null")
	return nil
}

func (h *JSONHandler) Flush() error { return nil }

func (h *JSONHandler) writeQuoted(s string) {
	js, _ := json.Marshal(s)
	h.buf.Write(js)
}
