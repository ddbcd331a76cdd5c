package cbor

import (
	"encoding/hex"
	"math"
	"strconv"
	"strings"
)

// DiagHandler is a ContentHandler that renders the event stream in RFC
// diagnostic notation. Recognised annotations are rendered as their tag
// wrappers (0(...) for date_time, 1(...) for epoch_time, 5(...) for
// bigfloat, 21/22/23(...) for byte-string hints); indefinite-length
// containers use the [_ ...] / {_ ...} form. Decimal fractions arrive
// pre-rendered and print as bare numbers.
type DiagHandler struct {
	buf   *ByteBuffer
	stack []diagFrame
	top   int
}

type diagFrame struct {
	object     bool
	indefinite bool
	tagged     bool
	n          int
}

// NewDiagHandler constructs a DiagHandler appending to bb.
func NewDiagHandler(bb *ByteBuffer) *DiagHandler {
	return &DiagHandler{buf: bb}
}

// Bytes returns the diagnostic text produced so far.
func (h *DiagHandler) Bytes() []byte { return h.buf.Bytes() }

func (h *DiagHandler) beginValue() {
	if len(h.stack) == 0 {
		if h.top > 0 {
			h.buf.WriteByte('\n')
		}
		h.top++
		return
	}
	f := &h.stack[len(h.stack)-1]
	if f.object {
		return
	}
	if f.n > 0 {
		h.buf.WriteString(", ")
	} else if f.indefinite {
		h.buf.WriteByte(' ')
	}
	f.n++
}

func (h *DiagHandler) BeginArray(length int, tag SemanticTag, ctx Context) error {
	h.beginValue()
	tagged := tag == TagBigfloat
	if tagged {
		h.buf.WriteString("5(")
	}
	h.buf.WriteByte('[')
	if length < 0 {
		h.buf.WriteByte('_')
	}
	h.stack = append(h.stack, diagFrame{indefinite: length < 0, tagged: tagged})
	return nil
}

func (h *DiagHandler) EndArray(ctx Context) error {
	f := h.stack[len(h.stack)-1]
	h.stack = h.stack[:len(h.stack)-1]
	h.buf.WriteByte(']')
	if f.tagged {
		h.buf.WriteByte(')')
	}
	return nil
}

func (h *DiagHandler) BeginObject(length int, tag SemanticTag, ctx Context) error {
	h.beginValue()
	h.buf.WriteByte('{')
	if length < 0 {
		h.buf.WriteByte('_')
	}
	h.stack = append(h.stack, diagFrame{object: true, indefinite: length < 0})
	return nil
}

func (h *DiagHandler) EndObject(ctx Context) error {
	h.stack = h.stack[:len(h.stack)-1]
	h.buf.WriteByte('}')
	return nil
}

func (h *DiagHandler) Name(name string, ctx Context) error {
	f := &h.stack[len(h.stack)-1]
	if f.n > 0 {
		h.buf.WriteString(", ")
	} else if f.indefinite {
		h.buf.WriteByte(' ')
	}
	f.n++
	h.buf.WriteString(strconv.Quote(name))
	h.buf.WriteString(": ")
	return nil
}

func (h *DiagHandler) StringValue(s string, tag SemanticTag, ctx Context) error {
	h.beginValue()
	switch tag {
	case TagDecimalFraction:
		h.buf.WriteString(s)
	case TagDateTime:
		h.buf.WriteString("0(")
		h.buf.WriteString(strconv.Quote(s))
		h.buf.WriteByte(')')
	default:
		h.buf.WriteString(strconv.Quote(s))
	}
	return nil
}

func (h *DiagHandler) ByteStringValue(b []byte, format ByteStringFormat, tag SemanticTag, ctx Context) error {
	h.beginValue()
	switch format {
	case FormatBase64URL:
		h.buf.WriteString("21(")
	case FormatBase64:
		h.buf.WriteString("22(")
	case FormatBase16:
		h.buf.WriteString("23(")
	}
	h.buf.WriteString("h'")
	d := h.buf.Extend(hex.EncodedLen(len(b)))
	hex.Encode(d, b)
	h.buf.WriteByte('\'')
	if format != FormatNone {
		h.buf.WriteByte(')')
	}
	return nil
}

func (h *DiagHandler) BignumValue(dec string, ctx Context) error {
	h.beginValue()
	h.buf.WriteString(dec)
	return nil
}

func (h *DiagHandler) Uint64Value(v uint64, tag SemanticTag, ctx Context) error {
	h.beginValue()
	h.writeWrapped(tag, strconv.FormatUint(v, 10))
	return nil
}

func (h *DiagHandler) Int64Value(v int64, tag SemanticTag, ctx Context) error {
	h.beginValue()
	h.writeWrapped(tag, strconv.FormatInt(v, 10))
	return nil
}

func (h *DiagHandler) DoubleValue(v float64, enc FloatEncoding, tag SemanticTag, ctx Context) error {
	h.beginValue()
	h.writeWrapped(tag, formatFloatDiag(v, enc))
	return nil
}

func (h *DiagHandler) BoolValue(v bool, tag SemanticTag, ctx Context) error {
	h.beginValue()
	if v {
		h.buf.WriteString("true")
	} else {
		h.buf.WriteString("false")
	}
	return nil
}

func (h *DiagHandler) NullValue(tag SemanticTag, ctx Context) error {
	h.beginValue()
	if tag == TagUndefined {
		h.buf.WriteString("undefined")
	} else {
		h.buf.WriteString("null")
	}
	return nil
}

func (h *DiagHandler) Flush() error { return nil }

// writeWrapped writes a numeric literal, wrapping it in 1(...) when the
// epoch_time annotation is present.
func (h *DiagHandler) writeWrapped(tag SemanticTag, lit string) {
	if tag == TagEpochTime {
		h.buf.WriteString("1(")
		h.buf.WriteString(lit)
		h.buf.WriteByte(')')
		return
	}
	h.buf.WriteString(lit)
}

// formatFloatDiag returns a diagnostic string for a float matching RFC
// examples. Half and single floats format at 32-bit precision.
func formatFloatDiag(f float64, enc FloatEncoding) string {
	if math.IsInf(f, +1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	if math.IsNaN(f) {
		return "NaN"
	}
	bits := 64
	if enc == Float32Encoding || enc == Float16Encoding {
		bits = 32
	}
	af := math.Abs(f)
	// Prefer fixed-point for reasonable magnitudes
	if af == 0 || af < 1e15 {
		return trimTrailingZerosDot(strconv.FormatFloat(f, 'f', -1, bits))
	}
	return strconv.FormatFloat(f, 'g', -1, bits)
}

func trimTrailingZerosDot(s string) string {
	// Trim trailing fractional zeros and an optional dot
	if !strings.Contains(s, ".") {
		return s
	}
	i := len(s)
	for i > 0 && s[i-1] == '0' {
		i--
	}
	if i > 0 && s[i-1] == '.' {
		i--
	}
	return s[:i]
}
