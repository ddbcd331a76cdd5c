package cbor

// SemanticTag is the reduced tag annotation carried by handler events.
// The stream reader maps recognised wire tags to these values; wire
// tags outside the registry are consumed and produce TagNone.
type SemanticTag uint8

// Semantic tags the core may produce.
const (
	TagNone SemanticTag = iota
	TagDateTime
	TagEpochTime
	TagDecimalFraction
	TagBigfloat
	TagUndefined
)

// String implements fmt.Stringer
func (t SemanticTag) String() string {
	switch t {
	case TagNone:
		return "none"
	case TagDateTime:
		return "date_time"
	case TagEpochTime:
		return "epoch_time"
	case TagDecimalFraction:
		return "decimal_fraction"
	case TagBigfloat:
		return "bigfloat"
	case TagUndefined:
		return "undefined"
	default:
		return "<invalid>"
	}
}

// ByteStringFormat is the rendering hint attached to byte-string
// events, derived from tags 21-23.
type ByteStringFormat uint8

// Byte-string rendering hints.
const (
	FormatNone ByteStringFormat = iota
	FormatBase16
	FormatBase64
	FormatBase64URL
)

// String implements fmt.Stringer
func (f ByteStringFormat) String() string {
	switch f {
	case FormatNone:
		return "none"
	case FormatBase16:
		return "base16"
	case FormatBase64:
		return "base64"
	case FormatBase64URL:
		return "base64url"
	default:
		return "<invalid>"
	}
}

// FloatEncoding records the wire width a DoubleValue was decoded from.
type FloatEncoding uint8

// Source float encodings.
const (
	Float64Encoding FloatEncoding = iota
	Float32Encoding
	Float16Encoding
)

// String implements fmt.Stringer
func (e FloatEncoding) String() string {
	switch e {
	case Float64Encoding:
		return "float64"
	case Float32Encoding:
		return "float32"
	case Float16Encoding:
		return "float16"
	default:
		return "<invalid>"
	}
}

// Context lets a handler query the position of the event being
// delivered. The stream reader reports line 1 always (binary format)
// and the column as a 1-based byte offset. Diagnostic, not semantic.
type Context interface {
	LineNumber() int
	ColumnNumber() int64
}

// ContentHandler is the event sink driven by the stream reader. Events
// arrive in strict document order; every BeginArray/BeginObject is
// balanced by exactly one EndArray/EndObject, and Name events alternate
// with value events inside objects.
//
// A negative length on BeginArray/BeginObject means the container is
// indefinite-length. Byte-string payloads reference the reader's
// scratch buffer and are only valid for the duration of the call;
// handlers that retain them must copy.
//
// A non-nil return from any method aborts the Read in progress and is
// surfaced to the caller unchanged.
type ContentHandler interface {
	BeginArray(length int, tag SemanticTag, ctx Context) error
	EndArray(ctx Context) error
	BeginObject(length int, tag SemanticTag, ctx Context) error
	EndObject(ctx Context) error
	Name(name string, ctx Context) error
	StringValue(s string, tag SemanticTag, ctx Context) error
	ByteStringValue(b []byte, format ByteStringFormat, tag SemanticTag, ctx Context) error
	BignumValue(dec string, ctx Context) error
	Uint64Value(v uint64, tag SemanticTag, ctx Context) error
	Int64Value(v int64, tag SemanticTag, ctx Context) error
	DoubleValue(v float64, enc FloatEncoding, tag SemanticTag, ctx Context) error
	BoolValue(v bool, tag SemanticTag, ctx Context) error
	NullValue(tag SemanticTag, ctx Context) error
	Flush() error
}

// DiscardHandler is a ContentHandler that ignores every event. Embed it
// to implement partial handlers, or use it directly to drive the reader
// for well-formedness checking alone.
type DiscardHandler struct{}

func (DiscardHandler) BeginArray(int, SemanticTag, Context) error     { return nil }
func (DiscardHandler) EndArray(Context) error                         { return nil }
func (DiscardHandler) BeginObject(int, SemanticTag, Context) error    { return nil }
func (DiscardHandler) EndObject(Context) error                        { return nil }
func (DiscardHandler) Name(string, Context) error                     { return nil }
func (DiscardHandler) StringValue(string, SemanticTag, Context) error { return nil }
func (DiscardHandler) ByteStringValue([]byte, ByteStringFormat, SemanticTag, Context) error {
	return nil
}
func (DiscardHandler) BignumValue(string, Context) error              { return nil }
func (DiscardHandler) Uint64Value(uint64, SemanticTag, Context) error { return nil }
func (DiscardHandler) Int64Value(int64, SemanticTag, Context) error   { return nil }
func (DiscardHandler) DoubleValue(float64, FloatEncoding, SemanticTag, Context) error {
	return nil
}
func (DiscardHandler) BoolValue(bool, SemanticTag, Context) error { return nil }
func (DiscardHandler) NullValue(SemanticTag, Context) error       { return nil }
func (DiscardHandler) Flush() error                               { return nil }
