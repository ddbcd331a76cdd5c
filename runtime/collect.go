package cbor

import (
	"encoding/hex"
	"strconv"
)

// EventKind identifies a handler event record.
type EventKind uint8

// Event kinds, one per ContentHandler method.
const (
	EventBeginArray EventKind = iota
	EventEndArray
	EventBeginObject
	EventEndObject
	EventName
	EventString
	EventByteString
	EventBignum
	EventUint64
	EventInt64
	EventDouble
	EventBool
	EventNull
	EventFlush
)

// String implements fmt.Stringer
func (k EventKind) String() string {
	switch k {
	case EventBeginArray:
		return "begin_array"
	case EventEndArray:
		return "end_array"
	case EventBeginObject:
		return "begin_object"
	case EventEndObject:
		return "end_object"
	case EventName:
		return "name"
	case EventString:
		return "string_value"
	case EventByteString:
		return "byte_string_value"
	case EventBignum:
		return "bignum_value"
	case EventUint64:
		return "uint64_value"
	case EventInt64:
		return "int64_value"
	case EventDouble:
		return "double_value"
	case EventBool:
		return "bool_value"
	case EventNull:
		return "null_value"
	case EventFlush:
		return "flush"
	default:
		return "<invalid>"
	}
}

// Event is one handler event materialised as a record, the enum-of-
// events counterpart to the ContentHandler interface. Only the fields
// relevant to Kind are populated.
type Event struct {
	Kind     EventKind
	Length   int    // container length; -1 when indefinite
	Str      string // Name/String/Bignum payload
	Bytes    []byte // ByteString payload (copied)
	Uint     uint64
	Int      int64
	Float    float64
	Bool     bool
	Tag      SemanticTag
	Format   ByteStringFormat
	Encoding FloatEncoding
	Column   int64
}

// String renders the event for logs and the CLI event dump.
func (e Event) String() string {
	out := e.Kind.String()
	switch e.Kind {
	case EventBeginArray, EventBeginObject:
		if e.Length < 0 {
			out += "(_)"
		} else {
			out += "(" + strconv.Itoa(e.Length) + ")"
		}
	case EventName:
		out += "(" + strconv.Quote(e.Str) + ")"
	case EventString, EventBignum:
		out += "(" + strconv.Quote(e.Str) + ")"
	case EventByteString:
		out += "(h'" + hex.EncodeToString(e.Bytes) + "'"
		if e.Format != FormatNone {
			out += ", " + e.Format.String()
		}
		out += ")"
	case EventUint64:
		out += "(" + strconv.FormatUint(e.Uint, 10) + ")"
	case EventInt64:
		out += "(" + strconv.FormatInt(e.Int, 10) + ")"
	case EventDouble:
		out += "(" + strconv.FormatFloat(e.Float, 'g', -1, 64) + ")"
	case EventBool:
		out += "(" + strconv.FormatBool(e.Bool) + ")"
	}
	if e.Tag != TagNone {
		out += " [" + e.Tag.String() + "]"
	}
	return out
}

// CollectHandler is a ContentHandler that appends every event to Events
// in document order. Byte-string payloads are copied, so records stay
// valid after the read.
type CollectHandler struct {
	Events []Event
}

// Reset drops all collected events, retaining capacity.
func (h *CollectHandler) Reset() { h.Events = h.Events[:0] }

func (h *CollectHandler) add(e Event, ctx Context) error {
	if ctx != nil {
		e.Column = ctx.ColumnNumber()
	}
	h.Events = append(h.Events, e)
	return nil
}

func (h *CollectHandler) BeginArray(length int, tag SemanticTag, ctx Context) error {
	return h.add(Event{Kind: EventBeginArray, Length: length, Tag: tag}, ctx)
}

func (h *CollectHandler) EndArray(ctx Context) error {
	return h.add(Event{Kind: EventEndArray}, ctx)
}

func (h *CollectHandler) BeginObject(length int, tag SemanticTag, ctx Context) error {
	return h.add(Event{Kind: EventBeginObject, Length: length, Tag: tag}, ctx)
}

func (h *CollectHandler) EndObject(ctx Context) error {
	return h.add(Event{Kind: EventEndObject}, ctx)
}

func (h *CollectHandler) Name(name string, ctx Context) error {
	return h.add(Event{Kind: EventName, Str: name}, ctx)
}

func (h *CollectHandler) StringValue(s string, tag SemanticTag, ctx Context) error {
	return h.add(Event{Kind: EventString, Str: s, Tag: tag}, ctx)
}

func (h *CollectHandler) ByteStringValue(b []byte, format ByteStringFormat, tag SemanticTag, ctx Context) error {
	cp := make([]byte, len(b))
	copy(cp, b)
	return h.add(Event{Kind: EventByteString, Bytes: cp, Format: format, Tag: tag}, ctx)
}

func (h *CollectHandler) BignumValue(dec string, ctx Context) error {
	return h.add(Event{Kind: EventBignum, Str: dec}, ctx)
}

func (h *CollectHandler) Uint64Value(v uint64, tag SemanticTag, ctx Context) error {
	return h.add(Event{Kind: EventUint64, Uint: v, Tag: tag}, ctx)
}

func (h *CollectHandler) Int64Value(v int64, tag SemanticTag, ctx Context) error {
	return h.add(Event{Kind: EventInt64, Int: v, Tag: tag}, ctx)
}

func (h *CollectHandler) DoubleValue(v float64, enc FloatEncoding, tag SemanticTag, ctx Context) error {
	return h.add(Event{Kind: EventDouble, Float: v, Encoding: enc, Tag: tag}, ctx)
}

func (h *CollectHandler) BoolValue(v bool, tag SemanticTag, ctx Context) error {
	return h.add(Event{Kind: EventBool, Bool: v, Tag: tag}, ctx)
}

func (h *CollectHandler) NullValue(tag SemanticTag, ctx Context) error {
	return h.add(Event{Kind: EventNull, Tag: tag}, ctx)
}

func (h *CollectHandler) Flush() error {
	h.Events = append(h.Events, Event{Kind: EventFlush})
	return nil
}
