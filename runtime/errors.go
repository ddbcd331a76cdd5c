package cbor

import (
	"errors"
	"strconv"
	"strings"
)

var (
	// ErrUnexpectedEOF is returned when the source is exhausted in the
	// middle of a data item.
	ErrUnexpectedEOF error = errUnexpectedEOF{}

	// ErrUnexpectedBreak is returned when a break byte (0xff) appears
	// outside an indefinite-length container.
	ErrUnexpectedBreak error = errors.New("cbor: unexpected break")

	// ErrLengthRequired is returned when a definite length is required
	// but the indefinite-length marker is present, e.g. an
	// indefinite-length chunk inside an indefinite-length string.
	ErrLengthRequired error = errors.New("cbor: definite length required")

	// ErrMaxDepthExceeded is returned when container nesting exceeds the
	// reader's depth limit. This should only realistically be seen on
	// adversarial data trying to exhaust the stack.
	ErrMaxDepthExceeded error = errors.New("cbor: max nesting depth exceeded")

	// ErrContainerTooLarge is returned when a declared container or
	// string length exceeds the limit set with SetMaxContainerLen.
	ErrContainerTooLarge error = errors.New("cbor: container too large")

	// ErrInvalidUTF8 is returned when a text string contains invalid UTF-8
	ErrInvalidUTF8 error = errors.New("cbor: invalid UTF-8 in text string")
)

// Error is the interface satisfied by all of the errors that originate
// from this package.
type Error interface {
	error

	// Resumable reports whether decoding can continue after the error.
	// A false result means that the stream of data is malformed and the
	// information is unrecoverable.
	Resumable() bool
}

// contextError allows Error instances to be enhanced with additional
// context about their origin.
type contextError interface {
	Error

	// withContext must not modify the error instance - it must clone and
	// return a new error with the context added.
	withContext(ctx string) error
}

// Cause returns the underlying cause of an error that has been wrapped
// with additional context.
func Cause(e error) error {
	out := e
	if e, ok := e.(errWrapped); ok && e.cause != nil {
		out = e.cause
	}
	return out
}

// Resumable reports whether decoding can continue after the error; a
// false result means that the stream of data is malformed and the
// information is unrecoverable. Stream decode
// errors are never resumable: after a failure the reader's position is
// undefined and callers must Reset with a fresh source.
func Resumable(e error) bool {
	if e, ok := e.(Error); ok {
		return e.Resumable()
	}
	return false
}

// WrapError wraps an error with additional context that allows the part
// of the document that caused the problem to be identified. Underlying
// errors can be retrieved using Cause().
//
// The input error is not modified - a new error is returned.
func WrapError(err error, ctx ...any) error {
	switch e := err.(type) {
	case errUnexpectedEOF:
		return e
	case contextError:
		return e.withContext(ctxString(ctx))
	default:
		return errWrapped{cause: err, ctx: ctxString(ctx)}
	}
}

func ctxString(ctx []any) string {
	var sb strings.Builder
	for i, c := range ctx {
		if i > 0 {
			sb.WriteByte('/')
		}
		switch v := c.(type) {
		case string:
			sb.WriteString(v)
		case int:
			sb.WriteString(strconv.Itoa(v))
		default:
			sb.WriteString("?")
		}
	}
	return sb.String()
}

func addCtx(ctx, add string) string {
	if ctx != "" {
		return add + "/" + ctx
	}
	return add
}

// errWrapped allows arbitrary errors passed to WrapError to be enhanced
// with context and unwrapped with Cause()
type errWrapped struct {
	cause error
	ctx   string
}

func (e errWrapped) Error() string {
	if e.ctx != "" {
		return e.cause.Error() + " at " + e.ctx
	}
	return e.cause.Error()
}

func (e errWrapped) Resumable() bool {
	if e, ok := e.cause.(Error); ok {
		return e.Resumable()
	}
	return false
}

// Unwrap returns the cause.
func (e errWrapped) Unwrap() error { return e.cause }

type errUnexpectedEOF struct{}

func (e errUnexpectedEOF) Error() string   { return "cbor: unexpected end of input" }
func (e errUnexpectedEOF) Resumable() bool { return false }

// InvalidInitialByteError is returned when an initial byte carries a
// reserved additional-info value (28-30), an indefinite-length marker
// where none is allowed, or a simple value outside the decoded subset.
type InvalidInitialByteError struct {
	Byte byte
}

// Error implements the error interface
func (e InvalidInitialByteError) Error() string {
	return "cbor: invalid initial byte 0x" + strconv.FormatUint(uint64(e.Byte), 16)
}

// Resumable returns 'false' for InvalidInitialByteErrors
func (e InvalidInitialByteError) Resumable() bool { return false }

// MalformedError is returned for structurally invalid input: an
// indefinite-length string with a mismatched chunk major type, a
// decimal-fraction or bigfloat array without exactly two elements, or a
// map key the reader cannot surface as a name.
type MalformedError struct {
	Reason string
	ctx    string
}

// Error implements the error interface
func (e MalformedError) Error() string {
	out := "cbor: malformed input: " + e.Reason
	if e.ctx != "" {
		out += " at " + e.ctx
	}
	return out
}

// Resumable returns 'false' for MalformedErrors
func (e MalformedError) Resumable() bool { return false }

func (e MalformedError) withContext(ctx string) error { e.ctx = addCtx(e.ctx, ctx); return e }

// IntOverflow is returned when a decoded integer does not fit the
// 64-bit signed range, i.e. a negative integer whose value -1-u is
// below math.MinInt64. The reader does not promote such values to
// bignums.
type IntOverflow struct {
	Value         int64 // the value of the integer
	FailedBitsize int   // the bit size that the int64 could not fit into
	ctx           string
}

// Error implements the error interface
func (i IntOverflow) Error() string {
	str := "cbor: " + strconv.FormatInt(i.Value, 10) + " overflows int" + strconv.Itoa(i.FailedBitsize)
	if i.ctx != "" {
		str += " at " + i.ctx
	}
	return str
}

// Resumable is always 'false' for overflows in the stream reader
func (i IntOverflow) Resumable() bool { return false }

func (i IntOverflow) withContext(ctx string) error { i.ctx = addCtx(i.ctx, ctx); return i }

// UintOverflow is returned when a declared length does not fit the
// platform int used to size buffers and loops.
type UintOverflow struct {
	Value         uint64 // value of the uint
	FailedBitsize int    // the bit size that couldn't fit the value
	ctx           string
}

// Error implements the error interface
func (u UintOverflow) Error() string {
	str := "cbor: " + strconv.FormatUint(u.Value, 10) + " overflows uint" + strconv.Itoa(u.FailedBitsize)
	if u.ctx != "" {
		str += " at " + u.ctx
	}
	return str
}

// Resumable is always 'false' for overflows in the stream reader
func (u UintOverflow) Resumable() bool { return false }

func (u UintOverflow) withContext(ctx string) error { u.ctx = addCtx(u.ctx, ctx); return u }
