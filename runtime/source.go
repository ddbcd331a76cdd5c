package cbor

import "io"

// ByteSource is the single-pass byte stream the stream reader pulls
// from. A source is owned exclusively by one reader; it must not be
// advanced from outside the reader between operations.
type ByteSource interface {
	// Peek returns the next byte without consuming it. The result is
	// unspecified at end of input; callers must consult Eof first.
	Peek() byte

	// Get consumes one byte and reports how many bytes were read
	// (0 at end of input).
	Get() (byte, int)

	// Read consumes up to len(p) bytes into p and returns the count.
	Read(p []byte) int

	// Increment discards one byte.
	Increment()

	// Eof reports whether the source is exhausted.
	Eof() bool

	// Position returns the 1-based offset of the next unread byte.
	Position() int64
}

// BytesSource is a ByteSource over an in-memory buffer.
type BytesSource struct {
	buf []byte
	pos int
}

// NewBytesSource constructs a BytesSource over the provided buffer.
func NewBytesSource(b []byte) *BytesSource { return &BytesSource{buf: b} }

// Peek implements ByteSource.
func (s *BytesSource) Peek() byte {
	if s.pos >= len(s.buf) {
		return 0
	}
	return s.buf[s.pos]
}

// Get implements ByteSource.
func (s *BytesSource) Get() (byte, int) {
	if s.pos >= len(s.buf) {
		return 0, 0
	}
	c := s.buf[s.pos]
	s.pos++
	return c, 1
}

// Read implements ByteSource.
func (s *BytesSource) Read(p []byte) int {
	n := copy(p, s.buf[s.pos:])
	s.pos += n
	return n
}

// Increment implements ByteSource.
func (s *BytesSource) Increment() {
	if s.pos < len(s.buf) {
		s.pos++
	}
}

// Eof implements ByteSource.
func (s *BytesSource) Eof() bool { return s.pos >= len(s.buf) }

// Position implements ByteSource.
func (s *BytesSource) Position() int64 { return int64(s.pos) + 1 }

const streamSourceBufSize = 4096

// StreamSource is a ByteSource over an io.Reader with an internal
// buffer. Read errors other than io.EOF surface as a premature end of
// input; the underlying error is available from Err.
type StreamSource struct {
	r        io.Reader
	buf      []byte
	off, end int
	pos      int64
	err      error
}

// NewStreamSource constructs a StreamSource over r.
func NewStreamSource(r io.Reader) *StreamSource {
	return &StreamSource{r: r, buf: make([]byte, streamSourceBufSize)}
}

// fill tops up the buffer. It only reads when the buffer is drained and
// no terminal error has been seen.
func (s *StreamSource) fill() {
	if s.off < s.end || s.err != nil {
		return
	}
	s.off, s.end = 0, 0
	for {
		n, err := s.r.Read(s.buf)
		if n > 0 {
			s.end = n
			return
		}
		if err != nil {
			s.err = err
			return
		}
	}
}

// Err returns the terminal error from the underlying reader, if any.
// io.EOF is reported as nil.
func (s *StreamSource) Err() error {
	if s.err == io.EOF {
		return nil
	}
	return s.err
}

// Peek implements ByteSource.
func (s *StreamSource) Peek() byte {
	s.fill()
	if s.off >= s.end {
		return 0
	}
	return s.buf[s.off]
}

// Get implements ByteSource.
func (s *StreamSource) Get() (byte, int) {
	s.fill()
	if s.off >= s.end {
		return 0, 0
	}
	c := s.buf[s.off]
	s.off++
	s.pos++
	return c, 1
}

// Read implements ByteSource.
func (s *StreamSource) Read(p []byte) int {
	total := 0
	for total < len(p) {
		s.fill()
		if s.off >= s.end {
			break
		}
		n := copy(p[total:], s.buf[s.off:s.end])
		s.off += n
		s.pos += int64(n)
		total += n
	}
	return total
}

// Increment implements ByteSource.
func (s *StreamSource) Increment() {
	s.fill()
	if s.off < s.end {
		s.off++
		s.pos++
	}
}

// Eof implements ByteSource.
func (s *StreamSource) Eof() bool {
	s.fill()
	return s.off >= s.end
}

// Position implements ByteSource.
func (s *StreamSource) Position() int64 { return s.pos + 1 }
