package cbor

// ValidateWellFormed checks that the next CBOR data item in src is
// well-formed within the decoded subset by driving the stream reader
// with a discarding handler. The source is left positioned after the
// item on success; its position is undefined on error.
func ValidateWellFormed(src ByteSource) error {
	return NewStreamReader(src, DiscardHandler{}).Read()
}

// ValidateWellFormedBytes checks the first CBOR data item in b.
func ValidateWellFormedBytes(b []byte) error {
	return ValidateWellFormed(NewBytesSource(b))
}

// ValidateDocument checks that b is a well-formed CBOR sequence: items
// read one after another until the input is exhausted. An empty b holds
// no items and passes.
func ValidateDocument(b []byte) error {
	src := NewBytesSource(b)
	r := NewStreamReader(src, DiscardHandler{})
	for !src.Eof() {
		if err := r.Read(); err != nil {
			return err
		}
	}
	return nil
}
