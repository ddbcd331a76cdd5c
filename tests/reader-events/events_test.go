package tests

import (
	"encoding/hex"
	"errors"
	"testing"

	cbor "github.com/synadia-labs/cborstream/runtime"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex %q: %v", s, err)
	}
	return b
}

func decodeEvents(t *testing.T, data []byte) []cbor.Event {
	t.Helper()
	var h cbor.CollectHandler
	r := cbor.NewStreamReaderBytes(data, &h)
	if err := r.Read(); err != nil {
		t.Fatalf("read %x: %v", data, err)
	}
	return h.Events
}

func checkKinds(t *testing.T, events []cbor.Event, kinds ...cbor.EventKind) {
	t.Helper()
	if len(events) != len(kinds) {
		t.Fatalf("got %d events %v, want %d", len(events), events, len(kinds))
	}
	for i, k := range kinds {
		if events[i].Kind != k {
			t.Fatalf("event %d = %v, want %v", i, events[i], k)
		}
	}
}

func TestScalarUint(t *testing.T) {
	ev := decodeEvents(t, mustHex(t, "187b"))
	checkKinds(t, ev, cbor.EventUint64, cbor.EventFlush)
	if ev[0].Uint != 123 || ev[0].Tag != cbor.TagNone {
		t.Fatalf("event: %v", ev[0])
	}
}

func TestScalarNegInt(t *testing.T) {
	ev := decodeEvents(t, mustHex(t, "3863"))
	checkKinds(t, ev, cbor.EventInt64, cbor.EventFlush)
	if ev[0].Int != -100 {
		t.Fatalf("event: %v", ev[0])
	}
}

func TestEpochTimeTag(t *testing.T) {
	ev := decodeEvents(t, mustHex(t, "c11a514b67b0"))
	checkKinds(t, ev, cbor.EventUint64, cbor.EventFlush)
	if ev[0].Uint != 1363896240 || ev[0].Tag != cbor.TagEpochTime {
		t.Fatalf("event: %v", ev[0])
	}
}

func TestEpochTimeNegative(t *testing.T) {
	// 1(-100)
	ev := decodeEvents(t, mustHex(t, "c13863"))
	checkKinds(t, ev, cbor.EventInt64, cbor.EventFlush)
	if ev[0].Int != -100 || ev[0].Tag != cbor.TagEpochTime {
		t.Fatalf("event: %v", ev[0])
	}
}

func TestEpochTimeDouble(t *testing.T) {
	// 1(1363896240.5) encoded as a double
	ev := decodeEvents(t, mustHex(t, "c1fb41d452d9ec200000"))
	checkKinds(t, ev, cbor.EventDouble, cbor.EventFlush)
	if ev[0].Float != 1363896240.5 || ev[0].Tag != cbor.TagEpochTime {
		t.Fatalf("event: %v", ev[0])
	}
	if ev[0].Encoding != cbor.Float64Encoding {
		t.Fatalf("encoding: %v", ev[0].Encoding)
	}
}

func TestDateTimeTag(t *testing.T) {
	data := append([]byte{0xc0, 0x74}, "2013-03-21T20:04:00Z"...)
	ev := decodeEvents(t, data)
	checkKinds(t, ev, cbor.EventString, cbor.EventFlush)
	if ev[0].Str != "2013-03-21T20:04:00Z" || ev[0].Tag != cbor.TagDateTime {
		t.Fatalf("event: %v", ev[0])
	}
}

func TestPositiveBignum(t *testing.T) {
	ev := decodeEvents(t, mustHex(t, "c249010000000000000000"))
	checkKinds(t, ev, cbor.EventBignum, cbor.EventFlush)
	if ev[0].Str != "18446744073709551616" {
		t.Fatalf("bignum: %q", ev[0].Str)
	}
}

func TestNegativeBignum(t *testing.T) {
	ev := decodeEvents(t, mustHex(t, "c349010000000000000000"))
	checkKinds(t, ev, cbor.EventBignum, cbor.EventFlush)
	if ev[0].Str != "-18446744073709551617" {
		t.Fatalf("bignum: %q", ev[0].Str)
	}
}

func TestBignumEmptyMagnitude(t *testing.T) {
	// 2(h'') is zero, 3(h'') is -1
	ev := decodeEvents(t, mustHex(t, "c240"))
	if ev[0].Str != "0" {
		t.Fatalf("positive empty bignum: %q", ev[0].Str)
	}
	ev = decodeEvents(t, mustHex(t, "c340"))
	if ev[0].Str != "-1" {
		t.Fatalf("negative empty bignum: %q", ev[0].Str)
	}
}

func TestDecimalFraction(t *testing.T) {
	ev := decodeEvents(t, mustHex(t, "c48221196ab3"))
	checkKinds(t, ev, cbor.EventString, cbor.EventFlush)
	if ev[0].Str != "273.15" || ev[0].Tag != cbor.TagDecimalFraction {
		t.Fatalf("event: %v", ev[0])
	}
}

func TestDecimalFractionBignumMantissa(t *testing.T) {
	// 4([-3, 2(h'010000000000000000')])
	ev := decodeEvents(t, mustHex(t, "c48222c249010000000000000000"))
	checkKinds(t, ev, cbor.EventString, cbor.EventFlush)
	if ev[0].Str != "18446744073709551.616" {
		t.Fatalf("decimal fraction: %q", ev[0].Str)
	}
}

func TestDecimalFractionIndefiniteArray(t *testing.T) {
	// 4([_ -2, 27315])
	ev := decodeEvents(t, mustHex(t, "c49f21196ab3ff"))
	checkKinds(t, ev, cbor.EventString, cbor.EventFlush)
	if ev[0].Str != "273.15" || ev[0].Tag != cbor.TagDecimalFraction {
		t.Fatalf("event: %v", ev[0])
	}
}

func TestBigfloatKeepsArrayForm(t *testing.T) {
	// 5([-1, 3]) stays an array, annotated bigfloat
	ev := decodeEvents(t, mustHex(t, "c5822003"))
	checkKinds(t, ev, cbor.EventBeginArray, cbor.EventInt64, cbor.EventUint64, cbor.EventEndArray, cbor.EventFlush)
	if ev[0].Tag != cbor.TagBigfloat || ev[0].Length != 2 {
		t.Fatalf("begin_array: %v", ev[0])
	}
	if ev[1].Int != -1 || ev[2].Uint != 3 {
		t.Fatalf("children: %v %v", ev[1], ev[2])
	}
}

func TestIndefiniteArray(t *testing.T) {
	ev := decodeEvents(t, mustHex(t, "9f010203ff"))
	checkKinds(t, ev, cbor.EventBeginArray, cbor.EventUint64, cbor.EventUint64, cbor.EventUint64, cbor.EventEndArray, cbor.EventFlush)
	if ev[0].Length != -1 {
		t.Fatalf("begin_array length: %d", ev[0].Length)
	}
	for i, want := range []uint64{1, 2, 3} {
		if ev[i+1].Uint != want {
			t.Fatalf("element %d: %v", i, ev[i+1])
		}
	}
}

func TestIndefiniteDefiniteEquivalence(t *testing.T) {
	def := decodeEvents(t, mustHex(t, "83010203"))
	indef := decodeEvents(t, mustHex(t, "9f010203ff"))
	if len(def) != len(indef) {
		t.Fatalf("event count mismatch: %d vs %d", len(def), len(indef))
	}
	if def[0].Length != 3 || indef[0].Length != -1 {
		t.Fatalf("lengths: %d %d", def[0].Length, indef[0].Length)
	}
	for i := 1; i < len(def); i++ {
		if def[i].Kind != indef[i].Kind || def[i].Uint != indef[i].Uint {
			t.Fatalf("event %d differs: %v vs %v", i, def[i], indef[i])
		}
	}
}

func TestMapEvents(t *testing.T) {
	ev := decodeEvents(t, mustHex(t, "a2616101616202"))
	checkKinds(t, ev,
		cbor.EventBeginObject, cbor.EventName, cbor.EventUint64,
		cbor.EventName, cbor.EventUint64, cbor.EventEndObject, cbor.EventFlush)
	if ev[0].Length != 2 {
		t.Fatalf("begin_object length: %d", ev[0].Length)
	}
	if ev[1].Str != "a" || ev[2].Uint != 1 || ev[3].Str != "b" || ev[4].Uint != 2 {
		t.Fatalf("pairs: %v", ev)
	}
}

func TestIndefiniteMap(t *testing.T) {
	ev := decodeEvents(t, mustHex(t, "bf6161f5ff"))
	checkKinds(t, ev, cbor.EventBeginObject, cbor.EventName, cbor.EventBool, cbor.EventEndObject, cbor.EventFlush)
	if ev[0].Length != -1 || ev[1].Str != "a" || ev[2].Bool != true {
		t.Fatalf("events: %v", ev)
	}
}

func TestIntegerMapKeysCoerced(t *testing.T) {
	// {1: "a", -1: "b"}
	ev := decodeEvents(t, mustHex(t, "a2016161206162"))
	checkKinds(t, ev,
		cbor.EventBeginObject, cbor.EventName, cbor.EventString,
		cbor.EventName, cbor.EventString, cbor.EventEndObject, cbor.EventFlush)
	if ev[1].Str != "1" || ev[3].Str != "-1" {
		t.Fatalf("coerced keys: %q %q", ev[1].Str, ev[3].Str)
	}
}

func TestHalfFloat(t *testing.T) {
	ev := decodeEvents(t, mustHex(t, "f93c00"))
	checkKinds(t, ev, cbor.EventDouble, cbor.EventFlush)
	if ev[0].Float != 1.0 || ev[0].Encoding != cbor.Float16Encoding {
		t.Fatalf("event: %v enc=%v", ev[0], ev[0].Encoding)
	}
}

func TestSingleFloat(t *testing.T) {
	ev := decodeEvents(t, mustHex(t, "fa47c35000"))
	checkKinds(t, ev, cbor.EventDouble, cbor.EventFlush)
	if ev[0].Float != 100000.0 || ev[0].Encoding != cbor.Float32Encoding {
		t.Fatalf("event: %v", ev[0])
	}
}

func TestSimples(t *testing.T) {
	ev := decodeEvents(t, mustHex(t, "f4"))
	checkKinds(t, ev, cbor.EventBool, cbor.EventFlush)
	if ev[0].Bool {
		t.Fatalf("want false")
	}
	ev = decodeEvents(t, mustHex(t, "f5"))
	if !ev[0].Bool {
		t.Fatalf("want true")
	}
	ev = decodeEvents(t, mustHex(t, "f6"))
	checkKinds(t, ev, cbor.EventNull, cbor.EventFlush)
	if ev[0].Tag != cbor.TagNone {
		t.Fatalf("null tag: %v", ev[0].Tag)
	}
	ev = decodeEvents(t, mustHex(t, "f7"))
	checkKinds(t, ev, cbor.EventNull, cbor.EventFlush)
	if ev[0].Tag != cbor.TagUndefined {
		t.Fatalf("undefined tag: %v", ev[0].Tag)
	}
}

func TestByteStringHints(t *testing.T) {
	cases := []struct {
		hex  string
		want cbor.ByteStringFormat
	}{
		{"43010203", cbor.FormatNone},
		{"d543010203", cbor.FormatBase64URL},
		{"d643010203", cbor.FormatBase64},
		{"d743010203", cbor.FormatBase16},
	}
	for _, c := range cases {
		ev := decodeEvents(t, mustHex(t, c.hex))
		checkKinds(t, ev, cbor.EventByteString, cbor.EventFlush)
		if ev[0].Format != c.want {
			t.Fatalf("%s: format %v, want %v", c.hex, ev[0].Format, c.want)
		}
		if len(ev[0].Bytes) != 3 || ev[0].Bytes[0] != 1 {
			t.Fatalf("%s: payload %x", c.hex, ev[0].Bytes)
		}
	}
}

func TestIndefiniteTextConcatenated(t *testing.T) {
	// 0x7f, "ab" chunk, "c" chunk, break
	ev := decodeEvents(t, []byte{0x7f, 0x62, 'a', 'b', 0x61, 'c', 0xff})
	checkKinds(t, ev, cbor.EventString, cbor.EventFlush)
	if ev[0].Str != "abc" {
		t.Fatalf("concatenated text: %q", ev[0].Str)
	}
}

func TestIndefiniteBytesConcatenated(t *testing.T) {
	ev := decodeEvents(t, []byte{0x5f, 0x42, 0x01, 0x02, 0x41, 0x03, 0xff})
	checkKinds(t, ev, cbor.EventByteString, cbor.EventFlush)
	if len(ev[0].Bytes) != 3 || ev[0].Bytes[2] != 0x03 {
		t.Fatalf("concatenated bytes: %x", ev[0].Bytes)
	}
}

func TestNestedContainers(t *testing.T) {
	// {"a": [1, {"b": null}], "c": h''}
	data := mustHex(t, "a261618201a16162f6616340")
	ev := decodeEvents(t, data)
	checkKinds(t, ev,
		cbor.EventBeginObject,
		cbor.EventName, cbor.EventBeginArray, cbor.EventUint64,
		cbor.EventBeginObject, cbor.EventName, cbor.EventNull, cbor.EventEndObject,
		cbor.EventEndArray,
		cbor.EventName, cbor.EventByteString,
		cbor.EventEndObject, cbor.EventFlush)
}

func TestOuterTagHonoured(t *testing.T) {
	// 1(0(123)): outermost recognised tag wins, inner is consumed
	ev := decodeEvents(t, mustHex(t, "c1c0187b"))
	checkKinds(t, ev, cbor.EventUint64, cbor.EventFlush)
	if ev[0].Tag != cbor.TagEpochTime {
		t.Fatalf("tag: %v", ev[0].Tag)
	}
}

func TestUnrecognisedTagIgnored(t *testing.T) {
	// 32("x"): tag outside the registry produces no annotation
	ev := decodeEvents(t, mustHex(t, "d8206178"))
	checkKinds(t, ev, cbor.EventString, cbor.EventFlush)
	if ev[0].Tag != cbor.TagNone || ev[0].Str != "x" {
		t.Fatalf("event: %v", ev[0])
	}
}

func TestTagOnWrongTypeIgnored(t *testing.T) {
	// 0(123): date_time applies to text only; on an int it is ignored
	ev := decodeEvents(t, mustHex(t, "c0187b"))
	checkKinds(t, ev, cbor.EventUint64, cbor.EventFlush)
	if ev[0].Tag != cbor.TagNone {
		t.Fatalf("tag: %v", ev[0].Tag)
	}
}

func TestTagForwarding(t *testing.T) {
	// The same item with and without a tag differs only in annotation.
	tagged := decodeEvents(t, mustHex(t, "c11a514b67b0"))
	plain := decodeEvents(t, mustHex(t, "1a514b67b0"))
	if tagged[0].Uint != plain[0].Uint {
		t.Fatalf("values differ")
	}
	if tagged[0].Tag != cbor.TagEpochTime || plain[0].Tag != cbor.TagNone {
		t.Fatalf("tags: %v %v", tagged[0].Tag, plain[0].Tag)
	}
}

func TestTruncatedArgument(t *testing.T) {
	var h cbor.CollectHandler
	r := cbor.NewStreamReaderBytes(mustHex(t, "1901"), &h)
	err := r.Read()
	if !errors.Is(err, cbor.ErrUnexpectedEOF) {
		t.Fatalf("expected ErrUnexpectedEOF, got %v", err)
	}
	if len(h.Events) != 0 {
		t.Fatalf("no events expected, got %v", h.Events)
	}
}

func TestSequenceOfTopLevelItems(t *testing.T) {
	// Two items back to back; each Read consumes exactly one and flushes.
	data := mustHex(t, "187b3863")
	var h cbor.CollectHandler
	src := cbor.NewBytesSource(data)
	r := cbor.NewStreamReader(src, &h)
	if err := r.Read(); err != nil {
		t.Fatalf("first read: %v", err)
	}
	checkKinds(t, h.Events, cbor.EventUint64, cbor.EventFlush)
	if src.Eof() {
		t.Fatalf("source exhausted after first item")
	}
	if err := r.Read(); err != nil {
		t.Fatalf("second read: %v", err)
	}
	checkKinds(t, h.Events,
		cbor.EventUint64, cbor.EventFlush, cbor.EventInt64, cbor.EventFlush)
	if !src.Eof() {
		t.Fatalf("source not exhausted")
	}
}

func TestColumnNumbers(t *testing.T) {
	// Columns are 1-based byte offsets and monotonically increase.
	ev := decodeEvents(t, mustHex(t, "83010203"))
	last := int64(0)
	for _, e := range ev[:len(ev)-1] { // flush carries no context
		if e.Column < last {
			t.Fatalf("column went backwards: %v", ev)
		}
		last = e.Column
	}
	if ev[0].Column < 1 {
		t.Fatalf("column must start at 1: %v", ev[0])
	}
}
