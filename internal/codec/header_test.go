package codec

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestHeaderRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 1000; i++ {
		id := Identifier{
			Class:       Class(rng.Intn(4)),
			TagNumber:   uint32(rng.Intn(31)), // keep to canonical single-octet tags for this sweep
			Constructed: rng.Intn(2) == 1,
		}
		var h Header
		if rng.Intn(5) == 0 {
			h = NewIndefiniteHeader(id)
		} else {
			h = NewHeader(id, int32(rng.Intn(1<<20)))
		}

		buf := AppendHeader(nil, h)
		got, err := ReadHeaderBuffer(buf, 0)
		if err != nil {
			t.Fatalf("ReadHeaderBuffer: %v", err)
		}
		if !got.Equal(h) {
			t.Fatalf("buffer round trip: got %+v, want %+v", got, h)
		}

		gotStream, ok, err := ReadHeaderStream(bytes.NewReader(buf))
		if err != nil || !ok {
			t.Fatalf("ReadHeaderStream: ok=%v err=%v", ok, err)
		}
		if !gotStream.Equal(h) {
			t.Fatalf("stream round trip: got %+v, want %+v", gotStream, h)
		}
	}
}

func TestHeaderEOF(t *testing.T) {
	_, ok, err := ReadHeaderStream(bytes.NewReader(nil))
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if ok {
		t.Fatal("expected ok=false on empty stream")
	}
}

func TestHeaderTruncated(t *testing.T) {
	_, _, err := ReadHeaderStream(bytes.NewReader([]byte{0x08}))
	if err != ErrTruncatedHeader {
		t.Fatalf("err = %v, want ErrTruncatedHeader", err)
	}
}

func TestHeaderEndOfContentDecodesCleanly(t *testing.T) {
	h, ok, err := ReadHeaderStream(bytes.NewReader([]byte{0x00, 0x00}))
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if h.Identifier.TagNumber != TagEndOfContent || h.MessageLength() != 2 {
		t.Fatalf("unexpected EndOfContent header: %+v", h)
	}
}

func TestHeaderSetIndefiniteForcesPayloadLength(t *testing.T) {
	h := NewHeader(Identifier{Class: ClassUniversal, TagNumber: TagSequence, Constructed: true}, 10)
	h.SetIndefinite()
	if h.IsDefinite || h.PayloadLength != Indefinite {
		t.Fatalf("SetIndefinite did not force PayloadLength: %+v", h)
	}
}
