package session

import (
	"bytes"
	"io"
	"testing"

	"github.com/oba-ldap/x690/internal/codec"
)

func TestBinaryTransceiverRoundTrip(t *testing.T) {
	tr := NewBinaryTransceiver(64)
	var out bytes.Buffer
	if err := tr.Transmit(&out, []byte("hello")); err != nil {
		t.Fatalf("Transmit: %v", err)
	}

	status, pkt, err := tr.Receive(bytes.NewReader(out.Bytes()))
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if status != StatusOverAndOut {
		t.Fatalf("status = %v, want OverAndOut", status)
	}
	if string(pkt) != "hello" {
		t.Fatalf("pkt = %q, want %q", pkt, "hello")
	}
}

func TestBinaryTransceiverCleanEOF(t *testing.T) {
	tr := NewBinaryTransceiver(64)
	status, _, err := tr.Receive(bytes.NewReader(nil))
	if err != nil {
		t.Fatalf("expected nil error on clean EOF, got %v", err)
	}
	if status != StatusFail {
		t.Fatalf("status = %v, want Fail", status)
	}
}

func TestBinaryPacketTransceiverIsZeroCopy(t *testing.T) {
	tr := NewBinaryPacketTransceiver(64)
	_, pkt, err := tr.Receive(bytes.NewReader([]byte("zero-copy")))
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if string(pkt.Buffer[:pkt.Length]) != "zero-copy" {
		t.Fatalf("pkt = %q, want %q", pkt.Buffer[:pkt.Length], "zero-copy")
	}
}

func TestStringTransceiverDecodesUTF8(t *testing.T) {
	tr := NewStringTransceiver(64)
	var out bytes.Buffer
	if err := tr.Transmit(&out, "héllo"); err != nil {
		t.Fatalf("Transmit: %v", err)
	}
	status, s, err := tr.Receive(bytes.NewReader(out.Bytes()))
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if status != StatusOverAndOut || s != "héllo" {
		t.Fatalf("status=%v s=%q", status, s)
	}
}

// chunkReader simulates a socket that only ever hands back up to chunk
// bytes per Read call.
type chunkReader struct {
	data  []byte
	pos   int
	chunk int
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if c.pos >= len(c.data) {
		return 0, io.EOF
	}
	n := len(p)
	if n > c.chunk {
		n = c.chunk
	}
	if c.pos+n > len(c.data) {
		n = len(c.data) - c.pos
	}
	copy(p, c.data[c.pos:c.pos+n])
	c.pos += n
	return n, nil
}

func TestX690TransceiverCarriesPartialMessage(t *testing.T) {
	tree := codec.NewSequence(codec.NewInteger(9), codec.NewText(0, "a fairly long payload string"))
	data := codec.WriteNode(tree)

	tr := NewX690Transceiver(16)
	r := &chunkReader{data: data, chunk: 8}

	var node *codec.Node
	for {
		status, n, err := tr.Receive(r)
		if err != nil {
			t.Fatalf("Receive: %v", err)
		}
		if status == StatusOverAndOut {
			node = n
			break
		}
		if status != StatusOver {
			t.Fatalf("unexpected status %v before completion", status)
		}
	}

	if node.Children[0].Int() != 9 {
		t.Fatalf("Int() = %d, want 9", node.Children[0].Int())
	}
}
