package session

import (
	"context"
	"errors"
	"io"

	"github.com/oba-ldap/x690/internal/codec"
	"github.com/oba-ldap/x690/internal/framing"
	"github.com/oba-ldap/x690/internal/telemetry"
)

// Transceiver is the capability a Session drives: read one packet off a
// stream, or write one out to it. Implementations are stateful (they may
// carry a reusable receive buffer, or an in-flight partial message) and
// are owned by exactly one Session.
type Transceiver[T any] interface {
	Receive(stream io.Reader) (Status, T, error)
	Transmit(stream io.Writer, pkt T) error
}

// BinaryTransceiver treats every read as a complete packet: one Read call
// into a reusable buffer, copied out before returning.
type BinaryTransceiver struct {
	buf []byte
}

// NewBinaryTransceiver builds a BinaryTransceiver with the given receive
// buffer size.
func NewBinaryTransceiver(bufferLength int) *BinaryTransceiver {
	return &BinaryTransceiver{buf: make([]byte, bufferLength)}
}

func (t *BinaryTransceiver) Receive(stream io.Reader) (Status, []byte, error) {
	n, err := stream.Read(t.buf)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return StatusFail, nil, nil
		}
		return StatusFail, nil, err
	}
	telemetry.RecordBytesRead(context.Background(), n)
	out := make([]byte, n)
	copy(out, t.buf[:n])
	return StatusOverAndOut, out, nil
}

func (t *BinaryTransceiver) Transmit(stream io.Writer, pkt []byte) error {
	n, err := stream.Write(pkt)
	telemetry.RecordBytesWritten(context.Background(), n)
	return err
}

// BinaryPacket is a zero-copy view into a BinaryPacketTransceiver's
// internal buffer. Buffer is only valid until the next Receive call on
// that transceiver; handlers that need to keep the bytes must copy them.
type BinaryPacket struct {
	Length int
	Buffer []byte
}

// BinaryPacketTransceiver is BinaryTransceiver without the defensive copy:
// handlers get a direct reference into the transceiver's reusable buffer.
type BinaryPacketTransceiver struct {
	buf []byte
}

// NewBinaryPacketTransceiver builds a BinaryPacketTransceiver with the
// given receive buffer size.
func NewBinaryPacketTransceiver(bufferLength int) *BinaryPacketTransceiver {
	return &BinaryPacketTransceiver{buf: make([]byte, bufferLength)}
}

func (t *BinaryPacketTransceiver) Receive(stream io.Reader) (Status, BinaryPacket, error) {
	n, err := stream.Read(t.buf)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return StatusFail, BinaryPacket{}, nil
		}
		return StatusFail, BinaryPacket{}, err
	}
	telemetry.RecordBytesRead(context.Background(), n)
	return StatusOverAndOut, BinaryPacket{Length: n, Buffer: t.buf}, nil
}

func (t *BinaryPacketTransceiver) Transmit(stream io.Writer, pkt BinaryPacket) error {
	_, err := stream.Write(pkt.Buffer[:pkt.Length])
	return err
}

// StringTransceiver layers UTF-8 decoding over BinaryTransceiver's framing.
type StringTransceiver struct {
	bin *BinaryTransceiver
}

// NewStringTransceiver builds a StringTransceiver with the given receive
// buffer size.
func NewStringTransceiver(bufferLength int) *StringTransceiver {
	return &StringTransceiver{bin: NewBinaryTransceiver(bufferLength)}
}

func (t *StringTransceiver) Receive(stream io.Reader) (Status, string, error) {
	status, data, err := t.bin.Receive(stream)
	if status != StatusOverAndOut {
		return status, "", err
	}
	return status, string(data), err
}

func (t *StringTransceiver) Transmit(stream io.Writer, s string) error {
	return t.bin.Transmit(stream, []byte(s))
}

// X690Transceiver frames complete BER nodes off a stream, carrying an
// incomplete message across successive Receive calls (StatusOver) until
// the framer has enough bytes to decode it.
type X690Transceiver struct {
	buf     []byte
	pending *framing.Message
}

// NewX690Transceiver builds an X690Transceiver with the given receive
// buffer size.
func NewX690Transceiver(bufferLength int) *X690Transceiver {
	return &X690Transceiver{buf: make([]byte, bufferLength)}
}

func (t *X690Transceiver) Receive(stream io.Reader) (Status, *codec.Node, error) {
	if t.pending != nil {
		if err := framing.Continue(t.pending, stream, t.buf); err != nil {
			t.pending = nil
			return StatusFail, nil, err
		}
		if !t.pending.Complete() {
			return StatusOver, nil, nil
		}
		node := t.pending.Node()
		t.pending = nil
		telemetry.RecordMessageFramed(context.Background())
		return StatusOverAndOut, node, nil
	}

	msg, err := framing.ReadBuffered(stream, t.buf)
	if err != nil {
		return StatusFail, nil, err
	}
	if msg == nil {
		return StatusFail, nil, nil
	}
	if msg.Complete() {
		telemetry.RecordMessageFramed(context.Background())
		return StatusOverAndOut, msg.Node(), nil
	}
	t.pending = msg
	return StatusOver, nil, nil
}

func (t *X690Transceiver) Transmit(stream io.Writer, node *codec.Node) error {
	_, err := stream.Write(codec.Write(node))
	return err
}
