package framing

import (
	"io"

	"github.com/oba-ldap/x690/internal/codec"
)

// DefaultBufferLength is the per-session receive buffer size used when a
// caller does not supply its own (128 KiB).
const DefaultBufferLength = 128 * 1024

// ReadBuffered reads the next message's header, then as much of its
// payload as a single read off stream yields. scratch is the caller's
// reusable receive buffer; a nil or empty scratch gets a fresh
// DefaultBufferLength buffer.
//
// A nil, nil return means the stream closed cleanly before any header
// bytes arrived. A message whose header declares an indefinite length is
// read to completion directly off the stream in one call, since no
// declared length is available to buffer incrementally against.
func ReadBuffered(stream io.Reader, scratch []byte) (*Message, error) {
	header, ok, err := codec.ReadHeaderStream(stream)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	if !header.IsDefinite {
		node, err := codec.ReadNodeStream(stream, header, codec.MaxPayloadSizeAllowed)
		if err != nil {
			return nil, err
		}
		return &Message{header: header, node: node}, nil
	}

	if header.PayloadLength > codec.MaxPayloadSizeAllowed {
		return nil, codec.NewDecodeError(0, "payload exceeds maximum allowed size", codec.ErrPayloadTooLarge)
	}

	msg := &Message{header: header}
	if header.PayloadLength == 0 {
		if err := msg.decode(); err != nil {
			return nil, err
		}
		return msg, nil
	}

	if len(scratch) == 0 {
		scratch = make([]byte, DefaultBufferLength)
	}

	want := header.PayloadLength
	readLen := want
	if int32(len(scratch)) < readLen {
		readLen = int32(len(scratch))
	}

	n, err := stream.Read(scratch[:readLen])
	if err != nil {
		return nil, err
	}
	msg.buf = append(msg.buf, scratch[:n]...)

	if int32(len(msg.buf)) >= want {
		if err := msg.decode(); err != nil {
			return nil, err
		}
	}
	return msg, nil
}

// Continue requests the remaining bytes of an incomplete message, appends
// them, and decodes msg in place once enough have arrived. Callers stop
// calling Continue once msg.Complete reports true. Calling it on an
// already-complete message is a no-op.
func Continue(msg *Message, stream io.Reader, scratch []byte) error {
	if msg.Complete() {
		return nil
	}
	if len(scratch) == 0 {
		scratch = make([]byte, DefaultBufferLength)
	}

	remaining := msg.header.PayloadLength - int32(len(msg.buf))
	readLen := remaining
	if int32(len(scratch)) < readLen {
		readLen = int32(len(scratch))
	}

	n, err := stream.Read(scratch[:readLen])
	if err != nil {
		return err
	}
	msg.buf = append(msg.buf, scratch[:n]...)

	if int32(len(msg.buf)) >= msg.header.PayloadLength {
		return msg.decode()
	}
	return nil
}
