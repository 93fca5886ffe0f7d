// Package framing wraps the codec package's node reader/writer with
// partial-read recovery across a socket, so a session can survive short
// reads without losing its place mid-message.
package framing

import (
	"github.com/oba-ldap/x690/internal/codec"
)

// Message is the unit a framer hands back to a caller: either fully
// decoded, or still waiting on more bytes from the stream.
type Message struct {
	header codec.Header
	node   *codec.Node
	buf    []byte
}

// Complete reports whether m carries a fully decoded node.
func (m *Message) Complete() bool {
	return m.node != nil
}

// Node returns the decoded node. It is nil until Complete reports true.
func (m *Message) Node() *codec.Node {
	return m.node
}

// Header returns the header read for this message, valid whether or not
// the message is complete yet.
func (m *Message) Header() codec.Header {
	return m.header
}

// BytesStillNeeded returns how many more payload bytes this message needs
// before it can be decoded. It is 0 once Complete reports true.
func (m *Message) BytesStillNeeded() int32 {
	if m.node != nil {
		return 0
	}
	return m.header.PayloadLength - int32(len(m.buf))
}

// ID returns the session-level request id embedded in a complete
// message's payload: if the payload is a Sequence whose first child is
// an Integer, that integer; otherwise -1. It is meaningless on an
// incomplete message.
func (m *Message) ID() int64 {
	if m.node == nil || m.node.Leaf() != codec.LeafSequence || len(m.node.Children) == 0 {
		return -1
	}
	first := m.node.Children[0]
	if first.Leaf() != codec.LeafInteger {
		return -1
	}
	return first.Int()
}

// IsEndSession reports whether a complete message signals graceful
// disconnect: its payload is a Sequence carrying at least one
// Application-class child with no children of its own.
func (m *Message) IsEndSession() bool {
	if m.node == nil {
		return false
	}
	return m.node.IsEndSession()
}

func (m *Message) decode() error {
	node, err := codec.DecodeContent(m.header, m.buf)
	if err != nil {
		return err
	}
	m.node = node
	m.buf = nil
	return nil
}
