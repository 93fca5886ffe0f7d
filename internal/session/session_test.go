package session

import (
	"net"
	"testing"
	"time"

	"github.com/oba-ldap/x690/internal/codec"
	"github.com/oba-ldap/x690/internal/logging"
)

func TestSessionLoopDeliversMessageAndEndSession(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer clientConn.Close()

	received := make(chan *codec.Node, 4)
	ended := make(chan struct{})
	handlers := EventHandlers[*codec.Node]{
		MessageReceived: func(s *Session[*codec.Node], n *codec.Node) { received <- n },
		End:             func(s *Session[*codec.Node]) { close(ended) },
	}

	sess := NewSession[*codec.Node](1, serverConn, NewX690Transceiver(4096), handlers, logging.NewNop(), time.Millisecond)
	go sess.Loop()

	go func() {
		clientConn.Write(codec.WriteNode(codec.NewSequence(codec.NewInteger(1))))
		endMsg := codec.NewSequence(codec.NewGeneric(codec.Identifier{Class: codec.ClassApplication, TagNumber: 3}, nil))
		clientConn.Write(codec.WriteNode(endMsg))
	}()

	select {
	case n := <-received:
		if got := n.Children[0].Int(); got != 1 {
			t.Fatalf("Int() = %d, want 1", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for first message")
	}

	select {
	case <-ended:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for session end")
	}

	sess.Wait()
}

func TestSessionCloseStopsLoop(t *testing.T) {
	serverConn, clientConn := net.Pipe()
	defer clientConn.Close()

	ended := make(chan struct{})
	handlers := EventHandlers[*codec.Node]{
		End: func(s *Session[*codec.Node]) { close(ended) },
	}

	sess := NewSession[*codec.Node](1, serverConn, NewX690Transceiver(4096), handlers, logging.NewNop(), time.Millisecond)
	go sess.Loop()

	if !sess.IsConnected() {
		t.Fatal("expected a fresh session to report connected")
	}

	sess.Close()

	select {
	case <-ended:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Close to stop the loop")
	}

	if sess.IsConnected() {
		t.Fatal("expected IsConnected() == false after Close")
	}
	sess.Wait()
}
