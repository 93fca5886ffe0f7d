package session

import (
	"bufio"
	"context"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/oba-ldap/x690/internal/logging"
	"github.com/oba-ldap/x690/internal/telemetry"
)

// EventHandlers are the callbacks a Session (and the Endpoint that spawns
// it) invokes. MessageReceived, ExceptionThrown, End and SessionClosed run
// synchronously on the session's own loop goroutine; a handler must not
// block waiting on that same session. SessionSpawned runs on the goroutine
// that accepted or dialed the connection, before Loop starts.
type EventHandlers[T any] struct {
	MessageReceived func(s *Session[T], pkt T)
	ExceptionThrown func(s *Session[T], err error)
	End             func(s *Session[T])
	SessionSpawned  func(s *Session[T])
	SessionClosed   func(s *Session[T])
}

// Session owns one connected socket and runs its receive loop.
type Session[T any] struct {
	ID int

	conn        net.Conn
	br          *bufio.Reader
	transceiver Transceiver[T]
	handlers    EventHandlers[T]
	logger      logging.Logger

	pollInterval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	sendMu sync.Mutex
}

// NewSession wraps conn in a Session that will dispatch packets through
// transceiver. The caller must call Loop to start receiving.
func NewSession[T any](id int, conn net.Conn, transceiver Transceiver[T], handlers EventHandlers[T], logger logging.Logger, pollInterval time.Duration) *Session[T] {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session[T]{
		ID:           id,
		conn:         conn,
		br:           bufio.NewReader(conn),
		transceiver:  transceiver,
		handlers:     handlers,
		logger:       logger,
		pollInterval: pollInterval,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// RemoteAddr returns the session's peer address.
func (s *Session[T]) RemoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}

// Send writes one packet out through the session's transceiver. It is
// safe to call concurrently with Loop and with other Send calls.
func (s *Session[T]) Send(pkt T) error {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	return s.transceiver.Transmit(s.conn, pkt)
}

// IsConnected reports whether the session has not been closed.
func (s *Session[T]) IsConnected() bool {
	select {
	case <-s.ctx.Done():
		return false
	default:
		return true
	}
}

// Loop is the receive loop: block until data is available or the session
// is cancelled, then ask the transceiver for a packet. It returns when the
// connection closes, the token is cancelled, a Fail status is reported, or
// a complete packet signals end-of-session.
func (s *Session[T]) Loop() {
	s.wg.Add(1)
	defer s.wg.Done()
	span := telemetry.StartSessionLoop(s.ctx, s.ID)
	log := s.logger.WithSessionID(s.ID)
	log.Info("session established", "remote", s.conn.RemoteAddr().String())
	var loopErr error
	defer func() {
		telemetry.EndSpan(span, loopErr)
		if loopErr != nil {
			log.Warn("session ended with error", "error", loopErr.Error())
		} else {
			log.Info("session ended")
		}
		if s.handlers.End != nil {
			s.handlers.End(s)
		}
	}()

	for {
		if !s.waitDataAvailable() {
			return
		}
		s.conn.SetReadDeadline(time.Time{})

		status, pkt, err := s.transceiver.Receive(s.br)
		switch status {
		case StatusOverAndOut:
			if s.handlers.MessageReceived != nil {
				s.handlers.MessageReceived(s, pkt)
			}
			if isEndSessionPacket(pkt) {
				return
			}
		case StatusOver:
			continue
		case StatusFail:
			loopErr = err
			if err != nil {
				log.Warn("receive failed", "error", err.Error())
				if s.handlers.ExceptionThrown != nil {
					s.handlers.ExceptionThrown(s, err)
				}
			}
			return
		}
	}
}

// waitDataAvailable polls the socket with a cancellable interval until
// data is ready, the connection is closed, or the session's token fires.
func (s *Session[T]) waitDataAvailable() bool {
	for {
		select {
		case <-s.ctx.Done():
			return false
		default:
		}

		s.conn.SetReadDeadline(time.Now().Add(s.pollInterval))
		if _, err := s.br.Peek(1); err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				continue
			}
			return false
		}
		return true
	}
}

// Close cancels the session's token and closes its stream. It never
// blocks, so it is always safe to call from within the session's own
// event handlers. Callers that need to know the loop has actually
// exited should call Wait afterward, from a different goroutine.
func (s *Session[T]) Close() error {
	s.cancel()
	return s.conn.Close()
}

// Wait blocks until Loop returns. Do not call it from the session's own
// loop goroutine (from inside a handler) — it would deadlock.
func (s *Session[T]) Wait() {
	s.wg.Wait()
}

func isEndSessionPacket[T any](pkt T) bool {
	v, ok := any(pkt).(interface{ IsEndSession() bool })
	if !ok {
		return false
	}
	return v.IsEndSession()
}

// IsEndSessionPacket reports whether pkt is an end-of-session sentinel,
// for callers outside this package (such as a router) that need to react
// to the same signal Loop uses to terminate.
func IsEndSessionPacket[T any](pkt T) bool {
	return isEndSessionPacket(pkt)
}
