package session

import (
	"context"
	"crypto/tls"
	"net"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/oba-ldap/x690/internal/logging"
	"github.com/oba-ldap/x690/internal/telemetry"
)

// Config tunes an Endpoint's connection handling.
type Config struct {
	ConnectTimeout      time.Duration
	PollInterval        time.Duration
	MaxSessions         int64
	KeepAliveTime       time.Duration
	KeepAliveInterval   time.Duration
	ReceiveBufferLength int
	TLSConfig           *tls.Config
}

// DefaultConfig returns the library's default sizing limits.
func DefaultConfig() Config {
	return Config{
		ConnectTimeout:      5000 * time.Millisecond,
		PollInterval:        time.Millisecond,
		MaxSessions:         256,
		KeepAliveTime:       14 * time.Minute,
		KeepAliveInterval:   7 * time.Minute,
		ReceiveBufferLength: 128 * 1024,
	}
}

// Endpoint is either a server (bound, listening, accepting) or a client
// (a single dialed session). Every session it spawns is tracked in a
// concurrent map keyed by a unique int id.
type Endpoint[T any] struct {
	cfg            Config
	newTransceiver func() Transceiver[T]
	handlers       EventHandlers[T]
	logger         logging.Logger

	listener net.Listener

	mu       sync.Mutex
	sessions map[int]*Session[T]
	nextID   int

	group  *errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc
	sem    *semaphore.Weighted
}

// NewServerEndpoint binds addr and returns an Endpoint ready for Serve.
func NewServerEndpoint[T any](addr string, newTransceiver func() Transceiver[T], handlers EventHandlers[T], cfg Config, logger logging.Logger) (*Endpoint[T], error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Endpoint[T]{
		cfg:            cfg,
		newTransceiver: newTransceiver,
		handlers:       handlers,
		logger:         logger,
		listener:       listener,
		sessions:       make(map[int]*Session[T]),
		ctx:            ctx,
		cancel:         cancel,
		sem:            semaphore.NewWeighted(cfg.MaxSessions),
	}, nil
}

// Addr returns the server endpoint's bound address.
func (e *Endpoint[T]) Addr() net.Addr {
	return e.listener.Addr()
}

// Serve runs the accept loop until the endpoint is closed or the listener
// fails. It blocks; callers typically run it in its own goroutine.
func (e *Endpoint[T]) Serve() error {
	g, ctx := errgroup.WithContext(e.ctx)
	e.mu.Lock()
	e.group = g
	e.mu.Unlock()
	g.Go(func() error {
		return e.acceptLoop(ctx)
	})
	return g.Wait()
}

func (e *Endpoint[T]) acceptLoop(ctx context.Context) error {
	span := telemetry.StartAcceptLoop(ctx, e.listener.Addr().String())
	var loopErr error
	defer func() { telemetry.EndSpan(span, loopErr) }()

	for {
		conn, err := e.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				loopErr = err
				e.logger.Error("accept failed", "addr", e.listener.Addr().String(), "error", err.Error())
				e.mu.Lock()
				for _, s := range e.sessions {
					s.Close()
				}
				e.mu.Unlock()
				return err
			}
		}

		tuneKeepAlive(conn, e.cfg)
		if e.cfg.TLSConfig != nil {
			conn = tls.Server(conn, e.cfg.TLSConfig)
		}

		if err := e.sem.Acquire(ctx, 1); err != nil {
			conn.Close()
			continue
		}

		sess := e.spawnSession(conn)
		e.group.Go(func() error {
			defer e.sem.Release(1)
			defer e.removeSession(sess.ID)
			sess.Loop()
			if e.handlers.SessionClosed != nil {
				e.handlers.SessionClosed(sess)
			}
			return nil
		})
	}
}

// DialClient connects to addr within cfg.ConnectTimeout, authenticating
// TLS inline if cfg.TLSConfig is set, and returns an Endpoint owning the
// single resulting Session.
func DialClient[T any](network, addr string, newTransceiver func() Transceiver[T], handlers EventHandlers[T], cfg Config, logger logging.Logger) (*Endpoint[T], *Session[T], error) {
	dialCtx, dialCancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer dialCancel()

	var d net.Dialer
	conn, err := d.DialContext(dialCtx, network, addr)
	if err != nil {
		return nil, nil, err
	}
	tuneKeepAlive(conn, cfg)

	if cfg.TLSConfig != nil {
		tlsConn := tls.Client(conn, cfg.TLSConfig)
		hsCtx, hsCancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
		defer hsCancel()
		if err := tlsConn.HandshakeContext(hsCtx); err != nil {
			conn.Close()
			return nil, nil, err
		}
		conn = tlsConn
	}

	epCtx, epCancel := context.WithCancel(context.Background())
	ep := &Endpoint[T]{
		cfg:            cfg,
		newTransceiver: newTransceiver,
		handlers:       handlers,
		logger:         logger,
		sessions:       make(map[int]*Session[T]),
		ctx:            epCtx,
		cancel:         epCancel,
		sem:            semaphore.NewWeighted(1),
	}

	sess := ep.spawnSession(conn)
	g, _ := errgroup.WithContext(epCtx)
	ep.group = g
	g.Go(func() error {
		defer ep.removeSession(sess.ID)
		sess.Loop()
		if ep.handlers.SessionClosed != nil {
			ep.handlers.SessionClosed(sess)
		}
		return nil
	})

	return ep, sess, nil
}

func tuneKeepAlive(conn net.Conn, cfg Config) {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return
	}
	tcpConn.SetKeepAliveConfig(net.KeepAliveConfig{
		Enable:   true,
		Idle:     cfg.KeepAliveTime,
		Interval: cfg.KeepAliveInterval,
	})
}

func (e *Endpoint[T]) spawnSession(conn net.Conn) *Session[T] {
	e.mu.Lock()
	id := e.nextID
	e.nextID++
	sess := NewSession[T](id, conn, e.newTransceiver(), e.handlers, e.logger, e.cfg.PollInterval)
	e.sessions[id] = sess
	e.mu.Unlock()

	e.logger.WithSessionID(id).Debug("session spawned", "remote", conn.RemoteAddr().String())
	if e.handlers.SessionSpawned != nil {
		e.handlers.SessionSpawned(sess)
	}
	return sess
}

func (e *Endpoint[T]) removeSession(id int) {
	e.mu.Lock()
	delete(e.sessions, id)
	e.mu.Unlock()
	e.logger.WithSessionID(id).Debug("session removed")
}

// Session looks up one of this endpoint's sessions by id.
func (e *Endpoint[T]) Session(id int) (*Session[T], bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[id]
	return s, ok
}

// Sessions returns a snapshot of every session currently tracked by this
// endpoint.
func (e *Endpoint[T]) Sessions() []*Session[T] {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*Session[T], 0, len(e.sessions))
	for _, s := range e.sessions {
		out = append(out, s)
	}
	return out
}

// Close cancels every session's token, closes the listener (for a server
// endpoint), and waits for the accept loop and all session goroutines to
// exit.
func (e *Endpoint[T]) Close() error {
	e.cancel()

	var err error
	if e.listener != nil {
		err = e.listener.Close()
	}

	e.mu.Lock()
	for _, s := range e.sessions {
		s.Close()
	}
	group := e.group
	e.mu.Unlock()

	if group != nil {
		group.Wait()
	}
	return err
}
