// Package router composes a local "common" session endpoint with N
// outbound sessions to remote targets, forwarding packets between them
// under a per-client, runtime-adjustable route.
package router

import (
	"net"
	"sync"
	"sync/atomic"

	"github.com/oba-ldap/x690/internal/logging"
	"github.com/oba-ldap/x690/internal/session"
)

// RouterHandlers are the callbacks a Router invokes as it forwards
// packets between the common client and its N remote targets.
type RouterHandlers[T any] struct {
	// ClientBeforeSend runs once per target before a client packet is
	// forwarded to it, giving the caller a chance to mutate or drop it.
	ClientBeforeSend func(commonID, target int, pkt T) (T, bool)
	// ServerMessageReceived fires when the remote at the client's
	// current route sends a packet back, giving the caller a chance to
	// mutate or drop it before it reaches the client.
	ServerMessageReceived func(commonID int, pkt T) (T, bool)
	// OtherServerMessageReceived fires when a remote NOT at the
	// client's current route sends a packet; it is dropped afterward.
	OtherServerMessageReceived func(commonID, target int, pkt T)
	ExceptionThrown            func(commonID int, err error)
}

type routeState[T any] struct {
	route     int32
	broadcast int32
	remotes   []*session.Session[T]
	endpoints []*session.Endpoint[T]
}

// Router listens on one local endpoint and, for every accepted client
// session, dials out to len(targets) remote sessions numbered 0..N-1.
type Router[T any] struct {
	targets        []string
	newTransceiver func() session.Transceiver[T]
	cfg            session.Config
	logger         logging.Logger
	handlers       RouterHandlers[T]

	common *session.Endpoint[T]

	mu     sync.Mutex
	routes map[int]*routeState[T]
}

// New binds addr as the common endpoint and returns a Router that will
// dial targets for every client session once Serve is running.
func New[T any](addr string, targets []string, newTransceiver func() session.Transceiver[T], handlers RouterHandlers[T], cfg session.Config, logger logging.Logger) (*Router[T], error) {
	r := &Router[T]{
		targets:        targets,
		newTransceiver: newTransceiver,
		cfg:            cfg,
		logger:         logger,
		handlers:       handlers,
		routes:         make(map[int]*routeState[T]),
	}

	commonHandlers := session.EventHandlers[T]{
		SessionSpawned:  r.onClientSpawned,
		MessageReceived: r.onClientMessage,
		SessionClosed:   r.onClientClosed,
		ExceptionThrown: func(s *session.Session[T], err error) {
			if r.handlers.ExceptionThrown != nil {
				r.handlers.ExceptionThrown(s.ID, err)
			}
		},
	}

	common, err := session.NewServerEndpoint(addr, newTransceiver, commonHandlers, cfg, logger)
	if err != nil {
		return nil, err
	}
	r.common = common
	return r, nil
}

// Addr returns the common endpoint's bound address.
func (r *Router[T]) Addr() net.Addr {
	return r.common.Addr()
}

// Serve runs the common endpoint's accept loop. It blocks.
func (r *Router[T]) Serve() error {
	return r.common.Serve()
}

// SetRoute changes which remote target a client's non-broadcast packets
// (and whose replies) are forwarded through. It reports false if commonID
// names no live client session.
func (r *Router[T]) SetRoute(commonID, route int) bool {
	rs := r.routeState(commonID)
	if rs == nil {
		return false
	}
	atomic.StoreInt32(&rs.route, int32(route))
	return true
}

// SetBroadcast toggles whether a client's packets fan out to every
// remote target instead of just the current route.
func (r *Router[T]) SetBroadcast(commonID int, broadcast bool) bool {
	rs := r.routeState(commonID)
	if rs == nil {
		return false
	}
	var v int32
	if broadcast {
		v = 1
	}
	atomic.StoreInt32(&rs.broadcast, v)
	return true
}

func (r *Router[T]) routeState(commonID int) *routeState[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.routes[commonID]
}

func (r *Router[T]) onClientSpawned(common *session.Session[T]) {
	remotes := make([]*session.Session[T], len(r.targets))
	endpoints := make([]*session.Endpoint[T], len(r.targets))

	for i, addr := range r.targets {
		target := i
		remoteHandlers := session.EventHandlers[T]{
			MessageReceived: func(s *session.Session[T], pkt T) {
				r.onRemoteMessage(common, target, pkt)
			},
			SessionClosed: func(s *session.Session[T]) {
				r.onRemoteClosed(common, target)
			},
		}

		ep, remote, err := session.DialClient(common.RemoteAddr().Network(), addr, r.newTransceiver, remoteHandlers, r.cfg, r.logger)
		if err != nil {
			r.logger.WithSessionID(common.ID).Error("dial target failed", "target", addr, "error", err.Error())
			if r.handlers.ExceptionThrown != nil {
				r.handlers.ExceptionThrown(common.ID, err)
			}
			for _, prior := range remotes[:target] {
				if prior != nil {
					prior.Close()
				}
			}
			common.Close()
			return
		}
		remotes[target] = remote
		endpoints[target] = ep
	}

	r.mu.Lock()
	r.routes[common.ID] = &routeState[T]{remotes: remotes, endpoints: endpoints}
	r.mu.Unlock()
	r.logger.WithSessionID(common.ID).Info("client routed", "targets", len(r.targets))
}

func (r *Router[T]) onClientMessage(common *session.Session[T], pkt T) {
	rs := r.routeState(common.ID)
	if rs == nil {
		return
	}

	if atomic.LoadInt32(&rs.broadcast) != 0 {
		route := int(atomic.LoadInt32(&rs.route))
		for _, target := range forwardOrder(len(rs.remotes), route) {
			r.forwardToTarget(common.ID, rs, target, pkt)
		}
	} else {
		route := int(atomic.LoadInt32(&rs.route))
		if route >= 0 && route < len(rs.remotes) {
			r.forwardToTarget(common.ID, rs, route, pkt)
		}
	}

	if session.IsEndSessionPacket(pkt) {
		for _, remote := range rs.remotes {
			remote.Close()
		}
	}
}

func (r *Router[T]) forwardToTarget(commonID int, rs *routeState[T], target int, pkt T) {
	out := pkt
	send := true
	if r.handlers.ClientBeforeSend != nil {
		out, send = r.handlers.ClientBeforeSend(commonID, target, pkt)
	}
	if !send {
		return
	}
	rs.remotes[target].Send(out)
}

func (r *Router[T]) onRemoteMessage(common *session.Session[T], target int, pkt T) {
	rs := r.routeState(common.ID)
	if rs == nil {
		return
	}

	if target == int(atomic.LoadInt32(&rs.route)) {
		out := pkt
		send := true
		if r.handlers.ServerMessageReceived != nil {
			out, send = r.handlers.ServerMessageReceived(common.ID, pkt)
		}
		if send {
			common.Send(out)
		}
	} else if r.handlers.OtherServerMessageReceived != nil {
		r.handlers.OtherServerMessageReceived(common.ID, target, pkt)
	}

	if session.IsEndSessionPacket(pkt) {
		common.Close()
	}
}

// onRemoteClosed fires whenever one of a client's remote sessions ends,
// for any reason (explicit end-session packet, protocol error, or a
// clean disconnect with no end-session packet at all). End-session
// propagates symmetrically: a remote going away always closes the
// common client session, the same way a client end-session packet
// already closes every remote in onClientMessage.
func (r *Router[T]) onRemoteClosed(common *session.Session[T], target int) {
	r.logger.WithSessionID(common.ID).Debug("remote closed", "target", target)
	common.Close()
}

func (r *Router[T]) onClientClosed(common *session.Session[T]) {
	r.mu.Lock()
	rs := r.routes[common.ID]
	delete(r.routes, common.ID)
	r.mu.Unlock()

	if rs == nil {
		return
	}
	r.logger.WithSessionID(common.ID).Debug("client closed, tearing down remotes")
	for _, remote := range rs.remotes {
		if remote != nil {
			remote.Close()
		}
	}
	for _, ep := range rs.endpoints {
		if ep != nil {
			ep.Close()
		}
	}
}

// Close shuts down the common endpoint and every outstanding client's
// remote sessions.
func (r *Router[T]) Close() error {
	err := r.common.Close()

	r.mu.Lock()
	routes := r.routes
	r.routes = make(map[int]*routeState[T])
	r.mu.Unlock()

	for _, rs := range routes {
		for _, remote := range rs.remotes {
			if remote != nil {
				remote.Close()
			}
		}
		for _, ep := range rs.endpoints {
			if ep != nil {
				ep.Close()
			}
		}
	}
	return err
}

// forwardOrder returns target indices 0..n-1 ascending if route == 0,
// descending otherwise.
func forwardOrder(n, route int) []int {
	order := make([]int, n)
	if route == 0 {
		for i := range order {
			order[i] = i
		}
		return order
	}
	for i := range order {
		order[i] = n - 1 - i
	}
	return order
}
