package router

import (
	"github.com/oba-ldap/x690/internal/logging"
	"github.com/oba-ldap/x690/internal/session"
)

// ProxyHandlers are the callbacks for the N=1 specialization of Router.
type ProxyHandlers[T any] struct {
	BeforeSend            func(commonID int, pkt T) (T, bool)
	ServerMessageReceived func(commonID int, pkt T) (T, bool)
	ExceptionThrown       func(commonID int, err error)
}

// NewProxy builds a Router with exactly one remote target and a
// symmetric, single-target event surface.
func NewProxy[T any](addr, target string, newTransceiver func() session.Transceiver[T], handlers ProxyHandlers[T], cfg session.Config, logger logging.Logger) (*Router[T], error) {
	rh := RouterHandlers[T]{
		ServerMessageReceived: handlers.ServerMessageReceived,
		ExceptionThrown:       handlers.ExceptionThrown,
	}
	if handlers.BeforeSend != nil {
		rh.ClientBeforeSend = func(commonID, _ int, pkt T) (T, bool) {
			return handlers.BeforeSend(commonID, pkt)
		}
	}
	return New(addr, []string{target}, newTransceiver, rh, cfg, logger)
}
