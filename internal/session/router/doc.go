// Package router composes Session/Endpoint into a relay: a Router binds
// one common endpoint and dials N remote targets per accepted client,
// forwarding packets according to a per-client runtime route. Proxy is
// the N=1 specialization.
//
//	r, err := router.New(":4890", []string{"10.0.0.1:4890", "10.0.0.2:4890"},
//		func() session.Transceiver[*codec.Node] { return session.NewX690Transceiver(128 * 1024) },
//		router.RouterHandlers[*codec.Node]{
//			ServerMessageReceived: func(commonID int, node *codec.Node) (*codec.Node, bool) { return node, true },
//		}, session.DefaultConfig(), logger)
//	if err != nil {
//		// handle error
//	}
//	go r.Serve()
package router
