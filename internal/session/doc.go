// Package session drives a connected socket through a Transceiver,
// delivering complete packets to caller-supplied event handlers, and
// composes sessions into client or server Endpoints.
//
// A Session owns one net.Conn and runs a blocking receive loop: poll for
// data with a cancellable interval, ask the Transceiver for a packet, and
// dispatch MessageReceived/ExceptionThrown/End accordingly. An Endpoint
// is either a server (accept loop spawning one Session per connection) or
// a client (a single dialed Session), tracking every spawned Session in a
// map keyed by a unique int id.
//
//	tr := func() session.Transceiver[*codec.Node] { return session.NewX690Transceiver(128 * 1024) }
//	handlers := session.EventHandlers[*codec.Node]{
//		MessageReceived: func(s *session.Session[*codec.Node], node *codec.Node) {
//			// ...
//		},
//	}
//	ep, err := session.NewServerEndpoint(":4890", tr, handlers, session.DefaultConfig(), logger)
//	if err != nil {
//		// handle error
//	}
//	go ep.Serve()
package session
