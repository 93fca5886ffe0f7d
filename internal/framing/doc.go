// Package framing carries BER-encoded messages across a socket that may
// deliver them in arbitrarily small pieces.
//
// ReadBuffered reads a message's header, then as much of its payload as a
// single stream read yields. If the read falls short, it returns an
// incomplete Message; callers pass that Message to Continue, along with
// the same stream and a reusable scratch buffer, until Complete reports
// true.
//
//	msg, err := framing.ReadBuffered(conn, scratch)
//	for msg != nil && !msg.Complete() {
//		if err := framing.Continue(msg, conn, scratch); err != nil {
//			// handle error
//		}
//	}
//
// A nil Message with a nil error means the stream closed cleanly before
// any bytes of a new message arrived.
package framing
