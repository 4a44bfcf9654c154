// Package transport defines the message-oriented duplex channel a table
// participant speaks through.
//
// A Transport carries whole, opaque messages. It promises only that Send
// enqueues a message and that the far side eventually observes it through a
// subscribed callback; ordering and delivery guarantees are whatever the
// concrete medium provides.
package transport

import "errors"

// ErrClosed indicates the transport has been closed.
var ErrClosed = errors.New("transport is closed")

// Handler receives one decoded message per invocation.
type Handler func(data []byte)

// Transport is an addressable duplex message channel to the table.
type Transport interface {
	// Send enqueues one message for the far side. It never blocks on the
	// receiver.
	Send(data []byte) error

	// Subscribe registers a handler for inbound messages and returns a
	// cancel function that unregisters it. Multiple handlers may be
	// registered; each receives every message.
	Subscribe(fn Handler) (cancel func())

	// Close tears the channel down. Pending messages may be dropped.
	Close() error
}
