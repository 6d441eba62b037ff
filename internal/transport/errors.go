package transport

import "errors"

// Sentinel errors for transport operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrOutboxFull is returned when a send is dropped because the
	// outbound queue is at capacity.
	ErrOutboxFull = errors.New("transport: outbox full")

	// ErrOutboxClosed is returned when sending through a closed outbox.
	ErrOutboxClosed = errors.New("transport: outbox closed")

	// ErrMalformedTopic is returned when a report topic does not match
	// the hearth/report/{package}/{service} scheme.
	ErrMalformedTopic = errors.New("transport: malformed report topic")

	// ErrNoHandler is returned when a report arrives for an
	// unregistered (package, service) pair.
	ErrNoHandler = errors.New("transport: no handler for service")
)
