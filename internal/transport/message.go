package transport

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hearthlabs/hearth-core/internal/device"
)

// ServiceBundle is the routable unit of the extension protocol: a
// package number, a service number within that package, and the raw
// service payload.
type ServiceBundle struct {
	Package uint8
	Service uint8
	Data    []byte
}

// String implements fmt.Stringer.
func (b ServiceBundle) String() string {
	return fmt.Sprintf("%d/%d (%d bytes)", b.Package, b.Service, len(b.Data))
}

// Message is an outbound command addressed to a single extension.
//
// Every message carries a unique ID for tracing and an expiry: a
// command for a physical device is useless once stale, so the outbox
// drops messages past their deadline instead of delivering them late.
type Message struct {
	// ID is a unique identifier for tracing the message through logs.
	ID string

	// To is the destination extension.
	To device.Identifier

	// Bundle is the service payload to deliver.
	Bundle ServiceBundle

	// ExpiresAt is the instant after which the message must not be
	// delivered. Zero means the message never expires.
	ExpiresAt time.Time
}

// NewMessage builds an outbound message with a fresh ID. A zero ttl
// produces a message that never expires.
func NewMessage(to device.Identifier, bundle ServiceBundle, ttl time.Duration) Message {
	m := Message{
		ID:     uuid.NewString(),
		To:     to,
		Bundle: bundle,
	}
	if ttl > 0 {
		m.ExpiresAt = time.Now().Add(ttl)
	}
	return m
}

// Expired reports whether the message is past its deadline at the
// given instant.
func (m Message) Expired(now time.Time) bool {
	return !m.ExpiresAt.IsZero() && now.After(m.ExpiresAt)
}
