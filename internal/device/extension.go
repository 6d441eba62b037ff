package device

import (
	"fmt"
	"iter"
	"sync"
	"time"
)

// Extension represents a networked device the hub tracks. Extensions
// are passive reporters: the hub and the extension's own report path
// are the only mutators of its recorded state.
type Extension interface {
	// Identifier returns the unique identifier of the extension.
	Identifier() Identifier

	// Label returns the optional human label, or "" if unset.
	Label() string

	// RecordValue records a value for a characteristic of the
	// extension. Recording triggers event routing for the change.
	RecordValue(value RecordedValue, characteristic Characteristic)

	// LatestValue returns the most recent value recorded for the
	// characteristic, by recorded timestamp.
	LatestValue(characteristic Characteristic) (RecordedValue, bool)

	// History returns all retained values for the characteristic.
	// How much history is retained is for implementors to decide.
	History(characteristic Characteristic) iter.Seq[RecordedValue]
}

// EventSink receives characteristic-change events from extensions.
// The automation router implements this; the hub wires it into every
// extension it constructs.
type EventSink interface {
	// CharacteristicDidChange is invoked synchronously on the
	// recording goroutine immediately after a value is stored.
	CharacteristicDidChange(ext Extension, characteristic Characteristic)
}

// Messenger sends outbound command messages to extensions over the
// transport layer. Sends are fire-and-forget: replies arrive later via
// the report path.
type Messenger interface {
	// Send addresses a service bundle to the extension with the given
	// identifier. A non-zero ttl lets the transport drop the message
	// if it cannot be sent in time.
	Send(to Identifier, pkg, service uint8, payload []byte, ttl time.Duration) error
}

// commandTTL is how long an outbound device command stays valid in the
// transport outbox before being dropped.
const commandTTL = 5 * time.Second

// HubExtension is the standard extension implementation for devices
// that joined via handshake. Its capability set is negotiated at
// handshake time and may change during runtime, so it implements
// DynamicCapabilities.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type HubExtension struct {
	id    Identifier
	label string

	mu           sync.RWMutex
	capabilities map[Capability]struct{}

	store *CharacteristicStore

	messenger Messenger // nil when the extension has no command path
	sink      EventSink // nil until wired by the hub
	logger    Logger
}

// NewHubExtension creates an extension with the given identifier and
// no capabilities. The messenger and sink are wired afterwards via
// SetMessenger and SetEventSink.
func NewHubExtension(id Identifier) *HubExtension {
	return &HubExtension{
		id:           id,
		capabilities: make(map[Capability]struct{}),
		store:        NewCharacteristicStore(),
		logger:       noopLogger{},
	}
}

// SetLogger sets the logger for the extension.
func (e *HubExtension) SetLogger(logger Logger) {
	e.mu.Lock()
	e.logger = logger
	e.mu.Unlock()
}

// SetMessenger wires the outbound command path.
func (e *HubExtension) SetMessenger(m Messenger) {
	e.mu.Lock()
	e.messenger = m
	e.mu.Unlock()
}

// SetEventSink wires the characteristic-change event sink.
func (e *HubExtension) SetEventSink(sink EventSink) {
	e.mu.Lock()
	e.sink = sink
	e.mu.Unlock()
}

// SetLabel sets the informal user-defined label.
func (e *HubExtension) SetLabel(label string) {
	e.mu.Lock()
	e.label = label
	e.mu.Unlock()
}

// Identifier returns the unique identifier of the extension.
func (e *HubExtension) Identifier() Identifier {
	return e.id
}

// Label returns the informal user-defined label, or "".
func (e *HubExtension) Label() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.label
}

// Store exposes the characteristic store for retention configuration.
func (e *HubExtension) Store() *CharacteristicStore {
	return e.store
}

// RecordValue stores the value and notifies the event sink, if wired,
// synchronously on the calling goroutine.
func (e *HubExtension) RecordValue(value RecordedValue, characteristic Characteristic) {
	e.store.Insert(value, characteristic)

	e.mu.RLock()
	sink := e.sink
	e.mu.RUnlock()

	if sink != nil {
		sink.CharacteristicDidChange(e, characteristic)
	}
}

// LatestValue returns the most recent value recorded for the
// characteristic, by recorded timestamp.
func (e *HubExtension) LatestValue(characteristic Characteristic) (RecordedValue, bool) {
	return e.store.Latest(characteristic)
}

// History returns all retained values for the characteristic.
func (e *HubExtension) History(characteristic Characteristic) iter.Seq[RecordedValue] {
	return e.store.History(characteristic)
}

// ConformsTo reports whether the extension currently claims the
// capability. Part of the DynamicCapabilities contract.
func (e *HubExtension) ConformsTo(capability Capability) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.capabilities[capability]
	return ok
}

// EnableSupport adds a capability to the extension's claimed set.
func (e *HubExtension) EnableSupport(capability Capability) {
	e.mu.Lock()
	e.capabilities[capability] = struct{}{}
	e.mu.Unlock()
}

// RemoveSupport removes a capability from the extension's claimed set.
func (e *HubExtension) RemoveSupport(capability Capability) {
	e.mu.Lock()
	delete(e.capabilities, capability)
	e.mu.Unlock()
}

// Capabilities returns a copy of the currently claimed capability set.
func (e *HubExtension) Capabilities() []Capability {
	e.mu.RLock()
	defer e.mu.RUnlock()

	caps := make([]Capability, 0, len(e.capabilities))
	for c := range e.capabilities {
		caps = append(caps, c)
	}
	return caps
}

// String implements fmt.Stringer.
func (e *HubExtension) String() string {
	return fmt.Sprintf("HubExtension[identifier: %d, capabilities: %v]", e.id, e.Capabilities())
}

// send dispatches an outbound command if a messenger is wired.
// Send failures are logged and dropped: commands are fire-and-forget.
func (e *HubExtension) send(pkg, service uint8, payload []byte) {
	e.mu.RLock()
	messenger := e.messenger
	logger := e.logger
	e.mu.RUnlock()

	if messenger == nil {
		logger.Debug("no messenger wired, command dropped", "extension", uint64(e.id))
		return
	}
	if err := messenger.Send(e.id, pkg, service, payload, commandTTL); err != nil {
		logger.Warn("sending command failed",
			"extension", uint64(e.id),
			"package", pkg,
			"service", service,
			"error", err,
		)
	}
}
