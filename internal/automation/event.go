package automation

import (
	"github.com/hearthlabs/hearth-core/internal/device"
)

// domainKind discriminates the trigger-domain variants.
type domainKind uint8

const (
	domainAny domainKind = iota
	domainExtension
	domainRoom
)

// Domain scopes which characteristic changes an event automation
// responds to: changes in one specific extension, in any extension
// within a named room, or in any extension on the network.
type Domain struct {
	kind      domainKind
	extension device.Identifier
	room      string
}

// AnyExtension matches a change in any extension known to the hub.
func AnyExtension() Domain {
	return Domain{kind: domainAny}
}

// InExtension matches changes in the extension with the given
// identifier only.
func InExtension(id device.Identifier) Domain {
	return Domain{kind: domainExtension, extension: id}
}

// InRoom matches changes in any extension that is a member of the
// named room at the time of the change.
func InRoom(name string) Domain {
	return Domain{kind: domainRoom, room: name}
}

// EventAutomation is an automation executed when a watched
// characteristic changes within its domain. The action receives the
// extension that caused the event.
type EventAutomation struct {
	label          string
	characteristic device.Characteristic
	domain         Domain
	action         func(device.Extension)
}

// NewEventAutomation creates an automation that responds to a change
// in the given characteristic within the given domain.
func NewEventAutomation(label string, when device.Characteristic, in Domain, action func(device.Extension)) *EventAutomation {
	return &EventAutomation{
		label:          label,
		characteristic: when,
		domain:         in,
		action:         action,
	}
}

// Label returns the label of the automation.
func (e *EventAutomation) Label() string {
	return e.label
}

// Perform is a no-op: an event automation cannot run without its
// triggering extension. Events reach it via HandleEvent instead.
func (e *EventAutomation) Perform() {}

// HandleEvent runs the action if the changed characteristic and the
// domain both match, reporting whether it ran. roomName is the room
// the triggering extension was resolved to, or "" when it belongs to
// no room.
//
// The action runs synchronously on the calling goroutine, which is the
// device's report path. Keep actions short: a blocking action delays
// the reporting device and every automation after it in registration
// order.
func (e *EventAutomation) HandleEvent(from device.Extension, characteristic device.Characteristic, roomName string) bool {
	if characteristic != e.characteristic {
		return false
	}

	switch e.domain.kind {
	case domainAny:
		e.action(from)
	case domainExtension:
		if e.domain.extension != from.Identifier() {
			return false
		}
		e.action(from)
	case domainRoom:
		if roomName == "" || e.domain.room != roomName {
			return false
		}
		e.action(from)
	}
	return true
}
