package automation

import (
	"github.com/hearthlabs/hearth-core/internal/device"
)

// RoomFinder resolves the room an extension belongs to. The room
// registry implements it.
type RoomFinder interface {
	// RoomNameForDevice returns the name of the first room containing
	// the identifier, or false when the extension is unassigned.
	RoomNameForDevice(id device.Identifier) (string, bool)
}

// Router delivers characteristic-change events to the event
// automations in the registry.
//
// Routing is fully synchronous: it runs on whatever goroutine recorded
// the value, and matching actions run in registration order on that
// same goroutine. A slow event action therefore delays the reporting
// device's call path and the automations after it. That risk is
// accepted; automation authors are expected to keep actions short.
type Router struct {
	rooms    RoomFinder
	registry *Registry
	logger   Logger
}

// NewRouter creates a router over the automation registry. rooms may
// be nil, in which case room-domain automations never match.
func NewRouter(registry *Registry, rooms RoomFinder) *Router {
	return &Router{
		rooms:    rooms,
		registry: registry,
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the router.
func (ro *Router) SetLogger(logger Logger) {
	ro.logger = logger
}

// CharacteristicDidChange implements device.EventSink. It resolves the
// triggering extension's room, then offers the event to every event
// automation currently registered.
func (ro *Router) CharacteristicDidChange(ext device.Extension, characteristic device.Characteristic) {
	ro.logger.Debug("characteristic changed",
		"extension", uint64(ext.Identifier()),
		"characteristic", string(characteristic),
	)

	roomName := ""
	if ro.rooms != nil {
		if name, ok := ro.rooms.RoomNameForDevice(ext.Identifier()); ok {
			roomName = name
		}
	}

	for _, a := range ro.registry.All() {
		if eventAutomation, ok := a.(*EventAutomation); ok {
			if eventAutomation.HandleEvent(ext, characteristic, roomName) {
				ro.registry.notifyFired(a.Label(), "event")
			}
		}
	}
}
