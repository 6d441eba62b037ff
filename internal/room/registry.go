package room

import (
	"sync"

	"github.com/hearthlabs/hearth-core/internal/device"
)

// Logger defines the logging interface used by the room package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Notifier fans room change notifications out to hub interfaces. The
// device registry implements it; rooms live in their own package and
// reach panels through the extension registry.
type Notifier interface {
	NotifyRoom(name string, change device.Change)
}

// noopNotifier drops notifications. Used when no notifier is wired.
type noopNotifier struct{}

func (noopNotifier) NotifyRoom(string, device.Change) {}

// Registry is the thread-safe map from unique room name to room.
//
// Mutations are serialized through a single mutex; change notifications
// are dispatched through the Notifier after the lock is released, never
// blocking mutation. Extensions should treat the registry and its rooms
// as read-only — only the hub and its interfaces mutate rooms.
//
// Thread Safety:
//   - All public methods are safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	notifier Notifier
	logger   Logger
}

// NewRegistry creates an empty room registry. Pass nil to disable
// notifications.
func NewRegistry(notifier Notifier) *Registry {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &Registry{
		rooms:    make(map[string]*Room),
		notifier: notifier,
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.mu.Lock()
	r.logger = logger
	r.mu.Unlock()
}

// Add registers a room. A room with the same name is overwritten
// wholesale: the prior room and its membership are discarded. An
// "updated" notification fires afterwards either way.
func (r *Registry) Add(newRoom *Room) {
	if newRoom == nil {
		return
	}

	r.mu.Lock()
	r.rooms[newRoom.Name] = newRoom
	logger := r.logger
	r.mu.Unlock()

	logger.Info("room added", "room", newRoom.Name, "members", newRoom.Count())
	r.notifier.NotifyRoom(newRoom.Name, device.ChangeUpdated)
}

// Remove deletes the room with the given name. Removing an unknown
// name is a no-op and fires no notification.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	_, existed := r.rooms[name]
	delete(r.rooms, name)
	logger := r.logger
	r.mu.Unlock()

	if !existed {
		return
	}
	logger.Info("room removed", "room", name)
	r.notifier.NotifyRoom(name, device.ChangeRemoved)
}

// RemoveAll deletes every room, firing one removal notification per room.
func (r *Registry) RemoveAll() {
	for _, room := range r.All() {
		r.Remove(room.Name)
	}
}

// FindByName returns the room with the given name.
func (r *Registry) FindByName(name string) (*Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, ok := r.rooms[name]
	return room, ok
}

// FindByDevice returns the first room whose member set contains the
// extension identifier, or false if no room does.
//
// A device may belong to any number of rooms; when it belongs to more
// than one, which room is returned is undefined (map iteration order).
func (r *Registry) FindByDevice(id device.Identifier) (*Room, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, room := range r.rooms {
		if room.Contains(id) {
			return room, true
		}
	}
	return nil, false
}

// RoomNameForDevice returns the name of the first room containing the
// extension identifier. It satisfies the automation router's room
// lookup without exposing the room itself.
func (r *Registry) RoomNameForDevice(id device.Identifier) (string, bool) {
	room, ok := r.FindByDevice(id)
	if !ok {
		return "", false
	}
	return room.Name, true
}

// All returns a point-in-time snapshot of every room, in unspecified
// order.
func (r *Registry) All() []*Room {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rooms := make([]*Room, 0, len(r.rooms))
	for _, room := range r.rooms {
		rooms = append(rooms, room)
	}
	return rooms
}

// Count returns the number of registered rooms.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}
