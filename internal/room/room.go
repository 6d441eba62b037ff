package room

import (
	"sync"

	"github.com/hearthlabs/hearth-core/internal/device"
)

// Room represents a physical room in the house. A room owns a set of
// extension identifiers; it holds no extension state itself, only
// references by identifier.
//
// The room name is the primary key in the registry and is
// case-sensitive.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Room struct {
	// Name is the unique, case-sensitive name of the room.
	Name string

	mu      sync.RWMutex
	members map[device.Identifier]struct{}
}

// New creates an empty room with the given name.
func New(name string) *Room {
	return &Room{
		Name:    name,
		members: make(map[device.Identifier]struct{}),
	}
}

// AddMember adds an extension identifier to the room. Adding an
// identifier that is already a member is a no-op.
func (r *Room) AddMember(id device.Identifier) {
	r.mu.Lock()
	r.members[id] = struct{}{}
	r.mu.Unlock()
}

// RemoveMember removes an extension identifier from the room.
func (r *Room) RemoveMember(id device.Identifier) {
	r.mu.Lock()
	delete(r.members, id)
	r.mu.Unlock()
}

// RemoveAllMembers empties the room's membership.
func (r *Room) RemoveAllMembers() {
	r.mu.Lock()
	r.members = make(map[device.Identifier]struct{})
	r.mu.Unlock()
}

// Contains reports whether the extension identifier is a member.
func (r *Room) Contains(id device.Identifier) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[id]
	return ok
}

// Members returns a snapshot of the member identifiers, in
// unspecified order.
func (r *Room) Members() []device.Identifier {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]device.Identifier, 0, len(r.members))
	for id := range r.members {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the number of member identifiers.
func (r *Room) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}
