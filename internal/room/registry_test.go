package room

import (
	"sync"
	"testing"

	"github.com/hearthlabs/hearth-core/internal/device"
)

// recordingNotifier captures room change notifications.
type recordingNotifier struct {
	mu      sync.Mutex
	changes []string
}

func (n *recordingNotifier) NotifyRoom(name string, change device.Change) {
	n.mu.Lock()
	n.changes = append(n.changes, name+":"+change.String())
	n.mu.Unlock()
}

func (n *recordingNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.changes...)
}

func TestRegistry_AddAndFind(t *testing.T) {
	reg := NewRegistry(nil)
	kitchen := New("kitchen")
	kitchen.AddMember(5)
	reg.Add(kitchen)

	found, ok := reg.FindByName("kitchen")
	if !ok {
		t.Fatal("FindByName(kitchen) ok = false, want true")
	}
	if !found.Contains(5) {
		t.Error("found room missing member 5")
	}
}

func TestRegistry_NamesAreCaseSensitive(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Add(New("Kitchen"))

	if _, ok := reg.FindByName("kitchen"); ok {
		t.Error("FindByName(kitchen) matched Kitchen; names must be case-sensitive")
	}
}

func TestRegistry_AddOverwritesWholesale(t *testing.T) {
	reg := NewRegistry(nil)

	old := New("lounge")
	old.AddMember(1)
	old.AddMember(2)
	reg.Add(old)

	replacement := New("lounge")
	replacement.AddMember(3)
	reg.Add(replacement)

	if got := reg.Count(); got != 1 {
		t.Fatalf("Count() = %d, want 1", got)
	}
	found, _ := reg.FindByName("lounge")
	if found.Contains(1) || found.Contains(2) {
		t.Error("prior membership survived the overwrite")
	}
	if !found.Contains(3) {
		t.Error("replacement membership missing")
	}
}

func TestRegistry_Notifications(t *testing.T) {
	notifier := &recordingNotifier{}
	reg := NewRegistry(notifier)

	reg.Add(New("hall"))
	reg.Add(New("hall")) // overwrite notifies too
	reg.Remove("hall")
	reg.Remove("hall") // unknown: no notification

	want := []string{"hall:updated", "hall:updated", "hall:removed"}
	got := notifier.all()
	if len(got) != len(want) {
		t.Fatalf("notifications = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("notification %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRegistry_AddNilIsNoOp(t *testing.T) {
	notifier := &recordingNotifier{}
	reg := NewRegistry(notifier)

	reg.Add(nil)
	if reg.Count() != 0 || len(notifier.all()) != 0 {
		t.Error("Add(nil) mutated the registry or notified")
	}
}

func TestRegistry_FindByDevice(t *testing.T) {
	reg := NewRegistry(nil)
	bedroom := New("bedroom")
	bedroom.AddMember(10)
	reg.Add(bedroom)
	reg.Add(New("empty"))

	found, ok := reg.FindByDevice(10)
	if !ok || found.Name != "bedroom" {
		t.Errorf("FindByDevice(10) = %v, %v, want bedroom", found, ok)
	}

	if _, ok := reg.FindByDevice(99); ok {
		t.Error("FindByDevice(99) ok = true, want false")
	}

	name, ok := reg.RoomNameForDevice(10)
	if !ok || name != "bedroom" {
		t.Errorf("RoomNameForDevice(10) = %q, %v, want bedroom", name, ok)
	}
}

func TestRegistry_RemoveAll(t *testing.T) {
	notifier := &recordingNotifier{}
	reg := NewRegistry(notifier)
	reg.Add(New("a"))
	reg.Add(New("b"))

	reg.RemoveAll()
	if got := reg.Count(); got != 0 {
		t.Errorf("Count() after RemoveAll = %d, want 0", got)
	}
	removed := 0
	for _, c := range notifier.all() {
		if c == "a:removed" || c == "b:removed" {
			removed++
		}
	}
	if removed != 2 {
		t.Errorf("removal notifications = %d, want 2", removed)
	}
}

func TestRoom_Membership(t *testing.T) {
	r := New("office")

	r.AddMember(1)
	r.AddMember(1) // idempotent
	r.AddMember(2)
	if got := r.Count(); got != 2 {
		t.Fatalf("Count() = %d, want 2", got)
	}

	r.RemoveMember(1)
	if r.Contains(1) {
		t.Error("Contains(1) after removal = true, want false")
	}

	r.RemoveAllMembers()
	if got := r.Count(); got != 0 {
		t.Errorf("Count() after RemoveAllMembers = %d, want 0", got)
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	reg := NewRegistry(nil)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := New(string(rune('a' + i)))
			r.AddMember(device.Identifier(i))
			reg.Add(r)
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			reg.All()
			reg.FindByDevice(device.Identifier(i))
		}()
	}
	wg.Wait()

	if got := reg.Count(); got != 20 {
		t.Errorf("Count() = %d, want 20", got)
	}
}
