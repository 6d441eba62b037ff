package device

import (
	"iter"
	"sync"
	"testing"
	"time"
)

// staticLight is an extension whose light capability is fixed by its
// type: it does not implement DynamicCapabilities.
type staticLight struct {
	id    Identifier
	store *CharacteristicStore
}

func newStaticLight(id Identifier) *staticLight {
	return &staticLight{id: id, store: NewCharacteristicStore()}
}

func (l *staticLight) Identifier() Identifier { return l.id }
func (l *staticLight) Label() string          { return "static light" }

func (l *staticLight) RecordValue(value RecordedValue, c Characteristic) {
	l.store.Insert(value, c)
}

func (l *staticLight) LatestValue(c Characteristic) (RecordedValue, bool) {
	return l.store.Latest(c)
}

func (l *staticLight) History(c Characteristic) iter.Seq[RecordedValue] {
	return l.store.History(c)
}

func (l *staticLight) TurnOnLight()                             {}
func (l *staticLight) TurnOffLight()                            {}
func (l *staticLight) RequestLightStatus()                      {}
func (l *staticLight) RecordLightStatus(LightStatus, time.Time) {}

// recordingInterface is a hub interface fake capturing notifications.
type recordingInterface struct {
	staticLight

	mu         sync.Mutex
	extensions []Identifier
	rooms      []string
}

func newRecordingInterface(id Identifier) *recordingInterface {
	return &recordingInterface{staticLight: staticLight{id: id, store: NewCharacteristicStore()}}
}

func (r *recordingInterface) ExtensionDidChange(id Identifier, _ Change) {
	r.mu.Lock()
	r.extensions = append(r.extensions, id)
	r.mu.Unlock()
}

func (r *recordingInterface) RoomDidChange(name string, _ Change) {
	r.mu.Lock()
	r.rooms = append(r.rooms, name)
	r.mu.Unlock()
}

func (r *recordingInterface) extensionNotifications() []Identifier {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Identifier(nil), r.extensions...)
}

func (r *recordingInterface) roomNotifications() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.rooms...)
}

func TestRegistry_AddFindRemove(t *testing.T) {
	reg := NewRegistry(nil)
	ext := NewHubExtension(42)

	reg.Add(ext)
	if got := reg.Count(); got != 1 {
		t.Fatalf("Count() = %d, want 1", got)
	}

	found, ok := reg.Find(42)
	if !ok {
		t.Fatal("Find(42) ok = false, want true")
	}
	if found.Identifier() != 42 {
		t.Errorf("Find(42).Identifier() = %d, want 42", found.Identifier())
	}

	reg.Remove(42)
	if _, ok := reg.Find(42); ok {
		t.Error("Find(42) after Remove ok = true, want false")
	}
}

func TestRegistry_AddDuplicateIsNoOp(t *testing.T) {
	reg := NewRegistry(nil)
	first := NewHubExtension(7)
	first.SetLabel("original")
	second := NewHubExtension(7)
	second.SetLabel("impostor")

	reg.Add(first)
	reg.Add(second)

	if got := reg.Count(); got != 1 {
		t.Fatalf("Count() = %d, want 1", got)
	}
	found, _ := reg.Find(7)
	if found.Label() != "original" {
		t.Errorf("Label() = %q, want the first registration to win", found.Label())
	}
}

func TestRegistry_RemoveUnknownIsNoOp(t *testing.T) {
	reg := NewRegistry(nil)
	iface := newRecordingInterface(1)
	reg.Add(iface)

	before := len(iface.extensionNotifications())
	reg.Remove(999)
	if got := len(iface.extensionNotifications()); got != before {
		t.Errorf("notifications after removing unknown id = %d, want %d", got, before)
	}
}

func TestRegistry_NotifiesHubInterfaces(t *testing.T) {
	reg := NewRegistry(nil) // inline dispatcher: notifications are synchronous
	iface := newRecordingInterface(1)
	reg.Add(iface)

	ext := NewHubExtension(50)
	reg.Add(ext)
	reg.Remove(50)

	got := iface.extensionNotifications()
	if len(got) != 2 {
		t.Fatalf("extension notifications = %d, want 2 (add and remove)", len(got))
	}
	for _, id := range got {
		if id != 50 {
			t.Errorf("notified identifier = %d, want 50", id)
		}
	}
}

func TestRegistry_NotifyRoom(t *testing.T) {
	reg := NewRegistry(nil)
	iface := newRecordingInterface(1)
	reg.Add(iface)

	reg.NotifyRoom("kitchen", ChangeUpdated)

	got := iface.roomNotifications()
	if len(got) != 1 || got[0] != "kitchen" {
		t.Errorf("room notifications = %v, want [kitchen]", got)
	}
}

func TestRegistry_RemoveAll(t *testing.T) {
	reg := NewRegistry(nil)
	for i := range 5 {
		reg.Add(NewHubExtension(Identifier(i + 1)))
	}

	reg.RemoveAll()
	if got := reg.Count(); got != 0 {
		t.Errorf("Count() after RemoveAll = %d, want 0", got)
	}
}

func TestQuery_HybridCapabilityRule(t *testing.T) {
	reg := NewRegistry(nil)

	static := newStaticLight(1)
	claimed := NewHubExtension(2)
	claimed.EnableSupport(CapabilityLightController)
	unclaimed := NewHubExtension(3) // implements the interface but claims nothing

	reg.Add(static)
	reg.Add(claimed)
	reg.Add(unclaimed)

	lights := reg.LightControllers()
	if len(lights) != 2 {
		t.Fatalf("LightControllers() = %d extensions, want 2", len(lights))
	}

	ids := make(map[Identifier]bool)
	for _, l := range lights {
		ids[l.(Extension).Identifier()] = true
	}
	if !ids[1] {
		t.Error("static extension excluded despite implementing the interface")
	}
	if !ids[2] {
		t.Error("claiming dynamic extension excluded")
	}
	if ids[3] {
		t.Error("non-claiming dynamic extension included")
	}
}

func TestQuery_CapabilityRevokedAtRuntime(t *testing.T) {
	reg := NewRegistry(nil)
	ext := NewHubExtension(9)
	ext.EnableSupport(CapabilitySwitchController)
	reg.Add(ext)

	if got := len(reg.Switches()); got != 1 {
		t.Fatalf("Switches() before revocation = %d, want 1", got)
	}

	ext.RemoveSupport(CapabilitySwitchController)
	if got := len(reg.Switches()); got != 0 {
		t.Errorf("Switches() after revocation = %d, want 0", got)
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	reg := NewRegistry(nil)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reg.Add(NewHubExtension(Identifier(i + 1)))
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			reg.All()
			reg.Count()
		}()
	}
	wg.Wait()

	if got := reg.Count(); got != 50 {
		t.Errorf("Count() = %d, want 50", got)
	}
}
