package hub

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hearthlabs/hearth-core/internal/automation"
	"github.com/hearthlabs/hearth-core/internal/device"
	"github.com/hearthlabs/hearth-core/internal/room"
)

// countingSink counts characteristic-change events.
type countingSink struct {
	events int
}

func (s *countingSink) CharacteristicDidChange(device.Extension, device.Characteristic) {
	s.events++
}

func TestCompositeSink_FanOutInOrder(t *testing.T) {
	var order []string
	first := sinkFunc(func(device.Extension, device.Characteristic) { order = append(order, "first") })
	second := sinkFunc(func(device.Extension, device.Characteristic) { order = append(order, "second") })

	sink := NewCompositeSink(first, nil, second)
	sink.CharacteristicDidChange(device.NewHubExtension(1), device.CharacteristicLightStatus)

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("delivery order = %v, want [first second]", order)
	}
}

func TestCompositeSink_AddAfterConstruction(t *testing.T) {
	sink := NewCompositeSink()
	late := &countingSink{}

	sink.CharacteristicDidChange(device.NewHubExtension(1), device.CharacteristicLightStatus)
	sink.Add(late)
	sink.Add(nil) // ignored
	sink.CharacteristicDidChange(device.NewHubExtension(1), device.CharacteristicLightStatus)

	if late.events != 1 {
		t.Errorf("late sink events = %d, want 1 (only after attachment)", late.events)
	}
}

// sinkFunc adapts a function to device.EventSink.
type sinkFunc func(device.Extension, device.Characteristic)

func (f sinkFunc) CharacteristicDidChange(ext device.Extension, c device.Characteristic) {
	f(ext, c)
}

func TestNumericValue(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		want   float64
		wantOK bool
	}{
		{"light on", device.LightOn, 1, true},
		{"brightness", device.Brightness(0.4), 0.4, true},
		{"mireds", device.Mireds(366), 366, true},
		{"ambient light", device.AmbientLight(120.5), 120.5, true},
		{"switch off", device.SwitchOff, 0, true},
		{"plain float", 3.5, 3.5, true},
		{"string", "on", 0, false},
		{"nil", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := numericValue(tt.value)
			if ok != tt.wantOK {
				t.Fatalf("numericValue() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("numericValue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNew_WiresEventPathToAutomations(t *testing.T) {
	core := New(Options{}) // nil pool: notifications run inline

	fired := 0
	core.Automations.Add(automation.NewEventAutomation("Any Light", device.CharacteristicLightStatus,
		automation.AnyExtension(), func(device.Extension) { fired++ }))

	ext := device.NewHubExtension(1)
	ext.SetEventSink(core.EventSink())
	core.Devices.Add(ext)

	ext.RecordLightStatus(device.LightOn, time.Now())
	if fired != 1 {
		t.Errorf("event automation fired = %d, want 1", fired)
	}
}

func TestNew_RoomDomainResolvesThroughRoomRegistry(t *testing.T) {
	core := New(Options{})

	fired := 0
	core.Automations.Add(automation.NewEventAutomation("Kitchen", device.CharacteristicSwitchState,
		automation.InRoom("kitchen"), func(device.Extension) { fired++ }))

	ext := device.NewHubExtension(5)
	ext.SetEventSink(core.EventSink())
	core.Devices.Add(ext)

	kitchen := room.New("kitchen")
	kitchen.AddMember(5)
	core.Rooms.Add(kitchen)

	ext.RecordSwitchState(device.SwitchOn, time.Now())
	if fired != 1 {
		t.Errorf("room-domain automation fired = %d, want 1", fired)
	}
}

func TestHub_AddSinkReceivesSubsequentEvents(t *testing.T) {
	core := New(Options{})
	late := &countingSink{}
	core.AddSink(late)

	ext := device.NewHubExtension(2)
	ext.SetEventSink(core.EventSink())
	ext.RecordLightStatus(device.LightOff, time.Now())

	if late.events != 1 {
		t.Errorf("late sink events = %d, want 1", late.events)
	}
}

// openSnapshots creates a snapshot repository over a throwaway SQLite
// file.
func openSnapshots(t *testing.T) *room.SQLiteSnapshotRepository {
	t.Helper()

	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	repo := room.NewSQLiteSnapshotRepository(db)
	if err := repo.Init(context.Background()); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	return repo
}

func TestHub_RoomLifecyclePersists(t *testing.T) {
	snapshots := openSnapshots(t)
	ctx := context.Background()

	core := New(Options{Snapshots: snapshots})
	if err := core.UpsertRoom(ctx, "study", []device.Identifier{1, 2}); err != nil {
		t.Fatalf("UpsertRoom() error = %v", err)
	}

	// A second hub over the same repository sees the room.
	restarted := New(Options{Snapshots: snapshots})
	if err := restarted.LoadRooms(ctx); err != nil {
		t.Fatalf("LoadRooms() error = %v", err)
	}
	loaded, ok := restarted.Rooms.FindByName("study")
	if !ok {
		t.Fatal("room not restored after restart")
	}
	if !loaded.Contains(1) || !loaded.Contains(2) {
		t.Error("restored room missing members")
	}

	// Removal clears both registry and snapshot.
	if err := restarted.RemoveRoom(ctx, "study"); err != nil {
		t.Fatalf("RemoveRoom() error = %v", err)
	}
	final := New(Options{Snapshots: snapshots})
	if err := final.LoadRooms(ctx); err != nil {
		t.Fatalf("LoadRooms() error = %v", err)
	}
	if final.Rooms.Count() != 0 {
		t.Errorf("rooms after removal = %d, want 0", final.Rooms.Count())
	}
}

func TestHub_UpsertRoomReplacesMembership(t *testing.T) {
	core := New(Options{})
	ctx := context.Background()

	if err := core.UpsertRoom(ctx, "lounge", []device.Identifier{1}); err != nil {
		t.Fatalf("UpsertRoom() error = %v", err)
	}
	if err := core.UpsertRoom(ctx, "lounge", []device.Identifier{2}); err != nil {
		t.Fatalf("UpsertRoom() error = %v", err)
	}

	lounge, _ := core.Rooms.FindByName("lounge")
	if lounge.Contains(1) || !lounge.Contains(2) {
		t.Error("upsert did not replace membership wholesale")
	}
}

func TestHub_RoomChangeNotifiesHubInterfaces(t *testing.T) {
	core := New(Options{})

	panel := device.NewHubExtension(99)
	panel.EnableSupport(device.CapabilityHubInterface)
	messenger := &recordingMessenger{}
	panel.SetMessenger(messenger)
	core.Devices.Add(panel)

	if err := core.UpsertRoom(context.Background(), "porch", nil); err != nil {
		t.Fatalf("UpsertRoom() error = %v", err)
	}

	if messenger.count == 0 {
		t.Error("hub interface received no room change mirror")
	}
}

// recordingMessenger counts outbound sends.
type recordingMessenger struct {
	count int
}

func (m *recordingMessenger) Send(device.Identifier, uint8, uint8, []byte, time.Duration) error {
	m.count++
	return nil
}
