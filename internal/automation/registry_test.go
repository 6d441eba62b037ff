package automation

import (
	"testing"
	"time"

	"github.com/hearthlabs/hearth-core/internal/device"
)

// at builds a local time on an arbitrary reference day.
func at(hour, minute, second int) time.Time {
	return time.Date(2026, 3, 2, hour, minute, second, 0, time.UTC) // a Monday
}

func TestSweep_FiresDueAutomation(t *testing.T) {
	reg := NewRegistry(nil) // inline dispatcher

	fired := 0
	reg.Add(NewDailyAutomation("Morning Light", Clock(7, 30, 0), nil, func() { fired++ }))

	reg.Sweep(at(7, 29, 0))
	if fired != 0 {
		t.Fatalf("fired before due time: %d", fired)
	}

	reg.Sweep(at(7, 30, 0))
	if fired != 1 {
		t.Fatalf("fired = %d at due time, want 1", fired)
	}

	reg.Sweep(at(7, 31, 0))
	if fired != 1 {
		t.Errorf("fired = %d after due time, want still 1", fired)
	}
}

func TestSweep_LateSweepStillFires(t *testing.T) {
	reg := NewRegistry(nil)

	fired := 0
	reg.Add(NewDailyAutomation("Evening Light", Clock(18, 0, 0), nil, func() { fired++ }))

	reg.Sweep(at(17, 59, 0))
	// The scheduler stalled; the next sweep lands well past the due
	// instant. The window covers the gap.
	reg.Sweep(at(18, 3, 30))

	if fired != 1 {
		t.Errorf("fired = %d after late sweep, want 1", fired)
	}
}

func TestSweep_WindowIsOpenLowClosedHigh(t *testing.T) {
	reg := NewRegistry(nil)

	fired := 0
	reg.Add(NewDailyAutomation("Boundary", Clock(12, 0, 0), nil, func() { fired++ }))

	// Due instant exactly at a sweep: closed-high includes it.
	reg.Sweep(at(11, 59, 0))
	reg.Sweep(at(12, 0, 0))
	if fired != 1 {
		t.Fatalf("fired = %d, want 1 (window closed-high)", fired)
	}

	// A sweep landing exactly on the previous window end must not
	// re-fire: open-low excludes it.
	reg.Sweep(at(12, 0, 0))
	if fired != 1 {
		t.Errorf("fired = %d after repeated boundary sweep, want 1", fired)
	}
}

func TestSweep_MidnightWrap(t *testing.T) {
	reg := NewRegistry(nil)

	fired := 0
	reg.Add(NewDailyAutomation("After Midnight", Clock(0, 0, 30), nil, func() { fired++ }))

	// Last sweep of the previous day, then the first one after the
	// clock wrapped. The window restarts at midnight and must catch
	// the 00:00:30 automation.
	reg.Sweep(at(23, 59, 0))
	reg.Sweep(at(0, 1, 0))

	if fired != 1 {
		t.Errorf("fired = %d across midnight wrap, want 1", fired)
	}
}

func TestSweep_WeekdayFilter(t *testing.T) {
	reg := NewRegistry(nil)

	fired := 0
	reg.Add(NewDailyAutomation("Weekday Wakeup", Clock(6, 45, 0), []time.Weekday{time.Monday}, func() { fired++ }))

	// Reference day is a Monday.
	reg.Sweep(at(6, 44, 0))
	reg.Sweep(at(6, 45, 0))
	if fired != 1 {
		t.Fatalf("fired = %d on Monday, want 1", fired)
	}

	// Same times on the following Tuesday.
	tuesday := time.Date(2026, 3, 3, 6, 44, 0, 0, time.UTC)
	reg.Sweep(tuesday)
	reg.Sweep(tuesday.Add(time.Minute))
	if fired != 1 {
		t.Errorf("fired = %d on Tuesday, want still 1", fired)
	}
}

func TestSweep_IgnoresNonTimeAutomations(t *testing.T) {
	reg := NewRegistry(nil)

	fired := 0
	reg.Add(NewFixedAutomation("Manual Only", func() { fired++ }))

	reg.Sweep(at(0, 0, 0))
	reg.Sweep(at(23, 59, 0))
	if fired != 0 {
		t.Errorf("fixed automation fired %d times from sweep, want 0", fired)
	}
}

func TestNotDueToday_NeverInsideWindow(t *testing.T) {
	if NotDueToday <= Clock(23, 59, 59) {
		t.Error("NotDueToday must be later than any time of day")
	}
}

func TestPerform_FirstMatchWins(t *testing.T) {
	reg := NewRegistry(nil)

	var order []string
	reg.Add(NewFixedAutomation("Scene", func() { order = append(order, "first") }))
	reg.Add(NewFixedAutomation("Scene", func() { order = append(order, "second") }))

	if !reg.Perform("Scene") {
		t.Fatal("Perform(Scene) = false, want true")
	}
	if len(order) != 1 || order[0] != "first" {
		t.Errorf("performed = %v, want only the first registration", order)
	}
}

func TestPerform_UnknownLabel(t *testing.T) {
	reg := NewRegistry(nil)
	if reg.Perform("No Such Automation") {
		t.Error("Perform(unknown) = true, want false")
	}
}

func TestPerform_EventAutomationIsNoOp(t *testing.T) {
	reg := NewRegistry(nil)

	fired := 0
	reg.Add(NewEventAutomation("Motion Light", device.CharacteristicAmbientLight, AnyExtension(), func(device.Extension) { fired++ }))

	// Found by label, but an event automation cannot run without its
	// triggering extension.
	if !reg.Perform("Motion Light") {
		t.Error("Perform() = false, want true (label exists)")
	}
	if fired != 0 {
		t.Errorf("event automation action ran %d times from Perform, want 0", fired)
	}
}

func TestFiredObserver_SeesEveryTrigger(t *testing.T) {
	reg := NewRegistry(nil)
	router := NewRouter(reg, &fakeRoomFinder{rooms: map[device.Identifier]string{}})

	type firing struct{ label, trigger string }
	var fired []firing
	reg.SetFiredObserver(func(label, trigger string) {
		fired = append(fired, firing{label, trigger})
	})

	reg.Add(NewDailyAutomation("Wakeup", Clock(7, 0, 0), nil, func() {}))
	reg.Add(NewFixedAutomation("Movie Night", func() {}))
	reg.Add(NewEventAutomation("Porch", device.CharacteristicSwitchState, AnyExtension(),
		func(device.Extension) {}))

	reg.Sweep(at(6, 59, 0))
	reg.Sweep(at(7, 0, 0))
	reg.Perform("Movie Night")
	router.CharacteristicDidChange(&testExtension{id: 3}, device.CharacteristicSwitchState)

	want := []firing{
		{"Wakeup", "schedule"},
		{"Movie Night", "manual"},
		{"Porch", "event"},
	}
	if len(fired) != len(want) {
		t.Fatalf("observed firings = %v, want %v", fired, want)
	}
	for i := range want {
		if fired[i] != want[i] {
			t.Errorf("firing %d = %v, want %v", i, fired[i], want[i])
		}
	}
}

func TestFiredObserver_SkippedAutomationsUnreported(t *testing.T) {
	reg := NewRegistry(nil)
	router := NewRouter(reg, &fakeRoomFinder{rooms: map[device.Identifier]string{}})

	observed := 0
	reg.SetFiredObserver(func(string, string) { observed++ })

	reg.Add(NewEventAutomation("Kitchen Only", device.CharacteristicSwitchState, InRoom("kitchen"),
		func(device.Extension) {}))

	// Unassigned extension: the room domain never matches, so nothing
	// fires and nothing is observed.
	router.CharacteristicDidChange(&testExtension{id: 9}, device.CharacteristicSwitchState)
	reg.Perform("No Such Label")

	if observed != 0 {
		t.Errorf("observed firings = %d, want 0", observed)
	}
}

func TestRegistry_AddAndRemoveAll(t *testing.T) {
	reg := NewRegistry(nil)
	reg.Add(nil) // ignored
	reg.Add(NewFixedAutomation("A", func() {}))
	reg.Add(NewFixedAutomation("B", func() {}))

	if got := reg.Count(); got != 2 {
		t.Fatalf("Count() = %d, want 2", got)
	}

	reg.RemoveAll()
	if got := reg.Count(); got != 0 {
		t.Errorf("Count() after RemoveAll = %d, want 0", got)
	}
}

func TestTimeIntoDay(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want time.Duration
	}{
		{"midnight", at(0, 0, 0), 0},
		{"morning", at(7, 30, 15), Clock(7, 30, 15)},
		{"end of day", at(23, 59, 59), Clock(23, 59, 59)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TimeIntoDay(tt.t); got != tt.want {
				t.Errorf("TimeIntoDay() = %v, want %v", got, tt.want)
			}
		})
	}
}
