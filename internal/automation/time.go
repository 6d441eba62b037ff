package automation

import (
	"math"
	"time"
)

// NotDueToday is the sentinel a time automation returns from NextDue
// when it does not apply today (wrong weekday, for example). It is
// later than any time of day, so it can never fall inside a sweep
// window.
const NotDueToday = time.Duration(math.MaxInt64)

// TimeAutomation is an automation that executes at points in time.
type TimeAutomation interface {
	Automation

	// NextDue returns the time of day (duration since local midnight)
	// at which the automation next requires to perform on the day of
	// now, or NotDueToday when it does not apply.
	//
	// NextDue must return (near) instantly: the scheduler evaluates
	// every automation inside one sweep, and a blocking NextDue — say,
	// fetching sunset times over HTTP — would delay the whole sweep
	// and potentially subsequent ones. Resolve slow inputs ahead of
	// time and answer from cached state.
	NextDue(now time.Time) time.Duration
}

// Clock builds a time of day from hours, minutes and seconds.
func Clock(hour, minute, second int) time.Duration {
	return time.Duration(hour)*time.Hour +
		time.Duration(minute)*time.Minute +
		time.Duration(second)*time.Second
}

// TimeIntoDay returns how far into its calendar day the instant is, in
// the instant's location.
func TimeIntoDay(t time.Time) time.Duration {
	return Clock(t.Hour(), t.Minute(), t.Second()) + time.Duration(t.Nanosecond())
}

// EveryDay returns the full weekday set.
func EveryDay() []time.Weekday {
	return []time.Weekday{
		time.Sunday, time.Monday, time.Tuesday, time.Wednesday,
		time.Thursday, time.Friday, time.Saturday,
	}
}

// DailyAutomation executes at a fixed time of day on a set of
// weekdays.
type DailyAutomation struct {
	label  string
	at     time.Duration
	days   map[time.Weekday]struct{}
	action func()
}

// NewDailyAutomation creates an automation that performs at the given
// time of day on the given weekdays. An empty day list means every
// day.
func NewDailyAutomation(label string, at time.Duration, days []time.Weekday, action func()) *DailyAutomation {
	if len(days) == 0 {
		days = EveryDay()
	}
	daySet := make(map[time.Weekday]struct{}, len(days))
	for _, d := range days {
		daySet[d] = struct{}{}
	}
	return &DailyAutomation{
		label:  label,
		at:     at,
		days:   daySet,
		action: action,
	}
}

// Label returns the label of the automation.
func (d *DailyAutomation) Label() string {
	return d.label
}

// NextDue implements TimeAutomation.
func (d *DailyAutomation) NextDue(now time.Time) time.Duration {
	if _, ok := d.days[now.Weekday()]; !ok {
		return NotDueToday
	}
	return d.at
}

// Perform executes the automation's action.
func (d *DailyAutomation) Perform() {
	d.action()
}
