package automation

import (
	"context"
	"sync"
	"time"
)

// Logger defines the logging interface used by the automation package.
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

// Dispatcher runs fired time-automation actions asynchronously. The
// shared worker pool implements it.
type Dispatcher interface {
	// Submit enqueues a task, returning false if it was dropped.
	Submit(task func()) bool
}

// syncDispatcher runs tasks inline when no pool is wired.
type syncDispatcher struct{}

func (syncDispatcher) Submit(task func()) bool {
	task()
	return true
}

// Registry owns every registered automation and the minute sweep that
// fires the time-triggered ones.
//
// Automations are stored uniformly in registration order. Growth is
// append-only via Add; RemoveAll is the only removal. Concurrent Add
// calls during a sweep are safe: sweeps and event routing iterate a
// point-in-time snapshot.
//
// Thread Safety:
//   - All public methods are safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	automations []Automation

	// lastSweep is the time of day at which the previous sweep
	// concluded. Guarded by sweepMu, not mu: a sweep must not hold up
	// registration.
	sweepMu   sync.Mutex
	lastSweep time.Duration

	dispatcher Dispatcher
	clock      func() time.Time
	logger     Logger

	// onFired, when set, observes every fired automation with its
	// label and trigger ("schedule", "event" or "manual").
	onFired func(label, trigger string)
}

// NewRegistry creates an empty automation registry. Fired time
// automations are dispatched on the given dispatcher; pass nil to run
// them inline.
func NewRegistry(dispatcher Dispatcher) *Registry {
	if dispatcher == nil {
		dispatcher = syncDispatcher{}
	}
	return &Registry{
		dispatcher: dispatcher,
		clock:      time.Now,
		logger:     noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.mu.Lock()
	r.logger = logger
	r.mu.Unlock()
}

// SetClock overrides the wall clock. Tests use this to drive sweeps
// deterministically.
func (r *Registry) SetClock(clock func() time.Time) {
	r.mu.Lock()
	r.clock = clock
	r.mu.Unlock()
}

// SetFiredObserver registers a callback invoked once per fired
// automation. The hub wires the time-series exporter here.
func (r *Registry) SetFiredObserver(observer func(label, trigger string)) {
	r.mu.Lock()
	r.onFired = observer
	r.mu.Unlock()
}

// notifyFired reports a firing to the observer, if one is set.
func (r *Registry) notifyFired(label, trigger string) {
	r.mu.RLock()
	observer := r.onFired
	r.mu.RUnlock()

	if observer != nil {
		observer(label, trigger)
	}
}

// Add appends an automation to the registry.
func (r *Registry) Add(a Automation) {
	if a == nil {
		return
	}
	r.mu.Lock()
	r.automations = append(r.automations, a)
	r.mu.Unlock()
}

// RemoveAll removes every automation.
func (r *Registry) RemoveAll() {
	r.mu.Lock()
	r.automations = nil
	r.mu.Unlock()
}

// All returns a point-in-time snapshot of the automations in
// registration order.
func (r *Registry) All() []Automation {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make([]Automation, len(r.automations))
	copy(snapshot, r.automations)
	return snapshot
}

// Count returns the number of registered automations.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.automations)
}

// Perform invokes the first automation (in registration order) whose
// label equals the argument, synchronously on the calling goroutine.
// It reports whether an automation was found; an unknown label is a
// no-op.
//
// Used for manual triggers and for automations chaining into other
// automations by name. A failure inside the action propagates to the
// caller.
func (r *Registry) Perform(label string) bool {
	for _, a := range r.All() {
		if a.Label() == label {
			r.log().Debug("performing automation", "label", label)
			r.notifyFired(label, "manual")
			a.Perform()
			return true
		}
	}
	return false
}

// Sweep evaluates every time automation against the sweep window
// ending at now and fires the due ones onto the dispatcher.
//
// The window is open-low, closed-high: an automation fires iff
// lastSweep < nextDue <= currentSweep. That guarantees each due
// instant fires exactly once per day even when a sweep runs slightly
// late. When currentSweep < lastSweep the clock has wrapped past
// midnight, so the window restarts at midnight, catching automations
// due right after it.
//
// lastSweep advances to currentSweep unconditionally, fired or not.
func (r *Registry) Sweep(now time.Time) {
	currentSweep := TimeIntoDay(now)

	r.sweepMu.Lock()
	lastSweep := r.lastSweep
	if currentSweep < lastSweep {
		lastSweep = 0
	}
	r.lastSweep = currentSweep
	r.sweepMu.Unlock()

	automations := r.All()
	r.log().Debug("sweeping automations", "count", len(automations), "window_end", currentSweep.String())

	for _, a := range automations {
		timed, ok := a.(TimeAutomation)
		if !ok {
			continue
		}

		nextDue := timed.NextDue(now)
		if nextDue <= lastSweep || nextDue > currentSweep {
			continue
		}

		r.log().Debug("performing due automation", "label", a.Label())
		r.notifyFired(a.Label(), "schedule")
		r.dispatcher.Submit(a.Perform)
	}
}

// Run sweeps once per minute, aligned to minute boundaries, until the
// context is cancelled. Each sweep is independent: actions fired onto
// the dispatcher may still be running when the next sweep begins.
func (r *Registry) Run(ctx context.Context) {
	timer := time.NewTimer(time.Until(nextMinute(r.now())))
	defer timer.Stop()

	r.log().Info("automation scheduler started")
	for {
		select {
		case <-ctx.Done():
			r.log().Info("automation scheduler stopped")
			return
		case <-timer.C:
			r.Sweep(r.now())
			timer.Reset(time.Until(nextMinute(r.now())))
		}
	}
}

// nextMinute returns the start of the minute after t.
func nextMinute(t time.Time) time.Time {
	return t.Truncate(time.Minute).Add(time.Minute)
}

// now reads the configured clock under the read lock.
func (r *Registry) now() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.clock()
}

// log returns the current logger under the read lock.
func (r *Registry) log() Logger {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.logger
}
