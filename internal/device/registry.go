package device

import "sync"

// Logger defines the logging interface used by the device package.
// This allows different logging implementations to be used.
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

// Dispatcher runs notification work asynchronously. The shared worker
// pool implements it; a synchronous stand-in is used in tests.
type Dispatcher interface {
	// Submit enqueues a task, returning false if it was dropped.
	Submit(task func()) bool
}

// syncDispatcher runs tasks inline. It is the fallback when no pool is
// wired, keeping the registry usable in isolation.
type syncDispatcher struct{}

func (syncDispatcher) Submit(task func()) bool {
	task()
	return true
}

// Registry is the thread-safe set of extensions known to the hub,
// keyed by identifier, preserving registration order for iteration.
//
// Mutations are serialized through a single mutex. After each mutation
// completes and the lock is released, a change notification is
// dispatched to every currently-registered hub interface on the
// dispatcher, so a slow interface can never block registry mutation.
// Notifications may be observed out of mutation order, but never
// before the mutation is visible to registry reads.
//
// Thread Safety:
//   - All public methods are safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	extensions []Extension

	dispatcher Dispatcher
	logger     Logger
}

// NewRegistry creates an empty extension registry. Notifications run
// on the given dispatcher; pass nil to run them inline.
func NewRegistry(dispatcher Dispatcher) *Registry {
	if dispatcher == nil {
		dispatcher = syncDispatcher{}
	}
	return &Registry{
		dispatcher: dispatcher,
		logger:     noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.mu.Lock()
	r.logger = logger
	r.mu.Unlock()
}

// Add registers an extension. Adding an identifier that is already
// registered is a no-op: the existing registration wins and no
// notification fires.
func (r *Registry) Add(ext Extension) {
	r.mu.Lock()
	for _, existing := range r.extensions {
		if existing.Identifier() == ext.Identifier() {
			r.mu.Unlock()
			return
		}
	}
	r.extensions = append(r.extensions, ext)
	logger := r.logger
	r.mu.Unlock()

	logger.Info("extension registered", "extension", uint64(ext.Identifier()))
	r.notifyExtension(ext.Identifier(), ChangeUpdated)
}

// Remove deregisters the extension with the given identifier. Removing
// an unknown identifier is a no-op and fires no notification.
func (r *Registry) Remove(id Identifier) {
	r.mu.Lock()
	removed := false
	kept := r.extensions[:0]
	for _, ext := range r.extensions {
		if ext.Identifier() == id {
			removed = true
			continue
		}
		kept = append(kept, ext)
	}
	r.extensions = kept
	logger := r.logger
	r.mu.Unlock()

	if !removed {
		return
	}
	logger.Info("extension deregistered", "extension", uint64(id))
	r.notifyExtension(id, ChangeRemoved)
}

// RemoveAll deregisters every extension, firing one removal
// notification per extension.
func (r *Registry) RemoveAll() {
	for _, ext := range r.All() {
		r.Remove(ext.Identifier())
	}
}

// Find returns the extension with the given identifier.
func (r *Registry) Find(id Identifier) (Extension, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, ext := range r.extensions {
		if ext.Identifier() == id {
			return ext, true
		}
	}
	return nil, false
}

// Contains reports whether an extension with the same identifier is
// registered.
func (r *Registry) Contains(ext Extension) bool {
	_, ok := r.Find(ext.Identifier())
	return ok
}

// All returns a point-in-time snapshot of every registered extension,
// in registration order. The snapshot is safe to iterate without
// holding the registry lock.
func (r *Registry) All() []Extension {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make([]Extension, len(r.extensions))
	copy(snapshot, r.extensions)
	return snapshot
}

// Count returns the number of registered extensions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.extensions)
}

// Query returns every registered extension that implements the
// capability interface T and, when the extension supports dynamic
// capability introspection, currently claims the capability tag.
//
// Extensions without dynamic introspection are included on the
// interface check alone: static support is assumed permanent. The
// returned views are valid registry-owned extensions; callers must not
// retain them beyond the current operation.
func Query[T any](r *Registry, capability Capability) []T {
	var matches []T
	for _, ext := range r.All() {
		impl, ok := any(ext).(T)
		if !ok {
			continue
		}
		if dyn, ok := any(ext).(DynamicCapabilities); ok && !dyn.ConformsTo(capability) {
			continue
		}
		matches = append(matches, impl)
	}
	return matches
}

// LightControllers returns all extensions currently acting as lights.
func (r *Registry) LightControllers() []LightController {
	return Query[LightController](r, CapabilityLightController)
}

// LightBrightnessControllers returns all extensions currently acting
// as dimmable lights.
func (r *Registry) LightBrightnessControllers() []LightBrightnessController {
	return Query[LightBrightnessController](r, CapabilityLightBrightnessController)
}

// LightTemperatureControllers returns all extensions currently acting
// as colour-temperature lights.
func (r *Registry) LightTemperatureControllers() []LightTemperatureController {
	return Query[LightTemperatureController](r, CapabilityLightTemperatureController)
}

// AmbientLightSensors returns all extensions currently acting as
// ambient light sensors.
func (r *Registry) AmbientLightSensors() []AmbientLightSensor {
	return Query[AmbientLightSensor](r, CapabilityAmbientLightSensor)
}

// Switches returns all extensions currently acting as switches.
func (r *Registry) Switches() []SwitchController {
	return Query[SwitchController](r, CapabilitySwitchController)
}

// HubInterfaces returns all extensions currently acting as hub
// interfaces.
func (r *Registry) HubInterfaces() []HubInterface {
	return Query[HubInterface](r, CapabilityHubInterface)
}

// notifyExtension fans an extension change out to every hub interface
// registered at notification time. Each delivery is an independent
// unit of work on the dispatcher.
func (r *Registry) notifyExtension(id Identifier, change Change) {
	for _, iface := range r.HubInterfaces() {
		r.dispatcher.Submit(func() {
			iface.ExtensionDidChange(id, change)
		})
	}
}

// NotifyRoom fans a room change out to every hub interface. The room
// registry calls this after its own mutations; rooms live in a
// separate package and notify panels through the device registry.
func (r *Registry) NotifyRoom(name string, change Change) {
	for _, iface := range r.HubInterfaces() {
		r.dispatcher.Submit(func() {
			iface.RoomDidChange(name, change)
		})
	}
}
