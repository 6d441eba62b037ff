package transport

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/hearthlabs/hearth-core/internal/infrastructure/mqtt"
)

// Logger defines the logging interface used by the transport package.
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

// ServiceKey identifies a handler slot: one service within one package.
type ServiceKey struct {
	Package uint8
	Service uint8
}

// String implements fmt.Stringer.
func (k ServiceKey) String() string {
	return fmt.Sprintf("%d/%d", k.Package, k.Service)
}

// Handler processes the payload of one inbound report. The payload is
// the raw service data; handlers decode the reporting extension's
// identifier and value from it.
type Handler func(payload []byte) error

// Subscriber is the broker surface the dispatcher needs for wiring
// itself to the report topics.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Dispatcher routes inbound extension reports to per-service handlers.
//
// Handlers are registered against a (package, service) key before
// Start. A report for an unregistered key is logged and dropped: a
// newer extension speaking services this core does not know must not
// take the report path down.
//
// Thread Safety:
//   - Register and Dispatch are safe for concurrent use, though
//     registration normally completes before Start wires the broker.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[ServiceKey]Handler

	logger Logger
}

// NewDispatcher creates a dispatcher with no handlers registered.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		handlers: make(map[ServiceKey]Handler),
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the dispatcher.
func (d *Dispatcher) SetLogger(logger Logger) {
	d.mu.Lock()
	d.logger = logger
	d.mu.Unlock()
}

// Register installs the handler for a (package, service) pair,
// replacing any previous handler for the same pair.
func (d *Dispatcher) Register(pkg, service uint8, handler Handler) {
	d.mu.Lock()
	d.handlers[ServiceKey{Package: pkg, Service: service}] = handler
	d.mu.Unlock()
}

// HandlerCount returns the number of registered handlers.
func (d *Dispatcher) HandlerCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.handlers)
}

// Start subscribes the dispatcher to all report topics on the broker.
//
// Returns:
//   - error: If the subscription fails
func (d *Dispatcher) Start(sub Subscriber) error {
	return sub.Subscribe(mqtt.Topics{}.AllReports(), defaultCommandQoS, func(topic string, payload []byte) error {
		return d.DispatchTopic(topic, payload)
	})
}

// DispatchTopic parses a report topic and routes the payload to the
// registered handler.
func (d *Dispatcher) DispatchTopic(topic string, payload []byte) error {
	key, err := ParseReportTopic(topic)
	if err != nil {
		d.log().Warn("dropping report on malformed topic", "topic", topic, "error", err)
		return err
	}
	return d.Dispatch(key, payload)
}

// Dispatch routes a report payload to the handler registered for the
// key. Unknown keys are logged at debug level and dropped.
func (d *Dispatcher) Dispatch(key ServiceKey, payload []byte) error {
	d.mu.RLock()
	handler, ok := d.handlers[key]
	d.mu.RUnlock()

	if !ok {
		d.log().Debug("no handler for report, dropping", "service", key.String())
		return fmt.Errorf("%w: %s", ErrNoHandler, key)
	}

	if err := handler(payload); err != nil {
		d.log().Warn("report handler failed", "service", key.String(), "error", err)
		return err
	}
	return nil
}

func (d *Dispatcher) log() Logger {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.logger
}

// ParseReportTopic extracts the (package, service) key from a report
// topic of the form hearth/report/{package}/{service}.
func ParseReportTopic(topic string) (ServiceKey, error) {
	rest, ok := strings.CutPrefix(topic, mqtt.TopicPrefixReport+"/")
	if !ok {
		return ServiceKey{}, fmt.Errorf("%w: %q", ErrMalformedTopic, topic)
	}

	parts := strings.Split(rest, "/")
	if len(parts) != 2 {
		return ServiceKey{}, fmt.Errorf("%w: %q", ErrMalformedTopic, topic)
	}

	pkg, err := strconv.ParseUint(parts[0], 10, 8)
	if err != nil {
		return ServiceKey{}, fmt.Errorf("%w: package %q", ErrMalformedTopic, parts[0])
	}
	service, err := strconv.ParseUint(parts[1], 10, 8)
	if err != nil {
		return ServiceKey{}, fmt.Errorf("%w: service %q", ErrMalformedTopic, parts[1])
	}

	return ServiceKey{Package: uint8(pkg), Service: uint8(service)}, nil
}
