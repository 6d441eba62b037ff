package transport

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/hearthlabs/hearth-core/internal/device"
	"github.com/hearthlabs/hearth-core/internal/infrastructure/mqtt"
)

// Outbox queue constants.
const (
	// defaultOutboxSize is the queued-message capacity. Submissions
	// beyond this are dropped rather than blocking the caller.
	defaultOutboxSize = 128

	// defaultCommandQoS is the MQTT QoS for command publishes.
	defaultCommandQoS = 1
)

// Publisher is the broker surface the outbox needs. The infrastructure
// MQTT client implements it; tests substitute a recorder.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	IsConnected() bool
}

// Outbox is the outbound command path from the hub to extensions.
//
// Send enqueues without blocking and a single sender goroutine drains
// the queue to the broker, so a slow or disconnected broker never
// stalls automation actions or API handlers. Messages that expire
// while queued are dropped and counted rather than delivered late.
//
// Outbox implements device.Messenger.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Outbox struct {
	queue     chan Message
	publisher Publisher

	wg sync.WaitGroup

	// mu guards closed and the sends in Send/Enqueue. Close takes the
	// write lock before closing queue, so no enqueue can be mid-send
	// when the channel closes.
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once

	// Statistics (atomic for performance)
	sent    atomic.Uint64
	dropped atomic.Uint64
	expired atomic.Uint64

	logger   Logger
	loggerMu sync.RWMutex
}

// NewOutbox creates an outbox publishing to the given broker client
// and starts its sender goroutine. A zero or negative queueSize
// selects the package default.
func NewOutbox(publisher Publisher, queueSize int) *Outbox {
	if queueSize <= 0 {
		queueSize = defaultOutboxSize
	}

	o := &Outbox{
		queue:     make(chan Message, queueSize),
		publisher: publisher,
		logger:    noopLogger{},
	}

	o.wg.Add(1)
	go o.sender()

	return o
}

// SetLogger sets the logger for the outbox.
func (o *Outbox) SetLogger(logger Logger) {
	o.loggerMu.Lock()
	o.logger = logger
	o.loggerMu.Unlock()
}

func (o *Outbox) log() Logger {
	o.loggerMu.RLock()
	defer o.loggerMu.RUnlock()
	return o.logger
}

// Send implements device.Messenger. It wraps the service payload in a
// Message and enqueues it without blocking. A full queue or a closed
// outbox drops the message and returns ErrOutboxFull or ErrOutboxClosed.
func (o *Outbox) Send(to device.Identifier, pkg, service uint8, payload []byte, ttl time.Duration) error {
	m := NewMessage(to, ServiceBundle{Package: pkg, Service: service, Data: payload}, ttl)

	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.closed {
		return ErrOutboxClosed
	}

	select {
	case o.queue <- m:
		return nil
	default:
		o.dropped.Add(1)
		o.log().Warn("outbox full, command dropped",
			"message_id", m.ID,
			"extension", uint64(to),
			"bundle", m.Bundle.String(),
		)
		return ErrOutboxFull
	}
}

// Enqueue queues an already-built message. It follows the same
// non-blocking contract as Send.
func (o *Outbox) Enqueue(m Message) error {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.closed {
		return ErrOutboxClosed
	}

	select {
	case o.queue <- m:
		return nil
	default:
		o.dropped.Add(1)
		return ErrOutboxFull
	}
}

// sender drains the queue to the broker until the outbox closes.
func (o *Outbox) sender() {
	defer o.wg.Done()

	for m := range o.queue {
		o.deliver(m)
	}
}

// deliver publishes one message, dropping it if it has expired.
func (o *Outbox) deliver(m Message) {
	if m.Expired(time.Now()) {
		o.expired.Add(1)
		o.log().Debug("message expired before delivery",
			"message_id", m.ID,
			"extension", uint64(m.To),
		)
		return
	}

	topic := mqtt.Topics{}.ExtensionCommand(uint64(m.To), m.Bundle.Package, m.Bundle.Service)
	if err := o.publisher.Publish(topic, m.Bundle.Data, defaultCommandQoS, false); err != nil {
		o.dropped.Add(1)
		o.log().Warn("publishing command failed",
			"message_id", m.ID,
			"topic", topic,
			"error", err,
		)
		return
	}

	o.sent.Add(1)
}

// Close stops the sender after draining queued messages. Further Send
// calls return ErrOutboxClosed. Safe to call more than once.
func (o *Outbox) Close() {
	o.closeOnce.Do(func() {
		o.mu.Lock()
		o.closed = true
		close(o.queue)
		o.mu.Unlock()
		o.wg.Wait()
	})
}

// Stats returns cumulative counters: messages delivered to the broker,
// messages dropped (queue full or publish failure), and messages that
// expired while queued.
func (o *Outbox) Stats() (sent, dropped, expired uint64) {
	return o.sent.Load(), o.dropped.Load(), o.expired.Load()
}
