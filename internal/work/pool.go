package work

import (
	"sync"
	"sync/atomic"
)

// Pool configuration constants.
const (
	// defaultWorkerCount is the number of goroutines servicing the queue.
	// Automation actions and registry notifications are expected to be
	// short, so a small pool keeps goroutine count bounded without
	// starving bursts of work.
	defaultWorkerCount = 4

	// defaultQueueSize is the task queue capacity. Submissions beyond
	// this are dropped rather than blocking the caller.
	defaultQueueSize = 256
)

// Logger defines the logging interface used by the Pool.
type Logger interface {
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Pool is a fixed-size worker pool with a bounded task queue.
//
// It services asynchronous units of work (time-automation firing,
// registry change notifications) so that callers never block on slow
// consumers. Tasks run unordered relative to each other, run to
// completion, and cannot be cancelled once submitted.
//
// Submission is non-blocking: when the queue is full the task is
// dropped and counted. Dropped work is acceptable for the workloads
// the pool serves — notifications are advisory and a missed automation
// action surfaces in the drop counter rather than deadlocking the hub.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Pool struct {
	tasks chan func()
	wg    sync.WaitGroup

	// mu guards closed and the send in Submit. Close takes the write
	// lock before closing tasks, so no Submit can be mid-send when the
	// channel closes.
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once

	// Statistics (atomic for performance)
	submitted atomic.Uint64
	dropped   atomic.Uint64

	logger   Logger
	loggerMu sync.RWMutex
}

// NewPool creates a pool with the given worker count and queue size
// and starts its workers. Zero or negative arguments select the
// package defaults.
func NewPool(workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = defaultWorkerCount
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	p := &Pool{
		tasks:  make(chan func(), queueSize),
		logger: noopLogger{},
	}

	for range workers {
		p.wg.Add(1)
		go p.worker()
	}

	return p
}

// SetLogger sets the logger for the pool.
func (p *Pool) SetLogger(logger Logger) {
	p.loggerMu.Lock()
	p.logger = logger
	p.loggerMu.Unlock()
}

// Submit enqueues a task for asynchronous execution.
//
// Returns false if the pool is closed or the queue is full; the task
// is dropped in both cases.
func (p *Pool) Submit(task func()) bool {
	if task == nil {
		return false
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return false
	}

	select {
	case p.tasks <- task:
		p.submitted.Add(1)
		return true
	default:
		p.dropped.Add(1)
		p.log().Warn("work pool queue full, task dropped", "dropped_total", p.dropped.Load())
		return false
	}
}

// Close stops accepting new tasks and waits for queued tasks to drain.
// Safe to call more than once.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.tasks)
		p.mu.Unlock()
	})
	p.wg.Wait()
}

// Dropped returns the number of tasks dropped due to a full queue.
func (p *Pool) Dropped() uint64 {
	return p.dropped.Load()
}

// Submitted returns the number of tasks accepted for execution.
func (p *Pool) Submitted() uint64 {
	return p.submitted.Load()
}

// worker drains the task queue until the pool is closed.
// A panicking task is logged and does not take the worker down.
func (p *Pool) worker() {
	defer p.wg.Done()

	for task := range p.tasks {
		p.run(task)
	}
}

// run executes a single task with panic recovery.
func (p *Pool) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			p.log().Error("panic in pooled task", "panic", r)
		}
	}()
	task()
}

// log returns the current logger under the read lock.
func (p *Pool) log() Logger {
	p.loggerMu.RLock()
	defer p.loggerMu.RUnlock()
	return p.logger
}
