// Package pool provides a bounded worker pool that applies backpressure by
// running overflow tasks on the submitting goroutine.
package pool

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/fwojciec/shelf"
)

// Ensure Pool implements shelf.Executor at compile time.
var _ shelf.Executor = (*Pool)(nil)

// Default pool sizing.
const (
	DefaultCoreSize      = 10
	DefaultMaxSize       = 50
	DefaultQueueCapacity = 1000
)

// Pool runs tasks on up to CoreSize long-lived workers. Tasks beyond that
// wait in a bounded queue; when the queue is full, extra workers are
// started up to MaxSize and exit once the queue drains. When every worker
// is busy and the queue is full, Submit runs the task itself.
type Pool struct {
	coreSize int
	maxSize  int
	logger   *slog.Logger

	tasks chan func()

	mu      sync.Mutex
	workers int
	closed  bool
	wg      sync.WaitGroup
}

// Option configures a Pool.
type Option func(*Pool)

// WithCoreSize sets the number of long-lived workers.
func WithCoreSize(n int) Option {
	return func(p *Pool) {
		p.coreSize = n
	}
}

// WithMaxSize sets the upper bound on concurrent workers.
func WithMaxSize(n int) Option {
	return func(p *Pool) {
		p.maxSize = n
	}
}

// WithLogger sets the logger used to report panicking tasks.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pool) {
		p.logger = logger
	}
}

// New creates a Pool whose queue holds up to queueCapacity tasks.
func New(queueCapacity int, opts ...Option) *Pool {
	p := &Pool{
		coreSize: DefaultCoreSize,
		maxSize:  DefaultMaxSize,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.coreSize = max(p.coreSize, 1)
	p.maxSize = max(p.maxSize, p.coreSize)
	p.tasks = make(chan func(), max(queueCapacity, 0))
	return p
}

// Submit implements shelf.Executor. After Close, tasks run on the caller.
func (p *Pool) Submit(task func()) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.run(task)
		return
	}

	if p.workers < p.coreSize {
		p.spawn(task, true)
		p.mu.Unlock()
		return
	}

	select {
	case p.tasks <- task:
		p.mu.Unlock()
		return
	default:
	}

	if p.workers < p.maxSize {
		p.spawn(task, false)
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	p.run(task)
}

// Close stops accepting work, waits for queued and running tasks to finish,
// and releases all workers.
func (p *Pool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
	return nil
}

// spawn starts a worker with its first task. Must be called with mu held.
func (p *Pool) spawn(task func(), core bool) {
	p.workers++
	p.wg.Add(1)
	go p.work(task, core)
}

func (p *Pool) work(task func(), core bool) {
	defer p.wg.Done()
	defer func() {
		p.mu.Lock()
		p.workers--
		p.mu.Unlock()
	}()

	for {
		p.run(task)

		var ok bool
		if core {
			task, ok = <-p.tasks
		} else {
			select {
			case task, ok = <-p.tasks:
			default:
			}
		}
		if !ok {
			return
		}
	}
}

func (p *Pool) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("task panicked", "panic", fmt.Sprint(r))
		}
	}()
	task()
}
