package alarm

import (
	"context"
	"log/slog"
	"sync"
)

// Job is one unit of alarm work.
type Job func(ctx context.Context)

// Dispatcher runs jobs one at a time in the order they were pushed. Push
// never blocks, so the session clock can hand off a phase completion without
// waiting for any bridge call.
type Dispatcher struct {
	logger *slog.Logger

	mu      sync.Mutex
	queue   []Job
	busy    bool
	closed  bool
	waiters []chan struct{}

	signal chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewDispatcher starts the worker goroutine.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		logger: logger.With("component", "alarm-dispatcher"),
		signal: make(chan struct{}, 1),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go d.run()
	return d
}

// Push queues a job. Jobs pushed after Close are dropped.
func (d *Dispatcher) Push(job Job) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.Debug("dropping job after close")
		return
	}
	d.queue = append(d.queue, job)
	d.mu.Unlock()

	select {
	case d.signal <- struct{}{}:
	default:
	}
}

// Drain waits until every queued job has run.
func (d *Dispatcher) Drain(ctx context.Context) error {
	d.mu.Lock()
	if !d.busy && len(d.queue) == 0 {
		d.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	d.waiters = append(d.waiters, ch)
	d.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close runs what is already queued, then stops the worker.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.done
		return
	}
	d.closed = true
	d.mu.Unlock()

	select {
	case d.signal <- struct{}{}:
	default:
	}
	<-d.done
	d.cancel()
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for range d.signal {
		for {
			d.mu.Lock()
			if len(d.queue) == 0 {
				d.busy = false
				waiters := d.waiters
				d.waiters = nil
				closed := d.closed
				d.mu.Unlock()
				for _, ch := range waiters {
					close(ch)
				}
				if closed {
					return
				}
				break
			}
			job := d.queue[0]
			d.queue = d.queue[1:]
			d.busy = true
			d.mu.Unlock()

			d.runJob(job)
		}
	}
}

func (d *Dispatcher) runJob(job Job) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("alarm job panicked", "panic", r)
		}
	}()
	job(d.ctx)
}
