package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const sendTimeout = 15 * time.Second

type job struct {
	kind string
	msg  Message
}

// Dispatcher runs sends on a small worker pool. Failures are logged and never
// reach the request that triggered them.
type Dispatcher struct {
	sender Sender
	logger *slog.Logger
	jobs   chan job

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(sender Sender, workers, buffer int, logger *slog.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	d := &Dispatcher{
		sender: sender,
		logger: logger,
		jobs:   make(chan job, buffer),
	}
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for j := range d.jobs {
		d.deliver(j)
	}
}

func (d *Dispatcher) deliver(j job) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("notification panicked", "kind", j.kind, "panic", r)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	if err := d.sender.Send(ctx, j.msg); err != nil {
		d.logger.Warn("notification failed", "kind", j.kind, "error", err)
		return
	}
	d.logger.Info("notification sent", "kind", j.kind)
}

// Enqueue never blocks. It reports false when the queue is full or closed.
func (d *Dispatcher) Enqueue(kind string, msg Message) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.logger.Warn("notification dropped, dispatcher closed", "kind", kind)
		return false
	}
	select {
	case d.jobs <- job{kind: kind, msg: msg}:
		return true
	default:
		d.logger.Warn("notification dropped, queue full", "kind", kind)
		return false
	}
}

// Close stops intake and waits for queued sends until ctx expires.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.jobs)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
