package services

import (
	"context"
	"sync"
)

// storageTask is one unit of work for the storage queue.
type storageTask func(ctx context.Context)

// storageQueue runs submitted tasks one at a time, in submission order, on a
// single goroutine. Submission never blocks on task execution.
//
// A stopped queue restarts on the next Submit. The running check and the
// restart happen under the same lock, so concurrent submitters can never start
// two workers.
type storageQueue struct {
	ctx context.Context

	mu      sync.Mutex
	pending []storageTask
	wake    chan struct{}
	done    chan struct{}
	running bool
	stop    bool
	closed  bool

	onDepth func(n int)
}

func newStorageQueue(ctx context.Context, onDepth func(n int)) *storageQueue {
	if onDepth == nil {
		onDepth = func(int) {}
	}
	return &storageQueue{
		ctx:     ctx,
		onDepth: onDepth,
	}
}

// Submit appends task to the queue, starting a worker if none is running.
// It returns false, and drops task, once the queue has been closed.
func (q *storageQueue) Submit(task storageTask) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	if !q.running {
		q.start()
	}
	q.pending = append(q.pending, task)
	depth := len(q.pending)
	wake := q.wake
	q.mu.Unlock()

	q.onDepth(depth)
	select {
	case wake <- struct{}{}:
	default:
	}
	return true
}

// Close refuses all further submissions, then behaves like Shutdown.
// Tasks accepted before Close still run.
func (q *storageQueue) Close(ctx context.Context) error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	return q.Shutdown(ctx)
}

// Shutdown lets the worker finish every queued task and waits for it to exit,
// or for ctx to end. A later Submit starts a fresh worker.
func (q *storageQueue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return nil
	}
	q.stop = true
	done := q.done
	wake := q.wake
	q.mu.Unlock()

	select {
	case wake <- struct{}{}:
	default:
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Running reports whether a worker goroutine is active.
func (q *storageQueue) Running() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.running
}

// start launches a worker (caller must hold lock).
func (q *storageQueue) start() {
	q.running = true
	q.stop = false
	q.wake = make(chan struct{}, 1)
	q.done = make(chan struct{})
	go q.run(q.wake, q.done)
}

func (q *storageQueue) run(wake <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			if q.stop {
				q.running = false
				q.mu.Unlock()
				return
			}
			q.mu.Unlock()
			<-wake
			continue
		}
		task := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]
		depth := len(q.pending)
		q.mu.Unlock()

		q.onDepth(depth)
		task(q.ctx)
	}
}
