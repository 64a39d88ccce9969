// Package observable provides a single-slot broadcast cell.
//
// A Cell holds at most one value. Publishing stores the value and hands it
// to every current subscriber; a new subscriber immediately receives the
// stored value, if any. Consumers of one-shot events clear the slot with
// Take (or Reset) once they have acted on the value, so a subscriber that
// attaches later does not see the event again.
package observable

import (
	"sync"
)

// Cell is a single-value broadcast cell. The zero value is ready to use.
// All methods are safe for concurrent use.
type Cell[T any] struct {
	mu     sync.Mutex
	value  T
	set    bool
	nextID uint64
	subs   map[uint64]func(T)
}

// New creates an empty cell.
func New[T any]() *Cell[T] {
	return &Cell[T]{}
}

// Publish stores v and notifies all current subscribers.
// Subscribers run synchronously on the publishing goroutine, outside the lock.
func (c *Cell[T]) Publish(v T) {
	c.mu.Lock()
	c.value = v
	c.set = true
	handlers := c.snapshot()
	c.mu.Unlock()

	for _, h := range handlers {
		h(v)
	}
}

// Subscribe registers fn and replays the stored value to it, if present.
// The returned function removes the subscription; calling it twice is harmless.
func (c *Cell[T]) Subscribe(fn func(T)) (cancel func()) {
	c.mu.Lock()
	if c.subs == nil {
		c.subs = make(map[uint64]func(T))
	}
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	value, set := c.value, c.set
	c.mu.Unlock()

	if set {
		fn(value)
	}

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Take returns the stored value and clears the slot.
func (c *Cell[T]) Take() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.value, c.set
	var zero T
	c.value = zero
	c.set = false
	return v, ok
}

// Peek returns the stored value without clearing it.
func (c *Cell[T]) Peek() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, c.set
}

// Reset clears the slot without notifying subscribers.
func (c *Cell[T]) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	c.value = zero
	c.set = false
}

// Subscribers returns the number of active subscriptions.
func (c *Cell[T]) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// snapshot copies the handler list (caller must hold lock).
func (c *Cell[T]) snapshot() []func(T) {
	handlers := make([]func(T), 0, len(c.subs))
	for _, h := range c.subs {
		handlers = append(handlers, h)
	}
	return handlers
}
