// Package events provides a minimal observer registry: subscribers are
// plain callbacks and Subscribe returns an unsubscribe token, so
// components own an explicit hub instead of inheriting emitter behavior.
package events

import "sync"

// Hub fans events of type T out to subscribers. The zero value is ready
// to use. Publish calls subscribers synchronously on the publishing
// goroutine; handlers must not block.
type Hub[T any] struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(T)
}

// Subscribe registers fn for every subsequent publish and returns a
// cancel function that removes the subscription. Cancel is idempotent.
func (h *Hub[T]) Subscribe(fn func(T)) (cancel func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs == nil {
		h.subs = make(map[int]func(T))
	}
	id := h.nextID
	h.nextID++
	h.subs[id] = fn

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
}

// Publish delivers event to every current subscriber.
func (h *Hub[T]) Publish(event T) {
	h.mu.RLock()
	fns := make([]func(T), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.RUnlock()

	for _, fn := range fns {
		fn(event)
	}
}
