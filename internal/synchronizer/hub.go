package synchronizer

import (
	"context"
	"sync"

	"github.com/saxenaaman628/redis-farewell-vote/internal/store"
)

// hub fans the latest value out to any number of observers. Each observer channel holds at most one
// pending value, so a slow observer skips straight to the newest one.
type hub[T any] struct {
	mu     sync.Mutex
	subs   map[chan T]struct{}
	last   T
	has    bool
	closed bool
}

func newHub[T any]() *hub[T] {
	return &hub[T]{subs: make(map[chan T]struct{})}
}

// add registers an observer, primed with the last published value if there is one. The channel closes
// when ctx ends or the hub shuts down. It returns false if the hub is already shut down.
func (h *hub[T]) add(ctx context.Context) (<-chan T, bool) {
	ch := make(chan T, 1)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, false
	}
	h.subs[ch] = struct{}{}
	if h.has {
		store.Offer(ch, h.last)
	}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
	}()
	return ch, true
}

func (h *hub[T]) publish(v T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last, h.has = v, true
	for ch := range h.subs {
		store.Offer(ch, v)
	}
}

func (h *hub[T]) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for ch := range h.subs {
		close(ch)
	}
	h.subs = make(map[chan T]struct{})
}
