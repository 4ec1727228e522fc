package usecase

import (
	"sync"

	"github.com/Dan3dev/Church-management-system-sub001/internal/domain"
)

// EventBus is the single in-process subscription point for committed
// state events. Handlers run synchronously on the publishing goroutine
// and must not block.
type EventBus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]func(domain.Event)
}

func NewEventBus() *EventBus {
	return &EventBus{subs: map[int]func(domain.Event){}}
}

// Subscribe registers a handler and returns its unsubscribe func.
func (b *EventBus) Subscribe(fn func(domain.Event)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

func (b *EventBus) Publish(event domain.Event) {
	b.mu.RLock()
	handlers := make([]func(domain.Event), 0, len(b.subs))
	for _, fn := range b.subs {
		handlers = append(handlers, fn)
	}
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn(event)
	}
}
