package events

import (
	"context"
	"sync"

	"github.com/tair/stock-ledger/internal/stock/domain"
	"github.com/tair/stock-ledger/pkg/logger"
)

// Subscriber reacts to a committed change
type Subscriber func(ctx context.Context, event domain.ChangeEvent) error

// Bus fans change events out to subscribers in-process. It implements
// domain.Notifier.
type Bus struct {
	mu          sync.RWMutex
	subscribers []namedSubscriber
}

type namedSubscriber struct {
	name string
	fn   Subscriber
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers fn under name; the name only appears in logs
func (b *Bus) Subscribe(name string, fn Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers = append(b.subscribers, namedSubscriber{name: name, fn: fn})
}

// Notify delivers event to every subscriber. A failing subscriber is logged
// and does not stop delivery to the rest.
func (b *Bus) Notify(ctx context.Context, event domain.ChangeEvent) {
	b.mu.RLock()
	subs := make([]namedSubscriber, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.RUnlock()

	for _, s := range subs {
		if err := s.fn(ctx, event); err != nil {
			logger.Warn(ctx).
				Err(err).
				Str("subscriber", s.name).
				Str("event_type", event.Type()).
				Uint("entity_id", event.EntityID).
				Msg("Change subscriber failed")
		}
	}
}
