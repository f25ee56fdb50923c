package events

import (
	"context"
	"errors"
	"testing"

	"github.com/tair/stock-ledger/internal/stock/domain"
)

func TestBus_DeliversPastFailingSubscriber(t *testing.T) {
	bus := NewBus()
	var seen []string

	bus.Subscribe("broken", func(context.Context, domain.ChangeEvent) error {
		return errors.New("unavailable")
	})
	bus.Subscribe("recorder", func(_ context.Context, e domain.ChangeEvent) error {
		seen = append(seen, e.Type())
		return nil
	})

	bus.Notify(context.Background(), domain.ChangeEvent{Entity: domain.EntitySale, Action: domain.ActionDeleted})

	if len(seen) != 1 || seen[0] != "sale.deleted" {
		t.Fatalf("seen = %v", seen)
	}
}
