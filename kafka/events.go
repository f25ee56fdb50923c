package kafka

import (
	"time"

	"github.com/tair/stock-ledger/internal/stock/domain"
)

// StockChangedEvent announces a committed lot, portion or sale change to
// other service instances
type StockChangedEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Origin    string    `json:"origin"`
	Entity    string    `json:"entity"`
	Action    string    `json:"action"`
	EntityID  uint      `json:"entity_id"`
	LotID     uint      `json:"lot_id"`
	ChangedAt time.Time `json:"changed_at"`
	Timestamp time.Time `json:"timestamp"`
}

// Event types
const (
	EventTypeStockChanged = "stock.changed"
)

// Kafka topics
const (
	TopicStockChanged = "stock-changed"
)

// FromChange builds the wire event for a committed change
func FromChange(change domain.ChangeEvent) StockChangedEvent {
	return StockChangedEvent{
		EventType: EventTypeStockChanged,
		Entity:    change.Entity,
		Action:    change.Action,
		EntityID:  change.EntityID,
		LotID:     change.LotID,
		ChangedAt: change.At,
	}
}
