package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Entities named in change events
const (
	EntityLot     = "lot"
	EntityPortion = "portion"
	EntitySale    = "sale"
)

// Change actions
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// ChangeEvent announces a committed change. Caches subscribe to it.
type ChangeEvent struct {
	Entity   string    `json:"entity"`
	Action   string    `json:"action"`
	EntityID uint      `json:"entity_id"`
	LotID    uint      `json:"lot_id"`
	At       time.Time `json:"at"`
}

// Type renders the event type, e.g. "lot.updated"
func (e ChangeEvent) Type() string {
	return e.Entity + "." + e.Action
}

// Notifier receives change events after commit
type Notifier interface {
	Notify(ctx context.Context, event ChangeEvent)
}

// Summary aggregates the stock and money position across all lots
type Summary struct {
	TotalLots        int64           `json:"total_lots"`
	OpenLots         int64           `json:"open_lots"`
	EndedLots        int64           `json:"ended_lots"`
	QuantityInStock  float64         `json:"quantity_in_stock"`
	AcquisitionCost  decimal.Decimal `json:"acquisition_cost"`
	LotRevenue       decimal.Decimal `json:"lot_revenue"`
	PortionRevenue   decimal.Decimal `json:"portion_revenue"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	Profit           decimal.Decimal `json:"profit"`
	OutstandingUnits int64           `json:"outstanding_units"`
}
