package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Portion is a batch of discrete units produced from a lot's stock
type Portion struct {
	ID                     uint                `json:"id" gorm:"primaryKey"`
	LotID                  uint                `json:"lot_id" gorm:"not null;index"`
	SourceQuantityConsumed float64             `json:"source_quantity_consumed" gorm:"not null"`
	UnitCount              int                 `json:"unit_count" gorm:"not null"`
	UnitPrice              decimal.Decimal     `json:"unit_price" gorm:"type:numeric(14,2);not null"`
	AssignedAgent          *string             `json:"assigned_agent" gorm:"size:100;index"`
	AccumulatedSaleRevenue decimal.NullDecimal `json:"accumulated_sale_revenue" gorm:"type:numeric(14,2)"`
	CreatedAt              time.Time           `json:"created_at"`
	UpdatedAt              time.Time           `json:"updated_at"`
	EndedAt                *time.Time          `json:"ended_at"`
}

// TableName specifies the table name
func (Portion) TableName() string {
	return "portions"
}

// DisposeUnits removes units from the batch and credits their price. The
// portion ends when its last unit goes.
func (p *Portion) DisposeUnits(units int, price decimal.Decimal, now time.Time) error {
	if units <= 0 {
		return InvalidQuantity("units must be positive, got %d", units)
	}
	if units > p.UnitCount {
		return InvalidQuantity("portion %d has %d units, %d requested", p.ID, p.UnitCount, units)
	}
	if price.IsNegative() {
		return InvalidQuantity("sold price cannot be negative")
	}

	p.UnitCount -= units
	p.AccumulatedSaleRevenue = addRevenue(p.AccumulatedSaleRevenue, price)

	if p.UnitCount == 0 && p.EndedAt == nil {
		ended := now
		p.EndedAt = &ended
	}
	return nil
}
