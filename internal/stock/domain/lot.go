package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// End reasons stored with a lot's ended_at
const (
	EndReasonNone     = ""
	EndReasonDepleted = "depleted"
	EndReasonForced   = "forced"
)

// LotState is the lifecycle state derived from ended_at and end_reason
type LotState string

const (
	LotOpen       LotState = "open"
	LotAutoEnded  LotState = "auto_ended"
	LotForceEnded LotState = "force_ended"
)

// Lot is a bulk stock record. QuantityAvailable and the end fields are only
// written through Apply and ForceEnd.
type Lot struct {
	ID                     uint                `json:"id" gorm:"primaryKey"`
	Name                   string              `json:"name" gorm:"not null"`
	QuantityAvailable      float64             `json:"quantity_available" gorm:"not null;default:0"`
	UnitPrice              decimal.Decimal     `json:"unit_price" gorm:"type:numeric(14,2);not null"`
	AcquisitionCost        decimal.Decimal     `json:"acquisition_cost" gorm:"type:numeric(14,2);not null"`
	AccumulatedSaleRevenue decimal.NullDecimal `json:"accumulated_sale_revenue" gorm:"type:numeric(14,2)"`
	CreatedAt              time.Time           `json:"created_at"`
	UpdatedAt              time.Time           `json:"updated_at"`
	EndedAt                *time.Time          `json:"ended_at"`
	EndReason              string              `json:"end_reason" gorm:"size:16;not null;default:''"`
}

// TableName specifies the table name
func (Lot) TableName() string {
	return "lots"
}

// State derives the lifecycle state
func (l *Lot) State() LotState {
	switch {
	case l.EndedAt == nil:
		return LotOpen
	case l.EndReason == EndReasonForced:
		return LotForceEnded
	default:
		return LotAutoEnded
	}
}

// IsEnded reports whether ended_at is set
func (l *Lot) IsEnded() bool {
	return l.EndedAt != nil
}

// CreditRevenue adds a sale amount to the running revenue total
func (l *Lot) CreditRevenue(amount decimal.Decimal) {
	l.AccumulatedSaleRevenue = addRevenue(l.AccumulatedSaleRevenue, amount)
}

func addRevenue(total decimal.NullDecimal, amount decimal.Decimal) decimal.NullDecimal {
	if !total.Valid {
		return decimal.NewNullDecimal(amount)
	}
	return decimal.NewNullDecimal(total.Decimal.Add(amount))
}
