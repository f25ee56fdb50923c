package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DisposalKind tells what a disposal's quantity counts
type DisposalKind string

const (
	// DisposalRaw is a sale of raw lot stock; quantity is in the lot's unit
	DisposalRaw DisposalKind = "raw"
	// DisposalUnits is a sale of portion units; quantity is a unit count
	DisposalUnits DisposalKind = "units"
)

// Disposal is an irreversible sale record attributed to a lot
type Disposal struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	LotID        uint            `json:"lot_id" gorm:"not null;index"`
	PortionID    *uint           `json:"portion_id,omitempty" gorm:"index"`
	Quantity     float64         `json:"quantity" gorm:"not null"`
	DisposalKind DisposalKind    `json:"disposal_kind" gorm:"size:16;not null"`
	TotalPrice   decimal.Decimal `json:"total_price" gorm:"type:numeric(14,2);not null"`
	RecordedBy   *string         `json:"recorded_by" gorm:"size:100"`
	CreatedAt    time.Time       `json:"created_at"`
}

// TableName specifies the table name
func (Disposal) TableName() string {
	return "disposals"
}
