package query

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tair/stock-ledger/internal/stock/domain"
)

// GetSummaryQuery represents the query for the stock and money summary
type GetSummaryQuery struct{}

// GetSummaryHandler handles get summary query
type GetSummaryHandler struct {
	lots     domain.LotRepository
	portions domain.PortionRepository
}

// NewGetSummaryHandler creates a new get summary handler
func NewGetSummaryHandler(store domain.Store) *GetSummaryHandler {
	return &GetSummaryHandler{lots: store.Lots(), portions: store.Portions()}
}

// Handle executes the get summary query
func (h *GetSummaryHandler) Handle(ctx context.Context, _ GetSummaryQuery) (*domain.Summary, error) {
	lots, err := h.lots.FindAll(ctx, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get lots: %w", err)
	}
	portions, err := h.portions.FindAll(ctx, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get portions: %w", err)
	}

	s := &domain.Summary{
		AcquisitionCost: decimal.Zero,
		LotRevenue:      decimal.Zero,
		PortionRevenue:  decimal.Zero,
	}

	for _, lot := range lots {
		s.TotalLots++
		if lot.IsEnded() {
			s.EndedLots++
		} else {
			s.OpenLots++
		}
		s.QuantityInStock += lot.QuantityAvailable
		s.AcquisitionCost = s.AcquisitionCost.Add(lot.AcquisitionCost)
		if lot.AccumulatedSaleRevenue.Valid {
			s.LotRevenue = s.LotRevenue.Add(lot.AccumulatedSaleRevenue.Decimal)
		}
	}

	for _, p := range portions {
		s.OutstandingUnits += int64(p.UnitCount)
		if p.AccumulatedSaleRevenue.Valid {
			s.PortionRevenue = s.PortionRevenue.Add(p.AccumulatedSaleRevenue.Decimal)
		}
	}

	s.TotalRevenue = s.LotRevenue.Add(s.PortionRevenue)
	s.Profit = s.TotalRevenue.Sub(s.AcquisitionCost)
	return s, nil
}
