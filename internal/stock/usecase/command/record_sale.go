package command

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tair/stock-ledger/internal/stock/domain"
	"github.com/tair/stock-ledger/internal/stock/guard"
	"github.com/tair/stock-ledger/pkg/logger"
)

// RecordSaleCommand sells raw stock straight from a lot
type RecordSaleCommand struct {
	LotID      uint             `json:"lot_id" validate:"required"`
	Quantity   float64          `json:"quantity" validate:"gt=0"`
	TotalPrice *decimal.Decimal `json:"total_price" validate:"required"`
	RecordedBy *string          `json:"recorded_by" validate:"omitempty,max=100"`
}

// RecordSaleResult carries the lot after the sale and the disposal row
type RecordSaleResult struct {
	Lot      *domain.Lot      `json:"lot"`
	Disposal *domain.Disposal `json:"sale"`
}

// RecordSaleHandler handles record sale command
type RecordSaleHandler struct {
	guard *guard.Guard
}

// NewRecordSaleHandler creates a new record sale handler
func NewRecordSaleHandler(g *guard.Guard) *RecordSaleHandler {
	return &RecordSaleHandler{guard: g}
}

// Handle deducts the quantity, credits the lot and books a raw disposal
func (h *RecordSaleHandler) Handle(ctx context.Context, cmd RecordSaleCommand) (*RecordSaleResult, error) {
	extra := fieldErrors{}
	extra.nonNegative("total_price", cmd.TotalPrice)
	if err := validateCommand(cmd, extra); err != nil {
		return nil, err
	}

	total := *cmd.TotalPrice

	var (
		result = &RecordSaleResult{}
		before domain.LotState
	)
	err := h.guard.WithLot(ctx, cmd.LotID, func(ctx context.Context, s *guard.Scope) error {
		lot := s.Lot
		before = lot.State()

		o, err := domain.Reserve(lot, cmd.Quantity)
		if err != nil {
			return err
		}
		lot.Apply(o, s.Now)
		lot.CreditRevenue(total)
		if err := s.SaveLot(ctx); err != nil {
			return err
		}

		disposal := &domain.Disposal{
			LotID:        lot.ID,
			Quantity:     cmd.Quantity,
			DisposalKind: domain.DisposalRaw,
			TotalPrice:   total,
			RecordedBy:   cmd.RecordedBy,
			CreatedAt:    s.Now,
		}
		if err := s.Repos.Disposals().Create(ctx, disposal); err != nil {
			return fmt.Errorf("failed to record sale: %w", err)
		}
		s.Changed(domain.EntitySale, domain.ActionCreated, disposal.ID)

		updated := *lot
		result.Lot = &updated
		result.Disposal = disposal
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.ForLot(ctx, cmd.LotID).Info().
		Uint("sale_id", result.Disposal.ID).
		Float64("quantity", cmd.Quantity).
		Str("total_price", total.StringFixed(2)).
		Msg("Sale recorded")
	logTransition(ctx, result.Lot, before)
	return result, nil
}
