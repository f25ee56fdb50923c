package command

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tair/stock-ledger/internal/stock/domain"
	"github.com/tair/stock-ledger/internal/stock/guard"
)

// CreatePortionCommand represents the command to produce a portion from a lot
type CreatePortionCommand struct {
	LotID          uint             `json:"lot_id" validate:"required"`
	SourceQuantity float64          `json:"source_quantity" validate:"gt=0"`
	UnitCount      int              `json:"unit_count" validate:"gt=0"`
	UnitPrice      *decimal.Decimal `json:"unit_price" validate:"required"`
	AssignedAgent  *string          `json:"assigned_agent" validate:"omitempty,max=100"`
}

// CreatePortionHandler handles create portion command
type CreatePortionHandler struct {
	guard *guard.Guard
}

// NewCreatePortionHandler creates a new create portion handler
func NewCreatePortionHandler(g *guard.Guard) *CreatePortionHandler {
	return &CreatePortionHandler{guard: g}
}

// Handle reserves the source quantity from the lot and stores the portion
func (h *CreatePortionHandler) Handle(ctx context.Context, cmd CreatePortionCommand) (*domain.Portion, error) {
	extra := fieldErrors{}
	extra.nonNegative("unit_price", cmd.UnitPrice)
	if err := validateCommand(cmd, extra); err != nil {
		return nil, err
	}

	var (
		portion *domain.Portion
		lot     domain.Lot
		before  domain.LotState
	)
	err := h.guard.WithLot(ctx, cmd.LotID, func(ctx context.Context, s *guard.Scope) error {
		before = s.Lot.State()

		o, err := domain.Reserve(s.Lot, cmd.SourceQuantity)
		if err != nil {
			return err
		}
		s.Lot.Apply(o, s.Now)
		if err := s.SaveLot(ctx); err != nil {
			return err
		}

		portion = &domain.Portion{
			LotID:                  s.Lot.ID,
			SourceQuantityConsumed: cmd.SourceQuantity,
			UnitCount:              cmd.UnitCount,
			UnitPrice:              *cmd.UnitPrice,
			CreatedAt:              s.Now,
		}
		PortionFields{AssignedAgent: cmd.AssignedAgent}.applyTo(portion)
		if err := s.Repos.Portions().Create(ctx, portion); err != nil {
			return fmt.Errorf("failed to create portion: %w", err)
		}
		s.Changed(domain.EntityPortion, domain.ActionCreated, portion.ID)

		lot = *s.Lot
		return nil
	})
	if err != nil {
		return nil, err
	}

	logTransition(ctx, &lot, before)
	return portion, nil
}
