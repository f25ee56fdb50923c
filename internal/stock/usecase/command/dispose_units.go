package command

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tair/stock-ledger/internal/stock/domain"
	"github.com/tair/stock-ledger/internal/stock/guard"
	"github.com/tair/stock-ledger/pkg/logger"
)

// DisposeUnitsCommand sells units of a portion
type DisposeUnitsCommand struct {
	PortionID uint            `json:"-" validate:"required"`
	Units     int             `json:"units"`
	Price     decimal.Decimal `json:"price"`
	Agent     *string         `json:"agent" validate:"omitempty,max=100"`
}

// DisposeUnitsHandler handles dispose units command
type DisposeUnitsHandler struct {
	portions domain.PortionRepository
	guard    *guard.Guard
}

// NewDisposeUnitsHandler creates a new dispose units handler
func NewDisposeUnitsHandler(store domain.Store, g *guard.Guard) *DisposeUnitsHandler {
	return &DisposeUnitsHandler{portions: store.Portions(), guard: g}
}

// Handle decrements the portion and records a units disposal atomically
func (h *DisposeUnitsHandler) Handle(ctx context.Context, cmd DisposeUnitsCommand) (*domain.Portion, *domain.Disposal, error) {
	if err := validateCommand(cmd, nil); err != nil {
		return nil, nil, err
	}

	var (
		portion  *domain.Portion
		disposal *domain.Disposal
	)
	err := withPortion(ctx, h.portions, h.guard, cmd.PortionID, func(ctx context.Context, s *guard.Scope, p *domain.Portion) error {
		d, err := h.apply(ctx, s, p, cmd.Units, cmd.Price, cmd.Agent)
		if err != nil {
			return err
		}
		if err := savePortion(ctx, s, p); err != nil {
			return err
		}
		portion, disposal = p, d
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return portion, disposal, nil
}

// apply sells units of the portion and books the matching disposal.
// The lot's stock is not touched.
func (h *DisposeUnitsHandler) apply(ctx context.Context, s *guard.Scope, p *domain.Portion, units int, price decimal.Decimal, agent *string) (*domain.Disposal, error) {
	if err := p.DisposeUnits(units, price, s.Now); err != nil {
		return nil, err
	}

	portionID := p.ID
	disposal := &domain.Disposal{
		LotID:        p.LotID,
		PortionID:    &portionID,
		Quantity:     float64(units),
		DisposalKind: domain.DisposalUnits,
		TotalPrice:   price,
		RecordedBy:   agent,
		CreatedAt:    s.Now,
	}
	if err := s.Repos.Disposals().Create(ctx, disposal); err != nil {
		return nil, fmt.Errorf("failed to record disposal: %w", err)
	}
	s.Changed(domain.EntitySale, domain.ActionCreated, disposal.ID)

	if p.EndedAt != nil && p.UnitCount == 0 {
		logger.ForLot(ctx, p.LotID).Info().Uint("portion_id", p.ID).Msg("Portion sold out")
	}
	return disposal, nil
}
