package command

import (
	"context"

	"github.com/tair/stock-ledger/internal/stock/domain"
	"github.com/tair/stock-ledger/internal/stock/guard"
)

// ResizePortionCommand changes how much lot stock a portion holds
type ResizePortionCommand struct {
	PortionID      uint    `json:"-" validate:"required"`
	SourceQuantity float64 `json:"source_quantity"`
}

// ResizePortionHandler handles resize portion command
type ResizePortionHandler struct {
	portions domain.PortionRepository
	guard    *guard.Guard
}

// NewResizePortionHandler creates a new resize portion handler
func NewResizePortionHandler(store domain.Store, g *guard.Guard) *ResizePortionHandler {
	return &ResizePortionHandler{portions: store.Portions(), guard: g}
}

// Handle returns the old reservation and takes the new one in one step
func (h *ResizePortionHandler) Handle(ctx context.Context, cmd ResizePortionCommand) (*domain.Portion, error) {
	if err := validateCommand(cmd, nil); err != nil {
		return nil, err
	}

	var (
		portion *domain.Portion
		lot     domain.Lot
		before  domain.LotState
	)
	err := withPortion(ctx, h.portions, h.guard, cmd.PortionID, func(ctx context.Context, s *guard.Scope, p *domain.Portion) error {
		before = s.Lot.State()
		if err := h.apply(ctx, s, p, cmd.SourceQuantity); err != nil {
			return err
		}
		if err := savePortion(ctx, s, p); err != nil {
			return err
		}
		portion = p
		lot = *s.Lot
		return nil
	})
	if err != nil {
		return nil, err
	}

	logTransition(ctx, &lot, before)
	return portion, nil
}

// apply moves the portion's reservation to newQuantity as one check against
// the lot and saves the lot. The portion itself is left for the caller to save.
func (h *ResizePortionHandler) apply(ctx context.Context, s *guard.Scope, p *domain.Portion, newQuantity float64) error {
	o, err := domain.Resize(s.Lot, p.SourceQuantityConsumed, newQuantity)
	if err != nil {
		return err
	}
	s.Lot.Apply(o, s.Now)
	p.SourceQuantityConsumed = newQuantity
	return s.SaveLot(ctx)
}
