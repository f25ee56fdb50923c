package command

import (
	"context"

	"github.com/tair/stock-ledger/internal/stock/domain"
	"github.com/tair/stock-ledger/internal/stock/guard"
)

// DeleteSaleCommand removes a sale record. Nothing is restored to the lot or
// portion.
type DeleteSaleCommand struct {
	SaleID uint `json:"-" validate:"required"`
}

// DeleteSaleHandler handles delete sale command
type DeleteSaleHandler struct {
	disposals domain.DisposalRepository
	guard     *guard.Guard
}

// NewDeleteSaleHandler creates a new delete sale handler
func NewDeleteSaleHandler(store domain.Store, g *guard.Guard) *DeleteSaleHandler {
	return &DeleteSaleHandler{disposals: store.Disposals(), guard: g}
}

// Handle executes the delete sale command
func (h *DeleteSaleHandler) Handle(ctx context.Context, cmd DeleteSaleCommand) error {
	if err := validateCommand(cmd, nil); err != nil {
		return err
	}

	sale, err := h.disposals.FindByID(ctx, cmd.SaleID)
	if err != nil {
		return err
	}

	return h.guard.WithLot(ctx, sale.LotID, func(ctx context.Context, s *guard.Scope) error {
		if err := s.Repos.Disposals().Delete(ctx, cmd.SaleID); err != nil {
			return err
		}
		s.Changed(domain.EntitySale, domain.ActionDeleted, cmd.SaleID)
		return nil
	})
}
