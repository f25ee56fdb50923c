package command

import (
	"context"

	"github.com/tair/stock-ledger/internal/stock/domain"
	"github.com/tair/stock-ledger/internal/stock/guard"
)

// DeletePortionCommand removes a portion. The stock it consumed stays
// consumed.
type DeletePortionCommand struct {
	PortionID uint `json:"-" validate:"required"`
}

// DeletePortionHandler handles delete portion command
type DeletePortionHandler struct {
	portions domain.PortionRepository
	guard    *guard.Guard
}

// NewDeletePortionHandler creates a new delete portion handler
func NewDeletePortionHandler(store domain.Store, g *guard.Guard) *DeletePortionHandler {
	return &DeletePortionHandler{portions: store.Portions(), guard: g}
}

// Handle executes the delete portion command
func (h *DeletePortionHandler) Handle(ctx context.Context, cmd DeletePortionCommand) error {
	if err := validateCommand(cmd, nil); err != nil {
		return err
	}

	return withPortion(ctx, h.portions, h.guard, cmd.PortionID, func(ctx context.Context, s *guard.Scope, p *domain.Portion) error {
		if err := s.Repos.Portions().Delete(ctx, p.ID); err != nil {
			return err
		}
		s.Changed(domain.EntityPortion, domain.ActionDeleted, p.ID)
		return nil
	})
}
