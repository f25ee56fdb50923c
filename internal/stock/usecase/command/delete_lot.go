package command

import (
	"context"

	"github.com/tair/stock-ledger/internal/stock/domain"
	"github.com/tair/stock-ledger/internal/stock/guard"
	"github.com/tair/stock-ledger/pkg/logger"
)

// DeleteLotCommand represents the command to delete a lot with its portions
// and sales
type DeleteLotCommand struct {
	ID         uint `json:"-" validate:"required"`
	Superadmin bool `json:"-"`
}

// DeleteLotHandler handles delete lot command
type DeleteLotHandler struct {
	guard *guard.Guard
}

// NewDeleteLotHandler creates a new delete lot handler
func NewDeleteLotHandler(g *guard.Guard) *DeleteLotHandler {
	return &DeleteLotHandler{guard: g}
}

// Handle executes the delete lot command
func (h *DeleteLotHandler) Handle(ctx context.Context, cmd DeleteLotCommand) error {
	if err := validateCommand(cmd, nil); err != nil {
		return err
	}
	if !cmd.Superadmin {
		return domain.Forbidden("only a superadmin may delete a lot")
	}

	err := h.guard.WithLot(ctx, cmd.ID, func(ctx context.Context, s *guard.Scope) error {
		if err := s.Repos.Portions().DeleteByLotID(ctx, cmd.ID); err != nil {
			return err
		}
		if err := s.Repos.Disposals().DeleteByLotID(ctx, cmd.ID); err != nil {
			return err
		}
		if err := s.Repos.Lots().Delete(ctx, cmd.ID); err != nil {
			return err
		}
		s.Changed(domain.EntityLot, domain.ActionDeleted, cmd.ID)
		return nil
	})
	if err != nil {
		return err
	}

	logger.ForLot(ctx, cmd.ID).Info().Msg("Lot deleted")
	return nil
}
