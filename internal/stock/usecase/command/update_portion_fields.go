package command

import (
	"context"

	"github.com/tair/stock-ledger/internal/stock/domain"
	"github.com/tair/stock-ledger/internal/stock/guard"
)

// UpdatePortionFieldsCommand edits a portion's price or agent
type UpdatePortionFieldsCommand struct {
	PortionID uint `json:"-" validate:"required"`
	Fields    PortionFields
}

// UpdatePortionFieldsHandler handles update portion fields command
type UpdatePortionFieldsHandler struct {
	portions domain.PortionRepository
	guard    *guard.Guard
}

// NewUpdatePortionFieldsHandler creates a new update portion fields handler
func NewUpdatePortionFieldsHandler(store domain.Store, g *guard.Guard) *UpdatePortionFieldsHandler {
	return &UpdatePortionFieldsHandler{portions: store.Portions(), guard: g}
}

// Handle executes the update portion fields command
func (h *UpdatePortionFieldsHandler) Handle(ctx context.Context, cmd UpdatePortionFieldsCommand) (*domain.Portion, error) {
	extra := cmd.Fields.check("assigned_agent")
	if err := validateCommand(cmd, extra); err != nil {
		return nil, err
	}

	var portion *domain.Portion
	err := withPortion(ctx, h.portions, h.guard, cmd.PortionID, func(ctx context.Context, s *guard.Scope, p *domain.Portion) error {
		h.apply(p, cmd.Fields)
		if err := savePortion(ctx, s, p); err != nil {
			return err
		}
		portion = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return portion, nil
}

// apply copies the present fields onto the portion
func (h *UpdatePortionFieldsHandler) apply(p *domain.Portion, f PortionFields) {
	f.applyTo(p)
}
