package command

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tair/stock-ledger/internal/stock/domain"
	"github.com/tair/stock-ledger/internal/stock/guard"
	"github.com/tair/stock-ledger/pkg/logger"
)

// CreateLotCommand represents the command to create a lot
type CreateLotCommand struct {
	Name              string           `json:"name" validate:"required,max=255"`
	QuantityAvailable float64          `json:"quantity_available"`
	UnitPrice         *decimal.Decimal `json:"unit_price" validate:"required"`
	AcquisitionCost   *decimal.Decimal `json:"acquisition_cost" validate:"required"`
	SoldPrice         *decimal.Decimal `json:"sold_price"`
}

// CreateLotHandler handles create lot command
type CreateLotHandler struct {
	lots  domain.LotRepository
	guard *guard.Guard
}

// NewCreateLotHandler creates a new create lot handler
func NewCreateLotHandler(store domain.Store, g *guard.Guard) *CreateLotHandler {
	return &CreateLotHandler{lots: store.Lots(), guard: g}
}

// Handle executes the create lot command
func (h *CreateLotHandler) Handle(ctx context.Context, cmd CreateLotCommand) (*domain.Lot, error) {
	extra := fieldErrors{}
	extra.nonNegative("unit_price", cmd.UnitPrice)
	extra.nonNegative("acquisition_cost", cmd.AcquisitionCost)
	extra.nonNegative("sold_price", cmd.SoldPrice)
	if err := validateCommand(cmd, extra); err != nil {
		return nil, err
	}

	now := h.guard.Now()
	lot, err := domain.NewLot(cmd.Name, cmd.QuantityAvailable, now)
	if err != nil {
		return nil, err
	}
	lot.UnitPrice = *cmd.UnitPrice
	lot.AcquisitionCost = *cmd.AcquisitionCost
	if cmd.SoldPrice != nil {
		lot.CreditRevenue(*cmd.SoldPrice)
	}

	// a new lot is invisible to other writers until this insert commits
	if err := h.lots.Create(ctx, lot); err != nil {
		return nil, fmt.Errorf("failed to create lot: %w", err)
	}

	logger.ForLot(ctx, lot.ID).Info().
		Float64("quantity_available", lot.QuantityAvailable).
		Str("state", string(lot.State())).
		Msg("Lot created")

	h.guard.Announce(ctx, domain.ChangeEvent{
		Entity:   domain.EntityLot,
		Action:   domain.ActionCreated,
		EntityID: lot.ID,
		LotID:    lot.ID,
		At:       now,
	})
	return lot, nil
}
