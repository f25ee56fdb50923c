package command

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/tair/stock-ledger/internal/stock/domain"
	"github.com/tair/stock-ledger/internal/stock/guard"
)

// UpdateLotCommand is a lot patch. Nil fields are left untouched.
//
// Steps apply in order: force end, lot-level sale (quantity_sold with
// sold_price), manual quantity override, then descriptive fields.
type UpdateLotCommand struct {
	ID         uint `json:"-" validate:"required"`
	Superadmin bool `json:"-"`

	Name            *string          `json:"name" validate:"omitempty,min=1,max=255"`
	UnitPrice       *decimal.Decimal `json:"unit_price"`
	AcquisitionCost *decimal.Decimal `json:"acquisition_cost"`

	QuantitySold *float64         `json:"quantity_sold"`
	SoldPrice    *decimal.Decimal `json:"sold_price"`

	QuantityAvailable *float64 `json:"quantity_available"`
	// Reopen lifts a forced end together with a manual quantity
	Reopen   bool `json:"reopen"`
	ForceEnd bool `json:"force_end"`
}

// UpdateLotHandler handles update lot command
type UpdateLotHandler struct {
	guard *guard.Guard
}

// NewUpdateLotHandler creates a new update lot handler
func NewUpdateLotHandler(g *guard.Guard) *UpdateLotHandler {
	return &UpdateLotHandler{guard: g}
}

func (cmd UpdateLotCommand) check() error {
	extra := fieldErrors{}
	extra.nonNegative("unit_price", cmd.UnitPrice)
	extra.nonNegative("acquisition_cost", cmd.AcquisitionCost)
	extra.nonNegative("sold_price", cmd.SoldPrice)
	if cmd.SoldPrice != nil && cmd.QuantitySold == nil {
		extra["sold_price"] = "required_with=quantity_sold"
	}
	if cmd.QuantitySold != nil && cmd.QuantityAvailable != nil {
		extra["quantity_available"] = "excluded_with=quantity_sold"
	}
	if cmd.Reopen && cmd.QuantityAvailable == nil {
		extra["reopen"] = "required_with=quantity_available"
	}
	if cmd.Reopen && cmd.ForceEnd {
		extra["reopen"] = "excluded_with=force_end"
	}
	if err := validateCommand(cmd, extra); err != nil {
		return err
	}

	if !cmd.Superadmin && (cmd.ForceEnd || cmd.QuantityAvailable != nil || cmd.Reopen) {
		return domain.Forbidden("only a superadmin may end a lot or override its quantity")
	}
	return nil
}

// Handle executes the update lot command
func (h *UpdateLotHandler) Handle(ctx context.Context, cmd UpdateLotCommand) (*domain.Lot, error) {
	if err := cmd.check(); err != nil {
		return nil, err
	}

	var (
		updated domain.Lot
		before  domain.LotState
	)
	err := h.guard.WithLot(ctx, cmd.ID, func(ctx context.Context, s *guard.Scope) error {
		lot := s.Lot
		before = lot.State()

		if cmd.ForceEnd {
			domain.ForceEnd(lot, s.Now)
		}

		if cmd.QuantitySold != nil {
			if *cmd.QuantitySold <= 0 {
				return domain.InvalidQuantity("quantity_sold must be positive, got %g", *cmd.QuantitySold)
			}
			o, err := domain.Reserve(lot, *cmd.QuantitySold)
			if err != nil {
				return err
			}
			lot.Apply(o, s.Now)
			if cmd.SoldPrice != nil {
				lot.CreditRevenue(*cmd.SoldPrice)
			}
		}

		if cmd.QuantityAvailable != nil {
			o, err := domain.ApplyManualQuantity(lot, *cmd.QuantityAvailable, cmd.Reopen)
			if err != nil {
				return err
			}
			lot.Apply(o, s.Now)
		}

		if cmd.Name != nil {
			lot.Name = *cmd.Name
		}
		if cmd.UnitPrice != nil {
			lot.UnitPrice = *cmd.UnitPrice
		}
		if cmd.AcquisitionCost != nil {
			lot.AcquisitionCost = *cmd.AcquisitionCost
		}

		if err := s.SaveLot(ctx); err != nil {
			return err
		}
		updated = *lot
		return nil
	})
	if err != nil {
		return nil, err
	}

	logTransition(ctx, &updated, before)
	return &updated, nil
}
