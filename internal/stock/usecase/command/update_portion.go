package command

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/tair/stock-ledger/internal/stock/domain"
	"github.com/tair/stock-ledger/internal/stock/guard"
)

// UpdatePortionCommand is the composite portion patch accepted over HTTP.
// Present parts apply in order: resize, unit sale, fields; all or nothing.
type UpdatePortionCommand struct {
	PortionID uint `json:"-" validate:"required"`

	// SourceQuantity resizes the reservation
	SourceQuantity *float64 `json:"grams_used"`

	// SoldUnits sells units; SoldPrice defaults to units * unit_price
	SoldUnits *int             `json:"sold_qty"`
	SoldPrice *decimal.Decimal `json:"sold_price"`
	SoldBy    *string          `json:"sold_by" validate:"omitempty,max=100"`

	Fields PortionFields
}

// UpdatePortionResult carries the updated portion and the disposal, if any
type UpdatePortionResult struct {
	Portion  *domain.Portion  `json:"portion"`
	Disposal *domain.Disposal `json:"disposal,omitempty"`
}

// UpdatePortionHandler handles the composite update portion command. Each
// part runs through the single-purpose handler for it, all under one lock
// and one transaction.
type UpdatePortionHandler struct {
	portions domain.PortionRepository
	guard    *guard.Guard
	resize   *ResizePortionHandler
	dispose  *DisposeUnitsHandler
	fields   *UpdatePortionFieldsHandler
}

// NewUpdatePortionHandler creates a new update portion handler
func NewUpdatePortionHandler(
	store domain.Store,
	g *guard.Guard,
	resize *ResizePortionHandler,
	dispose *DisposeUnitsHandler,
	fields *UpdatePortionFieldsHandler,
) *UpdatePortionHandler {
	return &UpdatePortionHandler{
		portions: store.Portions(),
		guard:    g,
		resize:   resize,
		dispose:  dispose,
		fields:   fields,
	}
}

func (cmd UpdatePortionCommand) check() error {
	extra := cmd.Fields.check("assigned_to")
	extra.nonNegative("sold_price", cmd.SoldPrice)
	if cmd.SoldUnits == nil && (cmd.SoldPrice != nil || cmd.SoldBy != nil) {
		extra["sold_qty"] = "required_with=sold_price"
	}
	if cmd.SourceQuantity == nil && cmd.SoldUnits == nil && cmd.Fields.empty() {
		extra["body"] = "required"
	}
	return validateCommand(cmd, extra)
}

// Handle executes the update portion command
func (h *UpdatePortionHandler) Handle(ctx context.Context, cmd UpdatePortionCommand) (*UpdatePortionResult, error) {
	if err := cmd.check(); err != nil {
		return nil, err
	}

	var (
		result = &UpdatePortionResult{}
		lot    domain.Lot
		before domain.LotState
	)
	err := withPortion(ctx, h.portions, h.guard, cmd.PortionID, func(ctx context.Context, s *guard.Scope, p *domain.Portion) error {
		before = s.Lot.State()

		if cmd.SourceQuantity != nil {
			if err := h.resize.apply(ctx, s, p, *cmd.SourceQuantity); err != nil {
				return err
			}
		}

		if cmd.SoldUnits != nil {
			price := p.UnitPrice.Mul(decimal.NewFromInt(int64(*cmd.SoldUnits)))
			if cmd.SoldPrice != nil {
				price = *cmd.SoldPrice
			}
			d, err := h.dispose.apply(ctx, s, p, *cmd.SoldUnits, price, cmd.SoldBy)
			if err != nil {
				return err
			}
			result.Disposal = d
		}

		h.fields.apply(p, cmd.Fields)
		if err := savePortion(ctx, s, p); err != nil {
			return err
		}

		result.Portion = p
		lot = *s.Lot
		return nil
	})
	if err != nil {
		return nil, err
	}

	logTransition(ctx, &lot, before)
	return result, nil
}
