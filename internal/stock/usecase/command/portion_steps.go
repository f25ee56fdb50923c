package command

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/tair/stock-ledger/internal/stock/domain"
	"github.com/tair/stock-ledger/internal/stock/guard"
)

// withPortion runs fn under the owning lot's guard. The portion is looked up
// once to find its lot and read again under the lot's lock before fn runs.
func withPortion(ctx context.Context, portions domain.PortionRepository, g *guard.Guard, portionID uint,
	fn func(ctx context.Context, s *guard.Scope, p *domain.Portion) error) error {
	owner, err := portions.FindByID(ctx, portionID)
	if err != nil {
		return err
	}

	return g.WithLot(ctx, owner.LotID, func(ctx context.Context, s *guard.Scope) error {
		p, err := s.Repos.Portions().FindByID(ctx, portionID)
		if err != nil {
			return err
		}
		if p.LotID != s.Lot.ID {
			return domain.NotFound("portion", portionID)
		}
		return fn(ctx, s, p)
	})
}

// PortionFields is the administrative part of a portion patch
type PortionFields struct {
	UnitPrice     *decimal.Decimal
	AssignedAgent *string
}

func (f PortionFields) empty() bool {
	return f.UnitPrice == nil && f.AssignedAgent == nil
}

// check reports a negative price or an over-long agent, naming the agent
// field the way the caller's body does
func (f PortionFields) check(agentField string) fieldErrors {
	extra := fieldErrors{}
	extra.nonNegative("unit_price", f.UnitPrice)
	if f.AssignedAgent != nil && len(*f.AssignedAgent) > 100 {
		extra[agentField] = "max"
	}
	return extra
}

func (f PortionFields) applyTo(p *domain.Portion) {
	if f.UnitPrice != nil {
		p.UnitPrice = *f.UnitPrice
	}
	if f.AssignedAgent != nil {
		agent := *f.AssignedAgent
		if agent == "" {
			p.AssignedAgent = nil
		} else {
			p.AssignedAgent = &agent
		}
	}
}

func savePortion(ctx context.Context, s *guard.Scope, p *domain.Portion) error {
	if err := s.Repos.Portions().Update(ctx, p); err != nil {
		return err
	}
	s.Changed(domain.EntityPortion, domain.ActionUpdated, p.ID)
	return nil
}
