package domain

import "time"

// quantityTolerance absorbs float slack when comparing stock amounts
const quantityTolerance = 1e-9

// Transition is the end-state change an outcome carries
type Transition int

const (
	TransitionNone Transition = iota
	// TransitionEnded: Open -> AutoEnded
	TransitionEnded
	// TransitionReopened: AutoEnded (or un-forced ForceEnded) -> Open
	TransitionReopened
	// TransitionUnforced: ForceEnded -> AutoEnded, the lot stays ended
	TransitionUnforced
)

func (t Transition) String() string {
	switch t {
	case TransitionEnded:
		return "ended"
	case TransitionReopened:
		return "reopened"
	case TransitionUnforced:
		return "unforced"
	default:
		return "none"
	}
}

// Outcome is the computed next stock state of a lot. It is applied with Lot.Apply.
type Outcome struct {
	Quantity   float64
	Transition Transition
}

// Reserve computes the deduction of amount from the lot
func Reserve(lot *Lot, amount float64) (Outcome, error) {
	if amount < 0 {
		return Outcome{}, InvalidQuantity("reservation cannot be negative, got %g", amount)
	}
	if amount-lot.QuantityAvailable > quantityTolerance {
		return Outcome{}, InsufficientStock(lot.ID, amount, lot.QuantityAvailable)
	}
	return settle(lot, lot.QuantityAvailable-amount, false), nil
}

// Release computes the return of amount to the lot
func Release(lot *Lot, amount float64) (Outcome, error) {
	if amount < 0 {
		return Outcome{}, InvalidQuantity("release cannot be negative, got %g", amount)
	}
	return settle(lot, lot.QuantityAvailable+amount, false), nil
}

// Resize computes returning oldAmount and reserving newAmount as one check
func Resize(lot *Lot, oldAmount, newAmount float64) (Outcome, error) {
	if newAmount < 0 {
		return Outcome{}, InvalidQuantity("reservation cannot be negative, got %g", newAmount)
	}
	available := lot.QuantityAvailable + oldAmount
	if newAmount-available > quantityTolerance {
		return Outcome{}, InsufficientStock(lot.ID, newAmount, available)
	}
	return settle(lot, available-newAmount, false), nil
}

// ApplyManualQuantity computes an administrative override of the quantity.
// A forced end survives unless unforce is set.
func ApplyManualQuantity(lot *Lot, quantity float64, unforce bool) (Outcome, error) {
	if quantity < 0 {
		return Outcome{}, InvalidQuantity("quantity cannot be negative, got %g", quantity)
	}
	return settle(lot, quantity, unforce), nil
}

// ForceEnd ends the lot regardless of stock. Calling it on an ended lot keeps
// the existing timestamp.
func ForceEnd(lot *Lot, now time.Time) time.Time {
	if lot.EndedAt == nil {
		ended := now
		lot.EndedAt = &ended
	}
	lot.EndReason = EndReasonForced
	return *lot.EndedAt
}

func settle(lot *Lot, quantity float64, unforce bool) Outcome {
	if quantity < 0 {
		quantity = 0
	}
	out := Outcome{Quantity: quantity}

	switch lot.State() {
	case LotOpen:
		if quantity <= 0 {
			out.Transition = TransitionEnded
		}
	case LotAutoEnded:
		if quantity > 0 {
			out.Transition = TransitionReopened
		}
	case LotForceEnded:
		if !unforce {
			break
		}
		if quantity > 0 {
			out.Transition = TransitionReopened
		} else {
			out.Transition = TransitionUnforced
		}
	}
	return out
}

// Apply writes an outcome onto the lot
func (l *Lot) Apply(o Outcome, now time.Time) {
	l.QuantityAvailable = o.Quantity

	switch o.Transition {
	case TransitionEnded:
		ended := now
		l.EndedAt = &ended
		l.EndReason = EndReasonDepleted
	case TransitionReopened:
		l.EndedAt = nil
		l.EndReason = EndReasonNone
	case TransitionUnforced:
		l.EndReason = EndReasonDepleted
	}
}

// NewLot builds a lot; a lot created without stock is born ended
func NewLot(name string, quantity float64, now time.Time) (*Lot, error) {
	if quantity < 0 {
		return nil, InvalidQuantity("quantity cannot be negative, got %g", quantity)
	}
	lot := &Lot{Name: name, CreatedAt: now}
	o, _ := ApplyManualQuantity(lot, quantity, false)
	lot.Apply(o, now)
	return lot, nil
}
