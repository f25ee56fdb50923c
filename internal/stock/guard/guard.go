// Package guard serializes every read-modify-write on a lot. A mutation runs
// under the lot's lock, inside one transaction, against a row-locked copy of
// the lot.
package guard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/stock-ledger/internal/stock/domain"
	"github.com/tair/stock-ledger/pkg/lock"
	"github.com/tair/stock-ledger/pkg/logger"
)

var tracer = otel.Tracer("stock-guard")

// Scope is what a guarded mutation sees: the transactional repositories and
// the locked lot. Changes recorded with Changed are announced after commit.
type Scope struct {
	Repos domain.Repositories
	Lot   *domain.Lot
	Now   time.Time

	pending []domain.ChangeEvent
}

// Changed queues a change event for publication after commit
func (s *Scope) Changed(entity, action string, entityID uint) {
	s.pending = append(s.pending, domain.ChangeEvent{
		Entity:   entity,
		Action:   action,
		EntityID: entityID,
		LotID:    s.Lot.ID,
		At:       s.Now,
	})
}

// SaveLot persists the locked lot and queues a lot update event
func (s *Scope) SaveLot(ctx context.Context) error {
	if err := s.Repos.Lots().Update(ctx, s.Lot); err != nil {
		return err
	}
	s.Changed(domain.EntityLot, domain.ActionUpdated, s.Lot.ID)
	return nil
}

// Guard runs mutations under the per-lot consistency rules
type Guard struct {
	store    domain.Store
	locker   lock.Locker
	notifier domain.Notifier
	clock    func() time.Time
}

// NewGuard creates a guard. notifier may be nil.
func NewGuard(store domain.Store, locker lock.Locker, notifier domain.Notifier) *Guard {
	return &Guard{
		store:    store,
		locker:   locker,
		notifier: notifier,
		clock:    time.Now,
	}
}

// WithClock replaces the time source used for Scope.Now
func (g *Guard) WithClock(clock func() time.Time) *Guard {
	g.clock = clock
	return g
}

// Now reads the guard's clock
func (g *Guard) Now() time.Time {
	return g.clock()
}

// WithLot runs fn holding the lot's lock inside a transaction. Any error from
// fn, or a panic, rolls back every write fn made.
func (g *Guard) WithLot(ctx context.Context, lotID uint, fn func(ctx context.Context, s *Scope) error) error {
	ctx, span := tracer.Start(ctx, "guard.WithLot",
		trace.WithAttributes(attribute.Int("lot.id", int(lotID))),
	)
	defer span.End()

	lease, err := g.locker.Obtain(ctx, lotKey(lotID))
	if err != nil {
		if errors.Is(err, lock.ErrNotObtained) {
			err = domain.Conflict(lotID, err)
		} else {
			err = fmt.Errorf("failed to lock lot %d: %w", lotID, err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer func() {
		// release on a fresh context so a cancelled request still frees the lot
		if rerr := lease.Release(context.WithoutCancel(ctx)); rerr != nil {
			logger.ForLot(ctx, lotID).Warn().Err(rerr).Msg("Failed to release lot lock")
		}
	}()

	var scope *Scope
	err = g.store.Execute(ctx, func(repos domain.Repositories) error {
		lot, err := repos.Lots().FindByIDForUpdate(ctx, lotID)
		if err != nil {
			return err
		}
		scope = &Scope{Repos: repos, Lot: lot, Now: g.clock()}
		return fn(ctx, scope)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	g.publish(ctx, scope.pending)
	return nil
}

// Announce publishes events for changes made outside WithLot
func (g *Guard) Announce(ctx context.Context, events ...domain.ChangeEvent) {
	g.publish(ctx, events)
}

func (g *Guard) publish(ctx context.Context, events []domain.ChangeEvent) {
	if g.notifier == nil {
		return
	}
	for _, e := range events {
		g.notifier.Notify(ctx, e)
	}
}

func lotKey(id uint) string {
	return fmt.Sprintf("lot:%d", id)
}
