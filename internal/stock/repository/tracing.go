package repository

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/stock-ledger/internal/stock/domain"
)

var tracer = otel.Tracer("stock-repository")

// TracedLotRepository wraps a LotRepository with spans. Lot rows carry the
// contended quantity, so their reads and writes are the ones worth tracing.
type TracedLotRepository struct {
	next domain.LotRepository
}

// NewTracedLotRepository wraps next
func NewTracedLotRepository(next domain.LotRepository) *TracedLotRepository {
	return &TracedLotRepository{next: next}
}

func (r *TracedLotRepository) Create(ctx context.Context, lot *domain.Lot) error {
	ctx, span := tracer.Start(ctx, "repository.lot.Create",
		trace.WithAttributes(
			attribute.String("lot.name", lot.Name),
			attribute.Float64("lot.quantity_available", lot.QuantityAvailable),
		),
	)
	defer span.End()

	if err := r.next.Create(ctx, lot); err != nil {
		recordError(span, err)
		return err
	}
	span.SetAttributes(attribute.Int("lot.id", int(lot.ID)))
	return nil
}

func (r *TracedLotRepository) FindByID(ctx context.Context, id uint) (*domain.Lot, error) {
	ctx, span := tracer.Start(ctx, "repository.lot.FindByID",
		trace.WithAttributes(attribute.Int("lot.id", int(id))),
	)
	defer span.End()

	lot, err := r.next.FindByID(ctx, id)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	setLotAttributes(span, lot)
	return lot, nil
}

func (r *TracedLotRepository) FindByIDForUpdate(ctx context.Context, id uint) (*domain.Lot, error) {
	ctx, span := tracer.Start(ctx, "repository.lot.FindByIDForUpdate",
		trace.WithAttributes(
			attribute.Int("lot.id", int(id)),
			attribute.Bool("db.row_lock", true),
		),
	)
	defer span.End()

	lot, err := r.next.FindByIDForUpdate(ctx, id)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	setLotAttributes(span, lot)
	return lot, nil
}

func (r *TracedLotRepository) FindAll(ctx context.Context, limit, offset int) ([]domain.Lot, error) {
	ctx, span := tracer.Start(ctx, "repository.lot.FindAll",
		trace.WithAttributes(
			attribute.Int("query.limit", limit),
			attribute.Int("query.offset", offset),
		),
	)
	defer span.End()

	lots, err := r.next.FindAll(ctx, limit, offset)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("result.count", len(lots)))
	return lots, nil
}

func (r *TracedLotRepository) Update(ctx context.Context, lot *domain.Lot) error {
	ctx, span := tracer.Start(ctx, "repository.lot.Update")
	defer span.End()
	setLotAttributes(span, lot)

	if err := r.next.Update(ctx, lot); err != nil {
		recordError(span, err)
		return err
	}
	return nil
}

func (r *TracedLotRepository) Delete(ctx context.Context, id uint) error {
	ctx, span := tracer.Start(ctx, "repository.lot.Delete",
		trace.WithAttributes(attribute.Int("lot.id", int(id))),
	)
	defer span.End()

	if err := r.next.Delete(ctx, id); err != nil {
		recordError(span, err)
		return err
	}
	return nil
}

func setLotAttributes(span trace.Span, lot *domain.Lot) {
	span.SetAttributes(
		attribute.Int("lot.id", int(lot.ID)),
		attribute.Float64("lot.quantity_available", lot.QuantityAvailable),
		attribute.String("lot.state", string(lot.State())),
	)
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
