package query

import (
	"context"
	"fmt"

	"github.com/tair/stock-ledger/internal/stock/domain"
)

// ListLotsQuery represents the query to list lots
type ListLotsQuery struct {
	Page Page
}

// ListLotsHandler handles list lots query
type ListLotsHandler struct {
	repo domain.LotRepository
}

// NewListLotsHandler creates a new list lots handler
func NewListLotsHandler(store domain.Store) *ListLotsHandler {
	return &ListLotsHandler{repo: store.Lots()}
}

// Handle executes the list lots query
func (h *ListLotsHandler) Handle(ctx context.Context, query ListLotsQuery) ([]domain.Lot, error) {
	page := query.Page.normalize()
	lots, err := h.repo.FindAll(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list lots: %w", err)
	}
	return lots, nil
}

// GetLotQuery represents the query to get a lot by id
type GetLotQuery struct {
	ID uint
}

// GetLotHandler handles get lot query
type GetLotHandler struct {
	repo domain.LotRepository
}

// NewGetLotHandler creates a new get lot handler
func NewGetLotHandler(store domain.Store) *GetLotHandler {
	return &GetLotHandler{repo: store.Lots()}
}

// Handle executes the get lot query
func (h *GetLotHandler) Handle(ctx context.Context, query GetLotQuery) (*domain.Lot, error) {
	return h.repo.FindByID(ctx, query.ID)
}
