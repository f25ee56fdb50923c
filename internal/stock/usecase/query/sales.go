package query

import (
	"context"
	"fmt"

	"github.com/tair/stock-ledger/internal/stock/domain"
)

// ListSalesQuery represents the query to list sales
type ListSalesQuery struct {
	Page Page
}

// ListSalesHandler handles list sales query
type ListSalesHandler struct {
	repo domain.DisposalRepository
}

// NewListSalesHandler creates a new list sales handler
func NewListSalesHandler(store domain.Store) *ListSalesHandler {
	return &ListSalesHandler{repo: store.Disposals()}
}

// Handle executes the list sales query
func (h *ListSalesHandler) Handle(ctx context.Context, query ListSalesQuery) ([]domain.Disposal, error) {
	page := query.Page.normalize()
	sales, err := h.repo.FindAll(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales: %w", err)
	}
	return sales, nil
}

// GetSaleQuery represents the query to get a sale by id
type GetSaleQuery struct {
	ID uint
}

// GetSaleHandler handles get sale query
type GetSaleHandler struct {
	repo domain.DisposalRepository
}

// NewGetSaleHandler creates a new get sale handler
func NewGetSaleHandler(store domain.Store) *GetSaleHandler {
	return &GetSaleHandler{repo: store.Disposals()}
}

// Handle executes the get sale query
func (h *GetSaleHandler) Handle(ctx context.Context, query GetSaleQuery) (*domain.Disposal, error) {
	return h.repo.FindByID(ctx, query.ID)
}
