package query

import (
	"context"
	"fmt"

	"github.com/tair/stock-ledger/internal/stock/domain"
)

// ListPortionsQuery lists portions, optionally only those of one agent
type ListPortionsQuery struct {
	Agent string
	Page  Page
}

// ListPortionsHandler handles list portions query
type ListPortionsHandler struct {
	repo domain.PortionRepository
}

// NewListPortionsHandler creates a new list portions handler
func NewListPortionsHandler(store domain.Store) *ListPortionsHandler {
	return &ListPortionsHandler{repo: store.Portions()}
}

// Handle executes the list portions query
func (h *ListPortionsHandler) Handle(ctx context.Context, query ListPortionsQuery) ([]domain.Portion, error) {
	page := query.Page.normalize()

	var (
		portions []domain.Portion
		err      error
	)
	if query.Agent != "" {
		portions, err = h.repo.FindByAgent(ctx, query.Agent, page.Limit, page.Offset)
	} else {
		portions, err = h.repo.FindAll(ctx, page.Limit, page.Offset)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list portions: %w", err)
	}
	return portions, nil
}

// GetPortionQuery represents the query to get a portion by id
type GetPortionQuery struct {
	ID uint
}

// GetPortionHandler handles get portion query
type GetPortionHandler struct {
	repo domain.PortionRepository
}

// NewGetPortionHandler creates a new get portion handler
func NewGetPortionHandler(store domain.Store) *GetPortionHandler {
	return &GetPortionHandler{repo: store.Portions()}
}

// Handle executes the get portion query
func (h *GetPortionHandler) Handle(ctx context.Context, query GetPortionQuery) (*domain.Portion, error) {
	return h.repo.FindByID(ctx, query.ID)
}
