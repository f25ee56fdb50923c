package http

import (
	"database/sql"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/tair/stock-ledger/internal/stock/cache"
	"github.com/tair/stock-ledger/internal/stock/usecase/command"
	"github.com/tair/stock-ledger/internal/stock/usecase/query"
	"github.com/tair/stock-ledger/pkg/auth"
	"github.com/tair/stock-ledger/pkg/logger"
)

// Commands groups the write-side handlers
type Commands struct {
	CreateLot     *command.CreateLotHandler
	UpdateLot     *command.UpdateLotHandler
	DeleteLot     *command.DeleteLotHandler
	CreatePortion *command.CreatePortionHandler
	UpdatePortion *command.UpdatePortionHandler
	DeletePortion *command.DeletePortionHandler
	RecordSale    *command.RecordSaleHandler
	DeleteSale    *command.DeleteSaleHandler
}

// Queries groups the read-side handlers
type Queries struct {
	ListLots     *query.ListLotsHandler
	GetLot       *query.GetLotHandler
	ListPortions *query.ListPortionsHandler
	GetPortion   *query.GetPortionHandler
	ListSales    *query.ListSalesHandler
	GetSale      *query.GetSaleHandler
	GetSummary   *query.GetSummaryHandler
}

// StockHandler handles HTTP requests for lots, portions and sales using CQRS
type StockHandler struct {
	commands *Commands
	queries  *Queries
	verifier *auth.Verifier
	metrics  *Metrics
	cache    *cache.Cache
	limiter  *RateLimiter
}

// NewStockHandler creates a new stock handler. cache and limiter may be
// disabled.
func NewStockHandler(commands *Commands, queries *Queries, verifier *auth.Verifier, metrics *Metrics, cache *cache.Cache, limiter *RateLimiter) *StockHandler {
	return &StockHandler{
		commands: commands,
		queries:  queries,
		verifier: verifier,
		metrics:  metrics,
		cache:    cache,
		limiter:  limiter,
	}
}

// RegisterRoutes registers all stock routes. Every route requires a valid
// bearer token. Reads go through the response cache and writes through the
// rate limiter.
func (h *StockHandler) RegisterRoutes(router *mux.Router) {
	api := router.PathPrefix("/api").Subrouter()

	api.Handle("/lots", h.read("list_lots", h.ListLots)).Methods("GET")
	api.Handle("/lots", h.write("create_lot", h.CreateLot)).Methods("POST")
	api.Handle("/lots/{id}", h.read("get_lot", h.GetLot)).Methods("GET")
	api.Handle("/lots/{id}", h.write("update_lot", h.UpdateLot)).Methods("PUT")
	api.Handle("/lots/{id}", h.write("delete_lot", h.DeleteLot)).Methods("DELETE")

	api.Handle("/portions", h.read("list_portions", h.ListPortions)).Methods("GET")
	api.Handle("/portions", h.write("create_portion", h.CreatePortion)).Methods("POST")
	api.Handle("/portions/agent/{agent}", h.read("list_agent_portions", h.ListAgentPortions)).Methods("GET")
	api.Handle("/portions/{id}", h.read("get_portion", h.GetPortion)).Methods("GET")
	api.Handle("/portions/{id}", h.write("update_portion", h.UpdatePortion)).Methods("PUT")
	api.Handle("/portions/{id}", h.write("delete_portion", h.DeletePortion)).Methods("DELETE")

	api.Handle("/sales", h.read("list_sales", h.ListSales)).Methods("GET")
	api.Handle("/sales", h.write("create_sale", h.CreateSale)).Methods("POST")
	api.Handle("/sales/{id}", h.read("get_sale", h.GetSale)).Methods("GET")
	api.Handle("/sales/{id}", h.write("delete_sale", h.DeleteSale)).Methods("DELETE")

	api.Handle("/summary", h.read("summary", h.GetSummary)).Methods("GET")
}

// RegisterHealthCheck registers health check endpoint
func (h *StockHandler) RegisterHealthCheck(router *mux.Router, db *sql.DB) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, Response{
				Success: false,
				Error:   "Database unavailable",
			})
			return
		}

		respondJSON(w, http.StatusOK, Response{
			Success: true,
			Message: "Stock service is healthy",
		})
	}).Methods("GET")
}

type endpointFunc func(w http.ResponseWriter, r *http.Request) error

func (h *StockHandler) read(endpoint string, fn endpointFunc) http.Handler {
	return h.metrics.instrument(endpoint, AuthMiddleware(h.verifier)(h.cache.Middleware(h.serve(endpoint, fn))))
}

func (h *StockHandler) write(endpoint string, fn endpointFunc) http.Handler {
	return h.metrics.instrument(endpoint, AuthMiddleware(h.verifier)(h.limiter.Middleware(h.serve(endpoint, fn))))
}

func (h *StockHandler) serve(endpoint string, fn endpointFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := fn(w, r); err != nil {
			h.metrics.reject(endpoint, err)
			respondError(r.Context(), w, err)
		}
	})
}

func isSuperadmin(r *http.Request) bool {
	claims, ok := ClaimsFrom(r.Context())
	return ok && claims.IsSuperadmin()
}

// ListLots handles GET /api/lots
func (h *StockHandler) ListLots(w http.ResponseWriter, r *http.Request) error {
	page, err := pageFrom(r)
	if err != nil {
		return err
	}
	lots, err := h.queries.ListLots.Handle(r.Context(), query.ListLotsQuery{Page: page})
	if err != nil {
		return err
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Data: lots})
	return nil
}

// GetLot handles GET /api/lots/{id}
func (h *StockHandler) GetLot(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	lot, err := h.queries.GetLot.Handle(r.Context(), query.GetLotQuery{ID: id})
	if err != nil {
		return err
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Data: lot})
	return nil
}

// CreateLot handles POST /api/lots
func (h *StockHandler) CreateLot(w http.ResponseWriter, r *http.Request) error {
	var cmd command.CreateLotCommand
	if err := decodeJSON(w, r, &cmd); err != nil {
		return err
	}

	lot, err := h.commands.CreateLot.Handle(r.Context(), cmd)
	if err != nil {
		return err
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Lot created successfully",
		Data:    lot,
	})
	return nil
}

// UpdateLot handles PUT /api/lots/{id}
func (h *StockHandler) UpdateLot(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	var cmd command.UpdateLotCommand
	if err := decodeJSON(w, r, &cmd); err != nil {
		return err
	}
	cmd.ID = id
	cmd.Superadmin = isSuperadmin(r)

	lot, err := h.commands.UpdateLot.Handle(r.Context(), cmd)
	if err != nil {
		return err
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Lot updated successfully",
		Data:    lot,
	})
	return nil
}

// DeleteLot handles DELETE /api/lots/{id}
func (h *StockHandler) DeleteLot(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}

	cmd := command.DeleteLotCommand{ID: id, Superadmin: isSuperadmin(r)}
	if err := h.commands.DeleteLot.Handle(r.Context(), cmd); err != nil {
		return err
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Lot deleted successfully",
	})
	return nil
}

// ListPortions handles GET /api/portions
func (h *StockHandler) ListPortions(w http.ResponseWriter, r *http.Request) error {
	page, err := pageFrom(r)
	if err != nil {
		return err
	}
	portions, err := h.queries.ListPortions.Handle(r.Context(), query.ListPortionsQuery{
		Agent: r.URL.Query().Get("agent"),
		Page:  page,
	})
	if err != nil {
		return err
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Data: portions})
	return nil
}

// ListAgentPortions handles GET /api/portions/agent/{agent}
func (h *StockHandler) ListAgentPortions(w http.ResponseWriter, r *http.Request) error {
	page, err := pageFrom(r)
	if err != nil {
		return err
	}
	portions, err := h.queries.ListPortions.Handle(r.Context(), query.ListPortionsQuery{
		Agent: mux.Vars(r)["agent"],
		Page:  page,
	})
	if err != nil {
		return err
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Data: portions})
	return nil
}

// GetPortion handles GET /api/portions/{id}
func (h *StockHandler) GetPortion(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	portion, err := h.queries.GetPortion.Handle(r.Context(), query.GetPortionQuery{ID: id})
	if err != nil {
		return err
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Data: portion})
	return nil
}

// CreatePortion handles POST /api/portions
func (h *StockHandler) CreatePortion(w http.ResponseWriter, r *http.Request) error {
	var cmd command.CreatePortionCommand
	if err := decodeJSON(w, r, &cmd); err != nil {
		return err
	}

	portion, err := h.commands.CreatePortion.Handle(r.Context(), cmd)
	if err != nil {
		return err
	}

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Portion created successfully",
		Data:    portion,
	})
	return nil
}

// updatePortionRequest is the PUT /api/portions/{id} body
type updatePortionRequest struct {
	GramsUsed  *float64         `json:"grams_used"`
	SoldQty    *int             `json:"sold_qty"`
	SoldPrice  *decimal.Decimal `json:"sold_price"`
	SoldBy     *string          `json:"sold_by"`
	AssignedTo *string          `json:"assigned_to"`
	UnitPrice  *decimal.Decimal `json:"unit_price"`
}

// UpdatePortion handles PUT /api/portions/{id}
func (h *StockHandler) UpdatePortion(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	var req updatePortionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	result, err := h.commands.UpdatePortion.Handle(r.Context(), command.UpdatePortionCommand{
		PortionID:      id,
		SourceQuantity: req.GramsUsed,
		SoldUnits:      req.SoldQty,
		SoldPrice:      req.SoldPrice,
		SoldBy:         req.SoldBy,
		Fields: command.PortionFields{
			UnitPrice:     req.UnitPrice,
			AssignedAgent: req.AssignedTo,
		},
	})
	if err != nil {
		return err
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Portion updated successfully",
		Data:    result,
	})
	return nil
}

// DeletePortion handles DELETE /api/portions/{id}
func (h *StockHandler) DeletePortion(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	if err := h.commands.DeletePortion.Handle(r.Context(), command.DeletePortionCommand{PortionID: id}); err != nil {
		return err
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Portion deleted successfully",
	})
	return nil
}

// ListSales handles GET /api/sales
func (h *StockHandler) ListSales(w http.ResponseWriter, r *http.Request) error {
	page, err := pageFrom(r)
	if err != nil {
		return err
	}
	sales, err := h.queries.ListSales.Handle(r.Context(), query.ListSalesQuery{Page: page})
	if err != nil {
		return err
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Data: sales})
	return nil
}

// GetSale handles GET /api/sales/{id}
func (h *StockHandler) GetSale(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	sale, err := h.queries.GetSale.Handle(r.Context(), query.GetSaleQuery{ID: id})
	if err != nil {
		return err
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Data: sale})
	return nil
}

// createSaleRequest is the POST /api/sales body; only raw sales are taken
// here, unit sales go through the portion update
type createSaleRequest struct {
	LotID      uint             `json:"lot_id"`
	Quantity   float64          `json:"quantity"`
	SaleType   string           `json:"sale_type"`
	TotalPrice *decimal.Decimal `json:"total_price"`
	RecordedBy *string          `json:"recorded_by"`
}

// CreateSale handles POST /api/sales
func (h *StockHandler) CreateSale(w http.ResponseWriter, r *http.Request) error {
	var req createSaleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	if req.SaleType != "raw" {
		return validationError("sale_type", "oneof=raw")
	}

	recordedBy := req.RecordedBy
	if recordedBy == nil {
		if claims, ok := ClaimsFrom(r.Context()); ok {
			username := claims.Username
			recordedBy = &username
		}
	}

	result, err := h.commands.RecordSale.Handle(r.Context(), command.RecordSaleCommand{
		LotID:      req.LotID,
		Quantity:   req.Quantity,
		TotalPrice: req.TotalPrice,
		RecordedBy: recordedBy,
	})
	if err != nil {
		return err
	}

	logger.Info(r.Context()).
		Uint("lot_id", req.LotID).
		Float64("quantity", req.Quantity).
		Str("total_price", result.Disposal.TotalPrice.String()).
		Msg("Direct sale recorded")

	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Sale recorded successfully",
		Data:    result,
	})
	return nil
}

// DeleteSale handles DELETE /api/sales/{id}
func (h *StockHandler) DeleteSale(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r, "id")
	if err != nil {
		return err
	}
	if err := h.commands.DeleteSale.Handle(r.Context(), command.DeleteSaleCommand{SaleID: id}); err != nil {
		return err
	}

	respondJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "Sale deleted successfully",
	})
	return nil
}

// GetSummary handles GET /api/summary
func (h *StockHandler) GetSummary(w http.ResponseWriter, r *http.Request) error {
	summary, err := h.queries.GetSummary.Handle(r.Context(), query.GetSummaryQuery{})
	if err != nil {
		return err
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Data: summary})
	return nil
}
