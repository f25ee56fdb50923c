package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterSwaggerDocs registers Swagger documentation routes
// @Summary Swagger documentation
// @Description Swagger API documentation for Stock Service
// @Tags Swagger
// @Success 200 {string} string "Swagger UI"
// @Router /swagger/ [get]
func RegisterSwaggerDocs(router *mux.Router, swaggerHandler http.Handler) {
	router.PathPrefix("/swagger/").Handler(swaggerHandler)
}

// ListLots godoc
// @Summary List lots
// @Tags Lots
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Limit (default 50, max 200)"
// @Param offset query int false "Offset"
// @Success 200 {object} object{success=bool,data=[]object}
// @Failure 401 {object} object{success=bool,error=string}
// @Router /api/lots [get]
func (h *StockHandler) ListLotsDoc() {}

// GetLot godoc
// @Summary Get a lot
// @Tags Lots
// @Security BearerAuth
// @Produce json
// @Param id path int true "Lot ID"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 404 {object} object{success=bool,error=string,code=string}
// @Router /api/lots/{id} [get]
func (h *StockHandler) GetLotDoc() {}

// CreateLot godoc
// @Summary Create a lot
// @Tags Lots
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{name=string,quantity_available=number,unit_price=number,acquisition_cost=number,sold_price=number} true "Lot data"
// @Success 201 {object} object{success=bool,message=string,data=object}
// @Failure 400 {object} object{success=bool,error=string,code=string,fields=object}
// @Router /api/lots [post]
func (h *StockHandler) CreateLotDoc() {}

// UpdateLot godoc
// @Summary Update a lot
// @Description Applies force_end, then a lot-level sale (quantity_sold, sold_price), then a manual quantity_available (superadmin), then descriptive fields
// @Tags Lots
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Lot ID"
// @Param request body object{name=string,unit_price=number,acquisition_cost=number,quantity_sold=number,sold_price=number,quantity_available=number,reopen=bool,force_end=bool} true "Lot patch"
// @Success 200 {object} object{success=bool,message=string,data=object}
// @Failure 400 {object} object{success=bool,error=string,code=string}
// @Failure 403 {object} object{success=bool,error=string,code=string}
// @Failure 404 {object} object{success=bool,error=string,code=string}
// @Failure 409 {object} object{success=bool,error=string,code=string}
// @Router /api/lots/{id} [put]
func (h *StockHandler) UpdateLotDoc() {}

// DeleteLot godoc
// @Summary Delete a lot with its portions and sales (Superadmin only)
// @Tags Lots
// @Security BearerAuth
// @Produce json
// @Param id path int true "Lot ID"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 403 {object} object{success=bool,error=string,code=string}
// @Failure 404 {object} object{success=bool,error=string,code=string}
// @Router /api/lots/{id} [delete]
func (h *StockHandler) DeleteLotDoc() {}

// ListPortions godoc
// @Summary List portions
// @Tags Portions
// @Security BearerAuth
// @Produce json
// @Param agent query string false "Assigned agent"
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Success 200 {object} object{success=bool,data=[]object}
// @Router /api/portions [get]
func (h *StockHandler) ListPortionsDoc() {}

// ListAgentPortions godoc
// @Summary List portions assigned to an agent
// @Tags Portions
// @Security BearerAuth
// @Produce json
// @Param agent path string true "Agent"
// @Success 200 {object} object{success=bool,data=[]object}
// @Router /api/portions/agent/{agent} [get]
func (h *StockHandler) ListAgentPortionsDoc() {}

// GetPortion godoc
// @Summary Get a portion
// @Tags Portions
// @Security BearerAuth
// @Produce json
// @Param id path int true "Portion ID"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 404 {object} object{success=bool,error=string,code=string}
// @Router /api/portions/{id} [get]
func (h *StockHandler) GetPortionDoc() {}

// CreatePortion godoc
// @Summary Carve a portion out of a lot
// @Tags Portions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{lot_id=int,source_quantity=number,unit_count=int,unit_price=number,assigned_agent=string} true "Portion data"
// @Success 201 {object} object{success=bool,message=string,data=object}
// @Failure 400 {object} object{success=bool,error=string,code=string}
// @Failure 404 {object} object{success=bool,error=string,code=string}
// @Router /api/portions [post]
func (h *StockHandler) CreatePortionDoc() {}

// UpdatePortion godoc
// @Summary Update a portion
// @Description Applies grams_used, then a unit sale (sold_qty, sold_price, sold_by), then assigned_to and unit_price, all or nothing
// @Tags Portions
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Portion ID"
// @Param request body object{grams_used=number,sold_qty=int,sold_price=number,sold_by=string,assigned_to=string,unit_price=number} true "Portion patch"
// @Success 200 {object} object{success=bool,message=string,data=object}
// @Failure 400 {object} object{success=bool,error=string,code=string}
// @Failure 404 {object} object{success=bool,error=string,code=string}
// @Router /api/portions/{id} [put]
func (h *StockHandler) UpdatePortionDoc() {}

// DeletePortion godoc
// @Summary Delete a portion; reserved stock is not returned
// @Tags Portions
// @Security BearerAuth
// @Produce json
// @Param id path int true "Portion ID"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 404 {object} object{success=bool,error=string,code=string}
// @Router /api/portions/{id} [delete]
func (h *StockHandler) DeletePortionDoc() {}

// ListSales godoc
// @Summary List sales
// @Tags Sales
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Success 200 {object} object{success=bool,data=[]object}
// @Router /api/sales [get]
func (h *StockHandler) ListSalesDoc() {}

// GetSale godoc
// @Summary Get a sale
// @Tags Sales
// @Security BearerAuth
// @Produce json
// @Param id path int true "Sale ID"
// @Success 200 {object} object{success=bool,data=object}
// @Failure 404 {object} object{success=bool,error=string,code=string}
// @Router /api/sales/{id} [get]
func (h *StockHandler) GetSaleDoc() {}

// CreateSale godoc
// @Summary Record a direct sale of raw stock
// @Tags Sales
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{lot_id=int,quantity=number,sale_type=string,total_price=number,recorded_by=string} true "Sale data (sale_type must be raw)"
// @Success 201 {object} object{success=bool,message=string,data=object}
// @Failure 400 {object} object{success=bool,error=string,code=string}
// @Failure 404 {object} object{success=bool,error=string,code=string}
// @Router /api/sales [post]
func (h *StockHandler) CreateSaleDoc() {}

// DeleteSale godoc
// @Summary Delete a sale record; stock is not restored
// @Tags Sales
// @Security BearerAuth
// @Produce json
// @Param id path int true "Sale ID"
// @Success 200 {object} object{success=bool,message=string}
// @Failure 404 {object} object{success=bool,error=string,code=string}
// @Router /api/sales/{id} [delete]
func (h *StockHandler) DeleteSaleDoc() {}

// GetSummary godoc
// @Summary Stock and profit summary
// @Tags Summary
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{success=bool,data=object}
// @Router /api/summary [get]
func (h *StockHandler) GetSummaryDoc() {}

// HealthCheck godoc
// @Summary Health check
// @Tags Health
// @Produce json
// @Success 200 {object} object{success=bool,message=string}
// @Failure 503 {object} object{success=bool,error=string}
// @Router /health [get]
func (h *StockHandler) HealthCheckDoc() {}
