package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/tair/stock-ledger/internal/stock/cache"
	stockhttp "github.com/tair/stock-ledger/internal/stock/delivery/http"
	"github.com/tair/stock-ledger/internal/stock/events"
	"github.com/tair/stock-ledger/internal/stock/guard"
	"github.com/tair/stock-ledger/internal/stock/repository"
	"github.com/tair/stock-ledger/internal/stock/usecase/command"
	"github.com/tair/stock-ledger/internal/stock/usecase/query"
	"github.com/tair/stock-ledger/internal/testutil"
	"github.com/tair/stock-ledger/pkg/auth"
	"github.com/tair/stock-ledger/pkg/lock"
)

type apiEnv struct {
	router   *mux.Router
	registry *prometheus.Registry
	employee string
	admin    string
}

func newAPI(t *testing.T) *apiEnv {
	t.Helper()

	db := testutil.NewTestDB(t)
	store := repository.NewGormStore(db)
	g := guard.NewGuard(store, lock.NewLocal(5*time.Second), events.NewBus())

	commands := &stockhttp.Commands{
		CreateLot:     command.NewCreateLotHandler(store, g),
		UpdateLot:     command.NewUpdateLotHandler(g),
		DeleteLot:     command.NewDeleteLotHandler(g),
		CreatePortion: command.NewCreatePortionHandler(g),
		UpdatePortion: command.NewUpdatePortionHandler(store, g,
			command.NewResizePortionHandler(store, g),
			command.NewDisposeUnitsHandler(store, g),
			command.NewUpdatePortionFieldsHandler(store, g),
		),
		DeletePortion: command.NewDeletePortionHandler(store, g),
		RecordSale:    command.NewRecordSaleHandler(g),
		DeleteSale:    command.NewDeleteSaleHandler(store, g),
	}
	queries := &stockhttp.Queries{
		ListLots:     query.NewListLotsHandler(store),
		GetLot:       query.NewGetLotHandler(store),
		ListPortions: query.NewListPortionsHandler(store),
		GetPortion:   query.NewGetPortionHandler(store),
		ListSales:    query.NewListSalesHandler(store),
		GetSale:      query.NewGetSaleHandler(store),
		GetSummary:   query.NewGetSummaryHandler(store),
	}

	verifier := auth.NewVerifier("test-secret")
	registry := prometheus.NewRegistry()
	handler := stockhttp.NewStockHandler(commands, queries, verifier, stockhttp.NewMetrics(registry), cache.New(nil, 0), stockhttp.NewRateLimiter(nil, 0, 0))

	router := mux.NewRouter()
	handler.RegisterRoutes(router)

	employee, err := verifier.GenerateToken(1, "alice", auth.RoleEmployee, time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	admin, err := verifier.GenerateToken(2, "root", auth.RoleSuperadmin, time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	return &apiEnv{router: router, registry: registry, employee: employee, admin: admin}
}

type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Fields  map[string]string `json:"fields"`
}

func (e *apiEnv) do(t *testing.T, token, method, path, body string) (int, envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("%s %s: invalid response %q: %v", method, path, rec.Body.String(), err)
	}
	return rec.Code, env
}

func decodeData(t *testing.T, env envelope) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		t.Fatalf("invalid data %s: %v", env.Data, err)
	}
	return out
}

func TestRoutes_RequireToken(t *testing.T) {
	api := newAPI(t)

	code, env := api.do(t, "", http.MethodGet, "/api/lots", "")
	if code != http.StatusUnauthorized || env.Success {
		t.Fatalf("status = %d, want 401", code)
	}

	code, _ = api.do(t, "not-a-jwt", http.MethodGet, "/api/summary", "")
	if code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", code)
	}
}

func TestStrainAOverHTTP(t *testing.T) {
	api := newAPI(t)

	code, env := api.do(t, api.employee, http.MethodPost, "/api/lots",
		`{"name":"Strain A","quantity_available":1000,"unit_price":10,"acquisition_cost":5000}`)
	if code != http.StatusCreated {
		t.Fatalf("create lot: status %d %+v", code, env)
	}
	lotID := uint(decodeData(t, env)["id"].(float64))

	code, env = api.do(t, api.employee, http.MethodPost, "/api/portions",
		fmt.Sprintf(`{"lot_id":%d,"source_quantity":200,"unit_count":20,"unit_price":15,"assigned_agent":"alice"}`, lotID))
	if code != http.StatusCreated {
		t.Fatalf("create portion: status %d %+v", code, env)
	}
	portionID := uint(decodeData(t, env)["id"].(float64))

	code, env = api.do(t, api.employee, http.MethodPut, fmt.Sprintf("/api/portions/%d", portionID),
		`{"sold_qty":20,"sold_price":300,"sold_by":"alice"}`)
	if code != http.StatusOK {
		t.Fatalf("sell units: status %d %+v", code, env)
	}
	portion := decodeData(t, env)["portion"].(map[string]interface{})
	if portion["unit_count"].(float64) != 0 || portion["ended_at"] == nil {
		t.Fatalf("portion should be sold out: %v", portion)
	}

	code, env = api.do(t, api.employee, http.MethodPost, "/api/sales",
		fmt.Sprintf(`{"lot_id":%d,"quantity":800,"sale_type":"raw","total_price":8000}`, lotID))
	if code != http.StatusCreated {
		t.Fatalf("direct sale: status %d %+v", code, env)
	}
	result := decodeData(t, env)
	lot := result["lot"].(map[string]interface{})
	if lot["quantity_available"].(float64) != 0 || lot["ended_at"] == nil {
		t.Fatalf("lot should be depleted: %v", lot)
	}
	sale := result["sale"].(map[string]interface{})
	if sale["recorded_by"] != "alice" {
		t.Fatalf("recorded_by = %v, want caller", sale["recorded_by"])
	}

	code, env = api.do(t, api.employee, http.MethodPost, "/api/sales",
		fmt.Sprintf(`{"lot_id":%d,"quantity":1,"sale_type":"raw","total_price":10}`, lotID))
	if code != http.StatusBadRequest || env.Code != "insufficient_stock" {
		t.Fatalf("sale on depleted lot: status %d code %q", code, env.Code)
	}

	code, env = api.do(t, api.employee, http.MethodGet, "/api/sales", "")
	if code != http.StatusOK {
		t.Fatalf("list sales: status %d", code)
	}
	var sales []map[string]interface{}
	if err := json.Unmarshal(env.Data, &sales); err != nil || len(sales) != 2 {
		t.Fatalf("expected 2 sales, got %s (%v)", env.Data, err)
	}

	code, env = api.do(t, api.employee, http.MethodGet, "/api/summary", "")
	if code != http.StatusOK {
		t.Fatalf("summary: status %d", code)
	}
	summary := decodeData(t, env)
	if summary["total_revenue"] != "8300" {
		t.Fatalf("total_revenue = %v, want 8300", summary["total_revenue"])
	}

	if got := rejections(t, api.registry, "create_sale", "insufficient_stock"); got != 1 {
		t.Fatalf("rejections = %v, want 1", got)
	}
}

func TestUpdatePortion_UnknownFieldRejected(t *testing.T) {
	api := newAPI(t)
	lotID := createLot(t, api, 100)

	code, env := api.do(t, api.employee, http.MethodPost, "/api/portions",
		fmt.Sprintf(`{"lot_id":%d,"source_quantity":10,"unit_count":2,"unit_price":5}`, lotID))
	if code != http.StatusCreated {
		t.Fatalf("create portion: status %d", code)
	}
	portionID := uint(decodeData(t, env)["id"].(float64))

	code, env = api.do(t, api.employee, http.MethodPut, fmt.Sprintf("/api/portions/%d", portionID), `{"colour":"green"}`)
	if code != http.StatusBadRequest || env.Code != "validation_error" {
		t.Fatalf("status %d code %q, want 400 validation_error", code, env.Code)
	}

	code, env = api.do(t, api.employee, http.MethodPut, fmt.Sprintf("/api/portions/%d", portionID), `{"sold_qty":3}`)
	if code != http.StatusBadRequest || env.Code != "invalid_quantity" {
		t.Fatalf("status %d code %q, want 400 invalid_quantity", code, env.Code)
	}
}

func TestCreateSale_RejectsUnitSaleType(t *testing.T) {
	api := newAPI(t)
	lotID := createLot(t, api, 100)

	code, env := api.do(t, api.employee, http.MethodPost, "/api/sales",
		fmt.Sprintf(`{"lot_id":%d,"quantity":1,"sale_type":"units","total_price":10}`, lotID))
	if code != http.StatusBadRequest || env.Fields["sale_type"] == "" {
		t.Fatalf("status %d fields %v, want sale_type error", code, env.Fields)
	}
}

func TestCreate_MissingPricesRejected(t *testing.T) {
	api := newAPI(t)
	lotID := createLot(t, api, 100)

	tests := []struct {
		name   string
		path   string
		body   string
		fields []string
	}{
		{
			name:   "lot",
			path:   "/api/lots",
			body:   `{"name":"x"}`,
			fields: []string{"unit_price", "acquisition_cost"},
		},
		{
			name:   "portion",
			path:   "/api/portions",
			body:   fmt.Sprintf(`{"lot_id":%d,"source_quantity":10,"unit_count":2}`, lotID),
			fields: []string{"unit_price"},
		},
		{
			name:   "sale",
			path:   "/api/sales",
			body:   fmt.Sprintf(`{"lot_id":%d,"quantity":5,"sale_type":"raw"}`, lotID),
			fields: []string{"total_price"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := api.do(t, api.employee, http.MethodPost, tt.path, tt.body)
			if code != http.StatusBadRequest || env.Code != "validation_error" {
				t.Fatalf("status %d code %q, want 400 validation_error", code, env.Code)
			}
			for _, field := range tt.fields {
				if env.Fields[field] != "required" {
					t.Fatalf("fields %v, want %q required", env.Fields, field)
				}
			}
		})
	}

	code, env := api.do(t, api.employee, http.MethodGet, fmt.Sprintf("/api/lots/%d", lotID), "")
	if code != http.StatusOK || decodeData(t, env)["quantity_available"].(float64) != 100 {
		t.Fatalf("rejected requests changed the lot: %s", env.Data)
	}
}

func TestLotAdminOperations(t *testing.T) {
	api := newAPI(t)
	lotID := createLot(t, api, 100)
	path := fmt.Sprintf("/api/lots/%d", lotID)

	code, env := api.do(t, api.employee, http.MethodPut, path, `{"force_end":true}`)
	if code != http.StatusForbidden || env.Code != "forbidden" {
		t.Fatalf("employee force_end: status %d code %q", code, env.Code)
	}

	code, env = api.do(t, api.admin, http.MethodPut, path, `{"force_end":true}`)
	if code != http.StatusOK {
		t.Fatalf("admin force_end: status %d %+v", code, env)
	}
	if decodeData(t, env)["end_reason"] != "forced" {
		t.Fatalf("lot not force ended: %s", env.Data)
	}

	code, _ = api.do(t, api.employee, http.MethodDelete, path, "")
	if code != http.StatusForbidden {
		t.Fatalf("employee delete: status %d", code)
	}

	code, _ = api.do(t, api.admin, http.MethodDelete, path, "")
	if code != http.StatusOK {
		t.Fatalf("admin delete: status %d", code)
	}

	code, env = api.do(t, api.employee, http.MethodGet, path, "")
	if code != http.StatusNotFound || env.Code != "not_found" {
		t.Fatalf("get deleted lot: status %d code %q", code, env.Code)
	}
}

func TestInvalidPathAndPagination(t *testing.T) {
	api := newAPI(t)

	code, _ := api.do(t, api.employee, http.MethodGet, "/api/lots/abc", "")
	if code != http.StatusBadRequest {
		t.Fatalf("non-numeric id: status %d", code)
	}

	code, env := api.do(t, api.employee, http.MethodGet, "/api/lots?limit=-1", "")
	if code != http.StatusBadRequest || env.Fields["limit"] == "" {
		t.Fatalf("negative limit: status %d fields %v", code, env.Fields)
	}
}

func createLot(t *testing.T, api *apiEnv, quantity float64) uint {
	t.Helper()
	code, env := api.do(t, api.employee, http.MethodPost, "/api/lots",
		fmt.Sprintf(`{"name":"lot","quantity_available":%g,"unit_price":1,"acquisition_cost":1}`, quantity))
	if code != http.StatusCreated {
		t.Fatalf("create lot: status %d %+v", code, env)
	}
	return uint(decodeData(t, env)["id"].(float64))
}

func rejections(t *testing.T, reg *prometheus.Registry, endpoint, code string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != "stock_service_rejections_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, l := range m.GetLabel() {
				labels[l.GetName()] = l.GetValue()
			}
			if labels["endpoint"] == endpoint && labels["code"] == code {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}
