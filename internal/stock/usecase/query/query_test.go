package query_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tair/stock-ledger/internal/stock/domain"
	"github.com/tair/stock-ledger/internal/stock/repository"
	"github.com/tair/stock-ledger/internal/stock/usecase/query"
	"github.com/tair/stock-ledger/internal/testutil"
)

func seed(t *testing.T) *repository.GormStore {
	t.Helper()
	store := repository.NewGormStore(testutil.NewTestDB(t))
	ctx := context.Background()
	now := time.Now()

	for i, q := range []float64{100, 0, 40} {
		lot, _ := domain.NewLot("lot", q, now)
		lot.AcquisitionCost = decimal.NewFromInt(int64(100 * (i + 1)))
		if i == 0 {
			lot.CreditRevenue(decimal.NewFromInt(250))
		}
		if err := store.Lots().Create(ctx, lot); err != nil {
			t.Fatalf("create lot: %v", err)
		}
	}

	agent := "alice"
	portions := []domain.Portion{
		{LotID: 1, SourceQuantityConsumed: 10, UnitCount: 3, AssignedAgent: &agent,
			AccumulatedSaleRevenue: decimal.NewNullDecimal(decimal.NewFromInt(70))},
		{LotID: 3, SourceQuantityConsumed: 5, UnitCount: 2},
	}
	for i := range portions {
		if err := store.Portions().Create(ctx, &portions[i]); err != nil {
			t.Fatalf("create portion: %v", err)
		}
	}
	return store
}

func TestGetSummary(t *testing.T) {
	store := seed(t)

	s, err := query.NewGetSummaryHandler(store).Handle(context.Background(), query.GetSummaryQuery{})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if s.TotalLots != 3 || s.OpenLots != 2 || s.EndedLots != 1 {
		t.Fatalf("lot counts wrong: %+v", s)
	}
	if s.QuantityInStock != 140 || s.OutstandingUnits != 5 {
		t.Fatalf("stock wrong: %+v", s)
	}
	checks := map[string]struct{ got, want decimal.Decimal }{
		"acquisition_cost": {s.AcquisitionCost, decimal.NewFromInt(600)},
		"total_revenue":    {s.TotalRevenue, decimal.NewFromInt(320)},
		"profit":           {s.Profit, decimal.NewFromInt(-280)},
	}
	for name, c := range checks {
		if !c.got.Equal(c.want) {
			t.Fatalf("%s = %s, want %s", name, c.got, c.want)
		}
	}
}

func TestListPortions_ByAgentAndPaging(t *testing.T) {
	store := seed(t)
	h := query.NewListPortionsHandler(store)
	ctx := context.Background()

	mine, err := h.Handle(ctx, query.ListPortionsQuery{Agent: "alice"})
	if err != nil || len(mine) != 1 || mine[0].LotID != 1 {
		t.Fatalf("by agent: %+v %v", mine, err)
	}

	page, err := h.Handle(ctx, query.ListPortionsQuery{Page: query.Page{Limit: 1, Offset: 1}})
	if err != nil || len(page) != 1 || page[0].LotID != 3 {
		t.Fatalf("paging: %+v %v", page, err)
	}

	lots, err := query.NewListLotsHandler(store).Handle(ctx, query.ListLotsQuery{Page: query.Page{Limit: 1000}})
	if err != nil || len(lots) != 3 {
		t.Fatalf("lots: %d %v", len(lots), err)
	}
}

func TestGetters_NotFound(t *testing.T) {
	store := seed(t)
	ctx := context.Background()

	if _, err := query.NewGetLotHandler(store).Handle(ctx, query.GetLotQuery{ID: 9}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("lot: %v", err)
	}
	if _, err := query.NewGetPortionHandler(store).Handle(ctx, query.GetPortionQuery{ID: 9}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("portion: %v", err)
	}
	if _, err := query.NewGetSaleHandler(store).Handle(ctx, query.GetSaleQuery{ID: 9}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("sale: %v", err)
	}
}
