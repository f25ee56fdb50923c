package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tair/stock-ledger/internal/stock/domain"
	"github.com/tair/stock-ledger/internal/stock/repository"
	"github.com/tair/stock-ledger/internal/testutil"
)

func newStore(t *testing.T) *repository.GormStore {
	t.Helper()
	return repository.NewGormStore(testutil.NewTestDB(t))
}

func seedLot(t *testing.T, store *repository.GormStore, name string) *domain.Lot {
	t.Helper()
	lot := &domain.Lot{
		Name:              name,
		QuantityAvailable: 100,
		UnitPrice:         decimal.NewFromInt(10),
		AcquisitionCost:   decimal.NewFromInt(500),
	}
	if err := store.Lots().Create(context.Background(), lot); err != nil {
		t.Fatalf("create lot: %v", err)
	}
	return lot
}

func TestLotRepository_CRUD(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	lot := seedLot(t, store, "Strain A")

	got, err := store.Lots().FindByIDForUpdate(ctx, lot.ID)
	if err != nil {
		t.Fatalf("FindByIDForUpdate: %v", err)
	}
	if got.Name != "Strain A" || got.QuantityAvailable != 100 || !got.UnitPrice.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("unexpected lot %+v", got)
	}

	got.QuantityAvailable = 40
	if err := store.Lots().Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if again, _ := store.Lots().FindByID(ctx, lot.ID); again.QuantityAvailable != 40 {
		t.Fatalf("quantity = %g, want 40", again.QuantityAvailable)
	}

	if err := store.Lots().Delete(ctx, lot.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Lots().FindByID(ctx, lot.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Lots().Delete(ctx, lot.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestLotRepository_FindAllPaginates(t *testing.T) {
	store := newStore(t)
	for _, name := range []string{"a", "b", "c"} {
		seedLot(t, store, name)
	}

	lots, err := store.Lots().FindAll(context.Background(), 2, 1)
	if err != nil {
		t.Fatalf("FindAll: %v", err)
	}
	if len(lots) != 2 || lots[0].Name != "b" || lots[1].Name != "c" {
		t.Fatalf("unexpected page %+v", lots)
	}
}

func TestPortionRepository_FindByAgentAndCascade(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	lot := seedLot(t, store, "Strain A")
	other := seedLot(t, store, "Strain B")

	alice := "alice"
	for _, p := range []*domain.Portion{
		{LotID: lot.ID, SourceQuantityConsumed: 10, UnitCount: 2, AssignedAgent: &alice},
		{LotID: lot.ID, SourceQuantityConsumed: 10, UnitCount: 2},
		{LotID: other.ID, SourceQuantityConsumed: 10, UnitCount: 2, AssignedAgent: &alice},
	} {
		if err := store.Portions().Create(ctx, p); err != nil {
			t.Fatalf("create portion: %v", err)
		}
	}

	mine, err := store.Portions().FindByAgent(ctx, "alice", 0, 0)
	if err != nil || len(mine) != 2 {
		t.Fatalf("FindByAgent: %d portions, err %v", len(mine), err)
	}

	if err := store.Portions().DeleteByLotID(ctx, lot.ID); err != nil {
		t.Fatalf("DeleteByLotID: %v", err)
	}
	rest, _ := store.Portions().FindAll(ctx, 0, 0)
	if len(rest) != 1 || rest[0].LotID != other.ID {
		t.Fatalf("cascade removed the wrong portions: %+v", rest)
	}
}

func TestDisposalRepository_NotFoundUsesSaleEntity(t *testing.T) {
	store := newStore(t)

	_, err := store.Disposals().FindByID(context.Background(), 99)
	de, ok := domain.AsError(err)
	if !ok || !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if de.Message != "sale 99 not found" {
		t.Fatalf("message = %q", de.Message)
	}
}

func TestExecute_RollsBackOnError(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	lot := seedLot(t, store, "Strain A")
	boom := errors.New("boom")

	err := store.Execute(ctx, func(repos domain.Repositories) error {
		l, err := repos.Lots().FindByIDForUpdate(ctx, lot.ID)
		if err != nil {
			return err
		}
		l.QuantityAvailable = 0
		if err := repos.Lots().Update(ctx, l); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	got, _ := store.Lots().FindByID(ctx, lot.ID)
	if got.QuantityAvailable != 100 {
		t.Fatalf("quantity = %g, write should have rolled back", got.QuantityAvailable)
	}
}
