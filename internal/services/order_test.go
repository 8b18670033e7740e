package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/draughtworks/brewdeck/internal/services"
	"github.com/draughtworks/brewdeck/internal/store"
	"github.com/draughtworks/brewdeck/internal/testutil"
	"github.com/draughtworks/brewdeck/pkg/models"
)

// seedBeer inserts a catalog beer and returns its ID.
func seedBeer(t *testing.T, st *store.SQLiteStore, name string) int64 {
	t.Helper()
	repo := services.NewSQLiteBeerRepository(st.DB())
	b, err := repo.Create(context.Background(), testutil.NewBeerRequest(testutil.WithBeerName(name)))
	if err != nil {
		t.Fatalf("seed beer %q: %v", name, err)
	}
	return b.ID
}

func TestOrderRepository_CreateResolvesBeerNames(t *testing.T) {
	st := newTestStore(t)
	repo := services.NewSQLiteOrderRepository(st)
	ctx := context.Background()

	beerID := seedBeer(t, st, "Mango Bobs")
	order, err := repo.Create(ctx, testutil.NewOrderCommand(beerID))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if order.Status != string(models.OrderStatusPending) {
		t.Errorf("Status = %q, want PENDING", order.Status)
	}
	if len(order.Lines) != 1 {
		t.Fatalf("Lines len = %d, want 1", len(order.Lines))
	}
	if order.Lines[0].BeerName != "Mango Bobs" {
		t.Errorf("Lines[0].BeerName = %q, want Mango Bobs", order.Lines[0].BeerName)
	}
	if order.Lines[0].OrderQuantity != 2 {
		t.Errorf("Lines[0].OrderQuantity = %d, want 2", order.Lines[0].OrderQuantity)
	}
}

func TestOrderRepository_CreateUnknownBeer(t *testing.T) {
	st := newTestStore(t)
	repo := services.NewSQLiteOrderRepository(st)

	_, err := repo.Create(context.Background(), testutil.NewOrderCommand(777))
	if !errors.Is(err, services.ErrNotFound) {
		t.Errorf("Create with unknown beer error = %v, want ErrNotFound", err)
	}
}

func TestOrderRepository_ListNewestFirst(t *testing.T) {
	st := newTestStore(t)
	repo := services.NewSQLiteOrderRepository(st)
	ctx := context.Background()

	beerID := seedBeer(t, st, "Galaxy Cat")
	var ids []int64
	for i := 0; i < 3; i++ {
		o, err := repo.Create(ctx, testutil.NewOrderCommand(beerID))
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		ids = append(ids, o.ID)
	}

	orders, err := repo.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(orders) != 3 {
		t.Fatalf("List len = %d, want 3", len(orders))
	}
	// Newest first; creation timestamps can collide, so id breaks the tie.
	if orders[0].ID != ids[2] {
		t.Errorf("orders[0].ID = %d, want %d", orders[0].ID, ids[2])
	}
	if orders[2].ID != ids[0] {
		t.Errorf("orders[2].ID = %d, want %d", orders[2].ID, ids[0])
	}
	for i, o := range orders {
		if len(o.Lines) != 1 {
			t.Errorf("orders[%d].Lines len = %d, want 1", i, len(o.Lines))
		}
	}
}

func TestOrderRepository_ListStatusFilter(t *testing.T) {
	st := newTestStore(t)
	repo := services.NewSQLiteOrderRepository(st)
	ctx := context.Background()

	beerID := seedBeer(t, st, "Pinball Porter")
	pending, err := repo.Create(ctx, testutil.NewOrderCommand(beerID))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	other, err := repo.Create(ctx, testutil.NewOrderCommand(beerID))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.UpdateStatus(ctx, other.ID, other.Version, string(models.OrderStatusPaid)); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	paid, err := repo.List(ctx, string(models.OrderStatusPaid))
	if err != nil {
		t.Fatalf("List(PAID): %v", err)
	}
	if len(paid) != 1 || paid[0].ID != other.ID {
		t.Errorf("List(PAID) = %v orders, want just %d", len(paid), other.ID)
	}

	pendingList, err := repo.List(ctx, string(models.OrderStatusPending))
	if err != nil {
		t.Fatalf("List(PENDING): %v", err)
	}
	if len(pendingList) != 1 || pendingList[0].ID != pending.ID {
		t.Errorf("List(PENDING) = %v orders, want just %d", len(pendingList), pending.ID)
	}
}

func TestOrderRepository_UpdateReplacesLines(t *testing.T) {
	st := newTestStore(t)
	repo := services.NewSQLiteOrderRepository(st)
	ctx := context.Background()

	first := seedBeer(t, st, "Mango Bobs")
	second := seedBeer(t, st, "Galaxy Cat")

	order, err := repo.Create(ctx, testutil.NewOrderCommand(first))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := repo.Update(ctx, order.ID, order.Version, testutil.NewOrderCommand(second))
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Version != order.Version+1 {
		t.Errorf("Version = %d, want %d", updated.Version, order.Version+1)
	}
	if len(updated.Lines) != 1 {
		t.Fatalf("Lines len = %d, want 1", len(updated.Lines))
	}
	if updated.Lines[0].BeerID != second {
		t.Errorf("Lines[0].BeerID = %d, want %d", updated.Lines[0].BeerID, second)
	}

	// The replace is transactional: a stale version leaves lines untouched.
	_, err = repo.Update(ctx, order.ID, order.Version, testutil.NewOrderCommand(first))
	if !errors.Is(err, services.ErrConflict) {
		t.Fatalf("stale Update error = %v, want ErrConflict", err)
	}
	got, err := repo.Get(ctx, order.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Lines[0].BeerID != second {
		t.Errorf("Lines[0].BeerID after failed update = %d, want %d", got.Lines[0].BeerID, second)
	}
}

func TestOrderRepository_UpdateStatusVersionGuard(t *testing.T) {
	st := newTestStore(t)
	repo := services.NewSQLiteOrderRepository(st)
	ctx := context.Background()

	beerID := seedBeer(t, st, "Echo Export")
	order, err := repo.Create(ctx, testutil.NewOrderCommand(beerID))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	paid, err := repo.UpdateStatus(ctx, order.ID, order.Version, string(models.OrderStatusPaid))
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if paid.Status != string(models.OrderStatusPaid) {
		t.Errorf("Status = %q, want PAID", paid.Status)
	}

	_, err = repo.UpdateStatus(ctx, order.ID, order.Version, string(models.OrderStatusCancelled))
	if !errors.Is(err, services.ErrConflict) {
		t.Errorf("stale UpdateStatus error = %v, want ErrConflict", err)
	}
}

func TestOrderRepository_DeleteCascadesLines(t *testing.T) {
	st := newTestStore(t)
	repo := services.NewSQLiteOrderRepository(st)
	ctx := context.Background()

	beerID := seedBeer(t, st, "Delta Dunkel")
	order, err := repo.Create(ctx, testutil.NewOrderCommand(beerID))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := repo.Delete(ctx, order.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(ctx, order.ID); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("Get after delete error = %v, want ErrNotFound", err)
	}

	var lines int
	err = st.DB().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM beer_order_lines WHERE beer_order_id = ?`, order.ID).Scan(&lines)
	if err != nil {
		t.Fatalf("count lines: %v", err)
	}
	if lines != 0 {
		t.Errorf("orphaned lines = %d, want 0", lines)
	}
}
