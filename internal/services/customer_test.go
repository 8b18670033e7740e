package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/draughtworks/brewdeck/internal/services"
	"github.com/draughtworks/brewdeck/internal/testutil"
)

func TestCustomerRepository_CreateAndGet(t *testing.T) {
	st := newTestStore(t)
	repo := services.NewSQLiteCustomerRepository(st.DB())
	ctx := context.Background()

	created, err := repo.Create(ctx, testutil.NewCustomerRequest())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == 0 {
		t.Error("expected non-zero ID")
	}

	got, err := repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Email != "orders@craftandbarrel.test" {
		t.Errorf("Email = %q, want orders@craftandbarrel.test", got.Email)
	}
}

func TestCustomerRepository_CreateDuplicateEmail(t *testing.T) {
	st := newTestStore(t)
	repo := services.NewSQLiteCustomerRepository(st.DB())
	ctx := context.Background()

	if _, err := repo.Create(ctx, testutil.NewCustomerRequest()); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := repo.Create(ctx, testutil.NewCustomerRequest(testutil.WithCustomerName("Other Shop")))
	if !errors.Is(err, services.ErrAlreadyExists) {
		t.Errorf("duplicate Create error = %v, want ErrAlreadyExists", err)
	}
}

func TestCustomerRepository_ListOrdersByName(t *testing.T) {
	st := newTestStore(t)
	repo := services.NewSQLiteCustomerRepository(st.DB())
	ctx := context.Background()

	seed := []struct{ name, email string }{
		{"zeta Brewpub", "zeta@example.test"},
		{"Apex Bottle Shop", "apex@example.test"},
		{"Midtown Taproom", "midtown@example.test"},
	}
	for _, s := range seed {
		_, err := repo.Create(ctx, testutil.NewCustomerRequest(
			testutil.WithCustomerName(s.name), testutil.WithEmail(s.email)))
		if err != nil {
			t.Fatalf("Create(%q): %v", s.name, err)
		}
	}

	customers, err := repo.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(customers) != 3 {
		t.Fatalf("List len = %d, want 3", len(customers))
	}
	// Ordered by name, case-insensitively.
	want := []string{"Apex Bottle Shop", "Midtown Taproom", "zeta Brewpub"}
	for i, w := range want {
		if customers[i].Name != w {
			t.Errorf("customers[%d].Name = %q, want %q", i, customers[i].Name, w)
		}
	}
}

func TestCustomerRepository_ListNameFilter(t *testing.T) {
	st := newTestStore(t)
	repo := services.NewSQLiteCustomerRepository(st.DB())
	ctx := context.Background()

	for _, s := range []struct{ name, email string }{
		{"Apex Bottle Shop", "apex@example.test"},
		{"Midtown Taproom", "midtown@example.test"},
	} {
		_, err := repo.Create(ctx, testutil.NewCustomerRequest(
			testutil.WithCustomerName(s.name), testutil.WithEmail(s.email)))
		if err != nil {
			t.Fatalf("Create(%q): %v", s.name, err)
		}
	}

	customers, err := repo.List(ctx, "taproom")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(customers) != 1 || customers[0].Name != "Midtown Taproom" {
		t.Errorf("List(taproom) = %v, want [Midtown Taproom]", customers)
	}
}

func TestCustomerRepository_UpdateVersionGuard(t *testing.T) {
	st := newTestStore(t)
	repo := services.NewSQLiteCustomerRepository(st.DB())
	ctx := context.Background()

	created, err := repo.Create(ctx, testutil.NewCustomerRequest())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := repo.Update(ctx, created.ID, created.Version,
		testutil.NewCustomerRequest(testutil.WithCustomerName("Renamed Taproom")))
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Renamed Taproom" {
		t.Errorf("Name = %q, want Renamed Taproom", updated.Name)
	}
	if updated.Version != created.Version+1 {
		t.Errorf("Version = %d, want %d", updated.Version, created.Version+1)
	}

	_, err = repo.Update(ctx, created.ID, created.Version, testutil.NewCustomerRequest())
	if !errors.Is(err, services.ErrConflict) {
		t.Errorf("stale Update error = %v, want ErrConflict", err)
	}
}

func TestCustomerRepository_Delete(t *testing.T) {
	st := newTestStore(t)
	repo := services.NewSQLiteCustomerRepository(st.DB())
	ctx := context.Background()

	created, err := repo.Create(ctx, testutil.NewCustomerRequest())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, created.ID); !errors.Is(err, services.ErrNotFound) {
		t.Errorf("second Delete error = %v, want ErrNotFound", err)
	}
}
