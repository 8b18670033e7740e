package testutil

import (
	"context"
	"testing"

	"github.com/draughtworks/brewdeck/internal/store"
)

// NewStore creates an in-memory SQLiteStore for testing.
// The store is automatically closed when the test completes.
func NewStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	db, err := store.New(":memory:")
	if err != nil {
		t.Fatalf("testutil.NewStore: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// NewMigratedStore creates an in-memory store and applies the given
// migrations under the component name. Fails the test on migration error.
func NewMigratedStore(t *testing.T, component string, migrations []store.Migration) *store.SQLiteStore {
	t.Helper()
	db := NewStore(t)
	if err := db.Migrate(context.Background(), component, migrations); err != nil {
		t.Fatalf("testutil.NewMigratedStore: %v", err)
	}
	return db
}
