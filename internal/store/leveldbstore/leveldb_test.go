package leveldbstore

import (
	"context"
	"testing"

	"crowdfund-ledger-go/internal/store"

	"github.com/shopspring/decimal"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_RoundTrip(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	total := decimal.NewFromInt(1234)
	if err := s.Set(ctx, store.GlobalTotalRaisedKey(), total); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var got decimal.Decimal
	ok, err := s.Get(ctx, store.GlobalTotalRaisedKey(), &got)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok || !got.Equal(total) {
		t.Errorf("Expected 1234, got %s (found=%v)", got.String(), ok)
	}
}

func TestStore_MissingKey(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	var value string
	ok, err := s.Get(ctx, store.AdminKey(), &value)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("Expected missing key to report not found")
	}

	ok, err = s.Has(ctx, store.AdminKey())
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if ok {
		t.Error("Expected Has to be false for missing key")
	}
}

func TestStore_Remove(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	if err := s.Set(ctx, store.PausedKey(), true); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Remove(ctx, store.PausedKey()); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	ok, err := s.Has(ctx, store.PausedKey())
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if ok {
		t.Error("Expected key to be gone after remove")
	}
}
