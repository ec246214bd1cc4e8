package sqlitestore

import (
	"context"
	"testing"

	"crowdfund-ledger-go/internal/store"

	"github.com/shopspring/decimal"
)

func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()
	s, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	return s, func() { _ = s.Close() }
}

func TestStore_RoundTrip(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	fee := decimal.NewFromInt(42)
	if err := s.Set(ctx, store.CreationFeeKey(), fee); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var got decimal.Decimal
	ok, err := s.Get(ctx, store.CreationFeeKey(), &got)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok || !got.Equal(fee) {
		t.Errorf("Expected 42, got %s (found=%v)", got.String(), ok)
	}
}

func TestStore_Upsert(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	if err := s.Set(ctx, store.DefaultAssetKey(), "USDC:a"); err != nil {
		t.Fatalf("First Set failed: %v", err)
	}
	if err := s.Set(ctx, store.DefaultAssetKey(), "EURC:b"); err != nil {
		t.Fatalf("Second Set failed: %v", err)
	}

	var asset string
	ok, err := s.Get(ctx, store.DefaultAssetKey(), &asset)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok || asset != "EURC:b" {
		t.Errorf("Expected EURC:b after upsert, got %q", asset)
	}
}

func TestStore_HasAndRemove(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()
	ctx := context.Background()

	ok, err := s.Has(ctx, store.BlacklistKey("bob"))
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if ok {
		t.Error("Expected key to be absent")
	}

	if err := s.Set(ctx, store.BlacklistKey("bob"), true); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	ok, err = s.Has(ctx, store.BlacklistKey("bob"))
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if !ok {
		t.Error("Expected key to exist")
	}

	if err := s.Remove(ctx, store.BlacklistKey("bob")); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	var flagged bool
	ok, err = s.Get(ctx, store.BlacklistKey("bob"), &flagged)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("Expected key to be gone after remove")
	}
}
