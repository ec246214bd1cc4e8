package bank

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestMemory_MoveAndBalance(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if err := m.Deposit(ctx, "alice", "USDC", decimal.NewFromInt(100)); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	if err := m.Move(ctx, "alice", "bob", "USDC", decimal.NewFromInt(40)); err != nil {
		t.Fatalf("Move failed: %v", err)
	}

	aliceBalance, err := m.Balance(ctx, "alice", "USDC")
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}
	if !aliceBalance.Equal(decimal.NewFromInt(60)) {
		t.Errorf("Expected alice balance 60, got %s", aliceBalance.String())
	}

	bobBalance, err := m.Balance(ctx, "bob", "USDC")
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}
	if !bobBalance.Equal(decimal.NewFromInt(40)) {
		t.Errorf("Expected bob balance 40, got %s", bobBalance.String())
	}
}

func TestMemory_MoveInsufficient(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	err := m.Move(ctx, "alice", "bob", "USDC", decimal.NewFromInt(1))
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("Expected ErrInsufficientBalance, got %v", err)
	}

	balance, err := m.Balance(ctx, "bob", "USDC")
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}
	if !balance.IsZero() {
		t.Errorf("Expected failed move to credit nothing, got %s", balance.String())
	}
}

func TestMemory_InvalidAmounts(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if err := m.Deposit(ctx, "alice", "USDC", decimal.Zero); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("Expected ErrInvalidAmount on zero deposit, got %v", err)
	}
	if err := m.Move(ctx, "alice", "bob", "USDC", decimal.NewFromInt(-5)); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("Expected ErrInvalidAmount on negative move, got %v", err)
	}
}

func TestMemory_AssetsAreIndependent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if err := m.Deposit(ctx, "alice", "USDC", decimal.NewFromInt(100)); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}

	err := m.Move(ctx, "alice", "bob", "EURC", decimal.NewFromInt(10))
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("Expected ErrInsufficientBalance for a different asset, got %v", err)
	}
}
