package bank

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

// Memory is an in-process Transfer used by tests and local tooling.
type Memory struct {
	mu       sync.Mutex
	balances map[string]map[string]decimal.Decimal // account -> asset -> balance
}

func NewMemory() *Memory {
	return &Memory{balances: make(map[string]map[string]decimal.Decimal)}
}

func (m *Memory) balance(account, asset string) decimal.Decimal {
	if assets, ok := m.balances[account]; ok {
		return assets[asset]
	}
	return decimal.Zero
}

func (m *Memory) credit(account, asset string, amount decimal.Decimal) {
	assets, ok := m.balances[account]
	if !ok {
		assets = make(map[string]decimal.Decimal)
		m.balances[account] = assets
	}
	assets[asset] = assets[asset].Add(amount)
}

func (m *Memory) Move(_ context.Context, from, to, asset string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balance(from, asset).LessThan(amount) {
		return ErrInsufficientBalance
	}
	m.credit(from, asset, amount.Neg())
	m.credit(to, asset, amount)
	return nil
}

func (m *Memory) Deposit(_ context.Context, account, asset string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.credit(account, asset, amount)
	return nil
}

func (m *Memory) Balance(_ context.Context, account, asset string) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balance(account, asset), nil
}
