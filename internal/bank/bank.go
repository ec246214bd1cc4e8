/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package bank is the asset-transfer capability consumed by the ledger
// engine. A transfer either fully succeeds or leaves both accounts
// untouched; the engine aborts the calling operation on any failure.
package bank

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// Sentinel errors shared across all backend implementations.
var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("transfer amount must be positive")
)

// Transfer moves value between accounts, all-or-nothing.
type Transfer interface {
	// Move debits `from` and credits `to` atomically. Fails with
	// ErrInsufficientBalance when `from` does not hold the amount.
	Move(ctx context.Context, from, to, asset string, amount decimal.Decimal) error

	// Deposit credits an account from outside the system (on-ramp).
	Deposit(ctx context.Context, account, asset string, amount decimal.Decimal) error

	// Balance returns the current holding of an account, zero if none.
	Balance(ctx context.Context, account, asset string) (decimal.Decimal, error)
}
