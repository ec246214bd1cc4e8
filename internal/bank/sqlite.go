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

package bank

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"crowdfund-ledger-go/internal/models"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Compile-time check: *Service must satisfy Transfer.
var _ Transfer = (*Service)(nil)

// Service is the SQLite-backed asset subledger: a balance row per
// (account, asset) plus an immutable transfer trail. Every Move runs inside
// a single database transaction.
type Service struct {
	db *sql.DB
}

func NewService(ctx context.Context, cfg models.BankConfig) (*Service, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("bank database path cannot be empty")
	}
	if cfg.MaxOpenConns <= 0 {
		return nil, fmt.Errorf("max open connections must be positive, got %d", cfg.MaxOpenConns)
	}
	if cfg.PingTimeout <= 0 {
		return nil, fmt.Errorf("ping timeout must be positive, got %v", cfg.PingTimeout)
	}

	zap.L().Info("Opening bank database", zap.String("file", cfg.Path))
	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000")
	if err != nil {
		return nil, fmt.Errorf("unable to open bank database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("unable to ping bank database: %w", err)
	}

	service := &Service{db: db}
	if err := service.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("unable to initialize bank schema: %w", err)
	}

	zap.L().Info("Bank service initialized successfully")
	return service, nil
}

// NewServiceFromDB wraps an already-open database. Used by tests with an
// in-memory sqlite instance.
func NewServiceFromDB(ctx context.Context, db *sql.DB) (*Service, error) {
	service := &Service{db: db}
	if err := service.initSchema(ctx); err != nil {
		return nil, err
	}
	return service, nil
}

func (s *Service) initSchema(ctx context.Context) error {
	schema := `
	-- Account Balances Table (Current State - Hot Data)
	CREATE TABLE IF NOT EXISTS account_balances (
		id TEXT PRIMARY KEY,
		account TEXT NOT NULL,
		asset TEXT NOT NULL,
		balance TEXT NOT NULL DEFAULT '0',
		last_transfer_id TEXT,
		version INTEGER NOT NULL DEFAULT 1,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(account, asset)
	);

	-- Transfers Table (Audit Trail - Cold Data)
	CREATE TABLE IF NOT EXISTS transfers (
		id TEXT PRIMARY KEY,
		from_account TEXT NOT NULL,
		to_account TEXT NOT NULL,
		asset TEXT NOT NULL,
		amount TEXT NOT NULL,
		reference TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_account_balances_account_asset ON account_balances(account, asset);
	CREATE INDEX IF NOT EXISTS idx_transfers_from_account ON transfers(from_account);
	CREATE INDEX IF NOT EXISTS idx_transfers_to_account ON transfers(to_account);
	CREATE INDEX IF NOT EXISTS idx_transfers_created_at ON transfers(created_at);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *Service) Close() {
	if err := s.db.Close(); err != nil {
		zap.L().Warn("Failed to close bank database connection", zap.Error(err))
	}
}

func (s *Service) Move(ctx context.Context, from, to, asset string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("unable to begin transfer: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	fromBalance, err := balanceForUpdate(ctx, tx, from, asset)
	if err != nil {
		return err
	}
	if fromBalance.LessThan(amount) {
		return ErrInsufficientBalance
	}

	if err := applyDelta(ctx, tx, from, asset, amount.Neg()); err != nil {
		return err
	}
	if err := applyDelta(ctx, tx, to, asset, amount); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO transfers (id, from_account, to_account, asset, amount)
		VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), from, to, asset, amount.String()); err != nil {
		return fmt.Errorf("unable to record transfer: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("unable to commit transfer: %w", err)
	}
	return nil
}

func (s *Service) Deposit(ctx context.Context, account, asset string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("unable to begin deposit: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := applyDelta(ctx, tx, account, asset, amount); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO transfers (id, from_account, to_account, asset, amount, reference)
		VALUES (?, '', ?, ?, ?, 'deposit')`,
		uuid.New().String(), account, asset, amount.String()); err != nil {
		return fmt.Errorf("unable to record deposit: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("unable to commit deposit: %w", err)
	}
	return nil
}

func (s *Service) Balance(ctx context.Context, account, asset string) (decimal.Decimal, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `
		SELECT balance FROM account_balances WHERE account = ? AND asset = ?`,
		account, asset).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("unable to read balance: %w", err)
	}
	balance, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("corrupt balance %q for %s/%s: %w", raw, account, asset, err)
	}
	return balance, nil
}

func balanceForUpdate(ctx context.Context, tx *sql.Tx, account, asset string) (decimal.Decimal, error) {
	var raw string
	err := tx.QueryRowContext(ctx, `
		SELECT balance FROM account_balances WHERE account = ? AND asset = ?`,
		account, asset).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("unable to read balance: %w", err)
	}
	return decimal.NewFromString(raw)
}

func applyDelta(ctx context.Context, tx *sql.Tx, account, asset string, delta decimal.Decimal) error {
	current, err := balanceForUpdate(ctx, tx, account, asset)
	if err != nil {
		return err
	}
	next := current.Add(delta)

	result, err := tx.ExecContext(ctx, `
		UPDATE account_balances
		SET balance = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE account = ? AND asset = ?`,
		next.String(), account, asset)
	if err != nil {
		return fmt.Errorf("unable to update balance: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("unable to check balance update: %w", err)
	}
	if affected == 0 {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO account_balances (id, account, asset, balance, version)
			VALUES (?, ?, ?, ?, 1)`,
			uuid.New().String(), account, asset, next.String()); err != nil {
			return fmt.Errorf("unable to create balance row: %w", err)
		}
	}
	return nil
}
