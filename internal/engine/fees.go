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

package engine

import (
	"context"
	"fmt"

	"crowdfund-ledger-go/internal/events"
	"crowdfund-ledger-go/internal/models"
	"crowdfund-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// WithdrawPlatformFees pays out part of the accrued creation-fee balance to
// the admin in the platform's default asset.
func (e *Engine) WithdrawPlatformFees(ctx context.Context, auth AuthContext, amount decimal.Decimal) error {
	admin, err := e.requireAdmin(ctx, auth)
	if err != nil {
		return err
	}
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	accrued, err := e.PlatformFees(ctx)
	if err != nil {
		return err
	}
	if amount.GreaterThan(accrued) {
		return ErrInsufficientFees
	}

	asset, err := e.GetDefaultAsset(ctx)
	if err != nil {
		return err
	}

	if err := e.bank.Move(ctx, e.account, admin, asset, amount); err != nil {
		return fmt.Errorf("pay out platform fees: %w", err)
	}
	if err := e.operational.Set(ctx, store.PlatformFeesKey(), accrued.Sub(amount)); err != nil {
		return fmt.Errorf("store platform fees: %w", err)
	}

	e.emit(ctx, events.TopicPlatformFeesWithdrawn, map[string]any{
		"admin":  admin,
		"amount": amount.String(),
	})
	return nil
}

// PlatformFees returns the accrued creation-fee balance.
func (e *Engine) PlatformFees(ctx context.Context) (decimal.Decimal, error) {
	return e.getDecimal(ctx, e.operational, store.PlatformFeesKey())
}

// RequestEmergencyWithdraw files the platform-wide singleton withdrawal
// request. Execution is blocked for 24 hours; the delay is the only defense
// against unilateral fund extraction.
func (e *Engine) RequestEmergencyWithdraw(ctx context.Context, auth AuthContext, token string, amount decimal.Decimal) error {
	admin, err := e.requireAdmin(ctx, auth)
	if err != nil {
		return err
	}

	ok, err := e.operational.Has(ctx, store.EmergencyWithdrawalKey())
	if err != nil {
		return fmt.Errorf("check emergency withdrawal: %w", err)
	}
	if ok {
		return ErrEmergencyWithdrawalAlreadyRequested
	}

	now := e.now()
	request := models.EmergencyWithdrawal{
		Recipient:   admin,
		Amount:      amount,
		Token:       token,
		RequestedAt: now,
		Executed:    false,
	}
	if err := e.operational.Set(ctx, store.EmergencyWithdrawalKey(), request); err != nil {
		return fmt.Errorf("store emergency withdrawal: %w", err)
	}

	e.logger.Warn("Emergency withdrawal requested",
		zap.String("admin", admin),
		zap.String("token", token),
		zap.String("amount", amount.String()),
		zap.Int64("executable_at", now+emergencyTimelock))

	e.emit(ctx, events.TopicEmergencyWithdrawRequested, map[string]any{
		"admin":         admin,
		"token":         token,
		"amount":        amount.String(),
		"executable_at": now + emergencyTimelock,
	})
	return nil
}

// ExecuteEmergencyWithdraw pays out the pending request once the timelock
// has elapsed and clears the singleton so a new request can be filed.
func (e *Engine) ExecuteEmergencyWithdraw(ctx context.Context, auth AuthContext) error {
	admin, err := e.requireAdmin(ctx, auth)
	if err != nil {
		return err
	}

	var request models.EmergencyWithdrawal
	ok, err := e.operational.Get(ctx, store.EmergencyWithdrawalKey(), &request)
	if err != nil {
		return fmt.Errorf("read emergency withdrawal: %w", err)
	}
	if !ok {
		return ErrEmergencyWithdrawalNotRequested
	}
	if request.Executed {
		return ErrEmergencyWithdrawalAlreadyRequested
	}
	if e.now() < request.RequestedAt+emergencyTimelock {
		return ErrEmergencyWithdrawalPeriodNotPassed
	}

	if err := e.bank.Move(ctx, e.account, admin, request.Token, request.Amount); err != nil {
		return fmt.Errorf("pay out emergency withdrawal: %w", err)
	}
	if err := e.operational.Remove(ctx, store.EmergencyWithdrawalKey()); err != nil {
		return fmt.Errorf("clear emergency withdrawal: %w", err)
	}

	e.emit(ctx, events.TopicEmergencyWithdrawExecuted, map[string]any{
		"admin":  admin,
		"token":  request.Token,
		"amount": request.Amount.String(),
	})
	return nil
}

// PendingEmergencyWithdrawal returns the outstanding request, if any.
func (e *Engine) PendingEmergencyWithdrawal(ctx context.Context) (*models.EmergencyWithdrawal, error) {
	var request models.EmergencyWithdrawal
	ok, err := e.operational.Get(ctx, store.EmergencyWithdrawalKey(), &request)
	if err != nil {
		return nil, fmt.Errorf("read emergency withdrawal: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return &request, nil
}
