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
	"crowdfund-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Initialize sets the admin, default asset, creation fee and the unpaused
// flag exactly once.
func (e *Engine) Initialize(ctx context.Context, admin, asset string, creationFee decimal.Decimal) error {
	ok, err := e.operational.Has(ctx, store.AdminKey())
	if err != nil {
		return fmt.Errorf("check admin: %w", err)
	}
	if ok {
		return ErrAlreadyInitialized
	}
	if creationFee.IsNegative() {
		return ErrInvalidFee
	}

	if err := e.operational.Set(ctx, store.AdminKey(), admin); err != nil {
		return fmt.Errorf("store admin: %w", err)
	}
	if err := e.operational.Set(ctx, store.DefaultAssetKey(), asset); err != nil {
		return fmt.Errorf("store default asset: %w", err)
	}
	if err := e.operational.Set(ctx, store.CreationFeeKey(), creationFee); err != nil {
		return fmt.Errorf("store creation fee: %w", err)
	}
	if err := e.operational.Set(ctx, store.PausedKey(), false); err != nil {
		return fmt.Errorf("store pause flag: %w", err)
	}

	e.logger.Info("Platform initialized",
		zap.String("admin", admin),
		zap.String("asset", asset),
		zap.String("creation_fee", creationFee.String()))
	return nil
}

// Pause halts every mutating operation. Admin only.
func (e *Engine) Pause(ctx context.Context, auth AuthContext) error {
	admin, err := e.requireAdmin(ctx, auth)
	if err != nil {
		return err
	}
	paused, err := e.IsPaused(ctx)
	if err != nil {
		return err
	}
	if paused {
		return ErrAlreadyPaused
	}

	if err := e.operational.Set(ctx, store.PausedKey(), true); err != nil {
		return fmt.Errorf("store pause flag: %w", err)
	}
	e.emit(ctx, events.TopicContractPaused, map[string]any{
		"admin": admin,
		"at":    e.now(),
	})
	return nil
}

// Unpause resumes mutating operations. Admin only.
func (e *Engine) Unpause(ctx context.Context, auth AuthContext) error {
	admin, err := e.requireAdmin(ctx, auth)
	if err != nil {
		return err
	}
	paused, err := e.IsPaused(ctx)
	if err != nil {
		return err
	}
	if !paused {
		return ErrAlreadyUnpaused
	}

	if err := e.operational.Set(ctx, store.PausedKey(), false); err != nil {
		return fmt.Errorf("store pause flag: %w", err)
	}
	e.emit(ctx, events.TopicContractUnpaused, map[string]any{
		"admin": admin,
		"at":    e.now(),
	})
	return nil
}

func (e *Engine) IsPaused(ctx context.Context) (bool, error) {
	var paused bool
	ok, err := e.operational.Get(ctx, store.PausedKey(), &paused)
	if err != nil {
		return false, fmt.Errorf("read pause flag: %w", err)
	}
	return ok && paused, nil
}

// RenounceAdmin removes the admin permanently. There is no recovery path;
// every admin-gated operation fails with ErrNotInitialized afterwards.
func (e *Engine) RenounceAdmin(ctx context.Context, auth AuthContext) error {
	admin, err := e.requireAdmin(ctx, auth)
	if err != nil {
		return err
	}
	if err := e.operational.Remove(ctx, store.AdminKey()); err != nil {
		return fmt.Errorf("remove admin: %w", err)
	}
	e.logger.Warn("Admin renounced, platform is now admin-less", zap.String("admin", admin))
	e.emit(ctx, events.TopicAdminRenounced, map[string]any{"admin": admin})
	return nil
}

// BlacklistAddress flags an address in the archival tier. Admin only.
func (e *Engine) BlacklistAddress(ctx context.Context, auth AuthContext, address string) error {
	admin, err := e.requireAdmin(ctx, auth)
	if err != nil {
		return err
	}
	if err := e.archival.Set(ctx, store.BlacklistKey(address), true); err != nil {
		return fmt.Errorf("store blacklist entry: %w", err)
	}
	e.emit(ctx, events.TopicAddressBlacklisted, map[string]any{
		"admin":   admin,
		"address": address,
	})
	return nil
}

// UnblacklistAddress clears the flag. Admin only.
func (e *Engine) UnblacklistAddress(ctx context.Context, auth AuthContext, address string) error {
	admin, err := e.requireAdmin(ctx, auth)
	if err != nil {
		return err
	}
	if err := e.archival.Remove(ctx, store.BlacklistKey(address)); err != nil {
		return fmt.Errorf("remove blacklist entry: %w", err)
	}
	e.emit(ctx, events.TopicAddressUnblacklisted, map[string]any{
		"admin":   admin,
		"address": address,
	})
	return nil
}

func (e *Engine) IsBlacklisted(ctx context.Context, address string) (bool, error) {
	var flagged bool
	ok, err := e.archival.Get(ctx, store.BlacklistKey(address), &flagged)
	if err != nil {
		return false, fmt.Errorf("read blacklist entry: %w", err)
	}
	return ok && flagged, nil
}

// SetDefaultAsset replaces the platform's accepted asset. Admin only.
func (e *Engine) SetDefaultAsset(ctx context.Context, auth AuthContext, asset string) error {
	admin, err := e.requireAdmin(ctx, auth)
	if err != nil {
		return err
	}
	if err := e.operational.Set(ctx, store.DefaultAssetKey(), asset); err != nil {
		return fmt.Errorf("store default asset: %w", err)
	}
	e.emit(ctx, events.TopicDefaultAssetSet, map[string]any{
		"admin": admin,
		"asset": asset,
	})
	return nil
}

func (e *Engine) GetDefaultAsset(ctx context.Context) (string, error) {
	var asset string
	ok, err := e.operational.Get(ctx, store.DefaultAssetKey(), &asset)
	if err != nil {
		return "", fmt.Errorf("read default asset: %w", err)
	}
	if !ok {
		return "", ErrNotInitialized
	}
	return asset, nil
}

// SetCreationFee replaces the campaign creation fee. Admin only.
func (e *Engine) SetCreationFee(ctx context.Context, auth AuthContext, fee decimal.Decimal) error {
	admin, err := e.requireAdmin(ctx, auth)
	if err != nil {
		return err
	}
	if fee.IsNegative() {
		return ErrInvalidFee
	}
	if err := e.operational.Set(ctx, store.CreationFeeKey(), fee); err != nil {
		return fmt.Errorf("store creation fee: %w", err)
	}
	e.emit(ctx, events.TopicCreationFeeSet, map[string]any{
		"admin": admin,
		"fee":   fee.String(),
	})
	return nil
}

func (e *Engine) GetCreationFee(ctx context.Context) (decimal.Decimal, error) {
	return e.getDecimal(ctx, e.operational, store.CreationFeeKey())
}

// SetEmergencyContact records the identity notified out-of-band for
// emergency handling. Admin only.
func (e *Engine) SetEmergencyContact(ctx context.Context, auth AuthContext, contact string) error {
	admin, err := e.requireAdmin(ctx, auth)
	if err != nil {
		return err
	}
	if err := e.operational.Set(ctx, store.EmergencyContactKey(), contact); err != nil {
		return fmt.Errorf("store emergency contact: %w", err)
	}
	e.emit(ctx, events.TopicEmergencyContactUpdated, map[string]any{
		"admin":   admin,
		"contact": contact,
	})
	return nil
}

func (e *Engine) GetEmergencyContact(ctx context.Context) (string, error) {
	var contact string
	ok, err := e.operational.Get(ctx, store.EmergencyContactKey(), &contact)
	if err != nil {
		return "", fmt.Errorf("read emergency contact: %w", err)
	}
	if !ok {
		return "", ErrNotInitialized
	}
	return contact, nil
}

// VerifyCause marks an identity as a platform-verified cause. Admin only.
func (e *Engine) VerifyCause(ctx context.Context, auth AuthContext, cause string) error {
	admin, err := e.requireAdmin(ctx, auth)
	if err != nil {
		return err
	}
	if err := e.operational.Set(ctx, store.VerifiedCauseKey(cause), true); err != nil {
		return fmt.Errorf("store verified cause: %w", err)
	}
	e.emit(ctx, events.TopicCauseVerified, map[string]any{
		"admin": admin,
		"cause": cause,
	})
	return nil
}

func (e *Engine) IsCauseVerified(ctx context.Context, cause string) (bool, error) {
	var verified bool
	ok, err := e.operational.Get(ctx, store.VerifiedCauseKey(cause), &verified)
	if err != nil {
		return false, fmt.Errorf("read verified cause: %w", err)
	}
	return ok && verified, nil
}
