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
	"errors"
	"fmt"

	"crowdfund-ledger-go/internal/bank"
	"crowdfund-ledger-go/internal/events"
	"crowdfund-ledger-go/internal/models"
	"crowdfund-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// nextPoolID reads the monotonic id counter, defaulting to 1. Ids are never
// reused.
func (e *Engine) nextPoolID(ctx context.Context) (uint64, error) {
	var next uint64
	ok, err := e.operational.Get(ctx, store.NextPoolIDKey(), &next)
	if err != nil {
		return 0, fmt.Errorf("read next pool id: %w", err)
	}
	if !ok {
		next = 1
	}
	return next, nil
}

// PoolCount returns how many pools have ever been created. Ids run from 1
// through the count, inclusive.
func (e *Engine) PoolCount(ctx context.Context) (uint64, error) {
	next, err := e.nextPoolID(ctx)
	if err != nil {
		return 0, err
	}
	return next - 1, nil
}

func (e *Engine) initPool(ctx context.Context, poolID uint64, config models.PoolConfig) error {
	ok, err := e.operational.Has(ctx, store.PoolKey(poolID))
	if err != nil {
		return fmt.Errorf("check pool: %w", err)
	}
	if ok {
		return ErrPoolAlreadyExists
	}
	if err := e.operational.Set(ctx, store.PoolKey(poolID), config); err != nil {
		return fmt.Errorf("store pool: %w", err)
	}
	if err := e.operational.Set(ctx, store.PoolStateKey(poolID), models.PoolActive); err != nil {
		return fmt.Errorf("store pool state: %w", err)
	}
	if err := e.operational.Set(ctx, store.PoolMetricsKey(poolID), models.PoolMetrics{}); err != nil {
		return fmt.Errorf("store pool metrics: %w", err)
	}
	if err := e.operational.Set(ctx, store.NextPoolIDKey(), poolID+1); err != nil {
		return fmt.Errorf("store next pool id: %w", err)
	}
	return nil
}

// CreatePool registers a pool from a prepared config. CreatedAt is stamped
// by the engine; a zero duration makes a pool that never expires (and never
// refunds).
func (e *Engine) CreatePool(ctx context.Context, auth AuthContext, creator string, config models.PoolConfig) (uint64, error) {
	if err := e.requireUnpaused(ctx); err != nil {
		return 0, err
	}
	if !auth.Authorized(creator) {
		return 0, ErrUnauthorized
	}
	if config.Name == "" {
		return 0, ErrInvalidPoolName
	}
	if !config.TargetAmount.IsPositive() {
		return 0, ErrInvalidPoolTarget
	}
	if config.Duration < 0 {
		return 0, ErrInvalidPoolDeadline
	}
	if len(config.Description) > maxDescriptionLength {
		return 0, ErrInvalidMetadata
	}

	config.CreatedAt = e.now()

	poolID, err := e.nextPoolID(ctx)
	if err != nil {
		return 0, err
	}
	if err := e.initPool(ctx, poolID, config); err != nil {
		return 0, err
	}

	e.logger.Info("Pool created",
		zap.Uint64("pool_id", poolID),
		zap.String("creator", creator),
		zap.String("target", config.TargetAmount.String()))

	e.emit(ctx, events.TopicPoolCreated, map[string]any{
		"pool_id":  poolID,
		"name":     config.Name,
		"creator":  creator,
		"target":   config.TargetAmount.String(),
		"deadline": config.Deadline(),
	})
	return poolID, nil
}

// SavePool registers a pool from its parts: name, archival metadata, an
// absolute deadline (converted to a duration from now) and an optional
// multi-sig gate. RequiredSignatures and signers must be supplied together
// or not at all.
func (e *Engine) SavePool(ctx context.Context, auth AuthContext, name string, metadata models.PoolMetadata, creator string, targetAmount decimal.Decimal, deadline int64, requiredSignatures *uint32, signers []string) (uint64, error) {
	if err := e.requireUnpaused(ctx); err != nil {
		return 0, err
	}
	if !auth.Authorized(creator) {
		return 0, ErrUnauthorized
	}
	if name == "" {
		return 0, ErrInvalidPoolName
	}
	if !targetAmount.IsPositive() {
		return 0, ErrInvalidPoolTarget
	}
	now := e.now()
	if deadline <= now {
		return 0, ErrInvalidPoolDeadline
	}
	if len(metadata.Description) > maxDescriptionLength ||
		len(metadata.ExternalURL) > maxURLLength ||
		len(metadata.ImageHash) > maxHashLength {
		return 0, ErrInvalidMetadata
	}

	multiSig, err := validateMultiSig(requiredSignatures, signers)
	if err != nil {
		return 0, err
	}

	config := models.PoolConfig{
		Name:         name,
		Description:  metadata.Description,
		TargetAmount: targetAmount,
		IsPrivate:    false,
		Duration:     deadline - now,
		CreatedAt:    now,
	}

	poolID, err := e.nextPoolID(ctx)
	if err != nil {
		return 0, err
	}
	if err := e.initPool(ctx, poolID, config); err != nil {
		return 0, err
	}

	if err := e.archival.Set(ctx, store.PoolMetadataKey(poolID), metadata); err != nil {
		return 0, fmt.Errorf("store pool metadata: %w", err)
	}
	if multiSig != nil {
		if err := e.operational.Set(ctx, store.PoolMultiSigKey(poolID), multiSig); err != nil {
			return 0, fmt.Errorf("store multi-sig config: %w", err)
		}
	}

	e.emit(ctx, events.TopicPoolCreated, map[string]any{
		"pool_id":  poolID,
		"name":     name,
		"creator":  creator,
		"target":   targetAmount.String(),
		"deadline": deadline,
	})
	return poolID, nil
}

// validateMultiSig enforces the both-or-neither rule and the quorum bounds.
func validateMultiSig(requiredSignatures *uint32, signers []string) (*models.MultiSigConfig, error) {
	switch {
	case requiredSignatures != nil && signers != nil:
		if len(signers) == 0 {
			return nil, ErrInvalidSignerCount
		}
		if *requiredSignatures == 0 || int(*requiredSignatures) > len(signers) {
			return nil, ErrInvalidMultiSigConfig
		}
		return &models.MultiSigConfig{
			RequiredSignatures: *requiredSignatures,
			Signers:            signers,
		}, nil
	case requiredSignatures == nil && signers == nil:
		return nil, nil
	default:
		return nil, ErrInvalidMultiSigConfig
	}
}

// Contribute moves `amount` from the contributor into the platform account
// and updates the pool's metrics and the contributor's cumulative record.
// The contributor count moves only when the recorded amount was zero.
func (e *Engine) Contribute(ctx context.Context, auth AuthContext, poolID uint64, contributor, asset string, amount decimal.Decimal, isPrivate bool) error {
	if err := e.requireUnpaused(ctx); err != nil {
		return err
	}
	if !auth.Authorized(contributor) {
		return ErrUnauthorized
	}
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	ok, err := e.operational.Has(ctx, store.PoolKey(poolID))
	if err != nil {
		return fmt.Errorf("check pool: %w", err)
	}
	if !ok {
		return ErrPoolNotFound
	}

	state, err := e.PoolStateOf(ctx, poolID)
	if err != nil {
		return err
	}
	if state != models.PoolActive {
		return ErrInvalidPoolState
	}

	if err := e.bank.Move(ctx, contributor, e.account, asset, amount); err != nil {
		if errors.Is(err, bank.ErrInsufficientBalance) {
			return ErrInsufficientBalance
		}
		return fmt.Errorf("debit contribution: %w", err)
	}

	existing := models.PoolContribution{PoolID: poolID, Contributor: contributor, Asset: asset}
	if _, err := e.operational.Get(ctx, store.PoolContributionKey(poolID, contributor), &existing); err != nil {
		return fmt.Errorf("read pool contribution: %w", err)
	}

	var metrics models.PoolMetrics
	if _, err := e.operational.Get(ctx, store.PoolMetricsKey(poolID), &metrics); err != nil {
		return fmt.Errorf("read pool metrics: %w", err)
	}
	if existing.Amount.IsZero() {
		metrics.ContributorCount++
	}
	metrics.TotalRaised = metrics.TotalRaised.Add(amount)
	metrics.LastDonationAt = e.now()
	if err := e.operational.Set(ctx, store.PoolMetricsKey(poolID), metrics); err != nil {
		return fmt.Errorf("store pool metrics: %w", err)
	}

	updated := models.PoolContribution{
		PoolID:      poolID,
		Contributor: contributor,
		Amount:      existing.Amount.Add(amount),
		Asset:       asset,
	}
	if err := e.operational.Set(ctx, store.PoolContributionKey(poolID, contributor), updated); err != nil {
		return fmt.Errorf("store pool contribution: %w", err)
	}

	e.emit(ctx, events.TopicContribution, map[string]any{
		"pool_id":     poolID,
		"contributor": contributor,
		"asset":       asset,
		"amount":      amount.String(),
		"at":          e.now(),
		"is_private":  isPrivate,
	})
	return nil
}

// UpdatePoolState moves a pool to a new lifecycle state. Completed and
// Cancelled are terminal: any transition out of them fails.
func (e *Engine) UpdatePoolState(ctx context.Context, poolID uint64, newState models.PoolState) error {
	if err := e.requireUnpaused(ctx); err != nil {
		return err
	}
	if !newState.Valid() {
		return ErrInvalidPoolState
	}

	ok, err := e.operational.Has(ctx, store.PoolKey(poolID))
	if err != nil {
		return fmt.Errorf("check pool: %w", err)
	}
	if !ok {
		return ErrPoolNotFound
	}

	current, err := e.PoolStateOf(ctx, poolID)
	if err != nil {
		return err
	}
	if current.Terminal() {
		return ErrInvalidPoolState
	}

	if err := e.operational.Set(ctx, store.PoolStateKey(poolID), newState); err != nil {
		return fmt.Errorf("store pool state: %w", err)
	}

	e.emit(ctx, events.TopicPoolStateUpdated, map[string]any{
		"pool_id": poolID,
		"state":   string(newState),
	})
	return nil
}

// Refund pays a contributor back their full recorded amount once the pool's
// deadline plus the 7-day grace period has passed. The contribution record
// is zeroed, not deleted, so a second refund finds nothing to pay.
func (e *Engine) Refund(ctx context.Context, auth AuthContext, poolID uint64, contributor string) error {
	if err := e.requireUnpaused(ctx); err != nil {
		return err
	}
	if !auth.Authorized(contributor) {
		return ErrUnauthorized
	}

	pool, err := e.GetPool(ctx, poolID)
	if err != nil {
		return err
	}
	if pool.Duration == 0 {
		return ErrRefundNotAvailable
	}

	now := e.now()
	deadline := pool.Deadline()
	if now < deadline {
		return ErrPoolNotExpired
	}

	state, err := e.PoolStateOf(ctx, poolID)
	if err != nil {
		return err
	}
	if state == models.PoolDisbursed {
		return ErrPoolAlreadyDisbursed
	}

	if now < deadline+refundGracePeriod {
		return ErrRefundGracePeriodNotPassed
	}

	var contribution models.PoolContribution
	ok, err := e.operational.Get(ctx, store.PoolContributionKey(poolID, contributor), &contribution)
	if err != nil {
		return fmt.Errorf("read pool contribution: %w", err)
	}
	if !ok || !contribution.Amount.IsPositive() {
		return ErrNoContributionToRefund
	}

	if err := e.bank.Move(ctx, e.account, contributor, contribution.Asset, contribution.Amount); err != nil {
		return fmt.Errorf("credit refund: %w", err)
	}

	var metrics models.PoolMetrics
	if _, err := e.operational.Get(ctx, store.PoolMetricsKey(poolID), &metrics); err != nil {
		return fmt.Errorf("read pool metrics: %w", err)
	}
	metrics.TotalRaised = metrics.TotalRaised.Sub(contribution.Amount)
	// ContributorCount stays: historical participation is preserved.
	if err := e.operational.Set(ctx, store.PoolMetricsKey(poolID), metrics); err != nil {
		return fmt.Errorf("store pool metrics: %w", err)
	}

	zeroed := models.PoolContribution{
		PoolID:      poolID,
		Contributor: contributor,
		Amount:      decimal.Zero,
		Asset:       contribution.Asset,
	}
	if err := e.operational.Set(ctx, store.PoolContributionKey(poolID, contributor), zeroed); err != nil {
		return fmt.Errorf("store pool contribution: %w", err)
	}

	e.emit(ctx, events.TopicRefund, map[string]any{
		"pool_id":     poolID,
		"contributor": contributor,
		"asset":       contribution.Asset,
		"amount":      contribution.Amount.String(),
		"at":          now,
	})
	return nil
}

// ClosePool transitions a Disbursed or Cancelled pool to Closed. Pool
// records carry no creator identity, so only the admin may close.
func (e *Engine) ClosePool(ctx context.Context, auth AuthContext, poolID uint64) error {
	if auth.Actor == "" {
		return ErrUnauthorized
	}

	ok, err := e.operational.Has(ctx, store.PoolKey(poolID))
	if err != nil {
		return fmt.Errorf("check pool: %w", err)
	}
	if !ok {
		return ErrPoolNotFound
	}

	current, err := e.PoolStateOf(ctx, poolID)
	if err != nil {
		return err
	}
	if current == models.PoolClosed {
		return ErrPoolAlreadyClosed
	}
	if current != models.PoolDisbursed && current != models.PoolCancelled {
		return ErrPoolNotDisbursedOrRefunded
	}

	admin, err := e.admin(ctx)
	if err != nil {
		return err
	}
	if !auth.Authorized(admin) {
		return ErrUnauthorized
	}

	if err := e.operational.Set(ctx, store.PoolStateKey(poolID), models.PoolClosed); err != nil {
		return fmt.Errorf("store pool state: %w", err)
	}

	e.emit(ctx, events.TopicPoolClosed, map[string]any{
		"pool_id": poolID,
		"caller":  auth.Actor,
		"at":      e.now(),
	})
	return nil
}

// --- Pure reads ---

func (e *Engine) GetPool(ctx context.Context, poolID uint64) (models.PoolConfig, error) {
	var pool models.PoolConfig
	ok, err := e.operational.Get(ctx, store.PoolKey(poolID), &pool)
	if err != nil {
		return models.PoolConfig{}, fmt.Errorf("read pool: %w", err)
	}
	if !ok {
		return models.PoolConfig{}, ErrPoolNotFound
	}
	return pool, nil
}

// GetPoolMetadata returns the archival metadata, zero-valued when none was
// stored.
func (e *Engine) GetPoolMetadata(ctx context.Context, poolID uint64) (models.PoolMetadata, error) {
	var metadata models.PoolMetadata
	if _, err := e.archival.Get(ctx, store.PoolMetadataKey(poolID), &metadata); err != nil {
		return models.PoolMetadata{}, fmt.Errorf("read pool metadata: %w", err)
	}
	return metadata, nil
}

// PoolStateOf returns the stored state, defaulting to Active.
func (e *Engine) PoolStateOf(ctx context.Context, poolID uint64) (models.PoolState, error) {
	state := models.PoolActive
	if _, err := e.operational.Get(ctx, store.PoolStateKey(poolID), &state); err != nil {
		return "", fmt.Errorf("read pool state: %w", err)
	}
	return state, nil
}

func (e *Engine) IsClosed(ctx context.Context, poolID uint64) (bool, error) {
	ok, err := e.operational.Has(ctx, store.PoolKey(poolID))
	if err != nil {
		return false, fmt.Errorf("check pool: %w", err)
	}
	if !ok {
		return false, ErrPoolNotFound
	}
	state, err := e.PoolStateOf(ctx, poolID)
	if err != nil {
		return false, err
	}
	return state == models.PoolClosed, nil
}

func (e *Engine) PoolMetricsOf(ctx context.Context, poolID uint64) (models.PoolMetrics, error) {
	ok, err := e.operational.Has(ctx, store.PoolKey(poolID))
	if err != nil {
		return models.PoolMetrics{}, fmt.Errorf("check pool: %w", err)
	}
	if !ok {
		return models.PoolMetrics{}, ErrPoolNotFound
	}
	var metrics models.PoolMetrics
	if _, err := e.operational.Get(ctx, store.PoolMetricsKey(poolID), &metrics); err != nil {
		return models.PoolMetrics{}, fmt.Errorf("read pool metrics: %w", err)
	}
	return metrics, nil
}

// PoolContributionOf returns a contributor's record, zero-amount when the
// contributor never contributed.
func (e *Engine) PoolContributionOf(ctx context.Context, poolID uint64, contributor string) (models.PoolContribution, error) {
	if _, err := e.GetPool(ctx, poolID); err != nil {
		return models.PoolContribution{}, err
	}
	contribution := models.PoolContribution{PoolID: poolID, Contributor: contributor}
	if _, err := e.operational.Get(ctx, store.PoolContributionKey(poolID, contributor), &contribution); err != nil {
		return models.PoolContribution{}, fmt.Errorf("read pool contribution: %w", err)
	}
	return contribution, nil
}

// PoolMultiSigOf returns the multi-sig gate, nil when single-authority.
func (e *Engine) PoolMultiSigOf(ctx context.Context, poolID uint64) (*models.MultiSigConfig, error) {
	if _, err := e.GetPool(ctx, poolID); err != nil {
		return nil, err
	}
	var config models.MultiSigConfig
	ok, err := e.operational.Get(ctx, store.PoolMultiSigKey(poolID), &config)
	if err != nil {
		return nil, fmt.Errorf("read multi-sig config: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return &config, nil
}
