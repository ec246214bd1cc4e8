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

// Package engine is the transactional state engine behind the crowdfunding
// platform: campaigns, pools, contributions, metrics, fee accrual and the
// emergency withdrawal flow, all persisted through the two storage tiers.
//
// Operations are serialized by the surrounding process; each public call is
// one read-validate-mutate unit, and a failing precondition aborts before
// anything is written.
package engine

import (
	"context"
	"fmt"

	"crowdfund-ledger-go/internal/bank"
	"crowdfund-ledger-go/internal/clock"
	"crowdfund-ledger-go/internal/events"
	"crowdfund-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// Time windows, in seconds.
	maxDeadlineExtension = 90 * 24 * 60 * 60
	refundGracePeriod    = 7 * 24 * 60 * 60
	emergencyTimelock    = 24 * 60 * 60

	// Donations are skimmed 1%, integer-truncated. The fee is bookkeeping
	// only; the tokens stay inside the campaign balance.
	donationFeeDivisor = 100

	// Pool metadata field caps.
	maxDescriptionLength = 500
	maxURLLength         = 200
	maxHashLength        = 100

	engineVersion = "1.2.0"
)

// AuthContext carries the identity the surrounding party-authorization
// mechanism has proven the caller controls. The gate checks are pure
// comparisons against this context.
type AuthContext struct {
	Actor string
}

// Authorized reports whether the context proves control of identity.
func (a AuthContext) Authorized(identity string) bool {
	return a.Actor != "" && a.Actor == identity
}

// Options wires the engine's collaborators.
type Options struct {
	Operational store.Store
	Archival    store.Store
	Bank        bank.Transfer
	Clock       clock.Clock
	Sink        events.Sink
	Logger      *zap.Logger

	// Account is the platform's own account in the bank; donations and
	// contributions are credited here.
	Account string
}

type Engine struct {
	operational store.Store
	archival    store.Store
	bank        bank.Transfer
	clock       clock.Clock
	sink        events.Sink
	logger      *zap.Logger
	account     string
}

func New(opts Options) (*Engine, error) {
	if opts.Operational == nil || opts.Archival == nil {
		return nil, fmt.Errorf("both storage tiers are required")
	}
	if opts.Bank == nil {
		return nil, fmt.Errorf("asset transfer capability is required")
	}
	if opts.Account == "" {
		return nil, fmt.Errorf("platform account is required")
	}
	if opts.Clock == nil {
		opts.Clock = clock.System{}
	}
	if opts.Sink == nil {
		opts.Sink = events.NewLogSink(opts.Logger)
	}
	if opts.Logger == nil {
		opts.Logger = zap.L()
	}
	return &Engine{
		operational: opts.Operational,
		archival:    opts.Archival,
		bank:        opts.Bank,
		clock:       opts.Clock,
		sink:        opts.Sink,
		logger:      opts.Logger,
		account:     opts.Account,
	}, nil
}

// Version reports the engine version string.
func (e *Engine) Version() string {
	return engineVersion
}

func (e *Engine) now() int64 {
	return e.clock.Now().Unix()
}

// emit hands an event to the sink after a successful mutation. Delivery
// failures are logged and swallowed; the state change already happened.
func (e *Engine) emit(ctx context.Context, topic string, payload map[string]any) {
	event := events.New(topic, payload)
	if err := e.sink.Publish(ctx, event); err != nil {
		e.logger.Warn("Failed to publish event",
			zap.String("topic", topic),
			zap.String("event_id", event.ID),
			zap.Error(err))
	}
}

// admin returns the stored admin identity, ErrNotInitialized when none.
func (e *Engine) admin(ctx context.Context) (string, error) {
	var admin string
	ok, err := e.operational.Get(ctx, store.AdminKey(), &admin)
	if err != nil {
		return "", fmt.Errorf("read admin: %w", err)
	}
	if !ok {
		return "", ErrNotInitialized
	}
	return admin, nil
}

// requireAdmin resolves the stored admin and checks the auth context
// against it.
func (e *Engine) requireAdmin(ctx context.Context, auth AuthContext) (string, error) {
	admin, err := e.admin(ctx)
	if err != nil {
		return "", err
	}
	if !auth.Authorized(admin) {
		return "", ErrUnauthorized
	}
	return admin, nil
}

func (e *Engine) requireUnpaused(ctx context.Context) error {
	paused, err := e.IsPaused(ctx)
	if err != nil {
		return err
	}
	if paused {
		return ErrContractPaused
	}
	return nil
}

func (e *Engine) requireNotBlacklisted(ctx context.Context, party string) error {
	blacklisted, err := e.IsBlacklisted(ctx, party)
	if err != nil {
		return err
	}
	if blacklisted {
		return ErrUserBlacklisted
	}
	return nil
}

// getDecimal reads a decimal scalar, returning zero when the key is absent.
func (e *Engine) getDecimal(ctx context.Context, tier store.Store, key store.Key) (decimal.Decimal, error) {
	var value decimal.Decimal
	ok, err := tier.Get(ctx, key, &value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return decimal.Zero, nil
	}
	return value, nil
}
