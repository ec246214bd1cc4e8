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

import "errors"

// Every failure the engine can produce is one of these sentinels, matched
// with errors.Is. The first failing precondition short-circuits the
// operation before anything is written; none of them is fatal to the engine.
var (
	ErrNotInitialized     = errors.New("platform not initialized")
	ErrAlreadyInitialized = errors.New("platform already initialized")

	ErrContractPaused  = errors.New("contract is paused")
	ErrAlreadyPaused   = errors.New("contract already paused")
	ErrAlreadyUnpaused = errors.New("contract already unpaused")
	ErrUnauthorized    = errors.New("caller is not authorized")
	ErrUserBlacklisted = errors.New("address is blacklisted")

	ErrCampaignNotFound      = errors.New("campaign not found")
	ErrCampaignAlreadyExists = errors.New("campaign already exists")
	ErrPoolNotFound          = errors.New("pool not found")
	ErrPoolAlreadyExists     = errors.New("pool already exists")

	ErrInvalidTitle          = errors.New("campaign title must not be empty")
	ErrInvalidGoal           = errors.New("campaign goal must be positive")
	ErrInvalidDeadline       = errors.New("invalid deadline")
	ErrInvalidAmount         = errors.New("amount must be positive")
	ErrInvalidFee            = errors.New("fee must not be negative")
	ErrInvalidPoolName       = errors.New("pool name must not be empty")
	ErrInvalidPoolTarget     = errors.New("pool target must be positive")
	ErrInvalidPoolDeadline   = errors.New("pool deadline must be in the future")
	ErrInvalidMetadata       = errors.New("pool metadata exceeds length limits")
	ErrInvalidMultiSigConfig = errors.New("invalid multi-sig configuration")
	ErrInvalidSignerCount    = errors.New("multi-sig signer set must not be empty")
	ErrInvalidPoolState      = errors.New("invalid pool state transition")

	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInsufficientFees    = errors.New("insufficient accrued platform fees")

	ErrCampaignExpired          = errors.New("campaign deadline has passed")
	ErrCampaignAlreadyFunded    = errors.New("campaign is already fully funded")
	ErrCampaignAlreadyCancelled = errors.New("campaign is already cancelled")
	ErrTokenTransferFailed      = errors.New("token transfer failed")

	ErrRefundNotAvailable         = errors.New("pool does not support refunds")
	ErrPoolNotExpired             = errors.New("pool deadline has not passed")
	ErrRefundGracePeriodNotPassed = errors.New("refund grace period has not passed")
	ErrPoolAlreadyDisbursed       = errors.New("pool is already disbursed")
	ErrPoolAlreadyClosed          = errors.New("pool is already closed")
	ErrPoolNotDisbursedOrRefunded = errors.New("pool is not disbursed or cancelled")
	ErrNoContributionToRefund     = errors.New("no contribution to refund")

	ErrEmergencyWithdrawalAlreadyRequested = errors.New("emergency withdrawal already requested")
	ErrEmergencyWithdrawalNotRequested     = errors.New("emergency withdrawal not requested")
	ErrEmergencyWithdrawalPeriodNotPassed  = errors.New("emergency withdrawal timelock has not passed")
)
