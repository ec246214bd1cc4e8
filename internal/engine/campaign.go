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

// CreateCampaign registers a new campaign. When a positive creation fee is
// configured it is debited from the creator into the platform account and
// accrued into the platform fee balance; the debit and the campaign write
// are one unit — if the debit fails nothing is persisted.
func (e *Engine) CreateCampaign(ctx context.Context, auth AuthContext, id models.CampaignID, title, creator string, goal decimal.Decimal, deadline int64) error {
	if err := e.requireUnpaused(ctx); err != nil {
		return err
	}
	if !auth.Authorized(creator) {
		return ErrUnauthorized
	}
	if err := e.requireNotBlacklisted(ctx, creator); err != nil {
		return err
	}
	if title == "" {
		return ErrInvalidTitle
	}
	if !goal.IsPositive() {
		return ErrInvalidGoal
	}
	if deadline <= e.now() {
		return ErrInvalidDeadline
	}

	asset, err := e.GetDefaultAsset(ctx)
	if err != nil {
		return err
	}

	ok, err := e.operational.Has(ctx, store.CampaignKey(id))
	if err != nil {
		return fmt.Errorf("check campaign: %w", err)
	}
	if ok {
		return ErrCampaignAlreadyExists
	}

	creationFee, err := e.GetCreationFee(ctx)
	if err != nil {
		return err
	}
	if creationFee.IsPositive() {
		balance, err := e.bank.Balance(ctx, creator, asset)
		if err != nil {
			return fmt.Errorf("read creator balance: %w", err)
		}
		if balance.LessThan(creationFee) {
			return ErrInsufficientBalance
		}
		if err := e.bank.Move(ctx, creator, e.account, asset, creationFee); err != nil {
			if errors.Is(err, bank.ErrInsufficientBalance) {
				return ErrInsufficientBalance
			}
			return fmt.Errorf("debit creation fee: %w", err)
		}

		accrued, err := e.getDecimal(ctx, e.operational, store.PlatformFeesKey())
		if err != nil {
			return err
		}
		if err := e.operational.Set(ctx, store.PlatformFeesKey(), accrued.Add(creationFee)); err != nil {
			return fmt.Errorf("accrue platform fees: %w", err)
		}

		e.emit(ctx, events.TopicCreationFeePaid, map[string]any{
			"creator": creator,
			"fee":     creationFee.String(),
		})
	}

	campaign := models.Campaign{
		ID:          id,
		Title:       title,
		Creator:     creator,
		Goal:        goal,
		Deadline:    deadline,
		TotalRaised: decimal.Zero,
		Asset:       asset,
	}
	if err := e.operational.Set(ctx, store.CampaignKey(id), campaign); err != nil {
		return fmt.Errorf("store campaign: %w", err)
	}
	if err := e.operational.Set(ctx, store.CampaignMetricsKey(id), models.CampaignMetrics{}); err != nil {
		return fmt.Errorf("store campaign metrics: %w", err)
	}

	var index []models.CampaignID
	if _, err := e.operational.Get(ctx, store.AllCampaignsKey(), &index); err != nil {
		return fmt.Errorf("read campaign index: %w", err)
	}
	index = append(index, id)
	if err := e.operational.Set(ctx, store.AllCampaignsKey(), index); err != nil {
		return fmt.Errorf("store campaign index: %w", err)
	}

	e.logger.Info("Campaign created",
		zap.String("campaign_id", id.String()),
		zap.String("creator", creator),
		zap.String("goal", goal.String()),
		zap.Int64("deadline", deadline))

	e.emit(ctx, events.TopicCampaignCreated, map[string]any{
		"campaign_id": id.String(),
		"title":       title,
		"creator":     creator,
		"goal":        goal.String(),
		"deadline":    deadline,
	})
	return nil
}

// Donate moves `amount` of the campaign's asset from the donor into the
// platform account and updates the campaign record, its metrics, the donor's
// cumulative contribution, the global raised total and the 1% fee history in
// one unit.
func (e *Engine) Donate(ctx context.Context, auth AuthContext, campaignID models.CampaignID, donor, asset string, amount decimal.Decimal) error {
	if err := e.requireUnpaused(ctx); err != nil {
		return err
	}
	if !auth.Authorized(donor) {
		return ErrUnauthorized
	}
	if err := e.requireNotBlacklisted(ctx, donor); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	campaign, err := e.GetCampaign(ctx, campaignID)
	if err != nil {
		return err
	}

	now := e.now()
	if now >= campaign.Deadline {
		return ErrCampaignExpired
	}
	if campaign.TotalRaised.GreaterThanOrEqual(campaign.Goal) {
		return ErrCampaignAlreadyFunded
	}
	if asset != campaign.Asset {
		return ErrTokenTransferFailed
	}

	if err := e.bank.Move(ctx, donor, e.account, asset, amount); err != nil {
		if errors.Is(err, bank.ErrInsufficientBalance) {
			return ErrInsufficientBalance
		}
		return fmt.Errorf("debit donation: %w", err)
	}

	campaign.TotalRaised = campaign.TotalRaised.Add(amount)
	if err := e.operational.Set(ctx, store.CampaignKey(campaignID), campaign); err != nil {
		return fmt.Errorf("store campaign: %w", err)
	}

	var metrics models.CampaignMetrics
	if _, err := e.operational.Get(ctx, store.CampaignMetricsKey(campaignID), &metrics); err != nil {
		return fmt.Errorf("read campaign metrics: %w", err)
	}
	metrics.TotalRaised = metrics.TotalRaised.Add(amount)
	metrics.LastDonationAt = now

	// Whale tracking: strictly greater, so ties keep the incumbent.
	if amount.GreaterThan(metrics.MaxDonation) {
		metrics.MaxDonation = amount
		metrics.TopContributor = donor
	}

	donorSeen, err := e.operational.Has(ctx, store.CampaignDonorKey(campaignID, donor))
	if err != nil {
		return fmt.Errorf("check campaign donor: %w", err)
	}
	if !donorSeen {
		metrics.ContributorCount++
		if err := e.operational.Set(ctx, store.CampaignDonorKey(campaignID, donor), true); err != nil {
			return fmt.Errorf("store campaign donor: %w", err)
		}
	}

	if err := e.operational.Set(ctx, store.CampaignMetricsKey(campaignID), metrics); err != nil {
		return fmt.Errorf("store campaign metrics: %w", err)
	}

	globalTotal, err := e.getDecimal(ctx, e.operational, store.GlobalTotalRaisedKey())
	if err != nil {
		return err
	}
	if err := e.operational.Set(ctx, store.GlobalTotalRaisedKey(), globalTotal.Add(amount)); err != nil {
		return fmt.Errorf("store global raised total: %w", err)
	}

	contribution := models.Contribution{CampaignID: campaignID, Contributor: donor}
	if _, err := e.operational.Get(ctx, store.ContributionKey(campaignID, donor), &contribution); err != nil {
		return fmt.Errorf("read contribution: %w", err)
	}
	contribution.Amount = contribution.Amount.Add(amount)
	if err := e.operational.Set(ctx, store.ContributionKey(campaignID, donor), contribution); err != nil {
		return fmt.Errorf("store contribution: %w", err)
	}

	fee := amount.Div(decimal.NewFromInt(donationFeeDivisor)).Floor()
	if fee.IsPositive() {
		history, err := e.getDecimal(ctx, e.archival, store.CampaignFeeHistoryKey(campaignID))
		if err != nil {
			return err
		}
		if err := e.archival.Set(ctx, store.CampaignFeeHistoryKey(campaignID), history.Add(fee)); err != nil {
			return fmt.Errorf("store fee history: %w", err)
		}
	}

	e.emit(ctx, events.TopicDonationMade, map[string]any{
		"campaign_id": campaignID.String(),
		"donor":       donor,
		"amount":      amount.String(),
	})
	return nil
}

// ExtendCampaignDeadline pushes the deadline forward for an unfunded
// campaign. The new deadline must exceed the current one and lie within 90
// days of the current time.
func (e *Engine) ExtendCampaignDeadline(ctx context.Context, auth AuthContext, campaignID models.CampaignID, newDeadline int64) error {
	if err := e.requireUnpaused(ctx); err != nil {
		return err
	}

	campaign, err := e.GetCampaign(ctx, campaignID)
	if err != nil {
		return err
	}
	if !auth.Authorized(campaign.Creator) {
		return ErrUnauthorized
	}
	if campaign.TotalRaised.GreaterThanOrEqual(campaign.Goal) {
		return ErrCampaignAlreadyFunded
	}
	if newDeadline <= campaign.Deadline {
		return ErrInvalidDeadline
	}
	if newDeadline-e.now() > maxDeadlineExtension {
		return ErrInvalidDeadline
	}

	campaign.Deadline = newDeadline
	if err := e.operational.Set(ctx, store.CampaignKey(campaignID), campaign); err != nil {
		return fmt.Errorf("store campaign: %w", err)
	}

	e.emit(ctx, events.TopicCampaignDeadlineExtended, map[string]any{
		"campaign_id": campaignID.String(),
		"deadline":    newDeadline,
	})
	return nil
}

// CancelCampaign sets the cancellation flag the status derivation reads.
// Allowed for the creator or the admin, only while the campaign is unfunded.
func (e *Engine) CancelCampaign(ctx context.Context, auth AuthContext, campaignID models.CampaignID) error {
	if err := e.requireUnpaused(ctx); err != nil {
		return err
	}

	campaign, err := e.GetCampaign(ctx, campaignID)
	if err != nil {
		return err
	}
	if !auth.Authorized(campaign.Creator) {
		if _, err := e.requireAdmin(ctx, auth); err != nil {
			return ErrUnauthorized
		}
	}

	cancelled, err := e.operational.Has(ctx, store.CampaignCancelledKey(campaignID))
	if err != nil {
		return fmt.Errorf("check cancellation flag: %w", err)
	}
	if cancelled {
		return ErrCampaignAlreadyCancelled
	}
	if campaign.TotalRaised.GreaterThanOrEqual(campaign.Goal) {
		return ErrCampaignAlreadyFunded
	}

	if err := e.operational.Set(ctx, store.CampaignCancelledKey(campaignID), true); err != nil {
		return fmt.Errorf("store cancellation flag: %w", err)
	}

	e.emit(ctx, events.TopicCampaignCancelled, map[string]any{
		"campaign_id": campaignID.String(),
		"actor":       auth.Actor,
	})
	return nil
}

// --- Pure reads ---

func (e *Engine) GetCampaign(ctx context.Context, id models.CampaignID) (models.Campaign, error) {
	var campaign models.Campaign
	ok, err := e.operational.Get(ctx, store.CampaignKey(id), &campaign)
	if err != nil {
		return models.Campaign{}, fmt.Errorf("read campaign: %w", err)
	}
	if !ok {
		return models.Campaign{}, ErrCampaignNotFound
	}
	return campaign, nil
}

// GetCampaigns resolves a batch of ids, silently skipping unknown ones.
func (e *Engine) GetCampaigns(ctx context.Context, ids []models.CampaignID) ([]models.Campaign, error) {
	results := make([]models.Campaign, 0, len(ids))
	for _, id := range ids {
		campaign, err := e.GetCampaign(ctx, id)
		if errors.Is(err, ErrCampaignNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		results = append(results, campaign)
	}
	return results, nil
}

func (e *Engine) AllCampaigns(ctx context.Context) ([]models.CampaignID, error) {
	var index []models.CampaignID
	if _, err := e.operational.Get(ctx, store.AllCampaignsKey(), &index); err != nil {
		return nil, fmt.Errorf("read campaign index: %w", err)
	}
	return index, nil
}

// ActiveCampaignCount scans the global index and counts campaigns whose
// deadline is still in the future.
func (e *Engine) ActiveCampaignCount(ctx context.Context) (uint32, error) {
	index, err := e.AllCampaigns(ctx)
	if err != nil {
		return 0, err
	}
	now := e.now()
	var count uint32
	for _, id := range index {
		campaign, err := e.GetCampaign(ctx, id)
		if errors.Is(err, ErrCampaignNotFound) {
			continue
		}
		if err != nil {
			return 0, err
		}
		if campaign.Deadline > now {
			count++
		}
	}
	return count, nil
}

func (e *Engine) campaignMetrics(ctx context.Context, id models.CampaignID) (models.CampaignMetrics, error) {
	ok, err := e.operational.Has(ctx, store.CampaignKey(id))
	if err != nil {
		return models.CampaignMetrics{}, fmt.Errorf("check campaign: %w", err)
	}
	if !ok {
		return models.CampaignMetrics{}, ErrCampaignNotFound
	}
	var metrics models.CampaignMetrics
	if _, err := e.operational.Get(ctx, store.CampaignMetricsKey(id), &metrics); err != nil {
		return models.CampaignMetrics{}, fmt.Errorf("read campaign metrics: %w", err)
	}
	return metrics, nil
}

func (e *Engine) CampaignMetrics(ctx context.Context, id models.CampaignID) (models.CampaignMetrics, error) {
	return e.campaignMetrics(ctx, id)
}

func (e *Engine) DonorCount(ctx context.Context, id models.CampaignID) (uint32, error) {
	metrics, err := e.campaignMetrics(ctx, id)
	if err != nil {
		return 0, err
	}
	return metrics.ContributorCount, nil
}

// CampaignBalance is the metrics view of the raised amount.
func (e *Engine) CampaignBalance(ctx context.Context, id models.CampaignID) (decimal.Decimal, error) {
	metrics, err := e.campaignMetrics(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return metrics.TotalRaised, nil
}

// TotalRaised is the campaign-record view of the raised amount.
func (e *Engine) TotalRaised(ctx context.Context, id models.CampaignID) (decimal.Decimal, error) {
	campaign, err := e.GetCampaign(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return campaign.TotalRaised, nil
}

func (e *Engine) CampaignGoal(ctx context.Context, id models.CampaignID) (decimal.Decimal, error) {
	campaign, err := e.GetCampaign(ctx, id)
	if err != nil {
		return decimal.Zero, err
	}
	return campaign.Goal, nil
}

// TopContributor returns the donor of the largest single donation so far.
// Fails with ErrCampaignNotFound when the campaign has no donations yet.
func (e *Engine) TopContributor(ctx context.Context, id models.CampaignID) (string, error) {
	metrics, err := e.campaignMetrics(ctx, id)
	if err != nil {
		return "", err
	}
	if metrics.TopContributor == "" {
		return "", ErrCampaignNotFound
	}
	return metrics.TopContributor, nil
}

// Contribution returns the donor's cumulative amount, zero if never donated.
func (e *Engine) Contribution(ctx context.Context, id models.CampaignID, donor string) (decimal.Decimal, error) {
	if _, err := e.GetCampaign(ctx, id); err != nil {
		return decimal.Zero, err
	}
	contribution := models.Contribution{CampaignID: id, Contributor: donor}
	if _, err := e.operational.Get(ctx, store.ContributionKey(id, donor), &contribution); err != nil {
		return decimal.Zero, fmt.Errorf("read contribution: %w", err)
	}
	return contribution.Amount, nil
}

func (e *Engine) IsCampaignCompleted(ctx context.Context, id models.CampaignID) (bool, error) {
	campaign, err := e.GetCampaign(ctx, id)
	if err != nil {
		return false, err
	}
	balance, err := e.CampaignBalance(ctx, id)
	if err != nil {
		return false, err
	}
	return balance.GreaterThanOrEqual(campaign.Goal), nil
}

func (e *Engine) CampaignStatus(ctx context.Context, id models.CampaignID) (models.CampaignStatus, error) {
	campaign, err := e.GetCampaign(ctx, id)
	if err != nil {
		return "", err
	}
	raised, err := e.CampaignBalance(ctx, id)
	if err != nil {
		return "", err
	}
	cancelled, err := e.operational.Has(ctx, store.CampaignCancelledKey(id))
	if err != nil {
		return "", fmt.Errorf("check cancellation flag: %w", err)
	}
	return models.DeriveCampaignStatus(raised, campaign.Goal, campaign.Deadline, e.now(), cancelled), nil
}

// CampaignFeeHistory returns the cumulative platform fee skimmed from a
// campaign's donations (archival tier).
func (e *Engine) CampaignFeeHistory(ctx context.Context, id models.CampaignID) (decimal.Decimal, error) {
	if _, err := e.GetCampaign(ctx, id); err != nil {
		return decimal.Zero, err
	}
	return e.getDecimal(ctx, e.archival, store.CampaignFeeHistoryKey(id))
}

// GlobalRaisedTotal is the running total of donations across all campaigns.
func (e *Engine) GlobalRaisedTotal(ctx context.Context) (decimal.Decimal, error) {
	return e.getDecimal(ctx, e.operational, store.GlobalTotalRaisedKey())
}
