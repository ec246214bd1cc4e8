package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"crowdfund-ledger-go/internal/events"
	"crowdfund-ledger-go/internal/models"

	"github.com/shopspring/decimal"
)

func createTestCampaign(t *testing.T, env *testEnv, id byte, creator string, goal int64, deadlineOffset int64) models.CampaignID {
	t.Helper()
	campaignID := testCampaignID(id)
	err := env.engine.CreateCampaign(context.Background(), asActor(creator), campaignID,
		"Test Campaign", creator, decimal.NewFromInt(goal), testStart+deadlineOffset)
	if err != nil {
		t.Fatalf("CreateCampaign failed: %v", err)
	}
	return campaignID
}

func donate(t *testing.T, env *testEnv, id models.CampaignID, donor string, amount int64) {
	t.Helper()
	err := env.engine.Donate(context.Background(), asActor(donor), id, donor, testAsset, decimal.NewFromInt(amount))
	if err != nil {
		t.Fatalf("Donate of %d by %s failed: %v", amount, donor, err)
	}
}

func TestCreateCampaign_Validation(t *testing.T) {
	env := initializedEnv(t, 0)
	ctx := context.Background()
	id := testCampaignID(1)
	goal := decimal.NewFromInt(100)

	err := env.engine.CreateCampaign(ctx, asActor("bob"), id, "Well", "alice", goal, testStart+1000)
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized for mismatched creator, got %v", err)
	}

	err = env.engine.CreateCampaign(ctx, asActor("alice"), id, "", "alice", goal, testStart+1000)
	if !errors.Is(err, ErrInvalidTitle) {
		t.Errorf("Expected ErrInvalidTitle, got %v", err)
	}

	err = env.engine.CreateCampaign(ctx, asActor("alice"), id, "Well", "alice", decimal.Zero, testStart+1000)
	if !errors.Is(err, ErrInvalidGoal) {
		t.Errorf("Expected ErrInvalidGoal, got %v", err)
	}

	err = env.engine.CreateCampaign(ctx, asActor("alice"), id, "Well", "alice", goal, testStart)
	if !errors.Is(err, ErrInvalidDeadline) {
		t.Errorf("Expected ErrInvalidDeadline for deadline at now, got %v", err)
	}
}

func TestCreateCampaign_Duplicate(t *testing.T) {
	env := initializedEnv(t, 0)
	id := createTestCampaign(t, env, 1, "alice", 100, 1000)

	err := env.engine.CreateCampaign(context.Background(), asActor("alice"), id,
		"Again", "alice", decimal.NewFromInt(50), testStart+2000)
	if !errors.Is(err, ErrCampaignAlreadyExists) {
		t.Errorf("Expected ErrCampaignAlreadyExists, got %v", err)
	}
}

func TestCreateCampaign_FeeCharged(t *testing.T) {
	env := initializedEnv(t, 10)
	ctx := context.Background()
	env.fund(t, "alice", 25)

	createTestCampaign(t, env, 1, "alice", 100, 1000)

	requireDecimal(t, env.balance(t, "alice"), 15, "creator balance after fee")
	requireDecimal(t, env.balance(t, "platform"), 10, "platform balance after fee")

	fees, err := env.engine.PlatformFees(ctx)
	if err != nil {
		t.Fatalf("PlatformFees failed: %v", err)
	}
	requireDecimal(t, fees, 10, "accrued platform fees")

	if len(env.events.ByTopic(events.TopicCreationFeePaid)) != 1 {
		t.Error("Expected one creation_fee_paid event")
	}
}

func TestCreateCampaign_InsufficientFeeBalance(t *testing.T) {
	env := initializedEnv(t, 10)
	ctx := context.Background()
	env.fund(t, "poor", 3)

	id := testCampaignID(1)
	err := env.engine.CreateCampaign(ctx, asActor("poor"), id, "Well", "poor",
		decimal.NewFromInt(100), testStart+1000)
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("Expected ErrInsufficientBalance, got %v", err)
	}

	// Nothing was persisted and nothing was debited.
	if _, err := env.engine.GetCampaign(ctx, id); !errors.Is(err, ErrCampaignNotFound) {
		t.Errorf("Expected no campaign record, got %v", err)
	}
	requireDecimal(t, env.balance(t, "poor"), 3, "creator balance after failed create")
}

func TestDonate_SumInvariant(t *testing.T) {
	env := initializedEnv(t, 0)
	ctx := context.Background()
	id := createTestCampaign(t, env, 1, "alice", 10_000, 1000)
	env.fund(t, "bob", 500)
	env.fund(t, "carol", 500)

	donate(t, env, id, "bob", 120)
	donate(t, env, id, "carol", 80)
	donate(t, env, id, "bob", 50)

	campaign, err := env.engine.GetCampaign(ctx, id)
	if err != nil {
		t.Fatalf("GetCampaign failed: %v", err)
	}
	requireDecimal(t, campaign.TotalRaised, 250, "campaign total raised")

	bobTotal, err := env.engine.Contribution(ctx, id, "bob")
	if err != nil {
		t.Fatalf("Contribution failed: %v", err)
	}
	carolTotal, err := env.engine.Contribution(ctx, id, "carol")
	if err != nil {
		t.Fatalf("Contribution failed: %v", err)
	}
	if !bobTotal.Add(carolTotal).Equal(campaign.TotalRaised) {
		t.Errorf("Sum of contributions %s does not match total raised %s",
			bobTotal.Add(carolTotal).String(), campaign.TotalRaised.String())
	}

	balance, err := env.engine.CampaignBalance(ctx, id)
	if err != nil {
		t.Fatalf("CampaignBalance failed: %v", err)
	}
	if !balance.Equal(campaign.TotalRaised) {
		t.Errorf("Metrics total %s disagrees with record total %s", balance.String(), campaign.TotalRaised.String())
	}

	global, err := env.engine.GlobalRaisedTotal(ctx)
	if err != nil {
		t.Fatalf("GlobalRaisedTotal failed: %v", err)
	}
	requireDecimal(t, global, 250, "global raised total")
}

func TestDonate_Expired(t *testing.T) {
	env := initializedEnv(t, 0)
	id := createTestCampaign(t, env, 1, "alice", 1000, 500)
	env.fund(t, "bob", 100)

	env.clock.Advance(500 * time.Second)

	err := env.engine.Donate(context.Background(), asActor("bob"), id, "bob", testAsset, decimal.NewFromInt(10))
	if !errors.Is(err, ErrCampaignExpired) {
		t.Errorf("Expected ErrCampaignExpired, got %v", err)
	}
}

func TestDonate_FundedCampaign(t *testing.T) {
	env := initializedEnv(t, 0)
	ctx := context.Background()
	id := createTestCampaign(t, env, 1, "alice", 1000, 10_000)
	env.fund(t, "bob", 2000)

	donate(t, env, id, "bob", 600)
	donate(t, env, id, "bob", 400)

	status, err := env.engine.CampaignStatus(ctx, id)
	if err != nil {
		t.Fatalf("CampaignStatus failed: %v", err)
	}
	if status != models.CampaignFunded {
		t.Errorf("Expected funded status, got %s", status)
	}

	completed, err := env.engine.IsCampaignCompleted(ctx, id)
	if err != nil {
		t.Fatalf("IsCampaignCompleted failed: %v", err)
	}
	if !completed {
		t.Error("Expected campaign to be completed")
	}

	err = env.engine.Donate(ctx, asActor("bob"), id, "bob", testAsset, decimal.NewFromInt(1))
	if !errors.Is(err, ErrCampaignAlreadyFunded) {
		t.Errorf("Expected ErrCampaignAlreadyFunded, got %v", err)
	}
}

func TestDonate_WrongAsset(t *testing.T) {
	env := initializedEnv(t, 0)
	id := createTestCampaign(t, env, 1, "alice", 1000, 1000)

	err := env.engine.Donate(context.Background(), asActor("bob"), id, "bob", "DOGE:issuer", decimal.NewFromInt(10))
	if !errors.Is(err, ErrTokenTransferFailed) {
		t.Errorf("Expected ErrTokenTransferFailed, got %v", err)
	}
}

func TestDonate_ContributorCountMonotonic(t *testing.T) {
	env := initializedEnv(t, 0)
	ctx := context.Background()
	id := createTestCampaign(t, env, 1, "alice", 10_000, 1000)
	env.fund(t, "bob", 100)
	env.fund(t, "carol", 100)

	donate(t, env, id, "bob", 10)
	donate(t, env, id, "bob", 10)

	count, err := env.engine.DonorCount(ctx, id)
	if err != nil {
		t.Fatalf("DonorCount failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected one donor after repeat donations, got %d", count)
	}

	donate(t, env, id, "carol", 10)
	count, err = env.engine.DonorCount(ctx, id)
	if err != nil {
		t.Fatalf("DonorCount failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected two donors, got %d", count)
	}
}

func TestDonate_TopContributorTieKeepsIncumbent(t *testing.T) {
	env := initializedEnv(t, 0)
	ctx := context.Background()
	id := createTestCampaign(t, env, 1, "alice", 10_000, 1000)
	env.fund(t, "bob", 100)
	env.fund(t, "carol", 100)

	if _, err := env.engine.TopContributor(ctx, id); !errors.Is(err, ErrCampaignNotFound) {
		t.Errorf("Expected ErrCampaignNotFound before any donation, got %v", err)
	}

	donate(t, env, id, "bob", 50)
	donate(t, env, id, "carol", 50)

	top, err := env.engine.TopContributor(ctx, id)
	if err != nil {
		t.Fatalf("TopContributor failed: %v", err)
	}
	if top != "bob" {
		t.Errorf("Expected incumbent bob to keep the top slot on a tie, got %s", top)
	}

	donate(t, env, id, "carol", 51)
	top, err = env.engine.TopContributor(ctx, id)
	if err != nil {
		t.Fatalf("TopContributor failed: %v", err)
	}
	if top != "carol" {
		t.Errorf("Expected carol after a strictly larger donation, got %s", top)
	}
}

func TestDonate_FeeSkim(t *testing.T) {
	env := initializedEnv(t, 0)
	ctx := context.Background()
	id := createTestCampaign(t, env, 1, "alice", 10_000, 1000)
	env.fund(t, "bob", 1000)

	donate(t, env, id, "bob", 250)
	history, err := env.engine.CampaignFeeHistory(ctx, id)
	if err != nil {
		t.Fatalf("CampaignFeeHistory failed: %v", err)
	}
	requireDecimal(t, history, 2, "fee history after 250 donation")

	// Below the divisor the truncated fee is zero and history is untouched.
	donate(t, env, id, "bob", 99)
	history, err = env.engine.CampaignFeeHistory(ctx, id)
	if err != nil {
		t.Fatalf("CampaignFeeHistory failed: %v", err)
	}
	requireDecimal(t, history, 2, "fee history after 99 donation")
}

func TestExtendCampaignDeadline(t *testing.T) {
	env := initializedEnv(t, 0)
	ctx := context.Background()
	id := createTestCampaign(t, env, 1, "alice", 1000, 1000)

	err := env.engine.ExtendCampaignDeadline(ctx, asActor("bob"), id, testStart+2000)
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized for non-creator, got %v", err)
	}

	err = env.engine.ExtendCampaignDeadline(ctx, asActor("alice"), id, testStart+500)
	if !errors.Is(err, ErrInvalidDeadline) {
		t.Errorf("Expected ErrInvalidDeadline for earlier deadline, got %v", err)
	}

	tooFar := testStart + maxDeadlineExtension + 1
	err = env.engine.ExtendCampaignDeadline(ctx, asActor("alice"), id, tooFar)
	if !errors.Is(err, ErrInvalidDeadline) {
		t.Errorf("Expected ErrInvalidDeadline beyond the 90-day cap, got %v", err)
	}

	if err := env.engine.ExtendCampaignDeadline(ctx, asActor("alice"), id, testStart+2000); err != nil {
		t.Fatalf("ExtendCampaignDeadline failed: %v", err)
	}
	campaign, err := env.engine.GetCampaign(ctx, id)
	if err != nil {
		t.Fatalf("GetCampaign failed: %v", err)
	}
	if campaign.Deadline != testStart+2000 {
		t.Errorf("Expected deadline %d, got %d", testStart+2000, campaign.Deadline)
	}
}

func TestExtendCampaignDeadline_Funded(t *testing.T) {
	env := initializedEnv(t, 0)
	id := createTestCampaign(t, env, 1, "alice", 100, 1000)
	env.fund(t, "bob", 100)
	donate(t, env, id, "bob", 100)

	err := env.engine.ExtendCampaignDeadline(context.Background(), asActor("alice"), id, testStart+2000)
	if !errors.Is(err, ErrCampaignAlreadyFunded) {
		t.Errorf("Expected ErrCampaignAlreadyFunded, got %v", err)
	}
}

func TestCancelCampaign(t *testing.T) {
	env := initializedEnv(t, 0)
	ctx := context.Background()
	id := createTestCampaign(t, env, 1, "alice", 1000, 1000)

	err := env.engine.CancelCampaign(ctx, asActor("mallory"), id)
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized for stranger, got %v", err)
	}

	if err := env.engine.CancelCampaign(ctx, asActor("alice"), id); err != nil {
		t.Fatalf("CancelCampaign failed: %v", err)
	}
	status, err := env.engine.CampaignStatus(ctx, id)
	if err != nil {
		t.Fatalf("CampaignStatus failed: %v", err)
	}
	if status != models.CampaignCancelled {
		t.Errorf("Expected cancelled status, got %s", status)
	}

	err = env.engine.CancelCampaign(ctx, asActor("alice"), id)
	if !errors.Is(err, ErrCampaignAlreadyCancelled) {
		t.Errorf("Expected ErrCampaignAlreadyCancelled, got %v", err)
	}

	// The admin may cancel too.
	other := createTestCampaign(t, env, 2, "alice", 1000, 1000)
	if err := env.engine.CancelCampaign(ctx, asAdmin(), other); err != nil {
		t.Fatalf("Admin CancelCampaign failed: %v", err)
	}
}

func TestActiveCampaignCount(t *testing.T) {
	env := initializedEnv(t, 0)
	ctx := context.Background()
	createTestCampaign(t, env, 1, "alice", 1000, 500)
	createTestCampaign(t, env, 2, "alice", 1000, 5000)

	count, err := env.engine.ActiveCampaignCount(ctx)
	if err != nil {
		t.Fatalf("ActiveCampaignCount failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 active campaigns, got %d", count)
	}

	env.clock.Advance(1000 * time.Second)

	count, err = env.engine.ActiveCampaignCount(ctx)
	if err != nil {
		t.Fatalf("ActiveCampaignCount failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 active campaign after expiry, got %d", count)
	}

	ids, err := env.engine.AllCampaigns(ctx)
	if err != nil {
		t.Fatalf("AllCampaigns failed: %v", err)
	}
	if len(ids) != 2 {
		t.Errorf("Expected 2 indexed campaigns, got %d", len(ids))
	}
}

func TestCampaignStatus_Expired(t *testing.T) {
	env := initializedEnv(t, 0)
	ctx := context.Background()
	id := createTestCampaign(t, env, 1, "alice", 1000, 500)

	env.clock.Advance(500 * time.Second)

	status, err := env.engine.CampaignStatus(ctx, id)
	if err != nil {
		t.Fatalf("CampaignStatus failed: %v", err)
	}
	if status != models.CampaignExpired {
		t.Errorf("Expected expired status, got %s", status)
	}
}
