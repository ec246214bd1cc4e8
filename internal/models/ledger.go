package models

import (
	"encoding/hex"
	"fmt"

	"github.com/shopspring/decimal"
)

// CampaignID is the 32-byte opaque identifier of a campaign. It is carried
// as lowercase hex on every external surface (JSON, HTTP, events).
type CampaignID [32]byte

func ParseCampaignID(s string) (CampaignID, error) {
	var id CampaignID
	raw, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("invalid campaign id %q: %w", s, err)
	}
	if len(raw) != len(id) {
		return id, fmt.Errorf("invalid campaign id %q: want %d bytes, got %d", s, len(id), len(raw))
	}
	copy(id[:], raw)
	return id, nil
}

func (id CampaignID) String() string {
	return hex.EncodeToString(id[:])
}

func (id CampaignID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *CampaignID) UnmarshalText(text []byte) error {
	parsed, err := ParseCampaignID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// Campaign is a single-beneficiary funding instrument. TotalRaised only
// grows, and always equals the sum of the per-donor contribution records.
type Campaign struct {
	ID          CampaignID      `json:"id"`
	Title       string          `json:"title"`
	Creator     string          `json:"creator"`
	Goal        decimal.Decimal `json:"goal"`
	Deadline    int64           `json:"deadline"`
	TotalRaised decimal.Decimal `json:"total_raised"`
	Asset       string          `json:"asset"`
}

// CampaignMetrics is the incrementally maintained view of a campaign's
// donation activity. TopContributor is empty until the first donation.
type CampaignMetrics struct {
	TotalRaised      decimal.Decimal `json:"total_raised"`
	ContributorCount uint32          `json:"contributor_count"`
	MaxDonation      decimal.Decimal `json:"max_donation"`
	TopContributor   string          `json:"top_contributor"`
	LastDonationAt   int64           `json:"last_donation_at"`
}

// Contribution is the cumulative amount one donor has put into one campaign.
type Contribution struct {
	CampaignID  CampaignID      `json:"campaign_id"`
	Contributor string          `json:"contributor"`
	Amount      decimal.Decimal `json:"amount"`
}

// CampaignStatus is the derived lifecycle of a campaign; it is never stored.
type CampaignStatus string

const (
	CampaignActive    CampaignStatus = "active"
	CampaignFunded    CampaignStatus = "funded"
	CampaignExpired   CampaignStatus = "expired"
	CampaignCancelled CampaignStatus = "cancelled"
)

// DeriveCampaignStatus computes the lifecycle status. Cancellation wins over
// everything, then funded, then expiry.
func DeriveCampaignStatus(raised, goal decimal.Decimal, deadline, now int64, cancelled bool) CampaignStatus {
	switch {
	case cancelled:
		return CampaignCancelled
	case raised.GreaterThanOrEqual(goal):
		return CampaignFunded
	case now >= deadline:
		return CampaignExpired
	default:
		return CampaignActive
	}
}

// PoolConfig is the persistent configuration of a pool. The deadline is
// CreatedAt + Duration; a Duration of zero means the pool never expires and
// therefore never supports refunds.
type PoolConfig struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	IsPrivate    bool            `json:"is_private"`
	Duration     int64           `json:"duration"`
	CreatedAt    int64           `json:"created_at"`
}

// Deadline returns the absolute unix time after which the pool is expired.
func (p PoolConfig) Deadline() int64 {
	return p.CreatedAt + p.Duration
}

// PoolMetadata is the larger descriptive payload kept on the archival tier.
type PoolMetadata struct {
	Description string `json:"description"`
	ExternalURL string `json:"external_url"`
	ImageHash   string `json:"image_hash"`
}

// PoolState is the stored lifecycle state of a pool. Completed and Cancelled
// are terminal; Disbursed may still move to Closed.
type PoolState string

const (
	PoolActive    PoolState = "active"
	PoolCompleted PoolState = "completed"
	PoolCancelled PoolState = "cancelled"
	PoolDisbursed PoolState = "disbursed"
	PoolClosed    PoolState = "closed"
)

// Valid reports whether s is one of the defined pool states.
func (s PoolState) Valid() bool {
	switch s {
	case PoolActive, PoolCompleted, PoolCancelled, PoolDisbursed, PoolClosed:
		return true
	}
	return false
}

// Terminal reports whether no transition out of s is permitted.
func (s PoolState) Terminal() bool {
	return s == PoolCompleted || s == PoolCancelled
}

// MultiSigConfig gates pool control behind a signer quorum. Absence of a
// config means single-authority control.
type MultiSigConfig struct {
	RequiredSignatures uint32   `json:"required_signatures"`
	Signers            []string `json:"signers"`
}

// PoolContribution is the cumulative amount one contributor has put into one
// pool, together with the asset used. Refund zeroes Amount but keeps the
// record so a second refund finds nothing to pay out.
type PoolContribution struct {
	PoolID      uint64          `json:"pool_id"`
	Contributor string          `json:"contributor"`
	Amount      decimal.Decimal `json:"amount"`
	Asset       string          `json:"asset"`
}

// PoolMetrics mirrors CampaignMetrics for pools. ContributorCount moves only
// when a contributor's recorded amount goes from zero to nonzero, and never
// decreases.
type PoolMetrics struct {
	TotalRaised      decimal.Decimal `json:"total_raised"`
	ContributorCount uint32          `json:"contributor_count"`
	LastDonationAt   int64           `json:"last_donation_at"`
}

// EmergencyWithdrawal is the platform-wide singleton two-phase withdrawal
// request. At most one may be outstanding.
type EmergencyWithdrawal struct {
	Recipient   string          `json:"recipient"`
	Amount      decimal.Decimal `json:"amount"`
	Token       string          `json:"token"`
	RequestedAt int64           `json:"requested_at"`
	Executed    bool            `json:"executed"`
}
