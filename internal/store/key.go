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

package store

import (
	"fmt"

	"crowdfund-ledger-go/internal/models"
)

// Kind enumerates every storage key shape the engine uses. Keys are built
// through the constructors below, never from ad-hoc strings, so that the
// Encode switch stays exhaustive.
type Kind uint8

const (
	// Singletons.
	KindAdmin Kind = iota + 1
	KindPaused
	KindDefaultAsset
	KindCreationFee
	KindPlatformFees
	KindGlobalTotalRaised
	KindAllCampaigns
	KindNextPoolID
	KindEmergencyWithdrawal
	KindEmergencyContact

	// Campaign-scoped.
	KindCampaign
	KindCampaignMetrics
	KindCampaignCancelled
	KindCampaignFeeHistory
	KindCampaignDonor
	KindContribution

	// Pool-scoped.
	KindPool
	KindPoolState
	KindPoolMetrics
	KindPoolMetadata
	KindPoolMultiSig
	KindPoolContribution

	// Party-scoped.
	KindBlacklist
	KindVerifiedCause
)

// Key is a tagged-variant storage key. Only the fields relevant to the Kind
// are set.
type Key struct {
	Kind     Kind
	Campaign models.CampaignID
	Pool     uint64
	Party    string
}

func AdminKey() Key               { return Key{Kind: KindAdmin} }
func PausedKey() Key              { return Key{Kind: KindPaused} }
func DefaultAssetKey() Key        { return Key{Kind: KindDefaultAsset} }
func CreationFeeKey() Key         { return Key{Kind: KindCreationFee} }
func PlatformFeesKey() Key        { return Key{Kind: KindPlatformFees} }
func GlobalTotalRaisedKey() Key   { return Key{Kind: KindGlobalTotalRaised} }
func AllCampaignsKey() Key        { return Key{Kind: KindAllCampaigns} }
func NextPoolIDKey() Key          { return Key{Kind: KindNextPoolID} }
func EmergencyWithdrawalKey() Key { return Key{Kind: KindEmergencyWithdrawal} }
func EmergencyContactKey() Key    { return Key{Kind: KindEmergencyContact} }

func CampaignKey(id models.CampaignID) Key {
	return Key{Kind: KindCampaign, Campaign: id}
}

func CampaignMetricsKey(id models.CampaignID) Key {
	return Key{Kind: KindCampaignMetrics, Campaign: id}
}

func CampaignCancelledKey(id models.CampaignID) Key {
	return Key{Kind: KindCampaignCancelled, Campaign: id}
}

func CampaignFeeHistoryKey(id models.CampaignID) Key {
	return Key{Kind: KindCampaignFeeHistory, Campaign: id}
}

func CampaignDonorKey(id models.CampaignID, donor string) Key {
	return Key{Kind: KindCampaignDonor, Campaign: id, Party: donor}
}

func ContributionKey(id models.CampaignID, donor string) Key {
	return Key{Kind: KindContribution, Campaign: id, Party: donor}
}

func PoolKey(id uint64) Key             { return Key{Kind: KindPool, Pool: id} }
func PoolStateKey(id uint64) Key        { return Key{Kind: KindPoolState, Pool: id} }
func PoolMetricsKey(id uint64) Key      { return Key{Kind: KindPoolMetrics, Pool: id} }
func PoolMetadataKey(id uint64) Key     { return Key{Kind: KindPoolMetadata, Pool: id} }
func PoolMultiSigKey(id uint64) Key     { return Key{Kind: KindPoolMultiSig, Pool: id} }

func PoolContributionKey(id uint64, contributor string) Key {
	return Key{Kind: KindPoolContribution, Pool: id, Party: contributor}
}

func BlacklistKey(party string) Key     { return Key{Kind: KindBlacklist, Party: party} }
func VerifiedCauseKey(party string) Key { return Key{Kind: KindVerifiedCause, Party: party} }

// Encode renders the key to its canonical byte form. The switch is
// exhaustive over Kind; an unknown kind is a programming error.
func (k Key) Encode() []byte {
	var s string
	switch k.Kind {
	case KindAdmin:
		s = "admin"
	case KindPaused:
		s = "paused"
	case KindDefaultAsset:
		s = "default-asset"
	case KindCreationFee:
		s = "creation-fee"
	case KindPlatformFees:
		s = "platform-fees"
	case KindGlobalTotalRaised:
		s = "global-total-raised"
	case KindAllCampaigns:
		s = "all-campaigns"
	case KindNextPoolID:
		s = "next-pool-id"
	case KindEmergencyWithdrawal:
		s = "emergency-withdrawal"
	case KindEmergencyContact:
		s = "emergency-contact"
	case KindCampaign:
		s = "campaign/" + k.Campaign.String()
	case KindCampaignMetrics:
		s = "campaign/" + k.Campaign.String() + "/metrics"
	case KindCampaignCancelled:
		s = "campaign/" + k.Campaign.String() + "/cancelled"
	case KindCampaignFeeHistory:
		s = "campaign/" + k.Campaign.String() + "/fee-history"
	case KindCampaignDonor:
		s = "campaign/" + k.Campaign.String() + "/donor/" + k.Party
	case KindContribution:
		s = "campaign/" + k.Campaign.String() + "/contribution/" + k.Party
	case KindPool:
		s = fmt.Sprintf("pool/%d", k.Pool)
	case KindPoolState:
		s = fmt.Sprintf("pool/%d/state", k.Pool)
	case KindPoolMetrics:
		s = fmt.Sprintf("pool/%d/metrics", k.Pool)
	case KindPoolMetadata:
		s = fmt.Sprintf("pool/%d/metadata", k.Pool)
	case KindPoolMultiSig:
		s = fmt.Sprintf("pool/%d/multisig", k.Pool)
	case KindPoolContribution:
		s = fmt.Sprintf("pool/%d/contribution/%s", k.Pool, k.Party)
	case KindBlacklist:
		s = "blacklist/" + k.Party
	case KindVerifiedCause:
		s = "verified-cause/" + k.Party
	default:
		panic(fmt.Sprintf("store: unknown key kind %d", k.Kind))
	}
	return []byte(s)
}

func (k Key) String() string {
	return string(k.Encode())
}
