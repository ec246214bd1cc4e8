package store

import (
	"testing"

	"crowdfund-ledger-go/internal/models"
)

func TestKeyEncode(t *testing.T) {
	var id models.CampaignID
	id[0] = 0xab
	hexID := id.String()

	cases := []struct {
		key  Key
		want string
	}{
		{AdminKey(), "admin"},
		{PausedKey(), "paused"},
		{DefaultAssetKey(), "default-asset"},
		{CreationFeeKey(), "creation-fee"},
		{PlatformFeesKey(), "platform-fees"},
		{GlobalTotalRaisedKey(), "global-total-raised"},
		{AllCampaignsKey(), "all-campaigns"},
		{NextPoolIDKey(), "next-pool-id"},
		{EmergencyWithdrawalKey(), "emergency-withdrawal"},
		{EmergencyContactKey(), "emergency-contact"},
		{CampaignKey(id), "campaign/" + hexID},
		{CampaignMetricsKey(id), "campaign/" + hexID + "/metrics"},
		{CampaignCancelledKey(id), "campaign/" + hexID + "/cancelled"},
		{CampaignFeeHistoryKey(id), "campaign/" + hexID + "/fee-history"},
		{CampaignDonorKey(id, "bob"), "campaign/" + hexID + "/donor/bob"},
		{ContributionKey(id, "bob"), "campaign/" + hexID + "/contribution/bob"},
		{PoolKey(7), "pool/7"},
		{PoolStateKey(7), "pool/7/state"},
		{PoolMetricsKey(7), "pool/7/metrics"},
		{PoolMetadataKey(7), "pool/7/metadata"},
		{PoolMultiSigKey(7), "pool/7/multisig"},
		{PoolContributionKey(7, "bob"), "pool/7/contribution/bob"},
		{BlacklistKey("bob"), "blacklist/bob"},
		{VerifiedCauseKey("wells"), "verified-cause/wells"},
	}

	for _, tc := range cases {
		if got := tc.key.String(); got != tc.want {
			t.Errorf("Key %v encoded to %q, want %q", tc.key.Kind, got, tc.want)
		}
	}
}

func TestKeyEncode_UnknownKindPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for unknown key kind")
		}
	}()
	Key{Kind: Kind(200)}.Encode()
}

func TestKeys_Distinct(t *testing.T) {
	var a, b models.CampaignID
	a[0] = 1
	b[0] = 2

	seen := make(map[string]bool)
	keys := []Key{
		CampaignKey(a), CampaignKey(b),
		ContributionKey(a, "bob"), ContributionKey(a, "carol"), ContributionKey(b, "bob"),
		PoolContributionKey(1, "bob"), PoolContributionKey(2, "bob"),
	}
	for _, key := range keys {
		encoded := key.String()
		if seen[encoded] {
			t.Errorf("Duplicate encoding %q", encoded)
		}
		seen[encoded] = true
	}
}
