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

package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"crowdfund-ledger-go/internal/common"
	"crowdfund-ledger-go/internal/config"
	"crowdfund-ledger-go/internal/engine"
	"crowdfund-ledger-go/internal/models"

	"go.uber.org/zap"
)

func formatID(id string) string {
	if len(id) > 8 {
		return id[:8] + "..."
	}
	return id
}

func formatUnix(ts int64) string {
	if ts == 0 {
		return "never"
	}
	return time.Unix(ts, 0).UTC().Format("2006-01-02 15:04:05")
}

func printCampaign(ctx context.Context, ledger *engine.Engine, campaign models.Campaign, isLast bool) {
	status, err := ledger.CampaignStatus(ctx, campaign.ID)
	if err != nil {
		zap.L().Error("Failed to derive campaign status",
			zap.String("campaign_id", campaign.ID.String()),
			zap.Error(err))
		return
	}
	metrics, err := ledger.CampaignMetrics(ctx, campaign.ID)
	if err != nil {
		zap.L().Error("Failed to read campaign metrics",
			zap.String("campaign_id", campaign.ID.String()),
			zap.Error(err))
		return
	}

	symbol := common.BoxPrefix(isLast)
	detail := common.BoxDetailPrefix(isLast)

	fmt.Printf("%s %-30s [%s] %s\n", symbol, campaign.Title, status, formatID(campaign.ID.String()))
	fmt.Printf("%s   raised %s / %s %s, %d donors, deadline %s\n",
		detail,
		campaign.TotalRaised.String(),
		campaign.Goal.String(),
		campaign.Asset,
		metrics.ContributorCount,
		formatUnix(campaign.Deadline))
	if metrics.TopContributor != "" {
		fmt.Printf("%s   top contributor %s (%s)\n",
			detail, metrics.TopContributor, metrics.MaxDonation.String())
	}
}

func printCampaigns(ctx context.Context, ledger *engine.Engine) int {
	ids, err := ledger.AllCampaigns(ctx)
	if err != nil {
		zap.L().Fatal("Failed to list campaigns", zap.Error(err))
	}
	campaigns, err := ledger.GetCampaigns(ctx, ids)
	if err != nil {
		zap.L().Fatal("Failed to load campaigns", zap.Error(err))
	}

	fmt.Printf("\n┌─ Campaigns: %d\n", len(campaigns))
	for i, campaign := range campaigns {
		printCampaign(ctx, ledger, campaign, i == len(campaigns)-1)
	}
	return len(campaigns)
}

func printPool(ctx context.Context, ledger *engine.Engine, poolID uint64, isLast bool) {
	pool, err := ledger.GetPool(ctx, poolID)
	if err != nil {
		zap.L().Error("Failed to load pool", zap.Uint64("pool_id", poolID), zap.Error(err))
		return
	}
	state, err := ledger.PoolStateOf(ctx, poolID)
	if err != nil {
		zap.L().Error("Failed to read pool state", zap.Uint64("pool_id", poolID), zap.Error(err))
		return
	}
	metrics, err := ledger.PoolMetricsOf(ctx, poolID)
	if err != nil {
		zap.L().Error("Failed to read pool metrics", zap.Uint64("pool_id", poolID), zap.Error(err))
		return
	}

	symbol := common.BoxPrefix(isLast)
	detail := common.BoxDetailPrefix(isLast)

	fmt.Printf("%s #%d %-28s [%s]\n", symbol, poolID, pool.Name, state)
	fmt.Printf("%s   raised %s / %s, %d contributors, last donation %s\n",
		detail,
		metrics.TotalRaised.String(),
		pool.TargetAmount.String(),
		metrics.ContributorCount,
		formatUnix(metrics.LastDonationAt))
}

func printPools(ctx context.Context, ledger *engine.Engine) uint64 {
	count, err := ledger.PoolCount(ctx)
	if err != nil {
		zap.L().Fatal("Failed to count pools", zap.Error(err))
	}

	fmt.Printf("\n┌─ Pools: %d\n", count)
	for poolID := uint64(1); poolID <= count; poolID++ {
		printPool(ctx, ledger, poolID, poolID == count)
	}
	return count
}

func printPlatformSummary(ctx context.Context, ledger *engine.Engine) {
	paused, err := ledger.IsPaused(ctx)
	if err != nil {
		zap.L().Fatal("Failed to read pause flag", zap.Error(err))
	}
	fees, err := ledger.PlatformFees(ctx)
	if err != nil {
		zap.L().Fatal("Failed to read platform fees", zap.Error(err))
	}
	total, err := ledger.GlobalRaisedTotal(ctx)
	if err != nil {
		zap.L().Fatal("Failed to read global raised total", zap.Error(err))
	}
	active, err := ledger.ActiveCampaignCount(ctx)
	if err != nil {
		zap.L().Fatal("Failed to count active campaigns", zap.Error(err))
	}

	fmt.Printf("\nVersion: %s  Paused: %v\n", ledger.Version(), paused)
	fmt.Printf("Global raised: %s  Accrued fees: %s  Active campaigns: %d\n",
		total.String(), fees.String(), active)
}

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	campaignsOnly := flag.Bool("campaigns", false, "Report campaigns only")
	poolsOnly := flag.Bool("pools", false, "Report pools only")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	common.PrintHeader("FUNDING LEDGER REPORT", common.DefaultWidth)
	printPlatformSummary(ctx, services.Engine)

	if !*poolsOnly {
		printCampaigns(ctx, services.Engine)
	}
	if !*campaignsOnly {
		printPools(ctx, services.Engine)
	}

	common.PrintFooter("Report complete", common.DefaultWidth)
}
