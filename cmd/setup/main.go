package main

import (
	"context"
	"errors"
	"flag"

	"crowdfund-ledger-go/internal/common"
	"crowdfund-ledger-go/internal/config"
	"crowdfund-ledger-go/internal/engine"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	_, loggerCleanup := common.InitializeLogger()
	defer loggerCleanup()

	admin := flag.String("admin", "", "Account that becomes the platform admin")
	asset := flag.String("asset", "", "Default asset reference (defaults to the registry default)")
	fee := flag.String("fee", "0", "Campaign creation fee, charged in the default asset")
	flag.Parse()

	if *admin == "" {
		zap.L().Fatal("The -admin flag is required")
	}

	creationFee, err := decimal.NewFromString(*fee)
	if err != nil {
		zap.L().Fatal("Invalid -fee value", zap.String("fee", *fee), zap.Error(err))
	}

	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	defaultAsset := *asset
	if defaultAsset == "" {
		registry, err := common.LoadAssetRegistry(cfg.Platform.AssetsFile)
		if err != nil {
			zap.L().Fatal("No -asset given and asset registry unavailable", zap.Error(err))
		}
		defaultAsset = registry.Default
		zap.L().Info("Using registry default asset", zap.String("asset", defaultAsset))
	}

	services, err := common.InitializeServices(ctx, cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize services", zap.Error(err))
	}
	defer services.Close()

	err = services.Engine.Initialize(ctx, *admin, defaultAsset, creationFee)
	if errors.Is(err, engine.ErrAlreadyInitialized) {
		zap.L().Warn("Platform already initialized, nothing to do")
		return
	}
	if err != nil {
		zap.L().Fatal("Initialization failed", zap.Error(err))
	}

	zap.L().Info("Platform initialized",
		zap.String("admin", *admin),
		zap.String("asset", defaultAsset),
		zap.String("creation_fee", creationFee.String()))
}
