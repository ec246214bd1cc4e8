package common

import (
	"context"
	"log"
	"strings"

	"crowdfund-ledger-go/internal/bank"
	"crowdfund-ledger-go/internal/engine"
	"crowdfund-ledger-go/internal/events"
	"crowdfund-ledger-go/internal/models"
	"crowdfund-ledger-go/internal/store/leveldbstore"
	"crowdfund-ledger-go/internal/store/sqlitestore"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Environment variables can also be set via shell export, docker, etc.
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: No .env file found or unable to load it: %v\n", err)
	}
}

// Services bundles everything a binary needs to run the ledger engine.
type Services struct {
	Operational *leveldbstore.Store
	Archival    *sqlitestore.Store
	Bank        *bank.Service
	Engine      *engine.Engine
	sink        *events.RedisSink
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

// InitializeServices opens both storage tiers, the bank subledger and the
// notification sink, then wires the engine on top of them.
func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	operational, err := leveldbstore.Open(cfg.Stores.OperationalPath)
	if err != nil {
		return nil, err
	}

	archival, err := sqlitestore.Open(ctx, cfg.Stores.ArchivalPath)
	if err != nil {
		_ = operational.Close()
		return nil, err
	}

	bankService, err := bank.NewService(ctx, cfg.Bank)
	if err != nil {
		_ = operational.Close()
		_ = archival.Close()
		return nil, err
	}

	var sink events.Sink
	var redisSink *events.RedisSink
	if cfg.Events.RedisAddr != "" {
		redisSink, err = events.NewRedisSink(ctx, cfg.Events.RedisAddr, cfg.Events.RedisChannel)
		if err != nil {
			_ = operational.Close()
			_ = archival.Close()
			bankService.Close()
			return nil, err
		}
		sink = redisSink
	} else {
		zap.L().Info("No redis configured, events go to the log")
		sink = events.NewLogSink(zap.L())
	}

	ledger, err := engine.New(engine.Options{
		Operational: operational,
		Archival:    archival,
		Bank:        bankService,
		Sink:        sink,
		Logger:      zap.L(),
		Account:     cfg.Platform.Account,
	})
	if err != nil {
		_ = operational.Close()
		_ = archival.Close()
		bankService.Close()
		if redisSink != nil {
			_ = redisSink.Close()
		}
		return nil, err
	}

	return &Services{
		Operational: operational,
		Archival:    archival,
		Bank:        bankService,
		Engine:      ledger,
		sink:        redisSink,
	}, nil
}

func (s *Services) Close() {
	if s.sink != nil {
		_ = s.sink.Close()
	}
	if s.Bank != nil {
		s.Bank.Close()
	}
	if s.Archival != nil {
		_ = s.Archival.Close()
	}
	if s.Operational != nil {
		_ = s.Operational.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "sync /dev/stderr: inappropriate ioctl for device") ||
		strings.Contains(msg, "sync /dev/stdout: inappropriate ioctl for device")
}
