package engine

import (
	"context"
	"testing"
	"time"

	"crowdfund-ledger-go/internal/bank"
	"crowdfund-ledger-go/internal/clock"
	"crowdfund-ledger-go/internal/events"
	"crowdfund-ledger-go/internal/models"
	"crowdfund-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	testAdmin = "admin"
	testAsset = "USDC:issuer"
	testStart = int64(1_700_000_000)
)

type testEnv struct {
	engine      *Engine
	operational *store.Memory
	archival    *store.Memory
	bank        *bank.Memory
	clock       *clock.Manual
	events      *events.Collector
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		operational: store.NewMemory(),
		archival:    store.NewMemory(),
		bank:        bank.NewMemory(),
		clock:       clock.NewManual(time.Unix(testStart, 0)),
		events:      events.NewCollector(),
	}

	engine, err := New(Options{
		Operational: env.operational,
		Archival:    env.archival,
		Bank:        env.bank,
		Clock:       env.clock,
		Sink:        env.events,
		Logger:      zap.NewNop(),
		Account:     "platform",
	})
	if err != nil {
		t.Fatalf("Failed to build engine: %v", err)
	}
	env.engine = engine
	return env
}

// initializedEnv builds an engine already initialized with the given
// creation fee.
func initializedEnv(t *testing.T, creationFee int64) *testEnv {
	t.Helper()
	env := newTestEnv(t)
	err := env.engine.Initialize(context.Background(), testAdmin, testAsset, decimal.NewFromInt(creationFee))
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return env
}

func (env *testEnv) fund(t *testing.T, account string, amount int64) {
	t.Helper()
	if err := env.bank.Deposit(context.Background(), account, testAsset, decimal.NewFromInt(amount)); err != nil {
		t.Fatalf("Failed to fund %s: %v", account, err)
	}
}

func (env *testEnv) balance(t *testing.T, account string) decimal.Decimal {
	t.Helper()
	balance, err := env.bank.Balance(context.Background(), account, testAsset)
	if err != nil {
		t.Fatalf("Failed to read balance of %s: %v", account, err)
	}
	return balance
}

func asActor(actor string) AuthContext {
	return AuthContext{Actor: actor}
}

func asAdmin() AuthContext {
	return asActor(testAdmin)
}

func testCampaignID(b byte) models.CampaignID {
	var id models.CampaignID
	id[0] = b
	return id
}

func requireDecimal(t *testing.T, got decimal.Decimal, want int64, what string) {
	t.Helper()
	if !got.Equal(decimal.NewFromInt(want)) {
		t.Errorf("%s: expected %d, got %s", what, want, got.String())
	}
}

func TestNew_RequiresCollaborators(t *testing.T) {
	operational := store.NewMemory()
	archival := store.NewMemory()

	if _, err := New(Options{Archival: archival, Bank: bank.NewMemory(), Account: "platform"}); err == nil {
		t.Error("Expected error without operational store")
	}
	if _, err := New(Options{Operational: operational, Archival: archival, Account: "platform"}); err == nil {
		t.Error("Expected error without bank")
	}
	if _, err := New(Options{Operational: operational, Archival: archival, Bank: bank.NewMemory()}); err == nil {
		t.Error("Expected error without platform account")
	}
}

func TestVersion(t *testing.T) {
	env := newTestEnv(t)
	if got := env.engine.Version(); got != "1.2.0" {
		t.Errorf("Expected version 1.2.0, got %s", got)
	}
}
