package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"crowdfund-ledger-go/internal/bank"
	"crowdfund-ledger-go/internal/clock"
	"crowdfund-ledger-go/internal/engine"
	"crowdfund-ledger-go/internal/events"
	"crowdfund-ledger-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const testStart = int64(1_700_000_000)

func setupTestServer(t *testing.T) (*httptest.Server, *engine.Engine, *bank.Memory) {
	t.Helper()

	transfers := bank.NewMemory()
	ledger, err := engine.New(engine.Options{
		Operational: store.NewMemory(),
		Archival:    store.NewMemory(),
		Bank:        transfers,
		Clock:       clock.NewManual(time.Unix(testStart, 0)),
		Sink:        events.NewCollector(),
		Logger:      zap.NewNop(),
		Account:     "platform",
	})
	if err != nil {
		t.Fatalf("Failed to build engine: %v", err)
	}

	if err := ledger.Initialize(context.Background(), "admin", "USDC:issuer", decimal.Zero); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	server := httptest.NewServer(NewRouter(NewHandler(ledger)))
	t.Cleanup(server.Close)
	return server, ledger, transfers
}

func doRequest(t *testing.T, server *httptest.Server, method, path, actor, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, server.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	if actor != "" {
		req.Header.Set("X-Actor", actor)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("Request %s %s failed: %v", method, path, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestHealthAndVersion(t *testing.T) {
	server, _, _ := setupTestServer(t)

	resp := doRequest(t, server, http.MethodGet, "/healthz", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 from /healthz, got %d", resp.StatusCode)
	}

	resp = doRequest(t, server, http.MethodGet, "/version", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 from /version, got %d", resp.StatusCode)
	}
}

func TestCampaignLifecycleOverHTTP(t *testing.T) {
	server, _, transfers := setupTestServer(t)
	id := strings.Repeat("01", 32)

	body := `{"id":"` + id + `","title":"Well","creator":"alice","goal":"1000","deadline":` +
		"1700001000" + `}`
	resp := doRequest(t, server, http.MethodPost, "/v1/campaigns/", "alice", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201 creating campaign, got %d", resp.StatusCode)
	}

	// Creating the same campaign again conflicts.
	resp = doRequest(t, server, http.MethodPost, "/v1/campaigns/", "alice", body)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("Expected 409 for duplicate campaign, got %d", resp.StatusCode)
	}

	if err := transfers.Deposit(context.Background(), "bob", "USDC:issuer", decimal.NewFromInt(500)); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	resp = doRequest(t, server, http.MethodPost, "/v1/campaigns/"+id+"/donations", "bob",
		`{"donor":"bob","asset":"USDC:issuer","amount":"250"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 donating, got %d", resp.StatusCode)
	}

	resp = doRequest(t, server, http.MethodGet, "/v1/campaigns/"+id, "", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 reading campaign, got %d", resp.StatusCode)
	}

	resp = doRequest(t, server, http.MethodGet, "/v1/campaigns/"+strings.Repeat("ff", 32), "", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown campaign, got %d", resp.StatusCode)
	}

	resp = doRequest(t, server, http.MethodGet, "/v1/campaigns/not-hex", "", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed id, got %d", resp.StatusCode)
	}
}

func TestAdminEndpointsRequireActor(t *testing.T) {
	server, _, _ := setupTestServer(t)

	resp := doRequest(t, server, http.MethodPost, "/v1/admin/pause", "", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401 pausing without actor, got %d", resp.StatusCode)
	}

	resp = doRequest(t, server, http.MethodPost, "/v1/admin/pause", "admin", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 pausing as admin, got %d", resp.StatusCode)
	}

	// Mutations are refused while paused.
	resp = doRequest(t, server, http.MethodPost, "/v1/pools/", "alice",
		`{"name":"Pool","creator":"alice","target_amount":"500","deadline":1700001000}`)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("Expected 403 while paused, got %d", resp.StatusCode)
	}
}

func TestPoolEndpoints(t *testing.T) {
	server, _, transfers := setupTestServer(t)

	resp := doRequest(t, server, http.MethodPost, "/v1/pools/", "alice",
		`{"name":"Relief","creator":"alice","target_amount":"500","deadline":1700001000,"metadata":{"description":"flood relief"}}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201 creating pool, got %d", resp.StatusCode)
	}

	if err := transfers.Deposit(context.Background(), "bob", "USDC:issuer", decimal.NewFromInt(100)); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	resp = doRequest(t, server, http.MethodPost, "/v1/pools/1/contributions", "bob",
		`{"contributor":"bob","asset":"USDC:issuer","amount":"100"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 contributing, got %d", resp.StatusCode)
	}

	resp = doRequest(t, server, http.MethodGet, "/v1/pools/1/metrics", "", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 reading metrics, got %d", resp.StatusCode)
	}

	resp = doRequest(t, server, http.MethodGet, "/v1/pools/99", "", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown pool, got %d", resp.StatusCode)
	}

	resp = doRequest(t, server, http.MethodGet, "/v1/pools/1/multisig", "", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 for pool without multisig, got %d", resp.StatusCode)
	}
}
