package dbotx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"chainwatch/internal/domain"
)

func TestGetPairInfo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/kline/pair_info" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("chain"); got != "solana" {
			t.Errorf("chain param = %s, want solana", got)
		}
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("x-api-key = %q, want test-key", got)
		}

		resp := map[string]interface{}{
			"err": false,
			"res": []map[string]interface{}{
				{
					"name":              "Test Token",
					"symbol":            "TT",
					"marketCap":         125000.5,
					"holders":           340,
					"snipersCount":      12,
					"isLaunchMigration": true,
					"buyVolume1m":       100.0,
					"sellVolume1m":      40.0,
					"buyVolume24h":      9000.0,
					"sellVolume24h":     7500.0,
					"safetyInfo": map[string]interface{}{
						"freezeAuthority":         false,
						"canFrozen":               true,
						"mintAuthority":           false,
						"canMint":                 false,
						"top10HolderRate":         0.35,
						"burnedOrLockedLpPercent": 0.97,
					},
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithAPIKey("test-key"))

	snap, err := client.GetPairInfo(context.Background(), domain.ChainSolana, "SomePairAddress")
	if err != nil {
		t.Fatalf("GetPairInfo: %v", err)
	}

	if snap.Name != "Test Token" || snap.Symbol != "TT" {
		t.Errorf("token = %s (%s)", snap.Name, snap.Symbol)
	}
	if snap.MarketCap != 125000.5 {
		t.Errorf("market cap = %f, want 125000.5", snap.MarketCap)
	}
	if snap.Holders != 340 || snap.Snipers != 12 {
		t.Errorf("holders/snipers = %d/%d, want 340/12", snap.Holders, snap.Snipers)
	}
	if !snap.LaunchMigration {
		t.Error("expected launch migration flag")
	}
	if v := snap.Volume(domain.Window1m); v.Buy != 100 || v.Sell != 40 {
		t.Errorf("1m volume = %+v, want {100 40}", v)
	}
	if v := snap.Volume(domain.Window5m); v.Buy != 0 || v.Sell != 0 {
		t.Errorf("absent window should be zero, got %+v", v)
	}
	if snap.Safety.FreezeAuthority || !snap.Safety.CanFreeze {
		t.Errorf("safety flags = %+v", snap.Safety)
	}
	if snap.Safety.Top10HolderRate != 0.35 {
		t.Errorf("top10 rate = %f, want 0.35", snap.Safety.Top10HolderRate)
	}
	if snap.Safety.BurnedOrLockedLP == nil || *snap.Safety.BurnedOrLockedLP != 0.97 {
		t.Errorf("LP fraction = %v, want 0.97", snap.Safety.BurnedOrLockedLP)
	}
}

func TestGetPairInfo_MissingLPDataStaysNil(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"err": false,
			"res": []map[string]interface{}{
				{"name": "Bare", "symbol": "B", "safetyInfo": map[string]interface{}{}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	snap, err := client.GetPairInfo(context.Background(), domain.ChainBSC, "0xpair")
	if err != nil {
		t.Fatalf("GetPairInfo: %v", err)
	}
	if snap.Safety.BurnedOrLockedLP != nil {
		t.Errorf("LP fraction = %v, want nil", snap.Safety.BurnedOrLockedLP)
	}
}

func TestGetPairInfo_EmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"err": false, "res": []interface{}{}})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL))

	_, err := client.GetPairInfo(context.Background(), domain.ChainSolana, "Unknown")
	if !errors.Is(err, ErrPairNotFound) {
		t.Errorf("err = %v, want ErrPairNotFound", err)
	}
}

func TestGetPairInfo_APIErrorNotRetried(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(map[string]interface{}{"err": true, "message": "invalid api key"})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithMaxRetries(3), WithRetryDelay(time.Millisecond))

	_, err := client.GetPairInfo(context.Background(), domain.ChainSolana, "Pair")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want APIError", err)
	}
	if apiErr.Message != "invalid api key" {
		t.Errorf("message = %q", apiErr.Message)
	}
	if calls.Load() != 1 {
		t.Errorf("API errors must not be retried, got %d calls", calls.Load())
	}
}

func TestCall_RetriesTransportFailures(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "boom", http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"err": false, "res": []interface{}{}})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithMaxRetries(3), WithRetryDelay(time.Millisecond))

	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck after retries: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestCreateSwapOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/automation/swap_order" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var order SwapOrder
		if err := json.NewDecoder(r.Body).Decode(&order); err != nil {
			t.Fatalf("decode order: %v", err)
		}
		if order.Type != "buy" || order.Chain != domain.ChainSolana {
			t.Errorf("order = %+v", order)
		}
		if order.MaxSlippage != 0.15 || !order.JitoEnabled {
			t.Errorf("defaults not applied: %+v", order)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"err": false,
			"res": map[string]interface{}{"id": "order-123"},
		})
	}))
	defer server.Close()

	client := NewClient(WithBaseURL(server.URL), WithAPIKey("k"))

	id, err := client.FastBuy(context.Background(), domain.ChainSolana, "PairAddr", "wallet-1", 0.5)
	if err != nil {
		t.Fatalf("FastBuy: %v", err)
	}
	if id != "order-123" {
		t.Errorf("order id = %s, want order-123", id)
	}
}

func TestForKey_DoesNotMutateOriginal(t *testing.T) {
	base := NewClient(WithAPIKey("base-key"))
	derived := base.ForKey("user-key")

	if base.apiKey != "base-key" {
		t.Errorf("base key mutated to %q", base.apiKey)
	}
	if derived.apiKey != "user-key" {
		t.Errorf("derived key = %q, want user-key", derived.apiKey)
	}
	if derived.client != base.client {
		t.Error("derived client should share the http.Client")
	}
}
