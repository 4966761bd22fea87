package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"chainwatch/internal/domain"
	"chainwatch/internal/feed"
	"chainwatch/internal/storage/memory"
)

const bscAddr = "0x1234567890123456789012345678901234567890"

type fakeLookup struct {
	token string
	err   error
	calls int
}

func (f *fakeLookup) Lookup(_ context.Context, _ domain.Chain, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.token, nil
}

type fakeTradeAPI struct {
	apiKey string

	snap     *domain.MarketSnapshot
	fetchErr error

	buyErr     error
	buyCalls   int
	buyWallet  string
	buyAmount  float64
	fetchCalls int
}

func (f *fakeTradeAPI) GetPairInfo(_ context.Context, _ domain.Chain, _ string) (*domain.MarketSnapshot, error) {
	f.fetchCalls++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.snap, nil
}

func (f *fakeTradeAPI) FastBuy(_ context.Context, _ domain.Chain, _ string, walletID string, amount float64) (string, error) {
	f.buyCalls++
	f.buyWallet = walletID
	f.buyAmount = amount
	if f.buyErr != nil {
		return "", f.buyErr
	}
	return "api-order-1", nil
}

// passingSnapshot clears the default thresholds of every EVM chain
// (ethereum mcap 100000/holders 200 is the strictest).
func passingSnapshot() *domain.MarketSnapshot {
	return &domain.MarketSnapshot{
		Name:      "Test Token",
		Symbol:    "TT",
		MarketCap: 500000,
		Holders:   1000,
	}
}

type testEnv struct {
	pipeline *Pipeline
	users    *memory.UserStore
	channels *memory.ChannelStore
	orders   *memory.OrderStore
	signals  *memory.SignalStore
	lookup   *fakeLookup
	api      *fakeTradeAPI
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		users:    memory.NewUserStore(),
		channels: memory.NewChannelStore(),
		orders:   memory.NewOrderStore(),
		signals:  memory.NewSignalStore(),
		lookup:   &fakeLookup{token: bscAddr},
		api:      &fakeTradeAPI{snap: passingSnapshot()},
	}

	env.pipeline = New(Options{
		Users:    env.users,
		Channels: env.channels,
		Orders:   env.orders,
		Signals:  env.signals,
		Lookup:   env.lookup,
		Trade: func(apiKey string) TradeAPI {
			env.api.apiKey = apiKey
			return env.api
		},
		Now: func() time.Time { return time.UnixMilli(1700000000000) },
	})
	return env
}

func (e *testEnv) addUser(t *testing.T, userID int64) {
	t.Helper()
	err := e.users.Insert(context.Background(), &domain.User{
		UserID:    userID,
		APIKey:    "key-123",
		WalletID:  "wallet-1",
		BuyAmount: 0.5,
	})
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
}

func (e *testEnv) subscribe(t *testing.T, userID, channelID int64, mode domain.FilterMode, senderIDs ...int64) {
	t.Helper()
	err := e.channels.Insert(context.Background(), &domain.ChannelSubscription{
		UserID:    userID,
		ChannelID: channelID,
		Mode:      mode,
		SenderIDs: senderIDs,
		Active:    true,
	})
	if err != nil {
		t.Fatalf("insert subscription: %v", err)
	}
}

func message(channelID int64, text string) feed.Message {
	return feed.Message{
		ChannelID: channelID,
		MessageID: 42,
		SenderID:  777,
		Text:      text,
		Timestamp: 1700000000,
	}
}

func TestPipeline_ForwardsSafeToken(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, 100)
	env.subscribe(t, 100, -1001, domain.FilterAll)

	env.pipeline.HandleMessage(context.Background(), message(-1001, "ape "+bscAddr+" on bsc now"))

	signals, _ := env.signals.GetByUser(context.Background(), 100, 10)
	if len(signals) != 1 {
		t.Fatalf("signals = %d, want 1", len(signals))
	}
	sig := signals[0]
	if sig.Outcome != domain.SignalForwarded {
		t.Errorf("outcome = %s, want forwarded", sig.Outcome)
	}
	if sig.Chain != domain.ChainBSC || sig.Token != bscAddr {
		t.Errorf("signal = %+v", sig)
	}

	orders, _ := env.orders.GetByUser(context.Background(), 100, 10)
	if len(orders) != 1 {
		t.Fatalf("orders = %d, want 1", len(orders))
	}
	if orders[0].Status != domain.OrderCompleted {
		t.Errorf("order status = %s, want completed", orders[0].Status)
	}

	if env.api.apiKey != "key-123" {
		t.Errorf("trade api key = %q, want the user's key", env.api.apiKey)
	}
	if env.api.buyWallet != "wallet-1" || env.api.buyAmount != 0.5 {
		t.Errorf("buy args = (%s, %f)", env.api.buyWallet, env.api.buyAmount)
	}
}

func TestPipeline_RejectsUnsafeToken(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, 100)
	env.subscribe(t, 100, -1001, domain.FilterAll)

	// Below the default bsc market-cap minimum of 50000
	env.api.snap = &domain.MarketSnapshot{MarketCap: 1000, Holders: 150}

	env.pipeline.HandleMessage(context.Background(), message(-1001, "gem "+bscAddr))

	signals, _ := env.signals.GetByUser(context.Background(), 100, 10)
	if len(signals) != 1 {
		t.Fatalf("signals = %d, want 1", len(signals))
	}
	if signals[0].Outcome != domain.SignalRejected {
		t.Errorf("outcome = %s, want rejected", signals[0].Outcome)
	}
	if signals[0].Rule != "market_cap_min" {
		t.Errorf("rule = %s, want market_cap_min", signals[0].Rule)
	}
	if signals[0].Reason == "" {
		t.Error("rejection must carry a reason")
	}

	if env.api.buyCalls != 0 {
		t.Error("rejected token must not be bought")
	}
	orders, _ := env.orders.GetByUser(context.Background(), 100, 10)
	if len(orders) != 0 {
		t.Errorf("orders = %d, want 0", len(orders))
	}
}

func TestPipeline_LookupFailureIsDistinct(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, 100)
	env.subscribe(t, 100, -1001, domain.FilterAll)

	env.lookup.err = errors.New("not found on dexscreener")

	env.pipeline.HandleMessage(context.Background(), message(-1001, "check "+bscAddr))

	signals, _ := env.signals.GetByUser(context.Background(), 100, 10)
	if len(signals) != 1 {
		t.Fatalf("signals = %d, want 1", len(signals))
	}
	if signals[0].Outcome != domain.SignalLookupFailed {
		t.Errorf("outcome = %s, want lookup_failed", signals[0].Outcome)
	}
	if env.api.fetchCalls != 0 {
		t.Error("failed lookup must not fetch market data")
	}
}

func TestPipeline_FetchFailureIsDistinct(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, 100)
	env.subscribe(t, 100, -1001, domain.FilterAll)

	env.api.fetchErr = errors.New("dbotx API error: rate limited")

	env.pipeline.HandleMessage(context.Background(), message(-1001, "check "+bscAddr))

	signals, _ := env.signals.GetByUser(context.Background(), 100, 10)
	if len(signals) != 1 {
		t.Fatalf("signals = %d, want 1", len(signals))
	}
	if signals[0].Outcome != domain.SignalFetchFailed {
		t.Errorf("outcome = %s, want fetch_failed", signals[0].Outcome)
	}
	if env.api.buyCalls != 0 {
		t.Error("failed fetch must not buy")
	}
}

func TestPipeline_FailedBuyRecordsFailedOrder(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, 100)
	env.subscribe(t, 100, -1001, domain.FilterAll)

	env.api.buyErr = errors.New("insufficient balance")

	env.pipeline.HandleMessage(context.Background(), message(-1001, "ape "+bscAddr))

	orders, _ := env.orders.GetByUser(context.Background(), 100, 10)
	if len(orders) != 1 {
		t.Fatalf("orders = %d, want 1", len(orders))
	}
	if orders[0].Status != domain.OrderFailed || orders[0].Error != "insufficient balance" {
		t.Errorf("order = %+v", orders[0])
	}

	signals, _ := env.signals.GetByUser(context.Background(), 100, 10)
	if len(signals) != 1 || signals[0].Outcome != domain.SignalForwarded {
		t.Fatalf("signals = %+v", signals)
	}
}

func TestPipeline_SenderFilterDropsMessage(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, 100)
	env.subscribe(t, 100, -1001, domain.FilterUsers, 999) // sender 777 not listed

	env.pipeline.HandleMessage(context.Background(), message(-1001, "ape "+bscAddr))

	signals, _ := env.signals.GetByUser(context.Background(), 100, 10)
	if len(signals) != 0 {
		t.Errorf("signals = %d, want 0", len(signals))
	}
	if env.lookup.calls != 0 {
		t.Error("filtered message must not reach the lookup stage")
	}
}

func TestPipeline_DetectionMissIsSilent(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, 100)
	env.subscribe(t, 100, -1001, domain.FilterAll)

	env.pipeline.HandleMessage(context.Background(), message(-1001, "gm frens, big news soon"))

	signals, _ := env.signals.GetByUser(context.Background(), 100, 10)
	if len(signals) != 0 {
		t.Errorf("signals = %d, want 0", len(signals))
	}
}

func TestPipeline_SkipsUserWithoutTradingConfig(t *testing.T) {
	env := newTestEnv(t)
	if err := env.users.Insert(context.Background(), &domain.User{UserID: 100}); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	env.subscribe(t, 100, -1001, domain.FilterAll)

	env.pipeline.HandleMessage(context.Background(), message(-1001, "ape "+bscAddr))

	signals, _ := env.signals.GetByUser(context.Background(), 100, 10)
	if len(signals) != 0 {
		t.Errorf("signals = %d, want 0", len(signals))
	}
	if env.api.buyCalls != 0 {
		t.Error("unconfigured user must not trade")
	}
}

func TestPipeline_FansOutToAllSubscribers(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, 100)
	env.addUser(t, 200)
	env.subscribe(t, 100, -1001, domain.FilterAll)
	env.subscribe(t, 200, -1001, domain.FilterAll)

	env.pipeline.HandleMessage(context.Background(), message(-1001, "ape "+bscAddr))

	for _, userID := range []int64{100, 200} {
		signals, _ := env.signals.GetByUser(context.Background(), userID, 10)
		if len(signals) != 1 {
			t.Errorf("user %d signals = %d, want 1", userID, len(signals))
		}
		orders, _ := env.orders.GetByUser(context.Background(), userID, 10)
		if len(orders) != 1 {
			t.Errorf("user %d orders = %d, want 1", userID, len(orders))
		}
	}
}

type fakeAdminSource struct {
	admins map[int64][]int64
	calls  int
	err    error
}

func (f *fakeAdminSource) ChannelAdmins(_ context.Context, channelID int64) ([]int64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.admins[channelID], nil
}

func TestPipeline_AdminFilterUsesCache(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, 100)
	env.subscribe(t, 100, -1001, domain.FilterAdmins)

	source := &fakeAdminSource{admins: map[int64][]int64{-1001: {777}}}
	env.pipeline.admins = NewAdminCache(source, time.Hour)

	// The message arrives without the admin flag; the cache resolves it.
	env.pipeline.HandleMessage(context.Background(), message(-1001, "ape "+bscAddr))

	signals, _ := env.signals.GetByUser(context.Background(), 100, 10)
	if len(signals) != 1 {
		t.Fatalf("signals = %d, want 1", len(signals))
	}
	if source.calls != 1 {
		t.Errorf("admin source calls = %d, want 1", source.calls)
	}
}

func TestPipeline_AdminFilterRejectsNonAdmin(t *testing.T) {
	env := newTestEnv(t)
	env.addUser(t, 100)
	env.subscribe(t, 100, -1001, domain.FilterAdmins)

	source := &fakeAdminSource{admins: map[int64][]int64{-1001: {999}}}
	env.pipeline.admins = NewAdminCache(source, time.Hour)

	env.pipeline.HandleMessage(context.Background(), message(-1001, "ape "+bscAddr))

	signals, _ := env.signals.GetByUser(context.Background(), 100, 10)
	if len(signals) != 0 {
		t.Errorf("signals = %d, want 0", len(signals))
	}
}

func TestPipeline_RunStopsWhenStreamCloses(t *testing.T) {
	env := newTestEnv(t)

	msgs := make(chan feed.Message)
	close(msgs)

	if err := env.pipeline.Run(context.Background(), msgs); err != nil {
		t.Errorf("Run = %v, want nil on closed stream", err)
	}
}
