// Package monitor runs the signal pipeline: inbound channel messages are
// filtered per subscription, scanned for contract addresses, verified
// against the pair lookup, safety-validated, and forwarded as buy orders.
// Every detection is recorded in the signal history with its outcome.
package monitor

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"chainwatch/internal/detect"
	"chainwatch/internal/domain"
	"chainwatch/internal/feed"
	"chainwatch/internal/idhash"
	"chainwatch/internal/observability"
	"chainwatch/internal/safety"
	"chainwatch/internal/settings"
	"chainwatch/internal/storage"
)

// PairLookup verifies that a detected address trades somewhere and
// resolves it to the canonical token address.
type PairLookup interface {
	Lookup(ctx context.Context, chain domain.Chain, address string) (string, error)
}

// TradeAPI is the per-user slice of the trading API used by the pipeline.
type TradeAPI interface {
	GetPairInfo(ctx context.Context, chain domain.Chain, pair string) (*domain.MarketSnapshot, error)
	FastBuy(ctx context.Context, chain domain.Chain, pair, walletID string, amount float64) (string, error)
}

// TradeAPIFactory binds a user's API key to a TradeAPI.
type TradeAPIFactory func(apiKey string) TradeAPI

// Options for creating a Pipeline.
type Options struct {
	// Required stores
	Users    storage.UserStore
	Channels storage.ChannelStore
	Orders   storage.OrderStore
	Signals  storage.SignalStore

	// Required collaborators
	Lookup PairLookup
	Trade  TradeAPIFactory

	// Optional admin resolution for admins-only subscriptions whose
	// messages arrive without the admin flag.
	Admins *AdminCache

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Pipeline coordinates the per-message flow:
// filter → detect → lookup → fetch → validate → forward.
type Pipeline struct {
	users    storage.UserStore
	channels storage.ChannelStore
	orders   storage.OrderStore
	signals  storage.SignalStore

	lookup PairLookup
	trade  TradeAPIFactory
	admins *AdminCache

	detector  *detect.Detector
	validator *safety.Validator

	now    func() time.Time
	logger *log.Logger
}

// New creates a Pipeline.
func New(opts Options) *Pipeline {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		users:     opts.Users,
		channels:  opts.Channels,
		orders:    opts.Orders,
		signals:   opts.Signals,
		lookup:    opts.Lookup,
		trade:     opts.Trade,
		admins:    opts.Admins,
		detector:  detect.NewDetector(),
		validator: safety.NewValidator(),
		now:       now,
		logger:    log.New(os.Stdout, "[monitor] ", log.LstdFlags),
	}
}

// Run consumes messages until the stream closes or the context is
// canceled.
func (p *Pipeline) Run(ctx context.Context, msgs <-chan feed.Message) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			p.HandleMessage(ctx, msg)
		}
	}
}

// HandleMessage processes one inbound channel message.
func (p *Pipeline) HandleMessage(ctx context.Context, msg feed.Message) {
	observability.RecordMessageReceived()

	subs, err := p.channels.GetActiveByChannel(ctx, msg.ChannelID)
	if err != nil {
		p.logger.Printf("load subscriptions for channel %d: %v", msg.ChannelID, err)
		return
	}
	if len(subs) == 0 {
		return
	}

	var matched []*domain.ChannelSubscription
	for _, sub := range subs {
		if p.subscriptionMatches(ctx, sub, msg) {
			matched = append(matched, sub)
		}
	}
	if len(matched) == 0 {
		observability.RecordMessageFiltered()
		return
	}

	observability.RecordMessageProcessed()

	detection, ok := p.detector.Detect(msg.Text)
	if !ok {
		// Detection misses are silent
		return
	}
	observability.RecordDetection(string(detection.Chain))

	for _, sub := range matched {
		p.processSignal(ctx, sub, detection, msg)
	}
}

// subscriptionMatches applies the subscription's filter mode, resolving
// admin status through the cache when the message lacks the flag.
func (p *Pipeline) subscriptionMatches(ctx context.Context, sub *domain.ChannelSubscription, msg feed.Message) bool {
	if sub.Mode == domain.FilterAdmins && !msg.SenderIsAdmin {
		if p.admins == nil {
			return false
		}
		isAdmin, err := p.admins.IsAdmin(ctx, msg.ChannelID, msg.SenderID)
		if err != nil {
			p.logger.Printf("admin lookup for channel %d: %v", msg.ChannelID, err)
			return false
		}
		return isAdmin
	}
	return sub.Matches(msg.SenderID, msg.SenderIsAdmin)
}

// processSignal runs one detection through lookup, validation, and
// forwarding for a single subscriber, recording the outcome.
func (p *Pipeline) processSignal(ctx context.Context, sub *domain.ChannelSubscription, det domain.Detection, msg feed.Message) {
	user, err := p.users.GetByID(ctx, sub.UserID)
	if err != nil {
		p.logger.Printf("load user %d: %v", sub.UserID, err)
		return
	}
	if !user.CanTrade() {
		p.logger.Printf("user %d has no trading config, skipping signal", user.UserID)
		return
	}

	userSettings := user.Settings
	if userSettings == nil {
		userSettings = settings.Default()
	}

	nowMs := p.now().UnixMilli()
	sig := &domain.Signal{
		SignalID:  idhash.ComputeSignalID(user.UserID, sub.ChannelID, det.Chain, det.Address, nowMs),
		UserID:    user.UserID,
		ChannelID: sub.ChannelID,
		Chain:     det.Chain,
		Address:   det.Address,
		CreatedAt: nowMs,
	}

	// Lookup: does the address trade anywhere, and what is the
	// canonical token address?
	start := time.Now()
	token, err := p.lookup.Lookup(ctx, det.Chain, det.Address)
	observability.RecordStageLatency("lookup", time.Since(start).Seconds())
	if err != nil {
		observability.RecordLookupFailure()
		sig.Outcome = domain.SignalLookupFailed
		sig.Reason = err.Error()
		p.recordSignal(ctx, sig)
		return
	}
	sig.Token = token

	api := p.trade(user.APIKey)

	// Fetch the market snapshot.
	start = time.Now()
	snap, err := api.GetPairInfo(ctx, det.Chain, token)
	observability.RecordStageLatency("fetch", time.Since(start).Seconds())
	if err != nil {
		observability.RecordFetchFailure()
		sig.Outcome = domain.SignalFetchFailed
		sig.Reason = err.Error()
		p.recordSignal(ctx, sig)
		return
	}

	// Safety validation.
	result := p.validator.Validate(snap, det.Chain, userSettings)
	if !result.IsSafe {
		observability.RecordSafetyRejection(result.Rule)
		sig.Outcome = domain.SignalRejected
		sig.Reason = result.RejectionReason
		sig.Rule = result.Rule
		p.recordSignal(ctx, sig)
		return
	}

	// Forward the buy order.
	order := &domain.TradeOrder{
		OrderID:   idhash.ComputeOrderID(user.UserID, det.Chain, token, nowMs),
		UserID:    user.UserID,
		Chain:     det.Chain,
		Token:     token,
		ChannelID: sub.ChannelID,
		Status:    domain.OrderPending,
		CreatedAt: nowMs,
		UpdatedAt: nowMs,
	}

	start = time.Now()
	apiOrderID, err := api.FastBuy(ctx, det.Chain, token, user.WalletID, user.BuyAmount)
	observability.RecordStageLatency("forward", time.Since(start).Seconds())
	if err != nil {
		observability.RecordOrderFailure()
		order.Status = domain.OrderFailed
		order.Error = err.Error()
		sig.Reason = err.Error()
		p.logger.Printf("forward order for user %d failed: %v", user.UserID, err)
	} else {
		observability.RecordOrderForwarded(string(det.Chain))
		order.Status = domain.OrderCompleted
		p.logger.Printf("forwarded %s buy for user %d (api order %s)", det.Chain, user.UserID, apiOrderID)
	}

	if err := p.orders.Insert(ctx, order); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		p.logger.Printf("insert order %s: %v", order.OrderID, err)
	}

	sig.Outcome = domain.SignalForwarded
	p.recordSignal(ctx, sig)
}

// recordSignal appends to the signal history; failures are logged, never
// propagated into the message loop.
func (p *Pipeline) recordSignal(ctx context.Context, sig *domain.Signal) {
	if err := p.signals.Insert(ctx, sig); err != nil {
		p.logger.Printf("insert signal %s: %v", sig.SignalID, err)
		return
	}
	observability.RecordSignalTimestamp(sig.CreatedAt)
}
