package storage

import (
	"context"

	"chainwatch/internal/domain"
)

// UserStore provides access to users storage.
type UserStore interface {
	// Insert adds a new user. Returns ErrDuplicateKey if user_id exists.
	Insert(ctx context.Context, u *domain.User) error

	// GetByID retrieves a user by ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, userID int64) (*domain.User, error)

	// UpdateSettings replaces the user's safety settings. Returns ErrNotFound if not exists.
	UpdateSettings(ctx context.Context, userID int64, settings *domain.Settings) error

	// UpdateAPIKey replaces the user's trading API key. Returns ErrNotFound if not exists.
	UpdateAPIKey(ctx context.Context, userID int64, apiKey string) error

	// UpdateWallet replaces the user's trading wallet and per-order spend.
	// Returns ErrNotFound if not exists.
	UpdateWallet(ctx context.Context, userID int64, walletID string, buyAmount float64) error

	// UpdateLastActive records the user's last activity timestamp (Unix ms).
	UpdateLastActive(ctx context.Context, userID int64, lastActiveAt int64) error
}

// ChannelStore provides access to channel_subscriptions storage.
type ChannelStore interface {
	// Insert adds a subscription and assigns its ID. Returns ErrDuplicateKey
	// if the user already subscribes to the channel.
	Insert(ctx context.Context, c *domain.ChannelSubscription) error

	// GetByUser retrieves all subscriptions of a user, ordered by created_at ASC.
	GetByUser(ctx context.Context, userID int64) ([]*domain.ChannelSubscription, error)

	// GetActiveByChannel retrieves every active subscription watching the
	// given channel, across all users.
	GetActiveByChannel(ctx context.Context, channelID int64) ([]*domain.ChannelSubscription, error)

	// GetActiveChannels retrieves the distinct channel IDs with at least
	// one active subscription; the set the feed must be subscribed to.
	GetActiveChannels(ctx context.Context) ([]int64, error)

	// Update replaces the mutable fields (name, mode, sender list, active)
	// of the subscription identified by (user_id, channel_id).
	// Returns ErrNotFound if not exists.
	Update(ctx context.Context, c *domain.ChannelSubscription) error

	// Delete removes the subscription. Returns ErrNotFound if not exists.
	Delete(ctx context.Context, userID, channelID int64) error
}

// OrderStore provides access to trade_orders storage.
type OrderStore interface {
	// Insert adds a new order. Returns ErrDuplicateKey if order_id exists.
	Insert(ctx context.Context, o *domain.TradeOrder) error

	// GetByID retrieves an order by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, orderID string) (*domain.TradeOrder, error)

	// GetByUser retrieves up to limit orders of a user, newest first.
	GetByUser(ctx context.Context, userID int64, limit int) ([]*domain.TradeOrder, error)

	// UpdateStatus transitions an order and records the failure detail.
	// Returns ErrNotFound if not exists.
	UpdateStatus(ctx context.Context, orderID, status, errMsg string, updatedAt int64) error
}

// SignalStore provides access to the append-only signals history.
type SignalStore interface {
	// Insert records a signal outcome.
	Insert(ctx context.Context, sig *domain.Signal) error

	// GetByUser retrieves up to limit signals of a user, newest first.
	GetByUser(ctx context.Context, userID int64, limit int) ([]*domain.Signal, error)

	// GetByChannel retrieves up to limit signals from a channel, newest first.
	GetByChannel(ctx context.Context, channelID int64, limit int) ([]*domain.Signal, error)

	// CountByOutcome aggregates a user's signals per outcome.
	CountByOutcome(ctx context.Context, userID int64) (map[string]int64, error)
}
