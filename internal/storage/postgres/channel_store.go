package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"chainwatch/internal/domain"
	"chainwatch/internal/storage"
)

// ChannelStore implements storage.ChannelStore using PostgreSQL.
type ChannelStore struct {
	pool *Pool
}

// NewChannelStore creates a new ChannelStore.
func NewChannelStore(pool *Pool) *ChannelStore {
	return &ChannelStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ChannelStore = (*ChannelStore)(nil)

// Insert adds a subscription and assigns its ID. Returns ErrDuplicateKey
// if the user already subscribes to the channel.
func (s *ChannelStore) Insert(ctx context.Context, c *domain.ChannelSubscription) error {
	query := `
		INSERT INTO channel_subscriptions (
			user_id, channel_id, name, mode, sender_ids, active, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	err := s.pool.QueryRow(ctx, query,
		c.UserID,
		c.ChannelID,
		c.Name,
		string(c.Mode),
		c.SenderIDs,
		c.Active,
		c.CreatedAt,
	).Scan(&c.ID)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert subscription: %w", err)
	}
	return nil
}

// GetByUser retrieves all subscriptions of a user, ordered by created_at ASC.
func (s *ChannelStore) GetByUser(ctx context.Context, userID int64) ([]*domain.ChannelSubscription, error) {
	query := `
		SELECT id, user_id, channel_id, name, mode, sender_ids, active, created_at
		FROM channel_subscriptions
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get subscriptions by user: %w", err)
	}
	defer rows.Close()

	return scanSubscriptions(rows)
}

// GetActiveByChannel retrieves every active subscription watching the
// given channel, across all users.
func (s *ChannelStore) GetActiveByChannel(ctx context.Context, channelID int64) ([]*domain.ChannelSubscription, error) {
	query := `
		SELECT id, user_id, channel_id, name, mode, sender_ids, active, created_at
		FROM channel_subscriptions
		WHERE channel_id = $1 AND active
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, channelID)
	if err != nil {
		return nil, fmt.Errorf("get subscriptions by channel: %w", err)
	}
	defer rows.Close()

	return scanSubscriptions(rows)
}

// GetActiveChannels retrieves the distinct channel IDs with at least one
// active subscription.
func (s *ChannelStore) GetActiveChannels(ctx context.Context) ([]int64, error) {
	query := `
		SELECT DISTINCT channel_id
		FROM channel_subscriptions
		WHERE active
		ORDER BY channel_id
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get active channels: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan channel id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate channel ids: %w", err)
	}
	return ids, nil
}

// Update replaces the mutable fields of the subscription identified by
// (user_id, channel_id). Returns ErrNotFound if not exists.
func (s *ChannelStore) Update(ctx context.Context, c *domain.ChannelSubscription) error {
	query := `
		UPDATE channel_subscriptions
		SET name = $3, mode = $4, sender_ids = $5, active = $6
		WHERE user_id = $1 AND channel_id = $2
	`

	tag, err := s.pool.Exec(ctx, query,
		c.UserID,
		c.ChannelID,
		c.Name,
		string(c.Mode),
		c.SenderIDs,
		c.Active,
	)
	if err != nil {
		return fmt.Errorf("update subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Delete removes the subscription. Returns ErrNotFound if not exists.
func (s *ChannelStore) Delete(ctx context.Context, userID, channelID int64) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM channel_subscriptions WHERE user_id = $1 AND channel_id = $2`,
		userID, channelID,
	)
	if err != nil {
		return fmt.Errorf("delete subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// scanSubscriptions scans multiple rows into a slice of ChannelSubscription.
func scanSubscriptions(rows pgx.Rows) ([]*domain.ChannelSubscription, error) {
	var subs []*domain.ChannelSubscription

	for rows.Next() {
		var c domain.ChannelSubscription
		var modeStr string

		err := rows.Scan(
			&c.ID,
			&c.UserID,
			&c.ChannelID,
			&c.Name,
			&modeStr,
			&c.SenderIDs,
			&c.Active,
			&c.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan subscription row: %w", err)
		}

		c.Mode = domain.FilterMode(modeStr)
		subs = append(subs, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscription rows: %w", err)
	}

	return subs, nil
}
