package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"chainwatch/internal/domain"
	"chainwatch/internal/storage"
)

// SignalStore implements storage.SignalStore using ClickHouse.
// The signals table is append-only; duplicates are prevented upstream by
// the deterministic signal ID.
type SignalStore struct {
	conn *Conn
}

// NewSignalStore creates a new SignalStore.
func NewSignalStore(conn *Conn) *SignalStore {
	return &SignalStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SignalStore = (*SignalStore)(nil)

// Insert records a signal outcome.
func (s *SignalStore) Insert(ctx context.Context, sig *domain.Signal) error {
	if sig == nil || sig.SignalID == "" {
		return storage.ErrInvalidInput
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO signals (
			signal_id, user_id, channel_id, chain, address, token, outcome, reason, rule, created_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	err = batch.Append(
		sig.SignalID, sig.UserID, sig.ChannelID, string(sig.Chain),
		sig.Address, sig.Token, sig.Outcome, sig.Reason, sig.Rule, sig.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByUser retrieves up to limit signals of a user, newest first.
func (s *SignalStore) GetByUser(ctx context.Context, userID int64, limit int) ([]*domain.Signal, error) {
	query := `
		SELECT signal_id, user_id, channel_id, chain, address, token, outcome, reason, rule, created_at
		FROM signals
		WHERE user_id = ?
		ORDER BY created_at DESC, signal_id DESC
		LIMIT ?
	`

	rows, err := s.conn.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("get signals by user: %w", err)
	}
	defer rows.Close()

	return scanSignals(rows)
}

// GetByChannel retrieves up to limit signals from a channel, newest first.
func (s *SignalStore) GetByChannel(ctx context.Context, channelID int64, limit int) ([]*domain.Signal, error) {
	query := `
		SELECT signal_id, user_id, channel_id, chain, address, token, outcome, reason, rule, created_at
		FROM signals
		WHERE channel_id = ?
		ORDER BY created_at DESC, signal_id DESC
		LIMIT ?
	`

	rows, err := s.conn.Query(ctx, query, channelID, limit)
	if err != nil {
		return nil, fmt.Errorf("get signals by channel: %w", err)
	}
	defer rows.Close()

	return scanSignals(rows)
}

// CountByOutcome aggregates a user's signals per outcome.
func (s *SignalStore) CountByOutcome(ctx context.Context, userID int64) (map[string]int64, error) {
	query := `
		SELECT outcome, toInt64(count()) AS n
		FROM signals
		WHERE user_id = ?
		GROUP BY outcome
	`

	rows, err := s.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("count signals by outcome: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var outcome string
		var n int64
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, fmt.Errorf("scan outcome count: %w", err)
		}
		counts[outcome] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcome counts: %w", err)
	}

	return counts, nil
}

// scanSignals scans multiple rows into a slice of Signal.
func scanSignals(rows driver.Rows) ([]*domain.Signal, error) {
	var signals []*domain.Signal

	for rows.Next() {
		var sig domain.Signal
		var chainStr string

		err := rows.Scan(
			&sig.SignalID,
			&sig.UserID,
			&sig.ChannelID,
			&chainStr,
			&sig.Address,
			&sig.Token,
			&sig.Outcome,
			&sig.Reason,
			&sig.Rule,
			&sig.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan signal row: %w", err)
		}

		sig.Chain = domain.Chain(chainStr)
		signals = append(signals, &sig)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signal rows: %w", err)
	}

	return signals, nil
}
