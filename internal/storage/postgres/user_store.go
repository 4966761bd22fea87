package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"chainwatch/internal/domain"
	"chainwatch/internal/storage"
)

// UserStore implements storage.UserStore using PostgreSQL.
// Settings are stored as a JSONB column.
type UserStore struct {
	pool *Pool
}

// NewUserStore creates a new UserStore.
func NewUserStore(pool *Pool) *UserStore {
	return &UserStore{pool: pool}
}

// Compile-time interface check.
var _ storage.UserStore = (*UserStore)(nil)

// Insert adds a new user. Returns ErrDuplicateKey if user_id exists.
func (s *UserStore) Insert(ctx context.Context, u *domain.User) error {
	settingsJSON, err := marshalSettings(u.Settings)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO users (
			user_id, username, api_key, wallet_id, buy_amount, settings, created_at, last_active_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err = s.pool.Exec(ctx, query,
		u.UserID,
		u.Username,
		u.APIKey,
		u.WalletID,
		u.BuyAmount,
		settingsJSON,
		u.CreatedAt,
		u.LastActiveAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID. Returns ErrNotFound if not exists.
func (s *UserStore) GetByID(ctx context.Context, userID int64) (*domain.User, error) {
	query := `
		SELECT user_id, username, api_key, wallet_id, buy_amount, settings, created_at, last_active_at
		FROM users
		WHERE user_id = $1
	`

	row := s.pool.QueryRow(ctx, query, userID)
	u, err := scanUser(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return u, nil
}

// UpdateSettings replaces the user's safety settings. Returns ErrNotFound if not exists.
func (s *UserStore) UpdateSettings(ctx context.Context, userID int64, settings *domain.Settings) error {
	settingsJSON, err := marshalSettings(settings)
	if err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET settings = $2 WHERE user_id = $1`,
		userID, settingsJSON,
	)
	if err != nil {
		return fmt.Errorf("update user settings: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// UpdateAPIKey replaces the user's trading API key. Returns ErrNotFound if not exists.
func (s *UserStore) UpdateAPIKey(ctx context.Context, userID int64, apiKey string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET api_key = $2 WHERE user_id = $1`,
		userID, apiKey,
	)
	if err != nil {
		return fmt.Errorf("update user api key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// UpdateWallet replaces the user's trading wallet and per-order spend.
// Returns ErrNotFound if not exists.
func (s *UserStore) UpdateWallet(ctx context.Context, userID int64, walletID string, buyAmount float64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET wallet_id = $2, buy_amount = $3 WHERE user_id = $1`,
		userID, walletID, buyAmount,
	)
	if err != nil {
		return fmt.Errorf("update user wallet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// UpdateLastActive records the user's last activity timestamp (Unix ms).
func (s *UserStore) UpdateLastActive(ctx context.Context, userID int64, lastActiveAt int64) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET last_active_at = $2 WHERE user_id = $1`,
		userID, lastActiveAt,
	)
	if err != nil {
		return fmt.Errorf("update user last active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// marshalSettings encodes settings for the JSONB column. A nil settings
// pointer is stored as an empty object.
func marshalSettings(settings *domain.Settings) ([]byte, error) {
	if settings == nil {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("marshal settings: %w", err)
	}
	return data, nil
}

// scanUser scans a single row into a User.
func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var settingsJSON []byte

	err := row.Scan(
		&u.UserID,
		&u.Username,
		&u.APIKey,
		&u.WalletID,
		&u.BuyAmount,
		&settingsJSON,
		&u.CreatedAt,
		&u.LastActiveAt,
	)
	if err != nil {
		return nil, err
	}

	if len(settingsJSON) > 0 && string(settingsJSON) != "{}" {
		var settings domain.Settings
		if err := json.Unmarshal(settingsJSON, &settings); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
		u.Settings = &settings
	}
	return &u, nil
}
