package memory

import (
	"context"
	"sync"

	"chainwatch/internal/domain"
	"chainwatch/internal/storage"
)

// UserStore is an in-memory implementation of storage.UserStore.
type UserStore struct {
	mu   sync.RWMutex
	data map[int64]*domain.User // keyed by user_id
}

// NewUserStore creates a new in-memory user store.
func NewUserStore() *UserStore {
	return &UserStore{
		data: make(map[int64]*domain.User),
	}
}

// Insert adds a new user. Returns ErrDuplicateKey if user_id exists.
func (s *UserStore) Insert(_ context.Context, u *domain.User) error {
	if u == nil || u.UserID == 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[u.UserID]; exists {
		return storage.ErrDuplicateKey
	}

	s.data[u.UserID] = copyUser(u)
	return nil
}

// GetByID retrieves a user by ID. Returns ErrNotFound if not exists.
func (s *UserStore) GetByID(_ context.Context, userID int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, exists := s.data[userID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	return copyUser(u), nil
}

// UpdateSettings replaces the user's safety settings. Returns ErrNotFound if not exists.
func (s *UserStore) UpdateSettings(_ context.Context, userID int64, settings *domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.data[userID]
	if !exists {
		return storage.ErrNotFound
	}

	u.Settings = settings.Clone()
	return nil
}

// UpdateAPIKey replaces the user's trading API key. Returns ErrNotFound if not exists.
func (s *UserStore) UpdateAPIKey(_ context.Context, userID int64, apiKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.data[userID]
	if !exists {
		return storage.ErrNotFound
	}

	u.APIKey = apiKey
	return nil
}

// UpdateWallet replaces the user's trading wallet and per-order spend.
// Returns ErrNotFound if not exists.
func (s *UserStore) UpdateWallet(_ context.Context, userID int64, walletID string, buyAmount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.data[userID]
	if !exists {
		return storage.ErrNotFound
	}

	u.WalletID = walletID
	u.BuyAmount = buyAmount
	return nil
}

// UpdateLastActive records the user's last activity timestamp (Unix ms).
func (s *UserStore) UpdateLastActive(_ context.Context, userID int64, lastActiveAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, exists := s.data[userID]
	if !exists {
		return storage.ErrNotFound
	}

	u.LastActiveAt = lastActiveAt
	return nil
}

// copyUser copies a user to prevent external mutation.
func copyUser(u *domain.User) *domain.User {
	userCopy := *u
	userCopy.Settings = u.Settings.Clone()
	return &userCopy
}

// Verify interface compliance at compile time.
var _ storage.UserStore = (*UserStore)(nil)
