package memory

import (
	"context"
	"sort"
	"sync"

	"chainwatch/internal/domain"
	"chainwatch/internal/storage"
)

type subKey struct {
	userID    int64
	channelID int64
}

// ChannelStore is an in-memory implementation of storage.ChannelStore.
type ChannelStore struct {
	mu     sync.RWMutex
	data   map[subKey]*domain.ChannelSubscription
	nextID int64
}

// NewChannelStore creates a new in-memory channel store.
func NewChannelStore() *ChannelStore {
	return &ChannelStore{
		data: make(map[subKey]*domain.ChannelSubscription),
	}
}

// Insert adds a subscription and assigns its ID. Returns ErrDuplicateKey
// if the user already subscribes to the channel.
func (s *ChannelStore) Insert(_ context.Context, c *domain.ChannelSubscription) error {
	if c == nil || c.UserID == 0 || c.ChannelID == 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := subKey{c.UserID, c.ChannelID}
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	s.nextID++
	c.ID = s.nextID
	s.data[key] = copySubscription(c)
	return nil
}

// GetByUser retrieves all subscriptions of a user, ordered by created_at ASC.
func (s *ChannelStore) GetByUser(_ context.Context, userID int64) ([]*domain.ChannelSubscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ChannelSubscription
	for _, c := range s.data {
		if c.UserID == userID {
			result = append(result, copySubscription(c))
		}
	}

	sortSubscriptions(result)
	return result, nil
}

// GetActiveByChannel retrieves every active subscription watching the
// given channel, across all users.
func (s *ChannelStore) GetActiveByChannel(_ context.Context, channelID int64) ([]*domain.ChannelSubscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ChannelSubscription
	for _, c := range s.data {
		if c.ChannelID == channelID && c.Active {
			result = append(result, copySubscription(c))
		}
	}

	sortSubscriptions(result)
	return result, nil
}

// GetActiveChannels retrieves the distinct channel IDs with at least one
// active subscription.
func (s *ChannelStore) GetActiveChannels(_ context.Context) ([]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[int64]struct{})
	for _, c := range s.data {
		if c.Active {
			seen[c.ChannelID] = struct{}{}
		}
	}

	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Update replaces the mutable fields of the subscription identified by
// (user_id, channel_id). Returns ErrNotFound if not exists.
func (s *ChannelStore) Update(_ context.Context, c *domain.ChannelSubscription) error {
	if c == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.data[subKey{c.UserID, c.ChannelID}]
	if !exists {
		return storage.ErrNotFound
	}

	existing.Name = c.Name
	existing.Mode = c.Mode
	existing.SenderIDs = append([]int64(nil), c.SenderIDs...)
	existing.Active = c.Active
	return nil
}

// Delete removes the subscription. Returns ErrNotFound if not exists.
func (s *ChannelStore) Delete(_ context.Context, userID, channelID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := subKey{userID, channelID}
	if _, exists := s.data[key]; !exists {
		return storage.ErrNotFound
	}

	delete(s.data, key)
	return nil
}

// copySubscription copies a subscription to prevent external mutation.
func copySubscription(c *domain.ChannelSubscription) *domain.ChannelSubscription {
	subCopy := *c
	subCopy.SenderIDs = append([]int64(nil), c.SenderIDs...)
	return &subCopy
}

// sortSubscriptions orders by created_at ASC with ID as tiebreaker.
func sortSubscriptions(subs []*domain.ChannelSubscription) {
	sort.Slice(subs, func(i, j int) bool {
		if subs[i].CreatedAt != subs[j].CreatedAt {
			return subs[i].CreatedAt < subs[j].CreatedAt
		}
		return subs[i].ID < subs[j].ID
	})
}

// Verify interface compliance at compile time.
var _ storage.ChannelStore = (*ChannelStore)(nil)
