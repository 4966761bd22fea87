package memory

import (
	"context"
	"sort"
	"sync"

	"chainwatch/internal/domain"
	"chainwatch/internal/storage"
)

// SignalStore is an in-memory implementation of storage.SignalStore.
// Append-only, mirroring the ClickHouse backend.
type SignalStore struct {
	mu   sync.RWMutex
	data []*domain.Signal
}

// NewSignalStore creates a new in-memory signal store.
func NewSignalStore() *SignalStore {
	return &SignalStore{}
}

// Insert records a signal outcome.
func (s *SignalStore) Insert(_ context.Context, sig *domain.Signal) error {
	if sig == nil || sig.SignalID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sigCopy := *sig
	s.data = append(s.data, &sigCopy)
	return nil
}

// GetByUser retrieves up to limit signals of a user, newest first.
func (s *SignalStore) GetByUser(_ context.Context, userID int64, limit int) ([]*domain.Signal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Signal
	for _, sig := range s.data {
		if sig.UserID == userID {
			sigCopy := *sig
			result = append(result, &sigCopy)
		}
	}

	sortSignals(result)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// GetByChannel retrieves up to limit signals from a channel, newest first.
func (s *SignalStore) GetByChannel(_ context.Context, channelID int64, limit int) ([]*domain.Signal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Signal
	for _, sig := range s.data {
		if sig.ChannelID == channelID {
			sigCopy := *sig
			result = append(result, &sigCopy)
		}
	}

	sortSignals(result)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// CountByOutcome aggregates a user's signals per outcome.
func (s *SignalStore) CountByOutcome(_ context.Context, userID int64) (map[string]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int64)
	for _, sig := range s.data {
		if sig.UserID == userID {
			counts[sig.Outcome]++
		}
	}
	return counts, nil
}

// sortSignals orders by created_at DESC with signal ID as tiebreaker.
func sortSignals(signals []*domain.Signal) {
	sort.Slice(signals, func(i, j int) bool {
		if signals[i].CreatedAt != signals[j].CreatedAt {
			return signals[i].CreatedAt > signals[j].CreatedAt
		}
		return signals[i].SignalID > signals[j].SignalID
	})
}

// Verify interface compliance at compile time.
var _ storage.SignalStore = (*SignalStore)(nil)
