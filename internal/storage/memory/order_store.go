package memory

import (
	"context"
	"sort"
	"sync"

	"chainwatch/internal/domain"
	"chainwatch/internal/storage"
)

// OrderStore is an in-memory implementation of storage.OrderStore.
type OrderStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TradeOrder // keyed by order_id
}

// NewOrderStore creates a new in-memory order store.
func NewOrderStore() *OrderStore {
	return &OrderStore{
		data: make(map[string]*domain.TradeOrder),
	}
}

// Insert adds a new order. Returns ErrDuplicateKey if order_id exists.
func (s *OrderStore) Insert(_ context.Context, o *domain.TradeOrder) error {
	if o == nil || o.OrderID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[o.OrderID]; exists {
		return storage.ErrDuplicateKey
	}

	orderCopy := *o
	s.data[o.OrderID] = &orderCopy
	return nil
}

// GetByID retrieves an order by its ID. Returns ErrNotFound if not exists.
func (s *OrderStore) GetByID(_ context.Context, orderID string) (*domain.TradeOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, exists := s.data[orderID]
	if !exists {
		return nil, storage.ErrNotFound
	}

	orderCopy := *o
	return &orderCopy, nil
}

// GetByUser retrieves up to limit orders of a user, newest first.
func (s *OrderStore) GetByUser(_ context.Context, userID int64, limit int) ([]*domain.TradeOrder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.TradeOrder
	for _, o := range s.data {
		if o.UserID == userID {
			orderCopy := *o
			result = append(result, &orderCopy)
		}
	}

	// Sort by created_at DESC
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt != result[j].CreatedAt {
			return result[i].CreatedAt > result[j].CreatedAt
		}
		return result[i].OrderID > result[j].OrderID
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// UpdateStatus transitions an order and records the failure detail.
// Returns ErrNotFound if not exists.
func (s *OrderStore) UpdateStatus(_ context.Context, orderID, status, errMsg string, updatedAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, exists := s.data[orderID]
	if !exists {
		return storage.ErrNotFound
	}

	o.Status = status
	o.Error = errMsg
	o.UpdatedAt = updatedAt
	return nil
}

// Verify interface compliance at compile time.
var _ storage.OrderStore = (*OrderStore)(nil)
