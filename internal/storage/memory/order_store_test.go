package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"chainwatch/internal/domain"
	"chainwatch/internal/storage"
)

func order(orderID string, userID, createdAt int64) *domain.TradeOrder {
	return &domain.TradeOrder{
		OrderID:   orderID,
		UserID:    userID,
		Chain:     domain.ChainSolana,
		Token:     "So11111111111111111111111111111111111111112",
		ChannelID: -1001,
		Status:    domain.OrderPending,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestOrderStore_InsertAndGet(t *testing.T) {
	store := NewOrderStore()
	ctx := context.Background()

	if err := store.Insert(ctx, order("order-1", 100, 1000)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetByID(ctx, "order-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.UserID != 100 || got.Status != domain.OrderPending {
		t.Errorf("order mismatch: %+v", got)
	}
}

func TestOrderStore_DuplicateKey(t *testing.T) {
	store := NewOrderStore()
	ctx := context.Background()

	store.Insert(ctx, order("order-1", 100, 1000))
	if err := store.Insert(ctx, order("order-1", 100, 1000)); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("err = %v, want ErrDuplicateKey", err)
	}
}

func TestOrderStore_GetByUserNewestFirst(t *testing.T) {
	store := NewOrderStore()
	ctx := context.Background()

	for i := int64(0); i < 5; i++ {
		store.Insert(ctx, order(fmt.Sprintf("order-%d", i), 100, 1000+i))
	}
	store.Insert(ctx, order("other", 200, 9999))

	orders, err := store.GetByUser(ctx, 100, 3)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(orders) != 3 {
		t.Fatalf("len = %d, want 3", len(orders))
	}
	if orders[0].OrderID != "order-4" || orders[2].OrderID != "order-2" {
		t.Errorf("order wrong: %s .. %s", orders[0].OrderID, orders[2].OrderID)
	}
}

func TestOrderStore_UpdateStatus(t *testing.T) {
	store := NewOrderStore()
	ctx := context.Background()

	store.Insert(ctx, order("order-1", 100, 1000))
	if err := store.UpdateStatus(ctx, "order-1", domain.OrderFailed, "insufficient balance", 2000); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	got, _ := store.GetByID(ctx, "order-1")
	if got.Status != domain.OrderFailed || got.Error != "insufficient balance" || got.UpdatedAt != 2000 {
		t.Errorf("update not applied: %+v", got)
	}

	if err := store.UpdateStatus(ctx, "missing", domain.OrderCompleted, "", 0); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestOrderStore_ConcurrentInserts(t *testing.T) {
	store := NewOrderStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			_ = store.Insert(ctx, order(fmt.Sprintf("order-%d", id), 100, int64(id)))
		}(i)
	}
	wg.Wait()

	orders, err := store.GetByUser(ctx, 100, 0)
	if err != nil {
		t.Fatalf("GetByUser failed: %v", err)
	}
	if len(orders) != 100 {
		t.Errorf("len = %d, want 100", len(orders))
	}
}
