package monitor

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAdminCache_CachesWithinTTL(t *testing.T) {
	source := &fakeAdminSource{admins: map[int64][]int64{-1001: {777, 888}}}
	cache := NewAdminCache(source, time.Hour)

	now := time.UnixMilli(1700000000000)
	cache.now = func() time.Time { return now }

	ok, err := cache.IsAdmin(context.Background(), -1001, 777)
	if err != nil || !ok {
		t.Fatalf("IsAdmin = (%t, %v), want (true, nil)", ok, err)
	}

	// 59 minutes later the cached set is still used
	now = now.Add(59 * time.Minute)
	ok, err = cache.IsAdmin(context.Background(), -1001, 888)
	if err != nil || !ok {
		t.Fatalf("IsAdmin = (%t, %v), want (true, nil)", ok, err)
	}
	if source.calls != 1 {
		t.Errorf("source calls = %d, want 1", source.calls)
	}

	ok, _ = cache.IsAdmin(context.Background(), -1001, 999)
	if ok {
		t.Error("999 is not an admin")
	}
}

func TestAdminCache_RefetchesAfterTTL(t *testing.T) {
	source := &fakeAdminSource{admins: map[int64][]int64{-1001: {777}}}
	cache := NewAdminCache(source, time.Hour)

	now := time.UnixMilli(1700000000000)
	cache.now = func() time.Time { return now }

	if _, err := cache.IsAdmin(context.Background(), -1001, 777); err != nil {
		t.Fatalf("IsAdmin: %v", err)
	}

	// Admin set changes upstream; the cache notices after expiry
	source.admins[-1001] = []int64{888}
	now = now.Add(61 * time.Minute)

	ok, err := cache.IsAdmin(context.Background(), -1001, 777)
	if err != nil {
		t.Fatalf("IsAdmin: %v", err)
	}
	if ok {
		t.Error("demoted admin should not match after refetch")
	}
	if source.calls != 2 {
		t.Errorf("source calls = %d, want 2", source.calls)
	}
}

func TestAdminCache_PropagatesSourceError(t *testing.T) {
	source := &fakeAdminSource{err: errors.New("gateway unavailable")}
	cache := NewAdminCache(source, time.Hour)

	if _, err := cache.IsAdmin(context.Background(), -1001, 777); err == nil {
		t.Error("expected source error")
	}
}

func TestAdminCache_InvalidateForcesRefetch(t *testing.T) {
	source := &fakeAdminSource{admins: map[int64][]int64{-1001: {777}}}
	cache := NewAdminCache(source, time.Hour)

	if _, err := cache.IsAdmin(context.Background(), -1001, 777); err != nil {
		t.Fatalf("IsAdmin: %v", err)
	}
	cache.Invalidate(-1001)
	if _, err := cache.IsAdmin(context.Background(), -1001, 777); err != nil {
		t.Fatalf("IsAdmin: %v", err)
	}
	if source.calls != 2 {
		t.Errorf("source calls = %d, want 2", source.calls)
	}
}
