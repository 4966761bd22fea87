package monitor

import (
	"context"
	"sync"
	"time"
)

// DefaultAdminTTL is how long a fetched admin set stays fresh.
const DefaultAdminTTL = time.Hour

// AdminSource fetches the admin user IDs of a channel. The gateway
// exposes this; results change rarely, hence the cache.
type AdminSource interface {
	ChannelAdmins(ctx context.Context, channelID int64) ([]int64, error)
}

// AdminCache memoizes per-channel admin sets with a TTL. Used when a
// subscription filters on admins and the inbound message does not carry
// the admin flag.
type AdminCache struct {
	source AdminSource
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	entries map[int64]adminEntry
}

type adminEntry struct {
	ids       map[int64]struct{}
	fetchedAt time.Time
}

// NewAdminCache creates an admin cache over the source. A zero ttl uses
// DefaultAdminTTL.
func NewAdminCache(source AdminSource, ttl time.Duration) *AdminCache {
	if ttl <= 0 {
		ttl = DefaultAdminTTL
	}
	return &AdminCache{
		source:  source,
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[int64]adminEntry),
	}
}

// IsAdmin reports whether senderID administers the channel, fetching the
// admin set when the cached one is missing or stale.
func (c *AdminCache) IsAdmin(ctx context.Context, channelID, senderID int64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[channelID]
	if !ok || c.now().Sub(entry.fetchedAt) >= c.ttl {
		ids, err := c.source.ChannelAdmins(ctx, channelID)
		if err != nil {
			return false, err
		}

		set := make(map[int64]struct{}, len(ids))
		for _, id := range ids {
			set[id] = struct{}{}
		}
		entry = adminEntry{ids: set, fetchedAt: c.now()}
		c.entries[channelID] = entry
	}

	_, isAdmin := entry.ids[senderID]
	return isAdmin, nil
}

// Invalidate drops the cached admin set for a channel.
func (c *AdminCache) Invalidate(channelID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, channelID)
}
