package clickhouse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chainwatch/internal/domain"
	"chainwatch/internal/storage"
)

func testSignal(id string, userID, channelID, createdAt int64, outcome string) *domain.Signal {
	return &domain.Signal{
		SignalID:  id,
		UserID:    userID,
		ChannelID: channelID,
		Chain:     domain.ChainSolana,
		Address:   "So11111111111111111111111111111111111111112",
		Token:     "So11111111111111111111111111111111111111112",
		Outcome:   outcome,
		CreatedAt: createdAt,
	}
}

func TestSignalStore_InsertAndGetByUser(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSignalStore(conn)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testSignal("sig-1", 100, -1001, 1000, domain.SignalForwarded)))
	require.NoError(t, store.Insert(ctx, testSignal("sig-2", 100, -1001, 2000, domain.SignalRejected)))
	require.NoError(t, store.Insert(ctx, testSignal("sig-3", 200, -1002, 1500, domain.SignalForwarded)))

	signals, err := store.GetByUser(ctx, 100, 10)
	require.NoError(t, err)
	require.Len(t, signals, 2)

	// Newest first
	assert.Equal(t, "sig-2", signals[0].SignalID)
	assert.Equal(t, "sig-1", signals[1].SignalID)
	assert.Equal(t, domain.ChainSolana, signals[0].Chain)
	assert.Equal(t, domain.SignalRejected, signals[0].Outcome)
}

func TestSignalStore_GetByUserLimit(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSignalStore(conn)
	ctx := context.Background()

	for i := int64(0); i < 5; i++ {
		require.NoError(t, store.Insert(ctx,
			testSignal(string(rune('a'+i)), 100, -1001, 1000+i, domain.SignalForwarded)))
	}

	signals, err := store.GetByUser(ctx, 100, 3)
	require.NoError(t, err)
	assert.Len(t, signals, 3)
}

func TestSignalStore_GetByChannel(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSignalStore(conn)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testSignal("sig-1", 100, -1001, 1000, domain.SignalForwarded)))
	require.NoError(t, store.Insert(ctx, testSignal("sig-2", 200, -1001, 2000, domain.SignalLookupFailed)))
	require.NoError(t, store.Insert(ctx, testSignal("sig-3", 100, -1002, 1500, domain.SignalForwarded)))

	signals, err := store.GetByChannel(ctx, -1001, 10)
	require.NoError(t, err)
	require.Len(t, signals, 2)
	assert.Equal(t, "sig-2", signals[0].SignalID)
}

func TestSignalStore_CountByOutcome(t *testing.T) {
	conn, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewSignalStore(conn)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testSignal("sig-1", 100, -1001, 1000, domain.SignalForwarded)))
	require.NoError(t, store.Insert(ctx, testSignal("sig-2", 100, -1001, 2000, domain.SignalForwarded)))
	require.NoError(t, store.Insert(ctx, testSignal("sig-3", 100, -1001, 3000, domain.SignalRejected)))
	require.NoError(t, store.Insert(ctx, testSignal("sig-4", 200, -1001, 4000, domain.SignalFetchFailed)))

	counts, err := store.CountByOutcome(ctx, 100)
	require.NoError(t, err)

	assert.Equal(t, int64(2), counts[domain.SignalForwarded])
	assert.Equal(t, int64(1), counts[domain.SignalRejected])
	assert.NotContains(t, counts, domain.SignalFetchFailed)
}

func TestSignalStore_InsertInvalidInput(t *testing.T) {
	store := NewSignalStore(nil)

	err := store.Insert(context.Background(), nil)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	err = store.Insert(context.Background(), &domain.Signal{})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
