package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pickledire/feign-server-go/internal/config"
	"github.com/pickledire/feign-server-go/internal/game/watchers"
)

func sampleRecord(ended time.Time, winner int) MatchRecord {
	return MatchRecord{
		ID:            uuid.NewString(),
		SessionID:     uuid.NewString(),
		Player1:       "Alice",
		Player2:       "Bob",
		Winner:        winner,
		Turns:         12,
		FinalChecksum: "abc123",
		Stats: watchers.MatchStats{
			Player1:    watchers.PlayerStats{CardsPlayed: 7, DamageDealt: 20},
			Player2:    watchers.PlayerStats{CardsPlayed: 5, DamageTaken: 20},
			LargestHit: 6,
		},
		StartedAt: ended.Add(-10 * time.Minute),
		EndedAt:   ended,
	}
}

func openTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "matches.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLiteSaveAndList(t *testing.T) {
	ctx := context.Background()
	store := openTestSQLite(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	older := sampleRecord(base, 1)
	newer := sampleRecord(base.Add(time.Hour), 0)

	require.NoError(t, store.SaveMatch(ctx, older))
	require.NoError(t, store.SaveMatch(ctx, newer))

	records, err := store.ListMatches(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, newer.ID, records[0].ID)
	assert.Equal(t, 0, records[0].Winner)
	assert.Equal(t, older.ID, records[1].ID)
	assert.Equal(t, older.SessionID, records[1].SessionID)
	assert.Equal(t, "Alice", records[1].Player1)
	assert.Equal(t, 12, records[1].Turns)
	assert.Equal(t, "abc123", records[1].FinalChecksum)
	assert.Equal(t, older.Stats, records[1].Stats)
	assert.True(t, older.StartedAt.Equal(records[1].StartedAt))
	assert.True(t, older.EndedAt.Equal(records[1].EndedAt))

	limited, err := store.ListMatches(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, newer.ID, limited[0].ID)
}

func TestSQLiteRejectsInvalidAndDuplicate(t *testing.T) {
	ctx := context.Background()
	store := openTestSQLite(t)

	rec := sampleRecord(time.Now(), 2)
	require.NoError(t, store.SaveMatch(ctx, rec))
	assert.Error(t, store.SaveMatch(ctx, rec), "duplicate id")

	bad := sampleRecord(time.Now(), 3)
	assert.Error(t, store.SaveMatch(ctx, bad))

	bad = sampleRecord(time.Now(), 1)
	bad.ID = ""
	assert.Error(t, store.SaveMatch(ctx, bad))
}

func TestSQLiteReopenKeepsRecords(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "matches.db")

	store, err := OpenSQLite(ctx, path)
	require.NoError(t, err)
	rec := sampleRecord(time.Now(), 1)
	require.NoError(t, store.SaveMatch(ctx, rec))
	require.NoError(t, store.Close())

	store, err = OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer store.Close()

	records, err := store.ListMatches(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, rec.ID, records[0].ID)
}

func TestOpenDrivers(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)

	store, err := Open(ctx, config.StorageConfig{Driver: config.DriverNone}, logger)
	require.NoError(t, err)
	assert.IsType(t, NopStore{}, store)
	assert.NoError(t, store.SaveMatch(ctx, MatchRecord{}))
	records, err := store.ListMatches(ctx, 5)
	assert.NoError(t, err)
	assert.Empty(t, records)

	store, err = Open(ctx, config.StorageConfig{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "open.db"),
	}, logger)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, store)
	require.NoError(t, store.Close())

	_, err = Open(ctx, config.StorageConfig{Driver: "mongo"}, logger)
	assert.Error(t, err)

	_, err = Open(ctx, config.StorageConfig{Driver: config.DriverSQLite}, logger)
	assert.Error(t, err)
}

func TestNilStores(t *testing.T) {
	var sqliteStore *SQLiteStore
	assert.ErrorIs(t, sqliteStore.SaveMatch(context.Background(), sampleRecord(time.Now(), 1)), ErrNotConfigured)
	assert.NoError(t, sqliteStore.Close())

	var pgStore *PostgresStore
	_, err := pgStore.ListMatches(context.Background(), 1)
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.NoError(t, pgStore.Close())
}
