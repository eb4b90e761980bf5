package db

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "nested", "coach.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLite_SaveGetRoundTrip(t *testing.T) {
	store := openTestSQLite(t)
	ctx := context.Background()

	snap := &Snapshot{Kind: KindInterview, Payload: json.RawMessage(`{"sessionPhase":"review"}`)}
	require.NoError(t, store.SaveSnapshot(ctx, snap))
	require.NotEqual(t, uuid.Nil, snap.ID)
	assert.False(t, snap.CreatedAt.IsZero())

	got, err := store.GetSnapshot(ctx, snap.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, KindInterview, got.Kind)
	assert.JSONEq(t, `{"sessionPhase":"review"}`, string(got.Payload))
	assert.Equal(t, snap.CreatedAt, got.CreatedAt)
}

func TestSQLite_SaveReplacesPayload(t *testing.T) {
	store := openTestSQLite(t)
	ctx := context.Background()

	snap := &Snapshot{Kind: KindTicket, Payload: json.RawMessage(`{"v":1}`)}
	require.NoError(t, store.SaveSnapshot(ctx, snap))
	created := snap.CreatedAt

	snap.Payload = json.RawMessage(`{"v":2}`)
	require.NoError(t, store.SaveSnapshot(ctx, snap))

	got, err := store.GetSnapshot(ctx, snap.ID)
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(got.Payload))
	assert.Equal(t, created, got.CreatedAt)
	assert.False(t, got.UpdatedAt.Before(created))
}

func TestSQLite_EmptyPayloadStoredAsObject(t *testing.T) {
	store := openTestSQLite(t)
	ctx := context.Background()

	snap := &Snapshot{Kind: KindTicket}
	require.NoError(t, store.SaveSnapshot(ctx, snap))

	got, err := store.GetSnapshot(ctx, snap.ID)
	require.NoError(t, err)
	assert.Equal(t, "{}", string(got.Payload))
}

func TestSQLite_GetMissing(t *testing.T) {
	store := openTestSQLite(t)

	got, err := store.GetSnapshot(context.Background(), uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLite_Delete(t *testing.T) {
	store := openTestSQLite(t)
	ctx := context.Background()

	snap := &Snapshot{Kind: KindInterview}
	require.NoError(t, store.SaveSnapshot(ctx, snap))

	require.NoError(t, store.DeleteSnapshot(ctx, snap.ID))
	assert.ErrorIs(t, store.DeleteSnapshot(ctx, snap.ID), ErrSnapshotNotFound)

	got, err := store.GetSnapshot(ctx, snap.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSQLite_ListAndLatest(t *testing.T) {
	store := openTestSQLite(t)
	ctx := context.Background()

	first := &Snapshot{Kind: KindInterview, Payload: json.RawMessage(`{"n":1}`)}
	ticket := &Snapshot{Kind: KindTicket, Payload: json.RawMessage(`{"n":2}`)}
	second := &Snapshot{Kind: KindInterview, Payload: json.RawMessage(`{"n":3}`)}
	for _, s := range []*Snapshot{first, ticket, second} {
		require.NoError(t, store.SaveSnapshot(ctx, s))
	}

	interviews, err := store.ListSnapshots(ctx, KindInterview, 10)
	require.NoError(t, err)
	require.Len(t, interviews, 2)
	assert.Equal(t, second.ID, interviews[0].ID)
	assert.Equal(t, first.ID, interviews[1].ID)

	all, err := store.ListSnapshots(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	latest, err := Latest(ctx, store, KindTicket)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, ticket.ID, latest.ID)

	// Saving the first interview again makes it the latest
	require.NoError(t, store.SaveSnapshot(ctx, first))
	latest, err = Latest(ctx, store, KindInterview)
	require.NoError(t, err)
	assert.Equal(t, first.ID, latest.ID)
}

func TestLatest_Empty(t *testing.T) {
	store := openTestSQLite(t)

	latest, err := Latest(context.Background(), store, KindInterview)
	assert.NoError(t, err)
	assert.Nil(t, latest)
}

func TestOpenSQLite_Memory(t *testing.T) {
	store, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	snap := &Snapshot{Kind: KindTicket}
	require.NoError(t, store.SaveSnapshot(context.Background(), snap))
	got, err := store.GetSnapshot(context.Background(), snap.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestEncode(t *testing.T) {
	id := uuid.New()
	snap, err := Encode(KindTicket, id, map[string]string{"intent": "x"})
	require.NoError(t, err)
	assert.Equal(t, id, snap.ID)
	assert.JSONEq(t, `{"intent":"x"}`, string(snap.Payload))

	_, err = Encode(KindTicket, id, make(chan int))
	assert.Error(t, err)
}

func TestSQLite_DeleteOlderThan(t *testing.T) {
	store := openTestSQLite(t)
	ctx := context.Background()

	snap := &Snapshot{Kind: KindTicket}
	require.NoError(t, store.SaveSnapshot(ctx, snap))

	n, err := store.DeleteOlderThan(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = store.DeleteOlderThan(ctx, -time.Second)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := store.GetSnapshot(ctx, snap.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}
