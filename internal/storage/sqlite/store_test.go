package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/taleweaver/internal/game/session"
	"github.com/cory-johannsen/taleweaver/internal/storage/sqlite"
)

func openStore(t *testing.T) (*sqlite.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sessions.db")
	store, err := sqlite.Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, path
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := sqlite.Open(context.Background(), "  ")
	assert.Error(t, err)
}

func TestStore_SaveLoad(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", "Aria", []byte(`{"phase":"PLAYING"}`)))
	blob, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, `{"phase":"PLAYING"}`, string(blob))

	require.NoError(t, store.Save(ctx, "s1", "Aria II", []byte(`{"phase":"GAME_OVER"}`)))
	blob, err = store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, `{"phase":"GAME_OVER"}`, string(blob))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Aria II", list[0].Name)
}

func TestStore_UnknownAndEmptyID(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()

	_, err := store.Load(ctx, "nope")
	assert.ErrorIs(t, err, session.ErrNotFound)
	assert.Error(t, store.Save(ctx, "", "x", []byte(`{}`)))
}

func TestStore_ListNewestFirst(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "old", "old", []byte(`{}`)))
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, store.Save(ctx, "new", "new", []byte(`{}`)))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].ID)
	assert.Equal(t, "old", list[1].ID)
	assert.False(t, list[0].Timestamp.Before(list[1].Timestamp))
}

func TestStore_Delete(t *testing.T) {
	store, _ := openStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", "x", []byte(`{}`)))
	require.NoError(t, store.Delete(ctx, "s1"))
	require.NoError(t, store.Delete(ctx, "s1"))
	_, err := store.Load(ctx, "s1")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestStore_ReopenKeepsData(t *testing.T) {
	store, path := openStore(t)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, "s1", "persisted", []byte(`{"a":1}`)))
	require.NoError(t, store.Close())

	reopened, err := sqlite.Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()
	blob, err := reopened.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(blob))
}
