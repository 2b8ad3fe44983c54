package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adfharrison1/cpaas-admin/pkg/domain"
)

func TestStore_SnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "admin"+FileExtension)
	ctx := context.Background()

	store := newTestStore()
	for i := 0; i < 30; i++ {
		_, err := store.Create(ctx, "users", domain.Record{
			"id":     fmt.Sprintf("u-%02d", 30-i),
			"name":   fmt.Sprintf("User %d", i),
			"score":  float64(i) * 1.5,
			"active": i%2 == 0,
			"meta":   map[string]interface{}{"plan": "pro", "seats": float64(i)},
			"tags":   []interface{}{"a", "b"},
		})
		require.NoError(t, err)
	}
	_, err := store.Create(ctx, "logs", domain.Record{"id": "log-1", "message": "hello"})
	require.NoError(t, err)
	require.True(t, store.IsDirty())

	require.NoError(t, store.SaveToFile(file))
	assert.False(t, store.IsDirty())

	info, err := os.Stat(file)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	loaded := NewStore()
	require.NoError(t, loaded.LoadFromFile(file))

	want, err := store.List(ctx, "users")
	require.NoError(t, err)
	got, err := loaded.List(ctx, "users")
	require.NoError(t, err)
	assert.Equal(t, want, got)

	logs, err := loaded.List(ctx, "logs")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "hello", logs[0]["message"])
	assert.False(t, loaded.IsDirty())
}

func TestStore_LoadMissingFileIsEmpty(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.LoadFromFile(filepath.Join(t.TempDir(), "missing.godb")))
	assert.Empty(t, store.CollectionNames())
}

func TestStore_LoadRejectsForeignFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "bogus.godb")
	require.NoError(t, os.WriteFile(file, []byte("NOPE this is not a snapshot"), 0o600))

	err := NewStore().LoadFromFile(file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid file format")
}

func TestStore_SaveWithoutSnapshotFileIsNoop(t *testing.T) {
	store := NewStore()
	_, err := store.Create(context.Background(), "users", domain.Record{"id": "x"})
	require.NoError(t, err)

	require.NoError(t, store.Save())
	require.NoError(t, store.Load())
	assert.Equal(t, 1, store.Len("users"))
}

func TestStore_BackgroundSave(t *testing.T) {
	file := filepath.Join(t.TempDir(), "bg.godb")
	store := newTestStore(WithSnapshotFile(file), WithBackgroundSave(20*time.Millisecond))
	store.StartBackgroundWorkers()
	defer store.StopBackgroundWorkers()

	_, err := store.Create(context.Background(), "users", domain.Record{"id": "u-1"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, err := os.Stat(file)
		return err == nil && !store.IsDirty()
	}, 2*time.Second, 10*time.Millisecond)

	loaded := NewStore(WithSnapshotFile(file))
	require.NoError(t, loaded.Load())
	assert.Equal(t, 1, loaded.Len("users"))

	// Stopping twice is safe
	store.StopBackgroundWorkers()
}
