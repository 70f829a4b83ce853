package portfolio

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pricepeak/internal/model"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to start miniredis")

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return client, mr
}

func TestManager_InitialAllocationIsSaved(t *testing.T) {
	ctx := context.Background()
	store := &MemoryStore{}
	m, err := NewManager(ctx, store, model.Portfolio{"Crude Oil": 60, "Gold": 40}, zap.NewNop())
	require.NoError(t, err)

	saved, found, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, m.Get(), saved)
}

func TestManager_SetClampsToHundred(t *testing.T) {
	ctx := context.Background()
	m, err := NewManager(ctx, &MemoryStore{}, model.Portfolio{"Crude Oil": 60, "Gold": 40}, zap.NewNop())
	require.NoError(t, err)

	p, err := m.Set(ctx, "Copper", 20)
	require.NoError(t, err)
	assert.Equal(t, 0.0, p["Copper"])

	p, err = m.Set(ctx, "Gold", 10)
	require.NoError(t, err)
	assert.Equal(t, 70.0, p.Total())

	p, err = m.Set(ctx, "Copper", 50)
	require.NoError(t, err)
	assert.Equal(t, 30.0, p["Copper"])
	assert.Equal(t, 100.0, p.Total())

	_, err = m.Set(ctx, "Copper", 120)
	assert.True(t, errors.Is(err, model.ErrInvalidParameter))
}

func TestManager_SetAfterOverAllocatedReplace(t *testing.T) {
	ctx := context.Background()
	store := &MemoryStore{}
	m, err := NewManager(ctx, store, model.Portfolio{"Crude Oil": 60, "Gold": 40}, zap.NewNop())
	require.NoError(t, err)

	_, err = m.Replace(ctx, model.Portfolio{"Crude Oil": 80, "Gold": 80})
	require.NoError(t, err)

	p, err := m.Set(ctx, "Copper", 10)
	require.NoError(t, err)
	assert.Equal(t, 0.0, p["Copper"])
	assert.Equal(t, 160.0, p.Total())

	saved, _, err := store.Load(ctx)
	require.NoError(t, err)
	_, err = Blend(map[string]model.Series{"Crude Oil": {}}, saved, "Crude Oil")
	assert.NoError(t, err)

	_, err = NewManager(ctx, store, nil, zap.NewNop())
	assert.NoError(t, err)
}

func TestManager_RemoveAndReset(t *testing.T) {
	ctx := context.Background()
	m, err := NewManager(ctx, &MemoryStore{}, model.Portfolio{"Crude Oil": 60, "Gold": 40}, zap.NewNop())
	require.NoError(t, err)

	p, err := m.Remove(ctx, "Gold")
	require.NoError(t, err)
	assert.Equal(t, model.Portfolio{"Crude Oil": 60}, p)

	p, err = m.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Portfolio{"Crude Oil": 50, "Gold": 50}, p)

	_, err = m.Replace(ctx, model.Portfolio{"Gold": -5})
	assert.True(t, errors.Is(err, model.ErrInvalidParameter))
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewFileStore(filepath.Join(t.TempDir(), "nested", "portfolio.json"))

	_, found, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	want := model.Portfolio{"Corn": 25, "Wheat": 75}
	require.NoError(t, store.Save(ctx, want))

	got, found, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)
}

func TestRedisStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	client, mr := setupTestRedis(t)
	store := NewRedisStore(client, "")

	_, found, err := store.Load(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	m, err := NewManager(ctx, store, model.Portfolio{"Gold": 100}, zap.NewNop())
	require.NoError(t, err)
	_, err = m.Set(ctx, "Gold", 40)
	require.NoError(t, err)

	raw, err := mr.Get(DefaultRedisKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Gold":40}`, raw)

	reloaded, err := NewManager(ctx, store, model.Portfolio{"Silver": 1}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, model.Portfolio{"Gold": 40}, reloaded.Get())
}

func TestRedisStore_CorruptBlob(t *testing.T) {
	ctx := context.Background()
	client, mr := setupTestRedis(t)
	require.NoError(t, mr.Set("custom", "not json"))

	_, _, err := NewRedisStore(client, "custom").Load(ctx)
	assert.Error(t, err)
}
