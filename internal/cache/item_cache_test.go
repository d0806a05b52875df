package cache

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis connects to a local Redis on DB 1; tests skip without it.
func setupTestRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   1,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Redis not available, skipping test")
	}
	client.FlushDB(ctx)

	return client
}

func TestItemKey(t *testing.T) {
	tests := []struct {
		name     string
		itemID   string
		gen      int64
		expected string
	}{
		{name: "uuid", itemID: "3f1c9f5e-7f0a-4c55-9d53-2d8e0c1a9b11", gen: 4, expected: "item:3f1c9f5e-7f0a-4c55-9d53-2d8e0c1a9b11:4"},
		{name: "empty", itemID: "", gen: 0, expected: "item::0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ItemKey(tt.itemID, tt.gen))
		})
	}
}

func TestItemListKey(t *testing.T) {
	assert.Equal(t, "items:all:0", ItemListKey(0))
	assert.NotEqual(t, ItemListKey(1), ItemListKey(2))
}

func TestNopCache(t *testing.T) {
	var c Cache = NopCache{}
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", map[string]string{"a": "b"}))
	data, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.NoError(t, c.Delete(ctx, "k"))

	gen, err := c.Bump(ctx)
	require.NoError(t, err)
	assert.Zero(t, gen)
}

func TestItemCache_SetGetDelete(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	c := NewItemCache(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, ItemKey("a", 0), map[string]string{"name": "Widget"}))

	data, err := c.Get(ctx, ItemKey("a", 0))
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Widget"}`, string(data))

	require.NoError(t, c.Delete(ctx, ItemKey("a", 0), ItemListKey(0)))

	data, err = c.Get(ctx, ItemKey("a", 0))
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestItemCache_Miss(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	c := NewItemCache(client, 0)

	data, err := c.Get(context.Background(), ItemKey("missing", 0))
	require.NoError(t, err)
	assert.Nil(t, data)
	assert.Equal(t, DefaultItemCacheTTL, c.ttl)
}

func TestItemCache_TTL(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	c := NewItemCache(client, 30*time.Second)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, ItemListKey(0), []string{}))

	ttl, err := client.TTL(ctx, ItemListKey(0)).Result()
	require.NoError(t, err)
	assert.True(t, ttl > 0 && ttl <= 30*time.Second)
}

func TestItemCache_Generation(t *testing.T) {
	client := setupTestRedis(t)
	defer client.Close()

	c := NewItemCache(client, time.Minute)
	ctx := context.Background()

	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), gen)

	next, err := c.Bump(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), next)

	gen, err = c.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, next, gen)
}
