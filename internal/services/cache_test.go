package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetGet(t *testing.T) {
	cache := NewMemoryCache()

	require.NoError(t, cache.SetSimple("k", map[string]int{"a": 1}, 0))

	var got map[string]int
	require.NoError(t, cache.GetSimple("k", &got))
	assert.Equal(t, 1, got["a"])

	assert.Error(t, cache.GetSimple("missing", &got))
}

func TestMemoryCache_Expiry(t *testing.T) {
	cache := NewMemoryCache()

	require.NoError(t, cache.SetSimple("k", "v", time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	var got string
	assert.Error(t, cache.GetSimple("k", &got), "expired entries read as missing")

	cache.Cleanup()
}

func TestPoolCacheKey(t *testing.T) {
	assert.Equal(t, "pool:2024-2025:ENG-Premier League", PoolCacheKey("2024-2025", "ENG-Premier League"))
}
