package workouts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayCache(t *testing.T) {
	cache := NewDayCache(time.Minute)

	day := time.Date(2025, 1, 17, 15, 30, 0, 0, time.UTC)
	payload := []byte(`[{"id":1}]`)

	_, ok := cache.Get(1, day)
	require.False(t, ok)

	cache.Set(1, day, payload)

	cached, ok := cache.Get(1, day)
	require.True(t, ok)
	assert.Equal(t, payload, cached)

	// any time within the same day addresses the same entry
	cached, ok = cache.Get(1, day.Add(5*time.Hour))
	require.True(t, ok)
	assert.Equal(t, payload, cached)

	// next day is a different entry
	_, ok = cache.Get(1, day.AddDate(0, 0, 1))
	assert.False(t, ok)

	// other users do not share entries
	_, ok = cache.Get(2, day)
	assert.False(t, ok)
}

func TestDayCache_InvalidateUser(t *testing.T) {
	cache := NewDayCache(time.Minute)

	day := time.Date(2025, 1, 17, 0, 0, 0, 0, time.UTC)
	cache.Set(1, day, []byte("user1"))
	cache.Set(2, day, []byte("user2"))

	cache.InvalidateUser(1)

	_, ok := cache.Get(1, day)
	assert.False(t, ok)

	// user 2 entries survive
	cached, ok := cache.Get(2, day)
	require.True(t, ok)
	assert.Equal(t, []byte("user2"), cached)

	// setting after invalidation works again
	cache.Set(1, day, []byte("fresh"))
	cached, ok = cache.Get(1, day)
	require.True(t, ok)
	assert.Equal(t, []byte("fresh"), cached)
}
