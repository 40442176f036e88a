package catalogue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheMissWhenEmpty(t *testing.T) {
	c := NewCache()
	_, ok := c.Get()
	assert.False(t, ok)
}

func TestCacheHitAfterSet(t *testing.T) {
	c := NewCache()
	c.Set([]Place{{ID: "a", Title: "Paris", Size: 3}})

	places, ok := c.Get()

	assert.True(t, ok)
	assert.Len(t, places, 1)
	assert.Equal(t, "a", places[0].ID)
}

func TestCacheExpiresAfterTTL(t *testing.T) {
	c := NewCache()
	c.Set([]Place{{ID: "a"}})
	c.timestamp = time.Now().Add(-placesTTL - time.Minute)

	_, ok := c.Get()

	assert.False(t, ok)
}

func TestCacheClearInvalidates(t *testing.T) {
	c := NewCache()
	c.Set([]Place{{ID: "a"}})
	c.Clear()

	_, ok := c.Get()
	assert.False(t, ok)
}

func TestCacheGetReturnsACopy(t *testing.T) {
	c := NewCache()
	c.Set([]Place{{ID: "a"}})

	places, _ := c.Get()
	places[0].ID = "mutated"

	fresh, _ := c.Get()
	assert.Equal(t, "a", fresh[0].ID)
}
