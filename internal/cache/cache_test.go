package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheSetGet(t *testing.T) {
	c := New(time.Minute)
	c.Set("payment:1", "value")

	got, ok := c.Get("payment:1")
	require.True(t, ok)
	assert.Equal(t, "value", got)

	_, ok = c.Get("payment:2")
	assert.False(t, ok)
}

func TestCacheExpiry(t *testing.T) {
	c := New(10 * time.Millisecond)
	c.Set("payment:1", "value")

	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get("payment:1")
	assert.False(t, ok)
}

func TestCacheDelete(t *testing.T) {
	c := New(time.Minute)
	c.Set("payment:1", "value")
	c.Delete("payment:1")

	_, ok := c.Get("payment:1")
	assert.False(t, ok)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "payment:42", Key("payment", 42))
	assert.Equal(t, "credit:7", Key("credit", 7))
}
