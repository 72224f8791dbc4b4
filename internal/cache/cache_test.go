package cache_test

import (
	"testing"
	"time"

	"github.com/epluris/epluris/backend/internal/cache"
	"github.com/stretchr/testify/require"
)

func TestGetAfterPut(t *testing.T) {
	c := cache.New(10, time.Minute)

	_, ok := c.Get("alpha")
	require.False(t, ok)

	c.Put("alpha", []byte(`{"hits":1}`))

	got, ok := c.Get("alpha")
	require.True(t, ok)
	require.JSONEq(t, `{"hits":1}`, string(got))
}

func TestTTLExpiry(t *testing.T) {
	c := cache.New(10, 20*time.Millisecond)

	c.Put("beta", []byte("x"))
	time.Sleep(25 * time.Millisecond)

	_, ok := c.Get("beta")
	require.False(t, ok)
}

func TestPutOverwrites(t *testing.T) {
	c := cache.New(10, time.Minute)

	c.Put("gamma", []byte("old"))
	c.Put("gamma", []byte("new"))

	got, ok := c.Get("gamma")
	require.True(t, ok)
	require.Equal(t, "new", string(got))
}

func TestCapacityEvictsOldest(t *testing.T) {
	c := cache.New(1, time.Minute)

	c.Put("first", []byte("1"))
	c.Put("second", []byte("2"))

	_, ok := c.Get("first")
	require.False(t, ok)

	got, ok := c.Get("second")
	require.True(t, ok)
	require.Equal(t, "2", string(got))
}

func TestSeenMarking(t *testing.T) {
	c := cache.New(10, 20*time.Millisecond)

	require.False(t, c.IsSeen("event-1"))

	c.MarkSeen("event-1")
	require.True(t, c.IsSeen("event-1"))

	time.Sleep(25 * time.Millisecond)
	require.False(t, c.IsSeen("event-1"))
}

func TestKeyIsOrderIndependent(t *testing.T) {
	a := cache.Key("fcc-licenses", map[string]any{"licenseeName": "AT&T", "page": 2})
	b := cache.Key("fcc-licenses", map[string]any{"page": 2, "licenseeName": "AT&T"})
	require.Equal(t, a, b)

	other := cache.Key("fcc-licenses", map[string]any{"page": 3, "licenseeName": "AT&T"})
	require.NotEqual(t, a, other)

	empty := cache.Key("fcc-licenses", nil)
	require.Equal(t, "fcc-licenses:{}", empty)
}
