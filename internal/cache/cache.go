// Package cache provides a TTL-bounded response cache for upstream calls.
package cache

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

type record struct {
	value []byte
	ts    time.Time
}

type slot struct {
	key string
	ts  time.Time
}

// Cache maps (endpoint, params) keys to the last successful raw response.
// Entries expire after ttl and the oldest entries are compacted away once
// capacity is exceeded. Safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	items    map[string]record
	order    []slot
	capacity int
	ttl      time.Duration
}

// New creates a cache with the provided capacity and ttl.
func New(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{
		items:    make(map[string]record, capacity),
		order:    make([]slot, 0, capacity),
		capacity: capacity,
		ttl:      ttl,
	}
}

// Get returns the cached value for key. Entries older than the ttl are
// treated as absent.
func (c *Cache) Get(key string) ([]byte, bool) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.items[key]
	if !ok || now.Sub(rec.ts) > c.ttl {
		return nil, false
	}
	return rec.value, true
}

// Put unconditionally overwrites the entry for key.
func (c *Cache) Put(key string, value []byte) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = record{value: value, ts: now}
	c.order = append(c.order, slot{key: key, ts: now})
	c.compact(now)
}

func (c *Cache) compact(now time.Time) {
	cutoff := now.Add(-c.ttl)

	for len(c.order) > 0 && (len(c.items) > c.capacity || c.order[0].ts.Before(cutoff)) {
		oldest := c.order[0]
		c.order = c.order[1:]

		if rec, ok := c.items[oldest.key]; ok {
			if rec.ts.Equal(oldest.ts) {
				delete(c.items, oldest.key)
			}
		}
	}
}

// IsSeen reports whether key was marked within the ttl. Used for duplicate
// suppression when the cached value itself does not matter.
func (c *Cache) IsSeen(key string) bool {
	_, ok := c.Get(key)
	return ok
}

// MarkSeen records key with an empty value.
func (c *Cache) MarkSeen(key string) {
	c.Put(key, nil)
}

// Key builds a deterministic cache key from an endpoint id and its call
// parameters. Params are serialized with sorted keys so that equal parameter
// sets always collide.
func Key(endpointID string, params map[string]any) string {
	if len(params) == 0 {
		return endpointID + ":{}"
	}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(endpointID)
	b.WriteString(":{")
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		v, err := json.Marshal(params[k])
		if err != nil {
			v = []byte(fmt.Sprintf("%q", fmt.Sprint(params[k])))
		}
		fmt.Fprintf(&b, "%q:%s", k, v)
	}
	b.WriteByte('}')
	return b.String()
}
