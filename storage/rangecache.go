package storage

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// byteRange is a half-open [start, end) interval, used by rangeCache to
// key cached reads of a Remote-URL backend, narrowed to what the URL
// backend's own repeated small index/header reads need — this is a
// transport-level read buffer local to one backend, not the
// request/ticket-level caching the resolver itself deliberately
// avoids.
type byteRange [2]int64

func (r byteRange) contains(r2 byteRange) bool {
	return r[0] <= r2[0] && r[1] >= r2[1]
}

// rangeCacheEntry stores cached bytes and the time they were inserted.
// Eviction does not consult lastRead: it is by LRU order and entry
// count only.
type rangeCacheEntry struct {
	value    []byte
	lastRead time.Time
}

// rangeCache is a small LRU of recently fetched byte ranges, keyed by
// exact [start, end) span. A lookup for a sub-range of a cached entry
// is served from that entry without a new fetch.
type rangeCache struct {
	mu            sync.Mutex
	maxEntries    int
	cache         map[byteRange]rangeCacheEntry
	lru           *list.List
	lruElems      map[byteRange]*list.Element
	fetch         func(p []byte, off int64) (int, error)
}

func newRangeCache(maxEntries int, fetch func(p []byte, off int64) (int, error)) *rangeCache {
	return &rangeCache{
		maxEntries: maxEntries,
		cache:      make(map[byteRange]rangeCacheEntry),
		lru:        list.New(),
		lruElems:   make(map[byteRange]*list.Element),
		fetch:      fetch,
	}
}

// get returns n bytes starting at off, serving from cache when a cached
// entry already covers the requested span.
func (c *rangeCache) get(ctx context.Context, off int64, n int) ([]byte, error) {
	want := byteRange{off, off + int64(n)}

	c.mu.Lock()
	for r, entry := range c.cache {
		if r.contains(want) {
			out := entry.value[want[0]-r[0] : want[1]-r[0]]
			c.touch(r)
			c.mu.Unlock()
			return out, nil
		}
	}
	c.mu.Unlock()

	buf := make([]byte, n)
	read, err := c.fetch(buf, off)
	if err != nil {
		return nil, err
	}
	buf = buf[:read]

	c.mu.Lock()
	c.insert(byteRange{off, off + int64(read)}, buf)
	c.mu.Unlock()
	return buf, nil
}

func (c *rangeCache) touch(r byteRange) {
	if e, ok := c.lruElems[r]; ok {
		c.lru.MoveToFront(e)
	}
}

func (c *rangeCache) insert(r byteRange, value []byte) {
	c.cache[r] = rangeCacheEntry{value: value, lastRead: time.Now()}
	c.lruElems[r] = c.lru.PushFront(r)
	for len(c.cache) > c.maxEntries {
		back := c.lru.Back()
		if back == nil {
			break
		}
		evict := back.Value.(byteRange)
		c.lru.Remove(back)
		delete(c.lruElems, evict)
		delete(c.cache, evict)
	}
}
