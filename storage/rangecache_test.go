package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRangeCacheServesSubRangeFromSingleFetch(t *testing.T) {
	data := []byte("0123456789abcdef")
	fetches := 0
	c := newRangeCache(4, func(p []byte, off int64) (int, error) {
		fetches++
		return copy(p, data[off:off+int64(len(p))]), nil
	})

	got, err := c.get(context.Background(), 2, 10)
	require.NoError(t, err)
	require.Equal(t, []byte("23456789ab"), got)
	require.Equal(t, 1, fetches)

	got, err = c.get(context.Background(), 4, 4)
	require.NoError(t, err)
	require.Equal(t, []byte("4567"), got)
	require.Equal(t, 1, fetches, "sub-range of a cached entry must not issue another fetch")
}

func TestRangeCacheMissOutsideCachedSpanRefetches(t *testing.T) {
	data := []byte("0123456789abcdef")
	fetches := 0
	c := newRangeCache(4, func(p []byte, off int64) (int, error) {
		fetches++
		return copy(p, data[off:off+int64(len(p))]), nil
	})

	_, err := c.get(context.Background(), 0, 4)
	require.NoError(t, err)
	got, err := c.get(context.Background(), 8, 4)
	require.NoError(t, err)
	require.Equal(t, []byte("89ab"), got)
	require.Equal(t, 2, fetches)
}

func TestRangeCacheEvictsLeastRecentlyUsed(t *testing.T) {
	data := make([]byte, 100)
	for i := range data {
		data[i] = byte(i)
	}
	fetches := 0
	c := newRangeCache(2, func(p []byte, off int64) (int, error) {
		fetches++
		return copy(p, data[off:off+int64(len(p))]), nil
	})

	_, _ = c.get(context.Background(), 0, 2)
	_, _ = c.get(context.Background(), 10, 2)
	_, _ = c.get(context.Background(), 20, 2)
	require.Len(t, c.cache, 2, "cache must not grow past maxEntries")

	_, err := c.get(context.Background(), 0, 2)
	require.NoError(t, err)
	require.Equal(t, 4, fetches, "entry evicted by the third insert must be refetched")
}

func TestRangeCacheShortReadNearEOFIsNotOverreadOnLookup(t *testing.T) {
	data := []byte("0123456789")
	c := newRangeCache(4, func(p []byte, off int64) (int, error) {
		n := copy(p, data[off:])
		return n, nil
	})

	got, err := c.get(context.Background(), 8, 4)
	require.NoError(t, err)
	require.Equal(t, []byte("89"), got)

	got, err = c.get(context.Background(), 8, 2)
	require.NoError(t, err)
	require.Equal(t, []byte("89"), got)
}
