package market

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "bars.db"), ttl)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreRoundTrip(t *testing.T) {
	s := newTestStore(t, time.Minute)
	ctx := context.Background()
	series := PriceSeries{{Timestamp: 1000, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10}}

	require.NoError(t, s.Put(ctx, "aapl", "1Y", "1d", "yahoo", series))

	// 键大小写归一化
	got, src, ok := s.Get(ctx, "AAPL", "1y", "1D")
	require.True(t, ok)
	assert.Equal(t, "yahoo", src)
	require.Len(t, got, 1)
	assert.Equal(t, series[0], got[0])
}

func TestStoreMiss(t *testing.T) {
	s := newTestStore(t, time.Minute)
	_, _, ok := s.Get(context.Background(), "MSFT", "1y", "1d")
	assert.False(t, ok)
}

func TestStoreTTLExpiry(t *testing.T) {
	s := newTestStore(t, 1*time.Millisecond)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "AAPL", "1y", "1d", "stooq", PriceSeries{{Timestamp: 1, Close: 1}}))

	time.Sleep(10 * time.Millisecond)
	_, _, ok := s.Get(ctx, "AAPL", "1y", "1d")
	assert.False(t, ok)
}

func TestStoreUpsertOverwrites(t *testing.T) {
	s := newTestStore(t, time.Minute)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "AAPL", "1y", "1d", "yahoo", PriceSeries{{Timestamp: 1, Close: 1}}))
	require.NoError(t, s.Put(ctx, "AAPL", "1y", "1d", "stooq", PriceSeries{{Timestamp: 2, Close: 2}}))

	got, src, ok := s.Get(ctx, "AAPL", "1y", "1d")
	require.True(t, ok)
	assert.Equal(t, "stooq", src)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].Timestamp)
}

func TestStorePutEmptySeriesIsNoOp(t *testing.T) {
	s := newTestStore(t, time.Minute)
	ctx := context.Background()
	require.NoError(t, s.Put(ctx, "AAPL", "1y", "1d", "yahoo", nil))
	_, _, ok := s.Get(ctx, "AAPL", "1y", "1d")
	assert.False(t, ok)
}

func TestNewStoreRequiresPath(t *testing.T) {
	_, err := NewStore("", time.Minute)
	assert.Error(t, err)
}
