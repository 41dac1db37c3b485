package source

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradecouncil/internal/market"
)

type fakeSource struct {
	name   string
	series market.PriceSeries
	err    error
	calls  int
}

func (f *fakeSource) Name() string { return f.name }
func (f *fakeSource) Fetch(ctx context.Context, req Request) (market.PriceSeries, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.series, nil
}

func someBars() market.PriceSeries {
	return market.PriceSeries{{Timestamp: 1000, Close: 10}, {Timestamp: 2000, Close: 11}}
}

func newTestResolver(t *testing.T, sources ...BarSource) *Resolver {
	t.Helper()
	r, err := NewResolver(ResolverConfig{Sources: sources, RateLimitPerMin: 6000})
	require.NoError(t, err)
	return r
}

func TestResolveFirstSourceWins(t *testing.T) {
	first := &fakeSource{name: "yahoo", series: someBars()}
	second := &fakeSource{name: "stooq", series: someBars()}
	r := newTestResolver(t, first, second)

	got, err := r.Resolve(context.Background(), Request{Ticker: "AAPL"}, HintAuto)
	require.NoError(t, err)
	assert.Equal(t, "yahoo", got.Source)
	assert.Empty(t, got.Attempts)
	assert.Equal(t, 0, second.calls)
}

func TestResolveFallbackKeepsAttempts(t *testing.T) {
	first := &fakeSource{name: "yahoo", err: unavailable("yahoo", errors.New("timeout"))}
	second := &fakeSource{name: "stooq", series: someBars()}
	r := newTestResolver(t, first, second)

	got, err := r.Resolve(context.Background(), Request{Ticker: "AAPL"}, "")
	require.NoError(t, err)
	assert.Equal(t, "stooq", got.Source)
	// 成功之前失败过的源保留在 Attempts 里
	require.Len(t, got.Attempts, 1)
	assert.Equal(t, "yahoo", got.Attempts[0].Source)
	assert.Contains(t, got.Attempts[0].Error, "timeout")
}

func TestResolveAllSourcesFailed(t *testing.T) {
	first := &fakeSource{name: "yahoo", err: unavailable("yahoo", errors.New("boom"))}
	second := &fakeSource{name: "stooq", err: noData("stooq")}
	r := newTestResolver(t, first, second)

	_, err := r.Resolve(context.Background(), Request{Ticker: "XXXX"}, HintAuto)
	var all *AllSourcesFailed
	require.True(t, errors.As(err, &all))
	assert.Equal(t, "XXXX", all.Ticker)
	require.Len(t, all.Attempts, 2)
	assert.Equal(t, "yahoo", all.Attempts[0].Source)
	assert.Equal(t, "stooq", all.Attempts[1].Source)
}

func TestResolveNamedHintOnlyTriesThatSource(t *testing.T) {
	first := &fakeSource{name: "yahoo", series: someBars()}
	second := &fakeSource{name: "stooq", series: someBars()}
	r := newTestResolver(t, first, second)

	got, err := r.Resolve(context.Background(), Request{Ticker: "AAPL"}, "stooq")
	require.NoError(t, err)
	assert.Equal(t, "stooq", got.Source)
	assert.Equal(t, 0, first.calls)
}

func TestResolveNamedHintPropagatesRawError(t *testing.T) {
	failing := &fakeSource{name: "stooq", err: noData("stooq")}
	r := newTestResolver(t, &fakeSource{name: "yahoo", series: someBars()}, failing)

	_, err := r.Resolve(context.Background(), Request{Ticker: "XXXX"}, "stooq")
	// 指定单一数据源时不包聚合错误，原样传播
	var se *Error
	require.True(t, errors.As(err, &se))
	assert.Equal(t, KindNoData, se.Kind)
	var all *AllSourcesFailed
	assert.False(t, errors.As(err, &all))
}

func TestResolveUnknownHint(t *testing.T) {
	r := newTestResolver(t, &fakeSource{name: "yahoo", series: someBars()})
	_, err := r.Resolve(context.Background(), Request{Ticker: "AAPL"}, "bloomberg")
	assert.Error(t, err)
}

func TestNewResolverRejectsDuplicateNames(t *testing.T) {
	_, err := NewResolver(ResolverConfig{Sources: []BarSource{
		&fakeSource{name: "yahoo"},
		&fakeSource{name: "Yahoo"},
	}})
	assert.Error(t, err)
}

func TestNewResolverRequiresSources(t *testing.T) {
	_, err := NewResolver(ResolverConfig{})
	assert.Error(t, err)
}
