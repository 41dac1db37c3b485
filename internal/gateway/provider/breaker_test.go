package provider

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakyProvider struct {
	err   error
	calls int
}

func (p *flakyProvider) ID() string    { return "flaky" }
func (p *flakyProvider) Enabled() bool { return true }
func (p *flakyProvider) Call(context.Context, ChatPayload) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return "ok", nil
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	inner := &flakyProvider{err: errors.New("boom")}
	b := NewBreakerProvider(inner, 3, time.Hour)

	for i := 0; i < 3; i++ {
		_, err := b.Call(context.Background(), ChatPayload{})
		require.Error(t, err)
	}
	// 打开之后不再触达后端
	_, err := b.Call(context.Background(), ChatPayload{})
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.Equal(t, 3, inner.calls)
}

func TestBreakerHalfOpenProbeRecovers(t *testing.T) {
	inner := &flakyProvider{err: errors.New("boom")}
	b := NewBreakerProvider(inner, 1, 5*time.Millisecond)

	_, err := b.Call(context.Background(), ChatPayload{})
	require.Error(t, err)

	time.Sleep(10 * time.Millisecond)
	inner.err = nil
	out, err := b.Call(context.Background(), ChatPayload{})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)

	// 恢复之后正常放行
	_, err = b.Call(context.Background(), ChatPayload{})
	assert.NoError(t, err)
}

func TestBreakerHalfOpenProbeFailureReopens(t *testing.T) {
	inner := &flakyProvider{err: errors.New("boom")}
	b := NewBreakerProvider(inner, 1, 5*time.Millisecond)

	_, _ = b.Call(context.Background(), ChatPayload{})
	time.Sleep(10 * time.Millisecond)
	_, err := b.Call(context.Background(), ChatPayload{}) // 探测失败
	require.Error(t, err)

	calls := inner.calls
	_, err = b.Call(context.Background(), ChatPayload{})
	assert.True(t, errors.Is(err, ErrUnavailable))
	assert.Equal(t, calls, inner.calls)
}

func TestBreakerPassthroughWhenHealthy(t *testing.T) {
	inner := &flakyProvider{}
	b := NewBreakerProvider(inner, 3, time.Hour)
	out, err := b.Call(context.Background(), ChatPayload{})
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, "flaky", b.ID())
	assert.True(t, b.Enabled())
}
