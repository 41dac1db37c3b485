package provider

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tradecouncil/internal/logger"
)

type breakerState int

const (
	stateClosed breakerState = iota
	stateOpen
	stateHalfOpen
)

func (s breakerState) String() string {
	switch s {
	case stateClosed:
		return "CLOSED"
	case stateOpen:
		return "OPEN"
	case stateHalfOpen:
		return "HALF-OPEN"
	default:
		return "UNKNOWN"
	}
}

// BreakerProvider 给模型后端套一层熔断：连续失败达到阈值后直接快速
// 拒绝，冷却期过后放一个探测请求。合议层把被拒的调用当普通传输失败
// 降级成 HOLD 票，所以熔断打开不影响整体出结果。
type BreakerProvider struct {
	inner     ModelProvider
	threshold int
	cooldown  time.Duration

	mu          sync.Mutex
	state       breakerState
	failures    int
	lastFailure time.Time
}

func NewBreakerProvider(inner ModelProvider, threshold int, cooldown time.Duration) *BreakerProvider {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	return &BreakerProvider{inner: inner, threshold: threshold, cooldown: cooldown}
}

func (b *BreakerProvider) ID() string    { return b.inner.ID() }
func (b *BreakerProvider) Enabled() bool { return b.inner.Enabled() }

func (b *BreakerProvider) Call(ctx context.Context, payload ChatPayload) (string, error) {
	if !b.allow() {
		return "", fmt.Errorf("%w: circuit open for %s", ErrUnavailable, b.inner.ID())
	}
	out, err := b.inner.Call(ctx, payload)
	if err != nil {
		b.recordFailure()
		return "", err
	}
	b.recordSuccess()
	return out, nil
}

func (b *BreakerProvider) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch b.state {
	case stateOpen:
		if time.Since(b.lastFailure) > b.cooldown {
			b.transition(stateHalfOpen)
			return true
		}
		return false
	default:
		return true
	}
}

func (b *BreakerProvider) recordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == stateHalfOpen {
		b.transition(stateClosed)
	}
	b.failures = 0
}

func (b *BreakerProvider) recordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	b.lastFailure = time.Now()
	switch b.state {
	case stateClosed:
		if b.failures >= b.threshold {
			b.transition(stateOpen)
		}
	case stateHalfOpen:
		// 探测失败立即回到打开态
		b.transition(stateOpen)
	}
}

func (b *BreakerProvider) transition(to breakerState) {
	from := b.state
	b.state = to
	logger.Warnf("[provider] %s circuit %s -> %s (failures=%d/%d)",
		b.inner.ID(), from, to, b.failures, b.threshold)
}
