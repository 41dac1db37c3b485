package provider

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// MockProvider 在没有配置真实模型时顶替上场：根据"人设+标的"的哈希
// 产出稳定的 0..1 分数，再翻译成固定格式的回复文本。同样的输入永远
// 得到同样的回复，测试可复现。
type MockProvider struct {
	id string
}

func NewMockProvider(id string) *MockProvider {
	if id == "" {
		id = "mock"
	}
	return &MockProvider{id: id}
}

func (p *MockProvider) ID() string    { return p.id }
func (p *MockProvider) Enabled() bool { return true }

// stableScore 把任意 key 映射到 [0,1) 的确定值。
func stableScore(key string) float64 {
	sum := sha256.Sum256([]byte(key))
	hexStr := hex.EncodeToString(sum[:])
	n, _ := strconv.ParseUint(hexStr[:8], 16, 64)
	return float64(n%1000) / 1000.0
}

// Call 只取 System（人设）和 User 的第一行（标的行）参与哈希，
// 预算、风险偏好之类的附加上下文不影响结果。
func (p *MockProvider) Call(_ context.Context, payload ChatPayload) (string, error) {
	firstLine := payload.User
	if idx := strings.IndexByte(firstLine, '\n'); idx >= 0 {
		firstLine = firstLine[:idx]
	}
	s := stableScore(payload.System + "|" + strings.TrimSpace(firstLine))
	action := "hold"
	if s > 0.66 {
		action = "buy"
	} else if s < 0.33 {
		action = "sell"
	}
	conf := int(absFloat(s-0.5) * 2 * 100)
	return fmt.Sprintf(
		"Deterministic mock analysis; score=%.2f. No live model configured.\nConfidence: %d%%\nFinal action: %s",
		s, conf, action), nil
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
