package source

import (
	"context"
	"fmt"
	"strings"

	"tradecouncil/internal/logger"
	"tradecouncil/internal/market"

	"golang.org/x/time/rate"
)

// HintAuto 表示按优先级依次尝试所有数据源。
const HintAuto = "auto"

// Resolved 是一次成功解析的结果；Attempts 保留在成功之前失败过的
// 数据源，便于调用方记录回退轨迹。
type Resolved struct {
	Series   market.PriceSeries
	Source   string
	Attempts []Attempt
}

// ResolverConfig 配置数据源链。
type ResolverConfig struct {
	// Sources 按优先级排列（便宜的在前）；回退是严格串行的，
	// 因为意图是"优先用最省的"，不是"谁快用谁"。
	Sources         []BarSource
	RateLimitPerMin int
	Cache           *market.Store
}

// Resolver 依次尝试数据源，直到有一个成功；每个源单次请求只尝试
// 一次，不做源内重试（这是刻意的策略选择）。
type Resolver struct {
	order   []BarSource
	byName  map[string]BarSource
	limiter *rate.Limiter
	cache   *market.Store
}

func NewResolver(cfg ResolverConfig) (*Resolver, error) {
	if len(cfg.Sources) == 0 {
		return nil, fmt.Errorf("至少需要一个数据源")
	}
	perSec := rate.Limit(float64(cfg.RateLimitPerMin) / 60.0)
	if cfg.RateLimitPerMin <= 0 {
		perSec = 4
	}
	r := &Resolver{
		order:   append([]BarSource(nil), cfg.Sources...),
		byName:  make(map[string]BarSource, len(cfg.Sources)),
		limiter: rate.NewLimiter(perSec, 2),
		cache:   cfg.Cache,
	}
	for _, s := range cfg.Sources {
		name := strings.ToLower(s.Name())
		if _, dup := r.byName[name]; dup {
			return nil, fmt.Errorf("数据源名称重复: %s", name)
		}
		r.byName[name] = s
	}
	return r, nil
}

// SourceNames 按优先级返回已注册的数据源名。
func (r *Resolver) SourceNames() []string {
	out := make([]string, 0, len(r.order))
	for _, s := range r.order {
		out = append(out, s.Name())
	}
	return out
}

// Resolve 按 hint 选择数据源：HintAuto（或空）走优先级回退链，
// 指定名称则只试那一个并原样传播它的失败。
func (r *Resolver) Resolve(ctx context.Context, req Request, hint string) (Resolved, error) {
	hint = strings.ToLower(strings.TrimSpace(hint))
	if r.cache != nil {
		if series, src, ok := r.cache.Get(ctx, req.Ticker, req.Range, req.Interval); ok {
			if hint == "" || hint == HintAuto || hint == strings.ToLower(src) {
				logger.Debugf("[source] cache hit %s %s/%s (%s)", req.Ticker, req.Range, req.Interval, src)
				return Resolved{Series: series, Source: src}, nil
			}
		}
	}

	candidates := r.order
	named := hint != "" && hint != HintAuto
	if named {
		s, ok := r.byName[hint]
		if !ok {
			return Resolved{}, fmt.Errorf("未知数据源: %s", hint)
		}
		candidates = []BarSource{s}
	}

	var attempts []Attempt
	var lastErr error
	for _, s := range candidates {
		if err := r.limiter.Wait(ctx); err != nil {
			attempts = append(attempts, Attempt{Source: s.Name(), Error: err.Error()})
			lastErr = err
			break
		}
		series, err := s.Fetch(ctx, req)
		if err != nil {
			logger.Warnf("[source] %s failed for %s: %v", s.Name(), req.Ticker, err)
			attempts = append(attempts, Attempt{Source: s.Name(), Error: err.Error()})
			lastErr = err
			continue
		}
		if r.cache != nil {
			if cerr := r.cache.Put(ctx, req.Ticker, req.Range, req.Interval, s.Name(), series); cerr != nil {
				logger.Debugf("[source] cache put failed: %v", cerr)
			}
		}
		return Resolved{Series: series, Source: s.Name(), Attempts: attempts}, nil
	}
	if named && lastErr != nil {
		// 指定了单一数据源：直接传播该源的错误，不再包一层聚合。
		return Resolved{}, lastErr
	}
	return Resolved{}, &AllSourcesFailed{Ticker: req.Ticker, Attempts: attempts}
}
