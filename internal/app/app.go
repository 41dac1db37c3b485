// Package app wires configuration into running subsystems: the source
// resolver, the backtest engine, the agent ensemble and the HTTP server.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"tradecouncil/internal/agent"
	"tradecouncil/internal/backtest"
	"tradecouncil/internal/config"
	"tradecouncil/internal/config/loader"
	"tradecouncil/internal/gateway/provider"
	"tradecouncil/internal/logger"
	"tradecouncil/internal/market"
	"tradecouncil/internal/server"
	"tradecouncil/internal/source"
)

// App 持有所有子系统的根引用。
type App struct {
	cfg      *config.Config
	store    *market.Store
	resolver *source.Resolver
	registry *agent.Registry
	ensemble *agent.Ensemble
	personas *loader.PersonaSet
	server   *server.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	a := &App{cfg: cfg}

	if err := a.buildResolver(); err != nil {
		return nil, err
	}
	if err := a.buildEnsemble(); err != nil {
		return nil, err
	}

	srv, err := server.New(server.Config{
		Addr:     cfg.App.Listen,
		Resolver: a.resolver,
		Engine:   backtest.NewEngine(),
		Ensemble: a.ensemble,
		Registry: a.registry,
		Backtest: cfg.Backtest,
	})
	if err != nil {
		return nil, err
	}
	a.server = srv
	return a, nil
}

func (a *App) buildResolver() error {
	timeout := time.Duration(a.cfg.Sources.TimeoutSeconds) * time.Second
	var sources []source.BarSource
	for _, name := range a.cfg.Sources.Order {
		switch strings.ToLower(name) {
		case "yahoo":
			sources = append(sources, source.NewYahooSource("", timeout))
		case "stooq":
			sources = append(sources, source.NewStooqSource("", timeout))
		default:
			return fmt.Errorf("unknown source %q", name)
		}
	}

	if path := a.cfg.Sources.CachePath; path != "" {
		store, err := market.NewStore(path, time.Duration(a.cfg.Sources.CacheTTLMinutes)*time.Minute)
		if err != nil {
			return fmt.Errorf("opening bar cache: %w", err)
		}
		a.store = store
	}

	resolver, err := source.NewResolver(source.ResolverConfig{
		Sources:         sources,
		RateLimitPerMin: a.cfg.Sources.RateLimitPerMin,
		Cache:           a.store,
	})
	if err != nil {
		return err
	}
	a.resolver = resolver
	return nil
}

// buildEnsemble 注册默认合议成员：buffett、munger 两个叙事 agent 加
// technicals 规则 agent。注册顺序即默认选择顺序。
func (a *App) buildEnsemble() error {
	personas, err := loader.LoadPersonas(a.cfg.Agents.PersonaFile)
	if err != nil {
		return fmt.Errorf("loading personas: %w", err)
	}
	a.personas = personas

	p := a.buildProvider()
	logger.Infof("[app] model provider: %s", p.ID())

	timeout := time.Duration(a.cfg.Agents.TimeoutSeconds) * time.Second
	registry := agent.NewRegistry()
	for _, name := range []string{"buffett", "munger"} {
		if err := registry.Register(agent.NewNarrativeAgent(name, personas, p, timeout)); err != nil {
			return err
		}
	}
	if err := registry.Register(agent.NewTechnicalsAgent(a.resolver)); err != nil {
		return err
	}
	registry.Seal()

	a.registry = registry
	a.ensemble = agent.NewEnsemble(registry, a.cfg.Agents.MaxConcurrentTickers)
	return nil
}

// buildProvider 选择模型后端：显式 kind 优先，否则有 key 用 openai，
// 没 key 退回确定性 mock。
func (a *App) buildProvider() provider.ModelProvider {
	pc := a.cfg.Provider
	kind := strings.ToLower(pc.Kind)
	if kind == "mock" || (kind == "" && pc.APIKey == "") {
		return provider.NewMockProvider("mock")
	}
	client := &provider.OpenAIChatClient{
		BaseURL:    pc.BaseURL,
		APIKey:     pc.APIKey,
		Model:      pc.Model,
		Timeout:    time.Duration(pc.TimeoutSec) * time.Second,
		MaxRetries: pc.MaxRetries,
	}
	// 真实后端挂一层熔断，连续失败时快速拒绝而不是排队超时。
	return provider.NewBreakerProvider(provider.NewOpenAIModelProvider("openai", true, client), 5, 30*time.Second)
}

// Run 启动服务并阻塞到退出信号。
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	watchStop := make(chan struct{})
	defer close(watchStop)
	if err := a.personas.Watch(watchStop); err != nil {
		logger.Warnf("[app] persona watch disabled: %v", err)
	}

	defer func() {
		if a.store != nil {
			if err := a.store.Close(); err != nil {
				logger.Warnf("[app] closing bar cache: %v", err)
			}
		}
	}()
	return a.server.Start(ctx)
}
