package config

import (
	"fmt"
	"strings"
)

var knownSources = map[string]bool{"yahoo": true, "stooq": true}

func validate(cfg *Config) error {
	if len(cfg.Sources.Order) == 0 {
		return fmt.Errorf("sources.order cannot be empty")
	}
	for _, name := range cfg.Sources.Order {
		if !knownSources[strings.ToLower(name)] {
			return fmt.Errorf("sources.order: unknown source %q", name)
		}
	}
	if cfg.Backtest.FastWindow <= 0 || cfg.Backtest.SlowWindow <= 0 {
		return fmt.Errorf("backtest windows must be positive")
	}
	if cfg.Backtest.FastWindow >= cfg.Backtest.SlowWindow {
		return fmt.Errorf("backtest.fast_window must be smaller than slow_window")
	}
	if cfg.Backtest.InitialCash <= 0 {
		return fmt.Errorf("backtest.initial_cash must be positive")
	}
	if cfg.Backtest.FeeBps < 0 || cfg.Backtest.SlipBps < 0 {
		return fmt.Errorf("backtest fee/slip bps cannot be negative")
	}
	switch strings.ToLower(cfg.Provider.Kind) {
	case "", "openai", "mock":
	default:
		return fmt.Errorf("provider.kind must be openai or mock, got %q", cfg.Provider.Kind)
	}
	return nil
}
