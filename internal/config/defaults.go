package config

// defaultConfig 返回一份开箱即用的配置：yahoo 优先、stooq 兜底、
// 无缓存、mock 模型后端。
func defaultConfig() Config {
	return Config{
		App: AppConfig{
			Listen:   ":8080",
			LogLevel: "info",
		},
		Sources: SourcesConfig{
			Order:           []string{"yahoo", "stooq"},
			RateLimitPerMin: 120,
			TimeoutSeconds:  10,
			CacheTTLMinutes: 15,
		},
		Backtest: BacktestConfig{
			FastWindow:  20,
			SlowWindow:  50,
			InitialCash: 10000,
			FeeBps:      5,
			SlipBps:     2,
		},
		Agents: AgentsConfig{
			TimeoutSeconds:       30,
			MaxConcurrentTickers: 4,
		},
		Provider: ProviderConfig{
			BaseURL:    "https://api.openai.com/v1",
			Model:      "gpt-4o-mini",
			TimeoutSec: 60,
			MaxRetries: 2,
		},
	}
}
