package config

// Config 进程的全部可配置项，按子系统分节。
type Config struct {
	App      AppConfig      `yaml:"app"`
	Sources  SourcesConfig  `yaml:"sources"`
	Backtest BacktestConfig `yaml:"backtest"`
	Agents   AgentsConfig   `yaml:"agents"`
	Provider ProviderConfig `yaml:"provider"`
}

// AppConfig 服务级配置。
type AppConfig struct {
	Listen   string `yaml:"listen"`
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
	// LLMLogFile 非空时把每次模型调用的往返全文落盘。
	LLMLogFile string `yaml:"llm_log_file"`
}

// SourcesConfig 行情数据源链配置。
type SourcesConfig struct {
	// Order 按优先级排列的数据源名（yahoo / stooq）。
	Order           []string `yaml:"order"`
	RateLimitPerMin int      `yaml:"rate_limit_per_min"`
	TimeoutSeconds  int      `yaml:"timeout_seconds"`
	// CachePath 为空时禁用行情缓存。
	CachePath       string `yaml:"cache_path"`
	CacheTTLMinutes int    `yaml:"cache_ttl_minutes"`
}

// BacktestConfig 回测默认参数；每次请求可覆盖。
type BacktestConfig struct {
	FastWindow  int     `yaml:"fast_window"`
	SlowWindow  int     `yaml:"slow_window"`
	InitialCash float64 `yaml:"initial_cash"`
	FeeBps      float64 `yaml:"fee_bps"`
	SlipBps     float64 `yaml:"slip_bps"`
}

// AgentsConfig 决策合议配置。
type AgentsConfig struct {
	// PersonaFile 叙事型 agent 的人设文件；为空用内置人设。
	PersonaFile          string `yaml:"persona_file"`
	TimeoutSeconds       int    `yaml:"timeout_seconds"`
	MaxConcurrentTickers int    `yaml:"max_concurrent_tickers"`
}

// ProviderConfig 模型后端配置。未配置 APIKey 时自动退到确定性 mock。
type ProviderConfig struct {
	// Kind: openai | mock。留空按 APIKey 是否存在自动选择。
	Kind       string `yaml:"kind"`
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"api_key"`
	Model      string `yaml:"model"`
	TimeoutSec int    `yaml:"timeout_seconds"`
	MaxRetries int    `yaml:"max_retries"`
}
