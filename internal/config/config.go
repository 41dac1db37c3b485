package config

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// EnvConfigPath 指定配置文件路径的环境变量名。
const EnvConfigPath = "TRADECOUNCIL_CONFIG"

// Load 读取 YAML 配置并补默认值。path 为空时依次尝试环境变量与
// ./configs/config.yaml；都不存在就返回纯默认配置。
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		if _, err := os.Stat("configs/config.yaml"); err == nil {
			path = "configs/config.yaml"
		}
	}

	cfg := defaultConfig()
	if path != "" {
		v := viper.New()
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file failed (%s): %w", path, err)
		}
		if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
			dc.TagName = "yaml"
			dc.WeaklyTypedInput = true
		}); err != nil {
			return nil, fmt.Errorf("parsing config failed (%s): %w", path, err)
		}
	}

	// API key 不进配置文件,走环境变量。
	if cfg.Provider.APIKey == "" {
		cfg.Provider.APIKey = os.Getenv("TRADECOUNCIL_API_KEY")
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
