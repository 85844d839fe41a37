package config

import (
	"errors"
	"fmt"
	"strings"

	mapstructure "github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	defaultConfigPath = "configs/config.yaml"
	envPrefix         = "gateway"
)

// Load 读取配置文件并结合环境变量返回 Config。
// 交易所凭证额外绑定到约定的 <VENUE>_API_KEY 等环境变量，
// 环境变量优先于配置文件。
func Load(path string) (*Config, error) {
	v := viper.New()

	if path == "" {
		path = defaultConfigPath
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	replacer := strings.NewReplacer(".", "_")
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()

	bindCredentialEnv(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("未找到配置文件 %q: %w", path, err)
		}
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func bindCredentialEnv(v *viper.Viper) {
	_ = v.BindEnv("venues.okx.api_key", "OKX_API_KEY")
	_ = v.BindEnv("venues.okx.api_secret", "OKX_SECRET_KEY")
	_ = v.BindEnv("venues.okx.passphrase", "OKX_PASSPHRASE")

	_ = v.BindEnv("venues.bitget.api_key", "BITGET_API_KEY")
	_ = v.BindEnv("venues.bitget.api_secret", "BITGET_SECRET_KEY")
	_ = v.BindEnv("venues.bitget.passphrase", "BITGET_PASSPHRASE")

	_ = v.BindEnv("venues.bitflex.api_key", "BITFLEX_API_KEY")
	_ = v.BindEnv("venues.bitflex.api_secret", "BITFLEX_API_SECRET")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.environment", "development")

	v.SetDefault("venues.okx.enabled", false)
	v.SetDefault("venues.okx.use_sandbox", false)

	v.SetDefault("venues.bitget.enabled", false)
	v.SetDefault("venues.bitget.base_url", "https://api.bitget.com")
	v.SetDefault("venues.bitget.margin_coin", "USDT")
	v.SetDefault("venues.bitget.time_in_force", "normal")
	v.SetDefault("venues.bitget.request_timeout", "10s")
	v.SetDefault("venues.bitget.rate_limit.per_second", 10)
	v.SetDefault("venues.bitget.rate_limit.burst", 2)

	v.SetDefault("venues.bitflex.enabled", false)
	v.SetDefault("venues.bitflex.base_url", "https://api.bitflex.com")
	v.SetDefault("venues.bitflex.api_key_header", "X-Venue-APIKEY")
	v.SetDefault("venues.bitflex.request_timeout", "10s")
	v.SetDefault("venues.bitflex.rate_limit.per_second", 10)
	v.SetDefault("venues.bitflex.rate_limit.burst", 2)

	v.SetDefault("engine.max_concurrent", 8)
	v.SetDefault("engine.max_in_flight_per_venue", 4)
	v.SetDefault("engine.batch_timeout", "2m")

	v.SetDefault("journal.enabled", false)
	v.SetDefault("journal.path", "data/order_attempts.db")
	v.SetDefault("journal.in_memory", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.encoding", "console")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.output_paths", []string{"stdout"})
	v.SetDefault("logging.error_output_paths", []string{"stderr"})
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
