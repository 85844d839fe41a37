package config

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
)

// Config 聚合了网关运行所需的全部配置项。
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Venues  VenuesConfig  `mapstructure:"venues"`
	Engine  EngineConfig  `mapstructure:"engine"`
	Journal JournalConfig `mapstructure:"journal"`
	Logging LoggingConfig `mapstructure:"logging"`
	Trades  []TradeConfig `mapstructure:"trades"`
}

// AppConfig 控制应用级参数。
type AppConfig struct {
	Environment string `mapstructure:"environment"`
}

// VenuesConfig 汇总各交易所的接入配置。
type VenuesConfig struct {
	OKX     OKXConfig     `mapstructure:"okx"`
	Bitget  BitgetConfig  `mapstructure:"bitget"`
	Bitflex BitflexConfig `mapstructure:"bitflex"`
}

// OKXConfig 描述 OKX 接入信息，下单委托给 ccxt。
type OKXConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	APIKey     string `mapstructure:"api_key"`
	APISecret  string `mapstructure:"api_secret"`
	Passphrase string `mapstructure:"passphrase"`
	UseSandbox bool   `mapstructure:"use_sandbox"`
}

// BitgetConfig 描述 Bitget 合约接入信息。
type BitgetConfig struct {
	Enabled        bool            `mapstructure:"enabled"`
	APIKey         string          `mapstructure:"api_key"`
	APISecret      string          `mapstructure:"api_secret"`
	Passphrase     string          `mapstructure:"passphrase"`
	BaseURL        string          `mapstructure:"base_url"`
	MarginCoin     string          `mapstructure:"margin_coin"`
	TimeInForce    string          `mapstructure:"time_in_force"`
	RequestTimeout time.Duration   `mapstructure:"request_timeout"`
	RateLimit      RateLimitConfig `mapstructure:"rate_limit"`
}

// BitflexConfig 描述自签名 REST 交易所的接入信息。
type BitflexConfig struct {
	Enabled        bool            `mapstructure:"enabled"`
	APIKey         string          `mapstructure:"api_key"`
	APISecret      string          `mapstructure:"api_secret"`
	BaseURL        string          `mapstructure:"base_url"`
	APIKeyHeader   string          `mapstructure:"api_key_header"`
	RequestTimeout time.Duration   `mapstructure:"request_timeout"`
	RateLimit      RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig 控制单交易所的请求频率。
type RateLimitConfig struct {
	PerSecond float64 `mapstructure:"per_second"`
	Burst     int     `mapstructure:"burst"`
}

// EngineConfig 控制批次执行的并发与截止时间。
type EngineConfig struct {
	MaxConcurrent       int           `mapstructure:"max_concurrent"`
	MaxInFlightPerVenue int64         `mapstructure:"max_in_flight_per_venue"`
	BatchTimeout        time.Duration `mapstructure:"batch_timeout"`
}

// JournalConfig 管理下单尝试流水的落盘。
type JournalConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Path     string `mapstructure:"path"`
	InMemory bool   `mapstructure:"in_memory"`
}

// LoggingConfig 控制日志输出。
type LoggingConfig struct {
	Level            string   `mapstructure:"level"`
	Encoding         string   `mapstructure:"encoding"`
	Development      bool     `mapstructure:"development"`
	OutputPaths      []string `mapstructure:"output_paths"`
	ErrorOutputPaths []string `mapstructure:"error_output_paths"`
}

// TradeConfig 为配置文件中声明的一笔交易意图。
type TradeConfig struct {
	Venue    string `mapstructure:"venue"`
	Symbol   string `mapstructure:"symbol"`
	Side     string `mapstructure:"side"`
	Type     string `mapstructure:"type"`
	Quantity string `mapstructure:"quantity"`
	Price    string `mapstructure:"price"`
	Repeat   int    `mapstructure:"repeat"`
}

// Validate 对配置进行基本校验。
// 启用的交易所必须持有完整凭证，缺失在任何交易所调用之前暴露。
func (c *Config) Validate() error {
	var err error

	if c.App.Environment == "" {
		err = multierr.Append(err, errors.New("app.environment 不能为空"))
	}

	if c.Venues.OKX.Enabled {
		if c.Venues.OKX.APIKey == "" || c.Venues.OKX.APISecret == "" || c.Venues.OKX.Passphrase == "" {
			err = multierr.Append(err, errors.New("venues.okx 需要 api_key、api_secret 与 passphrase"))
		}
	}
	if c.Venues.Bitget.Enabled {
		if c.Venues.Bitget.APIKey == "" || c.Venues.Bitget.APISecret == "" || c.Venues.Bitget.Passphrase == "" {
			err = multierr.Append(err, errors.New("venues.bitget 需要 api_key、api_secret 与 passphrase"))
		}
		if c.Venues.Bitget.RateLimit.PerSecond < 0 {
			err = multierr.Append(err, errors.New("venues.bitget.rate_limit.per_second 不能为负"))
		}
	}
	if c.Venues.Bitflex.Enabled {
		if c.Venues.Bitflex.APIKey == "" || c.Venues.Bitflex.APISecret == "" {
			err = multierr.Append(err, errors.New("venues.bitflex 需要 api_key 与 api_secret"))
		}
		if c.Venues.Bitflex.RateLimit.PerSecond < 0 {
			err = multierr.Append(err, errors.New("venues.bitflex.rate_limit.per_second 不能为负"))
		}
	}
	if !c.Venues.OKX.Enabled && !c.Venues.Bitget.Enabled && !c.Venues.Bitflex.Enabled {
		err = multierr.Append(err, errors.New("至少需要启用一个交易所"))
	}

	if c.Engine.MaxConcurrent <= 0 {
		err = multierr.Append(err, errors.New("engine.max_concurrent 必须大于0"))
	}
	if c.Engine.MaxInFlightPerVenue <= 0 {
		err = multierr.Append(err, errors.New("engine.max_in_flight_per_venue 必须大于0"))
	}
	if c.Engine.BatchTimeout < 0 {
		err = multierr.Append(err, errors.New("engine.batch_timeout 不能为负"))
	}

	if c.Journal.Enabled && c.Journal.Path == "" && !c.Journal.InMemory {
		err = multierr.Append(err, errors.New("journal.path 不能为空"))
	}

	if c.Logging.Level == "" {
		err = multierr.Append(err, errors.New("logging.level 不能为空"))
	}
	if c.Logging.Encoding == "" {
		err = multierr.Append(err, errors.New("logging.encoding 不能为空"))
	}
	if len(c.Logging.OutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.output_paths 至少包含一个输出目标"))
	}
	if len(c.Logging.ErrorOutputPaths) == 0 {
		err = multierr.Append(err, errors.New("logging.error_output_paths 至少包含一个输出目标"))
	}

	for i, trade := range c.Trades {
		if trade.Symbol == "" {
			err = multierr.Append(err, fmt.Errorf("trades[%d].symbol 不能为空", i))
		}
		if trade.Quantity == "" {
			err = multierr.Append(err, fmt.Errorf("trades[%d].quantity 不能为空", i))
		}
		if trade.Repeat < 0 {
			err = multierr.Append(err, fmt.Errorf("trades[%d].repeat 不能为负", i))
		}
	}

	if err != nil {
		return fmt.Errorf("配置校验失败: %w", err)
	}

	return nil
}
