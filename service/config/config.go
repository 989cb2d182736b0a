package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	ProviderAlphaVantage = "alphavantage"
	ProviderAlpaca       = "alpaca"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	HttpAddr                      string `mapstructure:"http_addr"`
	PriceProvider                 string `mapstructure:"price_provider"`
	AlphaVantageApiKey            string `mapstructure:"alphavantage_api_key"`
	AlphaVantageRequestsPerMinute int    `mapstructure:"alphavantage_requests_per_minute"`
	AlphaVantageAdjusted          bool   `mapstructure:"alphavantage_adjusted"`
	AlpacaApiKey                  string `mapstructure:"alpaca_api_key"`
	AlpacaApiSecret               string `mapstructure:"alpaca_api_secret"`
	BenchmarkSymbol               string `mapstructure:"benchmark_symbol"`
	FetchWorkers                  int    `mapstructure:"fetch_workers"`
	LogLevel                      string `mapstructure:"log_level"`
}

var defaults = map[string]any{
	"http_addr":                        ":8080",
	"price_provider":                   ProviderAlphaVantage,
	"alphavantage_api_key":             "",
	"alphavantage_requests_per_minute": 5,
	"alphavantage_adjusted":            false,
	"alpaca_api_key":                   "",
	"alpaca_api_secret":                "",
	"benchmark_symbol":                 "SPY",
	"fetch_workers":                    4,
	"log_level":                        "info",
}

// Load reads the given .env files, the ones that exist, into the process environment and
// then builds the config from environment variables over the defaults.
// Variables already in the environment win over the files.
func Load(envFiles ...string) (*Config, error) {
	present := make([]string, 0, len(envFiles))
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}

	if len(present) > 0 {
		if err := godotenv.Load(present...); err != nil {
			return nil, fmt.Errorf("error loading env files: %w", err)
		}
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error reading configuration: %w", err)
	}

	cfg.PriceProvider = strings.ToLower(strings.TrimSpace(cfg.PriceProvider))
	cfg.BenchmarkSymbol = strings.ToUpper(strings.TrimSpace(cfg.BenchmarkSymbol))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.PriceProvider {
	case ProviderAlphaVantage:
		if c.AlphaVantageApiKey == "" {
			return fmt.Errorf("%w: ALPHAVANTAGE_API_KEY is required for the %s provider", ErrInvalidConfig, c.PriceProvider)
		}
		if c.AlphaVantageRequestsPerMinute <= 0 {
			return fmt.Errorf("%w: ALPHAVANTAGE_REQUESTS_PER_MINUTE must be positive", ErrInvalidConfig)
		}
	case ProviderAlpaca:
		if c.AlpacaApiKey == "" || c.AlpacaApiSecret == "" {
			return fmt.Errorf("%w: ALPACA_API_KEY and ALPACA_API_SECRET are required for the %s provider", ErrInvalidConfig, c.PriceProvider)
		}
	default:
		return fmt.Errorf("%w: unknown PRICE_PROVIDER %q", ErrInvalidConfig, c.PriceProvider)
	}

	if c.FetchWorkers <= 0 {
		return fmt.Errorf("%w: FETCH_WORKERS must be positive", ErrInvalidConfig)
	}

	if c.BenchmarkSymbol == "" {
		return fmt.Errorf("%w: BENCHMARK_SYMBOL is empty", ErrInvalidConfig)
	}

	return nil
}
