// Package config provides the immutable exchange registry for the
// candlestick client. The registry maps each supported exchange to its API
// URLs and the sampling intervals its candles endpoint accepts.
//
// Configuration is loaded exactly once at process start and the resulting
// value is passed by reference into each component; nothing rereads the
// file per call.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Sam-analyst/crypto-trading-project/internal/errs"
)

// ExchangeConfig describes one supported exchange.
type ExchangeConfig struct {
	// Name is the registry key, always lowercase.
	Name string `yaml:"-"`

	// BaseURL is the endpoint listing the exchange's trading pairs.
	BaseURL string `yaml:"base_url"`

	// CandlestickURL is the candles endpoint template. The literal
	// "{ticker_id}" placeholder is replaced with the requested ticker.
	CandlestickURL string `yaml:"candlestick_url"`

	// TimeIntervals maps the interval symbols the exchange accepts to
	// their durations in seconds, the value the API expects as granularity.
	TimeIntervals map[string]int64 `yaml:"time_intervals"`
}

// Intervals returns the exchange's supported interval symbols ordered from
// shortest to longest duration.
func (e ExchangeConfig) Intervals() []string {
	symbols := make([]string, 0, len(e.TimeIntervals))
	for symbol := range e.TimeIntervals {
		symbols = append(symbols, symbol)
	}
	sort.Slice(symbols, func(a, b int) bool {
		return e.TimeIntervals[symbols[a]] < e.TimeIntervals[symbols[b]]
	})
	return symbols
}

// Config is the loaded exchange registry. It is immutable after Load or
// Default returns; share one value across the whole process.
type Config struct {
	exchanges map[string]ExchangeConfig
}

// Load reads the registry from a YAML file. The file maps exchange names to
// their settings:
//
//	coinbase:
//	  base_url: https://api.exchange.coinbase.com/products/
//	  candlestick_url: https://api.exchange.coinbase.com/products/{ticker_id}/candles
//	  time_intervals:
//	    1m: 60
//	    ...
//
// Every entry is validated; a registry with no usable exchanges is an error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	raw := make(map[string]ExchangeConfig)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return build(raw)
}

// Default returns the built-in registry, currently Coinbase only. It is used
// when no config file is supplied.
func Default() *Config {
	cfg, err := build(map[string]ExchangeConfig{
		"coinbase": {
			BaseURL:        "https://api.exchange.coinbase.com/products/",
			CandlestickURL: "https://api.exchange.coinbase.com/products/{ticker_id}/candles",
			TimeIntervals: map[string]int64{
				"1m":  60,
				"5m":  300,
				"15m": 900,
				"1h":  3600,
				"6h":  21600,
				"1d":  86400,
			},
		},
	})
	if err != nil {
		// The built-in registry is static and always valid.
		panic(fmt.Sprintf("invalid built-in config: %v", err))
	}
	return cfg
}

func build(raw map[string]ExchangeConfig) (*Config, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("config defines no exchanges")
	}

	exchanges := make(map[string]ExchangeConfig, len(raw))
	for name, ec := range raw {
		key := strings.ToLower(strings.TrimSpace(name))
		ec.Name = key

		if err := validateExchange(ec); err != nil {
			return nil, fmt.Errorf("exchange %q: %w", key, err)
		}
		exchanges[key] = ec
	}

	return &Config{exchanges: exchanges}, nil
}

func validateExchange(ec ExchangeConfig) error {
	if ec.Name == "" {
		return fmt.Errorf("exchange name cannot be empty")
	}
	if ec.BaseURL == "" {
		return fmt.Errorf("base_url cannot be empty")
	}
	if ec.CandlestickURL == "" {
		return fmt.Errorf("candlestick_url cannot be empty")
	}
	if !strings.Contains(ec.CandlestickURL, "{ticker_id}") {
		return fmt.Errorf("candlestick_url must contain the {ticker_id} placeholder")
	}
	if len(ec.TimeIntervals) == 0 {
		return fmt.Errorf("time_intervals cannot be empty")
	}
	for symbol, seconds := range ec.TimeIntervals {
		if seconds <= 0 {
			return fmt.Errorf("interval %q has non-positive duration %d", symbol, seconds)
		}
	}
	return nil
}

// Exchange resolves an exchange by name, case-insensitively. Unknown names
// return an errs.UnknownExchangeError listing the supported set.
func (c *Config) Exchange(name string) (ExchangeConfig, error) {
	ec, ok := c.exchanges[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return ExchangeConfig{}, &errs.UnknownExchangeError{
			Exchange:  name,
			Supported: c.ValidExchanges(),
		}
	}
	return ec, nil
}

// ValidExchanges returns the sorted names of every configured exchange.
func (c *Config) ValidExchanges() []string {
	names := make([]string, 0, len(c.exchanges))
	for name := range c.exchanges {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
