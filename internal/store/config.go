package store

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Mode   string `yaml:"mode"`
	Broker struct {
		Provider       string `yaml:"provider"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		Exchange       string `yaml:"exchange"`
		Product        string `yaml:"product"`
	} `yaml:"broker"`
	Paper struct {
		StartingCash float64 `yaml:"starting_cash"`
	} `yaml:"paper"`
	Market struct {
		Timezone    string `yaml:"timezone"`
		Open        string `yaml:"open"`
		Close       string `yaml:"close"`
		BypassClock bool   `yaml:"bypass_clock"`
	} `yaml:"market"`
	Loop struct {
		CycleIntervalSeconds int `yaml:"cycle_interval_seconds"`
		MarketWaitSeconds    int `yaml:"market_wait_seconds"`
		Retry                struct {
			Strategy    string  `yaml:"strategy"`
			BaseSeconds int     `yaml:"base_seconds"`
			MaxSeconds  int     `yaml:"max_seconds"`
			Multiplier  float64 `yaml:"multiplier"`
		} `yaml:"retry"`
	} `yaml:"loop"`
	Universe struct {
		Mode            string `yaml:"mode"`
		WatchlistFile   string `yaml:"watchlist_file"`
		ListingURL      string `yaml:"listing_url"`
		ListingSelector string `yaml:"listing_selector"`
	} `yaml:"universe"`
	Discovery struct {
		Query       string  `yaml:"query"`
		Role        string  `yaml:"role"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float32 `yaml:"temperature"`
	} `yaml:"discovery"`
	Extract struct {
		MaxCandidates int      `yaml:"max_candidates"`
		Ignore        []string `yaml:"ignore"`
	} `yaml:"extract"`
	Validation struct {
		AllowedTypes      []string `yaml:"allowed_types"`
		RequestsPerSecond float64  `yaml:"requests_per_second"`
	} `yaml:"validate"`
	Filter struct {
		ThresholdPct float64 `yaml:"threshold_pct"`
		Reference    string  `yaml:"reference"`
	} `yaml:"filter"`
	Sentiment struct {
		Policy string `yaml:"policy"`
	} `yaml:"sentiment"`
	Budget struct {
		PerSymbol float64 `yaml:"per_symbol"`
	} `yaml:"budget"`
	LLM struct {
		Provider       string `yaml:"provider"`
		Model          string `yaml:"model"`
		BaseURL        string `yaml:"base_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"llm"`
	News struct {
		Enabled        bool `yaml:"enabled"`
		MaxHeadlines   int  `yaml:"max_headlines"`
		TimeoutSeconds int  `yaml:"timeout_seconds"`
	} `yaml:"news"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// BudgetPerSymbol is the immutable per-order spending ceiling.
func (c *Config) BudgetPerSymbol() decimal.Decimal {
	return decimal.NewFromFloat(c.Budget.PerSymbol)
}

func (c *Config) CycleInterval() time.Duration {
	return time.Duration(c.Loop.CycleIntervalSeconds) * time.Second
}

func (c *Config) MarketWait() time.Duration {
	return time.Duration(c.Loop.MarketWaitSeconds) * time.Second
}

func (c *Config) Validate() error {
	if c.Mode != "DRY_RUN" && c.Mode != "LIVE" {
		return fmt.Errorf("invalid mode '%s': must be 'DRY_RUN' or 'LIVE'", c.Mode)
	}
	if c.Broker.Provider != "ALPACA" && c.Broker.Provider != "ZERODHA" {
		return fmt.Errorf("broker.provider must be 'ALPACA' or 'ZERODHA', got '%s'", c.Broker.Provider)
	}
	if _, err := time.LoadLocation(c.Market.Timezone); err != nil {
		return fmt.Errorf("market.timezone '%s': %w", c.Market.Timezone, err)
	}
	if _, err := time.Parse("15:04", c.Market.Open); err != nil {
		return fmt.Errorf("market.open '%s' must be HH:MM", c.Market.Open)
	}
	if _, err := time.Parse("15:04", c.Market.Close); err != nil {
		return fmt.Errorf("market.close '%s' must be HH:MM", c.Market.Close)
	}
	if c.Universe.Mode != "GENERATED" && c.Universe.Mode != "WATCHLIST" {
		return fmt.Errorf("universe.mode must be 'GENERATED' or 'WATCHLIST', got '%s'", c.Universe.Mode)
	}
	if c.Universe.Mode == "WATCHLIST" && c.Universe.WatchlistFile == "" {
		return errors.New("universe.watchlist_file is required in WATCHLIST mode")
	}
	if c.Filter.Reference != "session_open" && c.Filter.Reference != "two_day_close" {
		return fmt.Errorf("filter.reference must be 'session_open' or 'two_day_close', got '%s'", c.Filter.Reference)
	}
	switch c.Sentiment.Policy {
	case "per_cycle", "per_symbol", "off":
	default:
		return fmt.Errorf("sentiment.policy must be 'per_cycle', 'per_symbol' or 'off', got '%s'", c.Sentiment.Policy)
	}
	if c.Budget.PerSymbol <= 0 {
		return fmt.Errorf("budget.per_symbol must be positive, got %.2f", c.Budget.PerSymbol)
	}
	if c.Discovery.MaxTokens <= 0 {
		return fmt.Errorf("discovery.max_tokens must be positive, got %d", c.Discovery.MaxTokens)
	}
	if c.Loop.Retry.Strategy != "EXPONENTIAL" && c.Loop.Retry.Strategy != "FIXED" {
		return fmt.Errorf("loop.retry.strategy must be 'EXPONENTIAL' or 'FIXED', got '%s'", c.Loop.Retry.Strategy)
	}
	return nil
}

// Default returns a config populated with the defaults LoadConfig applies.
func Default() *Config {
	var c Config
	c.applyDefaults()
	return &c
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	c.applyDefaults()
	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Mode == "" {
		c.Mode = "DRY_RUN"
	}
	c.Mode = strings.ToUpper(c.Mode)
	if c.Broker.Provider == "" {
		c.Broker.Provider = "ALPACA"
	}
	c.Broker.Provider = strings.ToUpper(c.Broker.Provider)
	if c.Broker.TimeoutSeconds == 0 {
		c.Broker.TimeoutSeconds = 15
	}
	if c.Broker.Exchange == "" {
		c.Broker.Exchange = "NSE"
	}
	if c.Broker.Product == "" {
		c.Broker.Product = "CNC"
	}
	if c.Paper.StartingCash == 0 {
		c.Paper.StartingCash = 10000
	}
	if c.Market.Timezone == "" {
		c.Market.Timezone = "America/New_York"
	}
	if c.Market.Open == "" {
		c.Market.Open = "09:30"
	}
	if c.Market.Close == "" {
		c.Market.Close = "16:00"
	}
	if c.Loop.CycleIntervalSeconds == 0 {
		c.Loop.CycleIntervalSeconds = 60
	}
	if c.Loop.MarketWaitSeconds == 0 {
		c.Loop.MarketWaitSeconds = 60
	}
	if c.Loop.Retry.Strategy == "" {
		c.Loop.Retry.Strategy = "EXPONENTIAL"
	}
	c.Loop.Retry.Strategy = strings.ToUpper(c.Loop.Retry.Strategy)
	if c.Loop.Retry.BaseSeconds == 0 {
		c.Loop.Retry.BaseSeconds = 5
	}
	if c.Loop.Retry.MaxSeconds == 0 {
		c.Loop.Retry.MaxSeconds = 300
	}
	if c.Loop.Retry.Multiplier == 0 {
		c.Loop.Retry.Multiplier = 2
	}
	if c.Universe.Mode == "" {
		c.Universe.Mode = "GENERATED"
	}
	c.Universe.Mode = strings.ToUpper(c.Universe.Mode)
	if c.Universe.ListingSelector == "" {
		c.Universe.ListingSelector = "td a"
	}
	if c.Discovery.Query == "" {
		c.Discovery.Query = "strong buy ETF fund stocks Nasdaq MarketWatch"
	}
	if c.Discovery.Role == "" {
		c.Discovery.Role = "Role: stock buyer of strong buy ETF funds or stocks"
	}
	if c.Discovery.MaxTokens == 0 {
		c.Discovery.MaxTokens = 150
	}
	if c.Discovery.Temperature == 0 {
		c.Discovery.Temperature = 0.7
	}
	if c.Extract.Ignore == nil {
		c.Extract.Ignore = []string{"ETF", "ETFS", "CEO", "USA", "NYSE", "NASDAQ", "AI", "IPO", "GPT"}
	}
	if len(c.Validation.AllowedTypes) == 0 {
		c.Validation.AllowedTypes = []string{"EQUITY", "ETF"}
	}
	if c.Validation.RequestsPerSecond == 0 {
		c.Validation.RequestsPerSecond = 5
	}
	if c.Filter.ThresholdPct == 0 {
		c.Filter.ThresholdPct = 0.35
	}
	if c.Filter.Reference == "" {
		c.Filter.Reference = "session_open"
	}
	if c.Sentiment.Policy == "" {
		c.Sentiment.Policy = "per_cycle"
	}
	if c.Budget.PerSymbol == 0 {
		c.Budget.PerSymbol = 275
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "NOOP"
	}
	c.LLM.Provider = strings.ToUpper(c.LLM.Provider)
	if c.LLM.TimeoutSeconds == 0 {
		c.LLM.TimeoutSeconds = 30
	}
	if c.News.MaxHeadlines == 0 {
		c.News.MaxHeadlines = 10
	}
	if c.News.TimeoutSeconds == 0 {
		c.News.TimeoutSeconds = 20
	}
}

// applyEnv lets the operator flip the handful of run-time switches without
// editing the YAML file.
func (c *Config) applyEnv() {
	if v := os.Getenv("BOT_MODE"); v != "" {
		c.Mode = strings.ToUpper(v)
	}
	if v := os.Getenv("BOT_BYPASS_CLOCK"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Market.BypassClock = b
		}
	}
	if v := os.Getenv("BOT_BUDGET_PER_SYMBOL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Budget.PerSymbol = f
		}
	}
}
