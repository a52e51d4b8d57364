package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"stock-signal-bot/internal/broker/alpaca"
	"stock-signal-bot/internal/broker/brokerobs"
	"stock-signal-bot/internal/broker/paper"
	"stock-signal-bot/internal/broker/zerodha"
	"stock-signal-bot/internal/clock"
	"stock-signal-bot/internal/discovery"
	"stock-signal-bot/internal/engine"
	"stock-signal-bot/internal/engine/engineobs"
	"stock-signal-bot/internal/interfaces"
	"stock-signal-bot/internal/llm/claude"
	"stock-signal-bot/internal/llm/deepseek"
	"stock-signal-bot/internal/llm/llmobs"
	"stock-signal-bot/internal/llm/noop"
	"stock-signal-bot/internal/llm/openai"
	"stock-signal-bot/internal/logger"
	"stock-signal-bot/internal/marketdata"
	"stock-signal-bot/internal/marketdata/marketdataobs"
	"stock-signal-bot/internal/news"
	"stock-signal-bot/internal/orchestrator"
	"stock-signal-bot/internal/sentiment"
	"stock-signal-bot/internal/store"
	"stock-signal-bot/internal/types"
)

const marketDataTimeout = 15 * time.Second

// initializeSystem loads .env and sets up logging and tracing.
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Debug(context.Background(), "Logging initialized",
		"detailed", logger.IsDebugEnabled(),
		"tracing", logger.IsTracingEnabled(),
	)
	return nil
}

func loadConfig(ctx context.Context, path string) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	return cfg, nil
}

// initializeMarketData builds the throttled accessor over Yahoo Finance.
func initializeMarketData(ctx context.Context, cfg *store.Config) (*marketdata.Accessor, error) {
	ref, err := marketdata.ReferenceByName(cfg.Filter.Reference)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(cfg.Market.Timezone)
	if err != nil {
		return nil, types.NewError(types.KindConfig, "initializeMarketData", err)
	}

	provider := marketdataobs.Wrap(marketdata.NewYahoo(marketDataTimeout))
	logger.Info(ctx, "Market data ready", "reference", ref.Name(), "requests_per_second", cfg.Validation.RequestsPerSecond)

	return marketdata.NewAccessor(provider, ref, loc,
		marketdata.WithRateLimit(cfg.Validation.RequestsPerSecond),
		marketdata.WithTimeout(marketDataTimeout),
	), nil
}

// initializeBroker returns the simulated broker in DRY_RUN and the configured
// provider in LIVE, wrapped with observability.
func initializeBroker(ctx context.Context, cfg *store.Config, prices paper.PriceSource) (interfaces.Broker, error) {
	timeout := time.Duration(cfg.Broker.TimeoutSeconds) * time.Second

	if cfg.Mode == "DRY_RUN" {
		logger.Warn(ctx, "Running in DRY_RUN mode - orders will be simulated", "starting_cash", cfg.Paper.StartingCash)
		return brokerobs.Wrap(paper.New(decimal.NewFromFloat(cfg.Paper.StartingCash), prices)), nil
	}

	var brk interfaces.Broker
	switch cfg.Broker.Provider {
	case "ZERODHA":
		z, err := zerodha.NewZerodha(zerodha.Params{
			APIKey:      os.Getenv("KITE_API_KEY"),
			AccessToken: os.Getenv("KITE_ACCESS_TOKEN"),
			Exchange:    cfg.Broker.Exchange,
			Product:     cfg.Broker.Product,
			Timeout:     timeout,
		})
		if err != nil {
			return nil, err
		}
		brk = z
	default:
		a, err := alpaca.New(alpaca.Params{
			KeyID:     os.Getenv("APCA_API_KEY_ID"),
			SecretKey: os.Getenv("APCA_API_SECRET_KEY"),
			BaseURL:   os.Getenv("APCA_API_BASE_URL"),
			Timeout:   timeout,
		})
		if err != nil {
			return nil, err
		}
		brk = a
	}

	logger.Warn(ctx, "Running in LIVE mode - orders will be sent to the broker", "provider", cfg.Broker.Provider)
	return brokerobs.Wrap(brk), nil
}

// initializeGenerator picks the text generator named by llm.provider.
func initializeGenerator(ctx context.Context, cfg *store.Config) (interfaces.Generator, error) {
	timeout := time.Duration(cfg.LLM.TimeoutSeconds) * time.Second

	var gen interfaces.Generator
	switch cfg.LLM.Provider {
	case "OPENAI":
		g, err := openai.New(ctx, openai.Params{
			APIKey:    os.Getenv("OPENAI_API_KEY"),
			BaseURL:   cfg.LLM.BaseURL,
			Model:     cfg.LLM.Model,
			MaxTokens: cfg.Discovery.MaxTokens,
			Timeout:   timeout,
		})
		if err != nil {
			return nil, err
		}
		gen = g
	case "DEEPSEEK":
		g, err := deepseek.New(ctx, deepseek.Params{
			APIKey:    os.Getenv("DEEPSEEK_API_KEY"),
			BaseURL:   cfg.LLM.BaseURL,
			Model:     cfg.LLM.Model,
			MaxTokens: cfg.Discovery.MaxTokens,
			Timeout:   timeout,
		})
		if err != nil {
			return nil, err
		}
		gen = g
	case "CLAUDE":
		g, err := claude.New(claude.Params{
			APIKey:   os.Getenv("CLAUDE_API_KEY"),
			Endpoint: cfg.LLM.BaseURL,
			Model:    cfg.LLM.Model,
			Timeout:  timeout,
		})
		if err != nil {
			return nil, err
		}
		gen = g
	default:
		gen = noop.NewGenerator()
		logger.Warn(ctx, "No LLM provider configured - using Noop generator (no candidates)")
	}

	return llmobs.Wrap(gen), nil
}

// initializeClassifier reuses the generator for one-word sentiment labels.
func initializeClassifier(ctx context.Context, cfg *store.Config, gen interfaces.Generator) interfaces.Classifier {
	if cfg.LLM.Provider == "NOOP" {
		if cfg.Sentiment.Policy != string(sentiment.Off) {
			logger.Warn(ctx, "Noop classifier answers NEUTRAL - the sentiment gate will stay closed")
		}
		return llmobs.WrapClassifier(noop.Classifier{})
	}
	return llmobs.WrapClassifier(sentiment.NewLLMClassifier(gen))
}

func initializeNews(ctx context.Context, cfg *store.Config) interfaces.HeadlineSource {
	if !cfg.News.Enabled {
		if cfg.Universe.Mode == engine.UniverseWatchlist && cfg.Sentiment.Policy == string(sentiment.PerCycle) {
			logger.Warn(ctx, "Watch-list mode with news disabled gives the sentiment gate no text")
		}
		return nil
	}
	return news.NewService(&news.ServiceConfig{
		MaxHeadlines:   cfg.News.MaxHeadlines,
		CacheDuration:  10 * time.Minute,
		ScraperTimeout: time.Duration(cfg.News.TimeoutSeconds) * time.Second,
		Enabled:        true,
	})
}

func loadWatchlist(ctx context.Context, cfg *store.Config) ([]types.Symbol, error) {
	if cfg.Universe.WatchlistFile == "" {
		return nil, nil
	}
	syms, err := discovery.LoadWatchlist(cfg.Universe.WatchlistFile)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "Watch-list loaded", "file", cfg.Universe.WatchlistFile, "symbols", len(syms))
	return syms, nil
}

// initializeEngine wires every collaborator into one cycle engine.
func initializeEngine(ctx context.Context, cfg *store.Config) (interfaces.Engine, error) {
	md, err := initializeMarketData(ctx, cfg)
	if err != nil {
		return nil, err
	}
	brk, err := initializeBroker(ctx, cfg, md)
	if err != nil {
		return nil, err
	}
	gen, err := initializeGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}
	watchlist, err := loadWatchlist(ctx, cfg)
	if err != nil {
		return nil, err
	}

	deps := engine.Deps{
		Broker:     brk,
		Market:     md,
		Generator:  gen,
		Classifier: initializeClassifier(ctx, cfg, gen),
	}
	if hs := initializeNews(ctx, cfg); hs != nil {
		deps.Headlines = hs
	}
	if cfg.Universe.ListingURL != "" {
		deps.Lister = discovery.NewListingScraper(cfg.Universe.ListingSelector, marketDataTimeout)
	}

	eng, err := engine.New(cfg, watchlist, deps)
	if err != nil {
		return nil, err
	}
	return engineobs.Wrap(eng), nil
}

func initializeGate(cfg *store.Config) (*clock.Gate, error) {
	gate, err := clock.New(cfg.Market.Timezone, cfg.Market.Open, cfg.Market.Close, cfg.Market.BypassClock)
	if err != nil {
		return nil, types.NewError(types.KindConfig, "initializeGate", err)
	}
	return gate, nil
}

func initializeLoop(cfg *store.Config, eng interfaces.Engine) (*orchestrator.Loop, error) {
	gate, err := initializeGate(cfg)
	if err != nil {
		return nil, err
	}
	retry, err := orchestrator.RetryPolicyFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	return orchestrator.New(eng, gate, retry, cfg.CycleInterval(), cfg.MarketWait()), nil
}
