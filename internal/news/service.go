package news

import (
	"context"
	"sync"
	"time"

	"stock-signal-bot/internal/interfaces"
	"stock-signal-bot/internal/logger"
	"stock-signal-bot/internal/types"
)

// Service serves headline titles per symbol with a short-lived cache so a
// symbol seen in consecutive cycles is not re-scraped every minute.
type Service struct {
	scraper headlineScraper
	cache   *headlineCache
	cfg     *ServiceConfig
}

var _ interfaces.HeadlineSource = (*Service)(nil)

type headlineScraper interface {
	ScrapeHeadlines(ctx context.Context, symbol string, maxHeadlines int) ([]Headline, error)
}

// ServiceConfig configures the news service
type ServiceConfig struct {
	MaxHeadlines   int
	CacheDuration  time.Duration
	ScraperTimeout time.Duration
	Enabled        bool
}

// DefaultServiceConfig returns default configuration
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		MaxHeadlines:   10,
		CacheDuration:  10 * time.Minute,
		ScraperTimeout: 20 * time.Second,
		Enabled:        true,
	}
}

type cacheEntry struct {
	titles    []string
	timestamp time.Time
}

// headlineCache expires entries lazily on read.
type headlineCache struct {
	mu   sync.RWMutex
	data map[string]cacheEntry
	ttl  time.Duration
	now  func() time.Time
}

func newHeadlineCache(ttl time.Duration) *headlineCache {
	return &headlineCache{data: make(map[string]cacheEntry), ttl: ttl, now: time.Now}
}

func (c *headlineCache) get(symbol string) ([]string, bool) {
	c.mu.RLock()
	entry, ok := c.data[symbol]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.timestamp) > c.ttl {
		c.mu.Lock()
		delete(c.data, symbol)
		c.mu.Unlock()
		return nil, false
	}
	return entry.titles, true
}

func (c *headlineCache) set(symbol string, titles []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[symbol] = cacheEntry{titles: titles, timestamp: c.now()}
}

func NewService(cfg *ServiceConfig) *Service {
	if cfg == nil {
		cfg = DefaultServiceConfig()
	}
	return &Service{
		scraper: NewScraper(cfg.ScraperTimeout),
		cache:   newHeadlineCache(cfg.CacheDuration),
		cfg:     cfg,
	}
}

// Headlines returns up to max titles for symbol. A disabled service returns
// none. Scrape failures are reported as transient so callers can fall back.
func (s *Service) Headlines(ctx context.Context, symbol string, max int) ([]string, error) {
	if !s.cfg.Enabled {
		return nil, nil
	}
	if max <= 0 {
		max = s.cfg.MaxHeadlines
	}

	if cached, ok := s.cache.get(symbol); ok {
		logger.Debug(ctx, "Using cached headlines", "symbol", symbol, "count", len(cached))
		return limit(cached, max), nil
	}

	items, err := s.scraper.ScrapeHeadlines(ctx, symbol, max)
	if err != nil {
		return nil, types.Transient("news.Headlines", err)
	}

	titles := make([]string, 0, len(items))
	for _, h := range items {
		titles = append(titles, h.Title)
	}
	s.cache.set(symbol, titles)
	return limit(titles, max), nil
}

func limit(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
