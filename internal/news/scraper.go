package news

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"stock-signal-bot/internal/logger"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Headline is one news item title from a feed.
type Headline struct {
	Title  string
	Link   string
	Source string
	Symbol string
}

// FeedSource is an RSS feed addressed by symbol. URLTemplate contains a
// {symbol} placeholder.
type FeedSource struct {
	Name        string
	URLTemplate string
}

func (s FeedSource) url(symbol string) string {
	return strings.ReplaceAll(s.URLTemplate, "{symbol}", url.QueryEscape(symbol))
}

// DefaultSources are public RSS endpoints that need no credentials.
func DefaultSources() []FeedSource {
	return []FeedSource{
		{
			Name:        "YahooFinance",
			URLTemplate: "https://feeds.finance.yahoo.com/rss/2.0/headline?s={symbol}&region=US&lang=en-US",
		},
		{
			Name:        "GoogleNews",
			URLTemplate: "https://news.google.com/rss/search?q={symbol}+stock&hl=en-US&gl=US&ceid=US:en",
		},
	}
}

// Scraper collects headlines from RSS feeds.
type Scraper struct {
	sources []FeedSource
	timeout time.Duration
}

func NewScraper(timeout time.Duration, sources ...FeedSource) *Scraper {
	if len(sources) == 0 {
		sources = DefaultSources()
	}
	return &Scraper{sources: sources, timeout: timeout}
}

// ScrapeHeadlines walks the sources in order until maxHeadlines are found.
// A failing source is logged and skipped.
func (s *Scraper) ScrapeHeadlines(ctx context.Context, symbol string, maxHeadlines int) ([]Headline, error) {
	var all []Headline
	var lastErr error
	seen := make(map[string]struct{})

	for _, source := range s.sources {
		if len(all) >= maxHeadlines {
			break
		}
		if err := ctx.Err(); err != nil {
			return all, err
		}
		items, err := s.scrapeFeed(ctx, source, symbol, maxHeadlines-len(all))
		if err != nil {
			lastErr = err
			logger.ErrorWithErr(ctx, "Failed to scrape feed", err, "source", source.Name, "symbol", symbol)
			continue
		}
		for _, h := range items {
			key := strings.ToLower(h.Title)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			all = append(all, h)
		}
	}

	if len(all) == 0 && lastErr != nil {
		return nil, lastErr
	}
	logger.Debug(ctx, "Headline scraping completed", "symbol", symbol, "headlines", len(all))
	return all, nil
}

func (s *Scraper) scrapeFeed(ctx context.Context, source FeedSource, symbol string, max int) ([]Headline, error) {
	var items []Headline
	var scrapeErr error

	c := colly.NewCollector(
		colly.MaxDepth(1),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", userAgent)
	})

	c.OnXML("//item", func(e *colly.XMLElement) {
		if len(items) >= max {
			return
		}
		title := strings.TrimSpace(e.ChildText("title"))
		if title == "" {
			return
		}
		items = append(items, Headline{
			Title:  title,
			Link:   strings.TrimSpace(e.ChildText("link")),
			Source: source.Name,
			Symbol: symbol,
		})
	})

	c.OnError(func(r *colly.Response, err error) {
		scrapeErr = fmt.Errorf("%s: status %d: %w", source.Name, r.StatusCode, err)
	})

	feedURL := source.url(symbol)
	if err := c.Visit(feedURL); err != nil {
		return nil, fmt.Errorf("failed to visit %s: %w", feedURL, err)
	}
	c.Wait()

	if scrapeErr != nil {
		return nil, scrapeErr
	}
	return items, nil
}
