package discovery

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"stock-signal-bot/internal/interfaces"
	"stock-signal-bot/internal/symbols"
	"stock-signal-bot/internal/types"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// ListingScraper fetches a listing page (a screener or an index constituents
// table) and returns the tickers found under selector.
type ListingScraper struct {
	selector string
	timeout  time.Duration
}

var _ interfaces.SymbolLister = (*ListingScraper)(nil)

func NewListingScraper(selector string, timeout time.Duration) *ListingScraper {
	if selector == "" {
		selector = "td a"
	}
	return &ListingScraper{selector: selector, timeout: timeout}
}

func (s *ListingScraper) ListedSymbols(ctx context.Context, url string) ([]string, error) {
	const op = "discovery.ListedSymbols"
	var body []byte
	var scrapeErr error

	c := colly.NewCollector(colly.MaxDepth(1), colly.StdlibContext(ctx))
	c.SetRequestTimeout(s.timeout)
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", userAgent)
	})
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		scrapeErr = fmt.Errorf("status %d: %w", r.StatusCode, err)
	})

	if err := c.Visit(url); err != nil {
		return nil, types.Transient(op, fmt.Errorf("visit %s: %w", url, err))
	}
	c.Wait()
	if scrapeErr != nil {
		return nil, types.Transient(op, scrapeErr)
	}

	return ParseListing(bytes.NewReader(body), s.selector)
}

// ParseListing returns the distinct tickers whose text matches selector, in
// document order. Cells that are not bare tickers are ignored.
func ParseListing(r io.Reader, selector string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, types.NewError(types.KindMalformed, "discovery.ParseListing", err)
	}

	var out []string
	seen := make(map[string]struct{})
	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		sym, ok := symbols.Normalize(strings.TrimSpace(sel.Text()))
		if !ok {
			return
		}
		if _, dup := seen[sym]; dup {
			return
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	})
	return out, nil
}
