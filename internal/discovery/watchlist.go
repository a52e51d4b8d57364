package discovery

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"stock-signal-bot/internal/symbols"
	"stock-signal-bot/internal/types"
)

// LoadWatchlist reads one ticker per line. Blank lines and lines starting
// with # are skipped; duplicates keep their first position.
func LoadWatchlist(path string) ([]types.Symbol, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, types.NewError(types.KindConfig, "discovery.LoadWatchlist", err)
	}
	defer f.Close()
	return ParseWatchlist(f)
}

func ParseWatchlist(r io.Reader) ([]types.Symbol, error) {
	var out []types.Symbol
	seen := make(map[string]struct{})

	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		raw := strings.TrimSpace(sc.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		sym, ok := symbols.Normalize(raw)
		if !ok {
			return nil, types.NewError(types.KindMalformed, "discovery.ParseWatchlist",
				fmt.Errorf("line %d: %q is not a ticker", line, raw))
		}
		if _, dup := seen[sym]; dup {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read watchlist: %w", err)
	}
	return out, nil
}
