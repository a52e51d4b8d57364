package symbols

import (
	"bufio"
	"regexp"
	"strings"

	"stock-signal-bot/internal/types"
)

var tickerPattern = regexp.MustCompile(`\b[A-Z]+\b`)

// Extractor pulls ticker-shaped tokens out of free text.
type Extractor struct {
	ignore map[string]struct{}
	max    int
}

// NewExtractor drops any token in ignore and caps the result at max
// candidates (0 means no cap).
func NewExtractor(ignore []string, max int) *Extractor {
	e := &Extractor{ignore: make(map[string]struct{}, len(ignore)), max: max}
	for _, w := range ignore {
		e.ignore[strings.ToUpper(strings.TrimSpace(w))] = struct{}{}
	}
	return e
}

// Extract scans text line by line and returns each uppercase token once, in
// order of first appearance. It never fails; text without uppercase tokens
// yields an empty slice.
func (e *Extractor) Extract(text string) []types.Symbol {
	out := []types.Symbol{}
	seen := make(map[string]struct{})

	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		for _, tok := range tickerPattern.FindAllString(sc.Text(), -1) {
			if _, skip := e.ignore[tok]; skip {
				continue
			}
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			out = append(out, tok)
			if e.max > 0 && len(out) >= e.max {
				return out
			}
		}
	}
	return out
}

// Extract uses an extractor with no ignore list and no cap.
func Extract(text string) []types.Symbol {
	return NewExtractor(nil, 0).Extract(text)
}

// Normalize trims and upper-cases a watch-list entry, rejecting anything that
// is not a bare ticker.
func Normalize(s string) (types.Symbol, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" || !tickerPattern.MatchString(s) || tickerPattern.FindString(s) != s {
		return "", false
	}
	return s, true
}

// LinesMentioning returns the lines of text in which sym appears as a whole token.
func LinesMentioning(text string, sym types.Symbol) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		for _, tok := range tickerPattern.FindAllString(line, -1) {
			if tok == sym {
				out = append(out, strings.TrimSpace(line))
				break
			}
		}
	}
	return out
}
