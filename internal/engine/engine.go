package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"stock-signal-bot/internal/discovery"
	"stock-signal-bot/internal/filter"
	"stock-signal-bot/internal/interfaces"
	"stock-signal-bot/internal/logger"
	"stock-signal-bot/internal/metrics"
	"stock-signal-bot/internal/risk"
	"stock-signal-bot/internal/sentiment"
	"stock-signal-bot/internal/store"
	"stock-signal-bot/internal/symbols"
	"stock-signal-bot/internal/types"
)

const (
	UniverseGenerated = "GENERATED"
	UniverseWatchlist = "WATCHLIST"
)

// Market is what a cycle needs from market data: symbol resolution for
// validation and percentage change for filtering.
type Market interface {
	symbols.Resolver
	filter.ChangeSource
}

// Deps are the collaborators a cycle runs against. Lister and Headlines are
// optional.
type Deps struct {
	Broker     interfaces.Broker
	Market     Market
	Generator  interfaces.Generator
	Classifier interfaces.Classifier
	Lister     interfaces.SymbolLister
	Headlines  interfaces.HeadlineSource
	Out        io.Writer
	Now        func() time.Time
}

// Engine runs discovery, extraction, validation, filtering, sentiment,
// budget and execution once per call. Settings are copied at construction
// and never change afterwards.
type Engine struct {
	deps      Deps
	discover  *discovery.Discoverer
	extractor *symbols.Extractor
	validator *symbols.Validator
	gate      *sentiment.Gate
	executor  *OrderExecutor

	universe     string
	query        string
	watchlist    []types.Symbol
	listingURL   string
	threshold    float64
	budget       decimal.Decimal
	policy       sentiment.Policy
	maxHeadlines int
}

var _ interfaces.Engine = (*Engine)(nil)

func New(cfg *store.Config, watchlist []types.Symbol, deps Deps) (*Engine, error) {
	if deps.Broker == nil || deps.Market == nil {
		return nil, types.NewError(types.KindConfig, "engine.New", fmt.Errorf("broker and market data are required"))
	}
	if cfg.Universe.Mode != UniverseWatchlist && deps.Generator == nil {
		return nil, types.NewError(types.KindConfig, "engine.New", fmt.Errorf("generated universe needs a text generator"))
	}
	policy, err := sentiment.ParsePolicy(cfg.Sentiment.Policy)
	if err != nil {
		return nil, err
	}
	if deps.Out == nil {
		deps.Out = os.Stdout
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	budget := cfg.BudgetPerSymbol()

	e := &Engine{
		deps: deps,
		discover: discovery.New(deps.Generator, cfg.Discovery.Role, types.GenConfig{
			MaxTokens:   cfg.Discovery.MaxTokens,
			Temperature: cfg.Discovery.Temperature,
		}),
		extractor:    symbols.NewExtractor(cfg.Extract.Ignore, cfg.Extract.MaxCandidates),
		validator:    symbols.NewValidator(deps.Market, cfg.Validation.AllowedTypes),
		executor:     NewOrderExecutor(deps.Broker, budget),
		universe:     cfg.Universe.Mode,
		query:        cfg.Discovery.Query,
		watchlist:    append([]types.Symbol(nil), watchlist...),
		listingURL:   cfg.Universe.ListingURL,
		threshold:    cfg.Filter.ThresholdPct,
		budget:       budget,
		policy:       policy,
		maxHeadlines: cfg.News.MaxHeadlines,
	}
	if deps.Classifier != nil {
		e.gate = sentiment.NewGate(deps.Classifier)
	} else if policy != sentiment.Off {
		return nil, types.NewError(types.KindConfig, "engine.New",
			fmt.Errorf("sentiment policy %s needs a classifier", policy))
	}
	if e.universe == UniverseWatchlist && len(e.watchlist) == 0 {
		return nil, types.NewError(types.KindConfig, "engine.New", fmt.Errorf("watch-list mode with an empty watch-list"))
	}
	return e, nil
}

func (e *Engine) printf(format string, args ...any) {
	fmt.Fprintf(e.deps.Out, format+"\n", args...)
}

// RunCycle executes one pass of the pipeline. A returned error means the
// cycle was aborted; the partial result still lists any orders placed.
func (e *Engine) RunCycle(ctx context.Context) (*types.CycleResult, error) {
	res := &types.CycleResult{Started: e.deps.Now()}

	enterStage(ctx, StageDiscovering)
	candidates, err := e.candidates(ctx, res)
	if err != nil {
		return res, err
	}
	res.Candidates = candidates
	metrics.SetStage("extracted", len(candidates))
	logger.Debug(ctx, "Candidates extracted", "symbols", candidates)

	enterStage(ctx, StageFiltering)
	res.Valid = e.validator.Validate(ctx, candidates)
	metrics.SetStage("validated", len(res.Valid))
	if err := ctx.Err(); err != nil {
		return res, types.Transient("engine.Validate", err)
	}

	filtered, ferr := filter.Filter(ctx, e.deps.Market, res.Valid, e.threshold)
	res.Filtered = filtered
	metrics.SetStage("filtered", len(filtered))
	if ferr != nil {
		res.Reason = "market data unavailable"
		return res, ferr
	}

	for _, pc := range filtered {
		e.printf("Symbol: %s, Current Price: %s, Percentage Change: %.2f%%", pc.Symbol, pc.Last.StringFixed(2), pc.Pct)
	}
	if len(filtered) == 0 {
		res.Reason = fmt.Sprintf("no symbols with an increase of at least %.2f%%", e.threshold)
		e.printf("Not enough symbols with an increase of at least %.2f%%", e.threshold)
		return res, nil
	}

	enterStage(ctx, StageDeciding)
	if e.policy == sentiment.PerCycle {
		ok, label, err := e.gate.Check(ctx, e.cycleText(ctx, res))
		res.Sentiment = label
		if err != nil {
			if types.KindOf(err) == types.KindTransient {
				return res, err
			}
			logger.ErrorWithErr(ctx, "Sentiment classification failed", err)
		}
		if !ok {
			res.Reason = sentiment.ReasonNotPositive
			e.printf("Skipping orders: %s (%s)", sentiment.ReasonNotPositive, label)
			return res, nil
		}
	}

	return res, e.decideAndExecute(ctx, res)
}

func (e *Engine) candidates(ctx context.Context, res *types.CycleResult) ([]types.Symbol, error) {
	if e.universe == UniverseWatchlist {
		return append([]types.Symbol(nil), e.watchlist...), nil
	}

	known := append([]types.Symbol(nil), e.watchlist...)
	if e.listingURL != "" && e.deps.Lister != nil {
		listed, err := e.deps.Lister.ListedSymbols(ctx, e.listingURL)
		if err != nil {
			logger.Warn(ctx, "Listing scrape failed, continuing without it", "url", e.listingURL, "error", err)
		} else {
			known = append(known, listed...)
		}
	}

	text, err := e.discover.Discover(ctx, e.query, known)
	if err != nil {
		return nil, err
	}
	res.Text = text
	logger.Debug(ctx, "Generated text", "text", text)
	return e.extractor.Extract(text), nil
}

// cycleText is what the per-cycle gate classifies: the generated text, or
// in watch-list mode the headlines for the filtered symbols.
func (e *Engine) cycleText(ctx context.Context, res *types.CycleResult) string {
	if res.Text != "" {
		return res.Text
	}
	var lines []string
	for _, pc := range res.Filtered {
		lines = append(lines, e.headlines(ctx, pc.Symbol)...)
	}
	return strings.Join(lines, "\n")
}

func (e *Engine) headlines(ctx context.Context, symbol string) []string {
	if e.deps.Headlines == nil {
		return nil
	}
	h, err := e.deps.Headlines.Headlines(ctx, symbol, e.maxHeadlines)
	if err != nil {
		logger.Warn(ctx, "Headlines unavailable", "symbol", symbol, "error", err)
		return nil
	}
	return h
}

func (e *Engine) symbolApproved(ctx context.Context, res *types.CycleResult, symbol string) (bool, error) {
	if e.policy != sentiment.PerSymbol {
		return true, nil
	}
	lines := symbols.LinesMentioning(res.Text, symbol)
	lines = append(lines, e.headlines(ctx, symbol)...)
	ok, label, err := e.gate.Check(ctx, strings.Join(lines, "\n"))
	if err != nil && types.KindOf(err) == types.KindTransient {
		return false, err
	}
	logger.Debug(ctx, "Symbol sentiment", "symbol", symbol, "label", label)
	return ok, nil
}

func (e *Engine) decideAndExecute(ctx context.Context, res *types.CycleResult) error {
	cash, err := e.deps.Broker.CashBalance(ctx)
	if err != nil {
		return err
	}
	ledger := risk.NewLedger(e.budget, cash)

	for _, pc := range res.Filtered {
		ok, err := e.symbolApproved(ctx, res, pc.Symbol)
		if err != nil {
			return err
		}

		var d types.TradeDecision
		if ok {
			d = ledger.Decide(ctx, pc.Symbol, pc.Last)
		} else {
			d = types.TradeDecision{Symbol: pc.Symbol, Price: pc.Last, Reason: sentiment.ReasonNotPositive}
		}
		logger.Decision(ctx, d.Symbol, d.Approved, d.Price.InexactFloat64(), d.Reason)

		if !d.Approved {
			res.Decisions = append(res.Decisions, d)
			e.printf("Skipping %s: %s", d.Symbol, d.Reason)
			continue
		}

		rec, err := e.executor.BuyOneShare(ctx, pc.Symbol)
		if err != nil {
			ledger.Release(pc.Last)
			metrics.OrdersTotal.WithLabelValues("failed").Inc()
			if types.KindOf(err) == types.KindTransient {
				d.Approved = false
				d.Reason = "order failed: " + err.Error()
				res.Decisions = append(res.Decisions, d)
				return err
			}
			d.Approved = false
			d.Reason = "order rejected: " + err.Error()
			res.Decisions = append(res.Decisions, d)
			e.printf("Order for %s rejected: %v", d.Symbol, err)
			continue
		}

		metrics.OrdersTotal.WithLabelValues("placed").Inc()
		logger.Trade(ctx, pc.Symbol, string(types.SideBuy), 1, pc.Last.InexactFloat64(), rec.OrderID, "status", rec.Status)
		res.Decisions = append(res.Decisions, d)
		res.Orders = append(res.Orders, rec)
		e.printf("Bought 1 share of %s at ~%s (order %s)", pc.Symbol, pc.Last.StringFixed(2), rec.OrderID)
	}
	return nil
}
