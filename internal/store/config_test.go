package store

import (
	"strings"
	"testing"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte("mode: dry_run\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.Mode != "DRY_RUN" {
		t.Errorf("Expected mode DRY_RUN, got %s", cfg.Mode)
	}
	if cfg.Market.Timezone != "America/New_York" || cfg.Market.Open != "09:30" || cfg.Market.Close != "16:00" {
		t.Errorf("Unexpected market hours: %+v", cfg.Market)
	}
	if cfg.Filter.ThresholdPct != 0.35 {
		t.Errorf("Expected threshold 0.35, got %f", cfg.Filter.ThresholdPct)
	}
	if cfg.Filter.Reference != "session_open" {
		t.Errorf("Expected session_open reference, got %s", cfg.Filter.Reference)
	}
	if !cfg.BudgetPerSymbol().Equal(cfg.BudgetPerSymbol()) || cfg.Budget.PerSymbol != 275 {
		t.Errorf("Expected budget 275, got %f", cfg.Budget.PerSymbol)
	}
	if cfg.Discovery.MaxTokens != 150 || cfg.Discovery.Temperature != 0.7 {
		t.Errorf("Unexpected discovery defaults: %+v", cfg.Discovery)
	}
	if cfg.CycleInterval().Seconds() != 60 {
		t.Errorf("Expected 60s cycle interval, got %v", cfg.CycleInterval())
	}
	if cfg.Sentiment.Policy != "per_cycle" {
		t.Errorf("Expected per_cycle policy, got %s", cfg.Sentiment.Policy)
	}
}

func TestParseRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"mode":      "mode: PAPER\n",
		"timezone":  "market:\n  timezone: Mars/Olympus\n",
		"open":      "market:\n  open: nine\n",
		"universe":  "universe:\n  mode: WATCHLIST\n",
		"reference": "filter:\n  reference: weekly\n",
		"policy":    "sentiment:\n  policy: per_sector\n",
		"budget":    "budget:\n  per_symbol: -1\n",
		"broker":    "broker:\n  provider: IBKR\n",
		"retry":     "loop:\n  retry:\n    strategy: LINEAR\n",
	}

	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(doc)); err == nil {
				t.Errorf("Expected validation error for %q", strings.TrimSpace(doc))
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("BOT_MODE", "live")
	t.Setenv("BOT_BYPASS_CLOCK", "true")
	t.Setenv("BOT_BUDGET_PER_SYMBOL", "120.5")

	cfg, err := Parse([]byte("mode: DRY_RUN\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Mode != "LIVE" {
		t.Errorf("Expected LIVE from env, got %s", cfg.Mode)
	}
	if !cfg.Market.BypassClock {
		t.Error("Expected bypass clock from env")
	}
	if cfg.Budget.PerSymbol != 120.5 {
		t.Errorf("Expected budget 120.5, got %f", cfg.Budget.PerSymbol)
	}
}

func TestParseValidationSection(t *testing.T) {
	cfg, err := Parse([]byte("validate:\n  allowed_types: [EQUITY]\n  requests_per_second: 2\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(cfg.Validation.AllowedTypes) != 1 || cfg.Validation.AllowedTypes[0] != "EQUITY" {
		t.Errorf("Expected allowed types [EQUITY], got %v", cfg.Validation.AllowedTypes)
	}
	if cfg.Validation.RequestsPerSecond != 2 {
		t.Errorf("Expected 2 requests per second, got %f", cfg.Validation.RequestsPerSecond)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate on a parsed config: %v", err)
	}
}
