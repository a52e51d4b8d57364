package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"stock-signal-bot/internal/logger"
	"stock-signal-bot/internal/metrics"
	"stock-signal-bot/internal/store"
	"stock-signal-bot/internal/symbols"
)

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "stock-signal-bot",
		Short: "Discover, filter and buy momentum stocks during market hours",
		Long: `stock-signal-bot asks a text generator for candidate tickers, validates them
against market data, keeps the ones moving up, checks sentiment and budget,
and buys one share of each survivor. It repeats every cycle interval while
the market is open.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeSystem()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoop(cmd.Context(), configPath)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Configuration file path")

	rootCmd.AddCommand(newRunCmd(&configPath))
	rootCmd.AddCommand(newOnceCmd(&configPath))
	rootCmd.AddCommand(newExtractCmd(&configPath))
	rootCmd.AddCommand(newValidateConfigCmd(&configPath))

	return rootCmd
}

func newRunCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the trading loop until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoop(cmd.Context(), *configPath)
		},
	}
}

func newOnceCmd(configPath *string) *cobra.Command {
	var bypass bool

	cmd := &cobra.Command{
		Use:   "once",
		Short: "Run a single pipeline cycle and print its result",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd.Context(), *configPath, bypass, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&bypass, "bypass-clock", false, "Run even when the market is closed")
	return cmd
}

func newExtractCmd(configPath *string) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "extract [FILE]",
		Short: "Print the ticker candidates found in text (stdin when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return runExtract(in, cmd.OutOrStdout(), *configPath, raw)
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Skip the ignore list and candidate cap")
	return cmd
}

func newValidateConfigCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate-config",
		Short: "Load and validate the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			if _, err := initializeGate(cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "config OK: mode=%s broker=%s universe=%s llm=%s budget=%s\n",
				cfg.Mode, cfg.Broker.Provider, cfg.Universe.Mode, cfg.LLM.Provider, cfg.BudgetPerSymbol().StringFixed(2))
			return nil
		},
	}
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

func runLoop(parent context.Context, configPath string) error {
	ctx, stop := signalContext(parent)
	defer stop()

	cfg, err := loadConfig(ctx, configPath)
	if err != nil {
		return err
	}

	if cfg.MetricsAddr != "" {
		srv := metrics.Serve(cfg.MetricsAddr)
		logger.Info(ctx, "Metrics endpoint listening", "addr", cfg.MetricsAddr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	eng, err := initializeEngine(ctx, cfg)
	if err != nil {
		logger.ErrorWithErr(ctx, "Startup failed", err)
		return err
	}
	loop, err := initializeLoop(cfg, eng)
	if err != nil {
		logger.ErrorWithErr(ctx, "Startup failed", err)
		return err
	}

	logger.Info(ctx, "Bot started",
		"mode", cfg.Mode,
		"universe", cfg.Universe.Mode,
		"budget_per_symbol", cfg.BudgetPerSymbol().StringFixed(2),
		"threshold_pct", cfg.Filter.ThresholdPct,
		"sentiment_policy", cfg.Sentiment.Policy,
	)

	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info(ctx, "Shutting down...")
	return nil
}

func runOnce(parent context.Context, configPath string, bypass bool, out io.Writer) error {
	ctx, stop := signalContext(parent)
	defer stop()

	cfg, err := loadConfig(ctx, configPath)
	if err != nil {
		return err
	}
	if bypass {
		cfg.Market.BypassClock = true
	}

	gate, err := initializeGate(cfg)
	if err != nil {
		return err
	}
	if !gate.IsTradeable(time.Now()) {
		fmt.Fprintf(out, "Market closed (%s %s-%s); use --bypass-clock to run anyway\n",
			cfg.Market.Timezone, cfg.Market.Open, cfg.Market.Close)
		return nil
	}

	eng, err := initializeEngine(ctx, cfg)
	if err != nil {
		return err
	}
	res, err := eng.RunCycle(ctx)
	if res != nil {
		b, _ := json.MarshalIndent(res, "", "  ")
		fmt.Fprintln(out, string(b))
	}
	return err
}

func runExtract(in io.Reader, out io.Writer, configPath string, raw bool) error {
	b, err := io.ReadAll(in)
	if err != nil {
		return err
	}

	var found []string
	if raw {
		found = symbols.Extract(string(b))
	} else {
		cfg, err := store.LoadConfig(configPath)
		if err != nil {
			cfg = store.Default()
		}
		found = symbols.NewExtractor(cfg.Extract.Ignore, cfg.Extract.MaxCandidates).Extract(string(b))
	}

	for _, s := range found {
		fmt.Fprintln(out, s)
	}
	return nil
}
