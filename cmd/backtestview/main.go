package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Alias1177/BacktestView/config"
	"github.com/Alias1177/BacktestView/internal/api/engine"
	appconfig "github.com/Alias1177/BacktestView/internal/config"
	"github.com/Alias1177/BacktestView/internal/metrics"
	"github.com/Alias1177/BacktestView/internal/request"
	"github.com/Alias1177/BacktestView/internal/run"
)

// rootCmd is the base command for the BacktestView CLI
var rootCmd = &cobra.Command{
	Use:   "backtestview",
	Short: "Backtest form, KPI and chart gateway for the backtesting engine",
	Long: `BacktestView turns backtest form input into engine requests and engine
results into display-ready KPIs and chart specifications.

  backtestview serve                  # HTTP gateway for the chart page
  backtestview run --preset tech-trend
  backtestview presets`,
	SilenceUsage: true,
}

// app is the wiring shared by every subcommand
type app struct {
	cfg     *appconfig.Config
	builder *request.Builder
	runner  *run.Runner
	metrics *metrics.Registry
}

func newApp() (*app, error) {
	cfg, err := appconfig.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	setupLogger(cfg.LogLevel)

	catalog, err := config.LoadCatalog(cfg.PresetsFile)
	if err != nil {
		return nil, fmt.Errorf("load presets: %w", err)
	}

	engineClient := engine.NewClient(engine.ClientOptions{
		BaseURL:         cfg.EngineURL,
		Path:            cfg.EnginePath,
		RequestTimeout:  cfg.RequestTimeout,
		RequestsPerSec:  cfg.EngineRequestsPerSec,
		MaxRetries:      cfg.EngineMaxRetries,
		MaxRetryTimeout: cfg.EngineMaxRetryTimeout,
	})

	reg := metrics.NewRegistry()
	builder := request.NewBuilder(catalog)

	return &app{
		cfg:     cfg,
		builder: builder,
		runner:  run.NewRunner(builder, engineClient, reg),
		metrics: reg,
	}, nil
}

func setupLogger(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(lvl)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
