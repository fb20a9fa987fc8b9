package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Alias1177/BacktestView/internal/request"
	"github.com/Alias1177/BacktestView/internal/run"
	"github.com/Alias1177/BacktestView/models"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one backtest and print the KPIs",
	Long: `Run one backtest against the engine and print the KPI strip.

Flags override the preset's values when both are given.

  backtestview run --preset a-share-core
  backtestview run --ticker QQQ --strategy sma_cross --param period=50
  backtestview run --preset tech-trend --stop-loss 5 --format json`,
	RunE: runRun,
}

// runFlags mirrors the form fields on the command line
type runFlags struct {
	preset           string
	ticker           string
	capital          string
	period           string
	benchmark        string
	strategy         string
	params           map[string]string
	commission       string
	commissionParams map[string]string
	takeProfit       string
	stopLoss         string
	format           string
}

var runOpts runFlags

func init() {
	rootCmd.AddCommand(runCmd)

	f := runCmd.Flags()
	f.StringVar(&runOpts.preset, "preset", "", "Start from a preset key")
	f.StringVar(&runOpts.ticker, "ticker", "", "ETF or stock ticker")
	f.StringVar(&runOpts.capital, "capital", "10000", "Reference capital")
	f.StringVar(&runOpts.period, "period", "1y", "Backtest period: 3m, 6m, 1y, 3y, 5y, 10y")
	f.StringVar(&runOpts.benchmark, "benchmark", "", "Benchmark ticker")
	f.StringVar(&runOpts.strategy, "strategy", string(models.StrategyFixedFrequency), "fixed_frequency, sma_cross, dma_cross or buy_and_hold")
	f.StringToStringVar(&runOpts.params, "param", nil, "Strategy field, key=value (repeatable)")
	f.StringVar(&runOpts.commission, "commission", string(models.CommissionPercentage), "percentage, fixed or none")
	f.StringToStringVar(&runOpts.commissionParams, "commission-param", nil, "Commission field, key=value; rate is per ten thousand")
	f.StringVar(&runOpts.takeProfit, "take-profit", "", "Take profit in percent")
	f.StringVar(&runOpts.stopLoss, "stop-loss", "", "Stop loss in percent")
	f.StringVar(&runOpts.format, "format", "table", "Output format: table or json")
}

func runRun(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	form, err := formFromFlags(a.builder, runOpts, cmd.Flags().Changed)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	render, err := a.runner.Run(ctx, form)
	if err != nil {
		return errors.New(run.Message(err))
	}

	if runOpts.format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(render)
	}
	return printRender(os.Stdout, render)
}

// formFromFlags builds the form a user would have filled in. With a preset,
// only explicitly changed flags override the preset's values.
func formFromFlags(builder *request.Builder, opts runFlags, changed func(string) bool) (request.Form, error) {
	form := request.Form{
		Ticker:           opts.ticker,
		ReferenceCapital: opts.capital,
		Period:           opts.period,
		Benchmark:        opts.benchmark,
		TakeProfit:       opts.takeProfit,
		StopLoss:         opts.stopLoss,
	}
	form = request.SelectStrategy(form, models.StrategyName(opts.strategy))
	form = request.SelectCommission(form, models.CommissionType(opts.commission))

	if opts.preset != "" {
		preset, err := builder.ApplyPreset(request.Form{}, opts.preset)
		if err != nil {
			return request.Form{}, err
		}
		for flag, apply := range map[string]func(){
			"ticker":      func() { preset.Ticker = opts.ticker },
			"capital":     func() { preset.ReferenceCapital = opts.capital },
			"period":      func() { preset.Period = opts.period },
			"benchmark":   func() { preset.Benchmark = opts.benchmark },
			"take-profit": func() { preset.TakeProfit = opts.takeProfit },
			"stop-loss":   func() { preset.StopLoss = opts.stopLoss },
			"strategy":    func() { preset = request.SelectStrategy(preset, form.Strategy) },
			"commission":  func() { preset = request.SelectCommission(preset, form.Commission) },
		} {
			if changed(flag) {
				apply()
			}
		}
		form = preset
	}

	for k, v := range opts.params {
		form.StrategyFields[k] = v
	}
	for k, v := range opts.commissionParams {
		form.CommissionFields[k] = v
	}
	return form, nil
}

func printRender(out io.Writer, render *run.Render) error {
	req := render.Request
	fmt.Fprintf(out, "%s  %s → %s  (%s)\n\n", render.PriceChart.Title,
		req.DateRange.Start.Format(models.DateLayout), req.DateRange.End.Format(models.DateLayout), req.Strategy.Name())

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tVALUE")
	for _, m := range render.KPIs.Metrics() {
		fmt.Fprintf(w, "%s\t%s\n", m.Label, m.Display())
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for _, chart := range []struct {
		title  string
		noData bool
		bars   int
	}{
		{render.MonthlyReturns.Title, render.MonthlyReturns.NoData, len(render.MonthlyReturns.Bars)},
		{render.YearlyReturns.Title, render.YearlyReturns.NoData, len(render.YearlyReturns.Bars)},
	} {
		if chart.noData {
			fmt.Fprintf(out, "%s: no data\n", chart.title)
			continue
		}
		fmt.Fprintf(out, "%s: %d periods\n", chart.title, chart.bars)
	}
	return nil
}
