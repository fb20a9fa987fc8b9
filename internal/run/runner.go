package run

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/BacktestView/internal/api/engine"
	"github.com/Alias1177/BacktestView/internal/chart"
	"github.com/Alias1177/BacktestView/internal/kpi"
	"github.com/Alias1177/BacktestView/internal/metrics"
	"github.com/Alias1177/BacktestView/internal/request"
	"github.com/Alias1177/BacktestView/models"
)

// ErrRunInProgress is returned while another run is waiting on the engine.
var ErrRunInProgress = errors.New("a backtest is already running")

// Degraded-result conditions reported to metrics.
const (
	conditionZeroCapital          = "zero_capital"
	conditionBenchmarkUnavailable = "benchmark_unavailable"
	conditionNoMonthlyReturns     = "no_monthly_returns"
)

// Render is everything the chart surface needs to draw one result.
type Render struct {
	RunID          string                 `json:"runId"`
	Request        models.BacktestRequest `json:"request"`
	KPIs           kpi.Summary            `json:"kpis"`
	PriceChart     chart.PriceChart       `json:"priceChart"`
	MonthlyReturns chart.ReturnsChart     `json:"monthlyReturns"`
	YearlyReturns  chart.ReturnsChart     `json:"yearlyReturns"`
}

// Runner drives one form submission through build, engine call and rendering.
// At most one run is outstanding at a time.
type Runner struct {
	builder *request.Builder
	engine  models.EngineClient
	metrics *metrics.Registry
	running atomic.Bool
	logger  zerolog.Logger
}

// NewRunner wires a runner. reg may be nil.
func NewRunner(builder *request.Builder, engineClient models.EngineClient, reg *metrics.Registry) *Runner {
	return &Runner{
		builder: builder,
		engine:  engineClient,
		metrics: reg,
		logger:  log.With().Str("component", "runner").Logger(),
	}
}

// Running reports whether a run is waiting on the engine.
func (r *Runner) Running() bool {
	return r.running.Load()
}

// Run executes one cycle for the given form.
func (r *Runner) Run(ctx context.Context, form request.Form) (*Render, error) {
	if !r.running.CompareAndSwap(false, true) {
		r.observe(metrics.OutcomeBusy, 0)
		return nil, ErrRunInProgress
	}
	defer r.release()
	if r.metrics != nil {
		r.metrics.RunsInFlight.Set(1)
	}

	start := time.Now()
	runID := uuid.NewString()
	logger := r.logger.With().Str("run_id", runID).Logger()

	req, err := r.builder.Build(form)
	if err != nil {
		r.observe(metrics.OutcomeValidation, time.Since(start))
		logger.Debug().Err(err).Msg("Form rejected")
		return nil, err
	}

	logger.Info().
		Str("ticker", req.Ticker).
		Str("strategy", string(req.Strategy.Name())).
		Str("start", req.DateRange.Start.Format(models.DateLayout)).
		Str("end", req.DateRange.End.Format(models.DateLayout)).
		Msg("Submitting backtest")

	resp, err := r.engine.RunBacktest(ctx, req)
	if err != nil {
		r.observe(outcomeOf(err), time.Since(start))
		logger.Error().Err(err).Msg("Backtest failed")
		return nil, fmt.Errorf("running backtest for %s: %w", req.Ticker, err)
	}

	render := Assemble(runID, req, resp)
	r.reportDegraded(render)
	r.observe(metrics.OutcomeSuccess, time.Since(start))

	logger.Info().
		Str("strategy_return", render.KPIs.StrategyReturn.Display()).
		Str("benchmark_return", render.KPIs.BenchmarkReturn.Display()).
		Dur("elapsed", time.Since(start)).
		Msg("Backtest rendered")

	return render, nil
}

// Assemble turns a successful engine response into a render document.
func Assemble(runID string, req models.BacktestRequest, resp *models.BacktestResponse) *Render {
	labels := chart.Labels{Ticker: req.Ticker}
	if req.BenchmarkTicker != nil {
		labels.BenchmarkTicker = *req.BenchmarkTicker
	}

	data := resp.ChartData
	return &Render{
		RunID:          runID,
		Request:        req,
		KPIs:           kpi.Normalize(resp.Metrics, data, req.ReferenceCapital),
		PriceChart:     chart.AssembleSeries(data, labels),
		MonthlyReturns: chart.FormatReturns(data.MonthlyReturns, "Monthly returns"),
		YearlyReturns:  chart.FormatReturns(data.YearlyReturns, "Yearly returns"),
	}
}

// Message converts a run error into the single line shown to the user.
func Message(err error) string {
	if err == nil {
		return ""
	}

	var validationErr *request.ValidationError
	var engineErr *engine.EngineError
	var transportErr *engine.TransportError

	switch {
	case errors.Is(err, ErrRunInProgress):
		return ErrRunInProgress.Error()
	case errors.As(err, &validationErr):
		return validationErr.Message
	case errors.As(err, &engineErr):
		return engineErr.Message
	case errors.As(err, &transportErr):
		return transportErr.Error()
	}
	return err.Error()
}

func outcomeOf(err error) string {
	var engineErr *engine.EngineError
	if errors.As(err, &engineErr) {
		return metrics.OutcomeEngine
	}
	return metrics.OutcomeTransport
}

func (r *Runner) release() {
	r.running.Store(false)
	if r.metrics != nil {
		r.metrics.RunsInFlight.Set(0)
	}
}

func (r *Runner) observe(outcome string, elapsed time.Duration) {
	if r.metrics != nil {
		r.metrics.ObserveRun(outcome, elapsed)
	}
}

func (r *Runner) reportDegraded(render *Render) {
	if r.metrics == nil {
		return
	}
	switch render.KPIs.BenchmarkReturn.Mode {
	case kpi.ModeAbsolute:
		r.metrics.Degraded(conditionZeroCapital)
	case kpi.ModeUnavailable:
		r.metrics.Degraded(conditionBenchmarkUnavailable)
	}
	if render.MonthlyReturns.NoData {
		r.metrics.Degraded(conditionNoMonthlyReturns)
	}
}
