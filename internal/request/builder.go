package request

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/Alias1177/BacktestView/config"
	"github.com/Alias1177/BacktestView/models"
)

// ErrUnknownPreset is returned by ApplyPreset for keys missing from the catalog.
var ErrUnknownPreset = errors.New("unknown preset")

// ValidationError is a local input problem; no request is sent when it occurs.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Builder turns form state into engine requests.
type Builder struct {
	catalog *config.Catalog
	now     func() time.Time
	logger  zerolog.Logger
}

// Option customises a Builder.
type Option func(*Builder)

// WithClock replaces the source of "today".
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// NewBuilder creates a builder bound to an immutable preset catalog.
func NewBuilder(catalog *config.Catalog, opts ...Option) *Builder {
	if catalog == nil {
		catalog = config.DefaultCatalog()
	}
	b := &Builder{
		catalog: catalog,
		now:     time.Now,
		logger:  log.With().Str("component", "request_builder").Logger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Catalog exposes the presets the builder was created with.
func (b *Builder) Catalog() *config.Catalog {
	return b.catalog
}

// Build validates the form and produces the engine request. All unit
// conversions happen here and nowhere else.
func (b *Builder) Build(form Form) (models.BacktestRequest, error) {
	ticker := strings.ToUpper(strings.TrimSpace(form.Ticker))
	if ticker == "" {
		return models.BacktestRequest{}, &ValidationError{Field: "ticker", Message: "please enter an ETF or stock ticker"}
	}

	capital, ok := parseNumber(form.ReferenceCapital)
	if ok && capital < 0 {
		return models.BacktestRequest{}, &ValidationError{Field: "referenceCapital", Message: "reference capital must not be negative"}
	}
	if !ok {
		capital = 0
	}

	strategy, err := buildStrategy(form.Strategy, form.StrategyFields)
	if err != nil {
		return models.BacktestRequest{}, err
	}

	commission, err := buildCommission(form.Commission, form.CommissionFields)
	if err != nil {
		return models.BacktestRequest{}, err
	}

	req := models.BacktestRequest{
		Ticker:           ticker,
		ReferenceCapital: capital,
		DateRange:        models.DateRangeFor(form.Period, b.now()),
		Strategy:         strategy,
		Commission:       commission,
		TakeProfit:       percentToFraction(form.TakeProfit),
		StopLoss:         percentToFraction(form.StopLoss),
	}
	if benchmark := strings.TrimSpace(form.Benchmark); benchmark != "" {
		req.BenchmarkTicker = &benchmark
	}

	b.logger.Debug().
		Str("ticker", req.Ticker).
		Str("strategy", string(strategy.Name())).
		Str("commission", string(commission.Type())).
		Msg("Built backtest request")
	return req, nil
}

// ApplyPreset overwrites the form with the preset's values in one step and
// resets the preset selector.
func (b *Builder) ApplyPreset(form Form, key string) (Form, error) {
	preset, ok := b.catalog.Lookup(key)
	if !ok {
		return form, fmt.Errorf("%w: %q", ErrUnknownPreset, key)
	}
	cfg := preset.Config

	form.Ticker = cfg.Ticker
	form.ReferenceCapital = formatNumber(cfg.InitialCapital)
	form.Period = cfg.Period
	form.Benchmark = cfg.Benchmark

	form = SelectStrategy(form, cfg.Strategy.Name)
	overlay(form.StrategyFields, cfg.Strategy.Params)

	form = SelectCommission(form, cfg.Commission.Type)
	overlay(form.CommissionFields, cfg.Commission.Params)

	form.TakeProfit = optionalPercent(cfg.TakeProfit)
	form.StopLoss = optionalPercent(cfg.StopLoss)
	form.Preset = ""

	return form, nil
}

func buildStrategy(name models.StrategyName, raw map[string]string) (models.Strategy, error) {
	keys, ok := models.StrategyFieldKeys[name]
	if !ok {
		return nil, &ValidationError{Field: "strategy", Message: fmt.Sprintf("unknown strategy %q", name)}
	}

	fields := DefaultStrategyFields(name)
	for _, key := range keys {
		if value, ok := raw[key]; ok {
			fields[key] = value
		}
	}
	param := func(key string) models.ParamValue { return coerceParam(key, fields[key]) }

	switch name {
	case models.StrategyFixedFrequency:
		return models.FixedFrequency{
			Frequency:  param("frequency"),
			Amount:     param("amount"),
			DayOfWeek:  param("day_of_week"),
			DayOfMonth: param("day_of_month"),
		}, nil
	case models.StrategySMACross:
		return models.SMACross{Period: param("period")}, nil
	case models.StrategyDMACross:
		return models.DMACross{Fast: param("fast"), Slow: param("slow")}, nil
	default:
		return models.BuyAndHold{}, nil
	}
}

func buildCommission(kind models.CommissionType, raw map[string]string) (models.Commission, error) {
	switch kind {
	case models.CommissionPercentage:
		c := models.PercentageCommission{MinFee: optionalNumber(raw["min_fee"])}
		if rate, ok := parseNumber(raw["rate"]); ok {
			// per ten thousand -> fraction
			fraction := decimal.NewFromFloat(rate).Shift(-4).InexactFloat64()
			c.Rate = &fraction
		}
		return c, nil
	case models.CommissionFixed:
		return models.FixedCommission{Fee: optionalNumber(raw["fee"])}, nil
	case models.CommissionNone, "":
		return models.NoCommission{}, nil
	}
	return nil, &ValidationError{Field: "commission", Message: fmt.Sprintf("unknown commission type %q", kind)}
}

// coerceParam keeps numbers numeric and everything else as text. Empty
// schedule days mean "use the default day" and become null.
func coerceParam(key, raw string) models.ParamValue {
	if raw == "" && (key == "day_of_week" || key == "day_of_month") {
		return models.NullParam()
	}
	if v, ok := parseNumber(raw); ok {
		return models.NumberParam(v)
	}
	return models.StringParam(raw)
}

func parseNumber(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func optionalNumber(raw string) *float64 {
	v, ok := parseNumber(raw)
	if !ok {
		return nil
	}
	return &v
}

func percentToFraction(raw string) *float64 {
	v, ok := parseNumber(raw)
	if !ok {
		return nil
	}
	fraction := decimal.NewFromFloat(v).Shift(-2).InexactFloat64()
	return &fraction
}

func optionalPercent(v *float64) string {
	if v == nil || *v == 0 {
		return ""
	}
	return formatNumber(*v)
}
