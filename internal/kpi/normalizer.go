package kpi

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"github.com/Alias1177/BacktestView/models"
)

// Mode says how a metric's value must be read.
type Mode string

const (
	ModePercent     Mode = "percent"
	ModeAbsolute    Mode = "absolute" // no reference capital, raw final value
	ModeUnavailable Mode = "unavailable"
)

// Polarity is the sign class the rendering surface colours a metric by.
type Polarity string

const (
	PolarityPositive Polarity = "positive"
	PolarityNegative Polarity = "negative"
)

// Metric is one display-ready KPI.
type Metric struct {
	Label string
	Value float64
	Mode  Mode
}

// Display formats the metric for a KPI card.
func (m Metric) Display() string {
	switch m.Mode {
	case ModeUnavailable:
		return "N/A"
	case ModeAbsolute:
		if m.Value == 0 {
			return "0"
		}
		return decimal.NewFromFloat(m.Value).StringFixed(0) + " (absolute)"
	}
	return decimal.NewFromFloat(m.Value).StringFixed(2) + "%"
}

// Polarity classifies the metric by sign; missing values count as non-negative.
func (m Metric) Polarity() Polarity {
	if m.Mode != ModeUnavailable && m.Value < 0 {
		return PolarityNegative
	}
	return PolarityPositive
}

type metricJSON struct {
	Label    string   `json:"label"`
	Value    *float64 `json:"value"`
	Mode     Mode     `json:"mode"`
	Display  string   `json:"display"`
	Polarity Polarity `json:"polarity"`
}

// MarshalJSON implements json.Marshaler.
func (m Metric) MarshalJSON() ([]byte, error) {
	out := metricJSON{
		Label:    m.Label,
		Mode:     m.Mode,
		Display:  m.Display(),
		Polarity: m.Polarity(),
	}
	if m.Mode != ModeUnavailable {
		v := m.Value
		out.Value = &v
	}
	return json.Marshal(out)
}

// Summary is the four-card KPI strip.
type Summary struct {
	StrategyReturn   Metric `json:"strategyReturn"`
	BenchmarkReturn  Metric `json:"benchmarkReturn"`
	AnnualizedReturn Metric `json:"annualizedReturn"`
	MaxDrawdown      Metric `json:"maxDrawdown"`
	// BenchmarkSource names the curve the benchmark figure came from, empty when none.
	BenchmarkSource string `json:"benchmarkSource,omitempty"`
}

// Metrics returns the cards in display order.
func (s Summary) Metrics() []Metric {
	return []Metric{s.StrategyReturn, s.BenchmarkReturn, s.AnnualizedReturn, s.MaxDrawdown}
}

type benchmarkCandidate struct {
	name  string
	curve func(models.ChartData) *models.Curve
}

// benchmarkPreference is evaluated in order; the first present curve wins.
var benchmarkPreference = []benchmarkCandidate{
	{name: "market_benchmark_curve", curve: func(d models.ChartData) *models.Curve { return d.MarketBenchmarkCurve }},
	{name: "asset_benchmark_curve", curve: func(d models.ChartData) *models.Curve { return d.AssetBenchmarkCurve }},
}

// Normalize converts engine metrics and curves into display metrics.
// The engine's own figures pass through unchanged.
func Normalize(metrics models.Metrics, data models.ChartData, referenceCapital float64) Summary {
	summary := Summary{
		StrategyReturn:   Metric{Label: "Strategy return", Value: metrics.TotalReturn, Mode: ModePercent},
		AnnualizedReturn: Metric{Label: "Annualized return", Value: metrics.AnnualizedReturn, Mode: ModePercent},
		MaxDrawdown:      Metric{Label: "Max drawdown", Value: metrics.MaxDrawdown, Mode: ModePercent},
	}

	summary.BenchmarkSource, summary.BenchmarkReturn = benchmarkReturn(data, referenceCapital)
	return summary
}

func benchmarkReturn(data models.ChartData, referenceCapital float64) (string, Metric) {
	metric := Metric{Label: "Benchmark return", Mode: ModeUnavailable}

	for _, candidate := range benchmarkPreference {
		last, ok := candidate.curve(data).Last()
		if !ok {
			continue
		}
		if referenceCapital > 0 {
			metric.Mode = ModePercent
			metric.Value = PercentOfCapital(last, referenceCapital)
		} else {
			metric.Mode = ModeAbsolute
			metric.Value = last
		}
		return candidate.name, metric
	}

	return "", metric
}

// PercentOfCapital returns (value/capital - 1) * 100 rounded to two places.
// capital must be positive.
func PercentOfCapital(value, capital float64) float64 {
	ratio := decimal.NewFromFloat(value).Div(decimal.NewFromFloat(capital))
	return ratio.Sub(decimal.NewFromInt(1)).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
}
