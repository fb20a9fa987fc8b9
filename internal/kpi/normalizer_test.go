package kpi

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/BacktestView/models"
)

func curve(values ...float64) *models.Curve {
	dates := make([]string, len(values))
	for i := range values {
		dates[i] = "2024-01-01"
	}
	return &models.Curve{Dates: dates, Values: values}
}

func TestNormalizeBenchmarkPercent(t *testing.T) {
	tests := []struct {
		name    string
		capital float64
		final   float64
	}{
		{"gain", 10000, 11234.5},
		{"loss", 10000, 8765.4321},
		{"odd capital", 3333, 4000},
		{"flat", 100000, 100000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := models.ChartData{AssetBenchmarkCurve: curve(tt.capital, tt.final)}

			summary := Normalize(models.Metrics{}, data, tt.capital)

			want := math.Round((tt.final/tt.capital-1)*100*100) / 100
			assert.Equal(t, ModePercent, summary.BenchmarkReturn.Mode)
			assert.InDelta(t, want, summary.BenchmarkReturn.Value, 1e-9)
			assert.Equal(t, "asset_benchmark_curve", summary.BenchmarkSource)
		})
	}
}

func TestNormalizeZeroCapitalUsesAbsoluteMode(t *testing.T) {
	data := models.ChartData{MarketBenchmarkCurve: curve(0, 250, 1234.4)}

	var summary Summary
	require.NotPanics(t, func() { summary = Normalize(models.Metrics{}, data, 0) })

	assert.Equal(t, ModeAbsolute, summary.BenchmarkReturn.Mode)
	assert.Equal(t, 1234.4, summary.BenchmarkReturn.Value)
	assert.Equal(t, "1234 (absolute)", summary.BenchmarkReturn.Display())
	assert.NotContains(t, summary.BenchmarkReturn.Display(), "%")

	zero := Normalize(models.Metrics{}, models.ChartData{MarketBenchmarkCurve: curve(0, 0)}, 0)
	assert.Equal(t, ModeAbsolute, zero.BenchmarkReturn.Mode)
	assert.Equal(t, "0", zero.BenchmarkReturn.Display())
}

func TestNormalizeBenchmarkSourcePreference(t *testing.T) {
	tests := []struct {
		name       string
		data       models.ChartData
		wantSource string
		wantMode   Mode
		wantValue  float64
	}{
		{
			name:       "market benchmark wins",
			data:       models.ChartData{MarketBenchmarkCurve: curve(100, 120), AssetBenchmarkCurve: curve(100, 90)},
			wantSource: "market_benchmark_curve",
			wantMode:   ModePercent,
			wantValue:  20,
		},
		{
			name:       "empty market benchmark falls back",
			data:       models.ChartData{MarketBenchmarkCurve: &models.Curve{}, AssetBenchmarkCurve: curve(100, 90)},
			wantSource: "asset_benchmark_curve",
			wantMode:   ModePercent,
			wantValue:  -10,
		},
		{
			name:     "empty asset benchmark is not available",
			data:     models.ChartData{AssetBenchmarkCurve: &models.Curve{}},
			wantMode: ModeUnavailable,
		},
		{
			name:     "no benchmark at all",
			data:     models.ChartData{},
			wantMode: ModeUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := Normalize(models.Metrics{}, tt.data, 100)

			assert.Equal(t, tt.wantSource, summary.BenchmarkSource)
			assert.Equal(t, tt.wantMode, summary.BenchmarkReturn.Mode)
			assert.Equal(t, tt.wantValue, summary.BenchmarkReturn.Value)
		})
	}
}

func TestNormalizeUnavailableDiffersFromZeroCapital(t *testing.T) {
	unavailable := Normalize(models.Metrics{}, models.ChartData{AssetBenchmarkCurve: &models.Curve{}}, 0)

	assert.Equal(t, ModeUnavailable, unavailable.BenchmarkReturn.Mode)
	assert.Equal(t, "N/A", unavailable.BenchmarkReturn.Display())
	assert.Equal(t, PolarityPositive, unavailable.BenchmarkReturn.Polarity())
}

func TestNormalizePassesEngineMetricsThrough(t *testing.T) {
	metrics := models.Metrics{TotalReturn: 12.345, AnnualizedReturn: -3.21, MaxDrawdown: -18.7}

	summary := Normalize(metrics, models.ChartData{}, 10000)

	assert.Equal(t, 12.345, summary.StrategyReturn.Value)
	assert.Equal(t, -3.21, summary.AnnualizedReturn.Value)
	assert.Equal(t, -18.7, summary.MaxDrawdown.Value)
	assert.Equal(t, PolarityPositive, summary.StrategyReturn.Polarity())
	assert.Equal(t, PolarityNegative, summary.AnnualizedReturn.Polarity())
	assert.Equal(t, "-18.70%", summary.MaxDrawdown.Display())
	assert.Len(t, summary.Metrics(), 4)
}

func TestMetricJSON(t *testing.T) {
	data, err := json.Marshal(Metric{Label: "Benchmark return", Mode: ModeUnavailable})
	require.NoError(t, err)
	assert.JSONEq(t, `{"label":"Benchmark return","value":null,"mode":"unavailable","display":"N/A","polarity":"positive"}`, string(data))

	data, err = json.Marshal(Metric{Label: "Strategy return", Value: -1.5, Mode: ModePercent})
	require.NoError(t, err)
	assert.JSONEq(t, `{"label":"Strategy return","value":-1.5,"mode":"percent","display":"-1.50%","polarity":"negative"}`, string(data))
}
