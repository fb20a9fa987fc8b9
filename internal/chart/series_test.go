package chart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/BacktestView/models"
)

func priceCurve() *models.Curve {
	return &models.Curve{
		Dates:  []string{"2024-02-29", "2024-03-01", "2024-03-04"},
		Values: []float64{12.1, 12.5, 12.9},
	}
}

func portfolioCurve() *models.Curve {
	return &models.Curve{
		Dates:  []string{"2024-03-01", "2024-03-04"},
		Values: []float64{10000, 10320},
	}
}

func seriesFor(chart PriceChart, key CurveKey) (LineSeries, bool) {
	for _, s := range chart.Series {
		if s.Curve == key {
			return s, true
		}
	}
	return LineSeries{}, false
}

func TestAllocate(t *testing.T) {
	tests := []struct {
		name string
		data models.ChartData
		want []AxisAllocation
	}{
		{
			name: "all curves",
			data: models.ChartData{AssetPriceCurve: priceCurve(), PortfolioCurve: portfolioCurve(), MarketBenchmarkCurve: portfolioCurve()},
			want: []AxisAllocation{
				{Axis: AxisPrice, Curves: []CurveKey{CurveAssetPrice}},
				{Axis: AxisValue, Curves: []CurveKey{CurvePortfolio, CurveMarketBenchmark}},
			},
		},
		{
			name: "price only",
			data: models.ChartData{AssetPriceCurve: priceCurve(), MarketBenchmarkCurve: &models.Curve{}},
			want: []AxisAllocation{
				{Axis: AxisPrice, Curves: []CurveKey{CurveAssetPrice}},
				{Axis: AxisValue, Curves: []CurveKey{}},
			},
		},
		{
			name: "asset benchmark is never charted",
			data: models.ChartData{AssetBenchmarkCurve: portfolioCurve()},
			want: []AxisAllocation{
				{Axis: AxisPrice, Curves: []CurveKey{}},
				{Axis: AxisValue, Curves: []CurveKey{}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Allocate(tt.data))
		})
	}
}

func TestAssembleSeriesDeclaresBothAxes(t *testing.T) {
	data := models.ChartData{AssetPriceCurve: priceCurve()}

	chart := AssembleSeries(data, Labels{Ticker: "qqq"})

	require.Len(t, chart.Axes, 2)
	assert.Equal(t, Axis{Name: "Price", Position: "left", Scale: true, Color: "#5470C6"}, chart.Axes[AxisPrice])
	assert.Equal(t, Axis{Name: "Value", Position: "right"}, chart.Axes[AxisValue])

	for _, s := range chart.Series {
		assert.NotEqual(t, AxisValue, s.Axis)
	}
	_, ok := seriesFor(chart, CurveMarketBenchmark)
	assert.False(t, ok)
}

func TestAssembleSeriesAxisBinding(t *testing.T) {
	data := models.ChartData{
		AssetName:            "Invesco QQQ",
		BenchmarkAssetName:   "Nasdaq 100",
		AssetPriceCurve:      priceCurve(),
		PortfolioCurve:       portfolioCurve(),
		MarketBenchmarkCurve: portfolioCurve(),
	}

	chart := AssembleSeries(data, Labels{Ticker: "QQQ", BenchmarkTicker: "^NDX"})

	assert.Equal(t, "Equity curve: Invesco QQQ (QQQ)", chart.Title)
	assert.Equal(t, []string{"Price (Invesco QQQ)", "Strategy value (Invesco QQQ)", "Market benchmark (Nasdaq 100)"}, chart.Legend)

	price, _ := seriesFor(chart, CurveAssetPrice)
	portfolio, _ := seriesFor(chart, CurvePortfolio)
	market, _ := seriesFor(chart, CurveMarketBenchmark)
	assert.Equal(t, AxisPrice, price.Axis)
	assert.Equal(t, AxisValue, portfolio.Axis)
	assert.Equal(t, AxisValue, market.Axis)
	assert.True(t, market.Dashed)
	assert.True(t, chart.Axes[AxisValue].Scale)
}

func TestAssembleSeriesNameFallbacks(t *testing.T) {
	data := models.ChartData{PortfolioCurve: portfolioCurve(), MarketBenchmarkCurve: portfolioCurve()}

	chart := AssembleSeries(data, Labels{Ticker: "spy", BenchmarkTicker: "^GSPC"})
	assert.Equal(t, []string{"Strategy value (SPY)", "Market benchmark (^GSPC)"}, chart.Legend)
	assert.Equal(t, "Equity curve: SPY (SPY)", chart.Title)

	chart = AssembleSeries(data, Labels{Ticker: "spy"})
	assert.Equal(t, "Market benchmark (N/A)", chart.Legend[1])
}

func TestAssembleSeriesDomain(t *testing.T) {
	tests := []struct {
		name       string
		data       models.ChartData
		wantDomain CurveKey
		wantDates  []string
	}{
		{
			name:       "price dates win",
			data:       models.ChartData{AssetPriceCurve: priceCurve(), PortfolioCurve: portfolioCurve()},
			wantDomain: CurveAssetPrice,
			wantDates:  priceCurve().Dates,
		},
		{
			name:       "portfolio dates when price is absent",
			data:       models.ChartData{PortfolioCurve: portfolioCurve()},
			wantDomain: CurvePortfolio,
			wantDates:  portfolioCurve().Dates,
		},
		{
			name:      "nothing to plot",
			data:      models.ChartData{},
			wantDates: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chart := AssembleSeries(tt.data, Labels{Ticker: "X"})
			assert.Equal(t, tt.wantDomain, chart.Domain)
			assert.Equal(t, tt.wantDates, chart.XAxis)
		})
	}
}

func TestAssembleSeriesPlotsShorterCurvesPositionally(t *testing.T) {
	data := models.ChartData{AssetPriceCurve: priceCurve(), PortfolioCurve: portfolioCurve()}

	chart := AssembleSeries(data, Labels{Ticker: "X"})

	portfolio, ok := seriesFor(chart, CurvePortfolio)
	require.True(t, ok)
	assert.Len(t, chart.XAxis, 3)
	assert.Equal(t, []float64{10000, 10320}, portfolio.Data)
}

func TestAssembleSeriesTradeMarkers(t *testing.T) {
	data := models.ChartData{
		AssetPriceCurve: priceCurve(),
		PortfolioCurve:  &models.Curve{Dates: []string{"2024-03-01"}, Values: []float64{99999}},
		TradeMarkers: &models.TradeMarkers{
			BuyPoints:  []models.TradePoint{{Date: "2024-03-01", AssetPrice: 12.5}},
			SellPoints: []models.TradePoint{{Date: "2024-03-04", AssetPrice: 12.9}},
		},
	}

	chart := AssembleSeries(data, Labels{Ticker: "X"})

	price, ok := seriesFor(chart, CurveAssetPrice)
	require.True(t, ok)
	require.Len(t, price.Markers, 2)

	buy := price.Markers[0]
	assert.Equal(t, MarkerBuy, buy.Kind)
	assert.Equal(t, "2024-03-01", buy.X)
	assert.Equal(t, 12.5, buy.Y)
	assert.Equal(t, 0, buy.Rotate)

	sell := price.Markers[1]
	assert.Equal(t, MarkerSell, sell.Kind)
	assert.Equal(t, 180, sell.Rotate)
	assert.NotEqual(t, buy.Color, sell.Color)

	portfolio, _ := seriesFor(chart, CurvePortfolio)
	assert.Empty(t, portfolio.Markers)
}

func TestAssembleSeriesDropsMarkersWithoutPriceCurve(t *testing.T) {
	data := models.ChartData{
		PortfolioCurve: portfolioCurve(),
		TradeMarkers:   &models.TradeMarkers{BuyPoints: []models.TradePoint{{Date: "2024-03-01", AssetPrice: 12.5}}},
	}

	chart := AssembleSeries(data, Labels{Ticker: "X"})

	for _, s := range chart.Series {
		assert.Empty(t, s.Markers)
	}
}
