package models

import (
	"encoding/json"
	"time"
)

// DateLayout is the wire format of every date the engine exchanges.
const DateLayout = "2006-01-02"

// DateRange is the backtest window derived from a period code.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// BacktestRequest is the normalized request sent to the backtesting engine.
type BacktestRequest struct {
	Ticker string
	// ReferenceCapital is only used to turn absolute values into percentages.
	ReferenceCapital float64
	DateRange        DateRange
	Strategy         Strategy
	Commission       Commission
	BenchmarkTicker  *string
	TakeProfit       *float64 // fraction, nil means disabled
	StopLoss         *float64 // fraction, nil means disabled
}

type strategyWire struct {
	Name   StrategyName          `json:"name"`
	Params map[string]ParamValue `json:"params"`
}

type requestWire struct {
	Ticker          string         `json:"ticker"`
	InitialCapital  float64        `json:"initialCapital"`
	StartDate       string         `json:"startDate"`
	EndDate         string         `json:"endDate"`
	Strategy        strategyWire   `json:"strategy"`
	Commission      map[string]any `json:"commission"`
	BenchmarkTicker *string        `json:"benchmarkTicker"`
	TakeProfit      *float64       `json:"takeProfit"`
	StopLoss        *float64       `json:"stopLoss"`
}

// MarshalJSON encodes the request in the engine's wire schema.
func (r BacktestRequest) MarshalJSON() ([]byte, error) {
	wire := requestWire{
		Ticker:          r.Ticker,
		InitialCapital:  r.ReferenceCapital,
		StartDate:       r.DateRange.Start.Format(DateLayout),
		EndDate:         r.DateRange.End.Format(DateLayout),
		Strategy:        strategyWire{Params: map[string]ParamValue{}},
		Commission:      map[string]any{"type": CommissionNone},
		BenchmarkTicker: r.BenchmarkTicker,
		TakeProfit:      r.TakeProfit,
		StopLoss:        r.StopLoss,
	}

	if r.Strategy != nil {
		wire.Strategy.Name = r.Strategy.Name()
		for _, p := range r.Strategy.Params() {
			wire.Strategy.Params[p.Key] = p.Value
		}
	}

	if r.Commission != nil {
		wire.Commission["type"] = r.Commission.Type()
		for key, value := range r.Commission.Fields() {
			wire.Commission[key] = value
		}
	}

	return json.Marshal(wire)
}

// Metrics are the engine's headline figures, already expressed in percent.
type Metrics struct {
	TotalReturn      float64 `json:"totalReturn"`
	AnnualizedReturn float64 `json:"annualizedReturn"`
	MaxDrawdown      float64 `json:"maxDrawdown"`
}

// Curve is a date-indexed series. Dates and Values are index aligned
// within one curve only.
type Curve struct {
	Dates  []string  `json:"dates"`
	Values []float64 `json:"values"`
}

// Present reports whether the curve exists and carries data.
func (c *Curve) Present() bool {
	return c != nil && len(c.Values) > 0
}

// Last returns the final value of the curve.
func (c *Curve) Last() (float64, bool) {
	if !c.Present() {
		return 0, false
	}
	return c.Values[len(c.Values)-1], true
}

// TradePoint is a single execution at the asset's price.
type TradePoint struct {
	Date       string  `json:"date"`
	AssetPrice float64 `json:"asset_price"`
}

// TradeMarkers holds the buy and sell executions of a run.
type TradeMarkers struct {
	BuyPoints  []TradePoint `json:"buy_points"`
	SellPoints []TradePoint `json:"sell_points"`
}

// ChartData is the curve bundle returned by the engine. Every curve is optional.
type ChartData struct {
	AssetName            string        `json:"assetName,omitempty"`
	BenchmarkAssetName   string        `json:"benchmarkAssetName,omitempty"`
	AssetPriceCurve      *Curve        `json:"asset_price_curve,omitempty"`
	PortfolioCurve       *Curve        `json:"portfolio_curve,omitempty"`
	AssetBenchmarkCurve  *Curve        `json:"asset_benchmark_curve,omitempty"`
	MarketBenchmarkCurve *Curve        `json:"market_benchmark_curve,omitempty"`
	MonthlyReturns       *Curve        `json:"monthly_returns,omitempty"`
	YearlyReturns        *Curve        `json:"yearly_returns,omitempty"`
	TradeMarkers         *TradeMarkers `json:"trade_markers,omitempty"`
}

// BacktestResponse is the engine's successful reply.
type BacktestResponse struct {
	Metrics   Metrics   `json:"metrics"`
	ChartData ChartData `json:"chart_data"`
}

// ErrorResponse is the body the engine sends with a non-success status.
type ErrorResponse struct {
	Error string `json:"error"`
}
