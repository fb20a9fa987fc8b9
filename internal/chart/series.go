package chart

import (
	"fmt"
	"strings"

	"github.com/Alias1177/BacktestView/models"
)

// CurveKey names a curve of the engine's bundle.
type CurveKey string

const (
	CurveAssetPrice      CurveKey = "asset_price_curve"
	CurvePortfolio       CurveKey = "portfolio_curve"
	CurveMarketBenchmark CurveKey = "market_benchmark_curve"
)

// Axis indexes. The price axis and the value axis never share a scale.
const (
	AxisPrice = 0
	AxisValue = 1
)

// Axis is a value axis declaration. It is emitted even when no series uses it.
type Axis struct {
	Name     string `json:"name"`
	Position string `json:"position"`
	Scale    bool   `json:"scale"` // auto-fit to data instead of starting at zero
	Color    string `json:"color,omitempty"`
}

// MarkerKind is the category of a trade marker.
type MarkerKind string

const (
	MarkerBuy  MarkerKind = "buy"
	MarkerSell MarkerKind = "sell"
)

// Marker is a trade execution drawn in the price axis' coordinate space.
type Marker struct {
	Kind   MarkerKind `json:"kind"`
	Name   string     `json:"name"`
	Label  string     `json:"label"`
	X      string     `json:"x"`
	Y      float64    `json:"y"`
	Symbol string     `json:"symbol"`
	Rotate int        `json:"rotate"`
	Color  string     `json:"color"`
}

// LineSeries is one curve bound to one axis.
type LineSeries struct {
	Name    string    `json:"name"`
	Curve   CurveKey  `json:"curve"`
	Axis    int       `json:"axis"`
	Data    []float64 `json:"data"`
	Color   string    `json:"color"`
	Dashed  bool      `json:"dashed"`
	Markers []Marker  `json:"markers,omitempty"`
}

// PriceChart is the declarative dual-axis chart specification.
type PriceChart struct {
	Title  string       `json:"title"`
	Domain CurveKey     `json:"domain,omitempty"` // curve whose dates form the x axis
	XAxis  []string     `json:"xAxis"`
	Axes   []Axis       `json:"axes"`
	Series []LineSeries `json:"series"`
	Legend []string     `json:"legend"`
}

// Labels carries what the request knew about the instruments.
type Labels struct {
	Ticker          string
	BenchmarkTicker string
}

// AxisAllocation lists the curves bound to one axis, in preference order.
type AxisAllocation struct {
	Axis   int
	Curves []CurveKey
}

type seriesRule struct {
	curve   CurveKey
	name    func(names displayNames) string
	color   string
	dashed  bool
	markers bool
}

type axisRule struct {
	axis   Axis
	series []seriesRule
}

type displayNames struct {
	asset     string
	benchmark string
}

// allocation is the whole axis policy: each axis with its ordered curves.
var allocation = []axisRule{
	{
		axis: Axis{Name: "Price", Position: "left", Color: "#5470C6"},
		series: []seriesRule{
			{
				curve:   CurveAssetPrice,
				name:    func(n displayNames) string { return fmt.Sprintf("Price (%s)", n.asset) },
				color:   "#5470C6",
				markers: true,
			},
		},
	},
	{
		axis: Axis{Name: "Value", Position: "right", Color: "#91CC75"},
		series: []seriesRule{
			{
				curve: CurvePortfolio,
				name:  func(n displayNames) string { return fmt.Sprintf("Strategy value (%s)", n.asset) },
				color: "#91CC75",
			},
			{
				curve:  CurveMarketBenchmark,
				name:   func(n displayNames) string { return fmt.Sprintf("Market benchmark (%s)", n.benchmark) },
				color:  "#FAC858",
				dashed: true,
			},
		},
	},
}

// domainPreference picks the x axis: the first present curve supplies the dates.
var domainPreference = []CurveKey{CurveAssetPrice, CurvePortfolio}

func lookupCurve(data models.ChartData, key CurveKey) *models.Curve {
	switch key {
	case CurveAssetPrice:
		return data.AssetPriceCurve
	case CurvePortfolio:
		return data.PortfolioCurve
	case CurveMarketBenchmark:
		return data.MarketBenchmarkCurve
	}
	return nil
}

// Allocate evaluates the axis policy against a bundle. Every axis is
// returned; absent curves are skipped.
func Allocate(data models.ChartData) []AxisAllocation {
	out := make([]AxisAllocation, len(allocation))
	for i, rule := range allocation {
		out[i] = AxisAllocation{Axis: i, Curves: []CurveKey{}}
		for _, s := range rule.series {
			if lookupCurve(data, s.curve).Present() {
				out[i].Curves = append(out[i].Curves, s.curve)
			}
		}
	}
	return out
}

// Domain returns the curve supplying the category axis and its dates.
// Other curves are plotted by index against these dates.
func Domain(data models.ChartData) (CurveKey, []string) {
	for _, key := range domainPreference {
		if c := lookupCurve(data, key); c.Present() {
			return key, c.Dates
		}
	}
	return "", []string{}
}

// AssembleSeries builds the dual-axis chart specification for a result.
func AssembleSeries(data models.ChartData, labels Labels) PriceChart {
	ticker := strings.ToUpper(labels.Ticker)
	names := displayNames{
		asset:     firstNonEmpty(data.AssetName, ticker),
		benchmark: firstNonEmpty(data.BenchmarkAssetName, labels.BenchmarkTicker, "N/A"),
	}

	chart := PriceChart{
		Title:  fmt.Sprintf("Equity curve: %s (%s)", names.asset, ticker),
		Axes:   make([]Axis, 0, len(allocation)),
		Series: []LineSeries{},
		Legend: []string{},
	}
	chart.Domain, chart.XAxis = Domain(data)

	allocated := Allocate(data)
	for i, rule := range allocation {
		bound := make(map[CurveKey]bool, len(allocated[i].Curves))
		for _, key := range allocated[i].Curves {
			bound[key] = true
		}

		for _, s := range rule.series {
			if !bound[s.curve] {
				continue
			}
			series := LineSeries{
				Name:   s.name(names),
				Curve:  s.curve,
				Axis:   i,
				Data:   lookupCurve(data, s.curve).Values,
				Color:  s.color,
				Dashed: s.dashed,
			}
			if s.markers {
				series.Markers = tradeMarkers(data.TradeMarkers)
			}
			chart.Series = append(chart.Series, series)
			chart.Legend = append(chart.Legend, series.Name)
		}

		axis := Axis{Name: rule.axis.Name, Position: rule.axis.Position}
		if len(bound) > 0 {
			axis = rule.axis
			axis.Scale = true
		}
		chart.Axes = append(chart.Axes, axis)
	}

	return chart
}

func tradeMarkers(markers *models.TradeMarkers) []Marker {
	if markers == nil {
		return nil
	}
	out := make([]Marker, 0, len(markers.BuyPoints)+len(markers.SellPoints))
	for _, p := range markers.BuyPoints {
		out = append(out, Marker{
			Kind: MarkerBuy, Name: "Buy", Label: "B",
			X: p.Date, Y: p.AssetPrice,
			Symbol: "triangle", Rotate: 0, Color: "#07c793",
		})
	}
	for _, p := range markers.SellPoints {
		out = append(out, Marker{
			Kind: MarkerSell, Name: "Sell", Label: "S",
			X: p.Date, Y: p.AssetPrice,
			Symbol: "triangle", Rotate: 180, Color: "#fb1031",
		})
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
