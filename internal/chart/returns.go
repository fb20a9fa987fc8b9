package chart

import "github.com/Alias1177/BacktestView/models"

// BarCategory is the colour class of a periodic return bar.
type BarCategory string

const (
	BarPositive BarCategory = "positive"
	BarNegative BarCategory = "negative"
)

var barColors = map[BarCategory]string{
	BarPositive: "#5470c6",
	BarNegative: "#ee6666",
}

// Bar is one period's return, in percent.
type Bar struct {
	Date     string      `json:"date"`
	Value    float64     `json:"value"`
	Category BarCategory `json:"category"`
	Color    string      `json:"color"`
}

// ReturnsChart is a bar specification. NoData tells the surface to clear
// the chart instead of drawing an empty one.
type ReturnsChart struct {
	Title  string `json:"title"`
	NoData bool   `json:"noData"`
	Unit   string `json:"unit,omitempty"`
	Bars   []Bar  `json:"bars,omitempty"`
}

// CategoryOf classifies a return by sign; zero is non-negative.
func CategoryOf(v float64) BarCategory {
	if v >= 0 {
		return BarPositive
	}
	return BarNegative
}

// FormatReturns turns a periodic returns curve into a bar specification.
func FormatReturns(curve *models.Curve, title string) ReturnsChart {
	if !curve.Present() {
		return ReturnsChart{Title: title, NoData: true}
	}

	bars := make([]Bar, len(curve.Values))
	for i, v := range curve.Values {
		var date string
		if i < len(curve.Dates) {
			date = curve.Dates[i]
		}
		category := CategoryOf(v)
		bars[i] = Bar{Date: date, Value: v, Category: category, Color: barColors[category]}
	}

	return ReturnsChart{Title: title, Unit: "%", Bars: bars}
}
