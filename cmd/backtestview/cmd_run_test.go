package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alias1177/BacktestView/config"
	"github.com/Alias1177/BacktestView/internal/request"
	"github.com/Alias1177/BacktestView/internal/run"
	"github.com/Alias1177/BacktestView/models"
)

func defaultFlags() runFlags {
	return runFlags{
		capital:    "10000",
		period:     "1y",
		strategy:   string(models.StrategyFixedFrequency),
		commission: string(models.CommissionPercentage),
	}
}

func changedSet(flags ...string) func(string) bool {
	set := map[string]bool{}
	for _, f := range flags {
		set[f] = true
	}
	return func(name string) bool { return set[name] }
}

func TestFormFromFlags(t *testing.T) {
	builder := request.NewBuilder(config.DefaultCatalog())

	tests := []struct {
		name    string
		opts    func(runFlags) runFlags
		changed []string
		check   func(t *testing.T, form request.Form)
	}{
		{
			name: "plain flags use variant defaults",
			opts: func(o runFlags) runFlags { o.ticker = "spy"; return o },
			check: func(t *testing.T, form request.Form) {
				assert.Equal(t, "spy", form.Ticker)
				assert.Equal(t, "M", form.StrategyFields["frequency"])
				assert.Equal(t, "3", form.CommissionFields["rate"])
			},
		},
		{
			name: "params override defaults",
			opts: func(o runFlags) runFlags {
				o.strategy = string(models.StrategySMACross)
				o.params = map[string]string{"period": "50"}
				o.commissionParams = map[string]string{"rate": "1"}
				return o
			},
			check: func(t *testing.T, form request.Form) {
				assert.Equal(t, map[string]string{"period": "50"}, form.StrategyFields)
				assert.Equal(t, "1", form.CommissionFields["rate"])
				assert.Equal(t, "5", form.CommissionFields["min_fee"])
			},
		},
		{
			name: "preset keeps its values for unchanged flags",
			opts: func(o runFlags) runFlags { o.preset = "tech-trend"; return o },
			check: func(t *testing.T, form request.Form) {
				assert.Equal(t, "QQQ", form.Ticker)
				assert.Equal(t, "5y", form.Period)
				assert.Equal(t, models.StrategyDMACross, form.Strategy)
				assert.Equal(t, "50", form.StrategyFields["slow"])
			},
		},
		{
			name: "changed flags override the preset",
			opts: func(o runFlags) runFlags {
				o.preset = "tech-trend"
				o.stopLoss = "5"
				o.strategy = string(models.StrategyBuyAndHold)
				return o
			},
			changed: []string{"stop-loss", "strategy"},
			check: func(t *testing.T, form request.Form) {
				assert.Equal(t, "QQQ", form.Ticker)
				assert.Equal(t, "5", form.StopLoss)
				assert.Equal(t, "30", form.TakeProfit)
				assert.Equal(t, models.StrategyBuyAndHold, form.Strategy)
				assert.Empty(t, form.StrategyFields)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form, err := formFromFlags(builder, tt.opts(defaultFlags()), changedSet(tt.changed...))
			require.NoError(t, err)
			tt.check(t, form)
		})
	}
}

func TestFormFromFlagsUnknownPreset(t *testing.T) {
	opts := defaultFlags()
	opts.preset = "nope"

	_, err := formFromFlags(request.NewBuilder(config.DefaultCatalog()), opts, changedSet())
	assert.ErrorIs(t, err, request.ErrUnknownPreset)
}

func TestPrintRender(t *testing.T) {
	req := models.BacktestRequest{
		Ticker:           "QQQ",
		ReferenceCapital: 10000,
		DateRange:        models.DateRangeFor("1y", time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)),
		Strategy:         models.BuyAndHold{},
		Commission:       models.NoCommission{},
	}
	resp := &models.BacktestResponse{
		Metrics: models.Metrics{TotalReturn: 12.5, AnnualizedReturn: 12.5, MaxDrawdown: -3},
		ChartData: models.ChartData{
			AssetPriceCurve: &models.Curve{Dates: []string{"2026-01-02"}, Values: []float64{400}},
			MonthlyReturns:  &models.Curve{Dates: []string{"2026-01", "2026-02"}, Values: []float64{1, -2}},
		},
	}

	var out bytes.Buffer
	require.NoError(t, printRender(&out, run.Assemble("abc", req, resp)))

	text := out.String()
	assert.Contains(t, text, "Equity curve: QQQ (QQQ)  2025-10-16 → 2026-10-16")
	assert.Contains(t, text, "12.50%")
	assert.Contains(t, text, "-3.00%")
	assert.Contains(t, text, "N/A")
	assert.Contains(t, text, "Monthly returns: 2 periods")
	assert.Contains(t, text, "Yearly returns: no data")
}
