package request

import (
	"strconv"

	"github.com/Alias1177/BacktestView/models"
)

// Form is the raw UI state. Every input is kept exactly as the user typed it.
type Form struct {
	Preset           string                `json:"preset,omitempty"`
	Ticker           string                `json:"ticker"`
	ReferenceCapital string                `json:"referenceCapital"`
	Period           string                `json:"period"`
	Benchmark        string                `json:"benchmark"`
	Strategy         models.StrategyName   `json:"strategy"`
	StrategyFields   map[string]string     `json:"strategyFields,omitempty"`
	Commission       models.CommissionType `json:"commission"`
	CommissionFields map[string]string     `json:"commissionFields,omitempty"`
	TakeProfit       string                `json:"takeProfit"` // percent
	StopLoss         string                `json:"stopLoss"`   // percent
}

// DefaultStrategyFields returns the values a freshly selected strategy starts with.
func DefaultStrategyFields(name models.StrategyName) map[string]string {
	switch name {
	case models.StrategyFixedFrequency:
		return map[string]string{"frequency": "M", "amount": "1000", "day_of_week": "", "day_of_month": ""}
	case models.StrategySMACross:
		return map[string]string{"period": "20"}
	case models.StrategyDMACross:
		return map[string]string{"fast": "10", "slow": "30"}
	}
	return map[string]string{}
}

// DefaultCommissionFields returns the values a freshly selected commission type starts with.
// The rate is per ten thousand.
func DefaultCommissionFields(kind models.CommissionType) map[string]string {
	switch kind {
	case models.CommissionPercentage:
		return map[string]string{"rate": "3", "min_fee": "5"}
	case models.CommissionFixed:
		return map[string]string{"fee": "5"}
	}
	return map[string]string{}
}

// SelectStrategy switches the form to another strategy and resets its fields.
func SelectStrategy(form Form, name models.StrategyName) Form {
	form.Strategy = name
	form.StrategyFields = DefaultStrategyFields(name)
	return form
}

// SelectCommission switches the form to another commission type and resets its fields.
func SelectCommission(form Form, kind models.CommissionType) Form {
	form.Commission = kind
	form.CommissionFields = DefaultCommissionFields(kind)
	return form
}

// overlay copies the values of keys that exist in fields; unknown keys are dropped.
func overlay(fields map[string]string, values map[string]string) {
	for key, value := range values {
		if _, ok := fields[key]; ok {
			fields[key] = value
		}
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
