package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ParamKind tags the dynamic type of a strategy parameter.
type ParamKind int

const (
	ParamNull ParamKind = iota
	ParamNumber
	ParamString
)

// ParamValue is a strategy parameter: a number, a string or null.
type ParamValue struct {
	Kind ParamKind
	Num  float64
	Str  string
}

// NumberParam wraps a numeric field value.
func NumberParam(v float64) ParamValue { return ParamValue{Kind: ParamNumber, Num: v} }

// StringParam wraps a field value that is not a number.
func StringParam(s string) ParamValue { return ParamValue{Kind: ParamString, Str: s} }

// NullParam is a field left for the engine to default.
func NullParam() ParamValue { return ParamValue{} }

// MarshalJSON implements json.Marshaler.
func (p ParamValue) MarshalJSON() ([]byte, error) {
	switch p.Kind {
	case ParamNumber:
		return json.Marshal(p.Num)
	case ParamString:
		return json.Marshal(p.Str)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *ParamValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*p = NullParam()
	case float64:
		*p = NumberParam(v)
	case string:
		*p = StringParam(v)
	default:
		return fmt.Errorf("unsupported param value %s", string(data))
	}
	return nil
}

// String renders the value the way a form field would hold it.
func (p ParamValue) String() string {
	switch p.Kind {
	case ParamNumber:
		return formatNumber(p.Num)
	case ParamString:
		return p.Str
	default:
		return ""
	}
}

// Param is a single key/value pair of a strategy variant.
type Param struct {
	Key   string
	Value ParamValue
}

// StrategyName identifies a strategy variant.
type StrategyName string

const (
	StrategyFixedFrequency StrategyName = "fixed_frequency"
	StrategySMACross       StrategyName = "sma_cross"
	StrategyDMACross       StrategyName = "dma_cross"
	StrategyBuyAndHold     StrategyName = "buy_and_hold"
)

// Strategy is a tagged union keyed by Name. Each variant only carries
// its own parameters.
type Strategy interface {
	Name() StrategyName
	Params() []Param
}

// FixedFrequency invests a fixed amount on a schedule.
type FixedFrequency struct {
	Frequency  ParamValue
	Amount     ParamValue
	DayOfWeek  ParamValue // null: engine picks the default day
	DayOfMonth ParamValue // null: engine picks the default day
}

// Name implements Strategy.
func (FixedFrequency) Name() StrategyName { return StrategyFixedFrequency }

// Params implements Strategy.
func (s FixedFrequency) Params() []Param {
	return []Param{
		{Key: "frequency", Value: s.Frequency},
		{Key: "amount", Value: s.Amount},
		{Key: "day_of_week", Value: s.DayOfWeek},
		{Key: "day_of_month", Value: s.DayOfMonth},
	}
}

// SMACross holds while price is above a single moving average.
type SMACross struct {
	Period ParamValue
}

// Name implements Strategy.
func (SMACross) Name() StrategyName { return StrategySMACross }

// Params implements Strategy.
func (s SMACross) Params() []Param {
	return []Param{{Key: "period", Value: s.Period}}
}

// DMACross trades the crossing of a fast and a slow moving average.
type DMACross struct {
	Fast ParamValue
	Slow ParamValue
}

// Name implements Strategy.
func (DMACross) Name() StrategyName { return StrategyDMACross }

// Params implements Strategy.
func (s DMACross) Params() []Param {
	return []Param{{Key: "fast", Value: s.Fast}, {Key: "slow", Value: s.Slow}}
}

// BuyAndHold buys on the first day and never sells.
type BuyAndHold struct{}

// Name implements Strategy.
func (BuyAndHold) Name() StrategyName { return StrategyBuyAndHold }

// Params implements Strategy; buy and hold has none.
func (BuyAndHold) Params() []Param { return nil }

// StrategyFieldKeys lists the form fields each strategy variant reads.
var StrategyFieldKeys = map[StrategyName][]string{
	StrategyFixedFrequency: {"frequency", "amount", "day_of_week", "day_of_month"},
	StrategySMACross:       {"period"},
	StrategyDMACross:       {"fast", "slow"},
	StrategyBuyAndHold:     {},
}

// CommissionType identifies a commission variant.
type CommissionType string

const (
	CommissionPercentage CommissionType = "percentage"
	CommissionFixed      CommissionType = "fixed"
	CommissionNone       CommissionType = "none"
)

// Commission is a tagged union keyed by Type. Fields returns only the
// parameters that are set, already in engine units.
type Commission interface {
	Type() CommissionType
	Fields() map[string]float64
}

// PercentageCommission charges Rate (a fraction) of the trade value,
// never less than MinFee.
type PercentageCommission struct {
	Rate   *float64
	MinFee *float64
}

// Type implements Commission.
func (PercentageCommission) Type() CommissionType { return CommissionPercentage }

// Fields implements Commission.
func (c PercentageCommission) Fields() map[string]float64 {
	fields := make(map[string]float64, 2)
	if c.Rate != nil {
		fields["rate"] = *c.Rate
	}
	if c.MinFee != nil {
		fields["min_fee"] = *c.MinFee
	}
	return fields
}

// FixedCommission charges Fee per trade.
type FixedCommission struct {
	Fee *float64
}

// Type implements Commission.
func (FixedCommission) Type() CommissionType { return CommissionFixed }

// Fields implements Commission.
func (c FixedCommission) Fields() map[string]float64 {
	fields := make(map[string]float64, 1)
	if c.Fee != nil {
		fields["fee"] = *c.Fee
	}
	return fields
}

// NoCommission is the free-trading variant.
type NoCommission struct{}

// Type implements Commission.
func (NoCommission) Type() CommissionType { return CommissionNone }

// Fields implements Commission.
func (NoCommission) Fields() map[string]float64 { return map[string]float64{} }

// CommissionFieldKeys lists the form fields each commission variant reads.
var CommissionFieldKeys = map[CommissionType][]string{
	CommissionPercentage: {"rate", "min_fee"},
	CommissionFixed:      {"fee"},
	CommissionNone:       {},
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
