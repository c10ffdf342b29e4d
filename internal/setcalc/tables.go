package setcalc

import (
	"github.com/shopspring/decimal"
)

// ProfileStep maps every summed weight below UpToG grams to a shipping profile token.
type ProfileStep struct {
	UpToG   int64
	Profile string
}

// ProfileTable is a step function from total set weight (grams) to a shipping profile.
type ProfileTable struct {
	Steps []ProfileStep
	// Above applies when the weight reaches the last step's bound.
	Above string
}

// DefaultProfiles classifies sets below 1 kg as "21;12", below 30 kg as "12", otherwise "8".
var DefaultProfiles = ProfileTable{
	Steps: []ProfileStep{
		{UpToG: 1000, Profile: "21;12"},
		{UpToG: 30000, Profile: "12"},
	},
	Above: "8",
}

// Lookup returns the profile for a summed weight in grams.
func (t ProfileTable) Lookup(weightG int64) string {
	for _, s := range t.Steps {
		if weightG < s.UpToG {
			return s.Profile
		}
	}
	return t.Above
}

// CostStep maps a weight in kilograms to a shipping cost. Weights below UpToKg,
// or equal to it when Inclusive, fall into the step.
type CostStep struct {
	UpToKg    decimal.Decimal
	Inclusive bool
	Cost      decimal.Decimal
}

func (s CostStep) matches(kg decimal.Decimal) bool {
	if s.Inclusive {
		return kg.LessThanOrEqual(s.UpToKg)
	}
	return kg.LessThan(s.UpToKg)
}

// CostTable is a step function from a weight in kilograms to a shipping cost.
type CostTable struct {
	Steps []CostStep
	Above decimal.Decimal
}

// DefaultShippingCosts is the carrier staircase used by the derived pricing pass.
var DefaultShippingCosts = CostTable{
	Steps: []CostStep{
		{UpToKg: decimal.NewFromInt(5), Inclusive: false, Cost: decimal.RequireFromString("3.6")},
		{UpToKg: decimal.NewFromInt(15), Inclusive: true, Cost: decimal.RequireFromString("4.2")},
		{UpToKg: decimal.NewFromInt(20), Inclusive: true, Cost: decimal.RequireFromString("6.2")},
		{UpToKg: decimal.NewFromInt(29), Inclusive: true, Cost: decimal.RequireFromString("22.0")},
		{UpToKg: decimal.NewFromInt(99), Inclusive: true, Cost: decimal.RequireFromString("63.0")},
	},
	Above: decimal.RequireFromString("63.0"),
}

// Lookup returns the shipping cost for kg.
func (t CostTable) Lookup(kg decimal.Decimal) decimal.Decimal {
	for _, s := range t.Steps {
		if s.matches(kg) {
			return s.Cost
		}
	}
	return t.Above
}
