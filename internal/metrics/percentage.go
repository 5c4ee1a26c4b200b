// Package metrics derives percentages and averages from raw counts.
// All results are rounded half away from zero to Scale places.
package metrics

import (
	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places of every derived value
const Scale = 2

var hundred = decimal.NewFromInt(100)

// Hundred is the upper bound of a percentage
func Hundred() decimal.Decimal {
	return hundred
}

// Percentage returns numerator*100/total, or zero when total is zero
func Percentage(numerator, total int) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(numerator)).
		Mul(hundred).
		DivRound(decimal.NewFromInt(int64(total)), Scale)
}

// Round rounds d half away from zero to Scale places
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// Average returns the arithmetic mean of values, or zero for no values
func Average(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	return decimal.Sum(decimal.Zero, values...).
		DivRound(decimal.NewFromInt(int64(len(values))), Scale)
}

// WeightedAverage returns Σ(v·w)/Σw, or zero when the weights sum to zero.
// Extra values or weights beyond the shorter slice are ignored.
func WeightedAverage(values []decimal.Decimal, weights []int) decimal.Decimal {
	n := len(values)
	if len(weights) < n {
		n = len(weights)
	}

	sum := decimal.Zero
	total := 0
	for i := 0; i < n; i++ {
		sum = sum.Add(values[i].Mul(decimal.NewFromInt(int64(weights[i]))))
		total += weights[i]
	}
	if total == 0 {
		return decimal.Zero
	}
	return sum.DivRound(decimal.NewFromInt(int64(total)), Scale)
}

// InPercentRange reports whether d lies in [0, 100]
func InPercentRange(d decimal.Decimal) bool {
	return !d.IsNegative() && !d.GreaterThan(hundred)
}
