package core

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Allocation is the tagged result of spreading a company's fixed costs over
// its sales, produced once from BusinessSettings and consumed by every
// pricing computation so one calculation never mixes modes.
type Allocation struct {
	Mode AllocationMode `json:"mode"`
	// Percent is the fixed-cost burden as a percentage of revenue
	// (revenue_based mode).
	Percent decimal.Decimal `json:"percent"`
	// PerUnit is the flat fixed-cost amount carried by each unit sold
	// (per_unit mode).
	PerUnit decimal.Decimal `json:"per_unit"`
}

// FixedCostPercent expresses total fixed costs as a percentage of average
// monthly revenue. Zero or negative revenue yields zero, never a division
// error.
func FixedCostPercent(totalFixedCosts, averageMonthlyRevenue decimal.Decimal) decimal.Decimal {
	if !averageMonthlyRevenue.IsPositive() {
		return decimal.Zero
	}
	return totalFixedCosts.Div(averageMonthlyRevenue).Mul(hundred)
}

// FixedCostPerUnit spreads total fixed costs evenly over the estimated
// monthly unit sales. Zero or negative estimated sales yields zero.
func FixedCostPerUnit(totalFixedCosts, estimatedMonthlySales decimal.Decimal) decimal.Decimal {
	if !estimatedMonthlySales.IsPositive() {
		return decimal.Zero
	}
	return totalFixedCosts.Div(estimatedMonthlySales)
}

// NewAllocation computes the allocation for the company's configured mode.
// Both figures are filled; Mode says which one downstream math must use.
func NewAllocation(settings BusinessSettings, totalFixedCosts decimal.Decimal) Allocation {
	return Allocation{
		Mode:    settings.AllocationMode,
		Percent: FixedCostPercent(totalFixedCosts, settings.AverageMonthlyRevenue()),
		PerUnit: FixedCostPerUnit(totalFixedCosts, settings.EstimatedMonthlySales),
	}
}

// ContributionFor returns the fixed-cost share carried by one unit sold at
// the given price: price-relative in revenue_based mode, flat in per_unit
// mode.
func (a Allocation) ContributionFor(price decimal.Decimal) decimal.Decimal {
	switch a.Mode {
	case AllocationPerUnit:
		return a.PerUnit
	default:
		if !price.IsPositive() {
			return decimal.Zero
		}
		return price.Mul(a.Percent).Div(hundred)
	}
}
