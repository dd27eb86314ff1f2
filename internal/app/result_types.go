package app

import (
	"costing-engine/internal/ai"
	"costing-engine/internal/core"

	"github.com/shopspring/decimal"
)

// PricingReportResult is returned by GetPricingReport.
type PricingReportResult struct {
	Report *core.PricingReport
}

// ProductCostResult is returned by GetProductCost.
type ProductCostResult struct {
	Report *core.ProductReport
}

// IngredientCostResult is returned by GetIngredientCost.
type IngredientCostResult struct {
	Ingredient core.Ingredient
	UnitCost   core.ResolvedCost
}

// CostBreakdownResult is returned by GetCostBreakdown.
type CostBreakdownResult struct {
	Company core.Company
	Lines   []core.FixedCostLine
	Total   decimal.Decimal
}

// KPIResult is returned by GetMonthlyKPIs.
type KPIResult struct {
	Company    core.Company
	MonthsBack int
	Months     []core.MonthlyKPI
}

// AdviceResult is returned by AdvisePricing.
type AdviceResult struct {
	Advice *ai.PricingAdvice
}
