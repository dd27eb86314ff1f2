package app

import (
	"context"
	"errors"

	"costing-engine/internal/core"
)

// ErrProductNotFound is returned when the requested product does not belong
// to the company.
var ErrProductNotFound = errors.New("product not found")

// ErrIngredientNotFound is returned when the requested ingredient does not
// belong to the company.
var ErrIngredientNotFound = errors.New("ingredient not found")

// ApplicationService is the single interface all UI adapters (CLI, Web) call.
// It decouples presentation from business logic. Implementations must contain
// no fmt.Println, no ANSI codes, and no display logic of any kind.
type ApplicationService interface {
	// GetPricingReport computes the full pricing report for a company:
	// per-product CMV, cost allocation, ideal prices, channel prices and
	// insights.
	GetPricingReport(ctx context.Context, companyID int) (*PricingReportResult, error)

	// GetProductCost returns one product's resolved cost breakdown, metrics
	// and insights.
	GetProductCost(ctx context.Context, companyID, productID int) (*ProductCostResult, error)

	// GetIngredientCost resolves one ingredient's effective unit cost,
	// recursing through composite bills of materials.
	GetIngredientCost(ctx context.Context, companyID, ingredientID int) (*IngredientCostResult, error)

	// GetCostBreakdown returns every fixed cost with its derived monthly
	// value (CLT payroll burden, freelancer day rates, snack costs) and the
	// monthly total.
	GetCostBreakdown(ctx context.Context, companyID int) (*CostBreakdownResult, error)

	// GetMonthlyKPIs aggregates the sales history into per-month KPIs over
	// the trailing monthsBack window (including the current month).
	GetMonthlyKPIs(ctx context.Context, companyID, monthsBack int) (*KPIResult, error)

	// AdvisePricing sends the company's computed pricing report plus a free
	// form question to the AI advisor and returns its structured suggestions.
	AdvisePricing(ctx context.Context, companyID int, question string) (*AdviceResult, error)

	// LoadDefaultCompany loads the active company. Uses COMPANY_ID env var if
	// set; otherwise expects exactly one company in the database.
	LoadDefaultCompany(ctx context.Context) (*core.Company, error)
}
