package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductReport is one product's full computed picture: cost, metrics and
// insights.
type ProductReport struct {
	Product  Product        `json:"product"`
	CMV      RecipeCost     `json:"cmv"`
	Metrics  ProductMetrics `json:"metrics"`
	Insights []Insight      `json:"insights"`
	// FullPrice is the sum of a combo's constituent sale prices, used for
	// discount display. Nil for regular products.
	FullPrice *decimal.Decimal `json:"full_price,omitempty"`
}

// PricingReport is the engine's output for one company snapshot.
type PricingReport struct {
	Company         Company          `json:"company"`
	Settings        BusinessSettings `json:"settings"`
	TotalFixedCosts decimal.Decimal  `json:"total_fixed_costs"`
	Allocation      Allocation       `json:"allocation"`
	// Markup is the company-wide multiplier (revenue_based mode). In
	// per_unit mode the effective markup varies per product and
	// MarkupDefined is false here.
	Markup        decimal.Decimal `json:"markup"`
	MarkupDefined bool            `json:"markup_defined"`

	Products []ProductReport `json:"products"`
	// ProductErrors carries per-product failures (cyclic composition,
	// dangling references). A bad product never aborts the batch.
	ProductErrors map[int]string `json:"product_errors,omitempty"`
}

// computeProductCMVs resolves every product's CMV, plain products first so
// combo CMVs can be weighted sums of them. Unresolvable products land in the
// returned error map instead of aborting the batch.
func computeProductCMVs(snap *CompanySnapshot) (map[int]RecipeCost, map[int]string) {
	resolver := NewCostResolver(snap.Ingredients, snap.Components)

	cmvs := make(map[int]RecipeCost, len(snap.Products))
	productErrors := make(map[int]string)
	for _, p := range snap.Products {
		if p.IsCombo {
			continue
		}
		cmv, err := ComputeCMV(snap.RecipeLinesFor(p.ID), resolver)
		if err != nil {
			productErrors[p.ID] = err.Error()
			continue
		}
		cmvs[p.ID] = cmv
	}
	for _, p := range snap.Products {
		if !p.IsCombo {
			continue
		}
		cmvs[p.ID] = ComputeComboCMV(snap.ComboItemsFor(p.ID), cmvs)
	}
	return cmvs, productErrors
}

// BuildPricingReport runs the whole pipeline over a snapshot: resolve
// ingredient costs, aggregate CMVs (combos after their constituents),
// refresh derived fixed costs, allocate, price, and generate insights.
// Pure: same snapshot in, same report out.
func BuildPricingReport(snap *CompanySnapshot) *PricingReport {
	report := &PricingReport{
		Company:  snap.Company,
		Settings: snap.Settings,
	}

	productIndex := make(map[int]Product, len(snap.Products))
	for _, p := range snap.Products {
		productIndex[p.ID] = p
	}

	cmvs, productErrors := computeProductCMVs(snap)
	report.ProductErrors = productErrors

	// A snack fixed cost sourced from a product mirrors that product's
	// current CMV: the stored unit cost is a cache, recomputed on read.
	fixedCosts := refreshDerivedFixedCosts(snap.FixedCosts, cmvs)
	report.TotalFixedCosts = TotalMonthlyFixedCosts(fixedCosts)
	report.Allocation = NewAllocation(snap.Settings, report.TotalFixedCosts)

	if report.Allocation.Mode != AllocationPerUnit {
		report.Markup, report.MarkupDefined = ComputeMarkup(
			report.Allocation.Percent,
			snap.Settings.VariableCostPercent(),
			snap.Settings.DesiredProfitPercent,
		)
	}

	for _, p := range snap.Products {
		if !p.IsActive {
			continue
		}
		cmv, ok := cmvs[p.ID]
		if !ok {
			continue // failed above, already in ProductErrors
		}
		metrics := ComputeProductMetrics(p, cmv, report.Allocation, snap.Channels, snap.Settings)
		pr := ProductReport{
			Product:  p,
			CMV:      cmv,
			Metrics:  metrics,
			Insights: BuildInsights(p, metrics, snap.Settings),
		}
		if p.IsCombo {
			full := ComboFullPrice(snap.ComboItemsFor(p.ID), productIndex)
			pr.FullPrice = &full
		}
		report.Products = append(report.Products, pr)
	}

	if len(report.ProductErrors) == 0 {
		report.ProductErrors = nil
	}
	return report
}

// BuildCompanyKPIs resolves per-product unit costs from the snapshot and
// aggregates the sales history into monthly KPIs. Products whose cost cannot
// be resolved simply have no unit cost; the KPI counters pick them up.
func BuildCompanyKPIs(snap *CompanySnapshot, monthsBack int, now time.Time) []MonthlyKPI {
	cmvs, _ := computeProductCMVs(snap)

	unitCosts := make(map[int]ResolvedCost, len(cmvs))
	for id, cmv := range cmvs {
		unitCosts[id] = ResolvedCost{Value: cmv.Total, Defined: !cmv.Undefined}
	}

	return BuildMonthlyKPIs(snap.Sales, unitCosts, snap.ManualRevenueByMonth(), monthsBack, now)
}

// FixedCostLine pairs a fixed cost with its derived monthly value.
type FixedCostLine struct {
	Cost         FixedCost       `json:"cost"`
	MonthlyValue decimal.Decimal `json:"monthly_value"`
}

// FixedCostBreakdown derives each fixed cost's effective monthly value,
// including snack costs refreshed from their source product's CMV.
func FixedCostBreakdown(snap *CompanySnapshot) ([]FixedCostLine, decimal.Decimal) {
	cmvs, _ := computeProductCMVs(snap)
	costs := refreshDerivedFixedCosts(snap.FixedCosts, cmvs)

	lines := make([]FixedCostLine, len(costs))
	total := decimal.Zero
	for i, c := range costs {
		value := c.MonthlyValue()
		lines[i] = FixedCostLine{Cost: c, MonthlyValue: value}
		total = total.Add(value)
	}
	return lines, total
}

func refreshDerivedFixedCosts(costs []FixedCost, cmvs map[int]RecipeCost) []FixedCost {
	out := make([]FixedCost, len(costs))
	copy(out, costs)
	for i, c := range out {
		if c.Config == nil || c.Config.Kind != FixedCostSnack || c.Config.SourceProductID == nil {
			continue
		}
		cmv, ok := cmvs[*c.Config.SourceProductID]
		if !ok || cmv.Undefined {
			continue
		}
		cfg := *c.Config
		cfg.UnitCost = cmv.Total
		out[i].Config = &cfg
	}
	return out
}
