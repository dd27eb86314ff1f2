package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Unit is an ingredient's base unit of measure.
type Unit string

const (
	UnitGram       Unit = "g"
	UnitKilogram   Unit = "kg"
	UnitMilliliter Unit = "ml"
	UnitLiter      Unit = "l"
	UnitPiece      Unit = "un"
)

type Company struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Ingredient is a raw material priced per base unit. A composite ingredient
// owns a bill of materials (IngredientComponent rows) and its cost is derived,
// never stored. CostDefined distinguishes a genuinely free ingredient
// (cost 0, defined) from one that was never priced (cost NULL in storage).
type Ingredient struct {
	ID          int             `json:"id"`
	CompanyID   int             `json:"company_id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Unit        Unit            `json:"unit"`
	CostPerUnit decimal.Decimal `json:"cost_per_unit"`
	CostDefined bool            `json:"cost_defined"`
	IsComposite bool            `json:"is_composite"`
}

// IngredientComponent is one line of a composite ingredient's bill of
// materials. Quantity is expressed in the child ingredient's base unit.
type IngredientComponent struct {
	ParentID int             `json:"parent_id"`
	ChildID  int             `json:"child_id"`
	Quantity decimal.Decimal `json:"quantity"`
}

// RecipeLine links a product to one ingredient. Quantity is the user-entered
// display quantity in Unit, which may differ from the ingredient's base unit
// (g vs kg, ml vs l) and is converted during CMV aggregation.
type RecipeLine struct {
	ProductID    int             `json:"product_id"`
	IngredientID int             `json:"ingredient_id"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         Unit            `json:"unit"`
}

type Product struct {
	ID        int             `json:"id"`
	CompanyID int             `json:"company_id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	SalePrice decimal.Decimal `json:"sale_price"`
	IsActive  bool            `json:"is_active"`
	IsCombo   bool            `json:"is_combo"`
}

// ComboItem is one constituent product of a combo, with its quantity.
type ComboItem struct {
	ComboID   int             `json:"combo_id"`
	ProductID int             `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// ChannelFee is a percentage deduction applied by a sales channel
// (marketplace commission, payment processor, delivery fee).
type ChannelFee struct {
	ID        int             `json:"id"`
	ChannelID int             `json:"channel_id"`
	Name      string          `json:"name"`
	Percent   decimal.Decimal `json:"percent"`
}

// SalesChannel is a sales outlet with its own stack of percentage fees.
type SalesChannel struct {
	ID        int          `json:"id"`
	CompanyID int          `json:"company_id"`
	Name      string       `json:"name"`
	Fees      []ChannelFee `json:"fees"`
}

// TotalTaxPercent is the sum of the channel's fee percentages.
func (c SalesChannel) TotalTaxPercent() decimal.Decimal {
	total := decimal.Zero
	for _, f := range c.Fees {
		total = total.Add(f.Percent)
	}
	return total
}

// AllocationMode selects how fixed costs are spread over units sold.
type AllocationMode string

const (
	// AllocationRevenueBased expresses the fixed-cost burden as a percentage
	// of revenue.
	AllocationRevenueBased AllocationMode = "revenue_based"
	// AllocationPerUnit spreads total fixed costs evenly over the estimated
	// monthly unit sales, independent of each unit's price.
	AllocationPerUnit AllocationMode = "per_unit"
)

// BusinessSettings is the per-company pricing configuration singleton.
type BusinessSettings struct {
	CompanyID             int             `json:"company_id"`
	DesiredProfitPercent  decimal.Decimal `json:"desired_profit_percent"`
	PlatformTaxPercent    decimal.Decimal `json:"platform_tax_percent"`
	TargetCMVPercent      decimal.Decimal `json:"target_cmv_percent"`
	CMVWarningMargin      decimal.Decimal `json:"cmv_warning_margin"`
	EstimatedMonthlySales decimal.Decimal `json:"estimated_monthly_sales"`
	AllocationMode        AllocationMode  `json:"allocation_mode"`
	// MonthlyRevenue holds the twelve manually entered calendar-month revenue
	// figures (index 0 = January). Year-agnostic in the UI; the year-scoped
	// records live in manual_monthly_revenue.
	MonthlyRevenue [12]decimal.Decimal `json:"monthly_revenue"`
}

// VariableCostPercent is the company-wide percentage deducted from every sale
// regardless of channel.
func (s BusinessSettings) VariableCostPercent() decimal.Decimal {
	return s.PlatformTaxPercent
}

// AverageMonthlyRevenue averages the entered (non-zero) monthly revenue
// figures. Returns zero when no month has revenue.
func (s BusinessSettings) AverageMonthlyRevenue() decimal.Decimal {
	total := decimal.Zero
	months := 0
	for _, v := range s.MonthlyRevenue {
		if v.IsPositive() {
			total = total.Add(v)
			months++
		}
	}
	if months == 0 {
		return decimal.Zero
	}
	return total.Div(decimal.NewFromInt(int64(months)))
}

// Sale is an immutable historical sale record, the source of truth for
// realized revenue.
type Sale struct {
	ID        int             `json:"id"`
	CompanyID int             `json:"company_id"`
	ProductID int             `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	SoldAt    time.Time       `json:"sold_at"`
}

// ManualRevenue is a manually entered monthly revenue figure, a fallback for
// months without point-of-sale integration.
type ManualRevenue struct {
	CompanyID int             `json:"company_id"`
	Year      int             `json:"year"`
	Month     int             `json:"month"`
	Amount    decimal.Decimal `json:"amount"`
}

// CompanySnapshot is the read-only input the engine operates on: one tenant's
// data, already fetched. The engine never touches storage itself.
type CompanySnapshot struct {
	Company       Company
	Ingredients   []Ingredient
	Components    []IngredientComponent
	Products      []Product
	RecipeLines   []RecipeLine
	ComboItems    []ComboItem
	Channels      []SalesChannel
	FixedCosts    []FixedCost
	Settings      BusinessSettings
	ManualRevenue []ManualRevenue
	Sales         []Sale
}

// RecipeLinesFor returns the recipe lines belonging to one product.
func (s *CompanySnapshot) RecipeLinesFor(productID int) []RecipeLine {
	var lines []RecipeLine
	for _, l := range s.RecipeLines {
		if l.ProductID == productID {
			lines = append(lines, l)
		}
	}
	return lines
}

// ComboItemsFor returns the combo items belonging to one combo product.
func (s *CompanySnapshot) ComboItemsFor(comboID int) []ComboItem {
	var items []ComboItem
	for _, it := range s.ComboItems {
		if it.ComboID == comboID {
			items = append(items, it)
		}
	}
	return items
}

// ManualRevenueByMonth indexes the year-scoped manual revenue records by
// "YYYY-MM" bucket key.
func (s *CompanySnapshot) ManualRevenueByMonth() map[MonthKey]decimal.Decimal {
	out := make(map[MonthKey]decimal.Decimal, len(s.ManualRevenue))
	for _, m := range s.ManualRevenue {
		out[MonthKeyFor(m.Year, time.Month(m.Month))] = m.Amount
	}
	return out
}
