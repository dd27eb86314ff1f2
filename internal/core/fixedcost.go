package core

import (
	"github.com/shopspring/decimal"
)

// FixedCostKind selects how a fixed cost's monthly value is derived.
type FixedCostKind string

const (
	// FixedCostDirect: the monthly value was entered as-is.
	FixedCostDirect FixedCostKind = "direct"
	// FixedCostCLTSalary: a registered employee's salary plus the Brazilian
	// CLT burden (13th salary, vacation bonus, FGTS).
	FixedCostCLTSalary FixedCostKind = "clt_salary"
	// FixedCostFreelancer: day-rate workers (freelancers, motoboys).
	FixedCostFreelancer FixedCostKind = "freelancer"
	// FixedCostSnack: staff meals costed per unit, optionally sourced from a
	// product's resolved cost.
	FixedCostSnack FixedCostKind = "snack"
)

// CLT payroll burden factors, as monthly fractions of the base salary.
var (
	cltThirteenthFactor = decimal.NewFromInt(1).Div(decimal.NewFromInt(12))
	// Vacation pay carries a one-third constitutional bonus, provisioned monthly.
	cltVacationFactor = decimal.NewFromInt(4).Div(decimal.NewFromInt(3)).Div(decimal.NewFromInt(12))
	cltFGTSPercent    = decimal.NewFromInt(8)
)

// FixedCostConfig is the structured source of a derived fixed cost. Only the
// fields for the matching Kind are meaningful.
type FixedCostConfig struct {
	Kind FixedCostKind `json:"kind"`

	// clt_salary
	Salary    decimal.Decimal `json:"salary,omitempty"`
	Employees int             `json:"employees,omitempty"`

	// freelancer
	DailyRate    decimal.Decimal `json:"daily_rate,omitempty"`
	People       int             `json:"people,omitempty"`
	DaysPerMonth int             `json:"days_per_month,omitempty"`

	// snack
	UnitCost   decimal.Decimal `json:"unit_cost,omitempty"`
	MonthlyQty decimal.Decimal `json:"monthly_qty,omitempty"`
	// SourceProductID, when set, means UnitCost mirrors that product's
	// resolved CMV and is refreshed on read.
	SourceProductID *int `json:"source_product_id,omitempty"`
}

// FixedCost is a recurring company expense. Value holds the directly entered
// monthly amount; when Config is present the monthly value is derived from
// it instead.
type FixedCost struct {
	ID        int              `json:"id"`
	CompanyID int              `json:"company_id"`
	Name      string           `json:"name"`
	Category  string           `json:"category"`
	Value     decimal.Decimal  `json:"value"`
	Config    *FixedCostConfig `json:"config,omitempty"`
}

// MonthlyValue returns the cost's effective monthly amount, deriving it from
// the structured config when one exists.
func (f FixedCost) MonthlyValue() decimal.Decimal {
	if f.Config == nil {
		return f.Value
	}
	switch f.Config.Kind {
	case FixedCostCLTSalary:
		burden := decimal.NewFromInt(1).
			Add(cltThirteenthFactor).
			Add(cltVacationFactor).
			Add(cltFGTSPercent.Div(hundred))
		return f.Config.Salary.Mul(burden).Mul(decimal.NewFromInt(int64(f.Config.Employees)))
	case FixedCostFreelancer:
		return f.Config.DailyRate.
			Mul(decimal.NewFromInt(int64(f.Config.People))).
			Mul(decimal.NewFromInt(int64(f.Config.DaysPerMonth)))
	case FixedCostSnack:
		return f.Config.UnitCost.Mul(f.Config.MonthlyQty)
	default:
		return f.Value
	}
}

// TotalMonthlyFixedCosts sums the derived monthly values of all fixed costs.
func TotalMonthlyFixedCosts(costs []FixedCost) decimal.Decimal {
	total := decimal.Zero
	for _, c := range costs {
		total = total.Add(c.MonthlyValue())
	}
	return total
}
