package core_test

import (
	"testing"

	"costing-engine/internal/core"
)

func TestFixedCostMonthlyValue(t *testing.T) {
	two := 2

	tests := []struct {
		name string
		cost core.FixedCost
		want string
	}{
		{
			name: "direct value without config",
			cost: core.FixedCost{Name: "Aluguel", Category: "rent", Value: dec("3500")},
			want: "3500.00",
		},
		{
			name: "clt salary with payroll burden",
			// 13th (1/12) + vacation with 1/3 bonus (4/3 / 12) + FGTS 8%
			cost: core.FixedCost{
				Name: "Cozinheiros", Category: "payroll",
				Config: &core.FixedCostConfig{
					Kind:      core.FixedCostCLTSalary,
					Salary:    dec("1800"),
					Employees: 2,
				},
			},
			want: "4588.00",
		},
		{
			name: "freelancer day rate",
			cost: core.FixedCost{
				Name: "Motoboys", Category: "delivery",
				Config: &core.FixedCostConfig{
					Kind:         core.FixedCostFreelancer,
					DailyRate:    dec("150"),
					People:       2,
					DaysPerMonth: 26,
				},
			},
			want: "7800.00",
		},
		{
			name: "snack per unit",
			cost: core.FixedCost{
				Name: "Lanche da equipe", Category: "meals",
				Config: &core.FixedCostConfig{
					Kind:       core.FixedCostSnack,
					UnitCost:   dec("4.50"),
					MonthlyQty: dec("100"),
				},
			},
			want: "450.00",
		},
		{
			name: "snack sourced from product keeps stored unit cost until refreshed",
			cost: core.FixedCost{
				Name: "Refeição", Category: "meals",
				Config: &core.FixedCostConfig{
					Kind:            core.FixedCostSnack,
					UnitCost:        dec("6.00"),
					MonthlyQty:      dec("50"),
					SourceProductID: &two,
				},
			},
			want: "300.00",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cost.MonthlyValue()
			if got.StringFixed(2) != tt.want {
				t.Errorf("MonthlyValue() = %s, want %s", got.StringFixed(2), tt.want)
			}
		})
	}
}

func TestTotalMonthlyFixedCosts(t *testing.T) {
	costs := []core.FixedCost{
		{Value: dec("3500")},
		{Value: dec("1200.50")},
		{Config: &core.FixedCostConfig{
			Kind: core.FixedCostSnack, UnitCost: dec("5"), MonthlyQty: dec("20"),
		}},
	}
	got := core.TotalMonthlyFixedCosts(costs)
	if got.StringFixed(2) != "4800.50" {
		t.Errorf("total = %s, want 4800.50", got.StringFixed(2))
	}
}
