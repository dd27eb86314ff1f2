package core_test

import (
	"testing"

	"costing-engine/internal/core"
)

func TestFixedCostPercent(t *testing.T) {
	tests := []struct {
		name       string
		totalFixed string
		avgRevenue string
		want       string
	}{
		{"regular", "5000", "25000", "20"},
		{"zero revenue", "5000", "0", "0"},
		{"negative revenue", "5000", "-100", "0"},
		{"zero fixed costs", "0", "25000", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := core.FixedCostPercent(dec(tt.totalFixed), dec(tt.avgRevenue))
			if !got.Equal(dec(tt.want)) {
				t.Errorf("FixedCostPercent(%s, %s) = %s, want %s",
					tt.totalFixed, tt.avgRevenue, got, tt.want)
			}
		})
	}
}

func TestFixedCostPerUnit(t *testing.T) {
	tests := []struct {
		name       string
		totalFixed string
		estSales   string
		want       string
	}{
		{"regular", "6000", "2000", "3"},
		{"zero sales", "6000", "0", "0"},
		{"negative sales", "6000", "-10", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := core.FixedCostPerUnit(dec(tt.totalFixed), dec(tt.estSales))
			if !got.Equal(dec(tt.want)) {
				t.Errorf("FixedCostPerUnit(%s, %s) = %s, want %s",
					tt.totalFixed, tt.estSales, got, tt.want)
			}
		})
	}
}

func TestAllocationContributionFor(t *testing.T) {
	revenueBased := core.Allocation{
		Mode:    core.AllocationRevenueBased,
		Percent: dec("20"),
		PerUnit: dec("3"),
	}
	perUnit := core.Allocation{
		Mode:    core.AllocationPerUnit,
		Percent: dec("20"),
		PerUnit: dec("3"),
	}

	if got := revenueBased.ContributionFor(dec("50")); !got.Equal(dec("10")) {
		t.Errorf("revenue_based contribution for price 50 = %s, want 10", got)
	}
	if got := revenueBased.ContributionFor(dec("0")); !got.IsZero() {
		t.Errorf("revenue_based contribution at zero price = %s, want 0", got)
	}
	// Flat amount regardless of price in per_unit mode.
	if got := perUnit.ContributionFor(dec("50")); !got.Equal(dec("3")) {
		t.Errorf("per_unit contribution = %s, want 3", got)
	}
	if got := perUnit.ContributionFor(dec("8")); !got.Equal(dec("3")) {
		t.Errorf("per_unit contribution = %s, want 3", got)
	}
}

func TestNewAllocation(t *testing.T) {
	settings := core.BusinessSettings{
		AllocationMode:        core.AllocationPerUnit,
		EstimatedMonthlySales: dec("1000"),
	}
	settings.MonthlyRevenue[0] = dec("10000")
	settings.MonthlyRevenue[1] = dec("20000")

	alloc := core.NewAllocation(settings, dec("3000"))
	if alloc.Mode != core.AllocationPerUnit {
		t.Errorf("expected per_unit mode, got %s", alloc.Mode)
	}
	// Average revenue = 15000 over the two entered months.
	if !alloc.Percent.Equal(dec("20")) {
		t.Errorf("expected percent 20, got %s", alloc.Percent)
	}
	if !alloc.PerUnit.Equal(dec("3")) {
		t.Errorf("expected per-unit 3, got %s", alloc.PerUnit)
	}
}

func TestAverageMonthlyRevenue_NoData(t *testing.T) {
	var settings core.BusinessSettings
	if got := settings.AverageMonthlyRevenue(); !got.IsZero() {
		t.Errorf("expected 0 with no revenue data, got %s", got)
	}
}
