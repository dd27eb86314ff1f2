package core_test

import (
	"testing"

	"costing-engine/internal/core"

	"github.com/shopspring/decimal"
)

var approxTolerance = decimal.NewFromFloat(0.0001)

func approxEqual(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThan(approxTolerance)
}

func TestComputeMarkup(t *testing.T) {
	tests := []struct {
		name     string
		fixed    string
		variable string
		profit   string
		want     string
		defined  bool
	}{
		// CMV=5.00, fixed 20 + variable 10 + profit 15 = burden 45
		// => markup 1/(1-0.45) = 1.8182
		{"reference scenario", "20", "10", "15", "1.8182", true},
		{"no burden", "0", "0", "0", "1.0000", true},
		{"burden exactly 100", "50", "30", "20", "", false},
		{"burden above 100", "60", "40", "20", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			markup, ok := core.ComputeMarkup(dec(tt.fixed), dec(tt.variable), dec(tt.profit))
			if ok != tt.defined {
				t.Fatalf("defined = %v, want %v", ok, tt.defined)
			}
			if !tt.defined {
				if !markup.IsZero() {
					t.Errorf("undefined markup must be zero, got %s", markup)
				}
				return
			}
			if markup.StringFixed(4) != tt.want {
				t.Errorf("markup = %s, want %s", markup.StringFixed(4), tt.want)
			}
		})
	}
}

func TestIdealMenuPrice_ReferenceScenario(t *testing.T) {
	markup, ok := core.ComputeMarkup(dec("20"), dec("10"), dec("15"))
	if !ok {
		t.Fatal("expected defined markup")
	}
	price := core.IdealMenuPrice(dec("5.00"), markup)
	if price.StringFixed(2) != "9.09" {
		t.Errorf("ideal price = %s, want 9.09", price.StringFixed(2))
	}
}

func TestIdealMenuPrice_RoundTrip(t *testing.T) {
	// price * (1 - burden/100) must recover the CMV for any burden < 100.
	burdens := []struct{ fixed, variable, profit string }{
		{"20", "10", "15"},
		{"0", "0", "0"},
		{"33.3", "12.7", "8"},
		{"55", "30", "14.9"},
	}
	cmv := dec("7.35")
	hundred := decimal.NewFromInt(100)

	for _, b := range burdens {
		markup, ok := core.ComputeMarkup(dec(b.fixed), dec(b.variable), dec(b.profit))
		if !ok {
			t.Fatalf("burden %v unexpectedly undefined", b)
		}
		price := core.IdealMenuPrice(cmv, markup)
		burden := dec(b.fixed).Add(dec(b.variable)).Add(dec(b.profit))
		back := price.Mul(hundred.Sub(burden)).Div(hundred)
		if !approxEqual(back, cmv) {
			t.Errorf("round trip for burden %s: got %s, want %s", burden, back, cmv)
		}
	}
}

func TestChannelIdealPrice(t *testing.T) {
	channel := core.SalesChannel{
		ID: 1, Name: "iFood",
		Fees: []core.ChannelFee{
			{Percent: dec("12")},
			{Percent: dec("8")},
		},
	}

	cp := core.ChannelIdealPrice(dec("20.00"), channel)
	if !cp.Defined {
		t.Fatal("expected defined channel price")
	}
	if !cp.TaxPercent.Equal(dec("20")) {
		t.Errorf("tax percent = %s, want 20", cp.TaxPercent)
	}
	if cp.Price.StringFixed(2) != "25.00" {
		t.Errorf("channel price = %s, want 25.00", cp.Price.StringFixed(2))
	}

	// Net contribution after the channel's deductions equals the base price.
	net := cp.Price.Mul(dec("0.80"))
	if !approxEqual(net, dec("20.00")) {
		t.Errorf("net after fees = %s, want 20.00", net)
	}
}

func TestChannelIdealPrice_FeeStackAtHundred(t *testing.T) {
	channel := core.SalesChannel{
		ID: 1, Name: "Quebrado",
		Fees: []core.ChannelFee{{Percent: dec("100")}},
	}
	cp := core.ChannelIdealPrice(dec("20.00"), channel)
	if cp.Defined {
		t.Errorf("fee stack of 100%% cannot have a finite price")
	}
}

func testSettings() core.BusinessSettings {
	s := core.BusinessSettings{
		DesiredProfitPercent:  dec("15"),
		PlatformTaxPercent:    dec("10"),
		TargetCMVPercent:      dec("30"),
		CMVWarningMargin:      dec("10"),
		EstimatedMonthlySales: dec("1000"),
		AllocationMode:        core.AllocationRevenueBased,
	}
	s.MonthlyRevenue[0] = dec("25000")
	return s
}

func TestComputeProductMetrics(t *testing.T) {
	settings := testSettings()
	// totalFixed 5000 / avgRevenue 25000 => 20% fixed-cost burden
	alloc := core.NewAllocation(settings, dec("5000"))
	product := core.Product{ID: 1, Name: "X-Burger", SalePrice: dec("20.00"), IsActive: true}
	cmv := core.RecipeCost{Total: dec("5.00")}

	m := core.ComputeProductMetrics(product, cmv, alloc, nil, settings)

	if m.CMVPercent == nil || m.CMVPercent.StringFixed(2) != "25.00" {
		t.Errorf("CMV%% = %v, want 25.00", m.CMVPercent)
	}
	// fixed share 20% of 20 = 4, variable 10% of 20 = 2
	// profit = 20 - 5 - 4 - 2 = 9, profit% = 45
	if !m.FixedCostShare.Equal(dec("4")) {
		t.Errorf("fixed share = %s, want 4", m.FixedCostShare)
	}
	if !m.VariableCostShare.Equal(dec("2")) {
		t.Errorf("variable share = %s, want 2", m.VariableCostShare)
	}
	if !m.ProfitValue.Equal(dec("9")) {
		t.Errorf("profit = %s, want 9", m.ProfitValue)
	}
	if m.ProfitPercent == nil || m.ProfitPercent.StringFixed(2) != "45.00" {
		t.Errorf("profit%% = %v, want 45.00", m.ProfitPercent)
	}
	if m.CMVStatus != core.CMVStatusOK {
		t.Errorf("CMV status = %s, want ok", m.CMVStatus)
	}
	if !m.MarkupDefined || m.IdealPrice.StringFixed(2) != "9.09" {
		t.Errorf("ideal price = %s (defined=%v), want 9.09", m.IdealPrice, m.MarkupDefined)
	}
}

func TestComputeProductMetrics_ZeroPrice(t *testing.T) {
	settings := testSettings()
	alloc := core.NewAllocation(settings, dec("5000"))
	product := core.Product{ID: 1, Name: "Sem preço", SalePrice: dec("0")}

	m := core.ComputeProductMetrics(product, core.RecipeCost{Total: dec("5.00")}, alloc, nil, settings)

	if m.CMVPercent != nil || m.ProfitPercent != nil {
		t.Errorf("ratios must be nil at zero price, got cmv%%=%v profit%%=%v", m.CMVPercent, m.ProfitPercent)
	}
	if m.CMVStatus != core.CMVStatusUnknown {
		t.Errorf("CMV status = %s, want unknown", m.CMVStatus)
	}
}

func TestComputeProductMetrics_BurdenAtHundredSurfaced(t *testing.T) {
	settings := testSettings()
	settings.DesiredProfitPercent = dec("80")
	// fixed 20 + variable 10 + profit 80 = 110 >= 100
	alloc := core.NewAllocation(settings, dec("5000"))
	product := core.Product{ID: 1, Name: "Impossível", SalePrice: dec("20.00")}

	m := core.ComputeProductMetrics(product, core.RecipeCost{Total: dec("5.00")}, alloc, nil, settings)

	if m.MarkupDefined || m.IdealPriceDefined {
		t.Errorf("burden >= 100 must surface an undefined ideal price")
	}
	if len(m.ChannelPrices) != 0 {
		t.Errorf("no channel prices without a base price")
	}
}

func TestComputeProductMetrics_PerUnitMode(t *testing.T) {
	settings := testSettings()
	settings.AllocationMode = core.AllocationPerUnit
	// per-unit fixed cost = 5000/1000 = 5
	alloc := core.NewAllocation(settings, dec("5000"))
	product := core.Product{ID: 1, Name: "Prato", SalePrice: dec("20.00")}
	cmv := core.RecipeCost{Total: dec("5.00")}

	m := core.ComputeProductMetrics(product, cmv, alloc, nil, settings)

	if !m.FixedCostShare.Equal(dec("5")) {
		t.Errorf("fixed share = %s, want flat 5", m.FixedCostShare)
	}
	// ideal = (5 + 5) / (1 - 0.25) = 13.3333
	if !m.IdealPriceDefined || m.IdealPrice.StringFixed(2) != "13.33" {
		t.Errorf("ideal price = %s, want 13.33", m.IdealPrice.StringFixed(2))
	}
}

func TestCMVStatusBanding(t *testing.T) {
	settings := testSettings() // target 30, warning margin 10
	alloc := core.NewAllocation(settings, dec("0"))

	tests := []struct {
		name  string
		cmv   string
		price string
		want  core.CMVStatus
	}{
		{"well under target", "5.00", "20.00", core.CMVStatusOK},   // 25%
		{"on target", "6.00", "20.00", core.CMVStatusOK},           // 30%
		{"moderately above", "7.00", "20.00", core.CMVStatusWarning}, // 35%
		{"at warning edge", "8.00", "20.00", core.CMVStatusWarning},  // 40%
		{"far above", "9.00", "20.00", core.CMVStatusDanger},         // 45%
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			product := core.Product{ID: 1, SalePrice: dec(tt.price)}
			m := core.ComputeProductMetrics(product, core.RecipeCost{Total: dec(tt.cmv)}, alloc, nil, settings)
			if m.CMVStatus != tt.want {
				t.Errorf("CMV status = %s, want %s", m.CMVStatus, tt.want)
			}
		})
	}
}

func TestComputeProductMetrics_UnknownCMVHasUnknownStatus(t *testing.T) {
	settings := testSettings()
	alloc := core.NewAllocation(settings, dec("0"))
	product := core.Product{ID: 1, SalePrice: dec("20.00")}
	cmv := core.RecipeCost{Total: dec("2.00"), Undefined: true}

	m := core.ComputeProductMetrics(product, cmv, alloc, nil, settings)
	if m.CMVStatus != core.CMVStatusUnknown {
		t.Errorf("unknown cost must not be banded, got %s", m.CMVStatus)
	}
}
