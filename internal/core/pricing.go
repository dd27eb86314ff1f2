package core

import (
	"github.com/shopspring/decimal"
)

// CMVStatus bands a product's realized CMV percentage against the company's
// target.
type CMVStatus string

const (
	CMVStatusOK      CMVStatus = "ok"
	CMVStatusWarning CMVStatus = "warning"
	CMVStatusDanger  CMVStatus = "danger"
	// CMVStatusUnknown means the ratio could not be computed (no sale price
	// or unknown cost).
	CMVStatusUnknown CMVStatus = "unknown"
)

// defaultCMVWarningMargin is how many percentage points above target still
// count as a warning rather than danger when the company has not configured
// its own margin.
var defaultCMVWarningMargin = decimal.NewFromInt(10)

// ChannelPrice is the ideal price on one sales channel, grossed up so the
// channel's fee stack nets back to the base menu price.
type ChannelPrice struct {
	ChannelID   int             `json:"channel_id"`
	ChannelName string          `json:"channel_name"`
	TaxPercent  decimal.Decimal `json:"tax_percent"`
	Price       decimal.Decimal `json:"price"`
	// Defined is false when the channel's fee stack reaches 100% and no
	// finite price can preserve the net contribution.
	Defined bool `json:"defined"`
}

// ProductMetrics is the full pricing picture for one product at its current
// sale price. Ratio fields are nil pointers, not zero, when their
// denominator is zero — "no data" and "zero margin" are different answers.
type ProductMetrics struct {
	ProductID  int              `json:"product_id"`
	SalePrice  decimal.Decimal  `json:"sale_price"`
	CMV        decimal.Decimal  `json:"cmv"`
	CMVKnown   bool             `json:"cmv_known"`
	CMVPercent *decimal.Decimal `json:"cmv_percent,omitempty"`
	CMVStatus  CMVStatus        `json:"cmv_status"`

	FixedCostShare    decimal.Decimal  `json:"fixed_cost_share"`
	VariableCostShare decimal.Decimal  `json:"variable_cost_share"`
	ProfitValue       decimal.Decimal  `json:"profit_value"`
	ProfitPercent     *decimal.Decimal `json:"profit_percent,omitempty"`

	Markup        decimal.Decimal `json:"markup"`
	MarkupDefined bool            `json:"markup_defined"`
	IdealPrice    decimal.Decimal `json:"ideal_price"`
	// IdealPriceDefined is false when the combined cost burden reaches 100%
	// and the product cannot be priced profitably under the stated targets.
	IdealPriceDefined bool           `json:"ideal_price_defined"`
	ChannelPrices     []ChannelPrice `json:"channel_prices"`
}

// ComputeMarkup derives the company-wide markup multiplier from the identity
// price = cost / (1 - burden/100), where burden is the sum of the fixed-cost
// percentage, the variable-cost percentage and the desired profit
// percentage. Returns false when burden >= 100: no finite price covers the
// targets, and that fact must reach the user instead of a clamped number.
func ComputeMarkup(fixedCostPercent, variableCostPercent, desiredProfitPercent decimal.Decimal) (decimal.Decimal, bool) {
	burden := fixedCostPercent.Add(variableCostPercent).Add(desiredProfitPercent)
	if burden.GreaterThanOrEqual(hundred) {
		return decimal.Zero, false
	}
	return hundred.Div(hundred.Sub(burden)), true
}

// IdealMenuPrice is the base (counter) price that covers CMV plus the burden
// baked into the markup.
func IdealMenuPrice(cmv, markup decimal.Decimal) decimal.Decimal {
	return cmv.Mul(markup)
}

// ChannelIdealPrice grosses the base price up for one channel's fee stack so
// the amount left after channel deductions equals the base price. A fee
// stack of 100% or more has no finite answer.
func ChannelIdealPrice(basePrice decimal.Decimal, channel SalesChannel) ChannelPrice {
	tax := channel.TotalTaxPercent()
	cp := ChannelPrice{
		ChannelID:   channel.ID,
		ChannelName: channel.Name,
		TaxPercent:  tax,
	}
	if tax.GreaterThanOrEqual(hundred) {
		return cp
	}
	cp.Price = basePrice.Div(decimal.NewFromInt(1).Sub(tax.Div(hundred)))
	cp.Defined = true
	return cp
}

// AllChannelPrices computes the ideal price on every channel.
func AllChannelPrices(basePrice decimal.Decimal, channels []SalesChannel) []ChannelPrice {
	prices := make([]ChannelPrice, 0, len(channels))
	for _, ch := range channels {
		prices = append(prices, ChannelIdealPrice(basePrice, ch))
	}
	return prices
}

// ComputeProductMetrics evaluates one product at its actual sale price:
// realized CMV%, cost shares, profit, and the ideal price under the
// company's allocation mode, extended per channel.
func ComputeProductMetrics(product Product, cmv RecipeCost, alloc Allocation,
	channels []SalesChannel, settings BusinessSettings) ProductMetrics {

	m := ProductMetrics{
		ProductID: product.ID,
		SalePrice: product.SalePrice,
		CMV:       cmv.Total,
		CMVKnown:  !cmv.Undefined,
		CMVStatus: CMVStatusUnknown,
	}

	price := product.SalePrice
	if price.IsPositive() {
		m.FixedCostShare = alloc.ContributionFor(price)
		m.VariableCostShare = price.Mul(settings.VariableCostPercent()).Div(hundred)
		m.ProfitValue = price.Sub(cmv.Total).Sub(m.FixedCostShare).Sub(m.VariableCostShare)

		cmvPct := cmv.Total.Div(price).Mul(hundred)
		m.CMVPercent = &cmvPct
		profitPct := m.ProfitValue.Div(price).Mul(hundred)
		m.ProfitPercent = &profitPct

		if !cmv.Undefined {
			m.CMVStatus = bandCMV(cmvPct, settings)
		}
	}

	m.IdealPrice, m.Markup, m.IdealPriceDefined = idealPriceFor(cmv.Total, alloc, settings)
	m.MarkupDefined = m.IdealPriceDefined
	if m.IdealPriceDefined {
		m.ChannelPrices = AllChannelPrices(m.IdealPrice, channels)
	}
	return m
}

// idealPriceFor computes the ideal base price and effective markup for the
// company's allocation mode. In revenue_based mode the markup identity
// applies directly. In per_unit mode the flat fixed amount joins the cost
// side: price = (cmv + perUnit) / (1 - (variable% + profit%)/100), and the
// reported markup is the resulting price-to-cost ratio.
func idealPriceFor(cmv decimal.Decimal, alloc Allocation, settings BusinessSettings) (price, markup decimal.Decimal, ok bool) {
	variable := settings.VariableCostPercent()
	profit := settings.DesiredProfitPercent

	switch alloc.Mode {
	case AllocationPerUnit:
		burden := variable.Add(profit)
		if burden.GreaterThanOrEqual(hundred) {
			return decimal.Zero, decimal.Zero, false
		}
		price = cmv.Add(alloc.PerUnit).Mul(hundred).Div(hundred.Sub(burden))
		markup = decimal.Zero
		if cmv.IsPositive() {
			markup = price.Div(cmv)
		}
		return price, markup, true
	default:
		mk, defined := ComputeMarkup(alloc.Percent, variable, profit)
		if !defined {
			return decimal.Zero, decimal.Zero, false
		}
		return IdealMenuPrice(cmv, mk), mk, true
	}
}

// bandCMV maps a realized CMV percentage onto the ok/warning/danger scale.
// Warning reaches from the target up to target + configured margin.
func bandCMV(cmvPercent decimal.Decimal, settings BusinessSettings) CMVStatus {
	target := settings.TargetCMVPercent
	if !target.IsPositive() {
		return CMVStatusUnknown
	}
	margin := settings.CMVWarningMargin
	if !margin.IsPositive() {
		margin = defaultCMVWarningMargin
	}
	switch {
	case cmvPercent.LessThanOrEqual(target):
		return CMVStatusOK
	case cmvPercent.LessThanOrEqual(target.Add(margin)):
		return CMVStatusWarning
	default:
		return CMVStatusDanger
	}
}
