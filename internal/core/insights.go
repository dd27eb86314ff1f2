package core

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Severity ranks an insight. Danger sorts before warning, warning before
// info — callers show the first insight as "the single worst badge".
type Severity string

const (
	SeverityDanger  Severity = "danger"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Insight is a generated warning about a product's pricing health.
type Insight struct {
	Key      string   `json:"key"`
	Severity Severity `json:"severity"`
	Title    string   `json:"title"`
	Detail   string   `json:"detail"`
}

const (
	InsightNegativeMargin     = "negative_margin"
	InsightCMVAboveTarget     = "cmv_above_target"
	InsightPriceBelowIdeal    = "price_below_ideal"
	InsightProfitBelowDesired = "profit_below_desired"
)

// keyPriority breaks ties between insights of equal severity.
var keyPriority = map[string]int{
	InsightNegativeMargin:     0,
	InsightCMVAboveTarget:     1,
	InsightPriceBelowIdeal:    2,
	InsightProfitBelowDesired: 3,
}

var severityRank = map[Severity]int{
	SeverityDanger:  0,
	SeverityWarning: 1,
	SeverityInfo:    2,
}

// priceBelowIdealTolerance: the actual price must be more than 5% below the
// ideal before the insight fires, so rounding noise never raises alerts.
var priceBelowIdealTolerance = decimal.NewFromFloat(0.95)

// BuildInsights evaluates a product's metrics against the company targets
// and returns the applicable insights sorted by severity, then by fixed key
// priority. No insights are produced for an unpriced product or when the
// ideal price is undefined (burden >= 100%) — those states have their own
// surfacing.
func BuildInsights(product Product, m ProductMetrics, settings BusinessSettings) []Insight {
	if !product.SalePrice.IsPositive() || !m.IdealPriceDefined {
		return nil
	}

	var insights []Insight

	negative := false
	if m.ProfitPercent != nil && m.ProfitPercent.IsNegative() {
		negative = true
		insights = append(insights, Insight{
			Key:      InsightNegativeMargin,
			Severity: SeverityDanger,
			Title:    "Margem negativa",
			Detail: fmt.Sprintf("%s dá prejuízo de %s%% por venda no preço atual.",
				product.Name, m.ProfitPercent.Neg().StringFixed(1)),
		})
	}

	switch m.CMVStatus {
	case CMVStatusDanger:
		insights = append(insights, Insight{
			Key:      InsightCMVAboveTarget,
			Severity: SeverityDanger,
			Title:    "CMV muito acima da meta",
			Detail: fmt.Sprintf("CMV de %s%% contra meta de %s%%.",
				m.CMVPercent.StringFixed(1), settings.TargetCMVPercent.StringFixed(1)),
		})
	case CMVStatusWarning:
		insights = append(insights, Insight{
			Key:      InsightCMVAboveTarget,
			Severity: SeverityWarning,
			Title:    "CMV acima da meta",
			Detail: fmt.Sprintf("CMV de %s%% contra meta de %s%%.",
				m.CMVPercent.StringFixed(1), settings.TargetCMVPercent.StringFixed(1)),
		})
	}

	if m.IdealPrice.IsPositive() &&
		product.SalePrice.LessThan(m.IdealPrice.Mul(priceBelowIdealTolerance)) {
		insights = append(insights, Insight{
			Key:      InsightPriceBelowIdeal,
			Severity: SeverityWarning,
			Title:    "Preço abaixo do ideal",
			Detail: fmt.Sprintf("Preço atual R$ %s, preço ideal R$ %s.",
				product.SalePrice.StringFixed(2), m.IdealPrice.StringFixed(2)),
		})
	}

	// Mutually exclusive with negative_margin: a product is either losing
	// money or earning less than desired, never reported as both.
	if !negative && m.ProfitPercent != nil &&
		m.ProfitPercent.LessThan(settings.DesiredProfitPercent) {
		insights = append(insights, Insight{
			Key:      InsightProfitBelowDesired,
			Severity: SeverityWarning,
			Title:    "Lucro abaixo do desejado",
			Detail: fmt.Sprintf("Lucro de %s%% contra meta de %s%%.",
				m.ProfitPercent.StringFixed(1), settings.DesiredProfitPercent.StringFixed(1)),
		})
	}

	sort.SliceStable(insights, func(i, j int) bool {
		if severityRank[insights[i].Severity] != severityRank[insights[j].Severity] {
			return severityRank[insights[i].Severity] < severityRank[insights[j].Severity]
		}
		return keyPriority[insights[i].Key] < keyPriority[insights[j].Key]
	})
	return insights
}
