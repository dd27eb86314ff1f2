package core

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MonthKey identifies a calendar month bucket, formatted "YYYY-MM".
type MonthKey string

// MonthKeyFor builds the bucket key for a year and month.
func MonthKeyFor(year int, month time.Month) MonthKey {
	return MonthKey(fmt.Sprintf("%04d-%02d", year, int(month)))
}

var monthLabels = [12]string{
	"jan", "fev", "mar", "abr", "mai", "jun",
	"jul", "ago", "set", "out", "nov", "dez",
}

// MonthlyKPI is one month of the financial dashboard time series. It is
// derived on every request, never stored. ManualRevenue is kept apart from
// sales-derived Revenue — the two are different data sources and must not be
// summed or overwrite each other. Margin and CMV percentages are nil when
// the month had no revenue, so "no data" never reads as "zero margin".
type MonthlyKPI struct {
	Year  int      `json:"year"`
	Month int      `json:"month"`
	Key   MonthKey `json:"key"`
	Label string   `json:"label"`

	Revenue       decimal.Decimal  `json:"revenue"`
	ManualRevenue *decimal.Decimal `json:"manual_revenue,omitempty"`
	EstimatedCost decimal.Decimal  `json:"estimated_cost"`
	Profit        decimal.Decimal  `json:"profit"`
	MarginPercent *decimal.Decimal `json:"margin_percent,omitempty"`
	CMVPercent    *decimal.Decimal `json:"cmv_percent,omitempty"`

	// UndefinedCostQty/Revenue track units sold whose unit cost is unknown.
	// They are excluded from EstimatedCost instead of being assumed free.
	UndefinedCostQty     decimal.Decimal `json:"undefined_cost_qty"`
	UndefinedCostRevenue decimal.Decimal `json:"undefined_cost_revenue"`
}

// BuildMonthlyKPIs buckets historical sales into exactly monthsBack
// consecutive calendar months ending at now's month, zero-filled and in
// chronological order. All month boundaries are UTC so a sale near midnight
// never drifts across buckets with the server timezone. Sales outside the
// window are dropped. unitCosts carries each product's resolved unit cost;
// products absent from it, or present with Defined=false, feed the
// undefined-cost counters instead of the cost total.
func BuildMonthlyKPIs(sales []Sale, unitCosts map[int]ResolvedCost,
	manualRevenue map[MonthKey]decimal.Decimal, monthsBack int, now time.Time) []MonthlyKPI {

	if monthsBack <= 0 {
		return nil
	}

	nowUTC := now.UTC()
	first := time.Date(nowUTC.Year(), nowUTC.Month(), 1, 0, 0, 0, 0, time.UTC).
		AddDate(0, -(monthsBack - 1), 0)

	kpis := make([]MonthlyKPI, monthsBack)
	index := make(map[MonthKey]*MonthlyKPI, monthsBack)
	for i := 0; i < monthsBack; i++ {
		m := first.AddDate(0, i, 0)
		key := MonthKeyFor(m.Year(), m.Month())
		kpis[i] = MonthlyKPI{
			Year:  m.Year(),
			Month: int(m.Month()),
			Key:   key,
			Label: fmt.Sprintf("%s/%d", monthLabels[m.Month()-1], m.Year()),
		}
		index[key] = &kpis[i]
	}

	for _, sale := range sales {
		soldAt := sale.SoldAt.UTC()
		bucket, ok := index[MonthKeyFor(soldAt.Year(), soldAt.Month())]
		if !ok {
			// Outside the window (too old, or a far-future timestamp from a
			// broken integration): dropped, not mis-bucketed.
			continue
		}

		lineRevenue := sale.Quantity.Mul(sale.UnitPrice)
		bucket.Revenue = bucket.Revenue.Add(lineRevenue)

		uc, known := unitCosts[sale.ProductID]
		if known && uc.Defined {
			bucket.EstimatedCost = bucket.EstimatedCost.Add(sale.Quantity.Mul(uc.Value))
		} else {
			bucket.UndefinedCostQty = bucket.UndefinedCostQty.Add(sale.Quantity)
			bucket.UndefinedCostRevenue = bucket.UndefinedCostRevenue.Add(lineRevenue)
		}
	}

	for i := range kpis {
		k := &kpis[i]
		if manual, ok := manualRevenue[k.Key]; ok {
			v := manual
			k.ManualRevenue = &v
		}
		k.Profit = k.Revenue.Sub(k.EstimatedCost)
		if k.Revenue.IsPositive() {
			margin := k.Profit.Div(k.Revenue).Mul(hundred)
			k.MarginPercent = &margin
			cmvPct := k.EstimatedCost.Div(k.Revenue).Mul(hundred)
			k.CMVPercent = &cmvPct
		}
	}
	return kpis
}
