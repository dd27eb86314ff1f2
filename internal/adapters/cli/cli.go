package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"costing-engine/internal/app"
	"costing-engine/internal/core"
)

// Run executes a one-shot CLI command and exits.
// args is os.Args[1:] — the first element is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, args []string) {
	company, err := svc.LoadDefaultCompany(ctx)
	if err != nil {
		log.Fatalf("Failed to load company: %v", err)
	}

	switch args[0] {
	case "report", "rep", "r":
		result, err := svc.GetPricingReport(ctx, company.ID)
		if err != nil {
			log.Fatalf("Failed to build pricing report: %v", err)
		}
		printPricingReport(result.Report)

	case "cost", "cmv":
		if len(args) < 2 {
			log.Fatal("Usage: app cost <product-id>")
		}
		productID, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatalf("Invalid product id: %v", err)
		}
		result, err := svc.GetProductCost(ctx, company.ID, productID)
		if err != nil {
			log.Fatalf("Failed to resolve product cost: %v", err)
		}
		printProductReport(result.Report)

	case "costs", "fixed", "f":
		result, err := svc.GetCostBreakdown(ctx, company.ID)
		if err != nil {
			log.Fatalf("Failed to build cost breakdown: %v", err)
		}
		printCostBreakdown(result)

	case "kpis", "kpi", "k":
		months := 0
		if len(args) >= 2 {
			if months, err = strconv.Atoi(args[1]); err != nil {
				log.Fatalf("Invalid months: %v", err)
			}
		}
		result, err := svc.GetMonthlyKPIs(ctx, company.ID, months)
		if err != nil {
			log.Fatalf("Failed to build KPIs: %v", err)
		}
		printKPIs(result)

	case "advise", "adv", "a":
		question := ""
		if len(args) >= 2 {
			question = args[1]
		}
		result, err := svc.AdvisePricing(ctx, company.ID, question)
		if err != nil {
			log.Fatalf("Advisor error: %v", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(result.Advice)

	default:
		log.Fatalf("Unknown command: %s\nAvailable: report, cost, costs, kpis, advise", args[0])
	}
}

func printPricingReport(report *core.PricingReport) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 78))
	fmt.Printf("  %-74s\n", "PRICING REPORT")
	fmt.Printf("  Company      : %s\n", report.Company.Name)
	fmt.Printf("  Fixed costs  : %s/month\n", report.TotalFixedCosts.StringFixed(2))
	if report.MarkupDefined {
		fmt.Printf("  Markup       : %s\n", report.Markup.StringFixed(4))
	} else {
		fmt.Printf("  Markup       : undefined (cost burden too high)\n")
	}
	fmt.Println(strings.Repeat("=", 78))
	fmt.Printf("  %-28s %10s %10s %10s %8s\n", "PRODUCT", "PRICE", "CMV", "IDEAL", "STATUS")
	fmt.Println(strings.Repeat("-", 78))
	for _, pr := range report.Products {
		ideal := "—"
		if pr.Metrics.IdealPriceDefined {
			ideal = pr.Metrics.IdealPrice.StringFixed(2)
		}
		fmt.Printf("  %-28s %10s %10s %10s %8s\n",
			pr.Product.Name,
			pr.Product.SalePrice.StringFixed(2),
			pr.CMV.Total.StringFixed(2),
			ideal,
			pr.Metrics.CMVStatus)
	}
	fmt.Println(strings.Repeat("=", 78))
	for id, msg := range report.ProductErrors {
		fmt.Fprintf(os.Stderr, "  product %d skipped: %s\n", id, msg)
	}
}

func printProductReport(pr *core.ProductReport) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  %s\n", pr.Product.Name)
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  Sale price   : %s\n", pr.Product.SalePrice.StringFixed(2))
	fmt.Printf("  CMV          : %s", pr.CMV.Total.StringFixed(2))
	if pr.CMV.Undefined {
		fmt.Printf("  (incomplete: %d unpriced ingredients)", len(pr.CMV.UndefinedIngredients))
	}
	fmt.Println()
	if pr.Metrics.CMVPercent != nil {
		fmt.Printf("  CMV %%        : %s%% (%s)\n", pr.Metrics.CMVPercent.StringFixed(1), pr.Metrics.CMVStatus)
	}
	if pr.Metrics.IdealPriceDefined {
		fmt.Printf("  Ideal price  : %s\n", pr.Metrics.IdealPrice.StringFixed(2))
	}
	fmt.Printf("  Profit       : %s\n", pr.Metrics.ProfitValue.StringFixed(2))
	for _, cp := range pr.Metrics.ChannelPrices {
		fmt.Printf("  %-12s : %s (fees %s%%)\n", cp.ChannelName, cp.Price.StringFixed(2), cp.TaxPercent.StringFixed(1))
	}
	for _, in := range pr.Insights {
		fmt.Printf("  [%s] %s: %s\n", in.Severity, in.Title, in.Detail)
	}
	fmt.Println(strings.Repeat("=", 62))
}

func printCostBreakdown(result *app.CostBreakdownResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  FIXED COSTS — %s\n", result.Company.Name)
	fmt.Println(strings.Repeat("=", 62))
	fmt.Printf("  %-28s %-14s %15s\n", "NAME", "CATEGORY", "MONTHLY")
	fmt.Println(strings.Repeat("-", 62))
	for _, l := range result.Lines {
		fmt.Printf("  %-28s %-14s %15s\n", l.Cost.Name, l.Cost.Category, l.MonthlyValue.StringFixed(2))
	}
	fmt.Println(strings.Repeat("-", 62))
	fmt.Printf("  %-43s %15s\n", "TOTAL", result.Total.StringFixed(2))
	fmt.Println(strings.Repeat("=", 62))
}

func printKPIs(result *app.KPIResult) {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("  MONTHLY KPIS — %s (last %d months)\n", result.Company.Name, result.MonthsBack)
	fmt.Println(strings.Repeat("=", 70))
	fmt.Printf("  %-10s %12s %12s %12s %8s\n", "MONTH", "REVENUE", "COST", "PROFIT", "CMV%")
	fmt.Println(strings.Repeat("-", 70))
	for _, k := range result.Months {
		cmvPct := "—"
		if k.CMVPercent != nil {
			cmvPct = k.CMVPercent.StringFixed(1)
		}
		fmt.Printf("  %-10s %12s %12s %12s %8s\n",
			k.Label,
			k.Revenue.StringFixed(2),
			k.EstimatedCost.StringFixed(2),
			k.Profit.StringFixed(2),
			cmvPct)
	}
	fmt.Println(strings.Repeat("=", 70))
}
