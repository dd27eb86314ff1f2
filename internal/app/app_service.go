package app

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"costing-engine/internal/ai"
	"costing-engine/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultKPIMonths = 6

type appService struct {
	pool      *pgxpool.Pool
	snapshots core.SnapshotService
	advisor   ai.AdvisorService
}

// NewAppService constructs an appService that satisfies ApplicationService.
// advisor may be nil when no API key is configured; AdvisePricing then fails
// with a clear error instead of a nil dereference.
func NewAppService(pool *pgxpool.Pool, snapshots core.SnapshotService, advisor ai.AdvisorService) ApplicationService {
	return &appService{
		pool:      pool,
		snapshots: snapshots,
		advisor:   advisor,
	}
}

// GetPricingReport computes the full pricing report for a company.
func (s *appService) GetPricingReport(ctx context.Context, companyID int) (*PricingReportResult, error) {
	snap, err := s.snapshots.LoadCompanySnapshot(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return &PricingReportResult{Report: core.BuildPricingReport(snap)}, nil
}

// GetProductCost returns one product's resolved cost breakdown.
func (s *appService) GetProductCost(ctx context.Context, companyID, productID int) (*ProductCostResult, error) {
	snap, err := s.snapshots.LoadCompanySnapshot(ctx, companyID)
	if err != nil {
		return nil, err
	}

	report := core.BuildPricingReport(snap)
	for i := range report.Products {
		if report.Products[i].Product.ID == productID {
			return &ProductCostResult{Report: &report.Products[i]}, nil
		}
	}
	if msg, ok := report.ProductErrors[productID]; ok {
		return nil, fmt.Errorf("product %d cost is unresolvable: %s", productID, msg)
	}
	return nil, fmt.Errorf("product %d in company %d: %w", productID, companyID, ErrProductNotFound)
}

// GetIngredientCost resolves one ingredient's effective unit cost.
func (s *appService) GetIngredientCost(ctx context.Context, companyID, ingredientID int) (*IngredientCostResult, error) {
	snap, err := s.snapshots.LoadCompanySnapshot(ctx, companyID)
	if err != nil {
		return nil, err
	}

	var ingredient *core.Ingredient
	for i := range snap.Ingredients {
		if snap.Ingredients[i].ID == ingredientID {
			ingredient = &snap.Ingredients[i]
			break
		}
	}
	if ingredient == nil {
		return nil, fmt.Errorf("ingredient %d in company %d: %w", ingredientID, companyID, ErrIngredientNotFound)
	}

	resolver := core.NewCostResolver(snap.Ingredients, snap.Components)
	cost, err := resolver.ResolveUnitCost(ingredientID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve ingredient %d: %w", ingredientID, err)
	}
	return &IngredientCostResult{Ingredient: *ingredient, UnitCost: cost}, nil
}

// GetCostBreakdown derives each fixed cost's monthly value.
func (s *appService) GetCostBreakdown(ctx context.Context, companyID int) (*CostBreakdownResult, error) {
	snap, err := s.snapshots.LoadCompanySnapshot(ctx, companyID)
	if err != nil {
		return nil, err
	}

	lines, total := core.FixedCostBreakdown(snap)
	return &CostBreakdownResult{Company: snap.Company, Lines: lines, Total: total}, nil
}

// GetMonthlyKPIs aggregates the sales history into monthly KPIs.
func (s *appService) GetMonthlyKPIs(ctx context.Context, companyID, monthsBack int) (*KPIResult, error) {
	if monthsBack <= 0 {
		monthsBack = defaultKPIMonths
	}

	snap, err := s.snapshots.LoadCompanySnapshot(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return &KPIResult{
		Company:    snap.Company,
		MonthsBack: monthsBack,
		Months:     core.BuildCompanyKPIs(snap, monthsBack, time.Now().UTC()),
	}, nil
}

// AdvisePricing runs the pricing report and hands it to the AI advisor.
func (s *appService) AdvisePricing(ctx context.Context, companyID int, question string) (*AdviceResult, error) {
	if s.advisor == nil {
		return nil, fmt.Errorf("AI advisor not configured; set OPENAI_API_KEY")
	}
	if question == "" {
		question = "Como posso melhorar a precificação do meu cardápio?"
	}

	snap, err := s.snapshots.LoadCompanySnapshot(ctx, companyID)
	if err != nil {
		return nil, err
	}

	advice, err := s.advisor.AdvisePricing(ctx, core.BuildPricingReport(snap), question)
	if err != nil {
		return nil, err
	}
	return &AdviceResult{Advice: advice}, nil
}

// LoadDefaultCompany loads the active company, using COMPANY_ID env var if set.
func (s *appService) LoadDefaultCompany(ctx context.Context) (*core.Company, error) {
	if raw := os.Getenv("COMPANY_ID"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid COMPANY_ID %q: %w", raw, err)
		}
		c := &core.Company{}
		if err := s.pool.QueryRow(ctx,
			"SELECT id, name FROM companies WHERE id = $1", id,
		).Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("company %d not found: %w", id, err)
		}
		return c, nil
	}

	var count int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM companies").Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to count companies: %w", err)
	}
	if count > 1 {
		return nil, fmt.Errorf("multiple companies found; set COMPANY_ID env var")
	}

	c := &core.Company{}
	if err := s.pool.QueryRow(ctx,
		"SELECT id, name FROM companies LIMIT 1",
	).Scan(&c.ID, &c.Name); err != nil {
		return nil, fmt.Errorf("no default company found, have migrations run?: %w", err)
	}
	return c, nil
}
