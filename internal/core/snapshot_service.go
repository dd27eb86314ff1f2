package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// ErrCompanyNotFound is returned when the requested company does not exist.
var ErrCompanyNotFound = errors.New("company not found")

// ErrNoSettings is returned when a company has no business settings row yet;
// pricing cannot run without targets.
var ErrNoSettings = errors.New("business settings not configured")

// SnapshotService loads one company's full data snapshot for the engine.
type SnapshotService interface {
	// LoadCompanySnapshot fetches all engine inputs for the company. The
	// independent bulk reads run in parallel and join before returning —
	// the engine is never invoked on a partial snapshot.
	LoadCompanySnapshot(ctx context.Context, companyID int) (*CompanySnapshot, error)
}

type snapshotService struct {
	pool *pgxpool.Pool
}

// NewSnapshotService constructs a SnapshotService backed by the given pool.
func NewSnapshotService(pool *pgxpool.Pool) SnapshotService {
	return &snapshotService{pool: pool}
}

func (s *snapshotService) LoadCompanySnapshot(ctx context.Context, companyID int) (*CompanySnapshot, error) {
	snap := &CompanySnapshot{}

	if err := s.pool.QueryRow(ctx,
		"SELECT id, name FROM companies WHERE id = $1", companyID,
	).Scan(&snap.Company.ID, &snap.Company.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("company %d: %w", companyID, ErrCompanyNotFound)
		}
		return nil, fmt.Errorf("failed to resolve company: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.loadIngredients(gctx, companyID, snap) })
	g.Go(func() error { return s.loadComponents(gctx, companyID, snap) })
	g.Go(func() error { return s.loadProducts(gctx, companyID, snap) })
	g.Go(func() error { return s.loadRecipeLines(gctx, companyID, snap) })
	g.Go(func() error { return s.loadComboItems(gctx, companyID, snap) })
	g.Go(func() error { return s.loadChannels(gctx, companyID, snap) })
	g.Go(func() error { return s.loadFixedCosts(gctx, companyID, snap) })
	g.Go(func() error { return s.loadSettings(gctx, companyID, snap) })
	g.Go(func() error { return s.loadManualRevenue(gctx, companyID, snap) })
	g.Go(func() error { return s.loadSales(gctx, companyID, snap) })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *snapshotService) loadIngredients(ctx context.Context, companyID int, snap *CompanySnapshot) error {
	rows, err := s.pool.Query(ctx, `
		SELECT id, company_id, name, category, unit, cost_per_unit, is_composite
		FROM ingredients
		WHERE company_id = $1
		ORDER BY id
	`, companyID)
	if err != nil {
		return fmt.Errorf("failed to query ingredients: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ing Ingredient
		var cost *decimal.Decimal
		if err := rows.Scan(&ing.ID, &ing.CompanyID, &ing.Name, &ing.Category,
			&ing.Unit, &cost, &ing.IsComposite); err != nil {
			return fmt.Errorf("failed to scan ingredient: %w", err)
		}
		// NULL cost = never priced. Zero cost = priced, genuinely free.
		if cost != nil {
			ing.CostPerUnit = *cost
			ing.CostDefined = true
		}
		snap.Ingredients = append(snap.Ingredients, ing)
	}
	return rows.Err()
}

func (s *snapshotService) loadComponents(ctx context.Context, companyID int, snap *CompanySnapshot) error {
	rows, err := s.pool.Query(ctx, `
		SELECT ic.parent_id, ic.child_id, ic.quantity
		FROM ingredient_components ic
		JOIN ingredients i ON i.id = ic.parent_id
		WHERE i.company_id = $1
		ORDER BY ic.parent_id, ic.child_id
	`, companyID)
	if err != nil {
		return fmt.Errorf("failed to query ingredient components: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c IngredientComponent
		if err := rows.Scan(&c.ParentID, &c.ChildID, &c.Quantity); err != nil {
			return fmt.Errorf("failed to scan ingredient component: %w", err)
		}
		snap.Components = append(snap.Components, c)
	}
	return rows.Err()
}

func (s *snapshotService) loadProducts(ctx context.Context, companyID int, snap *CompanySnapshot) error {
	rows, err := s.pool.Query(ctx, `
		SELECT id, company_id, name, category, sale_price, is_active, is_combo
		FROM products
		WHERE company_id = $1
		ORDER BY id
	`, companyID)
	if err != nil {
		return fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Name, &p.Category,
			&p.SalePrice, &p.IsActive, &p.IsCombo); err != nil {
			return fmt.Errorf("failed to scan product: %w", err)
		}
		snap.Products = append(snap.Products, p)
	}
	return rows.Err()
}

func (s *snapshotService) loadRecipeLines(ctx context.Context, companyID int, snap *CompanySnapshot) error {
	rows, err := s.pool.Query(ctx, `
		SELECT rl.product_id, rl.ingredient_id, rl.quantity, rl.unit
		FROM recipe_lines rl
		JOIN products p ON p.id = rl.product_id
		WHERE p.company_id = $1
		ORDER BY rl.product_id, rl.ingredient_id
	`, companyID)
	if err != nil {
		return fmt.Errorf("failed to query recipe lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var l RecipeLine
		if err := rows.Scan(&l.ProductID, &l.IngredientID, &l.Quantity, &l.Unit); err != nil {
			return fmt.Errorf("failed to scan recipe line: %w", err)
		}
		snap.RecipeLines = append(snap.RecipeLines, l)
	}
	return rows.Err()
}

func (s *snapshotService) loadComboItems(ctx context.Context, companyID int, snap *CompanySnapshot) error {
	rows, err := s.pool.Query(ctx, `
		SELECT ci.combo_id, ci.product_id, ci.quantity
		FROM combo_items ci
		JOIN products p ON p.id = ci.combo_id
		WHERE p.company_id = $1
		ORDER BY ci.combo_id, ci.product_id
	`, companyID)
	if err != nil {
		return fmt.Errorf("failed to query combo items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it ComboItem
		if err := rows.Scan(&it.ComboID, &it.ProductID, &it.Quantity); err != nil {
			return fmt.Errorf("failed to scan combo item: %w", err)
		}
		snap.ComboItems = append(snap.ComboItems, it)
	}
	return rows.Err()
}

func (s *snapshotService) loadChannels(ctx context.Context, companyID int, snap *CompanySnapshot) error {
	rows, err := s.pool.Query(ctx, `
		SELECT c.id, c.company_id, c.name,
		       COALESCE(f.id, 0), COALESCE(f.name, ''), COALESCE(f.percent, 0)
		FROM sales_channels c
		LEFT JOIN channel_fees f ON f.channel_id = c.id
		WHERE c.company_id = $1
		ORDER BY c.id, f.id
	`, companyID)
	if err != nil {
		return fmt.Errorf("failed to query sales channels: %w", err)
	}
	defer rows.Close()

	byID := make(map[int]int) // channel id -> index in snap.Channels
	for rows.Next() {
		var ch SalesChannel
		var fee ChannelFee
		if err := rows.Scan(&ch.ID, &ch.CompanyID, &ch.Name,
			&fee.ID, &fee.Name, &fee.Percent); err != nil {
			return fmt.Errorf("failed to scan sales channel: %w", err)
		}
		idx, seen := byID[ch.ID]
		if !seen {
			snap.Channels = append(snap.Channels, ch)
			idx = len(snap.Channels) - 1
			byID[ch.ID] = idx
		}
		if fee.ID != 0 {
			fee.ChannelID = ch.ID
			snap.Channels[idx].Fees = append(snap.Channels[idx].Fees, fee)
		}
	}
	return rows.Err()
}

func (s *snapshotService) loadFixedCosts(ctx context.Context, companyID int, snap *CompanySnapshot) error {
	rows, err := s.pool.Query(ctx, `
		SELECT id, company_id, name, category, monthly_value, config
		FROM fixed_costs
		WHERE company_id = $1
		ORDER BY id
	`, companyID)
	if err != nil {
		return fmt.Errorf("failed to query fixed costs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var fc FixedCost
		if err := rows.Scan(&fc.ID, &fc.CompanyID, &fc.Name, &fc.Category,
			&fc.Value, &fc.Config); err != nil {
			return fmt.Errorf("failed to scan fixed cost: %w", err)
		}
		snap.FixedCosts = append(snap.FixedCosts, fc)
	}
	return rows.Err()
}

func (s *snapshotService) loadSettings(ctx context.Context, companyID int, snap *CompanySnapshot) error {
	err := s.pool.QueryRow(ctx, `
		SELECT company_id, desired_profit_percent, platform_tax_percent,
		       target_cmv_percent, cmv_warning_margin,
		       estimated_monthly_sales, allocation_mode
		FROM business_settings
		WHERE company_id = $1
	`, companyID).Scan(
		&snap.Settings.CompanyID,
		&snap.Settings.DesiredProfitPercent,
		&snap.Settings.PlatformTaxPercent,
		&snap.Settings.TargetCMVPercent,
		&snap.Settings.CMVWarningMargin,
		&snap.Settings.EstimatedMonthlySales,
		&snap.Settings.AllocationMode,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("company %d: %w", companyID, ErrNoSettings)
	}
	if err != nil {
		return fmt.Errorf("failed to query business settings: %w", err)
	}
	return nil
}

func (s *snapshotService) loadManualRevenue(ctx context.Context, companyID int, snap *CompanySnapshot) error {
	rows, err := s.pool.Query(ctx, `
		SELECT company_id, year, month, amount
		FROM manual_monthly_revenue
		WHERE company_id = $1
		ORDER BY year, month
	`, companyID)
	if err != nil {
		return fmt.Errorf("failed to query manual revenue: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m ManualRevenue
		if err := rows.Scan(&m.CompanyID, &m.Year, &m.Month, &m.Amount); err != nil {
			return fmt.Errorf("failed to scan manual revenue: %w", err)
		}
		snap.ManualRevenue = append(snap.ManualRevenue, m)
		// The settings screen shows one figure per calendar month; later
		// years win when a month appears more than once.
		if m.Month >= 1 && m.Month <= 12 {
			snap.Settings.MonthlyRevenue[m.Month-1] = m.Amount
		}
	}
	return rows.Err()
}

func (s *snapshotService) loadSales(ctx context.Context, companyID int, snap *CompanySnapshot) error {
	// Two years is enough for every dashboard window; older history is
	// never bucketed anyway.
	rows, err := s.pool.Query(ctx, `
		SELECT id, company_id, product_id, quantity, unit_price, sold_at
		FROM sales
		WHERE company_id = $1
		  AND sold_at >= NOW() - INTERVAL '24 months'
		ORDER BY sold_at
	`, companyID)
	if err != nil {
		return fmt.Errorf("failed to query sales: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sale Sale
		if err := rows.Scan(&sale.ID, &sale.CompanyID, &sale.ProductID,
			&sale.Quantity, &sale.UnitPrice, &sale.SoldAt); err != nil {
			return fmt.Errorf("failed to scan sale: %w", err)
		}
		snap.Sales = append(snap.Sales, sale)
	}
	return rows.Err()
}
