// seed is a one-shot tool that loads a demo hamburgueria into the database.
// Run it after migrations on a fresh environment to have data to price.
//
// Usage: go run ./cmd/seed
package main

import (
	"context"
	"log"

	"costing-engine/internal/db"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, "")
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer pool.Close()

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatalf("Failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	log.Println("Clearing previous demo data...")
	_, err = tx.Exec(ctx, `
		DELETE FROM companies WHERE name = 'Hamburgueria Demo';
	`)
	if err != nil {
		log.Fatalf("Failed to clear demo data: %v", err)
	}

	log.Println("Creating company...")
	var companyID int
	if err := tx.QueryRow(ctx, `
		INSERT INTO companies (name) VALUES ('Hamburgueria Demo') RETURNING id
	`).Scan(&companyID); err != nil {
		log.Fatalf("Failed to create company: %v", err)
	}

	log.Println("Creating ingredients...")
	_, err = tx.Exec(ctx, `
		INSERT INTO ingredients (company_id, name, category, unit, cost_per_unit, is_composite)
		VALUES
		    ($1, 'Carne moída',    'proteína', 'kg', 42.00, FALSE),
		    ($1, 'Pão brioche',    'padaria',  'un', 2.20,  FALSE),
		    ($1, 'Queijo cheddar', 'frios',    'kg', 55.00, FALSE),
		    ($1, 'Batata',         'legumes',  'kg', 7.50,  FALSE),
		    ($1, 'Maionese',       'molhos',   'l',  NULL,  FALSE),
		    ($1, 'Molho da casa',  'molhos',   'l',  NULL,  TRUE)
	`, companyID)
	if err != nil {
		log.Fatalf("Failed to create ingredients: %v", err)
	}

	// The composite sauce is built from maionese plus a priced base; its
	// effective cost stays undefined until maionese gets a price.
	_, err = tx.Exec(ctx, `
		INSERT INTO ingredient_components (parent_id, child_id, quantity)
		SELECT p.id, c.id, 0.5
		FROM ingredients p, ingredients c
		WHERE p.company_id = $1 AND p.name = 'Molho da casa'
		  AND c.company_id = $1 AND c.name = 'Maionese'
	`, companyID)
	if err != nil {
		log.Fatalf("Failed to create components: %v", err)
	}

	log.Println("Creating products and recipes...")
	_, err = tx.Exec(ctx, `
		INSERT INTO products (company_id, name, category, sale_price, is_active, is_combo)
		VALUES
		    ($1, 'X-Burger',     'lanches',        24.90, TRUE, FALSE),
		    ($1, 'Batata frita', 'acompanhamentos', 14.90, TRUE, FALSE),
		    ($1, 'Combo X',      'combos',          34.90, TRUE, TRUE)
	`, companyID)
	if err != nil {
		log.Fatalf("Failed to create products: %v", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO recipe_lines (product_id, ingredient_id, quantity, unit)
		SELECT p.id, i.id, v.qty, v.unit
		FROM (VALUES
		    ('X-Burger',     'Carne moída',    160.0, 'g'),
		    ('X-Burger',     'Pão brioche',    1.0,   'un'),
		    ('X-Burger',     'Queijo cheddar', 30.0,  'g'),
		    ('Batata frita', 'Batata',         300.0, 'g')
		) AS v(product, ingredient, qty, unit)
		JOIN products p    ON p.company_id = $1 AND p.name = v.product
		JOIN ingredients i ON i.company_id = $1 AND i.name = v.ingredient
	`, companyID)
	if err != nil {
		log.Fatalf("Failed to create recipe lines: %v", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO combo_items (combo_id, product_id, quantity)
		SELECT combo.id, item.id, 1
		FROM products combo, products item
		WHERE combo.company_id = $1 AND combo.name = 'Combo X'
		  AND item.company_id = $1 AND item.name IN ('X-Burger', 'Batata frita')
	`, companyID)
	if err != nil {
		log.Fatalf("Failed to create combo items: %v", err)
	}

	log.Println("Creating sales channels...")
	_, err = tx.Exec(ctx, `
		WITH ch AS (
		    INSERT INTO sales_channels (company_id, name)
		    VALUES ($1, 'iFood') RETURNING id
		)
		INSERT INTO channel_fees (channel_id, name, percent)
		SELECT id, f.name, f.percent
		FROM ch, (VALUES ('Comissão', 12.0), ('Entrega parceira', 8.0)) AS f(name, percent)
	`, companyID)
	if err != nil {
		log.Fatalf("Failed to create channels: %v", err)
	}

	log.Println("Creating settings and fixed costs...")
	_, err = tx.Exec(ctx, `
		INSERT INTO business_settings
		    (company_id, desired_profit_percent, platform_tax_percent,
		     target_cmv_percent, cmv_warning_margin, estimated_monthly_sales, allocation_mode)
		VALUES ($1, 15, 8, 30, 10, 1200, 'revenue_based')
	`, companyID)
	if err != nil {
		log.Fatalf("Failed to create settings: %v", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO fixed_costs (company_id, name, category, monthly_value, config)
		VALUES
		    ($1, 'Aluguel',      'ocupação', 3500, NULL),
		    ($1, 'Energia',      'ocupação', 650,  NULL),
		    ($1, 'Chapeiros',    'equipe',   0,
		        '{"kind": "clt_salary", "salary": "1900", "employees": 2}'),
		    ($1, 'Motoboy extra','entrega',  0,
		        '{"kind": "freelancer", "daily_rate": "120", "people": 1, "days_per_month": 8}')
	`, companyID)
	if err != nil {
		log.Fatalf("Failed to create fixed costs: %v", err)
	}

	log.Println("Creating revenue history...")
	_, err = tx.Exec(ctx, `
		INSERT INTO manual_monthly_revenue (company_id, year, month, amount)
		SELECT $1,
		       EXTRACT(YEAR FROM d)::INT,
		       EXTRACT(MONTH FROM d)::INT,
		       24000 + 1500 * EXTRACT(MONTH FROM d)::INT % 4000
		FROM generate_series(
		    date_trunc('month', NOW()) - INTERVAL '5 months',
		    date_trunc('month', NOW()),
		    INTERVAL '1 month') AS d
	`, companyID)
	if err != nil {
		log.Fatalf("Failed to create manual revenue: %v", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO sales (company_id, product_id, quantity, unit_price, sold_at)
		SELECT $1, p.id, 1 + (s % 3), p.sale_price,
		       NOW() - (s || ' days')::INTERVAL
		FROM products p, generate_series(0, 89) AS s
		WHERE p.company_id = $1 AND NOT p.is_combo
	`, companyID)
	if err != nil {
		log.Fatalf("Failed to create sales: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}
	log.Printf("Demo company seeded (id=%d).", companyID)
}
