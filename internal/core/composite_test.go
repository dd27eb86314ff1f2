package core_test

import (
	"errors"
	"testing"

	"costing-engine/internal/core"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func simpleIngredient(id int, name string, unit core.Unit, cost string) core.Ingredient {
	return core.Ingredient{
		ID: id, CompanyID: 1, Name: name, Unit: unit,
		CostPerUnit: dec(cost), CostDefined: true,
	}
}

func TestResolveUnitCost_NonCompositeIdentity(t *testing.T) {
	tests := []struct {
		name string
		cost string
	}{
		{"regular cost", "2.50"},
		{"free ingredient", "0"},
		{"fractional", "0.0375"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := core.NewCostResolver([]core.Ingredient{
				simpleIngredient(1, "Farinha", core.UnitKilogram, tt.cost),
			}, nil)

			rc, err := r.ResolveUnitCost(1)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !rc.Value.Equal(dec(tt.cost)) {
				t.Errorf("expected stored cost %s, got %s", tt.cost, rc.Value)
			}
			if !rc.Defined {
				t.Errorf("expected priced ingredient to be defined")
			}
		})
	}
}

func TestResolveUnitCost_CompositeWeightedSum(t *testing.T) {
	// Flour R$2.00/kg; Dough = 0.5kg Flour + 0.1kg Yeast (R$10.00/kg)
	// => 0.5*2.00 + 0.1*10.00 = 2.00
	ingredients := []core.Ingredient{
		simpleIngredient(1, "Farinha", core.UnitKilogram, "2.00"),
		simpleIngredient(2, "Fermento", core.UnitKilogram, "10.00"),
		{ID: 3, CompanyID: 1, Name: "Massa", Unit: core.UnitKilogram, IsComposite: true},
	}
	components := []core.IngredientComponent{
		{ParentID: 3, ChildID: 1, Quantity: dec("0.5")},
		{ParentID: 3, ChildID: 2, Quantity: dec("0.1")},
	}

	r := core.NewCostResolver(ingredients, components)
	rc, err := r.ResolveUnitCost(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rc.Value.Equal(dec("2.00")) {
		t.Errorf("expected 2.00, got %s", rc.Value)
	}
}

func TestResolveUnitCost_ChildCostChangePropagates(t *testing.T) {
	ingredients := []core.Ingredient{
		simpleIngredient(1, "Farinha", core.UnitKilogram, "2.00"),
		{ID: 2, CompanyID: 1, Name: "Massa", Unit: core.UnitKilogram, IsComposite: true},
	}
	components := []core.IngredientComponent{
		{ParentID: 2, ChildID: 1, Quantity: dec("0.5")},
	}

	before, err := core.NewCostResolver(ingredients, components).ResolveUnitCost(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ingredients[0].CostPerUnit = dec("4.00")
	after, err := core.NewCostResolver(ingredients, components).ResolveUnitCost(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !before.Value.Equal(dec("1.00")) || !after.Value.Equal(dec("2.00")) {
		t.Errorf("expected 1.00 then 2.00, got %s then %s", before.Value, after.Value)
	}
}

func TestResolveUnitCost_EmptyCompositeIsZero(t *testing.T) {
	r := core.NewCostResolver([]core.Ingredient{
		{ID: 1, CompanyID: 1, Name: "Mix vazio", Unit: core.UnitKilogram, IsComposite: true},
	}, nil)

	rc, err := r.ResolveUnitCost(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rc.Value.IsZero() {
		t.Errorf("expected zero, got %s", rc.Value)
	}
	if !rc.Defined {
		t.Errorf("empty composite should still be defined")
	}
}

func TestResolveUnitCost_CycleDetected(t *testing.T) {
	// A references B, B references A: must fail, never hang.
	ingredients := []core.Ingredient{
		{ID: 1, CompanyID: 1, Name: "A", Unit: core.UnitKilogram, IsComposite: true},
		{ID: 2, CompanyID: 1, Name: "B", Unit: core.UnitKilogram, IsComposite: true},
	}
	components := []core.IngredientComponent{
		{ParentID: 1, ChildID: 2, Quantity: dec("1")},
		{ParentID: 2, ChildID: 1, Quantity: dec("1")},
	}

	r := core.NewCostResolver(ingredients, components)
	_, err := r.ResolveUnitCost(1)

	var cycleErr *core.CyclicCompositionError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected CyclicCompositionError, got %v", err)
	}
	if len(cycleErr.Path) < 2 {
		t.Errorf("expected cycle path, got %v", cycleErr.Path)
	}

	// The error is stable on re-resolution.
	if _, err := r.ResolveUnitCost(1); !errors.As(err, &cycleErr) {
		t.Errorf("expected error again on second resolution, got %v", err)
	}
}

func TestResolveUnitCost_SelfReference(t *testing.T) {
	ingredients := []core.Ingredient{
		{ID: 1, CompanyID: 1, Name: "Recursivo", Unit: core.UnitKilogram, IsComposite: true},
	}
	components := []core.IngredientComponent{
		{ParentID: 1, ChildID: 1, Quantity: dec("1")},
	}

	_, err := core.NewCostResolver(ingredients, components).ResolveUnitCost(1)
	var cycleErr *core.CyclicCompositionError
	if !errors.As(err, &cycleErr) {
		t.Fatalf("expected CyclicCompositionError, got %v", err)
	}
}

func TestResolveUnitCost_UnknownChild(t *testing.T) {
	ingredients := []core.Ingredient{
		{ID: 1, CompanyID: 1, Name: "Mistura", Unit: core.UnitKilogram, IsComposite: true},
	}
	components := []core.IngredientComponent{
		{ParentID: 1, ChildID: 99, Quantity: dec("1")},
	}

	_, err := core.NewCostResolver(ingredients, components).ResolveUnitCost(1)
	var unknownErr *core.UnknownIngredientError
	if !errors.As(err, &unknownErr) {
		t.Fatalf("expected UnknownIngredientError, got %v", err)
	}
	if unknownErr.ID != 99 {
		t.Errorf("expected ID 99, got %d", unknownErr.ID)
	}
}

func TestResolveUnitCost_UnpricedChildPropagatesUndefined(t *testing.T) {
	ingredients := []core.Ingredient{
		{ID: 1, CompanyID: 1, Name: "Sem preço", Unit: core.UnitKilogram}, // CostDefined false
		simpleIngredient(2, "Açúcar", core.UnitKilogram, "3.00"),
		{ID: 3, CompanyID: 1, Name: "Calda", Unit: core.UnitLiter, IsComposite: true},
	}
	components := []core.IngredientComponent{
		{ParentID: 3, ChildID: 1, Quantity: dec("0.2")},
		{ParentID: 3, ChildID: 2, Quantity: dec("0.3")},
	}

	rc, err := core.NewCostResolver(ingredients, components).ResolveUnitCost(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rc.Defined {
		t.Errorf("composite over an unpriced child must not claim a defined cost")
	}
	if !rc.Value.Equal(dec("0.9")) {
		t.Errorf("expected partial total 0.9, got %s", rc.Value)
	}
}

func TestResolveAll_BadCompositeDoesNotAbortBatch(t *testing.T) {
	ingredients := []core.Ingredient{
		simpleIngredient(1, "Sal", core.UnitKilogram, "1.50"),
		{ID: 2, CompanyID: 1, Name: "Cíclico", Unit: core.UnitKilogram, IsComposite: true},
	}
	components := []core.IngredientComponent{
		{ParentID: 2, ChildID: 2, Quantity: dec("1")},
	}

	costs, errs := core.NewCostResolver(ingredients, components).ResolveAll()
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errs))
	}
	if _, ok := costs[1]; !ok {
		t.Errorf("healthy ingredient must still resolve")
	}
	if _, ok := errs[2]; !ok {
		t.Errorf("expected error for cyclic ingredient 2")
	}
}

func TestResolveUnitCost_MultiLevelComposition(t *testing.T) {
	// Writes should only produce one level, but the resolver handles deeper
	// nesting rather than producing wrong numbers.
	ingredients := []core.Ingredient{
		simpleIngredient(1, "Tomate", core.UnitKilogram, "4.00"),
		{ID: 2, CompanyID: 1, Name: "Molho base", Unit: core.UnitLiter, IsComposite: true},
		{ID: 3, CompanyID: 1, Name: "Molho da casa", Unit: core.UnitLiter, IsComposite: true},
	}
	components := []core.IngredientComponent{
		{ParentID: 2, ChildID: 1, Quantity: dec("1.5")},
		{ParentID: 3, ChildID: 2, Quantity: dec("0.5")},
	}

	rc, err := core.NewCostResolver(ingredients, components).ResolveUnitCost(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rc.Value.Equal(dec("3.00")) {
		t.Errorf("expected 3.00, got %s", rc.Value)
	}
}
