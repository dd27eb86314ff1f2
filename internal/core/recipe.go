package core

import (
	"github.com/shopspring/decimal"
)

var thousand = decimal.NewFromInt(1000)

// ConvertQuantity converts a display quantity between units using the fixed
// conversion table: g<->kg and ml<->l scale by 1000, every other pair passes
// through unchanged (count units have no conversion).
func ConvertQuantity(qty decimal.Decimal, from, to Unit) decimal.Decimal {
	if from == to {
		return qty
	}
	switch {
	case from == UnitGram && to == UnitKilogram:
		return qty.Div(thousand)
	case from == UnitKilogram && to == UnitGram:
		return qty.Mul(thousand)
	case from == UnitMilliliter && to == UnitLiter:
		return qty.Div(thousand)
	case from == UnitLiter && to == UnitMilliliter:
		return qty.Mul(thousand)
	}
	return qty
}

// RecipeCost is a product's aggregated cost of goods sold. Undefined is true
// when at least one line's ingredient was never priced — the numeric Total
// then underestimates the real cost and callers must say "cost unknown"
// rather than trust it.
type RecipeCost struct {
	Total     decimal.Decimal `json:"total"`
	Undefined bool            `json:"undefined"`
	// UndefinedIngredients lists the ingredient IDs whose cost is missing.
	UndefinedIngredients []int `json:"undefined_ingredients,omitempty"`
}

// ComputeCMV sums a product's recipe-line costs into its CMV. Each line's
// display quantity is converted to the ingredient's base unit before being
// multiplied by the resolved unit cost. Negative resolved costs contribute
// zero. Fails only on structural problems (unknown ingredient, cyclic
// composite); a missing price is reported through the Undefined flag.
func ComputeCMV(lines []RecipeLine, resolver *CostResolver) (RecipeCost, error) {
	cost := RecipeCost{Total: decimal.Zero}
	for _, line := range lines {
		ing, ok := resolver.Ingredient(line.IngredientID)
		if !ok {
			return RecipeCost{}, &UnknownIngredientError{ID: line.IngredientID}
		}

		unitCost, err := resolver.ResolveUnitCost(line.IngredientID)
		if err != nil {
			return RecipeCost{}, err
		}
		if !unitCost.Defined {
			cost.Undefined = true
			cost.UndefinedIngredients = append(cost.UndefinedIngredients, line.IngredientID)
		}

		baseQty := ConvertQuantity(line.Quantity, line.Unit, ing.Unit)
		if unitCost.Value.IsNegative() {
			continue
		}
		cost.Total = cost.Total.Add(baseQty.Mul(unitCost.Value))
	}
	return cost, nil
}

// ComputeComboCMV aggregates a combo's cost as the quantity-weighted sum of
// its constituent products' CMVs. A child with unknown cost marks the combo
// unknown too.
func ComputeComboCMV(items []ComboItem, productCMVs map[int]RecipeCost) RecipeCost {
	cost := RecipeCost{Total: decimal.Zero}
	for _, it := range items {
		child, ok := productCMVs[it.ProductID]
		if !ok {
			cost.Undefined = true
			continue
		}
		cost.Total = cost.Total.Add(child.Total.Mul(it.Quantity))
		if child.Undefined {
			cost.Undefined = true
			cost.UndefinedIngredients = append(cost.UndefinedIngredients, child.UndefinedIngredients...)
		}
	}
	return cost
}

// ComboFullPrice sums the constituent products' standalone sale prices.
// Used only to display the discount a combo gives; never used as a cost.
func ComboFullPrice(items []ComboItem, products map[int]Product) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		p, ok := products[it.ProductID]
		if !ok {
			continue
		}
		total = total.Add(p.SalePrice.Mul(it.Quantity))
	}
	return total
}
