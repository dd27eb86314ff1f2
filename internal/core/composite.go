package core

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// CyclicCompositionError is returned when a composite ingredient references
// itself directly or transitively. The write path is supposed to prevent
// this, but the resolver never trusts stored data enough to recurse
// unboundedly.
type CyclicCompositionError struct {
	// Path is the chain of ingredient IDs that closes the cycle,
	// starting and ending at the same ingredient.
	Path []int
}

func (e *CyclicCompositionError) Error() string {
	parts := make([]string, len(e.Path))
	for i, id := range e.Path {
		parts[i] = strconv.Itoa(id)
	}
	return fmt.Sprintf("cyclic ingredient composition: %s", strings.Join(parts, " -> "))
}

// UnknownIngredientError is returned when a component or recipe line
// references an ingredient that is not in the snapshot.
type UnknownIngredientError struct {
	ID int
}

func (e *UnknownIngredientError) Error() string {
	return fmt.Sprintf("ingredient %d not found in snapshot", e.ID)
}

// ResolvedCost is a unit cost together with whether every cost feeding into
// it was actually priced. A composite built from a never-priced child still
// yields a numeric total, but Defined is false so callers can surface
// "cost unknown" instead of silently treating it as free.
type ResolvedCost struct {
	Value   decimal.Decimal `json:"value"`
	Defined bool            `json:"defined"`
}

// CostResolver resolves the unit cost of any ingredient, expanding composite
// ingredients through their bill of materials. It is built once per snapshot
// and memoizes resolutions; it performs no unit conversion (component
// quantities are already in the child's base unit).
type CostResolver struct {
	ingredients map[int]Ingredient
	components  map[int][]IngredientComponent

	memo  map[int]ResolvedCost
	state map[int]visitState
}

type visitState int8

const (
	unvisited visitState = iota
	resolving
	resolved
)

// NewCostResolver indexes the snapshot's ingredients and components.
func NewCostResolver(ingredients []Ingredient, components []IngredientComponent) *CostResolver {
	r := &CostResolver{
		ingredients: make(map[int]Ingredient, len(ingredients)),
		components:  make(map[int][]IngredientComponent),
		memo:        make(map[int]ResolvedCost),
		state:       make(map[int]visitState),
	}
	for _, ing := range ingredients {
		r.ingredients[ing.ID] = ing
	}
	for _, c := range components {
		r.components[c.ParentID] = append(r.components[c.ParentID], c)
	}
	return r
}

// Ingredient returns the indexed ingredient by ID.
func (r *CostResolver) Ingredient(id int) (Ingredient, bool) {
	ing, ok := r.ingredients[id]
	return ing, ok
}

// ResolveUnitCost returns the cost of one base unit of the ingredient.
// Non-composite ingredients resolve to their stored cost; composites resolve
// to the weighted sum of their components' resolved costs (empty set = 0).
// A cyclic reference fails with CyclicCompositionError instead of recursing.
func (r *CostResolver) ResolveUnitCost(id int) (ResolvedCost, error) {
	return r.resolve(id, nil)
}

func (r *CostResolver) resolve(id int, path []int) (ResolvedCost, error) {
	ing, ok := r.ingredients[id]
	if !ok {
		return ResolvedCost{}, &UnknownIngredientError{ID: id}
	}

	if r.state[id] == resolved {
		return r.memo[id], nil
	}
	if r.state[id] == resolving {
		return ResolvedCost{}, &CyclicCompositionError{Path: append(append([]int{}, path...), id)}
	}

	if !ing.IsComposite {
		rc := ResolvedCost{Value: ing.CostPerUnit, Defined: ing.CostDefined}
		r.memo[id] = rc
		r.state[id] = resolved
		return rc, nil
	}

	r.state[id] = resolving
	path = append(path, id)

	rc := ResolvedCost{Value: decimal.Zero, Defined: true}
	for _, comp := range r.components[id] {
		child, err := r.resolve(comp.ChildID, path)
		if err != nil {
			// Leave the state as resolving only for the erroring branch;
			// this node stays unresolved so later calls re-report the error.
			r.state[id] = unvisited
			return ResolvedCost{}, err
		}
		rc.Value = rc.Value.Add(comp.Quantity.Mul(child.Value))
		if !child.Defined {
			rc.Defined = false
		}
	}

	r.memo[id] = rc
	r.state[id] = resolved
	return rc, nil
}

// ResolveAll resolves every ingredient in the snapshot, collecting per-
// ingredient errors instead of aborting: one malformed composite must not
// take down the whole batch.
func (r *CostResolver) ResolveAll() (map[int]ResolvedCost, map[int]error) {
	costs := make(map[int]ResolvedCost, len(r.ingredients))
	errs := make(map[int]error)
	for id := range r.ingredients {
		rc, err := r.ResolveUnitCost(id)
		if err != nil {
			errs[id] = err
			continue
		}
		costs[id] = rc
	}
	return costs, errs
}
