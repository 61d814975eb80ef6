package allocation

import (
	"context"
	"log/slog"
	"math"
	"sort"
)

// RepositoryPort provides the demand and stock reads behind the formulas.
type RepositoryPort interface {
	// ActiveProducts returns active products with their unit volumes,
	// limited to productIDs when non-empty.
	ActiveProducts(ctx context.Context, productIDs []int64) ([]ProductVolume, error)
	// SalesLast7Days aggregates requested quantities per branch/product over
	// the trailing week.
	SalesLast7Days(ctx context.Context, branchIDs, productIDs []int64) ([]SalesRecord, error)
	// StockOnHand aggregates active lot quantity per branch/product.
	StockOnHand(ctx context.Context, branchIDs, productIDs []int64) ([]StockRecord, error)
}

// Suggester is the external allocation suggestion source. Errors are soft:
// the engine falls through to the formula strategies.
type Suggester interface {
	Suggest(ctx context.Context, req SuggestionRequest) ([]Allocation, error)
}

// Engine produces suggested order quantities per branch.
type Engine struct {
	logger    *slog.Logger
	repo      RepositoryPort
	suggester Suggester
}

// NewEngine builds an Engine. suggester may be nil, which skips the external
// strategy entirely.
func NewEngine(logger *slog.Logger, repo RepositoryPort, suggester Suggester) *Engine {
	return &Engine{logger: logger, repo: repo, suggester: suggester}
}

type pairKey struct {
	branchID  int64
	productID int64
}

// Calculate runs the strategy chain and the post-scaling pass. It returns an
// error only when the data store itself fails; absence of demand data
// degrades to baseline quantities instead.
func (e *Engine) Calculate(ctx context.Context, branchIDs, productIDs []int64, vehicleCapacityM3 float64) ([]Allocation, error) {
	if vehicleCapacityM3 <= 0 {
		vehicleCapacityM3 = DefaultVehicleCapacityM3
	}
	targetVolume := vehicleCapacityM3 * TargetCapacityPct

	products, err := e.repo.ActiveProducts(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	volumes := make(map[int64]float64, len(products))
	for _, p := range products {
		volumes[p.ProductID] = p.VolumeM3
	}

	allocations := e.suggested(ctx, branchIDs, products, volumes, targetVolume)
	if len(allocations) == 0 {
		allocations, err = e.salesVelocity(ctx, branchIDs, productIDs, volumes)
		if err != nil {
			return nil, err
		}
	}
	if len(allocations) == 0 {
		allocations = e.volumeFill(branchIDs, products, targetVolume)
	}

	allocations = scaleToTarget(allocations, volumes, targetVolume)

	sort.Slice(allocations, func(i, j int) bool {
		if allocations[i].BranchID != allocations[j].BranchID {
			return allocations[i].BranchID < allocations[j].BranchID
		}
		return allocations[i].ProductID < allocations[j].ProductID
	})
	return allocations, nil
}

// suggested asks the external service and keeps only entries that reference a
// requested branch, a known product, and a positive quantity.
func (e *Engine) suggested(ctx context.Context, branchIDs []int64, products []ProductVolume, volumes map[int64]float64, targetVolume float64) []Allocation {
	if e.suggester == nil {
		return nil
	}
	raw, err := e.suggester.Suggest(ctx, SuggestionRequest{
		BranchIDs:               branchIDs,
		Products:                products,
		TargetVolumePerBranchM3: targetVolume,
	})
	if err != nil {
		e.logger.Warn("allocation suggestion unavailable, using formula", slog.Any("error", err))
		return nil
	}

	branchSet := make(map[int64]bool, len(branchIDs))
	for _, id := range branchIDs {
		branchSet[id] = true
	}
	var out []Allocation
	for _, a := range raw {
		if !branchSet[a.BranchID] {
			continue
		}
		if _, known := volumes[a.ProductID]; !known {
			continue
		}
		if a.SuggestedQty <= 0 {
			continue
		}
		out = append(out, a)
	}
	return out
}

// salesVelocity applies the demand formula: recent sales times the safety
// buffer minus stock on hand, with the PAR level as baseline where history is
// missing. Explicitly requested products always get at least a baseline row.
func (e *Engine) salesVelocity(ctx context.Context, branchIDs, productIDs []int64, volumes map[int64]float64) ([]Allocation, error) {
	sales, err := e.repo.SalesLast7Days(ctx, branchIDs, productIDs)
	if err != nil {
		return nil, err
	}
	stocks, err := e.repo.StockOnHand(ctx, branchIDs, productIDs)
	if err != nil {
		return nil, err
	}

	salesByPair := make(map[pairKey]int64, len(sales))
	for _, s := range sales {
		salesByPair[pairKey{s.BranchID, s.ProductID}] += s.Qty
	}
	stockByPair := make(map[pairKey]int64, len(stocks))
	for _, s := range stocks {
		stockByPair[pairKey{s.BranchID, s.ProductID}] += s.Qty
	}

	var out []Allocation
	for _, branchID := range branchIDs {
		seen := make(map[int64]bool)

		for key, sold := range salesByPair {
			if key.branchID != branchID {
				continue
			}
			qty := int(math.Floor(float64(sold)*SafetyBuffer)) - int(stockByPair[key])
			if qty < 0 {
				qty = 0
			}
			out = append(out, Allocation{BranchID: branchID, ProductID: key.productID, SuggestedQty: qty})
			seen[key.productID] = true
		}

		for key, stock := range stockByPair {
			if key.branchID != branchID || seen[key.productID] {
				continue
			}
			qty := ParLevel - int(stock)
			if qty < 0 {
				qty = 0
			}
			out = append(out, Allocation{BranchID: branchID, ProductID: key.productID, SuggestedQty: qty})
			seen[key.productID] = true
		}

		// No history at all: requested products still get the PAR baseline.
		for _, productID := range productIDs {
			if seen[productID] {
				continue
			}
			if _, known := volumes[productID]; !known {
				continue
			}
			out = append(out, Allocation{BranchID: branchID, ProductID: productID, SuggestedQty: ParLevel})
		}
	}
	return out, nil
}

// volumeFill spreads the target volume evenly across the active catalogue,
// at least one unit per product.
func (e *Engine) volumeFill(branchIDs []int64, products []ProductVolume, targetVolume float64) []Allocation {
	if len(products) == 0 {
		return nil
	}
	share := targetVolume / float64(len(products))

	var out []Allocation
	for _, branchID := range branchIDs {
		for _, p := range products {
			vol := p.VolumeM3
			if vol <= 0 {
				vol = 1
			}
			qty := int(math.Round(share / vol))
			if qty < 1 {
				qty = 1
			}
			out = append(out, Allocation{BranchID: branchID, ProductID: p.ProductID, SuggestedQty: qty})
		}
	}
	return out
}

// scaleToTarget inflates under-filled branches so their total volume reaches
// the target. Branches already at or above the minimum fill ratio, and
// branches with zero allocated volume, are left alone.
func scaleToTarget(allocations []Allocation, volumes map[int64]float64, targetVolume float64) []Allocation {
	totals := make(map[int64]float64)
	for _, a := range allocations {
		totals[a.BranchID] += float64(a.SuggestedQty) * volumes[a.ProductID]
	}

	factors := make(map[int64]float64)
	for branchID, total := range totals {
		if total > 0 && total < targetVolume*MinFillRatio {
			factors[branchID] = targetVolume / total
		}
	}
	if len(factors) == 0 {
		return allocations
	}

	out := make([]Allocation, len(allocations))
	for i, a := range allocations {
		out[i] = a
		if f, ok := factors[a.BranchID]; ok {
			scaled := int(math.Round(float64(a.SuggestedQty) * f))
			if scaled < 0 {
				scaled = 0
			}
			out[i].SuggestedQty = scaled
		}
	}
	return out
}
