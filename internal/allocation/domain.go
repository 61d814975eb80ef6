// Package allocation suggests order quantities per branch under a vehicle
// capacity target, trying an external suggestion service first and falling
// back to deterministic formulas.
package allocation

const (
	// DefaultVehicleCapacityM3 is assumed when the caller does not name a
	// vehicle capacity.
	DefaultVehicleCapacityM3 = 12.0
	// TargetCapacityPct is the share of vehicle capacity the plan aims to fill.
	TargetCapacityPct = 0.7
	// ParLevel is the baseline quantity when no demand signal exists.
	ParLevel = 50
	// SafetyBuffer inflates recent demand before subtracting stock on hand.
	SafetyBuffer = 1.1
	// MinFillRatio is the floor share of the target volume per branch; the
	// scaling pass inflates any branch below it.
	MinFillRatio = 0.4
)

// Allocation is a suggested quantity for one branch/product pair.
type Allocation struct {
	BranchID     int64 `json:"branch_id"`
	ProductID    int64 `json:"product_id"`
	SuggestedQty int   `json:"suggested_qty"`
}

// ProductVolume pairs a product with its per-unit volume.
type ProductVolume struct {
	ProductID int64   `json:"product_id"`
	VolumeM3  float64 `json:"volume_m3"`
}

// SalesRecord is trailing-window demand for a branch/product pair.
type SalesRecord struct {
	BranchID  int64
	ProductID int64
	Qty       int64
}

// StockRecord is on-hand quantity for a branch/product pair.
type StockRecord struct {
	BranchID  int64
	ProductID int64
	Qty       int64
}

// SuggestionRequest is the payload sent to the external suggestion service.
type SuggestionRequest struct {
	BranchIDs               []int64         `json:"branch_ids"`
	Products                []ProductVolume `json:"products"`
	TargetVolumePerBranchM3 float64         `json:"target_volume_per_branch_m3"`
}
