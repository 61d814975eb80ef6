package masterdata

import (
	"github.com/breadroute/breadroute/internal/packing"
)

// BranchCategory is the closed set of branch kinds in the network.
type BranchCategory string

const (
	CategoryFactory            BranchCategory = "FACTORY"
	CategoryDistributionCenter BranchCategory = "DC"
	CategoryRetailer           BranchCategory = "RETAILER"
)

// IsValid reports whether the category is one of the known kinds.
func (c BranchCategory) IsValid() bool {
	switch c {
	case CategoryFactory, CategoryDistributionCenter, CategoryRetailer:
		return true
	default:
		return false
	}
}

// Product is a sellable item. Dimensions are optional; zero means unrecorded.
type Product struct {
	ID        int64   `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	WidthCm   float64 `json:"width_cm,omitempty"`
	LengthCm  float64 `json:"length_cm,omitempty"`
	HeightCm  float64 `json:"height_cm,omitempty"`
	IsActive  bool    `json:"is_active"`
}

// VolumeM3 is the per-unit volume used by capacity and allocation math.
func (p Product) VolumeM3() float64 {
	return packing.UnitVolumeM3(p.WidthCm, p.LengthCm, p.HeightCm)
}

// Branch is a node in the distribution network. A retailer's parent is its
// supplying DC; a DC reaches the factory through route membership.
type Branch struct {
	ID             int64          `json:"branch_id"`
	Name           string         `json:"name"`
	Category       BranchCategory `json:"category"`
	Latitude       *float64       `json:"latitude,omitempty"`
	Longitude      *float64       `json:"longitude,omitempty"`
	ParentBranchID *int64         `json:"parent_branch_id,omitempty"`
}

// Route is an ordered sequence of stops, read-only for planning.
type Route struct {
	ID   int64  `json:"route_id"`
	Name string `json:"name"`
}

// RouteStop is one stop on a route.
type RouteStop struct {
	RouteID       int64  `json:"route_id"`
	BranchID      int64  `json:"branch_id"`
	BranchName    string `json:"branch_name"`
	StopSequence  int    `json:"stop_sequence"`
	EstTravelMins int    `json:"est_travel_mins"`
}

// Employee is a driver or salesperson assignable to a shipment leg.
type Employee struct {
	ID        int64  `json:"employee_id"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	JobTitle  string `json:"job_title"`
}

// BranchInsight summarises recent demand for a branch/product pair.
type BranchInsight struct {
	BranchID  int64   `json:"branch_id"`
	ProductID int64   `json:"product_id"`
	Sales7d   float64 `json:"sales_7d"`
}

// BoxTemplate re-exports the packing container type for persistence.
type BoxTemplate = packing.BoxTemplate
