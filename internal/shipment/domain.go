// Package shipment orchestrates the transactional creation of multi-stop
// shipments and owns the shipment status machine with its order cascades.
package shipment

import (
	"time"

	"github.com/breadroute/breadroute/internal/orders"
	"github.com/breadroute/breadroute/internal/shared"
)

// Status is the coarse shipment state, parallel to the per-order machine.
type Status string

const (
	StatusPlanning  Status = "PLANNING"
	StatusLoading   Status = "LOADING"
	StatusInTransit Status = "IN_TRANSIT"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// ParseStatus validates an API status token.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusPlanning, StatusLoading, StatusInTransit, StatusCompleted, StatusCancelled:
		return Status(raw), nil
	default:
		return "", shared.Validationf("unknown shipment status %q", raw)
	}
}

// transitions is the authoritative table. CANCELLED branches off any
// non-terminal state.
var transitions = map[Status][]Status{
	StatusPlanning:  {StatusLoading, StatusCancelled},
	StatusLoading:   {StatusInTransit, StatusCancelled},
	StatusInTransit: {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

// CanTransitionTo reports whether the move is allowed.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// OrderCascade is the order status every order of the shipment moves to when
// the shipment itself transitions, or empty when orders are untouched. The
// COMPLETED cascade marks orders delivered without the per-order inventory
// deduction; dispatch closes the paperwork, stock was consumed per order.
func (s Status) OrderCascade() orders.OrderStatus {
	switch s {
	case StatusInTransit:
		return orders.OrderLoaded
	case StatusCompleted:
		return orders.OrderDelivered
	default:
		return ""
	}
}

// Shipment is one planned line-haul run with its last-mile assignments.
type Shipment struct {
	ID            int64          `json:"shipment_id"`
	Code          string         `json:"shipment_code"`
	RouteID       int64          `json:"route_id"`
	VehicleID     int64          `json:"vehicle_id"`
	DriverID      int64          `json:"driver_emp_id"`
	SalesID       int64          `json:"sales_emp_id"`
	Status        Status         `json:"status"`
	DepartureTime *time.Time     `json:"departure_time,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	Assignments   []DCAssignment `json:"dc_assignments,omitempty"`
	Orders        []orders.Order `json:"orders,omitempty"`
}

// DCAssignment is the last-mile leg for one distribution center.
type DCAssignment struct {
	ID         int64  `json:"assignment_id"`
	ShipmentID int64  `json:"shipment_id"`
	DCBranchID int64  `json:"dc_branch_id"`
	VehicleID  *int64 `json:"local_vehicle_id,omitempty"`
	DriverID   *int64 `json:"driver_emp_id,omitempty"`
	SalesID    *int64 `json:"sales_emp_id,omitempty"`
}

// CreateRequest is the payload for shipment creation.
type CreateRequest struct {
	RouteID       int64                 `json:"route_id" validate:"required,gt=0"`
	VehicleID     int64                 `json:"main_vehicle_id" validate:"required,gt=0"`
	DriverID      int64                 `json:"main_driver_emp_id" validate:"required,gt=0"`
	SalesID       int64                 `json:"main_sales_emp_id" validate:"required,gt=0"`
	DCAssignments []DCAssignmentRequest `json:"dc_assignments" validate:"omitempty,dive"`
	Orders        []OrderRequest        `json:"orders" validate:"required,min=1,dive"`
}

// DCAssignmentRequest is one DC's requested last-mile leg.
type DCAssignmentRequest struct {
	DCBranchID int64  `json:"dc_branch_id" validate:"required,gt=0"`
	VehicleID  *int64 `json:"local_vehicle_id"`
	DriverID   *int64 `json:"driver_emp_id"`
	SalesID    *int64 `json:"sales_emp_id"`
}

// OrderRequest is one retailer's requested order lines.
type OrderRequest struct {
	CustomerBranchID int64              `json:"customer_branch_id" validate:"required,gt=0"`
	Items            []OrderItemRequest `json:"items" validate:"required,dive"`
}

// OrderItemRequest is one requested product line.
type OrderItemRequest struct {
	ProductID    int64 `json:"product_id" validate:"required,gt=0"`
	RequestedQty int   `json:"requested_qty"`
}

// CreateResult is returned on successful creation.
type CreateResult struct {
	ShipmentID   int64  `json:"shipment_id"`
	ShipmentCode string `json:"shipment_code"`
}
