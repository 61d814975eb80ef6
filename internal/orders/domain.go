// Package orders owns the order read model and the delivery status state
// machine, including the inventory deduction that fires on delivery.
package orders

import (
	"time"

	"github.com/breadroute/breadroute/internal/shared"
)

// OrderStatus is the persisted delivery state of an order.
type OrderStatus string

const (
	OrderPlanned       OrderStatus = "PLANNED"
	OrderLoaded        OrderStatus = "LOADED"
	OrderInTransit     OrderStatus = "IN_TRANSIT"
	OrderDelivered     OrderStatus = "DELIVERED"
	OrderPartialReturn OrderStatus = "PARTIAL_RETURN"
)

// wire tokens accepted by the delivery-status endpoint.
var statusTokens = map[string]OrderStatus{
	"pending":        OrderPlanned,
	"loaded":         OrderLoaded,
	"in_transit":     OrderInTransit,
	"delivered":      OrderDelivered,
	"partial_return": OrderPartialReturn,
}

// ParseDeliveryStatus maps an API token to an order status.
func ParseDeliveryStatus(token string) (OrderStatus, error) {
	s, ok := statusTokens[token]
	if !ok {
		return "", shared.Validationf("unknown delivery status %q", token)
	}
	return s, nil
}

// WireToken is the lowercase form used on the API.
func (s OrderStatus) WireToken() string {
	for token, status := range statusTokens {
		if status == s {
			return token
		}
	}
	return string(s)
}

// transitions is the authoritative table. Orders move forward only;
// PARTIAL_RETURN branches off any non-terminal state.
var transitions = map[OrderStatus][]OrderStatus{
	OrderPlanned:       {OrderLoaded, OrderInTransit, OrderDelivered, OrderPartialReturn},
	OrderLoaded:        {OrderInTransit, OrderDelivered, OrderPartialReturn},
	OrderInTransit:     {OrderDelivered, OrderPartialReturn},
	OrderDelivered:     {},
	OrderPartialReturn: {},
}

// CanTransitionTo reports whether the move is allowed. A same-status update
// is always permitted as a no-op.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s OrderStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// Order is one retailer's order within a shipment.
type Order struct {
	ID               int64       `json:"order_id"`
	Code             string      `json:"code"`
	ShipmentID       int64       `json:"shipment_id"`
	CustomerBranchID int64       `json:"customer_branch_id"`
	BranchName       string      `json:"branch_name,omitempty"`
	Status           OrderStatus `json:"status"`
	CreatedAt        time.Time   `json:"created_at"`
	Items            []OrderItem `json:"items,omitempty"`
}

// OrderItem is one product line. UnitPrice is snapshotted at order creation
// and never recomputed from the live product price. LotID, when set, pins the
// delivery deduction to a specific stock lot.
type OrderItem struct {
	ID           int64   `json:"order_item_id"`
	OrderID      int64   `json:"order_id"`
	ProductID    int64   `json:"product_id"`
	ProductName  string  `json:"product_name,omitempty"`
	RequestedQty int     `json:"requested_qty"`
	FulfilledQty int     `json:"fulfilled_qty"`
	UnitPrice    float64 `json:"unit_price"`
	LotID        *int64  `json:"lot_id,omitempty"`
}

// ListFilter narrows order listings.
type ListFilter struct {
	ShipmentID int64
	BranchID   int64
	Status     OrderStatus
	Limit      int
}
