// Package returns handles return processing for delivered orders.
package returns

import (
	"time"

	"github.com/breadroute/breadroute/internal/shared"
)

// Status is the lifecycle state of a return.
type Status string

const (
	StatusRequested Status = "REQUESTED"
	StatusApproved  Status = "APPROVED"
	StatusReceived  Status = "RECEIVED"
	StatusRefunded  Status = "REFUNDED"
)

// ParseStatus validates an API status token; an empty token defaults to
// REQUESTED.
func ParseStatus(raw string) (Status, error) {
	if raw == "" {
		return StatusRequested, nil
	}
	switch Status(raw) {
	case StatusRequested, StatusApproved, StatusReceived, StatusRefunded:
		return Status(raw), nil
	default:
		return "", shared.Validationf("unknown return status %q", raw)
	}
}

// Return is a request to send goods back against an existing order.
type Return struct {
	ID         int64        `json:"return_id"`
	OrderID    int64        `json:"order_id"`
	ReturnDate time.Time    `json:"return_date"`
	Reason     string       `json:"reason,omitempty"`
	Status     Status       `json:"status"`
	BranchName string       `json:"branch_name,omitempty"`
	RouteName  string       `json:"route_name,omitempty"`
	TotalQty   int64        `json:"total_qty"`
	Items      []ReturnItem `json:"items,omitempty"`
}

// ReturnItem is one returned product line.
type ReturnItem struct {
	ProductID     int64  `json:"product_id"`
	ProductName   string `json:"product_name,omitempty"`
	Qty           int    `json:"qty"`
	ConditionNote string `json:"condition_note,omitempty"`
}

// ListFilter narrows return listings. When neither Days nor the From/To pair
// is set, listings default to the trailing week.
type ListFilter struct {
	OrderID int64
	Days    int
	From    time.Time
	To      time.Time
}

// CreateRequest is the payload for return creation.
type CreateRequest struct {
	OrderID    int64               `json:"original_order_id" validate:"required,gt=0"`
	ReturnDate *time.Time          `json:"return_date"`
	Reason     string              `json:"reason"`
	Status     string              `json:"status"`
	Items      []CreateItemRequest `json:"items" validate:"required,min=1,dive"`
}

// CreateItemRequest is one requested return line.
type CreateItemRequest struct {
	ProductID     int64  `json:"product_id" validate:"required,gt=0"`
	Qty           int    `json:"qty"`
	ConditionNote string `json:"condition_note"`
}
