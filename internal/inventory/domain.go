// Package inventory tracks stock lots at factory locations and performs the
// FIFO deduction that accompanies a delivered order.
package inventory

import "time"

// LotStatus is the lifecycle state of a stock lot.
type LotStatus string

const (
	LotActive   LotStatus = "ACTIVE"
	LotDepleted LotStatus = "DEPLETED"
	LotExpired  LotStatus = "EXPIRED"
)

// StockLot is a batch of product manufactured on one date at one location.
type StockLot struct {
	ID                int64     `json:"lot_id"`
	ProductID         int64     `json:"product_id"`
	LocationID        int64     `json:"location_id"`
	Quantity          int       `json:"quantity"`
	Status            LotStatus `json:"status"`
	ManufacturingDate time.Time `json:"manufacturing_date"`
}

// StockSummary aggregates on-hand quantity per product and location.
type StockSummary struct {
	ProductID   int64  `json:"product_id"`
	ProductName string `json:"product_name"`
	LocationID  int64  `json:"location_id"`
	TotalQty    int64  `json:"total_qty"`
}

// Deduction is a quantity of product to remove from factory stock.
type Deduction struct {
	ProductID int64
	Qty       int
}
