package inventory

import (
	"context"

	"github.com/breadroute/breadroute/internal/shared"
)

// LotStore is the slice of a transaction the FIFO deduction needs. The orders
// module implements it on its own transaction so a delivery status change and
// its stock movement commit or roll back together.
type LotStore interface {
	// FactoryLotsForUpdate returns the product's active lots at factory
	// locations, oldest manufacturing date first, locked for update.
	FactoryLotsForUpdate(ctx context.Context, productID int64) ([]StockLot, error)
	// DeductLot decrements a lot only if it still holds at least qty.
	// It reports whether a row was updated.
	DeductLot(ctx context.Context, lotID int64, qty int) (bool, error)
}

// DeductFIFO removes qty of a product from factory stock. The full quantity
// comes out of the single oldest lot that can cover it; lots too small for the
// draw are skipped, never split. When no lot covers the quantity the deduction
// fails even if the lots would cover it combined. The conditional update
// guards against concurrent deductions: a miss means another transaction got
// there first, which surfaces as insufficient stock rather than a silent
// negative quantity.
func DeductFIFO(ctx context.Context, store LotStore, productID int64, qty int) error {
	if qty <= 0 {
		return nil
	}
	lots, err := store.FactoryLotsForUpdate(ctx, productID)
	if err != nil {
		return err
	}

	for _, lot := range lots {
		if lot.Quantity < qty {
			continue
		}
		ok, err := store.DeductLot(ctx, lot.ID, qty)
		if err != nil {
			return err
		}
		if !ok {
			return &shared.InsufficientStockError{ProductID: productID, LotID: lot.ID, Required: qty}
		}
		return nil
	}
	return &shared.InsufficientStockError{ProductID: productID, Required: qty}
}

// DeductAll applies a batch of deductions; the first failure aborts the batch.
func DeductAll(ctx context.Context, store LotStore, deductions []Deduction) error {
	for _, d := range deductions {
		if err := DeductFIFO(ctx, store, d.ProductID, d.Qty); err != nil {
			return err
		}
	}
	return nil
}
