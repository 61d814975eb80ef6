package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breadroute/breadroute/internal/shared"
)

type memoryLotStore struct {
	lots []StockLot
	// lots a concurrent transaction already drained; DeductLot misses these.
	raced map[int64]bool
}

func (m *memoryLotStore) FactoryLotsForUpdate(_ context.Context, productID int64) ([]StockLot, error) {
	var out []StockLot
	for _, l := range m.lots {
		if l.ProductID == productID && l.Status == LotActive && l.Quantity > 0 {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memoryLotStore) DeductLot(_ context.Context, lotID int64, qty int) (bool, error) {
	if m.raced[lotID] {
		return false, nil
	}
	for i := range m.lots {
		if m.lots[i].ID == lotID && m.lots[i].Quantity >= qty {
			m.lots[i].Quantity -= qty
			if m.lots[i].Quantity == 0 {
				m.lots[i].Status = LotDepleted
			}
			return true, nil
		}
	}
	return false, nil
}

func day(d int) time.Time {
	return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC)
}

func TestDeductFIFOTakesFromOldestLot(t *testing.T) {
	store := &memoryLotStore{lots: []StockLot{
		{ID: 2, ProductID: 1, Quantity: 30, Status: LotActive, ManufacturingDate: day(1)},
		{ID: 3, ProductID: 1, Quantity: 40, Status: LotActive, ManufacturingDate: day(2)},
		{ID: 4, ProductID: 1, Quantity: 50, Status: LotActive, ManufacturingDate: day(3)},
	}}

	require.NoError(t, DeductFIFO(context.Background(), store, 1, 25))

	assert.Equal(t, 5, store.lots[0].Quantity)
	assert.Equal(t, 40, store.lots[1].Quantity, "newer lots untouched")
	assert.Equal(t, 50, store.lots[2].Quantity)
}

func TestDeductFIFOSkipsLotsTooSmallToCover(t *testing.T) {
	// The oldest lot holds 3 and stays on the shelf; the draw of 10 comes
	// entirely out of the next lot.
	store := &memoryLotStore{lots: []StockLot{
		{ID: 2, ProductID: 1, Quantity: 3, Status: LotActive, ManufacturingDate: day(1)},
		{ID: 3, ProductID: 1, Quantity: 50, Status: LotActive, ManufacturingDate: day(2)},
	}}

	require.NoError(t, DeductFIFO(context.Background(), store, 1, 10))

	assert.Equal(t, 3, store.lots[0].Quantity, "undersized lot is never split")
	assert.Equal(t, 40, store.lots[1].Quantity)
}

func TestDeductFIFONeverCombinesLots(t *testing.T) {
	// Two lots of 5 hold 10 in total, but no single lot covers 8.
	store := &memoryLotStore{lots: []StockLot{
		{ID: 2, ProductID: 1, Quantity: 5, Status: LotActive, ManufacturingDate: day(1)},
		{ID: 3, ProductID: 1, Quantity: 5, Status: LotActive, ManufacturingDate: day(2)},
	}}

	err := DeductFIFO(context.Background(), store, 1, 8)
	require.ErrorIs(t, err, shared.ErrInsufficientStock)

	assert.Equal(t, 5, store.lots[0].Quantity)
	assert.Equal(t, 5, store.lots[1].Quantity)
}

func TestDeductFIFOInsufficientStock(t *testing.T) {
	store := &memoryLotStore{lots: []StockLot{
		{ID: 2, ProductID: 1, Quantity: 30, Status: LotActive, ManufacturingDate: day(1)},
	}}

	err := DeductFIFO(context.Background(), store, 1, 45)
	require.Error(t, err)
	require.ErrorIs(t, err, shared.ErrInsufficientStock)

	var stockErr *shared.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, int64(1), stockErr.ProductID)
	assert.Equal(t, 45, stockErr.Required)
}

func TestDeductFIFOConcurrentDrainSurfacesAsInsufficient(t *testing.T) {
	store := &memoryLotStore{
		lots: []StockLot{
			{ID: 2, ProductID: 1, Quantity: 30, Status: LotActive, ManufacturingDate: day(1)},
		},
		raced: map[int64]bool{2: true},
	}

	err := DeductFIFO(context.Background(), store, 1, 10)
	require.ErrorIs(t, err, shared.ErrInsufficientStock)

	var stockErr *shared.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, int64(2), stockErr.LotID)
}

func TestDeductFIFOZeroQtyIsNoop(t *testing.T) {
	store := &memoryLotStore{lots: []StockLot{
		{ID: 2, ProductID: 1, Quantity: 30, Status: LotActive, ManufacturingDate: day(1)},
	}}

	require.NoError(t, DeductFIFO(context.Background(), store, 1, 0))
	assert.Equal(t, 30, store.lots[0].Quantity)
}

func TestDeductAllStopsAtFirstFailure(t *testing.T) {
	store := &memoryLotStore{lots: []StockLot{
		{ID: 2, ProductID: 1, Quantity: 30, Status: LotActive, ManufacturingDate: day(1)},
		{ID: 3, ProductID: 2, Quantity: 5, Status: LotActive, ManufacturingDate: day(1)},
		{ID: 4, ProductID: 3, Quantity: 100, Status: LotActive, ManufacturingDate: day(1)},
	}}

	err := DeductAll(context.Background(), store, []Deduction{
		{ProductID: 1, Qty: 10},
		{ProductID: 2, Qty: 6},
		{ProductID: 3, Qty: 10},
	})
	require.ErrorIs(t, err, shared.ErrInsufficientStock)

	// The third deduction never ran; the enclosing transaction rolls back
	// the first one.
	assert.Equal(t, 100, store.lots[2].Quantity)
}
