package orders

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/breadroute/breadroute/internal/inventory"
	"github.com/breadroute/breadroute/internal/shared"
)

// memoryRepo implements RepositoryPort and TxRepository over in-memory state.
// WithTx snapshots state and restores it when the callback fails, mirroring
// the rollback behavior of the real repository.
type memoryRepo struct {
	orders map[int64]*Order
	items  map[int64][]OrderItem
	lots   []inventory.StockLot
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		orders: make(map[int64]*Order),
		items:  make(map[int64][]OrderItem),
	}
}

func (m *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	snapOrders := make(map[int64]*Order, len(m.orders))
	for id, o := range m.orders {
		cp := *o
		snapOrders[id] = &cp
	}
	snapLots := make([]inventory.StockLot, len(m.lots))
	copy(snapLots, m.lots)

	if err := fn(ctx, m); err != nil {
		m.orders = snapOrders
		m.lots = snapLots
		return err
	}
	return nil
}

func (m *memoryRepo) ListOrders(_ context.Context, _ ListFilter) ([]Order, error) {
	var out []Order
	for _, o := range m.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (m *memoryRepo) GetOrder(_ context.Context, orderID int64) (*Order, error) {
	o, ok := m.orders[orderID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *o
	cp.Items = m.items[orderID]
	return &cp, nil
}

func (m *memoryRepo) GetOrderForUpdate(_ context.Context, orderID int64) (*Order, error) {
	o, ok := m.orders[orderID]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memoryRepo) ListItems(_ context.Context, orderID int64) ([]OrderItem, error) {
	return m.items[orderID], nil
}

func (m *memoryRepo) UpdateStatus(_ context.Context, orderID int64, status OrderStatus) error {
	m.orders[orderID].Status = status
	return nil
}

func (m *memoryRepo) GetLotForUpdate(_ context.Context, lotID int64) (*inventory.StockLot, error) {
	for i := range m.lots {
		if m.lots[i].ID == lotID {
			cp := m.lots[i]
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *memoryRepo) FactoryLotsForUpdate(_ context.Context, productID int64) ([]inventory.StockLot, error) {
	var out []inventory.StockLot
	for _, l := range m.lots {
		if l.ProductID == productID && l.Status == inventory.LotActive && l.Quantity > 0 {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memoryRepo) DeductLot(_ context.Context, lotID int64, qty int) (bool, error) {
	for i := range m.lots {
		if m.lots[i].ID == lotID && m.lots[i].Quantity >= qty {
			m.lots[i].Quantity -= qty
			if m.lots[i].Quantity == 0 {
				m.lots[i].Status = inventory.LotDepleted
			}
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryRepo) lotQty(lotID int64) int {
	for _, l := range m.lots {
		if l.ID == lotID {
			return l.Quantity
		}
	}
	return -1
}

func testService(repo RepositoryPort) *Service {
	return NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), repo)
}

func seedOrder(repo *memoryRepo, status OrderStatus, items ...OrderItem) {
	repo.orders[1] = &Order{ID: 1, Code: "ORD-20260301-AB12CD", ShipmentID: 7, CustomerBranchID: 30, Status: status, CreatedAt: time.Now()}
	repo.items[1] = items
}

func TestUpdateDeliveryStatusUnknownToken(t *testing.T) {
	svc := testService(newMemoryRepo())

	_, err := svc.UpdateDeliveryStatus(context.Background(), 1, "teleported")
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestUpdateDeliveryStatusOrderNotFound(t *testing.T) {
	svc := testService(newMemoryRepo())

	_, err := svc.UpdateDeliveryStatus(context.Background(), 99, "loaded")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdateDeliveryStatusRejectsBackwardMove(t *testing.T) {
	repo := newMemoryRepo()
	seedOrder(repo, OrderDelivered)
	svc := testService(repo)

	_, err := svc.UpdateDeliveryStatus(context.Background(), 1, "loaded")
	require.ErrorIs(t, err, shared.ErrValidation)
	assert.Equal(t, OrderDelivered, repo.orders[1].Status)
}

func TestDeliveredDeductsFIFO(t *testing.T) {
	repo := newMemoryRepo()
	seedOrder(repo, OrderInTransit, OrderItem{ProductID: 5, RequestedQty: 40, UnitPrice: 12.5})
	repo.lots = []inventory.StockLot{
		{ID: 1, ProductID: 5, Quantity: 25, Status: inventory.LotActive, ManufacturingDate: day(1)},
		{ID: 2, ProductID: 5, Quantity: 60, Status: inventory.LotActive, ManufacturingDate: day(2)},
	}
	svc := testService(repo)

	status, err := svc.UpdateDeliveryStatus(context.Background(), 1, "delivered")
	require.NoError(t, err)
	assert.Equal(t, OrderDelivered, status)
	assert.Equal(t, OrderDelivered, repo.orders[1].Status)

	// The oldest lot cannot cover 40 on its own, so it stays intact and the
	// full quantity comes from the next lot.
	assert.Equal(t, 25, repo.lotQty(1))
	assert.Equal(t, 20, repo.lotQty(2))
}

func TestDeliveredPinnedLotDeductsExactLot(t *testing.T) {
	lotID := int64(2)
	repo := newMemoryRepo()
	seedOrder(repo, OrderLoaded, OrderItem{ProductID: 5, RequestedQty: 10, LotID: &lotID})
	repo.lots = []inventory.StockLot{
		{ID: 1, ProductID: 5, Quantity: 50, Status: inventory.LotActive, ManufacturingDate: day(1)},
		{ID: 2, ProductID: 5, Quantity: 50, Status: inventory.LotActive, ManufacturingDate: day(2)},
	}
	svc := testService(repo)

	_, err := svc.UpdateDeliveryStatus(context.Background(), 1, "delivered")
	require.NoError(t, err)

	assert.Equal(t, 50, repo.lotQty(1), "older lot untouched when item pins a lot")
	assert.Equal(t, 40, repo.lotQty(2))
}

func TestDeliveredInsufficientStockRollsBackEverything(t *testing.T) {
	repo := newMemoryRepo()
	seedOrder(repo, OrderInTransit,
		OrderItem{ProductID: 5, RequestedQty: 20},
		OrderItem{ProductID: 6, RequestedQty: 99},
	)
	repo.lots = []inventory.StockLot{
		{ID: 1, ProductID: 5, Quantity: 20, Status: inventory.LotActive, ManufacturingDate: day(1)},
		{ID: 2, ProductID: 6, Quantity: 10, Status: inventory.LotActive, ManufacturingDate: day(1)},
	}
	svc := testService(repo)

	_, err := svc.UpdateDeliveryStatus(context.Background(), 1, "delivered")
	require.ErrorIs(t, err, shared.ErrInsufficientStock)

	// Status unchanged and the first item's deduction undone.
	assert.Equal(t, OrderInTransit, repo.orders[1].Status)
	assert.Equal(t, 20, repo.lotQty(1))
	assert.Equal(t, 10, repo.lotQty(2))
}

func TestDeliveredTwiceDeductsOnce(t *testing.T) {
	repo := newMemoryRepo()
	seedOrder(repo, OrderInTransit, OrderItem{ProductID: 5, RequestedQty: 10})
	repo.lots = []inventory.StockLot{
		{ID: 1, ProductID: 5, Quantity: 30, Status: inventory.LotActive, ManufacturingDate: day(1)},
	}
	svc := testService(repo)

	_, err := svc.UpdateDeliveryStatus(context.Background(), 1, "delivered")
	require.NoError(t, err)
	require.Equal(t, 20, repo.lotQty(1))

	status, err := svc.UpdateDeliveryStatus(context.Background(), 1, "delivered")
	require.NoError(t, err)
	assert.Equal(t, OrderDelivered, status)
	assert.Equal(t, 20, repo.lotQty(1), "repeated delivered update must not deduct again")
}

func TestPartialReturnFromNonTerminal(t *testing.T) {
	repo := newMemoryRepo()
	seedOrder(repo, OrderLoaded)
	svc := testService(repo)

	status, err := svc.UpdateDeliveryStatus(context.Background(), 1, "partial_return")
	require.NoError(t, err)
	assert.Equal(t, OrderPartialReturn, status)
}

func day(d int) time.Time {
	return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC)
}
