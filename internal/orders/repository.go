package orders

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/breadroute/breadroute/internal/inventory"
	"github.com/breadroute/breadroute/internal/platform/db"
	"github.com/breadroute/breadroute/internal/shared"
)

// Repository persists orders in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the transactional operations behind a delivery status
// update. It embeds the lot store so the status change and its inventory
// deduction share one transaction.
type TxRepository interface {
	inventory.LotStore
	GetOrderForUpdate(ctx context.Context, orderID int64) (*Order, error)
	ListItems(ctx context.Context, orderID int64) ([]OrderItem, error)
	UpdateStatus(ctx context.Context, orderID int64, status OrderStatus) error
	GetLotForUpdate(ctx context.Context, lotID int64) (*inventory.StockLot, error)
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

const orderColumns = `
	o.order_id, o.code, o.shipment_id, o.customer_branch_id, b.name, o.status, o.created_at
`

// ListOrders returns orders matching the filter, newest first.
func (r *Repository) ListOrders(ctx context.Context, filter ListFilter) ([]Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		JOIN branches b ON b.branch_id = o.customer_branch_id
		WHERE 1=1
	`
	args := []any{}
	if filter.ShipmentID > 0 {
		args = append(args, filter.ShipmentID)
		query += ` AND o.shipment_id = $1`
	}
	if filter.BranchID > 0 {
		args = append(args, filter.BranchID)
		query += ` AND o.customer_branch_id = $` + strconv.Itoa(len(args))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` AND o.status = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY o.created_at DESC, o.order_id DESC`
	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	args = append(args, limit)
	query += ` LIMIT $` + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.Code, &o.ShipmentID, &o.CustomerBranchID, &o.BranchName, &o.Status, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// GetOrder returns an order with its items.
func (r *Repository) GetOrder(ctx context.Context, orderID int64) (*Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		JOIN branches b ON b.branch_id = o.customer_branch_id
		WHERE o.order_id = $1
	`
	var o Order
	err := r.pool.QueryRow(ctx, query, orderID).
		Scan(&o.ID, &o.Code, &o.ShipmentID, &o.CustomerBranchID, &o.BranchName, &o.Status, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	items, err := r.listItems(ctx, r.pool, orderID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const itemsSQL = `
	SELECT oi.order_item_id, oi.order_id, oi.product_id, p.name,
	       oi.requested_qty, oi.fulfilled_qty, oi.unit_price, oi.lot_id
	FROM order_items oi
	JOIN products p ON p.product_id = oi.product_id
	WHERE oi.order_id = $1
	ORDER BY oi.order_item_id
`

func (r *Repository) listItems(ctx context.Context, q querier, orderID int64) ([]OrderItem, error) {
	rows, err := q.Query(ctx, itemsSQL, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName,
			&it.RequestedQty, &it.FulfilledQty, &it.UnitPrice, &it.LotID); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *txRepo) GetOrderForUpdate(ctx context.Context, orderID int64) (*Order, error) {
	query := `
		SELECT order_id, code, shipment_id, customer_branch_id, status, created_at
		FROM orders
		WHERE order_id = $1
		FOR UPDATE
	`
	var o Order
	err := r.tx.QueryRow(ctx, query, orderID).
		Scan(&o.ID, &o.Code, &o.ShipmentID, &o.CustomerBranchID, &o.Status, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *txRepo) ListItems(ctx context.Context, orderID int64) ([]OrderItem, error) {
	rows, err := r.tx.Query(ctx, itemsSQL, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName,
			&it.RequestedQty, &it.FulfilledQty, &it.UnitPrice, &it.LotID); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *txRepo) UpdateStatus(ctx context.Context, orderID int64, status OrderStatus) error {
	_, err := r.tx.Exec(ctx, `UPDATE orders SET status = $2 WHERE order_id = $1`, orderID, string(status))
	return err
}

const lotForUpdateSQL = `
	SELECT lot_id, product_id, location_id, quantity, status, manufacturing_date
	FROM stock_lots
	WHERE lot_id = $1
	FOR UPDATE
`

func (r *txRepo) GetLotForUpdate(ctx context.Context, lotID int64) (*inventory.StockLot, error) {
	var l inventory.StockLot
	err := r.tx.QueryRow(ctx, lotForUpdateSQL, lotID).
		Scan(&l.ID, &l.ProductID, &l.LocationID, &l.Quantity, &l.Status, &l.ManufacturingDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

const factoryLotsSQL = `
	SELECT l.lot_id, l.product_id, l.location_id, l.quantity, l.status, l.manufacturing_date
	FROM stock_lots l
	JOIN branches b ON b.branch_id = l.location_id
	WHERE l.product_id = $1
	  AND l.status = 'ACTIVE'
	  AND l.quantity > 0
	  AND b.category = 'FACTORY'
	ORDER BY l.manufacturing_date, l.lot_id
	FOR UPDATE OF l
`

func (r *txRepo) FactoryLotsForUpdate(ctx context.Context, productID int64) ([]inventory.StockLot, error) {
	rows, err := r.tx.Query(ctx, factoryLotsSQL, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lots []inventory.StockLot
	for rows.Next() {
		var l inventory.StockLot
		if err := rows.Scan(&l.ID, &l.ProductID, &l.LocationID, &l.Quantity, &l.Status, &l.ManufacturingDate); err != nil {
			return nil, err
		}
		lots = append(lots, l)
	}
	return lots, rows.Err()
}

const deductLotSQL = `
	UPDATE stock_lots
	SET quantity = quantity - $2,
	    status = CASE WHEN quantity - $2 = 0 THEN 'DEPLETED' ELSE status END
	WHERE lot_id = $1 AND quantity >= $2
`

func (r *txRepo) DeductLot(ctx context.Context, lotID int64, qty int) (bool, error) {
	tag, err := r.tx.Exec(ctx, deductLotSQL, lotID, qty)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
