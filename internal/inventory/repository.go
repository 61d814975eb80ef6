package inventory

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/breadroute/breadroute/internal/platform/db"
)

// Repository persists stock lots in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the transactional lot operations.
type TxRepository interface {
	LotStore
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

// ListStocks aggregates on-hand quantity per product, optionally at one location.
func (r *Repository) ListStocks(ctx context.Context, locationID int64) ([]StockSummary, error) {
	query := `
		SELECT l.product_id, p.name, l.location_id, COALESCE(SUM(l.quantity), 0)
		FROM stock_lots l
		JOIN products p ON p.product_id = l.product_id
		WHERE l.status = 'ACTIVE'
	`
	args := []any{}
	if locationID > 0 {
		query += ` AND l.location_id = $1`
		args = append(args, locationID)
	}
	query += ` GROUP BY l.product_id, p.name, l.location_id ORDER BY l.product_id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stocks []StockSummary
	for rows.Next() {
		var s StockSummary
		if err := rows.Scan(&s.ProductID, &s.ProductName, &s.LocationID, &s.TotalQty); err != nil {
			return nil, err
		}
		stocks = append(stocks, s)
	}
	return stocks, rows.Err()
}

// ListLots returns a product's lots, oldest first.
func (r *Repository) ListLots(ctx context.Context, productID int64) ([]StockLot, error) {
	query := `
		SELECT lot_id, product_id, location_id, quantity, status, manufacturing_date
		FROM stock_lots
		WHERE product_id = $1
		ORDER BY manufacturing_date, lot_id
	`
	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lots []StockLot
	for rows.Next() {
		var l StockLot
		if err := rows.Scan(&l.ID, &l.ProductID, &l.LocationID, &l.Quantity, &l.Status, &l.ManufacturingDate); err != nil {
			return nil, err
		}
		lots = append(lots, l)
	}
	return lots, rows.Err()
}

// FactoryStock sums the product's active factory-lot quantity. Used by the
// allocation engine as current stock on hand.
func (r *Repository) FactoryStock(ctx context.Context, productID int64) (int64, error) {
	var total int64
	err := r.pool.QueryRow(ctx, factoryStockSQL, productID).Scan(&total)
	return total, err
}

const factoryStockSQL = `
	SELECT COALESCE(SUM(l.quantity), 0)
	FROM stock_lots l
	JOIN branches b ON b.branch_id = l.location_id
	WHERE l.product_id = $1
	  AND l.status = 'ACTIVE'
	  AND b.category = 'FACTORY'
`

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

const deductLotSQL = `
	UPDATE stock_lots
	SET quantity = quantity - $2,
	    status = CASE WHEN quantity - $2 = 0 THEN 'DEPLETED' ELSE status END
	WHERE lot_id = $1 AND quantity >= $2
`

func (r *txRepo) FactoryLotsForUpdate(ctx context.Context, productID int64) ([]StockLot, error) {
	rows, err := r.tx.Query(ctx, factoryLotsSQL, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lots []StockLot
	for rows.Next() {
		var l StockLot
		if err := rows.Scan(&l.ID, &l.ProductID, &l.LocationID, &l.Quantity, &l.Status, &l.ManufacturingDate); err != nil {
			return nil, err
		}
		lots = append(lots, l)
	}
	return lots, rows.Err()
}

func (r *txRepo) DeductLot(ctx context.Context, lotID int64, qty int) (bool, error) {
	tag, err := r.tx.Exec(ctx, deductLotSQL, lotID, qty)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
