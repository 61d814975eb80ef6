package allocation

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/breadroute/breadroute/internal/packing"
)

// Repository reads demand and stock aggregates from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ActiveProducts returns active products with derived unit volumes.
func (r *Repository) ActiveProducts(ctx context.Context, productIDs []int64) ([]ProductVolume, error) {
	query := `
		SELECT product_id, COALESCE(width_cm, 0), COALESCE(length_cm, 0), COALESCE(height_cm, 0)
		FROM products
		WHERE is_active
	`
	args := []any{}
	if len(productIDs) > 0 {
		query += ` AND product_id = ANY($1)`
		args = append(args, productIDs)
	}
	query += ` ORDER BY product_id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []ProductVolume
	for rows.Next() {
		var id int64
		var w, l, h float64
		if err := rows.Scan(&id, &w, &l, &h); err != nil {
			return nil, err
		}
		products = append(products, ProductVolume{
			ProductID: id,
			VolumeM3:  packing.UnitVolumeM3(w, l, h),
		})
	}
	return products, rows.Err()
}

// SalesLast7Days aggregates requested quantities per branch/product over the
// trailing week, across orders in any live status.
func (r *Repository) SalesLast7Days(ctx context.Context, branchIDs, productIDs []int64) ([]SalesRecord, error) {
	query := `
		SELECT o.customer_branch_id, oi.product_id, SUM(oi.requested_qty)
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.order_id
		WHERE o.customer_branch_id = ANY($1)
		  AND o.created_at >= NOW() - INTERVAL '7 days'
		  AND o.status IN ('PLANNED', 'LOADED', 'IN_TRANSIT', 'DELIVERED')
	`
	args := []any{branchIDs}
	if len(productIDs) > 0 {
		query += ` AND oi.product_id = ANY($2)`
		args = append(args, productIDs)
	}
	query += ` GROUP BY o.customer_branch_id, oi.product_id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []SalesRecord
	for rows.Next() {
		var rec SalesRecord
		if err := rows.Scan(&rec.BranchID, &rec.ProductID, &rec.Qty); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// StockOnHand aggregates live lot quantity per branch/product.
func (r *Repository) StockOnHand(ctx context.Context, branchIDs, productIDs []int64) ([]StockRecord, error) {
	query := `
		SELECT location_id, product_id, SUM(quantity)
		FROM stock_lots
		WHERE location_id = ANY($1)
		  AND status = 'ACTIVE'
	`
	args := []any{branchIDs}
	if len(productIDs) > 0 {
		query += ` AND product_id = ANY($2)`
		args = append(args, productIDs)
	}
	query += ` GROUP BY location_id, product_id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []StockRecord
	for rows.Next() {
		var rec StockRecord
		if err := rows.Scan(&rec.BranchID, &rec.ProductID, &rec.Qty); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
