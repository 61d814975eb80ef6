package returns

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/breadroute/breadroute/internal/platform/db"
	"github.com/breadroute/breadroute/internal/shared"
)

// Repository persists returns in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the transactional create operations.
type TxRepository interface {
	OrderExists(ctx context.Context, orderID int64) (bool, error)
	InsertReturn(ctx context.Context, orderID int64, returnDate time.Time, reason string, status Status) (int64, error)
	InsertReturnItem(ctx context.Context, returnID int64, item ReturnItem) error
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

const returnColumns = `
	r.return_id, r.original_order_id, r.return_date, COALESCE(r.reason, ''), r.status,
	COALESCE(b.name, ''), COALESCE(rt.name, '')
`

const returnJoins = `
	FROM returns r
	LEFT JOIN orders o ON o.order_id = r.original_order_id
	LEFT JOIN branches b ON b.branch_id = o.customer_branch_id
	LEFT JOIN shipments s ON s.shipment_id = o.shipment_id
	LEFT JOIN routes rt ON rt.route_id = s.route_id
`

// ListReturns returns matching returns, newest first, with summed quantities.
func (r *Repository) ListReturns(ctx context.Context, filter ListFilter) ([]Return, error) {
	query := `
		SELECT ` + returnColumns + `,
		       (SELECT COALESCE(SUM(ri.qty), 0) FROM return_items ri WHERE ri.return_id = r.return_id)
		` + returnJoins + `
		WHERE 1=1
	`
	args := []any{}
	if filter.OrderID > 0 {
		args = append(args, filter.OrderID)
		query += ` AND r.original_order_id = $` + strconv.Itoa(len(args))
	}
	switch {
	case filter.Days > 0:
		args = append(args, filter.Days)
		query += ` AND r.return_date >= CURRENT_DATE - ($` + strconv.Itoa(len(args)) + ` * INTERVAL '1 day')`
	case !filter.From.IsZero() && !filter.To.IsZero():
		args = append(args, filter.From)
		query += ` AND r.return_date >= $` + strconv.Itoa(len(args))
		args = append(args, filter.To)
		query += ` AND r.return_date <= $` + strconv.Itoa(len(args))
	case filter.OrderID == 0:
		query += ` AND r.return_date >= CURRENT_DATE - INTERVAL '7 days'`
	}
	query += ` ORDER BY r.return_id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Return
	for rows.Next() {
		var ret Return
		if err := rows.Scan(&ret.ID, &ret.OrderID, &ret.ReturnDate, &ret.Reason, &ret.Status,
			&ret.BranchName, &ret.RouteName, &ret.TotalQty); err != nil {
			return nil, err
		}
		out = append(out, ret)
	}
	return out, rows.Err()
}

// GetReturn returns one return with its items.
func (r *Repository) GetReturn(ctx context.Context, returnID int64) (*Return, error) {
	var ret Return
	err := r.pool.QueryRow(ctx,
		`SELECT `+returnColumns+` `+returnJoins+` WHERE r.return_id = $1`, returnID).
		Scan(&ret.ID, &ret.OrderID, &ret.ReturnDate, &ret.Reason, &ret.Status,
			&ret.BranchName, &ret.RouteName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT ri.product_id, p.name, ri.qty, COALESCE(ri.condition_note, '')
		FROM return_items ri
		JOIN products p ON p.product_id = ri.product_id
		WHERE ri.return_id = $1
		ORDER BY ri.return_item_id
	`, returnID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it ReturnItem
		if err := rows.Scan(&it.ProductID, &it.ProductName, &it.Qty, &it.ConditionNote); err != nil {
			return nil, err
		}
		ret.Items = append(ret.Items, it)
		ret.TotalQty += int64(it.Qty)
	}
	return &ret, rows.Err()
}

func (r *txRepo) OrderExists(ctx context.Context, orderID int64) (bool, error) {
	var exists bool
	err := r.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE order_id = $1)`, orderID).Scan(&exists)
	return exists, err
}

func (r *txRepo) InsertReturn(ctx context.Context, orderID int64, returnDate time.Time, reason string, status Status) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `
		INSERT INTO returns (original_order_id, return_date, reason, status)
		VALUES ($1, $2, NULLIF($3, ''), $4)
		RETURNING return_id
	`, orderID, returnDate, reason, string(status)).Scan(&id)
	return id, err
}

func (r *txRepo) InsertReturnItem(ctx context.Context, returnID int64, item ReturnItem) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO return_items (return_id, product_id, qty, condition_note)
		VALUES ($1, $2, $3, NULLIF($4, ''))
	`, returnID, item.ProductID, item.Qty, item.ConditionNote)
	return err
}
