package shipment

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/breadroute/breadroute/internal/orders"
	"github.com/breadroute/breadroute/internal/platform/db"
	"github.com/breadroute/breadroute/internal/shared"
)

// Repository persists shipments in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes the transactional operations behind shipment creation
// and status changes.
type TxRepository interface {
	// InsertShipmentReservingVehicle inserts the shipment only when the
	// vehicle is not already attached to a live shipment. It reports whether
	// the row was inserted; false means the vehicle was taken concurrently.
	InsertShipmentReservingVehicle(ctx context.Context, code string, routeID, vehicleID, driverID, salesID int64) (int64, bool, error)
	ProductPrices(ctx context.Context, productIDs []int64) (map[int64]float64, error)
	InsertOrder(ctx context.Context, code string, customerBranchID, shipmentID int64) (int64, error)
	InsertOrderItem(ctx context.Context, orderID, productID int64, qty int, unitPrice float64) error
	InsertDCAssignment(ctx context.Context, a DCAssignment) error
	GetShipmentForUpdate(ctx context.Context, shipmentID int64) (*Shipment, error)
	UpdateStatus(ctx context.Context, shipmentID int64, status Status, stampDeparture bool) error
	CascadeOrders(ctx context.Context, shipmentID int64, status orders.OrderStatus) error
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

const shipmentColumns = `
	shipment_id, shipment_code, route_id, vehicle_id, driver_emp_id, sales_emp_id,
	status, departure_time, created_at
`

// ListShipments returns shipments newest first, optionally filtered by status.
func (r *Repository) ListShipments(ctx context.Context, status Status, limit int) ([]Shipment, error) {
	query := `SELECT ` + shipmentColumns + ` FROM shipments`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(status))
	}
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	if len(args) == 1 {
		query += ` ORDER BY created_at DESC, shipment_id DESC LIMIT $1`
	} else {
		query += ` ORDER BY created_at DESC, shipment_id DESC LIMIT $2`
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Shipment
	for rows.Next() {
		var s Shipment
		if err := rows.Scan(&s.ID, &s.Code, &s.RouteID, &s.VehicleID, &s.DriverID, &s.SalesID,
			&s.Status, &s.DepartureTime, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetShipment returns a shipment with its DC assignments.
func (r *Repository) GetShipment(ctx context.Context, shipmentID int64) (*Shipment, error) {
	var s Shipment
	err := r.pool.QueryRow(ctx,
		`SELECT `+shipmentColumns+` FROM shipments WHERE shipment_id = $1`, shipmentID).
		Scan(&s.ID, &s.Code, &s.RouteID, &s.VehicleID, &s.DriverID, &s.SalesID,
			&s.Status, &s.DepartureTime, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT assignment_id, shipment_id, dc_branch_id, local_vehicle_id, driver_emp_id, sales_emp_id
		FROM shipment_dc_assignments
		WHERE shipment_id = $1
		ORDER BY assignment_id
	`, shipmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var a DCAssignment
		if err := rows.Scan(&a.ID, &a.ShipmentID, &a.DCBranchID, &a.VehicleID, &a.DriverID, &a.SalesID); err != nil {
			return nil, err
		}
		s.Assignments = append(s.Assignments, a)
	}
	return &s, rows.Err()
}

// RouteExists reports whether a route id is known.
func (r *Repository) RouteExists(ctx context.Context, routeID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM routes WHERE route_id = $1)`, routeID).Scan(&exists)
	return exists, err
}

const insertShipmentSQL = `
	INSERT INTO shipments (shipment_code, route_id, vehicle_id, driver_emp_id, sales_emp_id, status)
	SELECT $1, $2, $3, $4, $5, 'PLANNING'
	WHERE NOT EXISTS (
		SELECT 1 FROM shipments
		WHERE vehicle_id = $3 AND status IN ('PLANNING', 'LOADING', 'IN_TRANSIT')
	)
	RETURNING shipment_id
`

func (r *txRepo) InsertShipmentReservingVehicle(ctx context.Context, code string, routeID, vehicleID, driverID, salesID int64) (int64, bool, error) {
	var id int64
	err := r.tx.QueryRow(ctx, insertShipmentSQL, code, routeID, vehicleID, driverID, salesID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return id, true, nil
}

func (r *txRepo) ProductPrices(ctx context.Context, productIDs []int64) (map[int64]float64, error) {
	rows, err := r.tx.Query(ctx,
		`SELECT product_id, unit_price FROM products WHERE product_id = ANY($1)`, productIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	prices := make(map[int64]float64, len(productIDs))
	for rows.Next() {
		var id int64
		var price float64
		if err := rows.Scan(&id, &price); err != nil {
			return nil, err
		}
		prices[id] = price
	}
	return prices, rows.Err()
}

func (r *txRepo) InsertOrder(ctx context.Context, code string, customerBranchID, shipmentID int64) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `
		INSERT INTO orders (code, customer_branch_id, shipment_id, status)
		VALUES ($1, $2, $3, 'PLANNED')
		RETURNING order_id
	`, code, customerBranchID, shipmentID).Scan(&id)
	return id, err
}

func (r *txRepo) InsertOrderItem(ctx context.Context, orderID, productID int64, qty int, unitPrice float64) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO order_items (order_id, product_id, requested_qty, unit_price, fulfilled_qty)
		VALUES ($1, $2, $3, $4, 0)
	`, orderID, productID, qty, unitPrice)
	return err
}

func (r *txRepo) InsertDCAssignment(ctx context.Context, a DCAssignment) error {
	_, err := r.tx.Exec(ctx, `
		INSERT INTO shipment_dc_assignments (shipment_id, dc_branch_id, local_vehicle_id, driver_emp_id, sales_emp_id)
		VALUES ($1, $2, $3, $4, $5)
	`, a.ShipmentID, a.DCBranchID, a.VehicleID, a.DriverID, a.SalesID)
	return err
}

func (r *txRepo) GetShipmentForUpdate(ctx context.Context, shipmentID int64) (*Shipment, error) {
	var s Shipment
	err := r.tx.QueryRow(ctx,
		`SELECT `+shipmentColumns+` FROM shipments WHERE shipment_id = $1 FOR UPDATE`, shipmentID).
		Scan(&s.ID, &s.Code, &s.RouteID, &s.VehicleID, &s.DriverID, &s.SalesID,
			&s.Status, &s.DepartureTime, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *txRepo) UpdateStatus(ctx context.Context, shipmentID int64, status Status, stampDeparture bool) error {
	if stampDeparture {
		_, err := r.tx.Exec(ctx, `
			UPDATE shipments
			SET status = $2, departure_time = COALESCE(departure_time, NOW())
			WHERE shipment_id = $1
		`, shipmentID, string(status))
		return err
	}
	_, err := r.tx.Exec(ctx,
		`UPDATE shipments SET status = $2 WHERE shipment_id = $1`, shipmentID, string(status))
	return err
}

// CascadeOrders moves the shipment's orders along with the shipment. The
// LOADED cascade skips orders the driver already settled; pushing those back
// would let a later delivery deduct their stock a second time. Closing the
// shipment marks every order delivered regardless.
func (r *txRepo) CascadeOrders(ctx context.Context, shipmentID int64, status orders.OrderStatus) error {
	if status == orders.OrderLoaded {
		_, err := r.tx.Exec(ctx, `
			UPDATE orders SET status = $2
			WHERE shipment_id = $1 AND status NOT IN ('DELIVERED', 'PARTIAL_RETURN')
		`, shipmentID, string(status))
		return err
	}
	_, err := r.tx.Exec(ctx,
		`UPDATE orders SET status = $2 WHERE shipment_id = $1`, shipmentID, string(status))
	return err
}
