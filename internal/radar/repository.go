package radar

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads the map projections straight from Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository builds a radar repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const branchPinsSQL = `
SELECT branch_id, name, latitude, longitude
FROM branches
WHERE latitude IS NOT NULL AND longitude IS NOT NULL
ORDER BY branch_id`

// BranchPins lists every branch that can be placed on the map.
func (r *Repository) BranchPins(ctx context.Context) ([]BranchPin, error) {
	rows, err := r.pool.Query(ctx, branchPinsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pins []BranchPin
	for rows.Next() {
		var p BranchPin
		if err := rows.Scan(&p.BranchID, &p.Name, &p.Latitude, &p.Longitude); err != nil {
			return nil, err
		}
		pins = append(pins, p)
	}
	return pins, rows.Err()
}

const activeCarsSQL = `
SELECT s.shipment_id, s.shipment_code, s.status, s.route_id, s.departure_time,
       v.vehicle_id, v.plate_number, vt.name,
       COALESCE(e.firstname || ' ' || e.lastname, '')
FROM shipments s
JOIN vehicles v ON v.vehicle_id = s.vehicle_id
JOIN vehicle_types vt ON vt.vehicle_type_id = v.vehicle_type_id
LEFT JOIN employees e ON e.employee_id = s.driver_emp_id
WHERE s.status IN ('PLANNING', 'LOADING', 'IN_TRANSIT')
ORDER BY s.shipment_id`

// ActiveCars lists live shipments without their nested collections.
func (r *Repository) ActiveCars(ctx context.Context) ([]Car, error) {
	rows, err := r.pool.Query(ctx, activeCarsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cars []Car
	for rows.Next() {
		var c Car
		if err := rows.Scan(
			&c.ShipmentID, &c.Code, &c.Status, &c.RouteID, &c.DepartureTime,
			&c.VehicleID, &c.PlateNumber, &c.VehicleType, &c.DriverName,
		); err != nil {
			return nil, err
		}
		cars = append(cars, c)
	}
	return cars, rows.Err()
}

const carOrdersSQL = `
SELECT o.shipment_id, o.order_id, o.code, o.status,
       b.branch_id, b.name, b.latitude, b.longitude
FROM orders o
JOIN branches b ON b.branch_id = o.customer_branch_id
WHERE o.shipment_id = ANY($1)
ORDER BY o.shipment_id, o.order_id`

// OrdersForShipments returns drop-off orders keyed by shipment.
func (r *Repository) OrdersForShipments(ctx context.Context, shipmentIDs []int64) (map[int64][]CarOrder, error) {
	if len(shipmentIDs) == 0 {
		return map[int64][]CarOrder{}, nil
	}
	rows, err := r.pool.Query(ctx, carOrdersSQL, shipmentIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]CarOrder)
	for rows.Next() {
		var shipmentID int64
		var o CarOrder
		if err := rows.Scan(&shipmentID, &o.OrderID, &o.Code, &o.Status,
			&o.BranchID, &o.BranchName, &o.Latitude, &o.Longitude); err != nil {
			return nil, err
		}
		out[shipmentID] = append(out[shipmentID], o)
	}
	return out, rows.Err()
}

const routeStopsSQL = `
SELECT rs.route_id, rs.stop_sequence, rs.est_travel_mins,
       b.branch_id, b.name, b.latitude, b.longitude
FROM route_stops rs
JOIN branches b ON b.branch_id = rs.branch_id
WHERE rs.route_id = ANY($1)
ORDER BY rs.route_id, rs.stop_sequence`

// StopsForRoutes returns ordered stops keyed by route.
func (r *Repository) StopsForRoutes(ctx context.Context, routeIDs []int64) (map[int64][]StopPin, error) {
	if len(routeIDs) == 0 {
		return map[int64][]StopPin{}, nil
	}
	rows, err := r.pool.Query(ctx, routeStopsSQL, routeIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]StopPin)
	for rows.Next() {
		var routeID int64
		var s StopPin
		if err := rows.Scan(&routeID, &s.StopSequence, &s.EstTravelMins,
			&s.BranchID, &s.Name, &s.Latitude, &s.Longitude); err != nil {
			return nil, err
		}
		out[routeID] = append(out[routeID], s)
	}
	return out, rows.Err()
}

const localCarsSQL = `
SELECT da.shipment_id, da.dc_branch_id, da.local_vehicle_id,
       COALESCE(v.plate_number, ''), COALESCE(e.firstname || ' ' || e.lastname, '')
FROM shipment_dc_assignments da
LEFT JOIN vehicles v ON v.vehicle_id = da.local_vehicle_id
LEFT JOIN employees e ON e.employee_id = da.driver_emp_id
WHERE da.shipment_id = ANY($1)
ORDER BY da.shipment_id, da.dc_branch_id`

// LocalCarsForShipments returns last-mile assignments keyed by shipment.
func (r *Repository) LocalCarsForShipments(ctx context.Context, shipmentIDs []int64) (map[int64][]LocalCar, error) {
	if len(shipmentIDs) == 0 {
		return map[int64][]LocalCar{}, nil
	}
	rows, err := r.pool.Query(ctx, localCarsSQL, shipmentIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64][]LocalCar)
	for rows.Next() {
		var shipmentID int64
		var lc LocalCar
		if err := rows.Scan(&shipmentID, &lc.DCBranchID, &lc.VehicleID, &lc.PlateNumber, &lc.DriverName); err != nil {
			return nil, err
		}
		out[shipmentID] = append(out[shipmentID], lc)
	}
	return out, rows.Err()
}
