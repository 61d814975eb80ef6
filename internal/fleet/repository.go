package fleet

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/breadroute/breadroute/internal/shared"
)

// Repository provides PostgreSQL backed access to the fleet.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const vehicleColumns = `
	v.vehicle_id, v.plate_number, v.status,
	t.vehicle_type_id, t.name,
	t.cargo_width_m, t.cargo_length_m, t.cargo_height_m, t.max_load_kg
`

// ListVehicles returns vehicles joined with their type. When onlyAvailable is
// set, vehicles claimed by a shipment that is still planning, loading or on
// the road are excluded.
func (r *Repository) ListVehicles(ctx context.Context, onlyAvailable bool) ([]Vehicle, error) {
	query := `
		SELECT ` + vehicleColumns + `
		FROM vehicles v
		JOIN vehicle_types t ON t.vehicle_type_id = v.vehicle_type_id
	`
	if onlyAvailable {
		query += `
		WHERE v.status = 'ACTIVE'
		  AND v.vehicle_id NOT IN (
			SELECT vehicle_id FROM shipments
			WHERE status IN ('PLANNING', 'LOADING', 'IN_TRANSIT')
		  )
		`
	}
	query += ` ORDER BY v.vehicle_id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []Vehicle
	for rows.Next() {
		var v Vehicle
		if err := scanVehicle(rows, &v); err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

// GetVehicle retrieves a single vehicle with its type.
func (r *Repository) GetVehicle(ctx context.Context, id int64) (*Vehicle, error) {
	query := `
		SELECT ` + vehicleColumns + `
		FROM vehicles v
		JOIN vehicle_types t ON t.vehicle_type_id = v.vehicle_type_id
		WHERE v.vehicle_id = $1
	`
	var v Vehicle
	err := scanVehicle(r.pool.QueryRow(ctx, query, id), &v)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &v, nil
}

// ListVehicleTypes returns the vehicle type catalogue.
func (r *Repository) ListVehicleTypes(ctx context.Context) ([]VehicleType, error) {
	query := `
		SELECT vehicle_type_id, name, cargo_width_m, cargo_length_m, cargo_height_m, max_load_kg
		FROM vehicle_types
		ORDER BY vehicle_type_id
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []VehicleType
	for rows.Next() {
		var t VehicleType
		if err := rows.Scan(&t.ID, &t.Name, &t.CargoWidthM, &t.CargoLengthM, &t.CargoHeightM, &t.MaxLoadKg); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVehicle(row rowScanner, v *Vehicle) error {
	return row.Scan(
		&v.ID, &v.PlateNumber, &v.Status,
		&v.Type.ID, &v.Type.Name,
		&v.Type.CargoWidthM, &v.Type.CargoLengthM, &v.Type.CargoHeightM, &v.Type.MaxLoadKg,
	)
}
