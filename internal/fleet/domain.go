package fleet

import (
	"github.com/breadroute/breadroute/internal/packing"
)

// VehicleStatus is the operational state of a vehicle itself, independent of
// whether a shipment currently claims it.
type VehicleStatus string

const (
	VehicleActive      VehicleStatus = "ACTIVE"
	VehicleMaintenance VehicleStatus = "MAINTENANCE"
	VehicleRetired     VehicleStatus = "RETIRED"
)

// VehicleType describes a class of vehicle with its cargo hold dimensions,
// recorded in meters.
type VehicleType struct {
	ID           int64   `json:"vehicle_type_id"`
	Name         string  `json:"name"`
	CargoWidthM  float64 `json:"cargo_width_m"`
	CargoLengthM float64 `json:"cargo_length_m"`
	CargoHeightM float64 `json:"cargo_height_m"`
	MaxLoadKg    float64 `json:"max_load_kg"`
}

// CargoSpace converts the type's hold dimensions for capacity math.
func (t VehicleType) CargoSpace() *packing.CargoSpace {
	return &packing.CargoSpace{
		WidthM:  t.CargoWidthM,
		LengthM: t.CargoLengthM,
		HeightM: t.CargoHeightM,
	}
}

// Vehicle is a single truck or van in the fleet.
type Vehicle struct {
	ID          int64         `json:"vehicle_id"`
	PlateNumber string        `json:"plate_number"`
	Status      VehicleStatus `json:"status"`
	Type        VehicleType   `json:"type"`
}
