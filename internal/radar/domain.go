// Package radar builds the live-map read model: branch pins and active
// shipments ("cars") with their routes and orders, cached in Redis.
package radar

import "time"

// BranchPin is a branch with map coordinates.
type BranchPin struct {
	BranchID  int64   `json:"branch_id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// StopPin is one route stop with coordinates for drawing the path.
type StopPin struct {
	BranchID      int64    `json:"branch_id"`
	Name          string   `json:"name"`
	StopSequence  int      `json:"stop_sequence"`
	EstTravelMins int      `json:"est_travel_mins"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
}

// CarOrder is one order carried by a car, with its drop-off pin.
type CarOrder struct {
	OrderID    int64    `json:"order_id"`
	Code       string   `json:"code"`
	BranchID   int64    `json:"branch_id"`
	BranchName string   `json:"branch_name"`
	Status     string   `json:"status"`
	Latitude   *float64 `json:"latitude,omitempty"`
	Longitude  *float64 `json:"longitude,omitempty"`
}

// LocalCar is a DC's last-mile vehicle on the map.
type LocalCar struct {
	DCBranchID  int64  `json:"dc_branch_id"`
	VehicleID   *int64 `json:"vehicle_id,omitempty"`
	PlateNumber string `json:"plate_number,omitempty"`
	DriverName  string `json:"driver_name,omitempty"`
}

// Car is an active shipment presented as a moving vehicle.
type Car struct {
	ShipmentID    int64      `json:"shipment_id"`
	Code          string     `json:"shipment_code"`
	Status        string     `json:"status"`
	RouteID       int64      `json:"route_id"`
	VehicleID     int64      `json:"vehicle_id"`
	PlateNumber   string     `json:"plate_number"`
	VehicleType   string     `json:"vehicle_type"`
	DriverName    string     `json:"driver_name"`
	DepartureTime *time.Time `json:"departure_time,omitempty"`
	Stops         []StopPin  `json:"stops,omitempty"`
	Orders        []CarOrder `json:"orders,omitempty"`
	LocalCars     []LocalCar `json:"local_cars,omitempty"`
}

// Snapshot is the whole map state, built in one pass and cached.
type Snapshot struct {
	Branches    []BranchPin `json:"branches"`
	Cars        []Car       `json:"cars"`
	GeneratedAt time.Time   `json:"generated_at"`
}
