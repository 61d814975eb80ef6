package app

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/breadroute/breadroute/internal/allocation"
	"github.com/breadroute/breadroute/internal/fleet"
	"github.com/breadroute/breadroute/internal/inventory"
	"github.com/breadroute/breadroute/internal/masterdata"
	"github.com/breadroute/breadroute/internal/observability"
	"github.com/breadroute/breadroute/internal/orders"
	"github.com/breadroute/breadroute/internal/packing"
	"github.com/breadroute/breadroute/internal/radar"
	"github.com/breadroute/breadroute/internal/returns"
	"github.com/breadroute/breadroute/internal/shipment"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	MasterDataHandler *masterdata.Handler
	FleetHandler      *fleet.Handler
	InventoryHandler  *inventory.Handler
	PackingHandler    *packing.Handler
	AllocationHandler *allocation.Handler
	ShipmentHandler   *shipment.Handler
	OrdersHandler     *orders.Handler
	ReturnsHandler    *returns.Handler
	RadarHandler      *radar.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with the API mounted under /api/v2.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v2", func(r chi.Router) {
		if params.MasterDataHandler != nil {
			params.MasterDataHandler.MountRoutes(r)
		}
		if params.FleetHandler != nil {
			r.Route("/fleet", params.FleetHandler.MountRoutes)
		}
		if params.InventoryHandler != nil {
			params.InventoryHandler.MountRoutes(r)
		}
		r.Route("/planning", func(r chi.Router) {
			if params.PackingHandler != nil {
				params.PackingHandler.MountRoutes(r)
			}
			if params.AllocationHandler != nil {
				params.AllocationHandler.MountRoutes(r)
			}
		})
		if params.ShipmentHandler != nil {
			r.Route("/shipments", params.ShipmentHandler.MountRoutes)
		}
		if params.OrdersHandler != nil {
			r.Route("/orders", params.OrdersHandler.MountRoutes)
		}
		if params.ReturnsHandler != nil {
			r.Route("/returns", params.ReturnsHandler.MountRoutes)
		}
		if params.RadarHandler != nil {
			r.Route("/radar", params.RadarHandler.MountRoutes)
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}

// vehicleCargoSource adapts the fleet service to the capacity calculator.
type vehicleCargoSource struct {
	fleet *fleet.Service
}

// NewVehicleCargoSource exposes fleet cargo holds to the packing handler.
func NewVehicleCargoSource(svc *fleet.Service) packing.CargoSource {
	return &vehicleCargoSource{fleet: svc}
}

func (s *vehicleCargoSource) CargoSpaceFor(ctx context.Context, vehicleID int64) (*packing.CargoSpace, error) {
	v, err := s.fleet.GetVehicle(ctx, vehicleID)
	if err != nil {
		return nil, err
	}
	return v.Type.CargoSpace(), nil
}

// productVolumeSource adapts the allocation repository's product volume read.
type productVolumeSource struct {
	repo *allocation.Repository
}

// NewProductVolumeSource exposes per-unit volumes to the packing handler.
func NewProductVolumeSource(repo *allocation.Repository) packing.VolumeSource {
	return &productVolumeSource{repo: repo}
}

func (s *productVolumeSource) UnitVolumesM3(ctx context.Context, productIDs []int64) (map[int64]float64, error) {
	products, err := s.repo.ActiveProducts(ctx, productIDs)
	if err != nil {
		return nil, err
	}
	volumes := make(map[int64]float64, len(products))
	for _, p := range products {
		volumes[p.ProductID] = p.VolumeM3
	}
	return volumes, nil
}
