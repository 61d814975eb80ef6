package radar

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/breadroute/breadroute/internal/orders"
)

// RepositoryPort abstracts the read queries behind the snapshot build.
type RepositoryPort interface {
	BranchPins(ctx context.Context) ([]BranchPin, error)
	ActiveCars(ctx context.Context) ([]Car, error)
	OrdersForShipments(ctx context.Context, shipmentIDs []int64) (map[int64][]CarOrder, error)
	StopsForRoutes(ctx context.Context, routeIDs []int64) (map[int64][]StopPin, error)
	LocalCarsForShipments(ctx context.Context, shipmentIDs []int64) (map[int64][]LocalCar, error)
}

// Service serves the cached map snapshot and owns cache invalidation.
type Service struct {
	logger *slog.Logger
	repo   RepositoryPort
	cache  *Cache
}

// NewService builds a radar Service. cache may be nil; snapshots are then
// rebuilt on every call.
func NewService(logger *slog.Logger, repo RepositoryPort, cache *Cache) *Service {
	return &Service{logger: logger, repo: repo, cache: cache}
}

// Snapshot returns the current map state, served from cache when fresh.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	key, err := s.cache.BuildKey(ctx, "radar", "snapshot")
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := s.cache.FetchJSON(ctx, key, &snap, s.build); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Bump invalidates the cached snapshot. Shipment and order mutations call
// this so the map never shows a stale fleet.
func (s *Service) Bump(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

// Warm rebuilds the snapshot ahead of demand. Run from the scheduler.
func (s *Service) Warm(ctx context.Context) error {
	_, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	s.logger.Debug("radar snapshot warmed")
	return nil
}

func (s *Service) build(ctx context.Context) (any, error) {
	var (
		branches []BranchPin
		cars     []Car
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		branches, err = s.repo.BranchPins(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		cars, err = s.repo.ActiveCars(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	shipmentIDs := make([]int64, 0, len(cars))
	routeSet := make(map[int64]struct{}, len(cars))
	for _, c := range cars {
		shipmentIDs = append(shipmentIDs, c.ShipmentID)
		routeSet[c.RouteID] = struct{}{}
	}
	routeIDs := make([]int64, 0, len(routeSet))
	for id := range routeSet {
		routeIDs = append(routeIDs, id)
	}
	sort.Slice(routeIDs, func(i, j int) bool { return routeIDs[i] < routeIDs[j] })

	var (
		carOrders map[int64][]CarOrder
		stops     map[int64][]StopPin
		locals    map[int64][]LocalCar
	)
	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		carOrders, err = s.repo.OrdersForShipments(gctx, shipmentIDs)
		return err
	})
	g.Go(func() error {
		var err error
		stops, err = s.repo.StopsForRoutes(gctx, routeIDs)
		return err
	})
	g.Go(func() error {
		var err error
		locals, err = s.repo.LocalCarsForShipments(gctx, shipmentIDs)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range cars {
		c := &cars[i]
		c.Stops = stops[c.RouteID]
		c.Orders = carOrders[c.ShipmentID]
		c.LocalCars = locals[c.ShipmentID]
		for j := range c.Orders {
			c.Orders[j].Status = orders.OrderStatus(c.Orders[j].Status).WireToken()
		}
	}

	return &Snapshot{
		Branches:    branches,
		Cars:        cars,
		GeneratedAt: time.Now().UTC(),
	}, nil
}
