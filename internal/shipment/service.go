package shipment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/breadroute/breadroute/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListShipments(ctx context.Context, status Status, limit int) ([]Shipment, error)
	GetShipment(ctx context.Context, shipmentID int64) (*Shipment, error)
	RouteExists(ctx context.Context, routeID int64) (bool, error)
}

// CacheBumper invalidates read-model caches after shipment mutations.
// The radar snapshot registers itself here.
type CacheBumper interface {
	Bump(ctx context.Context) error
}

// Service validates and executes shipment operations.
type Service struct {
	logger *slog.Logger
	repo   RepositoryPort
	bumper CacheBumper
}

// NewService builds a Service. bumper may be nil.
func NewService(logger *slog.Logger, repo RepositoryPort, bumper CacheBumper) *Service {
	return &Service{logger: logger, repo: repo, bumper: bumper}
}

func (s *Service) ListShipments(ctx context.Context, status Status, limit int) ([]Shipment, error) {
	return s.repo.ListShipments(ctx, status, limit)
}

func (s *Service) GetShipment(ctx context.Context, shipmentID int64) (*Shipment, error) {
	return s.repo.GetShipment(ctx, shipmentID)
}

// Create validates the request, then writes the shipment, its orders with
// price snapshots, and its DC assignments in one transaction. The vehicle is
// reserved by the same transaction; a concurrent claim fails the whole call.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*CreateResult, error) {
	cleanOrders, err := validateRequest(req)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.RouteExists(ctx, req.RouteID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: route %d", shared.ErrNotFound, req.RouteID)
	}

	code := newShipmentCode()
	var result CreateResult

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		shipmentID, reserved, err := tx.InsertShipmentReservingVehicle(
			ctx, code, req.RouteID, req.VehicleID, req.DriverID, req.SalesID)
		if err != nil {
			return &shared.PersistenceError{Op: "shipment insert", Err: err}
		}
		if !reserved {
			return fmt.Errorf("%w: vehicle %d is already assigned to a live shipment",
				shared.ErrConflict, req.VehicleID)
		}

		prices, err := tx.ProductPrices(ctx, collectProductIDs(cleanOrders))
		if err != nil {
			return &shared.PersistenceError{Op: "price snapshot", Err: err}
		}

		for _, ord := range cleanOrders {
			orderID, err := tx.InsertOrder(ctx, newOrderCode(), ord.CustomerBranchID, shipmentID)
			if err != nil {
				return &shared.PersistenceError{Op: "order insert", Err: err}
			}
			for _, item := range ord.Items {
				price, known := prices[item.ProductID]
				if !known {
					return fmt.Errorf("%w: product %d", shared.ErrNotFound, item.ProductID)
				}
				if err := tx.InsertOrderItem(ctx, orderID, item.ProductID, item.RequestedQty, price); err != nil {
					return &shared.PersistenceError{Op: "order item insert", Err: err}
				}
			}
		}

		for _, a := range req.DCAssignments {
			err := tx.InsertDCAssignment(ctx, DCAssignment{
				ShipmentID: shipmentID,
				DCBranchID: a.DCBranchID,
				VehicleID:  a.VehicleID,
				DriverID:   a.DriverID,
				SalesID:    a.SalesID,
			})
			if err != nil {
				return &shared.PersistenceError{Op: "dc assignment insert", Err: err}
			}
		}

		result = CreateResult{ShipmentID: shipmentID, ShipmentCode: code}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.bump(ctx)
	s.logger.Info("shipment created",
		slog.Int64("shipment_id", result.ShipmentID),
		slog.String("code", result.ShipmentCode),
		slog.Int("orders", len(cleanOrders)))
	return &result, nil
}

// UpdateStatus moves a shipment through its state machine, stamping the
// departure time on IN_TRANSIT and cascading order statuses where the table
// says so, all in one transaction.
func (s *Service) UpdateStatus(ctx context.Context, shipmentID int64, token string) (Status, error) {
	next, err := ParseStatus(token)
	if err != nil {
		return "", err
	}
	if next == StatusPlanning {
		return "", shared.Validationf("shipments start in PLANNING; cannot transition back into it")
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetShipmentForUpdate(ctx, shipmentID)
		if err != nil {
			return err
		}
		if !current.Status.CanTransitionTo(next) {
			return shared.Validationf("cannot move shipment %d from %s to %s",
				shipmentID, current.Status, next)
		}
		if err := tx.UpdateStatus(ctx, shipmentID, next, next == StatusInTransit); err != nil {
			return err
		}
		if cascade := next.OrderCascade(); cascade != "" {
			if err := tx.CascadeOrders(ctx, shipmentID, cascade); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	s.bump(ctx)
	s.logger.Info("shipment status updated",
		slog.Int64("shipment_id", shipmentID),
		slog.String("status", string(next)))
	return next, nil
}

func (s *Service) bump(ctx context.Context) {
	if s.bumper == nil {
		return
	}
	if err := s.bumper.Bump(ctx); err != nil {
		s.logger.Warn("cache bump failed", slog.Any("error", err))
	}
}

// validateRequest enforces the buddy rules and drops order lines with no
// usable items. It returns the cleaned order list.
func validateRequest(req CreateRequest) ([]OrderRequest, error) {
	if req.DriverID == req.SalesID {
		return nil, shared.Validationf("driver and salesperson must be different people")
	}
	for _, a := range req.DCAssignments {
		if a.DriverID != nil && a.SalesID != nil && *a.DriverID == *a.SalesID {
			return nil, shared.Validationf("dc %d: driver and salesperson must be different people", a.DCBranchID)
		}
	}

	cleaned := make([]OrderRequest, 0, len(req.Orders))
	for _, ord := range req.Orders {
		items := make([]OrderItemRequest, 0, len(ord.Items))
		for _, item := range ord.Items {
			if item.ProductID > 0 && item.RequestedQty > 0 {
				items = append(items, item)
			}
		}
		if len(items) == 0 {
			continue
		}
		cleaned = append(cleaned, OrderRequest{CustomerBranchID: ord.CustomerBranchID, Items: items})
	}
	if len(cleaned) == 0 {
		return nil, shared.Validationf("no order has an item with positive quantity")
	}
	return cleaned, nil
}

func collectProductIDs(cleanOrders []OrderRequest) []int64 {
	seen := make(map[int64]bool)
	var ids []int64
	for _, ord := range cleanOrders {
		for _, item := range ord.Items {
			if !seen[item.ProductID] {
				seen[item.ProductID] = true
				ids = append(ids, item.ProductID)
			}
		}
	}
	return ids
}

func newShipmentCode() string {
	return fmt.Sprintf("SHP-%s-%s", time.Now().UTC().Format("20060102"), codeSuffix())
}

func newOrderCode() string {
	return fmt.Sprintf("ORD-%s-%s", time.Now().UTC().Format("20060102"), codeSuffix())
}

func codeSuffix() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
}
