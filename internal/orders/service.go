package orders

import (
	"context"
	"log/slog"

	"github.com/breadroute/breadroute/internal/inventory"
	"github.com/breadroute/breadroute/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListOrders(ctx context.Context, filter ListFilter) ([]Order, error)
	GetOrder(ctx context.Context, orderID int64) (*Order, error)
}

// Service owns delivery status transitions and order reads.
type Service struct {
	logger *slog.Logger
	repo   RepositoryPort
}

// NewService builds a Service.
func NewService(logger *slog.Logger, repo RepositoryPort) *Service {
	return &Service{logger: logger, repo: repo}
}

func (s *Service) ListOrders(ctx context.Context, filter ListFilter) ([]Order, error) {
	return s.repo.ListOrders(ctx, filter)
}

func (s *Service) GetOrder(ctx context.Context, orderID int64) (*Order, error) {
	return s.repo.GetOrder(ctx, orderID)
}

// UpdateDeliveryStatus moves an order through the delivery state machine.
// The transition into DELIVERED deducts every line item from factory stock in
// the same transaction; any shortfall rolls back both the deductions and the
// status change. A repeated delivered update is accepted and deducts nothing.
func (s *Service) UpdateDeliveryStatus(ctx context.Context, orderID int64, token string) (OrderStatus, error) {
	next, err := ParseDeliveryStatus(token)
	if err != nil {
		return "", err
	}

	var final OrderStatus
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		order, err := tx.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if order.Status == next {
			final = next
			return nil
		}
		if !order.Status.CanTransitionTo(next) {
			return shared.Validationf("cannot move order %d from %s to %s",
				orderID, order.Status.WireToken(), next.WireToken())
		}

		if next == OrderDelivered {
			items, err := tx.ListItems(ctx, orderID)
			if err != nil {
				return err
			}
			if err := s.deductItems(ctx, tx, items); err != nil {
				return err
			}
		}

		if err := tx.UpdateStatus(ctx, orderID, next); err != nil {
			return err
		}
		final = next
		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("order delivery status updated",
		slog.Int64("order_id", orderID),
		slog.String("status", final.WireToken()))
	return final, nil
}

// deductItems removes each line item's quantity from stock. An item pinned to
// a lot deducts from exactly that lot; anything else drains factory lots FIFO.
func (s *Service) deductItems(ctx context.Context, tx TxRepository, items []OrderItem) error {
	for _, it := range items {
		if it.RequestedQty <= 0 {
			continue
		}
		if it.LotID != nil {
			lot, err := tx.GetLotForUpdate(ctx, *it.LotID)
			if err != nil {
				return err
			}
			ok, err := tx.DeductLot(ctx, lot.ID, it.RequestedQty)
			if err != nil {
				return err
			}
			if !ok {
				return &shared.InsufficientStockError{
					ProductID: it.ProductID,
					LotID:     lot.ID,
					Required:  it.RequestedQty,
				}
			}
			continue
		}
		if err := inventory.DeductFIFO(ctx, tx, it.ProductID, it.RequestedQty); err != nil {
			return err
		}
	}
	return nil
}
