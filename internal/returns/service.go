package returns

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/breadroute/breadroute/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListReturns(ctx context.Context, filter ListFilter) ([]Return, error)
	GetReturn(ctx context.Context, returnID int64) (*Return, error)
}

// Service validates and executes return operations.
type Service struct {
	logger *slog.Logger
	repo   RepositoryPort
}

// NewService builds a Service.
func NewService(logger *slog.Logger, repo RepositoryPort) *Service {
	return &Service{logger: logger, repo: repo}
}

func (s *Service) ListReturns(ctx context.Context, filter ListFilter) ([]Return, error) {
	return s.repo.ListReturns(ctx, filter)
}

func (s *Service) GetReturn(ctx context.Context, returnID int64) (*Return, error) {
	return s.repo.GetReturn(ctx, returnID)
}

// Create writes the return header and its items in one transaction. Items
// without a positive quantity are dropped; a request left with no items is
// rejected before any write.
func (s *Service) Create(ctx context.Context, req CreateRequest) (int64, error) {
	status, err := ParseStatus(req.Status)
	if err != nil {
		return 0, err
	}

	items := make([]ReturnItem, 0, len(req.Items))
	for _, it := range req.Items {
		if it.ProductID > 0 && it.Qty > 0 {
			items = append(items, ReturnItem{ProductID: it.ProductID, Qty: it.Qty, ConditionNote: it.ConditionNote})
		}
	}
	if len(items) == 0 {
		return 0, shared.Validationf("at least one item must have qty > 0")
	}

	returnDate := time.Now().UTC()
	if req.ReturnDate != nil {
		returnDate = *req.ReturnDate
	}

	var returnID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		exists, err := tx.OrderExists(ctx, req.OrderID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: order %d", shared.ErrNotFound, req.OrderID)
		}

		returnID, err = tx.InsertReturn(ctx, req.OrderID, returnDate, req.Reason, status)
		if err != nil {
			return &shared.PersistenceError{Op: "return insert", Err: err}
		}
		for _, it := range items {
			if err := tx.InsertReturnItem(ctx, returnID, it); err != nil {
				return &shared.PersistenceError{Op: "return item insert", Err: err}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("return created",
		slog.Int64("return_id", returnID),
		slog.Int64("order_id", req.OrderID),
		slog.Int("items", len(items)))
	return returnID, nil
}
