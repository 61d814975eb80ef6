package inventory

import (
	"context"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListStocks(ctx context.Context, locationID int64) ([]StockSummary, error)
	ListLots(ctx context.Context, productID int64) ([]StockLot, error)
	FactoryStock(ctx context.Context, productID int64) (int64, error)
}

// Service coordinates stock reads and standalone deductions.
type Service struct {
	repo RepositoryPort
}

// NewService builds a Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListStocks(ctx context.Context, locationID int64) ([]StockSummary, error) {
	return s.repo.ListStocks(ctx, locationID)
}

func (s *Service) ListLots(ctx context.Context, productID int64) ([]StockLot, error) {
	return s.repo.ListLots(ctx, productID)
}

func (s *Service) FactoryStock(ctx context.Context, productID int64) (int64, error) {
	return s.repo.FactoryStock(ctx, productID)
}

// Deduct removes stock in its own transaction, FIFO by manufacturing date.
// Order delivery goes through the orders transaction instead; this path serves
// manual corrections.
func (s *Service) Deduct(ctx context.Context, deductions []Deduction) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return DeductAll(ctx, tx, deductions)
	})
}
