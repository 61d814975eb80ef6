package fleet

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Service exposes fleet lookups.
type Service struct {
	repo *Repository
}

// NewService constructs a fleet service.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{repo: NewRepository(pool)}
}

func (s *Service) ListVehicles(ctx context.Context, onlyAvailable bool) ([]Vehicle, error) {
	return s.repo.ListVehicles(ctx, onlyAvailable)
}

func (s *Service) GetVehicle(ctx context.Context, id int64) (*Vehicle, error) {
	return s.repo.GetVehicle(ctx, id)
}

func (s *Service) ListVehicleTypes(ctx context.Context) ([]VehicleType, error) {
	return s.repo.ListVehicleTypes(ctx)
}
