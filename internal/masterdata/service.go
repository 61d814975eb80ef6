package masterdata

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Service exposes reference data lookups to planners and other modules.
type Service struct {
	repo *Repository
}

// NewService constructs a masterdata service.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{repo: NewRepository(pool)}
}

func (s *Service) ListProducts(ctx context.Context, onlyActive bool) ([]Product, error) {
	return s.repo.ListProducts(ctx, onlyActive)
}

func (s *Service) GetProduct(ctx context.Context, id int64) (*Product, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *Service) ListBranches(ctx context.Context, category *BranchCategory) ([]Branch, error) {
	return s.repo.ListBranches(ctx, category)
}

func (s *Service) ListRetailersForDC(ctx context.Context, dcBranchID int64) ([]Branch, error) {
	return s.repo.ListRetailersForDC(ctx, dcBranchID)
}

func (s *Service) ListRoutes(ctx context.Context) ([]Route, error) {
	return s.repo.ListRoutes(ctx)
}

func (s *Service) ListRouteStops(ctx context.Context, routeID int64) ([]RouteStop, error) {
	return s.repo.ListRouteStops(ctx, routeID)
}

func (s *Service) ListBoxTemplates(ctx context.Context) ([]BoxTemplate, error) {
	return s.repo.ListBoxTemplates(ctx)
}

func (s *Service) GetBoxTemplate(ctx context.Context, id int64) (*BoxTemplate, error) {
	return s.repo.GetBoxTemplate(ctx, id)
}

func (s *Service) ListEmployees(ctx context.Context, jobTitle string) ([]Employee, error) {
	return s.repo.ListEmployees(ctx, jobTitle)
}

func (s *Service) BranchInsights(ctx context.Context, branchIDs []int64) ([]BranchInsight, error) {
	return s.repo.BranchInsights(ctx, branchIDs)
}
