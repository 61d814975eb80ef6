package masterdata

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/breadroute/breadroute/internal/shared"
)

// Repository provides PostgreSQL backed reads over reference data.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListProducts returns products, optionally limited to active ones.
func (r *Repository) ListProducts(ctx context.Context, onlyActive bool) ([]Product, error) {
	query := `
		SELECT product_id, name, unit_price,
		       COALESCE(width_cm, 0), COALESCE(length_cm, 0), COALESCE(height_cm, 0),
		       is_active
		FROM products
	`
	if onlyActive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.UnitPrice, &p.WidthCm, &p.LengthCm, &p.HeightCm, &p.IsActive); err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// GetProduct retrieves a single product by id.
func (r *Repository) GetProduct(ctx context.Context, id int64) (*Product, error) {
	query := `
		SELECT product_id, name, unit_price,
		       COALESCE(width_cm, 0), COALESCE(length_cm, 0), COALESCE(height_cm, 0),
		       is_active
		FROM products
		WHERE product_id = $1
	`
	var p Product
	err := r.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.UnitPrice, &p.WidthCm, &p.LengthCm, &p.HeightCm, &p.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// ListBranches returns branches, optionally filtered by category.
func (r *Repository) ListBranches(ctx context.Context, category *BranchCategory) ([]Branch, error) {
	query := `
		SELECT branch_id, name, category, latitude, longitude, parent_branch_id
		FROM branches
	`
	args := []any{}
	if category != nil {
		query += ` WHERE category = $1`
		args = append(args, string(*category))
	}
	query += ` ORDER BY branch_id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var branches []Branch
	for rows.Next() {
		var b Branch
		if err := rows.Scan(&b.ID, &b.Name, &b.Category, &b.Latitude, &b.Longitude, &b.ParentBranchID); err != nil {
			return nil, err
		}
		branches = append(branches, b)
	}
	return branches, rows.Err()
}

// ListRetailersForDC returns the retailer branches supplied by a DC.
func (r *Repository) ListRetailersForDC(ctx context.Context, dcBranchID int64) ([]Branch, error) {
	query := `
		SELECT branch_id, name, category, latitude, longitude, parent_branch_id
		FROM branches
		WHERE parent_branch_id = $1 AND category = $2
		ORDER BY name
	`
	rows, err := r.pool.Query(ctx, query, dcBranchID, string(CategoryRetailer))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var branches []Branch
	for rows.Next() {
		var b Branch
		if err := rows.Scan(&b.ID, &b.Name, &b.Category, &b.Latitude, &b.Longitude, &b.ParentBranchID); err != nil {
			return nil, err
		}
		branches = append(branches, b)
	}
	return branches, rows.Err()
}

// ListRoutes returns all planned routes.
func (r *Repository) ListRoutes(ctx context.Context) ([]Route, error) {
	rows, err := r.pool.Query(ctx, `SELECT route_id, name FROM routes ORDER BY route_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []Route
	for rows.Next() {
		var rt Route
		if err := rows.Scan(&rt.ID, &rt.Name); err != nil {
			return nil, err
		}
		routes = append(routes, rt)
	}
	return routes, rows.Err()
}

// ListRouteStops returns the ordered stops of a route.
func (r *Repository) ListRouteStops(ctx context.Context, routeID int64) ([]RouteStop, error) {
	query := `
		SELECT rs.route_id, rs.branch_id, b.name, rs.stop_sequence, rs.est_travel_mins
		FROM route_stops rs
		JOIN branches b ON b.branch_id = rs.branch_id
		WHERE rs.route_id = $1
		ORDER BY rs.stop_sequence
	`
	rows, err := r.pool.Query(ctx, query, routeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stops []RouteStop
	for rows.Next() {
		var s RouteStop
		if err := rows.Scan(&s.RouteID, &s.BranchID, &s.BranchName, &s.StopSequence, &s.EstTravelMins); err != nil {
			return nil, err
		}
		stops = append(stops, s)
	}
	return stops, rows.Err()
}

// RouteExists reports whether a route id is known.
func (r *Repository) RouteExists(ctx context.Context, routeID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM routes WHERE route_id = $1)`, routeID).Scan(&exists)
	return exists, err
}

// ListBoxTemplates returns the packing container catalogue.
func (r *Repository) ListBoxTemplates(ctx context.Context) ([]BoxTemplate, error) {
	query := `
		SELECT box_template_id, name, width_cm, length_cm, height_cm
		FROM box_templates
		ORDER BY box_template_id
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var boxes []BoxTemplate
	for rows.Next() {
		var b BoxTemplate
		if err := rows.Scan(&b.ID, &b.Name, &b.WidthCm, &b.LengthCm, &b.HeightCm); err != nil {
			return nil, err
		}
		boxes = append(boxes, b)
	}
	return boxes, rows.Err()
}

// GetBoxTemplate retrieves one box template.
func (r *Repository) GetBoxTemplate(ctx context.Context, id int64) (*BoxTemplate, error) {
	query := `
		SELECT box_template_id, name, width_cm, length_cm, height_cm
		FROM box_templates
		WHERE box_template_id = $1
	`
	var b BoxTemplate
	err := r.pool.QueryRow(ctx, query, id).Scan(&b.ID, &b.Name, &b.WidthCm, &b.LengthCm, &b.HeightCm)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// ListEmployees returns employees, optionally filtered by job title.
func (r *Repository) ListEmployees(ctx context.Context, jobTitle string) ([]Employee, error) {
	query := `
		SELECT e.employee_id, e.firstname, e.lastname, j.title
		FROM employees e
		JOIN job_descriptions j ON j.job_id = e.job_id
	`
	args := []any{}
	if jobTitle != "" {
		query += ` WHERE LOWER(j.title) = LOWER($1)`
		args = append(args, jobTitle)
	}
	query += ` ORDER BY e.lastname, e.firstname`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.ID, &e.FirstName, &e.LastName, &e.JobTitle); err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// BranchInsights aggregates trailing 7-day demand per branch/product.
func (r *Repository) BranchInsights(ctx context.Context, branchIDs []int64) ([]BranchInsight, error) {
	query := `
		SELECT o.customer_branch_id, oi.product_id, SUM(oi.requested_qty)
		FROM orders o
		JOIN order_items oi ON oi.order_id = o.order_id
		WHERE o.customer_branch_id = ANY($1)
		  AND o.created_at >= NOW() - INTERVAL '7 days'
		GROUP BY o.customer_branch_id, oi.product_id
	`
	rows, err := r.pool.Query(ctx, query, branchIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var insights []BranchInsight
	for rows.Next() {
		var in BranchInsight
		if err := rows.Scan(&in.BranchID, &in.ProductID, &in.Sales7d); err != nil {
			return nil, err
		}
		insights = append(insights, in)
	}
	return insights, rows.Err()
}
