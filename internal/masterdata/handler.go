package masterdata

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/breadroute/breadroute/internal/platform/httpx"
	"github.com/breadroute/breadroute/internal/shared"
)

// Handler wires HTTP endpoints for reference data.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a masterdata handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers masterdata routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/products", h.listProducts)
	r.Get("/branches", h.listBranches)
	r.Get("/branches/insights", h.branchInsights)
	r.Get("/branches/{id}/retailers", h.listRetailers)
	r.Get("/branch-categories", h.listBranchCategories)
	r.Get("/routes", h.listRoutes)
	r.Get("/routes/{id}/stops", h.listRouteStops)
	r.Get("/box-templates", h.listBoxTemplates)
	r.Get("/employees", h.listEmployees)
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	onlyActive := r.URL.Query().Get("active") == "1" || r.URL.Query().Get("active") == "true"
	products, err := h.service.ListProducts(r.Context(), onlyActive)
	if err != nil {
		h.logger.Error("list products", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, products)
}

func (h *Handler) listBranches(w http.ResponseWriter, r *http.Request) {
	var category *BranchCategory
	if raw := r.URL.Query().Get("category"); raw != "" {
		c := BranchCategory(strings.ToUpper(raw))
		if !c.IsValid() {
			httpx.RespondError(w, shared.Validationf("unknown branch category %q", raw))
			return
		}
		category = &c
	}
	branches, err := h.service.ListBranches(r.Context(), category)
	if err != nil {
		h.logger.Error("list branches", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, branches)
}

func (h *Handler) branchInsights(w http.ResponseWriter, r *http.Request) {
	branchIDs, err := parseIDList(r.URL.Query().Get("branch_ids"))
	if err != nil || len(branchIDs) == 0 {
		httpx.RespondError(w, shared.Validationf("branch_ids query parameter required"))
		return
	}
	insights, err := h.service.BranchInsights(r.Context(), branchIDs)
	if err != nil {
		h.logger.Error("branch insights", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, insights)
}

func (h *Handler) listRetailers(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.Validationf("invalid branch id"))
		return
	}
	branches, err := h.service.ListRetailersForDC(r.Context(), id)
	if err != nil {
		h.logger.Error("list retailers", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, branches)
}

func (h *Handler) listBranchCategories(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, []BranchCategory{
		CategoryFactory, CategoryDistributionCenter, CategoryRetailer,
	})
}

func (h *Handler) listRoutes(w http.ResponseWriter, r *http.Request) {
	routes, err := h.service.ListRoutes(r.Context())
	if err != nil {
		h.logger.Error("list routes", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, routes)
}

func (h *Handler) listRouteStops(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.Validationf("invalid route id"))
		return
	}
	stops, err := h.service.ListRouteStops(r.Context(), id)
	if err != nil {
		h.logger.Error("list route stops", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stops)
}

func (h *Handler) listBoxTemplates(w http.ResponseWriter, r *http.Request) {
	boxes, err := h.service.ListBoxTemplates(r.Context())
	if err != nil {
		h.logger.Error("list box templates", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, boxes)
}

func (h *Handler) listEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.service.ListEmployees(r.Context(), r.URL.Query().Get("job_title"))
	if err != nil {
		h.logger.Error("list employees", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, employees)
}

func parseIDList(raw string) ([]int64, error) {
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
