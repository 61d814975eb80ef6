package allocation

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/breadroute/breadroute/internal/platform/httpx"
	"github.com/breadroute/breadroute/internal/shared"
)

// Handler exposes the allocation engine over HTTP.
type Handler struct {
	logger    *slog.Logger
	validator *validator.Validate
	engine    *Engine
}

// NewHandler constructs an allocation handler.
func NewHandler(logger *slog.Logger, engine *Engine) *Handler {
	return &Handler{logger: logger, validator: validator.New(), engine: engine}
}

// MountRoutes registers allocation routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/allocations", h.calculate)
}

type calculateRequest struct {
	BranchIDs         []int64 `json:"branch_ids" validate:"required,min=1,dive,gt=0"`
	ProductIDs        []int64 `json:"product_ids" validate:"omitempty,dive,gt=0"`
	VehicleCapacityM3 float64 `json:"vehicle_capacity_m3" validate:"omitempty,gt=0"`
}

func (h *Handler) calculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.Validationf("invalid request body"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, shared.Validationf("%s", err.Error()))
		return
	}

	allocations, err := h.engine.Calculate(r.Context(), req.BranchIDs, req.ProductIDs, req.VehicleCapacityM3)
	if err != nil {
		h.logger.Error("allocation calculation failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"allocations": allocations})
}
