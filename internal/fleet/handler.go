package fleet

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/breadroute/breadroute/internal/platform/httpx"
	"github.com/breadroute/breadroute/internal/shared"
)

// Handler wires HTTP endpoints for the fleet.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a fleet handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers fleet routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/vehicles", h.listVehicles)
	r.Get("/vehicles/{id}", h.getVehicle)
	r.Get("/vehicle-types", h.listVehicleTypes)
}

func (h *Handler) listVehicles(w http.ResponseWriter, r *http.Request) {
	available := r.URL.Query().Get("available") == "1" || r.URL.Query().Get("available") == "true"
	vehicles, err := h.service.ListVehicles(r.Context(), available)
	if err != nil {
		h.logger.Error("list vehicles", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, vehicles)
}

func (h *Handler) getVehicle(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.Validationf("invalid vehicle id"))
		return
	}
	vehicle, err := h.service.GetVehicle(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, vehicle)
}

func (h *Handler) listVehicleTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.service.ListVehicleTypes(r.Context())
	if err != nil {
		h.logger.Error("list vehicle types", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, types)
}
