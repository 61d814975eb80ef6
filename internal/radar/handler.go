package radar

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/breadroute/breadroute/internal/platform/httpx"
)

// Handler exposes the live-map endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a radar handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers radar routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/branches", h.branches)
	r.Get("/cars", h.cars)
}

func (h *Handler) branches(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Snapshot(r.Context())
	if err != nil {
		h.logger.Error("radar snapshot", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, snap.Branches)
}

func (h *Handler) cars(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Snapshot(r.Context())
	if err != nil {
		h.logger.Error("radar snapshot", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, snap.Cars)
}
