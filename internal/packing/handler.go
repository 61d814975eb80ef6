package packing

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/breadroute/breadroute/internal/platform/httpx"
	"github.com/breadroute/breadroute/internal/shared"
)

// BoxSource resolves a box template by id.
type BoxSource interface {
	GetBoxTemplate(ctx context.Context, id int64) (*BoxTemplate, error)
}

// CargoSource resolves the cargo hold of a vehicle.
type CargoSource interface {
	CargoSpaceFor(ctx context.Context, vehicleID int64) (*CargoSpace, error)
}

// VolumeSource resolves per-unit volumes for a set of products.
type VolumeSource interface {
	UnitVolumesM3(ctx context.Context, productIDs []int64) (map[int64]float64, error)
}

// CapacityRequest asks how a proposed load fits a vehicle.
type CapacityRequest struct {
	VehicleID     int64             `json:"vehicle_id" validate:"required"`
	BoxTemplateID int64             `json:"box_template_id" validate:"required"`
	Items         []CapacityReqItem `json:"items" validate:"required,min=1,dive"`
}

// CapacityReqItem is one product line of a capacity check.
type CapacityReqItem struct {
	ProductID int64 `json:"product_id" validate:"required"`
	Qty       int   `json:"qty" validate:"required,gt=0"`
}

// Handler exposes the capacity calculator over HTTP.
type Handler struct {
	logger    *slog.Logger
	validator *validator.Validate
	boxes     BoxSource
	cargo     CargoSource
	volumes   VolumeSource
}

// NewHandler constructs a capacity handler.
func NewHandler(logger *slog.Logger, boxes BoxSource, cargo CargoSource, volumes VolumeSource) *Handler {
	return &Handler{
		logger:    logger,
		validator: validator.New(),
		boxes:     boxes,
		cargo:     cargo,
		volumes:   volumes,
	}
}

// MountRoutes registers planning routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/capacity", h.computeCapacity)
}

func (h *Handler) computeCapacity(w http.ResponseWriter, r *http.Request) {
	var req CapacityRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.Validationf("invalid request body"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, shared.Validationf("%s", err.Error()))
		return
	}

	ctx := r.Context()

	box, err := h.boxes.GetBoxTemplate(ctx, req.BoxTemplateID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	space, err := h.cargo.CargoSpaceFor(ctx, req.VehicleID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	productIDs := make([]int64, 0, len(req.Items))
	for _, it := range req.Items {
		productIDs = append(productIDs, it.ProductID)
	}
	volumes, err := h.volumes.UnitVolumesM3(ctx, productIDs)
	if err != nil {
		h.logger.Error("resolve product volumes", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	items := make([]LineItem, 0, len(req.Items))
	for _, it := range req.Items {
		vol, ok := volumes[it.ProductID]
		if !ok {
			httpx.RespondError(w, shared.Validationf("unknown product %d", it.ProductID))
			return
		}
		items = append(items, LineItem{Qty: it.Qty, UnitVolumeM3: vol})
	}

	capacity := BranchCapacity(items, box, space)
	if capacity == nil {
		httpx.RespondError(w, shared.Validationf("capacity not computable for the given box and vehicle"))
		return
	}
	httpx.JSON(w, http.StatusOK, capacity)
}
