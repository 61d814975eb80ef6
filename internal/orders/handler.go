package orders

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/breadroute/breadroute/internal/platform/httpx"
	"github.com/breadroute/breadroute/internal/shared"
)

// Handler wires HTTP endpoints for orders.
type Handler struct {
	logger    *slog.Logger
	validator *validator.Validate
	service   *Service
}

// NewHandler constructs an orders handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, validator: validator.New(), service: service}
}

// MountRoutes registers order routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listOrders)
	r.Get("/export", h.exportOrders)
	r.Get("/{id}", h.getOrder)
	r.Patch("/{id}/delivery-status", h.updateDeliveryStatus)
}

type deliveryStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handler) updateDeliveryStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.Validationf("invalid order id"))
		return
	}
	var req deliveryStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.Validationf("invalid request body"))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, shared.Validationf("status is required"))
		return
	}

	status, err := h.service.UpdateDeliveryStatus(r.Context(), orderID, req.Status)
	if err != nil {
		h.logger.Warn("delivery status update rejected",
			slog.Int64("order_id", orderID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"order_id":        orderID,
		"delivery_status": status.WireToken(),
	})
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out, err := h.service.ListOrders(r.Context(), filter)
	if err != nil {
		h.logger.Error("list orders", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.Validationf("invalid order id"))
		return
	}
	order, err := h.service.GetOrder(r.Context(), orderID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

// exportOrders streams the current order listing as CSV.
func (h *Handler) exportOrders(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFromQuery(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out, err := h.service.ListOrders(r.Context(), filter)
	if err != nil {
		h.logger.Error("export orders", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="orders-%s.csv"`, time.Now().UTC().Format("20060102")))

	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"order_id", "code", "shipment_id", "branch", "status", "created_at"})
	for _, o := range out {
		_ = cw.Write([]string{
			strconv.FormatInt(o.ID, 10),
			o.Code,
			strconv.FormatInt(o.ShipmentID, 10),
			o.BranchName,
			o.Status.WireToken(),
			o.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	cw.Flush()
}

func filterFromQuery(r *http.Request) (ListFilter, error) {
	var filter ListFilter
	q := r.URL.Query()
	if raw := q.Get("shipment_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, shared.Validationf("invalid shipment id")
		}
		filter.ShipmentID = id
	}
	if raw := q.Get("branch_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return filter, shared.Validationf("invalid branch id")
		}
		filter.BranchID = id
	}
	if raw := q.Get("status"); raw != "" {
		status, err := ParseDeliveryStatus(raw)
		if err != nil {
			return filter, err
		}
		filter.Status = status
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return filter, shared.Validationf("invalid limit")
		}
		filter.Limit = n
	}
	return filter, nil
}
