package inventory

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/breadroute/breadroute/internal/platform/httpx"
	"github.com/breadroute/breadroute/internal/shared"
)

// Handler wires HTTP endpoints for stock visibility.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs an inventory handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/stocks", h.listStocks)
	r.Post("/stocks/deduct", h.deduct)
	r.Get("/products/{id}/lots", h.listLots)
	r.Get("/products/{id}/factory-stock", h.factoryStock)
}

func (h *Handler) listStocks(w http.ResponseWriter, r *http.Request) {
	var locationID int64
	if raw := r.URL.Query().Get("location_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.RespondError(w, shared.Validationf("invalid location id"))
			return
		}
		locationID = id
	}
	stocks, err := h.service.ListStocks(r.Context(), locationID)
	if err != nil {
		h.logger.Error("list stocks", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stocks)
}

type deductRequest struct {
	Deductions []Deduction `json:"deductions"`
}

// deduct applies manual stock corrections, FIFO across factory lots. Delivery
// deductions do not pass through here; they ride the orders transaction.
func (h *Handler) deduct(w http.ResponseWriter, r *http.Request) {
	var req deductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.Validationf("invalid request body"))
		return
	}
	if len(req.Deductions) == 0 {
		httpx.RespondError(w, shared.Validationf("at least one deduction is required"))
		return
	}
	for _, d := range req.Deductions {
		if d.ProductID <= 0 || d.Qty <= 0 {
			httpx.RespondError(w, shared.Validationf("deductions need a product and a positive qty"))
			return
		}
	}
	if err := h.service.Deduct(r.Context(), req.Deductions); err != nil {
		h.logger.Warn("manual stock deduction rejected", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deducted": len(req.Deductions)})
}

func (h *Handler) listLots(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.Validationf("invalid product id"))
		return
	}
	lots, err := h.service.ListLots(r.Context(), productID)
	if err != nil {
		h.logger.Error("list lots", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, lots)
}

// factoryStock reports what the factory can still ship for one product.
func (h *Handler) factoryStock(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, shared.Validationf("invalid product id"))
		return
	}
	total, err := h.service.FactoryStock(r.Context(), productID)
	if err != nil {
		h.logger.Error("factory stock", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"product_id": productID, "factory_stock": total})
}
