package http

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/zvMateo/Maikekai-surf/internal/repository"
)

type OrdersHandler struct {
	orders repository.OrderRepository
	logger *zap.Logger
}

func NewOrdersHandler(orders repository.OrderRepository, logger *zap.Logger) *OrdersHandler {
	return &OrdersHandler{
		orders: orders,
		logger: logger,
	}
}

type OrderDTO struct {
	ID                string    `json:"id"`
	TotalAmount       int64     `json:"total_amount"`
	Currency          string    `json:"currency"`
	Status            string    `json:"status"`
	CheckoutSessionID string    `json:"checkout_session_id"`
	CreatedAt         time.Time `json:"created_at"`
}

// ListOrders serves GET /api/v1/orders, the read path for the
// storefront's bookings page.
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "missing session context")
		return
	}

	orders, err := h.orders.ListOrdersByUserID(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("failed to list orders", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "something went wrong, try again")
		return
	}

	dtos := make([]OrderDTO, 0, len(orders))
	for _, order := range orders {
		dtos = append(dtos, OrderDTO{
			ID:                order.ID.String(),
			TotalAmount:       order.TotalAmount,
			Currency:          order.Currency,
			Status:            string(order.Status),
			CheckoutSessionID: order.CheckoutSessionID,
			CreatedAt:         order.CreatedAt,
		})
	}

	respondJSON(w, http.StatusOK, map[string][]OrderDTO{"orders": dtos})
}
