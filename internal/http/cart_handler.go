package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/zvMateo/Maikekai-surf/internal/booking"
	"github.com/zvMateo/Maikekai-surf/internal/cart"
	"github.com/zvMateo/Maikekai-surf/internal/domain"
)

type CartHandler struct {
	carts        *cart.Service
	orchestrator *booking.Orchestrator
	logger       *zap.Logger
}

func NewCartHandler(carts *cart.Service, orchestrator *booking.Orchestrator, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		carts:        carts,
		orchestrator: orchestrator,
		logger:       logger,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
	VariantID string `json:"variant_id,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
	Persons   int    `json:"persons,omitempty"`
	Quantity  int    `json:"quantity"`
}

type CartResponseDTO struct {
	Items []domain.CartItem `json:"items"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "missing cart session context")
		return
	}

	items, err := h.carts.List(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("failed to list cart", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "something went wrong, try again")
		return
	}

	respondJSON(w, http.StatusOK, CartResponseDTO{Items: items})
}

// AddItem runs the availability-checked add: the cart is only mutated
// once the availability checker accepts the candidate booking.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "missing cart session context")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	if req.Quantity < 0 || req.Quantity > 99 {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be between 1 and 99")
		return
	}

	item := domain.CartItem{
		ProductID: req.ProductID,
		VariantID: req.VariantID,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Persons:   req.Persons,
		Quantity:  req.Quantity,
	}

	added, err := h.orchestrator.AddBookingToCart(r.Context(), sessionID, item)
	if err != nil {
		h.logger.Error("failed to add booking to cart", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "something went wrong, try again")
		return
	}
	if !added {
		respondError(w, http.StatusConflict, "no_availability", "no availability for the selected dates")
		return
	}

	items, err := h.carts.List(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("failed to list cart", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "something went wrong, try again")
		return
	}

	respondJSON(w, http.StatusCreated, CartResponseDTO{Items: items})
}

func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "missing cart session context")
		return
	}

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}
	variantID := r.URL.Query().Get("variant_id")

	if err := h.carts.Remove(r.Context(), sessionID, productID, variantID); err != nil {
		h.logger.Error("failed to remove cart item", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "something went wrong, try again")
		return
	}

	items, err := h.carts.List(r.Context(), sessionID)
	if err != nil {
		h.logger.Error("failed to list cart", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "something went wrong, try again")
		return
	}

	respondJSON(w, http.StatusOK, CartResponseDTO{Items: items})
}

func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	sessionID := getSessionIDFromContext(r.Context())
	if sessionID == "" {
		respondError(w, http.StatusBadRequest, "missing_session", "missing cart session context")
		return
	}

	if err := h.carts.Clear(r.Context(), sessionID); err != nil {
		h.logger.Error("failed to clear cart", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "something went wrong, try again")
		return
	}

	respondJSON(w, http.StatusOK, CartResponseDTO{Items: []domain.CartItem{}})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Status is already committed, an encode failure here is unrecoverable.
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:   message,
		Code:    code,
		Details: "",
	})
}
