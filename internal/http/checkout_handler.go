package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/zvMateo/Maikekai-surf/internal/checkout"
)

type CheckoutHandler struct {
	builder *checkout.Builder
	logger  *zap.Logger
}

func NewCheckoutHandler(builder *checkout.Builder, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		builder: builder,
		logger:  logger,
	}
}

type CreateCheckoutRequestDTO struct {
	Items    []checkout.LineItem `json:"items"`
	Email    string              `json:"email,omitempty"`
	Metadata map[string]string   `json:"metadata,omitempty"`
}

type CreateCheckoutResponseDTO struct {
	URL string `json:"url"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateCheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	// The session context, when present, travels as the client reference
	// so the confirmation flow can attribute the order and clear the cart.
	clientReferenceID := getSessionIDFromContext(r.Context())

	url, err := h.builder.CreateSession(r.Context(), req.Items, req.Email, clientReferenceID, req.Metadata)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrNoItems),
			errors.Is(err, checkout.ErrInvalidAmount),
			errors.Is(err, checkout.ErrInvalidQuantity):
			respondError(w, http.StatusBadRequest, "invalid_line_items", err.Error())
		default:
			h.logger.Error("failed to create checkout session", zap.Error(err))
			respondError(w, http.StatusInternalServerError, "internal_error", "something went wrong, try again")
		}
		return
	}

	respondJSON(w, http.StatusOK, CreateCheckoutResponseDTO{URL: url})
}
