package http

import (
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/zvMateo/Maikekai-surf/internal/payment"
	"github.com/zvMateo/Maikekai-surf/internal/webhook"
)

const maxWebhookBodySize = 1 << 16 // 64KB, matches Stripe's payload cap

type WebhookHandler struct {
	handler *webhook.Handler
	logger  *zap.Logger
}

func NewWebhookHandler(handler *webhook.Handler, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		handler: handler,
		logger:  logger,
	}
}

// POST /api/v1/webhooks/payment
//
// 2xx acknowledges the delivery (including verified-but-irrelevant event
// types), 4xx rejects a bad signature for good, 413 tells the sender the
// payload exceeded the cap, 5xx asks the gateway to redeliver after a
// persistence failure.
func (h *WebhookHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodySize))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "webhook payload exceeds size limit")
			return
		}
		respondError(w, http.StatusBadRequest, "invalid_request", "could not read request body")
		return
	}

	signature := r.Header.Get("Stripe-Signature")

	if err := h.handler.HandleEvent(r.Context(), payload, signature); err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			respondError(w, http.StatusBadRequest, "invalid_signature", "webhook signature verification failed")
			return
		}
		h.logger.Error("webhook handling failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal_error", "event processing failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"received": true})
}
