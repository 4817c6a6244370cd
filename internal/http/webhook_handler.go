package http

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/akarpov/go_shop/internal/payment"
)

// SignatureHeader carries the gateway's HMAC over the webhook payload.
const SignatureHeader = "Gateway-Signature"

const maxWebhookBody = 1 << 20 // 1MB

type WebhookHandler struct {
	svc     CheckoutService
	timeout time.Duration
}

func NewWebhookHandler(svc CheckoutService, timeout time.Duration) *WebhookHandler {
	return &WebhookHandler{
		svc:     svc,
		timeout: timeout,
	}
}

// POST /webhook/payment
//
// 200 for handled events (including no-ops); 400 for bad signatures, which
// the provider will not retry; 500 for transient processing failures,
// which it will.
func (h *WebhookHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "failed to read request body")
		return
	}

	err = h.svc.HandleWebhookEvent(ctx, payload, r.Header.Get(SignatureHeader))
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			respondError(w, http.StatusBadRequest, "invalid_signature", "webhook signature verification failed")
			return
		}
		log.Printf("webhook processing failed: %v", err)
		respondError(w, http.StatusInternalServerError, "processing_failed", "event processing failed")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
