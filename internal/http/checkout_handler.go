package http

import (
	"context"
	"net/http"
	"time"

	"github.com/akarpov/go_shop/internal/checkout"
	"github.com/akarpov/go_shop/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// CheckoutService is the slice of the orchestrator the HTTP layer uses.
type CheckoutService interface {
	StartCheckout(ctx context.Context, userID string) (*checkout.CheckoutResult, error)
	ConfirmPayment(ctx context.Context, orderID uuid.UUID, sessionID string) (*checkout.ConfirmResult, error)
	HandleWebhookEvent(ctx context.Context, rawPayload []byte, sigHeader string) error
	ListOrders(ctx context.Context, userID string) ([]*domain.Order, error)
	GetOrder(ctx context.Context, orderID uuid.UUID, userID string, admin bool) (*domain.Order, error)
	GetStats(ctx context.Context) (*checkout.Stats, error)
}

type CheckoutHandler struct {
	svc     CheckoutService
	timeout time.Duration
}

func NewCheckoutHandler(svc CheckoutService, timeout time.Duration) *CheckoutHandler {
	return &CheckoutHandler{
		svc:     svc,
		timeout: timeout,
	}
}

type StartCheckoutResponseDTO struct {
	OrderID     string `json:"order_id"`
	CheckoutURL string `json:"checkout_url"`
}

type ConfirmPaymentResponseDTO struct {
	OrderID   string `json:"order_id"`
	Completed bool   `json:"completed"`
}

// POST /api/v1/checkout
func (h *CheckoutHandler) StartCheckout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	result, err := h.svc.StartCheckout(ctx, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, StartCheckoutResponseDTO{
		OrderID:     result.OrderID.String(),
		CheckoutURL: result.RedirectURL,
	})
}

// POST /api/v1/orders/{order_id}/confirm?session_id=...
func (h *CheckoutHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	userID := getUserIDFromContext(r.Context())
	if userID == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing user authentication")
		return
	}

	orderID, err := uuid.Parse(chi.URLParam(r, "order_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_order_id", "order_id must be a UUID")
		return
	}

	result, err := h.svc.ConfirmPayment(ctx, orderID, r.URL.Query().Get("session_id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, ConfirmPaymentResponseDTO{
		OrderID:   result.OrderID.String(),
		Completed: result.Completed,
	})
}
