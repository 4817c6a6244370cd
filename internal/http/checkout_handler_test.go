package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/akarpov/go_shop/internal/checkout"
	"github.com/akarpov/go_shop/internal/domain"
)

// --- Mock ---

type CheckoutServiceMock struct {
	startResult   *checkout.CheckoutResult
	confirmResult *checkout.ConfirmResult
	orders        []*domain.Order
	order         *domain.Order
	stats         *checkout.Stats
	err           error

	webhookErr error
	gotPayload []byte
	gotSig     string
}

func (m *CheckoutServiceMock) StartCheckout(_ context.Context, _ string) (*checkout.CheckoutResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.startResult, nil
}

func (m *CheckoutServiceMock) ConfirmPayment(_ context.Context, _ uuid.UUID, _ string) (*checkout.ConfirmResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.confirmResult, nil
}

func (m *CheckoutServiceMock) HandleWebhookEvent(_ context.Context, rawPayload []byte, sigHeader string) error {
	m.gotPayload = rawPayload
	m.gotSig = sigHeader
	return m.webhookErr
}

func (m *CheckoutServiceMock) ListOrders(_ context.Context, _ string) ([]*domain.Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.orders, nil
}

func (m *CheckoutServiceMock) GetOrder(_ context.Context, _ uuid.UUID, _ string, _ bool) (*domain.Order, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.order, nil
}

func (m *CheckoutServiceMock) GetStats(_ context.Context) (*checkout.Stats, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.stats, nil
}

// --- helpers ---

func withUser(r *http.Request, userID string) *http.Request {
	ctx := context.WithValue(r.Context(), "user_id", userID)
	return r.WithContext(ctx)
}

func withOrderID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("order_id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// --- StartCheckout tests ---

func TestStartCheckout_Created(t *testing.T) {
	orderID := uuid.New()
	mock := &CheckoutServiceMock{
		startResult: &checkout.CheckoutResult{
			OrderID:     orderID,
			RedirectURL: "https://pay.example.com/cs_1",
		},
	}

	handler := NewCheckoutHandler(mock, 5*time.Second)
	recorder := httptest.NewRecorder()
	request := withUser(httptest.NewRequest("POST", "/api/v1/checkout", nil), "user-1")

	handler.StartCheckout(recorder, request)

	if recorder.Code != http.StatusCreated {
		t.Errorf("expected %d, got %d", http.StatusCreated, recorder.Code)
	}

	var response StartCheckoutResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.OrderID != orderID.String() {
		t.Errorf("expected order_id '%s', got '%s'", orderID, response.OrderID)
	}
	if response.CheckoutURL != "https://pay.example.com/cs_1" {
		t.Errorf("unexpected checkout_url '%s'", response.CheckoutURL)
	}
}

func TestStartCheckout_Unauthorized(t *testing.T) {
	handler := NewCheckoutHandler(&CheckoutServiceMock{}, 5*time.Second)
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/api/v1/checkout", nil)

	handler.StartCheckout(recorder, request)

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("expected %d, got %d", http.StatusUnauthorized, recorder.Code)
	}
}

func TestStartCheckout_EmptyCart(t *testing.T) {
	mock := &CheckoutServiceMock{err: checkout.ErrEmptyCart}

	handler := NewCheckoutHandler(mock, 5*time.Second)
	recorder := httptest.NewRecorder()
	request := withUser(httptest.NewRequest("POST", "/api/v1/checkout", nil), "user-1")

	handler.StartCheckout(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected %d, got %d", http.StatusBadRequest, recorder.Code)
	}

	var response ErrorResponse
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Code != "empty_cart" {
		t.Errorf("expected code 'empty_cart', got '%s'", response.Code)
	}
}

// --- ConfirmPayment tests ---

func TestConfirmPayment_Completed(t *testing.T) {
	orderID := uuid.New()
	mock := &CheckoutServiceMock{
		confirmResult: &checkout.ConfirmResult{OrderID: orderID, Completed: true},
	}

	handler := NewCheckoutHandler(mock, 5*time.Second)
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/api/v1/orders/"+orderID.String()+"/confirm?session_id=cs_1", nil)
	request = withOrderID(withUser(request, "user-1"), orderID.String())

	handler.ConfirmPayment(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Errorf("expected %d, got %d", http.StatusOK, recorder.Code)
	}

	var response ConfirmPaymentResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !response.Completed {
		t.Error("expected completed true")
	}
}

func TestConfirmPayment_InvalidOrderID(t *testing.T) {
	handler := NewCheckoutHandler(&CheckoutServiceMock{}, 5*time.Second)
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/api/v1/orders/not-a-uuid/confirm", nil)
	request = withOrderID(withUser(request, "user-1"), "not-a-uuid")

	handler.ConfirmPayment(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestConfirmPayment_OrderNotFound(t *testing.T) {
	orderID := uuid.New()
	mock := &CheckoutServiceMock{err: checkout.ErrOrderNotFound}

	handler := NewCheckoutHandler(mock, 5*time.Second)
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/api/v1/orders/"+orderID.String()+"/confirm", nil)
	request = withOrderID(withUser(request, "user-1"), orderID.String())

	handler.ConfirmPayment(recorder, request)

	if recorder.Code != http.StatusNotFound {
		t.Errorf("expected %d, got %d", http.StatusNotFound, recorder.Code)
	}
}
