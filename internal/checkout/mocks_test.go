package checkout

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/akarpov/go_shop/internal/cart"
	"github.com/akarpov/go_shop/internal/catalog"
	"github.com/akarpov/go_shop/internal/domain"
	"github.com/akarpov/go_shop/internal/orderstore"
	"github.com/akarpov/go_shop/internal/payment"
	"github.com/akarpov/go_shop/internal/publisher"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const testWebhookSecret = "whsec_test_secret"

// MockGateway implements payment.Client for testing
type MockGateway struct {
	CreatedRequest *payment.CreateSessionRequest // Captures the request passed to CreateCheckoutSession
	Session        *payment.CheckoutSession
	CreateErr      error
	SessionErr     error
	Payment        *payment.Payment
	PaymentErr     error
}

func (m *MockGateway) CreateCheckoutSession(_ context.Context, req payment.CreateSessionRequest) (*payment.CheckoutSession, error) {
	m.CreatedRequest = &req
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	return m.Session, nil
}

func (m *MockGateway) GetCheckoutSession(_ context.Context, _ string) (*payment.CheckoutSession, error) {
	if m.SessionErr != nil {
		return nil, m.SessionErr
	}
	return m.Session, nil
}

func (m *MockGateway) GetPayment(_ context.Context, _ string) (*payment.Payment, error) {
	if m.PaymentErr != nil {
		return nil, m.PaymentErr
	}
	return m.Payment, nil
}

// MockPublisher implements publisher.Publisher for testing. Publishing
// happens on a background goroutine, so access is synchronized.
type MockPublisher struct {
	mu     sync.Mutex
	events []publisher.OrderEvent
}

func (m *MockPublisher) Publish(_ context.Context, event publisher.OrderEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *MockPublisher) Close() error {
	return nil
}

func (m *MockPublisher) Events() []publisher.OrderEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]publisher.OrderEvent(nil), m.events...)
}

type testDeps struct {
	orders   *orderstore.MemoryRepository
	products *catalog.MemoryStore
	carts    *cart.MemoryStore
	gateway  *MockGateway
}

// newTestService wires a Service against in-memory stores and a mock gateway
func newTestService(gateway *MockGateway) (*Service, *testDeps) {
	deps := &testDeps{
		orders:   orderstore.NewMemoryRepository(),
		products: catalog.NewMemoryStore(),
		carts:    cart.NewMemoryStore(),
		gateway:  gateway,
	}
	svc := NewService(deps.orders, deps.products, deps.carts, gateway, Config{
		BaseURL:       "http://shop.local",
		Currency:      "usd",
		WebhookSecret: testWebhookSecret,
	})
	return svc, deps
}

func seedProduct(t *testing.T, deps *testDeps, name, price string, stock int) string {
	t.Helper()
	id, err := deps.products.CreateProduct(context.Background(), &domain.Product{
		Name:  name,
		Price: decimal.RequireFromString(price),
		Stock: stock,
	})
	require.NoError(t, err)
	return id
}

func seedCartItem(t *testing.T, deps *testDeps, userID, productID, name, price string, quantity int) {
	t.Helper()
	err := deps.carts.AddItem(context.Background(), userID, domain.CartItem{
		ProductID:   productID,
		ProductName: name,
		Price:       decimal.RequireFromString(price),
		Quantity:    quantity,
	})
	require.NoError(t, err)
}

// failingOrderRepo wraps the in-memory repository with injectable errors
type failingOrderRepo struct {
	*orderstore.MemoryRepository
	createErr     error
	transitionErr error
}

func (r *failingOrderRepo) Create(ctx context.Context, order *domain.Order) error {
	if r.createErr != nil {
		return r.createErr
	}
	return r.MemoryRepository.Create(ctx, order)
}

func (r *failingOrderRepo) ConditionalTransition(ctx context.Context, id uuid.UUID, expected, next domain.OrderStatus, fields orderstore.TransitionFields) (bool, error) {
	if r.transitionErr != nil {
		return false, r.transitionErr
	}
	return r.MemoryRepository.ConditionalTransition(ctx, id, expected, next, fields)
}

// signEvent builds a valid signature header for a webhook payload
func signEvent(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}
