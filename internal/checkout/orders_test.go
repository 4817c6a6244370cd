package checkout

import (
	"context"
	"testing"

	"github.com/akarpov/go_shop/internal/payment"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrder_OwnershipEnforced(t *testing.T) {
	gateway := &MockGateway{
		Session: &payment.CheckoutSession{ID: "cs_123", URL: "https://gateway.example.com/pay/cs_123"},
	}
	svc, deps := newTestService(gateway)
	seedCartItem(t, deps, "user-1", "product-1", "Mug", "10.00", 1)
	orderID := startOrder(t, svc, deps, "user-1")

	_, err := svc.GetOrder(context.Background(), orderID, "user-2", false)
	assert.ErrorIs(t, err, ErrOrderForbidden)

	order, err := svc.GetOrder(context.Background(), orderID, "user-1", false)
	require.NoError(t, err)
	assert.Equal(t, orderID, order.ID)

	// Admins can read any order.
	order, err = svc.GetOrder(context.Background(), orderID, "user-2", true)
	require.NoError(t, err)
	assert.Equal(t, orderID, order.ID)
}

func TestGetOrder_NotFound(t *testing.T) {
	svc, _ := newTestService(&MockGateway{})

	_, err := svc.GetOrder(context.Background(), uuid.New(), "user-1", false)

	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestListOrders_OnlyOwn(t *testing.T) {
	gateway := &MockGateway{
		Session: &payment.CheckoutSession{ID: "cs_123", URL: "https://gateway.example.com/pay/cs_123"},
	}
	svc, deps := newTestService(gateway)
	seedCartItem(t, deps, "user-1", "product-1", "Mug", "10.00", 1)
	seedCartItem(t, deps, "user-2", "product-2", "Poster", "5.00", 1)
	startOrder(t, svc, deps, "user-1")
	startOrder(t, svc, deps, "user-2")

	orders, err := svc.ListOrders(context.Background(), "user-1")

	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "user-1", orders[0].UserID)
}

func TestGetStats(t *testing.T) {
	gateway := &MockGateway{
		Session: &payment.CheckoutSession{
			ID:               "cs_123",
			URL:              "https://gateway.example.com/pay/cs_123",
			PaymentReference: "pay_abc",
			PaymentStatus:    "paid",
		},
	}
	svc, deps := newTestService(gateway)
	productID := seedProduct(t, deps, "Mug", "10.00", 5)
	seedProduct(t, deps, "Poster", "5.00", 3)

	seedCartItem(t, deps, "user-1", productID, "Mug", "10.00", 1)
	paidOrder := startOrder(t, svc, deps, "user-1")
	_, err := svc.ConfirmPayment(context.Background(), paidOrder, "cs_123")
	require.NoError(t, err)

	seedCartItem(t, deps, "user-2", productID, "Mug", "10.00", 1)
	startOrder(t, svc, deps, "user-2")

	stats, err := svc.GetStats(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalOrders)
	assert.Equal(t, int64(1), stats.PendingOrders)
	assert.Equal(t, int64(1), stats.PaidOrders)
	assert.Equal(t, int64(2), stats.TotalProducts)
}
