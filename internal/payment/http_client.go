package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
)

// HTTPClient talks to the hosted-checkout provider's REST API. All calls go
// through a circuit breaker so a flapping gateway fails fast instead of
// tying up request handlers until their timeouts.
type HTTPClient struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[[]byte]
}

func NewHTTPClient(baseURL, secretKey string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		breaker: gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name:    "payment-gateway",
			Timeout: 30 * time.Second,
			// Only connectivity problems should trip the breaker; a 4xx is
			// the gateway working fine and disliking our request.
			IsSuccessful: func(err error) bool {
				return err == nil || !errors.Is(err, ErrGatewayUnavailable)
			},
		}),
	}
}

type sessionResponse struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	PaymentID     string `json:"payment_id"`
	PaymentStatus string `json:"payment_status"`
}

type paymentResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (c *HTTPClient) CreateCheckoutSession(ctx context.Context, req CreateSessionRequest) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("amount", fmt.Sprint(toMinorUnits(req.Amount)))
	form.Set("currency", req.Currency)
	form.Set("success_url", req.SuccessURL)
	form.Set("cancel_url", req.CancelURL)
	form.Set("metadata[order_id]", req.OrderID)

	body, err := c.do(ctx, http.MethodPost, "/v1/checkout/sessions", form)
	if err != nil {
		return nil, err
	}

	var resp sessionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode session response: %w", err)
	}

	return &CheckoutSession{
		ID:               resp.ID,
		URL:              resp.URL,
		PaymentReference: resp.PaymentID,
		PaymentStatus:    resp.PaymentStatus,
	}, nil
}

func (c *HTTPClient) GetCheckoutSession(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	body, err := c.do(ctx, http.MethodGet, "/v1/checkout/sessions/"+url.PathEscape(sessionID), nil)
	if err != nil {
		return nil, err
	}

	var resp sessionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode session response: %w", err)
	}

	return &CheckoutSession{
		ID:               resp.ID,
		URL:              resp.URL,
		PaymentReference: resp.PaymentID,
		PaymentStatus:    resp.PaymentStatus,
	}, nil
}

func (c *HTTPClient) GetPayment(ctx context.Context, paymentReference string) (*Payment, error) {
	body, err := c.do(ctx, http.MethodGet, "/v1/payments/"+url.PathEscape(paymentReference), nil)
	if err != nil {
		return nil, err
	}

	var resp paymentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode payment response: %w", err)
	}

	return &Payment{ID: resp.ID, Status: resp.Status}, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, form url.Values) ([]byte, error) {
	body, err := c.breaker.Execute(func() ([]byte, error) {
		var reqBody io.Reader
		if form != nil {
			reqBody = strings.NewReader(form.Encode())
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
		if err != nil {
			return nil, fmt.Errorf("failed to build gateway request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.secretKey)
		if form != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, fmt.Errorf("%w: reading response: %v", ErrGatewayUnavailable, err)
		}

		switch {
		case resp.StatusCode >= 500:
			return nil, fmt.Errorf("%w: gateway returned %d", ErrGatewayUnavailable, resp.StatusCode)
		case resp.StatusCode == http.StatusNotFound:
			if strings.Contains(path, "/payments/") {
				return nil, ErrPaymentNotFound
			}
			return nil, ErrSessionNotFound
		case resp.StatusCode >= 400:
			return nil, fmt.Errorf("gateway rejected request with %d: %s", resp.StatusCode, body)
		}

		return body, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
		}
		return nil, err
	}
	return body, nil
}

// toMinorUnits converts a decimal amount to integer cents, the unit the
// gateway's API accepts.
func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}
