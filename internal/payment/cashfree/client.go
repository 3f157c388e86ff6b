// Package cashfree adapts the payment.Gateway port to the HTTP relay that
// fronts Cashfree's order API.
//
// The relay is a thin pass-through: POST /api/payment/cashfree/initiate
// creates a hosted-checkout session, GET /api/payment/cashfree/verify/{id}
// reports the provider's current settlement status.
package cashfree

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/swiftcart/checkout/internal/payment"
)

// statusPaid is the provider signal that maps to Settled.
const statusPaid = "PAID"

// Ensure Client implements the port at compile time.
var _ payment.Gateway = (*Client)(nil)

// Client talks to the Cashfree relay.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a Client for the relay at baseURL (no trailing slash needed).
// Requests are traced via otelhttp and bounded by timeout so a slow gateway
// maps to a failure instead of hanging the reconcile step.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

type initiateRequest struct {
	OrderAmount     float64         `json:"order_amount"`
	OrderID         string          `json:"order_id"`
	OrderCurrency   string          `json:"order_currency"`
	CustomerDetails customerDetails `json:"customer_details"`
}

type customerDetails struct {
	CustomerID    string `json:"customer_id"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
}

type initiateResponse struct {
	Success          bool   `json:"success"`
	PaymentSessionID string `json:"payment_session_id"`
}

type verifyResponse struct {
	Success     bool   `json:"success"`
	OrderStatus string `json:"order_status"`
}

// CreateSession registers a hosted-checkout session for the given amount and
// order id. The amount must be the order total computed at checkout.
func (c *Client) CreateSession(ctx context.Context, amount float64, orderID, customerEmail, customerPhone string) (string, error) {
	body, err := json.Marshal(initiateRequest{
		OrderAmount:   amount,
		OrderID:       orderID,
		OrderCurrency: "INR",
		CustomerDetails: customerDetails{
			CustomerID:    customerIDFromEmail(customerEmail),
			CustomerEmail: customerEmail,
			CustomerPhone: customerPhone,
		},
	})
	if err != nil {
		return "", fmt.Errorf("cashfree: encode initiate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/api/payment/cashfree/initiate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("cashfree: build initiate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", payment.ErrSessionCreationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: relay returned %s", payment.ErrSessionCreationFailed, resp.Status)
	}

	var out initiateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %w", payment.ErrSessionCreationFailed, err)
	}
	if !out.Success || out.PaymentSessionID == "" {
		return "", fmt.Errorf("%w: relay reported no session for order %s", payment.ErrSessionCreationFailed, orderID)
	}
	return out.PaymentSessionID, nil
}

// VerifySettlement asks the relay for the provider's current truth.
// It is side-effect-free and safe to call repeatedly.
func (c *Client) VerifySettlement(ctx context.Context, orderID string) (payment.Settlement, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/payment/cashfree/verify/"+orderID, nil)
	if err != nil {
		return payment.Settlement{}, fmt.Errorf("cashfree: build verify request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return payment.Settlement{}, fmt.Errorf("%w: %w", payment.ErrVerificationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return payment.Settlement{}, fmt.Errorf("%w: relay returned %s", payment.ErrVerificationFailed, resp.Status)
	}

	var out verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return payment.Settlement{}, fmt.Errorf("%w: decode response: %w", payment.ErrVerificationFailed, err)
	}

	return payment.Settlement{
		Settled:   out.Success && out.OrderStatus == statusPaid,
		RawStatus: out.OrderStatus,
	}, nil
}

// customerIDFromEmail derives the gateway customer id the way the relay
// expects: the email with everything but alphanumerics stripped.
func customerIDFromEmail(email string) string {
	var b strings.Builder
	for _, r := range email {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
