package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/swiftcart/checkout/internal/checkout"
	"github.com/swiftcart/checkout/internal/identity"
	"github.com/swiftcart/checkout/internal/order/store"
	"github.com/swiftcart/checkout/internal/payment"
	"github.com/swiftcart/checkout/internal/pkg/cache"
)

type stubGateway struct {
	sessionID  string
	createErr  error
	settlement payment.Settlement
	verifyErr  error
}

var _ payment.Gateway = (*stubGateway)(nil)

func (g *stubGateway) CreateSession(context.Context, float64, string, string, string) (string, error) {
	return g.sessionID, g.createErr
}

func (g *stubGateway) VerifySettlement(context.Context, string) (payment.Settlement, error) {
	return g.settlement, g.verifyErr
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, checkout.Notification) {}

func newTestServer(t *testing.T, gw *stubGateway) *httptest.Server {
	t.Helper()
	orders := store.NewMemory()
	engine := checkout.NewEngine(orders, gw, nopNotifier{}, cache.NewMemory("checkout"), nil, checkout.Config{})
	handler := NewHandler(engine, orders)
	srv := httptest.NewServer(NewRouter(handler, identity.ParseAllowList("admin@swiftcart.in")))
	t.Cleanup(srv.Close)
	return srv
}

const checkoutBody = `{
	"items": [{"product_id": "P-1", "quantity": 1, "price": 600, "original_price": 700}],
	"address": {"name": "Asha", "line1": "12 MG Road", "city": "Bengaluru", "pincode": "560001"},
	"customer": {"id": "u-1", "email": "asha@example.com", "phone": "9000000001"}
}`

func TestInitiateCheckoutEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubGateway{sessionID: "sess-1"})

	resp, err := http.Post(srv.URL+"/api/checkout", "application/json", strings.NewReader(checkoutBody))
	if err != nil {
		t.Fatalf("POST /api/checkout: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	var out struct {
		OrderID          string `json:"order_id"`
		PaymentSessionID string `json:"payment_session_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !strings.HasPrefix(out.OrderID, "ORD-") {
		t.Errorf("order id = %q, want ORD- prefix", out.OrderID)
	}
	if out.PaymentSessionID != "sess-1" {
		t.Errorf("session id = %q, want sess-1", out.PaymentSessionID)
	}
}

func TestInitiateCheckoutEmptyCart(t *testing.T) {
	srv := newTestServer(t, &stubGateway{sessionID: "sess-1"})

	body := `{"items": [], "address": {"name": "Asha", "line1": "12 MG Road"}, "customer": {"email": "a@b.c"}}`
	resp, err := http.Post(srv.URL+"/api/checkout", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /api/checkout: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	var out struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	if out.Error != "cart_redirect" {
		t.Errorf("error code = %q, want cart_redirect", out.Error)
	}
}

func TestInitiateCheckoutSessionFailure(t *testing.T) {
	srv := newTestServer(t, &stubGateway{createErr: payment.ErrSessionCreationFailed})

	resp, err := http.Post(srv.URL+"/api/checkout", "application/json", strings.NewReader(checkoutBody))
	if err != nil {
		t.Fatalf("POST /api/checkout: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("status = %d, want 502", resp.StatusCode)
	}
}

func TestReturnNavigationConfirms(t *testing.T) {
	srv := newTestServer(t, &stubGateway{sessionID: "sess-1", settlement: payment.Settlement{Settled: true, RawStatus: "PAID"}})

	orderID := placeOrder(t, srv)

	resp, err := http.Get(srv.URL + "/order/success?order_id=" + orderID)
	if err != nil {
		t.Fatalf("GET /order/success: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var out struct {
		Outcome string `json:"outcome"`
		Order   *struct {
			Status          string `json:"status"`
			TrackingHistory []struct {
				Status string `json:"status"`
			} `json:"tracking_history"`
		} `json:"order"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Outcome != "confirmed" {
		t.Errorf("outcome = %q, want confirmed", out.Outcome)
	}
	if out.Order == nil || out.Order.Status != "Ordered" {
		t.Errorf("order missing or not Ordered: %+v", out.Order)
	}
	if out.Order != nil && len(out.Order.TrackingHistory) != 1 {
		t.Errorf("tracking events = %d, want 1 seed", len(out.Order.TrackingHistory))
	}
}

func TestReturnNavigationUnsettled(t *testing.T) {
	srv := newTestServer(t, &stubGateway{sessionID: "sess-1", settlement: payment.Settlement{Settled: false, RawStatus: "ACTIVE"}})

	orderID := placeOrder(t, srv)

	resp, err := http.Get(srv.URL + "/order/success?order_id=" + orderID)
	if err != nil {
		t.Fatalf("GET /order/success: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusPaymentRequired {
		t.Fatalf("status = %d, want 402", resp.StatusCode)
	}
	var out struct {
		Outcome       string `json:"outcome"`
		GatewayStatus string `json:"gateway_status"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	if out.Outcome != "failed" || out.GatewayStatus != "ACTIVE" {
		t.Errorf("outcome = %q gateway_status = %q, want failed/ACTIVE", out.Outcome, out.GatewayStatus)
	}
}

func TestGetOrderNotFound(t *testing.T) {
	srv := newTestServer(t, &stubGateway{sessionID: "sess-1"})

	resp, err := http.Get(srv.URL + "/api/orders/ORD-missing")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestAdminRoutesRequireAllowListedIdentity(t *testing.T) {
	srv := newTestServer(t, &stubGateway{sessionID: "sess-1"})

	// No identity header.
	resp, err := http.Get(srv.URL + "/api/admin/orders")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status without identity = %d, want 403", resp.StatusCode)
	}

	// Identity not in the allow-list.
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/admin/orders", nil)
	req.Header.Set("X-Admin-Identity", "mallory@example.com")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status for unknown identity = %d, want 403", resp.StatusCode)
	}

	// Allow-listed identity.
	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/api/admin/orders", nil)
	req.Header.Set("X-Admin-Identity", "admin@swiftcart.in")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status for admin = %d, want 200", resp.StatusCode)
	}
}

func TestAdminCancel(t *testing.T) {
	srv := newTestServer(t, &stubGateway{sessionID: "sess-1", settlement: payment.Settlement{Settled: true, RawStatus: "PAID"}})

	orderID := placeOrder(t, srv)

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/admin/orders/"+orderID+"/cancel", nil)
	req.Header.Set("X-Admin-Identity", "admin@swiftcart.in")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST cancel: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var out struct {
		Status string `json:"status"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	if out.Status != "Cancelled" {
		t.Errorf("status = %q, want Cancelled", out.Status)
	}
}

func placeOrder(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp, err := http.Post(srv.URL+"/api/checkout", "application/json", strings.NewReader(checkoutBody))
	if err != nil {
		t.Fatalf("POST /api/checkout: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("checkout status = %d, want 201", resp.StatusCode)
	}
	var out struct {
		OrderID string `json:"order_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out.OrderID
}
