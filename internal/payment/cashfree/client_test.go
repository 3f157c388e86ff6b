package cashfree

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/swiftcart/checkout/internal/payment"
)

func TestCreateSession(t *testing.T) {
	var gotBody map[string]any
	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/payment/cashfree/initiate" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success":            true,
			"payment_session_id": "session_abc",
		})
	}))
	defer relay.Close()

	c := New(relay.URL, 5*time.Second)
	sessionID, err := c.CreateSession(context.Background(), 350, "ORD-1", "asha@example.com", "9000000001")
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if sessionID != "session_abc" {
		t.Errorf("session id = %q, want session_abc", sessionID)
	}

	if gotBody["order_amount"] != 350.0 || gotBody["order_id"] != "ORD-1" || gotBody["order_currency"] != "INR" {
		t.Errorf("request body = %+v", gotBody)
	}
	details, _ := gotBody["customer_details"].(map[string]any)
	if details["customer_id"] != "ashaexamplecom" {
		t.Errorf("customer_id = %v, want ashaexamplecom", details["customer_id"])
	}
	if details["customer_email"] != "asha@example.com" || details["customer_phone"] != "9000000001" {
		t.Errorf("customer details = %+v", details)
	}
}

func TestCreateSessionFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			"relay error status",
			func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			"unsuccessful response",
			func(w http.ResponseWriter, _ *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{"success": false})
			},
		},
		{
			"missing session id",
			func(w http.ResponseWriter, _ *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			relay := httptest.NewServer(tt.handler)
			defer relay.Close()

			c := New(relay.URL, 5*time.Second)
			_, err := c.CreateSession(context.Background(), 350, "ORD-1", "asha@example.com", "9000000001")
			if !errors.Is(err, payment.ErrSessionCreationFailed) {
				t.Errorf("err = %v, want ErrSessionCreationFailed", err)
			}
		})
	}
}

func TestVerifySettlement(t *testing.T) {
	tests := []struct {
		name        string
		success     bool
		orderStatus string
		wantSettled bool
	}{
		{"paid", true, "PAID", true},
		{"active session, unpaid", true, "ACTIVE", false},
		{"expired", true, "EXPIRED", false},
		{"relay reports failure", false, "PAID", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/payment/cashfree/verify/ORD-1" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				_ = json.NewEncoder(w).Encode(map[string]any{
					"success":      tt.success,
					"order_status": tt.orderStatus,
				})
			}))
			defer relay.Close()

			c := New(relay.URL, 5*time.Second)
			settlement, err := c.VerifySettlement(context.Background(), "ORD-1")
			if err != nil {
				t.Fatalf("VerifySettlement: %v", err)
			}
			if settlement.Settled != tt.wantSettled {
				t.Errorf("settled = %v, want %v", settlement.Settled, tt.wantSettled)
			}
			if settlement.RawStatus != tt.orderStatus {
				t.Errorf("raw status = %q, want %q", settlement.RawStatus, tt.orderStatus)
			}
		})
	}
}

func TestVerifySettlementRelayDown(t *testing.T) {
	relay := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	relay.Close() // connection refused from here on

	c := New(relay.URL, time.Second)
	_, err := c.VerifySettlement(context.Background(), "ORD-1")
	if !errors.Is(err, payment.ErrVerificationFailed) {
		t.Errorf("err = %v, want ErrVerificationFailed", err)
	}
}
