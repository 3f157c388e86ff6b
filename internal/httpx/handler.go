// Package httpx exposes the checkout service over HTTP.
package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/swiftcart/checkout/internal/checkout"
	"github.com/swiftcart/checkout/internal/order"
	"github.com/swiftcart/checkout/internal/order/store"
	"github.com/swiftcart/checkout/internal/payment"
	"github.com/swiftcart/checkout/internal/tracking"
)

// Handler handles incoming HTTP requests for the checkout and order domain.
type Handler struct {
	engine *checkout.Engine
	orders store.Repository
	now    func() time.Time
}

// NewHandler initializes the handler with the lifecycle engine and the
// order repository used for reads.
func NewHandler(engine *checkout.Engine, orders store.Repository) *Handler {
	return &Handler{engine: engine, orders: orders, now: time.Now}
}

// InitiateCheckout receives the cart and shipping address, creates the
// payment session and returns the handle for the gateway's hosted checkout.
func (h *Handler) InitiateCheckout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	items := make([]order.LineItem, 0, len(req.Items))
	for _, it := range req.Items {
		if it.ProductID == "" || it.Quantity <= 0 || it.Price <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_item", "product_id, quantity, and price must be valid")
			return
		}
		items = append(items, order.LineItem{
			ProductID:     it.ProductID,
			Quantity:      it.Quantity,
			Price:         it.Price,
			OriginalPrice: it.OriginalPrice,
		})
	}

	addr := order.Address{
		Name:    req.Address.Name,
		Line1:   req.Address.Line1,
		City:    req.Address.City,
		State:   req.Address.State,
		Pincode: req.Address.Pincode,
		Phone:   req.Address.Phone,
	}
	cust := order.Customer{ID: req.Customer.ID, Email: req.Customer.Email, Phone: req.Customer.Phone}

	session, err := h.engine.InitiateCheckout(r.Context(), items, addr, cust)
	switch {
	case errors.Is(err, checkout.ErrEmptyCart), errors.Is(err, checkout.ErrMissingAddress):
		// A guard, not a failure: the client returns the user to the
		// cart-editing flow.
		writeError(w, http.StatusUnprocessableEntity, "cart_redirect", err.Error())
		return
	case errors.Is(err, payment.ErrSessionCreationFailed):
		writeError(w, http.StatusBadGateway, "session_creation_failed", "payment session could not be created, please retry")
		return
	case err != nil:
		slog.ErrorContext(r.Context(), "initiate checkout failed", "error", err)
		writeError(w, http.StatusInternalServerError, "checkout_failed", "")
		return
	}

	writeJSON(w, http.StatusCreated, checkoutResponse{
		OrderID:          session.OrderID,
		PaymentSessionID: session.PaymentSessionID,
	})
}

// ReconcileReturn handles the gateway's return navigation. The engine's
// activation guard makes re-fired returns harmless.
func (h *Handler) ReconcileReturn(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		orderID = r.URL.Query().Get("order_id")
	}
	if orderID == "" {
		writeError(w, http.StatusBadRequest, "order_id_required", "")
		return
	}

	result, err := h.engine.ReconcileOnReturn(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order_not_found", "could not load order")
			return
		}
		slog.ErrorContext(r.Context(), "reconcile failed", "order_id", orderID, "error", err)
		// The outcome still tells the client where to send the user.
	}

	resp := reconcileResponse{Outcome: string(result.Outcome), GatewayStatus: result.RawStatus}
	if result.Order.ID != "" {
		simulated := tracking.Simulate(result.Order, h.now())
		mapped := mapOrderToResponse(simulated)
		resp.Order = &mapped
	}

	status := http.StatusOK
	if result.Outcome == checkout.OutcomeFailed {
		status = http.StatusPaymentRequired
	}
	writeJSON(w, status, resp)
}

// GetOrder retrieves a single order with the shipment timeline derived at
// read time.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	o, err := h.orders.Get(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order_not_found", "could not load order")
			return
		}
		slog.ErrorContext(r.Context(), "get order failed", "order_id", orderID, "error", err)
		writeError(w, http.StatusInternalServerError, "order_load_failed", "")
		return
	}

	writeJSON(w, http.StatusOK, mapOrderToResponse(tracking.Simulate(o, h.now())))
}

// ListOrders returns all orders newest first, simulator applied per order.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "list orders failed", "error", err)
		writeError(w, http.StatusInternalServerError, "order_list_failed", "")
		return
	}

	out := make([]orderResponse, 0, len(orders))
	for _, o := range tracking.SimulateAll(orders, h.now()) {
		out = append(out, mapOrderToResponse(o))
	}
	writeJSON(w, http.StatusOK, map[string]any{"orders": out})
}

// CancelOrder marks an order Cancelled. Admin-only; routed behind the
// allow-list middleware.
func (h *Handler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")

	o, err := h.engine.Cancel(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order_not_found", "could not load order")
			return
		}
		slog.ErrorContext(r.Context(), "cancel order failed", "order_id", orderID, "error", err)
		writeError(w, http.StatusInternalServerError, "cancel_failed", "")
		return
	}

	writeJSON(w, http.StatusOK, mapOrderToResponse(o))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{
		Error:   code,
		Message: msg,
	})
}
