package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/swiftcart/checkout/internal/httpx/middlewares"
	"github.com/swiftcart/checkout/internal/identity"
)

// NewRouter wires the HTTP surface. Admin routes sit behind the injected
// allow-list.
func NewRouter(handler *Handler, admins identity.AllowList) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Post("/checkout", handler.InitiateCheckout)
		r.Get("/orders", handler.ListOrders)
		r.Get("/orders/{id}", handler.GetOrder)
		r.Post("/orders/{id}/reconcile", handler.ReconcileReturn)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middlewares.RequireAdmin(admins))
			r.Get("/orders", handler.ListOrders)
			r.Post("/orders/{id}/cancel", handler.CancelOrder)
		})
	})

	// The gateway redirects the browser here after hosted checkout.
	r.Get("/order/success", handler.ReconcileReturn)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	return otelhttp.NewHandler(r, "checkout-service")
}
