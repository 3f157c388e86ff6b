package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/swiftcart/checkout/internal/checkout"
	lifecyclesqlite "github.com/swiftcart/checkout/internal/checkout/lifecyclelog/sqlite"
	"github.com/swiftcart/checkout/internal/httpx"
	"github.com/swiftcart/checkout/internal/identity"
	ordersqlite "github.com/swiftcart/checkout/internal/order/store/sqlite"
	"github.com/swiftcart/checkout/internal/payment/cashfree"
	"github.com/swiftcart/checkout/internal/pkg/cache"
	"github.com/swiftcart/checkout/internal/pkg/telemetry"
)

func main() {
	telemetry.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.SetupTracer(ctx, getEnv("OTEL_SERVICE_NAME", "checkout-service"))
	if err != nil {
		slog.Error("failed to initialise tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	}()

	ordersPath := getEnv("ORDERS_DB_PATH", "./data/orders.db")
	lifecyclePath := getEnv("LIFECYCLE_DB_PATH", "./data/lifecycle.db")
	if err := os.MkdirAll(filepath.Dir(ordersPath), 0o755); err != nil {
		slog.Error("failed to create data directory", "error", err)
		os.Exit(1)
	}

	orders, err := ordersqlite.Open(ordersPath)
	if err != nil {
		slog.Error("failed to open order store", "path", ordersPath, "error", err)
		os.Exit(1)
	}
	defer orders.Close()

	journal, err := lifecyclesqlite.Open(lifecyclePath)
	if err != nil {
		slog.Error("failed to open lifecycle log", "path", lifecyclePath, "error", err)
		os.Exit(1)
	}
	defer journal.Close()

	verifyTimeout := getDurationEnv("VERIFY_TIMEOUT", 15*time.Second)
	gateway := cashfree.New(getEnv("PAYMENT_RELAY_URL", "http://localhost:5000"), verifyTimeout)

	sessions := cache.NewRedis(getEnv("REDIS_ADDR", "localhost:6379"), "checkout")

	engine := checkout.NewEngine(orders, gateway, checkout.LogNotifier{}, sessions, journal, checkout.Config{
		FreeShippingThreshold: getFloatEnv("FREE_SHIPPING_THRESHOLD", 500),
		ShippingFlatFee:       getFloatEnv("SHIPPING_FLAT_FEE", 50),
		VerifyTimeout:         verifyTimeout,
	})

	admins := identity.ParseAllowList(os.Getenv("ADMIN_IDENTITIES"))
	if admins.Len() == 0 {
		slog.Warn("no admin identities configured, admin routes are closed")
	}

	handler := httpx.NewHandler(engine, orders)
	router := httpx.NewRouter(handler, admins)

	addr := getEnv("LISTEN_ADDR", ":8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("checkout service running", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("http server failed", "error", err)
		os.Exit(1)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getFloatEnv(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
