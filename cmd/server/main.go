package main

import (
	"log"
	"net/http"

	"billing-be/internal/config"
	"billing-be/internal/db"
	"billing-be/internal/invoice"
	"billing-be/internal/logger"
	"billing-be/internal/middleware"
	"billing-be/internal/payment"
	"billing-be/internal/payment/webhook"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database, err := db.NewDatabase(cfg)
	if err != nil {
		logger.L().Fatal("database init failed", zap.Error(err))
	}
	defer database.Close()

	invoiceRepo := invoice.NewRepository(database)
	gateway := payment.NewCoinbaseGateway(cfg, invoiceRepo)

	invoiceHandler := invoice.NewHandler(invoiceRepo, gateway)
	webhookHandler := webhook.NewHandler(invoiceRepo, gateway, nil)

	mux := http.NewServeMux()
	mux.Handle("POST /invoices", middleware.AuthMiddleware(cfg.JWTSecret, http.HandlerFunc(invoiceHandler.CreateInvoice)))
	mux.Handle("GET /invoices/{id}", middleware.AuthMiddleware(cfg.JWTSecret, http.HandlerFunc(invoiceHandler.GetInvoice)))
	mux.Handle("POST /invoices/{id}/pay", middleware.AuthMiddleware(cfg.JWTSecret, http.HandlerFunc(invoiceHandler.PayInvoice)))

	// Server-to-server push from Coinbase Commerce: no session, no CSRF.
	// Authenticity comes from the signature check inside the handler.
	mux.Handle("POST /extensions/coinbasecommerce/webhook", webhookHandler)

	mux.Handle("GET /metrics", promhttp.Handler())

	handler := logger.RequestIDMiddleware(
		logger.LoggingMiddleware(
			middleware.RateLimitMiddleware(mux),
		),
	)

	logger.L().Info("🚀 billing server listening", zap.String("port", cfg.AppPort))
	log.Fatal(http.ListenAndServe(":"+cfg.AppPort, handler))
}
