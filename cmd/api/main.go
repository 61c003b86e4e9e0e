package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/restom/restom-backend/internal/http/handlers"
	mw "github.com/restom/restom-backend/internal/http/middleware"
	"github.com/restom/restom-backend/internal/notify"
	"github.com/restom/restom-backend/internal/ratelimit"
	"github.com/restom/restom-backend/internal/repository"
	"github.com/restom/restom-backend/internal/service"
	"github.com/restom/restom-backend/internal/webhook"
	"github.com/restom/restom-backend/pkg/config"
	"github.com/restom/restom-backend/pkg/database"
	"github.com/restom/restom-backend/pkg/events"
	"github.com/restom/restom-backend/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using environment variables")
	}

	cfg := config.Load()
	ctx := context.Background()

	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := ratelimit.NewRedisClient(cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.Error("Failed to configure Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	// SMS sender: Twilio when configured, otherwise the dev fallback
	// that logs codes server-side and never delivers.
	var sender notify.Sender
	if twilioSender, err := notify.NewTwilioSender(cfg.SMS); err == nil {
		sender = twilioSender
	} else {
		logger.Warn("SMS channel not configured, using dev fallback sender", "error", err)
		sender = notify.NewDevSender()
	}

	var mailer notify.Mailer
	if cfg.Email.DevMode || cfg.Email.MailerSendKey == "" {
		mailer = notify.NewDevMailer()
	} else {
		mailer = notify.NewMailerSend(cfg.Email.MailerSendKey, cfg.Email.FromName, cfg.Email.FromEmail)
	}

	if cfg.Payments.AllowUnsigned {
		logger.Warn("PAYMENT_WEBHOOK_SECRET not set; webhooks will be accepted UNSIGNED (insecure, non-production only)")
	}

	otpRepo := repository.NewOtpRepository(pool)
	accountRepo := repository.NewAccountRepository(pool)
	paymentRepo := repository.NewPaymentRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)

	otpService := service.NewOtpService(otpRepo, sender, eventBus, cfg)
	credentialService := service.NewCredentialService(accountRepo, eventBus, cfg)
	reconcileService := service.NewReconcileService(paymentRepo, orderRepo, mailer, eventBus)

	verifier := webhook.NewVerifier(cfg.Payments.WebhookSecret, cfg.Payments.AllowUnsigned)
	limiter := ratelimit.NewRedisLimiter(redisClient)

	h := handlers.New(otpService, credentialService, reconcileService, verifier, limiter, cfg)

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/auth", func(r chi.Router) {
		r.Post("/send-otp", h.SendOtp)
		r.Post("/verify-otp", h.VerifyOtp)
		r.Post("/signup", h.Signup)
		r.Post("/login", h.Login)
	})

	r.Route("/payments", func(r chi.Router) {
		r.Post("/create", h.CreatePayment)
		r.Post("/webhook", h.PaymentWebhook)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(mw.RequireJWT(cfg.Auth.JWTSecret))
		r.Use(mw.RequireAdminKey(cfg.Auth.AdminAPIKey))
		r.Post("/otp/cleanup", h.CleanupOtps)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
	}()

	logger.Info("Starting server", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}
