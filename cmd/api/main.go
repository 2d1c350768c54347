package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"applygate/internal/app"
	"applygate/internal/config"
	"applygate/internal/database"
	"applygate/internal/gateway/paystack"
	apphttp "applygate/internal/http"
	"applygate/internal/http/handlers"
	"applygate/internal/http/metrics"
	httpmw "applygate/internal/http/middleware"
	"applygate/internal/http/response"
	"applygate/internal/integration/mailer"
	"applygate/internal/observability"
	"applygate/internal/repository/postgres"
	"applygate/internal/scheduler"
	"applygate/internal/security"
)

func main() {
	cfg := config.Load()
	logger := observability.NewLogger()
	db := database.NewPostgres(database.PostgresConfig{
		DSN:             cfg.PostgresDSN,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxIdle:     cfg.DBConnMaxIdle,
		ConnMaxLifetime: cfg.DBConnMaxLife,
	})
	defer db.Close()

	applicationRepo := postgres.NewApplicationRepository(db)
	messageRepo := postgres.NewMessageRepository(db)
	opportunityRepo := postgres.NewOpportunityRepository(db)
	userRepo := postgres.NewUserRepository(db)

	gateway := paystack.NewClient(paystack.Config{
		SecretKey:   cfg.PaystackSecretKey,
		BaseURL:     cfg.PaystackBaseURL,
		CallbackURL: cfg.PaymentCallback,
		Currency:    cfg.Currency,
		PhonePrefix: cfg.PhonePrefix,
		Timeout:     cfg.GatewayTimeout,
	})
	notifier := mailer.NewClient(cfg.MailerBaseURL, cfg.MailerInternalKey, &http.Client{Timeout: 5 * time.Second})

	applicationService := app.NewApplicationService(applicationRepo, opportunityRepo, userRepo, gateway, logger)
	paymentService := app.NewPaymentService(applicationRepo, userRepo, opportunityRepo, gateway, logger)
	refundService := app.NewRefundService(applicationRepo, userRepo, gateway, logger)
	reminderService := app.NewReminderService(applicationRepo, messageRepo, opportunityRepo, userRepo, notifier, logger, cfg.ReminderStaleness, cfg.ReminderMax)
	messageService := app.NewMessageService(messageRepo)

	var limiter httpmw.Limiter = httpmw.NewRateLimiter()
	if cfg.RedisAddr != "" {
		limiter = httpmw.NewRedisLimiter(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	}

	collector := metrics.NewCollector()
	response.SetErrorCollector(collector)

	jwtProvider := security.NewJWTProvider(cfg.JWTSecret)
	middleware := httpmw.NewAuthMiddleware(jwtProvider)

	router := apphttp.NewRouter(apphttp.RouterDependencies{
		ApplicationHandler: handlers.NewApplicationHandler(applicationService, limiter),
		PaymentHandler:     handlers.NewPaymentHandler(paymentService, limiter),
		WebhookHandler:     handlers.NewWebhookHandler(paymentService, gateway, collector, logger),
		AdminHandler:       handlers.NewAdminHandler(applicationService, refundService),
		MessageHandler:     handlers.NewMessageHandler(messageService),
		MetricsHandler:     handlers.NewMetricsHandler(collector),
		AuthMiddleware:     middleware,
		Metrics:            collector,
		RequestTimeout:     cfg.RequestTimeout,
	})

	sweeper, err := scheduler.New(cfg.ReminderInterval, reminderService.Sweep, logger)
	if err != nil {
		log.Fatalf("failed to build scheduler: %v", err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("API started on :" + cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}
