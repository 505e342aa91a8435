package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zenjaura/marketplace/internal/api"
	"github.com/zenjaura/marketplace/internal/api/handlers"
	"github.com/zenjaura/marketplace/internal/api/middleware"
	"github.com/zenjaura/marketplace/internal/cache"
	"github.com/zenjaura/marketplace/internal/config"
	"github.com/zenjaura/marketplace/internal/documents"
	"github.com/zenjaura/marketplace/internal/health"
	"github.com/zenjaura/marketplace/internal/messaging"
	repository "github.com/zenjaura/marketplace/internal/repositories"
	service "github.com/zenjaura/marketplace/internal/services"
	"github.com/zenjaura/marketplace/internal/tracing"
	"github.com/zenjaura/marketplace/pkg/sendgrid"
	"github.com/zenjaura/marketplace/pkg/stripe"

	_ "github.com/zenjaura/marketplace/docs"
)

const version = "1.0.0"

//	@title						Zenjaura Marketplace API
//	@version					1.0
//	@BasePath					/api
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization

func main() {

	// Logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load config
	cfg := config.MustLoad()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, &cfg.Tracing, version)
	if err != nil {
		slog.Error("❌ Error initializing tracing", slog.Any("error", err))
		os.Exit(1)
	}

	// Database setup
	repos, err := repository.New(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the database", slog.Any("error", err))
		os.Exit(1)
	}

	defer func() {
		if err := repos.Close(); err != nil {
			slog.Error("⚠️ Error closing database connection", slog.Any("error", err))
		} else {
			slog.Info("✅ Database connection closed")
		}
	}()

	// Redis setup
	redisClient, err := repository.NewRedisClient(&cfg.RedisConnect)
	if err != nil {
		slog.Error("❌ Error accessing the redis instance", slog.Any("error", err))
		os.Exit(1)
	}

	defer redisClient.Close()

	redisCache := cache.NewRedisCache(redisClient, &cfg.Cache)

	loginThrottle := repository.NewRateLimitRepo(redisClient, &cfg.RateConfig)

	publisher := messaging.NewPublisher(&cfg.Kafka)
	defer publisher.Close()

	jwtKey := []byte(cfg.Security.JWTKey)
	stripeClient := stripe.NewStripeClient(cfg.Stripe.APIKey, cfg.Stripe.WebhookSecret)
	emailClient := sendgrid.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)

	notificationService := service.NewNotificationService(repos.Notification, cfg.Notifications.TTL)
	userService := service.NewUserService(repos.User, loginThrottle, jwtKey, time.Duration(cfg.Security.JWTExpiryHours)*time.Hour)
	bookService := service.NewBookService(repos.Book, redisCache, notificationService, cfg.Cache.DefaultTTL)
	packageService := service.NewPackageService(repos.Package, redisCache, cfg.Cache.DefaultTTL)
	eventService := service.NewEventService(repos.Event, notificationService, documents.NewTicketSigner(jwtKey))
	cartService := service.NewCartService(repos.Cart, repos.Book, repos.Package, repos.Event)
	orderService := service.NewOrderService(repos.Order, repos.Cart, repos.User, service.OrderDeps{
		Notifications: notificationService,
		Email:         emailClient,
		Publisher:     publisher,
		Payments:      stripeClient,
	})
	paymentService := service.NewPaymentService(repos.Order, stripeClient, notificationService, publisher, cfg.Stripe.Currency)
	adminService := service.NewAdminService(repos.Stats)

	healthHandler, err := health.NewHealthHandler(cfg, version)
	if err != nil {
		slog.Error("❌ Error creating health checks", slog.Any("error", err))
		os.Exit(1)
	}

	rateLimiter := middleware.NewIPRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go rateLimiter.RunSweeper(ctx, time.Minute)
	go notificationService.StartPurger(ctx, cfg.Notifications.PurgeInterval)

	slog.Info("storage initialized", slog.String("env", cfg.Env), slog.String("version", version))

	// Setup router
	mux := api.NewRouter(api.Handlers{
		User:         handlers.NewUserHandler(userService),
		Book:         handlers.NewBookHandler(bookService),
		Package:      handlers.NewPackageHandler(packageService),
		Event:        handlers.NewEventHandler(eventService, cartService),
		Cart:         handlers.NewCartHandler(cartService),
		Order:        handlers.NewOrderHandler(orderService),
		Payment:      handlers.NewPaymentHandler(paymentService),
		Notification: handlers.NewNotificationHandler(notificationService),
		Admin:        handlers.NewAdminHandler(adminService),
	}, middleware.NewAuthMiddleware(jwtKey))

	// Setup http server
	server := http.Server{
		Addr: cfg.Addr,
		Handler: api.Wrap(mux, api.Options{
			CORSOrigins: cfg.CORSOrigins,
			RateLimiter: rateLimiter,
			Health:      healthHandler.Handler(),
		}),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.Addr))

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("❌ Failed to start server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Server shutdown encountered an issue", slog.Any("error", err))
	} else {
		slog.Info("✅ Server shut down gracefully. All connections closed.")
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("⚠️ Error flushing traces", slog.Any("error", err))
	}
}
