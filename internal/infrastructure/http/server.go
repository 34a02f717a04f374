package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	handlers "github.com/lumastack/billing-service/internal/adapter/handler/http"
	"github.com/lumastack/billing-service/internal/config"
	"github.com/lumastack/billing-service/internal/domain/provider"
	"github.com/lumastack/billing-service/internal/infrastructure/database"
	"github.com/lumastack/billing-service/internal/middleware/auth"
	"github.com/lumastack/billing-service/internal/usecase"
	"github.com/lumastack/billing-service/pkg/logger"
)

type Server struct {
	config   *config.Config
	logger   *zap.Logger
	echo     *echo.Echo
	repos    *database.Repositories
	provider provider.PaymentProvider
}

// requestValidator adapts go-playground/validator to echo's Validator interface
type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func NewServer(cfg *config.Config, log *zap.Logger, repos *database.Repositories, paymentProvider provider.PaymentProvider) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &requestValidator{validate: validator.New()}

	// Middleware
	e.Use(middleware.Recover())
	e.Use(logger.NewEchoRequestLogger(log))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{cfg.Service.SiteURL},
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE},
	}))
	logger.WithEchoErrorHandler(e, log)

	return &Server{
		config:   cfg,
		logger:   log,
		echo:     e,
		repos:    repos,
		provider: paymentProvider,
	}
}

func (s *Server) Start() error {
	// Setup routes
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": "billing",
		})
	})

	// Usecases
	reconciler := usecase.NewReconcileService(s.provider, s.repos.Subscription, s.repos.Customer, s.logger)
	checkoutService := usecase.NewCheckoutService(s.provider, s.repos.Customer, s.logger)
	subscriptionService := usecase.NewSubscriptionService(s.provider, s.repos.Subscription, s.repos.Customer, s.logger)

	// Handlers
	webhookHandler := handlers.NewWebhookHandler(s.logger, s.config.Service.StripeWebhookSecret, reconciler, s.repos.Webhook)
	checkoutHandler := handlers.NewCheckoutHandler(s.logger, checkoutService)
	subscriptionHandler := handlers.NewSubscriptionHandler(s.logger, subscriptionService)

	// JWT middleware configuration. Health and webhook routes never pass
	// through it; they are registered outside the v1 group.
	jwtConfig := auth.JWTConfig{
		Secret: s.config.Service.JWTSecret,
		Logger: s.logger,
	}

	// API v1 routes (all require JWT authentication)
	v1 := s.echo.Group("/api/v1", auth.JWTMiddleware(jwtConfig))

	// Checkout initiation
	checkout := v1.Group("/checkout")
	checkout.POST("/session", checkoutHandler.CreateCheckoutSession)
	checkout.POST("/portal", checkoutHandler.CreatePortalSession)

	// Subscriptions
	subscriptions := v1.Group("/subscriptions")
	subscriptions.GET("", subscriptionHandler.ListSubscriptions)
	subscriptions.GET("/:id", subscriptionHandler.GetSubscription)
	subscriptions.DELETE("/:id", subscriptionHandler.CancelSubscription)
	subscriptions.POST("/:id/reactivate", subscriptionHandler.ReactivateSubscription)

	// Invoices
	v1.GET("/invoices", subscriptionHandler.ListInvoices)

	// Webhook route (outside API versioning, signature-verified instead of JWT)
	s.echo.POST("/webhook", webhookHandler.HandleWebhook)
}
