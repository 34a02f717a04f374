package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	domainErrors "github.com/lumastack/billing-service/internal/domain/errors"
	"github.com/lumastack/billing-service/internal/middleware/auth"
	"github.com/lumastack/billing-service/internal/usecase"
)

type CheckoutHandler struct {
	logger          *zap.Logger
	checkoutService *usecase.CheckoutService
}

func NewCheckoutHandler(logger *zap.Logger, checkoutService *usecase.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		logger:          logger,
		checkoutService: checkoutService,
	}
}

type CreateCheckoutRequest struct {
	PriceID string `json:"priceId" validate:"required"`
}

type CreateCheckoutResponse struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// CreateCheckoutSession starts a hosted checkout for the authenticated user.
func (h *CheckoutHandler) CreateCheckoutSession(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err // RequireAuth already returns the JSON error response
	}

	var req CreateCheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "priceId is required",
		})
	}

	h.logger.Info("Creating checkout session",
		zap.String("user_id", user.UserID),
		zap.String("price_id", req.PriceID),
	)

	session, err := h.checkoutService.CreateCheckoutSession(c.Request().Context(), user.UserID, user.Email, req.PriceID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrUnauthenticated) {
			return c.JSON(http.StatusUnauthorized, echo.Map{
				"error": "Authentication required",
			})
		}
		h.logger.Error("Error creating checkout session", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to create checkout session",
		})
	}

	return c.JSON(http.StatusCreated, CreateCheckoutResponse{
		SessionID: session.ID,
		URL:       session.URL,
	})
}

// CreatePortalSession opens the provider's billing portal for the
// authenticated user's existing customer.
func (h *CheckoutHandler) CreatePortalSession(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	h.logger.Info("Creating customer portal session",
		zap.String("user_id", user.UserID),
	)

	ps, err := h.checkoutService.CreatePortalSession(c.Request().Context(), user.UserID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrUnauthenticated) {
			return c.JSON(http.StatusUnauthorized, echo.Map{
				"error": "Authentication required",
			})
		}
		if errors.Is(err, domainErrors.ErrNoCustomer) {
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": "No billing account exists for this user",
			})
		}
		h.logger.Error("Error creating portal session", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to create portal session",
		})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"url": ps.URL,
	})
}
