package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	domainErrors "github.com/lumastack/billing-service/internal/domain/errors"
	"github.com/lumastack/billing-service/internal/middleware/auth"
	"github.com/lumastack/billing-service/internal/usecase"
	"github.com/lumastack/billing-service/pkg/cursor"
)

type SubscriptionHandler struct {
	logger              *zap.Logger
	subscriptionService *usecase.SubscriptionService
}

func NewSubscriptionHandler(logger *zap.Logger, subscriptionService *usecase.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		logger:              logger,
		subscriptionService: subscriptionService,
	}
}

// ListSubscriptions returns the caller's reconciled subscriptions.
func (h *SubscriptionHandler) ListSubscriptions(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	subs, err := h.subscriptionService.GetSubscriptions(c.Request().Context(), user.UserID)
	if err != nil {
		h.logger.Error("Failed to list subscriptions",
			zap.String("user_id", user.UserID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve subscriptions",
		})
	}

	// The reconciled store is read in full; the listing is not paginated.
	return c.JSON(http.StatusOK, echo.Map{
		"subscriptions": subs,
		"has_more":      false,
	})
}

// GetSubscription returns one subscription by id. A subscription that does
// not exist and one owned by another user produce the same response so
// guessed ids reveal nothing.
func (h *SubscriptionHandler) GetSubscription(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	subscriptionID := c.Param("id")

	sub, err := h.subscriptionService.GetSubscriptionDetail(c.Request().Context(), subscriptionID, user.UserID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrSubscriptionNotFound) || errors.Is(err, domainErrors.ErrNotOwned) {
			return c.JSON(http.StatusNotFound, echo.Map{
				"error": "Subscription not found",
			})
		}
		h.logger.Error("Failed to get subscription",
			zap.String("subscription_id", subscriptionID),
			zap.String("user_id", user.UserID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve subscription",
		})
	}

	return c.JSON(http.StatusOK, sub)
}

type cancelResponse struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	CancelAtPeriodEnd bool   `json:"cancel_at_period_end"`
}

// CancelSubscription schedules the subscription to end at the close of the
// current billing period.
func (h *SubscriptionHandler) CancelSubscription(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	subscriptionID := c.Param("id")

	sub, err := h.subscriptionService.CancelAtPeriodEnd(c.Request().Context(), subscriptionID, user.UserID)
	if err != nil {
		return h.mutationError(c, "cancel", subscriptionID, user.UserID, err)
	}

	h.logger.Info("Subscription cancellation scheduled",
		zap.String("subscription_id", subscriptionID),
		zap.String("user_id", user.UserID))

	return c.JSON(http.StatusOK, cancelResponse{
		ID:                sub.ID,
		Status:            string(sub.Status),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
	})
}

// ReactivateSubscription clears a pending cancellation.
func (h *SubscriptionHandler) ReactivateSubscription(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	subscriptionID := c.Param("id")

	sub, err := h.subscriptionService.Reactivate(c.Request().Context(), subscriptionID, user.UserID)
	if err != nil {
		return h.mutationError(c, "reactivate", subscriptionID, user.UserID, err)
	}

	h.logger.Info("Subscription reactivated",
		zap.String("subscription_id", subscriptionID),
		zap.String("user_id", user.UserID))

	return c.JSON(http.StatusOK, cancelResponse{
		ID:                sub.ID,
		Status:            string(sub.Status),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
	})
}

type invoiceListResponse struct {
	Data       interface{} `json:"data"`
	HasMore    bool        `json:"has_more"`
	NextCursor string      `json:"next_cursor,omitempty"`
	PrevCursor string      `json:"prev_cursor,omitempty"`
}

// ListInvoices returns one provider page of the caller's invoices.
// Query params: subscription_id (optional scope), cursor (opaque token from
// a previous response's next_cursor or prev_cursor). The provider only
// pages forward, so the token carries the cursor history needed to step
// back.
func (h *SubscriptionHandler) ListInvoices(c echo.Context) error {
	user, err := auth.RequireAuth(c)
	if err != nil {
		return err
	}

	subscriptionID := c.QueryParam("subscription_id")

	history, err := cursor.Decode(c.QueryParam("cursor"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid cursor",
		})
	}

	page, err := h.subscriptionService.GetInvoices(c.Request().Context(), user.UserID, subscriptionID, history.Current())
	if err != nil {
		h.logger.Error("Failed to list invoices",
			zap.String("user_id", user.UserID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve invoices",
		})
	}

	resp := invoiceListResponse{
		Data:    page.Data,
		HasMore: page.HasMore,
	}

	if page.HasMore && len(page.Data) > 0 {
		next := &cursor.History{Cursors: append([]string{}, history.Cursors...)}
		next.Push(page.Data[len(page.Data)-1].ID)
		if token, err := next.Encode(); err == nil {
			resp.NextCursor = token
		}
	}
	if len(history.Cursors) > 0 {
		prev := &cursor.History{Cursors: append([]string{}, history.Cursors...)}
		prev.Pop()
		if token, err := prev.Encode(); err == nil {
			resp.PrevCursor = token
		}
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *SubscriptionHandler) mutationError(c echo.Context, action, subscriptionID, userID string, err error) error {
	switch {
	case errors.Is(err, domainErrors.ErrUnauthenticated):
		return c.JSON(http.StatusUnauthorized, echo.Map{
			"error": "Authentication required",
		})
	case errors.Is(err, domainErrors.ErrNoCustomer), errors.Is(err, domainErrors.ErrNotOwned):
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Subscription not found",
		})
	default:
		h.logger.Error("Subscription mutation failed",
			zap.String("action", action),
			zap.String("subscription_id", subscriptionID),
			zap.String("user_id", userID),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to update subscription",
		})
	}
}
