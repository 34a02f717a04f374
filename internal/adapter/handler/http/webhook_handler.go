package http

import (
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stripe/stripe-go/v79/webhook"
	"go.uber.org/zap"

	"github.com/lumastack/billing-service/internal/adapter/repository"
	"github.com/lumastack/billing-service/internal/domain/model"
	"github.com/lumastack/billing-service/internal/usecase"
)

// WebhookHandler receives provider webhook deliveries, verifies their
// signature, journals them, and hands them to the reconciler. Signature
// failures are rejected before any state is touched.
type WebhookHandler struct {
	logger        *zap.Logger
	webhookSecret string
	reconciler    *usecase.ReconcileService
	webhookRepo   repository.WebhookRepository
}

func NewWebhookHandler(
	logger *zap.Logger,
	webhookSecret string,
	reconciler *usecase.ReconcileService,
	webhookRepo repository.WebhookRepository,
) *WebhookHandler {
	return &WebhookHandler{
		logger:        logger,
		webhookSecret: webhookSecret,
		reconciler:    reconciler,
		webhookRepo:   webhookRepo,
	}
}

func (h *WebhookHandler) HandleWebhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		h.logger.Error("Error reading request body", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Error reading request body"})
	}

	sig := c.Request().Header.Get("Stripe-Signature")

	event, err := webhook.ConstructEventWithOptions(
		body,
		sig,
		h.webhookSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)

	if err != nil {
		h.logger.Error("Webhook signature verification failed",
			zap.Error(err),
		)
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Webhook signature verification failed: " + err.Error(),
		})
	}

	h.logger.Info("Webhook Event Received",
		zap.String("type", string(event.Type)),
		zap.String("id", event.ID),
		zap.Time("created", time.Unix(event.Created, 0)),
	)

	ctx := c.Request().Context()

	// A delivery whose journal row already completed was fully handled
	// before; ack it without touching the reconciler. Failed or pending
	// rows fall through so redelivery can retry them.
	if prior, err := h.webhookRepo.GetEvent(ctx, event.ID); err != nil {
		h.logger.Warn("Failed to read webhook journal",
			zap.String("event_id", event.ID),
			zap.Error(err))
	} else if prior != nil && prior.Status == model.WebhookStatusCompleted {
		h.logger.Info("Duplicate webhook delivery ignored",
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)))
		return c.JSON(http.StatusOK, echo.Map{
			"received": true,
			"event":    string(event.Type),
		})
	}

	// Journal first so a crash mid-handling leaves a pending record.
	// Journal failure is not fatal; the reconciler's writes are
	// idempotent on their own.
	if err := h.webhookRepo.SaveEvent(ctx, event.ID, string(event.Type), body); err != nil {
		h.logger.Warn("Failed to journal webhook event",
			zap.String("event_id", event.ID),
			zap.Error(err))
	}

	if err := h.reconciler.HandleEvent(ctx, event); err != nil {
		h.logger.Error("Webhook event handling failed",
			zap.String("event_id", event.ID),
			zap.String("type", string(event.Type)),
			zap.Error(err))

		if markErr := h.webhookRepo.MarkFailed(ctx, event.ID, err); markErr != nil {
			h.logger.Warn("Failed to mark webhook event as failed",
				zap.String("event_id", event.ID),
				zap.Error(markErr))
		}

		// Non-2xx makes the provider redeliver with backoff.
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Error handling webhook event",
		})
	}

	if err := h.webhookRepo.MarkProcessed(ctx, event.ID); err != nil {
		h.logger.Warn("Failed to mark webhook event as processed",
			zap.String("event_id", event.ID),
			zap.Error(err))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"received": true,
		"event":    string(event.Type),
	})
}
