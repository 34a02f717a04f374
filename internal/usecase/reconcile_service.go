package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"

	"github.com/lumastack/billing-service/internal/domain/entity"
	domainErrors "github.com/lumastack/billing-service/internal/domain/errors"
	"github.com/lumastack/billing-service/internal/domain/provider"
	"github.com/lumastack/billing-service/internal/domain/repository"
	stripeprovider "github.com/lumastack/billing-service/internal/infrastructure/provider/stripe"
)

// ReconcileService applies provider webhook events to the persisted
// customer and subscription records. It is the sole writer of both tables.
//
// Deliveries are at-least-once and may arrive duplicated or out of order.
// Every upsert keys on the provider-assigned id and overwrites with the
// event's field values, so reapplying an event is a no-op and concurrent
// deliveries for the same subscription resolve to last-write-wins. There is
// no timestamp-based conflict resolution; the weak-consistency window is
// accepted.
type ReconcileService struct {
	provider         provider.PaymentProvider
	subscriptionRepo repository.SubscriptionRepository
	customerRepo     repository.CustomerRepository
	logger           *zap.Logger
}

// NewReconcileService creates a new reconcile service instance
func NewReconcileService(
	paymentProvider provider.PaymentProvider,
	subscriptionRepo repository.SubscriptionRepository,
	customerRepo repository.CustomerRepository,
	logger *zap.Logger,
) *ReconcileService {
	return &ReconcileService{
		provider:         paymentProvider,
		subscriptionRepo: subscriptionRepo,
		customerRepo:     customerRepo,
		logger:           logger,
	}
}

// HandleEvent dispatches a verified webhook event. A nil return means the
// event was processed (or deliberately ignored) and must be acked with 200;
// an error means the provider should redeliver, so handlers have to be safe
// to re-run.
func (s *ReconcileService) HandleEvent(ctx context.Context, event stripe.Event) error {
	s.logger.Info("Webhook event received",
		zap.String("type", string(event.Type)),
		zap.String("id", event.ID),
		zap.Time("created", time.Unix(event.Created, 0)),
	)

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		return s.handleCheckoutCompleted(ctx, event)

	case stripe.EventTypeCustomerSubscriptionCreated,
		stripe.EventTypeCustomerSubscriptionUpdated,
		stripe.EventTypeCustomerSubscriptionDeleted:
		return s.handleSubscriptionEvent(ctx, event)

	case stripe.EventTypeInvoicePaid:
		return s.handleInvoiceEvent(ctx, event, true)

	case stripe.EventTypeInvoicePaymentFailed:
		return s.handleInvoiceEvent(ctx, event, false)

	default:
		// The provider's event vocabulary grows over time; unknown types are
		// acked, never failed.
		s.logger.Warn("Unhandled event type",
			zap.String("type", string(event.Type)),
			zap.String("id", event.ID),
		)
		return nil
	}
}

// handleCheckoutCompleted reconciles a finished checkout. The session
// payload is not trusted to carry a complete subscription, so the full
// snapshot is re-fetched from the provider before upserting.
func (s *ReconcileService) handleCheckoutCompleted(ctx context.Context, event stripe.Event) error {
	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return fmt.Errorf("failed to parse checkout session: %w", err)
	}

	if session.Mode != stripe.CheckoutSessionModeSubscription ||
		session.Subscription == nil || session.Customer == nil {
		s.logger.Info("Checkout session completed without subscription, ignoring",
			zap.String("session_id", session.ID),
			zap.String("mode", string(session.Mode)),
		)
		return nil
	}

	customerID := session.Customer.ID

	sub, err := s.provider.GetSubscription(ctx, session.Subscription.ID)
	if err != nil {
		return fmt.Errorf("failed to retrieve subscription %s: %w", session.Subscription.ID, err)
	}

	// Owner resolution precedence: session metadata, then customer
	// metadata, else unattributed.
	userID := stripeprovider.UserIDFromMetadata(session.Metadata)

	customer, err := s.provider.GetCustomer(ctx, customerID)
	if err != nil {
		s.logger.Warn("Failed to retrieve customer for attribution",
			zap.String("customer_id", customerID),
			zap.Error(err))
		customer = nil
	}
	if userID == "" && customer != nil {
		userID = stripeprovider.UserIDFromMetadata(customer.Metadata)
	}

	if err := s.subscriptionRepo.Upsert(ctx, subscriptionFromStripe(sub, customerID, userID)); err != nil {
		return err
	}

	s.logger.Info("Checkout session reconciled",
		zap.String("session_id", session.ID),
		zap.String("subscription_id", sub.ID),
		zap.String("customer_id", customerID),
		zap.String("user_id", userID),
	)

	// Secondary write: a failure here is logged but never rolls back the
	// subscription upsert or fails the event.
	if userID != "" && customer != nil && !customer.Deleted {
		if err := s.upsertCustomer(ctx, userID, customer); err != nil {
			s.logger.Error("Failed to upsert customer record",
				zap.String("user_id", userID),
				zap.String("customer_id", customer.ID),
				zap.Error(err))
		}
	} else if userID == "" {
		s.logger.Warn("No user id in session or customer metadata, subscription stored unattributed",
			zap.String("subscription_id", sub.ID),
			zap.String("customer_id", customerID),
		)
	}

	return nil
}

// handleSubscriptionEvent upserts the event's embedded subscription
// snapshot. Attribution is best effort: if the customer lookup fails the
// record is stored with a null user id rather than failing the event.
func (s *ReconcileService) handleSubscriptionEvent(ctx context.Context, event stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return fmt.Errorf("failed to parse subscription: %w", err)
	}

	customerID := ""
	if sub.Customer != nil {
		customerID = sub.Customer.ID
	}

	userID := stripeprovider.UserIDFromMetadata(sub.Metadata)
	if userID == "" && customerID != "" {
		customer, err := s.provider.GetCustomer(ctx, customerID)
		if err != nil {
			s.logger.Warn("Failed to retrieve customer for attribution, storing unattributed",
				zap.String("customer_id", customerID),
				zap.String("subscription_id", sub.ID),
				zap.Error(err))
		} else if !customer.Deleted {
			userID = stripeprovider.UserIDFromMetadata(customer.Metadata)
		}
	}

	if err := s.subscriptionRepo.Upsert(ctx, subscriptionFromStripe(&sub, customerID, userID)); err != nil {
		return err
	}

	s.logger.Info("Subscription reconciled",
		zap.String("event_type", string(event.Type)),
		zap.String("subscription_id", sub.ID),
		zap.String("customer_id", customerID),
		zap.String("status", string(sub.Status)),
	)

	return nil
}

// handleInvoiceEvent observes invoice outcomes. Invoices are read straight
// from the provider by the query layer, so nothing is persisted here.
func (s *ReconcileService) handleInvoiceEvent(ctx context.Context, event stripe.Event, paid bool) error {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return fmt.Errorf("failed to parse invoice: %w", err)
	}

	fields := []zap.Field{
		zap.String("invoice_id", invoice.ID),
		zap.Int64("amount_due", invoice.AmountDue),
		zap.Int64("amount_paid", invoice.AmountPaid),
	}
	if invoice.Customer != nil {
		fields = append(fields, zap.String("customer_id", invoice.Customer.ID))
	}
	if invoice.Subscription != nil {
		fields = append(fields, zap.String("subscription_id", invoice.Subscription.ID))
	}

	if paid {
		s.logger.Info("Invoice paid", fields...)
	} else {
		s.logger.Warn("Invoice payment failed", fields...)
	}

	return nil
}

// upsertCustomer creates or refreshes the user→customer mapping. An
// existing mapping with a different provider customer id is never
// overwritten; that situation is surfaced as a data-integrity alarm.
func (s *ReconcileService) upsertCustomer(ctx context.Context, userID string, customer *stripe.Customer) error {
	existing, err := s.customerRepo.GetByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to look up customer record: %w", err)
	}

	if existing == nil {
		return s.customerRepo.Create(ctx, &entity.Customer{
			UserID:           userID,
			StripeCustomerID: customer.ID,
			Email:            customer.Email,
		})
	}

	if existing.StripeCustomerID != customer.ID {
		s.logger.Error("Provider customer id conflict",
			zap.String("user_id", userID),
			zap.String("stored_customer_id", existing.StripeCustomerID),
			zap.String("event_customer_id", customer.ID),
		)
		return domainErrors.ErrCustomerConflict
	}

	if customer.Email != "" && customer.Email != existing.Email {
		return s.customerRepo.UpdateEmail(ctx, userID, customer.Email)
	}

	return nil
}

// subscriptionFromStripe projects a provider subscription snapshot onto the
// persisted entity. An empty userID becomes a null owner.
func subscriptionFromStripe(sub *stripe.Subscription, customerID, userID string) *entity.Subscription {
	e := &entity.Subscription{
		ID:                 sub.ID,
		CustomerID:         customerID,
		Status:             string(sub.Status),
		CurrentPeriodStart: time.Unix(sub.CurrentPeriodStart, 0),
		CurrentPeriodEnd:   time.Unix(sub.CurrentPeriodEnd, 0),
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
	}

	if userID != "" {
		e.UserID = &userID
	}

	if sub.CancelAt > 0 {
		t := time.Unix(sub.CancelAt, 0)
		e.CancelAt = &t
	}
	if sub.CanceledAt > 0 {
		t := time.Unix(sub.CanceledAt, 0)
		e.CanceledAt = &t
	}

	if sub.Items != nil && len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		if item.Price != nil {
			e.PriceID = item.Price.ID
			if item.Price.Product != nil {
				e.ProductID = item.Price.Product.ID
			}
		}
	}

	if len(sub.Metadata) > 0 {
		e.Metadata = make(map[string]string, len(sub.Metadata))
		for k, v := range sub.Metadata {
			e.Metadata[k] = v
		}
	}

	return e
}
