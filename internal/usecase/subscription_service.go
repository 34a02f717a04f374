package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"

	"github.com/lumastack/billing-service/internal/domain/entity"
	domainErrors "github.com/lumastack/billing-service/internal/domain/errors"
	"github.com/lumastack/billing-service/internal/domain/provider"
	"github.com/lumastack/billing-service/internal/domain/repository"
	"github.com/lumastack/billing-service/pkg/currency"
)

const invoicePageSize = 10

// SubscriptionService is the read side of the billing store plus the two
// provider-mediated mutations (cancel at period end, reactivate). It never
// writes subscription records itself; the reconciler owns those.
type SubscriptionService struct {
	provider         provider.PaymentProvider
	subscriptionRepo repository.SubscriptionRepository
	customerRepo     repository.CustomerRepository
	logger           *zap.Logger
}

// NewSubscriptionService creates a new subscription service instance
func NewSubscriptionService(
	paymentProvider provider.PaymentProvider,
	subscriptionRepo repository.SubscriptionRepository,
	customerRepo repository.CustomerRepository,
	logger *zap.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		provider:         paymentProvider,
		subscriptionRepo: subscriptionRepo,
		customerRepo:     customerRepo,
		logger:           logger,
	}
}

// GetSubscriptions lists the reconciled subscriptions belonging to the
// user's provider customer. A user without a customer record has no
// subscriptions.
func (s *SubscriptionService) GetSubscriptions(ctx context.Context, userID string) ([]*entity.Subscription, error) {
	if userID == "" {
		return nil, domainErrors.ErrUnauthenticated
	}

	customer, err := s.customerRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up customer record: %w", err)
	}
	if customer == nil {
		return []*entity.Subscription{}, nil
	}

	return s.subscriptionRepo.ListByCustomerID(ctx, customer.StripeCustomerID)
}

// GetSubscriptionDetail returns a single reconciled subscription after
// verifying ownership: the record's stored customer id must match the
// customer resolved for the caller. Guessable subscription ids must never
// leak another tenant's billing state.
func (s *SubscriptionService) GetSubscriptionDetail(ctx context.Context, subscriptionID, userID string) (*entity.Subscription, error) {
	if userID == "" {
		return nil, domainErrors.ErrUnauthenticated
	}

	sub, err := s.subscriptionRepo.GetByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, domainErrors.ErrSubscriptionNotFound
	}

	customer, err := s.customerRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up customer record: %w", err)
	}
	if customer == nil || customer.StripeCustomerID != sub.CustomerID {
		return nil, domainErrors.ErrNotOwned
	}

	return sub, nil
}

// GetInvoices returns one provider page of the user's invoices, optionally
// scoped to a subscription. startingAfter is the provider's opaque forward
// cursor; previous-page navigation is the client's cursor history.
func (s *SubscriptionService) GetInvoices(ctx context.Context, userID, subscriptionID, startingAfter string) (*entity.InvoicePage, error) {
	if userID == "" {
		return nil, domainErrors.ErrUnauthenticated
	}

	customer, err := s.customerRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up customer record: %w", err)
	}
	if customer == nil {
		return &entity.InvoicePage{Data: []*entity.Invoice{}}, nil
	}

	invoices, hasMore, err := s.provider.ListInvoices(ctx, customer.StripeCustomerID, subscriptionID, startingAfter, invoicePageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	page := &entity.InvoicePage{
		Data:    make([]*entity.Invoice, 0, len(invoices)),
		HasMore: hasMore,
	}
	for _, inv := range invoices {
		page.Data = append(page.Data, invoiceFromStripe(inv))
	}

	return page, nil
}

// CancelAtPeriodEnd flags the subscription to end at the close of the
// current billing period. The mutation goes to the provider only; the
// local record converges when the subscription updated event arrives.
func (s *SubscriptionService) CancelAtPeriodEnd(ctx context.Context, subscriptionID, userID string) (*stripe.Subscription, error) {
	return s.setCancelAtPeriodEnd(ctx, subscriptionID, userID, true)
}

// Reactivate clears a pending cancellation before the period ends.
func (s *SubscriptionService) Reactivate(ctx context.Context, subscriptionID, userID string) (*stripe.Subscription, error) {
	return s.setCancelAtPeriodEnd(ctx, subscriptionID, userID, false)
}

func (s *SubscriptionService) setCancelAtPeriodEnd(ctx context.Context, subscriptionID, userID string, cancel bool) (*stripe.Subscription, error) {
	if userID == "" {
		return nil, domainErrors.ErrUnauthenticated
	}

	customer, err := s.customerRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up customer record: %w", err)
	}
	if customer == nil {
		return nil, domainErrors.ErrNoCustomer
	}

	// Ownership is re-derived against the provider's own record, not the
	// local store, so a not-yet-reconciled subscription can still be
	// managed by its owner.
	sub, err := s.provider.GetSubscription(ctx, subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve subscription: %w", err)
	}
	if sub.Customer == nil || sub.Customer.ID != customer.StripeCustomerID {
		return nil, domainErrors.ErrNotOwned
	}

	updated, err := s.provider.UpdateCancelAtPeriodEnd(ctx, subscriptionID, cancel)
	if err != nil {
		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}

	s.logger.Info("Subscription cancellation flag updated",
		zap.String("subscription_id", subscriptionID),
		zap.String("user_id", userID),
		zap.Bool("cancel_at_period_end", updated.CancelAtPeriodEnd),
	)

	return updated, nil
}

func invoiceFromStripe(inv *stripe.Invoice) *entity.Invoice {
	e := &entity.Invoice{
		ID:               inv.ID,
		Number:           inv.Number,
		Status:           string(inv.Status),
		AmountDue:        inv.AmountDue,
		AmountPaid:       inv.AmountPaid,
		Currency:         string(inv.Currency),
		AmountDisplay:    currency.Format(inv.AmountDue, string(inv.Currency)),
		HostedInvoiceURL: inv.HostedInvoiceURL,
		InvoicePDF:       inv.InvoicePDF,
	}
	if inv.Created > 0 {
		e.CreatedAt = time.Unix(inv.Created, 0)
	}
	if inv.Customer != nil {
		e.CustomerID = inv.Customer.ID
	}
	if inv.Subscription != nil {
		e.SubscriptionID = inv.Subscription.ID
	}
	return e
}
