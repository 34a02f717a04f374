package usecase

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v79"
	"go.uber.org/zap"

	"github.com/lumastack/billing-service/internal/domain/entity"
	domainErrors "github.com/lumastack/billing-service/internal/domain/errors"
	"github.com/lumastack/billing-service/internal/domain/provider"
	"github.com/lumastack/billing-service/internal/domain/repository"
)

// CheckoutService starts provider-hosted checkout and billing-portal
// sessions for authenticated users.
type CheckoutService struct {
	provider     provider.PaymentProvider
	customerRepo repository.CustomerRepository
	logger       *zap.Logger
}

// NewCheckoutService creates a new checkout service instance
func NewCheckoutService(
	paymentProvider provider.PaymentProvider,
	customerRepo repository.CustomerRepository,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		provider:     paymentProvider,
		customerRepo: customerRepo,
		logger:       logger,
	}
}

// CreateCheckoutSession resolves (or lazily mints) the provider customer
// for the user and opens a subscription-mode checkout session for the
// requested price. The caller redirects the browser to the returned URL.
func (s *CheckoutService) CreateCheckoutSession(ctx context.Context, userID, email, priceID string) (*stripe.CheckoutSession, error) {
	if userID == "" {
		return nil, domainErrors.ErrUnauthenticated
	}

	customerID, err := s.resolveOrCreateCustomer(ctx, userID, email)
	if err != nil {
		return nil, err
	}

	session, err := s.provider.CreateCheckoutSession(ctx, customerID, priceID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return session, nil
}

// CreatePortalSession opens the provider's self-service billing page for
// the user's customer. Unlike checkout there is no lazy mint: a user with
// no customer record has nothing to manage.
func (s *CheckoutService) CreatePortalSession(ctx context.Context, userID string) (*stripe.BillingPortalSession, error) {
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

	portal, err := s.provider.CreatePortalSession(ctx, customer.StripeCustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to create portal session: %w", err)
	}

	return portal, nil
}

// resolveOrCreateCustomer returns the user's provider customer id, minting
// the customer on first use. A failure to persist the new mapping is
// logged but does not abort checkout: the webhook reconciliation will fill
// it in from the customer's metadata later.
func (s *CheckoutService) resolveOrCreateCustomer(ctx context.Context, userID, email string) (string, error) {
	existing, err := s.customerRepo.GetByUserID(ctx, userID)
	if err != nil {
		s.logger.Warn("Error checking for existing customer record",
			zap.String("user_id", userID),
			zap.Error(err))
	} else if existing != nil {
		return existing.StripeCustomerID, nil
	}

	customer, err := s.provider.CreateCustomer(ctx, email, userID)
	if err != nil {
		return "", fmt.Errorf("failed to create provider customer: %w", err)
	}

	s.logger.Info("Created new provider customer",
		zap.String("customer_id", customer.ID),
		zap.String("user_id", userID),
	)

	if err := s.customerRepo.Create(ctx, &entity.Customer{
		UserID:           userID,
		StripeCustomerID: customer.ID,
		Email:            email,
	}); err != nil {
		s.logger.Error("Failed to save customer record, proceeding with checkout",
			zap.String("user_id", userID),
			zap.String("customer_id", customer.ID),
			zap.Error(err))
	}

	return customer.ID, nil
}
