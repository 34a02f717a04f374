package provider

import (
	"context"

	"github.com/stripe/stripe-go/v79"
)

// PaymentProvider is the slice of the payment provider API this service
// depends on. The concrete implementation wraps an explicitly constructed
// SDK client so tests can substitute a fake without process-wide state.
type PaymentProvider interface {
	// CreateCustomer mints a provider customer carrying the internal user id
	// in its metadata so asynchronous events can be attributed later.
	CreateCustomer(ctx context.Context, email, userID string) (*stripe.Customer, error)
	GetCustomer(ctx context.Context, customerID string) (*stripe.Customer, error)

	// GetSubscription fetches the full subscription snapshot. Used both by
	// the query layer and by the reconciler, which never trusts the
	// checkout-completed event payload to be complete.
	GetSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error)
	// UpdateCancelAtPeriodEnd flips the cancel-at-period-end flag. The local
	// store is intentionally not written here; the subsequent subscription
	// updated event converges it.
	UpdateCancelAtPeriodEnd(ctx context.Context, subscriptionID string, cancel bool) (*stripe.Subscription, error)

	ListInvoices(ctx context.Context, customerID, subscriptionID, startingAfter string, limit int64) ([]*stripe.Invoice, bool, error)

	CreateCheckoutSession(ctx context.Context, customerID, priceID, userID string) (*stripe.CheckoutSession, error)
	CreatePortalSession(ctx context.Context, customerID string) (*stripe.BillingPortalSession, error)
}
