package stripe

import (
	"context"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"go.uber.org/zap"

	"github.com/lumastack/billing-service/internal/domain/provider"
)

// metadataUserKey carries the internal user id through provider objects so
// it survives the round trip back through asynchronous events.
const metadataUserKey = "app_user_id"

// UserIDFromMetadata extracts the internal user id a provider object was
// tagged with, if any.
func UserIDFromMetadata(metadata map[string]string) string {
	return metadata[metadataUserKey]
}

// Provider implements provider.PaymentProvider against the Stripe API using
// an explicitly constructed client rather than the SDK's package-level key.
type Provider struct {
	api     *client.API
	siteURL string
	logger  *zap.Logger
}

var _ provider.PaymentProvider = (*Provider)(nil)

// NewProvider creates a Stripe-backed payment provider. siteURL is the base
// for checkout success/cancel and portal return URLs.
func NewProvider(secretKey, siteURL string, logger *zap.Logger) *Provider {
	api := &client.API{}
	api.Init(secretKey, nil)

	return &Provider{
		api:     api,
		siteURL: siteURL,
		logger:  logger,
	}
}

func (p *Provider) CreateCustomer(ctx context.Context, email, userID string) (*stripe.Customer, error) {
	params := &stripe.CustomerParams{
		Email: stripe.String(email),
		Metadata: map[string]string{
			metadataUserKey: userID,
		},
	}
	params.Context = ctx

	return p.api.Customers.New(params)
}

func (p *Provider) GetCustomer(ctx context.Context, customerID string) (*stripe.Customer, error) {
	params := &stripe.CustomerParams{}
	params.Context = ctx

	return p.api.Customers.Get(customerID, params)
}

func (p *Provider) GetSubscription(ctx context.Context, subscriptionID string) (*stripe.Subscription, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx
	params.AddExpand("items.data.price")

	return p.api.Subscriptions.Get(subscriptionID, params)
}

func (p *Provider) UpdateCancelAtPeriodEnd(ctx context.Context, subscriptionID string, cancel bool) (*stripe.Subscription, error) {
	params := &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(cancel),
	}
	params.Context = ctx
	params.AddExpand("items.data.price")

	return p.api.Subscriptions.Update(subscriptionID, params)
}

func (p *Provider) ListInvoices(ctx context.Context, customerID, subscriptionID, startingAfter string, limit int64) ([]*stripe.Invoice, bool, error) {
	params := &stripe.InvoiceListParams{
		Customer: stripe.String(customerID),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(limit)
	params.Single = true
	if subscriptionID != "" {
		params.Subscription = stripe.String(subscriptionID)
	}
	if startingAfter != "" {
		params.StartingAfter = stripe.String(startingAfter)
	}

	iter := p.api.Invoices.List(params)

	var invoices []*stripe.Invoice
	for iter.Next() {
		invoices = append(invoices, iter.Invoice())
	}
	if err := iter.Err(); err != nil {
		return nil, false, err
	}

	return invoices, iter.InvoiceList().ListMeta.HasMore, nil
}

func (p *Provider) CreateCheckoutSession(ctx context.Context, customerID, priceID, userID string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer:           stripe.String(customerID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(p.siteURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(p.siteURL + "/"),
		Metadata: map[string]string{
			metadataUserKey: userID,
		},
	}
	params.Context = ctx

	s, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, err
	}

	p.logger.Info("Checkout session created",
		zap.String("session_id", s.ID),
		zap.String("customer_id", customerID),
		zap.String("price_id", priceID),
	)

	return s, nil
}

func (p *Provider) CreatePortalSession(ctx context.Context, customerID string) (*stripe.BillingPortalSession, error) {
	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(p.siteURL + "/dashboard/subscriptions"),
	}
	params.Context = ctx

	ps, err := p.api.BillingPortalSessions.New(params)
	if err != nil {
		return nil, err
	}

	p.logger.Info("Portal session created",
		zap.String("portal_session_id", ps.ID),
		zap.String("customer_id", customerID),
	)

	return ps, nil
}
