package repository

import (
	"context"

	"github.com/lumastack/billing-service/internal/domain/entity"
)

type SubscriptionRepository interface {
	// Upsert inserts or overwrites the record keyed on the provider
	// subscription id. Overwrite-with-latest-fields: applying the same
	// snapshot twice leaves the row unchanged, and concurrent or
	// out-of-order deliveries resolve to whichever write the store saw
	// last.
	Upsert(ctx context.Context, subscription *entity.Subscription) error
	GetByID(ctx context.Context, subscriptionID string) (*entity.Subscription, error)
	ListByCustomerID(ctx context.Context, customerID string) ([]*entity.Subscription, error)
}
