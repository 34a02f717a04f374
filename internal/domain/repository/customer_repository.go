package repository

import (
	"context"

	"github.com/lumastack/billing-service/internal/domain/entity"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByUserID(ctx context.Context, userID string) (*entity.Customer, error)
	// UpdateEmail refreshes the stored email for an existing mapping. The
	// provider customer id itself is never updated.
	UpdateEmail(ctx context.Context, userID, email string) error
}
