package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lumastack/billing-service/internal/domain/entity"
	"github.com/lumastack/billing-service/internal/domain/model"
	"github.com/lumastack/billing-service/internal/domain/repository"
)

type subscriptionRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *gorm.DB, logger *zap.Logger) repository.SubscriptionRepository {
	return &subscriptionRepository{
		db:     db,
		logger: logger,
	}
}

// upsertColumns are the fields overwritten on conflict. Everything the event
// carries is replaced; created_at and the surrogate id are left alone.
var upsertColumns = []string{
	"stripe_customer_id",
	"user_id",
	"status",
	"price_id",
	"product_id",
	"current_period_start",
	"current_period_end",
	"cancel_at_period_end",
	"cancel_at",
	"canceled_at",
	"metadata",
	"updated_at",
}

// Upsert writes the subscription keyed on stripe_subscription_id with
// overwrite-on-conflict semantics. Concurrent deliveries for the same id
// race here; the single-row atomic write makes the outcome last-write-wins.
func (r *subscriptionRepository) Upsert(ctx context.Context, subscription *entity.Subscription) error {
	m, err := r.entityToModel(subscription)
	if err != nil {
		return err
	}

	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "stripe_subscription_id"}},
			DoUpdates: clause.AssignmentColumns(upsertColumns),
		}).
		Create(m).Error

	if err != nil {
		r.logger.Error("Failed to upsert subscription",
			zap.String("subscription_id", subscription.ID),
			zap.Error(err))
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}

	return nil
}

// GetByID retrieves a subscription by its provider subscription id
func (r *subscriptionRepository) GetByID(ctx context.Context, subscriptionID string) (*entity.Subscription, error) {
	var m model.Subscription

	err := r.db.WithContext(ctx).
		Where("stripe_subscription_id = ?", subscriptionID).
		First(&m).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get subscription by ID",
			zap.String("subscription_id", subscriptionID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return r.modelToEntity(&m), nil
}

// ListByCustomerID retrieves all subscriptions for a provider customer
func (r *subscriptionRepository) ListByCustomerID(ctx context.Context, customerID string) ([]*entity.Subscription, error) {
	var models []model.Subscription

	err := r.db.WithContext(ctx).
		Where("stripe_customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&models).Error

	if err != nil {
		r.logger.Error("Failed to list subscriptions by customer ID",
			zap.String("customer_id", customerID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	entities := make([]*entity.Subscription, len(models))
	for i := range models {
		entities[i] = r.modelToEntity(&models[i])
	}
	return entities, nil
}

func (r *subscriptionRepository) modelToEntity(m *model.Subscription) *entity.Subscription {
	if m == nil {
		return nil
	}

	e := &entity.Subscription{
		ID:                 m.StripeSubscriptionID,
		CustomerID:         m.StripeCustomerID,
		Status:             string(m.Status),
		PriceID:            m.PriceID,
		ProductID:          m.ProductID,
		CurrentPeriodStart: m.CurrentPeriodStart,
		CurrentPeriodEnd:   m.CurrentPeriodEnd,
		CancelAtPeriodEnd:  m.CancelAtPeriodEnd,
		CancelAt:           m.CancelAt,
		CanceledAt:         m.CanceledAt,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}

	if m.UserID != nil {
		id := m.UserID.String()
		e.UserID = &id
	}

	if m.Metadata != nil {
		e.Metadata = make(map[string]string, len(m.Metadata))
		for k, v := range m.Metadata {
			if s, ok := v.(string); ok {
				e.Metadata[k] = s
			}
		}
	}

	return e
}

func (r *subscriptionRepository) entityToModel(e *entity.Subscription) (*model.Subscription, error) {
	if e == nil {
		return nil, nil
	}

	m := &model.Subscription{
		StripeSubscriptionID: e.ID,
		StripeCustomerID:     e.CustomerID,
		Status:               model.SubscriptionStatus(e.Status),
		PriceID:              e.PriceID,
		ProductID:            e.ProductID,
		CurrentPeriodStart:   e.CurrentPeriodStart,
		CurrentPeriodEnd:     e.CurrentPeriodEnd,
		CancelAtPeriodEnd:    e.CancelAtPeriodEnd,
		CancelAt:             e.CancelAt,
		CanceledAt:           e.CanceledAt,
	}

	if e.UserID != nil {
		userUUID, err := uuid.Parse(*e.UserID)
		if err != nil {
			return nil, fmt.Errorf("invalid user id on subscription %s: %w", e.ID, err)
		}
		m.UserID = &userUUID
	}

	if e.Metadata != nil {
		m.Metadata = make(model.JSONB, len(e.Metadata))
		for k, v := range e.Metadata {
			m.Metadata[k] = v
		}
	}

	return m, nil
}
