package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lumastack/billing-service/internal/adapter/repository"
	domainRepo "github.com/lumastack/billing-service/internal/domain/repository"
)

// Repositories holds all repository instances
type Repositories struct {
	Customer     domainRepo.CustomerRepository
	Subscription domainRepo.SubscriptionRepository
	Webhook      repository.WebhookRepository
}

// NewRepositories creates new repository instances with database connection
func NewRepositories(db *gorm.DB, logger *zap.Logger) *Repositories {
	return &Repositories{
		Customer:     repository.NewCustomerRepository(db),
		Subscription: repository.NewSubscriptionRepository(db, logger),
		Webhook:      repository.NewWebhookRepository(db, logger),
	}
}
