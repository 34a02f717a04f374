package model

import (
	"time"

	"github.com/google/uuid"
)

// Customer maps provider customer ids to internal user ids. The provider
// customer id is immutable once set.
type Customer struct {
	ID               int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID           uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	StripeCustomerID string    `gorm:"uniqueIndex;not null;size:100" json:"stripe_customer_id"`
	Email            string    `gorm:"size:255" json:"email"`
	CreatedAt        time.Time `gorm:"default:now()" json:"created_at"`
	UpdatedAt        time.Time `gorm:"default:now()" json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Customer) TableName() string {
	return "customers"
}
