package entity

import "time"

// Subscription is the reconciled view of a provider subscription. ID is the
// provider-assigned subscription id and is the upsert conflict key: the
// record at rest reflects the last-applied event, not necessarily the most
// recently emitted one.
type Subscription struct {
	ID                 string            `json:"id"`
	CustomerID         string            `json:"customer_id"`
	UserID             *string           `json:"user_id,omitempty"`
	Status             string            `json:"status"`
	PriceID            string            `json:"price_id"`
	ProductID          string            `json:"product_id"`
	CurrentPeriodStart time.Time         `json:"current_period_start"`
	CurrentPeriodEnd   time.Time         `json:"current_period_end"`
	CancelAtPeriodEnd  bool              `json:"cancel_at_period_end"`
	CancelAt           *time.Time        `json:"cancel_at,omitempty"`
	CanceledAt         *time.Time        `json:"canceled_at,omitempty"`
	Metadata           map[string]string `json:"metadata,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}
