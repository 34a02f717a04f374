package entity

import "time"

// Customer maps an internal user to the payment provider's customer record.
// Created lazily on first checkout or first resolvable webhook event; never
// deleted automatically.
type Customer struct {
	ID               int64     `json:"id"`
	UserID           string    `json:"user_id"`
	StripeCustomerID string    `json:"stripe_customer_id"`
	Email            string    `json:"email"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
