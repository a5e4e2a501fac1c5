package models

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus is the lifecycle state of a subscription.
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubscriptionStatusActive, SubscriptionStatusExpired, SubscriptionStatusCancelled:
		return true
	}
	return false
}

// Subscription dates are calendar dates held as UTC midnight.
type Subscription struct {
	ID         uuid.UUID          `json:"id" db:"id"`
	CustomerID uuid.UUID          `json:"customer_id" db:"customer_id"`
	ProductID  uuid.UUID          `json:"product_id" db:"product_id"`
	StartDate  time.Time          `json:"start_date" db:"start_date"`
	EndDate    time.Time          `json:"end_date" db:"end_date"`
	Status     SubscriptionStatus `json:"status" db:"status"`
	AutoRenew  bool               `json:"auto_renew" db:"auto_renew"`
	CreatedAt  time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at" db:"updated_at"`
}

// SubscriptionDetail is a subscription joined with its customer and product.
type SubscriptionDetail struct {
	Subscription
	Customer Customer `json:"customer"`
	Product  Product  `json:"product"`
}
