package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillingCycle is the renewal period of a product.
type BillingCycle string

const (
	BillingCycleMonthly   BillingCycle = "monthly"
	BillingCycleQuarterly BillingCycle = "quarterly"
	BillingCycleYearly    BillingCycle = "yearly"
)

type Product struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	Name         string          `json:"name" db:"name"`
	Description  *string         `json:"description" db:"description"`
	Price        decimal.Decimal `json:"price" db:"price"`
	CategoryID   *uuid.UUID      `json:"category_id" db:"category_id"`
	BillingCycle BillingCycle    `json:"billing_cycle" db:"billing_cycle"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`

	Category *Category `json:"category,omitempty" db:"-"`
}
