package models

import (
	"time"

	"github.com/google/uuid"
)

type Customer struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone" db:"phone"`
	WhatsApp  *string   `json:"whatsapp" db:"whatsapp"`
	Address   *string   `json:"address" db:"address"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// WhatsAppNumber returns the dedicated WhatsApp number, falling back to phone.
func (c *Customer) WhatsAppNumber() string {
	if c.WhatsApp != nil && *c.WhatsApp != "" {
		return *c.WhatsApp
	}
	return c.Phone
}
