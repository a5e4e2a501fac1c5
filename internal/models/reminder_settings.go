package models

import (
	"time"

	"github.com/google/uuid"
)

// ReminderSettings overrides the global reminder policy for one subscription.
type ReminderSettings struct {
	ID              uuid.UUID `json:"id" db:"id"`
	SubscriptionID  uuid.UUID `json:"subscription_id" db:"subscription_id"`
	ReminderDays    []int     `json:"reminder_days" db:"reminder_days"`
	EmailEnabled    bool      `json:"email_enabled" db:"email_enabled"`
	WhatsAppEnabled bool      `json:"whatsapp_enabled" db:"whatsapp_enabled"`
	CustomMessage   *string   `json:"custom_message" db:"custom_message"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// EnabledTypes lists the channels turned on by the settings.
func (s *ReminderSettings) EnabledTypes() []ReminderType {
	var types []ReminderType
	if s.EmailEnabled {
		types = append(types, ReminderTypeEmail)
	}
	if s.WhatsAppEnabled {
		types = append(types, ReminderTypeWhatsApp)
	}
	return types
}
