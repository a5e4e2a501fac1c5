package models

import (
	"time"

	"github.com/google/uuid"
)

// ReminderType is the delivery channel of a reminder.
type ReminderType string

const (
	ReminderTypeEmail    ReminderType = "email"
	ReminderTypeWhatsApp ReminderType = "whatsapp"
)

// Rank orders reminder types: email before whatsapp.
func (t ReminderType) Rank() int {
	switch t {
	case ReminderTypeEmail:
		return 0
	case ReminderTypeWhatsApp:
		return 1
	}
	return 2
}

// Valid reports whether t is a known reminder type.
func (t ReminderType) Valid() bool {
	return t == ReminderTypeEmail || t == ReminderTypeWhatsApp
}

// ReminderStatus is the delivery state of a reminder.
type ReminderStatus string

const (
	ReminderStatusPending ReminderStatus = "pending"
	ReminderStatusSent    ReminderStatus = "sent"
	ReminderStatusFailed  ReminderStatus = "failed"
)

// Reminder is a renewal notice for one subscription on one channel.
// SentAt is set iff Status is sent.
type Reminder struct {
	ID             uuid.UUID      `json:"id" db:"id"`
	SubscriptionID uuid.UUID      `json:"subscription_id" db:"subscription_id"`
	ReminderDate   time.Time      `json:"reminder_date" db:"reminder_date"`
	Type           ReminderType   `json:"type" db:"type"`
	Status         ReminderStatus `json:"status" db:"status"`
	SentAt         *time.Time     `json:"sent_at" db:"sent_at"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
}

// ReminderKey is the uniqueness key of a reminder.
type ReminderKey struct {
	SubscriptionID uuid.UUID
	Type           ReminderType
	ReminderDate   time.Time
}

// Key returns the uniqueness key of r.
func (r *Reminder) Key() ReminderKey {
	return ReminderKey{SubscriptionID: r.SubscriptionID, Type: r.Type, ReminderDate: r.ReminderDate}
}

// ReminderDraft is a reminder computed by the generator but not yet stored.
type ReminderDraft struct {
	SubscriptionID uuid.UUID    `json:"subscription_id"`
	Type           ReminderType `json:"type"`
	ReminderDate   time.Time    `json:"reminder_date"`
}

// Key returns the uniqueness key of d.
func (d ReminderDraft) Key() ReminderKey {
	return ReminderKey{SubscriptionID: d.SubscriptionID, Type: d.Type, ReminderDate: d.ReminderDate}
}

// ReminderDetail is a reminder joined with its subscription context.
type ReminderDetail struct {
	Reminder
	Subscription SubscriptionDetail `json:"subscription"`
}
