package repositories

import (
	"context"

	"subdesk/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ReminderSettingsRepository interface {
	GetBySubscription(ctx context.Context, subscriptionID uuid.UUID) (*models.ReminderSettings, error)
	ListBySubscriptions(ctx context.Context, subscriptionIDs []uuid.UUID) (map[uuid.UUID]*models.ReminderSettings, error)
	Upsert(ctx context.Context, settings *models.ReminderSettings) error
	Delete(ctx context.Context, subscriptionID uuid.UUID) error
}

const reminderSettingsColumns = `id, subscription_id, reminder_days, email_enabled, whatsapp_enabled, custom_message, created_at`

type reminderSettingsRepo struct {
	db DBTX
}

func NewReminderSettingsRepo(db DBTX) ReminderSettingsRepository {
	return &reminderSettingsRepo{db: db}
}

func (r *reminderSettingsRepo) GetBySubscription(ctx context.Context, subscriptionID uuid.UUID) (*models.ReminderSettings, error) {
	query := `SELECT ` + reminderSettingsColumns + ` FROM reminder_settings WHERE subscription_id = $1`
	settings, err := scanReminderSettings(r.db.QueryRow(ctx, query, subscriptionID))
	if err != nil {
		return nil, mapError("get reminder settings", "reminder settings for subscription", subscriptionID, "subscription_id", err)
	}
	return settings, nil
}

func (r *reminderSettingsRepo) ListBySubscriptions(ctx context.Context, subscriptionIDs []uuid.UUID) (map[uuid.UUID]*models.ReminderSettings, error) {
	out := make(map[uuid.UUID]*models.ReminderSettings)
	if len(subscriptionIDs) == 0 {
		return out, nil
	}
	query := `SELECT ` + reminderSettingsColumns + ` FROM reminder_settings WHERE subscription_id = ANY($1)`
	rows, err := r.db.Query(ctx, query, subscriptionIDs)
	if err != nil {
		return nil, mapError("list reminder settings", "reminder settings", nil, "", err)
	}
	defer rows.Close()

	for rows.Next() {
		settings, err := scanReminderSettings(rows)
		if err != nil {
			return nil, mapError("scan reminder settings", "reminder settings", nil, "", err)
		}
		out[settings.SubscriptionID] = settings
	}
	return out, mapError("list reminder settings", "reminder settings", nil, "", rows.Err())
}

// Upsert keeps one settings row per subscription.
func (r *reminderSettingsRepo) Upsert(ctx context.Context, settings *models.ReminderSettings) error {
	query := `
		INSERT INTO reminder_settings (id, subscription_id, reminder_days, email_enabled, whatsapp_enabled, custom_message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (subscription_id) DO UPDATE
		SET reminder_days = EXCLUDED.reminder_days,
			email_enabled = EXCLUDED.email_enabled,
			whatsapp_enabled = EXCLUDED.whatsapp_enabled,
			custom_message = EXCLUDED.custom_message
		RETURNING id, created_at
	`
	err := r.db.QueryRow(ctx, query, settings.ID, settings.SubscriptionID, settings.ReminderDays,
		settings.EmailEnabled, settings.WhatsAppEnabled, settings.CustomMessage).Scan(&settings.ID, &settings.CreatedAt)
	return mapError("upsert reminder settings", "reminder settings", settings.SubscriptionID, "subscription_id", err)
}

func (r *reminderSettingsRepo) Delete(ctx context.Context, subscriptionID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM reminder_settings WHERE subscription_id = $1`, subscriptionID)
	if err != nil {
		return mapError("delete reminder settings", "reminder settings", subscriptionID, "subscription_id", err)
	}
	return affected(tag, "reminder settings for subscription", subscriptionID)
}

func scanReminderSettings(row pgx.Row) (*models.ReminderSettings, error) {
	var s models.ReminderSettings
	err := row.Scan(&s.ID, &s.SubscriptionID, &s.ReminderDays, &s.EmailEnabled, &s.WhatsAppEnabled,
		&s.CustomMessage, &s.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
