package repositories

import (
	"context"
	"errors"
	"time"

	"subdesk/internal/common"
	"subdesk/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ReminderFilter narrows reminder listings. Zero values match all.
type ReminderFilter struct {
	Status         models.ReminderStatus
	Type           models.ReminderType
	SubscriptionID *uuid.UUID
}

// ReminderRepository persists reminders. The store enforces uniqueness of
// (subscription_id, type, reminder_date); status changes only apply to
// pending rows.
type ReminderRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Reminder, error)
	GetDetail(ctx context.Context, id uuid.UUID) (*models.ReminderDetail, error)
	List(ctx context.Context, filter ReminderFilter, opts ListOptions) ([]*models.ReminderDetail, error)
	ListBySubscriptions(ctx context.Context, subscriptionIDs []uuid.UUID) ([]models.Reminder, error)
	ListDue(ctx context.Context, reference time.Time, limit int) ([]*models.ReminderDetail, error)
	CountPending(ctx context.Context) (int, error)

	Insert(ctx context.Context, reminder *models.Reminder) error
	// InsertIfAbsent stores a draft unless its key exists; it returns nil
	// without error when the key was already taken.
	InsertIfAbsent(ctx context.Context, draft models.ReminderDraft) (*models.Reminder, error)
	Update(ctx context.Context, reminder *models.Reminder) error
	MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

var reminderSortColumns = map[string]string{
	"reminder_date": "r.reminder_date",
	"type":          "r.type",
	"status":        "r.status",
	"created_at":    "r.created_at",
	"sent_at":       "r.sent_at",
}

const reminderColumns = `id, subscription_id, reminder_date, type, status, sent_at, created_at`

const reminderDetailSelect = `
	SELECT r.id, r.subscription_id, r.reminder_date, r.type, r.status, r.sent_at, r.created_at,
		s.id, s.customer_id, s.product_id, s.start_date, s.end_date, s.status, s.auto_renew, s.created_at, s.updated_at,
		cu.id, cu.name, cu.email, cu.phone, cu.whatsapp, cu.address, cu.created_at, cu.updated_at,
		p.id, p.name, p.description, p.price, p.category_id, p.billing_cycle, p.created_at
	FROM reminders r
	JOIN subscriptions s ON s.id = r.subscription_id
	JOIN customers cu ON cu.id = s.customer_id
	JOIN products p ON p.id = s.product_id`

type reminderRepo struct {
	db DBTX
}

func NewReminderRepo(db DBTX) ReminderRepository {
	return &reminderRepo{db: db}
}

func (r *reminderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Reminder, error) {
	var reminder models.Reminder
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE id = $1`
	if err := scanReminder(r.db.QueryRow(ctx, query, id), &reminder); err != nil {
		return nil, mapError("get reminder", "reminder", id, "id", err)
	}
	return &reminder, nil
}

func (r *reminderRepo) GetDetail(ctx context.Context, id uuid.UUID) (*models.ReminderDetail, error) {
	detail, err := scanReminderDetail(r.db.QueryRow(ctx, reminderDetailSelect+` WHERE r.id = $1`, id))
	if err != nil {
		return nil, mapError("get reminder", "reminder", id, "id", err)
	}
	return detail, nil
}

func (r *reminderRepo) List(ctx context.Context, filter ReminderFilter, opts ListOptions) ([]*models.ReminderDetail, error) {
	query := reminderDetailSelect + `
		WHERE ($1 = '' OR r.status = $1)
			AND ($2 = '' OR r.type = $2)
			AND ($3::uuid IS NULL OR r.subscription_id = $3)` +
		orderBy(opts, reminderSortColumns, "r.reminder_date") + `
		LIMIT $4 OFFSET $5`
	return r.queryDetails(ctx, "list reminders", query,
		string(filter.Status), string(filter.Type), filter.SubscriptionID, opts.limit(), opts.Offset)
}

func (r *reminderRepo) ListBySubscriptions(ctx context.Context, subscriptionIDs []uuid.UUID) ([]models.Reminder, error) {
	if len(subscriptionIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE subscription_id = ANY($1)`
	rows, err := r.db.Query(ctx, query, subscriptionIDs)
	if err != nil {
		return nil, mapError("list reminders", "reminder", nil, "", err)
	}
	defer rows.Close()

	var reminders []models.Reminder
	for rows.Next() {
		var reminder models.Reminder
		if err := scanReminder(rows, &reminder); err != nil {
			return nil, mapError("scan reminder", "reminder", nil, "", err)
		}
		reminders = append(reminders, reminder)
	}
	return reminders, mapError("list reminders", "reminder", nil, "", rows.Err())
}

// ListDue returns pending reminders dated on or before reference.
// A limit of zero or less returns every due reminder.
func (r *reminderRepo) ListDue(ctx context.Context, reference time.Time, limit int) ([]*models.ReminderDetail, error) {
	query := reminderDetailSelect + `
		WHERE r.status = 'pending' AND r.reminder_date <= $1
		ORDER BY r.reminder_date, r.id`
	if limit <= 0 {
		return r.queryDetails(ctx, "list due reminders", query, reference)
	}
	return r.queryDetails(ctx, "list due reminders", query+`
		LIMIT $2`, reference, limit)
}

func (r *reminderRepo) CountPending(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM reminders WHERE status = 'pending'`).Scan(&n)
	return n, mapError("count reminders", "reminder", nil, "", err)
}

func (r *reminderRepo) Insert(ctx context.Context, reminder *models.Reminder) error {
	query := `
		INSERT INTO reminders (id, subscription_id, reminder_date, type, status, sent_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query, reminder.ID, reminder.SubscriptionID, reminder.ReminderDate,
		reminder.Type, reminder.Status, reminder.SentAt).Scan(&reminder.CreatedAt)
	return mapError("create reminder", "reminder", reminder.ID, "reminder_date", err)
}

func (r *reminderRepo) InsertIfAbsent(ctx context.Context, draft models.ReminderDraft) (*models.Reminder, error) {
	reminder := &models.Reminder{
		ID:             uuid.New(),
		SubscriptionID: draft.SubscriptionID,
		ReminderDate:   draft.ReminderDate,
		Type:           draft.Type,
		Status:         models.ReminderStatusPending,
	}
	query := `
		INSERT INTO reminders (id, subscription_id, reminder_date, type, status, created_at)
		VALUES ($1, $2, $3, $4, 'pending', NOW())
		ON CONFLICT (subscription_id, type, reminder_date) DO NOTHING
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query, reminder.ID, reminder.SubscriptionID, reminder.ReminderDate, reminder.Type).
		Scan(&reminder.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapError("insert reminder", "reminder", reminder.ID, "subscription_id", err)
	}
	return reminder, nil
}

func (r *reminderRepo) Update(ctx context.Context, reminder *models.Reminder) error {
	query := `
		UPDATE reminders
		SET reminder_date = $2, type = $3
		WHERE id = $1 AND status = 'pending'
	`
	tag, err := r.db.Exec(ctx, query, reminder.ID, reminder.ReminderDate, reminder.Type)
	if err != nil {
		return mapError("update reminder", "reminder", reminder.ID, "reminder_date", err)
	}
	return pendingAffected(tag, reminder.ID, "updated")
}

func (r *reminderRepo) MarkSent(ctx context.Context, id uuid.UUID, sentAt time.Time) error {
	query := `
		UPDATE reminders
		SET status = 'sent', sent_at = $2
		WHERE id = $1 AND status = 'pending'
	`
	tag, err := r.db.Exec(ctx, query, id, sentAt)
	if err != nil {
		return mapError("mark reminder sent", "reminder", id, "id", err)
	}
	return pendingAffected(tag, id, string(models.ReminderStatusSent))
}

func (r *reminderRepo) MarkFailed(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE reminders
		SET status = 'failed', sent_at = NULL
		WHERE id = $1 AND status = 'pending'
	`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return mapError("mark reminder failed", "reminder", id, "id", err)
	}
	return pendingAffected(tag, id, string(models.ReminderStatusFailed))
}

func (r *reminderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM reminders WHERE id = $1`, id)
	if err != nil {
		return mapError("delete reminder", "reminder", id, "id", err)
	}
	return affected(tag, "reminder", id)
}

func (r *reminderRepo) queryDetails(ctx context.Context, op, query string, args ...any) ([]*models.ReminderDetail, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(op, "reminder", nil, "", err)
	}
	defer rows.Close()

	var details []*models.ReminderDetail
	for rows.Next() {
		detail, err := scanReminderDetail(rows)
		if err != nil {
			return nil, mapError("scan reminder", "reminder", nil, "", err)
		}
		details = append(details, detail)
	}
	return details, mapError(op, "reminder", nil, "", rows.Err())
}

// pendingAffected reports a lost race: the row exists but left pending.
func pendingAffected(tag pgconn.CommandTag, id uuid.UUID, to string) error {
	if tag.RowsAffected() == 0 {
		return common.InvalidTransition("reminder", id, "non-pending", to)
	}
	return nil
}

func scanReminder(row pgx.Row, reminder *models.Reminder) error {
	return row.Scan(&reminder.ID, &reminder.SubscriptionID, &reminder.ReminderDate, &reminder.Type,
		&reminder.Status, &reminder.SentAt, &reminder.CreatedAt)
}

func scanReminderDetail(row pgx.Row) (*models.ReminderDetail, error) {
	var d models.ReminderDetail
	rm := &d.Reminder
	dest := append([]any{&rm.ID, &rm.SubscriptionID, &rm.ReminderDate, &rm.Type, &rm.Status, &rm.SentAt, &rm.CreatedAt},
		subscriptionDetailDest(&d.Subscription)...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &d, nil
}
