package repositories

import (
	"context"
	"time"

	"subdesk/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SubscriptionFilter narrows subscription listings. Zero values match all.
type SubscriptionFilter struct {
	Status     models.SubscriptionStatus
	CustomerID *uuid.UUID
	ProductID  *uuid.UUID
}

type SubscriptionRepository interface {
	Create(ctx context.Context, sub *models.Subscription) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Subscription, error)
	GetDetail(ctx context.Context, id uuid.UUID) (*models.SubscriptionDetail, error)
	Update(ctx context.Context, sub *models.Subscription) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter SubscriptionFilter, opts ListOptions) ([]*models.SubscriptionDetail, error)

	// ListActive returns every active subscription, the generator's input.
	ListActive(ctx context.Context) ([]models.Subscription, error)
	// ListExpiring returns active subscriptions ending in [from, to].
	ListExpiring(ctx context.Context, from, to time.Time, limit int) ([]*models.SubscriptionDetail, error)
	// ListLapsed returns active subscriptions that ended before the given date.
	ListLapsed(ctx context.Context, before time.Time) ([]*models.SubscriptionDetail, error)
	ListRecent(ctx context.Context, limit int) ([]*models.SubscriptionDetail, error)
	CountByStatus(ctx context.Context, status models.SubscriptionStatus) (int, error)

	// Renew moves an active subscription to a new period.
	Renew(ctx context.Context, id uuid.UUID, start, end time.Time) error
	// Expire marks an active subscription expired.
	Expire(ctx context.Context, id uuid.UUID) error
}

var subscriptionSortColumns = map[string]string{
	"start_date": "s.start_date",
	"end_date":   "s.end_date",
	"status":     "s.status",
	"created_at": "s.created_at",
	"customer":   "cu.name",
	"product":    "p.name",
}

const subscriptionColumns = `id, customer_id, product_id, start_date, end_date, status, auto_renew, created_at, updated_at`

const subscriptionDetailSelect = `
	SELECT s.id, s.customer_id, s.product_id, s.start_date, s.end_date, s.status, s.auto_renew, s.created_at, s.updated_at,
		cu.id, cu.name, cu.email, cu.phone, cu.whatsapp, cu.address, cu.created_at, cu.updated_at,
		p.id, p.name, p.description, p.price, p.category_id, p.billing_cycle, p.created_at
	FROM subscriptions s
	JOIN customers cu ON cu.id = s.customer_id
	JOIN products p ON p.id = s.product_id`

type subscriptionRepo struct {
	db DBTX
}

func NewSubscriptionRepo(db DBTX) SubscriptionRepository {
	return &subscriptionRepo{db: db}
}

func (r *subscriptionRepo) Create(ctx context.Context, sub *models.Subscription) error {
	query := `
		INSERT INTO subscriptions (id, customer_id, product_id, start_date, end_date, status, auto_renew, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, sub.ID, sub.CustomerID, sub.ProductID, sub.StartDate, sub.EndDate,
		sub.Status, sub.AutoRenew).Scan(&sub.CreatedAt, &sub.UpdatedAt)
	return mapError("create subscription", "subscription", sub.ID, "customer_id", err)
}

func (r *subscriptionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = $1`
	if err := scanSubscription(r.db.QueryRow(ctx, query, id), &sub); err != nil {
		return nil, mapError("get subscription", "subscription", id, "id", err)
	}
	return &sub, nil
}

func (r *subscriptionRepo) GetDetail(ctx context.Context, id uuid.UUID) (*models.SubscriptionDetail, error) {
	detail, err := scanSubscriptionDetail(r.db.QueryRow(ctx, subscriptionDetailSelect+` WHERE s.id = $1`, id))
	if err != nil {
		return nil, mapError("get subscription", "subscription", id, "id", err)
	}
	return detail, nil
}

func (r *subscriptionRepo) Update(ctx context.Context, sub *models.Subscription) error {
	query := `
		UPDATE subscriptions
		SET customer_id = $2, product_id = $3, start_date = $4, end_date = $5, status = $6, auto_renew = $7, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query, sub.ID, sub.CustomerID, sub.ProductID, sub.StartDate, sub.EndDate,
		sub.Status, sub.AutoRenew).Scan(&sub.UpdatedAt)
	return mapError("update subscription", "subscription", sub.ID, "customer_id", err)
}

// Delete removes a subscription together with its reminders and settings.
func (r *subscriptionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM subscriptions WHERE id = $1`, id)
	if err != nil {
		return mapError("delete subscription", "subscription", id, "id", err)
	}
	return affected(tag, "subscription", id)
}

func (r *subscriptionRepo) List(ctx context.Context, filter SubscriptionFilter, opts ListOptions) ([]*models.SubscriptionDetail, error) {
	query := subscriptionDetailSelect + `
		WHERE ($1 = '' OR s.status = $1)
			AND ($2::uuid IS NULL OR s.customer_id = $2)
			AND ($3::uuid IS NULL OR s.product_id = $3)` +
		orderBy(opts, subscriptionSortColumns, "s.created_at") + `
		LIMIT $4 OFFSET $5`
	return r.queryDetails(ctx, "list subscriptions", query,
		string(filter.Status), filter.CustomerID, filter.ProductID, opts.limit(), opts.Offset)
}

func (r *subscriptionRepo) ListActive(ctx context.Context) ([]models.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE status = 'active' ORDER BY end_date, id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, mapError("list active subscriptions", "subscription", nil, "", err)
	}
	defer rows.Close()

	var subs []models.Subscription
	for rows.Next() {
		var sub models.Subscription
		if err := scanSubscription(rows, &sub); err != nil {
			return nil, mapError("scan subscription", "subscription", nil, "", err)
		}
		subs = append(subs, sub)
	}
	return subs, mapError("list active subscriptions", "subscription", nil, "", rows.Err())
}

// ListExpiring returns active subscriptions ending between from and to.
// A limit of zero or less returns all of them.
func (r *subscriptionRepo) ListExpiring(ctx context.Context, from, to time.Time, limit int) ([]*models.SubscriptionDetail, error) {
	query := subscriptionDetailSelect + `
		WHERE s.status = 'active' AND s.end_date BETWEEN $1 AND $2
		ORDER BY s.end_date, s.id`
	if limit <= 0 {
		return r.queryDetails(ctx, "list expiring subscriptions", query, from, to)
	}
	return r.queryDetails(ctx, "list expiring subscriptions", query+`
		LIMIT $3`, from, to, limit)
}

func (r *subscriptionRepo) ListLapsed(ctx context.Context, before time.Time) ([]*models.SubscriptionDetail, error) {
	query := subscriptionDetailSelect + `
		WHERE s.status = 'active' AND s.end_date < $1
		ORDER BY s.end_date, s.id`
	return r.queryDetails(ctx, "list lapsed subscriptions", query, before)
}

func (r *subscriptionRepo) ListRecent(ctx context.Context, limit int) ([]*models.SubscriptionDetail, error) {
	query := subscriptionDetailSelect + `
		ORDER BY s.created_at DESC
		LIMIT $1`
	return r.queryDetails(ctx, "list recent subscriptions", query, limit)
}

func (r *subscriptionRepo) CountByStatus(ctx context.Context, status models.SubscriptionStatus) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM subscriptions WHERE status = $1`, status).Scan(&n)
	return n, mapError("count subscriptions", "subscription", nil, "", err)
}

func (r *subscriptionRepo) Renew(ctx context.Context, id uuid.UUID, start, end time.Time) error {
	query := `
		UPDATE subscriptions
		SET start_date = $2, end_date = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'active'
	`
	tag, err := r.db.Exec(ctx, query, id, start, end)
	if err != nil {
		return mapError("renew subscription", "subscription", id, "id", err)
	}
	return affected(tag, "active subscription", id)
}

func (r *subscriptionRepo) Expire(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE subscriptions
		SET status = 'expired', updated_at = NOW()
		WHERE id = $1 AND status = 'active'
	`
	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return mapError("expire subscription", "subscription", id, "id", err)
	}
	return affected(tag, "active subscription", id)
}

func (r *subscriptionRepo) queryDetails(ctx context.Context, op, query string, args ...any) ([]*models.SubscriptionDetail, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(op, "subscription", nil, "", err)
	}
	defer rows.Close()

	var details []*models.SubscriptionDetail
	for rows.Next() {
		detail, err := scanSubscriptionDetail(rows)
		if err != nil {
			return nil, mapError("scan subscription", "subscription", nil, "", err)
		}
		details = append(details, detail)
	}
	return details, mapError(op, "subscription", nil, "", rows.Err())
}

func scanSubscription(row pgx.Row, sub *models.Subscription) error {
	return row.Scan(&sub.ID, &sub.CustomerID, &sub.ProductID, &sub.StartDate, &sub.EndDate,
		&sub.Status, &sub.AutoRenew, &sub.CreatedAt, &sub.UpdatedAt)
}

func subscriptionDetailDest(d *models.SubscriptionDetail) []any {
	s, cu, p := &d.Subscription, &d.Customer, &d.Product
	return []any{
		&s.ID, &s.CustomerID, &s.ProductID, &s.StartDate, &s.EndDate, &s.Status, &s.AutoRenew, &s.CreatedAt, &s.UpdatedAt,
		&cu.ID, &cu.Name, &cu.Email, &cu.Phone, &cu.WhatsApp, &cu.Address, &cu.CreatedAt, &cu.UpdatedAt,
		&p.ID, &p.Name, &p.Description, &p.Price, &p.CategoryID, &p.BillingCycle, &p.CreatedAt,
	}
}

func scanSubscriptionDetail(row pgx.Row) (*models.SubscriptionDetail, error) {
	var d models.SubscriptionDetail
	if err := row.Scan(subscriptionDetailDest(&d)...); err != nil {
		return nil, err
	}
	return &d, nil
}
