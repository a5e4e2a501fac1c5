package repositories

import (
	"context"

	"subdesk/internal/models"

	"github.com/google/uuid"
)

type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, search string, opts ListOptions) ([]*models.Customer, error)
	Count(ctx context.Context) (int, error)
}

var customerSortColumns = map[string]string{
	"name":       "name",
	"email":      "email",
	"created_at": "created_at",
}

const customerColumns = `id, name, email, phone, whatsapp, address, created_at, updated_at`

type customerRepo struct {
	db DBTX
}

func NewCustomerRepo(db DBTX) CustomerRepository {
	return &customerRepo{db: db}
}

func (r *customerRepo) Create(ctx context.Context, customer *models.Customer) error {
	query := `
		INSERT INTO customers (id, name, email, phone, whatsapp, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at
	`
	err := r.db.QueryRow(ctx, query, customer.ID, customer.Name, customer.Email, customer.Phone,
		customer.WhatsApp, customer.Address).Scan(&customer.CreatedAt, &customer.UpdatedAt)
	return mapError("create customer", "customer", customer.ID, "email", err)
}

func (r *customerRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	customer := &models.Customer{}
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(&customer.ID, &customer.Name, &customer.Email, &customer.Phone,
		&customer.WhatsApp, &customer.Address, &customer.CreatedAt, &customer.UpdatedAt)
	if err != nil {
		return nil, mapError("get customer", "customer", id, "id", err)
	}
	return customer, nil
}

func (r *customerRepo) Update(ctx context.Context, customer *models.Customer) error {
	query := `
		UPDATE customers
		SET name = $2, email = $3, phone = $4, whatsapp = $5, address = $6, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`
	err := r.db.QueryRow(ctx, query, customer.ID, customer.Name, customer.Email, customer.Phone,
		customer.WhatsApp, customer.Address).Scan(&customer.UpdatedAt)
	return mapError("update customer", "customer", customer.ID, "email", err)
}

func (r *customerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return mapError("delete customer", "customer", id, "id", err)
	}
	return affected(tag, "customer", id)
}

func (r *customerRepo) List(ctx context.Context, search string, opts ListOptions) ([]*models.Customer, error) {
	query := `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE $1 = '' OR name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%'` +
		orderBy(opts, customerSortColumns, "created_at") + `
		LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, search, opts.limit(), opts.Offset)
	if err != nil {
		return nil, mapError("list customers", "customer", nil, "", err)
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		customer := &models.Customer{}
		if err := rows.Scan(&customer.ID, &customer.Name, &customer.Email, &customer.Phone,
			&customer.WhatsApp, &customer.Address, &customer.CreatedAt, &customer.UpdatedAt); err != nil {
			return nil, mapError("scan customer", "customer", nil, "", err)
		}
		customers = append(customers, customer)
	}
	return customers, mapError("list customers", "customer", nil, "", rows.Err())
}

func (r *customerRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM customers`).Scan(&n)
	return n, mapError("count customers", "customer", nil, "", err)
}
