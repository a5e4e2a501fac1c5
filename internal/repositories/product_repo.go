package repositories

import (
	"context"
	"time"

	"subdesk/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, categoryID *uuid.UUID, opts ListOptions) ([]*models.Product, error)
	Count(ctx context.Context) (int, error)
}

var productSortColumns = map[string]string{
	"name":          "p.name",
	"price":         "p.price",
	"billing_cycle": "p.billing_cycle",
	"created_at":    "p.created_at",
}

const productSelect = `
	SELECT p.id, p.name, p.description, p.price, p.category_id, p.billing_cycle, p.created_at,
		c.id, c.name, c.description, c.created_at
	FROM products p
	LEFT JOIN categories c ON c.id = p.category_id`

type productRepo struct {
	db DBTX
}

func NewProductRepo(db DBTX) ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, product *models.Product) error {
	query := `
		INSERT INTO products (id, name, description, price, category_id, billing_cycle, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query, product.ID, product.Name, product.Description, product.Price,
		product.CategoryID, product.BillingCycle).Scan(&product.CreatedAt)
	return mapError("create product", "product", product.ID, "category_id", err)
}

func (r *productRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := scanProduct(r.db.QueryRow(ctx, productSelect+` WHERE p.id = $1`, id))
	if err != nil {
		return nil, mapError("get product", "product", id, "id", err)
	}
	return product, nil
}

func (r *productRepo) Update(ctx context.Context, product *models.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, price = $4, category_id = $5, billing_cycle = $6
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, product.ID, product.Name, product.Description, product.Price,
		product.CategoryID, product.BillingCycle)
	if err != nil {
		return mapError("update product", "product", product.ID, "category_id", err)
	}
	return affected(tag, "product", product.ID)
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return mapError("delete product", "product", id, "id", err)
	}
	return affected(tag, "product", id)
}

func (r *productRepo) List(ctx context.Context, categoryID *uuid.UUID, opts ListOptions) ([]*models.Product, error) {
	query := productSelect + `
		WHERE $1::uuid IS NULL OR p.category_id = $1` +
		orderBy(opts, productSortColumns, "p.created_at") + `
		LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, categoryID, opts.limit(), opts.Offset)
	if err != nil {
		return nil, mapError("list products", "product", nil, "", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, mapError("scan product", "product", nil, "", err)
		}
		products = append(products, product)
	}
	return products, mapError("list products", "product", nil, "", rows.Err())
}

func (r *productRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n)
	return n, mapError("count products", "product", nil, "", err)
}

func scanProduct(row pgx.Row) (*models.Product, error) {
	var (
		p         models.Product
		catID     *uuid.UUID
		catName   *string
		catDesc   *string
		catCreate *time.Time
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.CategoryID, &p.BillingCycle, &p.CreatedAt,
		&catID, &catName, &catDesc, &catCreate)
	if err != nil {
		return nil, err
	}
	if catID != nil {
		p.Category = &models.Category{ID: *catID, Description: catDesc}
		if catName != nil {
			p.Category.Name = *catName
		}
		if catCreate != nil {
			p.Category.CreatedAt = *catCreate
		}
	}
	return &p, nil
}
