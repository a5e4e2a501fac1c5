package repositories

import (
	"context"

	"subdesk/internal/models"

	"github.com/google/uuid"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, opts ListOptions) ([]*models.Category, error)
}

var categorySortColumns = map[string]string{
	"name":       "name",
	"created_at": "created_at",
}

type categoryRepo struct {
	db DBTX
}

func NewCategoryRepo(db DBTX) CategoryRepository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) Create(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categories (id, name, description, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING created_at
	`
	err := r.db.QueryRow(ctx, query, category.ID, category.Name, category.Description).Scan(&category.CreatedAt)
	return mapError("create category", "category", category.ID, "name", err)
}

func (r *categoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category := &models.Category{}
	query := `
		SELECT id, name, description, created_at
		FROM categories
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&category.ID, &category.Name, &category.Description, &category.CreatedAt)
	if err != nil {
		return nil, mapError("get category", "category", id, "id", err)
	}
	return category, nil
}

func (r *categoryRepo) Update(ctx context.Context, category *models.Category) error {
	query := `
		UPDATE categories
		SET name = $2, description = $3
		WHERE id = $1
	`
	tag, err := r.db.Exec(ctx, query, category.ID, category.Name, category.Description)
	if err != nil {
		return mapError("update category", "category", category.ID, "name", err)
	}
	return affected(tag, "category", category.ID)
}

// Delete removes a category. Products keep existing with no category.
func (r *categoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return mapError("delete category", "category", id, "id", err)
	}
	return affected(tag, "category", id)
}

func (r *categoryRepo) List(ctx context.Context, opts ListOptions) ([]*models.Category, error) {
	query := `
		SELECT id, name, description, created_at
		FROM categories` +
		orderBy(opts, categorySortColumns, "name") + `
		LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(ctx, query, opts.limit(), opts.Offset)
	if err != nil {
		return nil, mapError("list categories", "category", nil, "", err)
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		category := &models.Category{}
		if err := rows.Scan(&category.ID, &category.Name, &category.Description, &category.CreatedAt); err != nil {
			return nil, mapError("scan category", "category", nil, "", err)
		}
		categories = append(categories, category)
	}
	return categories, mapError("list categories", "category", nil, "", rows.Err())
}
