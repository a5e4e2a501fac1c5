// Package testhelpers sets up a real PostgreSQL database for integration
// tests. Tests using it are skipped unless TEST_DATABASE_URL is set.
package testhelpers

import (
	"context"
	"os"
	"testing"
	"time"

	"subdesk/internal/models"
	"subdesk/internal/repositories"
	"subdesk/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// TestDB holds the database connection for testing
type TestDB struct {
	Pool    *pgxpool.Pool
	Cleanup func()
}

// SetupTestDB connects to TEST_DATABASE_URL, applies migrations and empties
// every table. The pool is closed when the test ends.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.NewPool(ctx, connString)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := database.Migrate(ctx, pool); err != nil {
		pool.Close()
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	db := &TestDB{Pool: pool, Cleanup: pool.Close}
	db.Truncate(t)
	t.Cleanup(db.Cleanup)
	return db
}

// Truncate removes all rows, keeping the schema.
func (db *TestDB) Truncate(t *testing.T) {
	t.Helper()
	_, err := db.Pool.Exec(context.Background(),
		`TRUNCATE reminder_settings, reminders, subscriptions, products, categories, customers, users CASCADE`)
	if err != nil {
		t.Fatalf("Failed to truncate test tables: %v", err)
	}
}

// SeedCustomer creates a test customer
func SeedCustomer(t *testing.T, db *TestDB, name string) *models.Customer {
	t.Helper()

	customer := &models.Customer{
		ID:    uuid.New(),
		Name:  name,
		Email: uuid.NewString()[:8] + "@example.com",
		Phone: "+15550100",
	}
	if err := repositories.NewCustomerRepo(db.Pool).Create(context.Background(), customer); err != nil {
		t.Fatalf("Failed to create test customer: %v", err)
	}
	return customer
}

// SeedProduct creates a test product with the given billing cycle
func SeedProduct(t *testing.T, db *TestDB, name string, cycle models.BillingCycle) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:           uuid.New(),
		Name:         name,
		Price:        decimal.RequireFromString("19.90"),
		BillingCycle: cycle,
	}
	if err := repositories.NewProductRepo(db.Pool).Create(context.Background(), product); err != nil {
		t.Fatalf("Failed to create test product: %v", err)
	}
	return product
}

// SeedSubscription creates an active, auto-renewing subscription
func SeedSubscription(t *testing.T, db *TestDB, customer *models.Customer, product *models.Product, start, end time.Time) *models.Subscription {
	t.Helper()

	sub := &models.Subscription{
		ID:         uuid.New(),
		CustomerID: customer.ID,
		ProductID:  product.ID,
		StartDate:  start,
		EndDate:    end,
		Status:     models.SubscriptionStatusActive,
		AutoRenew:  true,
	}
	if err := repositories.NewSubscriptionRepo(db.Pool).Create(context.Background(), sub); err != nil {
		t.Fatalf("Failed to create test subscription: %v", err)
	}
	return sub
}
