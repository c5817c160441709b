package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container and connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	createSchema(t, pool)

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// createSchema creates the database schema for testing.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	schema := `
		CREATE TABLE IF NOT EXISTS products (
			id VARCHAR(50) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			category VARCHAR(100) NOT NULL,
			base_price BIGINT NOT NULL,
			stock_quantity INTEGER NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0),
			has_variants BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS product_variants (
			id VARCHAR(50) PRIMARY KEY,
			product_id VARCHAR(50) NOT NULL REFERENCES products(id),
			name VARCHAR(255) NOT NULL,
			price BIGINT NOT NULL,
			stock_quantity INTEGER NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0)
		);

		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			user_id VARCHAR(50),
			cashier_id VARCHAR(50) NOT NULL,
			source VARCHAR(20) NOT NULL,
			status VARCHAR(20) NOT NULL,
			subtotal BIGINT NOT NULL,
			shipping_fee BIGINT NOT NULL DEFAULT 0,
			discount_amount BIGINT NOT NULL DEFAULT 0,
			total_amount BIGINT NOT NULL,
			payment_method VARCHAR(30) NOT NULL,
			promo_code VARCHAR(50),
			recipient_name VARCHAR(255) NOT NULL,
			recipient_phone VARCHAR(50) NOT NULL DEFAULT '',
			recipient_address TEXT NOT NULL DEFAULT '',
			recipient_province VARCHAR(100) NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS order_items (
			id UUID PRIMARY KEY,
			order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			product_id VARCHAR(50) NOT NULL REFERENCES products(id),
			variant_id VARCHAR(50) REFERENCES product_variants(id),
			quantity INTEGER NOT NULL CHECK (quantity > 0),
			price_at_purchase BIGINT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS notifications (
			id UUID PRIMARY KEY,
			title VARCHAR(255) NOT NULL,
			body TEXT NOT NULL,
			link VARCHAR(255) NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS sessions (
			token VARCHAR(100) PRIMARY KEY,
			user_id VARCHAR(50) NOT NULL,
			role VARCHAR(20) NOT NULL,
			expires_at TIMESTAMP NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_order_items_order_id ON order_items(order_id);
		CREATE INDEX IF NOT EXISTS idx_order_items_product_id ON order_items(product_id);
		CREATE INDEX IF NOT EXISTS idx_product_variants_product_id ON product_variants(product_id);
	`

	_, err := pool.Exec(ctx, schema)
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
}

// SeedCatalogue inserts test products and variants into the database.
func SeedCatalogue(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	products := []struct {
		id          string
		name        string
		category    string
		basePrice   int64
		stock       int
		hasVariants bool
	}{
		{"P001", "Dog Food Premium", "food", 50000, 25, false},
		{"P002", "Cat Litter 10L", "supplies", 35000, 40, false},
		{"P003", "Bird Seed Mix", "food", 20000, 2, false},
		{"P004", "Dog Collar", "accessories", 25000, 0, true},
		{"P005", "Cat Scratcher", "accessories", 80000, 5, false},
	}

	for _, p := range products {
		_, err := pool.Exec(ctx,
			`INSERT INTO products (id, name, category, base_price, stock_quantity, has_variants)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			p.id, p.name, p.category, p.basePrice, p.stock, p.hasVariants,
		)
		if err != nil {
			t.Fatalf("failed to seed product %s: %v", p.id, err)
		}
	}

	variants := []struct {
		id        string
		productID string
		name      string
		price     int64
		stock     int
	}{
		{"V001", "P004", "Small", 25000, 10},
		{"V002", "P004", "Medium", 28000, 1},
		{"V003", "P004", "Large", 30000, 0},
	}

	for _, v := range variants {
		_, err := pool.Exec(ctx,
			`INSERT INTO product_variants (id, product_id, name, price, stock_quantity)
			 VALUES ($1, $2, $3, $4, $5)`,
			v.id, v.productID, v.name, v.price, v.stock,
		)
		if err != nil {
			t.Fatalf("failed to seed variant %s: %v", v.id, err)
		}
	}
}

// SeedSessions inserts one live session per role plus an expired one.
func SeedSessions(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	sessions := []struct {
		token   string
		userID  string
		role    string
		expires time.Time
	}{
		{"cashier-token", "cashier-1", "kasir", time.Now().Add(24 * time.Hour)},
		{"admin-token", "admin-1", "admin", time.Now().Add(24 * time.Hour)},
		{"customer-token", "customer-1", "customer", time.Now().Add(24 * time.Hour)},
		{"expired-token", "cashier-2", "kasir", time.Now().Add(-time.Hour)},
	}

	for _, s := range sessions {
		_, err := pool.Exec(ctx,
			`INSERT INTO sessions (token, user_id, role, expires_at) VALUES ($1, $2, $3, $4)`,
			s.token, s.userID, s.role, s.expires,
		)
		if err != nil {
			t.Fatalf("failed to seed session %s: %v", s.token, err)
		}
	}
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"order_items", "orders", "notifications", "sessions", "product_variants", "products"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

// CountRows returns the row count of a table.
func CountRows(t *testing.T, pool *pgxpool.Pool, table string) int {
	t.Helper()

	var count int
	err := pool.QueryRow(context.Background(), fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count)
	if err != nil {
		t.Fatalf("failed to count rows in %s: %v", table, err)
	}
	return count
}

// ProductStock returns the current stock_quantity of a product.
func ProductStock(t *testing.T, pool *pgxpool.Pool, productID string) int {
	t.Helper()

	var stock int
	err := pool.QueryRow(context.Background(),
		"SELECT stock_quantity FROM products WHERE id = $1", productID).Scan(&stock)
	if err != nil {
		t.Fatalf("failed to read stock for %s: %v", productID, err)
	}
	return stock
}

// VariantStock returns the current stock_quantity of a variant.
func VariantStock(t *testing.T, pool *pgxpool.Pool, variantID string) int {
	t.Helper()

	var stock int
	err := pool.QueryRow(context.Background(),
		"SELECT stock_quantity FROM product_variants WHERE id = $1", variantID).Scan(&stock)
	if err != nil {
		t.Fatalf("failed to read stock for variant %s: %v", variantID, err)
	}
	return stock
}
