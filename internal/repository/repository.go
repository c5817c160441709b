package repository

import (
	"context"

	"github.com/cydodol-beep/shorttail-ecommerce-sub002/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for catalogue data access.
type ProductRepository interface {
	// GetAll retrieves products with pagination, variants included.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product with its variants.
	GetByID(ctx context.Context, id string) (*model.Product, error)
}

// OrderRepository defines the interface for order data access. A single
// checkout runs entirely inside one transaction: stock decrements, the
// order header and all item rows commit or roll back together.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// DecrementStock conditionally decrements the authoritative stock row
	// for a cart line (variant stock when a variant is given, product
	// stock otherwise). When the decrement matches no row it returns
	// *model.InsufficientStockError, model.ErrVariantRequired or
	// model.ErrProductNotFound.
	DecrementStock(ctx context.Context, tx pgx.Tx, item model.CartItem) error

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error)

	// UpdateStatus moves an order to a new status, guarded on the
	// expected current status. Returns false when no row matched.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus) (bool, error)
}

// NotificationRepository defines the interface for notification inserts.
type NotificationRepository interface {
	// Insert writes a single notification row.
	Insert(ctx context.Context, n *model.Notification) error
}

// SessionRepository resolves bearer tokens to sessions.
type SessionRepository interface {
	// GetByToken returns the unexpired session for a token, or nil.
	GetByToken(ctx context.Context, token string) (*model.Session, error)
}
