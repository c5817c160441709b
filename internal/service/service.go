package service

import (
	"context"

	"github.com/cydodol-beep/shorttail-ecommerce-sub002/internal/model"

	"github.com/google/uuid"
)

// ProductService defines operations for catalogue reads.
type ProductService interface {
	// GetAll retrieves products with pagination, variants included.
	GetAll(ctx context.Context, limit, offset int) ([]model.Product, error)

	// GetByID retrieves a single product with its variants.
	GetByID(ctx context.Context, id string) (*model.Product, error)
}

// CheckoutService defines the point-of-sale order operations.
type CheckoutService interface {
	// Checkout verifies and reserves stock, creates the order header and
	// all item rows in one transaction, and hands the committed order to
	// the detached notifier.
	Checkout(ctx context.Context, req *model.CheckoutRequest, session *model.Session) (*model.OrderResponse, error)

	// GetOrder retrieves an order by its ID with all items.
	GetOrder(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error)

	// UpdateStatus moves an order along the status state machine.
	UpdateStatus(ctx context.Context, id uuid.UUID, to model.OrderStatus) (*model.Order, error)
}

// OrderNotifier receives committed orders for best-effort follow-up.
type OrderNotifier interface {
	OrderCreated(order *model.Order, itemCount int)
}
