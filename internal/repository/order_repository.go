package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/cydodol-beep/shorttail-ecommerce-sub002/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// DecrementStock conditionally decrements the authoritative stock row for
// a cart line. The decrement and the stock-sufficiency check are one
// statement, so concurrent checkouts for the same row serialize on the
// row lock and stock can never go negative.
func (r *orderRepository) DecrementStock(ctx context.Context, tx pgx.Tx, item model.CartItem) error {
	if item.VariantID != nil {
		return r.decrementVariant(ctx, tx, item)
	}
	return r.decrementProduct(ctx, tx, item)
}

func (r *orderRepository) decrementVariant(ctx context.Context, tx pgx.Tx, item model.CartItem) error {
	ct, err := tx.Exec(ctx, `
		UPDATE product_variants
		SET stock_quantity = stock_quantity - $2
		WHERE id = $1 AND stock_quantity >= $2
	`, *item.VariantID, item.Quantity)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("variant_id", *item.VariantID).
			Msg("failed to decrement variant stock")
		return fmt.Errorf("failed to decrement variant stock: %w", err)
	}
	if ct.RowsAffected() == 1 {
		return nil
	}

	// No row matched: either the variant is unknown or stock is short.
	var productName, variantName string
	var available int
	err = tx.QueryRow(ctx, `
		SELECT p.name, v.name, v.stock_quantity
		FROM product_variants v
		JOIN products p ON p.id = v.product_id
		WHERE v.id = $1
	`, *item.VariantID).Scan(&productName, &variantName, &available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrProductNotFound
		}
		return fmt.Errorf("failed to read variant stock: %w", err)
	}

	r.logger.Warn().
		Str("variant_id", *item.VariantID).
		Int("requested", item.Quantity).
		Int("available", available).
		Msg("insufficient variant stock")

	return &model.InsufficientStockError{
		ProductName: productName,
		VariantName: variantName,
		Available:   available,
		Requested:   item.Quantity,
	}
}

func (r *orderRepository) decrementProduct(ctx context.Context, tx pgx.Tx, item model.CartItem) error {
	// has_variants guard: variant stock is authoritative for such products.
	ct, err := tx.Exec(ctx, `
		UPDATE products
		SET stock_quantity = stock_quantity - $2
		WHERE id = $1 AND has_variants = FALSE AND stock_quantity >= $2
	`, item.ProductID, item.Quantity)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("product_id", item.ProductID).
			Msg("failed to decrement product stock")
		return fmt.Errorf("failed to decrement product stock: %w", err)
	}
	if ct.RowsAffected() == 1 {
		return nil
	}

	var name string
	var available int
	var hasVariants bool
	err = tx.QueryRow(ctx, `
		SELECT name, stock_quantity, has_variants
		FROM products
		WHERE id = $1
	`, item.ProductID).Scan(&name, &available, &hasVariants)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrProductNotFound
		}
		return fmt.Errorf("failed to read product stock: %w", err)
	}

	if hasVariants {
		r.logger.Warn().
			Str("product_id", item.ProductID).
			Msg("cart line without variant for a variant product")
		return model.ErrVariantRequired
	}

	r.logger.Warn().
		Str("product_id", item.ProductID).
		Int("requested", item.Quantity).
		Int("available", available).
		Msg("insufficient product stock")

	return &model.InsufficientStockError{
		ProductName: name,
		Available:   available,
		Requested:   item.Quantity,
	}
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (
			id, user_id, cashier_id, source, status,
			subtotal, shipping_fee, discount_amount, total_amount,
			payment_method, promo_code,
			recipient_name, recipient_phone, recipient_address, recipient_province,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err := tx.Exec(ctx, query,
		order.ID, order.UserID, order.CashierID, order.Source, order.Status,
		order.Subtotal, order.ShippingFee, order.DiscountAmount, order.TotalAmount,
		order.PaymentMethod, order.PromoCode,
		order.RecipientName, order.RecipientPhone, order.RecipientAddress, order.RecipientProvince,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Msg("order created successfully")

	return nil
}

// CreateOrderItems inserts multiple order items within the provided transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (id, order_id, product_id, variant_id, quantity, price_at_purchase)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(query, item.ID, item.OrderID, item.ProductID, item.VariantID, item.Quantity, item.PriceAtPurchase)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		_, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("product_id", items[i].ProductID).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created successfully")

	return nil
}

// GetByID retrieves an order by its ID along with its items.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error) {
	orderQuery := `
		SELECT id, user_id, cashier_id, source, status,
		       subtotal, shipping_fee, discount_amount, total_amount,
		       payment_method, promo_code,
		       recipient_name, recipient_phone, recipient_address, recipient_province,
		       created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	var order model.Order
	err := r.pool.QueryRow(ctx, orderQuery, id).Scan(
		&order.ID, &order.UserID, &order.CashierID, &order.Source, &order.Status,
		&order.Subtotal, &order.ShippingFee, &order.DiscountAmount, &order.TotalAmount,
		&order.PaymentMethod, &order.PromoCode,
		&order.RecipientName, &order.RecipientPhone, &order.RecipientAddress, &order.RecipientProvince,
		&order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, nil, fmt.Errorf("failed to query order: %w", err)
	}

	itemsQuery := `
		SELECT id, order_id, product_id, variant_id, quantity, price_at_purchase
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, itemsQuery, id)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", id.String()).
			Msg("failed to query order items")
		return nil, nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var item model.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.VariantID, &item.Quantity, &item.PriceAtPurchase)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return nil, nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return nil, nil, fmt.Errorf("error iterating order items: %w", err)
	}

	return &order, items, nil
}

// UpdateStatus moves an order to a new status, guarded on the expected
// current status so concurrent admin actions cannot skip states.
func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus) (bool, error) {
	ct, err := r.pool.Exec(ctx, `
		UPDATE orders
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`, id, from, to)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", id.String()).
			Str("to", string(to)).
			Msg("failed to update order status")
		return false, fmt.Errorf("failed to update order status: %w", err)
	}

	return ct.RowsAffected() == 1, nil
}
