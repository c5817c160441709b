package repository

import (
	"context"
	"fmt"

	"github.com/cydodol-beep/shorttail-ecommerce-sub002/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

// GetAll retrieves products with pagination, variants included.
func (r *productRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	query := `
		SELECT id, name, category, base_price, stock_quantity, has_variants, created_at
		FROM products
		ORDER BY name
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", limit).
			Int("offset", offset).
			Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		var p model.Product
		err := rows.Scan(&p.ID, &p.Name, &p.Category, &p.BasePrice, &p.StockQuantity, &p.HasVariants, &p.CreatedAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	if err := r.attachVariants(ctx, products); err != nil {
		return nil, err
	}

	return products, nil
}

// GetByID retrieves a single product with its variants.
func (r *productRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	query := `
		SELECT id, name, category, base_price, stock_quantity, has_variants, created_at
		FROM products
		WHERE id = $1
	`

	var p model.Product
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Name, &p.Category, &p.BasePrice, &p.StockQuantity, &p.HasVariants, &p.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Str("product_id", id).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	if p.HasVariants {
		products := []model.Product{p}
		if err := r.attachVariants(ctx, products); err != nil {
			return nil, err
		}
		p = products[0]
	}

	return &p, nil
}

// attachVariants loads variants for every product in the slice that has them.
func (r *productRepository) attachVariants(ctx context.Context, products []model.Product) error {
	ids := make([]string, 0, len(products))
	index := make(map[string]int, len(products))
	for i, p := range products {
		if p.HasVariants {
			ids = append(ids, p.ID)
			index[p.ID] = i
		}
	}
	if len(ids) == 0 {
		return nil
	}

	query := `
		SELECT id, product_id, name, price, stock_quantity
		FROM product_variants
		WHERE product_id = ANY($1)
		ORDER BY product_id, name
	`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query product variants")
		return fmt.Errorf("failed to query product variants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var v model.ProductVariant
		err := rows.Scan(&v.ID, &v.ProductID, &v.Name, &v.Price, &v.StockQuantity)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan variant row")
			return fmt.Errorf("failed to scan variant: %w", err)
		}
		if i, ok := index[v.ProductID]; ok {
			products[i].Variants = append(products[i].Variants, v)
		}
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating variant rows")
		return fmt.Errorf("error iterating variants: %w", err)
	}

	return nil
}
