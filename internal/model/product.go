package model

import "time"

// Product represents an item in the pet-supply catalogue.
// StockQuantity is authoritative only when HasVariants is false;
// a product with variants is always sold against variant stock.
type Product struct {
	ID            string           `json:"id" db:"id"`
	Name          string           `json:"name" db:"name"`
	Category      string           `json:"category" db:"category"`
	BasePrice     int64            `json:"basePrice" db:"base_price"`
	StockQuantity int              `json:"stockQuantity" db:"stock_quantity"`
	HasVariants   bool             `json:"hasVariants" db:"has_variants"`
	CreatedAt     time.Time        `json:"createdAt" db:"created_at"`
	Variants      []ProductVariant `json:"variants,omitempty" db:"-"`
}

// ProductVariant represents a sellable variation of a product
// (size, flavour) with its own price and stock.
type ProductVariant struct {
	ID            string `json:"id" db:"id"`
	ProductID     string `json:"productId" db:"product_id"`
	Name          string `json:"name" db:"name"`
	Price         int64  `json:"price" db:"price"`
	StockQuantity int    `json:"stockQuantity" db:"stock_quantity"`
}
