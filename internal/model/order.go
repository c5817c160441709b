package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusPaid      OrderStatus = "paid"
	StatusPacked    OrderStatus = "packed"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
	StatusReturned  OrderStatus = "returned"
)

// Order sources.
const (
	SourcePOS         = "pos"
	SourceMarketplace = "marketplace"
)

var validNext = map[OrderStatus]map[OrderStatus]bool{
	StatusPending:   {StatusPaid: true, StatusCancelled: true},
	StatusPaid:      {StatusPacked: true, StatusCancelled: true},
	StatusPacked:    {StatusShipped: true, StatusCancelled: true},
	StatusShipped:   {StatusDelivered: true, StatusReturned: true},
	StatusDelivered: {StatusReturned: true},
	StatusCancelled: {},
	StatusReturned:  {},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	return validNext[from][to]
}

// ValidStatus reports whether s is a known order status.
func ValidStatus(s OrderStatus) bool {
	_, ok := validNext[s]
	return ok
}

// Order represents a checkout. Content is immutable after creation;
// only Status (and UpdatedAt) change afterwards.
type Order struct {
	ID                uuid.UUID   `json:"id" db:"id"`
	UserID            *string     `json:"userId,omitempty" db:"user_id"`
	CashierID         string      `json:"cashierId" db:"cashier_id"`
	Source            string      `json:"source" db:"source"`
	Status            OrderStatus `json:"status" db:"status"`
	Subtotal          int64       `json:"subtotal" db:"subtotal"`
	ShippingFee       int64       `json:"shippingFee" db:"shipping_fee"`
	DiscountAmount    int64       `json:"discountAmount" db:"discount_amount"`
	TotalAmount       int64       `json:"totalAmount" db:"total_amount"`
	PaymentMethod     string      `json:"paymentMethod" db:"payment_method"`
	PromoCode         *string     `json:"promoCode,omitempty" db:"promo_code"`
	RecipientName     string      `json:"recipientName" db:"recipient_name"`
	RecipientPhone    string      `json:"recipientPhone" db:"recipient_phone"`
	RecipientAddress  string      `json:"recipientAddress" db:"recipient_address"`
	RecipientProvince string      `json:"recipientProvince" db:"recipient_province"`
	CreatedAt         time.Time   `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time   `json:"updatedAt" db:"updated_at"`
}

// OrderItem represents a line item in an order. PriceAtPurchase is a
// snapshot of the price the cashier sold at; it never tracks the live
// product price.
type OrderItem struct {
	ID              uuid.UUID `json:"-" db:"id"`
	OrderID         uuid.UUID `json:"-" db:"order_id"`
	ProductID       string    `json:"productId" db:"product_id"`
	VariantID       *string   `json:"variantId,omitempty" db:"variant_id"`
	Quantity        int       `json:"quantity" db:"quantity"`
	PriceAtPurchase int64     `json:"priceAtPurchase" db:"price_at_purchase"`
}

// CartItem is a single line of a checkout request.
type CartItem struct {
	ProductID   string  `json:"productId" validate:"required"`
	VariantID   *string `json:"variantId,omitempty"`
	Quantity    int     `json:"quantity" validate:"required,min=1"`
	Price       int64   `json:"price" validate:"required,gt=0"`
	DisplayName string  `json:"displayName"`
}

// CheckoutRequest is the payload for POST /api/pos/orders.
// Totals are client-computed and cross-checked against the items
// by struct-level validation before any data access.
type CheckoutRequest struct {
	Items             []CartItem `json:"items" validate:"required,min=1,dive"`
	Subtotal          int64      `json:"subtotal" validate:"gte=0"`
	ShippingFee       int64      `json:"shippingFee" validate:"gte=0"`
	DiscountAmount    int64      `json:"discountAmount" validate:"gte=0"`
	TotalAmount       int64      `json:"total" validate:"required,gt=0"`
	PaymentMethod     string     `json:"paymentMethod" validate:"required"`
	PromoCode         *string    `json:"promoCode,omitempty"`
	CustomerID        *string    `json:"customerId,omitempty"`
	RecipientName     string     `json:"recipientName" validate:"required"`
	RecipientPhone    string     `json:"recipientPhone"`
	RecipientAddress  string     `json:"recipientAddress"`
	RecipientProvince string     `json:"recipientProvince"`
}

// OrderResponse is the response payload for a created or fetched order.
type OrderResponse struct {
	Order   *Order      `json:"order"`
	Items   []OrderItem `json:"items"`
	Success bool        `json:"success"`
}

// StatusUpdateRequest is the payload for PATCH /api/orders/{id}/status.
type StatusUpdateRequest struct {
	Status OrderStatus `json:"status" validate:"required"`
}
