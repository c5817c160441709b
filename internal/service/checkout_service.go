package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cydodol-beep/shorttail-ecommerce-sub002/internal/model"
	"github.com/cydodol-beep/shorttail-ecommerce-sub002/internal/promo"
	"github.com/cydodol-beep/shorttail-ecommerce-sub002/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// checkoutService implements CheckoutService.
type checkoutService struct {
	orderRepo repository.OrderRepository
	validator promo.Validator // nil when promo codes are disabled
	notifier  OrderNotifier   // nil in tests that don't care
	logger    zerolog.Logger
}

// NewCheckoutService creates a new checkout service.
func NewCheckoutService(
	orderRepo repository.OrderRepository,
	validator promo.Validator,
	notifier OrderNotifier,
	logger zerolog.Logger,
) CheckoutService {
	return &checkoutService{
		orderRepo: orderRepo,
		validator: validator,
		notifier:  notifier,
		logger:    logger.With().Str("service", "checkout").Logger(),
	}
}

// Checkout creates a POS order. Stock decrements, the order header and
// every item row share one transaction: either the whole cart commits or
// nothing is persisted, and stock can never go negative under concurrent
// checkouts.
func (s *checkoutService) Checkout(ctx context.Context, req *model.CheckoutRequest, session *model.Session) (*model.OrderResponse, error) {
	if err := s.validateCheckoutRequest(req); err != nil {
		return nil, err
	}

	if req.PromoCode != nil && *req.PromoCode != "" && s.validator != nil {
		if err := s.validator.Validate(ctx, *req.PromoCode); err != nil {
			s.logger.Warn().
				Str("promo_code", *req.PromoCode).
				Err(err).
				Msg("invalid promo code")
			return nil, err
		}
		s.logger.Debug().Str("promo_code", *req.PromoCode).Msg("promo code validated")
	}

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	// Reserve stock first: the conditional decrement doubles as the
	// sufficiency check, so a short item aborts before any order row
	// exists.
	for _, item := range req.Items {
		if err = s.orderRepo.DecrementStock(ctx, tx, item); err != nil {
			s.logger.Warn().
				Str("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Err(err).
				Msg("stock reservation failed")
			return nil, err
		}
	}

	now := time.Now()
	order := &model.Order{
		ID:                uuid.New(),
		UserID:            req.CustomerID,
		CashierID:         session.UserID,
		Source:            model.SourcePOS,
		Status:            model.StatusPaid, // in-person cash sale, no payment step
		Subtotal:          req.Subtotal,
		ShippingFee:       req.ShippingFee,
		DiscountAmount:    req.DiscountAmount,
		TotalAmount:       req.TotalAmount,
		PaymentMethod:     req.PaymentMethod,
		PromoCode:         req.PromoCode,
		RecipientName:     req.RecipientName,
		RecipientPhone:    req.RecipientPhone,
		RecipientAddress:  req.RecipientAddress,
		RecipientProvince: req.RecipientProvince,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	orderItems := make([]model.OrderItem, len(req.Items))
	for i, item := range req.Items {
		orderItems[i] = model.OrderItem{
			ID:              uuid.New(),
			OrderID:         order.ID,
			ProductID:       item.ProductID,
			VariantID:       item.VariantID,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.Price, // snapshot of the price sold at
		}
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, orderItems); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(orderItems)).
			Msg("failed to create order items")
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Best-effort only from here: the order is committed.
	if s.notifier != nil {
		s.notifier.OrderCreated(order, len(orderItems))
	}

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("cashier_id", order.CashierID).
		Int("item_count", len(orderItems)).
		Int64("total_amount", order.TotalAmount).
		Msg("order created successfully")

	return &model.OrderResponse{
		Order:   order,
		Items:   orderItems,
		Success: true,
	}, nil
}

// GetOrder retrieves an order by its ID with all items.
func (s *checkoutService) GetOrder(ctx context.Context, id uuid.UUID) (*model.OrderResponse, error) {
	order, items, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, nil
	}

	return &model.OrderResponse{
		Order:   order,
		Items:   items,
		Success: true,
	}, nil
}

// UpdateStatus moves an order along the status state machine.
func (s *checkoutService) UpdateStatus(ctx context.Context, id uuid.UUID, to model.OrderStatus) (*model.Order, error) {
	if !model.ValidStatus(to) {
		return nil, model.NewDomainError(model.ErrCodeInvalidStatusTransition, fmt.Sprintf("unknown status: %s", to))
	}

	order, _, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}

	if !model.CanTransition(order.Status, to) {
		s.logger.Warn().
			Str("order_id", id.String()).
			Str("from", string(order.Status)).
			Str("to", string(to)).
			Msg("invalid status transition")
		return nil, &model.InvalidTransitionError{From: order.Status, To: to}
	}

	ok, err := s.orderRepo.UpdateStatus(ctx, id, order.Status, to)
	if err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	if !ok {
		// Status changed under us between read and update.
		return nil, &model.InvalidTransitionError{From: order.Status, To: to}
	}

	order.Status = to
	order.UpdatedAt = time.Now()

	s.logger.Info().
		Str("order_id", id.String()).
		Str("status", string(to)).
		Msg("order status updated")

	return order, nil
}

// validateCheckoutRequest validates the checkout request beyond what the
// handler's struct validation covers.
func (s *checkoutService) validateCheckoutRequest(req *model.CheckoutRequest) error {
	if req == nil {
		return fmt.Errorf("checkout request is nil")
	}

	if len(req.Items) == 0 {
		return fmt.Errorf("order must contain at least one item")
	}

	for i, item := range req.Items {
		if item.ProductID == "" {
			return fmt.Errorf("item %d: product ID is required", i)
		}

		if item.VariantID != nil && *item.VariantID == "" {
			return fmt.Errorf("item %d: variant ID cannot be empty", i)
		}

		if item.Quantity <= 0 {
			s.logger.Warn().
				Int("item_index", i).
				Str("product_id", item.ProductID).
				Int("quantity", item.Quantity).
				Msg("invalid quantity")
			return model.ErrInvalidQuantity
		}
	}

	return nil
}
