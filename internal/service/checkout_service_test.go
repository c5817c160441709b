package service

import (
	"context"
	"errors"
	"testing"

	"github.com/cydodol-beep/shorttail-ecommerce-sub002/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) DecrementStock(ctx context.Context, tx pgx.Tx, item model.CartItem) error {
	args := m.Called(ctx, tx, item)
	return args.Error(0)
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	args := m.Called(ctx, tx, items)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.Order), args.Get(1).([]model.OrderItem), args.Error(2)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.OrderStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

// MockPromoValidator is a mock implementation of promo.Validator.
type MockPromoValidator struct {
	mock.Mock
}

func (m *MockPromoValidator) Validate(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockPromoValidator) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockNotifier is a mock implementation of OrderNotifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) OrderCreated(order *model.Order, itemCount int) {
	m.Called(order, itemCount)
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
	committed  bool
	rolledBack bool
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.committed = true
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.rolledBack = true
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }

func cashierSession() *model.Session {
	return &model.Session{Token: "tok", UserID: "cashier-1", Role: model.RoleKasir}
}

func checkoutRequest() *model.CheckoutRequest {
	return &model.CheckoutRequest{
		Items: []model.CartItem{
			{ProductID: "P001", Quantity: 3, Price: 50000, DisplayName: "Dog Food"},
		},
		Subtotal:      150000,
		ShippingFee:   0,
		TotalAmount:   150000,
		PaymentMethod: "cash",
		RecipientName: "Walk-in",
	}
}

func TestCheckoutService_Checkout_Success(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	mockRepo := new(MockOrderRepository)
	mockNotifier := new(MockNotifier)
	mockTx := new(MockTx)

	req := checkoutRequest()

	mockRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockRepo.On("DecrementStock", ctx, mockTx, req.Items[0]).Return(nil)
	mockRepo.On("CreateOrder", ctx, mockTx, mock.AnythingOfType("*model.Order")).Return(nil)
	mockRepo.On("CreateOrderItems", ctx, mockTx, mock.AnythingOfType("[]model.OrderItem")).Return(nil)
	mockTx.On("Commit", ctx).Return(nil)
	mockNotifier.On("OrderCreated", mock.AnythingOfType("*model.Order"), 1).Return()

	svc := NewCheckoutService(mockRepo, nil, mockNotifier, logger)
	resp, err := svc.Checkout(ctx, req, cashierSession())

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.True(t, resp.Success)
	assert.Equal(t, model.StatusPaid, resp.Order.Status)
	assert.Equal(t, model.SourcePOS, resp.Order.Source)
	assert.Equal(t, "cashier-1", resp.Order.CashierID)
	assert.Equal(t, int64(150000), resp.Order.TotalAmount)
	require.Len(t, resp.Items, 1)
	// Price snapshot comes from the cart, never the live product price.
	assert.Equal(t, int64(50000), resp.Items[0].PriceAtPurchase)
	assert.Equal(t, resp.Order.ID, resp.Items[0].OrderID)

	assert.True(t, mockTx.committed)
	assert.False(t, mockTx.rolledBack)
	mockRepo.AssertExpectations(t)
	mockNotifier.AssertExpectations(t)
}

func TestCheckoutService_Checkout_InsufficientStock(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	mockRepo := new(MockOrderRepository)
	mockTx := new(MockTx)

	req := checkoutRequest()
	stockErr := &model.InsufficientStockError{ProductName: "Dog Food", Available: 2, Requested: 3}

	mockRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockRepo.On("DecrementStock", ctx, mockTx, req.Items[0]).Return(stockErr)
	mockTx.On("Rollback", ctx).Return(nil)

	svc := NewCheckoutService(mockRepo, nil, nil, logger)
	resp, err := svc.Checkout(ctx, req, cashierSession())

	require.Error(t, err)
	assert.Nil(t, resp)

	var gotStockErr *model.InsufficientStockError
	require.True(t, errors.As(err, &gotStockErr))
	assert.Contains(t, gotStockErr.Error(), "Dog Food")
	assert.Contains(t, gotStockErr.Error(), "2 available")

	// No order or item row is ever attempted once a line is short.
	mockRepo.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)
	mockRepo.AssertNotCalled(t, "CreateOrderItems", mock.Anything, mock.Anything, mock.Anything)
	assert.True(t, mockTx.rolledBack)
	assert.False(t, mockTx.committed)
}

func TestCheckoutService_Checkout_SecondLineShortAbortsWholeCart(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	mockRepo := new(MockOrderRepository)
	mockTx := new(MockTx)

	variantID := "V002"
	req := checkoutRequest()
	req.Items = append(req.Items, model.CartItem{
		ProductID: "P004", VariantID: &variantID, Quantity: 2, Price: 30000, DisplayName: "Dog Collar (Medium)",
	})
	req.Subtotal = 210000
	req.TotalAmount = 210000

	stockErr := &model.InsufficientStockError{ProductName: "Dog Collar", VariantName: "Medium", Available: 1, Requested: 2}

	mockRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockRepo.On("DecrementStock", ctx, mockTx, req.Items[0]).Return(nil)
	mockRepo.On("DecrementStock", ctx, mockTx, req.Items[1]).Return(stockErr)
	mockTx.On("Rollback", ctx).Return(nil)

	svc := NewCheckoutService(mockRepo, nil, nil, logger)
	resp, err := svc.Checkout(ctx, req, cashierSession())

	require.Error(t, err)
	assert.Nil(t, resp)
	// The first line's decrement rolls back with everything else.
	assert.True(t, mockTx.rolledBack)
	mockRepo.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckoutService_Checkout_ItemInsertFailureRollsBack(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	mockRepo := new(MockOrderRepository)
	mockTx := new(MockTx)

	req := checkoutRequest()
	insertErr := errors.New("item insert failed")

	mockRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockRepo.On("DecrementStock", ctx, mockTx, req.Items[0]).Return(nil)
	mockRepo.On("CreateOrder", ctx, mockTx, mock.AnythingOfType("*model.Order")).Return(nil)
	mockRepo.On("CreateOrderItems", ctx, mockTx, mock.AnythingOfType("[]model.OrderItem")).Return(insertErr)
	mockTx.On("Rollback", ctx).Return(nil)

	svc := NewCheckoutService(mockRepo, nil, nil, logger)
	resp, err := svc.Checkout(ctx, req, cashierSession())

	require.Error(t, err)
	assert.Nil(t, resp)
	// The order header rolls back with the failed items, so no orphaned
	// header row can exist.
	assert.True(t, mockTx.rolledBack)
	assert.False(t, mockTx.committed)
}

func TestCheckoutService_Checkout_NotifierFailureIsImpossibleToSurface(t *testing.T) {
	// The notifier is fire-and-forget: Checkout only hands the order
	// over, so there is no error path from it at all.
	logger := zerolog.Nop()
	ctx := context.Background()

	mockRepo := new(MockOrderRepository)
	mockTx := new(MockTx)

	req := checkoutRequest()

	mockRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockRepo.On("DecrementStock", ctx, mockTx, req.Items[0]).Return(nil)
	mockRepo.On("CreateOrder", ctx, mockTx, mock.AnythingOfType("*model.Order")).Return(nil)
	mockRepo.On("CreateOrderItems", ctx, mockTx, mock.AnythingOfType("[]model.OrderItem")).Return(nil)
	mockTx.On("Commit", ctx).Return(nil)

	// nil notifier: checkout succeeds without one
	svc := NewCheckoutService(mockRepo, nil, nil, logger)
	resp, err := svc.Checkout(ctx, req, cashierSession())

	require.NoError(t, err)
	assert.True(t, resp.Success)
}

func TestCheckoutService_Checkout_InvalidPromoCode(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	mockRepo := new(MockOrderRepository)
	mockValidator := new(MockPromoValidator)

	code := "BOGUS1"
	req := checkoutRequest()
	req.PromoCode = &code

	mockValidator.On("Validate", ctx, code).Return(model.ErrInvalidPromoCode)

	svc := NewCheckoutService(mockRepo, mockValidator, nil, logger)
	resp, err := svc.Checkout(ctx, req, cashierSession())

	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, model.ErrInvalidPromoCode, err)
	// Promo rejection happens before any transaction is opened.
	mockRepo.AssertNotCalled(t, "BeginTx", mock.Anything)
}

func TestCheckoutService_Checkout_ValidationErrors(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	svc := NewCheckoutService(new(MockOrderRepository), nil, nil, logger)

	t.Run("Nil request", func(t *testing.T) {
		resp, err := svc.Checkout(ctx, nil, cashierSession())
		require.Error(t, err)
		assert.Nil(t, resp)
	})

	t.Run("Empty items", func(t *testing.T) {
		req := checkoutRequest()
		req.Items = nil
		resp, err := svc.Checkout(ctx, req, cashierSession())
		require.Error(t, err)
		assert.Nil(t, resp)
		assert.Contains(t, err.Error(), "at least one item")
	})

	t.Run("Zero quantity", func(t *testing.T) {
		req := checkoutRequest()
		req.Items[0].Quantity = 0
		resp, err := svc.Checkout(ctx, req, cashierSession())
		require.Error(t, err)
		assert.Nil(t, resp)
		assert.Equal(t, model.ErrInvalidQuantity, err)
	})

	t.Run("Missing product ID", func(t *testing.T) {
		req := checkoutRequest()
		req.Items[0].ProductID = ""
		resp, err := svc.Checkout(ctx, req, cashierSession())
		require.Error(t, err)
		assert.Nil(t, resp)
		assert.Contains(t, err.Error(), "product ID is required")
	})
}

func TestCheckoutService_GetOrder(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	orderID := uuid.New()
	order := &model.Order{ID: orderID, Status: model.StatusPaid}
	items := []model.OrderItem{{ID: uuid.New(), OrderID: orderID, ProductID: "P001", Quantity: 1, PriceAtPurchase: 50000}}

	t.Run("Found", func(t *testing.T) {
		mockRepo := new(MockOrderRepository)
		mockRepo.On("GetByID", ctx, orderID).Return(order, items, nil)

		svc := NewCheckoutService(mockRepo, nil, nil, logger)
		resp, err := svc.GetOrder(ctx, orderID)

		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, orderID, resp.Order.ID)
		assert.Len(t, resp.Items, 1)
	})

	t.Run("Not found", func(t *testing.T) {
		mockRepo := new(MockOrderRepository)
		mockRepo.On("GetByID", ctx, orderID).Return(nil, nil, nil)

		svc := NewCheckoutService(mockRepo, nil, nil, logger)
		resp, err := svc.GetOrder(ctx, orderID)

		require.NoError(t, err)
		assert.Nil(t, resp)
	})
}

func TestCheckoutService_UpdateStatus(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()
	orderID := uuid.New()

	t.Run("Valid transition", func(t *testing.T) {
		mockRepo := new(MockOrderRepository)
		order := &model.Order{ID: orderID, Status: model.StatusPaid}
		mockRepo.On("GetByID", ctx, orderID).Return(order, []model.OrderItem(nil), nil)
		mockRepo.On("UpdateStatus", ctx, orderID, model.StatusPaid, model.StatusPacked).Return(true, nil)

		svc := NewCheckoutService(mockRepo, nil, nil, logger)
		updated, err := svc.UpdateStatus(ctx, orderID, model.StatusPacked)

		require.NoError(t, err)
		assert.Equal(t, model.StatusPacked, updated.Status)
	})

	t.Run("Invalid transition", func(t *testing.T) {
		mockRepo := new(MockOrderRepository)
		order := &model.Order{ID: orderID, Status: model.StatusDelivered}
		mockRepo.On("GetByID", ctx, orderID).Return(order, []model.OrderItem(nil), nil)

		svc := NewCheckoutService(mockRepo, nil, nil, logger)
		updated, err := svc.UpdateStatus(ctx, orderID, model.StatusPaid)

		require.Error(t, err)
		assert.Nil(t, updated)
		var transitionErr *model.InvalidTransitionError
		assert.True(t, errors.As(err, &transitionErr))
		mockRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Unknown status", func(t *testing.T) {
		svc := NewCheckoutService(new(MockOrderRepository), nil, nil, logger)
		updated, err := svc.UpdateStatus(ctx, orderID, model.OrderStatus("refunded"))
		require.Error(t, err)
		assert.Nil(t, updated)
	})

	t.Run("Order not found", func(t *testing.T) {
		mockRepo := new(MockOrderRepository)
		mockRepo.On("GetByID", ctx, orderID).Return(nil, nil, nil)

		svc := NewCheckoutService(mockRepo, nil, nil, logger)
		updated, err := svc.UpdateStatus(ctx, orderID, model.StatusPacked)

		require.Error(t, err)
		assert.Nil(t, updated)
		assert.Equal(t, model.ErrOrderNotFound, err)
	})

	t.Run("Concurrent change between read and update", func(t *testing.T) {
		mockRepo := new(MockOrderRepository)
		order := &model.Order{ID: orderID, Status: model.StatusPaid}
		mockRepo.On("GetByID", ctx, orderID).Return(order, []model.OrderItem(nil), nil)
		mockRepo.On("UpdateStatus", ctx, orderID, model.StatusPaid, model.StatusPacked).Return(false, nil)

		svc := NewCheckoutService(mockRepo, nil, nil, logger)
		updated, err := svc.UpdateStatus(ctx, orderID, model.StatusPacked)

		require.Error(t, err)
		assert.Nil(t, updated)
	})
}
