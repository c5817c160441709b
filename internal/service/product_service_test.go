package service

import (
	"context"
	"errors"
	"testing"

	"github.com/cydodol-beep/shorttail-ecommerce-sub002/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository is a mock implementation of ProductRepository.
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll(ctx context.Context, limit, offset int) ([]model.Product, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func TestProductService_GetAll(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	products := []model.Product{
		{ID: "P001", Name: "Dog Food Premium", BasePrice: 50000, StockQuantity: 25},
		{ID: "P002", Name: "Cat Litter", BasePrice: 35000, StockQuantity: 40},
	}

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		mockRepo.On("GetAll", ctx, 20, 0).Return(products, nil)

		svc := NewProductService(mockRepo, logger)
		got, err := svc.GetAll(ctx, 20, 0)

		require.NoError(t, err)
		assert.Len(t, got, 2)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Defaults zero limit to 20", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		mockRepo.On("GetAll", ctx, 20, 0).Return(products, nil)

		svc := NewProductService(mockRepo, logger)
		_, err := svc.GetAll(ctx, 0, 0)

		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Clamps limit to 100", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		mockRepo.On("GetAll", ctx, 100, 0).Return(products, nil)

		svc := NewProductService(mockRepo, logger)
		_, err := svc.GetAll(ctx, 500, 0)

		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Negative offset becomes zero", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		mockRepo.On("GetAll", ctx, 20, 0).Return(products, nil)

		svc := NewProductService(mockRepo, logger)
		_, err := svc.GetAll(ctx, 20, -5)

		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Repository error", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		mockRepo.On("GetAll", ctx, 20, 0).Return(nil, errors.New("db down"))

		svc := NewProductService(mockRepo, logger)
		got, err := svc.GetAll(ctx, 20, 0)

		require.Error(t, err)
		assert.Nil(t, got)
	})
}

func TestProductService_GetByID(t *testing.T) {
	logger := zerolog.Nop()
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		product := &model.Product{ID: "P004", Name: "Dog Collar", HasVariants: true}
		mockRepo.On("GetByID", ctx, "P004").Return(product, nil)

		svc := NewProductService(mockRepo, logger)
		got, err := svc.GetByID(ctx, "P004")

		require.NoError(t, err)
		assert.Equal(t, "Dog Collar", got.Name)
	})

	t.Run("Not found", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		mockRepo.On("GetByID", ctx, "P999").Return(nil, nil)

		svc := NewProductService(mockRepo, logger)
		got, err := svc.GetByID(ctx, "P999")

		require.Error(t, err)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, model.ErrProductNotFound)
	})

	t.Run("Empty ID", func(t *testing.T) {
		svc := NewProductService(new(MockProductRepository), logger)
		got, err := svc.GetByID(ctx, "")

		require.Error(t, err)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, model.ErrProductNotFound)
	})
}
