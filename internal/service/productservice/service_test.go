package productservice_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storemanager/internal/domain"
	apperror "storemanager/internal/errors"
	"storemanager/internal/pkg/logger"
	"storemanager/internal/service/productservice"
	"storemanager/internal/validation"
)

// MockProductRepository é uma implementação mock da interface domain.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, name string, quantity int) (int64, error) {
	args := m.Called(ctx, name, quantity)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) GetAll(ctx context.Context) ([]domain.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockProductRepository) GetByName(ctx context.Context, name string) ([]domain.Product, error) {
	args := m.Called(ctx, name)
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(ctx context.Context, id int64) (domain.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Product), args.Error(1)
}

func (m *MockProductRepository) Update(ctx context.Context, id int64, name string, quantity int) (bool, error) {
	args := m.Called(ctx, id, name, quantity)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) DeleteByID(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) GetQuantity(ctx context.Context, id int64) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *MockProductRepository) UpdateQuantity(ctx context.Context, id int64, quantity int) (bool, error) {
	args := m.Called(ctx, id, quantity)
	return args.Bool(0), args.Error(1)
}

func assertStatus(t *testing.T, err error, status int, msg string) {
	t.Helper()
	require.Error(t, err)
	gotStatus, _, gotMsg := apperror.MapToHTTPStatus(err)
	assert.Equal(t, status, gotStatus)
	assert.Equal(t, msg, gotMsg)
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("sucesso", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := productservice.NewService(repo, logger.NewNop())

		repo.On("GetByName", ctx, "Lemonade").Return([]domain.Product{}, nil).Once()
		repo.On("Create", ctx, "Lemonade", 10).Return(int64(1), nil).Once()

		product, err := svc.Create(ctx, "Lemonade", float64(10))

		require.NoError(t, err)
		assert.Equal(t, domain.Product{ID: 1, Name: "Lemonade", Quantity: 10}, product)
		repo.AssertExpectations(t)
	})

	t.Run("nome duplicado não insere", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := productservice.NewService(repo, logger.NewNop())

		repo.On("GetByName", ctx, "Lemonade").
			Return([]domain.Product{{ID: 1, Name: "Lemonade", Quantity: 10}}, nil).Once()

		_, err := svc.Create(ctx, "Lemonade", float64(3))

		assertStatus(t, err, 409, validation.MsgProductExists)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("nome ausente não consulta o repositório", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := productservice.NewService(repo, logger.NewNop())

		_, err := svc.Create(ctx, "", float64(3))

		assertStatus(t, err, 400, validation.MsgNameRequired)
		repo.AssertNotCalled(t, "GetByName", mock.Anything, mock.Anything)
	})

	t.Run("quantidade zero é 422", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := productservice.NewService(repo, logger.NewNop())

		repo.On("GetByName", ctx, "Lemonade").Return([]domain.Product{}, nil).Once()

		_, err := svc.Create(ctx, "Lemonade", float64(0))

		assertStatus(t, err, 422, validation.MsgQuantityInvalid)
	})

	t.Run("falha do banco é propagada", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := productservice.NewService(repo, logger.NewNop())
		dbErr := apperror.NewDBError("Falha ao criar produto", errors.New("timeout"))

		repo.On("GetByName", ctx, "Lemonade").Return([]domain.Product{}, nil).Once()
		repo.On("Create", ctx, "Lemonade", 2).Return(int64(0), dbErr).Once()

		_, err := svc.Create(ctx, "Lemonade", float64(2))

		assert.Equal(t, dbErr, err)
	})
}

func TestService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("sucesso mesmo com quantidade zero", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := productservice.NewService(repo, logger.NewNop())
		expected := domain.Product{ID: 3, Name: "Lemonade", Quantity: 0}

		repo.On("GetByID", ctx, int64(3)).Return(expected, nil).Once()

		product, err := svc.GetByID(ctx, 3)

		require.NoError(t, err)
		assert.Equal(t, expected, product)
	})

	t.Run("inexistente", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := productservice.NewService(repo, logger.NewNop())

		repo.On("GetByID", ctx, int64(0)).Return(domain.Product{}, apperror.ErrMissingArgument).Once()

		_, err := svc.GetByID(ctx, 0)

		assertStatus(t, err, 404, validation.MsgProductNotFound)
	})

	t.Run("não encontrado no repositório", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := productservice.NewService(repo, logger.NewNop())

		repo.On("GetByID", ctx, int64(8)).Return(domain.Product{}, apperror.NewNotFoundError("Produto não encontrado")).Once()

		_, err := svc.GetByID(ctx, 8)

		assertStatus(t, err, 404, validation.MsgProductNotFound)
	})

	t.Run("falha do banco é propagada", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := productservice.NewService(repo, logger.NewNop())
		dbErr := apperror.NewDBError("Falha ao buscar produto", errors.New("connection reset"))

		repo.On("GetByID", ctx, int64(4)).Return(domain.Product{}, dbErr).Once()

		_, err := svc.GetByID(ctx, 4)

		assertStatus(t, err, 500, apperror.InternalServerErrorMessage)
	})
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("sucesso sem checar unicidade", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := productservice.NewService(repo, logger.NewNop())

		repo.On("Update", ctx, int64(1), "Orange Juice", 4).Return(true, nil).Once()

		product, err := svc.Update(ctx, 1, "Orange Juice", float64(4))

		require.NoError(t, err)
		assert.Equal(t, domain.Product{ID: 1, Name: "Orange Juice", Quantity: 4}, product)
		repo.AssertNotCalled(t, "GetByName", mock.Anything, mock.Anything)
	})

	t.Run("inexistente", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := productservice.NewService(repo, logger.NewNop())

		repo.On("Update", ctx, int64(9), "Orange Juice", 4).Return(false, nil).Once()

		_, err := svc.Update(ctx, 9, "Orange Juice", float64(4))

		assertStatus(t, err, 404, validation.MsgProductNotFound)
	})

	t.Run("nome curto", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := productservice.NewService(repo, logger.NewNop())

		_, err := svc.Update(ctx, 1, "Tea", float64(4))

		assertStatus(t, err, 422, validation.MsgNameLength)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_DeleteByID(t *testing.T) {
	ctx := context.Background()

	t.Run("devolve o produto removido", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := productservice.NewService(repo, logger.NewNop())
		existing := domain.Product{ID: 2, Name: "Lemonade", Quantity: 7}

		repo.On("GetByID", ctx, int64(2)).Return(existing, nil).Once()
		repo.On("DeleteByID", ctx, int64(2)).Return(true, nil).Once()

		product, err := svc.DeleteByID(ctx, 2)

		require.NoError(t, err)
		assert.Equal(t, existing, product)
		repo.AssertExpectations(t)
	})

	t.Run("inexistente não remove", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := productservice.NewService(repo, logger.NewNop())

		repo.On("GetByID", ctx, int64(2)).
			Return(domain.Product{}, apperror.NewNotFoundError(validation.MsgProductNotFound)).Once()

		_, err := svc.DeleteByID(ctx, 2)

		assertStatus(t, err, 404, validation.MsgProductNotFound)
		repo.AssertNotCalled(t, "DeleteByID", mock.Anything, mock.Anything)
	})

	t.Run("produto vendido gera conflito", func(t *testing.T) {
		repo := new(MockProductRepository)
		svc := productservice.NewService(repo, logger.NewNop())

		repo.On("GetByID", ctx, int64(2)).Return(domain.Product{ID: 2, Name: "Lemonade", Quantity: 7}, nil).Once()
		repo.On("DeleteByID", ctx, int64(2)).
			Return(false, apperror.NewConflictError("Product is referenced by existing sales")).Once()

		_, err := svc.DeleteByID(ctx, 2)

		assertStatus(t, err, 409, "Product is referenced by existing sales")
	})
}
