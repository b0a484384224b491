package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storemanager/internal/domain"
	apperror "storemanager/internal/errors"
	"storemanager/internal/repository/memory"
)

func TestProductRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore().Products()

	id, err := repo.Create(ctx, "Lemonade", 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	_, err = repo.Create(ctx, "Lemonade", 3)
	var conflict *apperror.ConflictError
	assert.True(t, errors.As(err, &conflict))

	byName, err := repo.GetByName(ctx, "Lemonade")
	require.NoError(t, err)
	assert.Len(t, byName, 1)

	none, err := repo.GetByName(ctx, "Orange Juice")
	require.NoError(t, err)
	assert.Empty(t, none)

	ok, err := repo.Update(ctx, id, "Pink Lemonade", 4)
	require.NoError(t, err)
	assert.True(t, ok)

	q, err := repo.GetQuantity(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 4, q)

	ok, err = repo.UpdateQuantity(ctx, id, 0)
	require.NoError(t, err)
	assert.True(t, ok, "zero é uma quantidade válida em estoque")

	ok, err = repo.UpdateQuantity(ctx, 99, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.DeleteByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.GetByID(ctx, id)
	var notFound *apperror.NotFoundError
	assert.True(t, errors.As(err, &notFound))
}

func TestProductRepository_MissingArgumentsFailLocally(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewStore().Products()

	_, err := repo.Create(ctx, "", 1)
	assert.ErrorIs(t, err, apperror.ErrMissingArgument)
	_, err = repo.GetByID(ctx, 0)
	assert.ErrorIs(t, err, apperror.ErrMissingArgument)
	_, err = repo.UpdateQuantity(ctx, 1, -1)
	assert.ErrorIs(t, err, apperror.ErrMissingArgument)
}

func TestSaleRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	products, sales := store.Products(), store.Sales()

	p1, _ := products.Create(ctx, "Lemonade", 10)
	p2, _ := products.Create(ctx, "Orange Juice", 10)

	_, err := sales.Create(ctx, nil)
	assert.ErrorIs(t, err, apperror.ErrMissingArgument)

	_, err = sales.Create(ctx, []domain.SaleLine{{ProductID: 42, Quantity: 1}})
	assert.ErrorIs(t, err, apperror.ErrUnknownProduct)

	saleID, err := sales.Create(ctx, []domain.SaleLine{{ProductID: p1, Quantity: 2}, {ProductID: p2, Quantity: 1}})
	require.NoError(t, err)

	all, err := sales.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, saleID, all[0].SaleID)

	ok, err := sales.Update(ctx, saleID, []domain.SaleLine{{ProductID: p2, Quantity: 5}})
	require.NoError(t, err)
	assert.True(t, ok)

	lines, err := sales.GetByID(ctx, saleID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)

	ok, err = sales.Update(ctx, 77, []domain.SaleLine{{ProductID: p2, Quantity: 5}})
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = products.DeleteByID(ctx, p2)
	var conflict *apperror.ConflictError
	assert.True(t, errors.As(err, &conflict), "produto vendido não pode ser removido")

	deleted, err := sales.DeleteByID(ctx, saleID)
	require.NoError(t, err)
	assert.Equal(t, lines, deleted)

	_, err = sales.DeleteByID(ctx, saleID)
	var notFound *apperror.NotFoundError
	assert.True(t, errors.As(err, &notFound))

	empty, err := sales.GetByID(ctx, saleID)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSaleRepository_LinesOrderedByProduct(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	products, sales := store.Products(), store.Sales()

	p1, _ := products.Create(ctx, "Lemonade", 10)
	p2, _ := products.Create(ctx, "Orange Juice", 10)

	saleID, err := sales.Create(ctx, []domain.SaleLine{{ProductID: p2, Quantity: 1}, {ProductID: p1, Quantity: 2}})
	require.NoError(t, err)

	lines, err := sales.GetByID(ctx, saleID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, []int64{p1, p2}, []int64{lines[0].ProductID, lines[1].ProductID})

	all, err := sales.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, []int64{p1, p2}, []int64{all[0].ProductID, all[1].ProductID})
}
