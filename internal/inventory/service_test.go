package inventory

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopsphere/storefront/internal/domain/product"
)

// --- Mock implementations ---

type mockRepo struct {
	byID      map[string]*product.Product
	listErr   error
	updateErr error
}

func (m *mockRepo) List(_ context.Context) ([]product.Product, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]product.Product, 0, len(m.byID))
	for _, p := range m.byID {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) UpdateStock(_ context.Context, id string, level int) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	p, ok := m.byID[id]
	if !ok {
		return product.ErrNotFound
	}
	p.Stock = product.TrackedStock(level)
	return nil
}

func (m *mockRepo) UpdateReorderThreshold(_ context.Context, id string, threshold int) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	p, ok := m.byID[id]
	if !ok {
		return product.ErrNotFound
	}
	p.ReorderThreshold = &threshold
	return nil
}

func newRepo(products ...product.Product) *mockRepo {
	byID := make(map[string]*product.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	return &mockRepo{byID: byID}
}

func trackedProduct(id string, units, threshold int) product.Product {
	return product.Product{
		ID:               id,
		Name:             "Product " + id,
		BasePrice:        decimal.RequireFromString("10.00"),
		Stock:            product.TrackedStock(units),
		ReorderThreshold: &threshold,
	}
}

// --- Tests ---

func TestSetStockLevel(t *testing.T) {
	repo := newRepo(trackedProduct("p1", 10, 3))
	svc := NewService(repo)

	p, err := svc.SetStockLevel(context.Background(), "p1", 7)
	require.NoError(t, err)

	n, ok := p.Stock.Units()
	require.True(t, ok)
	assert.Equal(t, 7, n)
}

func TestSetStockLevel_Negative(t *testing.T) {
	svc := NewService(newRepo(trackedProduct("p1", 10, 3)))

	_, err := svc.SetStockLevel(context.Background(), "p1", -1)
	require.ErrorIs(t, err, ErrNegativeStock)
}

func TestSetStockLevel_NotFound(t *testing.T) {
	svc := NewService(newRepo())

	_, err := svc.SetStockLevel(context.Background(), "missing", 5)
	require.ErrorIs(t, err, product.ErrNotFound)
}

func TestSetReorderThreshold(t *testing.T) {
	repo := newRepo(trackedProduct("p1", 10, 3))
	svc := NewService(repo)

	p, err := svc.SetReorderThreshold(context.Background(), "p1", 8)
	require.NoError(t, err)
	require.NotNil(t, p.ReorderThreshold)
	assert.Equal(t, 8, *p.ReorderThreshold)
}

func TestSetReorderThreshold_Negative(t *testing.T) {
	svc := NewService(newRepo(trackedProduct("p1", 10, 3)))

	_, err := svc.SetReorderThreshold(context.Background(), "p1", -5)
	require.ErrorIs(t, err, ErrNegativeThreshold)
}

func TestSetInventory(t *testing.T) {
	repo := newRepo(trackedProduct("p1", 10, 3))
	svc := NewService(repo)

	p, err := svc.SetInventory(context.Background(), "p1", 2, 5)
	require.NoError(t, err)

	n, ok := p.Stock.Units()
	require.True(t, ok)
	assert.Equal(t, 2, n)
	require.NotNil(t, p.ReorderThreshold)
	assert.Equal(t, 5, *p.ReorderThreshold)
}

func TestLowStockCount(t *testing.T) {
	repo := newRepo(
		trackedProduct("low", 2, 5),
		trackedProduct("fine", 50, 5),
	)
	svc := NewService(repo)

	count, err := svc.LowStockCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Dropping stock below the threshold moves the badge on the next read.
	_, err = svc.SetStockLevel(context.Background(), "fine", 4)
	require.NoError(t, err)

	count, err = svc.LowStockCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestLowStockCount_RepoError(t *testing.T) {
	svc := NewService(&mockRepo{listErr: errors.New("db down")})

	_, err := svc.LowStockCount(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list products")
}
