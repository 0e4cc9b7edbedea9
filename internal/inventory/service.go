// Package inventory is the operator-facing surface over product stock:
// stock level and reorder threshold updates plus the catalog-wide
// low-stock signal.
package inventory

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/shopsphere/storefront/internal/domain/product"
	"github.com/shopsphere/storefront/internal/domain/stock"
)

// Precondition violations for inventory updates.
var (
	ErrNegativeStock     = errors.New("stock level must not be negative")
	ErrNegativeThreshold = errors.New("reorder threshold must not be negative")
)

// Repository extends catalog reads with the inventory write operations.
type Repository interface {
	product.Repository
	UpdateStock(ctx context.Context, id string, level int) error
	UpdateReorderThreshold(ctx context.Context, id string, threshold int) error
}

// Service applies inventory mutations through the repository.
type Service struct {
	repo Repository
}

// NewService returns a Service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// SetStockLevel replaces the product's tracked stock level and returns the
// updated product. product.ErrNotFound passes through for unknown IDs.
func (s *Service) SetStockLevel(ctx context.Context, id string, level int) (*product.Product, error) {
	if level < 0 {
		return nil, ErrNegativeStock
	}
	if err := s.repo.UpdateStock(ctx, id, level); err != nil {
		return nil, err
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "reload product")
	}
	return p, nil
}

// SetReorderThreshold replaces the product's reorder threshold and returns
// the updated product.
func (s *Service) SetReorderThreshold(ctx context.Context, id string, threshold int) (*product.Product, error) {
	if threshold < 0 {
		return nil, ErrNegativeThreshold
	}
	if err := s.repo.UpdateReorderThreshold(ctx, id, threshold); err != nil {
		return nil, err
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "reload product")
	}
	return p, nil
}

// SetInventory updates stock level and reorder threshold together.
func (s *Service) SetInventory(ctx context.Context, id string, level, threshold int) (*product.Product, error) {
	if _, err := s.SetStockLevel(ctx, id, level); err != nil {
		return nil, err
	}
	return s.SetReorderThreshold(ctx, id, threshold)
}

// LowStockCount recomputes the low-stock signal from the authoritative
// repository rather than the client cache, so operators see post-write
// state immediately.
func (s *Service) LowStockCount(ctx context.Context) (int, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "list products")
	}
	return stock.LowStockCount(products), nil
}
