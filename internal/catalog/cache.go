// Package catalog maintains the client-side snapshot of the remote product
// catalog. It is the boundary where "not yet loaded" stock becomes the
// unbounded/tracked model the domain packages work with.
//
// The snapshot is refreshed on demand. A failed refresh leaves the previous
// snapshot in place: the engine degrades to last-known data rather than
// crashing or blocking.
package catalog

import (
	"context"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"

	"github.com/shopsphere/storefront/internal/domain/product"
	"github.com/shopsphere/storefront/internal/domain/stock"
)

// ErrUnavailable wraps transport failures from the catalog source. The
// cache keeps serving the prior snapshot when it is returned.
var ErrUnavailable = errors.New("catalog unavailable")

// bloomFPR keeps GetProduct miss lookups cheap without scanning the
// snapshot; false positives only cost the map lookup that follows.
const bloomFPR = 0.01

// Cache holds the last successfully fetched catalog snapshot.
type Cache struct {
	source   product.Repository
	defaults []product.OptionGroup

	mu       sync.RWMutex
	products []product.Product
	byID     map[string]product.Product
	known    *bloom.BloomFilter
	loaded   bool
}

// New returns an unloaded Cache reading from source. Products that define
// no option groups are normalized to the given defaults on refresh.
func New(source product.Repository, defaults []product.OptionGroup) *Cache {
	return &Cache{source: source, defaults: defaults}
}

// Refresh fetches a fresh snapshot from the source. On failure the previous
// snapshot (and loaded state) is kept and the error wraps ErrUnavailable.
func (c *Cache) Refresh(ctx context.Context) error {
	fetched, err := c.source.List(ctx)
	if err != nil {
		return errors.Wrapf(ErrUnavailable, "list products: %s", err)
	}

	products := make([]product.Product, len(fetched))
	byID := make(map[string]product.Product, len(fetched))
	known := bloom.NewWithEstimates(uint(max(len(fetched), 1)), bloomFPR)
	for i, p := range fetched {
		if len(p.OptionGroups) == 0 {
			p.OptionGroups = c.defaults
		}
		products[i] = p
		byID[p.ID] = p
		known.AddString(p.ID)
	}

	c.mu.Lock()
	c.products = products
	c.byID = byID
	c.known = known
	c.loaded = true
	c.mu.Unlock()
	return nil
}

// Loaded reports whether at least one refresh has succeeded.
func (c *Cache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Products returns the current snapshot in catalog order. The slice is
// shared; callers must not modify it. ok is false while no snapshot has
// been loaded yet.
func (c *Cache) Products() (products []product.Product, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.products, c.loaded
}

// Product returns the cached product with the given ID, or
// product.ErrNotFound. An unloaded cache reports every ID as not found.
func (c *Cache) Product(id string) (*product.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded || !c.known.TestString(id) {
		return nil, product.ErrNotFound
	}
	p, ok := c.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	cp := p.Clone()
	return &cp, nil
}

// LowStockCount recomputes the low-stock signal from the current snapshot.
// Derived on demand, never incrementally maintained, so it cannot drift
// from the underlying data. Zero while unloaded.
func (c *Cache) LowStockCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return stock.LowStockCount(c.products)
}
