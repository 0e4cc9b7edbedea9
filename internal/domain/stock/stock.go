// Package stock translates raw product stock data into availability
// decisions and a low-stock summary.
//
// Stock is three-valued at the system boundary: a definite count, unbounded
// (not inventory-tracked), or not yet loaded. The catalog cache owns the
// loaded/unloaded distinction; by the time a product reaches this package
// its stock is either tracked or unbounded, and unbounded is treated as
// always satisfiable. All functions here are pure and recompute from the
// supplied data on every call; nothing is cached.
package stock

import "github.com/shopsphere/storefront/internal/domain/product"

// Available returns the product's stock verbatim: a tracked count, or
// unbounded when inventory is not tracked.
func Available(p product.Product) product.Stock {
	return p.Stock
}

// IsInStock is false only when stock is a definite count of zero.
// Unbounded stock is considered in stock: the bias is toward allowing a
// purchase attempt, with the hard check deferred to CanReserve.
func IsInStock(p product.Product) bool {
	if n, ok := p.Stock.Units(); ok {
		return n > 0
	}
	return true
}

// CanReserve reports whether requested more units of the product fit within
// its available stock, given committed units already held in the cart for
// the same product. Equality is allowed: requesting exactly the remaining
// stock succeeds.
func CanReserve(p product.Product, requested, committed int) bool {
	n, ok := p.Stock.Units()
	if !ok {
		return true
	}
	return committed+requested <= n
}

// LowStockCount counts catalog products whose stock level and reorder
// threshold are both definite and stock level <= threshold. Products with
// unbounded stock or no threshold are untracked: neither low nor normal.
func LowStockCount(catalog []product.Product) int {
	count := 0
	for _, p := range catalog {
		n, ok := p.Stock.Units()
		if !ok || p.ReorderThreshold == nil {
			continue
		}
		if n <= *p.ReorderThreshold {
			count++
		}
	}
	return count
}
