package catalog

import (
	"sort"
	"strings"

	"github.com/shopsphere/storefront/internal/domain/product"
	"github.com/shopsphere/storefront/internal/domain/stock"
)

// CategoryAll disables category filtering.
const CategoryAll = "All"

// Filter returns the catalog view for the shop page: products matching the
// search term (name or description, case-insensitive) and category, with
// in-stock products ordered before out-of-stock ones. The sort is stable so
// products with the same stock status keep catalog order.
func Filter(products []product.Product, term, category string) []product.Product {
	term = strings.ToLower(strings.TrimSpace(term))

	filtered := make([]product.Product, 0, len(products))
	for _, p := range products {
		if category != "" && category != CategoryAll && p.Category != category {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(p.Name), term) &&
			!strings.Contains(strings.ToLower(p.Description), term) {
			continue
		}
		filtered = append(filtered, p)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return stock.IsInStock(filtered[i]) && !stock.IsInStock(filtered[j])
	})
	return filtered
}

// Categories returns the distinct product categories in first-seen order,
// prefixed with CategoryAll. Empty categories are skipped.
func Categories(products []product.Product) []string {
	seen := make(map[string]struct{}, len(products))
	out := []string{CategoryAll}
	for _, p := range products {
		if p.Category == "" {
			continue
		}
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}
