package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/shopsphere/storefront/internal/domain/product"
)

// DefaultOptionGroups are injected into products whose catalog entry
// defines no customization, so every product renders a complete
// customizer with a deterministic starting price.
func DefaultOptionGroups() []product.OptionGroup {
	mod := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }
	return []product.OptionGroup{
		{
			Kind: product.GroupColour,
			Options: []product.Option{
				{Label: "Black", PriceModifier: mod("0.00")},
				{Label: "White", PriceModifier: mod("0.00")},
				{Label: "Red", PriceModifier: mod("2.50")},
				{Label: "Blue", PriceModifier: mod("2.50")},
			},
		},
		{
			Kind: product.GroupSize,
			Options: []product.Option{
				{Label: "S", PriceModifier: mod("0.00")},
				{Label: "M", PriceModifier: mod("0.00")},
				{Label: "L", PriceModifier: mod("1.00")},
				{Label: "XL", PriceModifier: mod("2.00")},
			},
		},
		{
			Kind: product.GroupMaterial,
			Options: []product.Option{
				{Label: "Cotton", PriceModifier: mod("0.00")},
				{Label: "Linen", PriceModifier: mod("3.00")},
				{Label: "Wool", PriceModifier: mod("5.00")},
			},
		},
	}
}
