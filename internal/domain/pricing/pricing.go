// Package pricing computes the unit price of a customized product.
//
// Prices are rounded to 2 fraction digits using banker's rounding
// (round half to even) so repeated recomputation of the same selection
// is reproducible across platforms.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/shopsphere/storefront/internal/domain/product"
)

// ComputePrice returns the base price plus the modifier of every selected
// option, rounded to 2 fraction digits.
//
// For each option group the product defines: if the selection names an
// option that exists in that group, its modifier is added; a missing or
// unknown selection contributes zero. Group kinds present in the selection
// but absent from the product are ignored. The function is pure and never
// fails; a product with no option groups prices at its base price.
func ComputePrice(p product.Product, sel product.Customization) decimal.Decimal {
	total := p.BasePrice
	for _, group := range p.OptionGroups {
		label, ok := sel[group.Kind]
		if !ok {
			continue
		}
		for _, opt := range group.Options {
			if opt.Label == label {
				total = total.Add(opt.PriceModifier)
				break
			}
		}
	}
	return total.RoundBank(2)
}

// DefaultSelection returns the deterministic starting selection used when a
// customizer is first rendered: the first listed option of each defined
// group. Groups with no options are left unselected.
func DefaultSelection(p product.Product) product.Customization {
	sel := make(product.Customization, len(p.OptionGroups))
	for _, group := range p.OptionGroups {
		if len(group.Options) > 0 {
			sel[group.Kind] = group.Options[0].Label
		}
	}
	return sel
}
