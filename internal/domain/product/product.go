package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// GroupKind names an axis of product customization.
type GroupKind string

// Customization axes supported by the storefront.
const (
	GroupColour   GroupKind = "colour"
	GroupSize     GroupKind = "size"
	GroupMaterial GroupKind = "material"
)

// Option is a selectable value within an option group. Its modifier is
// added to the product base price when the option is selected.
type Option struct {
	Label         string
	PriceModifier decimal.Decimal
}

// OptionGroup is an ordered set of options along one customization axis.
type OptionGroup struct {
	Kind    GroupKind
	Options []Option
}

// Customization maps each group kind to the selected option label.
// Groups the product does not define are simply absent.
type Customization map[GroupKind]string

// Clone returns an independent copy of the selection.
func (c Customization) Clone() Customization {
	if c == nil {
		return nil
	}
	out := make(Customization, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// Stock is the inventory state of a product: either a tracked unit count
// or unbounded (inventory not tracked for this product). The zero value
// is unbounded.
type Stock struct {
	tracked bool
	units   int
}

// TrackedStock returns a Stock with a definite unit count.
func TrackedStock(units int) Stock {
	return Stock{tracked: true, units: units}
}

// UnboundedStock returns a Stock that is not inventory-tracked.
func UnboundedStock() Stock {
	return Stock{}
}

// Units returns the tracked unit count. ok is false for unbounded stock.
func (s Stock) Units() (n int, ok bool) {
	return s.units, s.tracked
}

// IsUnbounded reports whether inventory is not tracked.
func (s Stock) IsUnbounded() bool {
	return !s.tracked
}

// Product represents a catalog item available for purchase.
type Product struct {
	ID           string
	Name         string
	Description  string
	Category     string
	BasePrice    decimal.Decimal
	PreviewImage string
	Stock        Stock
	// ReorderThreshold is the level at or below which the product counts
	// as low-stock. Nil means no threshold is configured.
	ReorderThreshold *int
	OptionGroups     []OptionGroup
}

// Group returns the option group of the given kind, if the product defines one.
func (p Product) Group(kind GroupKind) (OptionGroup, bool) {
	for _, g := range p.OptionGroups {
		if g.Kind == kind {
			return g, true
		}
	}
	return OptionGroup{}, false
}

// Clone returns a deep copy of the product. Cart lines hold clones so a
// later catalog refresh cannot mutate a line through shared slices.
func (p Product) Clone() Product {
	c := p
	if p.ReorderThreshold != nil {
		t := *p.ReorderThreshold
		c.ReorderThreshold = &t
	}
	if len(p.OptionGroups) > 0 {
		c.OptionGroups = make([]OptionGroup, len(p.OptionGroups))
		for i, g := range p.OptionGroups {
			cg := OptionGroup{Kind: g.Kind, Options: make([]Option, len(g.Options))}
			copy(cg.Options, g.Options)
			c.OptionGroups[i] = cg
		}
	}
	return c
}

// Repository defines read operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
}
