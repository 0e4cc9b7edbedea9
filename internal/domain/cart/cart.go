// Package cart holds the ordered collection of cart lines for one session
// and enforces the stock invariant on every mutation: for any product, the
// sum of line quantities never exceeds the product's known available stock.
//
// The check is advisory. The authoritative count lives in the external
// catalog service and can change between check and commit; the store only
// guarantees consistency against the snapshot it is handed.
package cart

import (
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shopsphere/storefront/internal/domain/pricing"
	"github.com/shopsphere/storefront/internal/domain/product"
	"github.com/shopsphere/storefront/internal/domain/stock"
)

// Precondition violations. These indicate caller bugs, not user-facing
// conditions, and are the only errors the store returns.
var (
	ErrNilProduct      = errors.New("product required")
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
)

// Line is one priced, quantified, customized entry in the cart. The product
// is a snapshot copied at add time, not a live catalog reference. ID and
// customization are immutable after creation; only the quantity changes.
type Line struct {
	ID            string
	Product       product.Product
	Quantity      int
	Customization product.Customization
	UnitPrice     decimal.Decimal
}

// StockConflict reports a rejected mutation together with the true
// availability so the caller can present it and retry with a smaller
// quantity. Conflicts are expected outcomes, not errors.
type StockConflict struct {
	ProductID string
	Available product.Stock
}

// Store is the session-scoped cart. It is the sole owner and mutator of its
// lines and is not safe for concurrent use; callers serialize access.
type Store struct {
	lines []Line
}

// NewStore returns an empty cart store.
func NewStore() *Store {
	return &Store{}
}

// Add prices the customization and appends a new line with quantity 1.
// The same product with a different customization occupies a separate line,
// so no merging happens here.
//
// A nil conflict means the line was created. A non-nil conflict means the
// product's remaining stock cannot cover one more unit on top of what the
// cart already holds; no state changes in that case.
func (s *Store) Add(p *product.Product, sel product.Customization) (Line, *StockConflict, error) {
	if p == nil {
		return Line{}, nil, ErrNilProduct
	}

	committed := s.committed(p.ID, "")
	if !stock.CanReserve(*p, 1, committed) {
		return Line{}, &StockConflict{ProductID: p.ID, Available: stock.Available(*p)}, nil
	}

	line := Line{
		ID:            uuid.New().String(),
		Product:       p.Clone(),
		Quantity:      1,
		Customization: sel.Clone(),
		UnitPrice:     pricing.ComputePrice(*p, sel),
	}
	s.lines = append(s.lines, line)
	return line, nil, nil
}

// UpdateQuantity replaces the quantity of an existing line. A missing line
// is a silent no-op: the UI may hold stale line IDs after a removal.
//
// The store does not clamp: it accepts or rejects exactly the quantity it
// is given. On rejection the caller is expected to clamp to
// max(1, available-committed) and retry. Committed counts only the other
// lines for the same product; the line being updated is replaced wholesale.
func (s *Store) UpdateQuantity(lineID string, quantity int) (*StockConflict, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	idx := s.find(lineID)
	if idx < 0 {
		return nil, nil
	}

	line := &s.lines[idx]
	committed := s.committed(line.Product.ID, lineID)
	if !stock.CanReserve(line.Product, quantity, committed) {
		return &StockConflict{
			ProductID: line.Product.ID,
			Available: stock.Available(line.Product),
		}, nil
	}

	line.Quantity = quantity
	return nil, nil
}

// Remove deletes the line if present. Removing an unknown ID is a no-op,
// so repeated removal is safe.
func (s *Store) Remove(lineID string) {
	idx := s.find(lineID)
	if idx < 0 {
		return
	}
	s.lines = append(s.lines[:idx], s.lines[idx+1:]...)
}

// Clear unconditionally empties the cart. Used on logout and session end.
func (s *Store) Clear() {
	s.lines = nil
}

// Items returns the lines in insertion order. The slice is a read-only
// view; callers must not modify it or the lines it holds.
func (s *Store) Items() []Line {
	return s.lines
}

// ItemCount is the sum of all line quantities, shown as the cart badge.
func (s *Store) ItemCount() int {
	total := 0
	for _, l := range s.lines {
		total += l.Quantity
	}
	return total
}

// find returns the index of the line with the given ID, or -1.
func (s *Store) find(lineID string) int {
	for i := range s.lines {
		if s.lines[i].ID == lineID {
			return i
		}
	}
	return -1
}

// committed sums quantities of lines for the product, excluding excludeLine.
func (s *Store) committed(productID, excludeLine string) int {
	total := 0
	for _, l := range s.lines {
		if l.Product.ID == productID && l.ID != excludeLine {
			total += l.Quantity
		}
	}
	return total
}
