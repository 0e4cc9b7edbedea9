// Package checkout gates the hand-off from the cart to the external
// payment flow. The engine's responsibility ends at "cart is non-empty and
// the user is an authorized customer"; everything after the gate belongs
// to the payment service.
package checkout

import (
	"github.com/shopsphere/storefront/internal/domain/cart"
	"github.com/shopsphere/storefront/internal/domain/user"
)

// Reason explains why checkout was denied.
type Reason string

const (
	ReasonNone        Reason = ""
	ReasonEmptyCart   Reason = "empty_cart"
	ReasonNotLoggedIn Reason = "not_logged_in"
	ReasonNotCustomer Reason = "not_customer"
)

// Decision is the outcome of the checkout gate. Denials are expected
// outcomes carried as values, not errors.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Gate decides whether a session may proceed to payment.
type Gate struct {
	session user.Session
}

// NewGate returns a Gate reading identity from the given session.
func NewGate(session user.Session) *Gate {
	return &Gate{session: session}
}

// Authorize allows checkout iff the cart is non-empty and the current user
// is a customer with a present identifier. Checks run in that order and the
// first failure wins.
func (g *Gate) Authorize(store *cart.Store) Decision {
	if store.ItemCount() == 0 {
		return Decision{Reason: ReasonEmptyCart}
	}

	u := g.session.CurrentUser()
	if u == nil {
		return Decision{Reason: ReasonNotLoggedIn}
	}
	if u.Role != user.RoleCustomer || u.ID == "" {
		return Decision{Reason: ReasonNotCustomer}
	}

	return Decision{Allowed: true}
}
