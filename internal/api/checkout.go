package api

import (
	"net/http"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/shopsphere/storefront/internal/domain/cart"
	"github.com/shopsphere/storefront/internal/domain/checkout"
	"github.com/shopsphere/storefront/internal/domain/user"
)

// paymentPath is where control passes after a successful gate. The payment
// flow itself is external; the engine's job ends here.
const paymentPath = "/payment"

// requestSession adapts a request-resolved user to the user.Session the
// checkout gate consumes.
type requestSession struct {
	u *user.User
}

func (s requestSession) CurrentUser() *user.User { return s.u }

// Checkout runs the checkout gate: non-empty cart, logged-in customer with
// an ID. The catalog is refreshed first to bound stock staleness before the
// hand-off; a failed refresh is logged and the gate proceeds on cached data.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Refresh(r.Context()); err != nil {
		zctx.From(r.Context()).Warn("Catalog refresh failed before checkout", zap.Error(err))
	}

	gate := checkout.NewGate(requestSession{u: h.identity.CurrentUser(r)})

	var decision checkout.Decision
	h.carts.With(sessionID(w, r), func(s *cart.Store) {
		decision = gate.Authorize(s)
	})

	if !decision.Allowed {
		status := http.StatusConflict
		if decision.Reason == checkout.ReasonNotLoggedIn || decision.Reason == checkout.ReasonNotCustomer {
			status = http.StatusForbidden
		}
		writeJSON(w, status, func(e *jx.Encoder) {
			e.ObjStart()
			e.FieldStart("code")
			e.Str("checkout_denied")
			e.FieldStart("reason")
			e.Str(string(decision.Reason))
			e.ObjEnd()
		})
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("redirect")
		e.Str(paymentPath)
		e.ObjEnd()
	})
}
