package api

import (
	"net/http"
	"sync"

	"github.com/google/uuid"

	"github.com/shopsphere/storefront/internal/domain/cart"
	"github.com/shopsphere/storefront/internal/domain/user"
)

// cartCookie carries the session key for the in-memory cart. Carts do not
// survive a server restart; stock-checked state is session-scoped only.
const cartCookie = "cart_session"

// CartHub keys cart stores by session ID. The Store itself is
// single-threaded; the hub serializes every cart operation under one mutex,
// which also guarantees operations from one session apply in issuance order.
type CartHub struct {
	mu    sync.Mutex
	carts map[string]*cart.Store
}

// NewCartHub returns an empty hub.
func NewCartHub() *CartHub {
	return &CartHub{carts: make(map[string]*cart.Store)}
}

// With runs fn with the session's cart store, creating the store on first
// use. fn must not retain the store beyond the call.
func (h *CartHub) With(sessionID string, fn func(s *cart.Store)) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.carts[sessionID]
	if !ok {
		s = cart.NewStore()
		h.carts[sessionID] = s
	}
	fn(s)
}

// Drop removes a session's cart entirely. Used on logout.
func (h *CartHub) Drop(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.carts, sessionID)
}

// sessionID returns the cart session ID for the request, setting a new
// cookie when the request carries none.
func sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(cartCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     cartCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// HeaderIdentity resolves users from gateway-authenticated request headers.
// The upstream gateway strips these headers from external traffic and sets
// them after validating the session token.
type HeaderIdentity struct{}

// CurrentUser reads X-User-Id and X-User-Role. A missing ID means nobody is
// logged in.
func (HeaderIdentity) CurrentUser(r *http.Request) *user.User {
	id := r.Header.Get("X-User-Id")
	if id == "" {
		return nil
	}
	return &user.User{
		ID:    id,
		Name:  r.Header.Get("X-User-Name"),
		Email: r.Header.Get("X-User-Email"),
		Role:  user.Role(r.Header.Get("X-User-Role")),
	}
}
