// Package api exposes the storefront engine over a JSON HTTP surface:
// catalog browsing, per-session cart mutations, checkout hand-off, and the
// admin inventory endpoints.
package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-faster/jx"

	"github.com/shopsphere/storefront/internal/catalog"
	"github.com/shopsphere/storefront/internal/domain/user"
	"github.com/shopsphere/storefront/internal/inventory"
)

// Identity resolves the user behind a request. Implementations typically
// read gateway-authenticated headers or a session cookie; the handlers only
// ever inspect ID and Role.
type Identity interface {
	CurrentUser(r *http.Request) *user.User
}

// Handler serves the storefront API.
type Handler struct {
	catalog   *catalog.Cache
	carts     *CartHub
	inventory *inventory.Service
	identity  Identity
}

// NewHandler constructs a Handler with the required dependencies.
func NewHandler(cache *catalog.Cache, carts *CartHub, inv *inventory.Service, identity Identity) *Handler {
	return &Handler{
		catalog:   cache,
		carts:     carts,
		inventory: inv,
		identity:  identity,
	}
}

// Routes registers all API endpoints on a new mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/products", h.ListProducts)
	mux.HandleFunc("GET /api/products/{id}", h.GetProduct)
	mux.HandleFunc("GET /api/products/{id}/quote", h.QuotePrice)
	mux.HandleFunc("GET /api/categories", h.ListCategories)

	mux.HandleFunc("GET /api/cart", h.GetCart)
	mux.HandleFunc("POST /api/cart/items", h.AddCartItem)
	mux.HandleFunc("PUT /api/cart/items/{lineId}", h.UpdateCartItem)
	mux.HandleFunc("DELETE /api/cart/items/{lineId}", h.RemoveCartItem)
	mux.HandleFunc("DELETE /api/cart", h.ClearCart)

	mux.HandleFunc("POST /api/checkout", h.Checkout)

	mux.HandleFunc("GET /api/inventory/low-stock", h.LowStockCount)
	mux.HandleFunc("PUT /api/inventory/{id}/stock", h.UpdateStock)
	mux.HandleFunc("PUT /api/inventory/{id}/threshold", h.UpdateThreshold)
	mux.HandleFunc("PUT /api/inventory/{id}", h.UpdateInventory)

	return mux
}

// requireAdmin returns the admin user or writes 401/403 and returns nil.
func (h *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) *user.User {
	u := h.identity.CurrentUser(r)
	if u == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
		return nil
	}
	if u.Role != user.RoleAdmin {
		writeError(w, http.StatusForbidden, "forbidden", "admin role required")
		return nil
	}
	return u
}

// writeJSON encodes a response with the given encoder function.
func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	e := &jx.Encoder{}
	encode(e)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError writes a JSON error body in the shape {code, message}.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("code")
		e.Str(code)
		e.FieldStart("message")
		e.Str(message)
		e.ObjEnd()
	})
}

// decodeBody decodes a JSON request body into dst, rejecting unknown fields.
func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
