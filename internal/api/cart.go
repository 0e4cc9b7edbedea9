package api

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/shopsphere/storefront/internal/domain/cart"
	"github.com/shopsphere/storefront/internal/domain/product"
)

type addItemRequest struct {
	ProductID     string            `json:"productId"`
	Customization map[string]string `json:"customization"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

// AddCartItem adds one unit of a customized product to the session cart.
// Unselected groups default to the first listed option. A stock conflict
// yields 409 with the product's true availability.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", "productId is required")
		return
	}

	p, err := h.catalog.Product(req.ProductID)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "product not found")
		return
	}

	sel := make(product.Customization, len(req.Customization))
	for kind, label := range req.Customization {
		sel[product.GroupKind(kind)] = label
	}

	var (
		line      cart.Line
		conflict  *cart.StockConflict
		itemCount int
		addErr    error
	)
	h.carts.With(sessionID(w, r), func(s *cart.Store) {
		line, conflict, addErr = s.Add(p, sel)
		itemCount = s.ItemCount()
	})
	if addErr != nil {
		// Only precondition violations reach here; the product was already
		// resolved, so this indicates a handler bug.
		writeError(w, http.StatusInternalServerError, "internal", addErr.Error())
		return
	}
	if conflict != nil {
		writeStockConflict(w, conflict)
		return
	}

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("line")
		encodeLine(e, line)
		e.FieldStart("itemCount")
		e.Int(itemCount)
		e.ObjEnd()
	})
}

// UpdateCartItem replaces a line's quantity. The store only accepts or
// rejects; on rejection this handler clamps to the maximum allowed
// quantity (at least 1) and retries, reporting the clamp to the caller.
// Updating an unknown line is a no-op.
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}
	if req.Quantity <= 0 {
		writeError(w, http.StatusBadRequest, "bad_request", "quantity must be greater than 0")
		return
	}

	lineID := r.PathValue("lineId")
	var (
		applied   int
		clamped   bool
		available *product.Stock
		itemCount int
		updateErr error
	)
	h.carts.With(sessionID(w, r), func(s *cart.Store) {
		applied = req.Quantity
		conflict, err := s.UpdateQuantity(lineID, req.Quantity)
		if err != nil {
			updateErr = err
			return
		}
		if conflict != nil {
			applied = clampQuantity(s, lineID, conflict)
			clamped = true
			available = &conflict.Available
			retry, err := s.UpdateQuantity(lineID, applied)
			if err != nil {
				updateErr = err
				return
			}
			if retry != nil {
				// Other lines already hold everything; the line keeps its
				// previous quantity.
				for _, l := range s.Items() {
					if l.ID == lineID {
						applied = l.Quantity
					}
				}
			}
		}
		itemCount = s.ItemCount()
	})
	if updateErr != nil {
		if errors.Is(updateErr, cart.ErrInvalidQuantity) {
			writeError(w, http.StatusBadRequest, "bad_request", updateErr.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", updateErr.Error())
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("lineId")
		e.Str(lineID)
		e.FieldStart("quantity")
		e.Int(applied)
		e.FieldStart("clamped")
		e.Bool(clamped)
		if available != nil {
			e.FieldStart("availableStock")
			encodeStock(e, *available)
		}
		e.FieldStart("itemCount")
		e.Int(itemCount)
		e.ObjEnd()
	})
}

// RemoveCartItem deletes a line. Removing an unknown line is a no-op, so
// the endpoint is idempotent.
func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	lineID := r.PathValue("lineId")
	var itemCount int
	h.carts.With(sessionID(w, r), func(s *cart.Store) {
		s.Remove(lineID)
		itemCount = s.ItemCount()
	})

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("itemCount")
		e.Int(itemCount)
		e.ObjEnd()
	})
}

// ClearCart empties the session cart and releases its store; the next cart
// request starts fresh.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	id := sessionID(w, r)
	h.carts.With(id, func(s *cart.Store) {
		s.Clear()
	})
	h.carts.Drop(id)
	w.WriteHeader(http.StatusNoContent)
}

// GetCart returns the session cart lines in insertion order.
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	var (
		lines     []cart.Line
		itemCount int
	)
	h.carts.With(sessionID(w, r), func(s *cart.Store) {
		lines = s.Items()
		itemCount = s.ItemCount()
	})

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("items")
		e.ArrStart()
		for _, l := range lines {
			encodeLine(e, l)
		}
		e.ArrEnd()
		e.FieldStart("itemCount")
		e.Int(itemCount)
		e.ObjEnd()
	})
}

// clampQuantity computes max(1, available - committedOthers) for the
// conflicted line, mirroring the retry quantity the store expects callers
// to use.
func clampQuantity(s *cart.Store, lineID string, conflict *cart.StockConflict) int {
	available, ok := conflict.Available.Units()
	if !ok {
		// Unbounded stock never conflicts.
		return 1
	}

	committed := 0
	for _, l := range s.Items() {
		if l.Product.ID == conflict.ProductID && l.ID != lineID {
			committed += l.Quantity
		}
	}

	allowed := available - committed
	if allowed < 1 {
		return 1
	}
	return allowed
}

func writeStockConflict(w http.ResponseWriter, conflict *cart.StockConflict) {
	writeJSON(w, http.StatusConflict, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("code")
		e.Str("stock_conflict")
		e.FieldStart("message")
		e.Str("requested quantity exceeds available stock")
		e.FieldStart("productId")
		e.Str(conflict.ProductID)
		e.FieldStart("availableStock")
		encodeStock(e, conflict.Available)
		e.ObjEnd()
	})
}

func encodeStock(e *jx.Encoder, s product.Stock) {
	if n, ok := s.Units(); ok {
		e.Int(n)
		return
	}
	e.Null()
}

func encodeLine(e *jx.Encoder, l cart.Line) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(l.ID)
	e.FieldStart("product")
	encodeProduct(e, l.Product)
	e.FieldStart("quantity")
	e.Int(l.Quantity)
	e.FieldStart("customization")
	encodeCustomization(e, l.Customization)
	e.FieldStart("price")
	e.Str(l.UnitPrice.StringFixed(2))
	e.ObjEnd()
}
