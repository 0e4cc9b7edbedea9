package api

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/shopsphere/storefront/internal/domain/product"
	"github.com/shopsphere/storefront/internal/inventory"
)

type stockUpdateRequest struct {
	StockLevel int `json:"stockLevel"`
}

type thresholdUpdateRequest struct {
	ReorderThreshold int `json:"reorderThreshold"`
}

type inventoryUpdateRequest struct {
	StockLevel       int `json:"stockLevel"`
	ReorderThreshold int `json:"reorderThreshold"`
}

// LowStockCount returns the operator low-stock badge, recomputed from the
// repository on every call.
func (h *Handler) LowStockCount(w http.ResponseWriter, r *http.Request) {
	if h.requireAdmin(w, r) == nil {
		return
	}

	count, err := h.inventory.LowStockCount(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", "failed to compute low stock count")
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("lowStockCount")
		e.Int(count)
		e.ObjEnd()
	})
}

// UpdateStock replaces a product's tracked stock level.
func (h *Handler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	if h.requireAdmin(w, r) == nil {
		return
	}

	var req stockUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	p, err := h.inventory.SetStockLevel(r.Context(), r.PathValue("id"), req.StockLevel)
	h.writeInventoryResult(w, p, err)
}

// UpdateThreshold replaces a product's reorder threshold.
func (h *Handler) UpdateThreshold(w http.ResponseWriter, r *http.Request) {
	if h.requireAdmin(w, r) == nil {
		return
	}

	var req thresholdUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	p, err := h.inventory.SetReorderThreshold(r.Context(), r.PathValue("id"), req.ReorderThreshold)
	h.writeInventoryResult(w, p, err)
}

// UpdateInventory replaces stock level and reorder threshold together.
func (h *Handler) UpdateInventory(w http.ResponseWriter, r *http.Request) {
	if h.requireAdmin(w, r) == nil {
		return
	}

	var req inventoryUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return
	}

	p, err := h.inventory.SetInventory(r.Context(), r.PathValue("id"), req.StockLevel, req.ReorderThreshold)
	h.writeInventoryResult(w, p, err)
}

func (h *Handler) writeInventoryResult(w http.ResponseWriter, p *product.Product, err error) {
	switch {
	case err == nil:
	case errors.Is(err, product.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "product not found")
		return
	case errors.Is(err, inventory.ErrNegativeStock), errors.Is(err, inventory.ErrNegativeThreshold):
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	default:
		writeError(w, http.StatusInternalServerError, "internal", "inventory update failed")
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeProduct(e, *p)
	})
}
