package api

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/shopsphere/storefront/internal/catalog"
	"github.com/shopsphere/storefront/internal/domain/pricing"
	"github.com/shopsphere/storefront/internal/domain/product"
	"github.com/shopsphere/storefront/internal/domain/stock"
)

// ListProducts refreshes the catalog snapshot and returns the filtered shop
// view. When the refresh fails the last-known snapshot is served; only a
// never-loaded catalog yields 503.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.Refresh(r.Context()); err != nil {
		zctx.From(r.Context()).Warn("Catalog refresh failed, serving cached snapshot", zap.Error(err))
	}

	products, loaded := h.catalog.Products()
	if !loaded {
		writeError(w, http.StatusServiceUnavailable, "catalog_unavailable", "catalog has not been loaded yet")
		return
	}

	q := r.URL.Query()
	view := catalog.Filter(products, q.Get("q"), q.Get("category"))

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for _, p := range view {
			encodeProduct(e, p)
		}
		e.ArrEnd()
	})
}

// GetProduct returns a single cached product by ID.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Product(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "product not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", "failed to load product")
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeProduct(e, *p)
	})
}

// QuotePrice prices a customization of the product without touching the
// cart. Option labels come from query parameters named by group kind;
// absent parameters fall back to the group's default (first) option.
func (h *Handler) QuotePrice(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Product(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "product not found")
		return
	}

	sel := pricing.DefaultSelection(*p)
	q := r.URL.Query()
	for _, group := range p.OptionGroups {
		if label := q.Get(string(group.Kind)); label != "" {
			sel[group.Kind] = label
		}
	}

	price := pricing.ComputePrice(*p, sel)
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("productId")
		e.Str(p.ID)
		e.FieldStart("customization")
		encodeCustomization(e, sel)
		e.FieldStart("price")
		e.Str(price.StringFixed(2))
		e.ObjEnd()
	})
}

// ListCategories returns the distinct categories of the cached catalog.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	products, loaded := h.catalog.Products()
	if !loaded {
		writeError(w, http.StatusServiceUnavailable, "catalog_unavailable", "catalog has not been loaded yet")
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ArrStart()
		for _, c := range catalog.Categories(products) {
			e.Str(c)
		}
		e.ArrEnd()
	})
}

// encodeProduct writes the API shape of a product: stockLevel is null for
// unbounded stock, reorderThreshold null when unset.
func encodeProduct(e *jx.Encoder, p product.Product) {
	e.ObjStart()
	e.FieldStart("productId")
	e.Str(p.ID)
	e.FieldStart("name")
	e.Str(p.Name)
	e.FieldStart("description")
	e.Str(p.Description)
	e.FieldStart("category")
	e.Str(p.Category)
	e.FieldStart("basePrice")
	e.Str(p.BasePrice.StringFixed(2))
	e.FieldStart("previewImage")
	e.Str(p.PreviewImage)

	e.FieldStart("stockLevel")
	if n, ok := p.Stock.Units(); ok {
		e.Int(n)
	} else {
		e.Null()
	}

	e.FieldStart("reorderThreshold")
	if p.ReorderThreshold != nil {
		e.Int(*p.ReorderThreshold)
	} else {
		e.Null()
	}

	e.FieldStart("inStock")
	e.Bool(stock.IsInStock(p))

	e.FieldStart("customOptions")
	e.ArrStart()
	for _, g := range p.OptionGroups {
		e.ObjStart()
		e.FieldStart("type")
		e.Str(string(g.Kind))
		e.FieldStart("options")
		e.ArrStart()
		for _, o := range g.Options {
			e.ObjStart()
			e.FieldStart("label")
			e.Str(o.Label)
			e.FieldStart("priceModifier")
			e.Str(o.PriceModifier.StringFixed(2))
			e.ObjEnd()
		}
		e.ArrEnd()
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()
}

func encodeCustomization(e *jx.Encoder, sel product.Customization) {
	e.ObjStart()
	for _, kind := range []product.GroupKind{product.GroupColour, product.GroupSize, product.GroupMaterial} {
		if label, ok := sel[kind]; ok {
			e.FieldStart(string(kind))
			e.Str(label)
		}
	}
	e.ObjEnd()
}
