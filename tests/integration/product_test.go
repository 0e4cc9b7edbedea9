//go:build integration

package integration

import (
	"net/http"
	"testing"
)

func TestListProducts(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != seededProducts {
		t.Fatalf("expected %d products, got %d", seededProducts, len(products))
	}
}

func TestListProducts_Fields(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	products := decodeJSON[[]productResponse](t, resp)

	var tee *productResponse
	for i := range products {
		if products[i].ProductID == "classic-tee" {
			tee = &products[i]
			break
		}
	}

	if tee == nil {
		t.Fatal("product 'classic-tee' not found")
	}
	if tee.Name != "Classic Crew Tee" {
		t.Errorf("name: got %q, want %q", tee.Name, "Classic Crew Tee")
	}
	if tee.BasePrice != "20.00" {
		t.Errorf("basePrice: got %q, want %q", tee.BasePrice, "20.00")
	}
	if tee.Category != "Shirts" {
		t.Errorf("category: got %q, want %q", tee.Category, "Shirts")
	}
	if tee.StockLevel == nil || *tee.StockLevel != 120 {
		t.Errorf("stockLevel: got %v, want 120", tee.StockLevel)
	}
	if !tee.InStock {
		t.Error("inStock: got false, want true")
	}
	if len(tee.CustomOptions) != 2 {
		t.Fatalf("customOptions: got %d groups, want 2", len(tee.CustomOptions))
	}
	if tee.CustomOptions[0].Type != "colour" {
		t.Errorf("first group type: got %q, want %q", tee.CustomOptions[0].Type, "colour")
	}
}

func TestListProducts_InStockFirst(t *testing.T) {
	resp := doGet(t, "/api/products")
	defer resp.Body.Close()

	products := decodeJSON[[]productResponse](t, resp)

	seenOutOfStock := false
	for _, p := range products {
		if !p.InStock {
			seenOutOfStock = true
			continue
		}
		if seenOutOfStock {
			t.Fatalf("in-stock product %q listed after an out-of-stock one", p.ProductID)
		}
	}
}

func TestListProducts_Search(t *testing.T) {
	resp := doGet(t, "/api/products?q=scarf")
	defer resp.Body.Close()

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) != 1 {
		t.Fatalf("expected 1 match, got %d", len(products))
	}
	if products[0].ProductID != "wool-scarf" {
		t.Errorf("got %q, want %q", products[0].ProductID, "wool-scarf")
	}
}

func TestListProducts_CategoryFilter(t *testing.T) {
	resp := doGet(t, "/api/products?category=Accessories")
	defer resp.Body.Close()

	products := decodeJSON[[]productResponse](t, resp)
	if len(products) == 0 {
		t.Fatal("expected accessories, got none")
	}
	for _, p := range products {
		if p.Category != "Accessories" {
			t.Errorf("product %q has category %q", p.ProductID, p.Category)
		}
	}
}

func TestGetProduct(t *testing.T) {
	resp := doGet(t, "/api/products/oxford-shirt")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	p := decodeJSON[productResponse](t, resp)
	if p.ProductID != "oxford-shirt" {
		t.Errorf("productId: got %q, want %q", p.ProductID, "oxford-shirt")
	}
	if p.Name != "Oxford Button-Down" {
		t.Errorf("name: got %q, want %q", p.Name, "Oxford Button-Down")
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	resp := doGet(t, "/api/products/no-such-product")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	errResp := decodeJSON[errorResponse](t, resp)
	if errResp.Code != "not_found" {
		t.Errorf("error code: got %q, want %q", errResp.Code, "not_found")
	}
}

func TestQuotePrice(t *testing.T) {
	resp := doGet(t, "/api/products/oxford-shirt/quote?material=Linen&size=L")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	quote := decodeJSON[quoteResponse](t, resp)
	// 45.00 base + 1.00 (L) + 5.00 (Linen); colour defaults to White at 0.00.
	if quote.Price != "51.00" {
		t.Errorf("price: got %q, want %q", quote.Price, "51.00")
	}
	if quote.Customization["colour"] != "White" {
		t.Errorf("default colour: got %q, want %q", quote.Customization["colour"], "White")
	}
}

func TestListCategories(t *testing.T) {
	resp := doGet(t, "/api/categories")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	categories := decodeJSON[[]string](t, resp)
	if len(categories) == 0 || categories[0] != "All" {
		t.Fatalf("expected categories starting with All, got %v", categories)
	}
}
