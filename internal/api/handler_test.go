package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopsphere/storefront/internal/catalog"
	"github.com/shopsphere/storefront/internal/domain/product"
	"github.com/shopsphere/storefront/internal/inventory"
)

// --- Mock implementations ---

type mockRepo struct {
	byID    map[string]*product.Product
	listErr error
}

func (m *mockRepo) List(_ context.Context) ([]product.Product, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]product.Product, 0, len(m.byID))
	for _, id := range sortedIDs(m.byID) {
		out = append(out, *m.byID[id])
	}
	return out, nil
}

func (m *mockRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) UpdateStock(_ context.Context, id string, level int) error {
	p, ok := m.byID[id]
	if !ok {
		return product.ErrNotFound
	}
	p.Stock = product.TrackedStock(level)
	return nil
}

func (m *mockRepo) UpdateReorderThreshold(_ context.Context, id string, threshold int) error {
	p, ok := m.byID[id]
	if !ok {
		return product.ErrNotFound
	}
	p.ReorderThreshold = &threshold
	return nil
}

func sortedIDs(byID map[string]*product.Product) []string {
	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// --- Helpers ---

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestProduct(id string, stock product.Stock) product.Product {
	return product.Product{
		ID:        id,
		Name:      "Widget " + id,
		Category:  "test",
		BasePrice: dec("20.00"),
		Stock:     stock,
		OptionGroups: []product.OptionGroup{
			{
				Kind: product.GroupColour,
				Options: []product.Option{
					{Label: "Black", PriceModifier: dec("0.00")},
					{Label: "Red", PriceModifier: dec("2.50")},
				},
			},
			{
				Kind: product.GroupSize,
				Options: []product.Option{
					{Label: "M", PriceModifier: dec("0.00")},
				},
			},
		},
	}
}

type testEnv struct {
	handler http.Handler
	repo    *mockRepo
}

func newTestEnv(t *testing.T, products ...product.Product) *testEnv {
	t.Helper()

	byID := make(map[string]*product.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	repo := &mockRepo{byID: byID}

	cache := catalog.New(repo, catalog.DefaultOptionGroups())
	require.NoError(t, cache.Refresh(context.Background()))

	h := NewHandler(cache, NewCartHub(), inventory.NewService(repo), HeaderIdentity{})
	return &testEnv{handler: h.Routes(), repo: repo}
}

// do issues a request with a fixed cart session cookie and optional
// identity headers, decoding the JSON response into out when non-nil.
func (env *testEnv) do(t *testing.T, method, path string, body any, out any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.AddCookie(&http.Cookie{Name: cartCookie, Value: "test-session"})
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	if out != nil && rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

var adminHeaders = map[string]string{
	"X-User-Id":   "admin-1",
	"X-User-Role": "ADMIN",
}

var customerHeaders = map[string]string{
	"X-User-Id":   "cust-1",
	"X-User-Role": "CUSTOMER",
}

type lineJSON struct {
	ID            string            `json:"id"`
	Quantity      int               `json:"quantity"`
	Price         string            `json:"price"`
	Customization map[string]string `json:"customization"`
	Product       struct {
		ProductID  string `json:"productId"`
		StockLevel *int   `json:"stockLevel"`
	} `json:"product"`
}

type cartJSON struct {
	Items     []lineJSON `json:"items"`
	ItemCount int        `json:"itemCount"`
}

type addRespJSON struct {
	Line      lineJSON `json:"line"`
	ItemCount int      `json:"itemCount"`
}

type conflictJSON struct {
	Code           string `json:"code"`
	ProductID      string `json:"productId"`
	AvailableStock *int   `json:"availableStock"`
}

type updateRespJSON struct {
	LineID         string `json:"lineId"`
	Quantity       int    `json:"quantity"`
	Clamped        bool   `json:"clamped"`
	AvailableStock *int   `json:"availableStock"`
	ItemCount      int    `json:"itemCount"`
}

// --- Tests ---

func TestListProducts(t *testing.T) {
	env := newTestEnv(t,
		newTestProduct("p1", product.TrackedStock(3)),
		newTestProduct("p2", product.UnboundedStock()),
	)

	var products []map[string]any
	rec := env.do(t, http.MethodGet, "/api/products", nil, &products, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, products, 2)
	assert.Equal(t, "p1", products[0]["productId"])
	assert.Equal(t, "20.00", products[0]["basePrice"])
	assert.Equal(t, float64(3), products[0]["stockLevel"])
	assert.Nil(t, products[1]["stockLevel"])
}

func TestListProducts_SearchFilter(t *testing.T) {
	a := newTestProduct("a", product.UnboundedStock())
	a.Name = "Wool Scarf"
	b := newTestProduct("b", product.UnboundedStock())
	b.Name = "Linen Shirt"
	env := newTestEnv(t, a, b)

	var products []map[string]any
	rec := env.do(t, http.MethodGet, "/api/products?q=scarf", nil, &products, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, products, 1)
	assert.Equal(t, "a", products[0]["productId"])
}

func TestGetProduct(t *testing.T) {
	env := newTestEnv(t, newTestProduct("p1", product.TrackedStock(3)))

	var p map[string]any
	rec := env.do(t, http.MethodGet, "/api/products/p1", nil, &p, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Widget p1", p["name"])

	rec = env.do(t, http.MethodGet, "/api/products/missing", nil, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQuotePrice(t *testing.T) {
	env := newTestEnv(t, newTestProduct("p1", product.TrackedStock(3)))

	var quote struct {
		Price         string            `json:"price"`
		Customization map[string]string `json:"customization"`
	}

	// Defaults: first option of every group.
	rec := env.do(t, http.MethodGet, "/api/products/p1/quote", nil, &quote, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "20.00", quote.Price)
	assert.Equal(t, "Black", quote.Customization["colour"])

	rec = env.do(t, http.MethodGet, "/api/products/p1/quote?colour=Red&size=M", nil, &quote, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "22.50", quote.Price)
}

func TestAddCartItem(t *testing.T) {
	env := newTestEnv(t, newTestProduct("p1", product.TrackedStock(3)))

	var resp addRespJSON
	rec := env.do(t, http.MethodPost, "/api/cart/items", map[string]any{
		"productId":     "p1",
		"customization": map[string]string{"colour": "Red", "size": "M"},
	}, &resp, nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotEmpty(t, resp.Line.ID)
	assert.Equal(t, 1, resp.Line.Quantity)
	assert.Equal(t, "22.50", resp.Line.Price)
	assert.Equal(t, 1, resp.ItemCount)
}

func TestAddCartItem_UnknownProduct(t *testing.T) {
	env := newTestEnv(t, newTestProduct("p1", product.TrackedStock(3)))

	rec := env.do(t, http.MethodPost, "/api/cart/items", map[string]any{
		"productId": "nope",
	}, nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddCartItem_StockConflict(t *testing.T) {
	env := newTestEnv(t, newTestProduct("p1", product.TrackedStock(3)))

	var add addRespJSON
	rec := env.do(t, http.MethodPost, "/api/cart/items", map[string]any{"productId": "p1"}, &add, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	var upd updateRespJSON
	rec = env.do(t, http.MethodPut, "/api/cart/items/"+add.Line.ID, map[string]any{"quantity": 3}, &upd, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 3, upd.Quantity)

	// Cart holds all 3 units; the next add is rejected with availability 3.
	var conflict conflictJSON
	rec = env.do(t, http.MethodPost, "/api/cart/items", map[string]any{"productId": "p1"}, &conflict, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "stock_conflict", conflict.Code)
	assert.Equal(t, "p1", conflict.ProductID)
	require.NotNil(t, conflict.AvailableStock)
	assert.Equal(t, 3, *conflict.AvailableStock)
}

func TestUpdateCartItem_ClampsOnConflict(t *testing.T) {
	env := newTestEnv(t, newTestProduct("p2", product.TrackedStock(5)))

	var add addRespJSON
	rec := env.do(t, http.MethodPost, "/api/cart/items", map[string]any{"productId": "p2"}, &add, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Requesting 6 against stock 5 clamps to 5 and reports it.
	var upd updateRespJSON
	rec = env.do(t, http.MethodPut, "/api/cart/items/"+add.Line.ID, map[string]any{"quantity": 6}, &upd, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, upd.Clamped)
	assert.Equal(t, 5, upd.Quantity)
	require.NotNil(t, upd.AvailableStock)
	assert.Equal(t, 5, *upd.AvailableStock)
	assert.Equal(t, 5, upd.ItemCount)
}

func TestUpdateCartItem_InvalidQuantity(t *testing.T) {
	env := newTestEnv(t, newTestProduct("p1", product.TrackedStock(3)))

	rec := env.do(t, http.MethodPut, "/api/cart/items/some-line", map[string]any{"quantity": 0}, nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRemoveCartItem_Idempotent(t *testing.T) {
	env := newTestEnv(t, newTestProduct("p1", product.TrackedStock(3)))

	var add addRespJSON
	env.do(t, http.MethodPost, "/api/cart/items", map[string]any{"productId": "p1"}, &add, nil)

	var resp map[string]int
	rec := env.do(t, http.MethodDelete, "/api/cart/items/"+add.Line.ID, nil, &resp, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, resp["itemCount"])

	rec = env.do(t, http.MethodDelete, "/api/cart/items/"+add.Line.ID, nil, &resp, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, resp["itemCount"])
}

func TestGetCart_InsertionOrder(t *testing.T) {
	env := newTestEnv(t,
		newTestProduct("a", product.UnboundedStock()),
		newTestProduct("b", product.UnboundedStock()),
	)

	env.do(t, http.MethodPost, "/api/cart/items", map[string]any{"productId": "b"}, nil, nil)
	env.do(t, http.MethodPost, "/api/cart/items", map[string]any{"productId": "a"}, nil, nil)

	var c cartJSON
	rec := env.do(t, http.MethodGet, "/api/cart", nil, &c, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, c.Items, 2)
	assert.Equal(t, "b", c.Items[0].Product.ProductID)
	assert.Equal(t, "a", c.Items[1].Product.ProductID)
	assert.Equal(t, 2, c.ItemCount)
}

func TestClearCart(t *testing.T) {
	env := newTestEnv(t, newTestProduct("p1", product.UnboundedStock()))

	env.do(t, http.MethodPost, "/api/cart/items", map[string]any{"productId": "p1"}, nil, nil)
	rec := env.do(t, http.MethodDelete, "/api/cart", nil, nil, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	var c cartJSON
	env.do(t, http.MethodGet, "/api/cart", nil, &c, nil)
	assert.Equal(t, 0, c.ItemCount)
	assert.Empty(t, c.Items)
}

func TestCheckout(t *testing.T) {
	env := newTestEnv(t, newTestProduct("p1", product.UnboundedStock()))

	// Empty cart is denied regardless of identity.
	var denied struct {
		Reason string `json:"reason"`
	}
	rec := env.do(t, http.MethodPost, "/api/checkout", nil, &denied, customerHeaders)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "empty_cart", denied.Reason)

	env.do(t, http.MethodPost, "/api/cart/items", map[string]any{"productId": "p1"}, nil, nil)

	// Anonymous user is denied.
	rec = env.do(t, http.MethodPost, "/api/checkout", nil, &denied, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "not_logged_in", denied.Reason)

	// Admins cannot check out.
	rec = env.do(t, http.MethodPost, "/api/checkout", nil, &denied, adminHeaders)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "not_customer", denied.Reason)

	// Customer with items proceeds to payment.
	var ok struct {
		Redirect string `json:"redirect"`
	}
	rec = env.do(t, http.MethodPost, "/api/checkout", nil, &ok, customerHeaders)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/payment", ok.Redirect)
}

func TestInventoryEndpoints_RequireAdmin(t *testing.T) {
	env := newTestEnv(t, newTestProduct("p1", product.TrackedStock(3)))

	rec := env.do(t, http.MethodGet, "/api/inventory/low-stock", nil, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/inventory/low-stock", nil, nil, customerHeaders)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdateStock(t *testing.T) {
	env := newTestEnv(t, newTestProduct("p1", product.TrackedStock(3)))

	var p map[string]any
	rec := env.do(t, http.MethodPut, "/api/inventory/p1/stock", map[string]any{"stockLevel": 9}, &p, adminHeaders)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(9), p["stockLevel"])

	rec = env.do(t, http.MethodPut, "/api/inventory/p1/stock", map[string]any{"stockLevel": -1}, nil, adminHeaders)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPut, "/api/inventory/missing/stock", map[string]any{"stockLevel": 1}, nil, adminHeaders)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLowStockEndpoint(t *testing.T) {
	low := newTestProduct("low", product.TrackedStock(1))
	threshold := 5
	low.ReorderThreshold = &threshold
	fine := newTestProduct("fine", product.TrackedStock(50))
	fine.ReorderThreshold = &threshold
	env := newTestEnv(t, low, fine)

	var resp map[string]int
	rec := env.do(t, http.MethodGet, "/api/inventory/low-stock", nil, &resp, adminHeaders)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, resp["lowStockCount"])
}
