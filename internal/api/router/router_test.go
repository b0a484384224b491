package router_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storemanager/internal/api/product"
	"storemanager/internal/api/router"
	"storemanager/internal/api/sale"
	"storemanager/internal/domain"
	"storemanager/internal/events"
	"storemanager/internal/pkg/logger"
	"storemanager/internal/repository/memory"
	"storemanager/internal/service/productservice"
	"storemanager/internal/service/saleservice"
	"storemanager/internal/service/stockservice"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := logger.NewNop()
	store := memory.NewStore()
	products, sales := store.Products(), store.Sales()

	stock := stockservice.NewService(products, sales, log)
	h := router.NewRouter(
		product.NewHandler(productservice.NewService(products, log), log),
		sale.NewHandler(saleservice.NewService(sales, stock, events.NoopPublisher{}, log), log),
		log,
		router.RateLimit{},
	)
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func quantityOf(t *testing.T, srv *httptest.Server, id string) int {
	t.Helper()
	status, body := do(t, srv, http.MethodGet, "/products/"+id, "")
	require.Equal(t, http.StatusOK, status)
	var p domain.Product
	require.NoError(t, json.Unmarshal(body, &p))
	return p.Quantity
}

func TestSaleLifecycleReconcilesStock(t *testing.T) {
	srv := newServer(t)

	status, body := do(t, srv, http.MethodPost, "/products", `{"name":"Lemonade","quantity":10}`)
	require.Equal(t, http.StatusCreated, status)
	assert.JSONEq(t, `{"id":1,"name":"Lemonade","quantity":10}`, string(body))

	status, body = do(t, srv, http.MethodPost, "/sales", `[{"product_id":1,"quantity":3}]`)
	require.Equal(t, http.StatusCreated, status)
	assert.JSONEq(t, `{"id":1,"itemsSold":[{"product_id":1,"quantity":3}]}`, string(body))
	assert.Equal(t, 7, quantityOf(t, srv, "1"))

	status, body = do(t, srv, http.MethodPost, "/sales", `[{"product_id":1,"quantity":100}]`)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.JSONEq(t, `{"message":"Such amount is not permitted to sell"}`, string(body))
	assert.Equal(t, 7, quantityOf(t, srv, "1"))

	status, body = do(t, srv, http.MethodPut, "/sales/1", `[{"productId":1,"quantity":5}]`)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"saleId":1,"itemUpdated":[{"productId":1,"quantity":5}]}`, string(body))
	assert.Equal(t, 5, quantityOf(t, srv, "1"))

	status, body = do(t, srv, http.MethodGet, "/sales/1", "")
	require.Equal(t, http.StatusOK, status)
	var lines []domain.SaleLineRow
	require.NoError(t, json.Unmarshal(body, &lines))
	require.Len(t, lines, 1)
	assert.Equal(t, 5, lines[0].Quantity)

	status, _ = do(t, srv, http.MethodDelete, "/sales/1", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 10, quantityOf(t, srv, "1"))

	// Remoções repetidas não alteram o estoque.
	for i := 0; i < 2; i++ {
		status, body = do(t, srv, http.MethodDelete, "/sales/1", "")
		assert.Equal(t, http.StatusNotFound, status)
		assert.JSONEq(t, `{"message":"Sale not found"}`, string(body))
	}
	assert.Equal(t, 10, quantityOf(t, srv, "1"))
}

func TestSaleOfUnknownProductIsNotPermitted(t *testing.T) {
	srv := newServer(t)

	status, body := do(t, srv, http.MethodPost, "/sales", `[{"product_id":999,"quantity":1}]`)

	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.JSONEq(t, `{"message":"Such amount is not permitted to sell"}`, string(body))
}

func TestEmptySaleIsRejectedByTheStore(t *testing.T) {
	srv := newServer(t)

	status, _ := do(t, srv, http.MethodPost, "/products", `{"name":"Lemonade","quantity":10}`)
	require.Equal(t, http.StatusCreated, status)

	status, body := do(t, srv, http.MethodPost, "/sales", `[]`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.JSONEq(t, `{"message":"Dont find any product with this \"product_id\""}`, string(body))

	status, body = do(t, srv, http.MethodPut, "/sales/1", `[]`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.JSONEq(t, `{"message":"Sale not found"}`, string(body))

	status, _ = do(t, srv, http.MethodPost, "/sales", `[{"product_id":1,"quantity":3}]`)
	require.Equal(t, http.StatusCreated, status)

	status, body = do(t, srv, http.MethodPut, "/sales/1", `[]`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.JSONEq(t, `{"message":"Sale not found"}`, string(body))
	assert.Equal(t, 7, quantityOf(t, srv, "1"), "o estoque volta ao estado anterior à atualização")

	status, body = do(t, srv, http.MethodGet, "/sales/1", "")
	require.Equal(t, http.StatusOK, status)
	var lines []domain.SaleLineRow
	require.NoError(t, json.Unmarshal(body, &lines))
	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
}

func TestProductNameLengthCountsCharacters(t *testing.T) {
	srv := newServer(t)

	status, body := do(t, srv, http.MethodPost, "/products", `{"name":"Açaí","quantity":10}`)

	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.JSONEq(t, `{"message":"\"name\" length must be at least 5 characters long"}`, string(body))
}

func TestProductRoutes(t *testing.T) {
	srv := newServer(t)

	status, _ := do(t, srv, http.MethodPost, "/products", `{"name":"Lemonade","quantity":10}`)
	require.Equal(t, http.StatusCreated, status)

	status, body := do(t, srv, http.MethodPost, "/products", `{"name":"Lemonade","quantity":10}`)
	assert.Equal(t, http.StatusConflict, status)
	assert.JSONEq(t, `{"message":"Product already exists"}`, string(body))

	status, body = do(t, srv, http.MethodPost, "/products", `{"quantity":10}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.JSONEq(t, `{"message":"\"name\" is required"}`, string(body))

	status, _ = do(t, srv, http.MethodGet, "/products/abc", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, body = do(t, srv, http.MethodGet, "/products", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[{"id":1,"name":"Lemonade","quantity":10}]`, string(body))

	status, body = do(t, srv, http.MethodDelete, "/products/1", "")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"id":1,"name":"Lemonade","quantity":10}`, string(body))

	status, _ = do(t, srv, http.MethodGet, "/products/1", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestHealthRoutes(t *testing.T) {
	srv := newServer(t)

	status, body := do(t, srv, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, body)

	status, body = do(t, srv, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "pong", string(body))
}
