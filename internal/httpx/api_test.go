package httpx_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/ariefcatur/go-marketplace/internal/auth"
	"github.com/ariefcatur/go-marketplace/internal/httpx"
	"github.com/ariefcatur/go-marketplace/internal/orders"
	"github.com/ariefcatur/go-marketplace/internal/testkit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

type memIdem struct {
	mu   sync.Mutex
	keys map[string]int64
}

func (m *memIdem) Reserve(_ context.Context, scope, key string) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.keys[scope+"/"+key]; ok {
		return id, false, nil
	}
	m.keys[scope+"/"+key] = 0
	return 0, true, nil
}

func (m *memIdem) Complete(_ context.Context, scope, key string, orderID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[scope+"/"+key] = orderID
	return nil
}

func (m *memIdem) Release(_ context.Context, scope, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, scope+"/"+key)
	return nil
}

type reply struct {
	Data             json.RawMessage `json:"data"`
	Error            string          `json:"error"`
	ValidationErrors []string        `json:"validationErrors"`
	Meta             json.RawMessage `json:"meta"`
}

type client struct {
	t   *testing.T
	srv *httptest.Server
}

func (c client) do(method, path, token string, body any, headers ...string) (int, reply) {
	c.t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, c.srv.URL+path, rd)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var out reply
	if resp.StatusCode != http.StatusNoContent && resp.Header.Get("Content-Type") == "application/json" {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

func setup(t *testing.T) (*testkit.World, client) {
	t.Helper()
	w := testkit.New(t, orders.WithIdempotency(&memIdem{keys: map[string]int64{}}))
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	api := &httpx.API{
		Auth:     w.Auth,
		Catalog:  w.Catalog,
		Orders:   w.Orders,
		Cart:     w.Cart,
		Wishlist: w.Wishlist,
		Reviews:  w.Reviews,
		Reports:  w.Reports,
		Log:      quiet,
	}
	r := httpx.NewRouter(quiet)
	api.Register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return w, client{t: t, srv: srv}
}

// login works for testkit accounts, whose email is the user name at example.com.
func login(t *testing.T, w *testkit.World, p auth.Principal) string {
	t.Helper()
	token, _, err := w.Auth.Login(context.Background(), p.UserName+"@example.com", testkit.Password)
	require.NoError(t, err)
	return token
}

func TestHealthz(t *testing.T) {
	_, c := setup(t)
	resp, err := http.Get(c.srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegisterAndLogin(t *testing.T) {
	_, c := setup(t)

	code, body := c.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"userName": "budi", "email": "Budi@Example.com", "password": "Secret123",
	})
	require.Equal(t, http.StatusCreated, code, body.Error)

	code, body = c.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "budi@example.com", "password": "Secret123",
	})
	require.Equal(t, http.StatusOK, code, body.Error)
	var lr struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &lr))
	assert.NotEmpty(t, lr.Token)

	code, _ = c.do(http.MethodGet, "/api/cart", lr.Token, nil)
	assert.Equal(t, http.StatusOK, code)

	code, body = c.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "budi@example.com", "password": "wrong-one",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.NotEmpty(t, body.Error)
}

func TestValidationEnvelope(t *testing.T) {
	_, c := setup(t)
	code, body := c.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"userName": "ab", "email": "not-an-email", "password": "1",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.ElementsMatch(t, []string{
		"userName must be at least 3 characters",
		"email must be a valid email address",
		"password must be at least 6 characters",
	}, body.ValidationErrors)
}

func TestAuthRequired(t *testing.T) {
	w, c := setup(t)

	code, body := c.do(http.MethodGet, "/api/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.NotEmpty(t, body.Error)
	code, _ = c.do(http.MethodGet, "/api/cart", "not-a-session", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	buyer := w.Customer(t)
	token := login(t, w, buyer)
	code, body = c.do(http.MethodGet, "/api/admin/dashboard", token, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.NotEmpty(t, body.Error)

	code, _ = c.do(http.MethodGet, "/api/admin/dashboard", login(t, w, w.Admin), nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestPlaceOrderIdempotent(t *testing.T) {
	w, c := setup(t)
	seller, _ := w.Seller(t)
	p := w.Product(t, seller, "Lamp", "45", 3)
	buyer := w.Customer(t)
	token := login(t, w, buyer)

	in := testkit.PlaceInput()
	in.Items = []orders.LineInput{{ProductID: p.ID, Quantity: 2}}

	code, first := c.do(http.MethodPost, "/api/orders", token, in, httpx.HeaderIdempotencyKey, "k-1")
	require.Equal(t, http.StatusCreated, code, first.Error)
	code, again := c.do(http.MethodPost, "/api/orders", token, in, httpx.HeaderIdempotencyKey, "k-1")
	require.Equal(t, http.StatusOK, code, again.Error)
	assert.JSONEq(t, `{"replayed":true}`, string(again.Meta))

	var o1, o2 struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(first.Data, &o1))
	require.NoError(t, json.Unmarshal(again.Data, &o2))
	assert.Equal(t, o1.ID, o2.ID)
	assert.Equal(t, 1, w.Stock(t, p.ID))

	code, body := c.do(http.MethodPost, "/api/orders", token, in)
	assert.Equal(t, http.StatusUnprocessableEntity, code, "only one lamp left")
	assert.NotEmpty(t, body.Error)

	code, _ = c.do(http.MethodGet, fmt.Sprintf("/api/orders/%d", o1.ID), token, nil)
	assert.Equal(t, http.StatusOK, code)
	code, body = c.do(http.MethodGet, "/api/orders/999999", token, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.NotEmpty(t, body.Error)
	code, _ = c.do(http.MethodGet, "/api/orders/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestProductListMeta(t *testing.T) {
	w, c := setup(t)
	seller, _ := w.Seller(t)
	for i := range 3 {
		w.Product(t, seller, fmt.Sprintf("Item %d", i), "10", 1)
	}
	token := login(t, w, w.Customer(t))

	code, body := c.do(http.MethodGet, "/api/products?pageNumber=1&pageSize=2", token, nil)
	require.Equal(t, http.StatusOK, code, body.Error)
	assert.JSONEq(t, `{"totalItems":3,"totalPages":2,"currentPage":1,"pageSize":2}`, string(body.Meta))

	code, body = c.do(http.MethodGet, fmt.Sprintf("/api/products?pageNumber=%d&pageSize=100", math.MaxInt), token, nil)
	require.Equal(t, http.StatusOK, code, body.Error)
	assert.JSONEq(t, `[]`, string(body.Data))

	code, body = c.do(http.MethodGet, "/api/products/filter?minPrice=abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body.ValidationErrors, "minPrice must be a number")
}
