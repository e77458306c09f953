package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartinventory/pos/internal/domain/analytics"
	"github.com/smartinventory/pos/internal/domain/billing"
	"github.com/smartinventory/pos/internal/domain/catalog"
	"github.com/smartinventory/pos/internal/domain/customer"
	"github.com/smartinventory/pos/internal/domain/identity"
	"github.com/smartinventory/pos/internal/domain/settings"
	"github.com/smartinventory/pos/internal/storage/postgres"
)

type mockProductRepo struct {
	products []catalog.Product
}

func (m *mockProductRepo) List(context.Context) ([]catalog.Product, error) {
	return m.products, nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id int64) (*catalog.Product, error) {
	for i := range m.products {
		if m.products[i].ID == id {
			return &m.products[i], nil
		}
	}
	return nil, catalog.ErrProductNotFound
}

func (m *mockProductRepo) GetByIDs(_ context.Context, ids []int64) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, id := range ids {
		for _, p := range m.products {
			if p.ID == id {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (m *mockProductRepo) SearchByPrefix(_ context.Context, prefix string) ([]catalog.Product, error) {
	var out []catalog.Product
	for _, p := range m.products {
		if strings.HasPrefix(strings.ToLower(p.Name), strings.ToLower(prefix)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProductRepo) Create(_ context.Context, p catalog.NewProduct) (*catalog.Product, error) {
	created := catalog.Product{
		ID:           int64(len(m.products) + 1),
		Name:         p.Name,
		CategoryID:   p.CategoryID,
		SellingPrice: p.SellingPrice,
		CostPrice:    p.CostPrice,
		TaxRate:      p.TaxRate,
		Stock:        p.Stock,
	}
	m.products = append(m.products, created)
	return &created, nil
}

func (m *mockProductRepo) Restock(_ context.Context, id int64, qty int) error {
	for i := range m.products {
		if m.products[i].ID == id {
			m.products[i].Stock += qty
			return nil
		}
	}
	return catalog.ErrProductNotFound
}

type mockCustomerRepo struct {
	customers map[string]customer.Customer
}

func (m *mockCustomerRepo) GetByMobile(_ context.Context, mobile string) (*customer.Customer, error) {
	if c, ok := m.customers[mobile]; ok {
		return &c, nil
	}
	return nil, customer.ErrNotFound
}

func (m *mockCustomerRepo) List(context.Context) ([]customer.Customer, error) {
	out := make([]customer.Customer, 0, len(m.customers))
	for _, c := range m.customers {
		out = append(out, c)
	}
	return out, nil
}

type mockInvoiceRepo struct {
	created *billing.Invoice
}

func (m *mockInvoiceRepo) Create(_ context.Context, inv *billing.Invoice) error {
	m.created = inv
	return nil
}

func (m *mockInvoiceRepo) GetByID(_ context.Context, id string) (*billing.Invoice, error) {
	if m.created != nil && m.created.ID == id {
		return m.created, nil
	}
	return nil, postgres.ErrInvoiceNotFound
}

func (m *mockInvoiceRepo) List(context.Context, int) ([]billing.Invoice, error) {
	if m.created == nil {
		return nil, nil
	}
	return []billing.Invoice{*m.created}, nil
}

type mockSettingsRepo struct {
	values map[string]string
}

func (m *mockSettingsRepo) All(context.Context) (map[string]string, error) {
	return m.values, nil
}

func (m *mockSettingsRepo) Set(_ context.Context, key, value string) error {
	if !settings.KnownKey(key) {
		return settings.ErrUnknownKey
	}
	m.values[key] = value
	return nil
}

type mockUserRepo struct {
	users map[string]identity.User
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*identity.User, error) {
	if u, ok := m.users[username]; ok {
		return &u, nil
	}
	return nil, identity.ErrNotFound
}

func (m *mockUserRepo) Create(_ context.Context, u *identity.User) error {
	if _, ok := m.users[u.Username]; ok {
		return identity.ErrUsernameTaken
	}
	u.ID = int64(len(m.users) + 1)
	m.users[u.Username] = *u
	return nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	for name, u := range m.users {
		if u.ID == id {
			u.PasswordHash = hash
			m.users[name] = u
			return nil
		}
	}
	return identity.ErrNotFound
}

type mockAnalyticsRepo struct{}

func (mockAnalyticsRepo) Summary(context.Context, time.Time, time.Time) (*analytics.Summary, error) {
	return &analytics.Summary{Orders: 2, Revenue: decimal.NewFromInt(354)}, nil
}

func (mockAnalyticsRepo) RevenueByCategory(context.Context) ([]analytics.CategoryRevenue, error) {
	return nil, nil
}

func (mockAnalyticsRepo) CountByPaymentMode(context.Context) ([]analytics.PaymentPattern, error) {
	return nil, nil
}

func (mockAnalyticsRepo) CountByHour(context.Context) ([]analytics.HourCount, error) {
	return nil, nil
}

func (mockAnalyticsRepo) CountByWeekday(context.Context) ([]analytics.WeekdayCount, error) {
	return nil, nil
}

func (mockAnalyticsRepo) TopProducts(context.Context, int) ([]analytics.TopProduct, error) {
	return nil, nil
}

func (mockAnalyticsRepo) DailySeries(context.Context, time.Time, time.Time) ([]analytics.DailyPoint, error) {
	return []analytics.DailyPoint{
		{Revenue: decimal.NewFromInt(100)},
		{Revenue: decimal.NewFromInt(200)},
		{Revenue: decimal.NewFromInt(300)},
	}, nil
}

func testServer(t *testing.T) (*http.ServeMux, *TokenIssuer) {
	t.Helper()

	products := &mockProductRepo{products: []catalog.Product{
		{
			ID:           1,
			Name:         "Basmati Rice 5kg",
			CategoryName: "Grocery",
			SellingPrice: decimal.NewFromInt(100),
			CostPrice:    decimal.NewFromInt(80),
			TaxRate:      decimal.NewFromInt(18),
			Stock:        10,
		},
		{
			ID:           2,
			Name:         "Sunflower Oil 1L",
			CategoryName: "Grocery",
			SellingPrice: decimal.NewFromInt(200),
			CostPrice:    decimal.NewFromInt(150),
			TaxRate:      decimal.NewFromInt(18),
			Stock:        3,
		},
	}}
	customers := &mockCustomerRepo{customers: map[string]customer.Customer{
		"9876543210": {Mobile: "9876543210", Name: "Asha"},
	}}
	invoices := &mockInvoiceRepo{}
	st := &mockSettingsRepo{values: map[string]string{
		settings.KeyStoreName:  "Test Store",
		settings.KeyGSTEnabled: "true",
		settings.KeyGSTPercent: "18",
		settings.KeyUPIID:      "merchant@okaxis",
	}}
	users := &mockUserRepo{users: map[string]identity.User{
		"admin": {
			ID:           1,
			Username:     "admin",
			PasswordHash: identity.HashPassword("Admin@123"),
			Role:         identity.RoleAdmin,
		},
		"pos1": {
			ID:           2,
			Username:     "pos1",
			PasswordHash: identity.HashPassword("Pos@12345"),
			Role:         identity.RolePOS,
		},
	}}

	tokens := NewTokenIssuer([]byte("test-secret"))
	h := New(Deps{
		Products:   products,
		Categories: nil,
		Customers:  customers,
		Checkout:   billing.NewService(products, customers, invoices, st),
		Invoices:   invoices,
		Analytics:  mockAnalyticsRepo{},
		Identity:   identity.NewService(users),
		Settings:   st,
		Tokens:     tokens,
	})

	mux := http.NewServeMux()
	h.Register(mux)
	return mux, tokens
}

func authHeader(t *testing.T, tokens *TokenIssuer, username string, role identity.Role) string {
	t.Helper()
	token, err := tokens.Issue(&identity.User{Username: username, Role: role})
	require.NoError(t, err)
	return "Bearer " + token
}

func TestLogin(t *testing.T) {
	mux, _ := testServer(t)

	t.Run("success", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/login",
			strings.NewReader(`{"username":"admin","password":"Admin@123"}`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Token string `json:"token"`
			User  struct {
				Username string `json:"username"`
				Role     string `json:"role"`
			} `json:"user"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.NotEmpty(t, body.Token)
		assert.Equal(t, "admin", body.User.Username)
		assert.Equal(t, "admin", body.User.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/login",
			strings.NewReader(`{"username":"admin","password":"nope"}`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown user maps to unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/login",
			strings.NewReader(`{"username":"ghost","password":"x"}`))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthMiddleware(t *testing.T) {
	mux, tokens := testServer(t)

	t.Run("missing token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("pos role denied on admin route", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/analytics/summary", nil)
		req.Header.Set("Authorization", authHeader(t, tokens, "pos1", identity.RolePOS))
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestListProducts(t *testing.T) {
	mux, tokens := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Authorization", authHeader(t, tokens, "pos1", identity.RolePOS))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body []struct {
		ID           int64   `json:"id"`
		Name         string  `json:"name"`
		SellingPrice float64 `json:"selling_price"`
		Stock        int     `json:"stock"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 2)
	assert.Equal(t, "Basmati Rice 5kg", body[0].Name)
	assert.Equal(t, 100.0, body[0].SellingPrice)
}

func TestGetProductNotFound(t *testing.T) {
	mux, tokens := testServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/products/999", nil)
	req.Header.Set("Authorization", authHeader(t, tokens, "pos1", identity.RolePOS))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckout(t *testing.T) {
	auth := func(req *http.Request, tokens *TokenIssuer) {
		req.Header.Set("Authorization", authHeader(t, tokens, "pos1", identity.RolePOS))
	}

	t.Run("success with totals", func(t *testing.T) {
		mux, tokens := testServer(t)
		req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(`{
			"customer_mobile": "9876543210",
			"payment_mode": "CASH",
			"items": [
				{"product_id": 1, "quantity": 1},
				{"product_id": 2, "quantity": 1}
			]
		}`))
		auth(req, tokens)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var body struct {
			Invoice struct {
				ID       string  `json:"id"`
				Subtotal float64 `json:"subtotal"`
				Total    float64 `json:"total"`
				Operator string  `json:"operator"`
			} `json:"invoice"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.True(t, strings.HasPrefix(body.Invoice.ID, "INV"))
		assert.Equal(t, 300.0, body.Invoice.Subtotal)
		assert.Equal(t, 354.0, body.Invoice.Total)
		assert.Equal(t, "pos1", body.Invoice.Operator)
	})

	t.Run("upi returns payment uri", func(t *testing.T) {
		mux, tokens := testServer(t)
		req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(`{
			"customer_mobile": "9876543210",
			"payment_mode": "UPI",
			"items": [{"product_id": 1, "quantity": 1}]
		}`))
		auth(req, tokens)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var body struct {
			PaymentURI string `json:"payment_uri"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Contains(t, body.PaymentURI, "upi://pay?")
		assert.Contains(t, body.PaymentURI, "pa=merchant%40okaxis")
	})

	t.Run("insufficient stock conflicts", func(t *testing.T) {
		mux, tokens := testServer(t)
		req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(`{
			"customer_mobile": "9876543210",
			"payment_mode": "CASH",
			"items": [{"product_id": 2, "quantity": 99}]
		}`))
		auth(req, tokens)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("invalid mobile rejected", func(t *testing.T) {
		mux, tokens := testServer(t)
		req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(`{
			"customer_mobile": "12345",
			"payment_mode": "CASH",
			"items": [{"product_id": 1, "quantity": 1}]
		}`))
		auth(req, tokens)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("bad card number rejected", func(t *testing.T) {
		mux, tokens := testServer(t)
		req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(`{
			"customer_mobile": "9876543210",
			"payment_mode": "CARD",
			"card": {
				"holder_name": "Asha Rao",
				"number": "4111111111111112",
				"expiry": "12/29",
				"cvv": "123"
			},
			"items": [{"product_id": 1, "quantity": 1}]
		}`))
		auth(req, tokens)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestUpdateSetting(t *testing.T) {
	mux, tokens := testServer(t)
	admin := authHeader(t, tokens, "admin", identity.RoleAdmin)

	t.Run("known key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/settings/gst_percent",
			strings.NewReader(`{"value":"12"}`))
		req.Header.Set("Authorization", admin)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("unknown key", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPut, "/api/settings/bogus",
			strings.NewReader(`{"value":"x"}`))
		req.Header.Set("Authorization", admin)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestForecastEndpoint(t *testing.T) {
	mux, tokens := testServer(t)
	admin := authHeader(t, tokens, "admin", identity.RoleAdmin)

	t.Run("projects next day", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/analytics/forecast?days=1", nil)
		req.Header.Set("Authorization", admin)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var body []struct {
			Day     int     `json:"day"`
			Revenue float64 `json:"revenue"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Len(t, body, 1)
		assert.Equal(t, 3, body[0].Day)
		assert.InDelta(t, 400.0, body[0].Revenue, 0.001)
	})

	t.Run("rejects oversized horizon", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/analytics/forecast?days=1000000000", nil)
		req.Header.Set("Authorization", admin)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects oversized top products limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/analytics/top-products?limit=10000", nil)
		req.Header.Set("Authorization", admin)
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
