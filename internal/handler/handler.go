// Package handler exposes the HTTP API. Handlers decode requests with jx,
// delegate to the domain services and map domain errors onto the
// {code, message} error envelope.
package handler

import (
	"net/http"

	"github.com/smartinventory/pos/internal/domain/analytics"
	"github.com/smartinventory/pos/internal/domain/billing"
	"github.com/smartinventory/pos/internal/domain/catalog"
	"github.com/smartinventory/pos/internal/domain/customer"
	"github.com/smartinventory/pos/internal/domain/identity"
	"github.com/smartinventory/pos/internal/domain/settings"
)

// Handler carries the domain dependencies for every API route.
type Handler struct {
	products   catalog.ProductRepository
	categories catalog.CategoryRepository
	customers  customer.Repository
	checkout   *billing.Service
	invoices   billing.Repository
	analytics  analytics.Repository
	identity   *identity.Service
	settings   settings.Repository
	tokens     *TokenIssuer
}

// Deps bundles the constructor arguments for Handler.
type Deps struct {
	Products   catalog.ProductRepository
	Categories catalog.CategoryRepository
	Customers  customer.Repository
	Checkout   *billing.Service
	Invoices   billing.Repository
	Analytics  analytics.Repository
	Identity   *identity.Service
	Settings   settings.Repository
	Tokens     *TokenIssuer
}

// New constructs a Handler.
func New(d Deps) *Handler {
	return &Handler{
		products:   d.Products,
		categories: d.Categories,
		customers:  d.Customers,
		checkout:   d.Checkout,
		invoices:   d.Invoices,
		analytics:  d.Analytics,
		identity:   d.Identity,
		settings:   d.Settings,
		tokens:     d.Tokens,
	}
}

// Register mounts every API route on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	admin := []identity.Role{identity.RoleAdmin}
	anyRole := []identity.Role{identity.RoleAdmin, identity.RolePOS}

	mux.HandleFunc("POST /api/login", h.login)
	mux.HandleFunc("POST /api/password", h.requireAuth(h.changePassword, anyRole...))
	mux.HandleFunc("POST /api/operators", h.requireAuth(h.createOperator, admin...))

	mux.HandleFunc("GET /api/products", h.requireAuth(h.listProducts, anyRole...))
	mux.HandleFunc("GET /api/products/search", h.requireAuth(h.searchProducts, anyRole...))
	mux.HandleFunc("GET /api/products/{id}", h.requireAuth(h.getProduct, anyRole...))
	mux.HandleFunc("POST /api/products", h.requireAuth(h.createProduct, admin...))
	mux.HandleFunc("POST /api/products/{id}/restock", h.requireAuth(h.restockProduct, admin...))

	mux.HandleFunc("GET /api/categories", h.requireAuth(h.listCategories, anyRole...))
	mux.HandleFunc("POST /api/categories", h.requireAuth(h.createCategory, admin...))
	mux.HandleFunc("PUT /api/categories/{id}", h.requireAuth(h.renameCategory, admin...))

	mux.HandleFunc("POST /api/checkout", h.requireAuth(h.doCheckout, anyRole...))
	mux.HandleFunc("GET /api/invoices", h.requireAuth(h.listInvoices, anyRole...))
	mux.HandleFunc("GET /api/invoices/{id}", h.requireAuth(h.getInvoice, anyRole...))
	mux.HandleFunc("GET /api/invoices/{id}/pdf", h.requireAuth(h.invoicePDF, anyRole...))

	mux.HandleFunc("GET /api/customers", h.requireAuth(h.listCustomers, anyRole...))
	mux.HandleFunc("GET /api/customers/{mobile}", h.requireAuth(h.getCustomer, anyRole...))

	mux.HandleFunc("GET /api/analytics/summary", h.requireAuth(h.analyticsSummary, admin...))
	mux.HandleFunc("GET /api/analytics/categories", h.requireAuth(h.analyticsCategories, admin...))
	mux.HandleFunc("GET /api/analytics/payments", h.requireAuth(h.analyticsPayments, admin...))
	mux.HandleFunc("GET /api/analytics/hours", h.requireAuth(h.analyticsHours, admin...))
	mux.HandleFunc("GET /api/analytics/weekdays", h.requireAuth(h.analyticsWeekdays, admin...))
	mux.HandleFunc("GET /api/analytics/top-products", h.requireAuth(h.analyticsTopProducts, admin...))
	mux.HandleFunc("GET /api/analytics/forecast", h.requireAuth(h.analyticsForecast, admin...))

	mux.HandleFunc("GET /api/settings", h.requireAuth(h.listSettings, admin...))
	mux.HandleFunc("PUT /api/settings/{key}", h.requireAuth(h.updateSetting, admin...))
}
