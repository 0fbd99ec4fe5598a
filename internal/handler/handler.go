// Package handler exposes the register and dashboard API over HTTP.
package handler

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/slipsync/slipsync/internal/domain/catalog"
	"github.com/slipsync/slipsync/internal/domain/order"
	"github.com/slipsync/slipsync/internal/domain/pos"
)

// Handler serves the /api routes.
type Handler struct {
	checkout *pos.Service
	catalog  catalog.Repository
	orders   order.Repository
	now      func() time.Time
}

// New creates a Handler over the checkout service and repositories.
func New(checkout *pos.Service, catalogRepo catalog.Repository, orderRepo order.Repository) *Handler {
	return &Handler{
		checkout: checkout,
		catalog:  catalogRepo,
		orders:   orderRepo,
		now:      time.Now,
	}
}

// Routes returns the API router, to be mounted under /api.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/products", h.listProducts)

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", h.placeOrder)
		r.Get("/", h.listOrders)
	})

	r.Route("/reports", func(r chi.Router) {
		r.Get("/dashboard", h.dashboard)
		r.Get("/series", h.dailySeries)
		r.Get("/sales/summary", h.salesSummary)
		r.Get("/sales/export", h.salesExport)
	})

	return r
}
