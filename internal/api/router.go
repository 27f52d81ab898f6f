package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Catalog endpoints
		r.Route("/products", func(r chi.Router) {
			r.Get("/", s.handleListProducts)
			r.Post("/", s.handleUpsertProduct)
			r.Delete("/{barcode}", s.handleDeleteProduct)
		})

		// Cart endpoints
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", s.handleGetCart)
			r.Delete("/", s.handleClearCart)
			r.Post("/scan", s.handleScan)

			r.Route("/items/{barcode}", func(r chi.Router) {
				r.Post("/increment", s.handleIncrementItem)
				r.Post("/decrement", s.handleDecrementItem)
				r.Delete("/", s.handleRemoveItem)
			})
		})

		r.Post("/checkout", s.handleCheckout)

		// Sales history
		r.Route("/sales", func(r chi.Router) {
			r.Get("/", s.handleListSales)
			r.Get("/export", s.handleExportSales)
		})

		// Peripheral endpoints
		r.Route("/devices", func(r chi.Router) {
			r.Get("/", s.handleListDevices)
			r.Post("/request", s.handleRequestDevice)
		})

		// WebSocket event stream
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"version":  s.version,
		"store_id": s.storeCfg.ID,
	})
}
