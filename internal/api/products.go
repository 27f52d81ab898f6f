package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/tillfold/tillfold-core/internal/catalog"
)

// upsertProductRequest is the body for POST /products. Price accepts either
// a JSON number or a decimal string.
type upsertProductRequest struct {
	Barcode string          `json:"barcode"`
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
}

// handleListProducts returns the catalog in insertion order.
func (s *Server) handleListProducts(w http.ResponseWriter, _ *http.Request) {
	products := s.catalog.List()
	writeJSON(w, http.StatusOK, map[string]any{"products": products, "count": len(products)})
}

// handleUpsertProduct creates a product or replaces the entry with the same
// barcode.
func (s *Server) handleUpsertProduct(w http.ResponseWriter, r *http.Request) {
	var req upsertProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if err := s.catalog.Upsert(r.Context(), req.Barcode, req.Name, req.Price); err != nil {
		if errors.Is(err, catalog.ErrInvalidProduct) {
			writeBadRequest(w, err.Error())
			return
		}
		writeInternalError(w, "failed to save product")
		return
	}

	product, ok := s.catalog.Get(req.Barcode)
	if !ok {
		writeInternalError(w, "failed to save product")
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// handleDeleteProduct removes a product by barcode. Deleting a barcode the
// catalog does not hold succeeds silently.
func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	barcode := chi.URLParam(r, "barcode")

	if err := s.catalog.Remove(r.Context(), barcode); err != nil {
		writeInternalError(w, "failed to delete product")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
