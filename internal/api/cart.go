package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tillfold/tillfold-core/internal/sale"
)

// scanRequest is the body for POST /cart/scan. It carries a barcode exactly
// as a hardware scanner would deliver it, so simulated scans and real scans
// share one path.
type scanRequest struct {
	Barcode string `json:"barcode"`
}

// cartView is the cart representation sent to clients and broadcast on
// cart.updated.
func (s *Server) cartView() map[string]any {
	return map[string]any{
		"lines":  s.session.Lines(),
		"totals": s.session.Totals(),
	}
}

// broadcastCart pushes the current cart to WebSocket subscribers.
func (s *Server) broadcastCart() {
	if s.hub != nil {
		s.hub.Broadcast(ChannelCartUpdated, s.cartView())
	}
}

// NotifyCartUpdated broadcasts the current cart state. Called by external
// scan sources (the MQTT bridge) that mutate the session outside an HTTP
// handler.
func (s *Server) NotifyCartUpdated() {
	s.broadcastCart()
}

// handleGetCart returns the current cart lines and running totals.
func (s *Server) handleGetCart(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.cartView())
}

// handleScan adds a barcode to the cart.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Barcode == "" {
		writeBadRequest(w, "barcode is required")
		return
	}

	line := s.session.AddByBarcode(req.Barcode)
	s.broadcastCart()

	writeJSON(w, http.StatusOK, map[string]any{
		"line":   line,
		"lines":  s.session.Lines(),
		"totals": s.session.Totals(),
	})
}

// handleIncrementItem bumps the quantity of a cart line. Barcodes not in the
// cart are ignored.
func (s *Server) handleIncrementItem(w http.ResponseWriter, r *http.Request) {
	s.session.Increment(chi.URLParam(r, "barcode"))
	s.broadcastCart()
	writeJSON(w, http.StatusOK, s.cartView())
}

// handleDecrementItem lowers the quantity of a cart line, flooring at 1.
func (s *Server) handleDecrementItem(w http.ResponseWriter, r *http.Request) {
	s.session.Decrement(chi.URLParam(r, "barcode"))
	s.broadcastCart()
	writeJSON(w, http.StatusOK, s.cartView())
}

// handleRemoveItem drops a line from the cart regardless of quantity.
func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	s.session.Remove(chi.URLParam(r, "barcode"))
	s.broadcastCart()
	writeJSON(w, http.StatusOK, s.cartView())
}

// handleClearCart abandons the sale without committing anything.
func (s *Server) handleClearCart(w http.ResponseWriter, _ *http.Request) {
	s.session.Clear()
	s.broadcastCart()
	w.WriteHeader(http.StatusNoContent)
}

// handleCheckout commits the cart to the ledger, sends the receipt to the
// printer, records metrics, and resets the cart. Receipt and metrics
// failures never fail the sale.
func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	rec, err := s.session.Checkout(r.Context())
	if err != nil {
		if errors.Is(err, sale.ErrEmptyCart) {
			writeConflict(w, "cart is empty")
			return
		}
		writeInternalError(w, "failed to commit sale")
		return
	}

	if s.printer != nil {
		receipt := sale.BuildReceipt(s.storeCfg.ID, rec)
		if err := s.printer.Print(r.Context(), receipt); err != nil {
			s.logger.Warn("receipt print failed", "sale_id", rec.ID, "error", err)
		}
	}

	if s.metrics != nil {
		s.metrics.WriteSaleMetric(s.storeCfg.ID,
			rec.Subtotal.StringFixed(2),
			rec.Tax.StringFixed(2),
			rec.Total.StringFixed(2),
			len(rec.Items),
		)
	}

	if s.hub != nil {
		s.hub.Broadcast(ChannelSaleCommitted, rec)
	}
	s.broadcastCart()

	writeJSON(w, http.StatusCreated, map[string]any{"sale": rec})
}
