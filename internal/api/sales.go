package api

import (
	"net/http"

	"github.com/tillfold/tillfold-core/internal/sale"
)

// handleListSales returns every committed sale in commit order.
func (s *Server) handleListSales(w http.ResponseWriter, r *http.Request) {
	records, err := s.ledger.List(r.Context())
	if err != nil {
		s.logger.Error("listing sales failed", "error", err)
		writeInternalError(w, "failed to list sales")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sales": records, "count": len(records)})
}

// handleExportSales serves the sales history as a CSV download.
func (s *Server) handleExportSales(w http.ResponseWriter, r *http.Request) {
	records, err := s.ledger.List(r.Context())
	if err != nil {
		s.logger.Error("exporting sales failed", "error", err)
		writeInternalError(w, "failed to export sales")
		return
	}

	data := sale.ExportCSV(records)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="sales.csv"`)
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // Best-effort write to response; connection may be closed
	w.Write(data)
}
