package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"cassa/internal/core"
	"cassa/internal/report"
	"cassa/internal/services"
)

// handleListSales serves the history, newest first, optionally narrowed by
// ?date=YYYY-MM-DD and/or ?month=YYYY-MM.
func (s *Server) handleListSales(w http.ResponseWriter, r *http.Request) {
	var filter services.HistoryFilter
	q := r.URL.Query()
	if v := strings.TrimSpace(q.Get("date")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			writeError(w, r, err)
			return
		}
		filter.Day = &d
	}
	if v := strings.TrimSpace(q.Get("month")); v != "" {
		p, err := report.ParsePeriod(v)
		if err != nil {
			writeError(w, r, err)
			return
		}
		filter.Period = &p
	}

	sales, err := s.svc.Checkout.History(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if sales == nil {
		sales = []core.Sale{}
	}
	writeJSON(w, http.StatusOK, sales)
}

func (s *Server) handleImportSale(w http.ResponseWriter, r *http.Request) {
	var in saleInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	sale, err := in.toSale(s.today())
	if err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.svc.Checkout.ImportSale(r.Context(), sale)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteSale(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Checkout.DeleteSale(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
