// Package server exposes the pipeline over a small JSON API. Chart layout,
// themes and widget state belong to the client; this surface only ships the
// tidy table and its derived data.
package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"MarketLens/internal/collector"
	"MarketLens/internal/query"
)

// sparklineTail is how many trailing rows the KPI sparkline carries.
const sparklineTail = 60

// Server wraps the query service behind HTTP handlers.
type Server struct {
	Service *query.Service
}

// NewServer creates a Server.
func NewServer(svc *query.Service) *Server {
	return &Server{Service: svc}
}

// Routes returns the handler for all endpoints.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/history", s.handleHistory)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	return mux
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var tickers []string
	for _, t := range strings.Split(q.Get("tickers"), ",") {
		if t = strings.TrimSpace(t); t != "" {
			tickers = append(tickers, strings.ToUpper(t))
		}
	}

	req := query.Request{
		Tickers:  tickers,
		Interval: query.Interval(q.Get("interval")),
		View:     query.View(q.Get("view")),
	}
	if req.Interval == "" {
		req.Interval = query.Interval1d
	}

	if len(req.Tickers) == 0 {
		writeError(w, http.StatusBadRequest, "at least one ticker is required")
		return
	}
	if !req.Interval.Valid() {
		writeError(w, http.StatusBadRequest, "interval must be one of 1d, 1wk, 1mo")
		return
	}
	if req.View != "" && !req.View.Valid() {
		writeError(w, http.StatusBadRequest, "view must be one of price, cumulative, candlestick")
		return
	}

	var err error
	if req.Start, err = parseDate(q.Get("start")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid start date")
		return
	}
	if req.End, err = parseDate(q.Get("end")); err != nil {
		writeError(w, http.StatusBadRequest, "invalid end date")
		return
	}

	res, err := s.Service.History(r.Context(), req)
	if err != nil {
		var noData *collector.NoDataError
		if errors.As(err, &noData) {
			writeError(w, http.StatusNotFound, noData.Error())
			return
		}
		log.Printf("[ERROR] history: %v", err)
		writeError(w, http.StatusInternalServerError, "pipeline failure")
		return
	}

	// KPI sparkline for the first selected ticker, like the dashboard cards.
	spark := res.Sparkline(req.Tickers[0], sparklineTail)

	writeJSON(w, http.StatusOK, toResponse(res, spark))
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[ERROR] encode response: %v", err)
	}
}
