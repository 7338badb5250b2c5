// Package query is the inbound surface of the pipeline: the presentation
// layer hands it (tickers, date range, interval, view) and receives the tidy
// table plus derived columns, KPI summaries and the return correlation.
package query

import (
	"context"
	"fmt"
	"log"
	"time"

	"MarketLens/internal/cache"
	"MarketLens/internal/collector"
	"MarketLens/internal/model"
	"MarketLens/internal/transform"
)

// Interval is a provider bar interval.
type Interval string

const (
	Interval1d  Interval = "1d"
	Interval1wk Interval = "1wk"
	Interval1mo Interval = "1mo"
)

// Valid reports whether the interval is one the pipeline accepts.
func (i Interval) Valid() bool {
	switch i {
	case Interval1d, Interval1wk, Interval1mo:
		return true
	}
	return false
}

// View selects the main chart the presentation layer renders.
type View string

const (
	ViewPrice       View = "price"
	ViewCumulative  View = "cumulative"
	ViewCandlestick View = "candlestick"
)

// Valid reports whether the view is known.
func (v View) Valid() bool {
	switch v {
	case ViewPrice, ViewCumulative, ViewCandlestick:
		return true
	}
	return false
}

// Request is one user-driven pipeline invocation.
type Request struct {
	Tickers  []string
	Start    time.Time // zero = unbounded
	End      time.Time // zero = unbounded
	Interval Interval
	View     View
}

// Result is what the presentation layer consumes.
type Result struct {
	Table       model.Table
	View        View // resolved view, after candlestick degradation
	Summaries   []transform.Summary
	Correlation transform.CorrMatrix
}

// Sparkline returns the trailing n rows of one ticker, for KPI sparklines.
func (r *Result) Sparkline(ticker string, n int) model.Table {
	return r.Table.Ticker(ticker).Tail(n)
}

// Service ties the fetch adapter, transform engine and query cache together
// behind a fixed lookback period.
type Service struct {
	Collector *collector.Collector
	Cache     *cache.LRU
	Period    string // lookback handed to the fetcher, e.g. "1y"
	Window    int    // rolling volatility window
}

// NewService creates a Service with defaulted period and window.
func NewService(col *collector.Collector, c *cache.LRU, period string, window int) *Service {
	if period == "" {
		period = "1y"
	}
	if window <= 0 {
		window = transform.DefaultWindow
	}
	return &Service{Collector: col, Cache: c, Period: period, Window: window}
}

// History runs one pipeline invocation: cache lookup, on a miss fetch plus
// both transforms, then the inclusive date filter (applied after caching so
// date-range tweaks don't fragment the cache).
func (s *Service) History(ctx context.Context, req Request) (*Result, error) {
	if len(req.Tickers) == 0 {
		return nil, fmt.Errorf("no tickers requested")
	}
	if !req.Interval.Valid() {
		return nil, fmt.Errorf("unsupported interval %q", req.Interval)
	}
	view := req.View
	if view == "" {
		view = ViewPrice
	}
	if !view.Valid() {
		return nil, fmt.Errorf("unsupported view %q", view)
	}
	// Candlestick only renders a single symbol.
	if view == ViewCandlestick && len(req.Tickers) != 1 {
		view = ViewPrice
	}

	key := cache.Key(req.Tickers, string(req.Interval))
	table, hit, err := s.Cache.GetOrCompute(ctx, key, func(ctx context.Context) (model.Table, error) {
		return s.load(ctx, req.Tickers, req.Interval)
	})
	if err != nil {
		return nil, err
	}
	if hit {
		log.Printf("[INFO] cache hit: %s", key)
	}

	table = table.Between(req.Start, req.End)
	return &Result{
		Table:       table,
		View:        view,
		Summaries:   transform.LastObservations(table),
		Correlation: transform.Correlation(table),
	}, nil
}

// Refresh recomputes the entry for (tickers, interval) and overwrites it,
// bypassing the hit path. Used by the warm scheduler.
func (s *Service) Refresh(ctx context.Context, tickers []string, interval Interval) error {
	if !interval.Valid() {
		return fmt.Errorf("unsupported interval %q", interval)
	}
	table, err := s.load(ctx, tickers, interval)
	if err != nil {
		return err
	}
	s.Cache.Put(cache.Key(tickers, string(interval)), table)
	return nil
}

func (s *Service) load(ctx context.Context, tickers []string, interval Interval) (model.Table, error) {
	table, err := s.Collector.Collect(ctx, tickers, s.Period, string(interval))
	if err != nil {
		return nil, err
	}
	table = transform.ComputeReturns(table)
	table = transform.ComputeVolatility(table, s.Window)
	return table, nil
}
