package collector

import (
	"context"
	"fmt"
	"log"
	"time"

	"MarketLens/internal/model"
	"MarketLens/internal/recorder"

	"github.com/google/uuid"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	// Bars maps symbol to its history. A nil map yields generated data for
	// any symbol; with a non-nil map, absent symbols yield an error and
	// symbols mapped to nil yield zero rows.
	Bars map[string][]model.Bar
	Err  error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchHistory(_ context.Context, symbol, _, _ string) ([]model.Bar, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Bars == nil {
		return GenerateBars(100, 30), nil
	}
	bars, ok := m.Bars[symbol]
	if !ok {
		return nil, fmt.Errorf("mock: unknown symbol %s", symbol)
	}
	return bars, nil
}

// GenerateBars produces a deterministic synthetic history for development.
func GenerateBars(basePrice float64, count int) []model.Bar {
	bars := make([]model.Bar, count)
	start := time.Now().UTC().Truncate(24 * time.Hour)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.Bar{
			Date:   start.AddDate(0, 0, -(count - i)),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}

// Collector fetches per-ticker histories and assembles the tidy table.
type Collector struct {
	Fetcher  Fetcher
	Recorder recorder.Recorder
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, rec recorder.Recorder) *Collector {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Collector{Fetcher: fetcher, Recorder: rec}
}

// Collect fetches history for every ticker and concatenates the results into
// one tidy table sorted by (ticker, date) with duplicates dropped.
//
// A ticker that fails or returns zero rows is excluded from the table; the
// failure is logged and recorded so partial fetches stay observable. Only
// total emptiness is fatal and returns NoDataError.
func (c *Collector) Collect(ctx context.Context, tickers []string, period, interval string) (model.Table, error) {
	requestID := uuid.NewString()

	var table model.Table
	for _, t := range tickers {
		start := time.Now()
		bars, err := c.Fetcher.FetchHistory(ctx, t, period, interval)
		evt := &recorder.FetchEvent{
			RequestID: requestID,
			Ticker:    t,
			Interval:  interval,
			Rows:      len(bars),
			Duration:  time.Since(start),
		}
		if err != nil {
			evt.Error = err.Error()
			log.Printf("[WARN] fetch %s: %v, dropping ticker", t, err)
		} else if len(bars) == 0 {
			log.Printf("[WARN] fetch %s: zero rows, dropping ticker", t)
		}
		if rerr := c.Recorder.RecordFetch(evt); rerr != nil {
			log.Printf("[ERROR] record fetch event: %v", rerr)
		}
		if err != nil {
			continue
		}
		for _, b := range bars {
			table = append(table, model.NewRow(t, b))
		}
	}

	if len(table) == 0 {
		return nil, &NoDataError{Tickers: append([]string(nil), tickers...)}
	}

	table.Sort()
	return dedupe(table), nil
}

// dedupe drops repeated (ticker, date) rows, keeping the first. Input must
// already be sorted by (ticker, date).
func dedupe(t model.Table) model.Table {
	out := t[:0]
	for _, r := range t {
		if n := len(out); n > 0 && out[n-1].Ticker == r.Ticker && out[n-1].Date.Equal(r.Date) {
			continue
		}
		out = append(out, r)
	}
	return out
}
