package query

import (
	"context"
	"sync"
	"testing"
	"time"

	"MarketLens/internal/cache"
	"MarketLens/internal/collector"
	"MarketLens/internal/model"
)

// countingFetcher wraps MockFetcher and counts provider calls.
type countingFetcher struct {
	mu    sync.Mutex
	calls int
	mock  *collector.MockFetcher
}

func (c *countingFetcher) Name() string { return "counting" }

func (c *countingFetcher) FetchHistory(ctx context.Context, symbol, period, interval string) ([]model.Bar, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.mock.FetchHistory(ctx, symbol, period, interval)
}

func (c *countingFetcher) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func d(n int) time.Time {
	return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func history(closes ...float64) []model.Bar {
	out := make([]model.Bar, len(closes))
	for i, c := range closes {
		out[i] = model.Bar{Date: d(i), Open: c, High: c, Low: c, Close: c, Volume: 100}
	}
	return out
}

func newTestService(bars map[string][]model.Bar) (*Service, *countingFetcher) {
	f := &countingFetcher{mock: &collector.MockFetcher{Bars: bars}}
	col := collector.NewCollector(f, nil)
	return NewService(col, cache.New(8), "1y", 3), f
}

func TestHistory_CacheHitSkipsRefetch(t *testing.T) {
	svc, f := newTestService(map[string][]model.Bar{
		"AAPL": history(10, 11, 12),
		"MSFT": history(20, 21, 22),
	})
	ctx := context.Background()

	req := Request{Tickers: []string{"AAPL", "MSFT"}, Interval: Interval1d, View: ViewPrice}
	if _, err := svc.History(ctx, req); err != nil {
		t.Fatalf("first call: %v", err)
	}
	if f.count() != 2 {
		t.Fatalf("expected 2 provider calls, got %d", f.count())
	}

	// Reversed ticker order must hit the same entry.
	req.Tickers = []string{"MSFT", "AAPL"}
	if _, err := svc.History(ctx, req); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if f.count() != 2 {
		t.Errorf("reversed ticker order refetched: %d provider calls", f.count())
	}

	// A different interval is a different entry.
	req.Interval = Interval1wk
	if _, err := svc.History(ctx, req); err != nil {
		t.Fatalf("third call: %v", err)
	}
	if f.count() != 4 {
		t.Errorf("expected refetch for new interval, got %d calls", f.count())
	}
}

func TestHistory_DerivedColumnsPresent(t *testing.T) {
	svc, _ := newTestService(map[string][]model.Bar{
		"X": history(100, 101, 99, 99, 103),
	})
	res, err := svc.History(context.Background(), Request{Tickers: []string{"X"}, Interval: Interval1d})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(res.Table) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(res.Table))
	}
	last := res.Table[4]
	if !model.Defined(last.DailyReturn) || !model.Defined(last.CumReturn) {
		t.Error("returns not computed")
	}
	if !model.Defined(last.AnnVol) {
		t.Error("volatility not computed (window 3 over 4 returns)")
	}
	if len(res.Summaries) != 1 || res.Summaries[0].Ticker != "X" {
		t.Errorf("unexpected summaries %+v", res.Summaries)
	}
}

func TestHistory_DateFilterInclusive(t *testing.T) {
	svc, _ := newTestService(map[string][]model.Bar{"X": history(1, 2, 3, 4, 5)})
	res, err := svc.History(context.Background(), Request{
		Tickers:  []string{"X"},
		Interval: Interval1d,
		Start:    d(1),
		End:      d(3),
	})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(res.Table) != 3 {
		t.Fatalf("expected 3 rows in [d1, d3], got %d", len(res.Table))
	}
	if !res.Table[0].Date.Equal(d(1)) || !res.Table[2].Date.Equal(d(3)) {
		t.Errorf("bounds not inclusive: %v .. %v", res.Table[0].Date, res.Table[2].Date)
	}
}

func TestHistory_CandlestickDegradesForMultiTicker(t *testing.T) {
	svc, _ := newTestService(map[string][]model.Bar{
		"A": history(1, 2),
		"B": history(3, 4),
	})
	ctx := context.Background()

	res, err := svc.History(ctx, Request{Tickers: []string{"A", "B"}, Interval: Interval1d, View: ViewCandlestick})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if res.View != ViewPrice {
		t.Errorf("multi-ticker candlestick should degrade to price, got %s", res.View)
	}

	res, err = svc.History(ctx, Request{Tickers: []string{"A"}, Interval: Interval1d, View: ViewCandlestick})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if res.View != ViewCandlestick {
		t.Errorf("single-ticker candlestick should stand, got %s", res.View)
	}
}

func TestResult_Sparkline(t *testing.T) {
	svc, _ := newTestService(map[string][]model.Bar{
		"A": history(1, 2, 3, 4, 5),
		"B": history(6, 7),
	})
	res, err := svc.History(context.Background(), Request{Tickers: []string{"A", "B"}, Interval: Interval1d})
	if err != nil {
		t.Fatalf("history: %v", err)
	}

	spark := res.Sparkline("A", 3)
	if len(spark) != 3 {
		t.Fatalf("expected trailing 3 rows, got %d", len(spark))
	}
	for _, r := range spark {
		if r.Ticker != "A" {
			t.Fatalf("sparkline leaked ticker %s", r.Ticker)
		}
	}
	if !spark[0].Date.Equal(d(2)) || !spark[2].Date.Equal(d(4)) {
		t.Errorf("expected rows d2..d4, got %v .. %v", spark[0].Date, spark[2].Date)
	}

	// Asking for more rows than exist returns the whole group.
	if got := res.Sparkline("B", 10); len(got) != 2 {
		t.Errorf("expected all 2 rows of B, got %d", len(got))
	}
}

func TestHistory_InvalidParams(t *testing.T) {
	svc, _ := newTestService(map[string][]model.Bar{"A": history(1)})
	ctx := context.Background()

	if _, err := svc.History(ctx, Request{Tickers: nil, Interval: Interval1d}); err == nil {
		t.Error("expected error for empty tickers")
	}
	if _, err := svc.History(ctx, Request{Tickers: []string{"A"}, Interval: "7m"}); err == nil {
		t.Error("expected error for unknown interval")
	}
	if _, err := svc.History(ctx, Request{Tickers: []string{"A"}, Interval: Interval1d, View: "pie"}); err == nil {
		t.Error("expected error for unknown view")
	}
}

func TestRefresh_OverwritesEntry(t *testing.T) {
	f := &countingFetcher{mock: &collector.MockFetcher{Bars: map[string][]model.Bar{"A": history(1, 2)}}}
	svc := NewService(collector.NewCollector(f, nil), cache.New(8), "1y", 3)
	ctx := context.Background()

	req := Request{Tickers: []string{"A"}, Interval: Interval1d}
	if _, err := svc.History(ctx, req); err != nil {
		t.Fatalf("prime: %v", err)
	}

	// New data appears upstream; a plain History call would serve the
	// cached table, Refresh must bypass it.
	f.mock.Bars["A"] = history(1, 2, 3)
	if err := svc.Refresh(ctx, []string{"A"}, Interval1d); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	res, err := svc.History(ctx, req)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(res.Table) != 3 {
		t.Errorf("expected refreshed table with 3 rows, got %d", len(res.Table))
	}
	if f.count() != 2 {
		t.Errorf("expected 2 provider calls (prime + refresh), got %d", f.count())
	}
}
