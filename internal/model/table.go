package model

import (
	"math"
	"sort"
	"time"
)

// Bar is a single OHLCV bar as returned by a data provider, before it is
// tagged with its ticker.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// Row is one (ticker, date) observation of the tidy table. The derived
// columns use NaN for "not defined": the first return of a group, a rolling
// window that is not yet full, or a division against a zero close.
type Row struct {
	Date   time.Time
	Ticker string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64

	DailyReturn float64
	CumReturn   float64
	AnnVol      float64
}

// Table is the tidy/long table: the union of per-ticker sub-tables, sorted
// by (ticker, date) ascending with no duplicate (ticker, date) pairs.
type Table []Row

// Defined reports whether a derived value is present.
func Defined(v float64) bool { return !math.IsNaN(v) }

// NewRow builds a Row from a provider bar with all derived columns unset.
func NewRow(ticker string, b Bar) Row {
	return Row{
		Date:        b.Date,
		Ticker:      ticker,
		Open:        b.Open,
		High:        b.High,
		Low:         b.Low,
		Close:       b.Close,
		Volume:      b.Volume,
		DailyReturn: math.NaN(),
		CumReturn:   math.NaN(),
		AnnVol:      math.NaN(),
	}
}

// Clone returns a deep copy of the table. Rows are value types, so a slice
// copy is sufficient.
func (t Table) Clone() Table {
	out := make(Table, len(t))
	copy(out, t)
	return out
}

// Sort orders rows by (ticker, date) ascending in place.
func (t Table) Sort() {
	sort.SliceStable(t, func(i, j int) bool {
		if t[i].Ticker != t[j].Ticker {
			return t[i].Ticker < t[j].Ticker
		}
		return t[i].Date.Before(t[j].Date)
	})
}

// Tickers returns the distinct tickers present, in table order.
func (t Table) Tickers() []string {
	var out []string
	seen := make(map[string]bool)
	for _, r := range t {
		if !seen[r.Ticker] {
			seen[r.Ticker] = true
			out = append(out, r.Ticker)
		}
	}
	return out
}

// Ticker returns the sub-table for one ticker.
func (t Table) Ticker(symbol string) Table {
	var out Table
	for _, r := range t {
		if r.Ticker == symbol {
			out = append(out, r)
		}
	}
	return out
}

// Between returns rows with start <= date <= end. A zero start or end leaves
// that side unbounded.
func (t Table) Between(start, end time.Time) Table {
	var out Table
	for _, r := range t {
		if !start.IsZero() && r.Date.Before(start) {
			continue
		}
		if !end.IsZero() && r.Date.After(end) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Tail returns the last n rows (all rows when n exceeds the length).
func (t Table) Tail(n int) Table {
	if n >= len(t) {
		return t
	}
	return t[len(t)-n:]
}
