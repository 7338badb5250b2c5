// Package transform holds the pure per-group time-series operations over the
// tidy table: daily returns, cumulative return and rolling annualized
// volatility. Every function clones its input, re-sorts defensively by
// (ticker, date) and leaves the original rows untouched.
package transform

import (
	"math"

	"MarketLens/internal/model"
)

// TradingDaysPerYear is the assumed number of trading days used to annualize
// daily volatility.
const TradingDaysPerYear = 252

// ComputeReturns returns a copy of the table with DailyReturn and CumReturn
// filled per ticker group.
//
// DailyReturn[i] = Close[i]/Close[i-1] - 1, NaN for the first row of each
// group and whenever the quotient is not finite (zero previous close).
// CumReturn is the running product of (1+DailyReturn) minus 1 over defined
// returns; it is NaN until the first defined return and at rows whose own
// return is undefined, resuming the product afterwards.
//
// The function is a pure function of Close and grouping, so recomputing on an
// already processed table overwrites both columns with identical values.
func ComputeReturns(t model.Table) model.Table {
	out := t.Clone()
	out.Sort()
	pctChange(out)

	growth := 1.0
	for i := range out {
		if i == 0 || out[i].Ticker != out[i-1].Ticker {
			growth = 1.0
		}
		r := out[i].DailyReturn
		if !model.Defined(r) {
			out[i].CumReturn = math.NaN()
			continue
		}
		growth *= 1 + r
		out[i].CumReturn = growth - 1
	}
	return out
}

// pctChange fills DailyReturn in place. Rows must be sorted by (ticker, date).
func pctChange(t model.Table) {
	for i := range t {
		if i == 0 || t[i].Ticker != t[i-1].Ticker {
			t[i].DailyReturn = math.NaN()
			continue
		}
		prev := t[i-1].Close
		if prev == 0 {
			// Division against a zero close is an explicit "not defined",
			// never a silent zero.
			t[i].DailyReturn = math.NaN()
			continue
		}
		r := t[i].Close/prev - 1
		if math.IsInf(r, 0) {
			r = math.NaN()
		}
		t[i].DailyReturn = r
	}
}

func hasReturns(t model.Table) bool {
	for _, r := range t {
		if model.Defined(r.DailyReturn) {
			return true
		}
	}
	return false
}
