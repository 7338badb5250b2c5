package transform

import (
	"math"

	"MarketLens/internal/model"
)

// DefaultWindow is the rolling volatility window in trading days.
const DefaultWindow = 20

// ComputeVolatility returns a copy of the table with AnnVol filled per
// ticker group: the trailing rolling sample standard deviation of
// DailyReturn over `window` rows, scaled by sqrt(252).
//
// DailyReturn is computed first when the table carries none. AnnVol is NaN
// until the window is full of defined returns; since the first row of each
// group has no return, the first defined value appears on the group's
// (window+1)-th row.
func ComputeVolatility(t model.Table, window int) model.Table {
	if window <= 0 {
		window = DefaultWindow
	}
	out := t.Clone()
	out.Sort()
	if !hasReturns(out) {
		pctChange(out)
	}

	w := newRollingWindow(window)
	for i := range out {
		if i == 0 || out[i].Ticker != out[i-1].Ticker {
			w.reset()
		}
		w.push(out[i].DailyReturn)
		out[i].AnnVol = w.std() * math.Sqrt(TradingDaysPerYear)
	}
	return out
}

// rollingWindow is a fixed-size ring buffer over the trailing returns of one
// ticker group. It keeps the count of undefined values in the window so the
// result is NaN whenever the window is short or contains an undefined return.
type rollingWindow struct {
	buf  []float64
	size int
	head int
	len  int
	nans int
}

func newRollingWindow(size int) *rollingWindow {
	return &rollingWindow{buf: make([]float64, size), size: size}
}

func (w *rollingWindow) reset() {
	w.head, w.len, w.nans = 0, 0, 0
}

func (w *rollingWindow) push(v float64) {
	if w.len == w.size {
		if math.IsNaN(w.buf[w.head]) {
			w.nans--
		}
	} else {
		w.len++
	}
	w.buf[w.head] = v
	if math.IsNaN(v) {
		w.nans++
	}
	w.head = (w.head + 1) % w.size
}

// std returns the sample standard deviation (ddof=1) of the window, or NaN
// when the window is not yet full or contains an undefined value.
func (w *rollingWindow) std() float64 {
	if w.len < w.size || w.nans > 0 || w.size < 2 {
		return math.NaN()
	}
	mean := 0.0
	for _, v := range w.buf {
		mean += v
	}
	mean /= float64(w.size)

	ss := 0.0
	for _, v := range w.buf {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(w.size-1))
}
