package transform

import (
	"math"
	"sort"
	"time"

	"MarketLens/internal/model"
)

// Summary holds the last-observation scalars of one ticker, for KPI display.
type Summary struct {
	Ticker    string
	Date      time.Time
	Close     float64
	CumReturn float64
	AnnVol    float64
}

// LastObservations returns one Summary per ticker: close and cumulative
// return at the most recent row, and the most recent defined volatility
// (which may sit on an earlier date when the window just filled).
func LastObservations(t model.Table) []Summary {
	var out []Summary
	for _, ticker := range t.Tickers() {
		sub := t.Ticker(ticker)
		if len(sub) == 0 {
			continue
		}
		last := sub[len(sub)-1]
		s := Summary{
			Ticker:    ticker,
			Date:      last.Date,
			Close:     last.Close,
			CumReturn: last.CumReturn,
			AnnVol:    math.NaN(),
		}
		for i := len(sub) - 1; i >= 0; i-- {
			if model.Defined(sub[i].AnnVol) {
				s.AnnVol = sub[i].AnnVol
				break
			}
		}
		out = append(out, s)
	}
	return out
}

// CorrMatrix is a square Pearson correlation matrix over daily returns,
// aligned cross-ticker by date.
type CorrMatrix struct {
	Tickers []string
	Values  [][]float64
}

// Correlation pivots DailyReturn on date and computes pairwise-complete
// Pearson correlations between tickers. Cells without at least two shared
// defined observations are NaN; the diagonal is 1.
func Correlation(t model.Table) CorrMatrix {
	tickers := t.Tickers()
	sort.Strings(tickers)

	series := make(map[string]map[int64]float64, len(tickers))
	for _, r := range t {
		if !model.Defined(r.DailyReturn) {
			continue
		}
		m, ok := series[r.Ticker]
		if !ok {
			m = make(map[int64]float64)
			series[r.Ticker] = m
		}
		m[r.Date.Unix()] = r.DailyReturn
	}

	values := make([][]float64, len(tickers))
	for i := range tickers {
		values[i] = make([]float64, len(tickers))
		for j := range tickers {
			switch {
			case i == j:
				values[i][j] = 1
			case j < i:
				values[i][j] = values[j][i]
			default:
				values[i][j] = pearson(series[tickers[i]], series[tickers[j]])
			}
		}
	}
	return CorrMatrix{Tickers: tickers, Values: values}
}

func pearson(a, b map[int64]float64) float64 {
	var xs, ys []float64
	for d, x := range a {
		if y, ok := b[d]; ok {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	n := float64(len(xs))
	if n < 2 {
		return math.NaN()
	}

	var mx, my float64
	for i := range xs {
		mx += xs[i]
		my += ys[i]
	}
	mx /= n
	my /= n

	var sxy, sxx, syy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		sxy += dx * dy
		sxx += dx * dx
		syy += dy * dy
	}
	if sxx == 0 || syy == 0 {
		return math.NaN()
	}
	return sxy / math.Sqrt(sxx*syy)
}
