package transform

import (
	"math"
	"testing"

	"MarketLens/internal/model"
)

// closesFromReturns builds a price path starting at 100 with the given
// per-step returns.
func closesFromReturns(returns []float64) []float64 {
	closes := make([]float64, len(returns)+1)
	closes[0] = 100
	for i, r := range returns {
		closes[i+1] = closes[i] * (1 + r)
	}
	return closes
}

func syntheticReturns(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 0.005 * math.Sin(float64(i)*0.7)
	}
	return out
}

func TestComputeVolatility_AbsentUntilWindowFull(t *testing.T) {
	const window = 5
	table := tableFromCloses("X", closesFromReturns(syntheticReturns(12)))
	out := ComputeVolatility(table, window)

	// Row 0 has no return; rows 1..window-1 are the first window-1 defined
	// returns, so the first defined volatility sits on row `window`.
	for i := 0; i < window; i++ {
		if model.Defined(out[i].AnnVol) {
			t.Errorf("row %d: expected absent volatility, got %v", i, out[i].AnnVol)
		}
	}
	for i := window; i < len(out); i++ {
		if !model.Defined(out[i].AnnVol) {
			t.Errorf("row %d: expected defined volatility", i)
		}
		if out[i].AnnVol < 0 {
			t.Errorf("row %d: negative volatility %v", i, out[i].AnnVol)
		}
	}
}

func TestComputeVolatility_KnownValue(t *testing.T) {
	// Alternating +1%/-1% returns: sample std over any window of 4 is
	// sqrt(4/3 * 0.0001) with mean 0.
	returns := []float64{0.01, -0.01, 0.01, -0.01, 0.01, -0.01}
	out := ComputeVolatility(tableFromCloses("X", closesFromReturns(returns)), 4)

	wantStd := math.Sqrt(4.0 / 3.0 * 0.0001)
	want := wantStd * math.Sqrt(TradingDaysPerYear)
	last := out[len(out)-1].AnnVol
	if !almostEqual(last, want, 1e-9) {
		t.Errorf("annualized volatility = %v, want %v", last, want)
	}
}

func TestComputeVolatility_ConstantReturnsZero(t *testing.T) {
	returns := []float64{0.01, 0.01, 0.01, 0.01, 0.01}
	out := ComputeVolatility(tableFromCloses("X", closesFromReturns(returns)), 3)
	last := out[len(out)-1].AnnVol
	if !almostEqual(last, 0, 1e-12) {
		t.Errorf("constant returns should give zero volatility, got %v", last)
	}
}

func TestComputeVolatility_ScalesLinearly(t *testing.T) {
	const k = 3.0
	base := syntheticReturns(30)
	scaled := make([]float64, len(base))
	for i, r := range base {
		scaled[i] = k * r
	}

	v1 := ComputeVolatility(tableFromCloses("X", closesFromReturns(base)), 10)
	v2 := ComputeVolatility(tableFromCloses("X", closesFromReturns(scaled)), 10)

	for i := range v1 {
		if !model.Defined(v1[i].AnnVol) {
			continue
		}
		if !almostEqual(v2[i].AnnVol, k*v1[i].AnnVol, 1e-9) {
			t.Errorf("row %d: vol(k*r) = %v, want %v", i, v2[i].AnnVol, k*v1[i].AnnVol)
		}
	}
}

func TestComputeVolatility_PerTickerWindows(t *testing.T) {
	table := append(tableFromCloses("AAPL", closesFromReturns(syntheticReturns(8))),
		tableFromCloses("MSFT", closesFromReturns(syntheticReturns(8)))...)
	out := ComputeVolatility(table, 4)

	for i, r := range out {
		first := i == 0 || out[i].Ticker != out[i-1].Ticker
		if first && model.Defined(r.AnnVol) {
			t.Errorf("row %d (%s): window must not carry over between tickers", i, r.Ticker)
		}
	}
}

func TestComputeVolatility_AddsReturnsWhenMissing(t *testing.T) {
	table := tableFromCloses("X", closesFromReturns(syntheticReturns(6)))
	out := ComputeVolatility(table, 3)
	for i := 1; i < len(out); i++ {
		if !model.Defined(out[i].DailyReturn) {
			t.Errorf("row %d: expected daily_return to be filled", i)
		}
	}
}
