package collector

import (
	"context"

	"MarketLens/internal/model"
)

// Fetcher defines the interface for fetching historical market data.
type Fetcher interface {
	// FetchHistory returns OHLCV bars for one symbol over the lookback
	// period ("1mo", "6mo", "1y", "2y") at the given interval ("1d",
	// "1wk", "1mo"), sorted by date ascending.
	FetchHistory(ctx context.Context, symbol, period, interval string) ([]model.Bar, error)
	Name() string
}
