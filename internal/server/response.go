package server

import (
	"MarketLens/internal/model"
	"MarketLens/internal/query"
	"MarketLens/internal/transform"
)

// The derived columns use NaN for "not defined", which encoding/json cannot
// emit. The wire types below carry them as pointers so they render as null.

type rowJSON struct {
	Date        string   `json:"date"`
	Ticker      string   `json:"ticker"`
	Open        float64  `json:"open"`
	High        float64  `json:"high"`
	Low         float64  `json:"low"`
	Close       float64  `json:"close"`
	Volume      int64    `json:"volume"`
	DailyReturn *float64 `json:"daily_return"`
	CumReturn   *float64 `json:"cum_return"`
	AnnVol      *float64 `json:"vol_ann"`
}

type summaryJSON struct {
	Ticker    string   `json:"ticker"`
	Date      string   `json:"date"`
	Close     float64  `json:"close"`
	CumReturn *float64 `json:"cum_return"`
	AnnVol    *float64 `json:"vol_ann"`
}

type corrJSON struct {
	Tickers []string     `json:"tickers"`
	Values  [][]*float64 `json:"values"`
}

type historyJSON struct {
	View        string        `json:"view"`
	Rows        []rowJSON     `json:"rows"`
	Sparkline   []rowJSON     `json:"sparkline"`
	Summaries   []summaryJSON `json:"summaries"`
	Correlation corrJSON      `json:"correlation"`
}

func optional(v float64) *float64 {
	if !model.Defined(v) {
		return nil
	}
	return &v
}

func toResponse(res *query.Result, spark model.Table) historyJSON {
	out := historyJSON{
		View:      string(res.View),
		Rows:      toRows(res.Table),
		Sparkline: toRows(spark),
	}
	out.Summaries = toSummaries(res.Summaries)
	out.Correlation = toCorr(res.Correlation)
	return out
}

func toRows(t model.Table) []rowJSON {
	out := make([]rowJSON, 0, len(t))
	for _, r := range t {
		out = append(out, rowJSON{
			Date:        r.Date.Format("2006-01-02"),
			Ticker:      r.Ticker,
			Open:        r.Open,
			High:        r.High,
			Low:         r.Low,
			Close:       r.Close,
			Volume:      r.Volume,
			DailyReturn: optional(r.DailyReturn),
			CumReturn:   optional(r.CumReturn),
			AnnVol:      optional(r.AnnVol),
		})
	}
	return out
}

func toSummaries(in []transform.Summary) []summaryJSON {
	out := make([]summaryJSON, 0, len(in))
	for _, s := range in {
		out = append(out, summaryJSON{
			Ticker:    s.Ticker,
			Date:      s.Date.Format("2006-01-02"),
			Close:     s.Close,
			CumReturn: optional(s.CumReturn),
			AnnVol:    optional(s.AnnVol),
		})
	}
	return out
}

func toCorr(m transform.CorrMatrix) corrJSON {
	out := corrJSON{Tickers: m.Tickers, Values: make([][]*float64, len(m.Values))}
	for i, row := range m.Values {
		out.Values[i] = make([]*float64, len(row))
		for j, v := range row {
			out.Values[i][j] = optional(v)
		}
	}
	return out
}
