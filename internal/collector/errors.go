package collector

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedPayload indicates the provider response could not be normalized
// into OHLCV bars (missing quote arrays, mismatched lengths). It is a
// per-ticker failure: the ticker is dropped and the fetch of the remaining
// tickers continues.
var ErrMalformedPayload = errors.New("malformed provider payload")

// NoDataError is returned when every requested ticker yielded zero rows.
// Downstream code assumes at least one row, so this is a hard stop rather
// than an empty table.
type NoDataError struct {
	Tickers []string
}

func (e *NoDataError) Error() string {
	return fmt.Sprintf("no data returned for any ticker: %s", strings.Join(e.Tickers, ","))
}
