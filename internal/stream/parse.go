package stream

import (
	"fmt"
	"strconv"
)

// parsePrice converts the exchange's string-encoded price. Zero or negative
// prices are dropped so a glitched tick cannot blank out a quote.
func parsePrice(s string) (float64, error) {
	price, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bad price %q: %w", s, err)
	}
	if price <= 0 {
		return 0, fmt.Errorf("non-positive price %q", s)
	}
	return price, nil
}
