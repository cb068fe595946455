package symbols

import (
	"strings"

	"github.com/UdayPandey01/Chartor-Market/internal/models"
)

// Weex futures symbol convention: "cmt_" + lowercase base + "usdt".
const (
	venuePrefix = "cmt_"
	quoteSuffix = "usdt"
)

// ToVenueID returns the venue identifier for an asset. An explicit
// VenueSymbol always wins; otherwise the id is derived from the display
// ticker by naming convention. The derivation is best-effort - it matches
// the backend's symbol catalog for every USDT-quoted pair but is not a
// registry lookup.
func ToVenueID(a models.Asset) string {
	if a.VenueSymbol != "" {
		return a.VenueSymbol
	}
	base := a.Symbol
	if i := strings.Index(base, "/"); i >= 0 {
		base = base[:i]
	}
	return venuePrefix + strings.ToLower(base) + quoteSuffix
}

// ToDisplay converts a venue identifier back to a display ticker
// ("cmt_btcusdt" -> "BTC"). Input that does not carry the venue prefix
// passes through unchanged.
func ToDisplay(venueID string) string {
	if !strings.HasPrefix(venueID, venuePrefix) {
		return venueID
	}
	s := strings.TrimPrefix(venueID, venuePrefix)
	s = strings.TrimSuffix(s, quoteSuffix)
	return strings.ToUpper(s)
}

// Pair returns the display pair for a venue identifier
// ("cmt_btcusdt" -> "BTC/USDT"). Unprefixed input passes through.
func Pair(venueID string) string {
	if !strings.HasPrefix(venueID, venuePrefix) {
		return venueID
	}
	return ToDisplay(venueID) + "/USDT"
}
