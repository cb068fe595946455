package symbols

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/UdayPandey01/Chartor-Market/internal/models"
)

func TestToVenueIDDerivation(t *testing.T) {
	assert.Equal(t, "cmt_btcusdt", ToVenueID(models.Asset{Symbol: "BTC"}))
	assert.Equal(t, "cmt_ethusdt", ToVenueID(models.Asset{Symbol: "ETH/USDT"}))
	assert.Equal(t, "cmt_dogeusdt", ToVenueID(models.Asset{Symbol: "doge"}))
}

func TestToVenueIDExplicitOverride(t *testing.T) {
	a := models.Asset{Symbol: "BTC", VenueSymbol: "cmt_btcusd"}
	assert.Equal(t, "cmt_btcusd", ToVenueID(a))
}

func TestToDisplay(t *testing.T) {
	assert.Equal(t, "BTC", ToDisplay("cmt_btcusdt"))
	assert.Equal(t, "SOL", ToDisplay("cmt_solusdt"))

	// Unprefixed input passes through untouched.
	assert.Equal(t, "BTCUSDT", ToDisplay("BTCUSDT"))
	assert.Equal(t, "", ToDisplay(""))
}

func TestRoundTrip(t *testing.T) {
	// For any display ticker without "/", toDisplay(toVenueId(T)) == upper(T).
	for _, ticker := range []string{"BTC", "ETH", "SOL", "DOGE", "XRP", "BNB", "ADA", "LTC", "pepe"} {
		venue := ToVenueID(models.Asset{Symbol: ticker})
		assert.Equalf(t, strings.ToUpper(ticker), ToDisplay(venue), "ticker %s", ticker)
	}
}

func TestPair(t *testing.T) {
	assert.Equal(t, "BTC/USDT", Pair("cmt_btcusdt"))
	assert.Equal(t, "weird", Pair("weird"))
}
