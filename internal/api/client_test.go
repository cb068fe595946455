package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/UdayPandey01/Chartor-Market/internal/config"
	"github.com/UdayPandey01/Chartor-Market/internal/terminal"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	log := logrus.New()
	log.SetOutput(io.Discard)

	return NewClient(config.BackendConfig{
		BaseURL:           srv.URL,
		RequestTimeoutSec: 2,
		RequestsPerSecond: 1000,
	}, log)
}

func TestWatchlistParsing(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/watchlist", r.URL.Path)
		io.WriteString(w, `[
			{"symbol":"BTC/USDT","raw_symbol":"cmt_btcusdt","price":97250.5,"change":2.4,"volume24h":1.2e9,"high24h":98000,"low24h":95000},
			{"raw_symbol":"cmt_ethusdt","price":"not a number"}
		]`)
	})

	assets, err := client.Watchlist(context.Background())
	require.NoError(t, err)
	require.Len(t, assets, 2)

	assert.Equal(t, "BTC", assets[0].Symbol)
	assert.Equal(t, "BTC/USDT", assets[0].Pair)
	assert.Equal(t, "cmt_btcusdt", assets[0].VenueSymbol)
	assert.Equal(t, 97250.5, assets[0].Price)

	// Missing display pair falls back to the venue-derived one; the junk
	// price coerces to zero instead of failing the whole batch.
	assert.Equal(t, "ETH", assets[1].Symbol)
	assert.Equal(t, "ETH/USDT", assets[1].Pair)
	assert.Equal(t, 0.0, assets[1].Price)
}

func TestCandlesQueryAndParsing(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "cmt_btcusdt", r.URL.Query().Get("symbol"))
		assert.Equal(t, "15m", r.URL.Query().Get("interval"))
		io.WriteString(w, `[{"time":1700000000,"open":1,"high":2,"low":0.5,"close":1.5}]`)
	})

	candles, err := client.Candles(context.Background(), "cmt_btcusdt", "15m")
	require.NoError(t, err)
	require.Len(t, candles, 1)
	assert.Equal(t, int64(1700000000), candles[0].Time)
	assert.Equal(t, 1.5, candles[0].Close)
}

func TestPositionsRaggedFields(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"status":"success","positions":[
			{"id":1,"symbol":"cmt_btcusdt","side":"buy","size":10,"unrealized_pnl":12.5},
			{"id":2,"symbol":"cmt_ethusdt","size":5,"unrealizePnl":-3.1}
		]}`)
	})

	positions, err := client.Positions(context.Background())
	require.NoError(t, err)
	require.Len(t, positions, 2)
	assert.Equal(t, 12.5, positions[0].UnrealizedPnL)
	assert.Equal(t, -3.1, positions[1].UnrealizedPnL)
	assert.Equal(t, "buy", positions[1].Side, "missing side coerces to buy")
}

func TestTradeSuccess(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "buy", r.URL.Query().Get("action"))
		assert.Equal(t, "cmt_btcusdt", r.URL.Query().Get("symbol"))
		io.WriteString(w, `{"status":"success","msg":"Order Placed: 42","order_id":"42","price":97000.1}`)
	})

	result, err := client.ExecuteTrade(context.Background(), "buy", "cmt_btcusdt")
	require.NoError(t, err)
	assert.True(t, result.OK())
	assert.Equal(t, "42", result.OrderID)
}

func TestTradeWellFormedRejection(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"status":"error","msg":"insufficient margin"}`)
	})

	result, err := client.ExecuteTrade(context.Background(), "sell", "cmt_btcusdt")
	require.NoError(t, err, "a rejection is not a transport failure")
	assert.False(t, result.OK())
	assert.Equal(t, "insufficient margin", result.Msg)
}

func TestForceClose(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/force-close", r.URL.Path)
		io.WriteString(w, `{"status":"success","msg":"Force close completed: 3 positions closed","closed":3}`)
	})

	result, err := client.ForceClose(context.Background())
	require.NoError(t, err)
	assert.True(t, result.OK())
	assert.Equal(t, 3, result.Closed)
}

func TestLogsCategoryMapping(t *testing.T) {
	// The backend serves logs newest-first.
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		io.WriteString(w, `[
			{"id":"8","timestamp":"bogus","type":"weird","message":"???"},
			{"id":"7","timestamp":"2025-08-30 12:00:00","type":"trade","message":"filled"}
		]`)
	})

	entries, err := client.Logs(context.Background(), 20)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// The batch comes back oldest-first, ready for the terminal merge.
	assert.Equal(t, "7", entries[0].ID)
	assert.Equal(t, terminal.CategoryTrade, entries[0].Category)
	assert.False(t, entries[0].Timestamp.IsZero())

	// Unknown type and unparseable timestamp degrade, never fail.
	assert.Equal(t, "8", entries[1].ID)
	assert.Equal(t, terminal.CategorySystem, entries[1].Category)
	assert.True(t, entries[1].Timestamp.IsZero())
}

func TestLogsReversedToAscendingTime(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `[
			{"id":"3","timestamp":"2025-08-30 12:02:00","type":"system","message":"newest"},
			{"id":"2","timestamp":"2025-08-30 12:01:00","type":"system","message":"middle"},
			{"id":"1","timestamp":"2025-08-30 12:00:00","type":"system","message":"oldest"}
		]`)
	})

	entries, err := client.Logs(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "1", entries[0].ID)
	assert.Equal(t, "3", entries[2].ID)
	assert.True(t, entries[0].Timestamp.Before(entries[2].Timestamp))
}

func TestRiskMetricsThinHistoryIsEmptyState(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"status":"error","msg":"Need at least 5 trades to calculate metrics","metrics":null}`)
	})

	metrics, err := client.RiskMetrics(context.Background())
	require.NoError(t, err)
	assert.Nil(t, metrics)
}

func TestRiskMetricsParsing(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"status":"success","metrics":{"totalTrades":12,"winRate":58.3,"sharpeRatio":1.4,"maxDrawdown":-7.2}}`)
	})

	metrics, err := client.RiskMetrics(context.Background())
	require.NoError(t, err)
	require.NotNil(t, metrics)
	assert.Equal(t, 12, metrics.TotalTrades)
	assert.Equal(t, 58.3, metrics.WinRate)
	assert.Equal(t, -7.2, metrics.MaxDrawdown)
}

func TestTradeSettingsDefaults(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{}`)
	})

	settings, err := client.TradeSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cmt_btcusdt", settings.CurrentSymbol)
	assert.False(t, settings.AutoTrading)
}

func TestAIAnalysisNull(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `null`)
	})

	analysis, err := client.AIAnalysis(context.Background(), "cmt_btcusdt")
	require.NoError(t, err)
	assert.Nil(t, analysis)
}

func TestAIAnalysisUnknownDefaults(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"symbol":"cmt_btcusdt","confidence":70}`)
	})

	analysis, err := client.AIAnalysis(context.Background(), "")
	require.NoError(t, err)
	require.NotNil(t, analysis)
	assert.Equal(t, "UNKNOWN", analysis.Decision)
	assert.Equal(t, "UNKNOWN", analysis.Trend)
}

func TestNon200IsError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Watchlist(context.Background())
	assert.Error(t, err)
}

func TestToggleStrategy(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/strategies/7/toggle", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"is_active":true}`, string(body))
		io.WriteString(w, `{"status":"success"}`)
	})

	assert.NoError(t, client.ToggleStrategy(context.Background(), 7, true))
}

func TestCreateStrategyRejection(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/create-strategy", r.URL.Path)
		io.WriteString(w, `{"status":"error","msg":"prompt too vague"}`)
	})

	err := client.CreateStrategy(context.Background(), "dip buyer", "buy every dip", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prompt too vague")
}

func TestChat(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), "what is BTC doing")
		io.WriteString(w, `{"response":"BTC is at $97,000, up 2.4% today."}`)
	})

	reply, err := client.Chat(context.Background(), "what is BTC doing")
	require.NoError(t, err)
	assert.Contains(t, reply, "$97,000")
}
