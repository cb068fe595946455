// Package stream maintains an optional live quote websocket against
// Binance's miniTicker streams. It only tightens watchlist price freshness
// between polls; the watchlist feed stays the source of truth for 24h stats.
package stream

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// QuoteHandler receives live last prices keyed by venue symbol.
type QuoteHandler func(venueSymbol string, price float64)

// Client is a self-reconnecting miniTicker subscriber.
type Client struct {
	url     string
	symbols []string
	handler QuoteHandler
	log     *logrus.Logger

	mu      sync.Mutex
	writeMu sync.Mutex
	conn    *websocket.Conn
	done    chan struct{}
	closed  bool
}

// NewClient creates a quote stream client. venueSymbols use the backend's
// venue ids (cmt_btcusdt); they are translated to exchange stream names.
func NewClient(url string, venueSymbols []string, handler QuoteHandler, log *logrus.Logger) *Client {
	return &Client{
		url:     url,
		symbols: venueSymbols,
		handler: handler,
		log:     log,
		done:    make(chan struct{}),
	}
}

// Connect dials the stream and starts the read loop. Failures reconnect in
// the background; the stream is best-effort and never blocks the dashboard.
func (c *Client) Connect() {
	go c.run()
}

func (c *Client) run() {
	for {
		select {
		case <-c.done:
			return
		default:
		}

		if err := c.connectOnce(); err != nil {
			c.log.WithError(err).Warn("quote stream disconnected, retrying")
		}

		select {
		case <-c.done:
			return
		case <-time.After(5 * time.Second):
		}
	}
}

func (c *Client) connectOnce() error {
	conn, _, err := websocket.DefaultDialer.Dial(c.url, nil)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		conn.Close()
		return nil
	}
	c.conn = conn
	c.mu.Unlock()

	if err := c.subscribe(conn); err != nil {
		conn.Close()
		return err
	}

	c.log.WithField("streams", len(c.symbols)).Info("quote stream connected")

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			conn.Close()
			return err
		}
		c.dispatch(raw)
	}
}

// SetSymbols replaces the subscription set, typically after a watchlist
// poll widens it beyond the startup default. An unchanged set is a no-op;
// a live connection is re-subscribed in place.
func (c *Client) SetSymbols(venueSymbols []string) {
	c.mu.Lock()
	if equalSymbols(c.symbols, venueSymbols) || c.closed {
		c.mu.Unlock()
		return
	}
	c.symbols = venueSymbols
	conn := c.conn
	c.mu.Unlock()

	if conn == nil {
		return
	}
	if err := c.subscribe(conn); err != nil {
		// The read loop will notice the broken connection and reconnect
		// with the new set.
		c.log.WithError(err).Warn("quote stream resubscribe failed")
	}
}

func equalSymbols(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (c *Client) subscribe(conn *websocket.Conn) error {
	c.mu.Lock()
	symbols := append([]string(nil), c.symbols...)
	c.mu.Unlock()

	params := make([]string, 0, len(symbols))
	for _, venue := range symbols {
		pair := strings.TrimPrefix(strings.ToLower(venue), "cmt_")
		params = append(params, pair+"@miniTicker")
	}

	payload := map[string]interface{}{
		"method": "SUBSCRIBE",
		"params": params,
		"id":     time.Now().Unix(),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, data)
}

type miniTicker struct {
	Event  string `json:"e"`
	Symbol string `json:"s"`
	Close  string `json:"c"`
}

func (c *Client) dispatch(raw []byte) {
	var tick miniTicker
	if err := json.Unmarshal(raw, &tick); err != nil {
		return
	}
	if tick.Event != "24hrMiniTicker" || tick.Symbol == "" {
		return
	}

	price, err := parsePrice(tick.Close)
	if err != nil {
		return
	}

	venue := "cmt_" + strings.ToLower(tick.Symbol)
	c.handler(venue, price)
}

// Close stops the stream. No handler fires afterwards for new messages;
// safe to call more than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
	if c.conn != nil {
		c.conn.Close()
	}
}
