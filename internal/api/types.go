package api

import (
	"net/http"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Client talks to the Chartor API server. All endpoints hang off one
// configurable base URL; every response is treated as untrusted and coerced
// field by field.
type Client struct {
	baseURL string
	httpc   *http.Client
	limiter *rate.Limiter
	log     *logrus.Logger
}

// TradeResult is the backend's answer to a trade command. A Status other
// than "success" is a well-formed rejection, not a transport failure.
type TradeResult struct {
	Status  string
	Msg     string
	OrderID string
	Price   float64
}

// OK reports whether the backend accepted the trade.
func (r *TradeResult) OK() bool {
	return r.Status == "success"
}

// ForceCloseResult is the backend's answer to a liquidate-all command.
// Closed is the count of positions closed as reported by the backend.
type ForceCloseResult struct {
	Status string
	Msg    string
	Closed int
}

// OK reports whether the liquidation succeeded.
func (r *ForceCloseResult) OK() bool {
	return r.Status == "success"
}
