package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/UdayPandey01/Chartor-Market/internal/config"
)

// NewClient creates a backend client for the configured base URL.
func NewClient(cfg config.BackendConfig, log *logrus.Logger) *Client {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 10
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpc:   &http.Client{Timeout: cfg.RequestTimeout()},
		limiter: rate.NewLimiter(rate.Limit(rps), 5),
		log:     log,
	}
}

// get performs a GET against path with optional query params and returns
// the raw body.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodGet, path, query, "", nil)
}

// postQuery performs a POST whose parameters travel in the query string,
// matching how the backend reads trade and settings parameters.
func (c *Client) postQuery(ctx context.Context, path string, query url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodPost, path, query, "application/x-www-form-urlencoded", nil)
}

// postJSON performs a POST with a JSON body.
func (c *Client) postJSON(ctx context.Context, path string, body interface{}) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, nil, "application/json", data)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, contentType string, body []byte) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	c.log.WithFields(logrus.Fields{"method": method, "path": path}).Debug("backend request")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.log.WithFields(logrus.Fields{"path": path, "status": resp.StatusCode}).Warn("backend returned non-200")
		return nil, fmt.Errorf("backend returned %s", resp.Status)
	}

	return data, nil
}
