// Package quotes talks to the external stock price API and caches results.
package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Quote is one symbol's current price as reported by the upstream API.
// IsStale marks values served from the cache after a failed refresh.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	ChangePercent float64   `json:"change_percent"`
	Currency      string    `json:"currency"`
	IsStale       bool      `json:"is_stale"`
	FetchedAt     time.Time `json:"fetched_at"`
}

// Client fetches quotes over HTTP.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

// NewClient builds a quote client for the given API base URL,
// e.g. "https://eodhd.com/api".
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// FetchQuote retrieves the real-time quote for one symbol.
//
//	GET {base}/real-time/{symbol}?fmt=json&api_token=KEY
//	{"code":"AAPL.US","close":227.52,"change_p":1.03}
func (c *Client) FetchQuote(ctx context.Context, symbol string) (*Quote, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol is empty")
	}
	addr := fmt.Sprintf("%s/real-time/%s?fmt=json&api_token=%s", c.BaseURL, symbol, c.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quote request for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote api status %d for %s", resp.StatusCode, symbol)
	}

	var payload struct {
		Code          string  `json:"code"`
		Close         float64 `json:"close"`
		ChangePercent float64 `json:"change_p"`
		Currency      string  `json:"currency"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("quote decode for %s: %w", symbol, err)
	}
	if payload.Close <= 0 {
		return nil, fmt.Errorf("quote api returned no price for %s", symbol)
	}

	cur := payload.Currency
	if cur == "" {
		cur = "USD"
	}
	return &Quote{
		Symbol:        symbol,
		Price:         payload.Close,
		ChangePercent: payload.ChangePercent,
		Currency:      cur,
		FetchedAt:     time.Now().UTC(),
	}, nil
}
