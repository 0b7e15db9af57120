package exchangerate

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.exchangerate-api.com/v4"

// Client talks to the exchangerate-api.com v4 API. The service publishes one
// document per base currency; we always fetch the USD document so that the
// returned rates are USD conversion multipliers, which is what the pricing
// resolver multiplies fallback USD prices by.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: defaultBaseURL,
	}
}

// NewClientWithBaseURL points the client at a different endpoint. Used in
// tests against httptest servers.
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient()
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

type latestResponse struct {
	Base  string             `json:"base"`
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

// LatestUSD fetches the full USD-based rate table.
func (c *Client) LatestUSD() (map[string]float64, error) {
	resp, err := c.httpClient.Get(c.baseURL + "/latest/USD")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("exchangerate: unexpected status %d", resp.StatusCode)
	}

	var body latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}
	if len(body.Rates) == 0 {
		return nil, fmt.Errorf("exchangerate: empty rate table")
	}
	return body.Rates, nil
}

// Rate returns the USD multiplier for a single currency code.
func (c *Client) Rate(code string) (float64, error) {
	rates, err := c.LatestUSD()
	if err != nil {
		return 0, err
	}
	rate, ok := rates[strings.ToUpper(code)]
	if !ok {
		return 0, fmt.Errorf("exchangerate: no rate for %q", code)
	}
	return rate, nil
}
