package geoip

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "http://ip-api.com/json"

// Client resolves an IP address to country and currency using ip-api.com.
// The service is free-tier and unreliable; callers must treat every lookup
// as best-effort and keep a fallback.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient() *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		baseURL: defaultBaseURL,
	}
}

func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient()
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

type Info struct {
	Status      string `json:"status"`
	Query       string `json:"query"`
	Country     string `json:"country"`
	CountryCode string `json:"countryCode"`
	City        string `json:"city"`
	Currency    string `json:"currency"`
}

// Lookup resolves ip. Loopback and private addresses never reach the
// network; they return an error so callers fall back immediately.
func (c *Client) Lookup(ip string) (*Info, error) {
	if !routable(ip) {
		return nil, fmt.Errorf("geoip: %q is not a routable address", ip)
	}

	resp, err := c.httpClient.Get(c.baseURL + "/" + ip + "?fields=status,query,country,countryCode,city,currency")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geoip: unexpected status %d", resp.StatusCode)
	}

	var info Info
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, err
	}
	if info.Status != "success" {
		return nil, fmt.Errorf("geoip: lookup failed for %q", ip)
	}
	return &info, nil
}

func routable(ip string) bool {
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return false
	}
	return !parsed.IsLoopback() && !parsed.IsPrivate() && !parsed.IsUnspecified()
}
