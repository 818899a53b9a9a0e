// Package lookup implements the two external lookup collaborators: country
// facts from the REST Countries API and exchange rates from exchangerate-api.
//
// Both calls fail closed: HTTP failures, empty result sets, and missing keys
// all produce a result with Success=false and a human-readable Error; they
// never return a Go error for lookup-level failures.
package lookup

import (
	"net/http"
	"time"
)

const (
	defaultCountriesURL = "https://restcountries.com/v3.1"
	defaultExchangeURL  = "https://api.exchangerate-api.com/v4"
	defaultTimeout      = 10 * time.Second
)

// CountryInfo is the normalized result of a country lookup. When a field is
// absent in the upstream payload it falls back to "N/A" (or an empty language
// list) with Success still true.
type CountryInfo struct {
	Success    bool
	Name       string
	Capital    string
	Population int64
	Region     string
	Currency   string
	Languages  []string
	Error      string
}

// ExchangeRate is the normalized result of a currency pair lookup. Currency
// codes are upper-cased both before the call and in the result.
type ExchangeRate struct {
	Success        bool
	BaseCurrency   string
	TargetCurrency string
	Rate           float64
	Date           string
	Error          string
}

// Client performs the lookup HTTP calls. Base URLs are configurable so tests
// can point at local servers.
type Client struct {
	httpClient   *http.Client
	countriesURL string
	exchangeURL  string
}

// Option configures a Client.
type Option func(*Client)

// WithCountriesURL overrides the REST Countries base URL.
func WithCountriesURL(url string) Option {
	return func(c *Client) { c.countriesURL = url }
}

// WithExchangeURL overrides the exchange rate API base URL.
func WithExchangeURL(url string) Option {
	return func(c *Client) { c.exchangeURL = url }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// NewClient creates a Client with production defaults.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient:   &http.Client{Timeout: defaultTimeout},
		countriesURL: defaultCountriesURL,
		exchangeURL:  defaultExchangeURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
