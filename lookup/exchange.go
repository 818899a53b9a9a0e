package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const maxBodyBytes = 4 << 20

type ratesPayload struct {
	Date  string             `json:"date"`
	Rates map[string]float64 `json:"rates"`
}

// ExchangeRate looks up the rate between two currencies. Codes are
// upper-cased before the call and echoed upper-cased in the result.
func (c *Client) ExchangeRate(ctx context.Context, base, target string) ExchangeRate {
	base = strings.ToUpper(base)
	target = strings.ToUpper(target)

	endpoint := fmt.Sprintf("%s/latest/%s", c.exchangeURL, base)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return ExchangeRate{Error: fmt.Sprintf("Connection error: %v", err)}
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return ExchangeRate{Error: fmt.Sprintf("Connection error: %v", err)}
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return ExchangeRate{Error: fmt.Sprintf("Error in API: %d", response.StatusCode)}
	}

	var payload ratesPayload
	if err := json.NewDecoder(io.LimitReader(response.Body, maxBodyBytes)).Decode(&payload); err != nil {
		return ExchangeRate{Error: fmt.Sprintf("Connection error: %v", err)}
	}

	rate, exists := payload.Rates[target]
	if !exists {
		return ExchangeRate{Error: fmt.Sprintf("Currency %s not found", target)}
	}

	return ExchangeRate{
		Success:        true,
		BaseCurrency:   base,
		TargetCurrency: target,
		Rate:           rate,
		Date:           payload.Date,
	}
}
