package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
)

// countryPayload mirrors the REST Countries v3.1 response shape for the
// fields the assistant reports.
type countryPayload struct {
	Name struct {
		Common string `json:"common"`
	} `json:"name"`
	Capital    []string                   `json:"capital"`
	Population int64                      `json:"population"`
	Region     string                     `json:"region"`
	Currencies map[string]json.RawMessage `json:"currencies"`
	Languages  map[string]string          `json:"languages"`
}

// CountryInfo looks up a country by its English name. The API returns a list
// of matches; the first one wins.
func (c *Client) CountryInfo(ctx context.Context, name string) CountryInfo {
	endpoint := fmt.Sprintf("%s/name/%s", c.countriesURL, url.PathEscape(name))

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return CountryInfo{Error: fmt.Sprintf("Connection error: %v", err)}
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return CountryInfo{Error: fmt.Sprintf("Connection error: %v", err)}
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return CountryInfo{Error: fmt.Sprintf("Error in API: %d", response.StatusCode)}
	}

	var matches []countryPayload
	if err := json.NewDecoder(io.LimitReader(response.Body, maxBodyBytes)).Decode(&matches); err != nil {
		return CountryInfo{Error: fmt.Sprintf("Connection error: %v", err)}
	}
	if len(matches) == 0 {
		return CountryInfo{Error: "Country not found"}
	}

	country := matches[0]
	info := CountryInfo{
		Success:    true,
		Name:       country.Name.Common,
		Capital:    "N/A",
		Population: country.Population,
		Region:     country.Region,
		Currency:   "N/A",
		Languages:  []string{},
	}
	if info.Region == "" {
		info.Region = "N/A"
	}
	if len(country.Capital) > 0 {
		info.Capital = country.Capital[0]
	}
	if len(country.Currencies) > 0 {
		info.Currency = firstSortedKey(country.Currencies)
	}
	if len(country.Languages) > 0 {
		info.Languages = sortedValues(country.Languages)
	}
	return info
}

// firstSortedKey picks the lexically first currency code so results are
// deterministic across map iteration orders.
func firstSortedKey(m map[string]json.RawMessage) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys[0]
}

func sortedValues(m map[string]string) []string {
	values := make([]string, 0, len(m))
	for _, v := range m {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}
