package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lcfern/converse/core/protocol"
	"github.com/lcfern/converse/lookup"
)

// CountryToolName is the name the model uses to invoke the country lookup.
const CountryToolName = "get_country_info"

// CountryTool returns the tool definition for country lookups.
func CountryTool() protocol.Tool {
	return protocol.Tool{
		Name: CountryToolName,
		Description: "Search for country information, including capital, population, " +
			"region, currency and languages. " +
			"Use when the user asks about countries, capitals, population of countries, " +
			"or geographic information. The country name must be searched in english.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"country_name": map[string]any{
					"type":        "string",
					"description": "Country name in english (ex: 'Brazil', 'United States', 'France')",
				},
			},
			"required": []string{"country_name"},
		},
	}
}

// CountryHandler adapts the country lookup collaborator to the registry.
// Lookup failures are formatted into the result content, never returned as
// Go errors, so they reach the model instead of aborting the turn.
func CountryHandler(client *lookup.Client) Handler {
	return func(ctx context.Context, raw json.RawMessage) (Result, error) {
		var args struct {
			CountryName string `json:"country_name"`
		}
		if err := json.Unmarshal(raw, &args); err != nil {
			return Result{Content: "invalid arguments: " + err.Error(), IsError: true}, nil
		}

		info := client.CountryInfo(ctx, args.CountryName)
		if !info.Success {
			return Result{
				Content: fmt.Sprintf("Erro ao buscar informações sobre %s: %s", args.CountryName, info.Error),
				IsError: true,
			}, nil
		}

		return Result{Content: FormatCountryInfo(info)}, nil
	}
}

// FormatCountryInfo renders a successful country lookup for display. The text
// before the first ":" doubles as the tool announcement label in the stream
// aggregator.
func FormatCountryInfo(info lookup.CountryInfo) string {
	languages := strings.Join(info.Languages, ", ")
	if languages == "" {
		languages = "N/A"
	}

	return fmt.Sprintf(`Informações sobre %s:
- Capital: %s
- População: %s
- Região: %s
- Moeda: %s
- Idiomas: %s`,
		info.Name, info.Capital, formatPopulation(info.Population),
		info.Region, info.Currency, languages)
}

// formatPopulation inserts thousands separators (212559417 -> "212,559,417").
func formatPopulation(n int64) string {
	digits := fmt.Sprintf("%d", n)
	if len(digits) <= 3 {
		return digits
	}

	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
