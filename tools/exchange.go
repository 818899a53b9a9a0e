package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lcfern/converse/core/protocol"
	"github.com/lcfern/converse/lookup"
)

// ExchangeToolName is the name the model uses to invoke the rate lookup.
const ExchangeToolName = "get_exchange_rate"

// ExchangeTool returns the tool definition for exchange rate lookups.
func ExchangeTool() protocol.Tool {
	return protocol.Tool{
		Name: ExchangeToolName,
		Description: "Search for current exchange rate between two currencies. " +
			"Use when the user asks about currency conversion, exchange rate, " +
			"or value of a currency in relation to another.",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"base_currency": map[string]any{
					"type":        "string",
					"description": "Base currency code (ex: 'USD', 'BRL', 'EUR')",
				},
				"target_currency": map[string]any{
					"type":        "string",
					"description": "Target currency code (ex: 'BRL', 'USD', 'EUR')",
				},
			},
			"required": []string{"base_currency", "target_currency"},
		},
	}
}

// ExchangeHandler adapts the exchange rate collaborator to the registry.
func ExchangeHandler(client *lookup.Client) Handler {
	return func(ctx context.Context, raw json.RawMessage) (Result, error) {
		var args struct {
			BaseCurrency   string `json:"base_currency"`
			TargetCurrency string `json:"target_currency"`
		}
		if err := json.Unmarshal(raw, &args); err != nil {
			return Result{Content: "invalid arguments: " + err.Error(), IsError: true}, nil
		}

		rate := client.ExchangeRate(ctx, args.BaseCurrency, args.TargetCurrency)
		if !rate.Success {
			return Result{
				Content: fmt.Sprintf("Erro ao buscar taxa de câmbio: %s", rate.Error),
				IsError: true,
			}, nil
		}

		return Result{Content: FormatExchangeRate(rate)}, nil
	}
}

// FormatExchangeRate renders a successful rate lookup for display, with the
// rate fixed at 4 decimal places.
func FormatExchangeRate(rate lookup.ExchangeRate) string {
	return fmt.Sprintf(`Taxa de câmbio:
- %s → %s
- Taxa: 1 %s = %.4f %s
- Data: %s`,
		rate.BaseCurrency, rate.TargetCurrency,
		rate.BaseCurrency, rate.Rate, rate.TargetCurrency,
		rate.Date)
}

// RegisterLookupTools registers both lookup tools against the global registry.
func RegisterLookupTools(client *lookup.Client) error {
	if err := Register(CountryTool(), CountryHandler(client)); err != nil {
		return err
	}
	return Register(ExchangeTool(), ExchangeHandler(client))
}
