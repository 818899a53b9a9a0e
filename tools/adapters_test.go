package tools

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lcfern/converse/core/protocol"
	"github.com/lcfern/converse/lookup"
)

func TestFormatCountryInfo(t *testing.T) {
	got := FormatCountryInfo(lookup.CountryInfo{
		Success:    true,
		Name:       "Brazil",
		Capital:    "Brasília",
		Population: 212559417,
		Region:     "Americas",
		Currency:   "BRL",
		Languages:  []string{"Portuguese"},
	})

	wants := []string{
		"Informações sobre Brazil:",
		"- Capital: Brasília",
		"- População: 212,559,417",
		"- Região: Americas",
		"- Moeda: BRL",
		"- Idiomas: Portuguese",
	}
	for _, want := range wants {
		if !strings.Contains(got, want) {
			t.Errorf("formatted output missing %q:\n%s", want, got)
		}
	}
}

func TestFormatCountryInfo_NoLanguages(t *testing.T) {
	got := FormatCountryInfo(lookup.CountryInfo{Success: true, Name: "Atlantis"})
	if !strings.Contains(got, "- Idiomas: N/A") {
		t.Errorf("empty language list should render N/A:\n%s", got)
	}
}

func TestFormatPopulation(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{212559417, "212,559,417"},
	}

	for _, tt := range tests {
		if got := formatPopulation(tt.in); got != tt.want {
			t.Errorf("formatPopulation(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatExchangeRate(t *testing.T) {
	got := FormatExchangeRate(lookup.ExchangeRate{
		Success:        true,
		BaseCurrency:   "USD",
		TargetCurrency: "BRL",
		Rate:           5.43219,
		Date:           "2026-08-29",
	})

	if !strings.HasPrefix(got, "Taxa de câmbio:") {
		t.Errorf("announcement label prefix missing:\n%s", got)
	}
	if !strings.Contains(got, "1 USD = 5.4322 BRL") {
		t.Errorf("rate should be formatted to 4 decimal places:\n%s", got)
	}
	if !strings.Contains(got, "- Data: 2026-08-29") {
		t.Errorf("date line missing:\n%s", got)
	}
}

func TestCountryHandler_LookupFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"message":"Not Found"}`)
	}))
	defer server.Close()

	handler := CountryHandler(lookup.NewClient(lookup.WithCountriesURL(server.URL)))
	result, err := handler(context.Background(), json.RawMessage(`{"country_name":"Nowhere"}`))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if !result.IsError {
		t.Error("lookup failure should set IsError")
	}
	want := "Erro ao buscar informações sobre Nowhere: Error in API: 404"
	if result.Content != want {
		t.Errorf("got %q, want %q", result.Content, want)
	}
}

func TestExchangeHandler_LookupFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"date":"2026-08-29","rates":{}}`)
	}))
	defer server.Close()

	handler := ExchangeHandler(lookup.NewClient(lookup.WithExchangeURL(server.URL)))
	result, err := handler(context.Background(), json.RawMessage(`{"base_currency":"usd","target_currency":"xyz"}`))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if !result.IsError {
		t.Error("lookup failure should set IsError")
	}
	if result.Content != "Erro ao buscar taxa de câmbio: Currency XYZ not found" {
		t.Errorf("got %q", result.Content)
	}
}

func TestCountryHandler_BadArguments(t *testing.T) {
	handler := CountryHandler(lookup.NewClient())
	result, err := handler(context.Background(), json.RawMessage(`{bad`))
	if err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !result.IsError {
		t.Error("malformed arguments should set IsError")
	}
}

func TestToolDefinitions_DeclareRequiredParameters(t *testing.T) {
	tests := []struct {
		name     string
		tool     protocol.Tool
		required []string
	}{
		{"country", CountryTool(), []string{"country_name"}},
		{"exchange", ExchangeTool(), []string{"base_currency", "target_currency"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			required, _ := tt.tool.Parameters["required"].([]string)
			if len(required) != len(tt.required) {
				t.Fatalf("got required %v, want %v", required, tt.required)
			}
			for i, name := range tt.required {
				if required[i] != name {
					t.Errorf("required[%d] = %q, want %q", i, required[i], name)
				}
			}
		})
	}
}
