package extractor

import (
	"strings"
	"testing"
)

func TestParseTripJSON(t *testing.T) {
	raw := `{"name":"Flight to London","destination":"London","startDate":"2025-06-15","endDate":"2025-06-22","flights":{"pnr":"XYZ","airline":"British Airways","flightNumber":"BA123"}}`

	trip, err := parseTripJSON(raw)
	if err != nil {
		t.Fatalf("parseTripJSON: %v", err)
	}
	if trip.Name != "Flight to London" {
		t.Errorf("name = %q", trip.Name)
	}
	if trip.Flights == nil || trip.Flights.PNR != "XYZ" {
		t.Errorf("flights = %+v", trip.Flights)
	}
}

func TestParseTripJSONFenced(t *testing.T) {
	raw := "```json\n{\"name\":\"City Break\",\"destination\":\"Paris\"}\n```"

	trip, err := parseTripJSON(raw)
	if err != nil {
		t.Fatalf("parseTripJSON: %v", err)
	}
	if trip.Destination != "Paris" {
		t.Errorf("destination = %q", trip.Destination)
	}
}

func TestParseTripJSONInvalid(t *testing.T) {
	for _, raw := range []string{"", "Sorry, I cannot help with that.", "{broken"} {
		if _, err := parseTripJSON(raw); err == nil {
			t.Errorf("parseTripJSON(%q): expected error", raw)
		}
	}
}

func TestParseTripJSONPartial(t *testing.T) {
	// Absent fields stay zero-valued; downstream supplies defaults
	trip, err := parseTripJSON(`{"name":"Mystery Trip"}`)
	if err != nil {
		t.Fatalf("parseTripJSON: %v", err)
	}
	if trip.StartDate != "" || trip.Flights != nil {
		t.Errorf("expected zero values, got %+v", trip)
	}
}

func TestTruncateInput(t *testing.T) {
	long := strings.Repeat("a", maxInputChars+500)
	if got := truncateInput(long); len(got) != maxInputChars {
		t.Errorf("len = %d, want %d", len(got), maxInputChars)
	}
	if got := truncateInput("short email"); got != "short email" {
		t.Errorf("short input must pass through, got %q", got)
	}
}

func TestNewGeminiExtractorDefaultModel(t *testing.T) {
	g := NewGeminiExtractor("key", "")
	if g.Model != defaultModel {
		t.Errorf("model = %q, want %q", g.Model, defaultModel)
	}
	g = NewGeminiExtractor("key", "gemini-1.5-pro")
	if g.Model != "gemini-1.5-pro" {
		t.Errorf("model = %q, want the override", g.Model)
	}
}
