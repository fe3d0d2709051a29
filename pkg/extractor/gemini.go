// Package extractor turns unstructured email text into structured trip
// fields with a hosted Gemini completion call.
package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/tripweaver/server/pkg/trips"
)

const (
	defaultModel = "gemini-2.0-flash"

	// maxInputChars bounds the email text sent to the model so a huge
	// forwarded thread cannot blow up cost or latency.
	maxInputChars = 50000
)

const extractionPrompt = `You are a travel assistant API.
Analyze the email below and extract the trip details.

Respond with a single JSON object of this exact shape:
{
  "name": "Trip name, e.g. Flight to London",
  "destination": "City, Country",
  "startDate": "YYYY-MM-DD",
  "endDate": "YYYY-MM-DD",
  "flights": { "pnr": "string", "airline": "string", "flightNumber": "string" }
}

Omit fields you cannot determine. Never invent data.

Email:
`

// GeminiExtractor calls the Gemini API with a fixed extraction prompt in
// strict-JSON response mode. One attempt per message, no retries.
type GeminiExtractor struct {
	APIKey string
	Model  string
}

func NewGeminiExtractor(apiKey, model string) *GeminiExtractor {
	if model == "" {
		model = defaultModel
	}
	return &GeminiExtractor{APIKey: apiKey, Model: model}
}

func (g *GeminiExtractor) ExtractTrip(ctx context.Context, text string) (*trips.ExtractedTrip, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(g.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	defer client.Close()

	model := client.GenerativeModel(g.Model)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(extractionPrompt+truncateInput(text)))
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}

	raw, err := responseText(resp)
	if err != nil {
		return nil, err
	}
	return parseTripJSON(raw)
}

func truncateInput(s string) string {
	if len(s) <= maxInputChars {
		return s
	}
	return s[:maxInputChars]
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no content generated")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}

// parseTripJSON tolerates markdown fences some models still emit around
// the object even in JSON mode.
func parseTripJSON(raw string) (*trips.ExtractedTrip, error) {
	cleaned := strings.TrimSpace(raw)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var trip trips.ExtractedTrip
	if err := json.Unmarshal([]byte(cleaned), &trip); err != nil {
		return nil, fmt.Errorf("response is not valid trip JSON: %w", err)
	}
	return &trip, nil
}
