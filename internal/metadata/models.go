// Package metadata lists the Gemini models offered in the settings panel
// and their published prices, used for the per-fix cost estimate.
package metadata

import "strings"

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

type GeminiModel struct {
	ID               string
	Label            string
	InputPerMillion  float64
	OutputPerMillion float64
}

// GeminiModels are offered before the user loads the live model list.
var GeminiModels = []GeminiModel{
	{ID: "gemini-2.5-flash", Label: "Gemini 2.5 Flash", InputPerMillion: 0.30, OutputPerMillion: 2.50},
	{ID: "gemini-2.5-flash-lite", Label: "Gemini 2.5 Flash-Lite", InputPerMillion: 0.10, OutputPerMillion: 0.40},
	{ID: "gemini-2.5-pro", Label: "Gemini 2.5 Pro", InputPerMillion: 1.25, OutputPerMillion: 10.00},
	{ID: "gemini-3-flash-preview", Label: "Gemini 3 Flash (preview)", InputPerMillion: 0.50, OutputPerMillion: 3.00},
}

const (
	DefaultGeminiInputPerMillion  = 2.00
	DefaultGeminiOutputPerMillion = 12.00
)

func GeminiModelIDs() []string {
	ids := make([]string, 0, len(GeminiModels))
	for _, m := range GeminiModels {
		ids = append(ids, m.ID)
	}
	return ids
}

// NormalizeModel trims the "models/" resource prefix and falls back to
// DefaultModel for an empty value.
func NormalizeModel(id string) string {
	id = strings.TrimPrefix(strings.TrimSpace(id), "models/")
	if id == "" {
		return DefaultModel
	}
	return id
}

// GeminiPricing returns the known price for a model, or conservative
// defaults with ok=false.
func GeminiPricing(modelID string) (GeminiModel, bool) {
	id := NormalizeModel(modelID)
	for _, m := range GeminiModels {
		if m.ID == id {
			return m, true
		}
	}
	return GeminiModel{
		ID:               id,
		Label:            id,
		InputPerMillion:  DefaultGeminiInputPerMillion,
		OutputPerMillion: DefaultGeminiOutputPerMillion,
	}, false
}

// EstimateCost returns the USD cost of one request.
func EstimateCost(modelID string, inputTokens, outputTokens int32) float64 {
	m, _ := GeminiPricing(modelID)
	return float64(inputTokens)/1e6*m.InputPerMillion + float64(outputTokens)/1e6*m.OutputPerMillion
}
