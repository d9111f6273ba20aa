package metadata

import (
	"math"
	"testing"
)

func TestGeminiPricing_Default(t *testing.T) {
	m, ok := GeminiPricing("unknown-model")
	if ok {
		t.Fatalf("expected default pricing for unknown model")
	}
	if m.InputPerMillion != DefaultGeminiInputPerMillion || m.OutputPerMillion != DefaultGeminiOutputPerMillion {
		t.Fatalf("unexpected default gemini pricing: %+v", m)
	}
}

func TestGeminiPricing_PrefixedID(t *testing.T) {
	m, ok := GeminiPricing("models/gemini-2.5-flash")
	if !ok || m.ID != "gemini-2.5-flash" {
		t.Fatalf("GeminiPricing = (%+v, %v)", m, ok)
	}
}

func TestNormalizeModel(t *testing.T) {
	tests := map[string]string{
		"":                        DefaultModel,
		"  ":                      DefaultModel,
		"models/gemini-2.5-pro":   "gemini-2.5-pro",
		" gemini-2.5-flash-lite ": "gemini-2.5-flash-lite",
	}
	for in, want := range tests {
		if got := NormalizeModel(in); got != want {
			t.Errorf("NormalizeModel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDefaultModelIsListed(t *testing.T) {
	for _, id := range GeminiModelIDs() {
		if id == DefaultModel {
			return
		}
	}
	t.Fatalf("DefaultModel %q missing from GeminiModels", DefaultModel)
}

func TestEstimateCost(t *testing.T) {
	got := EstimateCost("gemini-2.5-flash", 1_000_000, 1_000_000)
	if math.Abs(got-2.80) > 1e-9 {
		t.Fatalf("EstimateCost = %v, want 2.80", got)
	}
}
