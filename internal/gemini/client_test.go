package gemini

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/oukeidos/typoduck/internal/apperrors"
)

func TestExtractResponseText(t *testing.T) {
	t.Run("NilResponse", func(t *testing.T) {
		_, err := extractResponseText(nil)
		if err == nil || err.Error() != "no response received from Gemini" {
			t.Fatalf("expected nil response error, got: %v", err)
		}
	})

	t.Run("EmptyCandidates", func(t *testing.T) {
		_, err := extractResponseText(&genai.GenerateContentResponse{})
		if err == nil || err.Error() != "no candidates returned from Gemini" {
			t.Fatalf("expected empty candidates error, got: %v", err)
		}
	})

	t.Run("NonTextParts", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{
				{Content: &genai.Content{Parts: []genai.Part{
					genai.Blob{MIMEType: "application/octet-stream", Data: []byte{0x01}},
				}}},
			},
		}
		_, err := extractResponseText(resp)
		if err == nil || err.Error() != "no text parts found in Gemini response" {
			t.Fatalf("expected no text parts error, got: %v", err)
		}
	})

	t.Run("SkipsEmptyCandidate", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{
				{Content: nil},
				{Content: &genai.Content{Parts: []genai.Part{
					genai.Text(`{"fixed_text":`),
					genai.Text(`"the"}`),
				}}},
			},
		}
		text, err := extractResponseText(resp)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if text != `{"fixed_text":"the"}` {
			t.Fatalf("expected concatenated text, got: %q", text)
		}
	})
}

func TestParseFixedText(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		want       string
		structured bool
	}{
		{"Structured", `{"fixed_text":"Hello world"}`, "Hello world", true},
		{"StructuredWithSpace", "\n {\"fixed_text\":\"a\\nb\"} \n", "a\nb", true},
		{"RawFallback", "Hello world", "Hello world", false},
		{"WrongField", `{"text":"x"}`, `{"text":"x"}`, false},
		{"EmptyField", `{"fixed_text": ""}`, "", true},
		{"NullField", `{"fixed_text":null}`, `{"fixed_text":null}`, false},
		{"NonStringField", `{"fixed_text":42}`, `{"fixed_text":42}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, structured := parseFixedText(tt.in)
			if got != tt.want || structured != tt.structured {
				t.Fatalf("parseFixedText(%q) = (%q, %v), want (%q, %v)", tt.in, got, structured, tt.want, tt.structured)
			}
		})
	}
}

func TestFilterModels(t *testing.T) {
	infos := []*genai.ModelInfo{
		{Name: "models/gemini-2.5-pro", SupportedGenerationMethods: []string{"generateContent", "countTokens"}},
		{Name: "models/embedding-001", SupportedGenerationMethods: []string{"embedContent"}},
		{Name: "models/gemini-embedding-exp", SupportedGenerationMethods: []string{"embedContent"}},
		{Name: "models/gemini-2.5-flash", SupportedGenerationMethods: []string{"generateContent"}},
		{Name: "models/gemma-3-27b-it", SupportedGenerationMethods: []string{"generateContent"}},
		{Name: "models/gemini-2.5-flash", SupportedGenerationMethods: []string{"generateContent"}},
		nil,
	}
	got := filterModels(infos)
	want := []string{"gemini-2.5-flash", "gemini-2.5-pro"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("filterModels = %v, want %v", got, want)
	}
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient(context.Background(), "  ", "")
	if kind, _ := apperrors.KindOf(err); kind != apperrors.KindConfig {
		t.Fatalf("NewClient without key = %v, want config error", err)
	}
}

func TestMockClient(t *testing.T) {
	m := &MockClient{Result: &Result{Text: "fixed"}}
	res, err := m.FixText(context.Background(), "prompt one")
	if err != nil || res.Text != "fixed" {
		t.Fatalf("FixText = (%v, %v)", res, err)
	}
	if m.LastPrompt() != "prompt one" {
		t.Fatalf("LastPrompt = %q", m.LastPrompt())
	}

	m.Error = errors.New("down")
	if _, err := m.ListModels(context.Background()); err == nil {
		t.Fatalf("expected mock error")
	}
}
