// Package gemini calls the Gemini API to fix text and to list the models the
// configured key can use.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/oukeidos/typoduck/internal/apperrors"
	"github.com/oukeidos/typoduck/internal/httpclient"
	"github.com/oukeidos/typoduck/internal/metadata"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// Client handles communication with the Gemini API.
type Client struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
}

// Backend is what the fix pipeline needs from an AI client.
type Backend interface {
	FixText(ctx context.Context, prompt string) (*Result, error)
	ListModels(ctx context.Context) ([]string, error)
	Close() error
}

var _ Backend = (*Client)(nil)

// fixSchema asks for {"fixed_text": "..."} and nothing else.
var fixSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"fixed_text": {
			Type:        genai.TypeString,
			Description: "The corrected text with the original line structure preserved.",
		},
	},
	Required: []string{"fixed_text"},
}

// NewClient creates a client bound to one model.
func NewClient(ctx context.Context, apiKey string, modelName string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, apperrors.Config("No Gemini API key configured.", nil)
	}
	// option.WithHTTPClient would drop the API key header the library
	// injects, so timeouts are enforced per call through the context.
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	name := metadata.NormalizeModel(modelName)
	model := client.GenerativeModel(name)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = fixSchema
	model.SetTemperature(0)

	return &Client{
		client:    client,
		model:     model,
		modelName: name,
	}, nil
}

// Model returns the bound model id.
func (c *Client) Model() string { return c.modelName }

// Close closes the underlying genai client.
func (c *Client) Close() error {
	return c.client.Close()
}

// FixText sends the full prompt and returns the corrected text.
func (c *Client) FixText(ctx context.Context, prompt string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, httpclient.DefaultTimeout)
	defer cancel()

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, classifyGeminiError(err)
	}
	text, err := extractResponseText(resp)
	if err != nil {
		return nil, apperrors.Validation(err)
	}

	fixed, structured := parseFixedText(text)
	res := &Result{Text: fixed, Model: c.modelName, Structured: structured}
	if resp.UsageMetadata != nil {
		res.Usage = UsageMetadata{
			PromptTokenCount:     resp.UsageMetadata.PromptTokenCount,
			CandidatesTokenCount: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokenCount:      resp.UsageMetadata.TotalTokenCount,
		}
	}
	return res, nil
}

// ListModels returns the ids of Gemini models that support generateContent,
// without the "models/" prefix, sorted.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, httpclient.DefaultTimeout)
	defer cancel()

	var infos []*genai.ModelInfo
	it := c.client.ListModels(ctx)
	for {
		info, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, classifyGeminiError(err)
		}
		infos = append(infos, info)
	}
	return filterModels(infos), nil
}

func filterModels(infos []*genai.ModelInfo) []string {
	seen := make(map[string]bool)
	var out []string
	for _, info := range infos {
		if info == nil || !strings.Contains(info.Name, "gemini") {
			continue
		}
		generates := false
		for _, m := range info.SupportedGenerationMethods {
			if m == "generateContent" {
				generates = true
				break
			}
		}
		if !generates {
			continue
		}
		id := strings.TrimPrefix(info.Name, "models/")
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// parseFixedText reads the fixed_text field, falling back to the raw text
// when the model answered without the requested structure. A present but
// empty field is a valid answer.
func parseFixedText(text string) (string, bool) {
	var body FixResponse
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &body); err == nil && body.FixedText != nil {
		return *body.FixedText, true
	}
	return text, false
}

func extractResponseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("no response received from Gemini")
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		var combined strings.Builder
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				combined.WriteString(string(text))
			}
		}
		if combined.Len() > 0 {
			return combined.String(), nil
		}
	}
	return "", fmt.Errorf("no text parts found in Gemini response")
}
