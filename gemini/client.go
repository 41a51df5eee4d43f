package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"cloud.google.com/go/vertexai/genai"

	"github.com/careerverse/backend/config"
)

// maxSuggestions caps how many rewrites are returned per request
const maxSuggestions = 3

// Client wraps the Vertex AI Gemini client
type Client struct {
	client    *genai.Client
	model     *genai.GenerativeModel
	modelName string
}

// NewClient creates a new Gemini client
func NewClient(ctx context.Context, cfg *config.Config) (*Client, error) {
	client, err := genai.NewClient(ctx, cfg.ProjectID, cfg.Location)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.GeminiModel)
	model.SetTemperature(0.7) // rewrites should differ from each other
	model.SetTopP(0.9)
	model.SetMaxOutputTokens(4096)
	model.ResponseMIMEType = "application/json"

	return &Client{
		client:    client,
		model:     model,
		modelName: cfg.GeminiModel,
	}, nil
}

// Close closes the Gemini client
func (c *Client) Close() error {
	return c.client.Close()
}

// SuggestDescriptions proposes rewrites of a job description
func (c *Client) SuggestDescriptions(ctx context.Context, jobTitle, description string) ([]string, error) {
	prompt := fmt.Sprintf(`You are helping a recruiter polish a job description.

Job title: %s

Current description (markdown):
%s

Write %d alternative versions of this description. Keep the facts, fix tone
and structure, and keep each version under 250 words. Use markdown.

Return ONLY a JSON array of strings, no explanation.`, orUnknown(jobTitle), description, maxSuggestions)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	suggestions, err := parseSuggestions(extractText(resp))
	if err != nil {
		return nil, err
	}

	log.Printf("[Gemini] %d description suggestions for '%s' (%s)", len(suggestions), jobTitle, c.modelName)
	return suggestions, nil
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(not given)"
	}
	return s
}

// parseSuggestions reads the model's JSON array, tolerating code fences and
// an object wrapper of the form {"suggestions": [...]}
func parseSuggestions(text string) ([]string, error) {
	text = cleanJSON(text)
	if text == "" {
		return nil, fmt.Errorf("no response from Gemini")
	}

	var list []string
	if err := json.Unmarshal([]byte(text), &list); err != nil {
		var wrapped struct {
			Suggestions []string `json:"suggestions"`
		}
		if err2 := json.Unmarshal([]byte(text), &wrapped); err2 != nil || wrapped.Suggestions == nil {
			log.Printf("[Gemini] Failed to parse suggestions: %s", text)
			return nil, fmt.Errorf("failed to parse suggestions JSON: %w", err)
		}
		list = wrapped.Suggestions
	}

	out := make([]string, 0, len(list))
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	return sb.String()
}

func cleanJSON(text string) string {
	// Remove markdown code blocks if present
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	return text
}
