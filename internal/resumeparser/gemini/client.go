// Package gemini implements résumé parsing on the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"ats-backend/internal/resumeparser"
)

const defaultModel = "gemini-2.5-flash"

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client implements resumeparser.Completer.
type Client struct {
	models contentGenerator
	model  string
}

// NewClient creates a client configured for the Gemini API backend.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newClient(client.Models, model), nil
}

func newClient(models contentGenerator, model string) *Client {
	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}
	return &Client{models: models, model: model}
}

// NewParser returns a retrying résumé parser backed by Gemini.
func NewParser(ctx context.Context, apiKey, model string) (resumeparser.Parser, error) {
	c, err := NewClient(ctx, apiKey, model)
	if err != nil {
		return nil, err
	}
	return resumeparser.WithRetry(resumeparser.NewCompletionParser(c, "gemini")), nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Complete sends the system message as the system instruction and the rest
// as user content, asking for a JSON response.
func (c *Client) Complete(ctx context.Context, messages []resumeparser.Message) (string, error) {
	var system []resumeparser.Message
	var user []resumeparser.Message
	for _, m := range messages {
		if m.Role == "system" {
			system = append(system, m)
			continue
		}
		user = append(user, m)
	}
	prompt := strings.TrimSpace(resumeparser.PromptText(user))
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	temperature := float32(0)
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      &temperature,
	}
	if instruction := resumeparser.PromptText(system); instruction != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: instruction}}}
	}

	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}
	return output, nil
}

var _ resumeparser.Completer = (*Client)(nil)
