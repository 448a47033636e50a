// Package openai implements résumé parsing on the OpenAI Chat Completions
// API, or any endpoint compatible with it.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
	"github.com/openai/openai-go/v3/shared/constant"

	"ats-backend/internal/resumeparser"
)

const defaultModel = "gpt-4o-mini"

// Client implements resumeparser.Completer.
type Client struct {
	client openai.Client
	model  string
}

// Options configures NewClient.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// NewClient constructs a Completer. BaseURL is optional.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("OPENAI_API_KEY is required")
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		reqOpts = append(reqOpts, option.WithBaseURL(base))
	}
	if opts.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(opts.Timeout))
	}

	return &Client{client: openai.NewClient(reqOpts...), model: model}, nil
}

// NewParser returns a retrying résumé parser backed by this client.
func NewParser(opts Options) (resumeparser.Parser, error) {
	c, err := NewClient(opts)
	if err != nil {
		return nil, err
	}
	return resumeparser.WithRetry(resumeparser.NewCompletionParser(c, "openai")), nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

// Complete sends messages with JSON-object output and temperature 0.
func (c *Client) Complete(ctx context.Context, messages []resumeparser.Message) (string, error) {
	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: toParams(messages),
		Model:    shared.ChatModel(c.model),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{
				Type: constant.JSONObject("json_object"),
			},
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("openai response missing choices")
	}

	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("openai response empty content")
	}
	return content, nil
}

func toParams(messages []resumeparser.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case "system":
			out = append(out, openai.SystemMessage(m.Content))
		case "assistant":
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

var _ resumeparser.Completer = (*Client)(nil)
