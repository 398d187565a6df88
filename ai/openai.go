package ai

import (
	"context"
	"errors"
	"strings"
	"time"

	apperrors "npc-dialogue-engine/backend/pkg/errors"

	"github.com/sashabaranov/go-openai"
)

// Client implements TextGenerator on top of an OpenAI-compatible chat
// completion API. Pointing BaseURL at a local model server works too; the
// engine only depends on the Complete contract.
type Client struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// ClientConfig configures the completion client.
type ClientConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// NewClient creates a completion client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("generation API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4o
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return &Client{
		client:  openai.NewClientWithConfig(config),
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}, nil
}

// Complete sends one completion request. Timeouts and transport failures are
// returned as generation errors; the caller's transcript stays untouched.
func (c *Client) Complete(ctx context.Context, systemInstructions, userContent string, opts Options) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if systemInstructions != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemInstructions,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userContent,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxOutputTokens,
	})
	if err != nil {
		return "", apperrors.NewGenerationError(err)
	}

	if len(resp.Choices) == 0 {
		return "", apperrors.NewGenerationError(errors.New("no completion choices returned"))
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", apperrors.NewGenerationError(errors.New("empty completion"))
	}

	return text, nil
}
