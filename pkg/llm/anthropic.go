package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
)

// AnthropicClient implements Client using the Anthropic API.
type AnthropicClient struct {
	client    anthropic.Client
	log       *slog.Logger
	model     anthropic.Model
	maxTokens int64
}

// NewAnthropicClient creates a new Anthropic-based client. The API key is
// taken from the environment by the underlying SDK.
func NewAnthropicClient(log *slog.Logger, model anthropic.Model, maxTokens int64) *AnthropicClient {
	return &AnthropicClient{
		client:    anthropic.NewClient(),
		log:       log,
		model:     model,
		maxTokens: maxTokens,
	}
}

// Complete sends the conversation to the model and returns the response text.
// Temperature is pinned to 0: callers expect deterministic, JSON-only output.
func (c *AnthropicClient) Complete(ctx context.Context, systemPrompt string, msgs []Message) (string, error) {
	start := time.Now()
	c.log.Debug("llm: request starting", "model", c.model, "maxTokens", c.maxTokens, "turns", len(msgs))

	params := anthropic.MessageNewParams{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: anthropic.Float(0),
		System: []anthropic.TextBlockParam{
			{Type: "text", Text: systemPrompt},
		},
	}
	for _, msg := range msgs {
		switch msg.Role {
		case "assistant":
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	resp, err := c.client.Messages.New(ctx, params)
	duration := time.Since(start)
	if err != nil {
		c.log.Error("llm: request failed", "duration", duration, "error", err)
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	c.log.Debug("llm: request completed", "duration", duration, "stopReason", resp.StopReason)

	for _, block := range resp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("%w: no text content in response", ErrTransport)
}
