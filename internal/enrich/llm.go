// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/pdiddy/citecontext/pkg/types"
)

const (
	llmMaxTokens   = 4096
	llmTemperature = 0.1
)

// OpenAIChat calls an OpenAI-compatible chat completions endpoint
// (DeepSeek and similar gateways included).
type OpenAIChat struct {
	client openai.Client
	model  string
}

// NewOpenAIChat builds the chat client against cfg.APIBase.
func NewOpenAIChat(cfg types.EnrichConfig) *OpenAIChat {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 300 * time.Second
	}
	return &OpenAIChat{
		client: openai.NewClient(
			option.WithBaseURL(cfg.APIBase),
			option.WithAPIKey(cfg.APIKey),
			option.WithRequestTimeout(timeout),
		),
		model: cfg.Model,
	}
}

// Chat sends one system+user exchange and returns the assistant content.
// Reasoning models that emit separate reasoning content are handled by
// the SDK; only the final content is returned.
func (c *OpenAIChat) Chat(ctx context.Context, system, user string) (string, error) {
	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		MaxTokens:   openai.Int(llmMaxTokens),
		Temperature: openai.Float(llmTemperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return completion.Choices[0].Message.Content, nil
}
