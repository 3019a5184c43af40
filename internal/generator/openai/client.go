// Package openai adapts the OpenAI chat-completion API to the
// generator contract.
package openai

import (
	"context"
	"errors"

	"github.com/sashabaranov/go-openai"
	generatordomain "github.com/smallbiznis/threadly/internal/generator/domain"
	"go.uber.org/zap"
)

const systemPrompt = "You expand source material into a clear, engaging long-form text. " +
	"Return plain prose only, no markdown headings and no numbered lists."

type Client struct {
	log    *zap.Logger
	client *openai.Client
	model  string
}

func NewClient(log *zap.Logger, apiKey, model, baseURL string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		log:    log.Named("generator.openai"),
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (c *Client) Produce(ctx context.Context, content string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: content},
		},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			c.log.Warn("generation timed out", zap.String("model", c.model))
			return "", generatordomain.ErrGenerationTimeout
		}
		c.log.Error("chat completion failed", zap.String("model", c.model), zap.Error(err))
		return "", generatordomain.ErrGenerationFailed
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		c.log.Warn("chat completion returned no content", zap.String("model", c.model))
		return "", generatordomain.ErrGenerationFailed
	}
	return resp.Choices[0].Message.Content, nil
}
