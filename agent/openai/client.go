// Package openai is an agent backed by any OpenAI-compatible chat endpoint.
package openai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tmc/langchaingo/llms"
	lcopenai "github.com/tmc/langchaingo/llms/openai"

	"cookassistant"
)

const (
	defaultModelID     = "gpt-4o-mini"
	defaultMaxTokens   = 1024
	defaultTemperature = 0.2
)

type model interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

type Options struct {
	BaseURL     string
	APIKey      string
	ModelID     string
	MaxTokens   int
	Temperature float64
}

type Client struct {
	llm  model
	opts Options
}

// New builds a client over langchaingo's OpenAI provider.
func New(opts Options) (*Client, error) {
	opts = withDefaults(opts)

	lcOpts := []lcopenai.Option{
		lcopenai.WithToken(opts.APIKey),
		lcopenai.WithModel(opts.ModelID),
	}
	if opts.BaseURL != "" {
		lcOpts = append(lcOpts, lcopenai.WithBaseURL(opts.BaseURL))
	}

	llm, err := lcopenai.New(lcOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}
	return &Client{llm: llm, opts: opts}, nil
}

func newWithModel(llm model, opts Options) *Client {
	return &Client{llm: llm, opts: withDefaults(opts)}
}

func withDefaults(opts Options) Options {
	if opts.ModelID == "" {
		opts.ModelID = defaultModelID
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	if opts.Temperature == 0 {
		opts.Temperature = defaultTemperature
	}
	return opts
}

func (c *Client) Generate(ctx context.Context, messages []cookassistant.Message) (string, error) {
	slog.Info("LLM_CLIENT: Invoked", "backend", "openai", "model", c.opts.ModelID, "messages_len", len(messages))

	content := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		var msgType llms.ChatMessageType
		switch m.Role {
		case cookassistant.RoleSystem:
			msgType = llms.ChatMessageTypeSystem
		case cookassistant.RoleAssistant:
			msgType = llms.ChatMessageTypeAI
		default:
			msgType = llms.ChatMessageTypeHuman
		}
		content = append(content, llms.TextParts(msgType, m.Content))
	}

	resp, err := c.llm.GenerateContent(ctx, content,
		llms.WithMaxTokens(c.opts.MaxTokens),
		llms.WithTemperature(c.opts.Temperature),
		llms.WithModel(c.opts.ModelID),
	)
	if err != nil {
		return "", fmt.Errorf("LLM_CLIENT: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("LLM_CLIENT: empty response from %s", c.opts.ModelID)
	}

	slog.Info("LLM_CLIENT: OpenAI invoke succeeded", "stop_reason", resp.Choices[0].StopReason)
	return resp.Choices[0].Content, nil
}
