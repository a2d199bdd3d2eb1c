package classify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	defaultAnthropicModel = "claude-sonnet-4-20250514"

	// oracleMaxTokens bounds the reply; a verdict fits comfortably.
	oracleMaxTokens = 500
)

// AnthropicOracle classifies emails through the Anthropic Messages API.
type AnthropicOracle struct {
	client         *anthropic.Client
	model          string
	internalDomain string
	logger         *slog.Logger
}

// NewAnthropicOracle builds an oracle backed by the given API key.
func NewAnthropicOracle(apiKey, model, internalDomain string, logger *slog.Logger) (*AnthropicOracle, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("classify: anthropic API key is required")
	}
	if model == "" {
		model = defaultAnthropicModel
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	return &AnthropicOracle{
		client:         &client,
		model:          model,
		internalDomain: internalDomain,
		logger:         logger,
	}, nil
}

// Classify sends the email to the model and parses its verdict.
func (o *AnthropicOracle) Classify(ctx context.Context, email Email) (*Verdict, error) {
	msg, err := o.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(o.model),
		MaxTokens: oracleMaxTokens,
		System: []anthropic.TextBlockParam{
			{Type: "text", Text: buildSystemPrompt(o.internalDomain)},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildUserMessage(email, o.internalDomain))),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("classify: anthropic request: %w", err)
	}

	var reply strings.Builder
	for _, content := range msg.Content {
		if content.Type == "text" {
			reply.WriteString(content.Text)
		}
	}

	verdict, err := ParseVerdict(reply.String())
	if err != nil {
		o.logger.Debug("oracle reply did not parse",
			slog.String("model", o.model),
			slog.String("reply", replySnippet(reply.String())))
		return nil, err
	}

	return verdict, nil
}
