package classify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIOracle classifies emails through the OpenAI chat completions
// API.
type OpenAIOracle struct {
	client         openai.Client
	model          string
	internalDomain string
	logger         *slog.Logger
}

// NewOpenAIOracle builds an oracle backed by the given API key.
func NewOpenAIOracle(apiKey, model, internalDomain string, logger *slog.Logger) (*OpenAIOracle, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("classify: openai API key is required")
	}
	if model == "" {
		model = defaultOpenAIModel
	}

	return &OpenAIOracle{
		client:         openai.NewClient(option.WithAPIKey(apiKey)),
		model:          model,
		internalDomain: internalDomain,
		logger:         logger,
	}, nil
}

// Classify sends the email to the model and parses its verdict.
func (o *OpenAIOracle) Classify(ctx context.Context, email Email) (*Verdict, error) {
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(buildSystemPrompt(o.internalDomain)),
			openai.UserMessage(buildUserMessage(email, o.internalDomain)),
		},
		MaxCompletionTokens: openai.Int(oracleMaxTokens),
	})
	if err != nil {
		return nil, fmt.Errorf("classify: openai request: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("classify: openai reply had no choices")
	}

	reply := resp.Choices[0].Message.Content

	verdict, err := ParseVerdict(reply)
	if err != nil {
		o.logger.Debug("oracle reply did not parse",
			slog.String("model", o.model),
			slog.String("reply", replySnippet(reply)))
		return nil, err
	}

	return verdict, nil
}
