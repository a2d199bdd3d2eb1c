package classify

import (
	"fmt"
	"log/slog"
	"strings"
)

// NewOracle builds the oracle named by provider. Provider "none"
// returns a nil oracle, which pins classification to the rule engine.
func NewOracle(provider, apiKey, model, internalDomain string, logger *slog.Logger) (Oracle, error) {
	switch strings.ToLower(provider) {
	case "anthropic":
		return NewAnthropicOracle(apiKey, model, internalDomain, logger)
	case "openai":
		return NewOpenAIOracle(apiKey, model, internalDomain, logger)
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("classify: unknown provider %q", provider)
	}
}
