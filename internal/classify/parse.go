package classify

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrUnparseable is returned when no verdict can be extracted from an
// oracle reply.
var ErrUnparseable = errors.New("classify: unparseable oracle reply")

// ParseVerdict extracts a verdict from an oracle reply. Three attempts,
// in order: the whole reply as JSON, a ```json fenced block, and the
// outermost brace pair. A verdict with an unknown category or a
// non-boolean outgoing flag is rejected at every step.
func ParseVerdict(text string) (*Verdict, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrUnparseable
	}

	var verdict Verdict
	if err := json.Unmarshal([]byte(text), &verdict); err == nil {
		if err := validateVerdict(&verdict); err == nil {
			return &verdict, nil
		}
	}

	if candidate, ok := fencedJSON(text); ok {
		if v, err := lenientVerdict(candidate); err == nil {
			return v, nil
		}
	}

	if candidate, ok := braceSpan(text); ok {
		if v, err := lenientVerdict(candidate); err == nil {
			return v, nil
		}
	}

	return nil, ErrUnparseable
}

// fencedJSON extracts the contents of the first ```json fenced block.
func fencedJSON(text string) (string, bool) {
	const fence = "```json"

	start := strings.Index(text, fence)
	if start < 0 {
		return "", false
	}

	rest := text[start+len(fence):]

	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}

	return strings.TrimSpace(rest[:end]), true
}

// braceSpan extracts the outermost { ... } span.
func braceSpan(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")

	if start < 0 || end <= start {
		return "", false
	}

	return text[start : end+1], true
}

// lenientVerdict pulls the string fields out of a JSON candidate
// without a full decode. The outgoing flag stays strict: acting on a
// coerced truthy value would misfile into a Round folder.
func lenientVerdict(candidate string) (*Verdict, error) {
	if !gjson.Valid(candidate) {
		return nil, ErrUnparseable
	}

	parsed := gjson.Parse(candidate)

	verdict := &Verdict{
		Category:   Category(parsed.Get("folder").String()),
		Confidence: Confidence(parsed.Get("confidence").String()),
		Rationale:  parsed.Get("reasoning").String(),
	}

	if outgoing := parsed.Get("is_outgoing"); outgoing.Exists() {
		switch outgoing.Type {
		case gjson.True, gjson.False:
			verdict.Outgoing = outgoing.Bool()
		default:
			return nil, fmt.Errorf("classify: is_outgoing is not a boolean: %w", ErrUnparseable)
		}
	}

	if err := validateVerdict(verdict); err != nil {
		return nil, err
	}

	return verdict, nil
}

// replySnippet trims an oracle reply to a loggable size.
func replySnippet(s string) string {
	const max = 200

	s = strings.TrimSpace(s)
	if len(s) > max {
		return s[:max]
	}

	return s
}

// validateVerdict rejects verdicts the pipeline cannot act on. An
// outgoing verdict's category is ignored downstream, so it may be
// anything; otherwise it must name a known destination.
func validateVerdict(v *Verdict) error {
	if v.Outgoing {
		return nil
	}

	if !v.Category.valid() {
		return fmt.Errorf("classify: unknown category %q: %w", v.Category, ErrUnparseable)
	}

	return nil
}
