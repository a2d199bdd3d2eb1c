// Package classify decides where an email's attachments belong: a
// destination category, and whether the mail is outgoing work headed for a
// versioned round folder. An LLM oracle produces the verdict when
// available; deterministic rules take over whenever the oracle fails,
// times out, or returns something unusable. Classification itself never
// fails.
package classify

import (
	"context"
	"log/slog"
	"time"
)

// Category is a filing destination.
type Category string

const (
	CategoryBriefs   Category = "Briefs"
	CategoryFeedback Category = "Feedback"
	CategoryOther    Category = "Other"
)

// valid reports whether the category is one of the known set.
func (c Category) valid() bool {
	switch c {
	case CategoryBriefs, CategoryFeedback, CategoryOther:
		return true
	default:
		return false
	}
}

// Confidence grades a verdict. Informational only; no caller branches
// on it.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Email is the classification input.
type Email struct {
	SenderName      string
	SenderEmail     string
	Recipients      []string
	Subject         string
	Body            string
	AttachmentNames []string
}

// Verdict is a classification result. Confidence and Rationale are
// carried through to logs and responses but never drive behavior.
type Verdict struct {
	Category   Category   `json:"folder"`
	Outgoing   bool       `json:"is_outgoing"`
	Confidence Confidence `json:"confidence"`
	Rationale  string     `json:"reasoning"`
}

// Oracle produces a verdict for an email, typically by asking an LLM.
type Oracle interface {
	Classify(ctx context.Context, email Email) (*Verdict, error)
}

// Source records which path produced a verdict.
type Source string

const (
	SourceOracle   Source = "oracle"
	SourceFallback Source = "fallback"
	// SourceOverride is set by callers that carry an explicit routing
	// instruction and bypass classification entirely.
	SourceOverride Source = "override"
)

// Classifier wraps an optional oracle with the deterministic rules.
type Classifier struct {
	oracle         Oracle // nil disables the oracle
	internalDomain string
	timeout        time.Duration
	logger         *slog.Logger
}

// New builds a classifier. internalDomain is the agency's email domain
// without the leading @. A nil oracle means rules only.
func New(oracle Oracle, internalDomain string, timeout time.Duration, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Classifier{
		oracle:         oracle,
		internalDomain: internalDomain,
		timeout:        timeout,
		logger:         logger,
	}
}

// Classify returns a verdict for the email and which path produced it.
// Oracle errors and unusable replies degrade to the rules; they never
// propagate.
func (c *Classifier) Classify(ctx context.Context, email Email) (*Verdict, Source) {
	if c.oracle == nil {
		return c.fallback(email), SourceFallback
	}

	oracleCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	verdict, err := c.oracle.Classify(oracleCtx, email)
	if err != nil {
		c.logger.Warn("oracle classification failed, using rules",
			slog.String("error", err.Error()),
		)

		return c.fallback(email), SourceFallback
	}

	c.logger.Debug("oracle verdict",
		slog.String("category", string(verdict.Category)),
		slog.Bool("outgoing", verdict.Outgoing),
		slog.String("confidence", string(verdict.Confidence)),
	)

	return verdict, SourceOracle
}

func (c *Classifier) fallback(email Email) *Verdict {
	verdict := Fallback(email, c.internalDomain)

	c.logger.Debug("rule verdict",
		slog.String("category", string(verdict.Category)),
		slog.Bool("outgoing", verdict.Outgoing),
		slog.String("rationale", verdict.Rationale),
	)

	return verdict
}
