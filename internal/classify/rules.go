package classify

import (
	"regexp"
	"strings"
)

// jobCodePattern matches agency job codes in attachment names,
// e.g. "SKY 045" or "LAB055". Case-sensitive: lowercase triples are
// ordinary words, not job codes.
var jobCodePattern = regexp.MustCompile(`[A-Z]{3}\s?\d{3}`)

// Signal vocabularies. Matched as substrings of the lowercased subject,
// so "amend" also catches "amends" and "amendment".
var (
	deliveryPhrases  = []string{"for your review", "for review", "attached", "latest"}
	briefKeywords    = []string{"brief", "scope", "requirement", "kickoff"}
	feedbackKeywords = []string{"feedback", "amend", "comment", "change", "revision"}
	outgoingExts     = []string{".pdf", ".docx", ".pptx"}
)

// outgoingSignalThreshold is how many delivery signals an internal sender
// needs before the mail counts as outgoing work.
const outgoingSignalThreshold = 2

// Fallback classifies an email with deterministic rules. It always
// returns a verdict.
//
// Rule order matters: outgoing detection first, then brief keywords,
// then feedback keywords, then the external-sender-with-attachments
// default, then Other.
func Fallback(email Email, internalDomain string) *Verdict {
	subject := strings.ToLower(email.Subject)
	internal := isInternalAddress(email.SenderEmail, internalDomain)

	if signals := countOutgoingSignals(email, subject, internal); signals >= outgoingSignalThreshold && internal {
		return &Verdict{
			Category:   CategoryOther,
			Outgoing:   true,
			Confidence: ConfidenceMedium,
			Rationale:  "Rules: internal sender with delivery signals",
		}
	}

	if containsAny(subject, briefKeywords) {
		return &Verdict{
			Category:   CategoryBriefs,
			Confidence: ConfidenceMedium,
			Rationale:  "Rules: brief keywords in subject",
		}
	}

	if containsAny(subject, feedbackKeywords) {
		return &Verdict{
			Category:   CategoryFeedback,
			Confidence: ConfidenceMedium,
			Rationale:  "Rules: feedback keywords in subject",
		}
	}

	if !internal && len(email.AttachmentNames) > 0 {
		return &Verdict{
			Category:   CategoryFeedback,
			Confidence: ConfidenceLow,
			Rationale:  "Rules: attachments from client",
		}
	}

	return &Verdict{
		Category:   CategoryOther,
		Confidence: ConfidenceLow,
		Rationale:  "Rules: no clear signals",
	}
}

// countOutgoingSignals tallies delivery signals: internal sender,
// deliverable file extensions, delivery phrasing in the subject, and a
// job code in an attachment name.
func countOutgoingSignals(email Email, lowerSubject string, internal bool) int {
	signals := 0

	if internal {
		signals++
	}

	joinedNames := strings.Join(email.AttachmentNames, " ")

	if containsAny(strings.ToLower(joinedNames), outgoingExts) {
		signals++
	}

	if containsAny(lowerSubject, deliveryPhrases) {
		signals++
	}

	if jobCodePattern.MatchString(joinedNames) {
		signals++
	}

	return signals
}

// isInternalAddress reports whether an email address is on the agency
// domain.
func isInternalAddress(addr, internalDomain string) bool {
	if internalDomain == "" {
		return false
	}

	return strings.Contains(strings.ToLower(addr), "@"+strings.ToLower(internalDomain))
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}

	return false
}
