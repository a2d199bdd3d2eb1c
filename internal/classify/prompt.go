package classify

import (
	"fmt"
	"strings"
)

// maxBodyChars caps how much of the email body is sent to the oracle.
const maxBodyChars = 2000

// systemPromptTemplate carries the filing taxonomy. The single verb
// directive keeps replies parseable; the closing note stops the oracle
// from inventing Round folder names.
const systemPromptTemplate = `You are a filing assistant for a creative agency. Classify where email attachments should be filed.

## Folder Options
- **Briefs**: Initial briefs, scope documents, requirements, project kickoff materials
- **Feedback**: Client feedback, amends, comments, revision requests
- **Round X**: Outgoing deliverables from the agency to a client (versioned work)
- **Other**: Everything else (admin, invoices, misc)

## Rules

### Outgoing Work (filed under Round X)
Classify as outgoing if 3+ of these signals:
- Sender is @%[1]s
- Recipients include external (client) emails
- Filename contains a job code (e.g., "SKY 045 - Banner v2.pdf")
- File type: .pdf, .docx, .pptx
- Email language: "here's the latest", "for your review", "updated version"

### Briefs
- Words: "brief", "scope", "requirements", "kickoff"
- Usually from a client to the agency

### Feedback
- Words: "feedback", "amends", "comments", "changes", "revision"
- Sender is a client (not @%[1]s)

### Other
- Doesn't fit the above categories

## Response Format
Respond with ONLY valid JSON:
{
  "folder": "Briefs" | "Feedback" | "Other",
  "is_outgoing": true | false,
  "confidence": "high" | "medium" | "low",
  "reasoning": "Brief explanation"
}

If is_outgoing is true, folder is ignored (the system allocates the Round folder).`

// buildSystemPrompt binds the taxonomy to the configured agency domain.
func buildSystemPrompt(internalDomain string) string {
	return fmt.Sprintf(systemPromptTemplate, internalDomain)
}

// buildUserMessage renders one email as the oracle's classification
// request. The body is truncated so a pasted document cannot bloat
// the request.
func buildUserMessage(email Email, internalDomain string) string {
	senderTag := "(Client)"
	if isInternalAddress(email.SenderEmail, internalDomain) {
		senderTag = "(Agency)"
	}

	var external []string
	for _, r := range email.Recipients {
		if !isInternalAddress(r, internalDomain) {
			external = append(external, r)
		}
	}

	body := email.Body
	if len(body) > maxBodyChars {
		body = body[:maxBodyChars]
	}
	if body == "" {
		body = "No content"
	}

	return fmt.Sprintf(`Classify where these attachments should be filed:

**Sender**: %s %s
**Recipients**: %s
**External recipients**: %s
**Subject**: %s
**Attachments**: %s

**Email content**:
%s
`,
		email.SenderEmail, senderTag,
		strings.Join(email.Recipients, ", "),
		joinOrNone(external),
		email.Subject,
		joinOrNone(email.AttachmentNames),
		body,
	)
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "None"
	}

	return strings.Join(items, ", ")
}
