package filing

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// timestampLayouts are the accepted request timestamp shapes.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
}

const messageTemplate = `MIME-Version: 1.0
Date: %s
From: %s <%s>
To: %s
Subject: %s
Content-Type: text/html; charset="utf-8"

%s
`

// BuildMessage serializes the email into the .eml artifact filed
// alongside the attachments. Returns nil when the request has no body
// or asks for the artifact to be skipped.
func BuildMessage(req Request) *Message {
	if req.Body == "" || req.SkipEmail {
		return nil
	}

	ts := parseTimestamp(req.Timestamp)

	return &Message{
		Filename: messageFilename(req.SenderName, ts),
		Content: fmt.Sprintf(messageTemplate,
			ts.Format(time.RFC1123Z),
			req.SenderName,
			req.SenderEmail,
			strings.Join(req.Recipients, ", "),
			req.Subject,
			req.Body,
		),
	}
}

// messageFilename derives the artifact name from the sender's given
// name and the message date, e.g. "Email from Sarah - 18 Jan 2026.eml".
func messageFilename(senderName string, ts time.Time) string {
	first := "Unknown"
	if fields := strings.Fields(senderName); len(fields) > 0 {
		first = cleanNameToken(fields[0])
	}

	return fmt.Sprintf("Email from %s - %s.eml", first, ts.Format("02 Jan 2006"))
}

// cleanNameToken strips characters outside alphanumerics, space,
// hyphen and underscore. Display names arrive from arbitrary mail
// clients and must not smuggle path separators into a filename.
func cleanNameToken(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}

	return b.String()
}

// parseTimestamp interprets the request timestamp, defaulting to the
// current time when no accepted layout matches.
func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}

	return time.Now()
}
