package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDomain = "hunch.co.nz"

func TestFallback_OutgoingDelivery(t *testing.T) {
	tests := []struct {
		name  string
		email Email
	}{
		{
			name: "internal sender with pdf and delivery phrase",
			email: Email{
				SenderEmail:     "jane@hunch.co.nz",
				Subject:         "Latest banners for review",
				AttachmentNames: []string{"banner-v2.pdf"},
			},
		},
		{
			name: "job code in filename counts toward the threshold",
			email: Email{
				SenderEmail:     "jane@hunch.co.nz",
				Subject:         "Banners",
				AttachmentNames: []string{"SKY 045 - Banner v2.zip"},
			},
		},
		{
			name: "compact job code without a space",
			email: Email{
				SenderEmail:     "jane@hunch.co.nz",
				Subject:         "Banners",
				AttachmentNames: []string{"SKY045_final.zip"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := Fallback(tt.email, testDomain)

			require.NotNil(t, verdict)
			assert.True(t, verdict.Outgoing)
			assert.Equal(t, CategoryOther, verdict.Category)
			assert.Equal(t, ConfidenceMedium, verdict.Confidence)
		})
	}
}

func TestFallback_ExternalSenderNeverOutgoing(t *testing.T) {
	// Plenty of delivery signals, but the internal-sender gate holds.
	verdict := Fallback(Email{
		SenderEmail:     "client@skytv.co.nz",
		Subject:         "Latest deck attached for review",
		AttachmentNames: []string{"SKY 045 deck.pptx"},
	}, testDomain)

	require.NotNil(t, verdict)
	assert.False(t, verdict.Outgoing)
}

func TestFallback_InternalSenderOneSignalNotOutgoing(t *testing.T) {
	verdict := Fallback(Email{
		SenderEmail: "jane@hunch.co.nz",
		Subject:     "Lunch on Friday",
	}, testDomain)

	require.NotNil(t, verdict)
	assert.False(t, verdict.Outgoing)
	assert.Equal(t, CategoryOther, verdict.Category)
	assert.Equal(t, ConfidenceLow, verdict.Confidence)
}

func TestFallback_OutgoingWinsOverBriefKeywords(t *testing.T) {
	verdict := Fallback(Email{
		SenderEmail:     "jane@hunch.co.nz",
		Subject:         "Brief response attached",
		AttachmentNames: []string{"response.pdf"},
	}, testDomain)

	require.NotNil(t, verdict)
	assert.True(t, verdict.Outgoing)
}

func TestFallback_BriefKeywords(t *testing.T) {
	for _, subject := range []string{
		"Project brief for Q3",
		"Scope of work",
		"Requirements doc",
		"Kickoff notes",
	} {
		t.Run(subject, func(t *testing.T) {
			verdict := Fallback(Email{
				SenderEmail: "client@skytv.co.nz",
				Subject:     subject,
			}, testDomain)

			require.NotNil(t, verdict)
			assert.Equal(t, CategoryBriefs, verdict.Category)
			assert.False(t, verdict.Outgoing)
			assert.Equal(t, ConfidenceMedium, verdict.Confidence)
		})
	}
}

func TestFallback_FeedbackKeywords(t *testing.T) {
	// "amend" is a substring match, so "Amends" qualifies.
	verdict := Fallback(Email{
		SenderEmail: "client@skytv.co.nz",
		Subject:     "Amends on the homepage banner",
	}, testDomain)

	require.NotNil(t, verdict)
	assert.Equal(t, CategoryFeedback, verdict.Category)
	assert.False(t, verdict.Outgoing)
}

func TestFallback_ClientAttachmentsDefaultToFeedback(t *testing.T) {
	verdict := Fallback(Email{
		SenderEmail:     "client@skytv.co.nz",
		Subject:         "Our logo pack",
		AttachmentNames: []string{"logos.ai"},
	}, testDomain)

	require.NotNil(t, verdict)
	assert.Equal(t, CategoryFeedback, verdict.Category)
	assert.Equal(t, ConfidenceLow, verdict.Confidence)
}

func TestFallback_NoSignals(t *testing.T) {
	verdict := Fallback(Email{
		SenderEmail: "client@skytv.co.nz",
		Subject:     "Hello",
	}, testDomain)

	require.NotNil(t, verdict)
	assert.Equal(t, CategoryOther, verdict.Category)
	assert.False(t, verdict.Outgoing)
	assert.Equal(t, ConfidenceLow, verdict.Confidence)
}

func TestFallback_JobCodeIsCaseSensitive(t *testing.T) {
	// Lowercase triples are ordinary words, not job codes, and .zip is
	// not a delivery extension. One signal total.
	verdict := Fallback(Email{
		SenderEmail:     "jane@hunch.co.nz",
		Subject:         "Files",
		AttachmentNames: []string{"sky 045 raw.zip"},
	}, testDomain)

	require.NotNil(t, verdict)
	assert.False(t, verdict.Outgoing)
}

func TestIsInternalAddress(t *testing.T) {
	tests := []struct {
		name   string
		addr   string
		domain string
		want   bool
	}{
		{"plain internal", "jane@hunch.co.nz", "hunch.co.nz", true},
		{"case insensitive", "Jane@HUNCH.CO.NZ", "hunch.co.nz", true},
		{"display name form", "Jane Doe <jane@hunch.co.nz>", "hunch.co.nz", true},
		{"external", "bob@skytv.co.nz", "hunch.co.nz", false},
		{"empty domain matches nothing", "jane@hunch.co.nz", "", false},
		{"empty address", "", "hunch.co.nz", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isInternalAddress(tt.addr, tt.domain))
		})
	}
}
