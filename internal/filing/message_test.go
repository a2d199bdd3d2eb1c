package filing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage_Content(t *testing.T) {
	msg := BuildMessage(Request{
		SenderName:  "Sarah Mitchell",
		SenderEmail: "sarah@citrusclothing.co.nz",
		Recipients:  []string{"studio@hunch.co.nz", "jobs@hunch.co.nz"},
		Subject:     "Re: banners",
		Body:        "<p>Looks great</p>",
		Timestamp:   "2026-01-18T09:30:00+13:00",
	})
	require.NotNil(t, msg)

	assert.Equal(t, "Email from Sarah - 18 Jan 2026.eml", msg.Filename)

	want := `MIME-Version: 1.0
Date: Sun, 18 Jan 2026 09:30:00 +1300
From: Sarah Mitchell <sarah@citrusclothing.co.nz>
To: studio@hunch.co.nz, jobs@hunch.co.nz
Subject: Re: banners
Content-Type: text/html; charset="utf-8"

<p>Looks great</p>
`
	assert.Equal(t, want, msg.Content)
}

func TestBuildMessage_NoBody(t *testing.T) {
	assert.Nil(t, BuildMessage(Request{SenderName: "Sarah"}))
}

func TestBuildMessage_SkipEmail(t *testing.T) {
	assert.Nil(t, BuildMessage(Request{SenderName: "Sarah", Body: "<p>hi</p>", SkipEmail: true}))
}

func TestMessageFilename(t *testing.T) {
	ts := time.Date(2026, time.January, 18, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		sender string
		want   string
	}{
		{"first name only", "Sarah Mitchell", "Email from Sarah - 18 Jan 2026.eml"},
		{"single token", "Sarah", "Email from Sarah - 18 Jan 2026.eml"},
		{"empty sender", "", "Email from Unknown - 18 Jan 2026.eml"},
		{"whitespace sender", "   ", "Email from Unknown - 18 Jan 2026.eml"},
		{"unsafe characters stripped", "<script> alert", "Email from script - 18 Jan 2026.eml"},
		{"hyphenated name kept", "Anna-Marie Jones", "Email from Anna-Marie - 18 Jan 2026.eml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, messageFilename(tt.sender, ts))
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Run("rfc3339", func(t *testing.T) {
		got := parseTimestamp("2026-01-18T09:30:00Z")
		assert.Equal(t, time.Date(2026, time.January, 18, 9, 30, 0, 0, time.UTC), got)
	})

	t.Run("space separated", func(t *testing.T) {
		got := parseTimestamp("2026-01-18 09:30:00")
		assert.Equal(t, 2026, got.Year())
		assert.Equal(t, time.January, got.Month())
		assert.Equal(t, 18, got.Day())
	})

	t.Run("unparseable defaults to now", func(t *testing.T) {
		got := parseTimestamp("last Tuesday")
		assert.WithinDuration(t, time.Now(), got, time.Minute)
	})
}
