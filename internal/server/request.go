package server

import (
	"encoding/json"
	"errors"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/hunchagency/dotfile/internal/classify"
	"github.com/hunchagency/dotfile/internal/filing"
)

// stringList accepts a JSON string array, the same array double-encoded
// into a string, or a single bare filename. The upstream workflow sends
// all three shapes.
type stringList []string

func (l *stringList) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*l = arr
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.New("expected a string array or string")
	}

	var inner []string
	if err := json.Unmarshal([]byte(s), &inner); err == nil {
		*l = inner
		return nil
	}

	if s == "" {
		*l = nil
		return nil
	}

	*l = stringList{s}

	return nil
}

// fileRequest is the /file webhook payload. Keys are camelCase,
// matching the upstream workflow's post.
type fileRequest struct {
	JobNumber      string     `json:"jobNumber"`
	ClientCode     string     `json:"clientCode"`
	SenderName     string     `json:"senderName"`
	SenderEmail    string     `json:"senderEmail"`
	Recipients     stringList `json:"allRecipients"`
	Subject        string     `json:"subjectLine"`
	Body           string     `json:"emailContent"`
	Timestamp      string     `json:"receivedDateTime"`
	Attachments    stringList `json:"attachmentNames"`
	HasAttachments bool       `json:"hasAttachments"`
	RecordID       string     `json:"projectRecordId"`
	Route          string     `json:"route"`
	FolderType     string     `json:"folderType"`
	SkipEmail      bool       `json:"skipEmail"`
}

// Validate checks the webhook payload. Only jobNumber is strictly
// required; senderEmail is checked for shape when present, since
// non-required rules skip empty values.
func (r *fileRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.JobNumber, validation.Required),
		validation.Field(&r.SenderEmail, is.Email),
	)
}

// toFiling converts the wire payload into a pipeline request.
// Attachment names only count when the upstream flags the email as
// actually carrying attachments.
func (r *fileRequest) toFiling(requestID string) filing.Request {
	attachments := []string(r.Attachments)
	if !r.HasAttachments {
		attachments = nil
	}

	return filing.Request{
		RequestID:   requestID,
		JobNumber:   r.JobNumber,
		ClientCode:  r.ClientCode,
		SenderName:  r.SenderName,
		SenderEmail: r.SenderEmail,
		Recipients:  r.Recipients,
		Subject:     r.Subject,
		Body:        r.Body,
		Timestamp:   r.Timestamp,
		Attachments: attachments,
		Route:       r.Route,
		FolderType:  r.FolderType,
		SkipEmail:   r.SkipEmail,
		RecordID:    r.RecordID,
	}
}

// classifyRequest is the /classify diagnostic payload, the email subset
// of the webhook's keys.
type classifyRequest struct {
	SenderName  string     `json:"senderName"`
	SenderEmail string     `json:"senderEmail"`
	Recipients  stringList `json:"allRecipients"`
	Subject     string     `json:"subjectLine"`
	Body        string     `json:"emailContent"`
	Attachments stringList `json:"attachmentNames"`
}

func (r *classifyRequest) toEmail() classify.Email {
	return classify.Email{
		SenderName:      r.SenderName,
		SenderEmail:     r.SenderEmail,
		Recipients:      r.Recipients,
		Subject:         r.Subject,
		Body:            r.Body,
		AttachmentNames: r.Attachments,
	}
}
