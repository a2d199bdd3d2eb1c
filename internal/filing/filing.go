// Package filing implements the attachment filing pipeline: resolve the
// job folder, classify the email, allocate a round for outgoing work,
// materialize the destination subfolder, move the staged files into it,
// and report the outcome. Each request walks the pipeline exactly once;
// no stage is retried automatically.
package filing

import (
	"context"
)

// Request is one filing request, immutable once received.
type Request struct {
	RequestID   string
	JobNumber   string
	ClientCode  string
	SenderName  string
	SenderEmail string
	Recipients  []string
	Subject     string
	Body        string
	Timestamp   string
	Attachments []string
	// Route and FolderType carry explicit routing instructions from the
	// upstream workflow; either one bypasses classification.
	Route      string
	FolderType string
	// SkipEmail suppresses the message artifact even when a body is
	// present.
	SkipEmail bool
	// RecordID optionally pre-resolves the project record reference.
	RecordID string
}

// Result is the outcome of a successfully filed request. Partial is set
// when at least one file outcome is not "moved".
type Result struct {
	RequestID   string      `json:"request_id"`
	JobNumber   string      `json:"job_number"`
	Category    string      `json:"category"`
	Outgoing    bool        `json:"outgoing"`
	Confidence  string      `json:"confidence,omitempty"`
	Source      string      `json:"classification_source,omitempty"`
	Round       int         `json:"round,omitempty"`
	Destination Destination `json:"destination"`
	Files       []MovedFile `json:"files"`
	MessageFile string      `json:"message_file,omitempty"`
	Partial     bool        `json:"partial"`
}

// ProjectFolder is a resolved job folder in the document store.
type ProjectFolder struct {
	JobNumber string `json:"job_number"`
	SiteURL   string `json:"site_url"`
	SiteID    string `json:"site_id"`
	DriveID   string `json:"drive_id"`
	ItemID    string `json:"item_id"`
	Name      string `json:"name"`
	// Path is the folder's path under the site's default drive root,
	// without a leading slash, e.g. "Shared Documents/LAB 055 - Election 26".
	Path   string `json:"path"`
	WebURL string `json:"web_url,omitempty"`
	// RecordID and RecordRound come from the project record when one
	// exists; RecordID empty disables the reporting write-back.
	RecordID    string `json:"record_id,omitempty"`
	RecordRound int    `json:"record_round,omitempty"`
}

// Destination is the materialized folder files were filed into.
type Destination struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	WebURL string `json:"web_url,omitempty"`
	ItemID string `json:"-"`
}

// Outcome is the result of moving one file.
type Outcome string

const (
	OutcomeMoved    Outcome = "moved"
	OutcomeNotFound Outcome = "not_found"
	OutcomeFailed   Outcome = "failed"
	// OutcomeCopyRetained marks a cross-drive move whose copy was
	// accepted but whose source delete failed: the file exists at the
	// destination and a duplicate remains in staging.
	OutcomeCopyRetained Outcome = "copy_retained"
)

// MovedFile is the per-file outcome of a move.
type MovedFile struct {
	Name    string  `json:"name"`
	Outcome Outcome `json:"outcome"`
	Detail  string  `json:"detail,omitempty"`
}

// Message is the serialized email artifact uploaded alongside the
// attachments.
type Message struct {
	Filename string
	Content  string
}

// MoveRequest asks a Mover to place staged files (and optionally the
// message artifact) into a named subfolder of the job folder.
type MoveRequest struct {
	Folder     *ProjectFolder
	FolderName string
	Files      []string
	Message    *Message
}

// MoveResult reports what a Mover did.
type MoveResult struct {
	Destination Destination
	Files       []MovedFile
	MessageFile string
}

// Mover relocates staged files into the destination folder, ensuring
// the folder exists first. The in-process implementation is GraphMover;
// relay deployments delegate the whole sequence to an external
// orchestration flow.
type Mover interface {
	Move(ctx context.Context, req MoveRequest) (*MoveResult, error)
}

// partial reports whether any file outcome fell short of a clean move.
func partial(files []MovedFile) bool {
	for _, f := range files {
		if f.Outcome != OutcomeMoved {
			return true
		}
	}

	return false
}
