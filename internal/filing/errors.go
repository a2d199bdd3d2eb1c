package filing

import (
	"context"
	"errors"
	"fmt"

	"github.com/hunchagency/dotfile/internal/graph"
)

// Stage names the pipeline step a failure occurred in. Carried on every
// fatal error and into logs and responses.
type Stage string

const (
	StageResolve     Stage = "resolve"
	StageClassify    Stage = "classify"
	StageRound       Stage = "round"
	StageMaterialize Stage = "materialize"
	StageMove        Stage = "move"
	StageReport      Stage = "report"
)

// Kind classifies a filing failure for callers that map it onto a
// transport status.
type Kind string

const (
	KindValidation       Kind = "validation"
	KindNotFound         Kind = "not_found"
	KindNoJobFolder      Kind = "no_job_folder"
	KindInvalidFolderURL Kind = "invalid_folder_url"
	KindAuth             Kind = "auth"
	KindFolderCreate     Kind = "folder_create"
	KindTimeout          Kind = "upstream_timeout"
	KindUpstream         Kind = "upstream"
)

// Error is a stage-tagged fatal filing failure.
type Error struct {
	Stage Stage
	Kind  Kind
	Job   string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("filing %s (%s): %s: %v", e.Stage, e.Job, e.Msg, e.Err)
	}

	return fmt.Sprintf("filing %s (%s): %s", e.Stage, e.Job, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// newError builds a stage-tagged error. err may be nil.
func newError(stage Stage, kind Kind, job, msg string, err error) *Error {
	return &Error{Stage: stage, Kind: kind, Job: job, Msg: msg, Err: err}
}

// noJobFolderMsg is the user-actionable instruction returned when a
// project has never been provisioned with a folder.
func noJobFolderMsg(job string) string {
	return fmt.Sprintf("No job bag for %s. Reply TRIAGE to set one up.", job)
}

// upstreamKind maps a document-store error onto a failure kind.
func upstreamKind(err error) Kind {
	switch {
	case errors.Is(err, graph.ErrTimeout):
		return KindTimeout
	case errors.Is(err, graph.ErrNotFound):
		return KindNotFound
	case errors.Is(err, graph.ErrAuth),
		errors.Is(err, graph.ErrUnauthorized),
		errors.Is(err, graph.ErrForbidden):
		return KindAuth
	default:
		return KindUpstream
	}
}

// graphError wraps a document-store failure with stage context.
func graphError(stage Stage, job, msg string, err error) *Error {
	return newError(stage, upstreamKind(err), job, msg, err)
}

// storeError wraps a record-store failure with stage context.
func storeError(stage Stage, job, msg string, err error) *Error {
	kind := KindUpstream
	if errors.Is(err, context.DeadlineExceeded) {
		kind = KindTimeout
	}

	return newError(stage, kind, job, msg, err)
}
