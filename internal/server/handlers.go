package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/hunchagency/dotfile/internal/classify"
	"github.com/hunchagency/dotfile/internal/filing"
	"github.com/hunchagency/dotfile/internal/graph"
	"github.com/hunchagency/dotfile/internal/ledger"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, struct {
		Status  string `json:"status"`
		Service string `json:"service"`
		Version string `json:"version"`
	}{Status: "ok", Service: "dotfile", Version: s.version})
}

// handleFile is the filing webhook.
func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	var req fileRequest
	if err := parseJSON(w, r, &req); err != nil {
		respondProblem(w, problem{Status: http.StatusBadRequest, Detail: err.Error()})
		return
	}

	if err := req.Validate(); err != nil {
		respondProblem(w, problem{Status: http.StatusBadRequest, Detail: err.Error()})
		return
	}

	freq := req.toFiling(uuid.New().String())

	result, err := s.engine.File(r.Context(), freq)
	if err != nil {
		s.respondFilingError(w, freq.RequestID, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// handleClassify runs classification only, for debugging verdicts
// without touching any folder.
func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if err := parseJSON(w, r, &req); err != nil {
		respondProblem(w, problem{Status: http.StatusBadRequest, Detail: err.Error()})
		return
	}

	verdict, source := s.classifier.Classify(r.Context(), req.toEmail())

	respondJSON(w, http.StatusOK, struct {
		*classify.Verdict
		Source classify.Source `json:"source"`
	}{verdict, source})
}

// handleJobFolder runs folder resolution only. The client query
// parameter feeds search mode; pointer mode ignores it.
func (s *Server) handleJobFolder(w http.ResponseWriter, r *http.Request) {
	folder, err := s.resolver.Resolve(r.Context(), r.PathValue("job"), r.URL.Query().Get("client"))
	if err != nil {
		s.respondFilingError(w, "", err)
		return
	}

	respondJSON(w, http.StatusOK, folder)
}

// handleIncoming lists the staging folder's current contents.
func (s *Server) handleIncoming(w http.ResponseWriter, r *http.Request) {
	driveID, items, err := s.staging.List(r.Context())
	if err != nil {
		respondProblem(w, problem{
			Status: upstreamStatus(err),
			Detail: "listing staging folder: " + err.Error(),
		})

		return
	}

	type stagedFile struct {
		Name string `json:"name"`
		Size int64  `json:"size"`
		ID   string `json:"id"`
	}

	files := make([]stagedFile, 0, len(items))
	for _, item := range items {
		files = append(files, stagedFile{Name: item.Name, Size: item.Size, ID: item.ID})
	}

	respondJSON(w, http.StatusOK, struct {
		DriveID string       `json:"drive_id"`
		Count   int          `json:"count"`
		Files   []stagedFile `json:"files"`
	}{DriveID: driveID, Count: len(files), Files: files})
}

// handleFilings returns recent ledger entries, newest first.
func (s *Server) handleFilings(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		respondProblem(w, problem{Status: http.StatusNotFound, Detail: "filing history is not enabled"})
		return
	}

	limit := 0

	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondProblem(w, problem{Status: http.StatusBadRequest, Detail: "limit must be a positive integer"})
			return
		}

		limit = n
	}

	entries, err := s.history.Recent(r.Context(), limit)
	if err != nil {
		s.logger.Error("reading filing history", slog.String("error", err.Error()))
		respondProblem(w, problem{Status: http.StatusInternalServerError, Detail: "reading filing history"})

		return
	}

	if entries == nil {
		entries = []ledger.Entry{}
	}

	respondJSON(w, http.StatusOK, struct {
		Filings []ledger.Entry `json:"filings"`
	}{Filings: entries})
}

// respondFilingError renders a pipeline failure as a problem body
// carrying the stage it failed in.
func (s *Server) respondFilingError(w http.ResponseWriter, requestID string, err error) {
	var ferr *filing.Error
	if !errors.As(err, &ferr) {
		respondProblem(w, problem{
			Status:    http.StatusInternalServerError,
			Detail:    "internal error",
			RequestID: requestID,
		})

		return
	}

	detail := ferr.Msg
	if ferr.Err != nil {
		detail = ferr.Msg + ": " + ferr.Err.Error()
	}

	respondProblem(w, problem{
		Status:    kindStatus(ferr.Kind),
		Detail:    detail,
		Stage:     string(ferr.Stage),
		RequestID: requestID,
	})
}

// kindStatus maps a filing failure kind onto an HTTP status.
func kindStatus(kind filing.Kind) int {
	switch kind {
	case filing.KindValidation:
		return http.StatusBadRequest
	case filing.KindNotFound:
		return http.StatusNotFound
	case filing.KindNoJobFolder, filing.KindInvalidFolderURL:
		return http.StatusUnprocessableEntity
	case filing.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		// Auth, folder-create, and other upstream faults all read as
		// bad gateway: the request was fine, the upstream was not.
		return http.StatusBadGateway
	}
}

// upstreamStatus maps a raw document-store error onto an HTTP status
// for the diagnostic endpoints.
func upstreamStatus(err error) int {
	switch {
	case errors.Is(err, graph.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, graph.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}
