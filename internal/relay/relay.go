// Package relay delegates move operations to an external orchestration
// flow that wraps the document store. The flow receives one request
// naming the staged files and the destination, creates the folder
// itself, moves the files, and optionally writes the message artifact.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hunchagency/dotfile/internal/filing"
)

// defaultTimeout bounds one relay call. File operations are slow
// server-side; two minutes mirrors what the flow itself allows.
const defaultTimeout = 120 * time.Second

// maxErrorBody caps how much of an error response is carried into
// logs and messages.
const maxErrorBody = 512

// Mover implements filing.Mover by delegating to the orchestration
// flow.
type Mover struct {
	url           string
	sourceSiteURL string
	sourcePath    string // drive path without leading slash
	httpClient    *http.Client
	logger        *slog.Logger
}

// NewMover builds a relay-backed mover posting to flowURL. Staged
// files are expected at sourcePath on the site at sourceSiteURL;
// surrounding slashes are trimmed.
func NewMover(flowURL, sourceSiteURL, sourcePath string, timeout time.Duration, logger *slog.Logger) *Mover {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Mover{
		url:           flowURL,
		sourceSiteURL: sourceSiteURL,
		sourcePath:    strings.Trim(sourcePath, "/"),
		httpClient:    &http.Client{Timeout: timeout},
		logger:        logger,
	}
}

// filingPayload mirrors the request JSON the flow expects. Paths carry
// a leading slash on the wire.
type filingPayload struct {
	SourceSiteURL string   `json:"sourceSiteUrl"`
	SourcePath    string   `json:"sourcePath"`
	SourceFiles   []string `json:"sourceFiles"`
	DestSiteURL   string   `json:"destSiteUrl"`
	DestPath      string   `json:"destPath"`
	CreateFolder  bool     `json:"createFolder"`
	SaveEmail     bool     `json:"saveEmail"`
	EmailFilename string   `json:"emailFilename"`
	EmailContent  string   `json:"emailContent"`
}

// filingResult mirrors the flow's response JSON. SourceFiles lists the
// files the flow confirmed moved; EmailSaved is the artifact filename
// when one was written.
type filingResult struct {
	Success       bool     `json:"success"`
	DestFolderURL string   `json:"destFolderUrl"`
	SourceFiles   []string `json:"sourceFiles"`
	EmailSaved    string   `json:"emailSaved"`
	Error         string   `json:"error"`
}

// Move implements filing.Mover.
func (m *Mover) Move(ctx context.Context, req filing.MoveRequest) (*filing.MoveResult, error) {
	files := req.Files
	if files == nil {
		files = []string{}
	}

	payload := filingPayload{
		SourceSiteURL: m.sourceSiteURL,
		SourcePath:    "/" + m.sourcePath,
		SourceFiles:   files,
		DestSiteURL:   req.Folder.SiteURL,
		DestPath:      "/" + req.Folder.Path + "/" + req.FolderName,
		CreateFolder:  true,
		SaveEmail:     req.Message != nil,
	}

	if req.Message != nil {
		payload.EmailFilename = req.Message.Filename
		payload.EmailContent = req.Message.Content
	}

	m.logger.Info("delegating move to relay",
		slog.String("job", req.Folder.JobNumber),
		slog.String("dest_path", payload.DestPath),
		slog.Int("files", len(files)),
		slog.Bool("save_email", payload.SaveEmail),
	)

	result, err := m.call(ctx, payload)
	if err != nil {
		return nil, m.moveError(req.Folder.JobNumber, err)
	}

	if !result.Success {
		msg := result.Error
		if msg == "" {
			msg = "relay reported failure without detail"
		}

		return nil, &filing.Error{
			Stage: filing.StageMove,
			Kind:  filing.KindUpstream,
			Job:   req.Folder.JobNumber,
			Msg:   msg,
		}
	}

	return m.toMoveResult(req, result), nil
}

// call posts the payload and decodes the flow's response.
func (m *Mover) call(ctx context.Context, payload filingPayload) (*filingResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("relay: marshaling payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("relay: building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("relay: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		return nil, fmt.Errorf("relay: returned %d: %s", resp.StatusCode, snippet)
	}

	var result filingResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("relay: decoding response: %w", err)
	}

	return &result, nil
}

// toMoveResult maps the flow's confirmation back onto the request.
// Files the flow did not confirm are recorded as failed, not dropped.
func (m *Mover) toMoveResult(req filing.MoveRequest, result *filingResult) *filing.MoveResult {
	confirmed := make(map[string]struct{}, len(result.SourceFiles))
	for _, name := range result.SourceFiles {
		confirmed[name] = struct{}{}
	}

	moved := make([]filing.MovedFile, 0, len(req.Files))
	for _, name := range req.Files {
		if _, ok := confirmed[name]; ok {
			moved = append(moved, filing.MovedFile{Name: name, Outcome: filing.OutcomeMoved})
			continue
		}

		moved = append(moved, filing.MovedFile{
			Name:    name,
			Outcome: filing.OutcomeFailed,
			Detail:  "not confirmed by relay",
		})
	}

	if req.Message != nil && result.EmailSaved == "" {
		moved = append(moved, filing.MovedFile{
			Name:    req.Message.Filename,
			Outcome: filing.OutcomeFailed,
			Detail:  "not confirmed by relay",
		})
	}

	return &filing.MoveResult{
		Destination: filing.Destination{
			Name:   req.FolderName,
			Path:   req.Folder.Path + "/" + req.FolderName,
			WebURL: result.DestFolderURL,
		},
		Files:       moved,
		MessageFile: result.EmailSaved,
	}
}

// moveError classifies a transport failure. Deadline overruns surface
// as timeouts the caller may retry; everything else is upstream
// failure.
func (m *Mover) moveError(job string, err error) *filing.Error {
	kind := filing.KindUpstream

	var uerr *url.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &uerr) && uerr.Timeout()) {
		kind = filing.KindTimeout
	}

	return &filing.Error{
		Stage: filing.StageMove,
		Kind:  kind,
		Job:   job,
		Msg:   "calling relay",
		Err:   err,
	}
}
