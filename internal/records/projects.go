package records

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Project is a project record normalized from the record store.
type Project struct {
	RecordID   string
	JobNumber  string
	Name       string
	ClientCode string
	// FilesURL points at the project's job folder in the document store.
	// Empty when the job bag has not been provisioned yet.
	FilesURL string
	// Round is the stored round counter. Informational only; the filing
	// pipeline derives the next round from the folder tree and writes the
	// result back here.
	Round int
}

// ClientSite maps a client code to its document-store site.
type ClientSite struct {
	ClientCode string
	ClientName string
	SiteID     string
	SiteURL    string
}

// recordsResponse mirrors the record store list response.
type recordsResponse struct {
	Records []recordEnvelope `json:"records"`
}

type recordEnvelope struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// strField reads a string field, tolerating absence.
func (r *recordEnvelope) strField(name string) string {
	v, _ := r.Fields[name].(string)
	return v
}

// intField reads a numeric field, tolerating absence. The record store
// returns numbers as JSON floats.
func (r *recordEnvelope) intField(name string) int {
	v, _ := r.Fields[name].(float64)
	return int(v)
}

// findFirst runs a filterByFormula query and returns the first record,
// or ErrNoRecord.
func (c *Client) findFirst(ctx context.Context, table, formula string) (*recordEnvelope, error) {
	q := url.Values{}
	q.Set("filterByFormula", formula)
	q.Set("maxRecords", "1")

	resp, err := c.do(ctx, http.MethodGet, c.tableURL(table)+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var rr recordsResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return nil, fmt.Errorf("records: decoding response: %w", err)
	}

	if len(rr.Records) == 0 {
		return nil, ErrNoRecord
	}

	return &rr.Records[0], nil
}

// ProjectByJob looks up the project record for a job number.
// Returns ErrNoRecord when the job is unknown.
func (c *Client) ProjectByJob(ctx context.Context, jobNumber string) (*Project, error) {
	c.logger.Debug("looking up project",
		slog.String("job_number", jobNumber),
	)

	rec, err := c.findFirst(ctx, c.projectsTable, fmt.Sprintf("{Job Number} = '%s'", escapeFormula(jobNumber)))
	if err != nil {
		return nil, err
	}

	return &Project{
		RecordID:   rec.ID,
		JobNumber:  jobNumber,
		Name:       rec.strField("Job Name"),
		ClientCode: rec.strField("Client Code"),
		FilesURL:   rec.strField("Files Url"),
		Round:      rec.intField("Round"),
	}, nil
}

// SiteForClient looks up the document-store site configured for a client
// code. Returns ErrNoRecord when the client is unknown or has no site.
func (c *Client) SiteForClient(ctx context.Context, clientCode string) (*ClientSite, error) {
	c.logger.Debug("looking up client site",
		slog.String("client_code", clientCode),
	)

	rec, err := c.findFirst(ctx, c.clientsTable, fmt.Sprintf("{Client code} = '%s'", escapeFormula(clientCode)))
	if err != nil {
		return nil, err
	}

	site := &ClientSite{
		ClientCode: clientCode,
		ClientName: rec.strField("Clients"),
		SiteID:     rec.strField("Sharepoint ID"),
		SiteURL:    rec.strField("Sharepoint URL"),
	}

	if site.SiteID == "" && site.SiteURL == "" {
		return nil, fmt.Errorf("records: client %s has no site configured: %w", clientCode, ErrNoRecord)
	}

	return site, nil
}

// escapeFormula escapes single quotes for interpolation into a
// filterByFormula string literal.
func escapeFormula(v string) string {
	return strings.ReplaceAll(v, "'", "\\'")
}

// FilingUpdate carries the write-back after a successful filing.
type FilingUpdate struct {
	// Round, when positive, updates the stored round counter.
	Round int
	// FolderURL, when set, updates the latest destination link.
	FolderURL string
	// FiledAt stamps the record; zero means now.
	FiledAt time.Time
}

type patchRequest struct {
	Fields map[string]any `json:"fields"`
}

// UpdateFiling patches the project record with the outcome of a filing.
func (c *Client) UpdateFiling(ctx context.Context, recordID string, update FilingUpdate) error {
	if recordID == "" {
		return fmt.Errorf("records: update filing: empty record id")
	}

	filedAt := update.FiledAt
	if filedAt.IsZero() {
		filedAt = time.Now()
	}

	fields := map[string]any{
		"Files Updated": filedAt.Format(time.RFC3339),
	}

	if update.Round > 0 {
		fields["Round"] = update.Round
	}

	if update.FolderURL != "" {
		fields["Latest Folder URL"] = update.FolderURL
	}

	body, err := json.Marshal(patchRequest{Fields: fields})
	if err != nil {
		return fmt.Errorf("records: marshaling filing update: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPatch, c.tableURL(c.projectsTable)+"/"+recordID, bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.logger.Info("updated project record",
		slog.String("record_id", recordID),
		slog.Int("round", update.Round),
	)

	return nil
}

// activitySource identifies this service in the activity log.
const activitySource = "Dot File"

// maxActivityDetail caps the Details field; the record store rejects
// very long text.
const maxActivityDetail = 1000

// LogActivity appends a filing entry to the activity table.
func (c *Client) LogActivity(ctx context.Context, jobNumber, destination string, filesMoved []string, success bool) error {
	status := "Filed"
	if !success {
		status = "Filing failed"
	}

	details := "No files"
	if len(filesMoved) > 0 {
		details = strings.Join(filesMoved, ", ")
	}

	if len(details) > maxActivityDetail {
		details = details[:maxActivityDetail]
	}

	fields := map[string]any{
		"Job Number": jobNumber,
		"Update":     fmt.Sprintf("%s: %d file(s) to %s", status, len(filesMoved), destination),
		"Source":     activitySource,
		"Details":    details,
	}

	body, err := json.Marshal(patchRequest{Fields: fields})
	if err != nil {
		return fmt.Errorf("records: marshaling activity: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, c.tableURL(c.activityTable), bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.logger.Debug("logged filing activity",
		slog.String("job_number", jobNumber),
	)

	return nil
}
