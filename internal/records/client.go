// Package records is a client for the tabular record store (Airtable)
// holding project records, client site mappings, and the activity log.
package records

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// ErrNoRecord is returned when a lookup matches no record.
var ErrNoRecord = errors.New("records: no matching record")

// Client talks to the record store REST API.
type Client struct {
	baseURL       string
	apiKey        string
	baseID        string
	projectsTable string
	activityTable string
	clientsTable  string
	httpClient    *http.Client
	logger        *slog.Logger
}

// NewClient creates a record store client. baseURL is typically
// "https://api.airtable.com/v0".
func NewClient(baseURL, apiKey, baseID, projectsTable, activityTable string, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:       baseURL,
		apiKey:        apiKey,
		baseID:        baseID,
		projectsTable: projectsTable,
		activityTable: activityTable,
		clientsTable:  "Clients",
		httpClient:    httpClient,
		logger:        logger,
	}
}

// tableURL builds the API URL for a table.
func (c *Client) tableURL(table string) string {
	return fmt.Sprintf("%s/%s/%s", c.baseURL, c.baseID, table)
}

// do executes a request with auth headers and returns the response for
// 2xx statuses. Non-2xx responses are read, closed, and returned as errors.
func (c *Client) do(ctx context.Context, method, url string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("records: creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("records: %s %s: %w", method, url, err)
	}

	if resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices {
		return resp, nil
	}

	errBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()

	if readErr != nil {
		errBody = []byte("(failed to read response body)")
	}

	c.logger.Warn("record store request failed",
		slog.String("method", method),
		slog.Int("status", resp.StatusCode),
	)

	return nil, fmt.Errorf("records: HTTP %d: %s", resp.StatusCode, string(errBody))
}
