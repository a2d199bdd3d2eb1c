package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
)

// Upload writes content as a named file under the given parent folder
// using a single PUT request. Existing files with the same name are
// replaced. Suitable only for small payloads (well under the 4 MB
// single-request limit); the filing pipeline uses it for message
// artifacts.
func (c *Client) Upload(ctx context.Context, driveID, parentID, name string, r io.Reader) (*Item, error) {
	c.logger.Info("uploading file",
		slog.String("drive_id", driveID),
		slog.String("parent_id", parentID),
		slog.String("name", name),
	)

	path := fmt.Sprintf("/drives/%s/items/%s:/%s:/content", driveID, parentID, url.PathEscape(name))

	resp, err := c.DoRaw(ctx, http.MethodPut, path, "application/octet-stream", r)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var dir driveItemResponse
	if decErr := json.NewDecoder(resp.Body).Decode(&dir); decErr != nil {
		return nil, fmt.Errorf("graph: decoding upload response: %w", decErr)
	}

	item := dir.toItem()

	return &item, nil
}
