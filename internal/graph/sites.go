package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// siteResponse mirrors the Graph API site JSON response.
// Unexported; callers use Site via toSite() normalization.
type siteResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	WebURL string `json:"webUrl"`
}

func (s *siteResponse) toSite() Site {
	return Site{
		ID:     s.ID,
		Name:   s.Name,
		WebURL: s.WebURL,
	}
}

// driveResponse mirrors the Graph API drive JSON response.
// Unexported; callers use Drive via toDrive() normalization.
type driveResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	DriveType string `json:"driveType"`
	WebURL    string `json:"webUrl"`
}

func (d *driveResponse) toDrive() Drive {
	return Drive{
		// Normalize to lowercase: Graph API returns inconsistent casing
		// for drive IDs across endpoints.
		ID:        strings.ToLower(d.ID),
		Name:      d.Name,
		DriveType: d.DriveType,
		WebURL:    d.WebURL,
	}
}

// SiteByURL resolves a site web URL like
// "https://contoso.sharepoint.com/sites/filing" to its Graph site.
// Results are cached for the life of the client.
func (c *Client) SiteByURL(ctx context.Context, siteURL string) (*Site, error) {
	c.mu.Lock()
	if site, ok := c.siteCache[siteURL]; ok {
		c.mu.Unlock()
		return &site, nil
	}
	c.mu.Unlock()

	u, err := url.Parse(siteURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("graph: invalid site URL %q", siteURL)
	}

	sitePath := strings.TrimSuffix(u.Path, "/")
	if sitePath == "" {
		return nil, fmt.Errorf("graph: site URL %q has no site path", siteURL)
	}

	c.logger.Info("resolving site",
		slog.String("site_url", siteURL),
	)

	resp, err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/sites/%s:%s", u.Host, encodePathSegments(sitePath)), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var sr siteResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("graph: decoding site response: %w", err)
	}

	site := sr.toSite()

	c.mu.Lock()
	c.siteCache[siteURL] = site
	c.mu.Unlock()

	c.logger.Debug("resolved site",
		slog.String("site_id", site.ID),
		slog.String("name", site.Name),
	)

	return &site, nil
}

// DefaultDrive returns the site's default document library.
// Results are cached for the life of the client.
func (c *Client) DefaultDrive(ctx context.Context, siteID string) (*Drive, error) {
	c.mu.Lock()
	if drive, ok := c.driveCache[siteID]; ok {
		c.mu.Unlock()
		return &drive, nil
	}
	c.mu.Unlock()

	c.logger.Info("resolving default drive",
		slog.String("site_id", siteID),
	)

	resp, err := c.Do(ctx, http.MethodGet, fmt.Sprintf("/sites/%s/drive", siteID), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var dr driveResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return nil, fmt.Errorf("graph: decoding drive response: %w", err)
	}

	drive := dr.toDrive()

	c.mu.Lock()
	c.driveCache[siteID] = drive
	c.mu.Unlock()

	c.logger.Debug("resolved drive",
		slog.String("drive_id", drive.ID),
		slog.String("drive_type", drive.DriveType),
	)

	return &drive, nil
}
