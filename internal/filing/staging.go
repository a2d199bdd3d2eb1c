package filing

import (
	"context"
	"strings"

	"github.com/hunchagency/dotfile/internal/graph"
)

// Staging reads the fixed folder where the mail workflow drops
// attachments before filing.
type Staging struct {
	drive   Drive
	siteURL string
	path    string // drive path without leading slash
}

// NewStaging points at the staging folder at path (e.g.
// "Shared Documents/-- Incoming") on the site at siteURL. Surrounding
// slashes are trimmed; configs written as absolute site paths work
// unchanged.
func NewStaging(drive Drive, siteURL, path string) *Staging {
	return &Staging{drive: drive, siteURL: siteURL, path: strings.Trim(path, "/")}
}

// List resolves the staging drive and returns its ID with the folder's
// current children. The type holds no resolved IDs itself; lookups go
// through the drive client, which caches site and drive resolution, so
// a repeat call costs one children listing.
func (s *Staging) List(ctx context.Context) (string, []graph.Item, error) {
	site, err := s.drive.SiteByURL(ctx, s.siteURL)
	if err != nil {
		return "", nil, err
	}

	drive, err := s.drive.DefaultDrive(ctx, site.ID)
	if err != nil {
		return "", nil, err
	}

	children, err := s.drive.ListChildrenByPath(ctx, drive.ID, s.path)
	if err != nil {
		return "", nil, err
	}

	return drive.ID, children, nil
}
