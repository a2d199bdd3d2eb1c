package filing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hunchagency/dotfile/internal/graph"
	"github.com/hunchagency/dotfile/internal/records"
)

// ResolverMode selects how job folders are located. Fixed at startup;
// the modes are historical alternatives, never combined per request.
type ResolverMode string

const (
	// ModePointer trusts the folder URL stored on the project record.
	ModePointer ResolverMode = "pointer"
	// ModeSearch scans the client site's drive for a folder named with
	// the job number prefix.
	ModeSearch ResolverMode = "search"
)

// filesURLMarker splits a stored files URL into site URL and folder
// path. The marker is literal: SharePoint renders the default document
// library under this segment.
const filesURLMarker = "/Shared Documents/"

// driveRootFolder is the library segment all drive paths hang off.
const driveRootFolder = "Shared Documents"

// Resolver locates the job folder for a request.
type Resolver struct {
	drive  Drive
	store  ProjectStore
	mode   ResolverMode
	logger *slog.Logger
}

// NewResolver builds a resolver operating in the given mode.
func NewResolver(drive Drive, store ProjectStore, mode ResolverMode, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}

	return &Resolver{
		drive:  drive,
		store:  store,
		mode:   mode,
		logger: logger,
	}
}

// Resolve returns the job folder for jobNumber. clientCode is only
// consulted in search mode.
func (r *Resolver) Resolve(ctx context.Context, jobNumber, clientCode string) (*ProjectFolder, error) {
	if r.mode == ModeSearch {
		return r.resolveBySearch(ctx, jobNumber, clientCode)
	}

	return r.resolveByPointer(ctx, jobNumber)
}

// resolveByPointer fetches the project record and decomposes its stored
// files URL into site and path, then confirms the folder exists.
func (r *Resolver) resolveByPointer(ctx context.Context, jobNumber string) (*ProjectFolder, error) {
	project, err := r.store.ProjectByJob(ctx, jobNumber)
	if errors.Is(err, records.ErrNoRecord) {
		return nil, newError(StageResolve, KindNotFound, jobNumber,
			fmt.Sprintf("no project found for %s", jobNumber), err)
	}
	if err != nil {
		return nil, storeError(StageResolve, jobNumber, "looking up project record", err)
	}

	if project.FilesURL == "" {
		return nil, newError(StageResolve, KindNoJobFolder, jobNumber, noJobFolderMsg(jobNumber), nil)
	}

	siteURL, folderPath, splitErr := splitFilesURL(project.FilesURL)
	if splitErr != nil {
		return nil, newError(StageResolve, KindInvalidFolderURL, jobNumber,
			fmt.Sprintf("invalid files URL for %s", jobNumber), splitErr)
	}

	site, err := r.drive.SiteByURL(ctx, siteURL)
	if err != nil {
		return nil, graphError(StageResolve, jobNumber, "resolving project site", err)
	}

	drive, err := r.drive.DefaultDrive(ctx, site.ID)
	if err != nil {
		return nil, graphError(StageResolve, jobNumber, "resolving project drive", err)
	}

	path := driveRootFolder + "/" + folderPath

	item, err := r.drive.ItemByPath(ctx, drive.ID, path)
	if errors.Is(err, graph.ErrNotFound) {
		return nil, newError(StageResolve, KindNotFound, jobNumber,
			fmt.Sprintf("job folder missing at stored path %q", folderPath), err)
	}
	if err != nil {
		return nil, graphError(StageResolve, jobNumber, "fetching job folder", err)
	}

	r.logger.Debug("job folder resolved from stored pointer",
		slog.String("job", jobNumber),
		slog.String("path", path),
	)

	return &ProjectFolder{
		JobNumber:   jobNumber,
		SiteURL:     siteURL,
		SiteID:      site.ID,
		DriveID:     drive.ID,
		ItemID:      item.ID,
		Name:        item.Name,
		Path:        path,
		WebURL:      item.WebURL,
		RecordID:    project.RecordID,
		RecordRound: project.Round,
	}, nil
}

// resolveBySearch lists the client site's document library and matches
// folders by job number prefix.
func (r *Resolver) resolveBySearch(ctx context.Context, jobNumber, clientCode string) (*ProjectFolder, error) {
	if clientCode == "" {
		return nil, newError(StageResolve, KindValidation, jobNumber,
			"client code is required in search mode", nil)
	}

	clientSite, err := r.store.SiteForClient(ctx, clientCode)
	if errors.Is(err, records.ErrNoRecord) {
		return nil, newError(StageResolve, KindNotFound, jobNumber,
			fmt.Sprintf("no site configured for client %s", clientCode), err)
	}
	if err != nil {
		return nil, storeError(StageResolve, jobNumber, "looking up client site", err)
	}

	siteID := clientSite.SiteID
	siteURL := clientSite.SiteURL

	if siteID == "" {
		site, siteErr := r.drive.SiteByURL(ctx, siteURL)
		if siteErr != nil {
			return nil, graphError(StageResolve, jobNumber, "resolving client site", siteErr)
		}

		siteID = site.ID
	}

	drive, err := r.drive.DefaultDrive(ctx, siteID)
	if err != nil {
		return nil, graphError(StageResolve, jobNumber, "resolving client drive", err)
	}

	children, err := r.drive.ListChildrenByPath(ctx, drive.ID, driveRootFolder)
	if err != nil {
		return nil, graphError(StageResolve, jobNumber, "listing client document library", err)
	}

	prefix := strings.TrimSpace(jobNumber)

	var matches []graph.Item
	for _, child := range children {
		if child.IsFolder && strings.HasPrefix(child.Name, prefix) {
			matches = append(matches, child)
		}
	}

	if len(matches) == 0 {
		return nil, newError(StageResolve, KindNotFound, jobNumber,
			fmt.Sprintf("no folder matching %s", prefix), nil)
	}

	// First match in listing order wins; ambiguity is logged, not
	// resolved further.
	if len(matches) > 1 {
		r.logger.Warn("multiple folders match job prefix, using first",
			slog.String("job", jobNumber),
			slog.Int("matches", len(matches)),
			slog.String("chosen", matches[0].Name),
		)
	}

	folder := matches[0]

	result := &ProjectFolder{
		JobNumber: jobNumber,
		SiteURL:   siteURL,
		SiteID:    siteID,
		DriveID:   drive.ID,
		ItemID:    folder.ID,
		Name:      folder.Name,
		Path:      driveRootFolder + "/" + folder.Name,
		WebURL:    folder.WebURL,
	}

	// The project record is only needed for the reporting write-back;
	// its absence must not block a filing whose folder exists.
	project, err := r.store.ProjectByJob(ctx, jobNumber)
	switch {
	case errors.Is(err, records.ErrNoRecord):
		r.logger.Debug("no project record for job, write-back disabled",
			slog.String("job", jobNumber))
	case err != nil:
		r.logger.Warn("project record lookup failed, write-back disabled",
			slog.String("job", jobNumber),
			slog.String("error", err.Error()))
	default:
		result.RecordID = project.RecordID
		result.RecordRound = project.Round
	}

	return result, nil
}

// splitFilesURL decomposes a stored files URL into the site URL and the
// folder path after the document-library marker.
func splitFilesURL(filesURL string) (siteURL, folderPath string, err error) {
	idx := strings.Index(filesURL, filesURLMarker)
	if idx < 0 {
		return "", "", fmt.Errorf("missing %q marker", filesURLMarker)
	}

	siteURL = filesURL[:idx]
	folderPath = strings.Trim(filesURL[idx+len(filesURLMarker):], "/")

	if siteURL == "" || folderPath == "" {
		return "", "", fmt.Errorf("empty site or folder component")
	}

	return siteURL, folderPath, nil
}
