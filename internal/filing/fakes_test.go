package filing

import (
	"context"
	"io"
	"log/slog"

	"github.com/hunchagency/dotfile/internal/classify"
	"github.com/hunchagency/dotfile/internal/graph"
	"github.com/hunchagency/dotfile/internal/ledger"
	"github.com/hunchagency/dotfile/internal/records"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeDrive is a canned document store shared by the package tests.
// Lookups are keyed by (driveID, path) or (driveID, parentID); the
// err fields force failures, the slice fields record calls.
type fakeDrive struct {
	sites      map[string]graph.Site   // site URL → site
	drives     map[string]graph.Drive  // site ID → drive
	items      map[string]graph.Item   // driveID + ":" + path → item
	kids       map[string][]graph.Item // driveID + ":" + parentID → children
	kidsByPath map[string][]graph.Item // driveID + ":" + path → children

	siteErr       error
	driveErr      error
	itemErr       error
	listErr       error
	listByPathErr error
	createErr     error
	moveErr       error
	copyErr       error
	deleteErr     error
	uploadErr     error

	// conflictWinner, when set, makes CreateFolder lose the race: the
	// winner lands in the parent's children and ErrConflict is
	// returned.
	conflictWinner *graph.Item

	created  []string
	moved    []string
	copied   []string
	deleted  []string
	uploaded []string
}

func driveKey(driveID, k string) string { return driveID + ":" + k }

func (d *fakeDrive) SiteByURL(_ context.Context, siteURL string) (*graph.Site, error) {
	if d.siteErr != nil {
		return nil, d.siteErr
	}

	site, ok := d.sites[siteURL]
	if !ok {
		return nil, graph.ErrNotFound
	}

	return &site, nil
}

func (d *fakeDrive) DefaultDrive(_ context.Context, siteID string) (*graph.Drive, error) {
	if d.driveErr != nil {
		return nil, d.driveErr
	}

	drive, ok := d.drives[siteID]
	if !ok {
		return nil, graph.ErrNotFound
	}

	return &drive, nil
}

func (d *fakeDrive) ItemByPath(_ context.Context, driveID, remotePath string) (*graph.Item, error) {
	if d.itemErr != nil {
		return nil, d.itemErr
	}

	item, ok := d.items[driveKey(driveID, remotePath)]
	if !ok {
		return nil, graph.ErrNotFound
	}

	return &item, nil
}

func (d *fakeDrive) ListChildren(_ context.Context, driveID, parentID string) ([]graph.Item, error) {
	if d.listErr != nil {
		return nil, d.listErr
	}

	return d.kids[driveKey(driveID, parentID)], nil
}

func (d *fakeDrive) ListChildrenByPath(_ context.Context, driveID, remotePath string) ([]graph.Item, error) {
	if d.listByPathErr != nil {
		return nil, d.listByPathErr
	}

	return d.kidsByPath[driveKey(driveID, remotePath)], nil
}

func (d *fakeDrive) CreateFolder(_ context.Context, driveID, parentID, name string) (*graph.Item, error) {
	d.created = append(d.created, name)

	if d.kids == nil {
		d.kids = map[string][]graph.Item{}
	}
	key := driveKey(driveID, parentID)

	if d.conflictWinner != nil {
		d.kids[key] = append(d.kids[key], *d.conflictWinner)

		return nil, graph.ErrConflict
	}

	if d.createErr != nil {
		return nil, d.createErr
	}

	item := graph.Item{
		ID:       "created-" + name,
		Name:     name,
		DriveID:  driveID,
		ParentID: parentID,
		IsFolder: true,
		WebURL:   "https://example.sharepoint.com/folders/" + name,
	}

	d.kids[key] = append(d.kids[key], item)

	return &item, nil
}

func (d *fakeDrive) MoveItem(_ context.Context, _ string, itemID, _ string) (*graph.Item, error) {
	if d.moveErr != nil {
		return nil, d.moveErr
	}

	d.moved = append(d.moved, itemID)

	return &graph.Item{ID: itemID}, nil
}

func (d *fakeDrive) CopyItem(_ context.Context, _ string, itemID, _, _, _ string) error {
	if d.copyErr != nil {
		return d.copyErr
	}

	d.copied = append(d.copied, itemID)

	return nil
}

func (d *fakeDrive) DeleteItem(_ context.Context, _ string, itemID string) error {
	if d.deleteErr != nil {
		return d.deleteErr
	}

	d.deleted = append(d.deleted, itemID)

	return nil
}

func (d *fakeDrive) Upload(_ context.Context, driveID, parentID, name string, _ io.Reader) (*graph.Item, error) {
	if d.uploadErr != nil {
		return nil, d.uploadErr
	}

	d.uploaded = append(d.uploaded, name)

	return &graph.Item{ID: "uploaded-" + name, Name: name, DriveID: driveID, ParentID: parentID}, nil
}

// fakeStore is a canned project record store.
type fakeStore struct {
	project    *records.Project
	projectErr error
	site       *records.ClientSite
	siteErr    error

	updateErr   error
	activityErr error

	updates    []records.FilingUpdate
	updateIDs  []string
	activities []activityCall
}

type activityCall struct {
	job         string
	destination string
	files       []string
	success     bool
}

func (s *fakeStore) ProjectByJob(_ context.Context, _ string) (*records.Project, error) {
	if s.projectErr != nil {
		return nil, s.projectErr
	}

	return s.project, nil
}

func (s *fakeStore) SiteForClient(_ context.Context, _ string) (*records.ClientSite, error) {
	if s.siteErr != nil {
		return nil, s.siteErr
	}

	return s.site, nil
}

func (s *fakeStore) UpdateFiling(_ context.Context, recordID string, update records.FilingUpdate) error {
	if s.updateErr != nil {
		return s.updateErr
	}

	s.updateIDs = append(s.updateIDs, recordID)
	s.updates = append(s.updates, update)

	return nil
}

func (s *fakeStore) LogActivity(_ context.Context, jobNumber, destination string, filesMoved []string, success bool) error {
	if s.activityErr != nil {
		return s.activityErr
	}

	s.activities = append(s.activities, activityCall{
		job:         jobNumber,
		destination: destination,
		files:       filesMoved,
		success:     success,
	})

	return nil
}

// fakeClassifier returns a fixed verdict and records its inputs.
type fakeClassifier struct {
	verdict *classify.Verdict
	source  classify.Source
	emails  []classify.Email
}

func (c *fakeClassifier) Classify(_ context.Context, email classify.Email) (*classify.Verdict, classify.Source) {
	c.emails = append(c.emails, email)

	return c.verdict, c.source
}

// fakeLedger records entries in memory.
type fakeLedger struct {
	err     error
	entries []ledger.Entry
}

func (l *fakeLedger) Record(_ context.Context, entry ledger.Entry) error {
	if l.err != nil {
		return l.err
	}

	l.entries = append(l.entries, entry)

	return nil
}

// fakeMover returns a canned move result and records requests.
type fakeMover struct {
	result *MoveResult
	err    error
	reqs   []MoveRequest
}

func (m *fakeMover) Move(_ context.Context, req MoveRequest) (*MoveResult, error) {
	m.reqs = append(m.reqs, req)
	if m.err != nil {
		return nil, m.err
	}

	return m.result, nil
}
