package filing

import (
	"context"
	"io"

	"github.com/hunchagency/dotfile/internal/classify"
	"github.com/hunchagency/dotfile/internal/graph"
	"github.com/hunchagency/dotfile/internal/ledger"
	"github.com/hunchagency/dotfile/internal/records"
)

// Drive is the document-store surface the pipeline needs. Satisfied by
// *graph.Client.
type Drive interface {
	SiteByURL(ctx context.Context, siteURL string) (*graph.Site, error)
	DefaultDrive(ctx context.Context, siteID string) (*graph.Drive, error)
	ItemByPath(ctx context.Context, driveID, remotePath string) (*graph.Item, error)
	ListChildren(ctx context.Context, driveID, parentID string) ([]graph.Item, error)
	ListChildrenByPath(ctx context.Context, driveID, remotePath string) ([]graph.Item, error)
	CreateFolder(ctx context.Context, driveID, parentID, name string) (*graph.Item, error)
	MoveItem(ctx context.Context, driveID, itemID, newParentID string) (*graph.Item, error)
	CopyItem(ctx context.Context, srcDriveID, itemID, dstDriveID, dstParentID, name string) error
	DeleteItem(ctx context.Context, driveID, itemID string) error
	Upload(ctx context.Context, driveID, parentID, name string, r io.Reader) (*graph.Item, error)
}

// TreeLister lists a folder's immediate children. Satisfied by
// *graph.Client; the round allocator needs nothing more.
type TreeLister interface {
	ListChildren(ctx context.Context, driveID, parentID string) ([]graph.Item, error)
}

// ProjectStore is the record-store surface. Satisfied by
// *records.Client.
type ProjectStore interface {
	ProjectByJob(ctx context.Context, jobNumber string) (*records.Project, error)
	SiteForClient(ctx context.Context, clientCode string) (*records.ClientSite, error)
	UpdateFiling(ctx context.Context, recordID string, update records.FilingUpdate) error
	LogActivity(ctx context.Context, jobNumber, destination string, filesMoved []string, success bool) error
}

// Classifier produces a verdict for an email. Satisfied by
// *classify.Classifier.
type Classifier interface {
	Classify(ctx context.Context, email classify.Email) (*classify.Verdict, classify.Source)
}

// Ledger records filing history. Satisfied by *ledger.Store; a nil
// Ledger disables history.
type Ledger interface {
	Record(ctx context.Context, entry ledger.Entry) error
}
