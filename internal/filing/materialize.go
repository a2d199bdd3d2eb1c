package filing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/text/unicode/norm"

	"github.com/hunchagency/dotfile/internal/classify"
	"github.com/hunchagency/dotfile/internal/graph"
)

// managedPrefix marks folders the filing engine owns inside a job
// folder, sorting them above the job's own content.
const managedPrefix = "-- "

// managedCategories are the names normalized to the managed prefix.
// Already-prefixed names pass through untouched.
var managedCategories = map[string]struct{}{
	"Briefs":   {},
	"Feedback": {},
	"Other":    {},
}

// ManagedName normalizes a category folder name to its prefixed form.
// Names outside the managed set, including already-prefixed ones, are
// returned unchanged.
func ManagedName(name string) string {
	if _, ok := managedCategories[name]; ok {
		return managedPrefix + name
	}

	return name
}

// CategoryFolderName returns the destination folder name for a
// classification category.
func CategoryFolderName(category classify.Category) string {
	return ManagedName(string(category))
}

// RoundFolderName returns the folder name for a delivery round.
func RoundFolderName(round int) string {
	return fmt.Sprintf("%sRound %d", managedPrefix, round)
}

// Materializer ensures destination subfolders exist inside a job
// folder.
type Materializer struct {
	drive  Drive
	logger *slog.Logger
}

// NewMaterializer builds a materializer creating folders through drive.
func NewMaterializer(drive Drive, logger *slog.Logger) *Materializer {
	if logger == nil {
		logger = slog.Default()
	}

	return &Materializer{drive: drive, logger: logger}
}

// Ensure returns the named subfolder of the job folder, creating it if
// absent. Creation uses conflict-fail semantics: when a concurrent
// request wins the race, the conflict response is authoritative and the
// winner's folder is adopted by re-listing. Any other creation failure
// is fatal to the request.
func (m *Materializer) Ensure(ctx context.Context, folder *ProjectFolder, name string) (*Destination, error) {
	children, err := m.drive.ListChildren(ctx, folder.DriveID, folder.ItemID)
	if err != nil {
		return nil, graphError(StageMaterialize, folder.JobNumber, "listing job folder", err)
	}

	if existing := findByName(children, name); existing != nil {
		m.logger.Debug("destination folder exists",
			slog.String("job", folder.JobNumber),
			slog.String("folder", name),
		)

		return destination(folder, existing), nil
	}

	m.logger.Info("creating destination folder",
		slog.String("job", folder.JobNumber),
		slog.String("folder", name),
	)

	created, err := m.drive.CreateFolder(ctx, folder.DriveID, folder.ItemID, name)
	if err == nil {
		return destination(folder, created), nil
	}

	if errors.Is(err, graph.ErrConflict) {
		children, listErr := m.drive.ListChildren(ctx, folder.DriveID, folder.ItemID)
		if listErr != nil {
			return nil, graphError(StageMaterialize, folder.JobNumber,
				"re-listing job folder after create conflict", listErr)
		}

		if winner := findByName(children, name); winner != nil {
			m.logger.Debug("adopting folder created by concurrent request",
				slog.String("job", folder.JobNumber),
				slog.String("folder", name),
			)

			return destination(folder, winner), nil
		}

		return nil, newError(StageMaterialize, KindFolderCreate, folder.JobNumber,
			fmt.Sprintf("folder %q conflicted but is not listed", name), err)
	}

	return nil, newError(StageMaterialize, KindFolderCreate, folder.JobNumber,
		fmt.Sprintf("creating folder %q", name), err)
}

// findByName matches a child folder by exact name. Names are NFC
// normalized on both sides; the document store may return decomposed
// forms for names that compare equal.
func findByName(children []graph.Item, name string) *graph.Item {
	want := norm.NFC.String(name)
	for i := range children {
		if children[i].IsFolder && norm.NFC.String(children[i].Name) == want {
			return &children[i]
		}
	}

	return nil
}

func destination(folder *ProjectFolder, item *graph.Item) *Destination {
	return &Destination{
		Name:   item.Name,
		Path:   folder.Path + "/" + item.Name,
		WebURL: item.WebURL,
		ItemID: item.ID,
	}
}
