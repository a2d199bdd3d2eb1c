package filing

import (
	"context"
	"log/slog"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/hunchagency/dotfile/internal/graph"
)

// GraphMover files staged attachments by talking to the document store
// directly: ensure the destination folder, move each staged file into
// it, upload the message artifact. Same-drive moves re-parent the item;
// cross-drive moves copy then delete the source.
type GraphMover struct {
	drive   Drive
	folders *Materializer
	staging *Staging
	logger  *slog.Logger
}

// NewGraphMover builds a mover reading staged files through staging.
func NewGraphMover(drive Drive, staging *Staging, logger *slog.Logger) *GraphMover {
	if logger == nil {
		logger = slog.Default()
	}

	return &GraphMover{
		drive:   drive,
		folders: NewMaterializer(drive, logger),
		staging: staging,
		logger:  logger,
	}
}

type stagingSnapshot struct {
	driveID string
	// byName indexes the folder's current children, NFC normalized.
	byName map[string]graph.Item
}

// Move implements Mover.
func (m *GraphMover) Move(ctx context.Context, req MoveRequest) (*MoveResult, error) {
	dest, err := m.folders.Ensure(ctx, req.Folder, req.FolderName)
	if err != nil {
		return nil, err
	}

	result := &MoveResult{Destination: *dest}

	if len(req.Files) > 0 {
		snapshot, snapErr := m.snapshotStaging(ctx, req.Folder.JobNumber)
		if snapErr != nil {
			return nil, snapErr
		}

		for _, name := range req.Files {
			result.Files = append(result.Files, m.moveOne(ctx, snapshot, req.Folder, dest, name))
		}
	}

	if req.Message != nil {
		result.MessageFile = m.uploadMessage(ctx, req.Folder, dest, req.Message, &result.Files)
	}

	m.logger.Info("files filed",
		slog.String("job", req.Folder.JobNumber),
		slog.String("destination", dest.Name),
		slog.Int("files", len(result.Files)),
	)

	return result, nil
}

// snapshotStaging lists the staging folder once per request. A missing
// or unreachable staging folder is a configuration fault and fails the
// whole move.
func (m *GraphMover) snapshotStaging(ctx context.Context, job string) (*stagingSnapshot, error) {
	driveID, children, err := m.staging.List(ctx)
	if err != nil {
		return nil, graphError(StageMove, job, "listing staging folder", err)
	}

	byName := make(map[string]graph.Item, len(children))
	for _, child := range children {
		byName[norm.NFC.String(child.Name)] = child
	}

	return &stagingSnapshot{driveID: driveID, byName: byName}, nil
}

// moveOne relocates a single staged file. Failures are recorded as
// per-file outcomes, never returned: one missing or stuck file must not
// strand the rest of the batch.
func (m *GraphMover) moveOne(ctx context.Context, staging *stagingSnapshot, folder *ProjectFolder, dest *Destination, name string) MovedFile {
	item, ok := staging.byName[norm.NFC.String(name)]
	if !ok {
		m.logger.Warn("staged file not found",
			slog.String("job", folder.JobNumber),
			slog.String("file", name),
		)

		return MovedFile{Name: name, Outcome: OutcomeNotFound, Detail: "not found in staging"}
	}

	if staging.driveID == folder.DriveID {
		if _, err := m.drive.MoveItem(ctx, staging.driveID, item.ID, dest.ItemID); err != nil {
			m.logger.Warn("move failed",
				slog.String("job", folder.JobNumber),
				slog.String("file", name),
				slog.String("error", err.Error()),
			)

			return MovedFile{Name: name, Outcome: OutcomeFailed, Detail: err.Error()}
		}

		return MovedFile{Name: name, Outcome: OutcomeMoved}
	}

	// Cross-drive: the store accepts the copy asynchronously; an
	// accepted copy counts as success without awaiting completion.
	if err := m.drive.CopyItem(ctx, staging.driveID, item.ID, folder.DriveID, dest.ItemID, item.Name); err != nil {
		m.logger.Warn("copy failed",
			slog.String("job", folder.JobNumber),
			slog.String("file", name),
			slog.String("error", err.Error()),
		)

		return MovedFile{Name: name, Outcome: OutcomeFailed, Detail: err.Error()}
	}

	if err := m.drive.DeleteItem(ctx, staging.driveID, item.ID); err != nil {
		m.logger.Warn("source delete failed after copy, duplicate retained in staging",
			slog.String("job", folder.JobNumber),
			slog.String("file", name),
			slog.String("error", err.Error()),
		)

		return MovedFile{Name: name, Outcome: OutcomeCopyRetained, Detail: "source not deleted after copy"}
	}

	return MovedFile{Name: name, Outcome: OutcomeMoved}
}

// uploadMessage writes the .eml artifact into the destination. Upload
// failure is recorded as a file outcome so the response carries it, but
// it never fails a filing whose attachments already moved.
func (m *GraphMover) uploadMessage(ctx context.Context, folder *ProjectFolder, dest *Destination, msg *Message, files *[]MovedFile) string {
	_, err := m.drive.Upload(ctx, folder.DriveID, dest.ItemID, msg.Filename, strings.NewReader(msg.Content))
	if err != nil {
		m.logger.Warn("message artifact upload failed",
			slog.String("job", folder.JobNumber),
			slog.String("file", msg.Filename),
			slog.String("error", err.Error()),
		)

		*files = append(*files, MovedFile{Name: msg.Filename, Outcome: OutcomeFailed, Detail: err.Error()})

		return ""
	}

	return msg.Filename
}
