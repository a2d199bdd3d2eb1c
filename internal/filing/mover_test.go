package filing

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hunchagency/dotfile/internal/graph"
)

const (
	hunchSiteURL    = "https://hunch.sharepoint.com/sites/Hunch"
	testStagingPath = "Shared Documents/-- Incoming"
)

// moverDrive builds a fakeDrive with the staging folder holding the
// named files on drive-hunch.
func moverDrive(stagedNames ...string) *fakeDrive {
	staged := make([]graph.Item, 0, len(stagedNames))
	for i, name := range stagedNames {
		staged = append(staged, graph.Item{
			ID:      fmt.Sprintf("staged-%d", i+1),
			Name:    name,
			DriveID: "drive-hunch",
		})
	}

	return &fakeDrive{
		sites:  map[string]graph.Site{hunchSiteURL: {ID: "site-hunch"}},
		drives: map[string]graph.Drive{"site-hunch": {ID: "drive-hunch"}},
		kids:   map[string][]graph.Item{},
		kidsByPath: map[string][]graph.Item{
			"drive-hunch:" + testStagingPath: staged,
		},
	}
}

func moverFolder(driveID string) *ProjectFolder {
	return &ProjectFolder{
		JobNumber: "LAB055",
		SiteURL:   labourSiteURL,
		DriveID:   driveID,
		ItemID:    "job-1",
		Path:      "Shared Documents/LAB 055 - Election 26",
	}
}

func TestGraphMover_SameDriveMove(t *testing.T) {
	drive := moverDrive("banner.pdf", "logo.png")
	mover := NewGraphMover(drive, NewStaging(drive, hunchSiteURL, testStagingPath), testLogger())

	result, err := mover.Move(context.Background(), MoveRequest{
		Folder:     moverFolder("drive-hunch"),
		FolderName: "-- Round 1",
		Files:      []string{"banner.pdf", "missing.txt"},
	})
	require.NoError(t, err)

	assert.Equal(t, "-- Round 1", result.Destination.Name)
	require.Len(t, result.Files, 2)
	assert.Equal(t, MovedFile{Name: "banner.pdf", Outcome: OutcomeMoved}, result.Files[0])
	assert.Equal(t, OutcomeNotFound, result.Files[1].Outcome)

	assert.Equal(t, []string{"staged-1"}, drive.moved)
	assert.Empty(t, drive.copied, "same-drive moves never copy")
	assert.Empty(t, drive.deleted)
}

func TestGraphMover_CrossDriveCopyThenDelete(t *testing.T) {
	drive := moverDrive("banner.pdf")
	mover := NewGraphMover(drive, NewStaging(drive, hunchSiteURL, testStagingPath), testLogger())

	result, err := mover.Move(context.Background(), MoveRequest{
		Folder:     moverFolder("drive-labour"),
		FolderName: "-- Briefs",
		Files:      []string{"banner.pdf"},
	})
	require.NoError(t, err)

	require.Len(t, result.Files, 1)
	assert.Equal(t, OutcomeMoved, result.Files[0].Outcome)
	assert.Equal(t, []string{"staged-1"}, drive.copied)
	assert.Equal(t, []string{"staged-1"}, drive.deleted)
	assert.Empty(t, drive.moved)
}

func TestGraphMover_CopyRetainedWhenDeleteFails(t *testing.T) {
	drive := moverDrive("banner.pdf")
	drive.deleteErr = errors.New("locked")

	mover := NewGraphMover(drive, NewStaging(drive, hunchSiteURL, testStagingPath), testLogger())

	result, err := mover.Move(context.Background(), MoveRequest{
		Folder:     moverFolder("drive-labour"),
		FolderName: "-- Briefs",
		Files:      []string{"banner.pdf"},
	})
	require.NoError(t, err)

	require.Len(t, result.Files, 1)
	assert.Equal(t, OutcomeCopyRetained, result.Files[0].Outcome)
	assert.Equal(t, "source not deleted after copy", result.Files[0].Detail)
}

func TestGraphMover_MoveFailureIsPerFile(t *testing.T) {
	drive := moverDrive("banner.pdf", "logo.png")
	drive.moveErr = errors.New("item locked")

	mover := NewGraphMover(drive, NewStaging(drive, hunchSiteURL, testStagingPath), testLogger())

	result, err := mover.Move(context.Background(), MoveRequest{
		Folder:     moverFolder("drive-hunch"),
		FolderName: "-- Feedback",
		Files:      []string{"banner.pdf", "logo.png"},
	})
	require.NoError(t, err, "per-file failures never fail the batch")

	require.Len(t, result.Files, 2)
	for _, f := range result.Files {
		assert.Equal(t, OutcomeFailed, f.Outcome)
		assert.Contains(t, f.Detail, "item locked")
	}
}

func TestGraphMover_UploadsMessageArtifact(t *testing.T) {
	drive := moverDrive()
	mover := NewGraphMover(drive, NewStaging(drive, hunchSiteURL, testStagingPath), testLogger())

	result, err := mover.Move(context.Background(), MoveRequest{
		Folder:     moverFolder("drive-hunch"),
		FolderName: "-- Briefs",
		Message: &Message{
			Filename: "Email from Sarah - 18 Jan 2026.eml",
			Content:  "MIME-Version: 1.0\r\n",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Email from Sarah - 18 Jan 2026.eml", result.MessageFile)
	assert.Empty(t, result.Files, "the artifact is not a per-file outcome on success")
	assert.Equal(t, []string{"Email from Sarah - 18 Jan 2026.eml"}, drive.uploaded)
}

func TestGraphMover_MessageUploadFailureDegrades(t *testing.T) {
	drive := moverDrive("banner.pdf")
	drive.uploadErr = errors.New("service unavailable")

	mover := NewGraphMover(drive, NewStaging(drive, hunchSiteURL, testStagingPath), testLogger())

	result, err := mover.Move(context.Background(), MoveRequest{
		Folder:     moverFolder("drive-hunch"),
		FolderName: "-- Briefs",
		Files:      []string{"banner.pdf"},
		Message:    &Message{Filename: "Email from Sarah - 18 Jan 2026.eml", Content: "x"},
	})
	require.NoError(t, err, "moved attachments are not undone by a failed artifact")

	assert.Empty(t, result.MessageFile)
	require.Len(t, result.Files, 2)
	assert.Equal(t, OutcomeMoved, result.Files[0].Outcome)
	assert.Equal(t, OutcomeFailed, result.Files[1].Outcome)
	assert.Equal(t, "Email from Sarah - 18 Jan 2026.eml", result.Files[1].Name)
}

func TestGraphMover_StagingResolutionFailure(t *testing.T) {
	drive := moverDrive("banner.pdf")
	drive.siteErr = graph.ErrTimeout

	mover := NewGraphMover(drive, NewStaging(drive, hunchSiteURL, testStagingPath), testLogger())

	_, err := mover.Move(context.Background(), MoveRequest{
		Folder:     moverFolder("drive-hunch"),
		FolderName: "-- Briefs",
		Files:      []string{"banner.pdf"},
	})

	var ferr *Error
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, StageMove, ferr.Stage)
	assert.Equal(t, KindTimeout, ferr.Kind)
}

func TestGraphMover_MaterializeFailurePropagates(t *testing.T) {
	drive := moverDrive("banner.pdf")
	drive.createErr = errors.New("denied")

	mover := NewGraphMover(drive, NewStaging(drive, hunchSiteURL, testStagingPath), testLogger())

	_, err := mover.Move(context.Background(), MoveRequest{
		Folder:     moverFolder("drive-hunch"),
		FolderName: "-- Briefs",
		Files:      []string{"banner.pdf"},
	})

	var ferr *Error
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, StageMaterialize, ferr.Stage)
	assert.Equal(t, KindFolderCreate, ferr.Kind)
	assert.Empty(t, drive.moved)
}

func TestGraphMover_FolderOnlyRequest(t *testing.T) {
	drive := moverDrive()
	mover := NewGraphMover(drive, NewStaging(drive, hunchSiteURL, testStagingPath), testLogger())

	result, err := mover.Move(context.Background(), MoveRequest{
		Folder:     moverFolder("drive-hunch"),
		FolderName: "-- Other",
	})
	require.NoError(t, err)

	assert.Empty(t, result.Files)
	assert.Empty(t, result.MessageFile)
	assert.Equal(t, []string{"-- Other"}, drive.created)
}

func TestGraphMover_MatchesDecomposedStagedNames(t *testing.T) {
	drive := moverDrive("résumé.pdf")
	mover := NewGraphMover(drive, NewStaging(drive, hunchSiteURL, testStagingPath), testLogger())

	result, err := mover.Move(context.Background(), MoveRequest{
		Folder:     moverFolder("drive-hunch"),
		FolderName: "-- Other",
		Files:      []string{"résumé.pdf"},
	})
	require.NoError(t, err)

	require.Len(t, result.Files, 1)
	assert.Equal(t, OutcomeMoved, result.Files[0].Outcome)
}
