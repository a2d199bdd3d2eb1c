package relay

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hunchagency/dotfile/internal/filing"
)

const (
	testSourceSite = "https://hunch.sharepoint.com/sites/Hunch"
	testSourcePath = "Shared Documents/-- Incoming"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testFolder() *filing.ProjectFolder {
	return &filing.ProjectFolder{
		JobNumber: "LAB055",
		SiteURL:   "https://hunch.sharepoint.com/sites/Labour",
		Path:      "Shared Documents/LAB 055 - Election 26",
	}
}

func TestMover_Move(t *testing.T) {
	var got filingPayload

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		json.NewEncoder(w).Encode(filingResult{
			Success:       true,
			DestFolderURL: "https://hunch.sharepoint.com/sites/Labour/round3",
			SourceFiles:   []string{"banner.pdf"},
			EmailSaved:    "Email from Sarah - 18 Jan 2026.eml",
		})
	}))
	defer server.Close()

	mover := NewMover(server.URL, testSourceSite, testSourcePath, 0, testLogger())

	result, err := mover.Move(context.Background(), filing.MoveRequest{
		Folder:     testFolder(),
		FolderName: "-- Round 3",
		Files:      []string{"banner.pdf"},
		Message:    &filing.Message{Filename: "Email from Sarah - 18 Jan 2026.eml", Content: "MIME-Version: 1.0\n"},
	})
	require.NoError(t, err)

	assert.Equal(t, testSourceSite, got.SourceSiteURL)
	assert.Equal(t, "/Shared Documents/-- Incoming", got.SourcePath)
	assert.Equal(t, []string{"banner.pdf"}, got.SourceFiles)
	assert.Equal(t, "https://hunch.sharepoint.com/sites/Labour", got.DestSiteURL)
	assert.Equal(t, "/Shared Documents/LAB 055 - Election 26/-- Round 3", got.DestPath)
	assert.True(t, got.CreateFolder)
	assert.True(t, got.SaveEmail)
	assert.Equal(t, "Email from Sarah - 18 Jan 2026.eml", got.EmailFilename)

	assert.Equal(t, "-- Round 3", result.Destination.Name)
	assert.Equal(t, "Shared Documents/LAB 055 - Election 26/-- Round 3", result.Destination.Path)
	assert.Equal(t, "https://hunch.sharepoint.com/sites/Labour/round3", result.Destination.WebURL)
	require.Len(t, result.Files, 1)
	assert.Equal(t, filing.OutcomeMoved, result.Files[0].Outcome)
	assert.Equal(t, "Email from Sarah - 18 Jan 2026.eml", result.MessageFile)
}

func TestMover_UnconfirmedFileRecordedAsFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(filingResult{
			Success:     true,
			SourceFiles: []string{"a.pdf"},
		})
	}))
	defer server.Close()

	mover := NewMover(server.URL, testSourceSite, testSourcePath, 0, testLogger())

	result, err := mover.Move(context.Background(), filing.MoveRequest{
		Folder:     testFolder(),
		FolderName: "-- Briefs",
		Files:      []string{"a.pdf", "b.pdf"},
	})
	require.NoError(t, err)

	require.Len(t, result.Files, 2)
	assert.Equal(t, filing.OutcomeMoved, result.Files[0].Outcome)
	assert.Equal(t, filing.OutcomeFailed, result.Files[1].Outcome)
	assert.Equal(t, "not confirmed by relay", result.Files[1].Detail)
}

func TestMover_UnsavedMessageRecordedAsFailed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(filingResult{Success: true})
	}))
	defer server.Close()

	mover := NewMover(server.URL, testSourceSite, testSourcePath, 0, testLogger())

	result, err := mover.Move(context.Background(), filing.MoveRequest{
		Folder:     testFolder(),
		FolderName: "-- Briefs",
		Message:    &filing.Message{Filename: "Email from Sarah - 18 Jan 2026.eml", Content: "x"},
	})
	require.NoError(t, err)

	assert.Empty(t, result.MessageFile)
	require.Len(t, result.Files, 1)
	assert.Equal(t, filing.OutcomeFailed, result.Files[0].Outcome)
}

func TestMover_FlowFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(filingResult{Success: false, Error: "folder creation failed"})
	}))
	defer server.Close()

	mover := NewMover(server.URL, testSourceSite, testSourcePath, 0, testLogger())

	_, err := mover.Move(context.Background(), filing.MoveRequest{
		Folder:     testFolder(),
		FolderName: "-- Briefs",
	})

	var ferr *filing.Error
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, filing.StageMove, ferr.Stage)
	assert.Equal(t, filing.KindUpstream, ferr.Kind)
	assert.Contains(t, ferr.Msg, "folder creation failed")
}

func TestMover_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway exploded", http.StatusBadGateway)
	}))
	defer server.Close()

	mover := NewMover(server.URL, testSourceSite, testSourcePath, 0, testLogger())

	_, err := mover.Move(context.Background(), filing.MoveRequest{
		Folder:     testFolder(),
		FolderName: "-- Briefs",
	})

	var ferr *filing.Error
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, filing.KindUpstream, ferr.Kind)
	assert.ErrorContains(t, err, "returned 502")
}

func TestMover_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		json.NewEncoder(w).Encode(filingResult{Success: true})
	}))
	defer server.Close()

	mover := NewMover(server.URL, testSourceSite, testSourcePath, 50*time.Millisecond, testLogger())

	_, err := mover.Move(context.Background(), filing.MoveRequest{
		Folder:     testFolder(),
		FolderName: "-- Briefs",
	})

	var ferr *filing.Error
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, filing.KindTimeout, ferr.Kind)
}

func TestMover_NoFilesSendsEmptyArray(t *testing.T) {
	var raw []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ = io.ReadAll(r.Body)
		json.NewEncoder(w).Encode(filingResult{Success: true})
	}))
	defer server.Close()

	mover := NewMover(server.URL, testSourceSite, testSourcePath, 0, testLogger())

	_, err := mover.Move(context.Background(), filing.MoveRequest{
		Folder:     testFolder(),
		FolderName: "-- Briefs",
	})
	require.NoError(t, err)

	assert.Contains(t, string(raw), `"sourceFiles":[]`, "the flow chokes on null file lists")
}
