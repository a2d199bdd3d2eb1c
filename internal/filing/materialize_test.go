package filing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hunchagency/dotfile/internal/classify"
	"github.com/hunchagency/dotfile/internal/graph"
)

func TestManagedName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Briefs", "-- Briefs"},
		{"Feedback", "-- Feedback"},
		{"Other", "-- Other"},
		{"-- Briefs", "-- Briefs"},
		{"-- Round 3", "-- Round 3"},
		{"Assets", "Assets"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ManagedName(tt.in))
		})
	}
}

func TestManagedName_PrefixedAndBareConverge(t *testing.T) {
	for _, name := range []string{"Briefs", "Feedback", "Other"} {
		assert.Equal(t, ManagedName(name), ManagedName(ManagedName(name)))
	}
}

func TestCategoryFolderName(t *testing.T) {
	assert.Equal(t, "-- Briefs", CategoryFolderName(classify.CategoryBriefs))
	assert.Equal(t, "-- Feedback", CategoryFolderName(classify.CategoryFeedback))
	assert.Equal(t, "-- Other", CategoryFolderName(classify.CategoryOther))
}

func TestRoundFolderName(t *testing.T) {
	assert.Equal(t, "-- Round 1", RoundFolderName(1))
	assert.Equal(t, "-- Round 12", RoundFolderName(12))
}

func materializeFolder() *ProjectFolder {
	return &ProjectFolder{
		JobNumber: "LAB055",
		DriveID:   "drive-1",
		ItemID:    "job-1",
		Path:      "Shared Documents/LAB 055 - Election 26",
	}
}

func TestMaterializer_ReturnsExistingFolder(t *testing.T) {
	drive := &fakeDrive{kids: map[string][]graph.Item{
		"drive-1:job-1": {
			{ID: "briefs-1", Name: "-- Briefs", IsFolder: true, WebURL: "https://example/briefs"},
		},
	}}

	m := NewMaterializer(drive, testLogger())

	dest, err := m.Ensure(context.Background(), materializeFolder(), "-- Briefs")
	require.NoError(t, err)

	assert.Equal(t, "briefs-1", dest.ItemID)
	assert.Equal(t, "-- Briefs", dest.Name)
	assert.Equal(t, "Shared Documents/LAB 055 - Election 26/-- Briefs", dest.Path)
	assert.Empty(t, drive.created, "no create when the folder already exists")
}

func TestMaterializer_CreatesWhenAbsent(t *testing.T) {
	drive := &fakeDrive{kids: map[string][]graph.Item{}}
	m := NewMaterializer(drive, testLogger())

	dest, err := m.Ensure(context.Background(), materializeFolder(), "-- Round 4")
	require.NoError(t, err)

	assert.Equal(t, []string{"-- Round 4"}, drive.created)
	assert.Equal(t, "created--- Round 4", dest.ItemID)
	assert.Equal(t, "Shared Documents/LAB 055 - Election 26/-- Round 4", dest.Path)
}

func TestMaterializer_AdoptsConflictWinner(t *testing.T) {
	drive := &fakeDrive{
		kids: map[string][]graph.Item{"drive-1:job-1": {}},
		conflictWinner: &graph.Item{
			ID: "winner-1", Name: "-- Round 4", IsFolder: true,
		},
	}

	m := NewMaterializer(drive, testLogger())

	dest, err := m.Ensure(context.Background(), materializeFolder(), "-- Round 4")
	require.NoError(t, err)
	assert.Equal(t, "winner-1", dest.ItemID)
}

func TestMaterializer_ConflictWithoutWinnerFails(t *testing.T) {
	drive := &fakeDrive{
		kids:      map[string][]graph.Item{"drive-1:job-1": {}},
		createErr: graph.ErrConflict,
	}

	m := NewMaterializer(drive, testLogger())

	_, err := m.Ensure(context.Background(), materializeFolder(), "-- Round 4")

	var ferr *Error
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, StageMaterialize, ferr.Stage)
	assert.Equal(t, KindFolderCreate, ferr.Kind)
}

func TestMaterializer_CreateFailureIsFatal(t *testing.T) {
	drive := &fakeDrive{
		kids:      map[string][]graph.Item{"drive-1:job-1": {}},
		createErr: errors.New("quota exceeded"),
	}

	m := NewMaterializer(drive, testLogger())

	_, err := m.Ensure(context.Background(), materializeFolder(), "-- Other")

	var ferr *Error
	require.ErrorAs(t, err, &ferr)
	assert.Equal(t, KindFolderCreate, ferr.Kind)
	assert.ErrorContains(t, err, "quota exceeded")
}

func TestMaterializer_MatchesDecomposedNames(t *testing.T) {
	// The store may hand back decomposed Unicode for a name that
	// compares equal to the composed form.
	drive := &fakeDrive{kids: map[string][]graph.Item{
		"drive-1:job-1": {
			{ID: "cafe-1", Name: "-- Café Shoot", IsFolder: true},
		},
	}}

	m := NewMaterializer(drive, testLogger())

	dest, err := m.Ensure(context.Background(), materializeFolder(), "-- Café Shoot")
	require.NoError(t, err)

	assert.Equal(t, "cafe-1", dest.ItemID)
	assert.Empty(t, drive.created)
}
