package filing

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
)

// RoundAllocator determines the next delivery round for a job folder by
// scanning its existing children.
type RoundAllocator struct {
	drive  TreeLister
	logger *slog.Logger
}

// NewRoundAllocator builds an allocator reading folder listings through
// drive.
func NewRoundAllocator(drive TreeLister, logger *slog.Logger) *RoundAllocator {
	if logger == nil {
		logger = slog.Default()
	}

	return &RoundAllocator{drive: drive, logger: logger}
}

// Next returns the round number one past the highest existing round
// folder, or 1 when the job has no round folders yet. Allocation only
// reads; the folder itself is created later in the pipeline.
func (a *RoundAllocator) Next(ctx context.Context, folder *ProjectFolder) (int, error) {
	children, err := a.drive.ListChildren(ctx, folder.DriveID, folder.ItemID)
	if err != nil {
		return 0, graphError(StageRound, folder.JobNumber, "listing job folder for rounds", err)
	}

	max := 0
	for _, child := range children {
		if !child.IsFolder {
			continue
		}

		if n, ok := roundNumber(child.Name); ok && n > max {
			max = n
		}
	}

	next := max + 1

	a.logger.Debug("round allocated",
		slog.String("job", folder.JobNumber),
		slog.Int("highest_existing", max),
		slog.Int("round", next),
	)

	return next, nil
}

// roundNumber extracts the round number from a folder name. The word
// "Round" may appear anywhere in the name; the first whitespace-
// delimited token after it must parse as an integer.
func roundNumber(name string) (int, bool) {
	idx := strings.Index(name, "Round")
	if idx < 0 {
		return 0, false
	}

	rest := strings.Fields(name[idx+len("Round"):])
	if len(rest) == 0 {
		return 0, false
	}

	n, err := strconv.Atoi(rest[0])
	if err != nil {
		return 0, false
	}

	return n, true
}
