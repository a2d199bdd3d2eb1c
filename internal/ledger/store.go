// Package ledger keeps a local SQLite history of filing outcomes. It is
// an audit trail, not a source of truth: the document store and the
// project records remain authoritative, and a lost ledger row loses
// nothing but history.
package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"
)

// Outcome values for the filings table.
const (
	OutcomeFiled   = "filed"
	OutcomePartial = "partial"
	OutcomeFailed  = "failed"
)

// defaultRecentLimit caps Recent listings when the caller does not ask
// for a specific count.
const (
	defaultRecentLimit = 20
	maxRecentLimit     = 200
)

// File is one per-file outcome inside an Entry, stored as JSON.
type File struct {
	Name    string `json:"name"`
	Outcome string `json:"outcome"`
	Detail  string `json:"detail,omitempty"`
}

// Entry is one filing outcome. ID and CreatedAt are assigned by the
// store and populated on reads.
type Entry struct {
	ID          int64     `json:"id"`
	RequestID   string    `json:"request_id"`
	JobNumber   string    `json:"job_number"`
	Category    string    `json:"category"`
	Outgoing    bool      `json:"outgoing"`
	Round       int       `json:"round,omitempty"`
	Destination string    `json:"destination"`
	Path        string    `json:"path"`
	WebURL      string    `json:"web_url,omitempty"`
	Files       []File    `json:"files"`
	Outcome     string    `json:"outcome"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store persists filing entries in a single SQLite file.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

// Open opens (creating if needed) the ledger database at path and runs
// migrations. The database uses WAL mode with a single writer
// connection.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	// DSN parameters ensure pragmas apply to every connection from the pool.
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"+
			"&_pragma=busy_timeout(5000)",
		path,
	)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("ledger: opening database %s: %w", path, err)
	}

	// Sole-writer pattern: only one connection writes at a time.
	db.SetMaxOpenConns(1)

	if err := runMigrations(context.Background(), db, logger); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("ledger opened", slog.String("path", path))

	return &Store{
		db:     db,
		logger: logger,
		now:    time.Now,
	}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts one filing entry.
func (s *Store) Record(ctx context.Context, e Entry) error {
	files := e.Files
	if files == nil {
		files = []File{}
	}

	filesJSON, err := json.Marshal(files)
	if err != nil {
		return fmt.Errorf("ledger: encoding file outcomes: %w", err)
	}

	var round sql.NullInt64
	if e.Round > 0 {
		round = sql.NullInt64{Int64: int64(e.Round), Valid: true}
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO filings
			(request_id, job_number, category, outgoing, round,
			 destination_name, destination_path, destination_url,
			 files_moved, outcome, error_msg, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RequestID, e.JobNumber, e.Category, boolToInt(e.Outgoing), round,
		e.Destination, e.Path, e.WebURL,
		string(filesJSON), e.Outcome, e.Error, s.now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("ledger: inserting filing for job %s: %w", e.JobNumber, err)
	}

	return nil
}

// Recent returns the newest entries, most recent first. A non-positive
// limit falls back to the default; oversized limits are clamped.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxRecentLimit {
		limit = maxRecentLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, request_id, job_number, category, outgoing, round,
			destination_name, destination_path, destination_url,
			files_moved, outcome, error_msg, created_at
		 FROM filings ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("ledger: querying recent filings: %w", err)
	}
	defer rows.Close()

	var entries []Entry

	for rows.Next() {
		e, scanErr := scanEntry(rows)
		if scanErr != nil {
			return nil, scanErr
		}

		entries = append(entries, *e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger: iterating filing rows: %w", err)
	}

	return entries, nil
}

func scanEntry(rows *sql.Rows) (*Entry, error) {
	var (
		e         Entry
		outgoing  int
		round     sql.NullInt64
		filesJSON string
		createdAt int64
	)

	err := rows.Scan(
		&e.ID, &e.RequestID, &e.JobNumber, &e.Category, &outgoing, &round,
		&e.Destination, &e.Path, &e.WebURL,
		&filesJSON, &e.Outcome, &e.Error, &createdAt,
	)
	if err != nil {
		return nil, fmt.Errorf("ledger: scanning filing row: %w", err)
	}

	e.Outgoing = outgoing != 0

	if round.Valid {
		e.Round = int(round.Int64)
	}

	if filesJSON != "" {
		if jsonErr := json.Unmarshal([]byte(filesJSON), &e.Files); jsonErr != nil {
			return nil, fmt.Errorf("ledger: parsing file outcomes for filing %d: %w", e.ID, jsonErr)
		}
	}

	e.CreatedAt = time.Unix(0, createdAt)

	return &e, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}

	return 0
}
