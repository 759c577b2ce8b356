package storage

import (
	"context"
	"time"
)

// Run is one remap invocation.
type Run struct {
	ID         string
	Command    string
	Goal       string
	StartedAt  time.Time
	FinishedAt time.Time
	Files      int
	Changed    int
	Failed     int
}

// FileRecord is the outcome for one file within a run.
type FileRecord struct {
	Path     string
	Kind     string // "source" or "class"
	Changed  bool
	Replaced int
	Error    string
}

// Journal records remap runs so a build can report what was rewritten.
type Journal interface {
	// StartRun opens a new run and returns its ID.
	StartRun(ctx context.Context, command, goal string) (string, error)

	// RecordFiles appends file outcomes to a run.
	RecordFiles(ctx context.Context, runID string, files []FileRecord) error

	// FinishRun stamps the end time of a run. Totals are derived from the file records.
	FinishRun(ctx context.Context, runID string) error

	// LatestRun returns the most recent run.
	LatestRun(ctx context.Context) (*Run, error)

	// GetRun returns a run and its file outcomes.
	GetRun(ctx context.Context, runID string) (*Run, []FileRecord, error)

	Close() error
}
