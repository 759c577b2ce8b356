package pipeline

import (
	"context"
	"fmt"

	"srmap/internal/storage"
)

// JournalResults stores the file outcomes of a run started with
// Journal.StartRun and marks the run finished.
func JournalResults(ctx context.Context, j storage.Journal, runID string, results []Result) error {
	records := make([]storage.FileRecord, 0, len(results))
	for _, res := range results {
		rec := storage.FileRecord{
			Path:     res.Path,
			Kind:     string(res.Kind),
			Changed:  res.Changed,
			Replaced: res.Replaced,
		}
		if res.Err != nil {
			rec.Error = res.Err.Error()
		}
		records = append(records, rec)
	}

	if err := j.RecordFiles(ctx, runID, records); err != nil {
		return fmt.Errorf("failed to journal run %s: %w", runID, err)
	}
	return j.FinishRun(ctx, runID)
}
