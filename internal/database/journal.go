package database

import "context"

// RunJournal records the writes of a single run.
// It satisfies pipeline.Journal.
type RunJournal struct {
	db    *HistoryDB
	runID int64
}

// Journal returns a RunJournal recording into run runID.
func (hdb *HistoryDB) Journal(runID int64) *RunJournal {
	return &RunJournal{db: hdb, runID: runID}
}

// RecordChange implements pipeline.Journal.
func (j *RunJournal) RecordChange(ctx context.Context, path, stage string, before, after []byte) error {
	return j.db.RecordChange(ctx, j.runID, path, stage, before, after)
}
