package model

import "time"

// RunReport is the result of one jsonsweep run.
// It exposes the overall status that the per-file log lines alone do not:
// OK is false whenever at least one file failed.
type RunReport struct {
	// ID is the history database identifier of the run, 0 when the run was
	// not recorded.
	ID int64 `json:"id,omitempty"`

	// Root is the absolute path of the scanned tree.
	Root string `json:"root"`

	// Repository is the repository coordinate the run used.
	Repository string `json:"repository"`

	// Owner is the owner segment substituted into rewritten urls.
	Owner string `json:"owner"`

	// DryRun is true when no file was actually written.
	DryRun bool `json:"dry_run"`

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Files holds one report per discovered file, in discovery order.
	Files []*FileReport `json:"files"`
}

// NewRunReport creates an empty report for a run starting now.
func NewRunReport(root, repository, owner string, dryRun bool) *RunReport {
	return &RunReport{
		Root:       root,
		Repository: repository,
		Owner:      owner,
		DryRun:     dryRun,
		StartedAt:  time.Now(),
		Files:      make([]*FileReport, 0),
	}
}

// Add appends a file report.
func (r *RunReport) Add(f *FileReport) {
	r.Files = append(r.Files, f)
}

// Finish stamps the end of the run.
func (r *RunReport) Finish() {
	r.FinishedAt = time.Now()
}

// Duration returns how long the run took. It is 0 until Finish is called.
func (r *RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Scanned returns the number of discovered files.
func (r *RunReport) Scanned() int {
	return len(r.Files)
}

// Modified returns the number of files written by at least one stage,
// including failed files that were partially written.
func (r *RunReport) Modified() int {
	n := 0
	for _, f := range r.Files {
		if f.Persisted() {
			n++
		}
	}
	return n
}

// Failed returns the number of failed files.
func (r *RunReport) Failed() int {
	return len(r.FailedFiles())
}

// FailedFiles returns the reports of the failed files in discovery order.
func (r *RunReport) FailedFiles() []*FileReport {
	failed := make([]*FileReport, 0)
	for _, f := range r.Files {
		if f.Outcome == OutcomeFailed {
			failed = append(failed, f)
		}
	}
	return failed
}

// ChangedFiles returns the reports of the files written by at least one
// stage, in discovery order.
func (r *RunReport) ChangedFiles() []*FileReport {
	changed := make([]*FileReport, 0)
	for _, f := range r.Files {
		if f.Persisted() {
			changed = append(changed, f)
		}
	}
	return changed
}

// TotalSitesRemoved returns the number of removed site records.
func (r *RunReport) TotalSitesRemoved() int {
	n := 0
	for _, f := range r.Files {
		n += f.SitesRemoved
	}
	return n
}

// TotalURLsRemoved returns the number of url records removed by name.
func (r *RunReport) TotalURLsRemoved() int {
	n := 0
	for _, f := range r.Files {
		n += f.URLsRemoved
	}
	return n
}

// TotalURLsUpdated returns the number of rewritten urls.
func (r *RunReport) TotalURLsUpdated() int {
	n := 0
	for _, f := range r.Files {
		n += f.URLsUpdated()
	}
	return n
}

// OK reports whether every file was processed without error.
func (r *RunReport) OK() bool {
	for _, f := range r.Files {
		if f.Outcome == OutcomeFailed {
			return false
		}
	}
	return true
}
