package model

// URLChange records one rewritten url.
type URLChange struct {
	Before string `json:"before"`
	After  string `json:"after"`
}

// FileReport holds the result of processing one file.
type FileReport struct {
	// Path is the absolute path of the file.
	Path string `json:"path"`

	// Base is the base name of the file.
	Base string `json:"base"`

	// Outcome is the final state of the file.
	Outcome Outcome `json:"outcome"`

	// SitesRemoved counts site records removed by the Site Filter.
	SitesRemoved int `json:"sites_removed"`

	// URLsRemoved counts url records removed by name.
	URLsRemoved int `json:"urls_removed"`

	// RemovedNames lists the names of the removed url records.
	RemovedNames []string `json:"removed_names,omitempty"`

	// Changes lists the rewritten urls in document order.
	Changes []URLChange `json:"changes,omitempty"`

	// Stages lists the stages that wrote the file, in order.
	Stages []string `json:"stages,omitempty"`

	// FailedStage is the stage that failed, empty when reading or parsing
	// failed or nothing failed.
	FailedStage string `json:"failed_stage,omitempty"`

	// Error is the failure message. Empty unless Outcome is OutcomeFailed.
	Error string `json:"error,omitempty"`
}

// NewFileReport creates an unchanged report for the given file.
func NewFileReport(path, base string) *FileReport {
	return &FileReport{
		Path:    path,
		Base:    base,
		Outcome: OutcomeUnchanged,
	}
}

// URLsUpdated returns the number of rewritten urls.
func (f *FileReport) URLsUpdated() int {
	return len(f.Changes)
}

// MarkPersisted records that stage wrote the file.
// A failed file stays failed.
func (f *FileReport) MarkPersisted(stage string) {
	f.Stages = append(f.Stages, stage)
	if f.Outcome != OutcomeFailed {
		f.Outcome = OutcomeModified
	}
}

// MarkFailed records the failure of stage. Only the first failure is kept.
func (f *FileReport) MarkFailed(stage string, err error) {
	if f.Outcome == OutcomeFailed {
		return
	}
	f.Outcome = OutcomeFailed
	f.FailedStage = stage
	if err != nil {
		f.Error = err.Error()
	}
}

// Persisted reports whether any stage wrote the file.
func (f *FileReport) Persisted() bool {
	return len(f.Stages) > 0
}
