// Package model defines the result structures shared by the jsonsweep
// packages.
//
// This package contains the following main types:
//   - Outcome: what happened to a single file
//   - FileReport: per-file counters, URL changes and the error, if any
//   - RunReport: the whole run, with aggregate counters and overall status
//
// Models live in their own package because the pipeline fills them, the
// report writers render them and the history database stores them; keeping
// them here prevents import cycles between those packages.
//
// The models are serializable to JSON for report output and database storage.
package model
