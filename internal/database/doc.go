// Package database provides SQLite-based run history for jsonsweep.
//
// The HistoryDB stores:
//   - One record per run with its counters and the full JSON report
//   - One record per file write, with SHA3-256 digests of the content
//     before and after the write
//
// The database is a single file opened through modernc.org/sqlite, which
// needs no CGO. WAL mode is enabled by default.
package database
