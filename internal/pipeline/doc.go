// Package pipeline runs the jsonsweep rules over a tree of JSON files.
//
// Every discovered file goes through the same Pipeline: it is read and
// parsed once, then each Step (Site Filter, then URL Rewriter) transforms
// the in-memory document. A step that changes the document persists it
// immediately, so writes happen per stage rather than per file: if a later
// stage fails, the earlier stage's write stays on disk.
//
// The Runner owns the sequential loop over files. Failures of one file are
// recorded in its model.FileReport and reported through the Observer; they
// never stop the run. Only discovery errors and context cancellation end a
// run early.
//
// Filesystem access goes through go-billy, so the same code runs against
// the OS (osfs) and against in-memory trees (memfs) in tests.
package pipeline
