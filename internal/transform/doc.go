// Package transform implements the two document rules of jsonsweep.
//
// The Site Filter removes entries of a top-level "sites" list that carry a
// truthy marker field. The URL Rewriter applies to files whose base name
// starts with a configured prefix: it drops entries of a top-level "urls"
// list whose name contains a disqualifying substring, then points the
// surviving raw-content URLs at the configured owner and repository while
// keeping any proxy prefix and path suffix.
//
// Both rules treat their list as an optional capability of the document and
// do nothing when it is missing. Neither rule mutates the document when it
// returns an error, so a failed rule leaves the file exactly as it was read.
package transform
