// Package discover finds the JSON files jsonsweep operates on.
//
// Discovery runs over a billy.Filesystem so that the same walker serves the
// operating system (osfs) and in-memory trees (memfs) in tests. The walk is
// depth-first, visits directory entries in lexical order, follows symbolic
// links through Stat and collects every entry whose extension is exactly
// ".json". Names are not filtered here; rules decide later which files they
// apply to.
package discover
