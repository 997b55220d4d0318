// Package main provides the entry point for the jsonsweep CLI.
//
// jsonsweep cleans a tree of JSON configuration files in place: it drops
// site records that need a jar, drops unwanted url records from dx* files
// and repoints raw GitHub urls at the current repository owner.
//
// Usage:
//
//	jsonsweep run [root]
//	jsonsweep history [run-id]
//
// See --help for all available options.
package main

// main is the entry point for jsonsweep.
func main() {
	Execute()
}
