// Package document provides an order-preserving JSON document model.
//
// Maintenance tools that rewrite configuration files in place must not
// reorder keys or re-escape strings, otherwise every run produces a noisy
// diff. Objects are therefore decoded into insertion-ordered maps
// (github.com/wk8/go-ordered-map/v2), numbers keep their source text
// (json.Number), and Encode writes the tree back with 4-space indentation
// and the same escaping rules as JavaScript's JSON.stringify.
//
// A Document exposes top-level lists as optional capabilities: List reports
// whether the root is an object carrying an array under the requested key.
// Rules that need a list they cannot find simply do nothing.
package document
