package transform

import "errors"

var (
	// ErrNullDocument is returned when the document root is JSON null.
	// A null root has no fields to inspect, so neither rule can run on it.
	ErrNullDocument = errors.New("cannot read properties of null document")

	// ErrNullRecord is returned when a sites or urls entry is JSON null.
	ErrNullRecord = errors.New("cannot read properties of null record")

	// ErrNameNotString is returned when the name filter has to inspect a
	// url record whose name is missing or not a string.
	ErrNameNotString = errors.New("url record name is not a string")

	// ErrURLNotString is returned when a url record carries a truthy url
	// field that is not a string.
	ErrURLNotString = errors.New("url record url is not a string")

	// ErrMissingOwner is returned when the URL rewriter has no owner to
	// substitute into rewritten URLs.
	ErrMissingOwner = errors.New("repository owner is required for URL rewriting")

	// ErrNoBranches is returned when the URL rewriter has no branch names.
	ErrNoBranches = errors.New("at least one branch name is required for URL rewriting")

	// ErrEmptyHost is returned when the URL rewriter has no host.
	ErrEmptyHost = errors.New("host is required for URL rewriting")
)
