package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and ParseOwner() so that
// callers can use errors.Is() to tell configuration problems apart from
// filesystem or parse failures. All of them abort a run before any file is
// read.
var (
	// ErrEmptyRoot is returned when no root directory is configured.
	ErrEmptyRoot = errors.New("no root directory specified")

	// ErrMissingRepository is returned when the repository coordinate is not
	// provided by --repository, GITHUB_REPOSITORY or the config file.
	// The URL rewriter has no owner to substitute without it, and an empty
	// owner would produce broken URLs.
	ErrMissingRepository = errors.New("missing repository coordinate: set GITHUB_REPOSITORY or use --repository")

	// ErrInvalidRepository is returned when the repository coordinate has an
	// empty owner segment (for example "/repo").
	ErrInvalidRepository = errors.New("invalid repository coordinate: owner must not be empty")

	// ErrEmptyMarkerField is returned when the site filter has no marker field.
	ErrEmptyMarkerField = errors.New("invalid site rules: marker field must not be empty")

	// ErrEmptyFilePrefix is returned when the URL rewriter has no file prefix.
	// An empty prefix would apply URL rules to every JSON file.
	ErrEmptyFilePrefix = errors.New("invalid url rules: file prefix must not be empty")

	// ErrEmptyHost is returned when the URL rewriter has no hosting pattern host.
	ErrEmptyHost = errors.New("invalid url rules: host must not be empty")

	// ErrNoBranches is returned when the URL rewriter has no branch names.
	ErrNoBranches = errors.New("invalid url rules: at least one branch is required")

	// ErrEmptyTargetRepo is returned when the URL rewriter has no replacement
	// repository name.
	ErrEmptyTargetRepo = errors.New("invalid url rules: target repository must not be empty")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
