package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// Default configuration values.
// Each of them can be overridden from the .jsonsweep file.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "jsonsweep"

	// DefaultRoot is the directory scanned when no root argument is given.
	DefaultRoot = "."

	// DefaultMarkerField is the site record field whose truthy value removes
	// the record. Sites that need a jar (spider) cannot be loaded by the
	// clients these files are published for.
	DefaultMarkerField = "jar"

	// DefaultFilePrefix is the base-name prefix of files the URL rewriter
	// applies to.
	DefaultFilePrefix = "dx"

	// DefaultHost is the hosting service whose raw file URLs are rewritten.
	DefaultHost = "raw.githubusercontent.com"

	// DefaultTargetRepo replaces the repository segment of rewritten URLs.
	DefaultTargetRepo = "tvbock"
)

// DefaultExcludeNames returns the substrings that remove a URL record when
// its name contains one of them.
func DefaultExcludeNames() []string {
	return []string{"精简多线", "嗷呜"}
}

// DefaultBranches returns the branch names recognised in hosting URLs.
func DefaultBranches() []string {
	return []string{"main", "master"}
}

// Config holds all configuration options for a jsonsweep run.
// It is populated from CLI flags, the environment and the config file, and
// passed down explicitly rather than kept in global state.
type Config struct {
	// Root is the directory tree to scan.
	Root string

	// Repository is the raw repository coordinate ("owner/repo").
	Repository string

	// Owner is the owner segment of Repository. It replaces the owner of
	// every rewritten URL.
	Owner string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .jsonsweep in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// Sites holds the effective site filter rules.
	Sites SiteRules

	// URLs holds the effective URL rewriter rules.
	URLs URLRules

	// SkipDirs lists directory base names that discovery does not enter.
	SkipDirs []string

	// LenientNames makes URL records without a string name pass the name
	// filter instead of failing the file.
	LenientNames bool

	// DryRun reports changes without writing any file.
	DryRun bool

	// Strict makes the run fail when at least one file could not be processed.
	Strict bool

	// Verbose enables detailed log output using slog.LevelDebug.
	Verbose bool

	// JSONReport prints the run summary as JSON.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport prints the run summary as Markdown.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the run summary.
	// When set, the summary is written to this file instead of stdout.
	ReportFile string

	// StepSummaryFile is a file the Markdown summary is appended to, in
	// addition to any other report. It is taken from StepSummaryEnv.
	StepSummaryFile string

	// SaveHistory records the run and every persisted change in the
	// history database.
	SaveHistory bool

	// DBDir is the directory holding the history database.
	DBDir string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Root:        DefaultRoot,
		Sites:       DefaultSiteRules(),
		URLs:        DefaultURLRules(),
		SaveHistory: true,
		DBDir:       XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for jsonsweep.
// On Linux: ~/.local/share/jsonsweep
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for jsonsweep.
// On Linux: ~/.config/jsonsweep
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found; all checks run before any file is
// touched so that a misconfigured run never modifies the tree.
func (c *Config) Validate() error {
	if c.Root == "" {
		return ErrEmptyRoot
	}

	if c.Repository == "" && c.Owner == "" {
		return ErrMissingRepository
	}
	if c.Owner == "" {
		return ErrInvalidRepository
	}

	if err := c.Sites.Validate(); err != nil {
		return err
	}
	if err := c.URLs.Validate(); err != nil {
		return err
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
