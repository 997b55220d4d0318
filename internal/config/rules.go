package config

import "strings"

// SiteRules configures the site filter.
type SiteRules struct {
	// MarkerField is the record field whose truthy value removes the record.
	MarkerField string `yaml:"markerField,omitempty"`
}

// DefaultSiteRules returns the built-in site filter rules.
func DefaultSiteRules() SiteRules {
	return SiteRules{MarkerField: DefaultMarkerField}
}

// Validate checks the site filter rules.
func (r SiteRules) Validate() error {
	if strings.TrimSpace(r.MarkerField) == "" {
		return ErrEmptyMarkerField
	}
	return nil
}

// URLRules configures the URL rewriter.
type URLRules struct {
	// FilePrefix selects the files the rewriter applies to by base name.
	FilePrefix string `yaml:"filePrefix,omitempty"`

	// ExcludeNames are substrings that remove a URL record when its name
	// contains one of them.
	ExcludeNames []string `yaml:"excludeNames,omitempty"`

	// Host is the hosting service whose raw URLs are rewritten.
	Host string `yaml:"host,omitempty"`

	// Branches are the branch names accepted after owner/repo.
	Branches []string `yaml:"branches,omitempty"`

	// TargetRepo replaces the repository segment of matching URLs.
	TargetRepo string `yaml:"targetRepo,omitempty"`
}

// DefaultURLRules returns the built-in URL rewriter rules.
func DefaultURLRules() URLRules {
	return URLRules{
		FilePrefix:   DefaultFilePrefix,
		ExcludeNames: DefaultExcludeNames(),
		Host:         DefaultHost,
		Branches:     DefaultBranches(),
		TargetRepo:   DefaultTargetRepo,
	}
}

// Validate checks the URL rewriter rules.
func (r URLRules) Validate() error {
	if r.FilePrefix == "" {
		return ErrEmptyFilePrefix
	}
	if strings.TrimSpace(r.Host) == "" {
		return ErrEmptyHost
	}
	if len(r.Branches) == 0 {
		return ErrNoBranches
	}
	for _, b := range r.Branches {
		if strings.TrimSpace(b) == "" {
			return ErrNoBranches
		}
	}
	if strings.TrimSpace(r.TargetRepo) == "" {
		return ErrEmptyTargetRepo
	}
	return nil
}

// File represents the structure of the .jsonsweep configuration file.
type File struct {
	// Repository is the fallback repository coordinate ("owner/repo"), used
	// when neither --repository nor GITHUB_REPOSITORY is set.
	Repository string `yaml:"repository,omitempty"`

	// Sites overrides the site filter rules.
	Sites SiteRules `yaml:"sites,omitempty"`

	// URLs overrides the URL rewriter rules.
	URLs URLRules `yaml:"urls,omitempty"`

	// SkipDirs lists directory base names that discovery does not enter.
	SkipDirs []string `yaml:"skipDirs,omitempty"`
}

// EffectiveSiteRules returns the file's site rules with unset fields taken
// from the defaults.
func (cf *File) EffectiveSiteRules() SiteRules {
	result := DefaultSiteRules()
	if cf == nil {
		return result
	}
	if cf.Sites.MarkerField != "" {
		result.MarkerField = cf.Sites.MarkerField
	}
	return result
}

// EffectiveURLRules returns the file's URL rules with unset fields taken
// from the defaults. Lists replace the defaults rather than extending them.
func (cf *File) EffectiveURLRules() URLRules {
	result := DefaultURLRules()
	if cf == nil {
		return result
	}
	if cf.URLs.FilePrefix != "" {
		result.FilePrefix = cf.URLs.FilePrefix
	}
	if len(cf.URLs.ExcludeNames) > 0 {
		result.ExcludeNames = cf.URLs.ExcludeNames
	}
	if cf.URLs.Host != "" {
		result.Host = cf.URLs.Host
	}
	if len(cf.URLs.Branches) > 0 {
		result.Branches = cf.URLs.Branches
	}
	if cf.URLs.TargetRepo != "" {
		result.TargetRepo = cf.URLs.TargetRepo
	}
	return result
}
