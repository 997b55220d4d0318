package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
// Changes to defaults must be intentional; these tests fail when they drift.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default Root is the current directory", func(t *testing.T) {
		t.Parallel()
		if cfg.Root != "." {
			t.Errorf("expected Root to be '.', got '%s'", cfg.Root)
		}
	})

	t.Run("default marker field is jar", func(t *testing.T) {
		t.Parallel()
		if cfg.Sites.MarkerField != "jar" {
			t.Errorf("expected MarkerField to be 'jar', got '%s'", cfg.Sites.MarkerField)
		}
	})

	t.Run("default URL rules", func(t *testing.T) {
		t.Parallel()
		if cfg.URLs.FilePrefix != "dx" {
			t.Errorf("expected FilePrefix to be 'dx', got '%s'", cfg.URLs.FilePrefix)
		}
		if cfg.URLs.Host != "raw.githubusercontent.com" {
			t.Errorf("expected Host to be 'raw.githubusercontent.com', got '%s'", cfg.URLs.Host)
		}
		if cfg.URLs.TargetRepo != "tvbock" {
			t.Errorf("expected TargetRepo to be 'tvbock', got '%s'", cfg.URLs.TargetRepo)
		}
		if len(cfg.URLs.Branches) != 2 || cfg.URLs.Branches[0] != "main" || cfg.URLs.Branches[1] != "master" {
			t.Errorf("expected Branches [main master], got %v", cfg.URLs.Branches)
		}
		if len(cfg.URLs.ExcludeNames) != 2 {
			t.Errorf("expected 2 exclude names, got %v", cfg.URLs.ExcludeNames)
		}
	})

	t.Run("history is saved by default", func(t *testing.T) {
		t.Parallel()
		if !cfg.SaveHistory {
			t.Error("expected SaveHistory to be true")
		}
		if cfg.DBDir == "" {
			t.Error("expected DBDir to be set")
		}
	})

	t.Run("dry run and strict are off by default", func(t *testing.T) {
		t.Parallel()
		if cfg.DryRun {
			t.Error("expected DryRun to be false")
		}
		if cfg.Strict {
			t.Error("expected Strict to be false")
		}
		if cfg.LenientNames {
			t.Error("expected LenientNames to be false")
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
// Each test case targets one validation rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.Repository = "newowner/anything"
		cfg.Owner = "newowner"
		return cfg
	}

	tests := []struct {
		name     string
		modify   func(*Config)
		expected error
	}{
		{
			name:     "valid config returns nil",
			modify:   func(*Config) {},
			expected: nil,
		},
		{
			name:     "empty root",
			modify:   func(c *Config) { c.Root = "" },
			expected: ErrEmptyRoot,
		},
		{
			name:     "missing repository",
			modify:   func(c *Config) { c.Repository = ""; c.Owner = "" },
			expected: ErrMissingRepository,
		},
		{
			name:     "repository without owner",
			modify:   func(c *Config) { c.Repository = "/repo"; c.Owner = "" },
			expected: ErrInvalidRepository,
		},
		{
			name:     "empty marker field",
			modify:   func(c *Config) { c.Sites.MarkerField = " " },
			expected: ErrEmptyMarkerField,
		},
		{
			name:     "empty file prefix",
			modify:   func(c *Config) { c.URLs.FilePrefix = "" },
			expected: ErrEmptyFilePrefix,
		},
		{
			name:     "empty host",
			modify:   func(c *Config) { c.URLs.Host = "" },
			expected: ErrEmptyHost,
		},
		{
			name:     "no branches",
			modify:   func(c *Config) { c.URLs.Branches = nil },
			expected: ErrNoBranches,
		},
		{
			name:     "blank branch",
			modify:   func(c *Config) { c.URLs.Branches = []string{"main", ""} },
			expected: ErrNoBranches,
		},
		{
			name:     "empty target repo",
			modify:   func(c *Config) { c.URLs.TargetRepo = "" },
			expected: ErrEmptyTargetRepo,
		},
		{
			name:     "both report formats",
			modify:   func(c *Config) { c.JSONReport = true; c.MarkdownReport = true },
			expected: ErrConflictingReportFormats,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if !errors.Is(err, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, err)
			}
		})
	}
}

// TestLoadConfigFile tests loading the YAML configuration file.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid YAML returns error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), ".jsonsweep")
		if err := os.WriteFile(path, []byte("urls: [unclosed"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("partial file is merged with defaults", func(t *testing.T) {
		t.Parallel()

		content := `repository: someone/something
urls:
  targetRepo: mirror
  branches:
    - trunk
skipDirs:
  - .git
`
		path := filepath.Join(t.TempDir(), ".jsonsweep")
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cf.Repository != "someone/something" {
			t.Errorf("expected repository 'someone/something', got '%s'", cf.Repository)
		}

		cfg := NewConfig()
		cf.Apply(cfg)

		if cfg.URLs.TargetRepo != "mirror" {
			t.Errorf("expected TargetRepo 'mirror', got '%s'", cfg.URLs.TargetRepo)
		}
		if len(cfg.URLs.Branches) != 1 || cfg.URLs.Branches[0] != "trunk" {
			t.Errorf("expected Branches [trunk], got %v", cfg.URLs.Branches)
		}
		if cfg.URLs.Host != DefaultHost {
			t.Errorf("expected default Host, got '%s'", cfg.URLs.Host)
		}
		if cfg.Sites.MarkerField != DefaultMarkerField {
			t.Errorf("expected default MarkerField, got '%s'", cfg.Sites.MarkerField)
		}
		if len(cfg.SkipDirs) != 1 || cfg.SkipDirs[0] != ".git" {
			t.Errorf("expected SkipDirs [.git], got %v", cfg.SkipDirs)
		}
	})
}

// TestEffectiveRulesNilFile tests that a nil file yields the defaults.
func TestEffectiveRulesNilFile(t *testing.T) {
	t.Parallel()

	var cf *File
	if got := cf.EffectiveSiteRules(); got != DefaultSiteRules() {
		t.Errorf("expected default site rules, got %+v", got)
	}
	if got := cf.EffectiveURLRules(); got.TargetRepo != DefaultTargetRepo || got.FilePrefix != DefaultFilePrefix {
		t.Errorf("expected default URL rules, got %+v", got)
	}
}

// TestFindConfigFile tests explicit config path lookup.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit existing path is returned", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(path, []byte("{}"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %s, got %s", path, got)
		}
	})

	t.Run("explicit missing path returns empty string", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "nope.yaml")); got != "" {
			t.Errorf("expected empty string, got %s", got)
		}
	})
}

// TestParseOwner tests extraction of the owner segment.
func TestParseOwner(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
		err      error
	}{
		{name: "owner and repo", input: "newowner/anything", expected: "newowner"},
		{name: "owner only", input: "solo", expected: "solo"},
		{name: "surrounding spaces", input: "  me/repo  ", expected: "me"},
		{name: "extra segments", input: "a/b/c", expected: "a"},
		{name: "empty", input: "", err: ErrMissingRepository},
		{name: "blank", input: "   ", err: ErrMissingRepository},
		{name: "missing owner", input: "/repo", err: ErrInvalidRepository},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseOwner(tt.input)
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected error %v, got %v", tt.err, err)
			}
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

// TestResolveRepository tests the flag > environment > file precedence.
// Subtests mutate the environment and therefore do not run in parallel.
func TestResolveRepository(t *testing.T) {
	t.Run("flag wins over environment and file", func(t *testing.T) {
		t.Setenv(RepositoryEnv, "env/repo")
		if got := ResolveRepository("flag/repo", "file/repo"); got != "flag/repo" {
			t.Errorf("expected flag/repo, got %s", got)
		}
	})

	t.Run("environment wins over file", func(t *testing.T) {
		t.Setenv(RepositoryEnv, "env/repo")
		if got := ResolveRepository("", "file/repo"); got != "env/repo" {
			t.Errorf("expected env/repo, got %s", got)
		}
	})

	t.Run("file is the fallback", func(t *testing.T) {
		t.Setenv(RepositoryEnv, "")
		if got := ResolveRepository(" ", "file/repo"); got != "file/repo" {
			t.Errorf("expected file/repo, got %s", got)
		}
	})

	t.Run("nothing set yields empty string", func(t *testing.T) {
		t.Setenv(RepositoryEnv, "")
		if got := ResolveRepository("", ""); got != "" {
			t.Errorf("expected empty string, got %s", got)
		}
	})
}

// TestLoadDotEnv tests loading the repository coordinate from a dotenv file.
func TestLoadDotEnv(t *testing.T) {
	t.Run("missing file is not an error", func(t *testing.T) {
		if err := LoadDotEnv(filepath.Join(t.TempDir(), ".env")); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("existing variables are not overridden", func(t *testing.T) {
		t.Setenv(RepositoryEnv, "already/set")

		path := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(path, []byte("GITHUB_REPOSITORY=dotenv/repo\n"), 0600); err != nil {
			t.Fatalf("failed to write dotenv: %v", err)
		}
		if err := LoadDotEnv(path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := os.Getenv(RepositoryEnv); got != "already/set" {
			t.Errorf("expected already/set, got %s", got)
		}
	})

	t.Run("unset variables are loaded", func(t *testing.T) {
		t.Setenv(RepositoryEnv, "")
		if err := os.Unsetenv(RepositoryEnv); err != nil {
			t.Fatalf("failed to unset: %v", err)
		}

		path := filepath.Join(t.TempDir(), ".env")
		if err := os.WriteFile(path, []byte("GITHUB_REPOSITORY=dotenv/repo\n"), 0600); err != nil {
			t.Fatalf("failed to write dotenv: %v", err)
		}
		if err := LoadDotEnv(path); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := os.Getenv(RepositoryEnv); got != "dotenv/repo" {
			t.Errorf("expected dotenv/repo, got %s", got)
		}
	})
}
