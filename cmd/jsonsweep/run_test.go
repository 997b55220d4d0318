package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nao1215/jsonsweep/internal/config"
	"github.com/nao1215/jsonsweep/internal/database"
	"github.com/nao1215/jsonsweep/internal/log"
)

const (
	dxInput = `{"urls":[{"name":"主线","url":"https://ghproxy.net/https://raw.githubusercontent.com/alice/tv/main/api.json"},{"name":"嗷呜线路","url":"https://example.com/a.json"}]}`

	dxOutput = `{
    "urls": [
        {
            "name": "主线",
            "url": "https://ghproxy.net/https://raw.githubusercontent.com/newowner/tvbock/main/api.json"
        }
    ]
}`

	sitesInput = `{"sites":[{"key":"a","jar":"./spider.jar"},{"key":"b","jar":""},{"key":"c"}]}`

	sitesOutput = `{
    "sites": [
        {
            "key": "b",
            "jar": ""
        },
        {
            "key": "c"
        }
    ]
}`

	cleanInput = `{"sites":[{"key":"c"}]}`
)

// writeFixtures creates a directory with one file per outcome.
func writeFixtures(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	files := map[string]string{
		"dx1.json":   dxInput,
		"sites.json": sitesInput,
		"clean.json": cleanInput,
		"bad.json":   `{"sites": [`,
		"notes.txt":  "not json",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0600); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return dir
}

// newTestConfig returns a configuration for dir that records history in a
// temporary directory.
func newTestConfig(t *testing.T, dir string) *config.Config {
	t.Helper()

	cfg := config.NewConfig()
	cfg.Root = dir
	cfg.Repository = "newowner/configs"
	cfg.Owner = "newowner"
	cfg.DBDir = t.TempDir()
	return cfg
}

func readString(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path) //nolint:gosec // test fixture
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// TestNewRunCmd tests the run command creation.
func TestNewRunCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRunCmd()

	if cmd.Use != "run [root]" {
		t.Errorf("expected use 'run [root]', got %q", cmd.Use)
	}

	flags := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{"repository", "r", ""},
		{"config", "c", ""},
		{"dry-run", "n", "false"},
		{"lenient-names", "", "false"},
		{"skip-dir", "", "[]"},
		{"strict", "", "false"},
		{"no-history", "", "false"},
		{"json", "j", "false"},
		{"markdown", "m", "false"},
		{"output", "o", ""},
	}

	for _, tt := range flags {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			flag := cmd.Flags().Lookup(tt.name)
			if flag == nil {
				t.Fatalf("expected %s flag", tt.name)
			}
			if flag.Shorthand != tt.shorthand {
				t.Errorf("expected shorthand %q, got %q", tt.shorthand, flag.Shorthand)
			}
			if flag.DefValue != tt.defValue {
				t.Errorf("expected default %q, got %q", tt.defValue, flag.DefValue)
			}
		})
	}

	t.Run("accepts at most one root", func(t *testing.T) {
		t.Parallel()
		if err := cmd.Args(cmd, []string{"a", "b"}); err == nil {
			t.Error("expected error for two arguments")
		}
	})
}

// TestBuildConfig tests configuration assembly from flags, the environment
// and the configuration file. Subtests modify the environment and cannot run
// in parallel.
func TestBuildConfig(t *testing.T) {
	writeConfig := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), ".jsonsweep")
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		return path
	}

	t.Run("flags and environment", func(t *testing.T) {
		t.Setenv(config.RepositoryEnv, "envowner/configs")
		t.Setenv(config.StepSummaryEnv, "/tmp/summary.md")

		cmd := NewRunCmd()
		_ = cmd.Flags().Set("config", writeConfig(t, "sites:\n  markerField: spider\n"))
		_ = cmd.Flags().Set("dry-run", "true")
		_ = cmd.Flags().Set("strict", "true")
		_ = cmd.Flags().Set("no-history", "true")
		_ = cmd.Flags().Set("lenient-names", "true")
		_ = cmd.Flags().Set("skip-dir", "vendor")
		_ = cmd.Flags().Set("markdown", "true")
		_ = cmd.Flags().Set("output", "out.md")

		cfg, err := buildConfig(cmd, []string{"./data"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Root != "./data" {
			t.Errorf("expected root ./data, got %q", cfg.Root)
		}
		if cfg.Repository != "envowner/configs" || cfg.Owner != "envowner" {
			t.Errorf("unexpected repository %q owner %q", cfg.Repository, cfg.Owner)
		}
		if cfg.Sites.MarkerField != "spider" {
			t.Errorf("expected marker field from config file, got %q", cfg.Sites.MarkerField)
		}
		if cfg.URLs.FilePrefix != config.DefaultFilePrefix {
			t.Errorf("expected default file prefix, got %q", cfg.URLs.FilePrefix)
		}
		if !cfg.DryRun || !cfg.Strict || !cfg.LenientNames || cfg.SaveHistory {
			t.Errorf("unexpected behavior flags: %+v", cfg)
		}
		if len(cfg.SkipDirs) != 1 || cfg.SkipDirs[0] != "vendor" {
			t.Errorf("expected skip dirs [vendor], got %v", cfg.SkipDirs)
		}
		if !cfg.MarkdownReport || cfg.JSONReport || cfg.ReportFile != "out.md" {
			t.Errorf("unexpected report settings: %+v", cfg)
		}
		if cfg.StepSummaryFile != "/tmp/summary.md" {
			t.Errorf("expected step summary file from env, got %q", cfg.StepSummaryFile)
		}
	})

	t.Run("repository flag wins over environment and file", func(t *testing.T) {
		t.Setenv(config.RepositoryEnv, "envowner/configs")

		cmd := NewRunCmd()
		_ = cmd.Flags().Set("config", writeConfig(t, "repository: fileowner/configs\n"))
		_ = cmd.Flags().Set("repository", "flagowner/configs")

		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Owner != "flagowner" {
			t.Errorf("expected owner flagowner, got %q", cfg.Owner)
		}
		if cfg.Root != config.DefaultRoot {
			t.Errorf("expected default root, got %q", cfg.Root)
		}
		if !cfg.SaveHistory {
			t.Error("expected history to be saved by default")
		}
	})

	t.Run("config file repository is the fallback", func(t *testing.T) {
		t.Setenv(config.RepositoryEnv, "")

		cmd := NewRunCmd()
		_ = cmd.Flags().Set("config", writeConfig(t, "repository: fileowner/configs\nskipDirs:\n  - .git\n"))

		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.Owner != "fileowner" {
			t.Errorf("expected owner fileowner, got %q", cfg.Owner)
		}
		if len(cfg.SkipDirs) != 1 || cfg.SkipDirs[0] != ".git" {
			t.Errorf("expected skip dirs [.git], got %v", cfg.SkipDirs)
		}
	})

	t.Run("missing repository is left to validation", func(t *testing.T) {
		t.Setenv(config.RepositoryEnv, "")

		cmd := NewRunCmd()
		_ = cmd.Flags().Set("config", writeConfig(t, "{}\n"))

		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !errors.Is(cfg.Validate(), config.ErrMissingRepository) {
			t.Errorf("expected ErrMissingRepository, got %v", cfg.Validate())
		}
	})

	t.Run("empty owner is an error", func(t *testing.T) {
		t.Setenv(config.RepositoryEnv, "")

		cmd := NewRunCmd()
		_ = cmd.Flags().Set("config", writeConfig(t, "{}\n"))
		_ = cmd.Flags().Set("repository", "/configs")

		_, err := buildConfig(cmd, nil)
		if !errors.Is(err, config.ErrInvalidRepository) {
			t.Errorf("expected ErrInvalidRepository, got %v", err)
		}
	})

	t.Run("missing explicit config file is an error", func(t *testing.T) {
		cmd := NewRunCmd()
		_ = cmd.Flags().Set("config", filepath.Join(t.TempDir(), "missing.yaml"))

		_, err := buildConfig(cmd, nil)
		if err == nil || !strings.Contains(err.Error(), "configuration file not found") {
			t.Errorf("expected not found error, got %v", err)
		}
	})

	t.Run("invalid config file is an error", func(t *testing.T) {
		cmd := NewRunCmd()
		_ = cmd.Flags().Set("config", writeConfig(t, "sites: [unclosed\n"))

		_, err := buildConfig(cmd, nil)
		if err == nil || !strings.Contains(err.Error(), "failed to load config file") {
			t.Errorf("expected load error, got %v", err)
		}
	})
}

// TestRunSweep tests a complete run over a real directory.
func TestRunSweep(t *testing.T) {
	t.Parallel()

	logger := log.NewSecureLogger(io.Discard, false)

	t.Run("rewrites files and records history", func(t *testing.T) {
		t.Parallel()

		dir := writeFixtures(t)
		cfg := newTestConfig(t, dir)

		var out, errOut bytes.Buffer
		if err := runSweep(context.Background(), cfg, logger, &out, &errOut); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := readString(t, filepath.Join(dir, "dx1.json")); got != dxOutput {
			t.Errorf("dx1.json:\n%s\nwant:\n%s", got, dxOutput)
		}
		if got := readString(t, filepath.Join(dir, "sites.json")); got != sitesOutput {
			t.Errorf("sites.json:\n%s\nwant:\n%s", got, sitesOutput)
		}
		if got := readString(t, filepath.Join(dir, "clean.json")); got != cleanInput {
			t.Errorf("clean.json was rewritten: %s", got)
		}

		wantLines := []string{
			"Removed URL in dx1.json with name containing '精简多线和嗷呜': 嗷呜线路\n",
			"Removed 1 URLs containing '精简多线和嗷呜' from dx1.json\n",
			"Updated URL in dx1.json: https://ghproxy.net/https://raw.githubusercontent.com/alice/tv/main/api.json -> " +
				"https://ghproxy.net/https://raw.githubusercontent.com/newowner/tvbock/main/api.json\n",
			"Processed " + filepath.Join(dir, "dx1.json") +
				": removed entries with '精简多线和嗷呜' and updated repository paths while preserving proxy prefixes\n",
			"Processed " + filepath.Join(dir, "sites.json") + ": removed 1 sites with jar field\n",
		}
		for _, line := range wantLines {
			if !strings.Contains(out.String(), line) {
				t.Errorf("expected output to contain %q, got:\n%s", line, out.String())
			}
		}
		if !strings.HasSuffix(out.String(), "Finished processing all JSON files\n") {
			t.Errorf("expected finish line last, got:\n%s", out.String())
		}
		if strings.Contains(out.String(), "JSONSWEEP REPORT") {
			t.Error("expected no report without a requested format")
		}

		if !strings.HasPrefix(errOut.String(), "Error processing "+filepath.Join(dir, "bad.json")+": ") {
			t.Errorf("unexpected error output: %q", errOut.String())
		}

		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		runs, err := db.ListRuns(context.Background(), 0)
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 1 {
			t.Fatalf("expected 1 run, got %d", len(runs))
		}
		run := runs[0]
		if !run.Finished() || run.Scanned != 4 || run.Modified != 2 || run.Failed != 1 {
			t.Errorf("unexpected run metadata: %+v", run)
		}

		changes, err := db.ListChanges(context.Background(), run.ID)
		if err != nil {
			t.Fatalf("failed to list changes: %v", err)
		}
		if len(changes) != 2 {
			t.Fatalf("expected 2 recorded writes, got %d", len(changes))
		}
		if changes[0].AfterHash != database.HashContent([]byte(dxOutput)) {
			t.Errorf("unexpected after hash for %s", changes[0].Path)
		}
	})

	t.Run("dry run leaves files untouched", func(t *testing.T) {
		t.Parallel()

		dir := writeFixtures(t)
		cfg := newTestConfig(t, dir)
		cfg.DryRun = true
		cfg.SaveHistory = false

		var out, errOut bytes.Buffer
		if err := runSweep(context.Background(), cfg, logger, &out, &errOut); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := readString(t, filepath.Join(dir, "dx1.json")); got != dxInput {
			t.Errorf("dx1.json was written in dry run: %s", got)
		}
		if !strings.Contains(out.String(), "Removed 1 URLs containing") {
			t.Errorf("expected progress lines in dry run, got:\n%s", out.String())
		}
		if _, err := os.Stat(filepath.Join(cfg.DBDir, database.FileName)); !os.IsNotExist(err) {
			t.Error("expected no history database without SaveHistory")
		}
	})

	t.Run("strict mode fails on a failed file", func(t *testing.T) {
		t.Parallel()

		dir := writeFixtures(t)
		cfg := newTestConfig(t, dir)
		cfg.Strict = true
		cfg.SaveHistory = false

		err := runSweep(context.Background(), cfg, logger, io.Discard, io.Discard)
		if !errors.Is(err, errFilesFailed) {
			t.Fatalf("expected errFilesFailed, got %v", err)
		}
		if !strings.Contains(err.Error(), "1 of 4") {
			t.Errorf("expected counts in error, got %v", err)
		}

		// The other files are still processed.
		if got := readString(t, filepath.Join(dir, "sites.json")); got != sitesOutput {
			t.Errorf("sites.json:\n%s", got)
		}
	})

	t.Run("missing root is an error", func(t *testing.T) {
		t.Parallel()

		cfg := newTestConfig(t, filepath.Join(t.TempDir(), "missing"))

		var out bytes.Buffer
		if err := runSweep(context.Background(), cfg, logger, &out, io.Discard); err == nil {
			t.Error("expected error for missing root")
		}
		if strings.Contains(out.String(), "Finished processing") {
			t.Error("expected no finish line for missing root")
		}
	})

	t.Run("json report to file", func(t *testing.T) {
		t.Parallel()

		dir := writeFixtures(t)
		cfg := newTestConfig(t, dir)
		cfg.SaveHistory = false
		cfg.JSONReport = true
		cfg.ReportFile = filepath.Join(t.TempDir(), "reports", "run.json")

		var out bytes.Buffer
		if err := runSweep(context.Background(), cfg, logger, &out, io.Discard); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded struct {
			Version string `json:"version"`
			Summary struct {
				Scanned  int  `json:"scanned"`
				Modified int  `json:"modified"`
				Failed   int  `json:"failed"`
				OK       bool `json:"ok"`
			} `json:"summary"`
		}
		if err := json.Unmarshal([]byte(readString(t, cfg.ReportFile)), &decoded); err != nil {
			t.Fatalf("invalid JSON report: %v", err)
		}
		if decoded.Summary.Scanned != 4 || decoded.Summary.Modified != 2 || decoded.Summary.Failed != 1 || decoded.Summary.OK {
			t.Errorf("unexpected summary: %+v", decoded.Summary)
		}
		if strings.Contains(out.String(), `"summary"`) {
			t.Error("expected report in the file, not on stdout")
		}
	})

	t.Run("step summary is appended", func(t *testing.T) {
		t.Parallel()

		dir := writeFixtures(t)
		cfg := newTestConfig(t, dir)
		cfg.SaveHistory = false
		cfg.StepSummaryFile = filepath.Join(t.TempDir(), "summary.md")
		if err := os.WriteFile(cfg.StepSummaryFile, []byte("previous step\n"), 0600); err != nil {
			t.Fatalf("failed to write summary: %v", err)
		}

		var out bytes.Buffer
		if err := runSweep(context.Background(), cfg, logger, &out, io.Discard); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		summary := readString(t, cfg.StepSummaryFile)
		if !strings.HasPrefix(summary, "previous step\n") {
			t.Errorf("expected existing content to be kept, got:\n%s", summary)
		}
		if !strings.Contains(summary, "# jsonsweep Report") {
			t.Errorf("expected markdown report, got:\n%s", summary)
		}
		if strings.Contains(out.String(), "# jsonsweep Report") {
			t.Error("expected step summary only in the summary file")
		}
	})
}

// TestRunCommand tests the run command end to end through the root command.
// It modifies the environment and cannot run in parallel.
func TestRunCommand(t *testing.T) {
	t.Setenv(config.StepSummaryEnv, "")

	configPath := filepath.Join(t.TempDir(), ".jsonsweep")
	if err := os.WriteFile(configPath, []byte("{}\n"), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Run("processes the tree", func(t *testing.T) {
		dir := writeFixtures(t)

		var out, errOut bytes.Buffer
		root := NewRootCmd()
		root.SetOut(&out)
		root.SetErr(&errOut)
		root.SetArgs([]string{"run", "--no-history", "-c", configPath, "-r", "newowner/configs", dir})

		if err := root.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := readString(t, filepath.Join(dir, "dx1.json")); got != dxOutput {
			t.Errorf("dx1.json:\n%s", got)
		}
		if !strings.Contains(out.String(), "Finished processing all JSON files") {
			t.Errorf("unexpected output:\n%s", out.String())
		}
	})

	t.Run("missing repository leaves files untouched", func(t *testing.T) {
		t.Setenv(config.RepositoryEnv, "")
		dir := writeFixtures(t)

		root := NewRootCmd()
		root.SetOut(io.Discard)
		root.SetErr(io.Discard)
		root.SetArgs([]string{"run", "--no-history", "-c", configPath, dir})

		err := root.Execute()
		if !errors.Is(err, config.ErrMissingRepository) {
			t.Fatalf("expected ErrMissingRepository, got %v", err)
		}
		if got := readString(t, filepath.Join(dir, "dx1.json")); got != dxInput {
			t.Errorf("dx1.json was modified: %s", got)
		}
	})

	t.Run("conflicting report formats", func(t *testing.T) {
		dir := writeFixtures(t)

		root := NewRootCmd()
		root.SetOut(io.Discard)
		root.SetErr(io.Discard)
		root.SetArgs([]string{"run", "--no-history", "-c", configPath, "-r", "me/x", "-j", "-m", dir})

		if err := root.Execute(); !errors.Is(err, config.ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})
}
