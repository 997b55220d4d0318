package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/nao1215/jsonsweep/internal/config"
	"github.com/nao1215/jsonsweep/internal/database"
	"github.com/nao1215/jsonsweep/internal/discover"
	"github.com/nao1215/jsonsweep/internal/model"
	"github.com/nao1215/jsonsweep/internal/pipeline"
	"github.com/nao1215/jsonsweep/internal/report"
	"github.com/nao1215/jsonsweep/internal/transform"
)

// errFilesFailed is returned in strict mode when at least one file failed.
var errFilesFailed = errors.New("one or more files could not be processed")

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [root]",
		Short: "Clean every JSON file under a directory in place",
		Long: `Run walks the directory tree under root (default: the current directory)
and processes every .json file:

- Site filter: entries of "sites" with a truthy "jar" field are removed.
- URL rewriter (files named dx*): entries of "urls" whose name contains an
  excluded label are removed, and https://raw.githubusercontent.com/<owner>/<repo>/<branch>
  urls are rewritten to <your owner>/tvbock/<branch>. Proxy prefixes are kept.

A file is written back with 4-space indentation only when it changed.
A file that cannot be processed is reported and skipped; the run goes on.

The owner is taken from --repository, then GITHUB_REPOSITORY (a .env file in
the working directory is loaded first), then the configuration file.

Examples:
  # Clean the current directory
  GITHUB_REPOSITORY=me/configs jsonsweep run

  # Preview the changes without writing anything
  jsonsweep run --dry-run -r me/configs ./data

  # Fail the CI job when a file could not be processed
  jsonsweep run --strict

  # Write a Markdown summary to a file
  jsonsweep run -m -o summary.md`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRunCmd,
	}

	// Repository and configuration
	cmd.Flags().StringP("repository", "r", "",
		"Repository coordinate owner/repo (default: $GITHUB_REPOSITORY)")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .jsonsweep in current or home directory)")

	// Behavior flags
	cmd.Flags().BoolP("dry-run", "n", false,
		"Report changes without writing any file")
	cmd.Flags().Bool("lenient-names", false,
		"Keep url entries without a string name instead of failing the file")
	cmd.Flags().StringSlice("skip-dir", nil,
		"Directory name not to descend into (repeatable)")
	cmd.Flags().Bool("strict", false,
		"Exit with an error when any file could not be processed")
	cmd.Flags().Bool("no-history", false,
		"Do not record the run in the history database")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runRunCmd executes the run command.
func runRunCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cmd.ErrOrStderr())
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Warn("received shutdown signal, stopping after the current file")
			cancel()
		case <-ctx.Done():
		}
	}()

	return runSweep(ctx, cfg, logger, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// buildConfig creates a Config from cobra command flags, the environment and
// the configuration file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	if len(args) > 0 {
		cfg.Root = args[0]
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// If the user explicitly specified a config file path, error if not found.
	// If no path is specified, silently keep the defaults.
	var file *config.File
	if configPath := config.FindConfigFile(cfg.ConfigFilePath); configPath != "" {
		file, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if cfg.ConfigFilePath != "" {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}
	file.Apply(cfg)

	skipDirs, err := cmd.Flags().GetStringSlice("skip-dir")
	if err != nil {
		return nil, err
	}
	cfg.SkipDirs = append(cfg.SkipDirs, skipDirs...)

	if err := config.LoadDotEnv(config.DefaultDotEnvFile); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", config.DefaultDotEnvFile, err)
	}

	repositoryFlag, err := cmd.Flags().GetString("repository")
	if err != nil {
		return nil, err
	}
	var fileRepository string
	if file != nil {
		fileRepository = file.Repository
	}
	cfg.Repository = config.ResolveRepository(repositoryFlag, fileRepository)
	if cfg.Repository != "" {
		cfg.Owner, err = config.ParseOwner(cfg.Repository)
		if err != nil {
			return nil, fmt.Errorf("configuration error: %w", err)
		}
	}

	cfg.DryRun, err = cmd.Flags().GetBool("dry-run")
	if err != nil {
		return nil, err
	}

	cfg.LenientNames, err = cmd.Flags().GetBool("lenient-names")
	if err != nil {
		return nil, err
	}

	cfg.Strict, err = cmd.Flags().GetBool("strict")
	if err != nil {
		return nil, err
	}

	noHistory, err := cmd.Flags().GetBool("no-history")
	if err != nil {
		return nil, err
	}
	cfg.SaveHistory = !noHistory

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.StepSummaryFile = os.Getenv(config.StepSummaryEnv)
	cfg.Verbose = getVerboseFlag(cmd)

	return cfg, nil
}

// siteRule converts the configured site rules.
func siteRule(cfg *config.Config) transform.SiteRule {
	return transform.SiteRule{MarkerField: cfg.Sites.MarkerField}
}

// urlRule converts the configured url rules.
func urlRule(cfg *config.Config) transform.URLRule {
	return transform.URLRule{
		FilePrefix:   cfg.URLs.FilePrefix,
		ExcludeNames: cfg.URLs.ExcludeNames,
		Host:         cfg.URLs.Host,
		Branches:     cfg.URLs.Branches,
		TargetRepo:   cfg.URLs.TargetRepo,
		Owner:        cfg.Owner,
		LenientNames: cfg.LenientNames,
	}
}

// runSweep processes the tree under cfg.Root.
//
// Configuration, database and discovery errors are returned before any file
// is touched. Per-file errors are printed to errOut and only make the
// command fail in strict mode.
func runSweep(ctx context.Context, cfg *config.Config, logger *slog.Logger, out, errOut io.Writer) error {
	root, err := filepath.Abs(cfg.Root)
	if err != nil {
		return fmt.Errorf("failed to resolve root %s: %w", cfg.Root, err)
	}

	sites, urls := siteRule(cfg), urlRule(cfg)
	observer := newConsoleObserver(out, errOut, sites, urls)

	persistOpts := []pipeline.PersisterOption{pipeline.WithPersistLogger(logger)}

	var (
		db    *database.HistoryDB
		runID int64
	)
	if cfg.SaveHistory {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		runID, err = db.BeginRun(ctx, model.NewRunReport(root, cfg.Repository, cfg.Owner, cfg.DryRun))
		if err != nil {
			return fmt.Errorf("failed to record run: %w", err)
		}
		persistOpts = append(persistOpts, pipeline.WithJournal(db.Journal(runID)))
		logger.Debug("recording run history", "db", db.Path(), "run", runID)
	}

	fs := osfs.New(root)

	var persister pipeline.Persister
	if cfg.DryRun {
		persister = pipeline.NewDryRunPersister(persistOpts...)
	} else {
		persister = pipeline.NewFilePersister(fs, persistOpts...)
	}

	p, err := pipeline.DefaultPipeline(pipeline.DefaultPipelineConfig{
		Sites:     sites,
		URLs:      urls,
		Persister: persister,
		Observer:  observer,
	}, pipeline.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	runner := pipeline.NewRunner(fs, p,
		pipeline.WithRunnerLogger(logger),
		pipeline.WithObserver(observer),
		pipeline.WithDiscoverOptions(discover.WithSkipDirs(cfg.SkipDirs...)),
		pipeline.WithRunMetadata(cfg.Repository, cfg.Owner, cfg.DryRun),
	)

	logger.Info("starting run",
		"root", root,
		"repository", cfg.Repository,
		"dryRun", cfg.DryRun,
		"steps", p.StepNames(),
	)

	runReport, runErr := runner.Run(ctx, "")

	if db != nil {
		runReport.ID = runID
		if err := db.FinishRun(ctx, runReport); err != nil {
			logger.Warn("failed to record run", "run", runID, "error", err)
		}
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}

	if err := outputReport(cfg, runReport, out); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if runErr != nil {
		return runErr
	}
	if cfg.Strict && !runReport.OK() {
		return fmt.Errorf("%w: %d of %d", errFilesFailed, runReport.Failed(), runReport.Scanned())
	}
	return nil
}

// outputReport writes the run report in the requested formats, to the
// report file or else to stdout.
// Nothing is written unless a format, a report file or a step summary file
// is configured; the progress lines are the default output.
func outputReport(cfg *config.Config, runReport *model.RunReport, stdout io.Writer) error {
	writers := make([]report.Writer, 0, 2)

	if cfg.JSONReport || cfg.MarkdownReport || cfg.ReportFile != "" {
		output := stdout
		if cfg.ReportFile != "" {
			f, err := createReportFile(cfg.ReportFile)
			if err != nil {
				return err
			}
			defer f.Close()
			output = f
		}
		writers = append(writers, newReportWriter(cfg, output))
	}

	if cfg.StepSummaryFile != "" {
		f, err := os.OpenFile(cfg.StepSummaryFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return fmt.Errorf("failed to open step summary: %w", err)
		}
		defer f.Close()
		writers = append(writers, report.NewMarkdownWriter(f))
	}

	if len(writers) == 0 {
		return nil
	}

	_, err := report.NewMultiWriter(writers...).Write(runReport)
	return err
}

// newReportWriter returns the writer for the configured format.
func newReportWriter(cfg *config.Config, output io.Writer) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}
}

// createReportFile creates or truncates the report file, creating its
// parent directories when needed.
func createReportFile(path string) (*os.File, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}
