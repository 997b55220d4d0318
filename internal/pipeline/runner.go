package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/nao1215/jsonsweep/internal/discover"
	"github.com/nao1215/jsonsweep/internal/document"
	"github.com/nao1215/jsonsweep/internal/model"
)

// Runner processes every JSON file of a tree through a Pipeline, one file
// at a time, in discovery order.
type Runner struct {
	// fs is the filesystem holding the tree. Paths are relative to it.
	fs billy.Filesystem

	// pipeline is applied to every file.
	pipeline *Pipeline

	// observer receives progress notifications.
	observer Observer

	// logger is used for run-level logging.
	logger *slog.Logger

	// discoverOpts are passed to discover.Discover.
	discoverOpts []discover.Option

	// repository, owner and dryRun are copied into the run report.
	repository string
	owner      string
	dryRun     bool
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRunnerLogger sets a custom logger for the runner.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithObserver sets the observer notified of read, parse and step failures
// and of the end of the run.
func WithObserver(observer Observer) RunnerOption {
	return func(r *Runner) {
		if observer != nil {
			r.observer = observer
		}
	}
}

// WithDiscoverOptions sets options for file discovery.
func WithDiscoverOptions(opts ...discover.Option) RunnerOption {
	return func(r *Runner) {
		r.discoverOpts = append(r.discoverOpts, opts...)
	}
}

// WithRunMetadata sets the values recorded in the run report.
func WithRunMetadata(repository, owner string, dryRun bool) RunnerOption {
	return func(r *Runner) {
		r.repository = repository
		r.owner = owner
		r.dryRun = dryRun
	}
}

// NewRunner creates a Runner over fs applying p to every file.
func NewRunner(fs billy.Filesystem, p *Pipeline, opts ...RunnerOption) *Runner {
	r := &Runner{
		fs:       fs,
		pipeline: p,
		observer: NopObserver{},
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = slog.Default()
	}

	return r
}

// Run discovers the JSON files under root and processes them.
//
// A discovery error aborts the run before any file is touched and is
// returned. Errors of individual files are recorded in the report and
// never returned. When ctx is cancelled the run stops after the current
// file and returns the partial report with the context error.
func (r *Runner) Run(ctx context.Context, root string) (*model.RunReport, error) {
	report := model.NewRunReport(r.displayPath(root), r.repository, r.owner, r.dryRun)

	paths, err := discover.Discover(r.fs, root, r.discoverOpts...)
	if err != nil {
		report.Finish()
		return report, fmt.Errorf("failed to discover JSON files: %w", err)
	}

	r.logger.Debug("discovered JSON files",
		"root", report.Root,
		"count", len(paths),
	)

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			r.logger.Warn("run cancelled",
				"processed", report.Scanned(),
				"remaining", len(paths)-report.Scanned(),
			)
			report.Finish()
			return report, err
		}

		report.Add(r.processFile(ctx, path))
	}

	report.Finish()
	r.observer.RunFinished(report)
	return report, nil
}

// processFile reads, parses and transforms one file.
func (r *Runner) processFile(ctx context.Context, path string) *model.FileReport {
	fc := &FileContext{
		Path:    path,
		Display: r.displayPath(path),
		Base:    filepath.Base(path),
	}
	fc.Report = model.NewFileReport(fc.Display, fc.Base)

	data, err := util.ReadFile(r.fs, path)
	if err != nil {
		r.fail(fc, fmt.Errorf("failed to read file: %w", err))
		return fc.Report
	}

	doc, err := document.Parse(data)
	if err != nil {
		r.fail(fc, err)
		return fc.Report
	}
	fc.Content = data
	fc.Document = doc

	if err := r.pipeline.Execute(ctx, fc); err != nil {
		for _, stepErr := range StepErrors(err) {
			r.observer.FileFailed(fc, stepErr)
		}
	}

	return fc.Report
}

// fail records a read or parse failure.
func (r *Runner) fail(fc *FileContext, err error) {
	r.logger.Debug("file failed", "path", fc.Display, "error", err)
	fc.Report.MarkFailed("", err)
	r.observer.FileFailed(fc, err)
}

// displayPath returns the absolute form of a filesystem-relative path.
func (r *Runner) displayPath(path string) string {
	return r.fs.Join(r.fs.Root(), path)
}
